// Package notify delivers fire-and-forget operational notifications (new
// contributor, successful submission) to the configured chat sinks.
// Delivery is best-effort: a down sink must never affect the conversation
// that triggered the notification.
package notify

import (
	"context"
	"log"

	"github.com/oceanwatch/oceanwatch/internal/config"
)

// Sink delivers one text notification.
type Sink interface {
	Notify(ctx context.Context, text string) error
}

// Multi fans a notification out to every configured sink, logging failures
// instead of returning them.
type Multi struct {
	sinks []Sink
}

// NewMulti creates a Multi from the config, wiring a Slack sink and/or a
// Discord sink depending on which credentials are present.
func NewMulti(cfg config.NotifyConfig) *Multi {
	var sinks []Sink
	if cfg.SlackToken != "" && cfg.SlackChannel != "" {
		sinks = append(sinks, NewSlackSink(cfg.SlackToken, cfg.SlackChannel))
	}
	if cfg.DiscordToken != "" && cfg.DiscordChannel != "" {
		sink, err := NewDiscordSink(cfg.DiscordToken, cfg.DiscordChannel)
		if err != nil {
			log.Printf("notify: discord sink disabled: %v", err)
		} else {
			sinks = append(sinks, sink)
		}
	}
	return &Multi{sinks: sinks}
}

// NewMultiFromSinks creates a Multi from explicit sinks.
func NewMultiFromSinks(sinks ...Sink) *Multi {
	return &Multi{sinks: sinks}
}

// Notify sends text to every sink. Always returns nil; per-sink failures
// are logged.
func (m *Multi) Notify(ctx context.Context, text string) error {
	for _, s := range m.sinks {
		if err := s.Notify(ctx, text); err != nil {
			log.Printf("notify: %v", err)
		}
	}
	return nil
}
