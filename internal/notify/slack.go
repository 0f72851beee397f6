package notify

import (
	"context"
	"fmt"

	slackapi "github.com/slack-go/slack"
)

// slackClient abstracts the Slack API methods we use, enabling test mocks.
type slackClient interface {
	PostMessageContext(ctx context.Context, channelID string, options ...slackapi.MsgOption) (string, string, error)
}

// SlackSink posts notifications to a Slack channel.
type SlackSink struct {
	client    slackClient
	channelID string
}

// NewSlackSink creates a SlackSink from a bot token and channel ID.
func NewSlackSink(botToken, channelID string) *SlackSink {
	return &SlackSink{
		client:    slackapi.New(botToken),
		channelID: channelID,
	}
}

// Notify posts the text to the configured channel.
func (s *SlackSink) Notify(ctx context.Context, text string) error {
	_, _, err := s.client.PostMessageContext(ctx, s.channelID,
		slackapi.MsgOptionText(text, false))
	if err != nil {
		return fmt.Errorf("slack: post message: %w", err)
	}
	return nil
}
