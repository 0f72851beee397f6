package notify

import (
	"context"
	"errors"
	"testing"

	"github.com/bwmarrin/discordgo"
	slackapi "github.com/slack-go/slack"
	"github.com/oceanwatch/oceanwatch/internal/config"
)

// recordingSink captures notifications and optionally fails.
type recordingSink struct {
	messages []string
	err      error
}

func (r *recordingSink) Notify(ctx context.Context, text string) error {
	r.messages = append(r.messages, text)
	return r.err
}

func TestMulti_FansOut(t *testing.T) {
	a := &recordingSink{}
	b := &recordingSink{}

	m := NewMultiFromSinks(a, b)
	if err := m.Notify(context.Background(), "hello"); err != nil {
		t.Fatalf("Notify: %v", err)
	}

	for name, sink := range map[string]*recordingSink{"a": a, "b": b} {
		if len(sink.messages) != 1 || sink.messages[0] != "hello" {
			t.Errorf("sink %s got %v, want [hello]", name, sink.messages)
		}
	}
}

func TestMulti_SinkFailureIsSwallowed(t *testing.T) {
	failing := &recordingSink{err: errors.New("channel gone")}
	working := &recordingSink{}

	m := NewMultiFromSinks(failing, working)
	if err := m.Notify(context.Background(), "submission"); err != nil {
		t.Fatalf("Notify returned %v, want nil despite sink failure", err)
	}
	if len(working.messages) != 1 {
		t.Errorf("later sink got %v, want delivery despite earlier failure", working.messages)
	}
}

func TestMulti_NoSinks(t *testing.T) {
	m := NewMultiFromSinks()
	if err := m.Notify(context.Background(), "into the void"); err != nil {
		t.Fatalf("Notify with no sinks: %v", err)
	}
}

func TestNewMulti_WiresConfiguredSinks(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.NotifyConfig
		want int
	}{
		{"none", config.NotifyConfig{}, 0},
		{"slack only", config.NotifyConfig{SlackToken: "xoxb-x", SlackChannel: "C1"}, 1},
		{"discord only", config.NotifyConfig{DiscordToken: "tok", DiscordChannel: "123"}, 1},
		{"both", config.NotifyConfig{SlackToken: "xoxb-x", SlackChannel: "C1", DiscordToken: "tok", DiscordChannel: "123"}, 2},
		{"token without channel", config.NotifyConfig{SlackToken: "xoxb-x"}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewMulti(tt.cfg)
			if len(m.sinks) != tt.want {
				t.Errorf("sink count = %d, want %d", len(m.sinks), tt.want)
			}
		})
	}
}

// fakeSlack records PostMessageContext calls.
type fakeSlack struct {
	channel string
	err     error
}

func (f *fakeSlack) PostMessageContext(ctx context.Context, channelID string, options ...slackapi.MsgOption) (string, string, error) {
	f.channel = channelID
	return "", "", f.err
}

func TestSlackSink_Notify(t *testing.T) {
	fake := &fakeSlack{}
	sink := &SlackSink{client: fake, channelID: "C123"}

	if err := sink.Notify(context.Background(), "new session"); err != nil {
		t.Fatalf("Notify: %v", err)
	}
	if fake.channel != "C123" {
		t.Errorf("posted to %q, want C123", fake.channel)
	}

	fake.err = errors.New("rate limited")
	if err := sink.Notify(context.Background(), "again"); err == nil {
		t.Error("expected error to propagate from the Slack client")
	}
}

// fakeDiscord records ChannelMessageSend calls.
type fakeDiscord struct {
	channel string
	content string
	err     error
}

func (f *fakeDiscord) ChannelMessageSend(channelID, content string, options ...discordgo.RequestOption) (*discordgo.Message, error) {
	f.channel = channelID
	f.content = content
	return nil, f.err
}

func TestDiscordSink_Notify(t *testing.T) {
	fake := &fakeDiscord{}
	sink := &DiscordSink{session: fake, channelID: "987654"}

	if err := sink.Notify(context.Background(), "submission from Alex"); err != nil {
		t.Fatalf("Notify: %v", err)
	}
	if fake.channel != "987654" || fake.content != "submission from Alex" {
		t.Errorf("sent (%q, %q)", fake.channel, fake.content)
	}

	fake.err = errors.New("missing permissions")
	if err := sink.Notify(context.Background(), "again"); err == nil {
		t.Error("expected error to propagate from the Discord session")
	}
}
