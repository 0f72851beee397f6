package notify

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"
)

// discordSession abstracts the discordgo.Session methods we use, enabling
// test mocks.
type discordSession interface {
	ChannelMessageSend(channelID, content string, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// DiscordSink posts notifications to a Discord channel. Messages go over
// the REST API, so no gateway connection is opened.
type DiscordSink struct {
	session   discordSession
	channelID string
}

// NewDiscordSink creates a DiscordSink from a bot token and channel ID.
func NewDiscordSink(botToken, channelID string) (*DiscordSink, error) {
	dg, err := discordgo.New("Bot " + botToken)
	if err != nil {
		return nil, fmt.Errorf("discord: create session: %w", err)
	}
	return &DiscordSink{session: dg, channelID: channelID}, nil
}

// Notify posts the text to the configured channel.
func (d *DiscordSink) Notify(ctx context.Context, text string) error {
	_, err := d.session.ChannelMessageSend(d.channelID, text, discordgo.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("discord: send message: %w", err)
	}
	return nil
}
