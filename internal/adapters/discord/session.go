// Package discord mirrors emitted notifications into a Discord channel.
package discord

import (
	"fmt"

	"github.com/bwmarrin/discordgo"
)

// NewSession creates a REST-only bot session. The relay never opens the gateway.
func NewSession(token string) (*discordgo.Session, error) {
	s, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("create discord session: %w", err)
	}
	s.Identify.Intents = discordgo.IntentsNone
	return s, nil
}
