// Package bridge relays console activity to a Discord channel and
// feeds channel messages back into the command dispatcher.
package bridge

import (
	"log/slog"

	"github.com/bwmarrin/discordgo"
)

func NewSession(token string) (*discordgo.Session, error) {
	discord, err := discordgo.New("Bot " + token)
	if err != nil {
		slog.Error("Failed to create discord session", "error", err)
		return nil, err
	}

	discord.Identify.Intents = discordgo.IntentsGuilds | discordgo.IntentsGuildMessages

	return discord, nil
}
