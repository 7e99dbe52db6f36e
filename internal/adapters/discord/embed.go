package discord

import (
	"time"

	"github.com/bwmarrin/discordgo"

	"grupy/internal/domain/entities"
	"grupy/pkg/tz"
)

const (
	embedColor = 0x5865F2
	embedTitle = "🗳️ Richiesta di voto"
)

func formatWhen(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.In(tz.Rome).Format("02/01/2006 15:04")
}

// BuildNotificationEmbed renders one emitted notification for the relay channel.
func BuildNotificationEmbed(notificationID string, n entities.Notification) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title:       embedTitle,
		Description: n.Message,
		Color:       embedColor,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Destinatario", Value: n.Recipient, Inline: true},
			{Name: "Gruppo", Value: n.GroupID, Inline: true},
		},
		Footer: &discordgo.MessageEmbedFooter{Text: notificationID},
	}
	if when := formatWhen(n.CreatedAt); when != "" {
		embed.Timestamp = n.CreatedAt.UTC().Format(time.RFC3339)
		embed.Footer.Text = notificationID + " • " + when
	}
	return embed
}
