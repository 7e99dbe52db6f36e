package discord

import (
	"context"

	"github.com/bwmarrin/discordgo"

	"grupy/internal/domain/entities"
	"grupy/internal/logger"
	"grupy/internal/ports/output"
)

var _ output.NotificationSink = (*RelaySink)(nil)

// messageSender is the part of *discordgo.Session the relay uses.
type messageSender interface {
	ChannelMessageSendEmbed(channelID string, embed *discordgo.MessageEmbed, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// RelaySink emits through the wrapped sink, then posts a copy to a Discord channel.
// The copy is best effort: its failure never fails Emit.
type RelaySink struct {
	next      output.NotificationSink
	sender    messageSender
	channelID string
}

func NewRelaySink(next output.NotificationSink, sender messageSender, channelID string) *RelaySink {
	return &RelaySink{next: next, sender: sender, channelID: channelID}
}

func (r *RelaySink) Emit(ctx context.Context, n entities.Notification) (string, error) {
	id, err := r.next.Emit(ctx, n)
	if err != nil {
		return "", err
	}

	embed := BuildNotificationEmbed(id, n)
	if _, err := r.sender.ChannelMessageSendEmbed(r.channelID, embed, discordgo.WithContext(ctx)); err != nil {
		logger.WarnKV(ctx, "Discord relay failed",
			"channel_id", r.channelID, "notification_id", id, "error", err)
	}
	return id, nil
}
