package discord

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/require"

	"grupy/internal/domain/entities"
	"grupy/internal/infrastructure/memory"
)

type fakeSender struct {
	channels []string
	embeds   []*discordgo.MessageEmbed
	err      error
}

func (f *fakeSender) ChannelMessageSendEmbed(channelID string, embed *discordgo.MessageEmbed, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	f.channels = append(f.channels, channelID)
	f.embeds = append(f.embeds, embed)
	return &discordgo.Message{ChannelID: channelID}, f.err
}

type downSink struct{}

func (downSink) Emit(context.Context, entities.Notification) (string, error) {
	return "", errors.New("inbox unavailable")
}

func voteRequest() entities.Notification {
	return entities.Notification{
		Recipient: "alice",
		Kind:      entities.KindVoteRequest,
		GroupID:   "g1",
		Message:   "Com'è andato \"Pizza\"?",
		CreatedAt: time.Date(2025, time.July, 1, 18, 30, 0, 0, time.UTC),
	}
}

func TestRelaySink_PostsCopy(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := memory.NewStore()
	sender := &fakeSender{}

	id, err := NewRelaySink(store, sender, "123").Emit(ctx, voteRequest())
	require.NoError(t, err)
	require.NotEmpty(t, id)

	inbox, err := store.ListNotifications(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, inbox, 1)

	require.Equal(t, []string{"123"}, sender.channels)
	embed := sender.embeds[0]
	require.Equal(t, "Com'è andato \"Pizza\"?", embed.Description)
	require.Equal(t, "alice", embed.Fields[0].Value)
	require.Equal(t, "g1", embed.Fields[1].Value)
	// 18:30 UTC is 20:30 in Rome during summer time.
	require.Equal(t, id+" • 01/07/2025 20:30", embed.Footer.Text)
}

func TestRelaySink_RelayFailureIsIgnored(t *testing.T) {
	t.Parallel()
	sender := &fakeSender{err: errors.New("rate limited")}

	id, err := NewRelaySink(memory.NewStore(), sender, "123").Emit(context.Background(), voteRequest())
	require.NoError(t, err)
	require.NotEmpty(t, id)
	require.Len(t, sender.embeds, 1)
}

func TestRelaySink_InnerFailureSkipsRelay(t *testing.T) {
	t.Parallel()
	sender := &fakeSender{}

	_, err := NewRelaySink(downSink{}, sender, "123").Emit(context.Background(), voteRequest())
	require.Error(t, err)
	require.Empty(t, sender.embeds)
}

func TestNewSession(t *testing.T) {
	t.Parallel()
	s, err := NewSession("token")
	require.NoError(t, err)
	require.Equal(t, "Bot token", s.Token)
}
