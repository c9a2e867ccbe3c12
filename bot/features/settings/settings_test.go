package settings

import (
	"context"
	"errors"
	"testing"

	"poporingbot/bot/common"
	"poporingbot/domain/entities"
	"poporingbot/domain/services"
	"poporingbot/domain/testhelpers"
	"poporingbot/events"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestRun_Subcommands(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		command   string
		guildID   string
		wantReply string
		wantKey   string
		wantValue string
	}{
		{
			name:      "channel global",
			command:   "channel=global",
			guildID:   "g1",
			wantReply: "Default Server for this Channel set to Global",
			wantKey:   "c.c1",
			wantValue: "global",
		},
		{
			name:      "channel sea in a DM",
			command:   "channel=sea",
			wantReply: "Default Server for this Channel set to SEA",
			wantKey:   "c.c1",
			wantValue: "sea",
		},
		{
			name:      "guild global",
			command:   "default=global",
			guildID:   "g1",
			wantReply: "Default Server for this Discord set to Global",
			wantKey:   "s.g1",
			wantValue: "global",
		},
		{
			name:      "guild sea with surrounding spaces",
			command:   " default=sea ",
			guildID:   "g1",
			wantReply: "Default Server for this Discord set to SEA",
			wantKey:   "s.g1",
			wantValue: "sea",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			store := testhelpers.NewMemoryStore()
			sender := &testhelpers.RecordingSender{}
			publisher := &testhelpers.RecordingPublisher{}
			f := NewFeature(sender, services.NewPreferenceService(store), publisher, nil)

			err := f.Run(context.Background(), Request{ChannelID: "c1", GuildID: tt.guildID, Command: tt.command})
			require.NoError(t, err)

			sent := sender.Sent()
			require.Len(t, sent, 1)
			assert.Equal(t, tt.wantReply, sent[0].Content)

			value, found, err := store.Get(context.Background(), tt.wantKey)
			require.NoError(t, err)
			assert.True(t, found)
			assert.Equal(t, tt.wantValue, value)

			published := publisher.Events()
			require.Len(t, published, 1)
			event, ok := published[0].(events.PreferenceChangedEvent)
			require.True(t, ok)
			assert.Equal(t, tt.wantValue, event.Region)
		})
	}
}

func TestRun_Help(t *testing.T) {
	t.Parallel()

	sender := &testhelpers.RecordingSender{}
	prefs := &testhelpers.MockPreferenceService{}
	f := NewFeature(sender, prefs, nil, nil)

	require.NoError(t, f.Run(context.Background(), Request{ChannelID: "c1", Command: "help"}))

	sent := sender.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, HelpText, sent[0].Content)
	prefs.AssertNotCalled(t, "SetChannelDefault", mock.Anything, mock.Anything, mock.Anything)
}

func TestRun_Unrecognized(t *testing.T) {
	t.Parallel()

	sender := &testhelpers.MockMessageSender{}
	f := NewFeature(sender, &testhelpers.MockPreferenceService{}, nil, nil)

	err := f.Run(context.Background(), Request{ChannelID: "c1", Command: "channel=mars"})

	assert.ErrorIs(t, err, ErrUnrecognizedCommand)
	sender.AssertNotCalled(t, "ChannelMessageSend", mock.Anything, mock.Anything)
}

func TestRun_SubcommandsAreCaseSensitive(t *testing.T) {
	t.Parallel()

	for _, command := range []string{"CHANNEL=GLOBAL", "Channel=Global", "DEFAULT=SEA", "Help"} {
		t.Run(command, func(t *testing.T) {
			t.Parallel()

			store := testhelpers.NewMemoryStore()
			sender := &testhelpers.RecordingSender{}
			f := NewFeature(sender, services.NewPreferenceService(store), nil, nil)

			err := f.Run(context.Background(), Request{ChannelID: "c1", GuildID: "g1", Command: command})
			assert.ErrorIs(t, err, ErrUnrecognizedCommand)
			assert.Empty(t, sender.Sent())

			for _, key := range []string{"c.c1", "s.g1"} {
				_, found, err := store.Get(context.Background(), key)
				require.NoError(t, err)
				assert.False(t, found, key)
			}
		})
	}
}

func TestRun_GuildDefaultInDM(t *testing.T) {
	t.Parallel()

	sender := &testhelpers.RecordingSender{}
	prefs := &testhelpers.MockPreferenceService{}
	f := NewFeature(sender, prefs, nil, nil)

	require.NoError(t, f.Run(context.Background(), Request{ChannelID: "dm1", Command: "default=global"}))

	sent := sender.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, "Discord defaults can only be set inside a Discord server", sent[0].Content)
	prefs.AssertNotCalled(t, "SetGuildDefault", mock.Anything, mock.Anything, mock.Anything)
}

func TestRun_StoreFailure(t *testing.T) {
	t.Parallel()

	sender := &testhelpers.MockMessageSender{}
	sender.On("ChannelMessageSend", "c1", common.SystemErrorMessage).Return(nil, nil)

	prefs := &testhelpers.MockPreferenceService{}
	prefs.On("SetChannelDefault", mock.Anything, "c1", entities.RegionGlobal).Return(errors.New("connection refused"))

	publisher := &testhelpers.RecordingPublisher{}
	f := NewFeature(sender, prefs, publisher, nil)

	require.NoError(t, f.Run(context.Background(), Request{ChannelID: "c1", GuildID: "g1", Command: "channel=global"}))

	sender.AssertExpectations(t)
	prefs.AssertExpectations(t)
	assert.Empty(t, publisher.Events())
}
