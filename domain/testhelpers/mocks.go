package testhelpers

import (
	"context"
	"sync"

	"poporingbot/domain/entities"
	"poporingbot/events"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/mock"
)

// MockKeyValueStore is a mock implementation of KeyValueStore
type MockKeyValueStore struct {
	mock.Mock
}

func (m *MockKeyValueStore) Get(ctx context.Context, key string) (string, bool, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Bool(1), args.Error(2)
}

func (m *MockKeyValueStore) Set(ctx context.Context, key, value string) error {
	args := m.Called(ctx, key, value)
	return args.Error(0)
}

// MockPreferenceService is a mock implementation of PreferenceService
type MockPreferenceService struct {
	mock.Mock
}

func (m *MockPreferenceService) GetDefault(ctx context.Context, channelID, guildID string) (entities.Region, error) {
	args := m.Called(ctx, channelID, guildID)
	return args.Get(0).(entities.Region), args.Error(1)
}

func (m *MockPreferenceService) SetChannelDefault(ctx context.Context, channelID string, region entities.Region) error {
	args := m.Called(ctx, channelID, region)
	return args.Error(0)
}

func (m *MockPreferenceService) SetGuildDefault(ctx context.Context, guildID string, region entities.Region) error {
	args := m.Called(ctx, guildID, region)
	return args.Error(0)
}

// MockPriceFetcher is a mock implementation of PriceFetcher
type MockPriceFetcher struct {
	mock.Mock
}

func (m *MockPriceFetcher) FetchLatestPrice(ctx context.Context, region entities.Region, name string) (entities.PriceData, error) {
	args := m.Called(ctx, region, name)
	return args.Get(0).(entities.PriceData), args.Error(1)
}

// MemoryStore is an in-memory KeyValueStore for tests that need real state
type MemoryStore struct {
	mu     sync.Mutex
	values map[string]string
}

// NewMemoryStore creates an empty MemoryStore
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: make(map[string]string)}
}

func (s *MemoryStore) Get(ctx context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.values[key]
	return v, ok, nil
}

func (s *MemoryStore) Set(ctx context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	return nil
}

// RecordingPublisher collects published events
type RecordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *RecordingPublisher) Publish(event events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

// Events returns a copy of everything published so far
func (p *RecordingPublisher) Events() []events.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]events.Event, len(p.events))
	copy(out, p.events)
	return out
}

// MockMessageSender is a mock implementation of common.MessageSender.
// Request options are not part of the expectations.
type MockMessageSender struct {
	mock.Mock
}

func (m *MockMessageSender) ChannelMessageSend(channelID string, content string, options ...discordgo.RequestOption) (*discordgo.Message, error) {
	args := m.Called(channelID, content)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*discordgo.Message), args.Error(1)
}

func (m *MockMessageSender) ChannelMessageSendEmbed(channelID string, embed *discordgo.MessageEmbed, options ...discordgo.RequestOption) (*discordgo.Message, error) {
	args := m.Called(channelID, embed)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*discordgo.Message), args.Error(1)
}

// SentMessage is one reply captured by RecordingSender; exactly one of Content and Embed is set
type SentMessage struct {
	ChannelID string
	Content   string
	Embed     *discordgo.MessageEmbed
}

// RecordingSender captures replies instead of sending them
type RecordingSender struct {
	mu   sync.Mutex
	sent []SentMessage
}

func (r *RecordingSender) ChannelMessageSend(channelID string, content string, options ...discordgo.RequestOption) (*discordgo.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, SentMessage{ChannelID: channelID, Content: content})
	return &discordgo.Message{ChannelID: channelID, Content: content}, nil
}

func (r *RecordingSender) ChannelMessageSendEmbed(channelID string, embed *discordgo.MessageEmbed, options ...discordgo.RequestOption) (*discordgo.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, SentMessage{ChannelID: channelID, Embed: embed})
	return &discordgo.Message{ChannelID: channelID, Embeds: []*discordgo.MessageEmbed{embed}}, nil
}

// Sent returns a copy of the captured replies
func (r *RecordingSender) Sent() []SentMessage {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]SentMessage, len(r.sent))
	copy(out, r.sent)
	return out
}
