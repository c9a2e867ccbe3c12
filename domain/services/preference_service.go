package services

import (
	"context"
	"errors"
	"fmt"

	"poporingbot/domain/entities"
	"poporingbot/domain/interfaces"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// ErrNoGuild is returned when a guild preference is set outside a guild
var ErrNoGuild = errors.New("not in a guild")

// ErrInvalidRegion is returned when storing a region that is not sea or global
var ErrInvalidRegion = errors.New("invalid region")

// ChannelKey returns the store key for a channel preference
func ChannelKey(channelID string) string {
	return "c." + channelID
}

// GuildKey returns the store key for a guild preference
func GuildKey(guildID string) string {
	return "s." + guildID
}

// preferenceService implements the PreferenceService interface
type preferenceService struct {
	store interfaces.KeyValueStore
}

// NewPreferenceService creates a new preference service
func NewPreferenceService(store interfaces.KeyValueStore) interfaces.PreferenceService {
	return &preferenceService{
		store: store,
	}
}

// GetDefault reads the channel and guild preferences concurrently and applies precedence
func (s *preferenceService) GetDefault(ctx context.Context, channelID, guildID string) (entities.Region, error) {
	var channelValue, guildValue string
	var channelFound, guildFound bool

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		v, found, err := s.store.Get(gctx, ChannelKey(channelID))
		if err != nil {
			return fmt.Errorf("failed to get channel preference: %w", err)
		}
		channelValue, channelFound = v, found
		return nil
	})
	if guildID != "" {
		g.Go(func() error {
			v, found, err := s.store.Get(gctx, GuildKey(guildID))
			if err != nil {
				return fmt.Errorf("failed to get guild preference: %w", err)
			}
			guildValue, guildFound = v, found
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return entities.DefaultRegion, err
	}

	if channelFound {
		if region, ok := storedRegion(channelValue); ok {
			return region, nil
		}
		log.WithFields(log.Fields{"channel_id": channelID, "value": channelValue}).Warn("Ignoring unknown channel preference")
	}
	if guildFound {
		if region, ok := storedRegion(guildValue); ok {
			return region, nil
		}
		log.WithFields(log.Fields{"guild_id": guildID, "value": guildValue}).Warn("Ignoring unknown guild preference")
	}
	return entities.DefaultRegion, nil
}

// SetChannelDefault stores the default region for a channel
func (s *preferenceService) SetChannelDefault(ctx context.Context, channelID string, region entities.Region) error {
	if !region.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidRegion, region)
	}
	if err := s.store.Set(ctx, ChannelKey(channelID), string(region)); err != nil {
		return fmt.Errorf("failed to set channel preference: %w", err)
	}
	return nil
}

// SetGuildDefault stores the default region for a guild
func (s *preferenceService) SetGuildDefault(ctx context.Context, guildID string, region entities.Region) error {
	if guildID == "" {
		return ErrNoGuild
	}
	if !region.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidRegion, region)
	}
	if err := s.store.Set(ctx, GuildKey(guildID), string(region)); err != nil {
		return fmt.Errorf("failed to set guild preference: %w", err)
	}
	return nil
}

func storedRegion(v string) (entities.Region, bool) {
	region := entities.Region(v)
	return region, region.Valid()
}
