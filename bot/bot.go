package bot

import (
	"context"
	"fmt"
	"time"

	"poporingbot/bot/features/pricecheck"
	"poporingbot/bot/features/settings"
	"poporingbot/catalog"
	"poporingbot/domain/interfaces"
	"poporingbot/infrastructure/observability"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

// Config holds bot configuration
type Config struct {
	Token              string
	MessageTimeout     time.Duration
	ReplyRatePerSecond float64
	ReplyBurst         int
}

// Dependencies are the shared services the features run on
type Dependencies struct {
	Resolver    *catalog.Resolver
	Prices      interfaces.PriceFetcher
	Preferences interfaces.PreferenceService
	Publisher   interfaces.EventPublisher
	Metrics     *observability.MetricsProvider
}

// Bot manages the Discord session and routes messages to features
type Bot struct {
	config  Config
	session *discordgo.Session
	router  *Router
}

// New creates the Discord session, wires the features and opens the gateway connection
func New(config Config, deps Dependencies) (*Bot, error) {
	dg, err := discordgo.New("Bot " + config.Token)
	if err != nil {
		return nil, fmt.Errorf("error creating discord session: %w", err)
	}
	dg.Identify.Intents = discordgo.IntentsGuildMessages |
		discordgo.IntentsDirectMessages |
		discordgo.IntentsMessageContent

	if config.MessageTimeout <= 0 {
		config.MessageTimeout = 30 * time.Second
	}

	bot := &Bot{
		config:  config,
		session: dg,
		router: NewRouter(
			pricecheck.NewFeature(dg, deps.Resolver, deps.Prices, deps.Publisher, deps.Metrics),
			settings.NewFeature(dg, deps.Preferences, deps.Publisher, deps.Metrics),
			deps.Preferences,
			NewChannelThrottle(config.ReplyRatePerSecond, config.ReplyBurst),
			deps.Metrics,
		),
	}

	dg.AddHandler(bot.handleReady)
	dg.AddHandler(bot.handleMessageCreate)

	if err := dg.Open(); err != nil {
		return nil, fmt.Errorf("error opening connection: %w", err)
	}

	return bot, nil
}

// Close gracefully shuts down the bot
func (b *Bot) Close() error {
	return b.session.Close()
}

func (b *Bot) handleReady(s *discordgo.Session, r *discordgo.Ready) {
	log.WithFields(log.Fields{
		"user":   r.User.Username,
		"guilds": len(r.Guilds),
	}).Info("Logged in")
}

// handleMessageCreate routes every non-bot message under its own deadline
func (b *Bot) handleMessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author == nil || m.Author.Bot {
		return
	}

	botUserID := ""
	if s.State != nil && s.State.User != nil {
		botUserID = s.State.User.ID
	}
	if m.Author.ID == botUserID {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), b.config.MessageTimeout)
	defer cancel()

	defer func() {
		if r := recover(); r != nil {
			log.WithFields(log.Fields{
				"channel_id": m.ChannelID,
				"message_id": m.ID,
				"panic":      r,
			}).Error("Recovered from panic while handling message")
		}
	}()

	b.router.Route(ctx, Message{
		ChannelID: m.ChannelID,
		GuildID:   m.GuildID,
		Content:   m.Content,
	}, botUserID)
}
