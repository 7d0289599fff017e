// Package discord connects the homework tracker and the logbook service to a
// Discord gateway session.
package discord

import (
	"context"
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/programme-lv/hwlog/classdir"
	"github.com/programme-lv/hwlog/logbook"
	"github.com/programme-lv/hwlog/logger"
	"github.com/programme-lv/hwlog/reaction"
	"github.com/programme-lv/hwlog/tracker"
)

const intents = discordgo.IntentsGuilds |
	discordgo.IntentsGuildMessages |
	discordgo.IntentsGuildMessageReactions

// NewSession creates a bot session. The gateway is not opened.
func NewSession(token string) (*discordgo.Session, error) {
	s, err := discordgo.New("Bot " + strings.TrimPrefix(token, "Bot "))
	if err != nil {
		return nil, fmt.Errorf("failed to create discord session: %w", err)
	}
	s.Identify.Intents = intents
	return s, nil
}

type Bot struct {
	s        *discordgo.Session
	tracker  *tracker.Tracker
	logbooks *logbook.Service
	dir      classdir.Directory

	// commandGuildID scopes slash commands to one guild; empty means global.
	commandGuildID string
	registered     []*discordgo.ApplicationCommand
}

func NewBot(s *discordgo.Session, t *tracker.Tracker, logbooks *logbook.Service, dir classdir.Directory, commandGuildID string) *Bot {
	return &Bot{
		s:              s,
		tracker:        t,
		logbooks:       logbooks,
		dir:            dir,
		commandGuildID: commandGuildID,
	}
}

// Run opens the gateway, registers the slash commands and blocks until ctx
// is done.
func (b *Bot) Run(ctx context.Context) error {
	log := logger.FromContext(ctx)

	removeReaction := b.s.AddHandler(func(s *discordgo.Session, r *discordgo.MessageReactionAdd) {
		b.onReactionAdd(ctx, s, r)
	})
	defer removeReaction()
	removeInteraction := b.s.AddHandler(func(s *discordgo.Session, i *discordgo.InteractionCreate) {
		b.onInteraction(ctx, s, i)
	})
	defer removeInteraction()

	if err := b.s.Open(); err != nil {
		return fmt.Errorf("failed to open discord gateway: %w", err)
	}
	defer b.s.Close()
	log.Info("discord gateway open", "user", b.s.State.User.Username)

	for _, cmd := range Commands {
		created, err := b.s.ApplicationCommandCreate(b.s.State.User.ID, b.commandGuildID, cmd)
		if err != nil {
			return fmt.Errorf("failed to register /%s: %w", cmd.Name, err)
		}
		b.registered = append(b.registered, created)
	}
	log.Info("registered slash commands", "count", len(b.registered))

	<-ctx.Done()

	for _, cmd := range b.registered {
		if err := b.s.ApplicationCommandDelete(b.s.State.User.ID, b.commandGuildID, cmd.ID); err != nil {
			log.Warn("failed to remove slash command", "command", cmd.Name, "error", err)
		}
	}
	return nil
}

func (b *Bot) onReactionAdd(ctx context.Context, s *discordgo.Session, r *discordgo.MessageReactionAdd) {
	ev := toEvent(r, s.State.User.ID)
	ctx, _ = logger.WithEventID(ctx)
	out := b.tracker.HandleReactionAdd(ctx, ev)
	if out.Err != nil {
		logger.FromContext(ctx).Warn("reaction not processed",
			"action", out.Action.String(),
			"error", out.Err)
	}
}

func toEvent(r *discordgo.MessageReactionAdd, selfID string) reaction.Event {
	ev := reaction.Event{
		GuildID:   r.GuildID,
		ChannelID: r.ChannelID,
		MessageID: r.MessageID,
		UserID:    r.UserID,
		Emoji:     r.Emoji.MessageFormat(),
		UserIsBot: r.UserID == selfID,
		SelfID:    selfID,
	}
	if r.Member != nil && r.Member.User != nil && r.Member.User.Bot {
		ev.UserIsBot = true
	}
	return ev
}

func (b *Bot) onInteraction(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionApplicationCommand {
		return
	}
	data := i.ApplicationCommandData()
	ctx, _ = logger.WithEventID(ctx)
	ctx = logger.With(ctx, "command", data.Name, "guild_id", i.GuildID, "channel_id", i.ChannelID)
	log := logger.FromContext(ctx)

	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
	}, discordgo.WithContext(ctx))
	if err != nil {
		log.Error("failed to defer interaction response", "error", err)
		return
	}

	var reply string
	switch data.Name {
	case cmdLogbook:
		reply = logbookReply(b.logbooks.Run(ctx, logbookRequest(data.Options, i.GuildID, i.ChannelID)))
	case cmdFindClass:
		reply = b.findClass(ctx, roleOption(data.Options))
	default:
		log.Warn("unknown command")
		reply = "❌ unknown command"
	}

	_, err = s.FollowupMessageCreate(i.Interaction, true, &discordgo.WebhookParams{
		Content: reply,
	}, discordgo.WithContext(ctx))
	if err != nil {
		log.Error("failed to send command reply", "error", err)
	}
}

func (b *Bot) findClass(ctx context.Context, roleID string) string {
	class, err := b.dir.FindByRole(ctx, roleID)
	if err != nil {
		logger.FromContext(ctx).Error("failed to find class by role", "role_id", roleID, "error", err)
		return "❌ failed to look up the class, please try again later"
	}
	return findClassReply(roleID, class)
}
