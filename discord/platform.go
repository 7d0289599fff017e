package discord

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/programme-lv/hwlog/logbook"
	"github.com/programme-lv/hwlog/reaction"
	"github.com/programme-lv/hwlog/tracker"
)

// reactionPageSize is the largest page the reactions endpoint returns.
const reactionPageSize = 100

// Platform implements the tracker's and the logbook's view of Discord on top
// of a REST session.
type Platform struct {
	s *discordgo.Session
}

var (
	_ tracker.Platform = (*Platform)(nil)
	_ logbook.Output   = (*Platform)(nil)
)

func NewPlatform(s *discordgo.Session) *Platform {
	return &Platform{s: s}
}

func (p *Platform) MessageState(ctx context.Context, channelID, messageID string) (reaction.State, string, error) {
	msg, err := p.s.ChannelMessage(channelID, messageID, discordgo.WithContext(ctx))
	if err != nil {
		return nil, "", fmt.Errorf("fetch message: %w", err)
	}
	authorID := ""
	if msg.Author != nil {
		authorID = msg.Author.ID
	}

	state := make(reaction.State, 0, len(msg.Reactions))
	for _, r := range msg.Reactions {
		if r == nil || r.Emoji == nil {
			continue
		}
		users, err := p.reactionUsers(ctx, channelID, messageID, r.Emoji.APIName())
		if err != nil {
			return nil, "", err
		}
		state = append(state, reaction.Reaction{
			Emoji:   r.Emoji.MessageFormat(),
			UserIDs: users,
		})
	}
	return state, authorID, nil
}

func (p *Platform) reactionUsers(ctx context.Context, channelID, messageID, emojiID string) ([]string, error) {
	var ids []string
	after := ""
	for {
		users, err := p.s.MessageReactions(channelID, messageID, emojiID,
			reactionPageSize, "", after, discordgo.WithContext(ctx))
		if err != nil {
			return nil, fmt.Errorf("fetch reactions for %s: %w", emojiID, err)
		}
		for _, u := range users {
			ids = append(ids, u.ID)
		}
		if len(users) < reactionPageSize {
			return ids, nil
		}
		after = users[len(users)-1].ID
	}
}

func (p *Platform) ClearReactions(ctx context.Context, channelID, messageID string) error {
	return p.s.MessageReactionsRemoveAll(channelID, messageID, discordgo.WithContext(ctx))
}

func (p *Platform) AddReaction(ctx context.Context, channelID, messageID, emoji string) error {
	return p.s.MessageReactionAdd(channelID, messageID, apiName(emoji), discordgo.WithContext(ctx))
}

func (p *Platform) ChannelExists(ctx context.Context, channelID string) (bool, error) {
	ch, err := p.s.Channel(channelID, discordgo.WithContext(ctx))
	if err != nil {
		var restErr *discordgo.RESTError
		if errors.As(err, &restErr) && restErr.Response != nil && restErr.Response.StatusCode == http.StatusNotFound {
			return false, nil
		}
		return false, err
	}
	return ch != nil, nil
}

func (p *Platform) SendText(ctx context.Context, channelID, text string) error {
	_, err := p.s.ChannelMessageSend(channelID, text, discordgo.WithContext(ctx))
	return err
}

func (p *Platform) SendImage(ctx context.Context, channelID, imageURL string) error {
	embed := &discordgo.MessageEmbed{
		Image: &discordgo.MessageEmbedImage{URL: imageURL},
	}
	_, err := p.s.ChannelMessageSendEmbed(channelID, embed, discordgo.WithContext(ctx))
	return err
}

// apiName turns "<:name:id>" or "<a:name:id>" into the "name:id" form the
// REST API expects. Unicode emoji are returned unchanged.
func apiName(e string) string {
	if !strings.HasPrefix(e, "<") || !strings.HasSuffix(e, ">") {
		return e
	}
	e = strings.TrimSuffix(strings.TrimPrefix(e, "<"), ">")
	e = strings.TrimPrefix(e, "a:")
	return strings.TrimPrefix(e, ":")
}
