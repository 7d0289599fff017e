// Package tracker turns reaction events on class channel messages into
// stored homework submissions.
package tracker

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/programme-lv/hwlog/classdir"
	"github.com/programme-lv/hwlog/emoji"
	"github.com/programme-lv/hwlog/hwsubm"
	"github.com/programme-lv/hwlog/logger"
	"github.com/programme-lv/hwlog/reaction"
)

// Platform is the chat platform as seen by the tracker.
type Platform interface {
	// MessageState returns the message's current reactions and its author.
	MessageState(ctx context.Context, channelID, messageID string) (reaction.State, string, error)
	ClearReactions(ctx context.Context, channelID, messageID string) error
	AddReaction(ctx context.Context, channelID, messageID, emoji string) error
}

type Tracker struct {
	dir      classdir.Directory
	store    hwsubm.Store
	platform Platform
	policy   reaction.Policy
	now      func() time.Time
	locks    *keyedMutex
}

func New(dir classdir.Directory, store hwsubm.Store, platform Platform, policy reaction.Policy) *Tracker {
	return &Tracker{
		dir:      dir,
		store:    store,
		platform: platform,
		policy:   policy,
		now:      time.Now,
		locks:    newKeyedMutex(),
	}
}

// WithClock replaces the clock used to timestamp submissions.
func (t *Tracker) WithClock(now func() time.Time) *Tracker {
	t.now = now
	return t
}

// Outcome describes what handling one event did.
type Outcome struct {
	Action reaction.Action
	Class  string
	Record *hwsubm.Record
	// OutOfRange is set when a submission was rejected by the class's
	// assignment count.
	OutOfRange bool
	Acked      bool
	Err        error
}

var (
	ErrClassLookup = errors.New("class lookup failed")
	ErrFetchState  = errors.New("failed to fetch message reactions")
)

// HandleReactionAdd processes one reaction-add. Events for the same message
// are handled one at a time.
func (t *Tracker) HandleReactionAdd(ctx context.Context, ev reaction.Event) Outcome {
	if ev.UserIsBot {
		return Outcome{Action: reaction.ActionIgnore}
	}
	ctx = logger.With(ctx,
		"channel_id", ev.ChannelID,
		"message_id", ev.MessageID,
		"user_id", ev.UserID,
		"emoji", ev.Emoji)
	log := logger.FromContext(ctx)

	unlock := t.locks.Lock(ev.MessageID)
	defer unlock()

	class, err := t.dir.FindByChannel(ctx, ev.ChannelID)
	if err != nil {
		log.Error("failed to look up class by channel", "error", err)
		return Outcome{Action: reaction.ActionIgnore, Err: errors.Join(ErrClassLookup, err)}
	}
	if class == nil {
		log.Debug("reaction in unregistered channel")
		return Outcome{Action: reaction.ActionIgnore}
	}
	log = log.With("class_code", class.ClassCode)

	state, authorID, err := t.platform.MessageState(ctx, ev.ChannelID, ev.MessageID)
	if err != nil {
		log.Error("failed to fetch message state", "error", err)
		return Outcome{Action: reaction.ActionIgnore, Class: class.ClassCode, Err: errors.Join(ErrFetchState, err)}
	}
	if ev.AuthorID == "" {
		ev.AuthorID = authorID
	}

	d := reaction.Classify(t.policy, ev, state)
	out := Outcome{Action: d.Action, Class: class.ClassCode}

	switch d.Action {
	case reaction.ActionIgnore:
		return out
	case reaction.ActionClear:
		log.Info("clearing reactions")
		t.clear(ctx, log, ev)
		return out
	case reaction.ActionExpand:
		log.Info("adding next batch of counting emoji")
		for _, e := range emoji.NextBatch() {
			if err := t.platform.AddReaction(ctx, ev.ChannelID, ev.MessageID, e); err != nil {
				log.Warn("failed to add counting emoji", "added_emoji", e, "error", err)
			}
		}
		return out
	}

	if !t.policy.InRange(d.AssignmentNumber, class.TotalAssignments) {
		log.Info("assignment number out of range",
			"assignment_number", d.AssignmentNumber,
			"total_assignments", class.TotalAssignments)
		out.OutOfRange = true
		return out
	}

	if d.Action == reaction.ActionRecordNormalize {
		t.clear(ctx, log, ev)
		if err := t.platform.AddReaction(ctx, ev.ChannelID, ev.MessageID, ev.Emoji); err != nil {
			log.Warn("failed to re-add counting emoji", "error", err)
		}
	}

	rec := hwsubm.Record{
		ClassCode:        class.ClassCode,
		MessageID:        ev.MessageID,
		ChannelID:        ev.ChannelID,
		StudentID:        d.StudentID,
		AssignmentNumber: d.AssignmentNumber,
		TimestampUTC:     t.now().UTC().Unix(),
		Kind:             hwsubm.KindHomework,
	}
	if err := t.store.Put(ctx, rec); err != nil {
		log.Error("failed to save submission",
			"student_id", rec.StudentID,
			"assignment_number", rec.AssignmentNumber,
			"error", err)
		out.Err = err
		return out
	}
	out.Record = &rec
	log.Info("saved submission",
		"student_id", rec.StudentID,
		"assignment_number", rec.AssignmentNumber)

	if err := t.platform.AddReaction(ctx, ev.ChannelID, ev.MessageID, emoji.Ack); err != nil {
		log.Warn("failed to acknowledge submission", "error", err)
		return out
	}
	out.Acked = true
	return out
}

func (t *Tracker) clear(ctx context.Context, log *slog.Logger, ev reaction.Event) {
	if err := t.platform.ClearReactions(ctx, ev.ChannelID, ev.MessageID); err != nil {
		log.Warn("failed to clear reactions", "error", err)
	}
}
