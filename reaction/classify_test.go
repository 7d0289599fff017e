package reaction_test

import (
	"testing"

	"github.com/programme-lv/hwlog/emoji"
	"github.com/programme-lv/hwlog/reaction"
	"github.com/stretchr/testify/assert"
)

const (
	author    = "200000000000000001"
	student   = "200000000000000002"
	moderator = "200000000000000003"
	check     = "<:purple_checkmark:555>"
)

func event(user, e string) reaction.Event {
	return reaction.Event{
		ChannelID: "100000000000000001",
		MessageID: "300000000000000001",
		AuthorID:  author,
		UserID:    user,
		Emoji:     e,
	}
}

func policy(mode reaction.Mode) reaction.Policy {
	p := reaction.DefaultPolicy()
	p.Mode = mode
	return p
}

var allModes = []reaction.Mode{
	reaction.ModeManualCheck,
	reaction.ModeDualSignal,
	reaction.ModeBareCounting,
}

func TestClearWinsOverEverything(t *testing.T) {
	state := reaction.State{
		{Emoji: "3️⃣", UserIDs: []string{student}},
		{Emoji: check, UserIDs: []string{student}},
		{Emoji: emoji.Clear, UserIDs: []string{moderator}},
	}
	for _, mode := range allModes {
		for _, e := range []string{emoji.Clear, check, "3️⃣", emoji.Expand} {
			d := reaction.Classify(policy(mode), event(student, e), state)
			assert.Equal(t, reaction.ActionClear, d.Action, "mode %s emoji %s", mode, e)
			assert.Empty(t, d.AssignmentNumber)
		}
	}
}

func TestExpand(t *testing.T) {
	state := reaction.State{{Emoji: emoji.Expand, UserIDs: []string{student}}}
	for _, mode := range allModes {
		d := reaction.Classify(policy(mode), event(student, emoji.Expand), state)
		assert.Equal(t, reaction.ActionExpand, d.Action)
	}
}

func TestBotReactionsIgnored(t *testing.T) {
	ev := event(moderator, emoji.Clear)
	ev.UserIsBot = true
	d := reaction.Classify(policy(reaction.ModeBareCounting), ev, reaction.State{{Emoji: emoji.Clear}})
	assert.Equal(t, reaction.ActionIgnore, d.Action)
}

func TestDualSignalNumberThenCheck(t *testing.T) {
	p := policy(reaction.ModeDualSignal)
	p.Student = reaction.StudentReactor

	// number alone is not enough
	state := reaction.State{{Emoji: "3️⃣", UserIDs: []string{student}}}
	d := reaction.Classify(p, event(student, "3️⃣"), state)
	assert.Equal(t, reaction.ActionIgnore, d.Action)

	state = append(state, reaction.Reaction{Emoji: check, UserIDs: []string{student}})
	d = reaction.Classify(p, event(student, check), state)
	assert.Equal(t, reaction.Decision{
		Action:           reaction.ActionRecord,
		AssignmentNumber: "3",
		StudentID:        student,
	}, d)
}

func TestDualSignalCheckThenNumberUsesEventEmoji(t *testing.T) {
	state := reaction.State{
		{Emoji: "1️⃣", UserIDs: []string{moderator}},
		{Emoji: check, UserIDs: []string{student}},
		{Emoji: "4️⃣", UserIDs: []string{student}},
		{Emoji: "2️⃣", UserIDs: []string{student}},
	}
	d := reaction.Classify(policy(reaction.ModeDualSignal), event(student, "2️⃣"), state)
	assert.Equal(t, reaction.ActionRecord, d.Action)
	assert.Equal(t, "2", d.AssignmentNumber)
	assert.Equal(t, author, d.StudentID)
}

func TestDualSignalModeratorCheckAloneRecordsNothing(t *testing.T) {
	state := reaction.State{
		{Emoji: "3️⃣", UserIDs: []string{student}},
		{Emoji: check, UserIDs: []string{moderator}},
	}
	d := reaction.Classify(policy(reaction.ModeDualSignal), event(moderator, check), state)
	assert.Equal(t, reaction.ActionIgnore, d.Action)
}

func TestManualCheckReadsFirstCountingEmoji(t *testing.T) {
	p := policy(reaction.ModeManualCheck)

	state := reaction.State{
		{Emoji: "👀", UserIDs: []string{student}},
		{Emoji: "5️⃣", UserIDs: []string{student}},
		{Emoji: "2️⃣", UserIDs: []string{student}},
		{Emoji: check, UserIDs: []string{moderator}},
	}
	d := reaction.Classify(p, event(moderator, check), state)
	assert.Equal(t, reaction.ActionRecord, d.Action)
	assert.Equal(t, "5", d.AssignmentNumber)
	assert.Equal(t, author, d.StudentID)

	d = reaction.Classify(p, event(moderator, check), reaction.State{{Emoji: check, UserIDs: []string{moderator}}})
	assert.Equal(t, "manual", d.AssignmentNumber)

	d = reaction.Classify(p, event(moderator, "5️⃣"), state)
	assert.Equal(t, reaction.ActionIgnore, d.Action)
}

func TestManualCheckSkipsBotOfferedNumbers(t *testing.T) {
	const bot = "200000000000000099"
	p := policy(reaction.ModeManualCheck)
	ev := event(moderator, check)
	ev.SelfID = bot

	offered := reaction.State{
		{Emoji: check, UserIDs: []string{moderator}},
		{Emoji: "🇦", UserIDs: []string{bot}},
	}
	d := reaction.Classify(p, ev, offered)
	assert.Equal(t, reaction.ActionRecord, d.Action)
	assert.Equal(t, "manual", d.AssignmentNumber)
	assert.True(t, p.InRange(d.AssignmentNumber, 10))

	picked := reaction.State{
		{Emoji: check, UserIDs: []string{moderator}},
		{Emoji: "🇦", UserIDs: []string{bot}},
		{Emoji: "4️⃣", UserIDs: []string{bot, student}},
	}
	d = reaction.Classify(p, ev, picked)
	assert.Equal(t, "4", d.AssignmentNumber)
}

func TestBareCountingNormalizes(t *testing.T) {
	p := policy(reaction.ModeBareCounting)
	d := reaction.Classify(p, event(student, "🔟"), reaction.State{{Emoji: "🔟", UserIDs: []string{student}}})
	assert.Equal(t, reaction.ActionRecordNormalize, d.Action)
	assert.Equal(t, "10", d.AssignmentNumber)

	d = reaction.Classify(p, event(student, check), reaction.State{{Emoji: check, UserIDs: []string{student}}})
	assert.Equal(t, reaction.ActionIgnore, d.Action)
}

func TestMissingAuthorIsIgnored(t *testing.T) {
	ev := event(student, "3️⃣")
	ev.AuthorID = ""
	d := reaction.Classify(policy(reaction.ModeBareCounting), ev, reaction.State{{Emoji: "3️⃣"}})
	assert.Equal(t, reaction.ActionIgnore, d.Action)
}

func TestInRange(t *testing.T) {
	p := reaction.DefaultPolicy()
	assert.True(t, p.InRange("5", 5))
	assert.False(t, p.InRange("7", 5))
	assert.True(t, p.InRange("7", 0))
	assert.True(t, p.InRange("manual", 5))

	p.ValidateRange = false
	assert.True(t, p.InRange("7", 5))
}

func TestParsePolicyParts(t *testing.T) {
	m, err := reaction.ParseMode("bare_counting")
	assert.NoError(t, err)
	assert.Equal(t, reaction.ModeBareCounting, m)
	_, err = reaction.ParseMode("both")
	assert.Error(t, err)

	s, err := reaction.ParseStudentSource("reactor")
	assert.NoError(t, err)
	assert.Equal(t, reaction.StudentReactor, s)
	_, err = reaction.ParseStudentSource("moderator")
	assert.Error(t, err)
}
