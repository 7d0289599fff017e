// Package reaction decides what a reaction added to a homework message means.
// It never talks to the chat platform; see package tracker for that.
package reaction

import (
	"fmt"
	"slices"
	"strconv"

	"github.com/programme-lv/hwlog/emoji"
	"github.com/programme-lv/hwlog/hwsubm"
)

// Event is a single reaction-add.
type Event struct {
	GuildID   string
	ChannelID string
	MessageID string
	AuthorID  string // message author, may be empty until the message is fetched
	UserID    string // who reacted
	Emoji     string
	UserIsBot bool
	SelfID    string // the bot's own user ID
}

// Reaction is one emoji on a message together with everyone who used it.
type Reaction struct {
	Emoji   string
	UserIDs []string
}

// State is the reaction list of a message in platform order.
type State []Reaction

func (s State) has(match func(string) bool) bool {
	for _, r := range s {
		if match(r.Emoji) {
			return true
		}
	}
	return false
}

func (s State) userReacted(userID string, match func(string) bool) bool {
	for _, r := range s {
		if match(r.Emoji) && slices.Contains(r.UserIDs, userID) {
			return true
		}
	}
	return false
}

// firstCounting returns the assignment number of the first counting emoji
// whose users pass accept.
func (s State) firstCounting(accept func(userIDs []string) bool) (string, bool) {
	for _, r := range s {
		n, ok := emoji.AssignmentNumber(r.Emoji)
		if !ok {
			continue
		}
		if accept(r.UserIDs) {
			return n, true
		}
	}
	return "", false
}

func usedBy(userID string) func([]string) bool {
	return func(userIDs []string) bool {
		return slices.Contains(userIDs, userID)
	}
}

// notOnlyBy accepts reactions used by anyone other than selfID.
func notOnlyBy(selfID string) func([]string) bool {
	return func(userIDs []string) bool {
		if selfID == "" {
			return true
		}
		return slices.ContainsFunc(userIDs, func(id string) bool { return id != selfID })
	}
}

// Mode selects which reactions make a submission. A deployment runs one mode.
type Mode string

const (
	// ModeManualCheck records when a purple check is added; the assignment
	// number is read from the first counting emoji on the message.
	ModeManualCheck Mode = "manual_check"
	// ModeDualSignal records when the same user has added both a counting
	// emoji and a purple check.
	ModeDualSignal Mode = "dual_signal"
	// ModeBareCounting records on any counting emoji and normalizes the
	// message to that single emoji.
	ModeBareCounting Mode = "bare_counting"
)

func ParseMode(s string) (Mode, error) {
	switch m := Mode(s); m {
	case ModeManualCheck, ModeDualSignal, ModeBareCounting:
		return m, nil
	}
	return "", fmt.Errorf("unknown reaction mode %q", s)
}

// StudentSource chooses whose submission a record is.
type StudentSource string

const (
	StudentAuthor  StudentSource = "author"
	StudentReactor StudentSource = "reactor"
)

func ParseStudentSource(s string) (StudentSource, error) {
	switch src := StudentSource(s); src {
	case StudentAuthor, StudentReactor:
		return src, nil
	}
	return "", fmt.Errorf("unknown student source %q", s)
}

type Policy struct {
	Mode    Mode
	Student StudentSource
	// ValidateRange rejects numeric assignments above the class total.
	ValidateRange bool
}

func DefaultPolicy() Policy {
	return Policy{
		Mode:          ModeDualSignal,
		Student:       StudentAuthor,
		ValidateRange: true,
	}
}

type Action int

const (
	ActionIgnore Action = iota
	ActionClear
	ActionExpand
	ActionRecord
	// ActionRecordNormalize records and replaces all reactions with the
	// triggering emoji.
	ActionRecordNormalize
)

func (a Action) String() string {
	switch a {
	case ActionIgnore:
		return "ignore"
	case ActionClear:
		return "clear"
	case ActionExpand:
		return "expand"
	case ActionRecord:
		return "record"
	case ActionRecordNormalize:
		return "record_normalize"
	}
	return "unknown"
}

func (a Action) Records() bool {
	return a == ActionRecord || a == ActionRecordNormalize
}

type Decision struct {
	Action           Action
	AssignmentNumber string
	StudentID        string
}

var ignore = Decision{Action: ActionIgnore}

// Classify maps a reaction-add on a message with the given state to a
// decision. The state is expected to already contain the event's reaction.
func Classify(p Policy, ev Event, state State) Decision {
	if ev.UserIsBot {
		return ignore
	}
	if emoji.IsClear(ev.Emoji) || state.has(emoji.IsClear) {
		return Decision{Action: ActionClear}
	}
	if emoji.IsExpand(ev.Emoji) {
		return Decision{Action: ActionExpand}
	}

	var d Decision
	switch p.Mode {
	case ModeManualCheck:
		d = classifyManualCheck(ev, state)
	case ModeDualSignal:
		d = classifyDualSignal(ev, state)
	case ModeBareCounting:
		d = classifyBareCounting(ev)
	default:
		return ignore
	}
	if !d.Action.Records() {
		return d
	}

	d.StudentID = ev.AuthorID
	if p.Student == StudentReactor {
		d.StudentID = ev.UserID
	}
	if d.StudentID == "" {
		return ignore
	}
	return d
}

func classifyManualCheck(ev Event, state State) Decision {
	if !emoji.IsPurpleCheck(ev.Emoji) {
		return ignore
	}
	n, ok := state.firstCounting(notOnlyBy(ev.SelfID))
	if !ok {
		n = hwsubm.ManualAssignment
	}
	return Decision{Action: ActionRecord, AssignmentNumber: n}
}

func classifyDualSignal(ev Event, state State) Decision {
	evNumber, evCounting := emoji.AssignmentNumber(ev.Emoji)
	if !evCounting && !emoji.IsPurpleCheck(ev.Emoji) {
		return ignore
	}
	if !state.userReacted(ev.UserID, emoji.IsPurpleCheck) && !emoji.IsPurpleCheck(ev.Emoji) {
		return ignore
	}

	n := evNumber
	if !evCounting {
		var ok bool
		n, ok = state.firstCounting(usedBy(ev.UserID))
		if !ok {
			return ignore
		}
	}
	return Decision{Action: ActionRecord, AssignmentNumber: n}
}

func classifyBareCounting(ev Event) Decision {
	n, ok := emoji.AssignmentNumber(ev.Emoji)
	if !ok {
		return ignore
	}
	return Decision{Action: ActionRecordNormalize, AssignmentNumber: n}
}

// InRange reports whether the assignment number is allowed for a class with
// totalAssignments assignments. A total of zero means unlimited.
func (p Policy) InRange(assignment string, totalAssignments int) bool {
	if !p.ValidateRange || totalAssignments <= 0 {
		return true
	}
	n, err := strconv.Atoi(assignment)
	if err != nil {
		return true // "manual"
	}
	return n >= 1 && n <= totalAssignments
}
