// Package emoji holds the closed reaction vocabulary of the homework bot:
// counting emoji that name assignment numbers, and the sentinel emoji that
// steer the message's reaction state.
package emoji

import (
	"strconv"
	"strings"
)

const (
	Expand = "⏭️"
	Clear  = "❗"
	Ack    = "👍🏻"
)

const baseLen = 10

// Counting lists the counting emoji in assignment order. Position i holds
// assignment number i+1.
var Counting = []string{
	"1️⃣", "2️⃣", "3️⃣", "4️⃣", "5️⃣", "6️⃣", "7️⃣", "8️⃣", "9️⃣", "🔟",
	"🇦", "🇧", "🇨", "🇩", "🇪", "🇫", "🇬", "🇭", "🇮", "🇯",
	"🇰", "🇱", "🇲", "🇳", "🇴", "🇵", "🇶", "🇷", "🇸", "🇹",
}

var countingIdx = func() map[string]int {
	m := make(map[string]int, len(Counting))
	for i, e := range Counting {
		m[normalize(e)] = i
	}
	return m
}()

// Base returns the first ten counting emoji.
func Base() []string {
	return Counting[:baseLen]
}

// NextBatch returns the counting emoji added by the expand signal.
func NextBatch() []string {
	return Counting[baseLen:]
}

// AssignmentNumber maps a counting emoji to its assignment number string.
func AssignmentNumber(e string) (string, bool) {
	i, ok := countingIdx[normalize(e)]
	if !ok {
		return "", false
	}
	return strconv.Itoa(i + 1), true
}

func IsCounting(e string) bool {
	_, ok := countingIdx[normalize(e)]
	return ok
}

func IsExpand(e string) bool {
	return normalize(e) == normalize(Expand)
}

func IsClear(e string) bool {
	return normalize(e) == normalize(Clear)
}

// IsPurpleCheck matches the approval emoji by name. Custom emoji arrive as
// "<:name:id>", "<a:name:id>" or "name:id"; variant suffixes such as
// "purple_check_2" or "PurpleCheckmark~1" still match.
func IsPurpleCheck(e string) bool {
	name := strings.ToLower(Name(e))
	return strings.Contains(name, "purple") && strings.Contains(name, "check")
}

// Name reduces a custom emoji reference to its name. Unicode emoji are
// returned as they are.
func Name(e string) string {
	e = strings.TrimPrefix(e, "<")
	e = strings.TrimSuffix(e, ">")
	e = strings.TrimPrefix(e, "a:")
	e = strings.TrimPrefix(e, ":")
	if i := strings.Index(e, ":"); i >= 0 {
		e = e[:i]
	}
	return e
}

// normalize drops the emoji presentation selector so that "⏭" and "⏭️"
// compare equal.
func normalize(e string) string {
	return strings.ReplaceAll(e, "\uFE0F", "")
}

// Equal reports whether two emoji strings denote the same emoji.
func Equal(a, b string) bool {
	return normalize(a) == normalize(b)
}
