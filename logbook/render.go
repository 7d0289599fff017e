package logbook

import (
	"fmt"
	"strconv"
	"strings"
)

// Render formats a report as chat markdown.
func Render(report *Report) string {
	var b strings.Builder

	fmt.Fprintf(&b, "📚 **%s** (`%s`)\n", displayTitle(report), report.Class.ClassCode)
	if mention := report.Class.RoleMention(); mention != "" {
		b.WriteString(mention)
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, "📅 %s ~ %s (KST)\n",
		formatKst(report.Window.StartUTC),
		formatKst(report.Window.EndUTC))
	fmt.Fprintf(&b, "%d submissions from %d students\n", report.Entries, report.Students)

	for _, g := range report.Groups {
		b.WriteString("\n")
		b.WriteString(renderGroup(g))
	}
	return b.String()
}

func displayTitle(report *Report) string {
	if t := strings.TrimSpace(report.Class.Title); t != "" {
		return t
	}
	return report.Class.ClassCode
}

// renderGroup lists each student once in order of their first entry; repeated
// submissions are shown as a count.
func renderGroup(g Group) string {
	var order []string
	counts := make(map[string]int)
	for _, e := range g.Entries {
		if counts[e.StudentID] == 0 {
			order = append(order, e.StudentID)
		}
		counts[e.StudentID]++
	}

	mentions := make([]string, 0, len(order))
	for _, id := range order {
		m := "<@" + id + ">"
		if n := counts[id]; n > 1 {
			m += " ×" + strconv.Itoa(n)
		}
		mentions = append(mentions, m)
	}

	label := g.Assignment
	if _, err := strconv.Atoi(label); err == nil {
		label = "Homework " + label
	}
	return fmt.Sprintf("**%s** (%d): %s\n", label, len(order), strings.Join(mentions, " "))
}
