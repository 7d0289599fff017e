// Package logbook builds per-period homework reports ("logbooks") that list,
// for every assignment, the students who submitted it.
package logbook

import (
	"context"
	"errors"
	"sort"
	"strconv"

	"github.com/programme-lv/hwlog/classdir"
	"github.com/programme-lv/hwlog/hwsubm"
	"github.com/programme-lv/hwlog/logger"
	"github.com/programme-lv/hwlog/srvcerror"
)

// Request is one report request as entered by a user.
type Request struct {
	ClassCode string
	StartDate string // YYYY/MM/DD, KST
	StartTime string // HH:MM, KST
	EndDate   string
	EndTime   string

	AllowMultiple bool // keep every submission of a student per assignment
	MinEntries    int  // students with fewer submissions in the window are left out

	GuildID         string
	OriginChannelID string
}

type Entry struct {
	StudentID    string
	MessageID    string
	TimestampUTC int64
}

type Group struct {
	Assignment string
	Entries    []Entry
}

type Report struct {
	Class   classdir.ClassRecord
	Window  Window
	Groups  []Group
	Entries int
	// Students is the number of distinct students in the report.
	Students int
}

type Generator struct {
	dir   classdir.Directory
	store hwsubm.Store
}

func NewGenerator(dir classdir.Directory, store hwsubm.Store) *Generator {
	return &Generator{dir: dir, store: store}
}

func (g *Generator) Build(ctx context.Context, req Request) (*Report, error) {
	log := logger.FromContext(ctx).With("class_code", req.ClassCode)

	class, err := g.dir.FindByCode(ctx, req.ClassCode)
	if err != nil {
		log.Error("failed to look up class", "error", err)
		return nil, srvcerror.ErrInternalSE().SetDebug(err)
	}
	if class == nil {
		return nil, newErrClassNotFound(req.ClassCode)
	}

	window, err := ParseWindow(req.StartDate, req.StartTime, req.EndDate, req.EndTime)
	if err != nil {
		return nil, err
	}

	records, err := g.store.QueryWindow(ctx, class.ClassCode, window.StartUTC, window.EndUTC)
	if err != nil {
		log.Error("failed to query submissions",
			"start_utc", window.StartUTC,
			"end_utc", window.EndUTC,
			"error", err)
		var srvcErr *srvcerror.Error
		if errors.As(err, &srvcErr) {
			return nil, err
		}
		return nil, hwsubm.ErrStore(err)
	}

	groups := Summarize(records, req.AllowMultiple, req.MinEntries)
	if len(groups) == 0 {
		return nil, newErrNoSubmissions()
	}

	report := &Report{
		Class:  *class,
		Window: window,
		Groups: groups,
	}
	students := make(map[string]struct{})
	for _, g := range groups {
		report.Entries += len(g.Entries)
		for _, e := range g.Entries {
			students[e.StudentID] = struct{}{}
		}
	}
	report.Students = len(students)
	log.Info("built logbook",
		"groups", len(groups),
		"entries", report.Entries,
		"records", len(records))
	return report, nil
}

// Summarize groups records by assignment. Unless allowMultiple is set only
// the latest record of a student per assignment is kept. Students with fewer
// than minEntries records in the window are dropped, and so are groups left
// empty. Groups are ordered numerically with non-numeric assignments last;
// entries by submission time.
func Summarize(records []hwsubm.Record, allowMultiple bool, minEntries int) []Group {
	if minEntries < 1 {
		minEntries = 1
	}

	sorted := make([]hwsubm.Record, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].TimestampUTC > sorted[j].TimestampUTC
	})

	totals := make(map[string]int)
	for _, r := range sorted {
		totals[r.StudentID]++
	}

	byAssignment := make(map[string][]Entry)
	seen := make(map[string]map[string]bool) // assignment -> student
	for _, r := range sorted {
		if !allowMultiple {
			if seen[r.AssignmentNumber] == nil {
				seen[r.AssignmentNumber] = make(map[string]bool)
			}
			if seen[r.AssignmentNumber][r.StudentID] {
				continue
			}
			seen[r.AssignmentNumber][r.StudentID] = true
		}
		byAssignment[r.AssignmentNumber] = append(byAssignment[r.AssignmentNumber], Entry{
			StudentID:    r.StudentID,
			MessageID:    r.MessageID,
			TimestampUTC: r.TimestampUTC,
		})
	}

	groups := make([]Group, 0, len(byAssignment))
	for assignment, entries := range byAssignment {
		kept := make([]Entry, 0, len(entries))
		for _, e := range entries {
			if totals[e.StudentID] >= minEntries {
				kept = append(kept, e)
			}
		}
		if len(kept) == 0 {
			continue
		}
		sort.Slice(kept, func(i, j int) bool {
			if kept[i].TimestampUTC != kept[j].TimestampUTC {
				return kept[i].TimestampUTC < kept[j].TimestampUTC
			}
			if kept[i].StudentID != kept[j].StudentID {
				return kept[i].StudentID < kept[j].StudentID
			}
			return kept[i].MessageID < kept[j].MessageID
		})
		groups = append(groups, Group{Assignment: assignment, Entries: kept})
	}

	sort.Slice(groups, func(i, j int) bool {
		return assignmentLess(groups[i].Assignment, groups[j].Assignment)
	})
	return groups
}

func assignmentLess(a, b string) bool {
	na, errA := strconv.Atoi(a)
	nb, errB := strconv.Atoi(b)
	switch {
	case errA == nil && errB == nil:
		return na < nb
	case errA == nil:
		return true
	case errB == nil:
		return false
	}
	return a < b
}
