package http

import (
	"time"

	"github.com/programme-lv/hwlog/classdir"
	"github.com/programme-lv/hwlog/logbook"
)

type Class struct {
	ClassCode        string   `json:"class_code"`
	Title            string   `json:"title"`
	RoleID           string   `json:"role_id,omitempty"`
	ChannelIDs       []string `json:"channel_ids"`
	ImageURL         string   `json:"image_url,omitempty"`
	ServerID         string   `json:"server_id,omitempty"`
	TotalAssignments int      `json:"total_assignments"`
}

type LogbookEntry struct {
	StudentID   string    `json:"student_id"`
	MessageID   string    `json:"message_id"`
	SubmittedAt time.Time `json:"submitted_at"`
}

type LogbookGroup struct {
	Assignment string         `json:"assignment"`
	Entries    []LogbookEntry `json:"entries"`
}

type Logbook struct {
	Class    Class          `json:"class"`
	StartUTC time.Time      `json:"start_utc"`
	EndUTC   time.Time      `json:"end_utc"`
	Groups   []LogbookGroup `json:"groups"`
	Entries  int            `json:"entries"`
	Students int            `json:"students"`
	// Text is the report as it is posted to chat.
	Text string `json:"text"`
}

func mapClass(c *classdir.ClassRecord) Class {
	channels := c.ChannelIDs
	if channels == nil {
		channels = []string{}
	}
	return Class{
		ClassCode:        c.ClassCode,
		Title:            c.Title,
		RoleID:           c.RoleID,
		ChannelIDs:       channels,
		ImageURL:         c.ImageURL,
		ServerID:         c.ServerID,
		TotalAssignments: c.TotalAssignments,
	}
}

func mapLogbook(r *logbook.Report) Logbook {
	groups := make([]LogbookGroup, 0, len(r.Groups))
	for _, g := range r.Groups {
		entries := make([]LogbookEntry, 0, len(g.Entries))
		for _, e := range g.Entries {
			entries = append(entries, LogbookEntry{
				StudentID:   e.StudentID,
				MessageID:   e.MessageID,
				SubmittedAt: time.Unix(e.TimestampUTC, 0).UTC(),
			})
		}
		groups = append(groups, LogbookGroup{Assignment: g.Assignment, Entries: entries})
	}
	return Logbook{
		Class:    mapClass(&r.Class),
		StartUTC: time.Unix(r.Window.StartUTC, 0).UTC(),
		EndUTC:   time.Unix(r.Window.EndUTC, 0).UTC(),
		Groups:   groups,
		Entries:  r.Entries,
		Students: r.Students,
		Text:     logbook.Render(r),
	}
}
