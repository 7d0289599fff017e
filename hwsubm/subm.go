// Package hwsubm stores homework submissions detected from reactions.
package hwsubm

import (
	"context"
	"strings"
)

const KindHomework = "homework"

// ManualAssignment is the assignment number of a submission approved
// without a counting emoji.
const ManualAssignment = "manual"

// Record is one submission of one student for one assignment, made through
// one message.
type Record struct {
	ClassCode        string
	MessageID        string
	ChannelID        string
	StudentID        string
	AssignmentNumber string
	TimestampUTC     int64 // unix seconds
	Kind             string
}

// Key identifies a record. Two puts with the same key store one record.
type Key struct {
	ClassCode        string
	MessageID        string
	StudentID        string
	AssignmentNumber string
}

func (r Record) Key() Key {
	return Key{
		ClassCode:        r.ClassCode,
		MessageID:        r.MessageID,
		StudentID:        r.StudentID,
		AssignmentNumber: r.AssignmentNumber,
	}
}

// SortKey encodes the part of the key below the class code.
func (k Key) SortKey() string {
	return strings.Join([]string{k.MessageID, k.StudentID, k.AssignmentNumber}, "#")
}

type Store interface {
	// Put upserts the record by its key.
	Put(ctx context.Context, rec Record) error
	// QueryWindow returns every record of the class with
	// startUTC <= TimestampUTC <= endUTC.
	QueryWindow(ctx context.Context, classCode string, startUTC, endUTC int64) ([]Record, error)
}

func validateRecord(rec *Record) error {
	if rec.ClassCode == "" || rec.MessageID == "" || rec.StudentID == "" || rec.AssignmentNumber == "" {
		return newErrIncompleteRecord(rec.Key())
	}
	if rec.Kind == "" {
		rec.Kind = KindHomework
	}
	return nil
}
