package classdir

import (
	"context"
	"errors"
	"fmt"

	"github.com/guregu/dynamo/v2"
	"github.com/guregu/dynamo/v2/dynamodbiface"
)

// ClassRow is a class as stored in the classes table.
type ClassRow struct {
	ClassCode  string   `dynamo:"classCode,hash"` // Primary key
	RoleID     string   `dynamo:"roleID"`
	ChannelIDs []string `dynamo:"channelIDs"`
	Title      string   `dynamo:"title"`
	ImageURL   string   `dynamo:"image_url,omitempty"`
	Type       string   `dynamo:"type,omitempty"`
	ServerID   string   `dynamo:"serverID,omitempty"`

	TotalAssignments    int `dynamo:"totalAssignments,omitempty"`
	NumberOfAssignments int `dynamo:"numberOfAssignments,omitempty"` // legacy name
}

const fullClassType = "full_class"

func (r *ClassRow) toRecord() *ClassRecord {
	total := r.TotalAssignments
	if total == 0 {
		total = r.NumberOfAssignments
	}
	return &ClassRecord{
		ClassCode:        r.ClassCode,
		RoleID:           r.RoleID,
		ChannelIDs:       r.ChannelIDs,
		Title:            r.Title,
		ImageURL:         r.ImageURL,
		TotalAssignments: total,
		ServerID:         r.ServerID,
	}
}

func rowFromRecord(c ClassRecord) *ClassRow {
	return &ClassRow{
		ClassCode:        c.ClassCode,
		RoleID:           c.RoleID,
		ChannelIDs:       c.ChannelIDs,
		Title:            c.Title,
		ImageURL:         c.ImageURL,
		Type:             fullClassType,
		ServerID:         c.ServerID,
		TotalAssignments: c.TotalAssignments,
	}
}

// DdbClassTable is the DynamoDB backed class registry.
type DdbClassTable struct {
	ddbClient  dynamodbiface.DynamoDBAPI
	tableName  string
	classTable dynamo.Table
}

var _ Registry = (*DdbClassTable)(nil)

func NewDdbClassTable(ddbClient dynamodbiface.DynamoDBAPI, tableName string) *DdbClassTable {
	ddb := &DdbClassTable{
		ddbClient: ddbClient,
		tableName: tableName,
	}
	db := dynamo.NewFromIface(ddb.ddbClient)
	ddb.classTable = db.Table(ddb.tableName)

	return ddb
}

func (ddb *DdbClassTable) FindByCode(ctx context.Context, classCode string) (*ClassRecord, error) {
	row := new(ClassRow)
	err := ddb.classTable.Get("classCode", classCode).One(ctx, row)
	if err != nil {
		if errors.Is(err, dynamo.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get class %s: %w", classCode, err)
	}
	return row.toRecord(), nil
}

func (ddb *DdbClassTable) FindByChannel(ctx context.Context, channelID string) (*ClassRecord, error) {
	var rows []ClassRow
	err := ddb.classTable.Scan().
		Filter("contains($, ?)", "channelIDs", channelID).
		All(ctx, &rows)
	if err != nil {
		return nil, fmt.Errorf("failed to scan classes by channel %s: %w", channelID, err)
	}
	return first(rows), nil
}

func (ddb *DdbClassTable) FindByRole(ctx context.Context, roleID string) (*ClassRecord, error) {
	var rows []ClassRow
	err := ddb.classTable.Scan().
		Filter("$ = ?", "roleID", roleID).
		All(ctx, &rows)
	if err != nil {
		return nil, fmt.Errorf("failed to scan classes by role %s: %w", roleID, err)
	}
	return first(rows), nil
}

// Save validates and upserts a class.
func (ddb *DdbClassTable) Save(ctx context.Context, class ClassRecord) error {
	if err := validateNew(ctx, ddb, &class); err != nil {
		return err
	}
	err := ddb.classTable.Put(rowFromRecord(class)).Run(ctx)
	if err != nil {
		return newErrDirectory().SetDebug(fmt.Errorf("failed to put class %s: %w", class.ClassCode, err))
	}
	return nil
}

func first(rows []ClassRow) *ClassRecord {
	if len(rows) == 0 {
		return nil
	}
	return rows[0].toRecord()
}
