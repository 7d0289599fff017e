package hwsubm

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
)

const DefaultWindowIndex = "class_code-unix_timestamp-index"

// SubmRow is a submission as stored in the homework table.
type SubmRow struct {
	ClassCode string `dynamodbav:"class_code"` // partition key
	SubmKey   string `dynamodbav:"subm_key"`   // <message_id>#<student_id>#<assignment_number>

	MessageID        string `dynamodbav:"message_id"`
	ChannelID        string `dynamodbav:"channel_id"`
	StudentID        string `dynamodbav:"student_id"`
	AssignmentNumber string `dynamodbav:"assignment_number"`
	Type             string `dynamodbav:"type"` // "homework"

	UnixTimestamp int64 `dynamodbav:"unix_timestamp"` // gsi sort key
}

func rowFromRecord(rec Record) SubmRow {
	return SubmRow{
		ClassCode:        rec.ClassCode,
		SubmKey:          rec.Key().SortKey(),
		MessageID:        rec.MessageID,
		ChannelID:        rec.ChannelID,
		StudentID:        rec.StudentID,
		AssignmentNumber: rec.AssignmentNumber,
		Type:             rec.Kind,
		UnixTimestamp:    rec.TimestampUTC,
	}
}

func (r SubmRow) toRecord() Record {
	return Record{
		ClassCode:        r.ClassCode,
		MessageID:        r.MessageID,
		ChannelID:        r.ChannelID,
		StudentID:        r.StudentID,
		AssignmentNumber: r.AssignmentNumber,
		TimestampUTC:     r.UnixTimestamp,
		Kind:             r.Type,
	}
}

// DdbAPI is the part of *dynamodb.Client the submission table needs.
type DdbAPI interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	dynamodb.QueryAPIClient
}

// DdbSubmTable keeps submissions in DynamoDB. The table key is
// (class_code, subm_key) so repeated puts overwrite; window queries go
// through a class_code/unix_timestamp secondary index.
type DdbSubmTable struct {
	ddbClient   DdbAPI
	tableName   string
	windowIndex string
}

var _ Store = (*DdbSubmTable)(nil)

func NewDdbSubmTable(ddbClient DdbAPI, tableName string, windowIndex string) *DdbSubmTable {
	if windowIndex == "" {
		windowIndex = DefaultWindowIndex
	}
	return &DdbSubmTable{
		ddbClient:   ddbClient,
		tableName:   tableName,
		windowIndex: windowIndex,
	}
}

func (ddb *DdbSubmTable) Put(ctx context.Context, rec Record) error {
	if err := validateRecord(&rec); err != nil {
		return err
	}
	item, err := attributevalue.MarshalMap(rowFromRecord(rec))
	if err != nil {
		return ErrStore(fmt.Errorf("failed to marshal submission: %w", err))
	}
	_, err = ddb.ddbClient.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(ddb.tableName),
		Item:      item,
	})
	if err != nil {
		return ErrStore(fmt.Errorf("failed to put submission %s: %w", rec.Key().SortKey(), err))
	}
	return nil
}

func (ddb *DdbSubmTable) QueryWindow(ctx context.Context, classCode string, startUTC, endUTC int64) ([]Record, error) {
	queryInput, err := ddb.windowQuery(classCode, startUTC, endUTC)
	if err != nil {
		return nil, ErrStore(err)
	}

	var rows []SubmRow
	paginator := dynamodb.NewQueryPaginator(ddb.ddbClient, queryInput)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, ErrStore(fmt.Errorf("failed to query submissions: %w", err))
		}
		var pageRows []SubmRow
		err = attributevalue.UnmarshalListOfMaps(page.Items, &pageRows)
		if err != nil {
			return nil, ErrStore(fmt.Errorf("failed to unmarshal submissions: %w", err))
		}
		rows = append(rows, pageRows...)
	}

	records := make([]Record, 0, len(rows))
	for _, row := range rows {
		records = append(records, row.toRecord())
	}
	return records, nil
}

func (ddb *DdbSubmTable) windowQuery(classCode string, startUTC, endUTC int64) (*dynamodb.QueryInput, error) {
	keyCond := expression.Key("class_code").Equal(expression.Value(classCode)).And(
		expression.Key("unix_timestamp").Between(expression.Value(startUTC), expression.Value(endUTC)))
	expr, err := expression.NewBuilder().WithKeyCondition(keyCond).Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build window query: %w", err)
	}
	return &dynamodb.QueryInput{
		TableName:                 aws.String(ddb.tableName),
		IndexName:                 aws.String(ddb.windowIndex),
		KeyConditionExpression:    expr.KeyCondition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	}, nil
}
