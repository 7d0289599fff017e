package classdir_test

import (
	"context"
	"errors"
	"slices"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/guregu/dynamo/v2"
	"github.com/guregu/dynamo/v2/dynamodbiface"
	"github.com/programme-lv/hwlog/classdir"
	"github.com/programme-lv/hwlog/srvcerror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// classDdb keeps class items by code and evaluates the single-condition
// scan filters the class table issues.
type classDdb struct {
	dynamodbiface.DynamoDBAPI
	items   map[string]dynamo.Item
	scans   []*dynamodb.ScanInput
	failGet error
}

func newClassDdb(t *testing.T, rows ...classdir.ClassRow) *classDdb {
	d := &classDdb{items: map[string]dynamo.Item{}}
	for _, r := range rows {
		item, err := dynamo.MarshalItem(r)
		require.NoError(t, err)
		d.items[r.ClassCode] = item
	}
	return d
}

func (d *classDdb) GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	if d.failGet != nil {
		return nil, d.failGet
	}
	code := params.Key["classCode"].(*types.AttributeValueMemberS).Value
	return &dynamodb.GetItemOutput{Item: d.items[code]}, nil
}

func (d *classDdb) PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	code := params.Item["classCode"].(*types.AttributeValueMemberS).Value
	d.items[code] = params.Item
	return &dynamodb.PutItemOutput{}, nil
}

func (d *classDdb) Scan(ctx context.Context, params *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error) {
	d.scans = append(d.scans, params)
	var name, want string
	for _, n := range params.ExpressionAttributeNames {
		name = n
	}
	for _, v := range params.ExpressionAttributeValues {
		want = v.(*types.AttributeValueMemberS).Value
	}
	contains := strings.HasPrefix(*params.FilterExpression, "contains(")

	codes := make([]string, 0, len(d.items))
	for code := range d.items {
		codes = append(codes, code)
	}
	slices.Sort(codes)

	out := &dynamodb.ScanOutput{}
	for _, code := range codes {
		item := d.items[code]
		if matches(item[name], want, contains) {
			out.Items = append(out.Items, item)
		}
	}
	return out, nil
}

func matches(av types.AttributeValue, want string, contains bool) bool {
	switch v := av.(type) {
	case *types.AttributeValueMemberS:
		if contains {
			return strings.Contains(v.Value, want)
		}
		return v.Value == want
	case *types.AttributeValueMemberSS:
		return contains && slices.Contains(v.Value, want)
	case *types.AttributeValueMemberL:
		if !contains {
			return false
		}
		for _, el := range v.Value {
			if s, ok := el.(*types.AttributeValueMemberS); ok && s.Value == want {
				return true
			}
		}
	}
	return false
}

func exampleRow() classdir.ClassRow {
	return classdir.ClassRow{
		ClassCode:        "BA1034",
		RoleID:           "900000000000000001",
		ChannelIDs:       []string{"100000000000000001", "100000000000000002"},
		Title:            "Basic Algebra",
		TotalAssignments: 5,
	}
}

func TestDdbFindByChannelFiltersOnChannelList(t *testing.T) {
	other := exampleRow()
	other.ClassCode = "CH2000"
	other.RoleID = "900000000000000002"
	other.ChannelIDs = []string{"100000000000000009"}
	ddb := newClassDdb(t, exampleRow(), other)
	table := classdir.NewDdbClassTable(ddb, "BA-Class")
	ctx := context.Background()

	c, err := table.FindByChannel(ctx, "100000000000000002")
	require.NoError(t, err)
	require.NotNil(t, c)
	assert.Equal(t, "BA1034", c.ClassCode)
	assert.Equal(t, 5, c.TotalAssignments)

	require.Len(t, ddb.scans, 1)
	scan := ddb.scans[0]
	assert.Equal(t, "BA-Class", *scan.TableName)
	assert.True(t, strings.HasPrefix(*scan.FilterExpression, "contains("))
	require.Len(t, scan.ExpressionAttributeNames, 1)
	for _, name := range scan.ExpressionAttributeNames {
		assert.Equal(t, "channelIDs", name)
	}

	c, err = table.FindByChannel(ctx, "100000000000000777")
	require.NoError(t, err)
	assert.Nil(t, c)
}

func TestDdbFindByCodeNotFound(t *testing.T) {
	table := classdir.NewDdbClassTable(newClassDdb(t, exampleRow()), "BA-Class")
	ctx := context.Background()

	c, err := table.FindByCode(ctx, "ZZ9999")
	require.NoError(t, err)
	assert.Nil(t, c)

	c, err = table.FindByCode(ctx, "BA1034")
	require.NoError(t, err)
	require.NotNil(t, c)
	assert.Equal(t, "<@&900000000000000001>", c.RoleMention())
}

func TestDdbFindByCodeError(t *testing.T) {
	ddb := newClassDdb(t)
	ddb.failGet = errors.New("access denied")
	table := classdir.NewDdbClassTable(ddb, "BA-Class")

	_, err := table.FindByCode(context.Background(), "BA1034")
	require.Error(t, err)
	assert.ErrorContains(t, err, "access denied")
}

func TestDdbSaveChecksExistingClasses(t *testing.T) {
	ddb := newClassDdb(t, exampleRow())
	table := classdir.NewDdbClassTable(ddb, "BA-Class")
	ctx := context.Background()

	sameRole := exampleClass()
	sameRole.ClassCode = "BA2000"
	err := table.Save(ctx, sameRole)
	assert.Equal(t, classdir.ErrCodeRoleTaken, srvcerror.Code(err))

	sameCode := exampleClass()
	sameCode.RoleID = "900000000000000009"
	err = table.Save(ctx, sameCode)
	assert.Equal(t, classdir.ErrCodeCodeTaken, srvcerror.Code(err))
	assert.Len(t, ddb.items, 1)

	fresh := classdir.ClassRecord{
		ClassCode:  "CH2000",
		RoleID:     "900000000000000002",
		ChannelIDs: []string{"100000000000000009", " 100000000000000009 "},
		Title:      "Chemistry",
	}
	require.NoError(t, table.Save(ctx, fresh))
	require.Len(t, ddb.items, 2)

	var stored classdir.ClassRow
	require.NoError(t, dynamo.UnmarshalItem(ddb.items["CH2000"], &stored))
	assert.Equal(t, []string{"100000000000000009"}, stored.ChannelIDs)
	assert.Equal(t, "full_class", stored.Type)

	c, err := table.FindByRole(ctx, "900000000000000002")
	require.NoError(t, err)
	require.NotNil(t, c)
	assert.Equal(t, "CH2000", c.ClassCode)
}
