package logbook_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/programme-lv/hwlog/classdir"
	"github.com/programme-lv/hwlog/hwsubm"
	"github.com/programme-lv/hwlog/logbook"
	"github.com/programme-lv/hwlog/srvcerror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	guildID       = "300000000000000001"
	originChannel = "100000000000000001"
	outChannel    = "100000000000000050"
	studentA      = "200000000000000001"
	studentB      = "200000000000000002"
	studentC      = "200000000000000003"

	// 2024/03/01 09:00 KST
	march1 int64 = 1709251200
)

func testClass() classdir.ClassRecord {
	return classdir.ClassRecord{
		ClassCode:        "BA1034",
		RoleID:           "900000000000000001",
		ChannelIDs:       []string{originChannel},
		Title:            "Basic Algebra",
		TotalAssignments: 10,
	}
}

func rec(student, assignment, msg string, ts int64) hwsubm.Record {
	return hwsubm.Record{
		ClassCode:        "BA1034",
		MessageID:        msg,
		ChannelID:        originChannel,
		StudentID:        student,
		AssignmentNumber: assignment,
		TimestampUTC:     ts,
	}
}

func baseRequest() logbook.Request {
	return logbook.Request{
		ClassCode:       "BA1034",
		StartDate:       "2024/03/01",
		StartTime:       "09:00",
		EndDate:         "2024/03/07",
		EndTime:         "23:59",
		MinEntries:      1,
		GuildID:         guildID,
		OriginChannelID: originChannel,
	}
}

func newGenerator(t *testing.T, records ...hwsubm.Record) *logbook.Generator {
	t.Helper()
	store := hwsubm.NewInMemStore()
	for _, r := range records {
		require.NoError(t, store.Put(context.Background(), r))
	}
	return logbook.NewGenerator(classdir.NewInMemDirectory(testClass()), store)
}

func TestParseWindowUsesKst(t *testing.T) {
	w, err := logbook.ParseWindow("2024/03/01", "09:00", "2024/03/01", "10:30")
	require.NoError(t, err)
	assert.Equal(t, march1, w.StartUTC)
	assert.Equal(t, march1+90*60, w.EndUTC)

	w, err = logbook.ParseWindow("2024/3/1", "9:00", "2024/3/1", "09:00")
	require.NoError(t, err)
	assert.Equal(t, w.StartUTC, w.EndUTC)
}

func TestParseWindowRejectsBadInput(t *testing.T) {
	cases := []struct {
		name           string
		sd, st, ed, et string
	}{
		{"garbage date", "yesterday", "09:00", "2024/03/01", "10:00"},
		{"bad time", "2024/03/01", "25:00", "2024/03/01", "10:00"},
		{"dash separated", "2024-03-01", "09:00", "2024/03/01", "10:00"},
		{"inverted", "2024/03/02", "09:00", "2024/03/01", "10:00"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := logbook.ParseWindow(tc.sd, tc.st, tc.ed, tc.et)
			require.Error(t, err)
			assert.Equal(t, logbook.ErrCodeInvalidTimeRange, srvcerror.Code(err))
		})
	}
}

func TestSummarizeKeepsLatestPerStudent(t *testing.T) {
	records := []hwsubm.Record{
		rec(studentA, "2", "m1", march1+10),
		rec(studentA, "2", "m2", march1+30),
		rec(studentA, "2", "m3", march1+20),
		rec(studentB, "2", "m4", march1+5),
		rec(studentA, "3", "m5", march1+1),
	}
	groups := logbook.Summarize(records, false, 1)
	require.Len(t, groups, 2)

	assert.Equal(t, "2", groups[0].Assignment)
	require.Len(t, groups[0].Entries, 2)
	assert.Equal(t, studentB, groups[0].Entries[0].StudentID)
	assert.Equal(t, studentA, groups[0].Entries[1].StudentID)
	assert.Equal(t, "m2", groups[0].Entries[1].MessageID)
	assert.Equal(t, march1+30, groups[0].Entries[1].TimestampUTC)

	assert.Equal(t, "3", groups[1].Assignment)

	for _, g := range groups {
		seen := map[string]bool{}
		for _, e := range g.Entries {
			assert.False(t, seen[e.StudentID], "student %s twice in %s", e.StudentID, g.Assignment)
			seen[e.StudentID] = true
		}
	}
}

func TestSummarizeAllowMultiple(t *testing.T) {
	records := []hwsubm.Record{
		rec(studentA, "2", "m1", march1+10),
		rec(studentA, "2", "m2", march1+30),
	}
	groups := logbook.Summarize(records, true, 1)
	require.Len(t, groups, 1)
	assert.Len(t, groups[0].Entries, 2)
}

func TestSummarizeMinEntries(t *testing.T) {
	records := []hwsubm.Record{
		rec(studentA, "1", "m1", march1+1),
		rec(studentA, "2", "m2", march1+2),
		rec(studentB, "1", "m3", march1+3),
		rec(studentC, "4", "m4", march1+4),
		rec(studentB, "1", "m5", march1+5),
	}
	groups := logbook.Summarize(records, false, 2)
	require.Len(t, groups, 2)
	assert.Equal(t, "1", groups[0].Assignment)
	require.Len(t, groups[0].Entries, 2)
	assert.Equal(t, studentA, groups[0].Entries[0].StudentID)
	assert.Equal(t, studentB, groups[0].Entries[1].StudentID)
	assert.Equal(t, "m5", groups[0].Entries[1].MessageID)
	assert.Equal(t, "2", groups[1].Assignment)

	withMultiple := logbook.Summarize(records, true, 2)
	var students []string
	for _, g := range withMultiple {
		for _, e := range g.Entries {
			students = append(students, e.StudentID)
		}
	}
	assert.Equal(t, []string{studentA, studentB, studentB, studentA}, students)
	assert.NotContains(t, students, studentC)
}

func TestSummarizeMinEntriesCountsRepeatsWithoutMultiple(t *testing.T) {
	records := []hwsubm.Record{
		rec(studentA, "2", "m1", march1+1),
		rec(studentA, "2", "m2", march1+2),
	}
	groups := logbook.Summarize(records, false, 2)
	require.Len(t, groups, 1)
	require.Len(t, groups[0].Entries, 1)
	assert.Equal(t, "m2", groups[0].Entries[0].MessageID)

	assert.Empty(t, logbook.Summarize(records, false, 3))
}

func TestSummarizeOrdersAssignments(t *testing.T) {
	records := []hwsubm.Record{
		rec(studentA, "10", "m1", march1),
		rec(studentA, "manual", "m2", march1),
		rec(studentA, "2", "m3", march1),
		rec(studentA, "bonus", "m4", march1),
		rec(studentA, "1", "m5", march1),
	}
	groups := logbook.Summarize(records, false, 1)
	var order []string
	for _, g := range groups {
		order = append(order, g.Assignment)
	}
	assert.Equal(t, []string{"1", "2", "10", "bonus", "manual"}, order)
}

func TestBuildSameStudentTwiceUnderHomework2(t *testing.T) {
	gen := newGenerator(t,
		rec(studentA, "2", "m1", march1+60),
		rec(studentA, "2", "m2", march1+120),
	)
	report, err := gen.Build(context.Background(), baseRequest())
	require.NoError(t, err)

	text := logbook.Render(report)
	assert.Contains(t, text, "**Homework 2** (1): <@"+studentA+">\n")
	assert.Equal(t, 1, strings.Count(text, "<@"+studentA+">"))
	assert.Contains(t, text, "📚 **Basic Algebra** (`BA1034`)")
	assert.Contains(t, text, "<@&900000000000000001>")
	assert.Contains(t, text, "📅 2024/03/01 09:00 ~ 2024/03/07 23:59 (KST)")
}

func TestBuildErrors(t *testing.T) {
	ctx := context.Background()
	gen := newGenerator(t, rec(studentA, "2", "m1", march1-1))

	req := baseRequest()
	req.ClassCode = "XX0000"
	_, err := gen.Build(ctx, req)
	assert.Equal(t, logbook.ErrCodeClassNotFound, srvcerror.Code(err))

	req = baseRequest()
	req.EndDate = "2024/02/01"
	_, err = gen.Build(ctx, req)
	assert.Equal(t, logbook.ErrCodeInvalidTimeRange, srvcerror.Code(err))

	_, err = gen.Build(ctx, baseRequest())
	assert.Equal(t, logbook.ErrCodeNoSubmissions, srvcerror.Code(err))
}

type brokenStore struct{ hwsubm.Store }

func (brokenStore) QueryWindow(context.Context, string, int64, int64) ([]hwsubm.Record, error) {
	return nil, errors.New("table unavailable")
}

func TestBuildStoreFailure(t *testing.T) {
	gen := logbook.NewGenerator(classdir.NewInMemDirectory(testClass()), brokenStore{})
	_, err := gen.Build(context.Background(), baseRequest())
	assert.Equal(t, hwsubm.ErrCodeStore, srvcerror.Code(err))
}

func TestRenderMultipleEntries(t *testing.T) {
	report := &logbook.Report{
		Class: testClass(),
		Groups: []logbook.Group{{
			Assignment: "1",
			Entries: []logbook.Entry{
				{StudentID: studentA}, {StudentID: studentB}, {StudentID: studentA},
			},
		}},
	}
	assert.Contains(t, logbook.Render(report), "**Homework 1** (2): <@"+studentA+"> ×2 <@"+studentB+">\n")
}

func TestChunkLaw(t *testing.T) {
	var b strings.Builder
	for i := 0; i < 200; i++ {
		b.WriteString("**Homework 1** (3): <@200000000000000001> <@200000000000000002>\n")
	}
	b.WriteString(strings.Repeat("é", 450))
	b.WriteString("\nlast line")
	text := b.String()

	for _, limit := range []int{100, 333, 1900} {
		chunks := logbook.Chunk(text, limit)
		assert.Equal(t, text, strings.Join(chunks, ""), "limit %d", limit)
		for i, c := range chunks {
			n := utf8.RuneCountInString(c)
			assert.LessOrEqual(t, n, limit, "limit %d chunk %d", limit, i)
			assert.Greater(t, n, 0)
			if i < len(chunks)-1 && !strings.HasSuffix(c, "\n") {
				// only an overlong line may be cut, and only at the limit
				assert.NotContains(t, c, "\n", "limit %d chunk %d", limit, i)
				assert.Equal(t, limit, n, "limit %d chunk %d", limit, i)
			}
		}
	}
}

func TestChunkSmallText(t *testing.T) {
	assert.Nil(t, logbook.Chunk("", 10))
	assert.Equal(t, []string{"a\nb\n"}, logbook.Chunk("a\nb\n", 10))
	assert.Equal(t, []string{"ab\n", "cd"}, logbook.Chunk("ab\ncd", 3))
	assert.Equal(t, []string{"abc", "de"}, logbook.Chunk("abcde", 3))
}
