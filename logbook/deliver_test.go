package logbook_test

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/programme-lv/hwlog/classdir"
	"github.com/programme-lv/hwlog/hwsubm"
	"github.com/programme-lv/hwlog/logbook"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sent struct {
	channel string
	text    string
	image   string
}

type fakeOutput struct {
	mu       sync.Mutex
	channels map[string]bool
	failText bool
	sent     []sent
}

func (o *fakeOutput) ChannelExists(ctx context.Context, channelID string) (bool, error) {
	return o.channels[channelID], nil
}

func (o *fakeOutput) SendText(ctx context.Context, channelID, text string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.failText {
		return errors.New("missing access")
	}
	o.sent = append(o.sent, sent{channel: channelID, text: text})
	return nil
}

func (o *fakeOutput) SendImage(ctx context.Context, channelID, imageURL string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.sent = append(o.sent, sent{channel: channelID, image: imageURL})
	return nil
}

func manyRecords() []hwsubm.Record {
	var records []hwsubm.Record
	for i := 0; i < 60; i++ {
		student := fmt.Sprintf("2000000000000001%02d", i)
		for hw := 1; hw <= 10; hw++ {
			records = append(records, rec(student, strconv.Itoa(hw), "m"+student, march1+int64(i)))
		}
	}
	return records
}

func TestServiceDeliversToMappedChannel(t *testing.T) {
	class := testClass()
	class.ImageURL = "https://example.com/class.png"
	out := &fakeOutput{channels: map[string]bool{outChannel: true}}

	store := hwsubm.NewInMemStore()
	for i, student := range []string{studentA, studentB} {
		require.NoError(t, store.Put(context.Background(), rec(student, "1", "m"+student, march1+int64(i))))
	}
	gen := logbook.NewGenerator(classdir.NewInMemDirectory(class), store)
	svc := logbook.NewService(gen, logbook.NewDeliverer(out, map[string]string{guildID: outChannel}, 0))

	res := svc.Run(context.Background(), baseRequest())
	require.True(t, res.Delivered, res.UserMessage)
	assert.Empty(t, res.Warnings)
	assert.Contains(t, res.UserMessage, "<#"+outChannel+">")

	require.Len(t, out.sent, 2)
	assert.Equal(t, outChannel, out.sent[0].channel)
	assert.Contains(t, out.sent[0].text, "**Homework 1** (2)")
	assert.Equal(t, class.ImageURL, out.sent[1].image, "image goes last")
}

func TestServiceFallsBackToOrigin(t *testing.T) {
	cases := []struct {
		name     string
		mapping  map[string]string
		channels map[string]bool
	}{
		{"unmapped guild", map[string]string{}, nil},
		{"missing channel", map[string]string{guildID: outChannel}, map[string]bool{}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			out := &fakeOutput{channels: tc.channels}
			gen := newGenerator(t, rec(studentA, "3", "m1", march1))
			svc := logbook.NewService(gen, logbook.NewDeliverer(out, tc.mapping, 0))

			res := svc.Run(context.Background(), baseRequest())
			require.True(t, res.Delivered)
			require.Len(t, res.Warnings, 1)
			assert.True(t, res.Delivery.Fallback)

			require.GreaterOrEqual(t, len(out.sent), 2)
			assert.True(t, strings.HasPrefix(out.sent[0].text, "⚠️"))
			for _, s := range out.sent {
				assert.Equal(t, originChannel, s.channel)
			}
		})
	}
}

func TestServiceReportsErrorsAsMessages(t *testing.T) {
	out := &fakeOutput{}
	gen := newGenerator(t)
	svc := logbook.NewService(gen, logbook.NewDeliverer(out, nil, 0))

	res := svc.Run(context.Background(), baseRequest())
	assert.False(t, res.Delivered)
	assert.True(t, strings.HasPrefix(res.UserMessage, "❌"))
	assert.Empty(t, out.sent)

	req := baseRequest()
	req.StartTime = "nine"
	res = svc.Run(context.Background(), req)
	assert.False(t, res.Delivered)
	assert.Contains(t, res.UserMessage, "YYYY/MM/DD")
}

func TestServiceDeliveryFailure(t *testing.T) {
	out := &fakeOutput{failText: true}
	gen := newGenerator(t, rec(studentA, "3", "m1", march1))
	svc := logbook.NewService(gen, logbook.NewDeliverer(out, nil, 0))

	res := svc.Run(context.Background(), baseRequest())
	assert.False(t, res.Delivered)
	assert.NotNil(t, res.Report)
	assert.True(t, strings.HasPrefix(res.UserMessage, "❌"))
}

func TestDelivererSplitsLongReports(t *testing.T) {
	out := &fakeOutput{channels: map[string]bool{outChannel: true}}
	gen := newGenerator(t, manyRecords()...)
	report, err := gen.Build(context.Background(), baseRequest())
	require.NoError(t, err)

	d := logbook.NewDeliverer(out, map[string]string{guildID: outChannel}, 500)
	delivery, err := d.Deliver(context.Background(), baseRequest(), report)
	require.NoError(t, err)
	assert.Greater(t, delivery.Chunks, 1)

	var joined strings.Builder
	for _, s := range out.sent {
		joined.WriteString(s.text)
	}
	assert.Equal(t, logbook.Render(report), joined.String())
}
