package logbook

import (
	"context"
	"errors"

	"github.com/programme-lv/hwlog/logger"
	"github.com/programme-lv/hwlog/srvcerror"
)

// Output is where rendered logbooks are posted.
type Output interface {
	ChannelExists(ctx context.Context, channelID string) (bool, error)
	SendText(ctx context.Context, channelID, text string) error
	SendImage(ctx context.Context, channelID, imageURL string) error
}

type Deliverer struct {
	out        Output
	channels   map[string]string // guild ID -> output channel ID
	chunkLimit int
}

func NewDeliverer(out Output, channels map[string]string, chunkLimit int) *Deliverer {
	if chunkLimit <= 0 {
		chunkLimit = DefaultChunkLimit
	}
	m := make(map[string]string, len(channels))
	for k, v := range channels {
		m[k] = v
	}
	return &Deliverer{out: out, channels: m, chunkLimit: chunkLimit}
}

// Delivery reports where a logbook went.
type Delivery struct {
	ChannelID string
	Chunks    int
	Fallback  bool
	Warning   string
}

// Deliver posts the rendered report. When the server has no usable output
// channel the report goes to the origin channel after a warning notice.
func (d *Deliverer) Deliver(ctx context.Context, req Request, report *Report) (Delivery, error) {
	log := logger.FromContext(ctx)

	target, fallbackErr := d.resolve(ctx, req)
	res := Delivery{ChannelID: target}
	if target == "" {
		return res, newErrDelivery().SetDebug(errors.New("no origin channel"))
	}
	if fallbackErr != nil {
		log.Warn("falling back to origin channel",
			"guild_id", req.GuildID,
			"origin_channel_id", req.OriginChannelID,
			"error", fallbackErr)
		res.Fallback = true
		res.Warning = fallbackErr.Error()
		if err := d.out.SendText(ctx, target, "⚠️ "+res.Warning); err != nil {
			log.Warn("failed to send fallback warning", "error", err)
		}
	}

	for i, chunk := range Chunk(Render(report), d.chunkLimit) {
		if err := d.out.SendText(ctx, target, chunk); err != nil {
			log.Error("failed to send logbook chunk", "chunk", i, "channel_id", target, "error", err)
			return res, newErrDelivery().SetDebug(err)
		}
		res.Chunks++
	}

	if report.Class.ImageURL != "" {
		if err := d.out.SendImage(ctx, target, report.Class.ImageURL); err != nil {
			log.Warn("failed to send class image", "channel_id", target, "error", err)
		}
	}
	return res, nil
}

func (d *Deliverer) resolve(ctx context.Context, req Request) (string, *srvcerror.Error) {
	mapped, ok := d.channels[req.GuildID]
	if !ok || mapped == "" {
		return req.OriginChannelID, newErrChannelUnresolvable("")
	}
	exists, err := d.out.ChannelExists(ctx, mapped)
	if err != nil || !exists {
		e := newErrChannelUnresolvable(mapped)
		if err != nil {
			e.SetDebug(err)
		}
		return req.OriginChannelID, e
	}
	return mapped, nil
}
