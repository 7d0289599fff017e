package logbook

import (
	"context"
	"errors"
	"fmt"

	"github.com/programme-lv/hwlog/logger"
	"github.com/programme-lv/hwlog/srvcerror"
)

type Service struct {
	gen *Generator
	del *Deliverer
}

func NewService(gen *Generator, del *Deliverer) *Service {
	return &Service{gen: gen, del: del}
}

// Result is what the requester is told.
type Result struct {
	Delivered   bool
	UserMessage string
	Warnings    []string
	Report      *Report
	Delivery    Delivery
}

// Run builds and posts a logbook. Failures are reported in the result.
func (s *Service) Run(ctx context.Context, req Request) Result {
	ctx, _ = logger.WithEventID(ctx)
	ctx = logger.With(ctx, "guild_id", req.GuildID)
	log := logger.FromContext(ctx)

	report, err := s.gen.Build(ctx, req)
	if err != nil {
		log.Info("logbook not built", "error_code", srvcerror.Code(err), "error", err)
		return Result{UserMessage: userMessage(err)}
	}

	delivery, err := s.del.Deliver(ctx, req, report)
	res := Result{Report: report, Delivery: delivery}
	if delivery.Warning != "" {
		res.Warnings = append(res.Warnings, delivery.Warning)
	}
	if err != nil {
		res.UserMessage = userMessage(err)
		return res
	}
	res.Delivered = true
	res.UserMessage = fmt.Sprintf("✅ logbook for `%s` posted to <#%s>", report.Class.ClassCode, delivery.ChannelID)
	return res
}

func userMessage(err error) string {
	var srvcErr *srvcerror.Error
	if errors.As(err, &srvcErr) {
		return "❌ " + srvcErr.Error()
	}
	return "❌ " + srvcerror.ErrInternalSE().Error()
}
