package logbook

import (
	"fmt"
	"net/http"

	"github.com/programme-lv/hwlog/srvcerror"
)

const ErrCodeClassNotFound = "class_not_found"

func newErrClassNotFound(classCode string) *srvcerror.Error {
	return srvcerror.New(
		ErrCodeClassNotFound,
		fmt.Sprintf("class code %s not found", classCode),
	).SetHttpStatusCode(http.StatusNotFound)
}

const ErrCodeInvalidTimeRange = "invalid_time_range"

func newErrInvalidTimeFormat() *srvcerror.Error {
	return srvcerror.New(
		ErrCodeInvalidTimeRange,
		"invalid date/time format, use YYYY/MM/DD HH:MM",
	).SetHttpStatusCode(http.StatusBadRequest)
}

func newErrInvertedTimeRange() *srvcerror.Error {
	return srvcerror.New(
		ErrCodeInvalidTimeRange,
		"the start of the period must not be after its end",
	).SetHttpStatusCode(http.StatusBadRequest)
}

const ErrCodeNoSubmissions = "no_submissions"

func newErrNoSubmissions() *srvcerror.Error {
	return srvcerror.New(
		ErrCodeNoSubmissions,
		"no homework submissions found in this period",
	).SetHttpStatusCode(http.StatusNotFound)
}

const ErrCodeChannelUnresolvable = "channel_unresolvable"

func newErrChannelUnresolvable(channelID string) *srvcerror.Error {
	msg := "no logbook channel is configured for this server, posting here instead"
	if channelID != "" {
		msg = fmt.Sprintf("logbook channel <#%s> could not be resolved, posting here instead", channelID)
	}
	return srvcerror.New(ErrCodeChannelUnresolvable, msg).
		SetHttpStatusCode(http.StatusBadGateway)
}

const ErrCodeDelivery = "delivery_failed"

func newErrDelivery() *srvcerror.Error {
	return srvcerror.New(
		ErrCodeDelivery,
		"failed to post the logbook",
	).SetHttpStatusCode(http.StatusBadGateway)
}
