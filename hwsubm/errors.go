package hwsubm

import (
	"fmt"
	"net/http"

	"github.com/programme-lv/hwlog/srvcerror"
)

const ErrCodeStore = "store_error"

// ErrStore wraps a failure of the underlying submission table.
func ErrStore(cause error) *srvcerror.Error {
	return srvcerror.New(
		ErrCodeStore,
		"the submission store is unavailable, please try again later",
	).SetHttpStatusCode(http.StatusInternalServerError).SetDebug(cause)
}

const ErrCodeIncompleteRecord = "incomplete_submission"

func newErrIncompleteRecord(key Key) *srvcerror.Error {
	return srvcerror.New(
		ErrCodeIncompleteRecord,
		"submission is missing a key field",
	).SetHttpStatusCode(http.StatusBadRequest).
		SetDebug(fmt.Errorf("incomplete key %+v", key))
}
