package classdir

import (
	"fmt"
	"net/http"

	"github.com/programme-lv/hwlog/srvcerror"
)

const ErrCodeClassCodeInvalid = "class_code_invalid"

func newErrClassCodeInvalid(minLen, maxLen int) *srvcerror.Error {
	return srvcerror.New(
		ErrCodeClassCodeInvalid,
		fmt.Sprintf("class code should have %d or %d characters", minLen, maxLen),
	).SetHttpStatusCode(http.StatusBadRequest)
}

const ErrCodeNoChannels = "class_no_channels"

func newErrNoChannels() *srvcerror.Error {
	return srvcerror.New(
		ErrCodeNoChannels,
		"no valid channel IDs found",
	).SetHttpStatusCode(http.StatusBadRequest)
}

const ErrCodeRoleTaken = "class_role_taken"

func newErrRoleTaken(existingCode string) *srvcerror.Error {
	return srvcerror.New(
		ErrCodeRoleTaken,
		fmt.Sprintf("this role already has class code `%s`", existingCode),
	).SetHttpStatusCode(http.StatusConflict)
}

const ErrCodeCodeTaken = "class_code_taken"

func newErrCodeTaken(code string) *srvcerror.Error {
	return srvcerror.New(
		ErrCodeCodeTaken,
		fmt.Sprintf("class code `%s` is already registered for another class", code),
	).SetHttpStatusCode(http.StatusConflict)
}

const ErrCodeDirectory = "class_directory_unavailable"

func newErrDirectory() *srvcerror.Error {
	return srvcerror.New(
		ErrCodeDirectory,
		"class directory is unavailable",
	).SetHttpStatusCode(http.StatusInternalServerError)
}
