package aws

import (
	"errors"
	"strings"

	"github.com/aws/smithy-go"
)

// isStackMissing reports whether err is CloudFormation's "stack does not exist"
// validation error.
func isStackMissing(err error) bool {
	var ae smithy.APIError
	if !errors.As(err, &ae) {
		return false
	}
	return ae.ErrorCode() == "ValidationError" && strings.Contains(ae.ErrorMessage(), "does not exist")
}

// isNoUpdates reports whether err is CloudFormation's reply to an update that
// changes nothing.
func isNoUpdates(err error) bool {
	var ae smithy.APIError
	if !errors.As(err, &ae) {
		return false
	}
	return ae.ErrorCode() == "ValidationError" && strings.Contains(ae.ErrorMessage(), "No updates are to be performed")
}

// errorCode returns the API error code of err or "".
func errorCode(err error) string {
	var ae smithy.APIError
	if errors.As(err, &ae) {
		return ae.ErrorCode()
	}
	return ""
}
