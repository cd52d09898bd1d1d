package wallet

import (
	"errors"
	"fmt"
	"regexp"
)

// ErrorCode classifies wallet channel failures. Codes are the contract;
// the message patterns below are only a fallback for SDKs that surface
// plain error strings.
type ErrorCode string

const (
	CodeNotFound         ErrorCode = "NOT_FOUND"
	CodePending          ErrorCode = "PENDING"
	CodeTimeout          ErrorCode = "TIMEOUT"
	CodeUnknown          ErrorCode = "UNKNOWN"
	CodeRejected         ErrorCode = "REJECTED"
	CodePermissionDenied ErrorCode = "PERMISSION_DENIED"
	CodeUnsupported      ErrorCode = "UNSUPPORTED"
)

// Error is a classified wallet channel error.
type Error struct {
	Code    ErrorCode
	Message string
}

func (e *Error) Error() string {
	if e.Message == "" {
		return string(e.Code)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewError builds a classified wallet error.
func NewError(code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message}
}

// transientPattern matches status-channel errors that mean "not settled yet,
// poll again". Kept for wallet SDKs that only speak message strings.
var transientPattern = regexp.MustCompile(`(?i)not found|pending|timeout|unknown`)

// ignorableHistoryPattern matches history-channel errors that mean the
// capability is missing or was not granted. The history channel is
// best-effort, so these are swallowed rather than surfaced.
var ignorableHistoryPattern = regexp.MustCompile(`(?i)permission|not implemented|unsupported|requesttransactionhistory|uponrequest|onchain history`)

// IsTransient reports whether a status-channel error should be swallowed and
// the poll retried. Classified errors are decided by code; anything else
// falls back to message sniffing.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	var werr *Error
	if errors.As(err, &werr) {
		switch werr.Code {
		case CodeNotFound, CodePending, CodeTimeout, CodeUnknown:
			return true
		}
		return false
	}
	return transientPattern.MatchString(err.Error())
}

// IsIgnorableHistoryError reports whether a history-channel error should be
// swallowed because the wallet lacks (or refused) the capability.
func IsIgnorableHistoryError(err error) bool {
	if err == nil {
		return false
	}
	var werr *Error
	if errors.As(err, &werr) {
		switch werr.Code {
		case CodePermissionDenied, CodeUnsupported:
			return true
		}
		return false
	}
	return ignorableHistoryPattern.MatchString(err.Error())
}
