package ops

// messages.go maps technical errors to user-facing messages with a code that
// can be quoted to support.
//
//	FMT001  - Unsupported file format (.csv, .xls and .xlsx are read)
//	SRC001  - Source is not a table
//	ARG001  - In-place function application without a target column
//	COL001  - Column not found
//	DUP001  - Duplicate keys remain after a drop
//	SNP001  - Input snapshot was not kept
//	FILE001 - File not found
//	FILE002 - File is not valid CSV / has no header
//	ERR000  - Anything else
//
// Sentinel errors are matched with errors.Is first; otherwise the lowercased
// error text is searched for the known substrings in table order.

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/JonMunkholm/basedata/internal/frame"
)

// UserMessage is a user-facing description of an error.
type UserMessage struct {
	Message string `json:"message"`
	Action  string `json:"action"`
	Code    string `json:"code"`
}

type errorPattern struct {
	target  error
	pattern string
	msg     UserMessage
}

var (
	msgUnsupported = UserMessage{
		Message: "This file type is not supported",
		Action:  "Provide a .csv, .xls or .xlsx file",
		Code:    "FMT001",
	}
	msgSource = UserMessage{
		Message: "The source does not contain a table",
		Action:  "Pass a table or an object that wraps one",
		Code:    "SRC001",
	}
	msgTarget = UserMessage{
		Message: "A target column is required",
		Action:  "Name the column that should receive the result",
		Code:    "ARG001",
	}
	msgColumn = UserMessage{
		Message: "Column not found",
		Action:  "Check the column name against the file header",
		Code:    "COL001",
	}
	msgDupes = UserMessage{
		Message: "Duplicate keys remain after the drop",
		Action:  "Review the duplicate report and drop the remaining rows",
		Code:    "DUP001",
	}
	msgSnapshot = UserMessage{
		Message: "The original input was not kept",
		Action:  "Reload the file with the input snapshot enabled",
		Code:    "SNP001",
	}
	msgNotFound = UserMessage{
		Message: "File not found",
		Action:  "Check the path and try again",
		Code:    "FILE001",
	}
	msgInvalidCSV = UserMessage{
		Message: "File is not a valid CSV",
		Action:  "Ensure the file has a header row and consistent columns",
		Code:    "FILE002",
	}
)

var errorPatterns = []errorPattern{
	{target: ErrUnsupportedFormat, pattern: "unsupported file format", msg: msgUnsupported},
	{target: ErrInvalidSource, pattern: "invalid source", msg: msgSource},
	{target: ErrMissingTarget, pattern: "target column required", msg: msgTarget},
	{target: ErrColumnNotFound, pattern: "column not found", msg: msgColumn},
	{target: ErrDuplicates, pattern: "duplicate keys", msg: msgDupes},
	{target: ErrNoSnapshot, pattern: "snapshot not retained", msg: msgSnapshot},
	{target: fs.ErrNotExist, pattern: "no such file", msg: msgNotFound},
	{target: frame.ErrEmptyInput, pattern: "parse error", msg: msgInvalidCSV},
	{pattern: "wrong number of fields", msg: msgInvalidCSV},
	{pattern: "bare \" in non-quoted-field", msg: msgInvalidCSV},
}

// defaultMessage is returned when nothing matches (ERR000).
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-facing message. A nil error
// maps to the zero UserMessage.
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	for _, ep := range errorPatterns {
		if ep.target != nil && errors.Is(err, ep.target) {
			return ep.msg
		}
	}

	errStr := strings.ToLower(err.Error())
	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
	}

	return defaultMessage
}

// FormatUserError renders err as "Message (Code: XXX). Action".
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing reports whether err maps to a specific message rather than
// ERR000.
func IsUserFacing(err error) bool {
	return err != nil && MapError(err).Code != defaultMessage.Code
}
