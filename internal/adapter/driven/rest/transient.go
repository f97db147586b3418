package rest

import (
	"errors"
	"io"
	"strings"
	"syscall"
)

// IsTransientConnErr classifies the connection drop the service is known to
// produce right after a bulk import, while it finishes internal indexing.
// Depending on timing the drop surfaces as ECONNRESET or as an abrupt EOF on
// the response, so both signatures are covered. Anything else is treated as
// non-transient.
func IsTransientConnErr(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, syscall.ECONNRESET) || errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "connection reset") || strings.Contains(msg, "ECONNRESET")
}
