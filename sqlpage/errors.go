package sqlpage

import (
	"context"
	"errors"
	"strings"

	apperrors "github.com/kbukum/lazyseq/errors"
)

var transientPatterns = []string{
	"connection refused",
	"connection reset",
	"broken pipe",
	"i/o timeout",
	"no route to host",
	"network is unreachable",
	"connection closed",
	"driver: bad connection",
	"deadlock",
	"lock timeout",
	"database is locked",
	"too many connections",
}

// isTransient reports whether err is likely to go away on retry.
func isTransient(err error) bool {
	msg := strings.ToLower(err.Error())
	for _, p := range transientPatterns {
		if strings.Contains(msg, p) {
			return true
		}
	}
	return false
}

// fromDatabase converts a database error to an AppError. Context errors
// pass through unchanged.
func fromDatabase(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	appErr := apperrors.DatabaseError(err)
	appErr.Retryable = isTransient(err)
	return appErr
}
