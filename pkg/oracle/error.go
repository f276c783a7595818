package oracle

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
)

// OracleError wraps provider errors with status metadata.
type OracleError struct {
	Status    int
	Temporary bool
	Err       error
}

func (e *OracleError) Error() string {
	if e == nil {
		return "oracle error"
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return fmt.Sprintf("oracle error (status=%d)", e.Status)
}

func (e *OracleError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// IsRateLimited reports whether an error indicates provider rate limiting,
// either via a 429 status or via the message text. Providers do not agree on
// error shapes, so the message check is the portable signal.
func IsRateLimited(err error) bool {
	if err == nil {
		return false
	}
	var oracleErr *OracleError
	if errors.As(err, &oracleErr) && oracleErr.Status == 429 {
		return true
	}
	msg := strings.ToLower(err.Error())
	for _, marker := range []string{"rate limit", "rate_limit", "429", "too many requests", "quota"} {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}

// IsTransient reports whether an error is safe to retry.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	if errors.Is(err, context.Canceled) {
		return false
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	var oracleErr *OracleError
	if errors.As(err, &oracleErr) {
		if oracleErr.Temporary {
			return true
		}
		if oracleErr.Status == 429 || (oracleErr.Status >= 500 && oracleErr.Status <= 599) {
			return true
		}
	}
	return IsRateLimited(err)
}
