package runner

import (
	"errors"
	"io"
	"net"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/pts-bot/mmi2grpc/pkg/discovery"
)

// Runner errors.
var (
	ErrNoScripts        = errors.New("no scripts selected")
	ErrUnknownProfile   = errors.New("no proxy for profile")
	ErrConnectionClosed = errors.New("connection closed before ready")
	errNoAttempts       = errors.New("retryWithBackoff: MaxAttempts must be > 0")
)

// ErrorCategory classifies errors for retry decisions.
type ErrorCategory int

const (
	// ErrCatInfrastructure means network or timing issues that may resolve on retry.
	ErrCatInfrastructure ErrorCategory = iota
	// ErrCatSetup means bad input: scripts, PICS or configuration.
	ErrCatSetup
)

func (c ErrorCategory) String() string {
	switch c {
	case ErrCatInfrastructure:
		return "infrastructure"
	case ErrCatSetup:
		return "setup"
	default:
		return "unknown"
	}
}

// ClassifiedError wraps an error with a category.
type ClassifiedError struct {
	Category ErrorCategory
	Err      error
}

func (e *ClassifiedError) Error() string { return e.Err.Error() }
func (e *ClassifiedError) Unwrap() error { return e.Err }

// Infrastructure wraps an error as retryable.
func Infrastructure(err error) error {
	return &ClassifiedError{Category: ErrCatInfrastructure, Err: err}
}

// Setup wraps an error as non-retryable.
func Setup(err error) error {
	return &ClassifiedError{Category: ErrCatSetup, Err: err}
}

// Category extracts the error category. Unclassified errors are
// treated as setup errors.
func Category(err error) ErrorCategory {
	var ce *ClassifiedError
	if errors.As(err, &ce) {
		return ce.Category
	}
	return ErrCatSetup
}

// classify tags transport-level failures as infrastructure errors.
func classify(err error) error {
	if err == nil {
		return nil
	}
	var netErr net.Error
	switch {
	case errors.Is(err, discovery.ErrNotFound),
		errors.Is(err, io.EOF),
		errors.As(err, &netErr):
		return Infrastructure(err)
	}
	if s, ok := status.FromError(err); ok && s.Code() == codes.Unavailable {
		return Infrastructure(err)
	}
	return Setup(err)
}
