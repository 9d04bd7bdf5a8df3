package remote

import "fmt"

// Failure classification for store errors. The drain retries wholesale on
// the next connectivity edge either way; the category drives logging and
// lets callers distinguish transient transport trouble from requests the
// store will never accept.

// Category determines how a store failure should be treated.
type Category int

const (
	// Transient failures may succeed on a later attempt: 5xx, timeouts,
	// connection resets.
	Transient Category = iota

	// Permanent failures will not succeed on retry without a change:
	// 400, 401, 403, 404 and other client-side rejections.
	Permanent
)

// String returns a human-readable representation of the category.
func (c Category) String() string {
	switch c {
	case Transient:
		return "transient"
	case Permanent:
		return "permanent"
	default:
		return fmt.Sprintf("unknown(%d)", int(c))
	}
}

// StoreError wraps a store failure with categorization metadata.
type StoreError struct {
	Category   Category
	StatusCode int    // HTTP status when applicable, 0 otherwise
	Body       string // response body for debugging
	Underlying error
}

// Error implements the error interface.
func (e *StoreError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("[%s] HTTP %d: %v", e.Category, e.StatusCode, e.Underlying)
	}
	return fmt.Sprintf("[%s] %v", e.Category, e.Underlying)
}

// Unwrap returns the underlying error for error chain compatibility.
func (e *StoreError) Unwrap() error { return e.Underlying }

// ClassifyHTTP maps an HTTP failure status onto a StoreError.
func ClassifyHTTP(statusCode int, body string, operation string) *StoreError {
	return &StoreError{
		Category:   categoryForStatus(statusCode),
		StatusCode: statusCode,
		Body:       body,
		Underlying: fmt.Errorf("%s failed: HTTP %d", operation, statusCode),
	}
}

// ClassifyNetwork wraps a transport-level failure. Network errors are always
// transient: the next attempt may reach the store.
func ClassifyNetwork(operation string, err error) *StoreError {
	return &StoreError{
		Category:   Transient,
		Underlying: fmt.Errorf("%s network error: %w", operation, err),
	}
}

func categoryForStatus(statusCode int) Category {
	switch {
	case statusCode >= 400 && statusCode < 500:
		switch statusCode {
		case 408, 429:
			return Transient
		default:
			return Permanent
		}
	case statusCode >= 500 && statusCode < 600:
		return Transient
	default:
		return Transient
	}
}

// IsPermanent reports whether err is a store failure that retrying cannot
// fix.
func IsPermanent(err error) bool {
	if classified, ok := err.(*StoreError); ok {
		return classified.Category == Permanent
	}
	return false
}
