package fetch

import "fmt"

// FetchError is the terminal failure surfaced after retry exhaustion, or a
// non-retryable transport failure. StatusCode is zero when the failure
// happened below the HTTP layer.
type FetchError struct {
	URL        string
	StatusCode int
	Attempts   int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("fetch %s: status %d after %d attempts", e.URL, e.StatusCode, e.Attempts)
	}
	return fmt.Sprintf("fetch %s: %v after %d attempts", e.URL, e.Err, e.Attempts)
}

func (e *FetchError) Unwrap() error { return e.Err }
