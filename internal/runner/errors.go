package runner

import "fmt"

// UnknownSourceError reports a requested site key absent from the registry.
type UnknownSourceError struct {
	Key string
}

func (e *UnknownSourceError) Error() string {
	return fmt.Sprintf("unknown site key %q: use --list-sites to see available sources", e.Key)
}

// AdapterError wraps a wholesale extraction failure of one adapter. It is
// fatal for single-source runs and isolated during all-source runs.
type AdapterError struct {
	Key         string
	DisplayName string
	Err         error
}

func (e *AdapterError) Error() string {
	return fmt.Sprintf("source %s (%s): %v", e.DisplayName, e.Key, e.Err)
}

func (e *AdapterError) Unwrap() error { return e.Err }
