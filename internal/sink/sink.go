// Package sink persists aggregated course records to tabular output.
package sink

import (
	"context"

	"github.com/bkassahun/course-harvester/internal/course"
)

// Sink serializes a fully aggregated record batch. Implementations write
// atomically: a failed run must leave no partial output behind.
type Sink interface {
	Write(ctx context.Context, records []course.Record) error
}
