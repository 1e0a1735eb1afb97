// Package adapter defines the per-source extraction contract, the shared
// heuristic link-discovery machinery, and the registry that maps stable
// site keys to adapter instances.
package adapter

import (
	"context"

	"go.uber.org/zap"

	"github.com/bkassahun/course-harvester/internal/course"
	"github.com/bkassahun/course-harvester/internal/fetch"
	"github.com/bkassahun/course-harvester/internal/render"
)

// Fetcher is the slice of the fetch client adapters depend on.
type Fetcher interface {
	Get(ctx context.Context, url string) (fetch.Page, error)
}

// Adapter is a named, pluggable extraction strategy for one source.
type Adapter interface {
	// Key is the stable lowercase identifier, unique across the registry.
	Key() string
	// DisplayName is the human-readable source name, copied verbatim into
	// every record's Provider field.
	DisplayName() string
	// IsAllowed gates the adapter; false means the run controller skips it
	// entirely and reports a skipped source, not an error.
	IsAllowed() bool
	// Courses extracts the source's records. A returned error means the
	// source failed wholesale; per-page problems are absorbed internally.
	Courses(ctx context.Context) ([]course.Record, error)
}

// Deps carries the collaborators shared by every adapter. The fetch client
// and renderer are configured once at process start and treated as
// read-only for the remainder of the run.
type Deps struct {
	Fetcher  Fetcher
	Renderer render.Renderer
	Logger   *zap.Logger

	// MaxLinksPerPage caps heuristic discovery on a single catalog page.
	MaxLinksPerPage int
	// DetailPageFetch enables the secondary fetch used to pull a title
	// from each candidate course page.
	DetailPageFetch bool
}

func (d Deps) logger() *zap.Logger {
	if d.Logger == nil {
		return zap.NewNop()
	}
	return d.Logger
}

func (d Deps) renderer() render.Renderer {
	if d.Renderer == nil {
		return render.Disabled{}
	}
	return d.Renderer
}

func (d Deps) maxLinks() int {
	if d.MaxLinksPerPage <= 0 {
		return 200
	}
	return d.MaxLinksPerPage
}

// Override adjusts a single site at registration time, mainly to supply a
// real endpoint for sources shipped with a placeholder domain.
type Override struct {
	BaseURL string
	Enabled *bool
}
