// Package render provides the browser-rendering collaborator used by
// adapters whose sources only populate the DOM through JavaScript.
package render

import (
	"context"
	"errors"
	"time"
)

// ErrRendererDisabled indicates rendering is unavailable in this process.
// Adapters that need a renderer must surface this as a configuration error
// instead of crashing.
var ErrRendererDisabled = errors.New("renderer disabled")

// Renderer returns fully rendered page markup for a URL. WaitSelector, when
// non-empty, is a CSS selector the renderer waits for before snapshotting;
// settle is an additional delay after navigation.
type Renderer interface {
	Render(ctx context.Context, url string, waitSelector string, settle time.Duration) (string, error)
}

// Disabled is a Renderer that always fails with ErrRendererDisabled. It
// stands in when headless rendering is switched off.
type Disabled struct{}

// Render always returns ErrRendererDisabled.
func (Disabled) Render(context.Context, string, string, time.Duration) (string, error) {
	return "", ErrRendererDisabled
}
