package adapter

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/bkassahun/course-harvester/internal/course"
)

// siteDef describes one heuristically-crawled source.
type siteDef struct {
	key     string
	name    string
	baseURL string
	// pattern selects candidate course links by URL keyword.
	pattern string
	// catalogPaths are crawled in addition to the base URL.
	catalogPaths []string
	// listSelector, when set, targets a known listing structure (e.g.
	// Moodle course boxes) instead of the generic anchor sweep; anchors it
	// matches bypass the keyword pattern and use their own text as title.
	listSelector string
	// subject/language are fixed source-wide metadata values.
	subject  string
	language string
}

// Site is the generic heuristic link-discovery adapter used by sources
// whose HTML structure is unknown: sweep anchors, keep same-origin +
// keyword matches, then pull a title from each surviving page.
type Site struct {
	def     siteDef
	base    *url.URL
	pattern *regexp.Regexp
	enabled bool
	deps    Deps
}

// newSite builds a Site, applying the registration-time override. Sources
// left on a placeholder domain stay registered but gated off until a real
// endpoint is configured.
func newSite(def siteDef, ov Override, deps Deps) (*Site, error) {
	if ov.BaseURL != "" {
		def.baseURL = ov.BaseURL
	}
	base, err := url.Parse(def.baseURL)
	if err != nil {
		return nil, fmt.Errorf("site %s: parse base url: %w", def.key, err)
	}

	pattern := def.pattern
	if pattern == "" {
		pattern = `course|training|program`
	}
	re, err := regexp.Compile(`(?i)` + pattern)
	if err != nil {
		return nil, fmt.Errorf("site %s: compile pattern: %w", def.key, err)
	}

	enabled := !isPlaceholderHost(base.Host)
	if ov.Enabled != nil {
		enabled = *ov.Enabled
	}

	return &Site{
		def:     def,
		base:    base,
		pattern: re,
		enabled: enabled,
		deps:    deps,
	}, nil
}

func isPlaceholderHost(host string) bool {
	return host == "" || strings.HasSuffix(strings.ToLower(host), ".example")
}

func (s *Site) Key() string         { return s.def.key }
func (s *Site) DisplayName() string { return s.def.name }

// IsAllowed reports whether the source may be scraped. Placeholder-domain
// sources answer false until configured.
func (s *Site) IsAllowed() bool { return s.enabled }

// Courses crawls the catalog pages and yields one record per discovered
// course link. Individual page failures are absorbed; the adapter only
// fails wholesale when no catalog page was reachable.
func (s *Site) Courses(ctx context.Context) ([]course.Record, error) {
	log := s.deps.logger().With(zap.String("site", s.def.key))

	pages := []string{s.base.String()}
	for _, p := range s.def.catalogPaths {
		if resolved, ok := resolveSameOrigin(s.base, p); ok {
			pages = append(pages, resolved)
		}
	}

	var (
		records   []course.Record
		reachable bool
		lastErr   error
		seen      = make(map[string]bool)
	)
	for _, pageURL := range pages {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		page, err := s.deps.Fetcher.Get(ctx, pageURL)
		if err != nil {
			lastErr = err
			log.Debug("catalog page fetch failed", zap.String("url", pageURL), zap.Error(err))
			continue
		}
		reachable = true

		doc, err := parseHTML(page.Text())
		if err != nil {
			log.Debug("catalog page parse failed", zap.String("url", pageURL), zap.Error(err))
			continue
		}

		if s.def.listSelector != "" {
			records = append(records, s.extractListing(doc, seen)...)
		}
		more, err := s.extractHeuristic(ctx, doc, seen)
		if err != nil {
			return nil, err
		}
		records = append(records, more...)
	}

	if !reachable {
		return nil, fmt.Errorf("catalog unreachable at %s: %w", s.base, lastErr)
	}
	log.Debug("site crawl finished", zap.Int("records", len(records)))
	return records, nil
}

// extractListing handles sources with a known listing structure: the
// anchor's own text is the title, no secondary fetch.
func (s *Site) extractListing(doc *goquery.Document, seen map[string]bool) []course.Record {
	var records []course.Record
	doc.Find(s.def.listSelector).Each(func(_ int, sel *goquery.Selection) {
		href, ok := sel.Attr("href")
		if !ok {
			return
		}
		link, ok := resolveSameOrigin(s.base, strings.TrimSpace(href))
		if !ok || seen[link] {
			return
		}
		seen[link] = true
		title := cleanText(sel.Text())
		if title == "" {
			title = link
		}
		records = append(records, s.record(link, title))
	})
	return records
}

// extractHeuristic sweeps every anchor on the page and keeps same-origin
// links matching the source's keyword pattern. For each surviving link a
// secondary fetch tries to pull a title from the first heading, falling
// back to the anchor text, falling back to the URL itself.
func (s *Site) extractHeuristic(ctx context.Context, doc *goquery.Document, seen map[string]bool) ([]course.Record, error) {
	log := s.deps.logger().With(zap.String("site", s.def.key))

	var records []course.Record
	for _, a := range collectAnchors(doc) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if len(seen) >= s.deps.maxLinks() {
			break
		}
		link, ok := resolveSameOrigin(s.base, a.href)
		if !ok || seen[link] {
			continue
		}
		if !s.pattern.MatchString(link) {
			continue
		}
		seen[link] = true

		title := s.titleFor(ctx, link, a.text, log)
		records = append(records, s.record(link, title))
	}
	return records, nil
}

// titleFor applies the three-level title fallback. It never returns an
// empty string alongside a non-empty URL.
func (s *Site) titleFor(ctx context.Context, link, anchorText string, log *zap.Logger) string {
	if s.deps.DetailPageFetch {
		if page, err := s.deps.Fetcher.Get(ctx, link); err == nil {
			if doc, perr := parseHTML(page.Text()); perr == nil {
				if title, ok := headingTitle(doc); ok {
					return title
				}
			}
		} else {
			log.Debug("detail page fetch failed", zap.String("url", link), zap.Error(err))
		}
	}
	if anchorText != "" {
		return anchorText
	}
	return link
}

func (s *Site) record(link, title string) course.Record {
	rec := course.Record{
		ID:       link,
		Title:    title,
		URL:      link,
		Provider: s.def.name,
	}
	if s.def.subject != "" {
		rec.Subject = course.String(s.def.subject)
	}
	if s.def.language != "" {
		rec.Language = course.String(s.def.language)
	}
	return rec
}
