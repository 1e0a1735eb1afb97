package adapter

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/bkassahun/course-harvester/internal/course"
)

// ethernetPortal scrapes the EthERNet national course portal, a React app
// whose course list only exists in the rendered DOM.
type ethernetPortal struct {
	pageURL string
	settle  time.Duration
	enabled bool
	deps    Deps
}

func newEthernetPortal(ov Override, settle time.Duration, deps Deps) (*ethernetPortal, error) {
	pageURL := "https://courses.ethernet.edu.et/portal/courses"
	if ov.BaseURL != "" {
		pageURL = ov.BaseURL
	}
	if _, err := url.Parse(pageURL); err != nil {
		return nil, fmt.Errorf("site ethernet: parse base url: %w", err)
	}
	enabled := true
	if ov.Enabled != nil {
		enabled = *ov.Enabled
	}
	return &ethernetPortal{
		pageURL: pageURL,
		settle:  settle,
		enabled: enabled,
		deps:    deps,
	}, nil
}

func (e *ethernetPortal) Key() string         { return "ethernet" }
func (e *ethernetPortal) DisplayName() string { return "EthERNet Course Portal" }
func (e *ethernetPortal) IsAllowed() bool     { return e.enabled }

// Courses renders the portal and walks its course cards. A missing or
// disabled renderer is a configuration error, not a crash.
func (e *ethernetPortal) Courses(ctx context.Context) ([]course.Record, error) {
	markup, err := e.deps.renderer().Render(ctx, e.pageURL, "#course-list", e.settle)
	if err != nil {
		return nil, fmt.Errorf("render %s: %w", e.pageURL, err)
	}
	doc, err := parseHTML(markup)
	if err != nil {
		return nil, fmt.Errorf("parse rendered portal: %w", err)
	}

	base, _ := url.Parse(e.pageURL)
	log := e.deps.logger().With(zap.String("site", e.Key()))

	var records []course.Record
	doc.Find("div.shadow-card").Each(func(i int, card *goquery.Selection) {
		title, _ := selectionText(card, "div.line-clamp-1")
		link := ""
		if href, ok := selectionAttr(card, "a", "href"); ok {
			if resolved, ok := resolveSameOrigin(base, href); ok {
				link = resolved
			}
		}
		if link == "" {
			// Cards without their own link still identify a course on
			// the portal page.
			link = e.pageURL
		}
		id := link
		if link == e.pageURL {
			id = fmt.Sprintf("%s#card-%d", e.pageURL, i+1)
		}
		if title == "" {
			title = link
		}
		rec := course.Record{
			ID:       id,
			Title:    title,
			URL:      link,
			Provider: e.DisplayName(),
		}
		if code, ok := selectionText(card, "div.text-eshe-text-main.text-base"); ok {
			rec.Subject = course.String(code)
		}
		records = append(records, rec)
	})

	log.Debug("portal cards extracted", zap.Int("records", len(records)))
	return records, nil
}

// learningGov scrapes the federal Learning.gov.et portal. When a renderer
// is available it reads the LearnDash catalog page directly; otherwise it
// falls back to the heuristic homepage crawl.
type learningGov struct {
	*Site
	catalogURL string
	settle     time.Duration
}

func newLearningGov(ov Override, settle time.Duration, deps Deps) (*learningGov, error) {
	site, err := newSite(siteDef{
		key:     "learninggov",
		name:    "Learning.gov.et",
		baseURL: "https://learning.gov.et",
		pattern: `course|training|program|module`,
	}, ov, deps)
	if err != nil {
		return nil, err
	}
	catalogURL, ok := resolveSameOrigin(site.base, "/all-courses/")
	if !ok {
		catalogURL = strings.TrimRight(site.base.String(), "/") + "/all-courses/"
	}
	return &learningGov{Site: site, catalogURL: catalogURL, settle: settle}, nil
}

func (g *learningGov) Courses(ctx context.Context) ([]course.Record, error) {
	records, err := g.renderedCatalog(ctx)
	if err == nil {
		return records, nil
	}
	g.deps.logger().Debug("rendered catalog unavailable, using heuristic crawl",
		zap.String("site", g.Key()), zap.Error(err))
	return g.Site.Courses(ctx)
}

// renderedCatalog extracts the LearnDash course list blocks from the
// rendered all-courses page.
func (g *learningGov) renderedCatalog(ctx context.Context) ([]course.Record, error) {
	markup, err := g.deps.renderer().Render(ctx, g.catalogURL, "", g.settle)
	if err != nil {
		return nil, err
	}
	doc, err := parseHTML(markup)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	var records []course.Record
	doc.Find(".ld-course-list-items").Each(func(_ int, block *goquery.Selection) {
		block.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
			href, _ := sel.Attr("href")
			link, ok := resolveSameOrigin(g.base, strings.TrimSpace(href))
			if !ok || seen[link] {
				return
			}
			seen[link] = true
			title := cleanText(sel.Find("h3").First().Text())
			if title == "" {
				title = cleanText(sel.Text())
			}
			if title == "" {
				title = link
			}
			records = append(records, g.record(link, title))
		})
	})
	if len(records) == 0 {
		return nil, fmt.Errorf("no course list blocks on %s", g.catalogURL)
	}
	return records, nil
}
