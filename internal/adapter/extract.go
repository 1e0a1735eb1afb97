package adapter

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// anchor is one discovered link with its visible text.
type anchor struct {
	href string
	text string
}

// collectAnchors pulls every href-bearing anchor out of a parsed page.
func collectAnchors(doc *goquery.Document) []anchor {
	var anchors []anchor
	doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		href, ok := sel.Attr("href")
		if !ok || href == "" {
			return
		}
		anchors = append(anchors, anchor{
			href: strings.TrimSpace(href),
			text: cleanText(sel.Text()),
		})
	})
	return anchors
}

// resolveSameOrigin resolves href against base and returns the absolute URL
// only when it shares the base's origin. Fragment and non-HTTP schemes are
// rejected.
func resolveSameOrigin(base *url.URL, href string) (string, bool) {
	if href == "" || strings.HasPrefix(href, "#") {
		return "", false
	}
	ref, err := url.Parse(href)
	if err != nil {
		return "", false
	}
	resolved := base.ResolveReference(ref)
	if resolved.Scheme != "http" && resolved.Scheme != "https" {
		return "", false
	}
	if !strings.EqualFold(resolved.Host, base.Host) {
		return "", false
	}
	resolved.Fragment = ""
	return resolved.String(), true
}

// firstText returns the trimmed text of the first selector that matches
// and yields non-empty content. Failure means "absent", never an error.
func firstText(doc *goquery.Document, selectors ...string) (string, bool) {
	for _, selector := range selectors {
		text := cleanText(doc.Find(selector).First().Text())
		if text != "" {
			return text, true
		}
	}
	return "", false
}

// headingTitle extracts a page title from the first available heading.
func headingTitle(doc *goquery.Document) (string, bool) {
	return firstText(doc, "h1", "h2", "title")
}

// selectionText returns the trimmed text of the first match inside sel.
func selectionText(sel *goquery.Selection, selector string) (string, bool) {
	text := cleanText(sel.Find(selector).First().Text())
	return text, text != ""
}

// selectionAttr returns the named attribute of the first match inside sel.
func selectionAttr(sel *goquery.Selection, selector, name string) (string, bool) {
	val, ok := sel.Find(selector).First().Attr(name)
	val = strings.TrimSpace(val)
	return val, ok && val != ""
}

func cleanText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func parseHTML(markup string) (*goquery.Document, error) {
	return goquery.NewDocumentFromReader(strings.NewReader(markup))
}
