package scrape

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// ExtractJobLinks pulls accept-job URLs out of the page markup. Primary
// signal is an href containing the portal's accept path; when a page
// yields none, anchors whose visible text mentions accepting are taken
// as a fallback, restricted to the page's own host so external links
// never leak into the result. Relative hrefs are resolved against the
// page URL and duplicates collapse in first-seen order.
func ExtractJobLinks(html, pageURL string) ([]string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, err
	}

	base, _ := url.Parse(pageURL)

	links := collectLinks(doc, base, func(href, _ string) bool {
		return strings.Contains(href, "/accept")
	})
	if len(links) == 0 {
		links = collectLinks(doc, base, func(href, text string) bool {
			if !strings.Contains(strings.ToLower(text), "accept") {
				return false
			}
			return sameHost(base, href)
		})
	}
	return links, nil
}

func collectLinks(doc *goquery.Document, base *url.URL, keep func(href, text string) bool) []string {
	seen := make(map[string]bool)
	var links []string

	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		href = strings.TrimSpace(href)
		if href == "" || strings.HasPrefix(href, "#") || strings.HasPrefix(href, "javascript:") {
			return
		}
		if !keep(href, s.Text()) {
			return
		}
		resolved := resolve(base, href)
		if resolved == "" || seen[resolved] {
			return
		}
		seen[resolved] = true
		links = append(links, resolved)
	})
	return links
}

func resolve(base *url.URL, href string) string {
	ref, err := url.Parse(href)
	if err != nil {
		return ""
	}
	if base == nil {
		return ref.String()
	}
	return base.ResolveReference(ref).String()
}

func sameHost(base *url.URL, href string) bool {
	if base == nil {
		return false
	}
	ref, err := url.Parse(href)
	if err != nil {
		return false
	}
	return ref.Host == "" || strings.EqualFold(ref.Host, base.Host)
}
