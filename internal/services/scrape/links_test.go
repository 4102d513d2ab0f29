package scrape

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractJobLinksByHref(t *testing.T) {
	html := `
		<html><body>
			<a href="/jobs/accept/123">Job 123</a>
			<a href="https://portal.example.com/jobs/accept/456">Job 456</a>
			<a href="/jobs/accept/123">Duplicate</a>
			<a href="/about">About</a>
			<a href="#">Anchor</a>
		</body></html>`

	links, err := ExtractJobLinks(html, "https://portal.example.com/jobs")
	require.NoError(t, err)
	assert.Equal(t, []string{
		"https://portal.example.com/jobs/accept/123",
		"https://portal.example.com/jobs/accept/456",
	}, links)
}

func TestExtractJobLinksTextFallback(t *testing.T) {
	html := `
		<html><body>
			<a href="/jobs/take/99">Accept this job</a>
			<a href="https://other.example.net/jobs/take/1">Accept elsewhere</a>
			<a href="/contact">Contact us</a>
		</body></html>`

	links, err := ExtractJobLinks(html, "https://portal.example.com/jobs")
	require.NoError(t, err)
	assert.Equal(t, []string{"https://portal.example.com/jobs/take/99"}, links,
		"text fallback stays on the page's own host")
}

func TestExtractJobLinksHrefBeatsFallback(t *testing.T) {
	html := `
		<html><body>
			<a href="/jobs/accept/7">Details</a>
			<a href="/jobs/take/99">Accept this job</a>
		</body></html>`

	links, err := ExtractJobLinks(html, "https://portal.example.com/jobs")
	require.NoError(t, err)
	assert.Equal(t, []string{"https://portal.example.com/jobs/accept/7"}, links)
}

func TestExtractJobLinksNone(t *testing.T) {
	links, err := ExtractJobLinks("<html><body><p>nothing here</p></body></html>", "https://portal.example.com/")
	require.NoError(t, err)
	assert.Empty(t, links)
}
