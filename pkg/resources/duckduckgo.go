package resources

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"notes-intelligence-be/pkg/pipeline"

	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/net/html"
)

const DefaultDuckDuckGoURL = "https://html.duckduckgo.com/html/"

// DuckDuckGoSearcher scrapes the keyless HTML endpoint of DuckDuckGo.
type DuckDuckGoSearcher struct {
	endpoint string
	client   *http.Client
	policy   *bluemonday.Policy
}

func NewDuckDuckGoSearcher(endpoint string, timeout time.Duration) *DuckDuckGoSearcher {
	if endpoint == "" {
		endpoint = DefaultDuckDuckGoURL
	}
	return &DuckDuckGoSearcher{
		endpoint: endpoint,
		client:   &http.Client{Timeout: timeout},
		policy:   bluemonday.StrictPolicy(),
	}
}

func (d *DuckDuckGoSearcher) Search(ctx context.Context, query string, max int) ([]pipeline.Resource, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, d.endpoint+"?q="+url.QueryEscape(query), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; notes-intelligence/1.0)")

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("search returned status %d: %s", resp.StatusCode, string(body))
	}

	doc, err := html.Parse(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse search page: %w", err)
	}
	return d.parseResults(doc, max), nil
}

// parseResults walks result anchors (class result__a) and attaches the
// following result__snippet to the latest result.
func (d *DuckDuckGoSearcher) parseResults(doc *html.Node, max int) []pipeline.Resource {
	var out []pipeline.Resource
	var walk func(n *html.Node) bool
	walk = func(n *html.Node) bool {
		if n.Type == html.ElementNode {
			switch {
			case hasClass(n, "result__a"):
				if max > 0 && len(out) == max {
					return false
				}
				out = append(out, pipeline.Resource{
					Title: strings.TrimSpace(d.clean(n)),
					Link:  resolveLink(attr(n, "href")),
				})
				return true
			case hasClass(n, "result__snippet") && len(out) > 0:
				out[len(out)-1].Snippet = strings.TrimSpace(d.clean(n))
				return true
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if !walk(c) {
				return false
			}
		}
		return true
	}
	walk(doc)
	return out
}

// clean renders the children of n and strips every tag, leaving plain text.
func (d *DuckDuckGoSearcher) clean(n *html.Node) string {
	var b strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		_ = html.Render(&b, c)
	}
	text := html.UnescapeString(d.policy.Sanitize(b.String()))
	return strings.Join(strings.Fields(text), " ")
}

// resolveLink unwraps DuckDuckGo redirect links (/l/?uddg=<target>).
func resolveLink(href string) string {
	if strings.HasPrefix(href, "//") {
		href = "https:" + href
	}
	u, err := url.Parse(href)
	if err != nil {
		return href
	}
	if target := u.Query().Get("uddg"); target != "" {
		return target
	}
	return href
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func hasClass(n *html.Node, class string) bool {
	for _, c := range strings.Fields(attr(n, "class")) {
		if c == class {
			return true
		}
	}
	return false
}
