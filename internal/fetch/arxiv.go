// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package fetch queries the arXiv API and writes normalized JSON snapshots.
package fetch

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"golang.org/x/time/rate"

	"github.com/pdiddy/arxiv-harvester/internal/httputil"
	"github.com/pdiddy/arxiv-harvester/pkg/types"
)

// arxivAPIBase is the arXiv query endpoint. Declared as a var so tests
// can substitute an httptest server.
var arxivAPIBase = "https://export.arxiv.org/api/query"

// Client issues queries against the arXiv API. The limiter paces
// consecutive calls within one run; arXiv asks for no more than one
// request every three seconds.
type Client struct {
	HTTPClient *http.Client
	Limiter    *rate.Limiter
	UserAgent  string
	MaxRetries int

	// BaseURL overrides the arXiv endpoint; empty means the real API.
	BaseURL string
}

// NewClient builds a Client from the fetch configuration.
func NewClient(httpClient *http.Client, cfg types.FetchConfig) *Client {
	interval := cfg.RequestInterval
	limiter := rate.NewLimiter(rate.Inf, 1)
	if interval > 0 {
		limiter = rate.NewLimiter(rate.Every(interval), 1)
	}
	return &Client{
		HTTPClient: httpClient,
		Limiter:    limiter,
		UserAgent:  cfg.UserAgent,
		MaxRetries: cfg.MaxRetries,
	}
}

// Fetch queries the API for one feed and returns the normalized records in
// upstream order. Transport failures and non-2xx statuses return a
// *FetchError; a body that does not parse as an Atom feed returns a
// *ParseError.
func (c *Client) Fetch(ctx context.Context, feed Feed) ([]types.Paper, error) {
	base := c.BaseURL
	if base == "" {
		base = arxivAPIBase
	}

	if err := c.Limiter.Wait(ctx); err != nil {
		return nil, &FetchError{URL: base, Err: err}
	}

	u := apiURL(base, feed)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, &FetchError{URL: u, Err: err}
	}
	if c.UserAgent != "" {
		req.Header.Set("User-Agent", c.UserAgent)
	}

	resp, err := httputil.DoWithRetry(ctx, c.HTTPClient, req, c.MaxRetries)
	if err != nil {
		return nil, &FetchError{URL: u, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return nil, &FetchError{URL: u, Err: fmt.Errorf("arXiv API returned HTTP %d", resp.StatusCode)}
	}

	var feedDoc atomFeed
	if err := xml.NewDecoder(resp.Body).Decode(&feedDoc); err != nil {
		return nil, &ParseError{Err: err}
	}

	papers := make([]types.Paper, 0, len(feedDoc.Entries))
	for _, entry := range feedDoc.Entries {
		papers = append(papers, entry.toPaper())
	}
	return papers, nil
}

// apiURL builds the query URL for a feed.
func apiURL(base string, feed Feed) string {
	params := url.Values{}
	params.Set("search_query", feed.Query)
	params.Set("start", "0")
	params.Set("max_results", fmt.Sprintf("%d", feed.MaxResults))
	params.Set("sortBy", feed.SortBy)
	params.Set("sortOrder", feed.SortOrder)
	return base + "?" + params.Encode()
}

// arXiv Atom feed XML structures.
type atomFeed struct {
	Entries []atomEntry `xml:"entry"`
}

type atomEntry struct {
	ID        string       `xml:"id"`
	Title     string       `xml:"title"`
	Summary   string       `xml:"summary"`
	Published string       `xml:"published"`
	Updated   string       `xml:"updated"`
	Authors   []atomAuthor `xml:"author"`
	Links     []atomLink   `xml:"link"`
}

type atomAuthor struct {
	Name string `xml:"name"`
}

type atomLink struct {
	Title string `xml:"title,attr"`
	Type  string `xml:"type,attr"`
	Href  string `xml:"href,attr"`
}

// toPaper maps an Atom entry to the snapshot record, collapsing whitespace
// in text fields and resolving the PDF link.
func (e atomEntry) toPaper() types.Paper {
	p := types.Paper{
		ID:        collapse(e.ID),
		Title:     collapse(e.Title),
		Summary:   collapse(e.Summary),
		Published: collapse(e.Published),
		Updated:   collapse(e.Updated),
		Authors:   []string{},
	}
	for _, a := range e.Authors {
		p.Authors = append(p.Authors, collapse(a.Name))
	}
	p.PDFURL = pdfURL(e)
	return p
}

// pdfURL picks the PDF link from the entry's link elements. When the feed
// carries none, it derives one from the abstract URL.
func pdfURL(e atomEntry) string {
	for _, l := range e.Links {
		if strings.EqualFold(l.Title, "pdf") || strings.EqualFold(l.Type, "application/pdf") {
			return l.Href
		}
	}
	if e.ID != "" && strings.Contains(e.ID, "/abs/") {
		return strings.Replace(collapse(e.ID), "/abs/", "/pdf/", 1) + ".pdf"
	}
	return ""
}

// collapse trims s and squeezes interior whitespace runs to single spaces.
// Atom text nodes from arXiv wrap titles and abstracts across lines.
func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
