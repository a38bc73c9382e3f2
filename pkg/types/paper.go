// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the arxiv-harvester
// pipeline: the normalized paper record written to snapshots and the
// configuration blocks consumed by the fetch, schedule, and history stages.
package types

// Paper is one normalized record from the arXiv Atom feed. The JSON field
// names are the snapshot wire format consumed by the publishing site, so
// they must stay stable across runs.
type Paper struct {
	// ID is the entry identifier URL (e.g. "http://arxiv.org/abs/2301.07041v1").
	ID string `json:"id" yaml:"id"`

	// Title is the paper title with interior whitespace collapsed.
	Title string `json:"title" yaml:"title"`

	// Authors lists the paper authors in feed order.
	Authors []string `json:"authors" yaml:"authors"`

	// Summary is the abstract with interior whitespace collapsed.
	Summary string `json:"summary" yaml:"summary"`

	// Published is the initial submission timestamp as reported upstream
	// (RFC 3339 text, passed through untouched).
	Published string `json:"published" yaml:"published"`

	// Updated is the last-revision timestamp as reported upstream.
	Updated string `json:"updated" yaml:"updated"`

	// PDFURL is the direct PDF link from the entry's link elements, or a
	// URL derived from ID when the feed omits one.
	PDFURL string `json:"pdf_url" yaml:"pdf_url"`
}
