// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package fetch

import (
	"fmt"
	"os"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// snapshotSchema accepts both artifact layouts: the bare array of paper
// records and the envelope object. Used by the validate command to gate
// publishing in CI.
const snapshotSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "definitions": {
    "paper": {
      "type": "object",
      "required": ["id", "title", "authors", "summary", "published", "updated", "pdf_url"],
      "properties": {
        "id": {"type": "string"},
        "title": {"type": "string"},
        "authors": {"type": "array", "items": {"type": "string"}},
        "summary": {"type": "string"},
        "published": {"type": "string"},
        "updated": {"type": "string"},
        "pdf_url": {"type": "string"}
      }
    },
    "papers": {"type": "array", "items": {"$ref": "#/definitions/paper"}}
  },
  "oneOf": [
    {"$ref": "#/definitions/papers"},
    {
      "type": "object",
      "required": ["generated_at_utc", "query", "max_results", "count", "papers"],
      "properties": {
        "generated_at_utc": {"type": "string"},
        "query": {"type": "string"},
        "max_results": {"type": "integer", "minimum": 0},
        "count": {"type": "integer", "minimum": 0},
        "papers": {"$ref": "#/definitions/papers"}
      }
    }
  ]
}`

// ValidateSnapshot checks that the file at path is a well-formed snapshot
// in either layout. The returned error lists every schema violation.
func ValidateSnapshot(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading snapshot: %w", err)
	}

	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(snapshotSchema),
		gojsonschema.NewBytesLoader(data),
	)
	if err != nil {
		return fmt.Errorf("validating %s: %w", path, err)
	}

	if !result.Valid() {
		var msgs []string
		for _, desc := range result.Errors() {
			msgs = append(msgs, desc.String())
		}
		return fmt.Errorf("%s is not a valid snapshot:\n  %s", path, strings.Join(msgs, "\n  "))
	}
	return nil
}
