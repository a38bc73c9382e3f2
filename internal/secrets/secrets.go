// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package secrets loads credentials from a directory of plain-text files.
// Each file in the directory represents one value: the filename is the key
// name and the file contents (trimmed) are the value.
//
// The harvester recognizes a single key, arxiv-contact-email: arXiv asks
// automated clients to identify a contact in the User-Agent header.
package secrets

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const contactEmailKey = "arxiv-contact-email"

// Secrets holds the recognized values from the secrets directory.
type Secrets struct {
	// ContactEmail is appended to the User-Agent sent to the arXiv API.
	ContactEmail string
}

// Load reads the secrets directory. A missing directory is not an error;
// Load returns zero-value Secrets. Unreadable files produce a warning on
// stderr but do not abort.
func Load(dir string) (Secrets, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return Secrets{}, nil
		}
		return Secrets{}, fmt.Errorf("reading secrets directory %s: %w", dir, err)
	}

	var s Secrets
	for _, entry := range entries {
		if entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}

		data, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: could not read secret %s: %v\n", entry.Name(), err)
			continue
		}

		value := strings.TrimSpace(string(data))
		if value == "" {
			continue
		}
		if entry.Name() == contactEmailKey {
			s.ContactEmail = value
		}
	}
	return s, nil
}

// UserAgent returns base with the contact email appended when present
// (e.g. "arxiv-harvester/0.1 (mailto:ops@example.com)").
func (s Secrets) UserAgent(base string) string {
	if s.ContactEmail == "" {
		return base
	}
	return fmt.Sprintf("%s (mailto:%s)", base, s.ContactEmail)
}
