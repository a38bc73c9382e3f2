// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package secrets

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingDirectory(t *testing.T) {
	s, err := Load(filepath.Join(t.TempDir(), "absent"))
	require.NoError(t, err, "a missing secrets directory is not an error")
	assert.Empty(t, s.ContactEmail)
}

func TestLoadContactEmail(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(
		filepath.Join(dir, "arxiv-contact-email"), []byte("  ops@example.com\n"), 0o600))

	s, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "ops@example.com", s.ContactEmail, "value is trimmed")
}

func TestLoadIgnoresUnknownAndHiddenFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "some-other-key"), []byte("x"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".gitignore"), []byte("*"), 0o600))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "subdir"), 0o755))

	s, err := Load(dir)
	require.NoError(t, err)
	assert.Empty(t, s.ContactEmail)
}

func TestLoadEmptyValueIgnored(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "arxiv-contact-email"), []byte("  \n"), 0o600))

	s, err := Load(dir)
	require.NoError(t, err)
	assert.Empty(t, s.ContactEmail)
}

func TestUserAgent(t *testing.T) {
	assert.Equal(t, "arxiv-harvester/0.1", Secrets{}.UserAgent("arxiv-harvester/0.1"))

	s := Secrets{ContactEmail: "ops@example.com"}
	assert.Equal(t,
		"arxiv-harvester/0.1 (mailto:ops@example.com)",
		s.UserAgent("arxiv-harvester/0.1"))
}
