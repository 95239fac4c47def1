package ingest

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDiscoverFiles(t *testing.T) {
	assert := require.New(t)
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "technologies.json"), "[]")
	writeFile(t, filepath.Join(root, "b", "research-institutions.YAML"), "[]")
	writeFile(t, filepath.Join(root, "a", "events.yml"), "[]")
	writeFile(t, filepath.Join(root, "readme.md"), "docs")
	writeFile(t, filepath.Join(root, "auctions.json"), "[]")
	writeFile(t, filepath.Join(root, ".git", "news.json"), "[]")
	writeFile(t, filepath.Join(root, ".companies.json"), "[]")

	service := newTestService(t, newMemoryStore(), nil)
	files, err := service.discoverFiles(root)
	assert.NoError(err)

	assert.Equal([]sourceFile{
		{Path: filepath.Join(root, "a", "events.yml"), Collection: "events"},
		{Path: filepath.Join(root, "b", "research-institutions.YAML"), Collection: "research-institutions"},
		{Path: filepath.Join(root, "technologies.json"), Collection: "technologies"},
	}, files)
}

func TestDiscoverFilesRejectsFile(t *testing.T) {
	assert := require.New(t)
	path := filepath.Join(t.TempDir(), "news.json")
	writeFile(t, path, "[]")

	service := newTestService(t, newMemoryStore(), nil)
	_, err := service.discoverFiles(path)
	assert.Error(err)
}
