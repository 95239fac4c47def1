package ingest

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/meghashyamc/marketsearch/services/search"
)

type sourceFile struct {
	Path       string
	Collection string
}

var supportedExtensions = map[string]bool{
	".json": true,
	".yaml": true,
	".yml":  true,
}

// discoverFiles finds <collection>.json|.yaml|.yml files under rootPath in lexical order.
func (s *Service) discoverFiles(rootPath string) ([]sourceFile, error) {
	info, err := os.Stat(rootPath)
	if err != nil {
		return nil, fmt.Errorf("could not read import path: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("import path %s is not a directory", rootPath)
	}

	var files []sourceFile
	err = filepath.Walk(rootPath, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			s.logger.Error("could not walk through file or directory", "err", err.Error())
			if errors.Is(err, os.ErrPermission) {
				return nil
			}
			return err
		}

		// Skip directories that start with '.' but not the root directory
		if info.IsDir() && strings.HasPrefix(info.Name(), ".") && path != rootPath {
			return filepath.SkipDir
		}
		if info.IsDir() || strings.HasPrefix(info.Name(), ".") {
			return nil
		}

		collection, ok := collectionForFile(info.Name())
		if !ok {
			s.logger.Debug("skipping file with unknown collection", "path", path)
			return nil
		}
		files = append(files, sourceFile{Path: path, Collection: collection})
		return nil
	})

	return files, err
}

func collectionForFile(name string) (string, bool) {
	ext := strings.ToLower(filepath.Ext(name))
	if !supportedExtensions[ext] {
		return "", false
	}
	collection := strings.TrimSuffix(name, filepath.Ext(name))
	if _, ok := search.Lookup(collection); !ok {
		return "", false
	}
	return collection, true
}
