package ingest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/meghashyamc/marketsearch/services/search"
	"gopkg.in/yaml.v3"
)

const maxFileSize = 64 * 1024 * 1024

// envelope is the paginated shape CMS exports wrap their documents in.
type envelope struct {
	Docs []map[string]any `json:"docs" yaml:"docs"`
}

// decodeFile reads a fixture file holding either a list of documents or an
// object with a "docs" list.
func decodeFile(path string) ([]map[string]any, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if info.Size() > maxFileSize {
		return nil, fmt.Errorf("file %s exceeds %d bytes", path, maxFileSize)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return decodeJSON(content)
	default:
		return decodeYAML(content)
	}
}

func decodeJSON(content []byte) ([]map[string]any, error) {
	content = bytes.TrimSpace(content)
	if len(content) == 0 {
		return nil, nil
	}

	if content[0] == '[' {
		var docs []map[string]any
		if err := json.Unmarshal(content, &docs); err != nil {
			return nil, fmt.Errorf("invalid json document list: %w", err)
		}
		return compact(docs), nil
	}

	var wrapped envelope
	if err := json.Unmarshal(content, &wrapped); err != nil {
		return nil, fmt.Errorf("invalid json document envelope: %w", err)
	}
	return compact(wrapped.Docs), nil
}

func decodeYAML(content []byte) ([]map[string]any, error) {
	var node yaml.Node
	if err := yaml.Unmarshal(content, &node); err != nil {
		return nil, fmt.Errorf("invalid yaml: %w", err)
	}
	if len(node.Content) == 0 {
		return nil, nil
	}
	keepTimestampsAsText(&node)

	if node.Content[0].Kind == yaml.SequenceNode {
		var docs []map[string]any
		if err := node.Decode(&docs); err != nil {
			return nil, fmt.Errorf("invalid yaml document list: %w", err)
		}
		return compact(docs), nil
	}

	var wrapped envelope
	if err := node.Decode(&wrapped); err != nil {
		return nil, fmt.Errorf("invalid yaml document envelope: %w", err)
	}
	return compact(wrapped.Docs), nil
}

// keepTimestampsAsText retags implicit timestamps as strings so dates keep
// their source text instead of decoding to time.Time.
func keepTimestampsAsText(node *yaml.Node) {
	if node.Kind == yaml.ScalarNode && node.ShortTag() == "!!timestamp" {
		node.Tag = "!!str"
	}
	for _, child := range node.Content {
		keepTimestampsAsText(child)
	}
}

// compact drops null entries.
func compact(docs []map[string]any) []map[string]any {
	kept := docs[:0]
	for _, doc := range docs {
		if doc != nil {
			kept = append(kept, doc)
		}
	}
	return kept
}

// assignID stores the document id as a string, generating one when missing.
func assignID(doc map[string]any) {
	id := search.RawDocument(doc).ID()
	if id == "" {
		id = uuid.New().String()
	}
	doc["id"] = id
}
