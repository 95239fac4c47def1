package search

import (
	"fmt"
	"strings"
)

const descriptionMaxLength = 200

// Result is the uniform shape every matched document is normalized into.
type Result struct {
	ID          string         `json:"id"`
	Type        string         `json:"type"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Image       string         `json:"image,omitempty"`
	URL         string         `json:"url"`
	Metadata    map[string]any `json:"metadata"`
	Score       *float64       `json:"score,omitempty"`
}

var titleFields = map[string][]string{
	CollectionCompanies:            {"company_name", "name", "title"},
	CollectionResearchInstitutions: {"institution_name", "name", "title"},
	CollectionProjects:             {"name", "title"},
}

var defaultTitleFields = []string{"title", "name"}

var imageFields = []string{"image", "logo", "avatar"}

// Normalize converts a raw document from collection into a Result.
// Missing or malformed fields degrade to empty values.
func Normalize(doc RawDocument, collection string) Result {
	config := MustLookup(collection)
	id := doc.ID()

	return Result{
		ID:          id,
		Type:        config.SingularType,
		Title:       extractTitle(doc, collection),
		Description: extractDescription(doc, collection),
		Image:       doc.mediaURL(imageFields...),
		URL:         fmt.Sprintf("/%s/%s", config.URLPath, id),
		Metadata:    extractMetadata(doc, config.MetadataFields),
	}
}

func extractTitle(doc RawDocument, collection string) string {
	fields, ok := titleFields[collection]
	if !ok {
		fields = defaultTitleFields
	}
	return doc.firstString(fields...)
}

func extractDescription(doc RawDocument, collection string) string {
	switch collection {
	case CollectionCompanies:
		return firstTruncated(doc, "production_capacity", "description")
	case CollectionProjects:
		return firstTruncated(doc, "description", "business_model")
	case CollectionResearchInstitutions:
		if areas := researchAreas(doc); areas != "" {
			return truncate(areas, descriptionMaxLength)
		}
		return truncate(doc.firstString("institution_type"), descriptionMaxLength)
	default:
		return firstTruncated(doc, "description", "content")
	}
}

func firstTruncated(doc RawDocument, names ...string) string {
	return truncate(doc.firstString(names...), descriptionMaxLength)
}

func researchAreas(doc RawDocument) string {
	f := doc.field("research_areas")
	if f.kind != fieldList {
		return ""
	}

	areas := make([]string, 0, len(f.list))
	for _, item := range f.list {
		entry, ok := item.(map[string]any)
		if !ok {
			continue
		}
		if area, ok := entry["area"].(string); ok && area != "" {
			areas = append(areas, area)
		}
	}
	return strings.Join(areas, ", ")
}

func extractMetadata(doc RawDocument, fields []string) map[string]any {
	metadata := make(map[string]any, len(fields))
	for _, name := range fields {
		f := doc.field(name)
		if f.kind == fieldAbsent {
			continue
		}
		metadata[name] = f.reduced()
	}
	return metadata
}

// truncate keeps at most n characters of s.
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
