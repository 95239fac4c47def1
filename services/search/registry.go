package search

import (
	"fmt"
	"slices"
)

// CollectionConfig describes how one collection is searched and presented.
type CollectionConfig struct {
	SingularType   string
	URLPath        string
	SearchFields   []string
	MetadataFields []string
}

const (
	CollectionTechnologies         = "technologies"
	CollectionDemands              = "demands"
	CollectionProjects             = "projects"
	CollectionNews                 = "news"
	CollectionEvents               = "events"
	CollectionCompanies            = "companies"
	CollectionResearchInstitutions = "research-institutions"
)

// TypeAll selects every registered collection.
const TypeAll = "all"

// collectionOrder fixes the order collections are searched and results concatenated in.
var collectionOrder = []string{
	CollectionTechnologies,
	CollectionDemands,
	CollectionProjects,
	CollectionNews,
	CollectionEvents,
	CollectionCompanies,
	CollectionResearchInstitutions,
}

var registry = map[string]CollectionConfig{
	CollectionTechnologies: {
		SingularType:   "technology",
		URLPath:        "technologies",
		SearchFields:   []string{"title", "description", "keywords"},
		MetadataFields: []string{"category", "trl_level", "status", "publishedAt"},
	},
	CollectionDemands: {
		SingularType:   "demand",
		URLPath:        "demands",
		SearchFields:   []string{"title", "description"},
		MetadataFields: []string{"category", "budget", "status", "deadline"},
	},
	CollectionProjects: {
		SingularType:   "project",
		URLPath:        "projects",
		SearchFields:   []string{"name", "description", "business_model"},
		MetadataFields: []string{"category", "status", "investment_stage"},
	},
	CollectionNews: {
		SingularType:   "news",
		URLPath:        "news",
		SearchFields:   []string{"title", "description", "content"},
		MetadataFields: []string{"category", "author", "publishedAt"},
	},
	CollectionEvents: {
		SingularType:   "event",
		URLPath:        "events",
		SearchFields:   []string{"title", "description", "location"},
		MetadataFields: []string{"location", "startDate", "endDate", "status"},
	},
	CollectionCompanies: {
		SingularType:   "company",
		URLPath:        "companies",
		SearchFields:   []string{"company_name", "name", "description", "production_capacity"},
		MetadataFields: []string{"industry", "location", "website"},
	},
	CollectionResearchInstitutions: {
		SingularType:   "research-institution",
		URLPath:        "research-institutions",
		SearchFields:   []string{"institution_name", "name", "institution_type"},
		MetadataFields: []string{"institution_type", "location", "website"},
	},
}

// Lookup returns a copy of the collection's config.
func Lookup(collection string) (CollectionConfig, bool) {
	config, ok := registry[collection]
	if !ok {
		return CollectionConfig{}, false
	}
	config.SearchFields = slices.Clone(config.SearchFields)
	config.MetadataFields = slices.Clone(config.MetadataFields)
	return config, true
}

// MustLookup is Lookup for callers that only pass registered collection names.
func MustLookup(collection string) CollectionConfig {
	config, ok := Lookup(collection)
	if !ok {
		panic(fmt.Sprintf("search: unregistered collection %q", collection))
	}
	return config
}

func SingularType(collection string) string {
	return MustLookup(collection).SingularType
}

func URLPath(collection string) string {
	return MustLookup(collection).URLPath
}

// Collections returns every registered collection in search order.
func Collections() []string {
	return slices.Clone(collectionOrder)
}

// Types returns the singular result types in search order.
func Types() []string {
	types := make([]string, 0, len(collectionOrder))
	for _, collection := range collectionOrder {
		types = append(types, registry[collection].SingularType)
	}
	return types
}

// CollectionForType resolves a singular result type to its collection.
func CollectionForType(resultType string) (string, bool) {
	for _, collection := range collectionOrder {
		if registry[collection].SingularType == resultType {
			return collection, true
		}
	}
	return "", false
}

// IsValidType reports whether t is a registered result type or TypeAll.
func IsValidType(t string) bool {
	if t == TypeAll {
		return true
	}
	_, ok := CollectionForType(t)
	return ok
}

// SearchFieldsByCollection maps each collection to a copy of its search fields.
func SearchFieldsByCollection() map[string][]string {
	fields := make(map[string][]string, len(registry))
	for collection, config := range registry {
		fields[collection] = slices.Clone(config.SearchFields)
	}
	return fields
}
