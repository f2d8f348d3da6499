package ingest

import (
	"strings"

	"github.com/vitaeworks/vitae/ai"
)

// Merge combines per-chunk extraction results into a single extraction.
//
// Categories are unified by case-insensitive name; the casing of the first
// appearance is kept and entries are appended in input order within each
// category. The profile comes wholesale from the first result whose Name is
// non-empty; a chunk covering the middle of a document has no business
// contributing contact fields. No deduplication happens here: entries may
// legitimately repeat across overlapping chunks, and only the persistence
// step can see what already exists in storage.
func Merge(results ...*ai.Extraction) *ai.Extraction {
	merged := ai.EmptyExtraction()
	merged.Profile = selectProfile(results)
	index := make(map[string]int)

	for _, result := range results {
		if result == nil {
			continue
		}

		for _, category := range result.Categories {
			name := strings.TrimSpace(category.Name)
			if name == "" {
				continue
			}

			key := strings.ToLower(name)
			i, ok := index[key]
			if !ok {
				merged.Categories = append(merged.Categories, ai.ExtractedCategory{
					Name: name,
				})
				i = len(merged.Categories) - 1
				index[key] = i
			}
			merged.Categories[i].Entries = append(merged.Categories[i].Entries, category.Entries...)
		}
	}

	return merged
}

// selectProfile returns the profile of the first result with a non-empty
// name, or an empty profile when no result names the document's subject.
func selectProfile(results []*ai.Extraction) ai.Profile {
	for _, result := range results {
		if result == nil {
			continue
		}
		if strings.TrimSpace(result.Profile.Name) != "" {
			return result.Profile
		}
	}
	return ai.Profile{}
}
