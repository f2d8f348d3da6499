package ingest

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/vitaeworks/vitae/ai"
)

func TestMergeUnifiesCategoriesCaseInsensitively(t *testing.T) {
	a := &ai.Extraction{
		Categories: []ai.ExtractedCategory{
			{Name: "Publications", Entries: []ai.ExtractedEntry{{Title: "Paper A"}}},
			{Name: "Education", Entries: []ai.ExtractedEntry{{Title: "PhD"}}},
		},
	}
	b := &ai.Extraction{
		Categories: []ai.ExtractedCategory{
			{Name: "PUBLICATIONS", Entries: []ai.ExtractedEntry{{Title: "Paper B"}}},
		},
	}

	merged := Merge(a, b)

	assert.Len(t, merged.Categories, 2)
	assert.Equal(t, "Publications", merged.Categories[0].Name, "first-seen casing is kept")
	assert.Len(t, merged.Categories[0].Entries, 2)
	assert.Equal(t, "Paper A", merged.Categories[0].Entries[0].Title)
	assert.Equal(t, "Paper B", merged.Categories[0].Entries[1].Title)
	assert.Equal(t, "Education", merged.Categories[1].Name)
}

func TestMergeProfileComesFromFirstNamedResult(t *testing.T) {
	a := &ai.Extraction{Profile: ai.Profile{Email: "stray@example.org"}}
	b := &ai.Extraction{Profile: ai.Profile{Name: "Jane Doe", Email: "jane@example.org"}}
	c := &ai.Extraction{Profile: ai.Profile{Name: "J. Doe", Phone: "555-0100"}}

	merged := Merge(a, b, c)

	assert.Equal(t, "Jane Doe", merged.Profile.Name)
	assert.Equal(t, "jane@example.org", merged.Profile.Email, "the named result's profile is taken wholesale")
	assert.Empty(t, merged.Profile.Phone, "later results contribute nothing")
}

func TestMergeProfileEmptyWhenNoResultHasName(t *testing.T) {
	merged := Merge(
		&ai.Extraction{Profile: ai.Profile{Email: "stray@example.org"}},
		&ai.Extraction{Profile: ai.Profile{Name: "   ", Phone: "555-0100"}},
	)

	assert.True(t, merged.Profile.Empty())
}

func TestMergeKeepsEntriesWithinCategoryInInputOrder(t *testing.T) {
	chunks := []*ai.Extraction{
		{Categories: []ai.ExtractedCategory{
			{Name: "Talks", Entries: []ai.ExtractedEntry{{Title: "First"}, {Title: "Second"}}},
		}},
		nil,
		{Categories: []ai.ExtractedCategory{
			{Name: "talks", Entries: []ai.ExtractedEntry{{Title: "Third"}}},
		}},
	}

	merged := Merge(chunks...)

	assert.Len(t, merged.Categories, 1)
	titles := make([]string, 0, 3)
	for _, entry := range merged.Categories[0].Entries {
		titles = append(titles, entry.Title)
	}
	assert.Equal(t, []string{"First", "Second", "Third"}, titles)
}

func TestMergeCategorySetIsOrderIndependent(t *testing.T) {
	a := &ai.Extraction{
		Categories: []ai.ExtractedCategory{
			{Name: "Publications", Entries: []ai.ExtractedEntry{{Title: "Paper A"}, {Title: "Paper B"}}},
			{Name: "Grants", Entries: []ai.ExtractedEntry{{Title: "Grant X"}}},
		},
	}
	b := &ai.Extraction{
		Categories: []ai.ExtractedCategory{
			{Name: "PUBLICATIONS", Entries: []ai.ExtractedEntry{{Title: "Paper C"}}},
			{Name: "Teaching", Entries: []ai.ExtractedEntry{{Title: "Course Y"}}},
		},
	}

	forward := Merge(a, b)
	reverse := Merge(b, a)

	assert.ElementsMatch(t, categoryKeys(forward), categoryKeys(reverse))
	assert.Equal(t, entryCount(forward), entryCount(reverse))
}

func categoryKeys(extraction *ai.Extraction) []string {
	keys := make([]string, 0, len(extraction.Categories))
	for _, category := range extraction.Categories {
		keys = append(keys, strings.ToLower(category.Name))
	}
	return keys
}

func entryCount(extraction *ai.Extraction) int {
	total := 0
	for _, category := range extraction.Categories {
		total += len(category.Entries)
	}
	return total
}

func TestMergeSkipsBlankCategoryNames(t *testing.T) {
	merged := Merge(&ai.Extraction{
		Categories: []ai.ExtractedCategory{
			{Name: "  ", Entries: []ai.ExtractedEntry{{Title: "orphan"}}},
			{Name: "Awards", Entries: []ai.ExtractedEntry{{Title: "Medal"}}},
		},
	})

	assert.Len(t, merged.Categories, 1)
	assert.Equal(t, "Awards", merged.Categories[0].Name)
}

func TestMergeOfNothingIsEmpty(t *testing.T) {
	merged := Merge()
	assert.True(t, merged.Profile.Empty())
	assert.Empty(t, merged.Categories)
}
