package ingest

import (
	"context"
	"log/slog"
	"strings"

	"github.com/vitaeworks/vitae/ai"
	"github.com/vitaeworks/vitae/core"
	"github.com/vitaeworks/vitae/storage"
)

// persister writes a merged extraction into storage for one owner.
//
// Existing dedup-key hashes and category names are loaded once per run; the
// in-memory hash set is updated as entries are created, so duplicates
// introduced by chunk overlap are caught without a per-entry round trip.
type persister struct {
	categories storage.CategoryRepository
	entries    storage.EntryRepository
	logger     *slog.Logger
}

// persistResult is the per-run tally reported back onto the job.
type persistResult struct {
	Created int
	Skipped int
}

// run persists the merged extraction. onCategory, if non-nil, is called
// after each category's entries are stored.
func (p *persister) run(ctx context.Context, ownerID core.ID, merged *ai.Extraction, onCategory func(done, total int)) (persistResult, error) {
	var result persistResult

	hashes, err := p.entries.GetDedupHashes(ctx, ownerID)
	if err != nil {
		return result, err
	}

	existing, err := p.categories.GetCategoriesByOwner(ctx, ownerID)
	if err != nil {
		return result, err
	}
	byName := make(map[string]*core.Category, len(existing))
	for _, category := range existing {
		byName[strings.ToLower(category.Name)] = category
	}

	total := len(merged.Categories)
	for i, extracted := range merged.Categories {
		category, err := p.findOrCreateCategory(ctx, ownerID, extracted.Name, byName)
		if err != nil {
			return result, err
		}

		var batch []*core.Entry
		for _, item := range extracted.Entries {
			hash := core.DedupKeyHash(item.Title, item.Date, item.Description)
			if _, dup := hashes[hash]; dup {
				result.Skipped++
				continue
			}
			hashes[hash] = struct{}{}

			batch = append(batch, &core.Entry{
				OwnerId:     ownerID,
				CategoryId:  category.Id,
				Title:       item.Title,
				Description: item.Description,
				Date:        item.Date,
				Location:    item.Location,
				URL:         item.URL,
				SourceType:  core.SourceCVImport,
			})
		}

		if len(batch) > 0 {
			if _, err := p.entries.AddEntries(ctx, batch...); err != nil {
				return result, err
			}
			result.Created += len(batch)
		}

		p.logger.Debug("persisted category",
			"category", category.Name,
			"created", len(batch),
			"total", len(extracted.Entries))

		if onCategory != nil {
			onCategory(i+1, total)
		}
	}

	return result, nil
}

// findOrCreateCategory resolves a category by case-insensitive name,
// creating it at the next display order when absent.
func (p *persister) findOrCreateCategory(ctx context.Context, ownerID core.ID, name string, byName map[string]*core.Category) (*core.Category, error) {
	key := strings.ToLower(name)
	if category, ok := byName[key]; ok {
		return category, nil
	}

	added, err := p.categories.AddCategories(ctx, &core.Category{
		OwnerId: ownerID,
		Name:    name,
	})
	if err != nil {
		return nil, err
	}
	byName[key] = added[0]
	return added[0], nil
}
