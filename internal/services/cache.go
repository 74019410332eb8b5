package services

import (
	"errors"
	"fmt"
	"log"

	lru "github.com/hashicorp/golang-lru/v2"

	"talentboard/recruiting-api/internal/models"
	"talentboard/recruiting-api/internal/repositories"
)

// ExtractionCache maps a document's content hash to a previously computed
// extraction. Two tiers: a bounded in-memory LRU in front of the durable
// extraction_records table, so a process restart does not lose paid results.
type ExtractionCache interface {
	Lookup(contentHash string) (*models.ExtractionRecord, bool)
	Store(record *models.ExtractionRecord) error
}

type extractionCache struct {
	memory *lru.Cache[string, *models.ExtractionRecord]
	repo   repositories.ExtractionRepository
}

func NewExtractionCache(size int, repo repositories.ExtractionRepository) (ExtractionCache, error) {
	if size <= 0 {
		size = 1024
	}

	memory, err := lru.New[string, *models.ExtractionRecord](size)
	if err != nil {
		return nil, fmt.Errorf("failed to create extraction cache: %w", err)
	}

	return &extractionCache{
		memory: memory,
		repo:   repo,
	}, nil
}

// Lookup implements ExtractionCache. A hit from either tier counts as a
// cache hit; a repository hit backfills the memory tier.
func (c *extractionCache) Lookup(contentHash string) (*models.ExtractionRecord, bool) {
	if record, ok := c.memory.Get(contentHash); ok {
		return record, true
	}

	record, err := c.repo.FindByContentHash(contentHash)
	if err != nil {
		if !errors.Is(err, repositories.ErrNotFound) {
			log.Printf("⚠️  Cache lookup fell through to a repository error: %v\n", err)
		}
		return nil, false
	}

	c.memory.Add(contentHash, record)
	return record, true
}

// Store implements ExtractionCache. The first record stored for a content
// hash wins; the unique index on content_hash rejects later duplicates.
func (c *extractionCache) Store(record *models.ExtractionRecord) error {
	c.memory.Add(record.ContentHash, record)

	if err := c.repo.Create(record); err != nil {
		return fmt.Errorf("failed to persist extraction record: %w", err)
	}
	return nil
}
