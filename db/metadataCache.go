package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
)

const (
	DB_TABLE_TITLE_METADATA = "title-metadata"
)

type TitleMetadata struct {
	Name      string
	FetchedAt time.Time
}

type nameSource interface {
	DisplayName(ctx context.Context, titleId uint64) (string, error)
}

// Display name source backed by the persistent db: names fetched once from
// the (slow) platform metadata service are served from bolt afterwards
type MetadataCache struct {
	db     *PersistentDB
	source nameSource
	logger *zap.SugaredLogger
}

func NewMetadataCache(db *PersistentDB, source nameSource, l *zap.SugaredLogger) *MetadataCache {
	if l == nil {
		l = zap.NewNop().Sugar()
	}
	return &MetadataCache{db: db, source: source, logger: l}
}

func (mc *MetadataCache) DisplayName(ctx context.Context, titleId uint64) (string, error) {
	key := fmt.Sprintf("%016x", titleId)

	var cached TitleMetadata
	err := mc.db.GetEntry(DB_TABLE_TITLE_METADATA, key, &cached)
	if err == nil && cached.Name != "" {
		return cached.Name, nil
	}
	if err != nil && !errors.Is(err, ErrNotFound) {
		mc.logger.Warnf("failed to read cached metadata for %v - %v", key, err)
	}

	name, err := mc.source.DisplayName(ctx, titleId)
	if err != nil {
		return "", err
	}

	if name != "" {
		err = mc.db.AddEntry(DB_TABLE_TITLE_METADATA, key, TitleMetadata{Name: name, FetchedAt: time.Now()})
		if err != nil {
			mc.logger.Warnf("failed to cache metadata for %v - %v", key, err)
		}
	}
	return name, nil
}

// Drop every cached name, next lookups go to the metadata service again
func (mc *MetadataCache) ClearMetadata() error {
	return mc.db.ClearTable(DB_TABLE_TITLE_METADATA)
}

func (mc *MetadataCache) Len() int {
	return mc.db.CountEntries(DB_TABLE_TITLE_METADATA)
}
