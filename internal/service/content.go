// Copyright (c) 2025-2026 Acme Inc.
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/acmeinc/acms/internal/cache"
	"github.com/acmeinc/acms/internal/model"
	"github.com/acmeinc/acms/internal/store"
)

// ErrUnknownSection is returned for a section name outside the editable set.
var ErrUnknownSection = errors.New("unknown content section")

// contentCacheKey prefixes website_content entries in the shared cache.
const contentCacheKey = "content:"

// ContentService holds the editable website content. Every section always
// has a value: sections missing from the database keep their built-in
// default. Updates merge field-by-field into the current section and are
// written through to the database and the shared cache.
type ContentService struct {
	db      *sql.DB
	queries *store.Queries
	cache   *cache.TypedCache[model.SectionData]

	mu       sync.RWMutex
	sections map[string]model.SectionData
}

// NewContentService creates a ContentService seeded with the default
// content. If cacher is nil the service runs without the shared cache.
func NewContentService(db *sql.DB, cacher cache.Cacher) *ContentService {
	s := &ContentService{
		db:       db,
		queries:  store.New(db),
		sections: model.DefaultContent(),
	}
	if cacher != nil {
		s.cache = cache.NewTypedCache[model.SectionData](cacher, time.Hour)
	}
	return s
}

// Load replaces the in-memory sections with the database state. A section
// present in the database replaces its default wholesale; a section absent
// from the database keeps the full default. Loaded sections are written
// through to the shared cache.
func (s *ContentService) Load(ctx context.Context) error {
	rows, err := s.queries.ListContent(ctx)
	if err != nil {
		return fmt.Errorf("loading website content: %w", err)
	}

	sections := model.DefaultContent()
	for _, row := range rows {
		if !model.IsValidSection(row.SectionName) {
			continue
		}
		sections[row.SectionName] = row.Content
	}

	s.mu.Lock()
	s.sections = sections
	s.mu.Unlock()

	if s.cache != nil {
		for name, data := range sections {
			d := data.Clone()
			_ = s.cache.Set(ctx, contentCacheKey+name, &d)
		}
	}
	return nil
}

// Section returns a copy of one section's current value. Unknown section
// names return nil.
func (s *ContentService) Section(name string) model.SectionData {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, ok := s.sections[name]
	if !ok {
		return nil
	}
	return data.Clone()
}

// SectionCached returns one section's value, preferring the shared cache
// so that updates made by another instance are visible. Falls back to the
// in-memory snapshot on a miss and re-primes the cache.
func (s *ContentService) SectionCached(ctx context.Context, name string) model.SectionData {
	if s.cache == nil {
		return s.Section(name)
	}

	if data, ok := s.cache.Get(ctx, contentCacheKey+name); ok {
		return *data
	}

	data := s.Section(name)
	if data != nil {
		d := data.Clone()
		_ = s.cache.Set(ctx, contentCacheKey+name, &d)
	}
	return data
}

// All returns a copy of every section keyed by name.
func (s *ContentService) All() map[string]model.SectionData {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]model.SectionData, len(s.sections))
	for name, data := range s.sections {
		out[name] = data.Clone()
	}
	return out
}

// Update merges partial field-by-field into the named section, applies the
// result to the in-memory state immediately, then persists the full section
// row. If the write fails, the section is re-fetched from the database so
// memory and storage cannot drift apart, and the write error is returned.
func (s *ContentService) Update(ctx context.Context, name string, partial model.SectionData) error {
	if !model.IsValidSection(name) {
		return fmt.Errorf("%w: %q", ErrUnknownSection, name)
	}

	s.mu.Lock()
	previous := s.sections[name]
	merged := previous.Clone()
	for field, value := range partial {
		merged[field] = value
	}
	s.sections[name] = merged
	s.mu.Unlock()

	err := s.queries.UpsertContent(ctx, store.UpsertContentParams{
		SectionName: name,
		Content:     merged,
		UpdatedAt:   time.Now().UTC(),
	})
	if err != nil {
		s.reloadSection(ctx, name, previous)
		return fmt.Errorf("saving section %q: %w", name, err)
	}

	if s.cache != nil {
		d := merged.Clone()
		_ = s.cache.Set(ctx, contentCacheKey+name, &d)
	}
	return nil
}

// reloadSection restores one section from the database after a failed
// write. A section with no row reverts to its default. If the re-fetch
// itself fails, the pre-update value is restored instead of keeping the
// unconfirmed optimistic one.
func (s *ContentService) reloadSection(ctx context.Context, name string, previous model.SectionData) {
	var data model.SectionData

	row, err := s.queries.GetContent(ctx, name)
	switch {
	case err == nil:
		data = row.Content
	case errors.Is(err, sql.ErrNoRows):
		data = model.DefaultSection(name)
	default:
		data = previous
	}

	s.mu.Lock()
	s.sections[name] = data
	s.mu.Unlock()

	if s.cache != nil {
		_ = s.cache.Delete(ctx, contentCacheKey+name)
	}
}
