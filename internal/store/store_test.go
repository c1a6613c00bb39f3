// Copyright (c) 2025-2026 Acme Inc.
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/acmeinc/acms/internal/model"
)

// testDB creates a temporary test database.
func testDB(t *testing.T) (*sql.DB, func()) {
	t.Helper()

	// Create temp file for test database
	f, err := os.CreateTemp(t.TempDir(), "acms-test-*.db")
	if err != nil {
		t.Fatalf("creating temp file: %v", err)
	}
	dbPath := f.Name()
	f.Close()

	// Open database
	db, err := NewDB(dbPath)
	if err != nil {
		os.Remove(dbPath)
		t.Fatalf("NewDB: %v", err)
	}

	// Run migrations
	if err := Migrate(db); err != nil {
		db.Close()
		os.Remove(dbPath)
		t.Fatalf("Migrate: %v", err)
	}

	// Return cleanup function
	cleanup := func() {
		db.Close()
		os.Remove(dbPath)
	}

	return db, cleanup
}

func TestCreateUser(t *testing.T) {
	db, cleanup := testDB(t)
	defer cleanup()

	ctx := context.Background()
	q := New(db)

	now := time.Now()
	user, err := q.CreateUser(ctx, CreateUserParams{
		Email:        "test@example.com",
		PasswordHash: "hashed-password",
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}

	if user.ID == 0 {
		t.Error("user.ID should not be 0")
	}
	if user.Email != "test@example.com" {
		t.Errorf("Email = %q, want %q", user.Email, "test@example.com")
	}
}

func TestGetUserByEmail(t *testing.T) {
	db, cleanup := testDB(t)
	defer cleanup()

	ctx := context.Background()
	q := New(db)

	now := time.Now()
	created, err := q.CreateUser(ctx, CreateUserParams{
		Email:        "find@example.com",
		PasswordHash: "hash",
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}

	found, err := q.GetUserByEmail(ctx, "find@example.com")
	if err != nil {
		t.Fatalf("GetUserByEmail: %v", err)
	}
	if found.ID != created.ID {
		t.Errorf("ID = %d, want %d", found.ID, created.ID)
	}

	if _, err := q.GetUserByEmail(ctx, "missing@example.com"); !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("GetUserByEmail for missing user: err = %v, want sql.ErrNoRows", err)
	}
}

func TestIsAdminUser(t *testing.T) {
	db, cleanup := testDB(t)
	defer cleanup()

	ctx := context.Background()
	q := New(db)

	now := time.Now()
	user, err := q.CreateUser(ctx, CreateUserParams{
		Email:        "admin@example.com",
		PasswordHash: "hash",
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}

	isAdmin, err := q.IsAdminUser(ctx, user.ID)
	if err != nil {
		t.Fatalf("IsAdminUser: %v", err)
	}
	if isAdmin {
		t.Error("user should not be admin before registration")
	}

	if err := q.CreateAdminUser(ctx, user.ID); err != nil {
		t.Fatalf("CreateAdminUser: %v", err)
	}

	isAdmin, err = q.IsAdminUser(ctx, user.ID)
	if err != nil {
		t.Fatalf("IsAdminUser: %v", err)
	}
	if !isAdmin {
		t.Error("user should be admin after registration")
	}
}

func TestUpsertContent(t *testing.T) {
	db, cleanup := testDB(t)
	defer cleanup()

	ctx := context.Background()
	q := New(db)

	err := q.UpsertContent(ctx, UpsertContentParams{
		SectionName: model.SectionHero,
		Content:     model.SectionData{"title": "First"},
		UpdatedAt:   time.Now(),
	})
	if err != nil {
		t.Fatalf("UpsertContent: %v", err)
	}

	// Second write to the same section replaces the row
	err = q.UpsertContent(ctx, UpsertContentParams{
		SectionName: model.SectionHero,
		Content:     model.SectionData{"title": "Second", "subtitle": "Added"},
		UpdatedAt:   time.Now(),
	})
	if err != nil {
		t.Fatalf("UpsertContent (update): %v", err)
	}

	row, err := q.GetContent(ctx, model.SectionHero)
	if err != nil {
		t.Fatalf("GetContent: %v", err)
	}
	if row.Content["title"] != "Second" {
		t.Errorf("title = %v, want %q", row.Content["title"], "Second")
	}
	if row.Content["subtitle"] != "Added" {
		t.Errorf("subtitle = %v, want %q", row.Content["subtitle"], "Added")
	}

	rows, err := q.ListContent(ctx)
	if err != nil {
		t.Fatalf("ListContent: %v", err)
	}
	if len(rows) != 1 {
		t.Errorf("ListContent returned %d rows, want 1", len(rows))
	}
}

func TestContactMessageLifecycle(t *testing.T) {
	db, cleanup := testDB(t)
	defer cleanup()

	ctx := context.Background()
	q := New(db)

	msg, err := q.CreateContactMessage(ctx, CreateContactMessageParams{
		ID:        uuid.NewString(),
		Name:      "A",
		Email:     "a@x.com",
		Message:   "hi",
		CreatedAt: time.Now(),
	})
	if err != nil {
		t.Fatalf("CreateContactMessage: %v", err)
	}
	if msg.Read {
		t.Error("new message should be unread")
	}

	if err := q.SetContactMessageRead(ctx, SetContactMessageReadParams{ID: msg.ID, Read: true}); err != nil {
		t.Fatalf("SetContactMessageRead: %v", err)
	}

	got, err := q.GetContactMessage(ctx, msg.ID)
	if err != nil {
		t.Fatalf("GetContactMessage: %v", err)
	}
	if !got.Read {
		t.Error("message should be read after toggle")
	}
	// Immutable fields unchanged
	if got.Name != "A" || got.Email != "a@x.com" || got.Message != "hi" {
		t.Errorf("immutable fields changed: %+v", got)
	}

	if err := q.DeleteContactMessage(ctx, msg.ID); err != nil {
		t.Fatalf("DeleteContactMessage: %v", err)
	}
	if _, err := q.GetContactMessage(ctx, msg.ID); !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("GetContactMessage after delete: err = %v, want sql.ErrNoRows", err)
	}
	if err := q.DeleteContactMessage(ctx, msg.ID); !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("DeleteContactMessage twice: err = %v, want sql.ErrNoRows", err)
	}
}

func TestListContactMessages_NewestFirst(t *testing.T) {
	db, cleanup := testDB(t)
	defer cleanup()

	ctx := context.Background()
	q := New(db)

	base := time.Now().Add(-time.Hour)
	var ids []string
	for i := 0; i < 3; i++ {
		id := uuid.NewString()
		ids = append(ids, id)
		_, err := q.CreateContactMessage(ctx, CreateContactMessageParams{
			ID:        id,
			Name:      "Sender",
			Email:     "s@example.com",
			Message:   "msg",
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		})
		if err != nil {
			t.Fatalf("CreateContactMessage: %v", err)
		}
	}

	msgs, err := q.ListContactMessages(ctx)
	if err != nil {
		t.Fatalf("ListContactMessages: %v", err)
	}
	if len(msgs) != 3 {
		t.Fatalf("got %d messages, want 3", len(msgs))
	}
	// T1 < T2 < T3 must come back as [T3, T2, T1]
	if msgs[0].ID != ids[2] || msgs[1].ID != ids[1] || msgs[2].ID != ids[0] {
		t.Errorf("messages not in newest-first order: %v", []string{msgs[0].ID, msgs[1].ID, msgs[2].ID})
	}
}

func TestSeedContent_Idempotent(t *testing.T) {
	db, cleanup := testDB(t)
	defer cleanup()

	ctx := context.Background()
	q := New(db)

	if err := SeedContent(ctx, db); err != nil {
		t.Fatalf("SeedContent: %v", err)
	}

	// Mutate one section, then reseed: the change must survive
	err := q.UpsertContent(ctx, UpsertContentParams{
		SectionName: model.SectionHero,
		Content:     model.SectionData{"title": "Edited"},
		UpdatedAt:   time.Now(),
	})
	if err != nil {
		t.Fatalf("UpsertContent: %v", err)
	}

	if err := SeedContent(ctx, db); err != nil {
		t.Fatalf("SeedContent (second run): %v", err)
	}

	row, err := q.GetContent(ctx, model.SectionHero)
	if err != nil {
		t.Fatalf("GetContent: %v", err)
	}
	if row.Content["title"] != "Edited" {
		t.Errorf("reseed overwrote an existing row: title = %v", row.Content["title"])
	}

	rows, err := q.ListContent(ctx)
	if err != nil {
		t.Fatalf("ListContent: %v", err)
	}
	if len(rows) != len(model.SectionNames()) {
		t.Errorf("got %d content rows, want %d", len(rows), len(model.SectionNames()))
	}
}

func TestSeed_CreatesAdmin(t *testing.T) {
	db, cleanup := testDB(t)
	defer cleanup()

	ctx := context.Background()
	q := New(db)

	if err := Seed(ctx, db, "admin@acmeinc.com"); err != nil {
		t.Fatalf("Seed: %v", err)
	}

	user, err := q.GetUserByEmail(ctx, "admin@acmeinc.com")
	if err != nil {
		t.Fatalf("GetUserByEmail: %v", err)
	}
	isAdmin, err := q.IsAdminUser(ctx, user.ID)
	if err != nil {
		t.Fatalf("IsAdminUser: %v", err)
	}
	if !isAdmin {
		t.Error("seeded user should be an admin")
	}

	// Second run is a no-op
	if err := Seed(ctx, db, "admin@acmeinc.com"); err != nil {
		t.Fatalf("Seed (second run): %v", err)
	}
}
