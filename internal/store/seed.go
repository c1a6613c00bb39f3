// Copyright (c) 2025-2026 Acme Inc.
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/acmeinc/acms/internal/auth"
	"github.com/acmeinc/acms/internal/model"
)

// DefaultAdminPassword is the password assigned to the seeded admin account.
const DefaultAdminPassword = "changeme"

// SeedContent inserts the built-in default value for any content section
// missing from website_content. Existing rows are left untouched, so the
// call is safe to repeat on every startup.
func SeedContent(ctx context.Context, db *sql.DB) error {
	queries := New(db)

	existing := make(map[string]bool)
	rows, err := queries.ListContent(ctx)
	if err != nil {
		return fmt.Errorf("listing content: %w", err)
	}
	for _, row := range rows {
		existing[row.SectionName] = true
	}

	now := time.Now()
	for _, name := range model.SectionNames() {
		if existing[name] {
			continue
		}
		if err := queries.UpsertContent(ctx, UpsertContentParams{
			SectionName: name,
			Content:     model.DefaultSection(name),
			UpdatedAt:   now,
		}); err != nil {
			return fmt.Errorf("seeding content section %q: %w", name, err)
		}
		slog.Info("seeded content section", "section", name)
	}

	return nil
}

// Seed creates the designated admin account with the default password.
// Intended for demo and development databases only; production deployments
// rely on the bootstrap login path instead.
func Seed(ctx context.Context, db *sql.DB, adminEmail string) error {
	queries := New(db)

	// Check if admin user already exists
	user, err := queries.GetUserByEmail(ctx, adminEmail)
	if err == nil {
		slog.Info("admin user already exists, skipping seed", "email", user.Email)
		return nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("checking for admin user: %w", err)
	}

	// Hash the default password
	passwordHash, err := auth.HashPassword(DefaultAdminPassword)
	if err != nil {
		return fmt.Errorf("hashing password: %w", err)
	}

	// Create admin user
	now := time.Now()
	user, err = queries.CreateUser(ctx, CreateUserParams{
		Email:        adminEmail,
		PasswordHash: passwordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		return fmt.Errorf("creating admin user: %w", err)
	}

	if err := queries.CreateAdminUser(ctx, user.ID); err != nil {
		return fmt.Errorf("registering admin user: %w", err)
	}

	slog.Info("created default admin user",
		"id", user.ID,
		"email", user.Email,
		"password", DefaultAdminPassword,
	)

	return nil
}
