// Copyright (c) 2025-2026 Acme Inc.
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/acmeinc/acms/internal/model"
)

// Queries provides typed access to the application tables.
type Queries struct {
	db *sql.DB
}

// New creates a Queries instance bound to the given database.
func New(db *sql.DB) *Queries {
	return &Queries{db: db}
}

// ---------------------------------------------------------------------------
// users

// CreateUserParams holds parameters for CreateUser.
type CreateUserParams struct {
	Email        string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// CreateUser inserts a new user and returns the created row.
func (q *Queries) CreateUser(ctx context.Context, arg CreateUserParams) (model.User, error) {
	res, err := q.db.ExecContext(ctx,
		`INSERT INTO users (email, password_hash, created_at, updated_at) VALUES (?, ?, ?, ?)`,
		arg.Email, arg.PasswordHash, arg.CreatedAt, arg.UpdatedAt)
	if err != nil {
		return model.User{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.User{}, err
	}
	return model.User{
		ID:           id,
		Email:        arg.Email,
		PasswordHash: arg.PasswordHash,
		CreatedAt:    arg.CreatedAt,
		UpdatedAt:    arg.UpdatedAt,
	}, nil
}

const userColumns = `id, email, password_hash, created_at, updated_at, last_login_at`

func scanUser(row *sql.Row) (model.User, error) {
	var u model.User
	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt, &u.LastLoginAt)
	return u, err
}

// GetUserByID returns the user with the given id.
func (q *Queries) GetUserByID(ctx context.Context, id int64) (model.User, error) {
	return scanUser(q.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = ?`, id))
}

// GetUserByEmail returns the user with the given email.
func (q *Queries) GetUserByEmail(ctx context.Context, email string) (model.User, error) {
	return scanUser(q.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = ?`, email))
}

// UpdateUserLastLoginParams holds parameters for UpdateUserLastLogin.
type UpdateUserLastLoginParams struct {
	LastLoginAt sql.NullTime
	ID          int64
}

// UpdateUserLastLogin records the most recent login time for a user.
func (q *Queries) UpdateUserLastLogin(ctx context.Context, arg UpdateUserLastLoginParams) error {
	_, err := q.db.ExecContext(ctx,
		`UPDATE users SET last_login_at = ? WHERE id = ?`, arg.LastLoginAt, arg.ID)
	return err
}

// UpdateUserPasswordParams holds parameters for UpdateUserPassword.
type UpdateUserPasswordParams struct {
	PasswordHash string
	UpdatedAt    time.Time
	ID           int64
}

// UpdateUserPassword replaces a user's password hash.
func (q *Queries) UpdateUserPassword(ctx context.Context, arg UpdateUserPasswordParams) error {
	_, err := q.db.ExecContext(ctx,
		`UPDATE users SET password_hash = ?, updated_at = ? WHERE id = ?`,
		arg.PasswordHash, arg.UpdatedAt, arg.ID)
	return err
}

// ---------------------------------------------------------------------------
// admin_users

// CreateAdminUser registers a user id in the admin_users table.
func (q *Queries) CreateAdminUser(ctx context.Context, userID int64) error {
	_, err := q.db.ExecContext(ctx,
		`INSERT INTO admin_users (user_id, created_at) VALUES (?, ?)`, userID, time.Now())
	return err
}

// IsAdminUser reports whether the given user id is registered as an admin.
func (q *Queries) IsAdminUser(ctx context.Context, userID int64) (bool, error) {
	var exists bool
	err := q.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM admin_users WHERE user_id = ?)`, userID).Scan(&exists)
	return exists, err
}

// ---------------------------------------------------------------------------
// website_content

// ContentRow is one row of the website_content table.
type ContentRow struct {
	SectionName string
	Content     model.SectionData
	UpdatedAt   time.Time
}

// ListContent returns all content section rows.
func (q *Queries) ListContent(ctx context.Context) ([]ContentRow, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT section_name, content, updated_at FROM website_content ORDER BY section_name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []ContentRow
	for rows.Next() {
		row, err := scanContentRow(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, row)
	}
	return result, rows.Err()
}

// GetContent returns the content row for one section.
func (q *Queries) GetContent(ctx context.Context, sectionName string) (ContentRow, error) {
	var (
		row ContentRow
		raw string
	)
	err := q.db.QueryRowContext(ctx,
		`SELECT section_name, content, updated_at FROM website_content WHERE section_name = ?`,
		sectionName).Scan(&row.SectionName, &raw, &row.UpdatedAt)
	if err != nil {
		return ContentRow{}, err
	}
	if err := json.Unmarshal([]byte(raw), &row.Content); err != nil {
		return ContentRow{}, fmt.Errorf("decoding content for section %q: %w", sectionName, err)
	}
	return row, nil
}

// UpsertContentParams holds parameters for UpsertContent.
type UpsertContentParams struct {
	SectionName string
	Content     model.SectionData
	UpdatedAt   time.Time
}

// UpsertContent writes the full content value for one section, inserting the
// row if it does not exist yet.
func (q *Queries) UpsertContent(ctx context.Context, arg UpsertContentParams) error {
	raw, err := json.Marshal(arg.Content)
	if err != nil {
		return fmt.Errorf("encoding content for section %q: %w", arg.SectionName, err)
	}
	_, err = q.db.ExecContext(ctx,
		`INSERT INTO website_content (section_name, content, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(section_name) DO UPDATE SET content = excluded.content, updated_at = excluded.updated_at`,
		arg.SectionName, string(raw), arg.UpdatedAt)
	return err
}

type contentScanner interface {
	Scan(dest ...any) error
}

func scanContentRow(s contentScanner) (ContentRow, error) {
	var (
		row ContentRow
		raw string
	)
	if err := s.Scan(&row.SectionName, &raw, &row.UpdatedAt); err != nil {
		return ContentRow{}, err
	}
	if err := json.Unmarshal([]byte(raw), &row.Content); err != nil {
		return ContentRow{}, fmt.Errorf("decoding content for section %q: %w", row.SectionName, err)
	}
	return row, nil
}

// ---------------------------------------------------------------------------
// contact_messages

// CreateContactMessageParams holds parameters for CreateContactMessage.
type CreateContactMessageParams struct {
	ID        string
	Name      string
	Email     string
	Message   string
	CreatedAt time.Time
}

// CreateContactMessage inserts a new unread contact message.
func (q *Queries) CreateContactMessage(ctx context.Context, arg CreateContactMessageParams) (model.ContactMessage, error) {
	_, err := q.db.ExecContext(ctx,
		`INSERT INTO contact_messages (id, name, email, message, created_at, read) VALUES (?, ?, ?, ?, ?, 0)`,
		arg.ID, arg.Name, arg.Email, arg.Message, arg.CreatedAt)
	if err != nil {
		return model.ContactMessage{}, err
	}
	return model.ContactMessage{
		ID:        arg.ID,
		Name:      arg.Name,
		Email:     arg.Email,
		Message:   arg.Message,
		CreatedAt: arg.CreatedAt,
		Read:      false,
	}, nil
}

// ListContactMessages returns all contact messages, newest first.
func (q *Queries) ListContactMessages(ctx context.Context) ([]model.ContactMessage, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT id, name, email, message, created_at, read FROM contact_messages ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []model.ContactMessage
	for rows.Next() {
		var m model.ContactMessage
		if err := rows.Scan(&m.ID, &m.Name, &m.Email, &m.Message, &m.CreatedAt, &m.Read); err != nil {
			return nil, err
		}
		result = append(result, m)
	}
	return result, rows.Err()
}

// GetContactMessage returns one contact message by id.
func (q *Queries) GetContactMessage(ctx context.Context, id string) (model.ContactMessage, error) {
	var m model.ContactMessage
	err := q.db.QueryRowContext(ctx,
		`SELECT id, name, email, message, created_at, read FROM contact_messages WHERE id = ?`, id).
		Scan(&m.ID, &m.Name, &m.Email, &m.Message, &m.CreatedAt, &m.Read)
	return m, err
}

// SetContactMessageReadParams holds parameters for SetContactMessageRead.
type SetContactMessageReadParams struct {
	ID   string
	Read bool
}

// SetContactMessageRead updates the read flag of one message. Only the read
// flag is writable after creation.
func (q *Queries) SetContactMessageRead(ctx context.Context, arg SetContactMessageReadParams) error {
	res, err := q.db.ExecContext(ctx,
		`UPDATE contact_messages SET read = ? WHERE id = ?`, arg.Read, arg.ID)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// DeleteContactMessage removes one message.
func (q *Queries) DeleteContactMessage(ctx context.Context, id string) error {
	res, err := q.db.ExecContext(ctx, `DELETE FROM contact_messages WHERE id = ?`, id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
