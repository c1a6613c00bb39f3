// Copyright (c) 2025-2026 Acme Inc.
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/acmeinc/acms/internal/model"
	"github.com/acmeinc/acms/internal/store"
)

// Inbox errors.
var (
	ErrMessageNotFound = errors.New("message not found")
	ErrMessageBusy     = errors.New("message operation in flight")
	ErrEmptyField      = errors.New("required field is empty")
)

// InboxService holds the contact message inbox. Messages are kept newest
// first. A read-flag toggle is tracked in flight per message id so the
// dashboard can disable the control until the write settles.
type InboxService struct {
	db      *sql.DB
	queries *store.Queries

	mu       sync.Mutex
	messages []model.ContactMessage
	inFlight map[string]struct{}
}

// NewInboxService creates an InboxService with an empty message list.
// Call Refresh to load messages from the database.
func NewInboxService(db *sql.DB) *InboxService {
	return &InboxService{
		db:       db,
		queries:  store.New(db),
		inFlight: make(map[string]struct{}),
	}
}

// Refresh reloads all messages from the database, newest first.
func (s *InboxService) Refresh(ctx context.Context) error {
	messages, err := s.queries.ListContactMessages(ctx)
	if err != nil {
		return fmt.Errorf("loading contact messages: %w", err)
	}

	s.mu.Lock()
	s.messages = messages
	s.mu.Unlock()
	return nil
}

// Messages returns a snapshot of the message list, newest first.
func (s *InboxService) Messages() []model.ContactMessage {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]model.ContactMessage, len(s.messages))
	copy(out, s.messages)
	return out
}

// UnreadCount returns the number of unread messages. It is computed from
// the list on every call and never stored.
func (s *InboxService) UnreadCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := 0
	for _, m := range s.messages {
		if !m.Read {
			count++
		}
	}
	return count
}

// InFlight reports whether a read-flag toggle for the given message id has
// not settled yet.
func (s *InboxService) InFlight(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.inFlight[id]
	return ok
}

// ToggleRead flips the read flag of one message, persisting the new value
// before updating the list. Toggling twice restores the original flag. An
// id that is already in flight is rejected with ErrMessageBusy.
func (s *InboxService) ToggleRead(ctx context.Context, id string) error {
	s.mu.Lock()
	idx := s.indexLocked(id)
	if idx < 0 {
		s.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrMessageNotFound, id)
	}
	if _, busy := s.inFlight[id]; busy {
		s.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrMessageBusy, id)
	}
	s.inFlight[id] = struct{}{}
	target := !s.messages[idx].Read
	s.mu.Unlock()

	err := s.queries.SetContactMessageRead(ctx, store.SetContactMessageReadParams{
		ID:   id,
		Read: target,
	})

	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.inFlight, id)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// The row vanished underneath us. Drop the stale list entry.
			s.removeLocked(id)
			return fmt.Errorf("%w: %s", ErrMessageNotFound, id)
		}
		return fmt.Errorf("updating read flag for message %s: %w", id, err)
	}

	if idx := s.indexLocked(id); idx >= 0 {
		s.messages[idx].Read = target
	}
	return nil
}

// Delete removes one message from the database and the list.
func (s *InboxService) Delete(ctx context.Context, id string) error {
	err := s.queries.DeleteContactMessage(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("%w: %s", ErrMessageNotFound, id)
		}
		return fmt.Errorf("deleting message %s: %w", id, err)
	}

	s.mu.Lock()
	s.removeLocked(id)
	s.mu.Unlock()
	return nil
}

// Submit stores a new unread contact message with a generated id and the
// server timestamp. Name, email and message are immutable afterwards.
func (s *InboxService) Submit(ctx context.Context, name, email, message string) (model.ContactMessage, error) {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)
	message = strings.TrimSpace(message)
	if name == "" || email == "" || message == "" {
		return model.ContactMessage{}, ErrEmptyField
	}

	msg, err := s.queries.CreateContactMessage(ctx, store.CreateContactMessageParams{
		ID:        uuid.NewString(),
		Name:      name,
		Email:     email,
		Message:   message,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		return model.ContactMessage{}, fmt.Errorf("storing contact message: %w", err)
	}

	s.mu.Lock()
	s.messages = append([]model.ContactMessage{msg}, s.messages...)
	s.mu.Unlock()
	return msg, nil
}

// indexLocked returns the list index of a message id, or -1. Callers must
// hold the mutex.
func (s *InboxService) indexLocked(id string) int {
	for i, m := range s.messages {
		if m.ID == id {
			return i
		}
	}
	return -1
}

// removeLocked deletes a message from the list. Callers must hold the mutex.
func (s *InboxService) removeLocked(id string) {
	if idx := s.indexLocked(id); idx >= 0 {
		s.messages = append(s.messages[:idx], s.messages[idx+1:]...)
	}
}
