// Copyright (c) 2025-2026 Acme Inc.
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/acmeinc/acms/internal/middleware"
	"github.com/acmeinc/acms/internal/render"
	"github.com/acmeinc/acms/internal/service"
)

// MessagesHandler serves the contact message inbox.
type MessagesHandler struct {
	inbox    *service.InboxService
	renderer *render.Renderer
}

// NewMessagesHandler creates a new MessagesHandler.
func NewMessagesHandler(inbox *service.InboxService, renderer *render.Renderer) *MessagesHandler {
	return &MessagesHandler{
		inbox:    inbox,
		renderer: renderer,
	}
}

// List renders the inbox, newest first. A refresh failure keeps the last
// loaded snapshot and surfaces a warning instead of an error page.
func (h *MessagesHandler) List(w http.ResponseWriter, r *http.Request) {
	data := render.TemplateData{
		Title:     "Messages",
		UserEmail: middleware.GetUserEmail(r),
	}
	if err := h.inbox.Refresh(r.Context()); err != nil {
		slog.Warn("inbox refresh failed, serving last loaded messages", "error", err)
		data.Flash = "Could not refresh messages. Showing the last loaded state."
		data.FlashType = "warning"
	}
	data.Data = h.inbox.Messages()
	data.UnreadCount = h.inbox.UnreadCount()

	if err := h.renderer.Render(w, r, "admin/messages", data); err != nil {
		logAndInternalError(w, r, "rendering messages", "error", err)
	}
}

// ToggleRead flips the read flag of one message. Responds with JSON so the
// inbox page can update in place.
func (h *MessagesHandler) ToggleRead(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.inbox.ToggleRead(r.Context(), id); err != nil {
		switch {
		case errors.Is(err, service.ErrMessageBusy):
			writeJSONError(w, http.StatusConflict, "Update already in progress")
		case errors.Is(err, service.ErrMessageNotFound):
			writeJSONError(w, http.StatusNotFound, "Message not found")
		default:
			writeJSONError(w, http.StatusInternalServerError, "Failed to update message")
		}
		return
	}

	read := false
	for _, m := range h.inbox.Messages() {
		if m.ID == id {
			read = m.Read
			break
		}
	}
	writeJSONSuccess(w, map[string]any{
		"id":           id,
		"read":         read,
		"unread_count": h.inbox.UnreadCount(),
	})
}

// Delete removes one message and returns to the inbox.
func (h *MessagesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.inbox.Delete(r.Context(), id); err != nil {
		if errors.Is(err, service.ErrMessageNotFound) {
			flashError(w, r, h.renderer, redirectMessages, "Message not found")
			return
		}
		flashError(w, r, h.renderer, redirectMessages, "Failed to delete message")
		return
	}

	flashSuccess(w, r, h.renderer, redirectMessages, "Message deleted")
}
