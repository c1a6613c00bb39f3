// Copyright (c) 2025-2026 Acme Inc.
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"log/slog"
	"net/http"
	"net/mail"
	"strings"

	"github.com/acmeinc/acms/internal/model"
	"github.com/acmeinc/acms/internal/render"
	"github.com/acmeinc/acms/internal/service"
)

// HomeData holds the section content for the landing page template.
type HomeData struct {
	Hero     model.HeroContent
	About    model.AboutContent
	Projects model.ProjectsContent
	Contact  model.ContactContent
}

// FrontendHandler serves the public marketing site.
type FrontendHandler struct {
	content  *service.ContentService
	inbox    *service.InboxService
	renderer *render.Renderer
}

// NewFrontendHandler creates a new FrontendHandler.
func NewFrontendHandler(content *service.ContentService, inbox *service.InboxService, renderer *render.Renderer) *FrontendHandler {
	return &FrontendHandler{
		content:  content,
		inbox:    inbox,
		renderer: renderer,
	}
}

// Home renders the landing page with all four content sections.
func (h *FrontendHandler) Home(w http.ResponseWriter, r *http.Request) {
	var data HomeData
	ctx := r.Context()

	sections := map[string]any{
		model.SectionHero:     &data.Hero,
		model.SectionAbout:    &data.About,
		model.SectionProjects: &data.Projects,
		model.SectionContact:  &data.Contact,
	}
	for name, target := range sections {
		if err := model.DecodeSection(h.content.SectionCached(ctx, name), target); err != nil {
			logAndInternalError(w, r, "decoding content section", "section", name, "error", err)
			return
		}
	}

	if err := h.renderer.Render(w, r, "frontend/home", render.TemplateData{
		Title: data.Hero.Title,
		Data:  data,
	}); err != nil {
		logAndInternalError(w, r, "rendering home page", "error", err)
	}
}

// ContactSubmit handles the public contact form.
func (h *FrontendHandler) ContactSubmit(w http.ResponseWriter, r *http.Request) {
	if !parseFormOrRedirect(w, r, h.renderer, redirectContact) {
		return
	}

	// Honeypot field: bots fill it, humans never see it. Pretend success.
	if r.FormValue("_website") != "" {
		slog.Info("honeypot triggered", "ip", r.RemoteAddr)
		flashSuccess(w, r, h.renderer, redirectContact, "Thank you for your message. We will get back to you soon.")
		return
	}

	name := strings.TrimSpace(r.FormValue("name"))
	email := strings.TrimSpace(r.FormValue("email"))
	message := strings.TrimSpace(r.FormValue("message"))

	if name == "" || email == "" || message == "" {
		flashError(w, r, h.renderer, redirectContact, "Please fill in all fields")
		return
	}
	if !isValidEmail(email) {
		flashError(w, r, h.renderer, redirectContact, "Please enter a valid email address")
		return
	}

	if _, err := h.inbox.Submit(r.Context(), name, email, message); err != nil {
		slog.Error("contact submission failed", "error", err)
		flashError(w, r, h.renderer, redirectContact, "Something went wrong. Please try again.")
		return
	}

	flashSuccess(w, r, h.renderer, redirectContact, "Thank you for your message. We will get back to you soon.")
}

// NotFound renders the 404 page.
func (h *FrontendHandler) NotFound(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusNotFound)
	if err := h.renderer.Render(w, r, "frontend/404", render.TemplateData{
		Title: "Page Not Found",
	}); err != nil {
		slog.Error("rendering 404 page", "error", err)
	}
}

// isValidEmail checks if the email address parses per RFC 5322.
func isValidEmail(email string) bool {
	_, err := mail.ParseAddress(email)
	return err == nil
}
