// Copyright (c) 2025-2026 Acme Inc.
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/acmeinc/acms/internal/middleware"
	"github.com/acmeinc/acms/internal/model"
	"github.com/acmeinc/acms/internal/render"
	"github.com/acmeinc/acms/internal/service"
)

// SectionSummary is one row of the dashboard content overview.
type SectionSummary struct {
	Name  string
	Title string
}

// DashboardData holds data for the dashboard overview template.
type DashboardData struct {
	Sections     []SectionSummary
	MessageCount int
	UnreadCount  int
}

// ContentFormData holds data for the per-section content editor template.
type ContentFormData struct {
	Section string
	Fields  map[string]string
	Lists   map[string]string
}

// DashboardHandler serves the admin dashboard and the content editors.
type DashboardHandler struct {
	content  *service.ContentService
	inbox    *service.InboxService
	renderer *render.Renderer
}

// NewDashboardHandler creates a new DashboardHandler.
func NewDashboardHandler(content *service.ContentService, inbox *service.InboxService, renderer *render.Renderer) *DashboardHandler {
	return &DashboardHandler{
		content:  content,
		inbox:    inbox,
		renderer: renderer,
	}
}

// sectionFields maps each section to its simple string fields. The list
// fields (about.values, projects.items) are edited as JSON and handled
// separately.
var sectionFields = map[string][]string{
	model.SectionHero:     {"title", "subtitle", "ctaText"},
	model.SectionAbout:    {"title", "description", "vision"},
	model.SectionProjects: {"title", "subtitle"},
	model.SectionContact:  {"title", "subtitle", "address", "email", "phone"},
}

// sectionListField names the JSON-edited list field of a section, if any.
var sectionListField = map[string]string{
	model.SectionAbout:    "values",
	model.SectionProjects: "items",
}

// Dashboard renders the admin overview.
func (h *DashboardHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	data := DashboardData{
		MessageCount: len(h.inbox.Messages()),
		UnreadCount:  h.inbox.UnreadCount(),
	}
	for _, name := range model.SectionNames() {
		section := h.content.Section(name)
		title, _ := section["title"].(string)
		data.Sections = append(data.Sections, SectionSummary{Name: name, Title: title})
	}

	if err := h.renderer.Render(w, r, "admin/dashboard", h.templateData(r, "Dashboard", data)); err != nil {
		logAndInternalError(w, r, "rendering dashboard", "error", err)
	}
}

// Pages renders the editable page listing. The site has a single landing
// page composed of the content sections.
func (h *DashboardHandler) Pages(w http.ResponseWriter, r *http.Request) {
	var sections []SectionSummary
	for _, name := range model.SectionNames() {
		section := h.content.Section(name)
		title, _ := section["title"].(string)
		sections = append(sections, SectionSummary{Name: name, Title: title})
	}

	if err := h.renderer.Render(w, r, "admin/pages", h.templateData(r, "Pages", sections)); err != nil {
		logAndInternalError(w, r, "rendering pages", "error", err)
	}
}

// ContentForm renders the editor for one content section.
func (h *DashboardHandler) ContentForm(w http.ResponseWriter, r *http.Request) {
	section := chi.URLParam(r, "section")
	if !model.IsValidSection(section) {
		http.NotFound(w, r)
		return
	}

	data := ContentFormData{
		Section: section,
		Fields:  make(map[string]string),
		Lists:   make(map[string]string),
	}
	current := h.content.Section(section)
	for _, field := range sectionFields[section] {
		value, _ := current[field].(string)
		data.Fields[field] = value
	}
	if listField, ok := sectionListField[section]; ok {
		raw, err := json.MarshalIndent(current[listField], "", "  ")
		if err != nil {
			logAndInternalError(w, r, "encoding list field", "section", section, "error", err)
			return
		}
		data.Lists[listField] = string(raw)
	}

	title := "Edit " + strings.ToUpper(section[:1]) + section[1:]
	if err := h.renderer.Render(w, r, "admin/content_form", h.templateData(r, title, data)); err != nil {
		logAndInternalError(w, r, "rendering content form", "error", err)
	}
}

// ContentUpdate applies a partial update to one content section. Only the
// submitted fields change; fields absent from the form keep their value.
func (h *DashboardHandler) ContentUpdate(w http.ResponseWriter, r *http.Request) {
	section := chi.URLParam(r, "section")
	if !model.IsValidSection(section) {
		http.NotFound(w, r)
		return
	}
	redirect := fmt.Sprintf(redirectContentSection, section)

	if !parseFormOrRedirect(w, r, h.renderer, redirect) {
		return
	}

	partial := make(model.SectionData)
	for _, field := range sectionFields[section] {
		if !r.Form.Has(field) {
			continue
		}
		partial[field] = strings.TrimSpace(r.FormValue(field))
	}
	if listField, ok := sectionListField[section]; ok && r.Form.Has(listField) {
		list, err := parseListField(section, r.FormValue(listField))
		if err != nil {
			flashError(w, r, h.renderer, redirect, fmt.Sprintf("Invalid %s: %v", listField, err))
			return
		}
		partial[listField] = list
	}

	if err := h.content.Update(r.Context(), section, partial); err != nil {
		flashError(w, r, h.renderer, redirect, "Failed to save changes. The section has been reloaded.")
		return
	}

	flashSuccess(w, r, h.renderer, redirect, "Content updated")
}

// parseListField validates and decodes a JSON list field submission. The
// raw text must decode into the section's typed list shape before being
// accepted as the stored []any form.
func parseListField(section, raw string) ([]any, error) {
	raw = strings.TrimSpace(raw)

	switch section {
	case model.SectionAbout:
		var typed []model.AboutValue
		if err := json.Unmarshal([]byte(raw), &typed); err != nil {
			return nil, err
		}
	case model.SectionProjects:
		var typed []model.ProjectItem
		if err := json.Unmarshal([]byte(raw), &typed); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("section %q has no list field", section)
	}

	var list []any
	if err := json.Unmarshal([]byte(raw), &list); err != nil {
		return nil, err
	}
	return list, nil
}

// templateData builds the shared admin chrome data.
func (h *DashboardHandler) templateData(r *http.Request, title string, data any) render.TemplateData {
	return render.TemplateData{
		Title:       title,
		Data:        data,
		UserEmail:   middleware.GetUserEmail(r),
		UnreadCount: h.inbox.UnreadCount(),
	}
}
