// Copyright (c) 2025-2026 Acme Inc.
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/acmeinc/acms/internal/model"
)

// dashboardRouter mounts the dashboard handler behind the session
// middleware so chi URL params resolve.
func dashboardRouter(app *testApp) http.Handler {
	h := NewDashboardHandler(app.content, app.inbox, app.renderer)

	r := chi.NewRouter()
	r.Get(RouteDashboard, h.Dashboard)
	r.Get(RouteDashboard+RoutePages, h.Pages)
	r.Get(RouteDashboard+RouteContentSection, h.ContentForm)
	r.Post(RouteDashboard+RouteContentSection, h.ContentUpdate)
	return app.withSession(r)
}

func TestDashboard_Overview(t *testing.T) {
	app := newTestApp(t, "admin@acmeinc.com")

	req := httptest.NewRequest(http.MethodGet, RouteDashboard, nil)
	rr := httptest.NewRecorder()
	dashboardRouter(app).ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusOK)
	}
	if !strings.Contains(rr.Body.String(), "unread: 0") {
		t.Errorf("body missing unread count: %s", rr.Body.String())
	}
}

func TestPages_ListsSections(t *testing.T) {
	app := newTestApp(t, "admin@acmeinc.com")

	req := httptest.NewRequest(http.MethodGet, RouteDashboard+RoutePages, nil)
	rr := httptest.NewRecorder()
	dashboardRouter(app).ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusOK)
	}
	body := rr.Body.String()
	for _, name := range model.SectionNames() {
		if !strings.Contains(body, "/dashboard/content/"+name) {
			t.Errorf("body missing link for %s", name)
		}
	}
}

func TestContentForm_UnknownSection(t *testing.T) {
	app := newTestApp(t, "admin@acmeinc.com")

	req := httptest.NewRequest(http.MethodGet, "/dashboard/content/footer", nil)
	rr := httptest.NewRecorder()
	dashboardRouter(app).ServeHTTP(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusNotFound)
	}
}

func TestContentUpdate_PartialMerge(t *testing.T) {
	app := newTestApp(t, "admin@acmeinc.com")

	form := url.Values{"title": {"New Hero Title"}}
	req := httptest.NewRequest(http.MethodPost, "/dashboard/content/hero", strings.NewReader(form.Encode()))
	req.Header.Set(HeaderContentType, "application/x-www-form-urlencoded")
	rr := httptest.NewRecorder()
	dashboardRouter(app).ServeHTTP(rr, req)

	if rr.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusSeeOther)
	}

	hero := app.content.Section(model.SectionHero)
	if got, _ := hero["title"].(string); got != "New Hero Title" {
		t.Errorf("title = %q, want %q", got, "New Hero Title")
	}
	// Fields absent from the form keep their value.
	if got, _ := hero["ctaText"].(string); got != "Get Started" {
		t.Errorf("ctaText = %q, want %q", got, "Get Started")
	}
}

func TestContentUpdate_ListField(t *testing.T) {
	app := newTestApp(t, "admin@acmeinc.com")

	form := url.Values{
		"items": {`[{"title":"One","description":"d","image":"/static/placeholder.svg","category":"Web"}]`},
	}
	req := httptest.NewRequest(http.MethodPost, "/dashboard/content/projects", strings.NewReader(form.Encode()))
	req.Header.Set(HeaderContentType, "application/x-www-form-urlencoded")
	rr := httptest.NewRecorder()
	dashboardRouter(app).ServeHTTP(rr, req)

	if rr.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusSeeOther)
	}

	var projects model.ProjectsContent
	if err := model.DecodeSection(app.content.Section(model.SectionProjects), &projects); err != nil {
		t.Fatalf("decoding projects: %v", err)
	}
	if len(projects.Items) != 1 || projects.Items[0].Title != "One" {
		t.Errorf("unexpected items: %+v", projects.Items)
	}
}

func TestContentUpdate_InvalidListJSON(t *testing.T) {
	app := newTestApp(t, "admin@acmeinc.com")

	before := app.content.Section(model.SectionProjects)

	form := url.Values{"items": {`not json`}}
	req := httptest.NewRequest(http.MethodPost, "/dashboard/content/projects", strings.NewReader(form.Encode()))
	req.Header.Set(HeaderContentType, "application/x-www-form-urlencoded")
	rr := httptest.NewRecorder()
	dashboardRouter(app).ServeHTTP(rr, req)

	// Rejected before reaching the content service.
	if rr.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusSeeOther)
	}
	var after, want model.ProjectsContent
	if err := model.DecodeSection(app.content.Section(model.SectionProjects), &after); err != nil {
		t.Fatalf("decoding projects: %v", err)
	}
	if err := model.DecodeSection(before, &want); err != nil {
		t.Fatalf("decoding snapshot: %v", err)
	}
	if len(after.Items) != len(want.Items) {
		t.Errorf("items changed: %d -> %d", len(want.Items), len(after.Items))
	}
}

func TestParseListField_WrongShape(t *testing.T) {
	if _, err := parseListField(model.SectionAbout, `{"title":"x"}`); err == nil {
		t.Error("expected error for non-list JSON")
	}
	if _, err := parseListField(model.SectionHero, `[]`); err == nil {
		t.Error("expected error for section without list field")
	}
}
