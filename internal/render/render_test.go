// Copyright (c) 2025-2026 Acme Inc.
// SPDX-License-Identifier: GPL-3.0-or-later

package render

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"testing/fstest"
)

func testTemplatesFS() fstest.MapFS {
	return fstest.MapFS{
		"layouts/base.html": {Data: []byte(
			`{{define "base"}}<html><body>{{block "content" .}}{{end}}</body></html>{{end}}`)},
		"layouts/admin.html": {Data: []byte(
			`{{define "nav"}}<nav>dashboard</nav>{{end}}`)},
		"partials/flash.html": {Data: []byte(
			`{{define "flash"}}{{if .Flash}}<div class="{{.FlashType}}">{{.Flash}}</div>{{end}}{{end}}`)},
		"frontend/home.html": {Data: []byte(
			`{{define "content"}}{{template "flash" .}}<h1>{{.Title}}</h1>{{end}}`)},
		"auth/login.html": {Data: []byte(
			`{{define "content"}}<form>login</form>{{end}}`)},
		"admin/dashboard.html": {Data: []byte(
			`{{define "content"}}{{template "nav" .}}<p>{{.UserEmail}}</p>{{end}}`)},
	}
}

func TestNew_ParsesAllGroups(t *testing.T) {
	r, err := New(Config{TemplatesFS: testTemplatesFS()})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	for _, name := range []string{"frontend/home", "auth/login", "admin/dashboard"} {
		if _, ok := r.templates[name]; !ok {
			t.Errorf("missing template %q", name)
		}
	}
}

func TestRender(t *testing.T) {
	r, err := New(Config{TemplatesFS: testTemplatesFS()})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rr := httptest.NewRecorder()

	err = r.Render(rr, req, "frontend/home", TemplateData{Title: "Acme Inc"})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}

	body := rr.Body.String()
	if !strings.Contains(body, "<h1>Acme Inc</h1>") {
		t.Errorf("unexpected body: %s", body)
	}
	if ct := rr.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("Content-Type = %q", ct)
	}
}

func TestRender_UnknownTemplate(t *testing.T) {
	r, err := New(Config{TemplatesFS: testTemplatesFS()})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rr := httptest.NewRecorder()

	if err := r.Render(rr, req, "frontend/missing", TemplateData{}); err == nil {
		t.Error("expected error for unknown template")
	}
}

func TestMarkdown(t *testing.T) {
	out := string(Markdown("**bold** text"))
	if !strings.Contains(out, "<strong>bold</strong>") {
		t.Errorf("expected bold markup, got %q", out)
	}

	// Script tags must not survive sanitization.
	out = string(Markdown(`hello <script>alert(1)</script>`))
	if strings.Contains(out, "<script>") {
		t.Errorf("script tag survived sanitization: %q", out)
	}
}
