// Copyright (c) 2025-2026 Acme Inc.
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"database/sql"
	"net/http"
	"testing"
	"testing/fstest"
	"time"

	"github.com/alexedwards/scs/v2"

	"github.com/acmeinc/acms/internal/render"
	"github.com/acmeinc/acms/internal/service"
	"github.com/acmeinc/acms/internal/testutil"
)

// testTemplatesFS returns a minimal template set covering every page the
// handlers render.
func testTemplatesFS() fstest.MapFS {
	return fstest.MapFS{
		"layouts/base.html": {Data: []byte(
			`{{define "base"}}<html><body>{{block "content" .}}{{end}}</body></html>{{end}}`)},
		"layouts/admin.html": {Data: []byte(
			`{{define "nav"}}<nav>dashboard</nav>{{end}}`)},
		"partials/flash.html": {Data: []byte(
			`{{define "flash"}}{{if .Flash}}<div class="{{.FlashType}}">{{.Flash}}</div>{{end}}{{end}}`)},
		"frontend/home.html": {Data: []byte(
			`{{define "content"}}{{template "flash" .}}<h1>{{.Data.Hero.Title}}</h1><h2>{{.Data.Contact.Email}}</h2>{{end}}`)},
		"frontend/404.html": {Data: []byte(
			`{{define "content"}}<h1>Page Not Found</h1>{{end}}`)},
		"auth/login.html": {Data: []byte(
			`{{define "content"}}{{template "flash" .}}<form method="post" action="/login">login</form>{{end}}`)},
		"admin/dashboard.html": {Data: []byte(
			`{{define "content"}}{{template "nav" .}}<p>unread: {{.UnreadCount}}</p>{{end}}`)},
		"admin/pages.html": {Data: []byte(
			`{{define "content"}}{{range .Data}}<a href="/dashboard/content/{{.Name}}">{{.Title}}</a>{{end}}{{end}}`)},
		"admin/content_form.html": {Data: []byte(
			`{{define "content"}}<form>{{.Data.Section}}</form>{{end}}`)},
		"admin/messages.html": {Data: []byte(
			`{{define "content"}}{{template "flash" .}}{{range .Data}}<li>{{.Name}}: {{.Message}}</li>{{end}}{{end}}`)},
	}
}

// testApp bundles the wired handlers and their dependencies for one test.
type testApp struct {
	db       *sql.DB
	sm       *scs.SessionManager
	renderer *render.Renderer
	auth     *service.AuthService
	content  *service.ContentService
	inbox    *service.InboxService
}

// newTestApp wires services against a fresh migrated database.
func newTestApp(t *testing.T, adminEmail string) *testApp {
	t.Helper()

	db, cleanup := testutil.TestDB(t)
	t.Cleanup(cleanup)

	sm := scs.New()
	sm.Lifetime = time.Hour

	renderer, err := render.New(render.Config{
		TemplatesFS:    testTemplatesFS(),
		SessionManager: sm,
	})
	if err != nil {
		t.Fatalf("creating renderer: %v", err)
	}

	authService := service.NewAuthService(db, sm, adminEmail)
	// Runs before the DB cleanup; async admin re-resolutions must not
	// outlive the database.
	t.Cleanup(authService.Wait)

	return &testApp{
		db:       db,
		sm:       sm,
		renderer: renderer,
		auth:     authService,
		content:  service.NewContentService(db, nil),
		inbox:    service.NewInboxService(db),
	}
}

// withSession wraps a handler in the session middleware so handlers can use
// the session manager from the request context.
func (a *testApp) withSession(h http.Handler) http.Handler {
	return a.sm.LoadAndSave(h)
}
