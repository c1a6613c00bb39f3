// Copyright (c) 2025-2026 Acme Inc.
// SPDX-License-Identifier: GPL-3.0-or-later

// Package handler wires HTTP requests to the domain services and renders
// the public site and the admin dashboard.
package handler

// Route pattern constants for chi router registration.
const (
	// RouteRoot is the root path.
	RouteRoot = "/"
	// RouteLogin is the login route.
	RouteLogin = "/login"
	// RouteLogout is the logout route.
	RouteLogout = "/logout"
	// RouteContact is the public contact form submission route.
	RouteContact = "/contact"
	// RouteHealth is the liveness endpoint.
	RouteHealth = "/health"

	// RouteDashboard is the admin dashboard root.
	RouteDashboard = "/dashboard"
	// RoutePages is the pages listing inside the dashboard group.
	RoutePages = "/pages"
	// RouteMessages is the message inbox inside the dashboard group.
	RouteMessages = "/messages"
	// RouteContentSection is the per-section content editor pattern.
	RouteContentSection = "/content/{section}"
	// RouteMessageRead is the read-toggle pattern for one message.
	RouteMessageRead = RouteMessages + "/{id}/read"
	// RouteMessageDelete is the delete pattern for one message.
	RouteMessageDelete = RouteMessages + "/{id}/delete"
)

const (
	redirectLogin     = RouteLogin
	redirectDashboard = RouteDashboard
	redirectMessages  = RouteDashboard + RouteMessages
	redirectContact   = "/#contact"

	redirectContentSection = RouteDashboard + "/content/%s"
)

// HeaderContentType is the Content-Type HTTP header name.
const HeaderContentType = "Content-Type"
