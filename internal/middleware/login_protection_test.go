// Copyright (c) 2025-2026 Acme Inc.
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestLoginProtection_AccountLockout(t *testing.T) {
	lp := NewLoginProtection(LoginProtectionConfig{
		IPRateLimit:       100,
		IPBurst:           100,
		MaxFailedAttempts: 3,
		LockoutDuration:   time.Minute,
		AttemptWindow:     time.Minute,
	})

	email := "admin@acmeinc.com"

	if locked, _ := lp.IsAccountLocked(email); locked {
		t.Fatal("account should not start locked")
	}

	lp.RecordFailedAttempt(email)
	lp.RecordFailedAttempt(email)
	if locked, _ := lp.IsAccountLocked(email); locked {
		t.Fatal("account locked too early")
	}
	if remaining := lp.GetRemainingAttempts(email); remaining != 1 {
		t.Errorf("remaining attempts = %d, want 1", remaining)
	}

	locked, duration := lp.RecordFailedAttempt(email)
	if !locked {
		t.Fatal("expected account locked after third failure")
	}
	if duration != time.Minute {
		t.Errorf("lock duration = %v, want 1m", duration)
	}

	if locked, _ := lp.IsAccountLocked(email); !locked {
		t.Error("expected IsAccountLocked = true")
	}
}

func TestLoginProtection_SuccessClearsAttempts(t *testing.T) {
	lp := NewLoginProtection(LoginProtectionConfig{
		MaxFailedAttempts: 3,
		LockoutDuration:   time.Minute,
		AttemptWindow:     time.Minute,
	})

	email := "admin@acmeinc.com"
	lp.RecordFailedAttempt(email)
	lp.RecordFailedAttempt(email)
	lp.RecordSuccessfulLogin(email)

	if remaining := lp.GetRemainingAttempts(email); remaining != 3 {
		t.Errorf("remaining attempts = %d, want 3 after successful login", remaining)
	}
}

func TestLoginProtection_MiddlewareRateLimitsPost(t *testing.T) {
	lp := NewLoginProtection(LoginProtectionConfig{
		IPRateLimit: 0.001, // effectively one request
		IPBurst:     1,
	})

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	handler := lp.Middleware()(next)

	// First POST passes, second is limited.
	for i, want := range []int{http.StatusOK, http.StatusTooManyRequests} {
		req := httptest.NewRequest(http.MethodPost, "/login", nil)
		req.RemoteAddr = "203.0.113.9:1234"
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		if rr.Code != want {
			t.Errorf("request %d: status = %d, want %d", i, rr.Code, want)
		}
	}

	// GET requests are never limited.
	req := httptest.NewRequest(http.MethodGet, "/login", nil)
	req.RemoteAddr = "203.0.113.9:1234"
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Errorf("GET status = %d, want %d", rr.Code, http.StatusOK)
	}
}

func TestGetClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/login", nil)
	req.RemoteAddr = "198.51.100.1:5000"

	if ip := getClientIP(req); ip != "198.51.100.1:5000" {
		t.Errorf("getClientIP() = %q, want RemoteAddr", ip)
	}

	req.Header.Set("X-Forwarded-For", "203.0.113.7")
	if ip := getClientIP(req); ip != "203.0.113.7" {
		t.Errorf("getClientIP() = %q, want X-Forwarded-For value", ip)
	}

	req.Header.Set("X-Real-IP", "192.0.2.99")
	if ip := getClientIP(req); ip != "192.0.2.99" {
		t.Errorf("getClientIP() = %q, want X-Real-IP value", ip)
	}
}
