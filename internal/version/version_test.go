// Copyright (c) 2025-2026 Acme Inc.
// SPDX-License-Identifier: GPL-3.0-or-later

package version

import "testing"

func TestGetDefaults(t *testing.T) {
	info := Get()

	if info.Version != Version {
		t.Errorf("Version = %q, want %q", info.Version, Version)
	}
	if info.GitCommit != GitCommit {
		t.Errorf("GitCommit = %q, want %q", info.GitCommit, GitCommit)
	}
	if info.BuildTime != BuildTime {
		t.Errorf("BuildTime = %q, want %q", info.BuildTime, BuildTime)
	}
}

func TestDefaultsNonEmpty(t *testing.T) {
	// Before ldflags injection the defaults must still be usable strings.
	if Version == "" {
		t.Error("Version should have a default")
	}
	if GitCommit == "" {
		t.Error("GitCommit should have a default")
	}
	if BuildTime == "" {
		t.Error("BuildTime should have a default")
	}
}
