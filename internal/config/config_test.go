// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package config

import (
	"os"
	"strings"
	"testing"
)

func setEnv(t *testing.T, key, value string) {
	t.Helper()
	if err := os.Setenv(key, value); err != nil {
		t.Fatalf("failed to set %s: %v", key, err)
	}
}

func TestLoad_Defaults(t *testing.T) {
	os.Clearenv()
	setEnv(t, "CAMPUS_SESSION_SECRET", "test-secret-key-32-bytes-long!!!")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.DBPath != "./data/campusconnect.db" {
		t.Errorf("DBPath = %q, want %q", cfg.DBPath, "./data/campusconnect.db")
	}
	if cfg.ServerHost != "localhost" {
		t.Errorf("ServerHost = %q, want %q", cfg.ServerHost, "localhost")
	}
	if cfg.ServerPort != 8080 {
		t.Errorf("ServerPort = %d, want %d", cfg.ServerPort, 8080)
	}
	if cfg.Env != "development" {
		t.Errorf("Env = %q, want %q", cfg.Env, "development")
	}
	if cfg.UploadsDir != "./uploads" {
		t.Errorf("UploadsDir = %q, want %q", cfg.UploadsDir, "./uploads")
	}
	if cfg.MaxUploadBytes != 2097152 {
		t.Errorf("MaxUploadBytes = %d, want %d", cfg.MaxUploadBytes, 2097152)
	}
	if cfg.DoSeed {
		t.Error("DoSeed should default to false")
	}
}

func TestLoad_MissingSecret(t *testing.T) {
	os.Clearenv()

	if _, err := Load(); err == nil {
		t.Fatal("Load() should fail without CAMPUS_SESSION_SECRET")
	}
}

func TestLoad_ShortSecret(t *testing.T) {
	os.Clearenv()
	setEnv(t, "CAMPUS_SESSION_SECRET", "too-short")

	_, err := Load()
	if err == nil {
		t.Fatal("Load() should reject short secrets")
	}
	if !strings.Contains(err.Error(), "at least 32 bytes") {
		t.Errorf("error %q should mention minimum length", err)
	}
}

func TestLoad_WeakSecret(t *testing.T) {
	os.Clearenv()
	setEnv(t, "CAMPUS_SESSION_SECRET", "dev-secret-key-change-me-please!")

	if _, err := Load(); err == nil {
		t.Fatal("Load() should reject known weak secrets")
	}
}

func TestConfig_IsDevelopment(t *testing.T) {
	cfg := Config{Env: "development"}
	if !cfg.IsDevelopment() {
		t.Error("IsDevelopment() should be true for development env")
	}

	cfg.Env = "production"
	if cfg.IsDevelopment() {
		t.Error("IsDevelopment() should be false for production env")
	}
}

func TestConfig_ServerAddr(t *testing.T) {
	cfg := Config{ServerHost: "localhost", ServerPort: 9000}
	if got := cfg.ServerAddr(); got != "localhost:9000" {
		t.Errorf("ServerAddr() = %q, want %q", got, "localhost:9000")
	}
}

func TestHasMinimumEntropy(t *testing.T) {
	tests := []struct {
		secret string
		want   bool
	}{
		{"abcdefgh", false},
		{"abcDEF123", true},
		{"abcdef123456", false},
		{"Abc123!@#xyz", true},
	}

	for _, tt := range tests {
		if got := hasMinimumEntropy(tt.secret); got != tt.want {
			t.Errorf("hasMinimumEntropy(%q) = %v, want %v", tt.secret, got, tt.want)
		}
	}
}
