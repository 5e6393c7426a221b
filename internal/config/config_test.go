package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/oukeidos/promptaudit/internal/apperrors"
	"github.com/spf13/pflag"
)

func withEnviron(t *testing.T, kv ...string) {
	t.Helper()
	prev := environ
	environ = func() []string { return kv }
	t.Cleanup(func() { environ = prev })
}

func writeEnvFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("write env file: %v", err)
	}
	return path
}

func TestLoad_Defaults(t *testing.T) {
	withEnviron(t, "VERTEX_PROJECT_ID=demo-project")

	cfg, err := Load("", false)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Project != "demo-project" {
		t.Errorf("Project = %q", cfg.Project)
	}
	if cfg.Location != "us-central1" || cfg.Model != "gemini-1.5-flash-002" {
		t.Errorf("unexpected vertex defaults: %+v", cfg)
	}
	if cfg.Dataset != "gemini_audit" || cfg.Table != "prompt_audit" || cfg.SpoolDir != "" {
		t.Errorf("unexpected warehouse defaults: %+v", cfg)
	}
	want := AuditLog{Path: "gemini_api_log.log", MaxSizeMB: 50, MaxBackups: 3, MaxAgeDays: 30}
	if cfg.AuditLog != want {
		t.Errorf("AuditLog = %+v, want %+v", cfg.AuditLog, want)
	}
	if cfg.TableRef() != "demo-project.gemini_audit.prompt_audit" {
		t.Errorf("TableRef = %q", cfg.TableRef())
	}
}

func TestLoad_EnvFilePrecedence(t *testing.T) {
	path := writeEnvFile(t, "VERTEX_PROJECT_ID=file-project\nBQ_TABLE_ID=file_table\nAUDIT_LOG_COMPRESS=true\n")
	withEnviron(t, "VERTEX_PROJECT_ID=process-project")

	cfg, err := Load(path, true)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Project != "process-project" {
		t.Errorf("process environment should win, got %q", cfg.Project)
	}
	if cfg.Table != "file_table" || !cfg.AuditLog.Compress {
		t.Errorf("env file values not applied: %+v", cfg)
	}
}

func TestLoad_MissingEnvFile(t *testing.T) {
	withEnviron(t)
	missing := filepath.Join(t.TempDir(), "nope.env")

	if _, err := Load(missing, false); err != nil {
		t.Fatalf("missing optional env file should be ignored, got %v", err)
	}
	_, err := Load(missing, true)
	if kind, _ := apperrors.KindOf(err); kind != apperrors.KindConfig {
		t.Fatalf("expected config error for explicit missing file, got %v", err)
	}
}

func TestLoad_InvalidNumberNamesVariable(t *testing.T) {
	withEnviron(t, "AUDIT_LOG_MAX_SIZE_MB=lots")

	_, err := Load("", false)
	if kind, _ := apperrors.KindOf(err); kind != apperrors.KindConfig {
		t.Fatalf("expected config error, got %v", err)
	}
	if !strings.Contains(err.Error(), "AUDIT_LOG_MAX_SIZE_MB") {
		t.Fatalf("expected variable name in %q", err.Error())
	}
}

func TestValidate(t *testing.T) {
	withEnviron(t, "VERTEX_PROJECT_ID=demo-project")
	base, err := Load("", false)
	if err != nil {
		t.Fatal(err)
	}

	cases := []struct {
		name    string
		mutate  func(*Config)
		check   func(*Config) error
		wantErr string
	}{
		{"ok", func(*Config) {}, (*Config).Validate, ""},
		{"missing project", func(c *Config) { c.Project = " " }, (*Config).Validate, "VERTEX_PROJECT_ID"},
		{"empty model", func(c *Config) { c.Model = "" }, (*Config).Validate, "VERTEX_MODEL_ID"},
		{"empty dataset", func(c *Config) { c.Dataset = "" }, (*Config).ValidateWarehouse, "BQ_DATASET_ID"},
		{"empty table", func(c *Config) { c.Table = "" }, (*Config).ValidateWarehouse, "BQ_TABLE_ID"},
		{"zero log size", func(c *Config) { c.AuditLog.MaxSizeMB = 0 }, (*Config).ValidateAuditLog, "AUDIT_LOG_MAX_SIZE_MB"},
		{"negative backups", func(c *Config) { c.AuditLog.MaxBackups = -1 }, (*Config).ValidateAuditLog, "AUDIT_LOG_MAX_BACKUPS"},
		{"warehouse checks project", func(c *Config) { c.Project = "" }, (*Config).ValidateWarehouse, "VERTEX_PROJECT_ID"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := *base
			tc.mutate(&cfg)
			err := tc.check(&cfg)
			if tc.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tc.wantErr) {
				t.Fatalf("expected error naming %s, got %v", tc.wantErr, err)
			}
		})
	}
}

func TestApplyFlags(t *testing.T) {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	BindFlags(fs, "project", "model", "spool-dir", "audit-log")
	if fs.Lookup("dataset") != nil {
		t.Fatalf("unrequested flag registered")
	}
	if err := fs.Parse([]string{"--model", "gemini-2.0-flash-001", "--spool-dir", "/tmp/spool"}); err != nil {
		t.Fatal(err)
	}

	cfg := &Config{Project: "env-project", Model: "gemini-1.5-flash-002", AuditLog: AuditLog{Path: "a.log"}}
	ApplyFlags(fs, cfg)

	if cfg.Model != "gemini-2.0-flash-001" || cfg.SpoolDir != "/tmp/spool" {
		t.Fatalf("flags not applied: %+v", cfg)
	}
	if cfg.Project != "env-project" || cfg.AuditLog.Path != "a.log" {
		t.Fatalf("unset flags must not override: %+v", cfg)
	}
}
