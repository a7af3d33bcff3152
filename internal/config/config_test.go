package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("APP_ENV", "development")
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("JWT_SECRET", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Import.ReimportMode != ReimportOverwrite {
		t.Fatalf("expected overwrite reimport mode, got %q", cfg.Import.ReimportMode)
	}
	if cfg.Auth.JWTSecret == "" {
		t.Fatalf("expected development JWT secret fallback")
	}
	if cfg.DB.DataSourceName() != "invoicing.db" {
		t.Fatalf("unexpected sqlite DSN %q", cfg.DB.DataSourceName())
	}
	if cfg.Auth.TokenTTL != 72*time.Hour {
		t.Fatalf("unexpected token TTL %v", cfg.Auth.TokenTTL)
	}
}

func TestLoad_RejectsUnknownSettings(t *testing.T) {
	cases := []struct {
		name string
		env  map[string]string
	}{
		{"driver", map[string]string{"DB_DRIVER": "oracle"}},
		{"reimport mode", map[string]string{"IMPORT_REIMPORT_MODE": "merge"}},
		{"production without secret", map[string]string{"APP_ENV": "production", "JWT_SECRET": ""}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv("DB_DRIVER", "postgres")
			t.Setenv("APP_ENV", "development")
			t.Setenv("IMPORT_REIMPORT_MODE", "")
			for k, v := range tc.env {
				t.Setenv(k, v)
			}
			if _, err := Load(); err == nil {
				t.Fatalf("expected error for %s", tc.name)
			}
		})
	}
}

func TestDataSourceName_Postgres(t *testing.T) {
	c := DBConfig{Driver: "postgres", Host: "db", Port: "5432", User: "u", Password: "p", Name: "n", SSLMode: "disable"}
	want := "host=db port=5432 user=u password=p dbname=n sslmode=disable"
	if got := c.DataSourceName(); got != want {
		t.Fatalf("DataSourceName() = %q, want %q", got, want)
	}
}
