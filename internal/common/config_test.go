package common

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadConfigDefaults(t *testing.T) {
	for _, k := range []string{"DB_URL", "STORE_INMEM", "GRPC_ADDR", "OCR_ENGINE", "OCR_LANG", "OCR_PSM", "REVIEW_DEFAULT_DELAY"} {
		t.Setenv(k, "")
	}
	cfg := LoadConfig()
	if cfg.Server.GRPCAddr != ":8080" {
		t.Errorf("GRPCAddr = %q", cfg.Server.GRPCAddr)
	}
	if cfg.OCR.Engine != "gosseract" || cfg.OCR.Language != "kor+eng" || cfg.OCR.PageSegMode != 3 {
		t.Errorf("OCR = %+v", cfg.OCR)
	}
	if cfg.Review.DefaultDelay != 24*time.Hour {
		t.Errorf("DefaultDelay = %v", cfg.Review.DefaultDelay)
	}
	if err := cfg.Validate(); err == nil {
		t.Error("Validate() without DB_URL or STORE_INMEM should fail")
	}
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("STORE_INMEM", "true")
	t.Setenv("OCR_ENGINE", "CLI")
	t.Setenv("OCR_PSM", "6")
	t.Setenv("DB_MAX_CONNS", "7")
	t.Setenv("REVIEW_DEFAULT_DELAY", "72h")
	t.Setenv("OCR_TIMEOUT", "not-a-duration")

	cfg := LoadConfig()
	if !cfg.Database.InMemory || cfg.Database.MaxConns != 7 {
		t.Errorf("Database = %+v", cfg.Database)
	}
	if cfg.OCR.Engine != "cli" || cfg.OCR.PageSegMode != 6 {
		t.Errorf("OCR = %+v", cfg.OCR)
	}
	if cfg.OCR.Timeout != 2*time.Minute {
		t.Errorf("unparsable duration should keep the default, got %v", cfg.OCR.Timeout)
	}
	if cfg.Review.DefaultDelay != 72*time.Hour {
		t.Errorf("DefaultDelay = %v", cfg.Review.DefaultDelay)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
}

func TestValidateRejects(t *testing.T) {
	t.Setenv("STORE_INMEM", "true")
	tests := map[string]func(*Config){
		"engine":   func(c *Config) { c.OCR.Engine = "paddle" },
		"psm":      func(c *Config) { c.OCR.PageSegMode = 14 },
		"psmOSD":   func(c *Config) { c.OCR.PageSegMode = 0 },
		"delay":    func(c *Config) { c.Review.DefaultDelay = 0 },
		"grpcAddr": func(c *Config) { c.Server.GRPCAddr = "" },
	}
	for name, mutate := range tests {
		t.Run(name, func(t *testing.T) {
			cfg := LoadConfig()
			mutate(cfg)
			err := cfg.Validate()
			if !errors.Is(err, ErrInvalidInput) {
				t.Fatalf("Validate() = %v, want ErrInvalidInput", err)
			}
			if ErrorCode(err) != "CONFIG_ERROR" {
				t.Errorf("code = %q", ErrorCode(err))
			}
		})
	}
}

func TestLoadDotEnv(t *testing.T) {
	if err := LoadDotEnv(filepath.Join(t.TempDir(), "missing.env")); err != nil {
		t.Fatalf("missing file should be ignored, got %v", err)
	}

	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte("STUDYNOTE_TEST_A=from-file\nSTUDYNOTE_TEST_B=from-file\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("STUDYNOTE_TEST_B", "from-env")
	// unset A after the test; Setenv registers the restore
	t.Setenv("STUDYNOTE_TEST_A", "")
	_ = os.Unsetenv("STUDYNOTE_TEST_A")

	if err := LoadDotEnv(path); err != nil {
		t.Fatalf("LoadDotEnv() error = %v", err)
	}
	if got := os.Getenv("STUDYNOTE_TEST_A"); got != "from-file" {
		t.Errorf("A = %q", got)
	}
	if got := os.Getenv("STUDYNOTE_TEST_B"); got != "from-env" {
		t.Errorf("existing variable overwritten: B = %q", got)
	}
}

func TestErrorCode(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{&StoreError{Code: "23505", Op: "insert"}, "23505"},
		{WrapError(NewAppError("OCR_FAILED", "x", nil), "page"), "OCR_FAILED"},
		{WrapError(ErrInvalidInput, "bad"), "INVALID_INPUT"},
		{errors.New("boom"), "INTERNAL"},
	}
	for _, tt := range tests {
		if got := ErrorCode(tt.err); got != tt.want {
			t.Errorf("ErrorCode(%v) = %q, want %q", tt.err, got, tt.want)
		}
	}
}

func TestValidator(t *testing.T) {
	v := NewValidator().
		Field("owner_id", "", Required).
		Field("archive_name", "Biology", Required)
	err := v.Error()
	if !errors.Is(err, ErrValidation) || !IsValidation(err) {
		t.Fatalf("Error() = %v", err)
	}
	if len(v.Errors()) != 1 || v.Errors()[0].Field != "owner_id" {
		t.Errorf("Errors() = %+v", v.Errors())
	}
	if NewValidator().Field("id", "x", Required).Error() != nil {
		t.Error("valid input produced an error")
	}
}
