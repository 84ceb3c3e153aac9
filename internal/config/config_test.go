package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaultConfig(t *testing.T) {
	t.Setenv("ELIB_DATA", t.TempDir())

	opts, err := GetConfig()
	if err != nil {
		t.Fatalf("Error loading config: %s", err)
	}

	t.Logf(`Config
		Host: %s
		Port: %d
		LogLevel: %s
		Data: %s
		`, opts.Host, opts.Port, opts.LogLevel, opts.Data)

	if opts.Port != defaultPort {
		t.Errorf("port incorrect: %d", opts.Port)
	}
	if opts.DefaultField != "Uncategorized" {
		t.Errorf("default_field incorrect: %s", opts.DefaultField)
	}
	if opts.MetadataPath() != filepath.Join(opts.Data, defaultMetadataFile) {
		t.Errorf("metadata path incorrect: %s", opts.MetadataPath())
	}
	for _, ext := range []string{"pdf", ".EPUB", "mobi"} {
		if !opts.IsSupportedType(ext) {
			t.Errorf("%s should be supported", ext)
		}
	}
	if opts.IsSupportedType("txt") {
		t.Errorf("txt should not be supported")
	}
}

func TestLoadConfigFile(t *testing.T) {
	t.Setenv("ELIB_DATA", t.TempDir())

	opts, err := ParseFile("config_test.toml")
	if err != nil {
		t.Fatalf("Error loading config: %s", err)
	}
	if opts.Host != "127.0.0.1" {
		t.Errorf("host incorrect")
	}
	if opts.LogFile != "test.log" {
		t.Errorf("log_file incorrect")
	}
	if opts.Port != 2333 {
		t.Errorf("port incorrect")
	}
	if opts.LogLevel != "debug" {
		t.Errorf("log_level incorrect")
	}
	if opts.BooksPath() != filepath.Join(opts.Data, "books") {
		t.Errorf("books path incorrect: %s", opts.BooksPath())
	}
	if len(opts.SupportedTypes) != 2 || opts.SupportedTypes[0] != "pdf" {
		t.Errorf("supported_types incorrect: %v", opts.SupportedTypes)
	}
	if len(opts.CORSAllowedOrigins) != 1 || opts.CORSAllowedOrigins[0] != "https://library.example.org" {
		t.Errorf("cors_allowed_origins incorrect: %v", opts.CORSAllowedOrigins)
	}
	// Untouched keys keep their defaults.
	if opts.MaxUploadSize != defaultMaxUploadSize {
		t.Errorf("max_upload_size incorrect: %d", opts.MaxUploadSize)
	}
}

func TestEnvironmentOverridesConfigFile(t *testing.T) {
	t.Setenv("ELIB_DATA", t.TempDir())
	t.Setenv("ELIB_PORT", "9000")
	t.Setenv("ELIB_DEFAULT_FIELD", "Misc")

	opts, err := ParseFile("config_test.toml")
	if err != nil {
		t.Fatalf("Error loading config: %s", err)
	}
	if opts.Port != 9000 {
		t.Errorf("port not overridden: %d", opts.Port)
	}
	if opts.DefaultField != "Misc" {
		t.Errorf("default_field not overridden: %s", opts.DefaultField)
	}
}

func TestDataDirIsCreated(t *testing.T) {
	dataDir := filepath.Join(t.TempDir(), "nested", "data")
	t.Setenv("ELIB_DATA", dataDir+"/")

	opts, err := GetConfig()
	if err != nil {
		t.Fatalf("Error loading config: %s", err)
	}
	if opts.Data != dataDir {
		t.Errorf("data dir incorrect: %s", opts.Data)
	}
	if info, err := os.Stat(dataDir); err != nil || !info.IsDir() {
		t.Errorf("data dir not created: %v", err)
	}
}

func TestParseMissingFile(t *testing.T) {
	if _, err := ParseFile(filepath.Join(t.TempDir(), "missing.toml")); err == nil {
		t.Errorf("expected an error for a missing config file")
	}
}

func TestShorterListReplacesDefaults(t *testing.T) {
	t.Setenv("ELIB_DATA", t.TempDir())
	file := filepath.Join(t.TempDir(), "config.toml")
	content := "supported_types = [\"pdf\"]\ncors_allowed_origins = [\"https://a.example.org\"]\n"
	if err := os.WriteFile(file, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	opts, err := ParseFile(file)
	if err != nil {
		t.Fatal(err)
	}
	if len(opts.SupportedTypes) != 1 || opts.SupportedTypes[0] != "pdf" {
		t.Errorf("supported_types incorrect: %v", opts.SupportedTypes)
	}
	if opts.IsSupportedType("epub") {
		t.Errorf("epub should not be allowed")
	}
	if len(opts.CORSAllowedOrigins) != 1 {
		t.Errorf("cors_allowed_origins incorrect: %v", opts.CORSAllowedOrigins)
	}

	// A reload decodes over a copy of the loaded options.
	reloaded := *opts
	reloaded.SupportedTypes = []string{"pdf", "epub", "mobi"}
	if err := unmarshal(v, &reloaded); err != nil {
		t.Fatal(err)
	}
	if len(reloaded.SupportedTypes) != 1 {
		t.Errorf("reloaded supported_types incorrect: %v", reloaded.SupportedTypes)
	}
}
