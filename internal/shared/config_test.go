package shared

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestConfig(t *testing.T) {
	t.Run("DefaultConfig", func(t *testing.T) {
		config := DefaultConfig()

		if config.Database.Path != "./undertone.db" {
			t.Errorf("expected database path ./undertone.db, got %s", config.Database.Path)
		}

		if config.API.BaseURL != "http://127.0.0.1:5001" {
			t.Errorf("expected base URL http://127.0.0.1:5001, got %s", config.API.BaseURL)
		}

		if config.Search.DefaultMode != "all" {
			t.Errorf("expected default search mode all, got %s", config.Search.DefaultMode)
		}

		if !config.Session.AutoLoginAfterRegister {
			t.Error("expected auto login after register to be enabled by default")
		}

		if config.Server.Addr() != "127.0.0.1:5001" {
			t.Errorf("expected server addr 127.0.0.1:5001, got %s", config.Server.Addr())
		}
	})

	t.Run("CreateConfigFile", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "config.toml")

		if err := CreateConfigFile(configPath); err != nil {
			t.Fatalf("failed to create config file: %v", err)
		}

		if _, err := os.Stat(configPath); err != nil {
			t.Fatalf("config file should exist: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load created config: %v", err)
		}

		defaultConfig := DefaultConfig()
		if config.Database.Path != defaultConfig.Database.Path {
			t.Errorf("created config database path doesn't match default")
		}

		if err := CreateConfigFile(configPath); err == nil {
			t.Error("creating config file again should fail")
		}
	})

	t.Run("LoadConfig", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "config.toml")

		testConfig := `[api]
base_url = "https://undertone.example.com"
timeout_seconds = 5
requests_per_second = 2.5

[session]
auto_login_after_register = false

[database]
path = "/custom/path.db"
`
		if err := os.WriteFile(configPath, []byte(testConfig), 0644); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load config: %v", err)
		}

		if config.API.BaseURL != "https://undertone.example.com" {
			t.Errorf("expected custom base URL, got %s", config.API.BaseURL)
		}
		if config.API.RequestsPerSecond != 2.5 {
			t.Errorf("expected 2.5 requests per second, got %v", config.API.RequestsPerSecond)
		}
		if config.Session.AutoLoginAfterRegister {
			t.Error("expected auto login to be disabled")
		}
		if config.Database.Path != "/custom/path.db" {
			t.Errorf("expected database path /custom/path.db, got %s", config.Database.Path)
		}
		if config.Search.DefaultMode != "all" {
			t.Errorf("expected unset keys to keep defaults, got mode %q", config.Search.DefaultMode)
		}
	})

	t.Run("LoadConfig With Missing File", func(t *testing.T) {
		if _, err := LoadConfig(filepath.Join(t.TempDir(), "missing.toml")); !errors.Is(err, ErrMissingConfig) {
			t.Errorf("expected ErrMissingConfig, got %v", err)
		}
	})

	t.Run("SaveConfig Round Trip", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "config.toml")
		config := DefaultConfig()
		config.API.BaseURL = "http://localhost:9999"

		if err := SaveConfig(configPath, config); err != nil {
			t.Fatalf("failed to save config: %v", err)
		}

		loaded, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load saved config: %v", err)
		}
		if loaded.API.BaseURL != "http://localhost:9999" {
			t.Errorf("expected saved base URL, got %s", loaded.API.BaseURL)
		}
	})

	t.Run("SaveConfig With Nil Config", func(t *testing.T) {
		if err := SaveConfig(filepath.Join(t.TempDir(), "c.toml"), nil); err == nil {
			t.Error("expected error for nil config")
		}
	})

	t.Run("ApplyEnv", func(t *testing.T) {
		t.Run("environment overrides file values", func(t *testing.T) {
			t.Setenv("UNDERTONE_BASE_URL", "http://override:8000/")
			t.Setenv("UNDERTONE_LOG_LEVEL", "debug")

			config := DefaultConfig()
			if err := ApplyEnv(config, ""); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			if config.API.BaseURL != "http://override:8000" {
				t.Errorf("expected trimmed override base URL, got %s", config.API.BaseURL)
			}
			if config.Log.Level != "debug" {
				t.Errorf("expected log level debug, got %s", config.Log.Level)
			}
		})

		t.Run("loads values from env file", func(t *testing.T) {
			envFile := filepath.Join(t.TempDir(), ".env")
			if err := os.WriteFile(envFile, []byte("UNDERTONE_SEARCH_MODE=mainstream\n"), 0644); err != nil {
				t.Fatalf("failed to write env file: %v", err)
			}
			t.Setenv("UNDERTONE_SEARCH_MODE", "")
			os.Unsetenv("UNDERTONE_SEARCH_MODE")

			config := DefaultConfig()
			if err := ApplyEnv(config, envFile); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if config.Search.DefaultMode != "mainstream" {
				t.Errorf("expected mode from env file, got %s", config.Search.DefaultMode)
			}
			os.Unsetenv("UNDERTONE_SEARCH_MODE")
		})

		t.Run("missing env file is ignored", func(t *testing.T) {
			config := DefaultConfig()
			if err := ApplyEnv(config, filepath.Join(t.TempDir(), "nope.env")); err != nil {
				t.Errorf("expected missing env file to be ignored, got %v", err)
			}
		})
	})
}
