package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
)

func TestSetupConfig(t *testing.T) {
	t.Run("first run seeds config.yaml", func(t *testing.T) {
		viper.Reset()
		dir := t.TempDir()
		t.Setenv("DATA_DIR", dir)

		if err := setupConfig(); err != nil {
			t.Fatalf("setupConfig() failed: %v", err)
		}

		if _, err := os.Stat(filepath.Join(dir, "config.yaml")); err != nil {
			t.Fatalf("config.yaml not seeded: %v", err)
		}
		if got := viper.GetString("difficulty_level"); got != "medium" {
			t.Fatalf("\nwanted:\nmedium\ngot:\n%s", got)
		}
	})

	t.Run("existing config.yaml wins over defaults", func(t *testing.T) {
		viper.Reset()
		dir := t.TempDir()
		t.Setenv("DATA_DIR", dir)

		cfg := []byte("difficulty_level: hard\nhttp_addr: \":8080\"\n")
		if err := os.WriteFile(filepath.Join(dir, "config.yaml"), cfg, 0o644); err != nil {
			t.Fatalf("os.WriteFile() failed: %v", err)
		}

		if err := setupConfig(); err != nil {
			t.Fatalf("setupConfig() failed: %v", err)
		}

		if got := viper.GetString("difficulty_level"); got != "hard" {
			t.Fatalf("\nwanted:\nhard\ngot:\n%s", got)
		}
		if got := viper.GetString("http_addr"); got != ":8080" {
			t.Fatalf("\nwanted:\n:8080\ngot:\n%s", got)
		}
	})

	t.Run("data_dir is created if missing", func(t *testing.T) {
		viper.Reset()
		dir := filepath.Join(t.TempDir(), "nested", "data")
		t.Setenv("DATA_DIR", dir)

		if err := setupConfig(); err != nil {
			t.Fatalf("setupConfig() failed: %v", err)
		}
		if _, err := os.Stat(dir); err != nil {
			t.Fatalf("data_dir not created: %v", err)
		}
	})
}
