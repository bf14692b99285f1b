package logging

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, ws, body string) {
	t.Helper()
	dir := filepath.Join(ws, ".quartermaster")
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(body), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestInitializeWithoutConfig(t *testing.T) {
	ws := t.TempDir()
	t.Cleanup(CloseAll)

	if err := Initialize(ws); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}
	if IsDebugMode() {
		t.Error("debug mode should be off when no config exists")
	}
	// Logs directory must not be created in production mode.
	if _, err := os.Stat(filepath.Join(ws, ".quartermaster", "logs")); !os.IsNotExist(err) {
		t.Error("logs directory should not exist without debug_mode")
	}
}

func TestInitializeDebugMode(t *testing.T) {
	ws := t.TempDir()
	t.Cleanup(CloseAll)

	writeConfig(t, ws, "logging:\n  debug_mode: true\n  level: debug\n")

	if err := Initialize(ws); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}
	if !IsDebugMode() {
		t.Fatal("debug mode should be on")
	}

	Exec("command completed: %s", "winget search")
	CloseAll()

	entries, err := os.ReadDir(filepath.Join(ws, ".quartermaster", "logs"))
	if err != nil {
		t.Fatalf("logs directory missing: %v", err)
	}
	if len(entries) == 0 {
		t.Error("expected at least one log file")
	}
}

func TestCategoryFilter(t *testing.T) {
	ws := t.TempDir()
	t.Cleanup(CloseAll)

	writeConfig(t, ws, `logging:
  debug_mode: true
  level: info
  categories:
    exec: false
    model: true
`)

	if err := Initialize(ws); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}

	if IsCategoryEnabled(CategoryExec) {
		t.Error("exec category should be disabled")
	}
	if !IsCategoryEnabled(CategoryModel) {
		t.Error("model category should be enabled")
	}
	// Unlisted categories default to enabled.
	if !IsCategoryEnabled(CategorySession) {
		t.Error("session category should default to enabled")
	}
}

func TestReloadConfig(t *testing.T) {
	ws := t.TempDir()
	t.Cleanup(CloseAll)

	writeConfig(t, ws, "logging:\n  debug_mode: false\n")
	if err := Initialize(ws); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}
	if IsDebugMode() {
		t.Fatal("debug mode should start off")
	}

	writeConfig(t, ws, "logging:\n  debug_mode: true\n  level: warn\n")
	if err := ReloadConfig(); err != nil {
		t.Fatalf("ReloadConfig failed: %v", err)
	}
	if !IsDebugMode() {
		t.Error("debug mode should be on after reload")
	}
}

// The config watcher reloads the level from another goroutine while the
// session keeps logging. Run with -race.
func TestReloadConfigDuringLogging(t *testing.T) {
	ws := t.TempDir()
	t.Cleanup(CloseAll)

	writeConfig(t, ws, "logging:\n  debug_mode: true\n  level: debug\n")
	if err := Initialize(ws); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		l := Get(CategorySession)
		for i := 0; i < 200; i++ {
			l.Debug("turn %d", i)
			l.Info("turn %d", i)
			l.Warn("turn %d", i)
		}
	}()

	for i := 0; i < 50; i++ {
		level := "debug"
		if i%2 == 0 {
			level = "warn"
		}
		writeConfig(t, ws, "logging:\n  debug_mode: true\n  level: "+level+"\n")
		if err := ReloadConfig(); err != nil {
			t.Fatalf("ReloadConfig failed: %v", err)
		}
	}
	<-done
}
