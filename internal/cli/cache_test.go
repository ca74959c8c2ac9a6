package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/matzehuels/ndorder/pkg/cache"
)

func TestCacheDir(t *testing.T) {
	t.Run("xdg", func(t *testing.T) {
		t.Setenv("XDG_CACHE_HOME", "/tmp/xdg-cache")
		dir, err := cacheDir()
		if err != nil {
			t.Fatal(err)
		}
		if want := filepath.Join("/tmp/xdg-cache", appName); dir != want {
			t.Errorf("cacheDir() = %q, want %q", dir, want)
		}
	})
	t.Run("home", func(t *testing.T) {
		t.Setenv("XDG_CACHE_HOME", "")
		dir, err := cacheDir()
		if err != nil {
			t.Fatal(err)
		}
		// Verify the expected structure: $HOME/.cache/ndorder
		home, _ := os.UserHomeDir()
		if want := filepath.Join(home, ".cache", appName); dir != want {
			t.Errorf("cacheDir() = %q, want %q", dir, want)
		}
	})
}

func TestFileCacheDir(t *testing.T) {
	_, cacheHome := isolate(t)

	c := New(os.Stderr, LogInfo)
	dir, err := c.fileCacheDir()
	if err != nil {
		t.Fatalf("fileCacheDir() error: %v", err)
	}
	if want := filepath.Join(cacheHome, appName); dir != want {
		t.Errorf("fileCacheDir() = %q, want %q", dir, want)
	}

	c.Config.Cache.Dir = "/srv/ndorder-cache"
	if dir, _ := c.fileCacheDir(); dir != "/srv/ndorder-cache" {
		t.Errorf("fileCacheDir() with configured dir = %q", dir)
	}

	c.Config.Cache.Backend = cache.BackendRedis
	if _, err := c.fileCacheDir(); err == nil {
		t.Error("fileCacheDir() should fail for the redis backend")
	}
}
