package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDriver(t *testing.T) {
	assert.IsType(t, JSON{}, NewDriver("/tmp/wlbar.json"))
	assert.IsType(t, YAML{}, NewDriver("/tmp/wlbar.yaml"))
	assert.IsType(t, YAML{}, NewDriver("/tmp/wlbar"))
}

func TestStoreWritesDefault(t *testing.T) {
	for _, name := range []string{"wlbar.yaml", "wlbar.json"} {
		t.Run(name, func(t *testing.T) {
			filePath := filepath.Join(t.TempDir(), name)

			store, err := NewStore(NewDriver(filePath))
			require.NoError(t, err)
			assert.FileExists(t, filePath)

			cfg, err := store.GetConfig()
			require.NoError(t, err)
			assert.Equal(t, Default(), cfg)
		})
	}
}

func TestStoreUpdateConfig(t *testing.T) {
	filePath := filepath.Join(t.TempDir(), "wlbar.yaml")

	store, err := NewStore(NewYAML(filePath))
	require.NoError(t, err)

	err = store.UpdateConfig(func(cfg Config) (Config, error) {
		cfg.Workspaces.SyncCommand = "notify-send {name}"
		cfg.Workspaces.SyncOnlyActive = true
		return cfg, nil
	})
	require.NoError(t, err)

	cfg, err := store.GetConfig()
	require.NoError(t, err)
	assert.Equal(t, "notify-send {name}", cfg.Workspaces.SyncCommand)
	assert.True(t, cfg.Workspaces.SyncOnlyActive)
	assert.NoFileExists(t, filePath+".tmp")
}

func TestYAMLPartialFileKeepsDefaults(t *testing.T) {
	filePath := filepath.Join(t.TempDir(), "wlbar.yaml")
	require.NoError(t, os.WriteFile(filePath, []byte("taskbar:\n  display: both\nworkspaces:\n  show_hidden: true\n"), 0600))

	store, err := NewStore(NewYAML(filePath))
	require.NoError(t, err)

	cfg, err := store.GetConfig()
	require.NoError(t, err)
	assert.Equal(t, DisplayBoth, cfg.Taskbar.Display)
	assert.Equal(t, 30, cfg.Taskbar.MaxTitleLength)
	assert.True(t, cfg.Workspaces.ShowHidden)
	assert.True(t, cfg.Workspaces.Scroll)
	assert.Equal(t, "{name}", cfg.Workspaces.Format)
}

func TestReadEmptyFile(t *testing.T) {
	filePath := filepath.Join(t.TempDir(), "wlbar.yaml")
	require.NoError(t, os.WriteFile(filePath, nil, 0600))

	cfg, err := NewYAML(filePath).Read()
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestReadInvalidFile(t *testing.T) {
	filePath := filepath.Join(t.TempDir(), "wlbar.json")
	require.NoError(t, os.WriteFile(filePath, []byte("{"), 0600))

	_, err := NewJSON(filePath).Read()
	assert.Error(t, err)
}

func TestNormalize(t *testing.T) {
	cfg := Config{
		Backend: "sway",
		Taskbar: Taskbar{Display: "text", MaxTitleLength: -1},
	}.Normalize()

	assert.Equal(t, BackendAuto, cfg.Backend)
	assert.Equal(t, DisplayIcon, cfg.Taskbar.Display)
	assert.Equal(t, 30, cfg.Taskbar.MaxTitleLength)
	assert.Equal(t, 32, cfg.Taskbar.IconSize)
	assert.Equal(t, "{name}", cfg.Workspaces.Format)
}

func TestResolveBackend(t *testing.T) {
	env := func(vars map[string]string) func(string) string {
		return func(key string) string { return vars[key] }
	}

	assert.Equal(t, BackendWayland, ResolveBackend(BackendAuto, env(map[string]string{"WAYLAND_DISPLAY": "wayland-1", "DISPLAY": ":0"})))
	assert.Equal(t, BackendX11, ResolveBackend(BackendAuto, env(map[string]string{"DISPLAY": ":0"})))
	assert.Equal(t, "", ResolveBackend(BackendAuto, env(nil)))
	assert.Equal(t, BackendX11, ResolveBackend(BackendX11, env(map[string]string{"WAYLAND_DISPLAY": "wayland-1"})))
}

func TestWatcherDebounces(t *testing.T) {
	filePath := filepath.Join(t.TempDir(), "wlbar.yaml")
	store, err := NewStore(NewYAML(filePath))
	require.NoError(t, err)

	w := NewWatcher(filePath, 150*time.Millisecond)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Serve(ctx)

	// Give the watcher time to register.
	time.Sleep(100 * time.Millisecond)

	for i := range 3 {
		require.NoError(t, store.UpdateConfig(func(cfg Config) (Config, error) {
			cfg.Taskbar.MaxTitleLength = 100 + i
			return cfg, nil
		}))
	}

	select {
	case <-w.Changed():
	case <-time.After(2 * time.Second):
		t.Fatal("no change reported")
	}

	select {
	case <-w.Changed():
		t.Fatal("burst reported twice")
	case <-time.After(400 * time.Millisecond):
	}
}
