package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/magefree/hearthstone-go/internal/game"
	"github.com/magefree/hearthstone-go/internal/history"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "console", cfg.Logging.Format)
	assert.Equal(t, history.DriverMemory, cfg.History.Driver)
	assert.Equal(t, game.DefaultConfig(), cfg.ToGame())
}

func TestLoadFileAndEnv(t *testing.T) {
	path := writeConfig(t, `
logging:
  level: debug
  format: json
game:
  max_desk: 5
  hero_health: 20
  state_file: state.yaml
engine:
  max_dispatch: 500
history:
  driver: none
`)
	t.Setenv("HS_GAME_MAX_HAND", "6")
	t.Setenv("HS_HISTORY_DIRECTORY", "/tmp/journals")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, "state.yaml", cfg.Game.StateFile)

	gc := cfg.ToGame()
	assert.Equal(t, 5, gc.MaxDesk)
	assert.Equal(t, 6, gc.MaxHand)
	assert.Equal(t, 10, gc.MaxCrystal)
	assert.Equal(t, 20, gc.HeroHealth)
	assert.Equal(t, 500, gc.MaxDispatch)

	hc := cfg.ToHistory()
	assert.Equal(t, history.DriverNone, hc.Driver)
	assert.Equal(t, "/tmp/journals", hc.Directory)
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"zero desk", "game:\n  max_desk: 0\n"},
		{"negative dispatch", "engine:\n  max_dispatch: -1\n"},
		{"bad level", "logging:\n  level: loud\n"},
		{"unknown driver", "history:\n  driver: sqlite\n"},
		{"postgres without url", "history:\n  driver: postgres\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			assert.Error(t, err)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
