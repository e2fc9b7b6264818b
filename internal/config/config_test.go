package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, 3, cfg.Game.MinPlayers)
	assert.Equal(t, 5*time.Second, cfg.Game.WordShowDuration)
	assert.Equal(t, 8, cfg.Room.MaxPlayers)
	assert.Equal(t, 6, cfg.Room.CodeLength)
	assert.NotEmpty(t, cfg.Avatar.Styles)
}

func TestLoad_FileAndEnv(t *testing.T) {
	dir := t.TempDir()
	content := `{
		"port": 9090,
		"log_level": "debug",
		"game": {"discussion_duration": "45s"},
		"room": {"max_players": 10}
	}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "app_config.json"), []byte(content), 0o644))

	t.Setenv("IMPOSTOR_GAME_VOTING_DURATION", "12s")

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 45*time.Second, cfg.Game.DiscussionDuration)
	assert.Equal(t, 12*time.Second, cfg.Game.VotingDuration)
	assert.Equal(t, 10, cfg.Room.MaxPlayers)
}

func TestLoad_RejectsInvalid(t *testing.T) {
	dir := t.TempDir()
	content := `{"game": {"min_players": 2}}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "app_config.json"), []byte(content), 0o644))

	_, err := Load(dir)
	assert.Error(t, err)
}

func TestLoad_DotEnvFromConfigDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("IMPOSTOR_ROOM_CODE_LENGTH=7\n"), 0o644))
	t.Cleanup(func() { os.Unsetenv("IMPOSTOR_ROOM_CODE_LENGTH") })

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, 7, cfg.Room.CodeLength)
}
