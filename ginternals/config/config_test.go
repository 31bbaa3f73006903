package config

import (
	"testing"

	"github.com/bokuyemskyy/mgit/env"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestConfig(t *testing.T) *Config {
	t.Helper()

	fs := afero.NewMemMapFs()
	cfg, err := LoadConfigSkipEnv(LoadConfigOptions{
		FS:               fs,
		WorkingDirectory: "/repo",
		GitDirPath:       "/repo/.git",
		SkipGitDirLookUp: true,
	})
	require.NoError(t, err)
	return cfg
}

func TestDefaultBranchNameFallsBackToMain(t *testing.T) {
	t.Parallel()

	cfg := newTestConfig(t)
	assert.Equal(t, "main", cfg.DefaultBranchName())
}

func TestUpdateIsBareRoundTrips(t *testing.T) {
	t.Parallel()

	cfg := newTestConfig(t)

	_, ok := cfg.IsBareRepository()
	assert.False(t, ok)

	cfg.UpdateIsBare(true)
	isBare, ok := cfg.IsBareRepository()
	require.True(t, ok)
	assert.True(t, isBare)
}

func TestFileModeEnabledDefaultsTrue(t *testing.T) {
	t.Parallel()

	cfg := newTestConfig(t)
	assert.True(t, cfg.FileModeEnabled())
}

func TestGitDirPathIsAbsolute(t *testing.T) {
	t.Parallel()

	cfg := newTestConfig(t)
	assert.Equal(t, "/repo/.git", cfg.GitDirPath)
}

func TestNoWorkTreeAloneIsRejected(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	_, err := LoadConfig(env.NewFromKVList([]string{}), LoadConfigOptions{
		FS:               fs,
		WorkingDirectory: "/repo",
		WorkTreePath:     "/somewhere/else",
		SkipGitDirLookUp: true,
	})
	assert.ErrorIs(t, err, ErrNoWorkTreeAlone)
}

func TestGitConfigNoSystemEnvDisablesSystemConfig(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	cfg, err := LoadConfig(env.NewFromKVList([]string{"GIT_CONFIG_NOSYSTEM=true"}), LoadConfigOptions{
		FS:               fs,
		WorkingDirectory: "/repo",
		GitDirPath:       "/repo/.git",
		SkipGitDirLookUp: true,
	})
	require.NoError(t, err)
	assert.True(t, cfg.SkipSystemConfig)
}

func TestSaveWritesConfigFile(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	cfg, err := LoadConfigSkipEnv(LoadConfigOptions{
		FS:               fs,
		WorkingDirectory: "/repo",
		GitDirPath:       "/repo/.git",
		SkipGitDirLookUp: true,
	})
	require.NoError(t, err)
	require.NoError(t, fs.MkdirAll("/repo/.git", 0o750))

	cfg.UpdateIsBare(true)
	require.NoError(t, cfg.Save())

	exists, err := afero.Exists(fs, cfg.LocalConfig)
	require.NoError(t, err)
	assert.True(t, exists)

	reloaded, err := LoadConfigSkipEnv(LoadConfigOptions{
		FS:               fs,
		WorkingDirectory: "/repo",
		GitDirPath:       "/repo/.git",
		SkipGitDirLookUp: true,
	})
	require.NoError(t, err)
	isBare, ok := reloaded.IsBareRepository()
	require.True(t, ok)
	assert.True(t, isBare)
}
