package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Jmi2020/TTSHowdy/internal/config"
)

func TestResolveConfig_Defaults(t *testing.T) {
	t.Parallel()

	cmd := newRootCmd()

	// An explicitly named config file must exist.
	_, err := resolveConfig(cmd, filepath.Join(t.TempDir(), "none.toml"))
	require.Error(t, err)

	cfg, err := resolveConfig(cmd, "")
	require.NoError(t, err)

	assert.Equal(t, config.DefaultHost, cfg.Host)
	assert.Equal(t, config.DefaultModel, cfg.Model)
	assert.Equal(t, config.ModeInteractive, cfg.Mode())
}

func TestResolveConfig_FlagsBeatFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, config.FileName)

	tomlData := `
model = "cowboy-xl"
rate = 0.8
`

	err := os.WriteFile(path, []byte(tomlData), 0o600)
	require.NoError(t, err)

	cmd := newRootCmd()

	err = cmd.Flags().Set(flagRate, "0.5")
	require.NoError(t, err)

	err = cmd.Flags().Set(flagPrompt, "hello")
	require.NoError(t, err)

	cfg, err := resolveConfig(cmd, path)
	require.NoError(t, err)

	// File beats defaults, flags beat file.
	assert.Equal(t, "cowboy-xl", cfg.Model)
	assert.InEpsilon(t, 0.5, cfg.Rate, 0.001)
	assert.Equal(t, config.ModePrompt, cfg.Mode())
}

func TestResolveConfig_ModeFlags(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		set  map[string]string
		want config.Mode
	}{
		{name: "list voices", set: map[string]string{flagListVoices: "true"}, want: config.ModeListVoices},
		{name: "download voice", set: map[string]string{flagDownloadVoice: "true"}, want: config.ModeDownloadVoice},
		{name: "check", set: map[string]string{flagCheck: "true"}, want: config.ModeCheck},
		{name: "direct text", set: map[string]string{flagText: "howdy"}, want: config.ModeDirectText},
		{name: "stdin", set: map[string]string{flagStdin: "true"}, want: config.ModeStdin},
		{name: "prompt", set: map[string]string{flagPrompt: "hello"}, want: config.ModePrompt},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			cmd := newRootCmd()

			for name, value := range testCase.set {
				err := cmd.Flags().Set(name, value)
				require.NoError(t, err)
			}

			cfg, err := resolveConfig(cmd, "")
			require.NoError(t, err)
			assert.Equal(t, testCase.want, cfg.Mode())
		})
	}
}

func TestResolveConfig_InvalidRateFailsValidation(t *testing.T) {
	t.Parallel()

	cmd := newRootCmd()

	err := cmd.Flags().Set(flagRate, "-1")
	require.NoError(t, err)

	cfg, err := resolveConfig(cmd, "")
	require.NoError(t, err)

	require.ErrorIs(t, cfg.Validate(), config.ErrInvalidRate)
}
