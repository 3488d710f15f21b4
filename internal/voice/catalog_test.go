package voice_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Jmi2020/TTSHowdy/internal/voice"
)

// installVoice writes a fake voice file pair under dir. Either file can be
// omitted to simulate a broken install.
func installVoice(t *testing.T, dir, locale, name string, withModel, withConfig bool) {
	t.Helper()

	localeDir := filepath.Join(dir, locale)

	err := os.MkdirAll(localeDir, 0o750)
	require.NoError(t, err)

	if withModel {
		err = os.WriteFile(filepath.Join(localeDir, name+".onnx"), []byte("onnx"), 0o600)
		require.NoError(t, err)
	}

	if withConfig {
		err = os.WriteFile(filepath.Join(localeDir, name+".onnx.json"), []byte("{}"), 0o600)
		require.NoError(t, err)
	}
}

func TestList_EmptyDirectory(t *testing.T) {
	t.Parallel()

	catalog := voice.NewCatalog(t.TempDir(), newTestLogger(t))

	voices, err := catalog.List()
	require.NoError(t, err)
	assert.Empty(t, voices)
}

func TestList_MissingDirectory(t *testing.T) {
	t.Parallel()

	missing := filepath.Join(t.TempDir(), "does-not-exist")
	catalog := voice.NewCatalog(missing, newTestLogger(t))

	voices, err := catalog.List()
	require.NoError(t, err)
	assert.Empty(t, voices)
}

func TestList_GroupsPairs(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	installVoice(t, dir, "en_US", "en_US-ryan-medium", true, true)
	installVoice(t, dir, "en_GB", "en_GB-alan-low", true, false)

	catalog := voice.NewCatalog(dir, newTestLogger(t))

	voices, err := catalog.List()
	require.NoError(t, err)
	require.Len(t, voices, 2)

	assert.Equal(t, "en_GB-alan-low", voices[0].Name)
	assert.False(t, voices[0].Complete)

	assert.Equal(t, "en_US-ryan-medium", voices[1].Name)
	assert.True(t, voices[1].Complete)
}

func TestResolve_Success(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	installVoice(t, dir, "en_US", "en_US-ryan-medium", true, true)

	catalog := voice.NewCatalog(dir, newTestLogger(t))

	resolved, err := catalog.Resolve("en_US-ryan-medium")
	require.NoError(t, err)

	assert.True(t, resolved.Complete)
	assert.Equal(t, filepath.Join(dir, "en_US", "en_US-ryan-medium.onnx"), resolved.ModelPath)
	assert.Equal(t, filepath.Join(dir, "en_US", "en_US-ryan-medium.onnx.json"), resolved.ConfigPath)
}

func TestResolve_MissingNamesBothPaths(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	catalog := voice.NewCatalog(dir, newTestLogger(t))

	_, err := catalog.Resolve("en_US-ryan-medium")
	require.ErrorIs(t, err, voice.ErrVoiceNotFound)

	assert.Contains(t, err.Error(), filepath.Join(dir, "en_US", "en_US-ryan-medium.onnx"))
	assert.Contains(t, err.Error(), filepath.Join(dir, "en_US", "en_US-ryan-medium.onnx.json"))
}

func TestResolve_MissingSidecar(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	installVoice(t, dir, "en_US", "en_US-ryan-medium", true, false)

	catalog := voice.NewCatalog(dir, newTestLogger(t))

	_, err := catalog.Resolve("en_US-ryan-medium")
	require.ErrorIs(t, err, voice.ErrVoiceNotFound)

	// Only the absent sidecar is listed, not the present model file.
	assert.Contains(t, err.Error(), "expected "+filepath.Join(dir, "en_US", "en_US-ryan-medium.onnx.json"))
	assert.NotContains(t, err.Error(), ".onnx and")
}

func TestResolve_MalformedName(t *testing.T) {
	t.Parallel()

	catalog := voice.NewCatalog(t.TempDir(), newTestLogger(t))

	_, err := catalog.Resolve("ryan")
	require.ErrorIs(t, err, voice.ErrBadVoiceName)
}
