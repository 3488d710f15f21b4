package voice_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Jmi2020/TTSHowdy/internal/voice"
)

const (
	testModelBody  = "fake onnx model bytes"
	testConfigBody = `{"audio": {"sample_rate": 22050}}`
)

// newAssetServer mocks the voice repository for the default voice.
func newAssetServer(t *testing.T) *httptest.Server {
	t.Helper()

	server := httptest.NewServer(http.HandlerFunc(
		func(responseWriter http.ResponseWriter, request *http.Request) {
			switch request.URL.Path {
			case "/en/en_US/ryan/medium/en_US-ryan-medium.onnx":
				_, _ = responseWriter.Write([]byte(testModelBody))
			case "/en/en_US/ryan/medium/en_US-ryan-medium.onnx.json":
				_, _ = responseWriter.Write([]byte(testConfigBody))
			default:
				http.NotFound(responseWriter, request)
			}
		},
	))

	t.Cleanup(server.Close)

	return server
}

// requireNoPartials fails when any in-flight transfer file is left on disk.
func requireNoPartials(t *testing.T, dir string) {
	t.Helper()

	walkErr := filepath.WalkDir(dir, func(path string, entry os.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if !entry.IsDir() {
			assert.False(t, strings.HasSuffix(path, ".partial"), "leftover partial file: %s", path)
		}

		return nil
	})
	require.NoError(t, walkErr)
}

func TestDownload_FetchesPair(t *testing.T) {
	t.Parallel()

	server := newAssetServer(t)
	dir := t.TempDir()

	downloader := voice.NewDownloader(dir, server.URL, newTestLogger(t))

	err := downloader.Download(context.Background(), "en_US-ryan-medium")
	require.NoError(t, err)

	modelData, err := os.ReadFile(filepath.Join(dir, "en_US", "en_US-ryan-medium.onnx"))
	require.NoError(t, err)
	assert.Equal(t, testModelBody, string(modelData))

	configData, err := os.ReadFile(filepath.Join(dir, "en_US", "en_US-ryan-medium.onnx.json"))
	require.NoError(t, err)
	assert.Equal(t, testConfigBody, string(configData))

	requireNoPartials(t, dir)
}

func TestDownload_SecondRunIsCleanSkip(t *testing.T) {
	t.Parallel()

	server := newAssetServer(t)
	dir := t.TempDir()

	downloader := voice.NewDownloader(dir, server.URL, newTestLogger(t))

	err := downloader.Download(context.Background(), "en_US-ryan-medium")
	require.NoError(t, err)

	modelPath := filepath.Join(dir, "en_US", "en_US-ryan-medium.onnx")

	firstRun, err := os.ReadFile(modelPath)
	require.NoError(t, err)

	err = downloader.Download(context.Background(), "en_US-ryan-medium")
	require.NoError(t, err)

	secondRun, err := os.ReadFile(modelPath)
	require.NoError(t, err)

	assert.Equal(t, firstRun, secondRun)
	requireNoPartials(t, dir)
}

func TestDownload_MissingAssetLeavesNoPartial(t *testing.T) {
	t.Parallel()

	server := newAssetServer(t)
	dir := t.TempDir()

	downloader := voice.NewDownloader(dir, server.URL, newTestLogger(t))

	// The mock server only knows the ryan voice, so this 404s.
	err := downloader.Download(context.Background(), "en_US-amy-low")
	require.ErrorIs(t, err, voice.ErrDownloadFailed)
	assert.Contains(t, err.Error(), "en_US-amy-low.onnx")

	requireNoPartials(t, dir)

	_, statErr := os.Stat(filepath.Join(dir, "en_US", "en_US-amy-low.onnx"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestDownload_MalformedName(t *testing.T) {
	t.Parallel()

	downloader := voice.NewDownloader(t.TempDir(), "http://127.0.0.1:1", newTestLogger(t))

	err := downloader.Download(context.Background(), "ryan")
	require.ErrorIs(t, err, voice.ErrBadVoiceName)
}

func TestDownload_ServerUnreachable(t *testing.T) {
	t.Parallel()

	server := newAssetServer(t)
	server.Close()

	dir := t.TempDir()
	downloader := voice.NewDownloader(dir, server.URL, newTestLogger(t))

	err := downloader.Download(context.Background(), "en_US-ryan-medium")
	require.ErrorIs(t, err, voice.ErrDownloadFailed)
	requireNoPartials(t, dir)
}
