package voice

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/book-expert/logger"
)

// DefaultAssetBase is the voice repository the downloader fetches from. File
// URLs are derived from the voice name:
//
//	<base>/<lang>/<locale>/<speaker>/<quality>/<name>.onnx[.json]
const DefaultAssetBase = "https://huggingface.co/rhasspy/piper-voices/resolve/main"

// downloadTimeout bounds one asset transfer. Voice models are tens of
// megabytes, so the bound is wide.
const downloadTimeout = 10 * time.Minute

// partialSuffix marks in-flight transfers. A file only appears under its
// final name after a fully completed write.
const partialSuffix = ".partial"

// File and directory permissions.
const (
	filePermissions = 0o600
	dirPermissions  = 0o750
)

// ErrDownloadFailed indicates an asset fetch failed or was interrupted.
var ErrDownloadFailed = errors.New("voice download failed")

// Downloader fetches voice asset pairs into a local voices directory.
type Downloader struct {
	dir        string
	assetBase  string
	httpClient *http.Client
	log        *logger.Logger
}

// NewDownloader creates a downloader writing into dir. An empty assetBase
// falls back to DefaultAssetBase; tests override it with a mock server URL.
func NewDownloader(dir, assetBase string, log *logger.Logger) *Downloader {
	if assetBase == "" {
		assetBase = DefaultAssetBase
	}

	return &Downloader{
		dir:       dir,
		assetBase: assetBase,
		httpClient: &http.Client{
			Timeout: downloadTimeout,
		},
		log: log,
	}
}

// Download fetches the model file and JSON sidecar for the named voice into
// the voices directory, creating it if absent. Files that already exist are
// skipped, so a repeated download is a clean no-op. Each transfer goes to a
// temporary name and is renamed into place only when complete; a failed
// transfer leaves nothing behind.
func (d *Downloader) Download(ctx context.Context, name string) error {
	parsed, err := ParseName(name)
	if err != nil {
		return err
	}

	targetDir := filepath.Join(d.dir, parsed.Locale)

	err = os.MkdirAll(targetDir, dirPermissions)
	if err != nil {
		return fmt.Errorf("%w: failed to create voices directory %s: %w",
			ErrDownloadFailed, targetDir, err)
	}

	baseURL := fmt.Sprintf("%s/%s/%s/%s/%s",
		d.assetBase, parsed.Lang, parsed.Locale, parsed.Speaker, parsed.Quality)

	for _, fileName := range []string{name + ModelExt, name + ConfigExt} {
		targetPath := filepath.Join(targetDir, fileName)

		_, statErr := os.Stat(targetPath)
		if statErr == nil {
			d.log.Info("Skipping %s: already present", targetPath)

			continue
		}

		fetchErr := d.fetchFile(ctx, baseURL+"/"+fileName, targetPath)
		if fetchErr != nil {
			return fetchErr
		}

		d.log.Info("Downloaded %s", targetPath)
	}

	return nil
}

// fetchFile streams one URL to targetPath via a temporary file. The partial
// file is removed on any failure so an interrupted transfer can never be
// mistaken for a complete asset.
func (d *Downloader) fetchFile(ctx context.Context, url, targetPath string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return fmt.Errorf("%w: failed to create request for %s: %w", ErrDownloadFailed, url, err)
	}

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: failed to fetch %s: %w", ErrDownloadFailed, url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: %s returned %s", ErrDownloadFailed, url, resp.Status)
	}

	partialPath := targetPath + partialSuffix

	writeErr := d.writePartial(partialPath, resp.Body)
	if writeErr != nil {
		return fmt.Errorf("%w: failed to write %s: %w", ErrDownloadFailed, partialPath, writeErr)
	}

	renameErr := os.Rename(partialPath, targetPath)
	if renameErr != nil {
		d.removePartial(partialPath)

		return fmt.Errorf("%w: failed to finalize %s: %w", ErrDownloadFailed, targetPath, renameErr)
	}

	return nil
}

func (d *Downloader) writePartial(partialPath string, body io.Reader) error {
	file, err := os.OpenFile(partialPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, filePermissions)
	if err != nil {
		return err
	}

	_, copyErr := io.Copy(file, body)

	closeErr := file.Close()

	if copyErr != nil {
		d.removePartial(partialPath)

		return copyErr
	}

	if closeErr != nil {
		d.removePartial(partialPath)

		return closeErr
	}

	return nil
}

func (d *Downloader) removePartial(partialPath string) {
	removeErr := os.Remove(partialPath)
	if removeErr != nil && !os.IsNotExist(removeErr) {
		d.log.Warn("Failed to remove partial file %s: %v", partialPath, removeErr)
	}
}
