package voice

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/book-expert/logger"
)

// Catalog provides read-only access to the voices installed under one
// directory. The directory is an explicit value so tests can point it at a
// temporary location.
type Catalog struct {
	dir string
	log *logger.Logger
}

// NewCatalog creates a catalog over the given voices directory.
func NewCatalog(dir string, log *logger.Logger) *Catalog {
	return &Catalog{
		dir: dir,
		log: log,
	}
}

// Dir returns the voices directory the catalog reads from.
func (c *Catalog) Dir() string {
	return c.dir
}

// Resolve locates the file pair for the named voice. Any missing file makes
// the voice unusable; the error names every expected path that is absent so
// the user can see exactly what to install.
func (c *Catalog) Resolve(name string) (Voice, error) {
	parsed, err := ParseName(name)
	if err != nil {
		return Voice{}, err
	}

	modelPath := filepath.Join(c.dir, parsed.Locale, name+ModelExt)
	configPath := filepath.Join(c.dir, parsed.Locale, name+ConfigExt)

	var missing []string

	_, statErr := os.Stat(modelPath)
	if statErr != nil {
		missing = append(missing, modelPath)
	}

	_, statErr = os.Stat(configPath)
	if statErr != nil {
		missing = append(missing, configPath)
	}

	if len(missing) > 0 {
		return Voice{}, fmt.Errorf("%w: %s (expected %s)",
			ErrVoiceNotFound, name, strings.Join(missing, " and "))
	}

	return Voice{
		Name:       name,
		ModelPath:  modelPath,
		ConfigPath: configPath,
		Complete:   true,
	}, nil
}

// List enumerates every voice model under the directory, pairing each onnx
// file with its JSON sidecar. Voices missing their sidecar are still
// reported, flagged as incomplete. A missing or empty directory yields an
// empty list, not an error.
func (c *Catalog) List() ([]Voice, error) {
	_, statErr := os.Stat(c.dir)
	if os.IsNotExist(statErr) {
		return nil, nil
	}

	var voices []Voice

	walkErr := filepath.WalkDir(c.dir, func(path string, entry os.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ModelExt) {
			return nil
		}

		name := strings.TrimSuffix(entry.Name(), ModelExt)
		configPath := path + ".json"

		_, sidecarErr := os.Stat(configPath)

		voices = append(voices, Voice{
			Name:       name,
			ModelPath:  path,
			ConfigPath: configPath,
			Complete:   sidecarErr == nil,
		})

		return nil
	})
	if walkErr != nil {
		return nil, fmt.Errorf("failed to scan voices directory %s: %w", c.dir, walkErr)
	}

	sort.Slice(voices, func(i, j int) bool {
		return voices[i].Name < voices[j].Name
	})

	return voices, nil
}
