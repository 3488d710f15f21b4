// Package config resolves the invocation configuration for tts-howdy.
//
// Values are layered: built-in defaults, then an optional TOML file discovered
// by walking up from the working directory, then command-line flags. The
// resolved configuration is validated once, before any network or subprocess
// activity begins, and is never mutated afterwards.
package config

import (
	"errors"
	"fmt"
	"math"
	"net/url"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

// Built-in defaults, matching the documented CLI surface.
const (
	DefaultHost       = "http://localhost:11434"
	DefaultModel      = "tiny-cowboy"
	DefaultVoiceModel = "en_US-ryan-medium"
	DefaultRate       = 1.0

	// FileName is the config file searched for up the directory tree.
	FileName = "tts-howdy.toml"
)

// Directory layout constants for the default voices location.
const (
	localShareDir = ".local/share"
	piperDataDir  = "piper-tts"
	voicesDirName = "voices"
)

// Static validation errors.
var (
	ErrInvalidRate = errors.New("rate must be a positive number")
	ErrInvalidHost = errors.New("host must be a valid http(s) URL")
	ErrEmptyModel  = errors.New("model name cannot be empty")
	ErrEmptyVoice  = errors.New("voice model name cannot be empty")
)

// Mode identifies which of the mutually exclusive execution paths runs.
type Mode int

const (
	// ModeListVoices lists installed voice models and exits.
	ModeListVoices Mode = iota
	// ModeDownloadVoice downloads the configured voice model and exits.
	ModeDownloadVoice
	// ModeCheck probes the language-model server and exits.
	ModeCheck
	// ModeDirectText speaks the text given on the command line.
	ModeDirectText
	// ModeStdin speaks text read from standard input.
	ModeStdin
	// ModePrompt sends a single prompt to the model and speaks the reply.
	ModePrompt
	// ModeInteractive runs the read-generate-speak loop.
	ModeInteractive
)

// String returns the mode name used in logs.
func (m Mode) String() string {
	switch m {
	case ModeListVoices:
		return "list-voices"
	case ModeDownloadVoice:
		return "download-voice"
	case ModeCheck:
		return "check"
	case ModeDirectText:
		return "text"
	case ModeStdin:
		return "stdin"
	case ModePrompt:
		return "prompt"
	case ModeInteractive:
		return "interactive"
	default:
		return "unknown"
	}
}

// Config is the immutable invocation configuration. It is created once per
// process from defaults, the optional config file, and flags.
type Config struct {
	Host         string
	Model        string
	Prompt       string
	SystemPrompt string
	VoiceModel   string
	Rate         float64
	VoicesDir    string
	OutputPath   string
	LogDir       string
	Verbose      bool

	ListVoices    bool
	DownloadVoice bool
	Check         bool
	Text          string
	UseStdin      bool
}

// FileConfig holds the subset of settings that may come from the TOML file.
// Mode-selecting options are deliberately flag-only.
type FileConfig struct {
	Host       string  `toml:"host"`
	Model      string  `toml:"model"`
	VoiceModel string  `toml:"voice_model"`
	Rate       float64 `toml:"rate"`
	VoicesDir  string  `toml:"voices_dir"`
	LogDir     string  `toml:"log_dir"`
}

// Default returns a configuration populated with built-in defaults.
func Default() Config {
	return Config{
		Host:       DefaultHost,
		Model:      DefaultModel,
		VoiceModel: DefaultVoiceModel,
		Rate:       DefaultRate,
		VoicesDir:  DefaultVoicesDir(),
		LogDir:     os.TempDir(),
	}
}

// DefaultVoicesDir returns the conventional piper voice directory under the
// user's home, falling back to the system temp directory when the home
// directory cannot be determined.
func DefaultVoicesDir() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), piperDataDir, voicesDirName)
	}

	return filepath.Join(homeDir, localShareDir, piperDataDir, voicesDirName)
}

// FindFile searches for the config file starting at startDir and walking up
// to the filesystem root. It returns an empty path when no file exists; a
// missing config file is not an error.
func FindFile(startDir string) string {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return ""
	}

	for {
		candidate := filepath.Join(dir, FileName)

		_, statErr := os.Stat(candidate)
		if statErr == nil {
			return candidate
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}

		dir = parent
	}
}

// LoadFile parses the TOML file at path into a FileConfig.
func LoadFile(path string) (FileConfig, error) {
	var fileCfg FileConfig

	data, err := os.ReadFile(path)
	if err != nil {
		return FileConfig{}, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	err = toml.Unmarshal(data, &fileCfg)
	if err != nil {
		return FileConfig{}, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	return fileCfg, nil
}

// Apply overlays non-zero file values onto the configuration. Flags are bound
// after Apply, so flag values always win over file values.
func (c *Config) Apply(fileCfg FileConfig) {
	if fileCfg.Host != "" {
		c.Host = fileCfg.Host
	}

	if fileCfg.Model != "" {
		c.Model = fileCfg.Model
	}

	if fileCfg.VoiceModel != "" {
		c.VoiceModel = fileCfg.VoiceModel
	}

	if fileCfg.Rate != 0 {
		c.Rate = fileCfg.Rate
	}

	if fileCfg.VoicesDir != "" {
		c.VoicesDir = fileCfg.VoicesDir
	}

	if fileCfg.LogDir != "" {
		c.LogDir = fileCfg.LogDir
	}
}

// Mode picks exactly one execution path. Precedence is fixed: list-voices,
// download-voice, check, direct text, stdin, prompt, then interactive.
func (c *Config) Mode() Mode {
	switch {
	case c.ListVoices:
		return ModeListVoices
	case c.DownloadVoice:
		return ModeDownloadVoice
	case c.Check:
		return ModeCheck
	case c.Text != "":
		return ModeDirectText
	case c.UseStdin:
		return ModeStdin
	case c.Prompt != "":
		return ModePrompt
	default:
		return ModeInteractive
	}
}

// Validate checks the resolved configuration. It must run before any I/O so
// that bad arguments fail without side effects.
func (c *Config) Validate() error {
	if c.Rate <= 0 || math.IsNaN(c.Rate) || math.IsInf(c.Rate, 0) {
		return fmt.Errorf("%w: got %v", ErrInvalidRate, c.Rate)
	}

	parsed, err := url.Parse(c.Host)
	if err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidHost, c.Host)
	}

	if (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		return fmt.Errorf("%w: %q", ErrInvalidHost, c.Host)
	}

	if c.Model == "" {
		return ErrEmptyModel
	}

	if c.VoiceModel == "" {
		return ErrEmptyVoice
	}

	return nil
}
