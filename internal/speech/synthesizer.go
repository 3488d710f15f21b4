package speech

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/book-expert/logger"
	"github.com/google/uuid"

	"github.com/Jmi2020/TTSHowdy/internal/voice"
)

// piperBinary is the synthesis executable looked up on PATH.
const piperBinary = "piper"

// piper flag names.
const (
	flagModel       = "--model"
	flagOutputFile  = "--output_file"
	flagLengthScale = "--length-scale"
)

// tempFilePattern names the intermediate WAV file. A fresh UUID per utterance
// keeps concurrent invocations of the CLI from clobbering each other.
const tempFilePattern = "tts-howdy-%s.wav"

// filePermissions is used when a synthesized WAV is copied to the output path.
const filePermissions = 0o600

// Static errors.
var (
	// ErrSynthesisFailed indicates piper exited non-zero or could not run.
	ErrSynthesisFailed = errors.New("speech synthesis failed")
	// ErrPiperNotFound indicates the piper executable is not installed.
	ErrPiperNotFound = errors.New("piper executable not found on PATH (install piper-tts)")
	// ErrPlaybackFailed indicates the audio player subprocess failed.
	ErrPlaybackFailed = errors.New("audio playback failed")
	// ErrRateNotPositive indicates a non-positive length scale.
	ErrRateNotPositive = errors.New("speech rate must be positive")
	// ErrNilDependency indicates the synthesizer was built without its
	// catalog or runner.
	ErrNilDependency = errors.New("catalog and runner are required")
)

// Config assembles a Synthesizer.
type Config struct {
	Catalog    *voice.Catalog
	Runner     Runner
	VoiceModel string
	// Rate is piper's length scale; lower values produce faster speech.
	Rate float64
	// OutputPath, when set, receives the WAV file instead of playback.
	OutputPath string
}

// Synthesizer converts text to audible speech (or a WAV file) through the
// piper binary. It is safe for sequential reuse across turns.
type Synthesizer struct {
	catalog    *voice.Catalog
	runner     Runner
	voiceModel string
	rate       float64
	outputPath string
	cleaner    *Cleaner
	log        *logger.Logger
}

// New validates the configuration and creates a synthesizer. A non-positive
// rate is rejected here as well as at flag parsing, so the invariant holds no
// matter how the synthesizer is constructed.
func New(cfg Config, log *logger.Logger) (*Synthesizer, error) {
	if cfg.Catalog == nil || cfg.Runner == nil {
		return nil, ErrNilDependency
	}

	if cfg.Rate <= 0 {
		return nil, fmt.Errorf("%w: got %v", ErrRateNotPositive, cfg.Rate)
	}

	return &Synthesizer{
		catalog:    cfg.Catalog,
		runner:     cfg.Runner,
		voiceModel: cfg.VoiceModel,
		rate:       cfg.Rate,
		outputPath: cfg.OutputPath,
		cleaner:    NewCleaner(),
		log:        log,
	}, nil
}

// Speak synthesizes the text and plays it (or writes it to the configured
// output path). It blocks until playback completes. Text with no speakable
// content after cleanup is a silent no-op.
func (s *Synthesizer) Speak(ctx context.Context, text string) error {
	cleaned := s.cleaner.Clean(text)
	if cleaned == "" {
		s.log.Info("Nothing speakable after cleanup, skipping synthesis")

		return nil
	}

	// Voice files are checked before any subprocess is spawned.
	resolved, err := s.catalog.Resolve(s.voiceModel)
	if err != nil {
		return err
	}

	wavPath := filepath.Join(os.TempDir(), fmt.Sprintf(tempFilePattern, uuid.NewString()))

	synthErr := s.runPiper(ctx, cleaned, resolved, wavPath)
	if synthErr != nil {
		return synthErr
	}

	if s.outputPath != "" {
		return s.saveOutput(wavPath)
	}

	defer s.removeTemp(wavPath)

	return s.play(ctx, wavPath)
}

func (s *Synthesizer) runPiper(ctx context.Context, text string, resolved voice.Voice, wavPath string) error {
	args := []string{
		flagModel, resolved.ModelPath,
		flagOutputFile, wavPath,
		flagLengthScale, formatRate(s.rate),
	}

	s.log.Info("Synthesizing %d characters with voice %s", len(text), resolved.Name)

	output, err := s.runner.Run(ctx, strings.NewReader(text), piperBinary, args...)
	if err != nil {
		s.removeTemp(wavPath)

		if errors.Is(err, exec.ErrNotFound) {
			return fmt.Errorf("%w: %w", ErrPiperNotFound, err)
		}

		return fmt.Errorf("%w: %w: %s", ErrSynthesisFailed, err, strings.TrimSpace(string(output)))
	}

	return nil
}

func (s *Synthesizer) play(ctx context.Context, wavPath string) error {
	player, args, err := playerCommand(wavPath)
	if err != nil {
		return err
	}

	output, runErr := s.runner.Run(ctx, nil, player, args...)
	if runErr != nil {
		return fmt.Errorf("%w: %s: %w: %s",
			ErrPlaybackFailed, player, runErr, strings.TrimSpace(string(output)))
	}

	return nil
}

// saveOutput moves the synthesized WAV to the configured output path,
// falling back to a copy when the temp directory sits on another filesystem.
func (s *Synthesizer) saveOutput(wavPath string) error {
	renameErr := os.Rename(wavPath, s.outputPath)
	if renameErr == nil {
		s.log.Info("Saved audio to %s", s.outputPath)

		return nil
	}

	data, readErr := os.ReadFile(wavPath)
	if readErr != nil {
		return fmt.Errorf("%w: failed to read synthesized audio: %w", ErrSynthesisFailed, readErr)
	}

	defer s.removeTemp(wavPath)

	writeErr := os.WriteFile(s.outputPath, data, filePermissions)
	if writeErr != nil {
		return fmt.Errorf("%w: failed to write %s: %w", ErrSynthesisFailed, s.outputPath, writeErr)
	}

	s.log.Info("Saved audio to %s", s.outputPath)

	return nil
}

func (s *Synthesizer) removeTemp(wavPath string) {
	removeErr := os.Remove(wavPath)
	if removeErr != nil && !os.IsNotExist(removeErr) {
		s.log.Warn("Failed to remove temp file %s: %v", wavPath, removeErr)
	}
}

// formatRate renders the length scale the way piper expects, without
// trailing zeros.
func formatRate(rate float64) string {
	return strconv.FormatFloat(rate, 'g', -1, 64)
}
