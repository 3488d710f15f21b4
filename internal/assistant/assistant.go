// Package assistant wires text generation to speech synthesis: one-shot
// turns, direct speak paths, and the interactive read-generate-speak loop.
package assistant

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/book-expert/logger"
)

// Interactive loop keywords and prompts.
const (
	promptLine   = "\nYou: "
	replyPrefix  = "\nOllama: "
	exitKeyword  = "exit"
	quitKeyword  = "quit"
	banner       = "tts-howdy interactive mode (model: %s, voice: %s)\n"
	bannerFooter = "Type 'exit' or 'quit' to leave.\n"
)

// Generator produces text for a prompt. *ollama.Client satisfies it; tests
// use a fake.
type Generator interface {
	Generate(ctx context.Context, model, prompt, system string) (string, error)
}

// Speaker turns text into audible output. *speech.Synthesizer satisfies it;
// tests use a fake.
type Speaker interface {
	Speak(ctx context.Context, text string) error
}

// Assistant runs the generate-then-speak pipeline. All output goes through
// the injected writers so sessions are scriptable in tests.
type Assistant struct {
	generator Generator
	speaker   Speaker
	model     string
	voice     string
	system    string
	out       io.Writer
	errOut    io.Writer
	log       *logger.Logger
}

// Config assembles an Assistant.
type Config struct {
	Generator    Generator
	Speaker      Speaker
	Model        string
	VoiceModel   string
	SystemPrompt string
	Out          io.Writer
	ErrOut       io.Writer
}

// New creates an assistant.
func New(cfg Config, log *logger.Logger) *Assistant {
	return &Assistant{
		generator: cfg.Generator,
		speaker:   cfg.Speaker,
		model:     cfg.Model,
		voice:     cfg.VoiceModel,
		system:    cfg.SystemPrompt,
		out:       cfg.Out,
		errOut:    cfg.ErrOut,
		log:       log,
	}
}

// SpeakText echoes the text and speaks it, bypassing generation.
func (a *Assistant) SpeakText(ctx context.Context, text string) error {
	fmt.Fprintln(a.out, text)

	return a.speaker.Speak(ctx, text)
}

// Answer sends one prompt through the model and speaks the reply. The reply
// is printed before synthesis starts, so the user sees the text even when no
// audio device is available.
func (a *Assistant) Answer(ctx context.Context, prompt string) error {
	reply, err := a.generator.Generate(ctx, a.model, prompt, a.system)
	if err != nil {
		return fmt.Errorf("generation failed: %w", err)
	}

	fmt.Fprintln(a.out, reply)

	speakErr := a.speaker.Speak(ctx, reply)
	if speakErr != nil {
		return fmt.Errorf("synthesis failed: %w", speakErr)
	}

	return nil
}

// RunInteractive reads lines from input until an exit keyword or EOF. Each
// non-empty line runs through Answer. A failed turn is reported and the loop
// continues; one bad turn never ends the session.
func (a *Assistant) RunInteractive(ctx context.Context, input io.Reader) error {
	fmt.Fprintf(a.out, banner, a.model, a.voice)
	fmt.Fprint(a.out, bannerFooter)

	scanner := bufio.NewScanner(input)

	for {
		fmt.Fprint(a.out, promptLine)

		if !scanner.Scan() {
			break
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		if isExitKeyword(line) {
			break
		}

		fmt.Fprint(a.out, replyPrefix)

		turnErr := a.Answer(ctx, line)
		if turnErr != nil {
			a.log.Error("Interactive turn failed: %v", turnErr)
			fmt.Fprintf(a.errOut, "Error: %v\n", turnErr)
		}
	}

	scanErr := scanner.Err()
	if scanErr != nil {
		return fmt.Errorf("failed to read input: %w", scanErr)
	}

	fmt.Fprintln(a.out, "\nExiting...")

	return nil
}

func isExitKeyword(line string) bool {
	lowered := strings.ToLower(line)

	return lowered == exitKeyword || lowered == quitKeyword
}
