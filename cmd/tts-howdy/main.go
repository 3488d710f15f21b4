// tts-howdy reads text from an Ollama model and speaks it with piper.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/book-expert/logger"
	"github.com/spf13/cobra"

	"github.com/Jmi2020/TTSHowdy/internal/assistant"
	"github.com/Jmi2020/TTSHowdy/internal/config"
	"github.com/Jmi2020/TTSHowdy/internal/ollama"
	"github.com/Jmi2020/TTSHowdy/internal/speech"
	"github.com/Jmi2020/TTSHowdy/internal/voice"
)

// Flag names.
const (
	flagHost          = "host"
	flagModel         = "model"
	flagPrompt        = "prompt"
	flagSystem        = "system"
	flagVoiceModel    = "voice-model"
	flagRate          = "rate"
	flagListVoices    = "list-voices"
	flagDownloadVoice = "download-voice"
	flagText          = "text"
	flagStdin         = "stdin"
	flagOutput        = "output"
	flagCheck         = "check"
	flagVoicesDir     = "voices-dir"
	flagConfig        = "config"
	flagVerbose       = "verbose"
)

// Log file names, switched by --verbose.
const (
	logFileNameDefault = "tts-howdy.log"
	logFileNameVerbose = "tts-howdy-verbose.log"
)

// checkTimeout bounds the --check server probe.
const checkTimeout = 10 * time.Second

func main() {
	rootCmd := newRootCmd()

	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "tts-howdy",
		Short: "Speak Ollama replies aloud with piper",
		Long: `tts-howdy sends a prompt to a local Ollama server and speaks the reply
through the piper text-to-speech binary. It can also speak literal text,
read text from stdin, list installed piper voices, and download the
default voice model.

Examples:
  tts-howdy -p "tell me a joke"            # one prompt, spoken reply
  tts-howdy -t "howdy partner"             # speak text directly
  echo "howdy" | tts-howdy --stdin         # speak stdin
  tts-howdy --list-voices                  # show installed voices
  tts-howdy --download-voice               # fetch the default voice
  tts-howdy                                # interactive mode`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, configPath)
		},
	}

	flags := cmd.Flags()
	flags.String(flagHost, config.DefaultHost, "Ollama host URL")
	flags.String(flagModel, config.DefaultModel, "Ollama model name")
	flags.StringP(flagPrompt, "p", "", "prompt to send to Ollama")
	flags.StringP(flagSystem, "s", "", "system prompt passed alongside the prompt")
	flags.String(flagVoiceModel, config.DefaultVoiceModel, "piper voice model name")
	flags.Float64(flagRate, config.DefaultRate, "speech rate (length scale, lower is faster)")
	flags.Bool(flagListVoices, false, "list installed piper voices and exit")
	flags.Bool(flagDownloadVoice, false, "download the configured voice model and exit")
	flags.StringP(flagText, "t", "", "speak the given text directly, without Ollama")
	flags.Bool(flagStdin, false, "read text to speak from standard input")
	flags.StringP(flagOutput, "o", "", "write the synthesized WAV here instead of playing it")
	flags.Bool(flagCheck, false, "check that the Ollama server is reachable and exit")
	flags.String(flagVoicesDir, "", "directory holding piper voice models")
	flags.StringVar(&configPath, flagConfig, "", "path to tts-howdy.toml (default: search up from cwd)")
	flags.Bool(flagVerbose, false, "verbose logging")

	return cmd
}

// run resolves configuration, validates it before any I/O, and dispatches to
// exactly one execution path.
func run(cmd *cobra.Command, configPath string) error {
	cfg, err := resolveConfig(cmd, configPath)
	if err != nil {
		return err
	}

	err = cfg.Validate()
	if err != nil {
		return err
	}

	log, err := logger.New(cfg.LogDir, logFileName(cfg.Verbose))
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer log.Close()

	mode := cfg.Mode()
	log.Info("Running in %s mode (model: %s, voice: %s)", mode, cfg.Model, cfg.VoiceModel)

	ctx := context.Background()

	switch mode {
	case config.ModeListVoices:
		return runListVoices(cfg, log)
	case config.ModeDownloadVoice:
		return runDownloadVoice(ctx, cfg, log)
	case config.ModeCheck:
		return runCheck(ctx, cfg, log)
	case config.ModeDirectText:
		return withAssistant(cfg, log, func(a *assistant.Assistant) error {
			return a.SpeakText(ctx, cfg.Text)
		})
	case config.ModeStdin:
		return runStdin(ctx, cfg, log)
	case config.ModePrompt:
		return withAssistant(cfg, log, func(a *assistant.Assistant) error {
			return a.Answer(ctx, cfg.Prompt)
		})
	case config.ModeInteractive:
		return withAssistant(cfg, log, func(a *assistant.Assistant) error {
			return a.RunInteractive(ctx, os.Stdin)
		})
	default:
		return fmt.Errorf("unhandled mode %v", mode)
	}
}

// resolveConfig layers defaults, the optional TOML file, and flags. Flags win
// only when explicitly set.
func resolveConfig(cmd *cobra.Command, configPath string) (config.Config, error) {
	cfg := config.Default()

	if configPath == "" {
		configPath = config.FindFile(".")
	}

	if configPath != "" {
		fileCfg, err := config.LoadFile(configPath)
		if err != nil {
			return config.Config{}, err
		}

		cfg.Apply(fileCfg)
	}

	flags := cmd.Flags()

	if flags.Changed(flagHost) {
		cfg.Host, _ = flags.GetString(flagHost)
	}

	if flags.Changed(flagModel) {
		cfg.Model, _ = flags.GetString(flagModel)
	}

	if flags.Changed(flagVoiceModel) {
		cfg.VoiceModel, _ = flags.GetString(flagVoiceModel)
	}

	if flags.Changed(flagRate) {
		cfg.Rate, _ = flags.GetFloat64(flagRate)
	}

	if flags.Changed(flagVoicesDir) {
		cfg.VoicesDir, _ = flags.GetString(flagVoicesDir)
	}

	cfg.Prompt, _ = flags.GetString(flagPrompt)
	cfg.SystemPrompt, _ = flags.GetString(flagSystem)
	cfg.Text, _ = flags.GetString(flagText)
	cfg.OutputPath, _ = flags.GetString(flagOutput)
	cfg.UseStdin, _ = flags.GetBool(flagStdin)
	cfg.ListVoices, _ = flags.GetBool(flagListVoices)
	cfg.DownloadVoice, _ = flags.GetBool(flagDownloadVoice)
	cfg.Check, _ = flags.GetBool(flagCheck)
	cfg.Verbose, _ = flags.GetBool(flagVerbose)

	return cfg, nil
}

func logFileName(verbose bool) string {
	if verbose {
		return logFileNameVerbose
	}

	return logFileNameDefault
}

// runListVoices prints the installed voices and whether each pair is
// complete. An empty directory is not an error.
func runListVoices(cfg config.Config, log *logger.Logger) error {
	catalog := voice.NewCatalog(cfg.VoicesDir, log)

	voices, err := catalog.List()
	if err != nil {
		return err
	}

	if len(voices) == 0 {
		fmt.Printf("No piper voices installed in %s\n", catalog.Dir())
		fmt.Println("Run 'tts-howdy --download-voice' to fetch the default voice.")

		return nil
	}

	fmt.Println("Installed piper voices:")

	for _, installed := range voices {
		if installed.Complete {
			fmt.Printf("  %s\n", installed.Name)
		} else {
			fmt.Printf("  %s (incomplete: missing %s)\n", installed.Name, installed.ConfigPath)
		}
	}

	return nil
}

func runDownloadVoice(ctx context.Context, cfg config.Config, log *logger.Logger) error {
	downloader := voice.NewDownloader(cfg.VoicesDir, "", log)

	fmt.Printf("Downloading voice %s to %s...\n", cfg.VoiceModel, cfg.VoicesDir)

	err := downloader.Download(ctx, cfg.VoiceModel)
	if err != nil {
		return err
	}

	fmt.Println("Done.")

	return nil
}

func runCheck(ctx context.Context, cfg config.Config, log *logger.Logger) error {
	client := ollama.New(cfg.Host, ollama.DefaultTimeout, log)

	pingCtx, cancel := context.WithTimeout(ctx, checkTimeout)
	defer cancel()

	err := client.Ping(pingCtx)
	if err != nil {
		return err
	}

	fmt.Printf("Ollama server at %s is reachable\n", cfg.Host)

	return nil
}

// runStdin reads all of standard input and speaks it.
func runStdin(ctx context.Context, cfg config.Config, log *logger.Logger) error {
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return fmt.Errorf("failed to read stdin: %w", err)
	}

	return withAssistant(cfg, log, func(a *assistant.Assistant) error {
		return a.SpeakText(ctx, string(data))
	})
}

// withAssistant builds the full generate-and-speak pipeline and hands it to
// the given action.
func withAssistant(cfg config.Config, log *logger.Logger, action func(*assistant.Assistant) error) error {
	client := ollama.New(cfg.Host, ollama.DefaultTimeout, log)
	catalog := voice.NewCatalog(cfg.VoicesDir, log)

	synthesizer, err := speech.New(speech.Config{
		Catalog:    catalog,
		Runner:     speech.ExecRunner{},
		VoiceModel: cfg.VoiceModel,
		Rate:       cfg.Rate,
		OutputPath: cfg.OutputPath,
	}, log)
	if err != nil {
		return err
	}

	voiceAssistant := assistant.New(assistant.Config{
		Generator:    client,
		Speaker:      synthesizer,
		Model:        cfg.Model,
		VoiceModel:   cfg.VoiceModel,
		SystemPrompt: cfg.SystemPrompt,
		Out:          os.Stdout,
		ErrOut:       os.Stderr,
	}, log)

	return action(voiceAssistant)
}
