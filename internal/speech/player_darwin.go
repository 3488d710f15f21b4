//go:build darwin

package speech

// playerCommand returns the macOS command line used to play a WAV file.
func playerCommand(wavPath string) (string, []string, error) {
	return "afplay", []string{wavPath}, nil
}
