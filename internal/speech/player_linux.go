//go:build linux

package speech

// playerCommand returns the ALSA command line used to play a WAV file.
func playerCommand(wavPath string) (string, []string, error) {
	return "aplay", []string{"-q", wavPath}, nil
}
