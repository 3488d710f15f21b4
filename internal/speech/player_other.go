//go:build !linux && !darwin

package speech

import "fmt"

// playerCommand reports that no audio player is wired for this platform.
// Synthesis to a file via --output still works everywhere.
func playerCommand(_ string) (string, []string, error) {
	return "", nil, fmt.Errorf("%w: no audio player configured for this platform", ErrPlaybackFailed)
}
