// Package voice manages local piper voice assets: locating installed voice
// models, listing them, and downloading the default voice from the remote
// voice repository.
//
// A voice is always a pair of files under the voices directory: the onnx
// model and a same-named JSON metadata sidecar. Operations that find one
// without the other surface the inconsistency instead of ignoring it.
package voice

import (
	"errors"
	"fmt"
	"strings"
)

// File extensions of a voice asset pair.
const (
	ModelExt  = ".onnx"
	ConfigExt = ".onnx.json"
)

// Static errors.
var (
	// ErrVoiceNotFound indicates the requested voice files are absent locally.
	ErrVoiceNotFound = errors.New("voice not found")
	// ErrBadVoiceName indicates a voice name that does not follow the
	// locale-speaker-quality convention.
	ErrBadVoiceName = errors.New("malformed voice name")
)

// voice name structure: <locale>-<speaker>-<quality>, locale is <lang>_<REGION>.
const voiceNameParts = 3

// Name is a parsed voice identifier such as "en_US-ryan-medium".
type Name struct {
	Locale  string // "en_US"
	Lang    string // "en"
	Speaker string // "ryan"
	Quality string // "medium"
}

// String reassembles the canonical voice name.
func (n Name) String() string {
	return n.Locale + "-" + n.Speaker + "-" + n.Quality
}

// ParseName splits a voice identifier into its locale, speaker, and quality
// components. The repository layout on both disk and the asset host is
// derived from these parts.
func ParseName(raw string) (Name, error) {
	parts := strings.Split(raw, "-")
	if len(parts) != voiceNameParts {
		return Name{}, fmt.Errorf("%w: %q (want <locale>-<speaker>-<quality>)", ErrBadVoiceName, raw)
	}

	locale, speaker, quality := parts[0], parts[1], parts[2]

	lang, _, ok := strings.Cut(locale, "_")
	if !ok || lang == "" || speaker == "" || quality == "" {
		return Name{}, fmt.Errorf("%w: %q (want <locale>-<speaker>-<quality>)", ErrBadVoiceName, raw)
	}

	return Name{
		Locale:  locale,
		Lang:    lang,
		Speaker: speaker,
		Quality: quality,
	}, nil
}

// Voice describes one installed (or partially installed) voice asset.
type Voice struct {
	Name       string
	ModelPath  string
	ConfigPath string
	// Complete reports whether both the model and its sidecar are present.
	Complete bool
}
