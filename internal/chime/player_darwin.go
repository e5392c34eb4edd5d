//go:build darwin

package chime

// commandsFor uses afplay with the bundled system sounds.
func commandsFor(cue Cue, file string) []command {
	if file != "" {
		return []command{{"afplay", []string{file}}}
	}

	switch cue {
	case CueWarning:
		return []command{{"afplay", []string{"/System/Library/Sounds/Tink.aiff"}}}
	case CuePhaseEnd:
		return []command{{"afplay", []string{"/System/Library/Sounds/Glass.aiff"}}}
	default:
		return []command{
			{"afplay", []string{"/System/Library/Sounds/Submarine.aiff"}},
			{"afplay", []string{"/System/Library/Sounds/Purr.aiff"}},
		}
	}
}
