//go:build !darwin && !linux

package chime

// commandsFor has no audio tools to offer; cues complete through the fallback.
func commandsFor(cue Cue, file string) []command {
	return nil
}
