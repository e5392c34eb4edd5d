//go:build linux

package chime

// commandsFor tries PulseAudio first, then ALSA.
func commandsFor(cue Cue, file string) []command {
	if file != "" {
		return []command{
			{"paplay", []string{file}},
			{"aplay", []string{"-q", file}},
		}
	}

	switch cue {
	case CueWarning:
		return []command{
			{"paplay", []string{"/usr/share/sounds/freedesktop/stereo/bell.oga"}},
			{"aplay", []string{"-q", "/usr/share/sounds/freedesktop/stereo/bell.wav"}},
		}
	case CuePhaseEnd:
		return []command{
			{"paplay", []string{"/usr/share/sounds/freedesktop/stereo/complete.oga"}},
			{"aplay", []string{"-q", "/usr/share/sounds/freedesktop/stereo/complete.wav"}},
		}
	default:
		return []command{
			{"paplay", []string{"/usr/share/sounds/freedesktop/stereo/service-login.oga"}},
			{"aplay", []string{"-q", "/usr/share/sounds/freedesktop/stereo/service-login.wav"}},
		}
	}
}
