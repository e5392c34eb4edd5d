package chime

import (
	"context"
	"log/slog"
	"os/exec"
)

type command struct {
	name string
	args []string
}

// SystemPlayer plays cues through the host's audio command line tools. When a
// custom file is configured it is used for every cue. If no tool can play the
// cue, the fallback player decides when the cue completes.
type SystemPlayer struct {
	file     string
	fallback Player
	logger   *slog.Logger
}

func NewSystemPlayer(file string, fallback Player, logger *slog.Logger) *SystemPlayer {
	if logger == nil {
		logger = slog.Default()
	}
	if fallback == nil {
		fallback = NewTimedPlayer(0)
	}
	return &SystemPlayer{file: file, fallback: fallback, logger: logger}
}

func (s *SystemPlayer) Play(cue Cue, onDone func()) Playback {
	ctx, cancel := context.WithCancel(context.Background())
	p := newPlayback(onDone)
	p.cancel = cancel

	commands := commandsFor(cue, s.file)
	go func() {
		defer cancel()
		for _, c := range commands {
			cmd := exec.CommandContext(ctx, c.name, c.args...)
			err := cmd.Run()
			if ctx.Err() != nil {
				return
			}
			if err == nil {
				p.finish()
				return
			}
			s.logger.Debug("cue command failed", "cue", string(cue), "command", c.name, "error", err)
		}
		if ctx.Err() != nil {
			return
		}
		// the fallback completion still goes through finish, which honours Stop
		s.fallback.Play(cue, p.finish)
	}()

	return p
}
