package audio

import (
	"context"
	"sync"

	"github.com/rs/zerolog"
)

// CommandPlayer plays audio files through an external player such as ffplay.
// Only one file plays at a time.
type CommandPlayer struct {
	command string
	args    []string
	log     zerolog.Logger

	mu      sync.Mutex
	current *Process
}

func NewCommandPlayer(command string, logger zerolog.Logger) *CommandPlayer {
	if command == "" {
		command = "ffplay"
	}
	var args []string
	if command == "ffplay" {
		args = []string{"-nodisp", "-autoexit", "-loglevel", "quiet"}
	}
	return &CommandPlayer{
		command: command,
		args:    args,
		log:     logger.With().Str("component", "player").Logger(),
	}
}

// Play stops any current playback and starts path. onFinish runs once when
// playback ends, whether naturally or through Stop.
func (p *CommandPlayer) Play(ctx context.Context, path string, onFinish func()) error {
	p.Stop()

	args := append(append([]string{}, p.args...), path)
	proc, err := StartProcess(context.WithoutCancel(ctx), p.command, args...)
	if err != nil {
		return err
	}

	p.mu.Lock()
	p.current = proc
	p.mu.Unlock()

	go func() {
		<-proc.Done()

		p.mu.Lock()
		if p.current == proc {
			p.current = nil
		}
		p.mu.Unlock()

		if err := proc.Err(); err != nil {
			p.log.Warn().Err(err).Str("path", path).Msg("playback failed")
		}
		if onFinish != nil {
			onFinish()
		}
	}()
	return nil
}

// Stop ends the current playback, if any.
func (p *CommandPlayer) Stop() {
	p.mu.Lock()
	proc := p.current
	p.current = nil
	p.mu.Unlock()

	if proc != nil {
		proc.Stop()
	}
}

// Playing reports whether a file is currently playing.
func (p *CommandPlayer) Playing() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.current != nil
}
