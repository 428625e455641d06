package audio

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"sync"
	"time"
)

const stopGrace = 1200 * time.Millisecond

// Process is a helper command (player, local speech engine) that can be
// interrupted and awaited.
type Process struct {
	cmd    *exec.Cmd
	stderr *bytes.Buffer
	done   chan struct{}

	mu       sync.Mutex
	stopped  bool
	stopOnce sync.Once
	result   error
}

// StartProcess launches command with args. The process is killed when ctx is
// done.
func StartProcess(ctx context.Context, command string, args ...string) (*Process, error) {
	cmd := exec.CommandContext(ctx, command, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	cmd.WaitDelay = stopGrace

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start %s: %w", command, err)
	}

	p := &Process{
		cmd:    cmd,
		stderr: &stderr,
		done:   make(chan struct{}),
	}
	go func() {
		err := cmd.Wait()
		p.mu.Lock()
		if p.stopped {
			err = nil
		} else if err != nil && stderr.Len() > 0 {
			err = fmt.Errorf("%w: %s", err, trimSpace(stderr.String()))
		}
		p.result = err
		p.mu.Unlock()
		close(p.done)
	}()
	return p, nil
}

// Done is closed once the process exits.
func (p *Process) Done() <-chan struct{} {
	return p.done
}

// Err is the exit result; valid after Done. A stopped process reports nil.
func (p *Process) Err() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.result
}

// Wait blocks until the process exits.
func (p *Process) Wait() error {
	<-p.done
	return p.Err()
}

// Stop interrupts the process, then kills it if it has not exited in time.
func (p *Process) Stop() {
	p.stopOnce.Do(func() {
		p.mu.Lock()
		p.stopped = true
		p.mu.Unlock()

		if p.cmd.Process != nil {
			_ = p.cmd.Process.Signal(os.Interrupt)
		}
		select {
		case <-p.done:
		case <-time.After(stopGrace):
			if p.cmd.Process != nil {
				_ = p.cmd.Process.Kill()
			}
			<-p.done
		}
	})
}

func trimSpace(input string) string {
	if input == "" {
		return input
	}
	return string(bytes.TrimSpace([]byte(input)))
}
