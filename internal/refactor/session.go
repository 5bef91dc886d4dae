package refactor

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/hashicorp/go-hclog"

	"github.com/pybridge-dev/pybridge/internal/process"
	"github.com/pybridge-dev/pybridge/pkg/shared/config"
	"github.com/pybridge-dev/pybridge/pkg/shared/errors"
)

// State is the session lifecycle position.
type State int

const (
	StateUninitialized State = iota
	StateStarting
	StateReady
	StateBusy
	StateFailed
	StateDisposed
)

// Session owns one helper subprocess speaking line-delimited JSON. It
// accepts exactly one command: after a successful response the subprocess
// is terminated and the session disposed. Crash isolation over pooling — a
// failed refactor can never corrupt state seen by the next command, because
// sessions share nothing.
type Session struct {
	cfg    config.Refactor
	runner *process.Runner
	logger hclog.Logger

	mu     sync.Mutex
	state  State
	worker *process.Worker

	stdoutBuf string
	stderrBuf string
}

// NewSession creates a new Session instance in the Uninitialized state.
func NewSession(cfg config.Refactor, runner *process.Runner, logger hclog.Logger) *Session {
	return &Session{
		cfg:    cfg,
		runner: runner,
		logger: logger,
	}
}

// Start spawns the helper subprocess and waits for its ready sentinel.
// Stdout received while starting is buffered but never dispatched as a
// command result. Stderr is accumulated until it frames as JSON error
// records; a record tagged as a missing refactoring library classifies the
// failure as dependency-missing rather than generic.
func (s *Session) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.state != StateUninitialized {
		s.mu.Unlock()
		return fmt.Errorf("session already started")
	}
	s.state = StateStarting
	s.mu.Unlock()

	worker, err := s.runner.StartWorker(ctx, process.Execution{
		Path: s.cfg.PythonPath,
		Args: []string{s.cfg.ScriptPath},
	})
	if err != nil {
		s.setState(StateFailed)
		return errors.NewStartupError(err.Error(), "", false)
	}
	s.worker = worker

	deadline := time.NewTimer(s.cfg.Timeout)
	defer deadline.Stop()

	for {
		select {
		case chunk, open := <-worker.Chunks():
			if !open {
				return s.failStartup()
			}
			switch chunk.Source {
			case process.SourceStdout:
				s.stdoutBuf += string(chunk.Data)
				if s.sawSentinel() {
					s.setState(StateReady)
					return nil
				}
			case process.SourceStderr:
				s.stderrBuf += string(chunk.Data)
				if err := s.startupError(); err != nil {
					s.Close()
					s.setState(StateFailed)
					return err
				}
			}
		case <-ctx.Done():
			s.Close()
			s.setState(StateFailed)
			return errors.NewStartupError(ctx.Err().Error(), "", false)
		case <-deadline.C:
			s.Close()
			s.setState(StateFailed)
			return errors.NewStartupError(fmt.Sprintf("helper did not report ready within %s", s.cfg.Timeout), "", false)
		}
	}
}

// Do writes one command and waits for its full JSON response. At most one
// command may ever be in flight; the session refuses anything outside the
// Ready state. A response split across multiple reads is coalesced by the
// framing buffer. On success the subprocess is terminated and the session
// disposed.
func (s *Session) Do(ctx context.Context, cmd Command) (string, error) {
	s.mu.Lock()
	if s.state != StateReady {
		s.mu.Unlock()
		return "", fmt.Errorf("session is not ready for a command (state %d)", s.state)
	}
	s.state = StateBusy
	s.mu.Unlock()

	payload, err := json.Marshal(cmd)
	if err != nil {
		s.dispose()
		return "", fmt.Errorf("failed to encode command: %w", err)
	}
	s.logger.Debug("sending refactor command", "lookup", cmd.Lookup, "id", cmd.ID, "file", cmd.File)
	if err := s.worker.WriteLine(payload); err != nil {
		s.dispose()
		return "", err
	}

	deadline := time.NewTimer(s.cfg.Timeout)
	defer deadline.Stop()

	for {
		select {
		case chunk, open := <-s.worker.Chunks():
			if !open {
				err := s.commandError()
				s.dispose()
				return "", err
			}
			switch chunk.Source {
			case process.SourceStdout:
				s.stdoutBuf += string(chunk.Data)
				records, rest := frameRecords(s.stdoutBuf)
				if records == nil {
					s.stdoutBuf = rest
					continue
				}
				s.stdoutBuf = ""
				diff, err := s.acceptResponse(cmd, records[0])
				s.dispose()
				return diff, err
			case process.SourceStderr:
				s.stderrBuf += string(chunk.Data)
				records, rest := frameRecords(s.stderrBuf)
				if records == nil {
					s.stderrBuf = rest
					continue
				}
				s.stderrBuf = ""
				err := rejectWithRecord(records[0])
				s.dispose()
				return "", err
			}
		case <-ctx.Done():
			s.dispose()
			return "", ctx.Err()
		case <-deadline.C:
			s.dispose()
			return "", fmt.Errorf("helper did not respond within %s", s.cfg.Timeout)
		}
	}
}

// acceptResponse validates a framed stdout record as the response to the
// in-flight command, checking the id tag when the helper echoes one.
func (s *Session) acceptResponse(cmd Command, record json.RawMessage) (string, error) {
	id, diff, ok := decodeSuccess(record)
	if !ok {
		return "", errors.NewCommandError("helper returned an unrecognized response", string(record))
	}
	if id != "" && id != cmd.ID {
		return "", errors.NewCommandError(fmt.Sprintf("helper response id %q does not match command id %q", id, cmd.ID), "")
	}
	return diff, nil
}

// State returns the current lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Close kills the subprocess if one is running. Kill errors are suppressed;
// the process may already be dead.
func (s *Session) Close() {
	if s.worker != nil {
		s.worker.Kill()
	}
}

// dispose tears the session down after a command completes or fails.
func (s *Session) dispose() {
	s.Close()
	s.stdoutBuf = ""
	s.stderrBuf = ""
	s.setState(StateDisposed)
}

func (s *Session) setState(state State) {
	s.mu.Lock()
	s.state = state
	s.mu.Unlock()
}

// sawSentinel checks the startup stdout buffer for the ready line. Anything
// buffered after the sentinel is kept for the first command's framing.
func (s *Session) sawSentinel() bool {
	lines := strings.Split(s.stdoutBuf, "\n")
	for i, line := range lines {
		if strings.TrimSpace(line) == readySentinel && i < len(lines)-1 {
			s.stdoutBuf = strings.Join(lines[i+1:], "\n")
			return true
		}
	}
	return false
}

// startupError classifies the accumulated stderr once it frames as JSON.
// It returns nil while the buffer is still incomplete.
func (s *Session) startupError() error {
	records, rest := frameRecords(s.stderrBuf)
	if records == nil {
		s.stderrBuf = rest
		return nil
	}
	s.stderrBuf = ""
	record, ok := decodeError(records[0])
	if !ok {
		return errors.NewStartupError("", string(records[0]), false)
	}
	return errors.NewStartupError(record.Message, record.Traceback, record.dependencyMissing())
}

// failStartup handles the subprocess dying before the sentinel arrived.
func (s *Session) failStartup() error {
	defer func() {
		s.Close()
		s.setState(StateFailed)
	}()
	if err := s.startupError(); err != nil {
		return err
	}
	if trailing := strings.TrimSpace(s.stderrBuf); trailing != "" {
		if containsModuleNotFound(trailing) {
			return errors.NewStartupError("", trailing, true)
		}
		return errors.NewStartupError("", trailing, false)
	}
	return errors.NewStartupError("helper exited before reporting ready", "", false)
}

// commandError handles the subprocess dying while a command was in flight.
func (s *Session) commandError() error {
	if records, _ := frameRecords(s.stderrBuf); records != nil {
		s.stderrBuf = ""
		return rejectWithRecord(records[0])
	}
	return errors.NewCommandError("helper exited before responding", strings.TrimSpace(s.stderrBuf))
}

// rejectWithRecord turns a framed stderr record into the in-flight
// command's failure.
func rejectWithRecord(record json.RawMessage) error {
	parsed, ok := decodeError(record)
	if !ok {
		return errors.NewCommandError("helper reported an unrecognized error", string(record))
	}
	return errors.NewCommandError(parsed.Message, parsed.Traceback)
}
