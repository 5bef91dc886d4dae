package process

import (
	"context"
	"fmt"
	"io"
	"os/exec"
	"sync"
)

// StreamSource tags a chunk with the stream it was read from.
type StreamSource int

const (
	SourceStdout StreamSource = iota
	SourceStderr
)

// Chunk is one incremental read from a worker's stdout or stderr. Chunks
// carry raw bytes with no framing; coalescing partial reads into complete
// records is the consumer's concern.
type Chunk struct {
	Source StreamSource
	Data   []byte
}

const chunkSize = 4096

// Worker is a long-lived subprocess communicated with over pipes. Output
// arrives as an ordered stream of chunks; input is written line-wise to
// stdin.
type Worker struct {
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	chunks chan Chunk
	exited chan error

	killOnce sync.Once
}

// StartWorker spawns a long-lived subprocess with piped stdin/stdout/stderr
// and begins reading its output incrementally.
func (r *Runner) StartWorker(ctx context.Context, execution Execution) (*Worker, error) {
	cmd := exec.CommandContext(ctx, execution.Path, execution.Args...)
	cmd.Dir = execution.Dir
	if execution.Env != nil {
		cmd.Env = execution.Env
	}

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("failed to open stdin pipe: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("failed to open stdout pipe: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, fmt.Errorf("failed to open stderr pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start %q: %w", execution.Path, err)
	}
	r.logger.Debug("worker started", "path", execution.Path, "pid", cmd.Process.Pid)

	w := &Worker{
		cmd:    cmd,
		stdin:  stdin,
		chunks: make(chan Chunk, 16),
		exited: make(chan error, 1),
	}

	var readers sync.WaitGroup
	readers.Add(2)
	go w.readStream(&readers, SourceStdout, stdout)
	go w.readStream(&readers, SourceStderr, stderr)

	go func() {
		readers.Wait()
		close(w.chunks)
		w.exited <- cmd.Wait()
	}()

	return w, nil
}

// readStream reads one pipe in fixed-size chunks until EOF.
func (w *Worker) readStream(wg *sync.WaitGroup, source StreamSource, stream io.Reader) {
	defer wg.Done()
	buf := make([]byte, chunkSize)
	for {
		n, err := stream.Read(buf)
		if n > 0 {
			data := make([]byte, n)
			copy(data, buf[:n])
			w.chunks <- Chunk{Source: source, Data: data}
		}
		if err != nil {
			return
		}
	}
}

// Chunks returns the stream of incremental reads. The channel is closed when
// both output pipes reach EOF, which happens when the process exits or is
// killed.
func (w *Worker) Chunks() <-chan Chunk {
	return w.chunks
}

// WriteLine writes one line to the worker's stdin, appending the newline
// terminator.
func (w *Worker) WriteLine(line []byte) error {
	if _, err := w.stdin.Write(append(line, '\n')); err != nil {
		return fmt.Errorf("failed to write to worker stdin: %w", err)
	}
	return nil
}

// Kill terminates the worker. Errors are suppressed: the process may have
// already exited.
func (w *Worker) Kill() {
	w.killOnce.Do(func() {
		w.stdin.Close()
		if w.cmd.Process != nil {
			w.cmd.Process.Kill()
		}
	})
}

// Wait blocks until the process has exited and its output channel drained by
// the reader goroutines.
func (w *Worker) Wait() error {
	return <-w.exited
}
