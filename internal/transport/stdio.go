// Package transport implements the stdio transport loop: newline-delimited
// JSON requests in, one JSON response per request out, in arrival order.
package transport

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/aqaranewbiz/mysql-aqara/internal/logger"
	"github.com/aqaranewbiz/mysql-aqara/pkg/protocol"
)

// Handler resolves one request into exactly one response.
type Handler interface {
	Handle(ctx context.Context, req *protocol.Request) *protocol.Response
}

// StdioTransport reads requests from a stream and writes responses to
// another. Requests are processed strictly sequentially: each one is fully
// resolved, including its database round trip, before the next is read.
type StdioTransport struct {
	reader io.Reader
	writer io.Writer
}

// NewStdioTransport creates a transport over standard input and output.
func NewStdioTransport() *StdioTransport {
	return NewTransport(os.Stdin, os.Stdout)
}

// NewTransport creates a transport over arbitrary streams.
func NewTransport(reader io.Reader, writer io.Writer) *StdioTransport {
	return &StdioTransport{
		reader: reader,
		writer: writer,
	}
}

type readResult struct {
	line string
	err  error
}

// Serve runs the read-decode-dispatch-encode-write cycle until EOF, a
// fatal transport error, or context cancellation. Reading happens on its
// own goroutine so cancellation is observed promptly even while a request
// is in flight.
func (t *StdioTransport) Serve(ctx context.Context, handler Handler) error {
	lines := make(chan readResult)
	go t.readLines(ctx, lines)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case res, ok := <-lines:
			if !ok {
				return nil
			}
			if res.err != nil {
				if errors.Is(res.err, io.EOF) {
					logger.Info("Received EOF on stdin, shutting down")
					return nil
				}
				return fmt.Errorf("failed to read request: %w", res.err)
			}

			var req protocol.Request
			if err := json.Unmarshal([]byte(res.line), &req); err != nil {
				// Framing corruption is the one fatal error class.
				return fmt.Errorf("malformed request envelope: %w", err)
			}

			response := handler.Handle(ctx, &req)
			if err := t.write(response); err != nil {
				return fmt.Errorf("failed to write response: %w", err)
			}
		}
	}
}

// readLines feeds non-empty input lines to the channel until EOF or error.
func (t *StdioTransport) readLines(ctx context.Context, lines chan<- readResult) {
	defer close(lines)

	reader := bufio.NewReader(t.reader)
	for {
		line, err := reader.ReadString('\n')
		line = strings.TrimSpace(line)

		if line != "" {
			select {
			case lines <- readResult{line: line}:
			case <-ctx.Done():
				return
			}
		}

		if err != nil {
			select {
			case lines <- readResult{err: err}:
			case <-ctx.Done():
			}
			return
		}
	}
}

// write emits one response envelope followed by a newline.
func (t *StdioTransport) write(response *protocol.Response) error {
	data, err := json.Marshal(response)
	if err != nil {
		// Fall back to a bare error envelope; the request must not go
		// unanswered.
		logger.Error("Failed to marshal response: %v", err)
		data, err = json.Marshal(protocol.NewError(response.ID, "failed to encode response"))
		if err != nil {
			return err
		}
	}

	if _, err := fmt.Fprintf(t.writer, "%s\n", data); err != nil {
		return err
	}
	return nil
}
