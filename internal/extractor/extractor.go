// Package extractor runs the external statement extractor. The extractor is
// an opaque program that reads a staged PDF and prints one JSON object:
//
//	{"status":"success","data":{"transactions":[...]}}
//	{"status":"error","message":"..."}
package extractor

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"github.com/joshua-paul-1/fintrackr/internal/domain"
)

// DocumentPathEnv names the child environment variable holding the staged file.
const DocumentPathEnv = "FINTRACKR_DOCUMENT_PATH"

// PasswordSentinel is passed when no password was supplied.
const PasswordSentinel = "null"

// DefaultTimeout bounds a single extraction.
const DefaultTimeout = 60 * time.Second

// waitDelay bounds how long Extract waits for output pipes after the timeout fires.
const waitDelay = 2 * time.Second

// Request describes one extraction.
type Request struct {
	OwnerID    string
	DocumentID string
	Password   string
	FilePath   string
}

// Extractor turns a staged statement into the raw extractor payload.
type Extractor interface {
	Extract(ctx context.Context, req Request) (map[string]interface{}, error)
}

// Command runs the extractor as a child process.
type Command struct {
	path    string
	args    []string
	env     []string
	timeout time.Duration
	log     zerolog.Logger
}

// NewCommand creates an extractor that runs path with args, followed by
// owner id, document id and password. extraEnv is appended to the parent
// environment.
func NewCommand(path string, args []string, extraEnv []string, timeout time.Duration, log zerolog.Logger) *Command {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Command{
		path:    path,
		args:    args,
		env:     extraEnv,
		timeout: timeout,
		log:     log,
	}
}

type payload struct {
	Status  string                 `json:"status"`
	Message string                 `json:"message"`
	Kind    string                 `json:"kind"`
	Data    map[string]interface{} `json:"data"`
}

// Extract implements Extractor.
func (c *Command) Extract(ctx context.Context, req Request) (map[string]interface{}, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	password := req.Password
	if password == "" {
		password = PasswordSentinel
	}

	args := make([]string, 0, len(c.args)+3)
	args = append(args, c.args...)
	args = append(args, req.OwnerID, req.DocumentID, password)

	cmd := exec.CommandContext(ctx, c.path, args...)
	cmd.Env = append(append(os.Environ(), c.env...), DocumentPathEnv+"="+req.FilePath)
	cmd.WaitDelay = waitDelay
	killGroup(cmd)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	err := cmd.Run()

	log := c.log.With().
		Str("sub", req.OwnerID).
		Str("document_id", req.DocumentID).
		Dur("duration", time.Since(start)).
		Logger()

	if ctx.Err() != nil {
		log.Error().Err(ctx.Err()).Msg("Extractor did not finish in time")
		return nil, domain.ParseFailure("PDF parsing timed out", ctx.Err())
	}

	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			log.Error().Int("exit_code", exitErr.ExitCode()).Str("stderr", truncate(stderr.String(), 2000)).Msg("Extractor exited with error")
			return nil, Classify(Failure{Message: stderr.String()})
		}
		log.Error().Err(err).Msg("Failed to start extractor")
		return nil, domain.ParseFailure("Failed to execute extractor", err)
	}

	p, err := decodeSingle(stdout.Bytes())
	if err != nil {
		log.Error().Err(err).Msg("Extractor produced malformed output")
		return nil, domain.ParseFailure("PDF parsing failed", err)
	}

	switch p.Status {
	case "success":
		if p.Data == nil {
			return nil, domain.ParseFailure("PDF parsing failed", errors.New("missing data in extractor output"))
		}
		log.Debug().Msg("Extractor succeeded")
		return p.Data, nil
	case "error":
		log.Warn().Str("message", p.Message).Str("kind", p.Kind).Msg("Extractor reported failure")
		return nil, Classify(Failure{Message: p.Message, Kind: p.Kind})
	default:
		return nil, domain.ParseFailure("PDF parsing failed", fmt.Errorf("unknown extractor status %q", p.Status))
	}
}

// decodeSingle decodes exactly one JSON object from out.
func decodeSingle(out []byte) (*payload, error) {
	dec := json.NewDecoder(bytes.NewReader(out))
	dec.UseNumber()

	var p payload
	if err := dec.Decode(&p); err != nil {
		return nil, fmt.Errorf("failed to decode extractor output: %w", err)
	}

	var extra json.RawMessage
	if err := dec.Decode(&extra); err != io.EOF {
		return nil, errors.New("extractor output has trailing data")
	}

	return &p, nil
}

// truncate trims s and cuts it to at most n bytes on a rune boundary.
func truncate(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

var _ Extractor = (*Command)(nil)
