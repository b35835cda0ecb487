package extractor

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshua-paul-1/fintrackr/internal/domain"
)

// TestHelperProcess is not a real test. It is re-executed by the tests below
// as a stand-in for the extractor program.
func TestHelperProcess(t *testing.T) {
	if os.Getenv("GO_WANT_HELPER_PROCESS") != "1" {
		return
	}
	defer os.Exit(0)

	args := os.Args
	for i, a := range args {
		if a == "--" {
			args = args[i+1:]
			break
		}
	}

	switch os.Getenv("HELPER_MODE") {
	case "success":
		data, _ := os.ReadFile(os.Getenv(DocumentPathEnv))
		out := map[string]interface{}{
			"status": "success",
			"data": map[string]interface{}{
				"transactions": []interface{}{
					map[string]interface{}{"name": "Coffee", "total": 4.5, "date": "2025-01-02T09:30:00", "time": "09:30:00"},
				},
				"args":    args,
				"content": string(data),
			},
		}
		_ = json.NewEncoder(os.Stdout).Encode(out)
	case "error-payload":
		fmt.Println(`{"status":"error","message":"File has not been decrypted"}`)
	case "error-kind":
		fmt.Println(`{"status":"error","message":"bad credentials","kind":"incorrect_password"}`)
	case "generic-error":
		fmt.Println(`{"status":"error","message":"No transactions found"}`)
	case "exit-password":
		fmt.Fprintln(os.Stderr, "PdfReadError: Encrypted file, wrong PASSWORD")
		os.Exit(1)
	case "exit-other":
		fmt.Fprintln(os.Stderr, "Traceback: something broke")
		os.Exit(2)
	case "malformed":
		fmt.Println("not json at all")
	case "two-objects":
		fmt.Println(`{"status":"success","data":{}}`)
		fmt.Println(`{"status":"success","data":{}}`)
	case "sleep":
		time.Sleep(5 * time.Second)
	}
}

func helperCommand(t *testing.T, mode string, timeout time.Duration) *Command {
	t.Helper()
	return NewCommand(
		os.Args[0],
		[]string{"-test.run=TestHelperProcess", "--"},
		[]string{"GO_WANT_HELPER_PROCESS=1", "HELPER_MODE=" + mode},
		timeout,
		zerolog.New(io.Discard),
	)
}

func stagedFile(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "statement.pdf")
	require.NoError(t, os.WriteFile(path, []byte("%PDF-1.4 fake"), 0o600))
	return path
}

func TestCommand_Success(t *testing.T) {
	req := Request{OwnerID: "sub-1", DocumentID: "doc-1", FilePath: stagedFile(t)}

	data, err := helperCommand(t, "success", 10*time.Second).Extract(context.Background(), req)
	require.NoError(t, err)

	txs, ok := data["transactions"].([]interface{})
	require.True(t, ok)
	assert.Len(t, txs, 1)
	assert.Equal(t, "%PDF-1.4 fake", data["content"])
	assert.Equal(t, []interface{}{"sub-1", "doc-1", PasswordSentinel}, data["args"])
}

func TestCommand_PassesPassword(t *testing.T) {
	req := Request{OwnerID: "sub-1", DocumentID: "doc-1", Password: "s3cret", FilePath: stagedFile(t)}

	data, err := helperCommand(t, "success", 10*time.Second).Extract(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, []interface{}{"sub-1", "doc-1", "s3cret"}, data["args"])
}

func TestCommand_Failures(t *testing.T) {
	tests := []struct {
		mode     string
		wantKind domain.Kind
	}{
		{"error-payload", domain.KindIncorrectPassword},
		{"error-kind", domain.KindIncorrectPassword},
		{"generic-error", domain.KindParseFailure},
		{"exit-password", domain.KindIncorrectPassword},
		{"exit-other", domain.KindParseFailure},
		{"malformed", domain.KindParseFailure},
		{"two-objects", domain.KindParseFailure},
	}

	for _, tt := range tests {
		t.Run(tt.mode, func(t *testing.T) {
			req := Request{OwnerID: "sub-1", DocumentID: "doc-1", FilePath: stagedFile(t)}

			_, err := helperCommand(t, tt.mode, 10*time.Second).Extract(context.Background(), req)
			require.Error(t, err)
			assert.Equal(t, tt.wantKind, domain.KindOf(err))
		})
	}
}

func TestCommand_Timeout(t *testing.T) {
	req := Request{OwnerID: "sub-1", DocumentID: "doc-1", FilePath: stagedFile(t)}

	start := time.Now()
	_, err := helperCommand(t, "sleep", 200*time.Millisecond).Extract(context.Background(), req)
	require.Error(t, err)
	assert.Equal(t, domain.KindParseFailure, domain.KindOf(err))
	assert.Less(t, time.Since(start), 4*time.Second)
}

func TestCommand_TimeoutKillsGrandchildren(t *testing.T) {
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
	req := Request{OwnerID: "sub-1", DocumentID: "doc-1", FilePath: stagedFile(t)}
	cmd := NewCommand("sh", []string{"-c", `sleep 3; echo '{"status":"success","data":{}}'`}, nil, 200*time.Millisecond, zerolog.New(io.Discard))

	start := time.Now()
	_, err := cmd.Extract(context.Background(), req)
	require.Error(t, err)
	assert.Equal(t, domain.KindParseFailure, domain.KindOf(err))
	assert.Contains(t, err.Error(), "timed out")
	assert.Less(t, time.Since(start), 2500*time.Millisecond)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", truncate("  abc  ", 10))
	assert.Equal(t, "ab", truncate("abcdef", 2))

	// "é" is two bytes; cutting at an odd offset must not split it.
	got := truncate(strings.Repeat("é", 10), 5)
	assert.True(t, utf8.ValidString(got))
	assert.Equal(t, "éé", got)
}

func TestCommand_MissingBinary(t *testing.T) {
	cmd := NewCommand(filepath.Join(t.TempDir(), "does-not-exist"), nil, nil, time.Second, zerolog.New(io.Discard))

	_, err := cmd.Extract(context.Background(), Request{OwnerID: "sub-1", DocumentID: "doc-1"})
	assert.Equal(t, domain.KindParseFailure, domain.KindOf(err))
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name    string
		failure Failure
		want    domain.Kind
	}{
		{"encrypted any case", Failure{Message: "ENCRYPTED FILE"}, domain.KindIncorrectPassword},
		{"Encrypted file", Failure{Message: "Encrypted file"}, domain.KindIncorrectPassword},
		{"decrypt", Failure{Message: "could not Decrypt stream"}, domain.KindIncorrectPassword},
		{"password", Failure{Message: "Wrong password supplied"}, domain.KindIncorrectPassword},
		{"explicit kind", Failure{Message: "nope", Kind: KindIncorrectPassword}, domain.KindIncorrectPassword},
		{"generic", Failure{Message: "no transactions found"}, domain.KindParseFailure},
		{"empty", Failure{}, domain.KindParseFailure},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Classify(tt.failure)
			assert.Equal(t, tt.want, domain.KindOf(err))
			if tt.want == domain.KindIncorrectPassword {
				assert.ErrorIs(t, err, domain.ErrIncorrectPassword)
				assert.Equal(t, "INCORRECT_PASSWORD", domain.MessageOf(err))
			}
		})
	}
}
