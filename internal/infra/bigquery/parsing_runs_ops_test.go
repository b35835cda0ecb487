package bigquery

import (
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"

	"github.com/joshua-paul-1/fintrackr/internal/domain"
)

func TestFinishFields(t *testing.T) {
	status, kind, msg := finishFields(nil)
	assert.Equal(t, StatusSuccess, status)
	assert.Empty(t, kind)
	assert.Empty(t, msg)

	status, kind, msg = finishFields(domain.ErrIncorrectPassword)
	assert.Equal(t, StatusFailed, status)
	assert.Equal(t, "incorrect_password", kind)
	assert.Equal(t, "INCORRECT_PASSWORD", msg)

	status, kind, _ = finishFields(errors.New("disk full"))
	assert.Equal(t, StatusFailed, status)
	assert.Equal(t, "upstream", kind)
}

func TestFinishFields_TruncatesMessage(t *testing.T) {
	long := strings.Repeat("x", maxErrorLen+500)

	_, _, msg := finishFields(domain.ParseFailure("PDF parsing failed", errors.New(long)))
	assert.Len(t, msg, maxErrorLen)
	assert.True(t, strings.HasPrefix(msg, "PDF parsing failed: "))
}

func TestFinishFields_TruncatesOnRuneBoundary(t *testing.T) {
	// The odd-length prefix puts byte maxErrorLen inside a two-byte rune.
	long := "x" + strings.Repeat("é", maxErrorLen)

	_, _, msg := finishFields(domain.ParseFailure("PDF parsing failed", errors.New(long)))
	assert.True(t, utf8.ValidString(msg))
	assert.Len(t, msg, maxErrorLen-1)
}

func TestCreateParsingRunsSQL(t *testing.T) {
	sql := createParsingRunsSQL("finance")

	assert.Contains(t, sql, "CREATE TABLE IF NOT EXISTS finance.parsing_runs (")
	for _, column := range []string{"parsing_run_id", "sub", "document_id", "started_ts", "finished_ts",
		"extractor", "status", "error_kind", "error_message", "transactions_added"} {
		assert.Contains(t, sql, column+" ")
	}
}
