package bigquery

import (
	"time"

	"cloud.google.com/go/bigquery"
)

// Parsing run status values.
const (
	StatusRunning = "RUNNING"
	StatusSuccess = "SUCCESS"
	StatusFailed  = "FAILED"
)

// ParsingRunRow is one extractor invocation recorded for audit.
type ParsingRunRow struct {
	ParsingRunID string `bigquery:"parsing_run_id"` // REQUIRED
	Sub          string `bigquery:"sub"`            // REQUIRED
	DocumentID   string `bigquery:"document_id"`    // REQUIRED

	StartedTS  time.Time              `bigquery:"started_ts"`  // REQUIRED
	FinishedTS bigquery.NullTimestamp `bigquery:"finished_ts"` // NULLABLE

	Extractor string `bigquery:"extractor"` // NULLABLE

	Status       string `bigquery:"status"`        // NULLABLE
	ErrorKind    string `bigquery:"error_kind"`    // NULLABLE
	ErrorMessage string `bigquery:"error_message"` // NULLABLE

	TransactionsAdded bigquery.NullInt64 `bigquery:"transactions_added"` // NULLABLE
}
