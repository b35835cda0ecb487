package bigquery

import (
	"context"
	"fmt"
	"time"
	"unicode/utf8"

	"cloud.google.com/go/bigquery"
	"github.com/google/uuid"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"

	"github.com/joshua-paul-1/fintrackr/internal/domain"
	"github.com/joshua-paul-1/fintrackr/internal/logger"
)

const parsingRunsTable = "parsing_runs"

const maxErrorLen = 2000

// Recorder writes parsing runs to BigQuery. Audit failures are logged and
// never fail an upload.
type Recorder struct {
	client    *bigquery.Client
	dataset   string
	extractor string
}

// NewRecorder creates a recorder holding a shared BigQuery client.
func NewRecorder(ctx context.Context, projectID, dataset, extractor, credentialsFile string) (*Recorder, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}

	client, err := bigquery.NewClient(ctx, projectID, opts...)
	if err != nil {
		return nil, fmt.Errorf("NewRecorder: bigquery client: %w", err)
	}

	return &Recorder{client: client, dataset: dataset, extractor: extractor}, nil
}

// Close closes the BigQuery client connection.
func (r *Recorder) Close() error {
	if r.client != nil {
		return r.client.Close()
	}
	return nil
}

// EnsureSchema creates the parsing_runs table when it does not exist.
func (r *Recorder) EnsureSchema(ctx context.Context) error {
	if err := runQuery(ctx, r.client.Query(createParsingRunsSQL(r.dataset))); err != nil {
		return fmt.Errorf("EnsureSchema: %w", err)
	}
	return nil
}

func createParsingRunsSQL(dataset string) string {
	return fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s.%s (
			parsing_run_id     STRING NOT NULL,
			sub                STRING NOT NULL,
			document_id        STRING NOT NULL,
			started_ts         TIMESTAMP NOT NULL,
			finished_ts        TIMESTAMP,
			extractor          STRING,
			status             STRING,
			error_kind         STRING,
			error_message      STRING,
			transactions_added INT64
		)
		PARTITION BY DATE(started_ts)
		CLUSTER BY sub
	`, dataset, parsingRunsTable)
}

// StartRun inserts a RUNNING row and returns the generated parsing_run_id.
func (r *Recorder) StartRun(ctx context.Context, ownerID, documentID string) (string, error) {
	parsingRunID := uuid.NewString()

	q := r.client.Query(fmt.Sprintf(`
		INSERT %s.%s (
			parsing_run_id,
			sub,
			document_id,
			started_ts,
			extractor,
			status
		)
		VALUES (
			@parsing_run_id,
			@sub,
			@document_id,
			@started_ts,
			@extractor,
			@status
		)
	`, r.dataset, parsingRunsTable))

	q.Parameters = []bigquery.QueryParameter{
		{Name: "parsing_run_id", Value: parsingRunID},
		{Name: "sub", Value: ownerID},
		{Name: "document_id", Value: documentID},
		{Name: "started_ts", Value: time.Now()},
		{Name: "extractor", Value: r.extractor},
		{Name: "status", Value: StatusRunning},
	}

	if err := runQuery(ctx, q); err != nil {
		return "", fmt.Errorf("StartRun: %w", err)
	}

	return parsingRunID, nil
}

// FinishRun marks a run SUCCESS with the number of appended transactions, or
// FAILED with the classified error.
func (r *Recorder) FinishRun(ctx context.Context, parsingRunID string, added int, runErr error) {
	log := logger.FromContext(ctx)

	status, kind, msg := finishFields(runErr)

	q := r.client.Query(fmt.Sprintf(`
		UPDATE %s.%s
		SET status = @status,
		    finished_ts = @finished_ts,
		    error_kind = @error_kind,
		    error_message = @error_message,
		    transactions_added = @transactions_added
		WHERE parsing_run_id = @parsing_run_id
	`, r.dataset, parsingRunsTable))

	q.Parameters = []bigquery.QueryParameter{
		{Name: "status", Value: status},
		{Name: "finished_ts", Value: time.Now()},
		{Name: "error_kind", Value: kind},
		{Name: "error_message", Value: msg},
		{Name: "transactions_added", Value: int64(added)},
		{Name: "parsing_run_id", Value: parsingRunID},
	}

	if err := runQuery(ctx, q); err != nil {
		log.Error().
			Err(err).
			Str("parsing_run_id", parsingRunID).
			Msg("FinishRun: update failed")
	}
}

// DeleteRuns removes every parsing run of ownerID.
func (r *Recorder) DeleteRuns(ctx context.Context, ownerID string) error {
	q := r.client.Query(fmt.Sprintf(`
		DELETE FROM %s.%s
		WHERE sub = @sub
	`, r.dataset, parsingRunsTable))
	q.Parameters = []bigquery.QueryParameter{
		{Name: "sub", Value: ownerID},
	}

	if err := runQuery(ctx, q); err != nil {
		return fmt.Errorf("DeleteRuns: %w", err)
	}
	return nil
}

// ListRuns returns the most recent parsing runs of ownerID, newest first.
func (r *Recorder) ListRuns(ctx context.Context, ownerID string, limit int) ([]ParsingRunRow, error) {
	if limit <= 0 {
		limit = 20
	}

	q := r.client.Query(fmt.Sprintf(`
		SELECT *
		FROM %s.%s
		WHERE sub = @sub
		ORDER BY started_ts DESC
		LIMIT @limit
	`, r.dataset, parsingRunsTable))
	q.Parameters = []bigquery.QueryParameter{
		{Name: "sub", Value: ownerID},
		{Name: "limit", Value: limit},
	}

	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("ListRuns: running query: %w", err)
	}

	var rows []ParsingRunRow
	for {
		var row ParsingRunRow
		err := it.Next(&row)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("ListRuns: reading row: %w", err)
		}
		rows = append(rows, row)
	}

	return rows, nil
}

func runQuery(ctx context.Context, q *bigquery.Query) error {
	job, err := q.Run(ctx)
	if err != nil {
		return fmt.Errorf("running query: %w", err)
	}

	status, err := job.Wait(ctx)
	if err != nil {
		return fmt.Errorf("waiting for job: %w", err)
	}
	if err := status.Err(); err != nil {
		return fmt.Errorf("job error: %w", err)
	}
	return nil
}

// finishFields returns status, error kind and truncated message for runErr.
func finishFields(runErr error) (string, string, string) {
	if runErr == nil {
		return StatusSuccess, "", ""
	}

	msg := runErr.Error()
	if len(msg) > maxErrorLen {
		n := maxErrorLen
		for n > 0 && !utf8.RuneStart(msg[n]) {
			n--
		}
		msg = msg[:n]
	}
	return StatusFailed, string(domain.KindOf(runErr)), msg
}
