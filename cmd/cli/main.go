package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/joshua-paul-1/fintrackr/internal/app"
	"github.com/joshua-paul-1/fintrackr/internal/budget"
	"github.com/joshua-paul-1/fintrackr/internal/config"
	"github.com/joshua-paul-1/fintrackr/internal/domain"
	"github.com/joshua-paul-1/fintrackr/internal/extractor"
	infraBQ "github.com/joshua-paul-1/fintrackr/internal/infra/bigquery"
	"github.com/joshua-paul-1/fintrackr/internal/jobs/inmemory"
	"github.com/joshua-paul-1/fintrackr/internal/logger"
	"github.com/joshua-paul-1/fintrackr/internal/pipeline"
	"github.com/joshua-paul-1/fintrackr/internal/storage"
	"github.com/joshua-paul-1/fintrackr/internal/storage/gcs"
)

const commandTimeout = 5 * time.Minute

func main() {
	log := logger.New()

	if len(os.Args) < 2 {
		printUsage(os.Stderr)
		os.Exit(1)
	}

	switch os.Args[1] {
	case "ingest":
		runIngest(log)
	case "reprocess":
		runReprocess(log)
	case "inspect":
		runInspect(log)
	case "purge":
		runPurge(log)
	case "help", "-h", "--help":
		printUsage(os.Stdout)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage(os.Stderr)
		os.Exit(1)
	}
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "FinTrackr CLI")
	fmt.Fprintln(w, "\nUsage:")
	fmt.Fprintln(w, "  cli <command> [options]")
	fmt.Fprintln(w, "\nCommands:")
	fmt.Fprintln(w, "  ingest     Extract a local statement PDF into a user's ledger")
	fmt.Fprintln(w, "  reprocess  Re-run extraction on a stored statement")
	fmt.Fprintln(w, "  inspect    Show a user's ledger, budget status and parsing runs")
	fmt.Fprintln(w, "  purge      Delete a user's statements and transactions")
	fmt.Fprintln(w, "  help       Show this help message")
	fmt.Fprintln(w, "\nConfiguration is read from the same environment as the API server.")
	fmt.Fprintln(w, "Run 'cli <command> -h' for more information on a command.")
}

// environment is the subset of the server wiring the CLI commands share.
type environment struct {
	cfg      *config.Config
	stores   *app.Stores
	ingest   *pipeline.Service
	recorder *infraBQ.Recorder
	close    func()
}

func openEnvironment(ctx context.Context, log zerolog.Logger) (*environment, error) {
	cfg, err := config.NewConfig()
	if err != nil {
		return nil, err
	}

	st, err := app.OpenStores(ctx, cfg, log)
	if err != nil {
		return nil, err
	}
	blobs, closeBlobs, err := app.OpenBlobs(ctx, cfg)
	if err != nil {
		st.Close()
		return nil, err
	}
	recorder, err := app.OpenRecorder(ctx, cfg)
	if err != nil {
		closeBlobs()
		st.Close()
		return nil, err
	}

	ext := extractor.NewCommand(cfg.Extractor.Command, cfg.Extractor.Args, nil, cfg.Extractor.Timeout, log)
	queue := inmemory.NewQueue(1, 1, nil, log)
	workerCtx, cancelWorker := context.WithCancel(ctx)
	if err := queue.Start(workerCtx, pipeline.ExtractHandler(ext)); err != nil {
		cancelWorker()
		closeBlobs()
		st.Close()
		return nil, err
	}

	var opts []pipeline.Option
	if recorder != nil {
		opts = append(opts, pipeline.WithAuditor(recorder))
	}

	return &environment{
		cfg:      cfg,
		stores:   st,
		ingest:   pipeline.NewService(blobs, st.Documents, st.Transactions, queue, log, opts...),
		recorder: recorder,
		close: func() {
			cancelWorker()
			_ = queue.Close()
			if recorder != nil {
				_ = recorder.Close()
			}
			_ = closeBlobs()
			_ = st.Close()
		},
	}, nil
}

func mustOpen(ctx context.Context, log zerolog.Logger, requirePersistent bool) *environment {
	env, err := openEnvironment(ctx, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize")
	}
	if requirePersistent && !env.stores.Persistent {
		env.close()
		log.Fatal().Msg("Error: DB_DSN is required for this command")
	}
	return env
}

func runIngest(log zerolog.Logger) {
	fs := flag.NewFlagSet("ingest", flag.ExitOnError)
	sub := fs.String("sub", "", "Subject (user ID) owning the statement")
	filePath := fs.String("file", "", "Path to local PDF file, or a gs:// URI")
	password := fs.String("password", "", "Statement password, if encrypted")
	fs.Parse(os.Args[2:])

	if *sub == "" || *filePath == "" {
		log.Fatal().Msg("Usage: cli ingest -sub SUB -file PATH|gs://BUCKET/OBJECT [-password P]")
	}

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()
	ctx = logger.WithContext(ctx, log)

	env := mustOpen(ctx, log, false)
	defer env.close()
	if !env.stores.Persistent {
		log.Warn().Msg("DB_DSN is not set - this is a dry run")
	}

	data, err := readStatement(ctx, *filePath, env.cfg.Google.CredentialsFile)
	if err != nil {
		log.Fatal().Err(err).Str("file", *filePath).Msg("Failed to read statement")
	}

	log.Info().Str("sub", *sub).Str("file", *filePath).Msg("Starting ingestion")

	res, err := env.ingest.Ingest(ctx, *sub, data, path.Base(*filePath), *password)
	if err != nil {
		log.Fatal().Err(err).Msg("Ingestion failed")
	}

	printResult(os.Stdout, res)
}

func runReprocess(log zerolog.Logger) {
	fs := flag.NewFlagSet("reprocess", flag.ExitOnError)
	sub := fs.String("sub", "", "Subject (user ID) owning the statement")
	documentID := fs.String("document-id", "", "Stored statement ID")
	password := fs.String("password", "", "Statement password, if encrypted")
	fs.Parse(os.Args[2:])

	if *sub == "" || *documentID == "" {
		log.Fatal().Msg("Usage: cli reprocess -sub SUB -document-id ID [-password P]")
	}

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()
	ctx = logger.WithContext(ctx, log)

	env := mustOpen(ctx, log, true)
	defer env.close()

	res, err := env.ingest.Reprocess(ctx, *sub, *documentID, *password)
	if err != nil {
		log.Fatal().Err(err).Msg("Reprocess failed")
	}

	printResult(os.Stdout, res)
}

func runInspect(log zerolog.Logger) {
	fs := flag.NewFlagSet("inspect", flag.ExitOnError)
	sub := fs.String("sub", "", "Subject (user ID) to inspect")
	limit := fs.Int("limit", 20, "Number of most recent transactions and parsing runs to show")
	fs.Parse(os.Args[2:])

	if *sub == "" {
		log.Fatal().Msg("Usage: cli inspect -sub SUB [-limit N]")
	}

	ctx := logger.WithContext(context.Background(), log)

	env := mustOpen(ctx, log, true)
	defer env.close()

	ledger, err := env.stores.Transactions.GetLedger(ctx, *sub)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		log.Fatal().Err(err).Msg("Failed to load transactions")
	}

	status, b, err := budget.NewService(env.stores.Budgets, env.stores.Transactions, log).Status(ctx, *sub)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to evaluate budget")
	}

	printLedger(os.Stdout, ledger, *limit)
	printBudget(os.Stdout, status, b)

	if env.recorder == nil {
		return
	}
	runs, err := env.recorder.ListRuns(ctx, *sub, *limit)
	if err != nil {
		log.Error().Err(err).Msg("Failed to list parsing runs")
		return
	}
	printRuns(os.Stdout, runs)
}

func runPurge(log zerolog.Logger) {
	fs := flag.NewFlagSet("purge", flag.ExitOnError)
	sub := fs.String("sub", "", "Subject (user ID) whose data is deleted")
	yes := fs.Bool("yes", false, "Confirm the deletion")
	fs.Parse(os.Args[2:])

	if *sub == "" {
		log.Fatal().Msg("Usage: cli purge -sub SUB -yes")
	}
	if !*yes {
		log.Fatal().Str("sub", *sub).Msg("Refusing to purge without -yes")
	}

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()
	ctx = logger.WithContext(ctx, log)

	env := mustOpen(ctx, log, true)
	defer env.close()

	res, err := env.ingest.Purge(ctx, *sub)
	if err != nil {
		log.Fatal().Err(err).Msg("Purge failed")
	}

	fmt.Printf("Deleted %d statements and %d transaction ledgers for %s\n",
		res.DeletedDocuments, res.DeletedTransactions, *sub)
}

// readStatement reads a local file, or downloads a gs:// object.
func readStatement(ctx context.Context, name, credentialsFile string) ([]byte, error) {
	if !strings.HasPrefix(name, "gs://") {
		return os.ReadFile(name)
	}

	bucket, object, err := storage.ParseGCSURI(name)
	if err != nil {
		return nil, err
	}
	store, err := gcs.New(ctx, bucket, credentialsFile)
	if err != nil {
		return nil, err
	}
	defer store.Close()

	return store.Get(ctx, object)
}

func printResult(w io.Writer, res *pipeline.Result) {
	fmt.Fprintln(w, "\n=== Extraction ===")
	fmt.Fprintf(w, "Document:     %s\n", res.DocumentID)
	fmt.Fprintf(w, "Status:       %s\n", res.Status)
	fmt.Fprintf(w, "Details:      %s\n", res.Details)
	fmt.Fprintf(w, "Transactions: %d\n", res.TransactionsAdded)
	if res.JobID != "" {
		fmt.Fprintf(w, "Job:          %s\n", res.JobID)
	}
}

func printLedger(w io.Writer, ledger *domain.Ledger, limit int) {
	if ledger == nil || len(ledger.Transactions) == 0 {
		fmt.Fprintln(w, "\n=== Transactions (0) ===")
		return
	}

	txs := ledger.Transactions
	fmt.Fprintf(w, "\n=== Transactions (%d, last update %s) ===\n", len(txs), ledger.LastUpdate.Format(time.RFC3339))
	if limit > 0 && len(txs) > limit {
		txs = txs[len(txs)-limit:]
	}
	for i, tx := range txs {
		date := "-"
		if tx.Date != nil {
			date = tx.Date.String()
		}
		fmt.Fprintf(w, "%d. %-10s %10s x%d  %s\n", i+1, date, tx.Total.StringFixed(2), tx.Count, tx.MerchantName)
	}
}

func printBudget(w io.Writer, status budget.Status, b *domain.Budget) {
	fmt.Fprintln(w, "\n=== Budget ===")
	if b != nil {
		fmt.Fprintf(w, "Budget:   %s (%s)\n", b.Amount.StringFixed(2), b.Period)
	}
	fmt.Fprintf(w, "Spending: %s\n", status.TotalSpending.StringFixed(2))
	fmt.Fprintf(w, "Status:   %s\n", status.Message)
}

func printRuns(w io.Writer, runs []infraBQ.ParsingRunRow) {
	fmt.Fprintf(w, "\n=== Parsing runs (%d) ===\n", len(runs))
	for _, run := range runs {
		added := "-"
		if run.TransactionsAdded.Valid {
			added = fmt.Sprintf("%d", run.TransactionsAdded.Int64)
		}
		fmt.Fprintf(w, "%s  %-8s  document=%s  added=%s", run.StartedTS.Format(time.RFC3339), run.Status, run.DocumentID, added)
		if run.ErrorKind != "" {
			fmt.Fprintf(w, "  error=%s", run.ErrorKind)
		}
		fmt.Fprintln(w)
	}
}
