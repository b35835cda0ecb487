package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"

	"github.com/joshua-paul-1/fintrackr/internal/database"
	bq "github.com/joshua-paul-1/fintrackr/internal/infra/bigquery"
	"github.com/joshua-paul-1/fintrackr/internal/logger"
)

const usage = `Usage: migrate [flags] [up|down|status|version]

Applies the embedded PostgreSQL migrations. With -audit-project, "up" also
creates the BigQuery parsing_runs table.

Flags:
`

type options struct {
	command         string
	dsn             string
	auditProject    string
	auditDataset    string
	credentialsFile string
	verbose         bool
}

func main() {
	log := logger.New()

	opts, err := parseArgs(os.Args[1:], os.Getenv)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		log.Fatal().Err(err).Msg("Invalid arguments")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, opts, log); err != nil {
		log.Fatal().Err(err).Str("command", opts.command).Msg("Migration failed")
	}
}

func parseArgs(args []string, getenv func(string) string) (options, error) {
	fs := flag.NewFlagSet("migrate", flag.ContinueOnError)
	fs.Usage = func() {
		fmt.Fprint(fs.Output(), usage)
		fs.PrintDefaults()
	}

	dataset := getenv("AUDIT_DATASET")
	if dataset == "" {
		dataset = "fintrackr"
	}

	var opts options
	fs.StringVar(&opts.dsn, "dsn", getenv("DB_DSN"), "PostgreSQL connection string")
	fs.StringVar(&opts.auditProject, "audit-project", getenv("AUDIT_PROJECT_ID"), "GCP project holding the audit dataset")
	fs.StringVar(&opts.auditDataset, "audit-dataset", dataset, "BigQuery audit dataset")
	fs.StringVar(&opts.credentialsFile, "credentials", getenv("GOOGLE_CREDENTIALS_FILE"), "Google service account JSON file")
	fs.BoolVar(&opts.verbose, "v", false, "Print goose output")

	if err := fs.Parse(args); err != nil {
		return options{}, err
	}

	opts.command = database.CommandUp
	switch fs.NArg() {
	case 0:
	case 1:
		opts.command = fs.Arg(0)
	default:
		return options{}, fmt.Errorf("expected at most one command, got %d", fs.NArg())
	}

	switch opts.command {
	case database.CommandUp, database.CommandDown, database.CommandStatus, database.CommandVersion:
	default:
		return options{}, fmt.Errorf("unknown command %q", opts.command)
	}

	if opts.dsn == "" && opts.auditProject == "" {
		return options{}, errors.New("nothing to migrate: set -dsn (DB_DSN) or -audit-project (AUDIT_PROJECT_ID)")
	}

	return opts, nil
}

func run(ctx context.Context, opts options, log zerolog.Logger) error {
	if opts.dsn != "" {
		// status and version only report through goose's logger
		if opts.verbose || opts.command == database.CommandStatus || opts.command == database.CommandVersion {
			database.SetVerbose(os.Stdout)
		}

		if err := database.Run(ctx, opts.dsn, opts.command); err != nil {
			return err
		}
		log.Info().Str("command", opts.command).Msg("PostgreSQL migrations done")
	}

	if opts.auditProject != "" && opts.command == database.CommandUp {
		recorder, err := bq.NewRecorder(ctx, opts.auditProject, opts.auditDataset, "", opts.credentialsFile)
		if err != nil {
			return err
		}
		defer recorder.Close()

		if err := recorder.EnsureSchema(ctx); err != nil {
			return err
		}
		log.Info().
			Str("project", opts.auditProject).
			Str("dataset", opts.auditDataset).
			Msg("Audit table ready")
	}

	return nil
}
