package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/stashkit/stash/internal/config"
	"github.com/stashkit/stash/internal/dynamostore"
	"github.com/stashkit/stash/internal/memstore"
	"github.com/stashkit/stash/internal/metrics"
	"github.com/stashkit/stash/internal/repo"
	"github.com/stashkit/stash/internal/sqlstore"
	"github.com/stashkit/stash/internal/todo"
)

// Demo backends. The in-memory backends make the demo a no-setup smoke
// run; sqlite and dynamo exercise real persistence.
const (
	DemoBackendSQLite = "sqlite"
	DemoBackendList   = "list"
	DemoBackendHash   = "hash"
	DemoBackendDynamo = "dynamo"
)

// DemoOptions holds flags for the demo command.
type DemoOptions struct {
	*RootOptions
	Backend  string
	Database string

	// Now allows overriding the clock (for testing). Nil means time.Now.
	Now func() time.Time

	// DynamoClient allows overriding the DynamoDB client (for testing).
	// Nil means a client built from the ambient AWS configuration.
	DynamoClient dynamostore.Client
}

// DemoReport is the demo command's output payload. Metrics holds the
// gathered operation counters by op name, so the instrumentation is
// visible in the command output rather than only inside the process.
type DemoReport struct {
	Backend string             `json:"backend"`
	ID      string             `json:"id"`
	Lines   []string           `json:"lines"`
	Metrics map[string]float64 `json:"metrics"`
}

// NewDemoCommand creates the demo command.
func NewDemoCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &DemoOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Save and reload a sample record",
		Long: `Save a sample user with one tagged, due-dated task, reload it
through the storage contract, and print what the user should do.

The backend is picked by --backend, falling back to STASH_BACKEND and
then to sqlite. The sqlite backend persists to --db (or STASH_DB).

Examples:
  stash demo
  stash demo --backend list
  stash demo --backend sqlite --db /tmp/demo.db
  stash demo --backend dynamo --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDemo(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Backend, "backend", "", "storage backend (sqlite|list|hash|dynamo)")
	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database")

	return cmd
}

func runDemo(opts *DemoOptions, cmd *cobra.Command) error {
	setupLogging(opts.Verbose)

	cfg, err := config.FromEnv()
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load configuration", err)
	}
	if opts.Backend == "" {
		opts.Backend = cfg.Backend
	}
	if opts.Database == "" {
		opts.Database = cfg.Database
	}

	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	now := opts.Now
	if now == nil {
		now = time.Now
	}

	task := todo.NewTask("Buy Milk").DueAt(now().Add(24 * time.Minute).UTC())
	task.Tags = []string{"urgent"}
	mike := todo.NewUser("Mike", task)

	reg := prometheus.NewRegistry()
	rec := metrics.NewRecorder(reg)

	slog.Info("running demo", "backend", opts.Backend)

	var report *DemoReport
	switch opts.Backend {
	case DemoBackendSQLite:
		report, err = demoSQLite(ctx, opts, rec, mike)
	case DemoBackendList:
		store := metrics.Instrument[todo.User, int](rec, DemoBackendList, memstore.NewListStore[todo.User]())
		report, err = demoRound[int](ctx, DemoBackendList, store, mike)
	case DemoBackendHash:
		store := metrics.Instrument[todo.User, uuid.UUID](rec, DemoBackendHash, memstore.NewHashStore[todo.User]())
		report, err = demoRound[uuid.UUID](ctx, DemoBackendHash, store, mike)
	case DemoBackendDynamo:
		report, err = demoDynamo(ctx, opts, cfg, rec, mike)
	default:
		err = NewExitError(ExitCommandError, fmt.Sprintf("unknown backend %q", opts.Backend))
	}
	if err != nil {
		message := err.Error()
		var details interface{}
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			message = exitErr.Message
			if exitErr.Err != nil {
				details = exitErr.Err.Error()
			}
		}
		if ferr := formatter.Error("E_DEMO", message, details); ferr != nil {
			return ferr
		}
		return err
	}

	report.Metrics, err = gatherOps(reg)
	if err != nil {
		return WrapExitError(ExitFailure, "failed to gather metrics", err)
	}
	formatter.VerboseLog("storage operations: %v", report.Metrics)

	if opts.Format == "json" {
		return formatter.Success(report)
	}
	for _, line := range report.Lines {
		fmt.Fprintln(cmd.OutOrStdout(), line)
	}
	return nil
}

// gatherOps flattens the registry's operation counters into counts keyed
// by op name, summed across backends.
func gatherOps(reg *prometheus.Registry) (map[string]float64, error) {
	families, err := reg.Gather()
	if err != nil {
		return nil, fmt.Errorf("gather metrics: %w", err)
	}

	ops := map[string]float64{}
	for _, mf := range families {
		if mf.GetName() != "stash_store_operations_total" {
			continue
		}
		for _, m := range mf.GetMetric() {
			for _, label := range m.GetLabel() {
				if label.GetName() == "op" {
					ops[label.GetValue()] += m.GetCounter().GetValue()
				}
			}
		}
	}
	return ops, nil
}

func demoSQLite(ctx context.Context, opts *DemoOptions, rec *metrics.Recorder, u todo.User) (*DemoReport, error) {
	db, err := sqlstore.Open(opts.Database)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			slog.Error("error closing database", "error", closeErr)
		}
	}()

	users := sqlstore.NewUserStore(db)
	tasks := sqlstore.NewTaskStore(db)
	// Setup fails when the schema already exists; on a reused database
	// that is the expected state, not a demo failure.
	if err := users.Setup(ctx); err != nil {
		slog.Debug("users table setup skipped", "error", err)
	}
	if err := tasks.Setup(ctx); err != nil {
		slog.Debug("tasks table setup skipped", "error", err)
	}

	return demoRound[int64](ctx, DemoBackendSQLite, metrics.Instrument[todo.User, int64](rec, DemoBackendSQLite, users), u)
}

func demoDynamo(ctx context.Context, opts *DemoOptions, cfg config.Config, rec *metrics.Recorder, u todo.User) (*DemoReport, error) {
	client := opts.DynamoClient
	if client == nil {
		c, err := dynamostore.NewClient(ctx)
		if err != nil {
			return nil, WrapExitError(ExitCommandError, "failed to build DynamoDB client", err)
		}
		client = c
	}

	store := dynamostore.New(client, dynamostore.Config{Table: cfg.DynamoTable})
	return demoRound[string](ctx, DemoBackendDynamo, metrics.Instrument[todo.User, string](rec, DemoBackendDynamo, store), u)
}

// demoRound saves the user, reloads it through the contract, and renders
// one line per task. A reload miss means the backend broke its contract.
func demoRound[ID comparable](ctx context.Context, backend string, users repo.Repository[todo.User, ID], u todo.User) (*DemoReport, error) {
	id, err := users.Save(ctx, u)
	if err != nil {
		return nil, WrapExitError(ExitFailure, "failed to save user", err)
	}
	slog.Debug("user saved", "backend", backend, "id", id)

	loaded, ok, err := users.Get(ctx, id)
	if err != nil {
		return nil, WrapExitError(ExitFailure, "failed to reload user", err)
	}
	if !ok {
		return nil, NewExitError(ExitFailure, fmt.Sprintf("saved user %v not found on reload", id))
	}

	report := &DemoReport{
		Backend: backend,
		ID:      fmt.Sprint(id),
		Lines:   make([]string, 0, len(loaded.Tasks)),
	}
	for _, t := range loaded.Tasks {
		report.Lines = append(report.Lines, demoLine(loaded.Name, t))
	}
	return report, nil
}

// demoLine renders "<name> should <desc> [tags]".
func demoLine(name string, t todo.Task) string {
	line := fmt.Sprintf("%s should %s", name, t.Desc)
	if len(t.Tags) > 0 {
		line += " [" + strings.Join(t.Tags, ", ") + "]"
	}
	return line
}

// setupLogging configures the process-wide logger from the verbose flag.
func setupLogging(verbose bool) {
	logLevel := slog.LevelInfo
	if verbose {
		logLevel = slog.LevelDebug
	}
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	})
	slog.SetDefault(slog.New(handler))
}
