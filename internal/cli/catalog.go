package cli

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/archgen/internal/store"
)

// CatalogOptions holds flags for the catalog command.
type CatalogOptions struct {
	*RootOptions
	Session string
}

// SessionDetail is one session with its recorded configurations.
type SessionDetail struct {
	store.Session
	Configurations []store.Configuration `json:"rows"`
}

// NewCatalogCommand creates the catalog command.
func NewCatalogCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CatalogOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "catalog <db>",
		Short: "List generation runs recorded in a catalog",
		Long: `List the generation runs recorded in a catalog database.

With --session, print the configurations of one recorded run instead.

Example:
  archgen catalog ./archgen.db
  archgen catalog ./archgen.db --session 0190f1c2-...`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCatalog(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Session, "session", "", "show the configurations of one session")

	return cmd
}

func runCatalog(opts *CatalogOptions, dbPath string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)
	logger := opts.Logger(cmd.ErrOrStderr())

	// Open would create a missing database; a typo should not.
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		return fail(formatter, ExitCommandError, ErrCodeNotFound, fmt.Sprintf("catalog not found: %s", dbPath), nil)
	}

	st, err := store.Open(dbPath)
	if err != nil {
		return fail(formatter, ExitCommandError, ErrCodeCatalog, "opening catalog", err)
	}
	defer func() {
		if closeErr := st.Close(); closeErr != nil {
			logger.Error("error closing catalog", "error", closeErr)
		}
	}()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	if opts.Session != "" {
		return showSession(ctx, formatter, st, opts.Session)
	}

	sessions, err := st.ListSessions(ctx)
	if err != nil {
		return fail(formatter, ExitFailure, ErrCodeCatalog, "listing sessions", err)
	}
	if formatter.Format == "json" {
		return formatter.Success(sessions)
	}

	if len(sessions) == 0 {
		fmt.Fprintln(formatter.Writer, "No sessions recorded")
		return nil
	}
	fmt.Fprintf(formatter.Writer, "%d session(s)\n\n", len(sessions))
	for _, s := range sessions {
		fmt.Fprintf(formatter.Writer, "  #%d %s  %s  %d config(s) (%d arch, %d work)  %s\n",
			s.Seq, s.ID, s.Design, s.Configurations, s.Architectures, s.Workloads, s.OutputRoot)
	}
	return nil
}

func showSession(ctx context.Context, formatter *OutputFormatter, st *store.Store, id string) error {
	sess, err := st.ReadSession(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return fail(formatter, ExitCommandError, ErrCodeNotFound, fmt.Sprintf("session not found: %s", id), nil)
	}
	if err != nil {
		return fail(formatter, ExitFailure, ErrCodeCatalog, "reading session", err)
	}
	rows, err := st.ReadConfigurations(ctx, id)
	if err != nil {
		return fail(formatter, ExitFailure, ErrCodeCatalog, "reading configurations", err)
	}

	if formatter.Format == "json" {
		return formatter.Success(SessionDetail{Session: sess, Configurations: rows})
	}

	fmt.Fprintf(formatter.Writer, "Session #%d %s (%s)\n", sess.Seq, sess.ID, sess.Design)
	fmt.Fprintf(formatter.Writer, "  design hash: %s\n", sess.DesignHash)
	fmt.Fprintf(formatter.Writer, "  output:      %s\n\n", sess.OutputRoot)
	for _, r := range rows {
		fmt.Fprintf(formatter.Writer, "  %d: architecture %d, workload %d -> %s\n",
			r.Index, r.ArchitectureIndex, r.WorkloadIndex, r.RunDir)
	}
	return nil
}
