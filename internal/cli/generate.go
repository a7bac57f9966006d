package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/roach88/archgen/internal/emit"
	"github.com/roach88/archgen/internal/enumerate"
	"github.com/roach88/archgen/internal/store"
)

// GenerateOptions holds flags for the generate command.
type GenerateOptions struct {
	*RootOptions
	Output            string
	Force             bool
	Catalog           string
	MaxConfigurations int
	MaxFragments      int

	// IDGenerator overrides the catalog session id generator (for testing).
	// If nil, defaults to UUIDv7Generator.
	IDGenerator store.IDGenerator
}

// GenerateResult summarizes one generation run.
type GenerateResult struct {
	Name           string `json:"name"`
	DesignHash     string `json:"design_hash"`
	Output         string `json:"output"`
	Manifest       string `json:"manifest"`
	Architectures  int    `json:"architectures"`
	Workloads      int    `json:"workloads"`
	Configurations int    `json:"configurations"`
	Mixed          bool   `json:"mixed"`
	SessionID      string `json:"session_id,omitempty"`
}

// NewGenerateCommand creates the generate command.
func NewGenerateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &GenerateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "generate <design-dir>",
		Short: "Enumerate a design and write its configurations",
		Long: `Enumerate every configuration a CUE design allows and write it out.

Writes one architecture document per unique architecture, one workload
document per unique workload, the event and metric documents, a run
directory per configuration, runs.txt, and manifest.csv (last). With
--catalog the run is also recorded in a SQLite catalog.

The output directory must be empty or missing. --force replaces what an
earlier generate wrote there and keeps any other file.

Example:
  archgen generate ./designs/gemm -o ./out
  archgen generate ./designs/gemm -o ./out --catalog ./archgen.db`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "output directory (required)")
	cmd.Flags().BoolVar(&opts.Force, "force", false, "replace a previous generate output in the output directory")
	cmd.Flags().StringVar(&opts.Catalog, "catalog", "", "path to SQLite catalog database")
	cmd.Flags().IntVar(&opts.MaxConfigurations, "max-configurations", enumerate.DefaultMaxConfigurations,
		"abort when more configurations would be emitted (0 disables)")
	cmd.Flags().IntVar(&opts.MaxFragments, "max-fragments", enumerate.DefaultMaxFragments,
		"abort when one component or product step exceeds this many fragments (0 disables)")
	_ = cmd.MarkFlagRequired("output")

	return cmd
}

func runGenerate(opts *GenerateOptions, designDir string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)
	logger := opts.Logger(cmd.ErrOrStderr())

	if opts.MaxConfigurations < 0 || opts.MaxFragments < 0 {
		return fail(formatter, ExitCommandError, ErrCodeGeneric, "limits must not be negative", nil)
	}

	loadResult, loadErrors := LoadDesign(designDir, LoadModeFailFast, logger)
	if len(loadErrors) > 0 {
		e := toCLIError(loadErrors[0])
		_ = formatter.Error(e.Code, e.Message, e.Details)
		return WrapExitError(ExitCommandError, fmt.Sprintf("%s: %s", e.Code, e.Message), nil)
	}
	s := loadResult.Session
	formatter.VerboseLog("Compiled design %s from %d CUE file(s)", s.Name(), loadResult.FileCount)

	if err := s.Validate(); err != nil {
		return fail(formatter, ExitCommandError, ErrCodeIncomplete, "invalid design", err)
	}
	hash, err := s.Hash()
	if err != nil {
		return fail(formatter, ExitFailure, ErrCodeGeneric, "hashing design", err)
	}

	ctx, cancel := signalContext(cmd.Context(), logger)
	defer cancel()

	res, err := enumerate.Run(ctx, s,
		enumerate.WithMaxConfigurations(opts.MaxConfigurations),
		enumerate.WithMaxFragments(opts.MaxFragments),
		enumerate.WithLogger(logger))
	if err != nil {
		return fail(formatter, ExitFailure, MapErrorCode(err), "enumeration failed", err)
	}

	layout := emit.NewLayout(opts.Output)
	emitOpts := []emit.Option{emit.WithLogger(logger)}
	if opts.Force {
		emitOpts = append(emitOpts, emit.WithReplace())
	}
	manifest, err := emit.Write(ctx, layout, emit.InputFromSession(s, res), emitOpts...)
	if errors.Is(err, emit.ErrOutputNotEmpty) {
		return fail(formatter, ExitCommandError, ErrCodeWriteFailed, "output directory is not empty (use --force to replace)", err)
	}
	if err != nil {
		return fail(formatter, ExitFailure, ErrCodeWriteFailed, "writing configurations", err)
	}

	result := GenerateResult{
		Name:           s.Name(),
		DesignHash:     hash,
		Output:         layout.Root,
		Manifest:       layout.ManifestPath(),
		Architectures:  len(res.Architectures),
		Workloads:      len(res.Workloads),
		Configurations: len(manifest.Rows),
		Mixed:          res.Mixed,
	}

	if opts.Catalog != "" {
		id, err := recordSession(ctx, opts, store.Record{
			Design:     s.Name(),
			DesignHash: hash,
			Layout:     layout,
			Result:     res,
			Manifest:   manifest,
		}, logger)
		if err != nil {
			return fail(formatter, ExitFailure, ErrCodeCatalog, "recording catalog", err)
		}
		result.SessionID = id
	}

	return outputGenerateSuccess(formatter, result)
}

// recordSession writes the run to the catalog database, creating it if needed.
func recordSession(ctx context.Context, opts *GenerateOptions, rec store.Record, logger *slog.Logger) (string, error) {
	st, err := store.Open(opts.Catalog)
	if err != nil {
		return "", err
	}
	defer func() {
		if closeErr := st.Close(); closeErr != nil {
			logger.Error("error closing catalog", "error", closeErr)
		}
	}()

	gen := opts.IDGenerator
	if gen == nil {
		gen = store.UUIDv7Generator{}
	}
	sess, err := st.WriteSession(ctx, gen, rec)
	if err != nil {
		return "", err
	}
	logger.Info("session cataloged", "id", sess.ID, "seq", sess.Seq, "catalog", opts.Catalog)
	return sess.ID, nil
}

// signalContext cancels on SIGINT or SIGTERM so long enumerations stop
// between components and before any file is written.
func signalContext(parent context.Context, logger *slog.Logger) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := context.WithCancel(parent)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		select {
		case sig := <-sigChan:
			logger.Warn("received signal, stopping", "signal", sig)
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, func() {
		signal.Stop(sigChan) // Prevent signal handler leak
		cancel()
	}
}

// fail reports err through the formatter and returns the exit error.
func fail(formatter *OutputFormatter, exitCode int, code, message string, err error) error {
	msg := message
	if err != nil {
		msg = fmt.Sprintf("%s: %v", message, err)
	}
	_ = formatter.Error(code, msg, nil)
	return WrapExitError(exitCode, fmt.Sprintf("%s: %s", code, message), err)
}

// outputGenerateSuccess outputs the generation summary.
func outputGenerateSuccess(formatter *OutputFormatter, result GenerateResult) error {
	if formatter.Format == "json" {
		return formatter.Success(result)
	}

	if result.Configurations == 0 {
		fmt.Fprintf(formatter.Writer, "! No configurations: the constraints of %s cannot all be satisfied\n", result.Name)
		fmt.Fprintf(formatter.Writer, "Wrote empty manifest to %s\n", result.Manifest)
		return nil
	}

	fmt.Fprintf(formatter.Writer, "✓ Generated %d configuration(s) from %s\n\n", result.Configurations, result.Name)
	fmt.Fprintf(formatter.Writer, "  architectures: %d\n", result.Architectures)
	fmt.Fprintf(formatter.Writer, "  workloads:     %d\n", result.Workloads)
	if result.Mixed {
		fmt.Fprintln(formatter.Writer, "  pairing:       linked")
	} else {
		fmt.Fprintln(formatter.Writer, "  pairing:       product")
	}
	fmt.Fprintln(formatter.Writer)
	fmt.Fprintf(formatter.Writer, "Wrote manifest to %s\n", result.Manifest)
	if result.SessionID != "" {
		fmt.Fprintf(formatter.Writer, "Cataloged as session %s\n", result.SessionID)
	}
	return nil
}
