package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/roach88/archgen/internal/cli"
)

// main is the entrypoint for the archgen command.
func main() {
	// The real main function handles errors and exit codes.
	if err := run(context.Background(), os.Stdout, os.Stderr, os.Args[1:]); err != nil {
		os.Exit(cli.GetExitCode(err))
	}
}

// run executes the root command against args. Commands report their own
// failures; anything else (unknown flags, wrong argument counts) is a
// command error printed here.
func run(ctx context.Context, outW, errW io.Writer, args []string) error {
	cmd := cli.NewRootCommand()
	cmd.SetOut(outW)
	cmd.SetErr(errW)
	cmd.SetArgs(args)

	err := cmd.ExecuteContext(ctx)
	if err == nil {
		return nil
	}
	var exitErr *cli.ExitError
	if !errors.As(err, &exitErr) {
		fmt.Fprintln(errW, "Error:", err)
		return cli.WrapExitError(cli.ExitCommandError, "invalid command", err)
	}
	return err
}
