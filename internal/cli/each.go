package cli

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"time"

	"github.com/aryankumar/fanout/internal/executor"
	"github.com/spf13/cobra"
)

// placeholder is replaced by the current item in every command argument
const placeholder = "{}"

// maxStderr bounds how much of a failed command's stderr ends up in its error
const maxStderr = 200

type eachOptions struct {
	items []string
	wide  bool
}

// newEachCmd creates the each command
func newEachCmd(a *app) *cobra.Command {
	opts := &eachOptions{}

	cmd := &cobra.Command{
		Use:   "each [flags] -- COMMAND [ARGS...]",
		Short: "Run a command once per item in parallel",
		Long: `Run COMMAND once for every item, at most --workers at a time.

Every "{}" in COMMAND or ARGS is replaced by the item. Without a
placeholder the item is appended as the last argument. Items come from
--items, or one per line on stdin.

Each item succeeds when its command exits with status 0. The results are
reported in input order and the command fails if any item failed.`,
		Example: `  # Ping three hosts, two at a time
  fanout each -w 2 --items a.example.com,b.example.com,c.example.com -- ping -c1 {}

  # Gzip every log file listed on stdin
  ls *.log | fanout each -- gzip

  # Machine-readable results
  fanout each -o json --items 1,2,3 -- sh -c 'test {} -ne 2'`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEach(cmd, a, opts, args)
		},
	}

	cmd.Flags().StringSliceVar(&opts.items, "items", nil, "items to run the command for (comma-separated)")
	cmd.Flags().BoolVar(&opts.wide, "wide", false, "include error details in table output")

	return cmd
}

func runEach(cmd *cobra.Command, a *app, opts *eachOptions, command []string) error {
	ctx := cmd.Context()
	logger := a.logger

	items := opts.items
	if len(items) == 0 {
		var err error
		items, err = readItems(cmd.InOrStdin())
		if err != nil {
			return fmt.Errorf("failed to read items: %w", err)
		}
	}

	if len(items) == 0 {
		return fmt.Errorf("no items given; use --items or pipe them on stdin")
	}

	f, err := a.formatter(opts.wide)
	if err != nil {
		return err
	}

	ex := a.executor()
	timeout := a.timeout()

	logger.Debug("running command for each item",
		"command", command[0],
		"items", len(items),
		"workers", ex.Capacity(),
		"timeout", timeout)

	batch := executor.ForEachWithProgress(ex, items, func(item *string) error {
		return runItem(ctx, timeout, command, *item)
	}, func(completed, total int) {
		logger.Debug("progress", "completed", completed, "total", total)
	})

	if err := f.FormatBatch(cmd.OutOrStdout(), batch, items); err != nil {
		return fmt.Errorf("failed to write results: %w", err)
	}

	if failed := executor.CountFailed(batch.Outcomes); failed > 0 {
		if err := batch.Err(); err != nil {
			return fmt.Errorf("%d of %d items failed: %w", failed, len(items), err)
		}
		return fmt.Errorf("%d of %d items failed", failed, len(items))
	}

	return nil
}

// runItem runs one command invocation and folds its stderr into the error
func runItem(ctx context.Context, timeout time.Duration, command []string, item string) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	args := expandArgs(command, item)

	var stderr bytes.Buffer
	c := exec.CommandContext(ctx, args[0], args[1:]...)
	c.Stdout = io.Discard
	c.Stderr = &stderr

	if err := c.Run(); err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return fmt.Errorf("%q timed out after %s: %w", item, timeout, ctx.Err())
		}
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			if len(msg) > maxStderr {
				msg = msg[:maxStderr] + "..."
			}
			return fmt.Errorf("%q: %w: %s", item, err, msg)
		}
		return fmt.Errorf("%q: %w", item, err)
	}

	return nil
}

// expandArgs substitutes item for every placeholder, or appends it when
// the command has none
func expandArgs(command []string, item string) []string {
	args := make([]string, len(command))
	found := false
	for i, arg := range command {
		if strings.Contains(arg, placeholder) {
			found = true
			arg = strings.ReplaceAll(arg, placeholder, item)
		}
		args[i] = arg
	}

	if !found {
		args = append(args, item)
	}
	return args
}

// readItems reads one item per non-blank line
func readItems(r io.Reader) ([]string, error) {
	var items []string

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			items = append(items, line)
		}
	}

	return items, scanner.Err()
}
