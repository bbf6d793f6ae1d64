package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/aryankumar/fanout/internal/cli"
	"github.com/aryankumar/fanout/internal/singleton"
	"github.com/aryankumar/fanout/internal/util"
)

func main() {
	ctx := util.SetupSignalHandler(nil)

	shutdownTimeout, err := cli.Execute(ctx)

	// Process-wide resources (the shared worker pool) are torn down in reverse
	// order of creation, even when the command failed
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	if closeErr := singleton.Process().Close(shutdownCtx); closeErr != nil {
		slog.Warn("shutdown incomplete", "error", closeErr)
	}
	cancel()

	if err != nil {
		slog.Error("command failed", "error", err)
		if hint := util.FriendlyError(err); hint != err.Error() {
			slog.Error(hint)
		}
		os.Exit(1)
	}
}
