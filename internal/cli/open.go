package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/roach88/stationcache/internal/cache"
)

// openCache opens the configured cache store, creating its directory.
func openCache(ctx context.Context, opts *RootOptions) (*cache.Cache, error) {
	storeOpts := opts.Config.StoreOptions()
	if storeOpts.Path == "" {
		return nil, fmt.Errorf("store path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(storeOpts.Path), 0o755); err != nil {
		return nil, fmt.Errorf("create store directory: %w", err)
	}
	return cache.Open(ctx, storeOpts, cache.WithLogger(opts.Logger))
}

// errorCode maps an error to the code shown in error output.
func errorCode(err error) string {
	var ce *cache.Error
	if errors.As(err, &ce) {
		return string(ce.Code)
	}
	return "COMMAND_ERROR"
}

// fail reports err through the formatter and returns it as an ExitError.
func fail(cmd *cobra.Command, opts *RootOptions, message string, err error) error {
	f := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}
	_ = f.Error(errorCode(err), fmt.Sprintf("%s: %v", message, err), nil)
	return WrapExitError(ExitCommandError, message, err)
}
