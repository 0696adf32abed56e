package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/stationcache/internal/cache"
	"github.com/roach88/stationcache/internal/value"
)

// InspectEntry is one cached slice as reported by inspect.
type InspectEntry struct {
	Slice  string          `json:"slice"`
	Status string          `json:"status"`
	Value  json.RawMessage `json:"value"`
	Error  string          `json:"error,omitempty"`
}

// NewInspectCommand creates the inspect command.
func NewInspectCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "inspect",
		Short: "Print every cached slice",
		Long: `Open the cache store and print each slice record.

Missing or corrupt records are reported with their status and shown as the
slice default.

Examples:
  stationcache inspect
  stationcache inspect --db ./weather-station.db --format json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInspect(cmd, rootOpts)
		},
	}
}

func runInspect(cmd *cobra.Command, opts *RootOptions) error {
	ctx := cmd.Context()

	c, err := openCache(ctx, opts)
	if err != nil {
		return fail(cmd, opts, "failed to open cache", err)
	}
	defer c.Close()

	entries, err := c.Read(ctx)
	if err != nil {
		return fail(cmd, opts, "failed to read cache", err)
	}

	out := make([]InspectEntry, 0, len(entries))
	var text strings.Builder
	for _, e := range entries {
		data, err := value.Marshal(e.Value)
		if err != nil {
			return fail(cmd, opts, "failed to encode "+string(e.Slice), err)
		}
		entry := InspectEntry{Slice: string(e.Slice), Status: e.Status.String(), Value: data}
		if e.Err != nil {
			entry.Error = e.Err.Error()
		}
		out = append(out, entry)

		fmt.Fprintf(&text, "%-10s %-8s %s\n", entry.Slice, entry.Status, data)
		if e.Status == cache.StatusCorrupt && entry.Error != "" {
			fmt.Fprintf(&text, "           %s\n", entry.Error)
		}
	}

	opts.Logger.Debug("cache inspected", "path", opts.Config.Store.Path, "slices", len(out))

	f := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}
	return f.Success(out, text.String())
}
