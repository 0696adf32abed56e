package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/stationcache/internal/slice"
	"github.com/roach88/stationcache/internal/value"
)

// PutResult reports a completed put.
type PutResult struct {
	Slice string          `json:"slice"`
	Value json.RawMessage `json:"value"`
}

// NewPutCommand creates the put command.
func NewPutCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "put <slice> <json>",
		Short: "Replace one cached slice",
		Long: `Replace the cached record for a slice with a JSON value.

The value must have the slice's shape: a list for dashboard and stations,
an object for sensors and settings. The old record is discarded, not merged.

Examples:
  stationcache put settings '{"units":"metric"}'
  stationcache put stations '[]'`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPut(cmd, rootOpts, args[0], args[1])
		},
	}
}

func runPut(cmd *cobra.Command, opts *RootOptions, sliceArg, jsonArg string) error {
	name, err := slice.Default.Parse(sliceArg)
	if err != nil {
		return fail(cmd, opts, "invalid slice", err)
	}
	v, err := value.Unmarshal([]byte(jsonArg))
	if err != nil {
		return fail(cmd, opts, "invalid value", err)
	}
	if !slice.Default.Conforms(name, v) {
		spec, _ := slice.Default.Lookup(name)
		return fail(cmd, opts, "invalid value", fmt.Errorf("%s holds a %s", name, spec.Shape))
	}

	ctx := cmd.Context()
	c, err := openCache(ctx, opts)
	if err != nil {
		return fail(cmd, opts, "failed to open cache", err)
	}
	defer c.Close()

	if err := c.Put(ctx, name, v); err != nil {
		return fail(cmd, opts, "failed to write "+string(name), err)
	}

	data := value.MustMarshal(v)
	opts.Logger.Info("slice replaced", "slice", string(name), "bytes", len(data))

	f := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}
	return f.Success(PutResult{Slice: string(name), Value: data}, fmt.Sprintf("%s replaced\n", name))
}
