// Package probe implements the sequencer-probe command line: a thin cobra front
// end over the gateway client for inspecting a sequencer by hand.
package probe

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

type rootOptions struct {
	configPath string
	envFiles   []string
	debug      bool
}

// NewRootCommand creates the sequencer-probe command tree.
func NewRootCommand(version string) *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "sequencer-probe",
		Short: "Query a Starknet sequencer gateway",
		Long: `sequencer-probe issues feeder gateway queries through the resilient sequencer client.

Configuration is read from defaults, an optional YAML file and SEQUENCER_ environment
variables (for example SEQUENCER_GATEWAY__API_KEY). A .env file is loaded when present.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "YAML config file")
	cmd.PersistentFlags().StringSliceVar(&opts.envFiles, "env-file", nil, "dotenv files to load (default .env)")
	cmd.PersistentFlags().BoolVar(&opts.debug, "debug", false, "enable debug logging")

	cmd.AddCommand(
		newBlockCommand(opts),
		newHeaderCommand(opts),
		newClassCommand(opts),
		newContractsCommand(opts),
		newBlocksCommand(opts),
	)

	return cmd
}

// withRuntime builds the runtime for one invocation and tears it down afterwards.
func withRuntime(cmd *cobra.Command, opts *rootOptions, fn func(ctx context.Context, rt *runtime) error) (err error) {
	rt, err := newRuntime(opts, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := rt.close(); closeErr != nil {
			err = errors.Join(err, closeErr)
		}
	}()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return fn(ctx, rt)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}
