package probe

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/gaborage/go-sequencer/gateway"
)

const (
	defaultConcurrency = 4
	maxBlockRange      = 10_000
)

func newBlockCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "block <id>",
		Short: "Fetch a block (latest, pending, number or 0x hash)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := gateway.ParseBlockID(args[0])
			if err != nil {
				return err
			}
			return withRuntime(cmd, opts, func(ctx context.Context, rt *runtime) error {
				block, err := rt.client.Block(ctx, id)
				if err != nil {
					return fmt.Errorf("get_block %s: %w", id, err)
				}
				return writeJSON(cmd.OutOrStdout(), block)
			})
		},
	}
}

func newHeaderCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "header <id>",
		Short: "Fetch only the hash and number of a block",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := gateway.ParseBlockID(args[0])
			if err != nil {
				return err
			}
			return withRuntime(cmd, opts, func(ctx context.Context, rt *runtime) error {
				header, err := rt.client.BlockHeader(ctx, id)
				if err != nil {
					return fmt.Errorf("get_block %s: %w", id, err)
				}
				return writeJSON(cmd.OutOrStdout(), header)
			})
		},
	}
}

func newClassCommand(opts *rootOptions) *cobra.Command {
	var compiled bool

	cmd := &cobra.Command{
		Use:   "class <hash>",
		Short: "Fetch a class definition at the pending block",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			hash, err := gateway.ParseClassHash(args[0])
			if err != nil {
				return fmt.Errorf("invalid class hash: %w", err)
			}
			return withRuntime(cmd, opts, func(ctx context.Context, rt *runtime) error {
				fetch := rt.client.ClassByHash
				if compiled {
					fetch = rt.client.CompiledClass
				}
				raw, err := fetch(ctx, hash)
				if err != nil {
					return fmt.Errorf("class %s: %w", hash, err)
				}
				out := cmd.OutOrStdout()
				if _, err := out.Write(raw); err != nil {
					return err
				}
				_, err = fmt.Fprintln(out)
				return err
			})
		},
	}

	cmd.Flags().BoolVar(&compiled, "compiled", false, "fetch the compiled (CASM) class instead")
	return cmd
}

func newContractsCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "contracts",
		Short: "Show the core L1 contract addresses",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withRuntime(cmd, opts, func(ctx context.Context, rt *runtime) error {
				addrs, err := rt.client.ContractAddresses(ctx)
				if err != nil {
					return fmt.Errorf("get_contract_addresses: %w", err)
				}
				return writeJSON(cmd.OutOrStdout(), addrs)
			})
		},
	}
}

func newBlocksCommand(opts *rootOptions) *cobra.Command {
	var (
		from, to    uint64
		concurrency int
	)

	cmd := &cobra.Command{
		Use:   "blocks",
		Short: "Fetch the headers of a block range concurrently",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if to < from {
				return fmt.Errorf("--to (%d) is before --from (%d)", to, from)
			}
			if to-from >= maxBlockRange {
				return fmt.Errorf("range of %d blocks exceeds the limit of %d", to-from+1, maxBlockRange)
			}
			if concurrency < 1 {
				return errors.New("--concurrency must be at least 1")
			}

			return withRuntime(cmd, opts, func(ctx context.Context, rt *runtime) error {
				headers, err := fetchHeaders(ctx, rt.client, from, to, concurrency)
				if err != nil {
					return err
				}
				for _, h := range headers {
					if err := writeJSON(cmd.OutOrStdout(), h); err != nil {
						return err
					}
				}
				return nil
			})
		},
	}

	cmd.Flags().Uint64Var(&from, "from", 0, "first block number")
	cmd.Flags().Uint64Var(&to, "to", 0, "last block number (inclusive)")
	cmd.Flags().IntVar(&concurrency, "concurrency", defaultConcurrency, "parallel requests")
	_ = cmd.MarkFlagRequired("to")
	return cmd
}

// fetchHeaders returns the headers of blocks from..to in order. The first failure
// cancels the requests still in flight.
func fetchHeaders(ctx context.Context, c *gateway.Client, from, to uint64, concurrency int) ([]gateway.BlockHeader, error) {
	headers := make([]gateway.BlockHeader, to-from+1)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for i := range headers {
		n := from + uint64(i)
		g.Go(func() error {
			h, err := c.BlockHeader(ctx, gateway.BlockNumber(n))
			if err != nil {
				return fmt.Errorf("block %d: %w", n, err)
			}
			headers[i] = h
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return headers, nil
}
