package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"
)

type options struct {
	url     string
	unit    uint8
	timeout time.Duration
}

func newRootCommand() *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:           "lensctl",
		Short:         "Lens gateway Modbus client",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	rootCmd.PersistentFlags().StringVar(&opts.url, "url", "tcp://localhost:5021", "Gateway Modbus URL")
	rootCmd.PersistentFlags().Uint8Var(&opts.unit, "unit", 1, "Modbus unit ID")
	rootCmd.PersistentFlags().DurationVar(&opts.timeout, "timeout", 5*time.Second, "Request timeout")

	rootCmd.AddCommand(newStatusCommand(opts))
	rootCmd.AddCommand(newReadCommand(opts))
	rootCmd.AddCommand(newWriteCommand(opts))
	return rootCmd
}

func newStatusCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Read every named register",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := dial(opts)
			if err != nil {
				return err
			}
			defer c.Close()

			rows := readStatus(c)
			renderRows(cmd.OutOrStdout(), rows, isTerminal(cmd.OutOrStdout()))
			return nil
		},
	}
}

func newReadCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "read <address> [count]",
		Short: "Read holding registers",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			addr, err := parseAddress(args[0])
			if err != nil {
				return err
			}
			count := uint16(1)
			if len(args) == 2 {
				n, err := strconv.ParseUint(args[1], 10, 16)
				if err != nil || n == 0 {
					return fmt.Errorf("invalid count %q", args[1])
				}
				count = uint16(n)
			}

			c, err := dial(opts)
			if err != nil {
				return err
			}
			defer c.Close()

			rows, err := readBlock(c, addr, count)
			if err != nil {
				return err
			}
			renderRows(cmd.OutOrStdout(), rows, isTerminal(cmd.OutOrStdout()))
			return nil
		},
	}
}

func newWriteCommand(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "write <address> <value>",
		Short: "Write one holding register",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			addr, err := parseAddress(args[0])
			if err != nil {
				return err
			}
			value, err := parseValue(args[1])
			if err != nil {
				return err
			}

			c, err := dial(opts)
			if err != nil {
				return err
			}
			defer c.Close()

			if err := c.WriteRegister(addr, value); err != nil {
				return fmt.Errorf("write register %d: %w", addr, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s <-- %d\n", registerName(addr), int16(value))
			return nil
		},
	}
	// Negative values are arguments, not flags.
	cmd.Flags().SetInterspersed(false)
	return cmd
}

func parseAddress(s string) (uint16, error) {
	n, err := strconv.ParseUint(s, 10, 16)
	if err != nil {
		return 0, fmt.Errorf("invalid address %q", s)
	}
	return uint16(n), nil
}

// parseValue accepts signed and unsigned 16-bit values.
func parseValue(s string) (uint16, error) {
	n, err := strconv.ParseInt(s, 10, 32)
	if err != nil || n < -32768 || n > 65535 {
		return 0, fmt.Errorf("invalid value %q: must fit in 16 bits", s)
	}
	return uint16(n), nil
}
