package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"gitlab.com/gomidi/midi/v2/drivers/rtmididrv"
)

var portsCmd = &cobra.Command{
	Use:   "ports",
	Short: "List available MIDI ports",
	Long:  "Prints every MIDI input and output port visible to the process, for picking a port_name.",
	RunE:  listPorts,
}

func init() {
	rootCmd.AddCommand(portsCmd)
}

func listPorts(cmd *cobra.Command, args []string) error {
	drv, err := rtmididrv.New()
	if err != nil {
		return fmt.Errorf("midi driver: %w", err)
	}
	defer drv.Close()

	ins, err := drv.Ins()
	if err != nil {
		return fmt.Errorf("list inputs: %w", err)
	}
	outs, err := drv.Outs()
	if err != nil {
		return fmt.Errorf("list outputs: %w", err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), "Inputs:")
	if len(ins) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "  (none)")
	}
	for i, in := range ins {
		fmt.Fprintf(cmd.OutOrStdout(), "  %d: %s\n", i, in.String())
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Outputs:")
	if len(outs) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "  (none)")
	}
	for i, out := range outs {
		fmt.Fprintf(cmd.OutOrStdout(), "  %d: %s\n", i, out.String())
	}
	return nil
}
