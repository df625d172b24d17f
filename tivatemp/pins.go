package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/itohio/tivatemp/pkg/board"
)

func newPinsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "pins",
		Short: "Prints and validates the board pin assignment",
		RunE: func(cmd *cobra.Command, args []string) error {
			b := board.Default()
			out := cmd.OutOrStdout()

			fmt.Fprintf(out, "Board %s, crystal %d Hz, UART %d baud from %d Hz\n",
				b.Name, b.CrystalHz, b.BaudRate, b.UARTClockHz)
			for _, p := range b.Pins {
				fmt.Fprintf(out, "  %s\n", p)
			}
			for seq, ch := range b.Sequences {
				fmt.Fprintf(out, "  sequence %d -> AIN%d\n", seq, ch)
			}

			return b.Validate()
		},
	}
}
