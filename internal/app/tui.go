package app

import (
	"github.com/spf13/cobra"

	"github.com/kttools/ktports/internal/config"
	"github.com/kttools/ktports/internal/tui"
	"github.com/kttools/ktports/pkg/model"
)

func newTUICmd(cfg *config.Config) *cobra.Command {
	var signal string

	cmd := &cobra.Command{
		Use:   "tui",
		Short: "Browse open ports interactively",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("signal") {
				cfg.Signal = signal
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			return tui.Start(tui.Config{
				Version: versionString(),
				Signal:  cfg.KillSignal(),
				Listen:  cfg.ListenOnly,
				Scan: func() ([]model.PortInfo, error) {
					return scanPorts(cfg)
				},
				Table: processTable,
			})
		},
	}

	cmd.Flags().StringVarP(&signal, "signal", "s", "kill", "Signal used by the kill key: kill or term")
	return cmd
}
