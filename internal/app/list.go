package app

import (
	"os"

	"github.com/charmbracelet/x/term"
	"github.com/spf13/cobra"

	"github.com/kttools/ktports/internal/config"
	"github.com/kttools/ktports/internal/output"
)

func newListCmd(cfg *config.Config) *cobra.Command {
	var (
		format      string
		listen      bool
		proto       string
		metricsFile string
	)

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List open ports",
		Example: `  ktports list
  ktports list --listen --proto tcp
  ktports list --format json
  ktports list --metrics-file /var/lib/node_exporter/ktports.prom`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("format") {
				cfg.Format = config.Format(format)
			}
			if cmd.Flags().Changed("listen") {
				cfg.ListenOnly = listen
			}
			if cmd.Flags().Changed("proto") {
				cfg.Protocol = proto
			}
			if cmd.Flags().Changed("metrics-file") {
				cfg.MetricsFile = metricsFile
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			ports, err := scanPorts(cfg)
			if err != nil {
				return err
			}

			r, err := output.New(string(cfg.Format), colorEnabled(cmd))
			if err != nil {
				return err
			}
			return r.Render(filterPorts(ports, cfg.ListenOnly, cfg.Protocol), cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", string(config.FormatTable), "Output format: table, json or yaml")
	cmd.Flags().BoolVarP(&listen, "listen", "l", false, "Only show listening TCP and bound UDP sockets")
	cmd.Flags().StringVarP(&proto, "proto", "p", "", "Only show protocols starting with this value (tcp, udp, tcp6...)")
	cmd.Flags().StringVar(&metricsFile, "metrics-file", "", "Write scan metrics to this file in Prometheus text format")
	return cmd
}

// colorEnabled is true only when writing to a terminal and NO_COLOR is unset.
func colorEnabled(cmd *cobra.Command) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	f, ok := cmd.OutOrStdout().(*os.File)
	return ok && term.IsTerminal(f.Fd())
}
