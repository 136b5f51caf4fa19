package app

import (
	"bufio"
	"fmt"
	"strconv"
	"strings"

	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/kttools/ktports/internal/config"
	"github.com/kttools/ktports/internal/metrics"
	"github.com/kttools/ktports/internal/proc"
	"github.com/kttools/ktports/pkg/model"
)

func newKillCmd(cfg *config.Config) *cobra.Command {
	var (
		signal string
		yes    bool
	)

	cmd := &cobra.Command{
		Use:   "kill <port>",
		Short: "Kill the process that owns a port",
		Long: `Scan the open ports, then terminate the process owning the given port.
The owner is looked up again in the live process table right before the
signal is sent, so a process that already exited is reported, not signaled.`,
		Example: `  ktports kill 8080
  ktports kill 8080 --signal term --yes`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			port, err := parsePort(args[0])
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("signal") {
				cfg.Signal = signal
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			sig := cfg.KillSignal()

			ports, err := scanPorts(cfg)
			if err != nil {
				return err
			}

			// pid 0 cannot be signaled; KillProcess reports that without a prompt
			target, ok := lo.Find(ports, func(p model.PortInfo) bool { return p.Port == port })
			if ok && target.PID != 0 && !yes {
				fmt.Fprintf(cmd.OutOrStdout(), "Kill %s (pid %d) on port %d with %s? [y/N] ",
					target.ProcessName, target.PID, port, sig)
				if !confirmed(cmd) {
					fmt.Fprintln(cmd.OutOrStdout(), "Aborted")
					return nil
				}
			}

			msg, err := proc.KillProcess(port, ports, processTable, sig)
			metrics.ObserveKill(err)
			flushMetrics(cfg)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), msg)
			return nil
		},
	}

	cmd.Flags().StringVarP(&signal, "signal", "s", "kill", "Signal to send: kill or term")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip confirmation prompt")
	return cmd
}

func parsePort(arg string) (uint16, error) {
	n, err := strconv.ParseUint(arg, 10, 16)
	if err != nil || n == 0 {
		return 0, fmt.Errorf("invalid port %q: must be 1-65535", arg)
	}
	return uint16(n), nil
}

func confirmed(cmd *cobra.Command) bool {
	answer, _ := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	answer = strings.TrimSpace(strings.ToLower(answer))
	return answer == "y" || answer == "yes"
}
