package app

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kttools/ktports/internal/config"
	"github.com/kttools/ktports/internal/proc"
	"github.com/kttools/ktports/pkg/logger"
)

var (
	version   = "dev"
	commit    = ""
	buildDate = ""
)

// Seams for tests; production uses the platform scanner and the live
// process table.
var (
	newScanner                     = func() (proc.PortScanner, error) { return proc.NewScanner() }
	processTable proc.ProcessTable = proc.SystemProcessTable{}
)

func SetVersionBuildCommitString(v, c, d string) {
	if v != "" {
		version = v
	}
	commit = c
	buildDate = d
}

func versionString() string {
	s := version
	if commit != "" {
		s += " (" + commit
		if buildDate != "" {
			s += ", " + buildDate
		}
		s += ")"
	}
	return s
}

func newRootCmd() *cobra.Command {
	cfg := config.DefaultConfig()

	root := &cobra.Command{
		Use:   "ktports",
		Short: "List open ports and kill the processes that own them",
		Long: `ktports lists the TCP and UDP ports open on this machine together with
the owning process, its user and the socket state, and can terminate
the owner of a port.

Data comes from /proc/net and ss on Linux, lsof on macOS and netstat on
Windows. Settings may also be given as KTPORTS_* environment variables;
flags win over the environment.`,
		Version:       versionString(),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			env, err := config.LoadFromEnv()
			if err != nil {
				return err
			}
			debugFlag := cfg.Debug
			*cfg = *env
			if cmd.Flags().Changed("debug") {
				cfg.Debug = debugFlag
			}
			logger.Init(cfg.Debug)
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			logger.Sync()
		},
	}

	root.PersistentFlags().BoolVarP(&cfg.Debug, "debug", "d", false, "Enable debug logging")

	root.AddCommand(newListCmd(cfg))
	root.AddCommand(newKillCmd(cfg))
	root.AddCommand(newTUICmd(cfg))
	return root
}

func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
