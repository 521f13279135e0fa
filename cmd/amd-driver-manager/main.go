package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/breeze-rmm/amd-driver-manager/internal/uninstall"
)

var (
	version   = "0.1.0"
	cfgFile   string
	outputFmt string
	assumeYes bool
	useDialog bool
)

var rootCmd = &cobra.Command{
	Use:   "amd-driver-manager [/uninstallrestart | /uninstallnorestart | /uninstallshutdown]",
	Short: "Show the installed AMD GPU driver version and optionally uninstall it",
	Long: `AMD Driver Manager - locates the installed AMD GPU driver version through
device enumeration, the amd-smi tool or the registry, and removes staged
driver packages when started with an uninstall directive.`,
	Args:          cobra.ArbitraryArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runStartup(cmd.Context(), rootDirective())
	},
}

var resolveCmd = &cobra.Command{
	Use:   "resolve",
	Short: "Report the installed AMD driver version",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runResolve(cmd.Context())
	},
}

var uninstallCmd = &cobra.Command{
	Use:       "uninstall restart|norestart|shutdown",
	Short:     "Remove staged driver packages, then optionally restart or shut down",
	Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	ValidArgs: []string{"restart", "norestart", "shutdown"},
	RunE: func(cmd *cobra.Command, args []string) error {
		d, ok := uninstall.DirectiveByName(args[0])
		if !ok {
			return fmt.Errorf("unknown uninstall mode %q", args[0])
		}
		return runUninstall(cmd.Context(), d)
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show host, elevation, safe mode and audit status",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runStatus()
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("AMD Driver Manager v%s\n", version)
	},
}

func init() {
	// Started from Explorer the root command must run, not print a
	// "command line tool" notice.
	cobra.MousetrapHelpText = ""

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is the platform config dir, then ./amd-driver-manager.yaml)")
	rootCmd.PersistentFlags().StringVarP(&outputFmt, "output", "o", "", "output format: text, json or yaml (overrides config)")
	rootCmd.PersistentFlags().BoolVarP(&assumeYes, "yes", "y", false, "answer yes to the uninstall confirmation")
	rootCmd.PersistentFlags().BoolVar(&useDialog, "dialog", false, "use native message boxes (Windows only)")

	rootCmd.AddCommand(resolveCmd)
	rootCmd.AddCommand(uninstallCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(versionCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	os.Exit(exitCode(err))
}

// rootDirective reads the directive from the process's own argv[1], before
// cobra strips flags: "--yes /uninstallrestart" carries no directive.
func rootDirective() uninstall.Directive {
	return uninstall.ParseDirective(os.Args)
}

// exitError carries a process exit code for failures already reported to the
// user.
type exitError struct {
	code int
}

func (e *exitError) Error() string {
	return fmt.Sprintf("exit status %d", e.code)
}

func exitCode(err error) int {
	if err == nil {
		return 0
	}
	var ee *exitError
	if errors.As(err, &ee) {
		return ee.code
	}
	fmt.Fprintln(os.Stderr, "Error:", err)
	return 1
}
