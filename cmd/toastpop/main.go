package main

import (
	stderrors "errors"
	"fmt"
	"os"

	"github.com/courtbook/toastpop/internal/errors"
	"github.com/spf13/cobra"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		var coded *errors.Error
		if stderrors.As(err, &coded) {
			fmt.Fprint(os.Stderr, coded.Format())
		} else {
			fmt.Fprintf(os.Stderr, "\033[31mError:\033[0m %s\n", err)
		}
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "toastpop",
		Short: "Live toast notifications for web pages",
		Long: `toastpop serves a page with a toast popup and pushes toasts to every
connected browser over a WebSocket.

Toasts are triggered over HTTP (POST /api/toast) or with "toastpop send".
Each toast sets a title and message, shows the success or error icon,
and hides itself after three seconds.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		serveCmd(),
		sendCmd(),
		watchCmd(),
		versionCmd(),
	)
	return rootCmd
}

// success prints a success message.
func success(format string, args ...any) {
	fmt.Printf("\033[32m✓\033[0m %s\n", fmt.Sprintf(format, args...))
}

// info prints an info message.
func info(format string, args ...any) {
	fmt.Printf("  %s\n", fmt.Sprintf(format, args...))
}
