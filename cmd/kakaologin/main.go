package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/aussiebroadwan/kakaologin/internal/login/app"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "kakaologin",
		Short: "Login with Kakao",
		Long: `kakaologin runs a server-side "login with Kakao" service: it exchanges
authorization codes, keeps sessions server-side and records every user who
has logged in. Configuration is read from the environment.`,
		SilenceUsage: true,
	}

	root.AddCommand(newServeCmd(), newCheckDBCmd(), newVersionCmd())
	return root
}

func newServeCmd() *cobra.Command {
	var (
		port int
		mode string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := app.LoadConfig()
			if err != nil {
				return err
			}
			applyServeFlags(cmd.Flags(), &cfg, port, mode)

			application, err := app.New(cfg)
			if err != nil {
				log.Printf("failed to initialize application: %v", err)
				return err
			}
			if err := application.Run(); err != nil {
				log.Printf("application error: %v", err)
				return err
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 8080, "HTTP port (overrides PORT)")
	cmd.Flags().StringVarP(&mode, "mode", "m", "api", "server mode, api or web (overrides SERVER_MODE)")
	return cmd
}

// applyServeFlags overrides the environment with flags the user actually set.
func applyServeFlags(fs *pflag.FlagSet, cfg *app.Config, port int, mode string) {
	if fs.Changed("port") {
		cfg.Port = port
	}
	if fs.Changed("mode") {
		cfg.Mode = mode
	}
}

func newCheckDBCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check-db",
		Short: "Check connectivity to the configured user store",
		Long: `check-db connects to the user store named by DB_DRIVER, applies migrations
and counts users. A JSON report is printed; the exit code is non-zero when
any step fails.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := app.LoadConfig()
			if err != nil {
				return err
			}
			return app.CheckDatabase(context.Background(), cfg, cmd.OutOrStdout())
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the build version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), app.BuildVersion)
		},
	}
}
