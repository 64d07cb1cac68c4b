package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/pbaille/sagequill/internal/api"
	"github.com/pbaille/sagequill/internal/auth"
)

func serveCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the REST API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.Close()

			if addr != "" {
				a.cfg.Server.Addr = addr
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if a.cfg.Prompts.Watch {
				if err := a.prompts.Watch(ctx); err != nil {
					return err
				}
			}

			if n, err := a.store.DeleteExpiredSessions(ctx); err == nil && n > 0 {
				a.logger.Info("purged expired sessions", "count", n)
			}

			server := api.New(a.auth, a.notes, a.enricher, api.Options{
				Addr:       a.cfg.Server.Addr,
				CORSOrigin: a.cfg.Server.CORSOrigin,
				Compress:   a.cfg.Server.Compress,
				Logger:     a.logger,
			})
			return server.Run(ctx)
		},
	}

	cmd.Flags().StringVarP(&addr, "addr", "a", "", "server address (overrides config)")
	return cmd
}

func signupCmd() *cobra.Command {
	var in auth.SignUpInput

	cmd := &cobra.Command{
		Use:   "signup [email]",
		Short: "Create a local account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.Close()

			in.Email = args[0]
			if in.Password == "" {
				in.Password = os.Getenv("SAGEQUILL_PASSWORD")
			}

			u, err := a.auth.SignUp(cmd.Context(), in)
			if err != nil {
				return err
			}

			fmt.Printf("Created account: %s\n", u.Email)
			return nil
		},
	}

	cmd.Flags().StringVarP(&in.Password, "password", "p", "", "password (default: $SAGEQUILL_PASSWORD)")
	cmd.Flags().StringVar(&in.FirstName, "first-name", "", "first name")
	cmd.Flags().StringVar(&in.LastName, "last-name", "", "last name")
	cmd.Flags().IntVar(&in.Age, "age", 0, "age")
	return cmd
}
