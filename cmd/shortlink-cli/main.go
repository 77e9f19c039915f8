package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/SanketN15/url-shortner/internal/client"
	"github.com/spf13/cobra"
)

func main() {
	var (
		server  string
		timeout time.Duration
	)

	root := &cobra.Command{
		Use:           "shortlink-cli",
		Short:         "Create and inspect short links",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&server, "server", "s", envOr("SHORTLINK_SERVER", "http://localhost:9000"), "Shortener base URL")
	root.PersistentFlags().DurationVar(&timeout, "timeout", 10*time.Second, "Request timeout")

	root.AddCommand(
		&cobra.Command{
			Use:   "shorten URL",
			Short: "Create a short link",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				link, err := client.New(server, timeout).Shorten(cmd.Context(), args[0])
				if err != nil {
					return err
				}

				fmt.Fprintln(cmd.OutOrStdout(), link.ShortURL)

				return nil
			},
		},
		&cobra.Command{
			Use:   "lookup CODE",
			Short: "Show the URL behind a short code",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				link, err := client.New(server, timeout).Lookup(cmd.Context(), args[0])
				if errors.Is(err, client.ErrNotFound) {
					return fmt.Errorf("no short link %q", args[0])
				}

				if err != nil {
					return err
				}

				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\n", link.Code, link.OriginalURL, link.CreatedAt.Format(time.RFC3339))

				return nil
			},
		},
		&cobra.Command{
			Use:   "health",
			Short: "Show server health",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				h, err := client.New(server, timeout).Health(cmd.Context())
				if err != nil {
					return err
				}

				fmt.Fprintln(cmd.OutOrStdout(), h.Status)

				for name, state := range h.Dependencies {
					fmt.Fprintf(cmd.OutOrStdout(), "  %s: %s\n", name, state)
				}

				return nil
			},
		},
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}

	return fallback
}
