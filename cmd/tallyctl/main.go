package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/tally-labs/tally/pkg/client"
)

// DefaultServerURL points at a local tallyd with default settings.
const DefaultServerURL = "http://127.0.0.1:8080"

var exampleUsage = strings.TrimSpace(`
  tallyctl get
  tallyctl increment
  tallyctl dec --server-url http://counter.internal:9090
  tallyctl watch --interval 2s
`)

func main() {
	godotenv.Load()

	serverURL := DefaultServerURL
	if v := os.Getenv("TALLY_SERVER_URL"); v != "" {
		serverURL = v
	}
	timeout := 15 * time.Second
	interval := time.Second

	newSession := func() *client.Session {
		c := client.New(serverURL, &http.Client{Timeout: timeout})
		return client.NewSession(c)
	}

	// render prints a resolved view and exits non-zero on Failure.
	render := func(view client.View) error {
		fmt.Println(view.Text)
		if view.State == client.StateFailure {
			return fmt.Errorf("request failed")
		}
		return nil
	}

	root := &cobra.Command{
		Use:           "tallyctl",
		Short:         "Drive a tallyd counter from the terminal",
		Example:       exampleUsage,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&serverURL, "server-url", serverURL, "base URL of the counter service")
	root.PersistentFlags().DurationVar(&timeout, "timeout", timeout, "HTTP timeout")

	get := &cobra.Command{
		Use:   "get",
		Short: "Print the current counter value",
		RunE: func(cmd *cobra.Command, args []string) error {
			return render(newSession().Refresh(cmd.Context()))
		},
	}

	increment := &cobra.Command{
		Use:     "increment",
		Aliases: []string{"inc"},
		Short:   "Add one to the counter and print the new value",
		RunE: func(cmd *cobra.Command, args []string) error {
			return render(newSession().Increment(cmd.Context()))
		},
	}

	decrement := &cobra.Command{
		Use:     "decrement",
		Aliases: []string{"dec"},
		Short:   "Subtract one from the counter and print the new value",
		RunE: func(cmd *cobra.Command, args []string) error {
			return render(newSession().Decrement(cmd.Context()))
		},
	}

	watch := &cobra.Command{
		Use:   "watch",
		Short: "Poll the counter and print each view-state change",
		RunE: func(cmd *cobra.Command, args []string) error {
			s := newSession()

			ticker := time.NewTicker(interval)
			defer ticker.Stop()

			last := s.Current()
			fmt.Printf("%s\n", last.State)

			for {
				view := s.Refresh(cmd.Context())
				if view != last {
					fmt.Printf("%s %s\n", view.State, view.Text)
					last = view
				}
				select {
				case <-cmd.Context().Done():
					return nil
				case <-ticker.C:
				}
			}
		},
	}
	watch.Flags().DurationVar(&interval, "interval", interval, "poll interval")

	root.AddCommand(get, increment, decrement, watch)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
