package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"

	"github.com/iho/cambio/internal/infrastructure/postgres"
)

var errInconsistent = errors.New("ledger is inconsistent")

// Replaced in tests.
var (
	bcryptGenerate = bcrypt.GenerateFromPassword
	migrateUp      = postgres.RunMigrations
	migrateDown    = postgres.RunMigrationsDown
	migrateVersion = postgres.MigrationVersion
)

type options struct {
	baseURL string
	token   string
	timeout time.Duration
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:          "cambio-cli",
		Short:        "Cambio CLI tool",
		Long:         `A command line interface for the cambio exchange desk API.`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&opts.baseURL, "url", "http://localhost:8080", "Base URL of the cambio API")
	rootCmd.PersistentFlags().StringVar(&opts.token, "token", os.Getenv("CAMBIO_TOKEN"), "Bearer token (defaults to $CAMBIO_TOKEN)")
	rootCmd.PersistentFlags().DurationVar(&opts.timeout, "timeout", 10*time.Second, "Request timeout")

	ledgerCmd := &cobra.Command{
		Use:   "ledger",
		Short: "Ledger operations",
	}
	ledgerCmd.AddCommand(consistencyCmd(opts))

	rootCmd.AddCommand(
		quoteCmd(opts),
		statsCmd(opts),
		ledgerCmd,
		migrateCmd(),
		hashPasswordCmd(),
	)

	return rootCmd
}

func quoteCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "quote FROM TO",
		Short: "Quote the rate between two currencies",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := url.Values{}
			query.Set("from", strings.ToUpper(args[0]))
			query.Set("to", strings.ToUpper(args[1]))

			var quote struct {
				From     string `json:"from"`
				To       string `json:"to"`
				Rate     string `json:"rate"`
				QuotedAt string `json:"quoted_at"`
			}
			if err := opts.getJSON(cmd.Context(), "/api/v1/quotes?"+query.Encode(), &quote); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "1 %s = %s %s\n", quote.From, quote.Rate, quote.To)
			return nil
		},
	}
}

func statsCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show dashboard statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var stats json.RawMessage
			if err := opts.getJSON(cmd.Context(), "/api/v1/dashboard/stats", &stats); err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), stats)
		},
	}
}

func consistencyCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "consistency",
		Short: "Check ledger consistency",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			status, body, err := opts.get(cmd.Context(), "/api/v1/ledger/consistency")
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			switch status {
			case http.StatusOK:
				fmt.Fprintln(out, "Consistency check PASSED")
			case http.StatusConflict:
				fmt.Fprintln(out, "Consistency check FAILED")
			default:
				return fmt.Errorf("unexpected status %d: %s", status, truncate(string(body), 200))
			}

			var report struct {
				Consistent    bool `json:"consistent"`
				TotalLimits   int  `json:"total_limits"`
				Discrepancies []struct {
					CustomerID string `json:"customer_id"`
					Difference string `json:"difference"`
				} `json:"discrepancies"`
			}
			if err := json.Unmarshal(body, &report); err != nil {
				return fmt.Errorf("failed to parse response: %w", err)
			}

			fmt.Fprintf(out, "Limits checked: %d\n", report.TotalLimits)
			for _, d := range report.Discrepancies {
				fmt.Fprintf(out, "  %s off by %s\n", d.CustomerID, d.Difference)
			}

			if !report.Consistent {
				return errInconsistent
			}
			return nil
		},
	}
}

func migrateCmd() *cobra.Command {
	var (
		databaseURL, path string
		steps             int
	)

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply or roll back database migrations",
	}
	cmd.PersistentFlags().StringVar(&databaseURL, "database-url", os.Getenv("DATABASE_URL"), "PostgreSQL URL (defaults to $DATABASE_URL)")
	cmd.PersistentFlags().StringVar(&path, "path", "", "Migrations directory (defaults to the embedded set)")

	requireURL := func(*cobra.Command, []string) error {
		if databaseURL == "" {
			return errors.New("--database-url or DATABASE_URL is required")
		}
		return nil
	}

	downCmd := &cobra.Command{
		Use:     "down",
		Short:   "Roll back applied migrations",
		Args:    cobra.NoArgs,
		PreRunE: requireURL,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := migrateDown(databaseURL, path, steps); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "rolled back %d migration(s)\n", steps)
			return nil
		},
	}
	downCmd.Flags().IntVar(&steps, "steps", 1, "Number of migrations to roll back")

	cmd.AddCommand(
		&cobra.Command{
			Use:     "up",
			Short:   "Apply all pending migrations",
			Args:    cobra.NoArgs,
			PreRunE: requireURL,
			RunE: func(cmd *cobra.Command, args []string) error {
				if err := migrateUp(databaseURL, path); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "migrations applied")
				return nil
			},
		},
		downCmd,
		&cobra.Command{
			Use:     "version",
			Short:   "Print the applied schema version",
			Args:    cobra.NoArgs,
			PreRunE: requireURL,
			RunE: func(cmd *cobra.Command, args []string) error {
				version, dirty, err := migrateVersion(databaseURL, path)
				if err != nil {
					return err
				}
				if dirty {
					fmt.Fprintf(cmd.OutOrStdout(), "version %d (dirty)\n", version)
					return nil
				}
				fmt.Fprintf(cmd.OutOrStdout(), "version %d\n", version)
				return nil
			},
		},
	)

	return cmd
}

func hashPasswordCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "hash-password PASSWORD",
		Short: "Print a bcrypt hash for seeding users",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			hash, err := bcryptGenerate([]byte(args[0]), bcrypt.DefaultCost)
			if err != nil {
				return fmt.Errorf("failed to hash password: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(hash))
			return nil
		},
	}
}

func (o *options) get(ctx context.Context, path string) (int, []byte, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, strings.TrimRight(o.baseURL, "/")+path, nil)
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("Accept", "application/json")
	if o.token != "" {
		req.Header.Set("Authorization", "Bearer "+o.token)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("failed to read response: %w", err)
	}

	return resp.StatusCode, body, nil
}

func (o *options) getJSON(ctx context.Context, path string, out any) error {
	status, body, err := o.get(ctx, path)
	if err != nil {
		return err
	}

	if status != http.StatusOK {
		var apiErr struct {
			Error   string `json:"error"`
			Message string `json:"message"`
		}
		if json.Unmarshal(body, &apiErr) == nil && apiErr.Error != "" {
			if apiErr.Message != "" {
				return fmt.Errorf("%s (status %d): %s", apiErr.Error, status, apiErr.Message)
			}
			return fmt.Errorf("%s (status %d)", apiErr.Error, status)
		}
		return fmt.Errorf("unexpected status %d: %s", status, truncate(string(body), 200))
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	if n <= 3 {
		return s[:n]
	}
	return s[:n-3] + "..."
}
