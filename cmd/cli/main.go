package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/spf13/cobra"

	"github.com/iho/propledger/internal/adapter/http/dto"
	"github.com/iho/propledger/internal/domain"
	"github.com/iho/propledger/internal/infrastructure/auth"
	"github.com/iho/propledger/internal/infrastructure/config"
	"github.com/iho/propledger/internal/infrastructure/postgres"
)

type rootOptions struct {
	baseURL string
	token   string
	timeout time.Duration
	asJSON  bool
}

func (o *rootOptions) client() *apiClient {
	return newAPIClient(o.baseURL, o.token, o.timeout)
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:           "propledger",
		Short:         "Propledger CLI tool",
		Long:          `A command line interface for the propledger property ledger API.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&opts.baseURL, "url", envOr("PROPLEDGER_URL", "http://localhost:8080"), "Base URL of the propledger API")
	rootCmd.PersistentFlags().StringVar(&opts.token, "token", os.Getenv("PROPLEDGER_TOKEN"), "Bearer token")
	rootCmd.PersistentFlags().DurationVar(&opts.timeout, "timeout", 10*time.Second, "Request timeout")
	rootCmd.PersistentFlags().BoolVar(&opts.asJSON, "json", false, "Print raw JSON")

	rootCmd.AddCommand(
		reportCmd(opts),
		exportCmd(opts),
		reconcileCmd(opts),
		payCmd(opts),
		messagesCmd(opts),
		migrateCmd(),
		tokenCmd(),
	)

	return rootCmd
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func addQueryFlags(cmd *cobra.Command, q *dto.ReportQuery) {
	f := cmd.Flags()
	f.StringVar(&q.Entity, "entity", "", "Contact or property ID; selects a single-entity ledger")
	f.StringVar(&q.Type, "type", "", "Record type filter")
	f.StringVar(&q.Date, "date", "", "Date preset (all, this-month, last-month, custom)")
	f.StringVar(&q.Start, "start", "", "Custom range start (YYYY-MM-DD)")
	f.StringVar(&q.End, "end", "", "Custom range end (YYYY-MM-DD)")
	f.StringVarP(&q.Search, "search", "q", "", "Search text")
	f.StringVar(&q.Sort, "sort", "", "Sort column")
	f.StringVar(&q.Dir, "dir", "", "Sort direction (asc, desc)")
}

func reportCmd(opts *rootOptions) *cobra.Command {
	var q dto.ReportQuery

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Show a page of the ledger",
		RunE: func(cmd *cobra.Command, args []string) error {
			report, err := opts.client().LedgerReport(cmd.Context(), q)
			if err != nil {
				return err
			}
			if opts.asJSON {
				return printJSON(cmd.OutOrStdout(), report)
			}
			printReport(cmd.OutOrStdout(), report)
			return nil
		},
	}

	addQueryFlags(cmd, &q)
	cmd.Flags().IntVar(&q.Page, "page", 1, "Page number")
	cmd.Flags().StringSliceVar(&q.Expanded, "expand", nil, "Batch IDs to expand")
	return cmd
}

func exportCmd(opts *rootOptions) *cobra.Command {
	var (
		q      dto.ReportQuery
		output string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Download the filtered ledger as csv or pdf",
		RunE: func(cmd *cobra.Command, args []string) error {
			if output == "-" {
				_, err := opts.client().Export(cmd.Context(), q, cmd.OutOrStdout())
				return err
			}

			tmp, err := os.CreateTemp(".", ".propledger-export-*")
			if err != nil {
				return err
			}
			defer os.Remove(tmp.Name())

			name, err := opts.client().Export(cmd.Context(), q, tmp)
			if closeErr := tmp.Close(); err == nil {
				err = closeErr
			}
			if err != nil {
				return err
			}

			if output == "" {
				output = name
			}
			if output == "" {
				output = "ledger." + strings.ToLower(q.Format)
			}
			if err := os.Rename(tmp.Name(), output); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", output)
			return nil
		},
	}

	addQueryFlags(cmd, &q)
	cmd.Flags().StringVar(&q.Format, "format", "csv", "Export format (csv, pdf)")
	cmd.Flags().StringVarP(&output, "output", "o", "", `Output file ("-" for stdout); defaults to the server's file name`)
	return cmd
}

func reconcileCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "reconcile [entity-id]",
		Short: "Check running balances against net positions",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			c := opts.client()

			if len(args) == 1 {
				res, err := c.Reconcile(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if opts.asJSON {
					return printJSON(out, res)
				}
				printReconciliation(out, res)
				if !res.IsReconciled {
					return fmt.Errorf("entity %s is out of balance by %s", res.EntityID, res.Difference.StringFixed(2))
				}
				return nil
			}

			report, err := c.ReconcileAll(cmd.Context())
			if err != nil {
				return err
			}
			if opts.asJSON {
				return printJSON(out, report)
			}

			fmt.Fprintf(out, "Reconciled %d/%d entities, net position %s\n",
				report.ReconciledEntities, report.TotalEntities, report.NetPosition.StringFixed(2))
			for _, d := range report.Discrepancies {
				printReconciliation(out, d)
			}
			if len(report.Discrepancies) > 0 {
				return fmt.Errorf("%d entities are out of balance", len(report.Discrepancies))
			}
			return nil
		},
	}
}

func payCmd(opts *rootOptions) *cobra.Command {
	var (
		req    dto.BulkPaymentRequest
		allocs []string
		date   string
		key    string
	)

	cmd := &cobra.Command{
		Use:   "pay",
		Short: "Record one payment across several invoices",
		Example: `  propledger pay --contact c-1 --alloc inv-2=600 --alloc inv-5=500 --method bank`,
		RunE: func(cmd *cobra.Command, args []string) error {
			allocations, err := parseAllocations(allocs)
			if err != nil {
				return err
			}
			req.Allocations = allocations

			if date != "" {
				d, err := time.Parse(dto.DateLayout, date)
				if err != nil {
					return fmt.Errorf("invalid --date: %w", err)
				}
				req.Date = &d
			}
			if key == "" {
				key = ulid.Make().String()
			}

			payment, replayed, err := opts.client().BulkPayment(cmd.Context(), req, key)
			if err != nil {
				return err
			}
			if opts.asJSON {
				return printJSON(cmd.OutOrStdout(), payment)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Payment %s recorded for %s: %s across %d invoices\n",
				payment.ID, payment.ContactID, payment.Total.StringFixed(2), len(payment.Allocations))
			if replayed {
				fmt.Fprintln(out, "(replayed from an earlier request with the same key)")
			}
			fmt.Fprintf(out, "Idempotency key: %s\n", key)
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&req.ContactID, "contact", "", "Contact the invoices belong to")
	f.StringArrayVar(&allocs, "alloc", nil, "Allocation as INVOICE_ID=AMOUNT (repeatable)")
	f.StringVar(&date, "date", "", "Payment date (YYYY-MM-DD); defaults to today")
	f.StringVar(&req.Method, "method", "", "Payment method")
	f.StringVar(&req.Description, "description", "", "Description")
	f.StringVar(&key, "idempotency-key", "", "Idempotency key; generated when empty")
	_ = cmd.MarkFlagRequired("alloc")
	return cmd
}

func messagesCmd(opts *rootOptions) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "messages <phone>",
		Short: "Show a chat conversation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := opts.client().Messages(cmd.Context(), args[0], limit)
			if err != nil {
				return err
			}
			if opts.asJSON {
				return printJSON(cmd.OutOrStdout(), res)
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			for _, m := range res.Messages {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", m.Timestamp.Format(time.DateTime), m.Direction, m.Status, m.Body)
			}
			return w.Flush()
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 50, "Number of most recent messages")
	return cmd
}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the database schema",
	}

	load := func() (*config.Config, error) {
		return config.Load()
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply pending migrations",
			RunE: func(cmd *cobra.Command, args []string) error {
				cfg, err := load()
				if err != nil {
					return err
				}
				return postgres.RunMigrations(cfg.DatabaseURL, cfg.MigrationsPath)
			},
		},
		&cobra.Command{
			Use:   "down",
			Short: "Roll back the last migration",
			RunE: func(cmd *cobra.Command, args []string) error {
				cfg, err := load()
				if err != nil {
					return err
				}
				return postgres.RunMigrationsDown(cfg.DatabaseURL, cfg.MigrationsPath)
			},
		},
		&cobra.Command{
			Use:   "version",
			Short: "Print the applied schema version",
			RunE: func(cmd *cobra.Command, args []string) error {
				cfg, err := load()
				if err != nil {
					return err
				}
				version, dirty, err := postgres.MigrationVersion(cfg.DatabaseURL, cfg.MigrationsPath)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "version %d (dirty: %v)\n", version, dirty)
				return nil
			},
		},
	)

	return cmd
}

func tokenCmd() *cobra.Command {
	var (
		user     domain.User
		role     string
		secret   string
		validFor time.Duration
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue a bearer token signed with JWT_SECRET",
		RunE: func(cmd *cobra.Command, args []string) error {
			if secret == "" {
				cfg, err := config.Load()
				if err != nil {
					return err
				}
				secret = cfg.JWTSecret
			}
			if secret == "" {
				return fmt.Errorf("no signing secret: set JWT_SECRET or pass --secret")
			}

			user.Role = domain.Role(role)
			token, err := auth.NewJWTManager(secret, validFor).Generate(&user)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&user.ID, "user", "", "User ID (token subject)")
	f.StringVar(&user.Email, "email", "", "User email")
	f.StringVar(&role, "role", string(domain.RoleViewer), "Role (admin, accountant, viewer)")
	f.StringVar(&secret, "secret", "", "Signing secret; read from JWT_SECRET when empty")
	f.DurationVar(&validFor, "valid-for", 24*time.Hour, "Token lifetime")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}

func parseAllocations(raw []string) ([]dto.AllocationRequest, error) {
	out := make([]dto.AllocationRequest, 0, len(raw))
	for _, r := range raw {
		id, amount, ok := strings.Cut(r, "=")
		id = strings.TrimSpace(id)
		if !ok || id == "" {
			return nil, fmt.Errorf("invalid allocation %q: want INVOICE_ID=AMOUNT", r)
		}
		d := domain.ParseAmount(amount)
		if !d.Valid {
			return nil, fmt.Errorf("invalid amount in %q", r)
		}
		out = append(out, dto.AllocationRequest{InvoiceID: id, Amount: d.Decimal})
	}
	return out, nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printReport(out io.Writer, r *dto.ReportResponse) {
	if r.EntityName != "" {
		fmt.Fprintf(out, "Ledger for %s\n", r.EntityName)
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(w, "DATE\tTYPE\tLABEL\tCOUNTERPART\tAMOUNT\tPAID\tBALANCE\tSTATUS\t")
	for _, row := range r.Rows {
		amount := "-"
		if row.Amount != nil {
			amount = row.Amount.StringFixed(2)
		}
		label := row.Label
		if row.Child {
			label = "  " + label
		} else if row.Children > 0 {
			label = fmt.Sprintf("%s (%d)", label, row.Children)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t\n",
			row.Date.Format(time.DateOnly), row.Type, truncate(label, 32), truncate(row.CounterpartName, 24),
			amount, row.Paid.StringFixed(2), row.Balance.StringFixed(2), row.Status)
	}
	w.Flush()

	fmt.Fprintf(out, "\nPayable %s  Paid %s  Net %s  (page %d of %d, %d rows)\n",
		r.Totals.Payable.StringFixed(2), r.Totals.Paid.StringFixed(2), r.Totals.Net.StringFixed(2),
		r.CurrentPage, r.TotalPages, r.TotalCount)
}

func printReconciliation(out io.Writer, r *dto.ReconciliationResponse) {
	state := "OK"
	if !r.IsReconciled {
		state = "MISMATCH"
	}
	fmt.Fprintf(out, "%-8s %s (%s): running %s, net %s, difference %s\n",
		state, r.EntityName, r.EntityID,
		r.RunningBalance.StringFixed(2), r.NetPosition.StringFixed(2), r.Difference.StringFixed(2))
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
