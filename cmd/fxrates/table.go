package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/SscSPs/fx_rate_dashboard/internal/ratetable"
	"github.com/SscSPs/fx_rate_dashboard/internal/upstream"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
)

type tableOptions struct {
	file    string
	url     string
	token   string
	orgID   string
	search  string
	amounts []string
	timeout time.Duration
}

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	markerStyle = lipgloss.NewStyle().Italic(true).Foreground(lipgloss.Color("241"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
)

func newTableCmd() *cobra.Command {
	opts := &tableOptions{}
	cmd := &cobra.Command{
		Use:   "table",
		Short: "Render a rate table from a JSON file or URL",
		Example: `  fxrates table --file rates.json --search inr --amount 0=100
  fxrates table --url https://rates.example.com/user --token $TOKEN`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runTable(cmd.Context(), cmd.OutOrStdout(), opts)
		},
	}
	f := cmd.Flags()
	f.StringVar(&opts.file, "file", "", "read records from a JSON file")
	f.StringVar(&opts.url, "url", "", "fetch records from a URL")
	f.StringVar(&opts.token, "token", "", "bearer token sent with --url")
	f.StringVar(&opts.orgID, "org-id", "", "orgid header sent with --url")
	f.StringVar(&opts.search, "search", "", "only show rows whose currency codes contain this text")
	f.StringArrayVar(&opts.amounts, "amount", nil, "ROW=VALUE amount typed into a visible row (repeatable)")
	f.DurationVar(&opts.timeout, "timeout", 15*time.Second, "timeout for --url")
	cmd.MarkFlagsOneRequired("file", "url")
	cmd.MarkFlagsMutuallyExclusive("file", "url")
	return cmd
}

type amountArg struct {
	row   int
	value string
}

func parseAmount(arg string) (amountArg, error) {
	rowStr, value, ok := strings.Cut(arg, "=")
	if !ok {
		return amountArg{}, fmt.Errorf("invalid --amount %q: want ROW=VALUE", arg)
	}
	row, err := strconv.Atoi(strings.TrimSpace(rowStr))
	if err != nil {
		return amountArg{}, fmt.Errorf("invalid --amount %q: row must be an integer", arg)
	}
	return amountArg{row: row, value: value}, nil
}

func loadBody(ctx context.Context, opts *tableOptions) ([]byte, error) {
	if opts.file != "" {
		return os.ReadFile(opts.file)
	}
	client := upstream.NewClient(&http.Client{Timeout: opts.timeout})
	return client.Get(ctx, opts.url, upstream.Credentials{BearerToken: opts.token, OrgID: opts.orgID})
}

func runTable(ctx context.Context, out io.Writer, opts *tableOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}
	amounts := make([]amountArg, 0, len(opts.amounts))
	for _, a := range opts.amounts {
		parsed, err := parseAmount(a)
		if err != nil {
			return err
		}
		amounts = append(amounts, parsed)
	}

	body, err := loadBody(ctx, opts)
	if err != nil {
		return fmt.Errorf("failed to load rates: %w", err)
	}
	records, err := ratetable.DecodeRecords(body)
	if err != nil {
		return fmt.Errorf("failed to decode rates: %w", err)
	}

	t := ratetable.NewTable(ratetable.UserDefined, ratetable.WithEmptyMessage("No rates available"))
	t.SetRecords(records)
	if opts.search != "" {
		t.SetSearchQuery(opts.search)
	}
	for _, a := range amounts {
		if _, err := t.OnAmountInput(a.row, a.value); err != nil {
			if errors.Is(err, ratetable.ErrRowOutOfRange) {
				return fmt.Errorf("row %d is not visible: %w", a.row, err)
			}
			return err
		}
	}

	_, err = fmt.Fprintln(out, renderView(t.View()))
	return err
}

func renderView(v ratetable.TableView) string {
	if v.Marker != ratetable.MarkerNone {
		if v.Marker == ratetable.MarkerError {
			return errorStyle.Render(v.Message)
		}
		return markerStyle.Render(v.Message)
	}

	tbl := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("#", "DATE", "FROM", "TO", "AMOUNT", "CONVERTED", "RATE").
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
	for _, r := range v.Rows {
		tbl.Row(
			strconv.Itoa(r.Index),
			r.Date,
			r.FromCurrency,
			r.ToCurrency,
			r.InputValue,
			r.ConvertedDisplay,
			r.RawRateDisplay,
		)
	}
	return tbl.String()
}
