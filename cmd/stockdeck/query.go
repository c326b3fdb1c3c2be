package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"StockDeck/internal/calculator"
	"StockDeck/internal/model"
	"StockDeck/internal/notifier"
	"StockDeck/internal/tape"
)

func newQuoteCmd(a *app) *cobra.Command {
	var period string
	cmd := &cobra.Command{
		Use:     "quote <ticker>",
		Short:   "Fetch a quote for a ticker",
		Example: "  stockdeck quote AAPL\n  stockdeck quote msft --period 5d",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			q, err := a.proxy.Quote(cmd.Context(), args[0], period)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), notifier.FormatQuote(q, calculator.ChangePercent(q)))
			return nil
		},
	}
	cmd.Flags().StringVarP(&period, "period", "p", string(model.DefaultPeriod), "range: "+periodList())
	return cmd
}

func newSearchCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "search <query>",
		Short: "Search stocks and ETFs by ticker or company name",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			results := a.proxy.Search(cmd.Context(), strings.Join(args, " "))
			fmt.Fprintln(cmd.OutOrStdout(), notifier.FormatSearchResults(results))
			return nil
		},
	}
}

func newTapeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "tape",
		Short: "Print one refresh of the popular-ticker tape",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tp := tape.New(a.proxy, a.cfg.Tape.Symbols, a.cfg.Tape.Period, a.cfg.Tape.Workers)
			fmt.Fprintln(cmd.OutOrStdout(), notifier.FormatTape(tp.Refresh(cmd.Context())))
			return nil
		},
	}
}

func periodList() string {
	out := make([]string, len(model.Periods))
	for i, p := range model.Periods {
		out[i] = string(p)
	}
	return strings.Join(out, ", ")
}
