package main

import (
	"context"

	"github.com/spf13/cobra"

	"StockDeck/internal/logger"
	"StockDeck/internal/notifier"
	"StockDeck/internal/scheduler"
	"StockDeck/internal/server"
	"StockDeck/internal/tape"
	"StockDeck/internal/watchlist"
)

func newServeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and the tape refresher",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.serve(cmd.Context())
		},
	}
}

func (a *app) serve(ctx context.Context) error {
	cfg := a.cfg
	board := notifier.NewBoard(100)
	wl := watchlist.NewController(a.proxy, a.proxy, board)

	tp := tape.New(a.proxy, cfg.Tape.Symbols, cfg.Tape.Period, cfg.Tape.Workers)
	sched := scheduler.NewScheduler(ctx, tp)
	if err := sched.RegisterTape(cfg.Tape.Interval); err != nil {
		return err
	}
	sched.Start()
	defer sched.Stop()

	srv := server.New(cfg.Server.Address, a.proxy, wl, board, tp, a.log)
	a.log.WithFields(logger.Fields{
		"address":  srv.Address(),
		"symbols":  tp.Symbols(),
		"interval": cfg.Tape.Interval,
	}).Info("StockDeck is running. Press Ctrl+C to stop.")

	if err := srv.Run(ctx); err != nil {
		return err
	}
	a.log.Info("StockDeck stopped")
	return nil
}
