package main

import (
	"github.com/spf13/cobra"

	"StockDeck/internal/collector"
	"StockDeck/internal/config"
	"StockDeck/internal/logger"
	"StockDeck/internal/metrics"
	"StockDeck/internal/proxy"
	"StockDeck/internal/recorder"
)

// app holds the dependencies shared by every command.
type app struct {
	cfg      *config.Config
	log      *logger.Log
	recorder recorder.Recorder
	proxy    *proxy.Proxy
}

func newRootCmd() *cobra.Command {
	a := &app{}
	var cfgPath string

	root := &cobra.Command{
		Use:           "stockdeck",
		Short:         "StockDeck - stock quotes, symbol search and a personal watchlist",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cfgPath == "" {
				cfgPath = config.Path()
			}
			return a.init(cfgPath)
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return a.close()
		},
	}
	root.PersistentFlags().StringVar(&cfgPath, "config", "", "config file (default: $CONFIG_PATH or configs/config.yaml)")

	root.AddCommand(newServeCmd(a))
	root.AddCommand(newQuoteCmd(a))
	root.AddCommand(newSearchCmd(a))
	root.AddCommand(newTapeCmd(a))
	return root
}

func (a *app) init(cfgPath string) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	a.cfg = cfg

	a.log = logger.GetLogger()
	if err := a.log.Configure(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output, cfg.Logging.MaxAge); err != nil {
		return err
	}
	metrics.Init()

	fetcher := collector.NewYahooFetcher(collector.YahooOptions{
		ChartURL:  cfg.Upstream.ChartURL,
		SearchURL: cfg.Upstream.SearchURL,
		UserAgent: cfg.Upstream.UserAgent,
		Timeout:   cfg.Upstream.Timeout,
		Proxy:     cfg.Proxy,
		Logger:    a.log,
	})

	a.recorder = recorder.NewNoopRecorder()
	if cfg.Database.SQLitePath != "" {
		sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath)
		if err != nil {
			a.log.WithError(err).Warn("init sqlite recorder failed, using noop")
		} else {
			a.recorder = sr
		}
	}

	a.proxy = proxy.New(fetcher, a.recorder)
	a.log.WithFields(logger.Fields{"source": fetcher.Name(), "config": cfgPath}).Debug("initialized")
	return nil
}

func (a *app) close() error {
	if a.recorder == nil {
		return nil
	}
	if sr, ok := a.recorder.(*recorder.SQLiteRecorder); ok {
		fields := logger.Fields{}
		for _, kind := range []string{recorder.KindQuote, recorder.KindSearch, recorder.KindTape} {
			if n, err := sr.FailureCount(kind); err == nil {
				fields[kind+"_failures"] = n
			}
		}
		a.log.WithFields(fields).Info("fetch log closed")
	}
	return a.recorder.Close()
}
