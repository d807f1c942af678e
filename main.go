package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/joho/godotenv"
	"github.com/logrusorgru/aurora"
	"github.com/lukehollenback/bfxrest/exchange"
	"github.com/lukehollenback/bfxrest/exchange/bitfinex"
	"github.com/lukehollenback/bfxrest/watcher"
	"github.com/lukehollenback/bfxrest/writer"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shopspring/decimal"
)

// Env holds the settings that are read from the environment (or a .env file) rather than flags.
type Env struct {
	APIKey      string `env:"BFX_API_KEY" env-description:"Bitfinex API key"`
	APISecret   string `env:"BFX_API_SECRET" env-description:"Bitfinex API secret"`
	BaseURL     string `env:"BFX_BASE_URL" env-default:"https://api.bitfinex.com/" env-description:"REST API root"`
	MetricsAddr string `env:"BFX_METRICS_ADDR" env-description:"Address to serve Prometheus metrics on. Empty disables it."`
}

var (
	cfgCmd       = flag.String("cmd", "ticker", "The call to make: ticker, tickers, book, trades, stats, candles, alerts, alert-set, alert-delete, orders, wallets, or watch.")
	cfgSymbol    = flag.String("symbol", "", "The symbol to query. Empty selects the call's default.")
	cfgSymbols   = flag.String("symbols", "tBTCUSD,tETHUSD", "Comma separated symbols for the tickers call.")
	cfgLimit     = flag.Int("limit", 0, "The number of book levels or trades. Zero selects the call's default.")
	cfgPrecision = flag.String("precision", "", "The order book precision (P0-P4 or R0).")
	cfgTimeframe = flag.String("timeframe", "1m", "The candle timeframe.")
	cfgSection   = flag.String("section", "", "The candle section (last or hist).")
	cfgStatsKey  = flag.String("stats-key", "", "The statistics key.")
	cfgContext   = flag.String("stats-context", "", "The statistics context.")
	cfgAlertType = flag.String("alert-type", "", "The alert type.")
	cfgPrice     = flag.String("price", "0", "The alert price.")
	cfgTyped     = flag.Bool("typed", false, "Decode trading pair responses into typed values.")
	cfgVerbose   = flag.Bool("verbose", false, "Log every outgoing request.")
	cfgTimeout   = flag.Duration("timeout", 30*time.Second, "The overall deadline of a single call.")

	cfgWatchInterval = flag.Duration("watch-interval", 10*time.Second, "How often the watch command polls the ticker.")
	cfgWatchWindow   = flag.Int("watch-window", 6, "How many last prices the watch command averages.")
	cfgWriterDir     = flag.String("writer-dir", "", "The directory the watch command writes CSV data points to. Empty disables CSV output.")
)

func main() {
	flag.Parse()

	//
	// Load settings from a .env file if there is one. Real environment variables win.
	//
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("Failed to load .env file. (Error: %s)", err)
	}

	var env Env

	if err := cleanenv.ReadEnv(&env); err != nil {
		log.Fatalf("Failed to read environment. (Error: %s)", err)
	}

	//
	// Instantiate the client.
	//
	opts := &bitfinex.Options{
		BaseURL:        env.BaseURL,
		NonceGenerator: bitfinex.NewIncrementingNonce(time.Now().UnixNano() / int64(time.Millisecond)),
		Verbose:        *cfgVerbose,
	}

	if *cfgTyped {
		opts.Transformer = bitfinex.TypedTransformer()
	}

	if env.MetricsAddr != "" {
		opts.Metrics = bitfinex.NewMetrics(prometheus.DefaultRegisterer)

		go serveMetrics(env.MetricsAddr)
	}

	client := bitfinex.NewClient(env.APIKey, env.APISecret, opts)

	if *cfgCmd == "watch" {
		watch(client)

		return
	}

	call, err := buildCall(client, *cfgCmd)
	if err != nil {
		log.Fatalf("%s (Error: %s)", aurora.Red("Invalid arguments."), err)
	}

	//
	// Run the call and wait for its outcome.
	//
	ctx, cancel := context.WithTimeout(context.Background(), *cfgTimeout)
	defer cancel()

	_, err = bitfinex.Async(ctx, call).Observe(bitfinex.LogObserver()).Await(ctx)
	if err != nil {
		os.Exit(1)
	}
}

// buildCall maps the command line onto a client call.
func buildCall(client *bitfinex.Client, cmd string) (bitfinex.Call, error) {
	switch cmd {
	case "ticker":
		return func(ctx context.Context) (*bitfinex.Response, error) {
			return client.Ticker(ctx, *cfgSymbol)
		}, nil

	case "tickers":
		return func(ctx context.Context) (*bitfinex.Response, error) {
			return client.Tickers(ctx, strings.Split(*cfgSymbols, ",")...)
		}, nil

	case "book":
		symbol := *cfgSymbol
		if symbol == "" {
			symbol = bitfinex.DefaultSymbol
		}

		return func(ctx context.Context) (*bitfinex.Response, error) {
			return client.OrderBook(ctx, bitfinex.OrderBookParams{
				Symbol:    symbol,
				Precision: *cfgPrecision,
				Limit:     *cfgLimit,
			})
		}, nil

	case "trades":
		return func(ctx context.Context) (*bitfinex.Response, error) {
			return client.Trades(ctx, bitfinex.TradesParams{Symbol: *cfgSymbol, Limit: *cfgLimit})
		}, nil

	case "stats":
		return func(ctx context.Context) (*bitfinex.Response, error) {
			return client.Stats(ctx, bitfinex.StatsParams{Key: *cfgStatsKey, Context: *cfgContext})
		}, nil

	case "candles":
		timeframe, ok := exchange.ParseInterval(*cfgTimeframe)
		if !ok {
			return nil, &bitfinex.ConfigError{Reason: "unknown timeframe " + *cfgTimeframe}
		}

		return func(ctx context.Context) (*bitfinex.Response, error) {
			return client.Candles(ctx, bitfinex.CandlesParams{
				Timeframe: timeframe,
				Symbol:    *cfgSymbol,
				Section:   *cfgSection,
			})
		}, nil

	case "alerts":
		return func(ctx context.Context) (*bitfinex.Response, error) {
			return client.AlertList(ctx, *cfgAlertType)
		}, nil

	case "alert-set", "alert-delete":
		price, err := decimal.NewFromString(*cfgPrice)
		if err != nil {
			return nil, err
		}

		if cmd == "alert-delete" {
			return func(ctx context.Context) (*bitfinex.Response, error) {
				return client.AlertDelete(ctx, *cfgSymbol, price)
			}, nil
		}

		return func(ctx context.Context) (*bitfinex.Response, error) {
			return client.AlertSet(ctx, bitfinex.AlertParams{Type: *cfgAlertType, Symbol: *cfgSymbol, Price: price})
		}, nil

	case "orders":
		return client.Orders, nil

	case "wallets":
		return func(ctx context.Context) (*bitfinex.Response, error) {
			resp, err := client.Wallets(ctx)
			if err != nil {
				return resp, err
			}

			wallets, err := bitfinex.DecodeWallets(resp)
			if err != nil {
				return resp, err
			}

			t := table.NewWriter()
			t.SetOutputMirror(os.Stdout)
			t.AppendHeader(table.Row{"Type", "Currency", "Balance", "Unsettled Interest", "Available"})
			t.AppendSeparator()

			for _, w := range wallets {
				t.AppendRow(table.Row{w.Type, w.Currency, w.Balance, w.UnsettledInterest, w.AvailableBalance})
			}
			t.Render()

			return resp, nil
		}, nil
	}

	return nil, &bitfinex.ConfigError{Reason: "unknown command " + cmd}
}

// watch runs the watcher (and optionally the writer) until the operating system interrupts us.
func watch(client *bitfinex.Client) {
	//
	// Register a kill signal handler with the operating system so that we can gracefully shutdown if
	// necessary.
	//
	osInterrupt := make(chan os.Signal, 1)

	signal.Notify(osInterrupt, os.Interrupt)

	//
	// Start up all necessary services.
	//
	var sink watcher.Sink
	var csv *writer.Service

	if *cfgWriterDir != "" {
		csv = writer.New(*cfgWriterDir)

		chWriterStarted, err := csv.Start()
		if err != nil {
			log.Fatalf("Failed to start the writer service. (Error: %s)", err)
		}

		<-chWriterStarted

		sink = csv
	}

	symbol := *cfgSymbol
	if symbol == "" {
		symbol = bitfinex.DefaultSymbol
	}

	w := watcher.New(client, watcher.Config{
		Symbol:   symbol,
		Interval: *cfgWatchInterval,
		Window:   *cfgWatchWindow,
	}, sink)

	chWatcherStarted, err := w.Start()
	if err != nil {
		log.Fatalf("Failed to start the watcher service. (Error: %s)", err)
	}

	<-chWatcherStarted

	//
	// Block until we are shut down by the operating system.
	//
	<-osInterrupt

	log.Print("An operating system interrupt has been received. Shutting down all services...")

	//
	// Stop all running services.
	//
	chWatcherStopped, err := w.Stop()
	if err != nil {
		log.Fatalf("Failed to stop the watcher service. (Error: %s)", err)
	}

	<-chWatcherStopped

	if csv != nil {
		chWriterStopped, err := csv.Stop()
		if err != nil {
			log.Fatalf("Failed to stop the writer service. (Error: %s)", err)
		}

		<-chWriterStopped
	}

	log.Print("Goodbye.")
}

// serveMetrics exposes the default Prometheus registry until the process exits.
func serveMetrics(addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	log.Printf("Serving metrics on %s.", aurora.Bold(addr))

	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Printf("%s (Error: %s)", aurora.Red("The metrics server has stopped."), err)
	}
}
