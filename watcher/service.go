package watcher

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/logrusorgru/aurora"
	"github.com/lukehollenback/bfxrest/constants"
	"github.com/lukehollenback/bfxrest/exchange"
	"github.com/lukehollenback/bfxrest/service"
	"github.com/lukehollenback/bfxrest/structs/evictingqueue"
	"github.com/lukehollenback/bfxrest/writer"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

const (
	Name = "≪watcher-service≫"
)

var (
	logger *log.Logger

	_ service.Service = (*Service)(nil)
)

func init() {
	//
	// Initialize the logger.
	//
	logger = log.New(log.Writer(), fmt.Sprintf(constants.LogPrefixFmt, Name), log.Ldate|log.Ltime|log.Lmsgprefix)
}

// Sink receives the data points produced by the watcher. The writer service is one.
type Sink interface {
	Write(timestamp time.Time, category writer.Type, value decimal.Decimal) error
}

// Config describes what the watcher polls and how it averages.
type Config struct {
	Symbol   string        // Symbol whose ticker is polled.
	Interval time.Duration // Time between polls.
	Window   int           // Number of last prices the moving average covers.
}

// Service polls an exchange's ticker endpoint and reports a simple moving average of the last
// prices it has seen.
type Service struct {
	mu        *sync.Mutex
	cancel    context.CancelFunc
	chStopped chan bool

	client exchange.Client
	sink   Sink
	cfg    Config

	prices  *evictingqueue.EvictingQueue[decimal.Decimal]
	lastAvg decimal.Decimal
	hasAvg  bool
}

// New instantiates a watcher. The sink may be nil.
func New(client exchange.Client, cfg Config, sink Sink) *Service {
	return &Service{
		mu:     &sync.Mutex{},
		client: client,
		sink:   sink,
		cfg:    cfg,
		prices: evictingqueue.New[decimal.Decimal](cfg.Window),
	}
}

// Start implements the service.Service interface's described method.
func (o *Service) Start() (<-chan bool, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	//
	// Validate that necessary configurations have been provided.
	//
	if o.client == nil {
		return nil, errors.New("the watcher needs an exchange client")
	}

	if o.cfg.Interval <= 0 {
		return nil, errors.Errorf("the watcher interval must be positive (got %s)", o.cfg.Interval)
	}

	if o.cfg.Window < 1 {
		return nil, errors.Errorf("the watcher window must be at least 1 (got %d)", o.cfg.Window)
	}

	//
	// (Re)initialize our instance variables.
	//
	var ctx context.Context

	ctx, o.cancel = context.WithCancel(context.Background())
	o.chStopped = make(chan bool, 1)

	//
	// Fire off a goroutine as the executor for the service.
	//
	go o.service(ctx)

	chStarted := make(chan bool, 1)
	chStarted <- true

	logger.Printf("Started. (Symbol: %s, Interval: %s, Window: %d)", o.cfg.Symbol, o.cfg.Interval, o.cfg.Window)

	return chStarted, nil
}

// Stop implements the service.Service interface's described method. An in-flight poll is
// cancelled.
func (o *Service) Stop() (<-chan bool, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.cancel == nil {
		return nil, errors.New("the watcher is not running")
	}

	logger.Printf("Stopping...")

	o.cancel()
	o.cancel = nil

	return o.chStopped, nil
}

// Average returns the current moving average, or false if the window has not filled up yet.
func (o *Service) Average() (decimal.Decimal, bool) {
	if !o.prices.Full() {
		return decimal.Zero, false
	}

	prices := o.prices.Snapshot()
	sum := constants.Zero()

	for _, v := range prices {
		sum = sum.Add(v)
	}

	return sum.Div(decimal.NewFromInt(int64(len(prices)))), true
}

func (o *Service) service(ctx context.Context) {
	ticker := time.NewTicker(o.cfg.Interval)
	defer ticker.Stop()

	for cont := true; cont; {
		o.poll(ctx)

		select {
		case <-ctx.Done():
			cont = false
		case <-ticker.C:
		}
	}

	//
	// Send the signal that we have shut down.
	//
	o.chStopped <- true
}

// poll retrieves one ticker, folds its last price into the window, and reports the outcome.
func (o *Service) poll(ctx context.Context) {
	resp, err := o.client.RetrieveTicker(ctx, o.cfg.Symbol)
	if err != nil {
		if ctx.Err() == nil {
			logger.Printf("%s (Error: %s)", aurora.Red("Failed to retrieve ticker."), err)
		}

		return
	}

	ticker := resp.Ticker()
	if ticker == nil {
		logger.Printf("%s", aurora.Red("The ticker response did not carry a ticker."))

		return
	}

	now := time.Now()
	price := ticker.LastPrice()

	o.prices.Add(price)
	o.record(now, writer.ClosingPrice, price)

	avg, ok := o.Average()
	if !ok {
		logger.Printf(
			"%s last %s (warming up %d/%d)",
			ticker.Symbol(), aurora.Bold(aurora.Yellow(price)), o.prices.Len(), o.cfg.Window,
		)

		return
	}

	o.record(now, writer.MovingAverage, avg)

	//
	// Color the average by the direction it moved since the previous poll.
	//
	avgMsg := aurora.Bold(aurora.Blue(avg.StringFixed(2)))

	if o.hasAvg && avg.GreaterThan(o.lastAvg) {
		avgMsg = aurora.Bold(aurora.Green(avg.StringFixed(2)))
	} else if o.hasAvg && avg.LessThan(o.lastAvg) {
		avgMsg = aurora.Bold(aurora.Red(avg.StringFixed(2)))
	}

	o.lastAvg = avg
	o.hasAvg = true

	logger.Printf("%s last %s, SMA(%d) %s", ticker.Symbol(), aurora.Bold(aurora.Yellow(price)), o.cfg.Window, avgMsg)
}

func (o *Service) record(timestamp time.Time, category writer.Type, value decimal.Decimal) {
	if o.sink == nil {
		return
	}

	if err := o.sink.Write(timestamp, category, value); err != nil {
		logger.Printf("Failed to record %s. (Error: %s)", category, err)
	}
}
