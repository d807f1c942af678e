package writer

import (
	"encoding/csv"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/lukehollenback/bfxrest/constants"
	"github.com/lukehollenback/bfxrest/service"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

const (
	Name         = "≪writer-service≫"
	FileName     = "bfx.csv"
	TimestampKey = "Timestamp"
	CategoryKey  = "Category"
	ValueKey     = "Value"
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

// Service represents a CSV writer service instance.
type Service struct {
	mu        *sync.Mutex
	chKill    chan bool
	chStopped chan bool
	outputDir string
	writer    *csv.Writer
}

// New instantiates a writer service that will output to the provided directory once started.
func New(outputDir string) *Service {
	return &Service{
		mu:        &sync.Mutex{},
		outputDir: outputDir,
	}
}

// Path returns the full path of the CSV file the service writes to.
func (o *Service) Path() string {
	return filepath.Join(o.outputDir, FileName)
}

// Start implements the service.Service interface's described method.
func (o *Service) Start() (<-chan bool, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.chKill != nil {
		return nil, errors.New("the writer is already running")
	}

	//
	// Create the output CSV file.
	//
	outputFile, err := os.Create(o.Path())
	if err != nil {
		return nil, errors.Wrap(err, "failed to create output file")
	}

	logger.Printf("Outputting CSV to %s.", o.Path())

	//
	// Create the CSV writer and use it to write out the header row.
	//
	writer := csv.NewWriter(outputFile)

	if err := writer.Write([]string{TimestampKey, CategoryKey, ValueKey}); err != nil {
		_ = outputFile.Close()

		return nil, errors.Wrap(err, "failed to write header row")
	}

	//
	// (Re)initialize our instance variables now that nothing can fail anymore.
	//
	o.writer = writer
	o.chKill = make(chan bool, 1)
	o.chStopped = make(chan bool, 1)

	//
	// Fire off a goroutine as the executor for the service.
	//
	go o.service(o.chKill, o.chStopped, outputFile, writer)

	//
	// Return our "started" channel in case the caller wants to block on it and log some debug info.
	//
	chStarted := make(chan bool, 1)
	chStarted <- true

	logger.Printf("Started.")

	return chStarted, nil
}

// Stop implements the service.Service interface's described method.
func (o *Service) Stop() (<-chan bool, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.chKill == nil {
		return nil, errors.New("the writer is not running")
	}

	logger.Printf("Stopping...")

	//
	// Tell the goroutine that was spun off by the service to shutdown.
	//
	o.chKill <- true
	o.chKill = nil

	//
	// Detach the writer so that later writes fail. The goroutine flushes the file it was handed.
	//
	o.writer = nil

	return o.chStopped, nil
}

// Write appends a data point to the CSV file. It fails if the service is not running.
func (o *Service) Write(timestamp time.Time, category Type, value decimal.Decimal) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.writer == nil {
		return errors.New("cannot write a data point before the writer service has started")
	}

	return o.writer.Write([]string{timestamp.UTC().Format(time.RFC3339), category.String(), value.String()})
}

// service waits for the kill signal and then flushes and closes the output file of the run it was
// started for.
func (o *Service) service(chKill <-chan bool, chStopped chan<- bool, outputFile *os.File, writer *csv.Writer) {
	//
	// Yield indefinitely.
	//
	<-chKill

	//
	// Flush the CSV writer's buffer to the output file.
	//
	writer.Flush()

	if err := writer.Error(); err != nil {
		logger.Printf("Failed to flush output file. (Error: %s)", err)
	}

	//
	// Close the handle on the output file.
	//
	if err := outputFile.Close(); err != nil {
		logger.Printf("Failed to close handle on output file. (Error: %s)", err)
	}

	//
	// Send the signal that we have shut down.
	//
	chStopped <- true
}
