package bitfinex

import (
	"fmt"
	"log"

	"github.com/logrusorgru/aurora"
	"github.com/lukehollenback/bfxrest/constants"
)

const (
	Name = "≪bitfinex-client≫"
)

var (
	logger *log.Logger
)

func init() {
	//
	// Initialize the logger.
	//
	logger = log.New(log.Writer(), fmt.Sprintf(constants.LogPrefixFmt, Name), log.Ldate|log.Ltime|log.Lmsgprefix)
}

// Callback observes the outcome of one request. Exactly one of err and resp is non-nil.
type Callback func(err error, resp *Response)

// LogObserver returns a callback that logs every outcome it observes. It can be installed as the
// client's observer or attached to individual futures.
func LogObserver() Callback {
	return func(err error, resp *Response) {
		if err != nil {
			logger.Printf("%s %s", aurora.Bold(aurora.Red("Request failed.")), err)

			return
		}

		logger.Printf(
			"%s %s",
			aurora.Bold(aurora.Green("Request succeeded.")),
			aurora.Yellow(fmt.Sprintf("%+v", resp.Data())),
		)
	}
}
