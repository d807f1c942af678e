package exchange

import "time"

// Interval is an enum that represents the candlestick timeframes that can be retrieved from an
// exchange's historical data endpoints.
type Interval int

const (
	OneMinute Interval = iota
	FiveMinute
	FifteenMinute
	ThirtyMinute
	OneHour
	ThreeHour
	SixHour
	TwelveHour
	OneDay
	OneWeek
	TwoWeek
	OneMonth
)

var intervalNames = [...]string{"1m", "5m", "15m", "30m", "1h", "3h", "6h", "12h", "1D", "7D", "14D", "1M"}

func (o Interval) String() string {
	if o < 0 || int(o) >= len(intervalNames) {
		return "unknown"
	}

	return intervalNames[o]
}

// ParseInterval maps a timeframe string such as "5m" or "1D" back onto its Interval. The second
// return value is false if the timeframe is not recognized.
func ParseInterval(s string) (Interval, bool) {
	for i, v := range intervalNames {
		if v == s {
			return Interval(i), true
		}
	}

	return OneMinute, false
}

// End returns the final instant of a candle of this interval that opened at the provided start
// time. Months are calendar months, so their length varies.
func (o Interval) End(start time.Time) time.Time {
	var end time.Time

	switch o {
	case OneMinute:
		end = start.Add(time.Minute)
	case FiveMinute:
		end = start.Add(5 * time.Minute)
	case FifteenMinute:
		end = start.Add(15 * time.Minute)
	case ThirtyMinute:
		end = start.Add(30 * time.Minute)
	case OneHour:
		end = start.Add(time.Hour)
	case ThreeHour:
		end = start.Add(3 * time.Hour)
	case SixHour:
		end = start.Add(6 * time.Hour)
	case TwelveHour:
		end = start.Add(12 * time.Hour)
	case OneDay:
		end = start.AddDate(0, 0, 1)
	case OneWeek:
		end = start.AddDate(0, 0, 7)
	case TwoWeek:
		end = start.AddDate(0, 0, 14)
	default:
		end = start.AddDate(0, 1, 0)
	}

	return end.Add(-time.Nanosecond)
}
