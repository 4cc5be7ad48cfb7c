// Package marketdata supplies daily price series and market context to the risk analysis.
package marketdata

import (
	"fmt"
	"strings"
)

// Period is an analysis window label understood by every price source.
type Period string

const (
	Period1Month  Period = "1mo"
	Period3Month  Period = "3mo"
	Period6Month  Period = "6mo"
	Period1Year   Period = "1y"
	Period2Year   Period = "2y"
	Period5Year   Period = "5y"
	DefaultPeriod        = Period1Year
)

var tradingDays = map[Period]int{
	Period1Month: 21,
	Period3Month: 63,
	Period6Month: 126,
	Period1Year:  252,
	Period2Year:  504,
	Period5Year:  1260,
}

// Periods lists the supported periods from shortest to longest.
var Periods = []Period{Period1Month, Period3Month, Period6Month, Period1Year, Period2Year, Period5Year}

// ParsePeriod validates a period label. An empty label selects DefaultPeriod.
func ParsePeriod(s string) (Period, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return DefaultPeriod, nil
	}
	p := Period(s)
	if _, ok := tradingDays[p]; !ok {
		return "", fmt.Errorf("unsupported period %q", s)
	}
	return p, nil
}

// TradingDays is the number of daily returns the period covers.
func (p Period) TradingDays() int {
	return tradingDays[p]
}

// Valid reports whether p is a supported period.
func (p Period) Valid() bool {
	_, ok := tradingDays[p]
	return ok
}

func (p Period) String() string {
	return string(p)
}
