package testing

import (
	"time"
)

// FixturePrices is a short daily close series with both up and down days.
var FixturePrices = []float64{100, 101.2, 99.8, 102.5, 103.1, 101.7, 104.4, 105.0, 103.2, 106.8, 107.5}

// VolatileFixturePrices swings hard enough to classify as very high risk.
var VolatileFixturePrices = []float64{100, 105, 95, 110, 90}

// FixtureDates returns n consecutive weekday dates ending on end, formatted as ISO-8601 days.
func FixtureDates(n int, end time.Time) []string {
	dates := make([]string, n)
	day := time.Date(end.Year(), end.Month(), end.Day(), 0, 0, 0, 0, time.UTC)
	for i := n - 1; i >= 0; {
		if wd := day.Weekday(); wd != time.Saturday && wd != time.Sunday {
			dates[i] = day.Format("2006-01-02")
			i--
		}
		day = day.AddDate(0, 0, -1)
	}
	return dates
}

// FixtureTime is a fixed Friday used as "now" in tests.
var FixtureTime = time.Date(2025, time.March, 14, 16, 0, 0, 0, time.UTC)
