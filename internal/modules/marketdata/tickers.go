package marketdata

import (
	_ "embed"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed tickers.yaml
var tickersYAML []byte

// TickerInfo describes one entry of the ticker universe.
type TickerInfo struct {
	Symbol string `yaml:"symbol" json:"symbol"`
	Name   string `yaml:"name" json:"name"`
	Sector string `yaml:"sector" json:"sector"`
}

// Universe is the list of well-known tickers shipped with the binary.
type Universe struct {
	Tickers []TickerInfo `yaml:"tickers"`
	bySym   map[string]TickerInfo
}

var (
	universeOnce sync.Once
	universe     *Universe
	universeErr  error
)

// LoadUniverse parses the embedded ticker list once.
func LoadUniverse() (*Universe, error) {
	universeOnce.Do(func() {
		universe, universeErr = ParseUniverse(tickersYAML)
	})
	return universe, universeErr
}

// ParseUniverse parses a YAML ticker list, rejecting invalid or duplicate symbols.
func ParseUniverse(data []byte) (*Universe, error) {
	var u Universe
	if err := yaml.Unmarshal(data, &u); err != nil {
		return nil, fmt.Errorf("failed to parse ticker universe: %w", err)
	}

	u.bySym = make(map[string]TickerInfo, len(u.Tickers))
	for i, t := range u.Tickers {
		symbol, err := SanitizeTicker(t.Symbol)
		if err != nil {
			return nil, fmt.Errorf("ticker universe entry %d: %w", i, err)
		}
		if _, dup := u.bySym[symbol]; dup {
			return nil, fmt.Errorf("ticker universe: duplicate symbol %s", symbol)
		}
		u.Tickers[i].Symbol = symbol
		u.bySym[symbol] = u.Tickers[i]
	}

	return &u, nil
}

// Lookup returns the universe entry for symbol.
func (u *Universe) Lookup(symbol string) (TickerInfo, bool) {
	t, ok := u.bySym[strings.ToUpper(symbol)]
	return t, ok
}

var tickerPattern = regexp.MustCompile(`^[A-Z0-9][A-Z0-9.\-=]{0,11}$`)

// ErrInvalidTicker is returned for symbols that cannot be a market ticker.
var ErrInvalidTicker = errors.New("invalid ticker symbol")

// SanitizeTicker trims and upper-cases a symbol and validates its shape.
func SanitizeTicker(raw string) (string, error) {
	symbol := strings.ToUpper(strings.TrimSpace(raw))
	if !tickerPattern.MatchString(symbol) {
		return "", fmt.Errorf("%w: %q", ErrInvalidTicker, raw)
	}
	return symbol, nil
}
