package apcaledger

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"slices"
)

// Registry gives the display name of a security from its ticker symbol.
type Registry interface {
	Lookup(symbol string) (name string, ok bool)
}

// SymbolRegistry is a Registry read from a JSON object mapping symbols to
// names, e.g. {"AAPL": "Apple Inc."}.
type SymbolRegistry map[string]string

func (r SymbolRegistry) Lookup(symbol string) (string, bool) {
	name, ok := r[symbol]
	return name, ok
}

// Symbols returns the registered symbols in alphabetical order.
func (r SymbolRegistry) Symbols() []string {
	symbols := make([]string, 0, len(r))
	for s := range r {
		symbols = append(symbols, s)
	}
	slices.Sort(symbols)
	return symbols
}

// DecodeRegistry reads a registry from a JSON object.
func DecodeRegistry(r io.Reader) (SymbolRegistry, error) {
	reg := make(SymbolRegistry)
	if err := json.NewDecoder(r).Decode(&reg); err != nil {
		return nil, err
	}
	return reg, nil
}

// LoadRegistry reads the registry file at path.
func LoadRegistry(path string) (SymbolRegistry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open registry file %s: %w", path, err)
	}
	defer f.Close()
	reg, err := DecodeRegistry(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read registry %s: %w", path, err)
	}
	return reg, nil
}

// lookup returns the name of symbol or an ErrUnknownSymbol error.
func lookup(r Registry, symbol string) (string, error) {
	name, ok := r.Lookup(symbol)
	if !ok {
		return "", fmt.Errorf("symbol %s: %w", symbol, ErrUnknownSymbol)
	}
	return name, nil
}
