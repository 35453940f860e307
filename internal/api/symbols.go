package api

import "strings"

// NormalizeSymbol turns inputs like "btc-usdt" into the "BTC/USDT" form the
// exchange clients expect. It does not validate.
func NormalizeSymbol(symbol string) string {
	return strings.ReplaceAll(strings.ToUpper(symbol), "-", "/")
}
