package core

// tokenSymbols is the closed map of known token ids to their ticker symbol
// (§4.5). Unknown ids pass through unchanged.
var tokenSymbols = map[string]string{
	"0":  "dfi",
	"1":  "eth",
	"2":  "btc",
	"3":  "usdt",
	"7":  "doge",
	"9":  "ltc",
	"11": "bch",
	"13": "usdc",
	"15": "dusd",
}

// TokenIDToSymbol resolves a numeric token id to its ticker symbol, or
// returns id unchanged if it is not one of the known tokens.
func TokenIDToSymbol(id string) string {
	if sym, ok := tokenSymbols[id]; ok {
		return sym
	}
	return id
}
