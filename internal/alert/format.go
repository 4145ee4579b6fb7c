package alert

import (
	"fmt"

	"swapwatch/internal/model"
	"swapwatch/internal/scanner"
)

// FormatBuyAlert renders the Markdown caption for a buy notification.
func FormatBuyAlert(pair model.Pair, event model.SwapEvent, buy scanner.Classification, metrics model.PairMetrics, explorerTxURL string) string {
	usdValue := buy.Amount.Mul(metrics.Price)
	return fmt.Sprintf(
		"🔔 *%s Buy Alert* 📈\n"+
			"Buyer: %s\n"+
			"Amount: %s %s\n"+
			"USD Value: $%s\n"+
			"Price: $%s\n"+
			"Market Cap: $%s\n"+
			"Liquidity: $%s\n"+
			"24h Volume: $%s\n"+
			"Tx: %s%s",
		pair.ID,
		ShortAddress(event.To.Hex()),
		buy.Amount.StringFixed(2),
		buy.TokenSymbol,
		usdValue.StringFixed(2),
		metrics.Price.StringFixed(6),
		metrics.MarketCap.StringFixed(2),
		metrics.Liquidity.StringFixed(2),
		metrics.Volume24h.StringFixed(2),
		explorerTxURL,
		event.TxHash,
	)
}

// FormatStats renders the reply for a stats query.
func FormatStats(pairID string, metrics model.PairMetrics) string {
	return fmt.Sprintf(
		"📊 *%s Stats*\n"+
			"Price: $%s\n"+
			"Market Cap: $%s\n"+
			"Liquidity: $%s\n"+
			"24h Volume: $%s",
		pairID,
		metrics.Price.StringFixed(6),
		metrics.MarketCap.StringFixed(2),
		metrics.Liquidity.StringFixed(2),
		metrics.Volume24h.StringFixed(2),
	)
}

// ShortAddress truncates an address for display: first six characters, an
// ellipsis, then the last four.
func ShortAddress(address string) string {
	if len(address) <= 10 {
		return address
	}
	return address[:6] + "..." + address[len(address)-4:]
}
