// Package chart renders pair price history into PNG images for the bot.
package chart

import (
	"bytes"
	"errors"
	"fmt"
	"time"

	gochart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"swapwatch/internal/model"
)

// ErrNotEnoughData means fewer than two history points exist for the
// requested timeframe.
var ErrNotEnoughData = errors.New("not enough price history to chart")

// Timeframes maps the user-facing timeframe labels to durations.
var Timeframes = map[string]time.Duration{
	"1h":  time.Hour,
	"24h": 24 * time.Hour,
	"7d":  7 * 24 * time.Hour,
}

// RenderPriceChart draws price and liquidity over time as a PNG.
func RenderPriceChart(pairID, timeframe string, records []model.PriceRecord) ([]byte, error) {
	if len(records) < 2 {
		return nil, ErrNotEnoughData
	}

	times := make([]time.Time, len(records))
	prices := make([]float64, len(records))
	liquidity := make([]float64, len(records))
	for i, rec := range records {
		times[i] = rec.CreatedAt
		prices[i] = rec.Price.InexactFloat64()
		liquidity[i] = rec.Liquidity.InexactFloat64()
	}

	background := drawing.ColorFromHex("111111")
	graph := gochart.Chart{
		Title:      fmt.Sprintf("%s Price & Liquidity (%s)", pairID, timeframe),
		Background: gochart.Style{FillColor: background},
		Canvas:     gochart.Style{FillColor: background},
		XAxis: gochart.XAxis{
			Name: "Time",
		},
		YAxis: gochart.YAxis{
			Name: "Price (USD)",
		},
		YAxisSecondary: gochart.YAxis{
			Name: "Liquidity (USD)",
		},
		Series: []gochart.Series{
			gochart.TimeSeries{
				Name:    "Price (USD)",
				XValues: times,
				YValues: prices,
				Style:   gochart.Style{StrokeColor: drawing.ColorFromHex("00ff00")},
			},
			gochart.TimeSeries{
				Name:    "Liquidity (USD)",
				XValues: times,
				YValues: liquidity,
				YAxis:   gochart.YAxisSecondary,
				Style:   gochart.Style{StrokeColor: drawing.ColorFromHex("ff00ff")},
			},
		},
	}

	var buf bytes.Buffer
	if err := graph.Render(gochart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("render chart: %w", err)
	}
	return buf.Bytes(), nil
}
