package chart

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"swapwatch/internal/model"
)

func TestRenderPriceChartNotEnoughData(t *testing.T) {
	_, err := RenderPriceChart("BESC-BUSDC", "24h", nil)
	if !errors.Is(err, ErrNotEnoughData) {
		t.Fatalf("expected ErrNotEnoughData, got %v", err)
	}

	one := []model.PriceRecord{{PairID: "BESC-BUSDC", Price: decimal.NewFromInt(1), CreatedAt: time.Now()}}
	_, err = RenderPriceChart("BESC-BUSDC", "24h", one)
	if !errors.Is(err, ErrNotEnoughData) {
		t.Fatalf("expected ErrNotEnoughData, got %v", err)
	}
}

func TestRenderPriceChartPNG(t *testing.T) {
	now := time.Now()
	records := []model.PriceRecord{
		{PairID: "BESC-BUSDC", Price: decimal.NewFromInt(400), Liquidity: decimal.NewFromInt(900), CreatedAt: now.Add(-2 * time.Hour)},
		{PairID: "BESC-BUSDC", Price: decimal.NewFromInt(450), Liquidity: decimal.NewFromInt(950), CreatedAt: now.Add(-time.Hour)},
		{PairID: "BESC-BUSDC", Price: decimal.NewFromInt(500), Liquidity: decimal.NewFromInt(1000), CreatedAt: now},
	}

	png, err := RenderPriceChart("BESC-BUSDC", "24h", records)
	if err != nil {
		t.Fatalf("RenderPriceChart: %v", err)
	}
	if !bytes.HasPrefix(png, []byte("\x89PNG")) {
		t.Fatalf("output is not a PNG, first bytes: %x", png[:min(len(png), 8)])
	}
}
