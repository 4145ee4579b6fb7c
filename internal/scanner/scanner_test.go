package scanner

import (
	"context"
	"errors"
	"math/big"
	"sync"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"

	"swapwatch/internal/model"
)

type fakeEventSource struct {
	latest uint64
	token0 common.Address
	events map[common.Address][]model.SwapEvent
}

func (f *fakeEventSource) LatestBlockNumber(_ context.Context) (uint64, error) {
	return f.latest, nil
}

func (f *fakeEventSource) Token0(_ context.Context, _ common.Address) (common.Address, error) {
	return f.token0, nil
}

func (f *fakeEventSource) SwapEvents(_ context.Context, pair common.Address, fromBlock, toBlock uint64) ([]model.SwapEvent, error) {
	var out []model.SwapEvent
	for _, event := range f.events[pair] {
		if event.BlockNumber >= fromBlock && event.BlockNumber <= toBlock {
			out = append(out, event)
		}
	}
	return out, nil
}

type fakePrices struct {
	metrics model.PairMetrics
	err     error
}

func (f *fakePrices) Metrics(_ context.Context, _ string) (model.PairMetrics, error) {
	if f.err != nil {
		return model.PairMetrics{}, f.err
	}
	return f.metrics, nil
}

type fakeTradeStore struct {
	mu      sync.Mutex
	txs     map[string]model.TransactionRecord
	cursors map[string]uint64
}

func newFakeTradeStore() *fakeTradeStore {
	return &fakeTradeStore{
		txs:     make(map[string]model.TransactionRecord),
		cursors: make(map[string]uint64),
	}
}

func (f *fakeTradeStore) AppendTransaction(_ context.Context, rec model.TransactionRecord) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.txs[rec.TxHash]; ok {
		return false, nil
	}
	f.txs[rec.TxHash] = rec
	return true, nil
}

func (f *fakeTradeStore) LoadCursor(_ context.Context, name string) (uint64, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	cursor, ok := f.cursors[name]
	return cursor, ok, nil
}

func (f *fakeTradeStore) SaveCursor(_ context.Context, name string, block uint64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cursors[name] = block
	return nil
}

type fakeAlerts struct {
	mu    sync.Mutex
	calls []string
}

func (f *fakeAlerts) Dispatch(_ context.Context, _ model.Pair, event model.SwapEvent, _ Classification, _ model.PairMetrics) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, event.TxHash)
	return 1, nil
}

func buyEvent(txHash string, block uint64) model.SwapEvent {
	return model.SwapEvent{
		Amount0In:   big.NewInt(0),
		Amount1In:   big.NewInt(100),
		Amount0Out:  big.NewInt(50),
		Amount1Out:  big.NewInt(0),
		TxHash:      txHash,
		BlockNumber: block,
		Timestamp:   1_700_000_000,
	}
}

func newTestScanner(chain *fakeEventSource, prices PriceSource, store TradeStore, alerts AlertSink) *Scanner {
	cfg := Config{
		Pairs:     []model.Pair{testPair()},
		BatchSize: 10,
	}
	return NewScanner(cfg, chain, prices, store, alerts, nil)
}

func TestScanOnceProcessesBuy(t *testing.T) {
	pair := testPair()
	chain := &fakeEventSource{
		latest: 100,
		token0: baseAddr,
		events: map[common.Address][]model.SwapEvent{
			pair.Address: {buyEvent("0xaaa", 100)},
		},
	}
	prices := &fakePrices{metrics: model.PairMetrics{Price: decimal.NewFromInt(500)}}
	store := newFakeTradeStore()
	alerts := &fakeAlerts{}

	sc := newTestScanner(chain, prices, store, alerts)
	if err := sc.ScanOnce(context.Background()); err != nil {
		t.Fatalf("ScanOnce: %v", err)
	}

	rec, ok := store.txs["0xaaa"]
	if !ok {
		t.Fatal("transaction not recorded")
	}
	wantAmount := decimal.RequireFromString("0.00000005")
	if !rec.Amount.Equal(wantAmount) {
		t.Errorf("amount = %s, want %s", rec.Amount, wantAmount)
	}
	if !rec.USDValue.Equal(wantAmount.Mul(decimal.NewFromInt(500))) {
		t.Errorf("usd value = %s", rec.USDValue)
	}
	if len(alerts.calls) != 1 || alerts.calls[0] != "0xaaa" {
		t.Errorf("alert calls = %v", alerts.calls)
	}
	if cursor := store.cursors["scanner:"+pair.ID]; cursor != 100 {
		t.Errorf("cursor = %d, want 100", cursor)
	}
}

func TestScanOnceDeduplicatesTxHash(t *testing.T) {
	pair := testPair()
	// The same swap appears twice in one pass and again after a cursor reset.
	chain := &fakeEventSource{
		latest: 100,
		token0: baseAddr,
		events: map[common.Address][]model.SwapEvent{
			pair.Address: {buyEvent("0xaaa", 100), buyEvent("0xaaa", 100)},
		},
	}
	prices := &fakePrices{metrics: model.PairMetrics{Price: decimal.NewFromInt(1)}}
	store := newFakeTradeStore()
	alerts := &fakeAlerts{}

	sc := newTestScanner(chain, prices, store, alerts)
	if err := sc.ScanOnce(context.Background()); err != nil {
		t.Fatalf("first pass: %v", err)
	}

	delete(store.cursors, "scanner:"+pair.ID)
	if err := sc.ScanOnce(context.Background()); err != nil {
		t.Fatalf("second pass: %v", err)
	}

	if len(store.txs) != 1 {
		t.Errorf("transactions recorded = %d, want 1", len(store.txs))
	}
	if len(alerts.calls) != 1 {
		t.Errorf("alerts sent = %d, want 1", len(alerts.calls))
	}
}

func TestScanOncePriceFailureSkipsBuy(t *testing.T) {
	pair := testPair()
	chain := &fakeEventSource{
		latest: 100,
		token0: baseAddr,
		events: map[common.Address][]model.SwapEvent{
			pair.Address: {buyEvent("0xaaa", 100)},
		},
	}
	prices := &fakePrices{err: errors.New("rpc down")}
	store := newFakeTradeStore()
	alerts := &fakeAlerts{}

	sc := newTestScanner(chain, prices, store, alerts)
	if err := sc.ScanOnce(context.Background()); err != nil {
		t.Fatalf("ScanOnce: %v", err)
	}

	if len(store.txs) != 0 {
		t.Errorf("buy recorded despite unavailable price: %+v", store.txs)
	}
	if len(alerts.calls) != 0 {
		t.Errorf("alert sent despite unavailable price: %v", alerts.calls)
	}
}

func TestScanOnceIgnoresSells(t *testing.T) {
	pair := testPair()
	sell := model.SwapEvent{
		Amount0In:   big.NewInt(50),
		Amount1In:   big.NewInt(0),
		Amount0Out:  big.NewInt(0),
		Amount1Out:  big.NewInt(100),
		TxHash:      "0xbbb",
		BlockNumber: 100,
	}
	chain := &fakeEventSource{
		latest: 100,
		token0: baseAddr,
		events: map[common.Address][]model.SwapEvent{
			pair.Address: {sell},
		},
	}
	prices := &fakePrices{metrics: model.PairMetrics{Price: decimal.NewFromInt(1)}}
	store := newFakeTradeStore()
	alerts := &fakeAlerts{}

	sc := newTestScanner(chain, prices, store, alerts)
	if err := sc.ScanOnce(context.Background()); err != nil {
		t.Fatalf("ScanOnce: %v", err)
	}

	if len(store.txs) != 0 || len(alerts.calls) != 0 {
		t.Errorf("sell must not be recorded or alerted: txs=%v alerts=%v", store.txs, alerts.calls)
	}
}

func TestScanOnceStartsAtTipWithoutCursor(t *testing.T) {
	pair := testPair()
	// Events strictly below the tip must be invisible on the first pass.
	chain := &fakeEventSource{
		latest: 100,
		token0: baseAddr,
		events: map[common.Address][]model.SwapEvent{
			pair.Address: {buyEvent("0xold", 50), buyEvent("0xtip", 100)},
		},
	}
	prices := &fakePrices{metrics: model.PairMetrics{Price: decimal.NewFromInt(1)}}
	store := newFakeTradeStore()
	alerts := &fakeAlerts{}

	sc := newTestScanner(chain, prices, store, alerts)
	if err := sc.ScanOnce(context.Background()); err != nil {
		t.Fatalf("ScanOnce: %v", err)
	}

	if _, ok := store.txs["0xold"]; ok {
		t.Error("pre-tip event backfilled on first pass")
	}
	if _, ok := store.txs["0xtip"]; !ok {
		t.Error("tip event not processed")
	}
}

func TestScanOnceResumesFromCursor(t *testing.T) {
	pair := testPair()
	chain := &fakeEventSource{
		latest: 100,
		token0: baseAddr,
		events: map[common.Address][]model.SwapEvent{
			pair.Address: {buyEvent("0xaaa", 90), buyEvent("0xbbb", 95)},
		},
	}
	prices := &fakePrices{metrics: model.PairMetrics{Price: decimal.NewFromInt(1)}}
	store := newFakeTradeStore()
	store.cursors["scanner:"+pair.ID] = 92
	alerts := &fakeAlerts{}

	sc := newTestScanner(chain, prices, store, alerts)
	if err := sc.ScanOnce(context.Background()); err != nil {
		t.Fatalf("ScanOnce: %v", err)
	}

	if _, ok := store.txs["0xaaa"]; ok {
		t.Error("event before cursor reprocessed")
	}
	if _, ok := store.txs["0xbbb"]; !ok {
		t.Error("event after cursor not processed")
	}
}
