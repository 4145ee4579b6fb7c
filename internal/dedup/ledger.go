// Package dedup guards against processing the same on-chain transaction
// twice. The authoritative claim is the uniqueness constraint on persisted
// transaction records; Memory is a cheap in-process guard in front of it.
package dedup

import (
	"context"
	"sync"
)

// Ledger records processed transaction hashes and rejects replays. TryClaim
// returns true exactly once per hash, including under concurrent calls.
type Ledger interface {
	TryClaim(ctx context.Context, txHash string) (bool, error)
}

// Memory is an in-process Ledger.
type Memory struct {
	mu   sync.Mutex
	seen map[string]struct{}
}

func NewMemory() *Memory {
	return &Memory{seen: make(map[string]struct{})}
}

// TryClaim claims the hash if it has not been seen before.
func (m *Memory) TryClaim(_ context.Context, txHash string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.seen[txHash]; ok {
		return false, nil
	}
	m.seen[txHash] = struct{}{}
	return true, nil
}
