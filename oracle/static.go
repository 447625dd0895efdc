package oracle

import (
	"context"
	"fmt"
	"math/big"
	"sync"
	"time"
)

// StaticFeed is a deterministic Feed with a caller-controlled price. It
// behaves like a mock aggregator: every UpdateAnswer starts a new round.
type StaticFeed struct {
	mu        sync.RWMutex
	decimals  uint8
	answer    *big.Int
	round     int64
	updatedAt time.Time
	err       error
	now       func() time.Time
}

var _ Feed = (*StaticFeed)(nil)

// NewStaticFeed creates a feed answering answer with the given precision,
// e.g. NewStaticFeed(8, big.NewInt(2000e8)) for 2000.00000000.
func NewStaticFeed(decimals uint8, answer *big.Int) *StaticFeed {
	f := &StaticFeed{
		decimals: decimals,
		now:      time.Now,
	}
	f.UpdateAnswer(answer)
	return f
}

// UpdateAnswer replaces the price and stamps it with the current time.
func (f *StaticFeed) UpdateAnswer(answer *big.Int) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.answer = new(big.Int).Set(answer)
	f.round++
	f.updatedAt = f.now()
}

// SetUpdatedAt backdates the current reading.
func (f *StaticFeed) SetUpdatedAt(t time.Time) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updatedAt = t
}

// SetError makes every read fail with err until it is cleared with nil.
func (f *StaticFeed) SetError(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.err = err
}

// LatestReading implements Feed.
func (f *StaticFeed) LatestReading(_ context.Context) (Reading, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	if f.err != nil {
		return Reading{}, f.err
	}
	return Reading{
		RoundID:   big.NewInt(f.round),
		Price:     new(big.Int).Set(f.answer),
		Decimals:  f.decimals,
		UpdatedAt: f.updatedAt,
	}, nil
}

// Source implements Feed.
func (f *StaticFeed) Source() string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return fmt.Sprintf("static:%s/1e%d", f.answer, f.decimals)
}
