// Package redisfeed reads prices that an off-chain relay publishes into a
// Redis hash.
//
// The hash holds four fields:
//
//	price       integer price, scaled by 10^decimals
//	decimals    price precision
//	round       relay round counter
//	updated_at  unix seconds of the observation
package redisfeed

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/xraph/custody/oracle"
)

// Hash field names.
const (
	FieldPrice     = "price"
	FieldDecimals  = "decimals"
	FieldRound     = "round"
	FieldUpdatedAt = "updated_at"
)

// DefaultKey is the hash key used when none is configured.
const DefaultKey = "custody:price:eth-usd"

// ErrNoReading is returned when the hash does not exist.
var ErrNoReading = errors.New("redisfeed: no reading published")

// Feed is an oracle.Feed reading one Redis hash.
type Feed struct {
	rdb redis.Cmdable
	key string
}

var _ oracle.Feed = (*Feed)(nil)

// New creates a Feed reading key through rdb. An empty key means DefaultKey.
func New(rdb redis.Cmdable, key string) *Feed {
	if key == "" {
		key = DefaultKey
	}
	return &Feed{rdb: rdb, key: key}
}

// Dial creates a Feed with its own client for addr.
func Dial(addr, password string, db int, key string) *Feed {
	return New(redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	}), key)
}

// Source implements oracle.Feed.
func (f *Feed) Source() string { return "redis:" + f.key }

// LatestReading implements oracle.Feed.
func (f *Feed) LatestReading(ctx context.Context) (oracle.Reading, error) {
	fields, err := f.rdb.HGetAll(ctx, f.key).Result()
	if err != nil {
		return oracle.Reading{}, fmt.Errorf("redisfeed: hgetall %s: %w", f.key, err)
	}
	return parseReading(fields)
}

// Publish writes r into the hash. Relays and tests use it.
func (f *Feed) Publish(ctx context.Context, r oracle.Reading) error {
	if r.Price == nil {
		return errors.New("redisfeed: reading has no price")
	}

	round := "0"
	if r.RoundID != nil {
		round = r.RoundID.String()
	}
	err := f.rdb.HSet(ctx, f.key,
		FieldPrice, r.Price.String(),
		FieldDecimals, strconv.Itoa(int(r.Decimals)),
		FieldRound, round,
		FieldUpdatedAt, strconv.FormatInt(r.UpdatedAt.Unix(), 10),
	).Err()
	if err != nil {
		return fmt.Errorf("redisfeed: hset %s: %w", f.key, err)
	}
	return nil
}

func parseReading(fields map[string]string) (oracle.Reading, error) {
	if len(fields) == 0 {
		return oracle.Reading{}, ErrNoReading
	}

	price, ok := new(big.Int).SetString(fields[FieldPrice], 10)
	if !ok {
		return oracle.Reading{}, fmt.Errorf("redisfeed: invalid %s %q", FieldPrice, fields[FieldPrice])
	}

	decimals, err := strconv.ParseUint(fields[FieldDecimals], 10, 8)
	if err != nil {
		return oracle.Reading{}, fmt.Errorf("redisfeed: invalid %s: %w", FieldDecimals, err)
	}

	r := oracle.Reading{
		Price:    price,
		Decimals: uint8(decimals),
	}

	if s := fields[FieldRound]; s != "" {
		round, ok := new(big.Int).SetString(s, 10)
		if !ok {
			return oracle.Reading{}, fmt.Errorf("redisfeed: invalid %s %q", FieldRound, s)
		}
		r.RoundID = round
	}

	if s := fields[FieldUpdatedAt]; s != "" {
		sec, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return oracle.Reading{}, fmt.Errorf("redisfeed: invalid %s: %w", FieldUpdatedAt, err)
		}
		r.UpdatedAt = time.Unix(sec, 0).UTC()
	}

	return r, nil
}
