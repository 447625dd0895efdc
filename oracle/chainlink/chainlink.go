// Package chainlink reads prices from an on-chain AggregatorV3 contract.
package chainlink

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"

	"github.com/xraph/custody/oracle"
)

// AggregatorV3ABI is the subset of AggregatorV3Interface the feed calls.
const AggregatorV3ABI = `[
  {"inputs":[],"name":"decimals","outputs":[{"internalType":"uint8","name":"","type":"uint8"}],"stateMutability":"view","type":"function"},
  {"inputs":[],"name":"description","outputs":[{"internalType":"string","name":"","type":"string"}],"stateMutability":"view","type":"function"},
  {"inputs":[],"name":"latestRoundData","outputs":[
    {"internalType":"uint80","name":"roundId","type":"uint80"},
    {"internalType":"int256","name":"answer","type":"int256"},
    {"internalType":"uint256","name":"startedAt","type":"uint256"},
    {"internalType":"uint256","name":"updatedAt","type":"uint256"},
    {"internalType":"uint80","name":"answeredInRound","type":"uint80"}
  ],"stateMutability":"view","type":"function"}
]`

// ErrIncompleteRound is returned when the latest answer was carried over from
// an earlier round.
var ErrIncompleteRound = errors.New("chainlink: answer belongs to an earlier round")

// ContractCaller is the read-only part of an Ethereum client.
type ContractCaller interface {
	CallContract(ctx context.Context, call ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
}

// Feed is an oracle.Feed backed by an aggregator contract.
type Feed struct {
	caller  ContractCaller
	address common.Address
	abi     abi.ABI

	mu       sync.Mutex
	decimals *uint8
}

var _ oracle.Feed = (*Feed)(nil)

// New creates a Feed for the aggregator at address.
func New(caller ContractCaller, address common.Address) (*Feed, error) {
	parsed, err := abi.JSON(strings.NewReader(AggregatorV3ABI))
	if err != nil {
		return nil, fmt.Errorf("chainlink: parse abi: %w", err)
	}
	return &Feed{
		caller:  caller,
		address: address,
		abi:     parsed,
	}, nil
}

// Dial connects to an Ethereum JSON-RPC endpoint and returns a Feed for the
// aggregator at address.
func Dial(ctx context.Context, rawURL string, address common.Address) (*Feed, error) {
	client, err := ethclient.DialContext(ctx, rawURL)
	if err != nil {
		return nil, fmt.Errorf("chainlink: dial %s: %w", rawURL, err)
	}
	return New(client, address)
}

// Address returns the aggregator contract address.
func (f *Feed) Address() common.Address { return f.address }

// Source implements oracle.Feed.
func (f *Feed) Source() string { return "chainlink:" + f.address.Hex() }

// Decimals returns the aggregator's answer precision. The value is immutable
// on-chain, so it is fetched once.
func (f *Feed) Decimals(ctx context.Context) (uint8, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.decimals != nil {
		return *f.decimals, nil
	}

	out, err := f.call(ctx, "decimals")
	if err != nil {
		return 0, err
	}
	d, ok := out[0].(uint8)
	if !ok {
		return 0, fmt.Errorf("chainlink: decimals: unexpected type %T", out[0])
	}
	f.decimals = &d
	return d, nil
}

// Description returns the aggregator's pair description, e.g. "ETH / USD".
func (f *Feed) Description(ctx context.Context) (string, error) {
	out, err := f.call(ctx, "description")
	if err != nil {
		return "", err
	}
	s, ok := out[0].(string)
	if !ok {
		return "", fmt.Errorf("chainlink: description: unexpected type %T", out[0])
	}
	return s, nil
}

// LatestReading implements oracle.Feed.
func (f *Feed) LatestReading(ctx context.Context) (oracle.Reading, error) {
	decimals, err := f.Decimals(ctx)
	if err != nil {
		return oracle.Reading{}, err
	}

	out, err := f.call(ctx, "latestRoundData")
	if err != nil {
		return oracle.Reading{}, err
	}
	if len(out) != 5 {
		return oracle.Reading{}, fmt.Errorf("chainlink: latestRoundData: got %d values", len(out))
	}

	var (
		roundID, _         = out[0].(*big.Int)
		answer, _          = out[1].(*big.Int)
		updatedAt, _       = out[3].(*big.Int)
		answeredInRound, _ = out[4].(*big.Int)
	)
	if roundID == nil || answer == nil || updatedAt == nil || answeredInRound == nil {
		return oracle.Reading{}, fmt.Errorf("chainlink: latestRoundData: unexpected output types")
	}
	if answeredInRound.Cmp(roundID) < 0 {
		return oracle.Reading{}, fmt.Errorf("%w: round %s answered in %s", ErrIncompleteRound, roundID, answeredInRound)
	}

	var ts time.Time
	if updatedAt.Sign() > 0 {
		ts = time.Unix(updatedAt.Int64(), 0).UTC()
	}

	return oracle.Reading{
		RoundID:   roundID,
		Price:     answer,
		Decimals:  decimals,
		UpdatedAt: ts,
	}, nil
}

func (f *Feed) call(ctx context.Context, method string) ([]interface{}, error) {
	data, err := f.abi.Pack(method)
	if err != nil {
		return nil, fmt.Errorf("chainlink: pack %s: %w", method, err)
	}

	to := f.address
	raw, err := f.caller.CallContract(ctx, ethereum.CallMsg{To: &to, Data: data}, nil)
	if err != nil {
		return nil, fmt.Errorf("chainlink: call %s: %w", method, err)
	}

	out, err := f.abi.Unpack(method, raw)
	if err != nil {
		return nil, fmt.Errorf("chainlink: unpack %s: %w", method, err)
	}
	return out, nil
}
