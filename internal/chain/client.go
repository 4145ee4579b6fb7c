package chain

import (
	"context"
	"fmt"
	"math/big"
	"sort"
	"sync"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"

	"swapwatch/internal/model"
)

// Client wraps go-ethereum RPC and provides the pair and token reads the
// engine needs.
type Client struct {
	rpcClient *rpc.Client
	ethClient *ethclient.Client

	mu          sync.RWMutex
	tsCache     map[uint64]uint64
	token0Cache map[common.Address]common.Address
}

// NewClient creates a new chain client from the RPC URL.
func NewClient(ctx context.Context, rpcURL string) (*Client, error) {
	rpcClient, err := rpc.DialContext(ctx, rpcURL)
	if err != nil {
		return nil, err
	}

	return &Client{
		rpcClient:   rpcClient,
		ethClient:   ethclient.NewClient(rpcClient),
		tsCache:     make(map[uint64]uint64),
		token0Cache: make(map[common.Address]common.Address),
	}, nil
}

// Close closes the underlying RPC client.
func (c *Client) Close() {
	if c.rpcClient != nil {
		c.rpcClient.Close()
	}
}

// LatestBlockNumber returns the latest block number.
func (c *Client) LatestBlockNumber(ctx context.Context) (uint64, error) {
	return c.ethClient.BlockNumber(ctx)
}

// BlockTimestamp returns the block timestamp, using an in-memory cache.
func (c *Client) BlockTimestamp(ctx context.Context, number uint64) (uint64, error) {
	c.mu.RLock()
	ts, ok := c.tsCache[number]
	c.mu.RUnlock()
	if ok {
		return ts, nil
	}

	header, err := c.ethClient.HeaderByNumber(ctx, new(big.Int).SetUint64(number))
	if err != nil {
		return 0, err
	}

	ts = header.Time
	c.mu.Lock()
	c.tsCache[number] = ts
	c.mu.Unlock()

	return ts, nil
}

// GetReserves reads a pair's current raw reserves.
func (c *Client) GetReserves(ctx context.Context, pair common.Address) (*big.Int, *big.Int, error) {
	parsed, err := PairABI()
	if err != nil {
		return nil, nil, fmt.Errorf("parse pair abi: %w", err)
	}

	values, err := c.call(ctx, pair, parsed, "getReserves")
	if err != nil {
		return nil, nil, err
	}
	if len(values) < 2 {
		return nil, nil, fmt.Errorf("getReserves return size %d", len(values))
	}

	reserve0, err := asBigInt(values[0])
	if err != nil {
		return nil, nil, fmt.Errorf("reserve0: %w", err)
	}
	reserve1, err := asBigInt(values[1])
	if err != nil {
		return nil, nil, fmt.Errorf("reserve1: %w", err)
	}
	return reserve0, reserve1, nil
}

// Token0 returns the token occupying slot 0 of a pair, cached after the
// first read since it never changes.
func (c *Client) Token0(ctx context.Context, pair common.Address) (common.Address, error) {
	c.mu.RLock()
	token0, ok := c.token0Cache[pair]
	c.mu.RUnlock()
	if ok {
		return token0, nil
	}

	parsed, err := PairABI()
	if err != nil {
		return common.Address{}, fmt.Errorf("parse pair abi: %w", err)
	}

	values, err := c.call(ctx, pair, parsed, "token0")
	if err != nil {
		return common.Address{}, err
	}
	token0, err = asAddress(values[0])
	if err != nil {
		return common.Address{}, fmt.Errorf("token0: %w", err)
	}

	c.mu.Lock()
	c.token0Cache[pair] = token0
	c.mu.Unlock()

	return token0, nil
}

// Snapshot reads a pair's reserves and slot-0 token in one pass.
func (c *Client) Snapshot(ctx context.Context, pair common.Address) (model.ReserveSnapshot, error) {
	reserve0, reserve1, err := c.GetReserves(ctx, pair)
	if err != nil {
		return model.ReserveSnapshot{}, err
	}
	token0, err := c.Token0(ctx, pair)
	if err != nil {
		return model.ReserveSnapshot{}, err
	}
	return model.ReserveSnapshot{Reserve0: reserve0, Reserve1: reserve1, Token0: token0}, nil
}

// TotalSupply reads a token's total on-chain supply.
func (c *Client) TotalSupply(ctx context.Context, token common.Address) (*big.Int, error) {
	parsed, err := TokenABI()
	if err != nil {
		return nil, fmt.Errorf("parse token abi: %w", err)
	}

	values, err := c.call(ctx, token, parsed, "totalSupply")
	if err != nil {
		return nil, err
	}
	supply, err := asBigInt(values[0])
	if err != nil {
		return nil, fmt.Errorf("totalSupply: %w", err)
	}
	return supply, nil
}

// Balance returns the native coin balance of an address.
func (c *Client) Balance(ctx context.Context, address common.Address) (*big.Int, error) {
	return c.ethClient.BalanceAt(ctx, address, nil)
}

// SwapEvents returns validated swap events for the pair in the inclusive
// block range, ordered by block then log index.
func (c *Client) SwapEvents(ctx context.Context, pair common.Address, fromBlock, toBlock uint64) ([]model.SwapEvent, error) {
	parsed, err := PairABI()
	if err != nil {
		return nil, fmt.Errorf("parse pair abi: %w", err)
	}
	swapEvent := parsed.Events["Swap"]

	query := ethereum.FilterQuery{
		FromBlock: new(big.Int).SetUint64(fromBlock),
		ToBlock:   new(big.Int).SetUint64(toBlock),
		Addresses: []common.Address{pair},
		Topics:    [][]common.Hash{{swapEvent.ID}},
	}
	logs, err := c.ethClient.FilterLogs(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("filter swap logs: %w", err)
	}

	events := make([]model.SwapEvent, 0, len(logs))
	for _, log := range logs {
		if log.Removed {
			continue
		}

		values, err := swapEvent.Inputs.NonIndexed().Unpack(log.Data)
		if err != nil {
			return nil, fmt.Errorf("unpack swap log %s: %w", log.TxHash.Hex(), err)
		}
		if len(values) != 4 {
			return nil, fmt.Errorf("swap log %s: %d values", log.TxHash.Hex(), len(values))
		}

		amounts := make([]*big.Int, 4)
		for i, value := range values {
			amount, err := asBigInt(value)
			if err != nil {
				return nil, fmt.Errorf("swap log %s amount %d: %w", log.TxHash.Hex(), i, err)
			}
			amounts[i] = amount
		}

		var to common.Address
		if len(log.Topics) >= 3 {
			to = common.BytesToAddress(log.Topics[2].Bytes())
		}

		ts, err := c.BlockTimestamp(ctx, log.BlockNumber)
		if err != nil {
			return nil, fmt.Errorf("block timestamp %d: %w", log.BlockNumber, err)
		}

		event := model.SwapEvent{
			Amount0In:   amounts[0],
			Amount1In:   amounts[1],
			Amount0Out:  amounts[2],
			Amount1Out:  amounts[3],
			To:          to,
			TxHash:      log.TxHash.Hex(),
			BlockNumber: log.BlockNumber,
			LogIndex:    uint64(log.Index),
			Timestamp:   ts,
		}
		if err := event.Validate(); err != nil {
			return nil, err
		}
		events = append(events, event)
	}

	sort.Slice(events, func(i, j int) bool {
		if events[i].BlockNumber != events[j].BlockNumber {
			return events[i].BlockNumber < events[j].BlockNumber
		}
		return events[i].LogIndex < events[j].LogIndex
	})

	return events, nil
}

func (c *Client) call(ctx context.Context, to common.Address, parsed abi.ABI, method string) ([]interface{}, error) {
	data, err := parsed.Pack(method)
	if err != nil {
		return nil, fmt.Errorf("pack %s: %w", method, err)
	}
	msg := ethereum.CallMsg{To: &to, Data: data}
	resp, err := c.ethClient.CallContract(ctx, msg, nil)
	if err != nil {
		return nil, fmt.Errorf("call %s: %w", method, err)
	}
	values, err := parsed.Unpack(method, resp)
	if err != nil {
		return nil, fmt.Errorf("unpack %s: %w", method, err)
	}
	return values, nil
}

func asAddress(value interface{}) (common.Address, error) {
	switch v := value.(type) {
	case common.Address:
		return v, nil
	case *common.Address:
		return *v, nil
	default:
		return common.Address{}, fmt.Errorf("unsupported address type %T", value)
	}
}

func asBigInt(value interface{}) (*big.Int, error) {
	switch v := value.(type) {
	case *big.Int:
		return new(big.Int).Set(v), nil
	case big.Int:
		return new(big.Int).Set(&v), nil
	case uint8:
		return new(big.Int).SetUint64(uint64(v)), nil
	case uint16:
		return new(big.Int).SetUint64(uint64(v)), nil
	case uint32:
		return new(big.Int).SetUint64(uint64(v)), nil
	case uint64:
		return new(big.Int).SetUint64(v), nil
	default:
		return nil, fmt.Errorf("unsupported int type %T", value)
	}
}
