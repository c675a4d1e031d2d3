package market

import (
	"context"
	"errors"
	"math/big"
	"strings"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

const (
	pairABIJSON = `[{"constant":true,"inputs":[],"name":"getReserves","outputs":[{"internalType":"uint112","name":"_reserve0","type":"uint112"},{"internalType":"uint112","name":"_reserve1","type":"uint112"},{"internalType":"uint32","name":"_blockTimestampLast","type":"uint32"}],"payable":false,"stateMutability":"view","type":"function"}]`
)

var pairABI abi.ABI

func init() {
	parsed, err := abi.JSON(strings.NewReader(pairABIJSON))
	if err != nil {
		panic("failed to parse pair ABI: " + err.Error())
	}
	pairABI = parsed
}

// PairConfig describes one on-chain pool to read.
type PairConfig struct {
	Venue     string
	Address   string
	Token0    string
	Token1    string
	Decimals0 int
	Decimals1 int
	Fee       decimal.Decimal
}

// ChainOptions parameterise the on-chain reader.
type ChainOptions struct {
	RPCURL  string
	Timeout time.Duration
	Pairs   []PairConfig
}

// Chain reads reserves of Uniswap-V2-style pair contracts over Ethereum RPC.
type Chain struct {
	opts      ChainOptions
	logger    zerolog.Logger
	client    *ethclient.Client
	clientMux sync.Mutex
}

// NewChain builds an on-chain reserve reader.
func NewChain(opts ChainOptions, logger zerolog.Logger) *Chain {
	return &Chain{opts: opts, logger: logger.With().Str("component", "chain_reader").Logger()}
}

// Snapshots calls getReserves on every configured pair. A pair that fails to
// read is logged and skipped; the call errors only when nothing was readable.
func (c *Chain) Snapshots(ctx context.Context) ([]PoolSnapshot, error) {
	if c.opts.RPCURL == "" {
		return nil, errors.New("ethereum rpc url not configured")
	}
	if len(c.opts.Pairs) == 0 {
		return nil, errors.New("no pairs configured")
	}

	timeout := c.opts.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	var cancel context.CancelFunc
	ctx, cancel = context.WithTimeout(ctx, timeout)
	defer cancel()

	client, err := c.getClient(ctx)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	snapshots := make([]PoolSnapshot, 0, len(c.opts.Pairs))
	var lastErr error
	for _, pair := range c.opts.Pairs {
		snap, err := c.readPair(ctx, client, pair, now)
		if err != nil {
			lastErr = err
			c.logger.Warn().Err(err).Str("venue", pair.Venue).Str("pair", pair.Address).Msg("skipping unreadable pair")
			continue
		}
		snapshots = append(snapshots, snap)
	}

	if len(snapshots) == 0 {
		return nil, lastErr
	}
	return snapshots, nil
}

func (c *Chain) readPair(ctx context.Context, client *ethclient.Client, pair PairConfig, observedAt time.Time) (PoolSnapshot, error) {
	addr := common.HexToAddress(pair.Address)

	payload, err := pairABI.Pack("getReserves")
	if err != nil {
		return PoolSnapshot{}, err
	}

	res, err := client.CallContract(ctx, ethereum.CallMsg{To: &addr, Data: payload}, nil)
	if err != nil {
		return PoolSnapshot{}, err
	}

	outputs, err := pairABI.Unpack("getReserves", res)
	if err != nil {
		return PoolSnapshot{}, err
	}
	if len(outputs) != 3 {
		return PoolSnapshot{}, errors.New("unexpected getReserves response")
	}

	raw0, ok := outputs[0].(*big.Int)
	if !ok {
		return PoolSnapshot{}, errors.New("failed to decode reserve0")
	}
	raw1, ok := outputs[1].(*big.Int)
	if !ok {
		return PoolSnapshot{}, errors.New("failed to decode reserve1")
	}

	fee := pair.Fee
	if fee.IsZero() {
		fee = defaultFee
	}

	return PoolSnapshot{
		Venue:      pair.Venue,
		Pair:       pair.Address,
		Token0:     pair.Token0,
		Token1:     pair.Token1,
		Reserve0:   decimal.NewFromBigInt(raw0, -int32(pair.Decimals0)),
		Reserve1:   decimal.NewFromBigInt(raw1, -int32(pair.Decimals1)),
		Fee:        fee,
		ObservedAt: observedAt,
	}, nil
}

func (c *Chain) getClient(ctx context.Context) (*ethclient.Client, error) {
	c.clientMux.Lock()
	defer c.clientMux.Unlock()

	if c.client != nil {
		return c.client, nil
	}

	client, err := ethclient.DialContext(ctx, c.opts.RPCURL)
	if err != nil {
		return nil, err
	}
	c.client = client
	return client, nil
}

// Name identifies the reader in logs.
func (c *Chain) Name() string {
	return "chain"
}

var _ ReserveReader = (*Chain)(nil)
