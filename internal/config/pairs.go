package config

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"

	"swapwatch/internal/model"
)

const (
	defaultRPCURL        = "https://rpc.vscblockchain.org"
	defaultBuyGIFURL     = "https://media.giphy.com/media/3o6ZtaO9BZHcOjmErm/giphy.gif"
	defaultExplorerTxURL = "https://explorer.vscblockchain.org/tx/"
)

// PairConfig is the file/flag representation of one tracked pair.
type PairConfig struct {
	ID            string `mapstructure:"id"`
	Address       string `mapstructure:"address"`
	BaseSymbol    string `mapstructure:"base_symbol"`
	BaseAddress   string `mapstructure:"base_address"`
	BaseDecimals  int32  `mapstructure:"base_decimals"`
	QuoteSymbol   string `mapstructure:"quote_symbol"`
	QuoteAddress  string `mapstructure:"quote_address"`
	QuoteDecimals int32  `mapstructure:"quote_decimals"`
	Anchor        bool   `mapstructure:"anchor"`
}

// DefaultPairs returns the built-in VSC contract table: the BESC-BUSDC anchor
// plus the two pairs priced through it.
func DefaultPairs() []PairConfig {
	const (
		bescCA  = "0x674f3d5ae8f6E0320e24522b77B853a671Bee7b0"
		vsgCA   = "0x83048f0Bf34FEeD8CEd419455a4320A735a92e9d"
		busdcCA = "0x148851477f0c7128DCDaaC64fa011814e785A978"
		moneyCA = "0xAf8e4A9b508efda0502ed4DCabDbdc2F73AEa1CE"
	)

	return []PairConfig{
		{
			ID:            "BESC-BUSDC",
			Address:       "0xd321497f2f85a21fb94eefb21294e418fae421ab",
			BaseSymbol:    "BESC",
			BaseAddress:   bescCA,
			BaseDecimals:  9,
			QuoteSymbol:   "BUSDC",
			QuoteAddress:  busdcCA,
			QuoteDecimals: 6,
			Anchor:        true,
		},
		{
			ID:            "BESC-VSG",
			Address:       "0x80216abe4ace3cd7cd923df826cf81da47e8e958",
			BaseSymbol:    "BESC",
			BaseAddress:   bescCA,
			BaseDecimals:  9,
			QuoteSymbol:   "VSG",
			QuoteAddress:  vsgCA,
			QuoteDecimals: 18,
		},
		{
			ID:            "Money-BESC",
			Address:       "0xdf9672edc87e198197dc3fa64997a99bab9aba54",
			BaseSymbol:    "Money",
			BaseAddress:   moneyCA,
			BaseDecimals:  18,
			QuoteSymbol:   "BESC",
			QuoteAddress:  bescCA,
			QuoteDecimals: 9,
		},
	}
}

// TrackedPairs validates the pair table and converts it into model pairs.
// Exactly one anchor pair is required, and every derived pair must share a
// token with the anchor's base so it can be priced in one hop.
func (c Config) TrackedPairs() ([]model.Pair, error) {
	if len(c.Pairs) == 0 {
		return nil, fmt.Errorf("at least one tracked pair is required")
	}

	pairs := make([]model.Pair, 0, len(c.Pairs))
	seen := make(map[string]struct{}, len(c.Pairs))
	var anchor *model.Pair

	for _, pc := range c.Pairs {
		pair, err := pc.toPair()
		if err != nil {
			return nil, err
		}
		if _, ok := seen[pair.ID]; ok {
			return nil, fmt.Errorf("duplicate pair id %q", pair.ID)
		}
		seen[pair.ID] = struct{}{}
		pairs = append(pairs, pair)
		if pair.Anchor {
			if anchor != nil {
				return nil, fmt.Errorf("multiple anchor pairs: %q and %q", anchor.ID, pair.ID)
			}
			anchor = &pairs[len(pairs)-1]
		}
	}

	if anchor == nil {
		return nil, fmt.Errorf("exactly one anchor pair is required")
	}

	for _, pair := range pairs {
		if pair.Anchor {
			continue
		}
		if !pair.Contains(anchor.Base.Address) {
			return nil, fmt.Errorf("pair %q does not share a token with anchor %q", pair.ID, anchor.ID)
		}
	}

	return pairs, nil
}

func (pc PairConfig) toPair() (model.Pair, error) {
	if pc.ID == "" {
		return model.Pair{}, fmt.Errorf("pair id is required")
	}
	addr, err := parseAddress(pc.Address, pc.ID, "pair")
	if err != nil {
		return model.Pair{}, err
	}
	baseAddr, err := parseAddress(pc.BaseAddress, pc.ID, "base token")
	if err != nil {
		return model.Pair{}, err
	}
	quoteAddr, err := parseAddress(pc.QuoteAddress, pc.ID, "quote token")
	if err != nil {
		return model.Pair{}, err
	}
	if pc.BaseDecimals < 0 || pc.QuoteDecimals < 0 {
		return model.Pair{}, fmt.Errorf("pair %q: negative decimals", pc.ID)
	}

	return model.Pair{
		ID:      pc.ID,
		Address: addr,
		Base: model.Token{
			Address:  baseAddr,
			Symbol:   pc.BaseSymbol,
			Decimals: pc.BaseDecimals,
		},
		Quote: model.Token{
			Address:  quoteAddr,
			Symbol:   pc.QuoteSymbol,
			Decimals: pc.QuoteDecimals,
		},
		Anchor: pc.Anchor,
	}, nil
}

func parseAddress(input, pairID, kind string) (common.Address, error) {
	if !common.IsHexAddress(input) {
		return common.Address{}, fmt.Errorf("pair %q: invalid %s address: %s", pairID, kind, input)
	}
	return common.HexToAddress(input), nil
}
