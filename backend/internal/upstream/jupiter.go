package upstream

import (
	"context"
	"encoding/json"
	"time"

	"github.com/solexplorer/solexplorer/shared/domain"
	"github.com/solexplorer/solexplorer/shared/fetch"
)

// Jupiter covers the perps API and the swap quote API.
type Jupiter struct {
	perps          *fetch.Client
	quote          *fetch.Client
	feeWallet      domain.WalletAddress
	platformFeeBps int
}

func NewJupiter(perpsURL, quoteURL string, feeWallet domain.WalletAddress, platformFeeBps int, timeout time.Duration) *Jupiter {
	return &Jupiter{
		perps:          fetch.New(perpsURL, timeout),
		quote:          fetch.New(quoteURL, timeout),
		feeWallet:      feeWallet,
		platformFeeBps: platformFeeBps,
	}
}

func (j *Jupiter) Positions(ctx context.Context, wallet domain.WalletAddress) (json.RawMessage, error) {
	return j.perps.Get(ctx, "positions", fetch.Params{"walletAddress": wallet})
}

func (j *Jupiter) LimitOrders(ctx context.Context, wallet domain.WalletAddress) (json.RawMessage, error) {
	return j.perps.Get(ctx, "orders/limit", fetch.Params{"walletAddress": wallet})
}

func (j *Jupiter) Trades(ctx context.Context, wallet domain.WalletAddress) (json.RawMessage, error) {
	return j.perps.Get(ctx, "trades", fetch.Params{"walletAddress": wallet})
}

// QuoteRequest holds the swap quote inputs. Amount is in base units.
type QuoteRequest struct {
	InputMint   domain.MintAddress
	OutputMint  domain.MintAddress
	Amount      uint64
	SlippageBps int
	SwapMode    string // ExactIn or ExactOut
}

// Quote asks Jupiter for a route. The platform fee is only requested when a
// fee wallet is configured, otherwise the fee could not be collected.
func (j *Jupiter) Quote(ctx context.Context, q QuoteRequest) (json.RawMessage, error) {
	params := fetch.Params{
		"inputMint":  q.InputMint,
		"outputMint": q.OutputMint,
		"amount":     q.Amount,
	}
	if q.SlippageBps > 0 {
		params["slippageBps"] = q.SlippageBps
	}
	if q.SwapMode != "" {
		params["swapMode"] = q.SwapMode
	}
	if j.feeWallet != "" && j.platformFeeBps > 0 {
		params["platformFeeBps"] = j.platformFeeBps
	}
	return j.quote.Get(ctx, "quote", params)
}
