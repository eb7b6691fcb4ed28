// Package upstream wraps the third-party services the backend proxies to.
// Credentials are injected here and never leave the server.
package upstream

import (
	"errors"
	"net/http"

	"github.com/solexplorer/solexplorer/shared/config"
	internal_errors "github.com/solexplorer/solexplorer/shared/errors"
	"github.com/solexplorer/solexplorer/shared/fetch"
)

type Clients struct {
	Tapestry   *Tapestry
	Birdeye    *Birdeye
	Helius     *Helius
	Jupiter    *Jupiter
	MagicEden  *MagicEden
	SolidScore *SolidScore
}

func New(cfg *config.Config) *Clients {
	u := cfg.Public.Upstreams
	timeout := cfg.Public.UpstreamTimeout
	return &Clients{
		Tapestry:   NewTapestry(u.TapestryURL, cfg.Private.TapestryAPIKey, u.TapestryNamespace, timeout),
		Birdeye:    NewBirdeye(u.BirdeyeURL, cfg.Private.BirdeyeAPIKey, timeout),
		Helius:     NewHelius(u.RPCURL, u.HeliusAPIURL, cfg.Private.HeliusAPIKey, timeout),
		Jupiter:    NewJupiter(u.JupiterPerpsURL, u.JupiterQuoteURL, cfg.Public.FeeWallet, cfg.Public.PlatformFeeBps, timeout),
		MagicEden:  NewMagicEden(u.MagicEdenURL, cfg.Private.MagicEdenAPIKey, timeout),
		SolidScore: NewSolidScore(u.SolidScoreURL, cfg.Private.SolidScoreAPIKey, timeout),
	}
}

// notFoundAs turns an upstream 404 into a client-facing 404. Any other
// upstream failure is returned as is and ends up as a 500.
func notFoundAs(err error, message string) error {
	if err == nil {
		return nil
	}
	if fetch.StatusOf(err) == http.StatusNotFound {
		return internal_errors.NotFound(message)
	}
	return err
}

var errEmptyResult = errors.New("upstream returned an empty result")
