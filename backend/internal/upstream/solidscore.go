package upstream

import (
	"time"

	"github.com/solexplorer/solexplorer/shared/fetch"
)

// SolidScore is the wallet reputation API. Reads go through a query.Client
// in the service layer, so this only builds the configured fetch client.
type SolidScore struct {
	Client *fetch.Client
}

const SolidScoreEndpoint = "score/{id}"

func NewSolidScore(baseURL, apiKey string, timeout time.Duration) *SolidScore {
	c := fetch.New(baseURL, timeout)
	if apiKey != "" {
		c.Header.Set("x-api-key", apiKey)
	}
	return &SolidScore{Client: c}
}
