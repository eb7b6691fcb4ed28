// issue-dev-token signs a session token for local development, so write
// routes can be exercised without a wallet login.
package main

import (
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/solexplorer/solexplorer/shared/config"
	"github.com/solexplorer/solexplorer/shared/domain"
	"github.com/solexplorer/solexplorer/shared/jwt"
)

func main() {
	var (
		configFolder string
		wallet       string
		profileId    string
		ttl          time.Duration
	)
	flag.StringVar(&configFolder, "config_folder", "backend/config", "path to folder with configs")
	flag.StringVar(&wallet, "wallet", "", "wallet address the token is issued for")
	flag.StringVar(&profileId, "profile", "", "tapestry profile id (optional)")
	flag.DurationVar(&ttl, "ttl", 0, "token lifetime, defaults to jwt_ttl from config")
	flag.Parse()

	if err := domain.ValidateAddress(wallet); err != nil {
		log.Fatalf("Invalid -wallet: %v", err)
	}

	cfg := config.MustLoad(configFolder)
	if ttl == 0 {
		ttl = cfg.JwtTTL()
	}

	token, err := jwt.New(cfg.JwtKey(), ttl, cfg.Private.DynamicEnvironmentID).NewToken(domain.Identity{
		Wallet:    wallet,
		ProfileId: profileId,
	})
	if err != nil {
		log.Fatalf("Failed to sign token: %v", err)
	}

	fmt.Println(token)
}
