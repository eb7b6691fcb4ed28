package config

import (
	"fmt"
	"os"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v2"
)

type Config struct {
	Public  Public
	Private Private
}

type Public struct {
	Port           string   `yaml:"port" validate:"required"`
	LogLevel       string   `yaml:"log_level"`
	LogJSON        bool     `yaml:"log_json"`
	AllowedOrigins []string `yaml:"allowed_origins"`
	SecureHeaders  bool     `yaml:"secure_headers"` // enables HSTS, only behind https

	UpstreamTimeout time.Duration `yaml:"upstream_timeout" validate:"required"`
	JwtTTL          time.Duration `yaml:"jwt_ttl" validate:"required"`

	Upstreams Upstreams `yaml:"upstreams"`

	FeeWallet      string `yaml:"fee_wallet"`
	PlatformFeeBps int    `yaml:"platform_fee_bps"`

	SolidScoreDedup time.Duration `yaml:"solid_score_dedup" validate:"required"`
	AuctionHouseTTL time.Duration `yaml:"auction_house_ttl" validate:"required"`
	CacheSize       int           `yaml:"cache_size"`
}

type Upstreams struct {
	TapestryURL       string `yaml:"tapestry_url" validate:"required,url"`
	TapestryNamespace string `yaml:"tapestry_namespace"`
	RPCURL            string `yaml:"rpc_url" validate:"required,url"`
	HeliusAPIURL      string `yaml:"helius_api_url" validate:"required,url"`
	BirdeyeURL        string `yaml:"birdeye_url" validate:"required,url"`
	JupiterPerpsURL   string `yaml:"jupiter_perps_url" validate:"required,url"`
	JupiterQuoteURL   string `yaml:"jupiter_quote_url" validate:"required,url"`
	MagicEdenURL      string `yaml:"magic_eden_url" validate:"required,url"`
	SolidScoreURL     string `yaml:"solid_score_url" validate:"required,url"`
}

type Private struct {
	TapestryAPIKey       string `yaml:"tapestry_api_key" validate:"required"`
	HeliusAPIKey         string `yaml:"helius_api_key"`
	MagicEdenAPIKey      string `yaml:"magic_eden_api_key"`
	BirdeyeAPIKey        string `yaml:"birdeye_api_key"`
	SolidScoreAPIKey     string `yaml:"solid_score_api_key"`
	DynamicEnvironmentID string `yaml:"dynamic_environment_id"`
	JwtKey               string `yaml:"jwt_key" validate:"required"`
}

func (s *Config) JwtKey() string {
	return s.Private.JwtKey
}

func (s *Config) JwtTTL() time.Duration {
	return s.Public.JwtTTL
}

// envOverrides maps environment variables onto config fields. They win over
// the yaml files so deployments can keep secrets out of the config folder.
func (s *Config) envOverrides() map[string]*string {
	return map[string]*string{
		"PORT":                               &s.Public.Port,
		"TAPESTRY_URL":                       &s.Public.Upstreams.TapestryURL,
		"RPC_URL":                            &s.Public.Upstreams.RPCURL,
		"SOLID_SCORE_URL":                    &s.Public.Upstreams.SolidScoreURL,
		"FEE_WALLET":                         &s.Public.FeeWallet,
		"TAPESTRY_API_KEY":                   &s.Private.TapestryAPIKey,
		"HELIUS_API_KEY":                     &s.Private.HeliusAPIKey,
		"NEXT_ME_API_KEY":                    &s.Private.MagicEdenAPIKey,
		"NEXT_PUBLIC_BIRDEYE_API_KEY":        &s.Private.BirdeyeAPIKey,
		"SOLID_SCORE_API_KEY":                &s.Private.SolidScoreAPIKey,
		"NEXT_PUBLIC_DYNAMIC_ENVIRONMENT_ID": &s.Private.DynamicEnvironmentID,
		"JWT_KEY":                            &s.Private.JwtKey,
	}
}

func (s *Config) applyEnv(lookup func(string) (string, bool)) error {
	for name, field := range s.envOverrides() {
		if v, ok := lookup(name); ok && v != "" {
			*field = v
		}
	}
	if v, ok := lookup("PLATFORM_FEE_BPS"); ok && v != "" {
		bps, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("invalid PLATFORM_FEE_BPS %q: must be an integer", v)
		}
		s.Public.PlatformFeeBps = bps
	}
	return nil
}

func (s *Config) Validate() error {
	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.Struct(s.Public); err != nil {
		return fmt.Errorf("invalid public config: %w", err)
	}
	if err := validate.Struct(s.Private); err != nil {
		return fmt.Errorf("invalid private config: %w", err)
	}
	if s.Public.PlatformFeeBps < 0 || s.Public.PlatformFeeBps > 10_000 {
		return fmt.Errorf("invalid public config: platform_fee_bps must be within [0, 10000]")
	}
	return nil
}

func mustLoadPath(configPath string, output interface{}) {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		panic("config file does not exist: " + configPath)
	}
	configFile, err := os.ReadFile(configPath)
	if err != nil {
		panic("can't read config file: " + configPath)
	}

	if err := yaml.Unmarshal(configFile, output); err != nil {
		panic("can't unmarshal config file " + configPath + ": " + err.Error())
	}
}

// MustLoad reads public.yaml and private.yaml from configFolder, applies
// environment overrides and panics on missing required fields.
// private.yaml may be absent when every secret comes from the environment.
func MustLoad(configFolder string) *Config {
	var cfg Config
	mustLoadPath(path.Join(configFolder, "public.yaml"), &cfg.Public)

	privatePath := path.Join(configFolder, "private.yaml")
	if _, err := os.Stat(privatePath); err == nil {
		mustLoadPath(privatePath, &cfg.Private)
	}

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		panic(err.Error())
	}
	if err := cfg.Validate(); err != nil {
		panic(err.Error())
	}
	return &cfg
}
