package main

import (
	"errors"
	"fmt"
	"time"

	"proof-of-learning-go/internal/ledger"

	"github.com/ardanlabs/conf"
)

type Config struct {
	Port          string `conf:"default:8080,env:PORT"`
	DBCon         string `conf:"default:user=ps_user password=ps_password dbname=backend sslmode=disable host=localhost,env:DB_CONN"`
	JWTKey        string `conf:"default:your_secret_key,env:JWT_KEY,noprint"`
	CatalogSource string `conf:"default:static,env:CATALOG_SOURCE"`

	Network       string `conf:"default:testnet,env:IOTA_NETWORK"`
	NodeURL       string `conf:"env:IOTA_NODE_URL"`
	PackageID     string `conf:"env:PACKAGE_ID"`
	ModuleName    string `conf:"default:certificate,env:MODULE_NAME"`
	ExplorerURL   string `conf:"default:https://explorer.rebased.iota.org,env:EXPLORER_URL"`
	BadgeImageURL string `conf:"default:/nft-badge.png,env:NFT_BADGE_IMAGE_URL"`
	Blockchain    bool   `conf:"default:true,env:BLOCKCHAIN_ENABLED"`

	WalletBridgeURL string        `conf:"default:http://localhost:9100,env:WALLET_BRIDGE_URL"`
	PollInterval    time.Duration `conf:"default:1s,env:POLL_INTERVAL"`

	SendgridKey string        `conf:"env:SENDGRID_KEY,noprint"`
	MailFrom    string        `conf:"default:no-reply@proof-of-learning.dev,env:MAIL_FROM"`
	NewRelicKey string        `conf:"env:NEW_RELIC_KEY,noprint"`
	SessionIdle time.Duration `conf:"default:2h,env:SESSION_IDLE"`
}

func ReadConfig() (*Config, error) {
	var cfg Config
	help, err := conf.ParseOSArgs("APP", &cfg)

	if err != nil {
		if errors.Is(err, conf.ErrHelpWanted) {
			fmt.Println(help)
			return nil, fmt.Errorf("parsing config: %w", err)
		}
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	return &cfg, nil
}

func (c *Config) Ledger() ledger.Config {
	return ledger.Config{
		Network:     c.Network,
		PackageID:   c.PackageID,
		ModuleName:  c.ModuleName,
		ExplorerURL: c.ExplorerURL,
	}
}

// BlockchainEnabled reports whether on-chain calls should be made at all.
func (c *Config) BlockchainEnabled() bool {
	return c.Blockchain && c.Ledger().Configured()
}

func (c *Config) FullnodeURL() (string, error) {
	if c.NodeURL != "" {
		return c.NodeURL, nil
	}
	return ledger.FullnodeURL(c.Network)
}
