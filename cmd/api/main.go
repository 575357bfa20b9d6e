package main

import (
	"net/http"
	"strconv"
	"time"

	"proof-of-learning-go/internal/catalog"
	"proof-of-learning-go/internal/database"
	"proof-of-learning-go/internal/ledger"
	"proof-of-learning-go/internal/notifications"
	"proof-of-learning-go/internal/session"

	"github.com/newrelic/go-agent/v3/newrelic"
	log "github.com/sirupsen/logrus"
)

func main() {
	log.Println("starting proof of learning server")

	cfg, err := ReadConfig()
	if err != nil {
		log.Fatalf("reading config: %v", err)
	}

	port, err := strconv.Atoi(cfg.Port)
	if err != nil {
		log.Fatalf("converting port to integer: %v", err)
	}

	source, closeSource, err := newCatalog(cfg)
	if err != nil {
		log.Fatalf("creating course catalog: %v", err)
	}
	defer closeSource()

	sessionCfg, err := newSessionConfig(cfg)
	if err != nil {
		log.Fatalf("configuring ledger: %v", err)
	}
	sessions := session.NewManager(sessionCfg)
	go reapSessions(sessions, cfg.SessionIdle)

	opts := ServerOptions{
		Explorer:   cfg.Ledger().Explorer(),
		Blockchain: cfg.BlockchainEnabled(),
	}

	if cfg.SendgridKey != "" {
		opts.Mailer = notifications.NewSendgridSender(cfg.SendgridKey, cfg.MailFrom)
	}

	if cfg.NewRelicKey != "" {
		opts.NewRelic, err = newrelic.NewApplication(
			newrelic.ConfigAppName("proof-of-learning"),
			newrelic.ConfigLicense(cfg.NewRelicKey),
		)
		if err != nil {
			log.Fatalf("creating new relic application: %v", err)
		}
	}

	server := NewServer(port, source, sessions, opts)

	log.Fatal(server.Run())
}

func newCatalog(cfg *Config) (catalog.Source, func(), error) {
	if cfg.CatalogSource != "postgres" {
		return catalog.NewStatic(), func() {}, nil
	}

	db, err := database.NewClient(cfg.DBCon)
	if err != nil {
		return nil, nil, err
	}
	return db, db.Close, nil
}

func newSessionConfig(cfg *Config) (session.Config, error) {
	sc := session.Config{
		JWTKey:        cfg.JWTKey,
		Blockchain:    cfg.BlockchainEnabled(),
		BadgeImageURL: cfg.BadgeImageURL,
	}

	if !cfg.Ledger().Configured() {
		log.Println("PACKAGE_ID is not set, blockchain features will not work")
		return sc, nil
	}

	nodeURL, err := cfg.FullnodeURL()
	if err != nil {
		return session.Config{}, err
	}

	httpClient := &http.Client{}
	client := ledger.NewRPCClient(nodeURL, httpClient, cfg.PollInterval)
	ledgerCfg := cfg.Ledger()

	sc.NewLedger = func() *ledger.Adapter {
		return ledger.NewAdapter(client, ledgerCfg)
	}
	sc.NewWallet = func(address string) ledger.Wallet {
		return ledger.NewWalletBridge(cfg.WalletBridgeURL, address, cfg.Network, httpClient)
	}

	return sc, nil
}

func reapSessions(sessions *session.Manager, maxIdle time.Duration) {
	if maxIdle <= 0 {
		return
	}

	ticker := time.NewTicker(maxIdle / 2)
	defer ticker.Stop()

	for range ticker.C {
		if n := sessions.Reap(maxIdle); n > 0 {
			log.Printf("closed %d idle sessions", n)
		}
	}
}
