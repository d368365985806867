package di

import (
	"github.com/brightlist/marketplace-sdk/internal/api"
	"github.com/brightlist/marketplace-sdk/internal/archive"
	"github.com/brightlist/marketplace-sdk/internal/asset"
	"github.com/brightlist/marketplace-sdk/internal/config"
	"github.com/brightlist/marketplace-sdk/internal/ledger"
	"github.com/brightlist/marketplace-sdk/internal/ledger/memledger"
	"github.com/brightlist/marketplace-sdk/internal/marketplace"
	"github.com/brightlist/marketplace-sdk/internal/messenger"
	"github.com/brightlist/marketplace-sdk/internal/metadata"
	"github.com/brightlist/marketplace-sdk/internal/payment"
	"github.com/brightlist/marketplace-sdk/internal/registry"
	"github.com/brightlist/marketplace-sdk/internal/settlement"
	"github.com/hashicorp/go-retryablehttp"
	"github.com/sarulabs/di/v2"
	"go.uber.org/zap"
	"strconv"
	"strings"
	"time"
)

var Definitions = []di.Def{
	{
		Name: "ledger",
		Build: func(ctn di.Container) (interface{}, error) {
			return buildLedger(), nil
		},
	},
	{
		Name: "coordinator",
		Build: func(ctn di.Container) (interface{}, error) {
			cfg := config.Get().Ledger
			return settlement.NewCoordinator(ctn.Get("ledger").(ledger.Service), cfg.MinFee, cfg.MaxRounds), nil
		},
	},
	{
		Name: "listing.registry",
		Build: func(ctn di.Container) (interface{}, error) {
			return registry.NewListingRegistry(), nil
		},
	},
	{
		Name: "marketplace",
		Build: func(ctn di.Container) (interface{}, error) {
			return marketplace.NewService(
				ctn.Get("listing.registry").(registry.ListingRegistry),
				ctn.Get("coordinator").(settlement.Coordinator),
				ctn.Get("ledger").(ledger.Service),
			), nil
		},
	},
	{
		Name: "asset",
		Build: func(ctn di.Container) (interface{}, error) {
			return asset.NewService(
				ctn.Get("ledger").(ledger.Service),
				ctn.Get("coordinator").(settlement.Coordinator),
			), nil
		},
	},
	{
		Name: "payment",
		Build: func(ctn di.Container) (interface{}, error) {
			return payment.NewService(
				ctn.Get("ledger").(ledger.Service),
				ctn.Get("coordinator").(settlement.Coordinator),
			), nil
		},
	},
	{
		Name: "metadata",
		Build: func(ctn di.Container) (interface{}, error) {
			client := retryablehttp.NewClient()
			client.Logger = nil
			client.RetryMax = config.Get().MetadataRetries
			client.HTTPClient.Timeout = time.Duration(config.Get().IpfsTimeout) * time.Second

			return metadata.NewMetadataService(client), nil
		},
	},
	{
		Name: "api",
		Build: func(ctn di.Container) (interface{}, error) {
			return api.NewServer(
				ctn.Get("marketplace").(marketplace.Service),
				ctn.Get("asset").(asset.Service),
				ctn.Get("payment").(payment.Service),
				ctn.Get("coordinator").(settlement.Coordinator),
			), nil
		},
	},
	{
		Name: "elastic",
		Build: func(ctn di.Container) (interface{}, error) {
			elastic, err := archive.New()
			if err != nil {
				zap.L().With(zap.Error(err)).Fatal("Failed to start ES")
			}

			return elastic, nil
		},
	},
	{
		Name: "archive.repo",
		Build: func(ctn di.Container) (interface{}, error) {
			return archive.NewRepository(ctn.Get("elastic").(archive.Index)), nil
		},
	},
	{
		Name: "archive.listener",
		Build: func(ctn di.Container) (interface{}, error) {
			return archive.NewListener(ctn.Get("elastic").(archive.Index)), nil
		},
	},
	{
		Name: "messenger",
		Build: func(ctn di.Container) (interface{}, error) {
			return messenger.NewMessenger(config.Get().Amqp.Uri), nil
		},
	},
	{
		Name: "publisher",
		Build: func(ctn di.Container) (interface{}, error) {
			return messenger.NewPublisher(ctn.Get("messenger").(messenger.MessageService)), nil
		},
	},
}

func buildLedger() ledger.Service {
	cfg := config.Get().Ledger

	switch cfg.Backend {
	case config.RpcBackend:
		client, err := ledger.NewClient(cfg.Url, cfg.Timeout, cfg.Debug)
		if err != nil {
			zap.L().With(zap.Error(err)).Fatal("Failed to create ledger client")
		}

		return ledger.NewLedgerService(ledger.NewProvider(client))
	case config.MemoryBackend:
		l := memledger.New(cfg.MinFee)
		seedDevAccounts(l)

		return l
	default:
		zap.L().With(zap.String("backend", cfg.Backend)).Fatal("Unknown ledger backend")
		return nil
	}
}

// seedDevAccounts funds the memory backend from DEV_ACCOUNTS, each entry
// address:signingKey:balance.
func seedDevAccounts(l *memledger.Ledger) {
	for _, devAccount := range config.Get().DevAccounts {
		parts := strings.SplitN(devAccount, ":", 3)
		if len(parts) != 3 {
			zap.L().With(zap.String("account", devAccount)).Warn("Skipping malformed dev account")
			continue
		}

		balance, err := strconv.ParseUint(parts[2], 10, 64)
		if err != nil {
			zap.L().With(zap.String("account", devAccount)).Warn("Skipping dev account with bad balance")
			continue
		}

		if err := l.CreateAccount(parts[0], parts[1], balance); err != nil {
			zap.L().With(zap.Error(err), zap.String("account", parts[0])).Warn("Failed to seed dev account")
		}
	}
}
