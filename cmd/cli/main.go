package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"github.com/brightlist/marketplace-sdk/internal/asset"
	"github.com/brightlist/marketplace-sdk/internal/config"
	"github.com/brightlist/marketplace-sdk/internal/config/di"
	"github.com/brightlist/marketplace-sdk/internal/dev"
	"github.com/brightlist/marketplace-sdk/internal/entity"
	"github.com/brightlist/marketplace-sdk/internal/ledger"
	"github.com/brightlist/marketplace-sdk/internal/marketplace"
	"github.com/brightlist/marketplace-sdk/internal/messenger"
	"github.com/brightlist/marketplace-sdk/internal/metadata"
	"github.com/brightlist/marketplace-sdk/internal/payment"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
	"os"
)

var (
	container          *di.Container
	marketplaceService marketplace.Service
	assetService       asset.Service
	paymentService     payment.Service
	metadataService    metadata.Service
)

func main() {
	config.Init()

	container, _ = di.NewContainer()
	marketplaceService = container.GetMarketplace()
	assetService = container.GetAssetService()
	paymentService = container.GetPaymentService()
	metadataService = container.GetMetadataService()

	app := &cli.App{
		Commands: []*cli.Command{
			{
				Name:   "issue",
				Usage:  "Issue a new asset on the ledger",
				Action: issueAsset,
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "creator", Usage: "creator address"},
					&cli.StringFlag{Name: "key", Usage: "creator signing key"},
					&cli.StringFlag{Name: "name", Usage: "asset name"},
					&cli.StringFlag{Name: "symbol", Usage: "asset unit symbol"},
					&cli.Uint64Flag{Name: "total", Value: 1, Usage: "total supply"},
					&cli.StringFlag{Name: "url", Usage: "metadata url"},
				},
			},
			{
				Name:   "list",
				Usage:  "List an asset for sale at a fixed price",
				Action: listAsset,
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "seller", Usage: "seller address"},
					&cli.StringFlag{Name: "key", Usage: "seller signing key"},
					&cli.Uint64Flag{Name: "asset", Usage: "asset id"},
					&cli.Uint64Flag{Name: "price", Usage: "sale price in base units"},
					&cli.StringFlag{Name: "royalty-recipient", Usage: "optional royalty recipient"},
					&cli.UintFlag{Name: "royalty-percent", Usage: "royalty percentage"},
				},
			},
			{
				Name:   "listings",
				Usage:  "Show active listings, optionally filtered by seller or asset",
				Action: showListings,
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "seller", Usage: "filter by seller address"},
					&cli.Uint64Flag{Name: "asset", Usage: "filter by asset id"},
				},
			},
			{
				Name:      "buy",
				Usage:     "Buy a listing",
				ArgsUsage: "<listingId>",
				Action:    buyListing,
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "buyer", Usage: "buyer address"},
					&cli.StringFlag{Name: "key", Usage: "buyer signing key"},
					&cli.StringFlag{Name: "seller", Usage: "expected seller address"},
				},
			},
			{
				Name:      "cancel",
				Usage:     "Cancel a listing",
				ArgsUsage: "<listingId>",
				Action:    cancelListing,
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "seller", Usage: "seller address"},
				},
			},
			{
				Name:      "cost",
				Usage:     "Show the full purchase cost of a listing",
				ArgsUsage: "<listingId>",
				Action:    showCost,
			},
			{
				Name:      "balance",
				Usage:     "Show an account balance",
				ArgsUsage: "<address>",
				Action:    showBalance,
			},
			{
				Name:   "send",
				Usage:  "Send a payment",
				Action: sendPayment,
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "from", Usage: "sender address"},
					&cli.StringFlag{Name: "key", Usage: "sender signing key"},
					&cli.StringFlag{Name: "to", Usage: "recipient address"},
					&cli.Uint64Flag{Name: "amount", Usage: "amount in base units"},
					&cli.StringFlag{Name: "note", Usage: "payment note"},
				},
			},
			{
				Name:   "optin",
				Usage:  "Register an account for an asset",
				Action: optIn,
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "account", Usage: "account address"},
					&cli.StringFlag{Name: "key", Usage: "account signing key"},
					&cli.Uint64Flag{Name: "asset", Usage: "asset id"},
				},
			},
			{
				Name:   "metadata",
				Usage:  "Fetch the off-ledger metadata for an asset",
				Action: showMetadata,
				Flags: []cli.Flag{
					&cli.Uint64Flag{Name: "asset", Usage: "asset id"},
				},
			},
			{
				Name:   "sales",
				Usage:  "Show recent sales from the archive",
				Action: showRecentSales,
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "size", Value: 10, Usage: "number of sales"},
				},
			},
			{
				Name:      "history",
				Usage:     "Show the archived action history of a listing",
				ArgsUsage: "<listingId>",
				Action:    showHistory,
			},
			{
				Name:   "queue",
				Usage:  "Show the size of an event queue (listings or settlements)",
				Action: showQueueSize,
			},
		},
	}

	err := app.Run(os.Args)
	if err != nil {
		zap.L().With(zap.Error(err)).Fatal("Failed to start CLI")
	}
}

func issueAsset(c *cli.Context) error {
	assetId, err := assetService.Issue(
		entity.Account{Address: c.String("creator"), SigningKey: c.String("key")},
		ledger.AssetParams{
			Name:   c.String("name"),
			Symbol: c.String("symbol"),
			Total:  c.Uint64("total"),
			Url:    c.String("url"),
		},
	)
	if err != nil {
		return err
	}

	fmt.Printf("Issued asset %d\n", assetId)

	return nil
}

func listAsset(c *cli.Context) error {
	var royalty *entity.Royalty
	if c.String("royalty-recipient") != "" {
		royalty = &entity.Royalty{Recipient: c.String("royalty-recipient"), Percent: c.Uint("royalty-percent")}
	}

	listing, err := marketplaceService.ListAsset(
		entity.Account{Address: c.String("seller"), SigningKey: c.String("key")},
		c.Uint64("asset"),
		c.Uint64("price"),
		royalty,
	)
	if err != nil {
		return err
	}

	return output(listing)
}

func showListings(c *cli.Context) error {
	if seller := c.String("seller"); seller != "" {
		return output(marketplaceService.GetListingsBySeller(seller))
	}
	if assetId := c.Uint64("asset"); assetId != 0 {
		return output(marketplaceService.GetListingsByAsset(assetId))
	}

	return output(marketplaceService.GetActiveListings())
}

func buyListing(c *cli.Context) error {
	listingId := c.Args().First()
	if listingId == "" {
		return errors.New("no listing id provided")
	}

	settled, err := marketplaceService.BuyAsset(
		entity.Account{Address: c.String("buyer"), SigningKey: c.String("key")},
		listingId,
		c.String("seller"),
	)
	if err != nil {
		dev.Dump(settled)
		return err
	}

	return output(settled)
}

func cancelListing(c *cli.Context) error {
	listingId := c.Args().First()
	if listingId == "" {
		return errors.New("no listing id provided")
	}

	listing, err := marketplaceService.CancelListing(c.String("seller"), listingId)
	if err != nil {
		return err
	}

	return output(listing)
}

func showCost(c *cli.Context) error {
	listingId := c.Args().First()
	if listingId == "" {
		return errors.New("no listing id provided")
	}

	totalCost, err := marketplaceService.CalculateTotalCost(listingId)
	if err != nil {
		return err
	}

	fmt.Printf("Total cost: %d\n", totalCost)

	return nil
}

func showBalance(c *cli.Context) error {
	address := c.Args().First()
	if address == "" {
		return errors.New("no address provided")
	}

	balance, err := paymentService.Balance(address)
	if err != nil {
		return err
	}

	fmt.Printf("Balance: %d\n", balance)

	return nil
}

func sendPayment(c *cli.Context) error {
	settled, err := paymentService.Send(
		entity.Account{Address: c.String("from"), SigningKey: c.String("key")},
		c.String("to"),
		c.Uint64("amount"),
		c.String("note"),
	)
	if err != nil {
		return err
	}

	return output(settled)
}

func optIn(c *cli.Context) error {
	err := assetService.OptIn(
		entity.Account{Address: c.String("account"), SigningKey: c.String("key")},
		c.Uint64("asset"),
	)
	if err != nil {
		return err
	}

	zap.L().With(zap.Uint64("assetId", c.Uint64("asset"))).Info("Opted in")

	return nil
}

func showMetadata(c *cli.Context) error {
	info, err := assetService.Info(c.Uint64("asset"))
	if err != nil {
		return err
	}

	properties, err := metadataService.GetAssetMetadata(*info)
	if err != nil {
		return err
	}

	return output(properties)
}

func showRecentSales(c *cli.Context) error {
	if !config.Get().ElasticSearch.Enabled {
		zap.L().Error("The archive is not enabled")
		return nil
	}

	sales, err := container.GetArchiveRepo().GetRecentSales(c.Int("size"))
	if err != nil {
		return err
	}

	return output(sales)
}

func showHistory(c *cli.Context) error {
	listingId := c.Args().First()
	if listingId == "" {
		return errors.New("no listing id provided")
	}

	if !config.Get().ElasticSearch.Enabled {
		zap.L().Error("The archive is not enabled")
		return nil
	}

	actions, err := container.GetArchiveRepo().GetListingActions(listingId)
	if err != nil {
		return err
	}

	return output(actions)
}

func showQueueSize(c *cli.Context) error {
	if !config.Get().Amqp.Enabled {
		zap.L().Error("The message queue is not enabled")
		return nil
	}

	item := messenger.ListingEvents
	if c.Args().First() == "settlements" {
		item = messenger.SettlementEvents
	}

	size, err := container.GetMessenger().GetQueueSize(item)
	if err != nil {
		zap.L().With(zap.Error(err)).Error("Could not get the queue size")
		return nil
	}

	fmt.Printf("Queue size: %d\n", *size)

	return nil
}

func output(el interface{}) error {
	elJson, err := json.MarshalIndent(el, "", "  ")
	if err != nil {
		return err
	}

	fmt.Println(string(elJson))

	return nil
}
