package main

import (
	"github.com/brightlist/marketplace-sdk/internal/config"
	"github.com/brightlist/marketplace-sdk/internal/config/di"
	"github.com/brightlist/marketplace-sdk/internal/event"
	"go.uber.org/zap"
	"net/http"
	"time"
)

var container *di.Container

func main() {
	config.Init()
	container, _ = di.NewContainer()

	if config.Get().ElasticSearch.Enabled {
		container.GetElastic().InstallMappings()

		listener := container.GetArchiveListener()
		event.AddEventListener(event.ListingCreatedEvent, listener.OnListingCreated)
		event.AddEventListener(event.ListingSoldEvent, listener.OnListingSold)
		event.AddEventListener(event.ListingCancelledEvent, listener.OnListingCancelled)
		event.AddEventListener(event.SettlementConfirmedEvent, listener.OnSettlementConfirmed)

		go persist()
	}

	if config.Get().Amqp.Enabled {
		publisher := container.GetPublisher()
		event.AddEventListener(event.ListingCreatedEvent, publisher.OnListingCreated)
		event.AddEventListener(event.ListingSoldEvent, publisher.OnListingSold)
		event.AddEventListener(event.ListingCancelledEvent, publisher.OnListingCancelled)
		event.AddEventListener(event.SettlementConfirmedEvent, publisher.OnSettlementConfirmed)
	}

	zap.L().With(
		zap.String("port", config.Get().ApiPort),
		zap.String("backend", config.Get().Ledger.Backend),
	).Info("Marketplace Started")

	serve()
}

func serve() {
	if err := http.ListenAndServe(":"+config.Get().ApiPort, container.GetApiServer().Router()); err != nil {
		zap.L().With(zap.Error(err)).Fatal("Failed to start API")
	}
}

// persist flushes buffered archive documents that have not hit the bulk
// threshold on their own.
func persist() {
	for {
		time.Sleep(5 * time.Second)
		container.GetElastic().BatchPersist()
	}
}
