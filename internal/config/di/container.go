package di

import (
	"github.com/brightlist/marketplace-sdk/internal/api"
	"github.com/brightlist/marketplace-sdk/internal/archive"
	"github.com/brightlist/marketplace-sdk/internal/asset"
	"github.com/brightlist/marketplace-sdk/internal/ledger"
	"github.com/brightlist/marketplace-sdk/internal/marketplace"
	"github.com/brightlist/marketplace-sdk/internal/messenger"
	"github.com/brightlist/marketplace-sdk/internal/metadata"
	"github.com/brightlist/marketplace-sdk/internal/payment"
	"github.com/brightlist/marketplace-sdk/internal/registry"
	"github.com/brightlist/marketplace-sdk/internal/settlement"
	"github.com/sarulabs/di/v2"
)

// Container resolves the service graph. Services build lazily on first
// use, so the archive and messenger clients only connect when a command
// actually asks for them.
type Container struct {
	ctn di.Container
}

func NewContainer() (*Container, error) {
	builder, err := di.NewBuilder()
	if err != nil {
		return nil, err
	}

	if err := builder.Add(Definitions...); err != nil {
		return nil, err
	}

	return &Container{ctn: builder.Build()}, nil
}

func (c *Container) GetLedger() ledger.Service {
	return c.ctn.Get("ledger").(ledger.Service)
}

func (c *Container) GetCoordinator() settlement.Coordinator {
	return c.ctn.Get("coordinator").(settlement.Coordinator)
}

func (c *Container) GetListingRegistry() registry.ListingRegistry {
	return c.ctn.Get("listing.registry").(registry.ListingRegistry)
}

func (c *Container) GetMarketplace() marketplace.Service {
	return c.ctn.Get("marketplace").(marketplace.Service)
}

func (c *Container) GetAssetService() asset.Service {
	return c.ctn.Get("asset").(asset.Service)
}

func (c *Container) GetPaymentService() payment.Service {
	return c.ctn.Get("payment").(payment.Service)
}

func (c *Container) GetMetadataService() metadata.Service {
	return c.ctn.Get("metadata").(metadata.Service)
}

func (c *Container) GetApiServer() api.Server {
	return c.ctn.Get("api").(api.Server)
}

func (c *Container) GetElastic() archive.Index {
	return c.ctn.Get("elastic").(archive.Index)
}

func (c *Container) GetArchiveRepo() archive.Repository {
	return c.ctn.Get("archive.repo").(archive.Repository)
}

func (c *Container) GetArchiveListener() *archive.Listener {
	return c.ctn.Get("archive.listener").(*archive.Listener)
}

func (c *Container) GetMessenger() messenger.MessageService {
	return c.ctn.Get("messenger").(messenger.MessageService)
}

func (c *Container) GetPublisher() *messenger.Publisher {
	return c.ctn.Get("publisher").(*messenger.Publisher)
}
