package marketplace

import (
	"fmt"
	"github.com/brightlist/marketplace-sdk/internal/entity"
	"github.com/brightlist/marketplace-sdk/internal/event"
	"github.com/brightlist/marketplace-sdk/internal/factory"
	"github.com/brightlist/marketplace-sdk/internal/ledger"
	"github.com/brightlist/marketplace-sdk/internal/registry"
	"github.com/brightlist/marketplace-sdk/internal/settlement"
	"go.uber.org/zap"
	"sync"
)

// Service is the caller-facing marketplace: list an asset at a fixed price,
// buy it through an atomic settlement, cancel, and query. Selling authority
// is delegated at listing time — the seller's signing credential is retained
// so the coordinator can authorize the asset transfer leg when a buyer turns
// up.
type Service interface {
	ListAsset(seller entity.Account, assetId, price uint64, royalty *entity.Royalty) (entity.Listing, error)
	BuyAsset(buyer entity.Account, listingId, seller string) (entity.Settlement, error)
	CancelListing(seller, listingId string) (entity.Listing, error)
	GetListing(id string) (entity.Listing, error)
	GetActiveListings() []entity.Listing
	GetListingsBySeller(seller string) []entity.Listing
	GetListingsByAsset(assetId uint64) []entity.Listing
	CalculateTotalCost(listingId string) (uint64, error)
}

type service struct {
	registry    registry.ListingRegistry
	coordinator settlement.Coordinator
	ledger      ledger.Service
	mu          sync.Mutex
	sellerKeys  map[string]string
}

func NewService(listingRegistry registry.ListingRegistry, coordinator settlement.Coordinator, ledgerSvc ledger.Service) Service {
	return &service{
		registry:    listingRegistry,
		coordinator: coordinator,
		ledger:      ledgerSvc,
		sellerKeys:  map[string]string{},
	}
}

func (s *service) ListAsset(seller entity.Account, assetId, price uint64, royalty *entity.Royalty) (entity.Listing, error) {
	if seller.Address == "" {
		return entity.Listing{}, fmt.Errorf("seller address is empty: %w", entity.ErrInvalidArgument)
	}
	if price == 0 {
		return entity.Listing{}, fmt.Errorf("price must be positive: %w", entity.ErrInvalidArgument)
	}
	if royalty != nil {
		if royalty.Recipient == "" {
			return entity.Listing{}, fmt.Errorf("royalty recipient is empty: %w", entity.ErrInvalidArgument)
		}
		if royalty.Percent > 100 {
			return entity.Listing{}, fmt.Errorf("royalty percent %d exceeds 100: %w", royalty.Percent, entity.ErrInvalidArgument)
		}
	}

	holding, err := s.ledger.QueryHolding(seller.Address, assetId)
	if err != nil {
		return entity.Listing{}, entity.NewExternalError(err)
	}
	if holding == nil || holding.Amount == 0 {
		return entity.Listing{}, fmt.Errorf("seller does not own asset %d: %w", assetId, entity.ErrPreconditionFailed)
	}

	listing := factory.CreateListing(seller.Address, assetId, price, royalty)
	if err := s.registry.Create(listing); err != nil {
		return entity.Listing{}, err
	}

	s.mu.Lock()
	s.sellerKeys[seller.Address] = seller.SigningKey
	s.mu.Unlock()

	zap.L().With(
		zap.String("listingId", listing.Id),
		zap.Uint64("assetId", assetId),
		zap.Uint64("price", price),
		zap.String("seller", seller.Address),
	).Info("Marketplace: Asset listed")

	event.EmitEvent(event.ListingCreatedEvent, factory.CreateListAction(listing))

	return listing, nil
}

// BuyAsset settles a purchase. The expected seller guards against buying a
// relisted id. The buyer's asset registration is a standalone side effect: it
// survives even when the settlement afterwards fails.
func (s *service) BuyAsset(buyer entity.Account, listingId, seller string) (entity.Settlement, error) {
	if buyer.Address == "" {
		return entity.Settlement{}, fmt.Errorf("buyer address is empty: %w", entity.ErrInvalidArgument)
	}

	var settled entity.Settlement

	sold, err := s.registry.Sell(listingId, buyer.Address, func(listing entity.Listing) error {
		if listing.Seller != seller {
			return fmt.Errorf("seller %s does not match listing seller %s: %w", seller, listing.Seller, entity.ErrInvalidArgument)
		}

		s.mu.Lock()
		sellerKey, hasKey := s.sellerKeys[listing.Seller]
		s.mu.Unlock()
		if !hasKey {
			return fmt.Errorf("no signing authority for seller %s: %w", listing.Seller, entity.ErrUnauthorized)
		}

		holding, err := s.ledger.QueryHolding(buyer.Address, listing.AssetId)
		if err != nil {
			return entity.NewExternalError(err)
		}
		if holding == nil {
			if err := s.ledger.RegisterForAsset(buyer.Address, buyer.SigningKey, listing.AssetId); err != nil {
				return entity.NewExternalError(err)
			}
			zap.L().With(
				zap.String("buyer", buyer.Address),
				zap.Uint64("assetId", listing.AssetId),
			).Info("Marketplace: Buyer registered for asset")
		}

		balance, err := s.ledger.QueryBalance(buyer.Address)
		if err != nil {
			return entity.NewExternalError(err)
		}
		required := listing.TotalCost(s.coordinator.MinFee())
		if balance < required {
			return fmt.Errorf("balance %d below required %d: %w", balance, required, entity.ErrInsufficientFunds)
		}

		settled, err = s.coordinator.ExecuteAtomicExchange(listing, buyer, sellerKey)
		return err
	})
	if err != nil {
		return settled, err
	}

	zap.L().With(
		zap.String("listingId", sold.Id),
		zap.String("buyer", buyer.Address),
		zap.String("txId", settled.TxID),
	).Info("Marketplace: Asset sold")

	event.EmitEvent(event.ListingSoldEvent, factory.CreateSaleAction(sold, buyer.Address, settled))

	return settled, nil
}

func (s *service) CancelListing(seller, listingId string) (entity.Listing, error) {
	cancelled, err := s.registry.Cancel(listingId, seller)
	if err != nil {
		return entity.Listing{}, err
	}

	zap.L().With(
		zap.String("listingId", cancelled.Id),
		zap.String("seller", seller),
	).Info("Marketplace: Listing cancelled")

	event.EmitEvent(event.ListingCancelledEvent, factory.CreateCancelAction(cancelled))

	return cancelled, nil
}

func (s *service) GetListing(id string) (entity.Listing, error) {
	return s.registry.Get(id)
}

func (s *service) GetActiveListings() []entity.Listing {
	return s.registry.Active()
}

func (s *service) GetListingsBySeller(seller string) []entity.Listing {
	return s.registry.BySeller(seller)
}

func (s *service) GetListingsByAsset(assetId uint64) []entity.Listing {
	return s.registry.ByAsset(assetId)
}

// CalculateTotalCost is what a buyer must hold to complete the purchase:
// price + royalty + the minimum fee for every leg of the settlement group.
func (s *service) CalculateTotalCost(listingId string) (uint64, error) {
	listing, err := s.registry.Get(listingId)
	if err != nil {
		return 0, err
	}

	return listing.TotalCost(s.coordinator.MinFee()), nil
}
