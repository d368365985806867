package factory

import (
	"github.com/brightlist/marketplace-sdk/internal/entity"
	"time"
)

func CreateListAction(listing entity.Listing) entity.ListingAction {
	return entity.ListingAction{
		Action:     entity.ListAction,
		Listing:    listing,
		OccurredAt: time.Now(),
	}
}

func CreateSaleAction(listing entity.Listing, buyer string, settlement entity.Settlement) entity.ListingAction {
	return entity.ListingAction{
		Action:         entity.SaleAction,
		Listing:        listing,
		Buyer:          buyer,
		TxID:           settlement.TxID,
		Royalty:        listing.RoyaltyAmount(),
		ConfirmedRound: settlement.ConfirmedRound,
		OccurredAt:     time.Now(),
	}
}

func CreateCancelAction(listing entity.Listing) entity.ListingAction {
	return entity.ListingAction{
		Action:     entity.CancelAction,
		Listing:    listing,
		OccurredAt: time.Now(),
	}
}
