package factory

import (
	"github.com/brightlist/marketplace-sdk/internal/entity"
	"github.com/google/uuid"
	"time"
)

func CreateListing(seller string, assetId, price uint64, royalty *entity.Royalty) entity.Listing {
	return entity.Listing{
		Id:        uuid.NewString(),
		AssetId:   assetId,
		Seller:    seller,
		Price:     price,
		Royalty:   royalty,
		Status:    entity.ListingActive,
		CreatedAt: time.Now(),
	}
}
