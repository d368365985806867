package archive

import (
	"github.com/brightlist/marketplace-sdk/internal/entity"
	"go.uber.org/zap"
)

func mergeRequests(index string, cached Request, action RequestAction, e entity.Entity) entity.Entity {
	switch {
	case index == ListingIndex.Get():
		result := cached.Entity.(entity.Listing)
		if action == ListingSold || action == ListingCancelled {
			result.Status = e.(entity.Listing).Status
		} else {
			result = e.(entity.Listing)
		}
		return result

	case index == ListingActionIndex.Get():
		return cached.Entity.(entity.ListingAction)

	case index == SettlementIndex.Get():
		return e.(entity.Settlement)
	}

	zap.L().Fatal("Failed to merge request")
	return nil
}
