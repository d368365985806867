package archive

import (
	"encoding/json"
	"errors"
	"github.com/brightlist/marketplace-sdk/internal/entity"
	"github.com/olivere/elastic/v7"
)

var (
	ErrListingNotFound    = errors.New("archived listing not found")
	ErrSettlementNotFound = errors.New("archived settlement not found")
)

// Repository reads listing history back out of the archive. It serves lookups
// the in-memory registry cannot answer after a restart.
type Repository interface {
	GetListing(id string) (entity.Listing, error)
	GetListingActions(listingId string) ([]entity.ListingAction, error)
	GetRecentSales(size int) ([]entity.ListingAction, error)
	GetSettlement(id string) (entity.Settlement, error)
}

type repository struct {
	elastic Index
}

func NewRepository(elastic Index) Repository {
	return repository{elastic}
}

func (r repository) GetListing(id string) (entity.Listing, error) {
	results, err := search(r.elastic.GetClient().
		Search(ListingIndex.Get()).
		Query(elastic.NewTermQuery("id.keyword", id)).
		Size(1))
	if err != nil {
		return entity.Listing{}, err
	}

	if len(results.Hits.Hits) == 0 {
		return entity.Listing{}, ErrListingNotFound
	}

	var listing entity.Listing
	err = json.Unmarshal(results.Hits.Hits[0].Source, &listing)

	return listing, err
}

func (r repository) GetListingActions(listingId string) ([]entity.ListingAction, error) {
	results, err := search(r.elastic.GetClient().
		Search(ListingActionIndex.Get()).
		Query(elastic.NewTermQuery("listing.id.keyword", listingId)).
		Sort("occurredAt", true).
		Size(100))

	return r.findActions(results, err)
}

func (r repository) GetRecentSales(size int) ([]entity.ListingAction, error) {
	results, err := search(r.elastic.GetClient().
		Search(ListingActionIndex.Get()).
		Query(elastic.NewTermQuery("action.keyword", string(entity.SaleAction))).
		Sort("occurredAt", false).
		Size(size))

	return r.findActions(results, err)
}

func (r repository) GetSettlement(id string) (entity.Settlement, error) {
	results, err := search(r.elastic.GetClient().
		Search(SettlementIndex.Get()).
		Query(elastic.NewTermQuery("id.keyword", id)).
		Size(1))
	if err != nil {
		return entity.Settlement{}, err
	}

	if len(results.Hits.Hits) == 0 {
		return entity.Settlement{}, ErrSettlementNotFound
	}

	var settlement entity.Settlement
	err = json.Unmarshal(results.Hits.Hits[0].Source, &settlement)

	return settlement, err
}

func (r repository) findActions(results *elastic.SearchResult, err error) ([]entity.ListingAction, error) {
	if err != nil {
		return nil, err
	}

	actions := make([]entity.ListingAction, 0)
	for _, hit := range results.Hits.Hits {
		var action entity.ListingAction
		if err := json.Unmarshal(hit.Source, &action); err != nil {
			return nil, err
		}
		actions = append(actions, action)
	}

	return actions, nil
}
