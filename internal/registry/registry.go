package registry

import (
	"github.com/brightlist/marketplace-sdk/internal/entity"
	"sort"
	"sync"
)

// ListingRegistry is the authoritative store of listings. Mutation of a
// listing is serialised per listing id: Sell holds the listing's lock for the
// whole settlement so concurrent buyers of the same listing queue up and all
// but the first observe the sold state.
type ListingRegistry interface {
	Create(listing entity.Listing) error
	Get(id string) (entity.Listing, error)
	Sell(id, buyer string, settle func(listing entity.Listing) error) (entity.Listing, error)
	Cancel(id, seller string) (entity.Listing, error)
	Active() []entity.Listing
	BySeller(seller string) []entity.Listing
	ByAsset(assetId uint64) []entity.Listing
}

type listingRegistry struct {
	mu       sync.Mutex
	listings map[string]*listingEntry
}

type listingEntry struct {
	mu      sync.Mutex
	listing entity.Listing
}

func NewListingRegistry() ListingRegistry {
	return &listingRegistry{listings: map[string]*listingEntry{}}
}

func (r *listingRegistry) Create(listing entity.Listing) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.listings[listing.Id]; exists {
		return entity.ErrInvalidArgument
	}
	r.listings[listing.Id] = &listingEntry{listing: listing}

	return nil
}

func (r *listingRegistry) Get(id string) (entity.Listing, error) {
	e := r.entry(id)
	if e == nil {
		return entity.Listing{}, entity.ErrNotFound
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	return e.listing, nil
}

// Sell runs settle under the listing's lock and marks the listing sold only
// when settle succeeds. A failed settlement leaves the listing active. settle
// receives a snapshot of the listing as it was sold.
func (r *listingRegistry) Sell(id, buyer string, settle func(listing entity.Listing) error) (entity.Listing, error) {
	e := r.entry(id)
	if e == nil {
		return entity.Listing{}, entity.ErrNotFound
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.listing.Status != entity.ListingActive {
		return entity.Listing{}, entity.ErrInvalidState
	}
	if buyer == e.listing.Seller {
		return entity.Listing{}, entity.ErrInvalidArgument
	}

	if err := settle(e.listing); err != nil {
		return entity.Listing{}, err
	}

	e.listing.Status = entity.ListingSold

	return e.listing, nil
}

func (r *listingRegistry) Cancel(id, seller string) (entity.Listing, error) {
	e := r.entry(id)
	if e == nil {
		return entity.Listing{}, entity.ErrNotFound
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.listing.Seller != seller {
		return entity.Listing{}, entity.ErrUnauthorized
	}
	if e.listing.Status != entity.ListingActive {
		return entity.Listing{}, entity.ErrInvalidState
	}

	e.listing.Status = entity.ListingCancelled

	return e.listing, nil
}

func (r *listingRegistry) Active() []entity.Listing {
	return r.collect(func(l entity.Listing) bool {
		return l.Status == entity.ListingActive
	})
}

func (r *listingRegistry) BySeller(seller string) []entity.Listing {
	return r.collect(func(l entity.Listing) bool {
		return l.Seller == seller
	})
}

func (r *listingRegistry) ByAsset(assetId uint64) []entity.Listing {
	return r.collect(func(l entity.Listing) bool {
		return l.AssetId == assetId
	})
}

func (r *listingRegistry) entry(id string) *listingEntry {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.listings[id]
}

func (r *listingRegistry) collect(match func(entity.Listing) bool) []entity.Listing {
	r.mu.Lock()
	entries := make([]*listingEntry, 0, len(r.listings))
	for _, e := range r.listings {
		entries = append(entries, e)
	}
	r.mu.Unlock()

	listings := make([]entity.Listing, 0, len(entries))
	for _, e := range entries {
		e.mu.Lock()
		if match(e.listing) {
			listings = append(listings, e.listing)
		}
		e.mu.Unlock()
	}

	sort.Slice(listings, func(i, j int) bool {
		if listings[i].CreatedAt.Equal(listings[j].CreatedAt) {
			return listings[i].Id < listings[j].Id
		}
		return listings[i].CreatedAt.Before(listings[j].CreatedAt)
	})

	return listings
}
