package entity

import (
	"fmt"
	"github.com/gosimple/slug"
	"time"
)

type ListingStatus string

const (
	ListingActive    ListingStatus = "active"
	ListingSold      ListingStatus = "sold"
	ListingCancelled ListingStatus = "cancelled"
)

// Royalty is the optional pricing policy attached to a listing. A listing
// either has no royalty or a complete one; recipient and percent always
// travel together.
type Royalty struct {
	Recipient string `json:"recipient"`
	Percent   uint   `json:"percent"`
}

// Amount is the royalty owed on price, integer floor division.
func (r Royalty) Amount(price uint64) uint64 {
	return price * uint64(r.Percent) / 100
}

type Listing struct {
	Id        string        `json:"id"`
	AssetId   uint64        `json:"assetId"`
	Seller    string        `json:"seller"`
	Price     uint64        `json:"price"`
	Royalty   *Royalty      `json:"royalty,omitempty"`
	Status    ListingStatus `json:"status"`
	CreatedAt time.Time     `json:"createdAt"`
}

func (l Listing) Slug() string {
	return CreateListingSlug(l.Id)
}

func CreateListingSlug(id string) string {
	return slug.Make(fmt.Sprintf("listing-%s", id))
}

func (l Listing) RoyaltyAmount() uint64 {
	if l.Royalty == nil {
		return 0
	}
	return l.Royalty.Amount(l.Price)
}

// LegCount is the number of settlement transactions a purchase of this
// listing produces: payment + asset transfer, plus the royalty payment when
// one is owed.
func (l Listing) LegCount() int {
	if l.RoyaltyAmount() == 0 {
		return 2
	}
	return 3
}

// TotalCost is everything the buyer needs on hand: price, royalty and the
// network fee for each settlement leg.
func (l Listing) TotalCost(minFee uint64) uint64 {
	return l.Price + l.RoyaltyAmount() + minFee*uint64(l.LegCount())
}
