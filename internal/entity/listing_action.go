package entity

import (
	"crypto/md5"
	"fmt"
	"time"
)

type ActionType string

const (
	ListAction   ActionType = "list"
	SaleAction   ActionType = "sale"
	CancelAction ActionType = "cancel"
)

// ListingAction is the audit record for one lifecycle transition of a
// listing. The listing fields are snapshotted at the time of the action so
// the archive document stands on its own.
type ListingAction struct {
	Action         ActionType `json:"action"`
	Listing        Listing    `json:"listing"`
	Buyer          string     `json:"buyer,omitempty"`
	TxID           string     `json:"txId,omitempty"`
	Royalty        uint64     `json:"royalty,omitempty"`
	ConfirmedRound uint64     `json:"confirmedRound,omitempty"`
	OccurredAt     time.Time  `json:"occurredAt"`
}

func (a ListingAction) Slug() string {
	return CreateListingActionSlug(a.Listing.Id, string(a.Action), a.TxID)
}

func CreateListingActionSlug(listingId, action, txId string) string {
	data := []byte(fmt.Sprintf("listingaction-%s-%s-%s", listingId, action, txId))
	return fmt.Sprintf("%x", md5.Sum(data))
}
