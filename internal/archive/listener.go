package archive

import (
	"github.com/brightlist/marketplace-sdk/internal/entity"
	"go.uber.org/zap"
)

// Listener feeds marketplace events into the archive buffer. Wire its
// methods with event.AddEventListener; listing documents are updated in
// place while action and settlement documents are append-only.
type Listener struct {
	elastic Index
}

func NewListener(elastic Index) *Listener {
	return &Listener{elastic}
}

func (l *Listener) OnListingCreated(msg interface{}) {
	action, ok := msg.(entity.ListingAction)
	if !ok {
		zap.L().Error("Archive: Unexpected payload for listing created")
		return
	}

	l.elastic.AddIndexRequest(ListingIndex.Get(), action.Listing, ListingCreate)
	l.elastic.AddIndexRequest(ListingActionIndex.Get(), action, ListingActionCreate)
}

func (l *Listener) OnListingSold(msg interface{}) {
	action, ok := msg.(entity.ListingAction)
	if !ok {
		zap.L().Error("Archive: Unexpected payload for listing sold")
		return
	}

	l.elastic.AddUpdateRequest(ListingIndex.Get(), action.Listing, ListingSold)
	l.elastic.AddIndexRequest(ListingActionIndex.Get(), action, ListingActionCreate)
}

func (l *Listener) OnListingCancelled(msg interface{}) {
	action, ok := msg.(entity.ListingAction)
	if !ok {
		zap.L().Error("Archive: Unexpected payload for listing cancelled")
		return
	}

	l.elastic.AddUpdateRequest(ListingIndex.Get(), action.Listing, ListingCancelled)
	l.elastic.AddIndexRequest(ListingActionIndex.Get(), action, ListingActionCreate)
}

func (l *Listener) OnSettlementConfirmed(msg interface{}) {
	settlement, ok := msg.(entity.Settlement)
	if !ok {
		zap.L().Error("Archive: Unexpected payload for settlement confirmed")
		return
	}

	l.elastic.AddIndexRequest(SettlementIndex.Get(), settlement, SettlementCreate)
}
