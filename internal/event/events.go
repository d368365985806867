package event

type Type string

const (
	ListingCreatedEvent      Type = "ListingCreatedEvent"
	ListingSoldEvent         Type = "ListingSoldEvent"
	ListingCancelledEvent    Type = "ListingCancelledEvent"
	SettlementConfirmedEvent Type = "SettlementConfirmedEvent"
)
