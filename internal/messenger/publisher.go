package messenger

import (
	"encoding/json"
	"github.com/brightlist/marketplace-sdk/internal/entity"
	"go.uber.org/zap"
)

// Publisher relays marketplace events onto the message queue so external
// consumers can follow listing activity without polling the API.
type Publisher struct {
	messenger MessageService
}

func NewPublisher(messenger MessageService) *Publisher {
	return &Publisher{messenger}
}

func (p *Publisher) OnListingCreated(msg interface{}) {
	p.publishAction(msg, "listing created")
}

func (p *Publisher) OnListingSold(msg interface{}) {
	p.publishAction(msg, "listing sold")
}

func (p *Publisher) OnListingCancelled(msg interface{}) {
	p.publishAction(msg, "listing cancelled")
}

func (p *Publisher) OnSettlementConfirmed(msg interface{}) {
	settlement, ok := msg.(entity.Settlement)
	if !ok {
		zap.L().Error("[Queue] Unexpected payload for settlement confirmed")
		return
	}

	body, err := json.Marshal(settlement)
	if err != nil {
		zap.L().With(zap.Error(err)).Error("[Queue] Failed to marshal settlement")
		return
	}

	if err := p.messenger.SendMessage(SettlementEvents, body, true); err != nil {
		zap.L().With(zap.Error(err), zap.String("id", settlement.Id)).Error("[Queue] Failed to publish settlement")
	}
}

func (p *Publisher) publishAction(msg interface{}, name string) {
	action, ok := msg.(entity.ListingAction)
	if !ok {
		zap.L().With(zap.String("event", name)).Error("[Queue] Unexpected payload for listing event")
		return
	}

	body, err := json.Marshal(action)
	if err != nil {
		zap.L().With(zap.Error(err), zap.String("event", name)).Error("[Queue] Failed to marshal listing action")
		return
	}

	if err := p.messenger.SendMessage(ListingEvents, body, true); err != nil {
		zap.L().With(zap.Error(err), zap.String("listing", action.Listing.Id)).Error("[Queue] Failed to publish listing event")
	}
}
