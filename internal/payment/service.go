package payment

import (
	"fmt"
	"github.com/brightlist/marketplace-sdk/internal/entity"
	"github.com/brightlist/marketplace-sdk/internal/ledger"
	"github.com/brightlist/marketplace-sdk/internal/settlement"
)

// Recipient is one share of a split payment.
type Recipient struct {
	Address string `json:"address"`
	Amount  uint64 `json:"amount"`
}

// Service sends funds through the coordinator. Split pays every recipient
// from one atomic group: either all shares land or none do.
type Service interface {
	Send(from entity.Account, to string, amount uint64, note string) (entity.Settlement, error)
	Split(from entity.Account, recipients []Recipient, note string) (entity.Settlement, error)
	Balance(address string) (uint64, error)
}

type service struct {
	ledger      ledger.Service
	coordinator settlement.Coordinator
}

func NewService(ledgerSvc ledger.Service, coordinator settlement.Coordinator) Service {
	return service{ledgerSvc, coordinator}
}

func (s service) Send(from entity.Account, to string, amount uint64, note string) (entity.Settlement, error) {
	if to == "" {
		return entity.Settlement{}, fmt.Errorf("recipient address is empty: %w", entity.ErrInvalidArgument)
	}
	if amount == 0 {
		return entity.Settlement{}, fmt.Errorf("payment amount must be positive: %w", entity.ErrInvalidArgument)
	}

	return s.coordinator.ExecuteGroup(
		[]ledger.Leg{s.ledger.BuildPayment(from.Address, to, amount, note)},
		[]entity.Account{from},
	)
}

func (s service) Split(from entity.Account, recipients []Recipient, note string) (entity.Settlement, error) {
	if len(recipients) == 0 {
		return entity.Settlement{}, fmt.Errorf("split has no recipients: %w", entity.ErrInvalidArgument)
	}

	legs := make([]ledger.Leg, len(recipients))
	authorizers := make([]entity.Account, len(recipients))
	for i, r := range recipients {
		if r.Address == "" {
			return entity.Settlement{}, fmt.Errorf("recipient %d has no address: %w", i, entity.ErrInvalidArgument)
		}
		if r.Amount == 0 {
			return entity.Settlement{}, fmt.Errorf("recipient %d gets nothing: %w", i, entity.ErrInvalidArgument)
		}
		legs[i] = s.ledger.BuildPayment(from.Address, r.Address, r.Amount, note)
		authorizers[i] = from
	}

	return s.coordinator.ExecuteGroup(legs, authorizers)
}

func (s service) Balance(address string) (uint64, error) {
	balance, err := s.ledger.QueryBalance(address)
	if err != nil {
		return 0, entity.NewExternalError(err)
	}

	return balance, nil
}
