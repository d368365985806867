package settlement

import (
	"errors"
	"fmt"
	"github.com/brightlist/marketplace-sdk/internal/entity"
	"github.com/brightlist/marketplace-sdk/internal/event"
	"github.com/brightlist/marketplace-sdk/internal/ledger"
	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"
	"time"
)

// Coordinator drives an atomic group through the external ledger: build legs,
// group, authorize one signer per leg, submit as a unit, await confirmation.
// Each execution is tracked as a Settlement record so callers can observe how
// far a failed or timed-out group got.
type Coordinator interface {
	ExecuteAtomicExchange(listing entity.Listing, buyer entity.Account, sellerKey string) (entity.Settlement, error)
	ExecuteGroup(legs []ledger.Leg, authorizers []entity.Account) (entity.Settlement, error)
	GetSettlement(id string) (entity.Settlement, error)
	MinFee() uint64
}

type coordinator struct {
	ledger     ledger.Service
	minFee     uint64
	maxRounds  uint64
	executions *cache.Cache
}

func NewCoordinator(ledgerSvc ledger.Service, minFee, maxRounds uint64) Coordinator {
	return &coordinator{
		ledger:     ledgerSvc,
		minFee:     minFee,
		maxRounds:  maxRounds,
		executions: cache.New(1*time.Hour, 10*time.Minute),
	}
}

func (c coordinator) MinFee() uint64 {
	return c.minFee
}

// ExecuteAtomicExchange settles a purchase: payment buyer→seller for the
// price, asset transfer seller→buyer, and a royalty payment when the listing
// carries one with a non-zero amount. The buyer authorizes the payments, the
// seller authorizes the transfer.
func (c coordinator) ExecuteAtomicExchange(listing entity.Listing, buyer entity.Account, sellerKey string) (entity.Settlement, error) {
	note := fmt.Sprintf("listing:%s", listing.Id)

	legs := []ledger.Leg{
		c.ledger.BuildPayment(buyer.Address, listing.Seller, listing.Price, note),
		c.ledger.BuildAssetTransfer(listing.Seller, buyer.Address, listing.AssetId, 1),
	}
	authorizers := []entity.Account{
		buyer,
		{Address: listing.Seller, SigningKey: sellerKey},
	}

	if royalty := listing.RoyaltyAmount(); royalty > 0 {
		legs = append(legs, c.ledger.BuildPayment(buyer.Address, listing.Royalty.Recipient, royalty, note))
		authorizers = append(authorizers, buyer)
	}

	return c.ExecuteGroup(legs, authorizers)
}

func (c coordinator) ExecuteGroup(legs []ledger.Leg, authorizers []entity.Account) (entity.Settlement, error) {
	s := entity.Settlement{
		Id:        uuid.NewString(),
		State:     entity.SettlementBuilding,
		LegCount:  len(legs),
		StartedAt: time.Now(),
	}
	c.track(s)

	if len(legs) == 0 {
		return c.fail(s, fmt.Errorf("group has no legs: %w", entity.ErrInvalidArgument))
	}
	if len(legs) != len(authorizers) {
		return c.fail(s, fmt.Errorf("%d legs, %d authorizers: %w", len(legs), len(authorizers), entity.ErrAuthorizationMismatch))
	}
	for i, leg := range legs {
		if err := validateLeg(i, leg); err != nil {
			return c.fail(s, err)
		}
	}

	group, err := c.ledger.GroupLegs(legs)
	if err != nil {
		return c.fail(s, entity.NewExternalError(err))
	}
	s.State = entity.SettlementGrouped
	s.GroupId = group.Id
	c.track(s)

	authorized := make([]ledger.AuthorizedLeg, len(group.Legs))
	for i, leg := range group.Legs {
		al, err := c.ledger.Authorize(leg, authorizers[i].SigningKey)
		if err != nil {
			return c.fail(s, fmt.Errorf("leg %d (%s): %v: %w", i, leg.From, err, entity.ErrUnauthorized))
		}
		authorized[i] = al
	}
	s.State = entity.SettlementAuthorized
	c.track(s)

	submissionId, err := c.ledger.Submit(authorized)
	if err != nil {
		return c.fail(s, entity.NewExternalError(err))
	}
	s.State = entity.SettlementSubmitted
	s.SubmissionId = submissionId
	c.track(s)

	zap.L().With(
		zap.String("settlementId", s.Id),
		zap.String("submissionId", submissionId),
		zap.Int("legs", s.LegCount),
	).Info("Settlement: Group submitted")

	receipt, err := c.ledger.AwaitConfirmation(submissionId, c.maxRounds)
	if err != nil {
		if errors.Is(err, ledger.ErrConfirmationTimeout) {
			s.State = entity.SettlementTimedOut
			s.Error = err.Error()
			s.FinishedAt = time.Now()
			c.track(s)
			return s, fmt.Errorf("submission %s: %w", submissionId, entity.ErrConfirmationTimeout)
		}
		return c.fail(s, entity.NewExternalError(err))
	}

	s.State = entity.SettlementConfirmed
	s.TxID = receipt.TxID
	s.ConfirmedRound = receipt.ConfirmedRound
	s.CreatedAssetId = receipt.CreatedAssetId
	s.FinishedAt = time.Now()
	c.track(s)

	zap.L().With(
		zap.String("settlementId", s.Id),
		zap.String("txId", s.TxID),
		zap.Uint64("confirmedRound", s.ConfirmedRound),
	).Info("Settlement: Group confirmed")

	event.EmitEvent(event.SettlementConfirmedEvent, s)

	return s, nil
}

func (c coordinator) GetSettlement(id string) (entity.Settlement, error) {
	if s, exists := c.executions.Get(id); exists {
		return s.(entity.Settlement), nil
	}
	return entity.Settlement{}, entity.ErrNotFound
}

func (c coordinator) track(s entity.Settlement) {
	c.executions.Set(s.Id, s, cache.DefaultExpiration)
}

func (c coordinator) fail(s entity.Settlement, err error) (entity.Settlement, error) {
	s.State = entity.SettlementFailed
	s.Error = err.Error()
	s.FinishedAt = time.Now()
	c.track(s)

	zap.L().With(zap.Error(err), zap.String("settlementId", s.Id)).Warn("Settlement: Group failed")

	return s, err
}

func validateLeg(i int, leg ledger.Leg) error {
	if leg.From == "" {
		return fmt.Errorf("leg %d has no sender: %w", i, entity.ErrInvalidArgument)
	}
	switch leg.Type {
	case ledger.PaymentLeg:
		if leg.To == "" {
			return fmt.Errorf("leg %d has no recipient: %w", i, entity.ErrInvalidArgument)
		}
		if leg.Amount == 0 {
			return fmt.Errorf("leg %d pays nothing: %w", i, entity.ErrInvalidArgument)
		}
	case ledger.AssetTransferLeg:
		if leg.To == "" {
			return fmt.Errorf("leg %d has no recipient: %w", i, entity.ErrInvalidArgument)
		}
		if leg.Amount == 0 {
			return fmt.Errorf("leg %d transfers nothing: %w", i, entity.ErrInvalidArgument)
		}
	case ledger.AssetIssueLeg:
		if leg.Params == nil {
			return fmt.Errorf("leg %d has no asset params: %w", i, entity.ErrInvalidArgument)
		}
	default:
		return fmt.Errorf("leg %d has unknown type %q: %w", i, leg.Type, entity.ErrInvalidArgument)
	}
	return nil
}
