package settlement_test

import (
	"errors"
	"github.com/brightlist/marketplace-sdk/internal/entity"
	"github.com/brightlist/marketplace-sdk/internal/ledger"
	"github.com/brightlist/marketplace-sdk/internal/ledger/memledger"
	"github.com/brightlist/marketplace-sdk/internal/settlement"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"testing"
	"time"
)

const minFee = uint64(1000)

var (
	alice = entity.Account{Address: "alice", SigningKey: "alice-key"}
	bob   = entity.Account{Address: "bob", SigningKey: "bob-key"}
	carol = entity.Account{Address: "carol", SigningKey: "carol-key"}
)

func newCoordinator(t *testing.T) (settlement.Coordinator, *memledger.Ledger) {
	l := memledger.New(minFee)
	require.NoError(t, l.CreateAccount(alice.Address, alice.SigningKey, 10_000_000))
	require.NoError(t, l.CreateAccount(bob.Address, bob.SigningKey, 10_000_000))
	require.NoError(t, l.CreateAccount(carol.Address, carol.SigningKey, 10_000_000))

	return settlement.NewCoordinator(l, minFee, 5), l
}

func issueAsset(t *testing.T, c settlement.Coordinator, l *memledger.Ledger, creator entity.Account) uint64 {
	s, err := c.ExecuteGroup(
		[]ledger.Leg{l.BuildAssetIssue(creator.Address, ledger.AssetParams{Name: "Artwork", Symbol: "ART", Total: 1, Decimals: 0})},
		[]entity.Account{creator},
	)
	require.NoError(t, err)
	require.NotZero(t, s.CreatedAssetId)

	return s.CreatedAssetId
}

func TestExecuteGroup_PaymentConfirmed(t *testing.T) {
	c, l := newCoordinator(t)

	s, err := c.ExecuteGroup(
		[]ledger.Leg{l.BuildPayment(alice.Address, bob.Address, 250_000, "test")},
		[]entity.Account{alice},
	)
	require.NoError(t, err)

	assert.Equal(t, entity.SettlementConfirmed, s.State)
	assert.Equal(t, 1, s.LegCount)
	assert.NotEmpty(t, s.TxID)
	assert.NotEmpty(t, s.GroupId)
	assert.NotZero(t, s.ConfirmedRound)
	assert.False(t, s.FinishedAt.IsZero())

	aliceBalance, err := l.QueryBalance(alice.Address)
	require.NoError(t, err)
	assert.Equal(t, uint64(10_000_000-250_000-minFee), aliceBalance)

	bobBalance, err := l.QueryBalance(bob.Address)
	require.NoError(t, err)
	assert.Equal(t, uint64(10_000_000+250_000), bobBalance)

	stored, err := c.GetSettlement(s.Id)
	require.NoError(t, err)
	assert.Equal(t, s, stored)
}

func TestExecuteGroup_EmptyGroup(t *testing.T) {
	c, _ := newCoordinator(t)

	s, err := c.ExecuteGroup(nil, nil)
	assert.True(t, errors.Is(err, entity.ErrInvalidArgument))
	assert.Equal(t, entity.SettlementFailed, s.State)
}

func TestExecuteGroup_AuthorizerCountMismatch(t *testing.T) {
	c, l := newCoordinator(t)

	legs := []ledger.Leg{
		l.BuildPayment(alice.Address, bob.Address, 100, ""),
		l.BuildPayment(alice.Address, carol.Address, 100, ""),
	}

	s, err := c.ExecuteGroup(legs, []entity.Account{alice})
	assert.True(t, errors.Is(err, entity.ErrAuthorizationMismatch))
	assert.Equal(t, entity.SettlementFailed, s.State)

	aliceBalance, err := l.QueryBalance(alice.Address)
	require.NoError(t, err)
	assert.Equal(t, uint64(10_000_000), aliceBalance)
}

func TestExecuteGroup_RejectsMalformedLegs(t *testing.T) {
	c, l := newCoordinator(t)

	tests := map[string]ledger.Leg{
		"zero amount payment": l.BuildPayment(alice.Address, bob.Address, 0, ""),
		"missing sender":      l.BuildPayment("", bob.Address, 100, ""),
		"missing recipient":   l.BuildPayment(alice.Address, "", 100, ""),
		"empty asset amount":  l.BuildAssetTransfer(alice.Address, bob.Address, 1, 0),
	}

	for name, leg := range tests {
		s, err := c.ExecuteGroup([]ledger.Leg{leg}, []entity.Account{alice})
		assert.True(t, errors.Is(err, entity.ErrInvalidArgument), name)
		assert.Equal(t, entity.SettlementFailed, s.State, name)
	}
}

func TestExecuteGroup_BadSignerKey(t *testing.T) {
	c, l := newCoordinator(t)

	s, err := c.ExecuteGroup(
		[]ledger.Leg{l.BuildPayment(alice.Address, bob.Address, 100, "")},
		[]entity.Account{{Address: alice.Address, SigningKey: "wrong"}},
	)
	assert.True(t, errors.Is(err, entity.ErrUnauthorized))
	assert.Equal(t, entity.SettlementFailed, s.State)

	stored := mustGet(t, c, s.Id)
	assert.NotEmpty(t, stored.GroupId, "grouping succeeded before authorization failed")
	assert.Empty(t, stored.SubmissionId, "nothing was submitted")
	assert.NotEmpty(t, stored.Error)
}

func TestExecuteGroup_SubmissionRejectionIsExternalFailure(t *testing.T) {
	c, l := newCoordinator(t)

	legs := []ledger.Leg{
		l.BuildPayment(alice.Address, bob.Address, 500, ""),
		l.BuildPayment(alice.Address, carol.Address, 20_000_000, ""),
	}

	s, err := c.ExecuteGroup(legs, []entity.Account{alice, alice})
	assert.True(t, errors.Is(err, entity.ErrExternalFailure))
	assert.Equal(t, entity.SettlementFailed, s.State)

	var rpcErr ledger.RPCError
	assert.True(t, errors.As(err, &rpcErr), "protocol rejection preserved in the chain")

	aliceBalance, err := l.QueryBalance(alice.Address)
	require.NoError(t, err)
	assert.Equal(t, uint64(10_000_000), aliceBalance, "rejected group must not move funds")

	bobBalance, err := l.QueryBalance(bob.Address)
	require.NoError(t, err)
	assert.Equal(t, uint64(10_000_000), bobBalance)
}

func TestExecuteGroup_ConfirmationTimeout(t *testing.T) {
	c, l := newCoordinator(t)
	l.SetConfirmLag(100)

	s, err := c.ExecuteGroup(
		[]ledger.Leg{l.BuildPayment(alice.Address, bob.Address, 100, "")},
		[]entity.Account{alice},
	)
	assert.True(t, errors.Is(err, entity.ErrConfirmationTimeout))
	assert.Equal(t, entity.SettlementTimedOut, s.State)
	assert.NotEmpty(t, s.SubmissionId, "timeout happens after submission")
	assert.Empty(t, s.TxID)
}

func TestExecuteAtomicExchange_WithoutRoyalty(t *testing.T) {
	c, l := newCoordinator(t)
	assetId := issueAsset(t, c, l, bob)
	require.NoError(t, l.RegisterForAsset(alice.Address, alice.SigningKey, assetId))

	listing := entity.Listing{
		Id:        "lst-1",
		AssetId:   assetId,
		Seller:    bob.Address,
		Price:     5_000_000,
		Status:    entity.ListingActive,
		CreatedAt: time.Now(),
	}

	s, err := c.ExecuteAtomicExchange(listing, alice, bob.SigningKey)
	require.NoError(t, err)
	assert.Equal(t, entity.SettlementConfirmed, s.State)
	assert.Equal(t, 2, s.LegCount)

	holding, err := l.QueryHolding(alice.Address, assetId)
	require.NoError(t, err)
	require.NotNil(t, holding)
	assert.Equal(t, uint64(1), holding.Amount)

	sellerHolding, err := l.QueryHolding(bob.Address, assetId)
	require.NoError(t, err)
	require.NotNil(t, sellerHolding)
	assert.Equal(t, uint64(0), sellerHolding.Amount)
}

func TestExecuteAtomicExchange_WithRoyalty(t *testing.T) {
	c, l := newCoordinator(t)
	assetId := issueAsset(t, c, l, bob)
	require.NoError(t, l.RegisterForAsset(alice.Address, alice.SigningKey, assetId))

	carolBefore, err := l.QueryBalance(carol.Address)
	require.NoError(t, err)

	listing := entity.Listing{
		Id:        "lst-2",
		AssetId:   assetId,
		Seller:    bob.Address,
		Price:     5_000_000,
		Royalty:   &entity.Royalty{Recipient: carol.Address, Percent: 5},
		Status:    entity.ListingActive,
		CreatedAt: time.Now(),
	}

	s, err := c.ExecuteAtomicExchange(listing, alice, bob.SigningKey)
	require.NoError(t, err)
	assert.Equal(t, 3, s.LegCount)

	carolAfter, err := l.QueryBalance(carol.Address)
	require.NoError(t, err)
	assert.Equal(t, carolBefore+250_000, carolAfter)
}

func TestExecuteAtomicExchange_ZeroRoyaltyAmountSkipsLeg(t *testing.T) {
	c, l := newCoordinator(t)
	assetId := issueAsset(t, c, l, bob)
	require.NoError(t, l.RegisterForAsset(alice.Address, alice.SigningKey, assetId))

	listing := entity.Listing{
		Id:        "lst-3",
		AssetId:   assetId,
		Seller:    bob.Address,
		Price:     10,
		Royalty:   &entity.Royalty{Recipient: carol.Address, Percent: 5},
		Status:    entity.ListingActive,
		CreatedAt: time.Now(),
	}

	s, err := c.ExecuteAtomicExchange(listing, alice, bob.SigningKey)
	require.NoError(t, err)
	assert.Equal(t, 2, s.LegCount, "floor(10 x 5%) = 0 drops the royalty leg")
}

func TestGetSettlement_Unknown(t *testing.T) {
	c, _ := newCoordinator(t)

	_, err := c.GetSettlement("missing")
	assert.True(t, errors.Is(err, entity.ErrNotFound))
}

func mustGet(t *testing.T, c settlement.Coordinator, id string) entity.Settlement {
	s, err := c.GetSettlement(id)
	require.NoError(t, err)
	return s
}
