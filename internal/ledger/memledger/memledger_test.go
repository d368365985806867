package memledger_test

import (
	"errors"
	"github.com/brightlist/marketplace-sdk/internal/ledger"
	"github.com/brightlist/marketplace-sdk/internal/ledger/memledger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"testing"
)

const minFee = uint64(100)

func newLedger(t *testing.T) *memledger.Ledger {
	l := memledger.New(minFee)
	require.NoError(t, l.CreateAccount("alice", "alice-key", 2_100))
	require.NoError(t, l.CreateAccount("bob", "bob-key", 0))

	return l
}

func submit(t *testing.T, l *memledger.Ledger, legs []ledger.Leg, secrets []string) (string, error) {
	group, err := l.GroupLegs(legs)
	require.NoError(t, err)

	authorized := make([]ledger.AuthorizedLeg, len(group.Legs))
	for i, leg := range group.Legs {
		al, err := l.Authorize(leg, secrets[i])
		require.NoError(t, err)
		authorized[i] = al
	}

	return l.Submit(authorized)
}

func TestSubmit_DoubleSpendWithinGroupRejected(t *testing.T) {
	l := newLedger(t)

	_, err := submit(t, l, []ledger.Leg{
		l.BuildPayment("alice", "bob", 1_000, ""),
		l.BuildPayment("alice", "bob", 1_000, ""),
	}, []string{"alice-key", "alice-key"})
	require.Error(t, err, "alice can fund one leg but not both")

	var rpcErr ledger.RPCError
	assert.True(t, errors.As(err, &rpcErr))

	alice, err := l.QueryBalance("alice")
	require.NoError(t, err)
	assert.Equal(t, uint64(2_100), alice, "rejected group leaves balances untouched")

	bob, err := l.QueryBalance("bob")
	require.NoError(t, err)
	assert.Equal(t, uint64(0), bob)
}

func TestSubmit_SingleSpendSucceeds(t *testing.T) {
	l := newLedger(t)

	_, err := submit(t, l, []ledger.Leg{l.BuildPayment("alice", "bob", 1_000, "")}, []string{"alice-key"})
	require.NoError(t, err)

	alice, err := l.QueryBalance("alice")
	require.NoError(t, err)
	assert.Equal(t, uint64(1_000), alice)

	bob, err := l.QueryBalance("bob")
	require.NoError(t, err)
	assert.Equal(t, uint64(1_000), bob)
}

func TestSubmit_RejectsForgedSignature(t *testing.T) {
	l := newLedger(t)

	group, err := l.GroupLegs([]ledger.Leg{l.BuildPayment("alice", "bob", 100, "")})
	require.NoError(t, err)

	_, err = l.Submit([]ledger.AuthorizedLeg{{Leg: group.Legs[0], Signature: "forged"}})
	require.Error(t, err)
}

func TestSubmit_RejectsMixedGroups(t *testing.T) {
	l := newLedger(t)

	first, err := l.GroupLegs([]ledger.Leg{l.BuildPayment("alice", "bob", 100, "")})
	require.NoError(t, err)
	second, err := l.GroupLegs([]ledger.Leg{l.BuildPayment("alice", "bob", 100, "")})
	require.NoError(t, err)

	a, err := l.Authorize(first.Legs[0], "alice-key")
	require.NoError(t, err)
	b, err := l.Authorize(second.Legs[0], "alice-key")
	require.NoError(t, err)

	_, err = l.Submit([]ledger.AuthorizedLeg{a, b})
	require.Error(t, err)
}

func TestAuthorize_WrongSecret(t *testing.T) {
	l := newLedger(t)

	_, err := l.Authorize(l.BuildPayment("alice", "bob", 100, ""), "wrong")
	require.Error(t, err)

	var rpcErr ledger.RPCError
	assert.True(t, errors.As(err, &rpcErr))
}

func TestAwaitConfirmation_ConfirmsAfterLag(t *testing.T) {
	l := newLedger(t)
	l.SetConfirmLag(3)

	submissionId, err := submit(t, l, []ledger.Leg{l.BuildPayment("alice", "bob", 100, "")}, []string{"alice-key"})
	require.NoError(t, err)

	receipt, err := l.AwaitConfirmation(submissionId, 5)
	require.NoError(t, err)
	assert.Equal(t, submissionId, receipt.TxID)
	assert.Equal(t, uint64(4), receipt.ConfirmedRound, "submitted at round 1, lag 3")
	assert.Equal(t, 1, receipt.LegCount)
}

func TestAwaitConfirmation_TimesOutPastRoundBudget(t *testing.T) {
	l := newLedger(t)
	l.SetConfirmLag(10)

	submissionId, err := submit(t, l, []ledger.Leg{l.BuildPayment("alice", "bob", 100, "")}, []string{"alice-key"})
	require.NoError(t, err)

	_, err = l.AwaitConfirmation(submissionId, 3)
	assert.True(t, errors.Is(err, ledger.ErrConfirmationTimeout))
}

func TestAwaitConfirmation_UnknownSubmission(t *testing.T) {
	l := newLedger(t)

	_, err := l.AwaitConfirmation("missing", 3)
	require.Error(t, err)

	var rpcErr ledger.RPCError
	assert.True(t, errors.As(err, &rpcErr))
}

func TestRegisterForAsset(t *testing.T) {
	l := newLedger(t)

	assetId, err := l.CreateAsset("alice", ledger.AssetParams{Name: "Artwork", Symbol: "ART", Total: 1})
	require.NoError(t, err)

	holding, err := l.QueryHolding("bob", assetId)
	require.NoError(t, err)
	assert.Nil(t, holding, "unregistered accounts have no holding")

	require.NoError(t, l.RegisterForAsset("bob", "bob-key", assetId))

	holding, err = l.QueryHolding("bob", assetId)
	require.NoError(t, err)
	require.NotNil(t, holding)
	assert.Equal(t, uint64(0), holding.Amount)

	require.Error(t, l.RegisterForAsset("bob", "wrong", assetId))
	require.Error(t, l.RegisterForAsset("nobody", "key", assetId))
	require.Error(t, l.RegisterForAsset("bob", "bob-key", 999))
}

func TestSubmit_TransferToUnregisteredReceiverRejected(t *testing.T) {
	l := newLedger(t)

	assetId, err := l.CreateAsset("alice", ledger.AssetParams{Name: "Artwork", Symbol: "ART", Total: 1})
	require.NoError(t, err)

	_, err = submit(t, l, []ledger.Leg{
		l.BuildPayment("alice", "bob", 500, ""),
		l.BuildAssetTransfer("alice", "bob", assetId, 1),
	}, []string{"alice-key", "alice-key"})
	require.Error(t, err)

	alice, err := l.QueryBalance("alice")
	require.NoError(t, err)
	assert.Equal(t, uint64(2_100), alice, "payment leg must not apply when the transfer leg fails")

	holding, err := l.QueryHolding("alice", assetId)
	require.NoError(t, err)
	require.NotNil(t, holding)
	assert.Equal(t, uint64(1), holding.Amount)
}

func TestIssueLegCreatesAsset(t *testing.T) {
	l := newLedger(t)

	submissionId, err := submit(t, l, []ledger.Leg{
		l.BuildAssetIssue("alice", ledger.AssetParams{Name: "Artwork", Symbol: "ART", Total: 5}),
	}, []string{"alice-key"})
	require.NoError(t, err)

	receipt, err := l.AwaitConfirmation(submissionId, 5)
	require.NoError(t, err)
	require.NotZero(t, receipt.CreatedAssetId)

	info, err := l.QueryAssetInfo(receipt.CreatedAssetId)
	require.NoError(t, err)
	assert.Equal(t, "alice", info.Creator)

	holding, err := l.QueryHolding("alice", receipt.CreatedAssetId)
	require.NoError(t, err)
	require.NotNil(t, holding)
	assert.Equal(t, uint64(5), holding.Amount)
}
