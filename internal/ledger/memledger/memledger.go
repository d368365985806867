package memledger

import (
	"fmt"
	"github.com/brightlist/marketplace-sdk/internal/ledger"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"sync"
)

const (
	codeUnknownAccount       ledger.RPCErrorCode = -11
	codeUnknownAsset         ledger.RPCErrorCode = -12
	codeUnknownSubmission    ledger.RPCErrorCode = -13
	codeAuthorization        ledger.RPCErrorCode = -21
	codeGroupRejected        ledger.RPCErrorCode = -25
	codeInsufficientBalance  ledger.RPCErrorCode = -26
	codeInsufficientHoldings ledger.RPCErrorCode = -27
	codeNotRegistered        ledger.RPCErrorCode = -28
)

// Ledger is an in-process simulation of the external ledger: accounts,
// balances, asset holdings, opt-ins, per-leg fees and all-or-nothing group
// application. It backs the test suite and the local development mode; it
// performs no real cryptography — authorization is a secret-token check.
type Ledger struct {
	mu          sync.Mutex
	minFee      uint64
	confirmLag  uint64
	round       uint64
	nextAssetId uint64
	accounts    map[string]*account
	assets      map[uint64]ledger.AssetInfo
	submissions map[string]*submission
}

type account struct {
	secret   string
	balance  uint64
	holdings map[uint64]uint64
}

type submission struct {
	id             string
	groupId        string
	legCount       int
	submittedRound uint64
	createdAssetId uint64
}

func New(minFee uint64) *Ledger {
	return &Ledger{
		minFee:      minFee,
		confirmLag:  1,
		nextAssetId: 1,
		accounts:    make(map[string]*account),
		assets:      make(map[uint64]ledger.AssetInfo),
		submissions: make(map[string]*submission),
	}
}

var _ ledger.Service = (*Ledger)(nil)

// CreateAccount seeds an account with a balance. Existing accounts are
// replaced; the simulation has no notion of account history.
func (l *Ledger) CreateAccount(address, secret string, balance uint64) error {
	if address == "" {
		return fmt.Errorf("account address cannot be empty")
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	l.accounts[address] = &account{
		secret:   secret,
		balance:  balance,
		holdings: make(map[uint64]uint64),
	}

	return nil
}

// CreateAsset mints an asset directly into the creator's holdings, outside
// any group. Seeding only; the group path goes through an issue leg.
func (l *Ledger) CreateAsset(creator string, params ledger.AssetParams) (uint64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	acc, ok := l.accounts[creator]
	if !ok {
		return 0, ledger.RPCError{Code: codeUnknownAccount, Message: fmt.Sprintf("unknown account %s", creator)}
	}

	id := l.nextAssetId
	l.nextAssetId++
	l.assets[id] = ledger.AssetInfo{Id: id, Creator: creator, Params: params}
	acc.holdings[id] = params.Total

	return id, nil
}

// SetConfirmLag controls how many rounds pass between submission and
// confirmation. The default of 1 confirms on the next round.
func (l *Ledger) SetConfirmLag(rounds uint64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.confirmLag = rounds
}

func (l *Ledger) QueryBalance(address string) (uint64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if acc, ok := l.accounts[address]; ok {
		return acc.balance, nil
	}

	return 0, nil
}

func (l *Ledger) QueryHolding(address string, assetId uint64) (*ledger.Holding, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	acc, ok := l.accounts[address]
	if !ok {
		return nil, nil
	}

	amount, registered := acc.holdings[assetId]
	if !registered {
		return nil, nil
	}

	return &ledger.Holding{AssetId: assetId, Amount: amount}, nil
}

func (l *Ledger) QueryAssetInfo(assetId uint64) (*ledger.AssetInfo, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	info, ok := l.assets[assetId]
	if !ok {
		return nil, ledger.RPCError{Code: codeUnknownAsset, Message: fmt.Sprintf("asset %d not found", assetId)}
	}

	return &info, nil
}

func (l *Ledger) RegisterForAsset(address, signerSecret string, assetId uint64) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	acc, ok := l.accounts[address]
	if !ok {
		return ledger.RPCError{Code: codeUnknownAccount, Message: fmt.Sprintf("unknown account %s", address)}
	}
	if acc.secret != signerSecret {
		return ledger.RPCError{Code: codeAuthorization, Message: "authorization rejected"}
	}
	if _, ok := l.assets[assetId]; !ok {
		return ledger.RPCError{Code: codeUnknownAsset, Message: fmt.Sprintf("asset %d not found", assetId)}
	}

	if _, registered := acc.holdings[assetId]; !registered {
		acc.holdings[assetId] = 0
	}

	return nil
}

func (l *Ledger) BuildPayment(from, to string, amount uint64, note string) ledger.Leg {
	return ledger.Leg{Type: ledger.PaymentLeg, From: from, To: to, Amount: amount, Note: note}
}

func (l *Ledger) BuildAssetTransfer(from, to string, assetId, amount uint64) ledger.Leg {
	return ledger.Leg{Type: ledger.AssetTransferLeg, From: from, To: to, AssetId: assetId, Amount: amount}
}

func (l *Ledger) BuildAssetIssue(creator string, params ledger.AssetParams) ledger.Leg {
	p := params
	return ledger.Leg{Type: ledger.AssetIssueLeg, From: creator, Params: &p}
}

func (l *Ledger) GroupLegs(legs []ledger.Leg) (ledger.Group, error) {
	id := uuid.NewString()

	grouped := make([]ledger.Leg, len(legs))
	for i, leg := range legs {
		leg.GroupId = id
		grouped[i] = leg
	}

	return ledger.Group{Id: id, Legs: grouped}, nil
}

func (l *Ledger) Authorize(leg ledger.Leg, signerSecret string) (ledger.AuthorizedLeg, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	acc, ok := l.accounts[leg.From]
	if !ok {
		return ledger.AuthorizedLeg{}, ledger.RPCError{Code: codeUnknownAccount, Message: fmt.Sprintf("unknown account %s", leg.From)}
	}
	if acc.secret != signerSecret {
		return ledger.AuthorizedLeg{}, ledger.RPCError{Code: codeAuthorization, Message: "authorization rejected"}
	}

	return ledger.AuthorizedLeg{Leg: leg, Signature: signatureFor(leg.From)}, nil
}

// Submit validates the whole group against a scratch copy of the world and
// commits only when every leg passes. A rejected group changes nothing.
func (l *Ledger) Submit(legs []ledger.AuthorizedLeg) (string, error) {
	if len(legs) == 0 {
		return "", ledger.RPCError{Code: codeGroupRejected, Message: "empty group"}
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	groupId := legs[0].Leg.GroupId
	for _, al := range legs {
		if al.Leg.GroupId != groupId {
			return "", ledger.RPCError{Code: codeGroupRejected, Message: "legs belong to different groups"}
		}
		if al.Signature != signatureFor(al.Leg.From) {
			return "", ledger.RPCError{Code: codeAuthorization, Message: fmt.Sprintf("bad signature for %s", al.Leg.From)}
		}
	}

	scratch := l.cloneAccounts()
	created := make(map[uint64]ledger.AssetInfo)
	createdAssetId := uint64(0)
	assetId := l.nextAssetId

	for _, al := range legs {
		id, err := applyLeg(scratch, l.assets, al.Leg, l.minFee, &assetId)
		if err != nil {
			zap.L().With(zap.Error(err), zap.String("groupId", groupId)).Debug("MemLedger: Group rejected")
			return "", err
		}
		if id != 0 {
			created[id] = ledger.AssetInfo{Id: id, Creator: al.Leg.From, Params: *al.Leg.Params}
			createdAssetId = id
		}
	}

	l.accounts = scratch
	l.nextAssetId = assetId
	for id, info := range created {
		l.assets[id] = info
	}

	l.round++
	sub := &submission{
		id:             uuid.NewString(),
		groupId:        groupId,
		legCount:       len(legs),
		submittedRound: l.round,
		createdAssetId: createdAssetId,
	}
	l.submissions[sub.id] = sub

	zap.L().With(
		zap.String("submissionId", sub.id),
		zap.Int("legs", sub.legCount),
		zap.Uint64("round", sub.submittedRound),
	).Debug("MemLedger: Group accepted")

	return sub.id, nil
}

func (l *Ledger) AwaitConfirmation(submissionId string, maxRounds uint64) (*ledger.Receipt, error) {
	for waited := uint64(0); ; waited++ {
		l.mu.Lock()
		sub, ok := l.submissions[submissionId]
		if !ok {
			l.mu.Unlock()
			return nil, ledger.RPCError{Code: codeUnknownSubmission, Message: fmt.Sprintf("unknown submission %s", submissionId)}
		}

		if l.round >= sub.submittedRound+l.confirmLag {
			receipt := &ledger.Receipt{
				TxID:           sub.id,
				GroupId:        sub.groupId,
				ConfirmedRound: sub.submittedRound + l.confirmLag,
				LegCount:       sub.legCount,
				CreatedAssetId: sub.createdAssetId,
			}
			l.mu.Unlock()
			return receipt, nil
		}

		if waited >= maxRounds {
			l.mu.Unlock()
			return nil, ledger.ErrConfirmationTimeout
		}

		l.round++
		l.mu.Unlock()
	}
}

func (l *Ledger) cloneAccounts() map[string]*account {
	clone := make(map[string]*account, len(l.accounts))
	for addr, acc := range l.accounts {
		holdings := make(map[uint64]uint64, len(acc.holdings))
		for id, amount := range acc.holdings {
			holdings[id] = amount
		}
		clone[addr] = &account{secret: acc.secret, balance: acc.balance, holdings: holdings}
	}

	return clone
}

func applyLeg(accounts map[string]*account, assets map[uint64]ledger.AssetInfo, leg ledger.Leg, fee uint64, nextAssetId *uint64) (uint64, error) {
	sender, ok := accounts[leg.From]
	if !ok {
		return 0, ledger.RPCError{Code: codeUnknownAccount, Message: fmt.Sprintf("unknown account %s", leg.From)}
	}

	if sender.balance < fee {
		return 0, ledger.RPCError{Code: codeInsufficientBalance, Message: fmt.Sprintf("%s cannot cover the network fee", leg.From)}
	}
	sender.balance -= fee

	switch leg.Type {
	case ledger.PaymentLeg:
		receiver, ok := accounts[leg.To]
		if !ok {
			return 0, ledger.RPCError{Code: codeUnknownAccount, Message: fmt.Sprintf("unknown account %s", leg.To)}
		}
		if sender.balance < leg.Amount {
			return 0, ledger.RPCError{Code: codeInsufficientBalance, Message: fmt.Sprintf("%s cannot cover payment of %d", leg.From, leg.Amount)}
		}
		sender.balance -= leg.Amount
		receiver.balance += leg.Amount

	case ledger.AssetTransferLeg:
		receiver, ok := accounts[leg.To]
		if !ok {
			return 0, ledger.RPCError{Code: codeUnknownAccount, Message: fmt.Sprintf("unknown account %s", leg.To)}
		}
		if _, found := assets[leg.AssetId]; !found {
			return 0, ledger.RPCError{Code: codeUnknownAsset, Message: fmt.Sprintf("asset %d not found", leg.AssetId)}
		}
		held := sender.holdings[leg.AssetId]
		if held < leg.Amount {
			return 0, ledger.RPCError{Code: codeInsufficientHoldings, Message: fmt.Sprintf("%s holds %d of asset %d, needs %d", leg.From, held, leg.AssetId, leg.Amount)}
		}
		if _, registered := receiver.holdings[leg.AssetId]; !registered && leg.To != leg.From {
			return 0, ledger.RPCError{Code: codeNotRegistered, Message: fmt.Sprintf("%s is not registered for asset %d", leg.To, leg.AssetId)}
		}
		sender.holdings[leg.AssetId] -= leg.Amount
		receiver.holdings[leg.AssetId] += leg.Amount

	case ledger.AssetIssueLeg:
		if leg.Params == nil {
			return 0, ledger.RPCError{Code: codeGroupRejected, Message: "issue leg without asset params"}
		}
		id := *nextAssetId
		*nextAssetId++
		sender.holdings[id] = leg.Params.Total
		return id, nil

	default:
		return 0, ledger.RPCError{Code: codeGroupRejected, Message: fmt.Sprintf("unsupported leg type %s", leg.Type)}
	}

	return 0, nil
}

func signatureFor(address string) string {
	return "memsig:" + address
}
