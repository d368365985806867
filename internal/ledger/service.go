package ledger

import (
	"go.uber.org/zap"
)

// Service is the narrow surface the rest of the SDK is allowed to reach the
// ledger through. Transaction construction, signing, atomic grouping,
// submission and confirmation all happen on the other side of it.
type Service interface {
	QueryBalance(address string) (uint64, error)
	QueryHolding(address string, assetId uint64) (*Holding, error)
	QueryAssetInfo(assetId uint64) (*AssetInfo, error)
	RegisterForAsset(address, signerSecret string, assetId uint64) error

	BuildPayment(from, to string, amount uint64, note string) Leg
	BuildAssetTransfer(from, to string, assetId, amount uint64) Leg
	BuildAssetIssue(creator string, params AssetParams) Leg
	GroupLegs(legs []Leg) (Group, error)

	Authorize(leg Leg, signerSecret string) (AuthorizedLeg, error)
	Submit(legs []AuthorizedLeg) (string, error)
	AwaitConfirmation(submissionId string, maxRounds uint64) (*Receipt, error)
}

type service struct {
	provider *Provider
}

func NewLedgerService(provider *Provider) Service {
	return service{provider}
}

func (s service) QueryBalance(address string) (uint64, error) {
	return s.provider.GetBalance(address)
}

func (s service) QueryHolding(address string, assetId uint64) (*Holding, error) {
	return s.provider.GetHolding(address, assetId)
}

func (s service) QueryAssetInfo(assetId uint64) (*AssetInfo, error) {
	return s.provider.GetAssetInfo(assetId)
}

func (s service) RegisterForAsset(address, signerSecret string, assetId uint64) error {
	zap.L().With(
		zap.String("address", address),
		zap.Uint64("assetId", assetId),
	).Debug("Ledger: RegisterForAsset")

	return s.provider.RegisterForAsset(address, signerSecret, assetId)
}

func (s service) BuildPayment(from, to string, amount uint64, note string) Leg {
	return Leg{Type: PaymentLeg, From: from, To: to, Amount: amount, Note: note}
}

func (s service) BuildAssetTransfer(from, to string, assetId, amount uint64) Leg {
	return Leg{Type: AssetTransferLeg, From: from, To: to, AssetId: assetId, Amount: amount}
}

func (s service) BuildAssetIssue(creator string, params AssetParams) Leg {
	p := params
	return Leg{Type: AssetIssueLeg, From: creator, Params: &p}
}

func (s service) GroupLegs(legs []Leg) (Group, error) {
	return s.provider.AssignGroup(legs)
}

func (s service) Authorize(leg Leg, signerSecret string) (AuthorizedLeg, error) {
	return s.provider.AuthorizeLeg(leg, signerSecret)
}

func (s service) Submit(legs []AuthorizedLeg) (string, error) {
	zap.L().With(zap.Int("legs", len(legs))).Debug("Ledger: Submit group")

	return s.provider.SubmitGroup(legs)
}

func (s service) AwaitConfirmation(submissionId string, maxRounds uint64) (*Receipt, error) {
	return s.provider.AwaitConfirmation(submissionId, maxRounds)
}
