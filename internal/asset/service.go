package asset

import (
	"fmt"
	"github.com/brightlist/marketplace-sdk/internal/entity"
	"github.com/brightlist/marketplace-sdk/internal/ledger"
	"github.com/brightlist/marketplace-sdk/internal/settlement"
	"go.uber.org/zap"
)

// Service wraps the asset-side ledger operations: issue new assets, move
// them, register accounts to hold them. Multi-asset bundles ride a single
// atomic group, so a bundle either transfers completely or not at all.
type Service interface {
	Issue(creator entity.Account, params ledger.AssetParams) (uint64, error)
	Transfer(from entity.Account, to string, assetId, amount uint64) (entity.Settlement, error)
	TransferBundle(from entity.Account, to string, assetIds []uint64) (entity.Settlement, error)
	OptIn(account entity.Account, assetId uint64) error
	Info(assetId uint64) (*ledger.AssetInfo, error)
	Holding(owner string, assetId uint64) (*ledger.Holding, error)
}

type service struct {
	ledger      ledger.Service
	coordinator settlement.Coordinator
}

func NewService(ledgerSvc ledger.Service, coordinator settlement.Coordinator) Service {
	return service{ledgerSvc, coordinator}
}

func (s service) Issue(creator entity.Account, params ledger.AssetParams) (uint64, error) {
	if creator.Address == "" {
		return 0, fmt.Errorf("creator address is empty: %w", entity.ErrInvalidArgument)
	}
	if params.Total == 0 {
		return 0, fmt.Errorf("asset total must be positive: %w", entity.ErrInvalidArgument)
	}

	settled, err := s.coordinator.ExecuteGroup(
		[]ledger.Leg{s.ledger.BuildAssetIssue(creator.Address, params)},
		[]entity.Account{creator},
	)
	if err != nil {
		return 0, err
	}

	zap.L().With(
		zap.Uint64("assetId", settled.CreatedAssetId),
		zap.String("creator", creator.Address),
		zap.String("txId", settled.TxID),
	).Info("Asset: Issued")

	return settled.CreatedAssetId, nil
}

func (s service) Transfer(from entity.Account, to string, assetId, amount uint64) (entity.Settlement, error) {
	if to == "" {
		return entity.Settlement{}, fmt.Errorf("recipient address is empty: %w", entity.ErrInvalidArgument)
	}
	if amount == 0 {
		return entity.Settlement{}, fmt.Errorf("transfer amount must be positive: %w", entity.ErrInvalidArgument)
	}

	return s.coordinator.ExecuteGroup(
		[]ledger.Leg{s.ledger.BuildAssetTransfer(from.Address, to, assetId, amount)},
		[]entity.Account{from},
	)
}

// TransferBundle moves one unit of each asset to the same recipient in one
// group.
func (s service) TransferBundle(from entity.Account, to string, assetIds []uint64) (entity.Settlement, error) {
	if to == "" {
		return entity.Settlement{}, fmt.Errorf("recipient address is empty: %w", entity.ErrInvalidArgument)
	}
	if len(assetIds) == 0 {
		return entity.Settlement{}, fmt.Errorf("bundle has no assets: %w", entity.ErrInvalidArgument)
	}

	legs := make([]ledger.Leg, len(assetIds))
	authorizers := make([]entity.Account, len(assetIds))
	for i, assetId := range assetIds {
		legs[i] = s.ledger.BuildAssetTransfer(from.Address, to, assetId, 1)
		authorizers[i] = from
	}

	return s.coordinator.ExecuteGroup(legs, authorizers)
}

func (s service) OptIn(account entity.Account, assetId uint64) error {
	if account.Address == "" {
		return fmt.Errorf("account address is empty: %w", entity.ErrInvalidArgument)
	}

	if err := s.ledger.RegisterForAsset(account.Address, account.SigningKey, assetId); err != nil {
		return entity.NewExternalError(err)
	}

	return nil
}

func (s service) Info(assetId uint64) (*ledger.AssetInfo, error) {
	info, err := s.ledger.QueryAssetInfo(assetId)
	if err != nil {
		return nil, entity.NewExternalError(err)
	}

	return info, nil
}

func (s service) Holding(owner string, assetId uint64) (*ledger.Holding, error) {
	holding, err := s.ledger.QueryHolding(owner, assetId)
	if err != nil {
		return nil, entity.NewExternalError(err)
	}

	return holding, nil
}
