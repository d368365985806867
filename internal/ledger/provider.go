package ledger

import (
	"encoding/json"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"time"
)

const confirmationPollInterval = time.Second

// Provider speaks the ledger gateway's JSON-RPC surface. Authorization is
// performed by the node-side wallet endpoint: the signer secret is an opaque
// wallet token forwarded with the leg, never a key this process holds.
type Provider struct {
	rpcClient *rpcClient
}

func NewProvider(rpcClient *rpcClient) *Provider {
	return &Provider{rpcClient: rpcClient}
}

func (p *Provider) GetBalance(address string) (uint64, error) {
	response, err := p.call("GetBalance", address)
	if err != nil {
		return 0, err
	}

	return response.ResultAsUint64()
}

func (p *Provider) GetHolding(address string, assetId uint64) (*Holding, error) {
	response, err := p.call("GetHolding", address, assetId)
	if err != nil {
		return nil, err
	}

	if response.ResultAsString() == "null" || response.ResultAsString() == "" {
		return nil, nil
	}

	var holding Holding
	if err := json.Unmarshal(response.Result, &holding); err != nil {
		return nil, err
	}

	return &holding, nil
}

func (p *Provider) GetAssetInfo(assetId uint64) (*AssetInfo, error) {
	response, err := p.call("GetAssetInfo", assetId)
	if err != nil {
		return nil, err
	}

	var info AssetInfo
	if err := json.Unmarshal(response.Result, &info); err != nil {
		return nil, err
	}

	return &info, nil
}

func (p *Provider) RegisterForAsset(address, signerSecret string, assetId uint64) error {
	_, err := p.call("RegisterForAsset", address, signerSecret, assetId)
	return err
}

// AssignGroup stamps a fresh group id on the legs. The node validates the
// group as a unit on submission; the id only has to be unique.
func (p *Provider) AssignGroup(legs []Leg) (Group, error) {
	id := uuid.NewString()

	grouped := make([]Leg, len(legs))
	for i, leg := range legs {
		leg.GroupId = id
		grouped[i] = leg
	}

	return Group{Id: id, Legs: grouped}, nil
}

func (p *Provider) AuthorizeLeg(leg Leg, signerSecret string) (AuthorizedLeg, error) {
	response, err := p.call("AuthorizeLeg", leg, signerSecret)
	if err != nil {
		return AuthorizedLeg{}, err
	}

	var authorized AuthorizedLeg
	if err := json.Unmarshal(response.Result, &authorized); err != nil {
		return AuthorizedLeg{}, err
	}

	return authorized, nil
}

func (p *Provider) SubmitGroup(legs []AuthorizedLeg) (string, error) {
	response, err := p.call("SubmitGroup", legs)
	if err != nil {
		return "", err
	}

	var submissionId string
	if err := json.Unmarshal(response.Result, &submissionId); err != nil {
		return "", err
	}

	return submissionId, nil
}

type submissionStatus struct {
	SubmissionId   string `json:"submissionId"`
	CurrentRound   uint64 `json:"currentRound"`
	ConfirmedRound uint64 `json:"confirmedRound"`
	Receipt        *Receipt
}

// AwaitConfirmation polls the gateway until the submission lands in a
// confirmed round, giving up once the ledger has advanced maxRounds rounds
// past where the wait started. The timeout is surfaced, not retried.
func (p *Provider) AwaitConfirmation(submissionId string, maxRounds uint64) (*Receipt, error) {
	var deadline uint64

	for {
		response, err := p.call("GetSubmission", submissionId)
		if err != nil {
			return nil, err
		}

		var status submissionStatus
		if err := json.Unmarshal(response.Result, &status); err != nil {
			return nil, err
		}

		if status.ConfirmedRound != 0 {
			if status.Receipt != nil {
				return status.Receipt, nil
			}
			return &Receipt{TxID: submissionId, ConfirmedRound: status.ConfirmedRound}, nil
		}

		if deadline == 0 {
			deadline = status.CurrentRound + maxRounds
		}

		if status.CurrentRound >= deadline {
			zap.L().With(
				zap.String("submissionId", submissionId),
				zap.Uint64("rounds", maxRounds),
			).Warn("Ledger: Confirmation wait exhausted")
			return nil, ErrConfirmationTimeout
		}

		time.Sleep(confirmationPollInterval)
	}
}

func (p *Provider) call(method string, params ...interface{}) (*rpcResponse, error) {
	response, err := p.rpcClient.call(method, params)
	if err != nil {
		return nil, err
	}

	if response.Error != nil {
		return nil, *response.Error
	}

	return response, nil
}
