package ledger

import "errors"

var (
	ErrConfirmationTimeout = errors.New("confirmation round budget exhausted")
)

type LegType string

const (
	PaymentLeg       LegType = "payment"
	AssetTransferLeg LegType = "asset-transfer"
	AssetIssueLeg    LegType = "asset-issue"
)

// Leg is one transaction inside an atomic group, built by the client and
// treated as opaque by everything above it.
type Leg struct {
	Type    LegType      `json:"type"`
	From    string       `json:"from"`
	To      string       `json:"to,omitempty"`
	Amount  uint64       `json:"amount,omitempty"`
	AssetId uint64       `json:"assetId,omitempty"`
	Note    string       `json:"note,omitempty"`
	Params  *AssetParams `json:"params,omitempty"`
	GroupId string       `json:"groupId,omitempty"`
}

type Group struct {
	Id   string `json:"id"`
	Legs []Leg  `json:"legs"`
}

// AuthorizedLeg is a leg plus the authorization produced for it. Signature is
// whatever the signer hands back; it is never interpreted here.
type AuthorizedLeg struct {
	Leg       Leg    `json:"leg"`
	Signature string `json:"signature"`
}

type Holding struct {
	AssetId uint64 `json:"assetId"`
	Amount  uint64 `json:"amount"`
}

type AssetParams struct {
	Name     string `json:"name"`
	Symbol   string `json:"symbol"`
	Total    uint64 `json:"total"`
	Decimals uint32 `json:"decimals"`
	Url      string `json:"url,omitempty"`
}

type AssetInfo struct {
	Id      uint64      `json:"id"`
	Creator string      `json:"creator"`
	Params  AssetParams `json:"params"`
}

type Receipt struct {
	TxID           string `json:"txId"`
	GroupId        string `json:"groupId,omitempty"`
	ConfirmedRound uint64 `json:"confirmedRound"`
	LegCount       int    `json:"legCount"`
	CreatedAssetId uint64 `json:"createdAssetId,omitempty"`
}
