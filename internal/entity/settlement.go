package entity

import (
	"fmt"
	"github.com/gosimple/slug"
	"time"
)

type SettlementState string

const (
	SettlementBuilding   SettlementState = "building"
	SettlementGrouped    SettlementState = "grouped"
	SettlementAuthorized SettlementState = "authorized"
	SettlementSubmitted  SettlementState = "submitted"
	SettlementConfirmed  SettlementState = "confirmed"
	SettlementFailed     SettlementState = "failed"
	SettlementTimedOut   SettlementState = "timedout"
)

// Settlement records the progress of one atomic group through the
// coordinator. Every stage transition is written to the record, so a failed
// or timed-out group shows how far it got.
type Settlement struct {
	Id             string          `json:"id"`
	State          SettlementState `json:"state"`
	LegCount       int             `json:"legCount"`
	GroupId        string          `json:"groupId,omitempty"`
	SubmissionId   string          `json:"submissionId,omitempty"`
	TxID           string          `json:"txId,omitempty"`
	ConfirmedRound uint64          `json:"confirmedRound,omitempty"`
	CreatedAssetId uint64          `json:"createdAssetId,omitempty"`
	Error          string          `json:"error,omitempty"`
	StartedAt      time.Time       `json:"startedAt"`
	FinishedAt     time.Time       `json:"finishedAt,omitempty"`
}

func (s Settlement) Slug() string {
	return CreateSettlementSlug(s.Id)
}

func CreateSettlementSlug(id string) string {
	return slug.Make(fmt.Sprintf("settlement-%s", id))
}

// Terminal reports whether the settlement can no longer change state.
func (s Settlement) Terminal() bool {
	switch s.State {
	case SettlementConfirmed, SettlementFailed, SettlementTimedOut:
		return true
	}
	return false
}
