package api

import (
	"errors"
	"github.com/brightlist/marketplace-sdk/internal/entity"
	"github.com/brightlist/marketplace-sdk/internal/ledger"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
	"net/http"
	"strconv"
)

type issueAssetRequest struct {
	Creator accountPayload     `json:"creator"`
	Params  ledger.AssetParams `json:"params"`
}

type issueAssetResponse struct {
	AssetId uint64 `json:"assetId"`
}

type optInRequest struct {
	Account accountPayload `json:"account"`
}

type balanceResponse struct {
	Address string `json:"address"`
	Balance uint64 `json:"balance"`
}

func (s Server) handleIssueAsset(w http.ResponseWriter, r *http.Request) {
	var req issueAssetRequest
	if !decodeBody(w, r, &req) {
		return
	}

	assetId, err := s.assets.Issue(req.Creator.account(), req.Params)
	if err != nil {
		zap.L().With(zap.Error(err), zap.String("creator", req.Creator.Address)).Warn("Failed to issue asset")
		writeError(w, err, "")
		return
	}

	writeJson(w, http.StatusCreated, issueAssetResponse{AssetId: assetId})
}

func (s Server) handleGetAsset(w http.ResponseWriter, r *http.Request) {
	assetId, err := getAssetId(r)
	if err != nil {
		writeError(w, entity.ErrInvalidArgument, "assetId must be numeric")
		return
	}

	info, err := s.assets.Info(assetId)
	if err != nil {
		writeError(w, err, "asset not available")
		return
	}

	writeJson(w, http.StatusOK, info)
}

func (s Server) handleOptIn(w http.ResponseWriter, r *http.Request) {
	assetId, err := getAssetId(r)
	if err != nil {
		writeError(w, entity.ErrInvalidArgument, "assetId must be numeric")
		return
	}

	var req optInRequest
	if !decodeBody(w, r, &req) {
		return
	}

	if err := s.assets.OptIn(req.Account.account(), assetId); err != nil {
		writeError(w, err, "")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s Server) handleGetBalance(w http.ResponseWriter, r *http.Request) {
	address := mux.Vars(r)["address"]

	balance, err := s.payments.Balance(address)
	if err != nil {
		writeError(w, err, "")
		return
	}

	writeJson(w, http.StatusOK, balanceResponse{Address: address, Balance: balance})
}

func (s Server) handleGetHolding(w http.ResponseWriter, r *http.Request) {
	address := mux.Vars(r)["address"]

	assetId, err := getAssetId(r)
	if err != nil {
		writeError(w, entity.ErrInvalidArgument, "assetId must be numeric")
		return
	}

	holding, err := s.assets.Holding(address, assetId)
	if err != nil {
		writeError(w, err, "")
		return
	}

	if holding == nil {
		writeError(w, entity.ErrNotFound, "account is not registered for asset")
		return
	}

	writeJson(w, http.StatusOK, holding)
}

func getAssetId(r *http.Request) (uint64, error) {
	assetId, ok := mux.Vars(r)["assetId"]
	if !ok {
		return 0, errors.New("invalid parameters")
	}

	return strconv.ParseUint(assetId, 10, 64)
}
