package api

import (
	"github.com/brightlist/marketplace-sdk/internal/entity"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
	"net/http"
	"strconv"
)

type createListingRequest struct {
	Seller  accountPayload  `json:"seller"`
	AssetId uint64          `json:"assetId"`
	Price   uint64          `json:"price"`
	Royalty *entity.Royalty `json:"royalty,omitempty"`
}

type buyListingRequest struct {
	Buyer  accountPayload `json:"buyer"`
	Seller string         `json:"seller"`
}

type cancelListingRequest struct {
	Seller string `json:"seller"`
}

type totalCostResponse struct {
	ListingId string `json:"listingId"`
	TotalCost uint64 `json:"totalCost"`
	MinFee    uint64 `json:"minFee"`
}

func (s Server) handleCreateListing(w http.ResponseWriter, r *http.Request) {
	var req createListingRequest
	if !decodeBody(w, r, &req) {
		return
	}

	listing, err := s.marketplace.ListAsset(req.Seller.account(), req.AssetId, req.Price, req.Royalty)
	if err != nil {
		zap.L().With(zap.Error(err), zap.String("seller", req.Seller.Address)).Warn("Failed to create listing")
		writeError(w, err, "")
		return
	}

	writeJson(w, http.StatusCreated, listing)
}

func (s Server) handleGetListings(w http.ResponseWriter, r *http.Request) {
	if seller := r.URL.Query().Get("seller"); seller != "" {
		writeJson(w, http.StatusOK, s.marketplace.GetListingsBySeller(seller))
		return
	}

	if assetId := r.URL.Query().Get("assetId"); assetId != "" {
		id, err := strconv.ParseUint(assetId, 10, 64)
		if err != nil {
			writeError(w, entity.ErrInvalidArgument, "assetId must be numeric")
			return
		}
		writeJson(w, http.StatusOK, s.marketplace.GetListingsByAsset(id))
		return
	}

	writeJson(w, http.StatusOK, s.marketplace.GetActiveListings())
}

func (s Server) handleGetListing(w http.ResponseWriter, r *http.Request) {
	listingId := mux.Vars(r)["listingId"]

	listing, err := s.marketplace.GetListing(listingId)
	if err != nil {
		writeError(w, err, "")
		return
	}

	writeJson(w, http.StatusOK, listing)
}

func (s Server) handleGetTotalCost(w http.ResponseWriter, r *http.Request) {
	listingId := mux.Vars(r)["listingId"]

	totalCost, err := s.marketplace.CalculateTotalCost(listingId)
	if err != nil {
		writeError(w, err, "")
		return
	}

	writeJson(w, http.StatusOK, totalCostResponse{
		ListingId: listingId,
		TotalCost: totalCost,
		MinFee:    s.coordinator.MinFee(),
	})
}

func (s Server) handleBuyListing(w http.ResponseWriter, r *http.Request) {
	listingId := mux.Vars(r)["listingId"]

	var req buyListingRequest
	if !decodeBody(w, r, &req) {
		return
	}

	settled, err := s.marketplace.BuyAsset(req.Buyer.account(), listingId, req.Seller)
	if err != nil {
		zap.L().With(zap.Error(err), zap.String("listingId", listingId), zap.String("buyer", req.Buyer.Address)).Warn("Purchase failed")
		writeError(w, err, "")
		return
	}

	writeJson(w, http.StatusOK, settled)
}

func (s Server) handleCancelListing(w http.ResponseWriter, r *http.Request) {
	listingId := mux.Vars(r)["listingId"]

	var req cancelListingRequest
	if !decodeBody(w, r, &req) {
		return
	}

	listing, err := s.marketplace.CancelListing(req.Seller, listingId)
	if err != nil {
		writeError(w, err, "")
		return
	}

	writeJson(w, http.StatusOK, listing)
}

func (s Server) handleGetSettlement(w http.ResponseWriter, r *http.Request) {
	settlementId := mux.Vars(r)["settlementId"]

	settled, err := s.coordinator.GetSettlement(settlementId)
	if err != nil {
		writeError(w, err, "")
		return
	}

	writeJson(w, http.StatusOK, settled)
}
