package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"github.com/brightlist/marketplace-sdk/internal/asset"
	"github.com/brightlist/marketplace-sdk/internal/config"
	"github.com/brightlist/marketplace-sdk/internal/entity"
	"github.com/brightlist/marketplace-sdk/internal/marketplace"
	"github.com/brightlist/marketplace-sdk/internal/payment"
	"github.com/brightlist/marketplace-sdk/internal/settlement"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
	"net/http"
)

type Server struct {
	marketplace marketplace.Service
	assets      asset.Service
	payments    payment.Service
	coordinator settlement.Coordinator
}

func NewServer(marketplaceService marketplace.Service, assetService asset.Service, paymentService payment.Service, coordinator settlement.Coordinator) Server {
	return Server{marketplaceService, assetService, paymentService, coordinator}
}

func (s Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/", s.handleHomepage).Methods("GET")
	r.HandleFunc("/health", s.handleHealth).Methods("GET")

	r.HandleFunc("/listings", s.handleCreateListing).Methods("POST")
	r.HandleFunc("/listings", s.handleGetListings).Methods("GET")
	r.HandleFunc("/listings/{listingId}", s.handleGetListing).Methods("GET")
	r.HandleFunc("/listings/{listingId}/cost", s.handleGetTotalCost).Methods("GET")
	r.HandleFunc("/listings/{listingId}/buy", s.handleBuyListing).Methods("POST")
	r.HandleFunc("/listings/{listingId}/cancel", s.handleCancelListing).Methods("POST")

	r.HandleFunc("/settlements/{settlementId}", s.handleGetSettlement).Methods("GET")

	r.HandleFunc("/assets", s.handleIssueAsset).Methods("POST")
	r.HandleFunc("/assets/{assetId}", s.handleGetAsset).Methods("GET")
	r.HandleFunc("/assets/{assetId}/optin", s.handleOptIn).Methods("POST")

	r.HandleFunc("/accounts/{address}/balance", s.handleGetBalance).Methods("GET")
	r.HandleFunc("/accounts/{address}/assets/{assetId}", s.handleGetHolding).Methods("GET")

	r.NotFoundHandler = notFoundHandler()

	return r
}

func (s Server) handleHomepage(w http.ResponseWriter, r *http.Request) {
	_, _ = fmt.Fprintf(w, "Marketplace API")
}

func (s Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJson(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"network": config.Get().Network,
	})
}

func notFoundHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, entity.ErrNotFound, "Page not found")
	})
}

func writeJson(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

type errorResponse struct {
	Error  string `json:"error"`
	Detail string `json:"detail,omitempty"`
}

func writeError(w http.ResponseWriter, err error, detail string) {
	writeJson(w, statusFor(err), errorResponse{Error: err.Error(), Detail: detail})
}

// statusFor maps the error taxonomy onto HTTP statuses. Ledger rejections
// arrive wrapped as external failures and read as a bad gateway.
func statusFor(err error) int {
	switch {
	case errors.Is(err, entity.ErrInvalidArgument), errors.Is(err, entity.ErrAuthorizationMismatch):
		return http.StatusBadRequest
	case errors.Is(err, entity.ErrInsufficientFunds):
		return http.StatusPaymentRequired
	case errors.Is(err, entity.ErrUnauthorized):
		return http.StatusForbidden
	case errors.Is(err, entity.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, entity.ErrInvalidState):
		return http.StatusConflict
	case errors.Is(err, entity.ErrPreconditionFailed):
		return http.StatusPreconditionFailed
	case errors.Is(err, entity.ErrExternalFailure):
		return http.StatusBadGateway
	case errors.Is(err, entity.ErrConfirmationTimeout):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, target interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(target); err != nil {
		zap.L().With(zap.Error(err)).Warn("Invalid request body")
		writeError(w, entity.ErrInvalidArgument, "invalid request body")
		return false
	}
	return true
}

// accountPayload is the request-body shape for a signing party. Account
// itself never unmarshals its key, so requests carry it explicitly.
type accountPayload struct {
	Address    string `json:"address"`
	SigningKey string `json:"signingKey"`
}

func (a accountPayload) account() entity.Account {
	return entity.Account{Address: a.Address, SigningKey: a.SigningKey}
}
