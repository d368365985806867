package api_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"github.com/brightlist/marketplace-sdk/internal/api"
	"github.com/brightlist/marketplace-sdk/internal/asset"
	"github.com/brightlist/marketplace-sdk/internal/entity"
	"github.com/brightlist/marketplace-sdk/internal/ledger"
	"github.com/brightlist/marketplace-sdk/internal/ledger/memledger"
	"github.com/brightlist/marketplace-sdk/internal/marketplace"
	"github.com/brightlist/marketplace-sdk/internal/payment"
	"github.com/brightlist/marketplace-sdk/internal/registry"
	"github.com/brightlist/marketplace-sdk/internal/settlement"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"net/http"
	"net/http/httptest"
	"testing"
)

const (
	minFee    = uint64(1000)
	maxRounds = uint64(5)
)

type fixture struct {
	router  *mux.Router
	ledger  *memledger.Ledger
	assetId uint64
}

func newFixture(t *testing.T) fixture {
	l := memledger.New(minFee)
	assert.NoError(t, l.CreateAccount("seller", "seller-key", 10_000_000))
	assert.NoError(t, l.CreateAccount("buyer", "buyer-key", 10_000_000))

	assetId, err := l.CreateAsset("seller", ledger.AssetParams{Name: "Print #1", Symbol: "PRNT", Total: 1})
	assert.NoError(t, err)

	coordinator := settlement.NewCoordinator(l, minFee, maxRounds)
	listings := registry.NewListingRegistry()
	marketplaceService := marketplace.NewService(listings, coordinator, l)
	assetService := asset.NewService(l, coordinator)
	paymentService := payment.NewService(l, coordinator)

	server := api.NewServer(marketplaceService, assetService, paymentService, coordinator)

	return fixture{router: server.Router(), ledger: l, assetId: assetId}
}

func (f fixture) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		assert.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	resp := httptest.NewRecorder()
	f.router.ServeHTTP(resp, req)

	return resp
}

func (f fixture) createListing(t *testing.T, price uint64, royalty *entity.Royalty) entity.Listing {
	resp := f.do(t, "POST", "/listings", map[string]interface{}{
		"seller":  map[string]string{"address": "seller", "signingKey": "seller-key"},
		"assetId": f.assetId,
		"price":   price,
		"royalty": royalty,
	})
	assert.Equal(t, http.StatusCreated, resp.Code)

	var listing entity.Listing
	assert.NoError(t, json.Unmarshal(resp.Body.Bytes(), &listing))

	return listing
}

func TestHealth(t *testing.T) {
	f := newFixture(t)

	resp := f.do(t, "GET", "/health", nil)

	assert.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "application/json", resp.Header().Get("Content-Type"))
	assert.Contains(t, resp.Body.String(), `"status":"ok"`)
}

func TestNotFoundRoute(t *testing.T) {
	f := newFixture(t)

	resp := f.do(t, "GET", "/nope", nil)

	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestCreateListing(t *testing.T) {
	f := newFixture(t)

	listing := f.createListing(t, 5_000_000, nil)

	assert.NotEmpty(t, listing.Id)
	assert.Equal(t, entity.ListingActive, listing.Status)
	assert.Equal(t, uint64(5_000_000), listing.Price)
}

func TestCreateListing_InvalidBody(t *testing.T) {
	f := newFixture(t)

	req := httptest.NewRequest("POST", "/listings", bytes.NewBufferString("{nope"))
	resp := httptest.NewRecorder()
	f.router.ServeHTTP(resp, req)

	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestCreateListing_ZeroPriceRejected(t *testing.T) {
	f := newFixture(t)

	resp := f.do(t, "POST", "/listings", map[string]interface{}{
		"seller":  map[string]string{"address": "seller", "signingKey": "seller-key"},
		"assetId": f.assetId,
		"price":   0,
	})

	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestCreateListing_UnownedAssetRejected(t *testing.T) {
	f := newFixture(t)

	resp := f.do(t, "POST", "/listings", map[string]interface{}{
		"seller":  map[string]string{"address": "buyer", "signingKey": "buyer-key"},
		"assetId": f.assetId,
		"price":   5_000_000,
	})

	assert.Equal(t, http.StatusPreconditionFailed, resp.Code)
}

func TestGetListing(t *testing.T) {
	f := newFixture(t)
	listing := f.createListing(t, 5_000_000, nil)

	resp := f.do(t, "GET", "/listings/"+listing.Id, nil)
	assert.Equal(t, http.StatusOK, resp.Code)

	var got entity.Listing
	assert.NoError(t, json.Unmarshal(resp.Body.Bytes(), &got))
	assert.Equal(t, listing.Id, got.Id)

	resp = f.do(t, "GET", "/listings/missing", nil)
	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestGetListings_Filters(t *testing.T) {
	f := newFixture(t)
	listing := f.createListing(t, 5_000_000, nil)

	var active []entity.Listing
	resp := f.do(t, "GET", "/listings", nil)
	assert.Equal(t, http.StatusOK, resp.Code)
	assert.NoError(t, json.Unmarshal(resp.Body.Bytes(), &active))
	assert.Len(t, active, 1)

	var bySeller []entity.Listing
	resp = f.do(t, "GET", "/listings?seller=seller", nil)
	assert.NoError(t, json.Unmarshal(resp.Body.Bytes(), &bySeller))
	assert.Len(t, bySeller, 1)
	assert.Equal(t, listing.Id, bySeller[0].Id)

	var byAsset []entity.Listing
	resp = f.do(t, "GET", fmt.Sprintf("/listings?assetId=%d", f.assetId), nil)
	assert.NoError(t, json.Unmarshal(resp.Body.Bytes(), &byAsset))
	assert.Len(t, byAsset, 1)

	resp = f.do(t, "GET", "/listings?assetId=abc", nil)
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestGetTotalCost(t *testing.T) {
	f := newFixture(t)
	listing := f.createListing(t, 5_000_000, nil)

	resp := f.do(t, "GET", "/listings/"+listing.Id+"/cost", nil)
	assert.Equal(t, http.StatusOK, resp.Code)

	var cost struct {
		ListingId string `json:"listingId"`
		TotalCost uint64 `json:"totalCost"`
		MinFee    uint64 `json:"minFee"`
	}
	assert.NoError(t, json.Unmarshal(resp.Body.Bytes(), &cost))
	assert.Equal(t, listing.Id, cost.ListingId)
	assert.Equal(t, uint64(5_000_000+2*minFee), cost.TotalCost)
	assert.Equal(t, minFee, cost.MinFee)
}

func TestBuyListing(t *testing.T) {
	f := newFixture(t)
	listing := f.createListing(t, 5_000_000, nil)

	resp := f.do(t, "POST", "/listings/"+listing.Id+"/buy", map[string]interface{}{
		"buyer":  map[string]string{"address": "buyer", "signingKey": "buyer-key"},
		"seller": "seller",
	})
	assert.Equal(t, http.StatusOK, resp.Code)

	var settled entity.Settlement
	assert.NoError(t, json.Unmarshal(resp.Body.Bytes(), &settled))
	assert.Equal(t, entity.SettlementConfirmed, settled.State)
	assert.NotEmpty(t, settled.TxID)

	// Sold listings cannot be bought twice.
	resp = f.do(t, "POST", "/listings/"+listing.Id+"/buy", map[string]interface{}{
		"buyer":  map[string]string{"address": "buyer", "signingKey": "buyer-key"},
		"seller": "seller",
	})
	assert.Equal(t, http.StatusConflict, resp.Code)
}

func TestBuyListing_SelfPurchaseRejected(t *testing.T) {
	f := newFixture(t)
	listing := f.createListing(t, 5_000_000, nil)

	resp := f.do(t, "POST", "/listings/"+listing.Id+"/buy", map[string]interface{}{
		"buyer":  map[string]string{"address": "seller", "signingKey": "seller-key"},
		"seller": "seller",
	})

	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestBuyListing_InsufficientFunds(t *testing.T) {
	f := newFixture(t)
	assert.NoError(t, f.ledger.CreateAccount("pauper", "pauper-key", 100))
	listing := f.createListing(t, 5_000_000, nil)

	resp := f.do(t, "POST", "/listings/"+listing.Id+"/buy", map[string]interface{}{
		"buyer":  map[string]string{"address": "pauper", "signingKey": "pauper-key"},
		"seller": "seller",
	})

	assert.Equal(t, http.StatusPaymentRequired, resp.Code)
}

func TestCancelListing(t *testing.T) {
	f := newFixture(t)
	listing := f.createListing(t, 5_000_000, nil)

	resp := f.do(t, "POST", "/listings/"+listing.Id+"/cancel", map[string]string{"seller": "buyer"})
	assert.Equal(t, http.StatusForbidden, resp.Code)

	resp = f.do(t, "POST", "/listings/"+listing.Id+"/cancel", map[string]string{"seller": "seller"})
	assert.Equal(t, http.StatusOK, resp.Code)

	var cancelled entity.Listing
	assert.NoError(t, json.Unmarshal(resp.Body.Bytes(), &cancelled))
	assert.Equal(t, entity.ListingCancelled, cancelled.Status)

	resp = f.do(t, "POST", "/listings/"+listing.Id+"/cancel", map[string]string{"seller": "seller"})
	assert.Equal(t, http.StatusConflict, resp.Code)
}

func TestGetSettlement(t *testing.T) {
	f := newFixture(t)
	listing := f.createListing(t, 5_000_000, nil)

	resp := f.do(t, "POST", "/listings/"+listing.Id+"/buy", map[string]interface{}{
		"buyer":  map[string]string{"address": "buyer", "signingKey": "buyer-key"},
		"seller": "seller",
	})
	assert.Equal(t, http.StatusOK, resp.Code)

	var settled entity.Settlement
	assert.NoError(t, json.Unmarshal(resp.Body.Bytes(), &settled))

	resp = f.do(t, "GET", "/settlements/"+settled.Id, nil)
	assert.Equal(t, http.StatusOK, resp.Code)

	resp = f.do(t, "GET", "/settlements/missing", nil)
	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestIssueAsset(t *testing.T) {
	f := newFixture(t)

	resp := f.do(t, "POST", "/assets", map[string]interface{}{
		"creator": map[string]string{"address": "seller", "signingKey": "seller-key"},
		"params":  map[string]interface{}{"name": "Print #2", "symbol": "PRNT", "total": 10},
	})
	assert.Equal(t, http.StatusCreated, resp.Code)

	var issued struct {
		AssetId uint64 `json:"assetId"`
	}
	assert.NoError(t, json.Unmarshal(resp.Body.Bytes(), &issued))
	assert.NotZero(t, issued.AssetId)

	resp = f.do(t, "GET", fmt.Sprintf("/assets/%d", issued.AssetId), nil)
	assert.Equal(t, http.StatusOK, resp.Code)

	var info ledger.AssetInfo
	assert.NoError(t, json.Unmarshal(resp.Body.Bytes(), &info))
	assert.Equal(t, "seller", info.Creator)
	assert.Equal(t, uint64(10), info.Params.Total)
}

func TestOptInAndHolding(t *testing.T) {
	f := newFixture(t)

	resp := f.do(t, "GET", fmt.Sprintf("/accounts/buyer/assets/%d", f.assetId), nil)
	assert.Equal(t, http.StatusNotFound, resp.Code)

	resp = f.do(t, "POST", fmt.Sprintf("/assets/%d/optin", f.assetId), map[string]interface{}{
		"account": map[string]string{"address": "buyer", "signingKey": "buyer-key"},
	})
	assert.Equal(t, http.StatusNoContent, resp.Code)

	resp = f.do(t, "GET", fmt.Sprintf("/accounts/buyer/assets/%d", f.assetId), nil)
	assert.Equal(t, http.StatusOK, resp.Code)

	var holding ledger.Holding
	assert.NoError(t, json.Unmarshal(resp.Body.Bytes(), &holding))
	assert.Equal(t, uint64(0), holding.Amount)
}

func TestGetBalance(t *testing.T) {
	f := newFixture(t)

	resp := f.do(t, "GET", "/accounts/seller/balance", nil)
	assert.Equal(t, http.StatusOK, resp.Code)

	var balance struct {
		Address string `json:"address"`
		Balance uint64 `json:"balance"`
	}
	assert.NoError(t, json.Unmarshal(resp.Body.Bytes(), &balance))
	assert.Equal(t, uint64(10_000_000), balance.Balance)
}
