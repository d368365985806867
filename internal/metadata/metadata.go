package metadata

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"github.com/brightlist/marketplace-sdk/internal/config"
	"github.com/brightlist/marketplace-sdk/internal/helper"
	"github.com/brightlist/marketplace-sdk/internal/ledger"
	"github.com/hashicorp/go-retryablehttp"
	"go.uber.org/zap"
	"strings"
)

var (
	ErrNoMetadataUrl = errors.New("asset has no metadata url")
)

// Service fetches the JSON document an asset's url points at. ipfs
// references are fetched through the configured gateways, first one to
// answer wins.
type Service interface {
	GetAssetMetadata(info ledger.AssetInfo) (map[string]interface{}, error)
}

type service struct {
	client *retryablehttp.Client
}

func NewMetadataService(client *retryablehttp.Client) Service {
	return service{client}
}

func (s service) GetAssetMetadata(info ledger.AssetInfo) (map[string]interface{}, error) {
	uri := info.Params.Url
	if uri == "" {
		return nil, ErrNoMetadataUrl
	}

	if ipfsUri := helper.GetIpfs(uri); ipfsUri != nil {
		return s.getIpfsMetadata(*ipfsUri)
	}

	if !helper.IsUrl(uri) {
		return nil, fmt.Errorf("unsupported metadata url: %s", uri)
	}

	return s.fetch(uri)
}

func (s service) getIpfsMetadata(ipfsUri string) (map[string]interface{}, error) {
	path := strings.TrimPrefix(ipfsUri, "ipfs://")

	var lastErr error
	for _, host := range config.Get().IpfsHosts {
		md, err := s.fetch(fmt.Sprintf("%s/ipfs/%s", host, path))
		if err == nil {
			return md, nil
		}

		zap.L().With(zap.Error(err), zap.String("host", host)).Debug("Metadata: ipfs gateway failed")
		lastErr = err
	}

	return nil, lastErr
}

func (s service) fetch(uri string) (map[string]interface{}, error) {
	resp, err := s.client.Get(uri)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		return nil, errors.New(resp.Status)
	}

	buf := new(bytes.Buffer)
	_, err = buf.ReadFrom(resp.Body)
	if err != nil {
		return nil, err
	}

	var md map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &md); err != nil {
		return nil, err
	}

	return md, nil
}
