package helper_test

import (
	"github.com/brightlist/marketplace-sdk/internal/helper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"testing"
)

const cid = "QmYwAPJzv5CZsnA625s3Xf2nemtYgPpHdWEz79ojWnPbdG"

func TestIsUrl(t *testing.T) {
	assert.True(t, helper.IsUrl("https://example.com/meta/1.json"))
	assert.True(t, helper.IsUrl("ipfs://"+cid))
	assert.False(t, helper.IsUrl("not a url"))
	assert.False(t, helper.IsUrl("/relative/path"))
}

func TestIsIpfs(t *testing.T) {
	assert.True(t, helper.IsIpfs("ipfs://"+cid))
	assert.True(t, helper.IsIpfs("https://gateway.pinata.cloud/ipfs/"+cid))
	assert.True(t, helper.IsIpfs(cid+"/1.json"))
	assert.False(t, helper.IsIpfs("https://example.com/meta/1.json"))
	assert.False(t, helper.IsIpfs("not a url"))
}

func TestGetIpfs(t *testing.T) {
	normalised := helper.GetIpfs("https://gateway.pinata.cloud/ipfs/" + cid + "/1.json")
	require.NotNil(t, normalised)
	assert.Equal(t, "ipfs://"+cid+"/1.json", *normalised)

	passthrough := helper.GetIpfs("ipfs://" + cid)
	require.NotNil(t, passthrough)
	assert.Equal(t, "ipfs://"+cid, *passthrough)

	assert.Nil(t, helper.GetIpfs("https://example.com/meta/1.json"))
}
