package helper

import (
	"net/url"
	"regexp"
	"strings"
)

var cidRe = regexp.MustCompile("(Qm[1-9A-HJ-NP-Za-km-z]{44}.*$)")

func IsUrl(uri string) bool {
	u, err := url.Parse(uri)
	return err == nil && u.Scheme != "" && u.Host != ""
}

func IsIpfs(uri string) bool {
	parts := cidRe.FindStringSubmatch(uri)
	if len(parts) == 2 {
		return true
	}

	if !IsUrl(uri) {
		return false
	}

	u, _ := url.Parse(uri)
	if u.Scheme == "ipfs" {
		return true
	}

	return false
}

// GetIpfs normalises any recognised ipfs reference to ipfs://<cid>[/path].
// Returns nil when the uri carries no ipfs content.
func GetIpfs(ipfsUri string) *string {
	parts := cidRe.FindStringSubmatch(ipfsUri)
	if len(parts) == 2 {
		normalised := "ipfs://" + parts[1]
		return &normalised
	}

	if strings.HasPrefix(ipfsUri, "ipfs://") {
		return &ipfsUri
	}

	return nil
}
