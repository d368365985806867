package archive

import (
	"fmt"
	"github.com/brightlist/marketplace-sdk/internal/config"
)

type Indices string

var (
	ListingIndex       Indices = "listing"
	ListingActionIndex Indices = "listingaction"
	SettlementIndex    Indices = "settlement"
)

// Sets the network and returns the full string
func (i *Indices) Get() string {
	return fmt.Sprintf("%s.%s.%s", config.Get().Network, config.Get().Index, string(*i))
}
