package opensea

import "encoding/json"

type NFT struct {
	Identifier    string `json:"identifier"`
	Collection    string `json:"collection"`
	Contract      string `json:"contract"`
	TokenStandard string `json:"token_standard,omitempty"`
	Name          string `json:"name"`
	Description   string `json:"description"`
	ImageURL      string `json:"image_url"`
	MetadataURL   string `json:"metadata_url,omitempty"`
	OpenseaURL    string `json:"opensea_url,omitempty"`
	UpdatedAt     string `json:"updated_at,omitempty"`
	IsDisabled    bool   `json:"is_disabled"`
	IsNSFW        bool   `json:"is_nsfw"`
}

type nftsResponse struct {
	NFTs []NFT `json:"nfts"`
}

type Amount struct {
	Currency string `json:"currency"`
	Decimals int    `json:"decimals"`
	Value    string `json:"value"`
}

type OfferItem struct {
	ItemType             int    `json:"itemType"`
	Token                string `json:"token"`
	IdentifierOrCriteria string `json:"identifierOrCriteria"`
	StartAmount          string `json:"startAmount"`
	EndAmount            string `json:"endAmount"`
}

type ConsiderationItem struct {
	OfferItem
	Recipient string `json:"recipient"`
}

type OrderParameters struct {
	Offerer       string              `json:"offerer"`
	Offer         []OfferItem         `json:"offer"`
	Consideration []ConsiderationItem `json:"consideration"`
}

type ProtocolData struct {
	Parameters OrderParameters `json:"parameters"`
}

// Listing is a Seaport listing as returned by the listings endpoints.
type Listing struct {
	OrderHash    string `json:"order_hash"`
	Chain        string `json:"chain,omitempty"`
	Price        struct {
		Current Amount `json:"current"`
	} `json:"price"`
	ProtocolData ProtocolData `json:"protocol_data"`
}

// CollectionListings is the decoded body of /listings/collection/{slug}/all.
type CollectionListings struct {
	Listings []Listing `json:"listings"`
	Next     string    `json:"next,omitempty"`
}

// Contract returns the token contract of the first listing's first offer item.
func (c CollectionListings) Contract() string {
	if len(c.Listings) == 0 || len(c.Listings[0].ProtocolData.Parameters.Offer) == 0 {
		return ""
	}
	return c.Listings[0].ProtocolData.Parameters.Offer[0].Token
}

type listingsResponse struct {
	Listings []Listing `json:"listings"`
}

// CollectionStats keeps the stats body as-is; Name is only set by older
// API versions.
type CollectionStats struct {
	Name  string          `json:"name"`
	Stats json.RawMessage `json:"stats"`
	Total json.RawMessage `json:"total"`
}

// Summary returns the stats object, preferring the legacy "stats" field.
func (s CollectionStats) Summary() json.RawMessage {
	switch {
	case len(s.Stats) > 0 && string(s.Stats) != "null":
		return s.Stats
	case len(s.Total) > 0 && string(s.Total) != "null":
		return s.Total
	default:
		return json.RawMessage("{}")
	}
}
