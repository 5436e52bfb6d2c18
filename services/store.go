package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/Madhav-Gupta-28/barterx-backend-go/metrics"
	"github.com/Madhav-Gupta-28/barterx-backend-go/models"
	"github.com/Madhav-Gupta-28/barterx-backend-go/opensea"
	"github.com/Madhav-Gupta-28/barterx-backend-go/utils"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// MarketplaceAPI is the part of the OpenSea client the store views use.
type MarketplaceAPI interface {
	NFTsForAccount(ctx context.Context, address, contract string) ([]opensea.NFT, error)
	ContractNFTs(ctx context.Context, contract string) ([]opensea.NFT, error)
	CollectionStats(ctx context.Context, slug string) (*opensea.CollectionStats, error)
	NFTListings(ctx context.Context, contract, identifier string) ([]opensea.Listing, error)
	CollectionListings(ctx context.Context, slug string) (json.RawMessage, *opensea.CollectionListings, error)
}

type SlugFinder interface {
	FindWalletBySlugOwner(ctx context.Context, walletID string) (*models.Wallet, error)
}

// EnrichedNFT is an account NFT merged with its collection name, stats and
// lowest listing. Price and Currency are null when the NFT could not be
// enriched or is not listed.
type EnrichedNFT struct {
	opensea.NFT
	CollectionName  string          `json:"collection_name"`
	CollectionStats json.RawMessage `json:"collection_stats,omitempty"`
	Price           *string         `json:"price"`
	Currency        *string         `json:"currency"`
	Listed          bool            `json:"listed"`
}

type OwnedNFT struct {
	opensea.NFT
	UniqueKey string `json:"uniqueKey"`
}

// ListedNFT is a listing offered by the wallet, joined with token metadata.
type ListedNFT struct {
	Identifier      string `json:"identifier"`
	Name            string `json:"name"`
	Description     string `json:"description"`
	ImageURL        string `json:"image_url"`
	Price           string `json:"price"`
	Currency        string `json:"currency"`
	OrderHash       string `json:"order_hash"`
	ContractAddress string `json:"contract_address"`
	UniqueKey       string `json:"uniqueKey"`
}

type CollectionData struct {
	Listings    json.RawMessage `json:"listings"`
	Next        string          `json:"next,omitempty"`
	NFTMetadata []opensea.NFT   `json:"nftMetadata"`
	OwnerNFTs   []OwnedNFT      `json:"ownerNFTs"`
	ListedNFTs  []ListedNFT     `json:"listedNFTs"`
}

type CollectionView struct {
	Slug  string          `json:"slug"`
	Data  *CollectionData `json:"data,omitempty"`
	Error string          `json:"error,omitempty"`
}

type WalletCollections struct {
	Slugs       []string         `json:"slugs"`
	Collections []CollectionView `json:"collections"`
}

type StoreService struct {
	api         MarketplaceAPI
	slugs       SlugFinder
	concurrency int
}

func NewStoreService(api MarketplaceAPI, slugs SlugFinder, concurrency int) *StoreService {
	return &StoreService{api: api, slugs: slugs, concurrency: concurrency}
}

// EnrichAccountNFTs lists the NFTs held by address and enriches each one. A
// failure to list aborts; a failure to enrich one NFT only degrades that NFT.
func (s *StoreService) EnrichAccountNFTs(ctx context.Context, address string) ([]EnrichedNFT, error) {
	nfts, err := s.api.NFTsForAccount(ctx, address, "")
	if err != nil {
		return nil, err
	}

	return utils.BestEffortMap(ctx, nfts, s.concurrency, s.enrich, func(nft opensea.NFT, err error) EnrichedNFT {
		metrics.EnrichmentFailures.WithLabelValues("account_nft").Inc()
		log.Ctx(ctx).Warn().Err(err).Str("identifier", nft.Identifier).Str("component", "EnrichAccountNFTs").Msg("partial enrichment")
		return EnrichedNFT{NFT: nft, CollectionName: nft.Collection}
	}), nil
}

func (s *StoreService) enrich(ctx context.Context, nft opensea.NFT) (EnrichedNFT, error) {
	stats, err := s.api.CollectionStats(ctx, nft.Collection)
	if err != nil {
		return EnrichedNFT{}, errors.Wrap(err, "collection stats")
	}
	listings, err := s.api.NFTListings(ctx, nft.Contract, nft.Identifier)
	if err != nil {
		return EnrichedNFT{}, errors.Wrap(err, "nft listings")
	}

	out := EnrichedNFT{
		NFT:             nft,
		CollectionName:  nft.Collection,
		CollectionStats: stats.Summary(),
		Listed:          len(listings) > 0,
	}
	if stats.Name != "" {
		out.CollectionName = stats.Name
	}
	if len(listings) > 0 {
		price := listings[0].Price.Current.Value
		currency := listings[0].Price.Current.Currency
		out.Price = &price
		out.Currency = &currency
	}
	return out, nil
}

// WalletCollections resolves every slug stored for walletID into its
// listings, the contract's NFTs, the wallet's NFTs from that contract and the
// wallet's own listings. A slug whose listings cannot be fetched carries an
// error instead of data.
func (s *StoreService) WalletCollections(ctx context.Context, walletID string) (*WalletCollections, error) {
	wallet, err := s.slugs.FindWalletBySlugOwner(ctx, walletID)
	if err != nil {
		return nil, err
	}

	out := &WalletCollections{Slugs: []string{}, Collections: []CollectionView{}}
	if wallet == nil || len(wallet.Slugs) == 0 {
		return out, nil
	}
	out.Slugs = wallet.Slugs

	out.Collections = utils.BestEffortMap(ctx, wallet.Slugs, s.concurrency,
		func(ctx context.Context, slug string) (CollectionView, error) {
			data, err := s.collection(ctx, slug, walletID)
			if err != nil {
				return CollectionView{}, err
			}
			return CollectionView{Slug: slug, Data: data}, nil
		},
		func(slug string, err error) CollectionView {
			metrics.EnrichmentFailures.WithLabelValues("collection").Inc()
			log.Ctx(ctx).Warn().Err(err).Str("slug", slug).Str("component", "WalletCollections").Msg("collection unavailable")
			return CollectionView{Slug: slug, Error: err.Error()}
		})
	return out, nil
}

func (s *StoreService) collection(ctx context.Context, slug, walletID string) (*CollectionData, error) {
	raw, listings, err := s.api.CollectionListings(ctx, slug)
	if err != nil {
		return nil, err
	}

	var body struct {
		Listings json.RawMessage `json:"listings"`
		Next     string          `json:"next"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		return nil, errors.Wrap(err, "decode listings")
	}
	if len(body.Listings) == 0 || string(body.Listings) == "null" {
		body.Listings = json.RawMessage("[]")
	}

	data := &CollectionData{
		Listings:    body.Listings,
		Next:        body.Next,
		NFTMetadata: []opensea.NFT{},
		OwnerNFTs:   []OwnedNFT{},
		ListedNFTs:  []ListedNFT{},
	}

	contract := listings.Contract()
	if contract == "" {
		return data, nil
	}

	all, err := s.api.ContractNFTs(ctx, contract)
	if err != nil {
		metrics.EnrichmentFailures.WithLabelValues("contract_nfts").Inc()
		log.Ctx(ctx).Warn().Err(err).Str("contract", contract).Str("component", "WalletCollections").Msg("contract NFTs unavailable")
		return data, nil
	}
	data.NFTMetadata = all

	owned, err := s.api.NFTsForAccount(ctx, walletID, contract)
	if err != nil {
		metrics.EnrichmentFailures.WithLabelValues("owned_nfts").Inc()
		log.Ctx(ctx).Warn().Err(err).Str("contract", contract).Str("component", "WalletCollections").Msg("owned NFTs unavailable")
	}
	for _, nft := range owned {
		data.OwnerNFTs = append(data.OwnerNFTs, OwnedNFT{
			NFT:       nft,
			UniqueKey: fmt.Sprintf("%s-%s-owned", contract, nft.Identifier),
		})
	}

	data.ListedNFTs = listedBy(listings.Listings, walletID, contract, all)
	return data, nil
}

// listedBy returns the listings offered by wallet, joined with token metadata.
func listedBy(listings []opensea.Listing, wallet, contract string, nfts []opensea.NFT) []ListedNFT {
	byID := make(map[string]opensea.NFT, len(nfts))
	for _, nft := range nfts {
		byID[nft.Identifier] = nft
	}

	out := []ListedNFT{}
	for _, l := range listings {
		params := l.ProtocolData.Parameters
		if !strings.EqualFold(params.Offerer, wallet) {
			continue
		}

		var tokenID string
		if len(params.Offer) > 0 {
			tokenID = params.Offer[0].IdentifierOrCriteria
		}
		meta := byID[tokenID]
		name := meta.Name
		if name == "" {
			name = "Unknown"
		}

		item := ListedNFT{
			Identifier:      tokenID,
			Name:            name,
			Description:     meta.Description,
			ImageURL:        meta.ImageURL,
			OrderHash:       l.OrderHash,
			ContractAddress: contract,
			UniqueKey:       fmt.Sprintf("%s-%s-listed-%s", contract, tokenID, l.OrderHash),
		}
		if len(params.Consideration) > 0 {
			item.Price = params.Consideration[0].StartAmount
			item.Currency = params.Consideration[0].Token
		}
		out = append(out, item)
	}
	return out
}
