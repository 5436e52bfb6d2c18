package utils

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"math/big"
	"strings"
	"sync"
	"time"

	"github.com/Madhav-Gupta-28/barterx-backend-go/contracts"
	"github.com/Madhav-Gupta-28/barterx-backend-go/models"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

const (
	nftTransferGasLimit = 500000
	valueTransferGas    = 21000
	receiptTimeout      = 2 * time.Minute
)

// SaleBackend is the subset of ethclient.Client the custodial sale needs.
type SaleBackend interface {
	bind.ContractBackend
	bind.DeployBackend
}

type SaleRequest struct {
	NFTContract common.Address
	TokenID     *big.Int
	Buyer       common.Address
	Payment     *big.Int
}

type SaleResult struct {
	FeeCollected *big.Int
	SellerAmount *big.Int
	FeeTxHash    common.Hash
	TxHash       common.Hash
}

// NFTSaleProcessor transfers marketplace-held NFTs to buyers, paying the
// marketplace fee from the custodial account.
type NFTSaleProcessor struct {
	backend      SaleBackend
	privateKey   *ecdsa.PrivateKey
	from         common.Address
	feeRecipient common.Address
	feePercent   int64
	chainID      *big.Int

	// held from the pending nonce read until both transactions are sent
	mu sync.Mutex
}

func NewNFTSaleProcessor(backend SaleBackend, privateKeyHex, feeRecipient string, feePercent, chainID int64) (*NFTSaleProcessor, error) {
	privateKey, err := crypto.HexToECDSA(strings.TrimPrefix(privateKeyHex, "0x"))
	if err != nil {
		return nil, fmt.Errorf("failed to parse private key: %v", err)
	}
	if !common.IsHexAddress(feeRecipient) {
		return nil, fmt.Errorf("invalid fee recipient %q", feeRecipient)
	}

	return &NFTSaleProcessor{
		backend:      backend,
		privateKey:   privateKey,
		from:         crypto.PubkeyToAddress(privateKey.PublicKey),
		feeRecipient: common.HexToAddress(feeRecipient),
		feePercent:   feePercent,
		chainID:      big.NewInt(chainID),
	}, nil
}

// Address is the custodial account holding listed NFTs.
func (p *NFTSaleProcessor) Address() common.Address {
	return p.from
}

// SplitPayment divides amount into the marketplace fee (rounded down) and the
// seller's share.
func SplitPayment(amount *big.Int, feePercent int64) (fee, seller *big.Int) {
	fee = new(big.Int).Mul(amount, big.NewInt(feePercent))
	fee.Quo(fee, big.NewInt(100))
	seller = new(big.Int).Sub(amount, fee)
	return fee, seller
}

// Sell checks custody of the token, sends the fee to the fee recipient and
// transfers the token to the buyer, waiting for both receipts. Once both
// transactions are out the wait no longer follows ctx, only receiptTimeout.
func (p *NFTSaleProcessor) Sell(ctx context.Context, req SaleRequest) (*SaleResult, error) {
	nft := contracts.NewERC721(req.NFTContract, p.backend)

	owner, err := nft.OwnerOf(&bind.CallOpts{Context: ctx}, req.TokenID)
	if err != nil {
		return nil, fmt.Errorf("failed to read owner: %w", err)
	}
	if owner != p.from {
		return nil, models.ErrNotOwner
	}

	fee, sellerAmount := SplitPayment(req.Payment, p.feePercent)

	feeTx, transferTx, err := p.submit(ctx, nft, req, fee)
	if err != nil {
		return nil, err
	}

	log.Ctx(ctx).Info().
		Str("feeTx", feeTx.Hash().Hex()).
		Str("transferTx", transferTx.Hash().Hex()).
		Str("component", "NFTSaleProcessor").
		Msg("sale submitted")

	waitCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), receiptTimeout)
	defer cancel()

	g, gctx := errgroup.WithContext(waitCtx)
	for _, tx := range []*types.Transaction{feeTx, transferTx} {
		tx := tx
		g.Go(func() error {
			receipt, err := bind.WaitMined(gctx, p.backend, tx)
			if err != nil {
				return fmt.Errorf("waiting for %s: %w", tx.Hash().Hex(), err)
			}
			if receipt.Status != types.ReceiptStatusSuccessful {
				return fmt.Errorf("transaction %s reverted", tx.Hash().Hex())
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &SaleResult{
		FeeCollected: fee,
		SellerAmount: sellerAmount,
		FeeTxHash:    feeTx.Hash(),
		TxHash:       transferTx.Hash(),
	}, nil
}

// submit sends the fee and the token transfer on consecutive nonces.
func (p *NFTSaleProcessor) submit(ctx context.Context, nft *contracts.ERC721, req SaleRequest, fee *big.Int) (feeTx, transferTx *types.Transaction, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	nonce, err := p.backend.PendingNonceAt(ctx, p.from)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get nonce: %v", err)
	}

	gasPrice, err := p.backend.SuggestGasPrice(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get gas price: %v", err)
	}

	feeTx, err = p.sendValue(ctx, p.feeRecipient, fee, nonce, gasPrice)
	if err != nil {
		return nil, nil, err
	}

	opts, err := bind.NewKeyedTransactorWithChainID(p.privateKey, p.chainID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to build transactor: %w", err)
	}
	opts.Context = ctx
	opts.GasLimit = nftTransferGasLimit
	opts.GasPrice = gasPrice
	opts.Nonce = new(big.Int).SetUint64(nonce + 1)

	transferTx, err = nft.TransferFrom(opts, p.from, req.Buyer, req.TokenID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to send transfer: %w", err)
	}
	return feeTx, transferTx, nil
}

func (p *NFTSaleProcessor) sendValue(ctx context.Context, to common.Address, amount *big.Int, nonce uint64, gasPrice *big.Int) (*types.Transaction, error) {
	tx := types.NewTx(&types.LegacyTx{
		Nonce:    nonce,
		To:       &to,
		Value:    amount,
		Gas:      valueTransferGas,
		GasPrice: gasPrice,
	})

	signedTx, err := types.SignTx(tx, types.NewEIP155Signer(p.chainID), p.privateKey)
	if err != nil {
		return nil, fmt.Errorf("failed to sign transaction: %v", err)
	}

	if err := p.backend.SendTransaction(ctx, signedTx); err != nil {
		return nil, fmt.Errorf("failed to send transaction: %v", err)
	}

	return signedTx, nil
}
