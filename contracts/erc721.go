package contracts

import (
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// ERC721 binds an NFT contract for ownership reads and custodial transfers.
type ERC721 struct {
	contract *bind.BoundContract
}

func NewERC721(address common.Address, backend bind.ContractBackend) *ERC721 {
	return &ERC721{contract: bind.NewBoundContract(address, erc721ABI, backend, backend, backend)}
}

func (n *ERC721) OwnerOf(opts *bind.CallOpts, tokenID *big.Int) (common.Address, error) {
	var out []interface{}
	if err := n.contract.Call(opts, &out, "ownerOf", tokenID); err != nil {
		return common.Address{}, err
	}
	return *abi.ConvertType(out[0], new(common.Address)).(*common.Address), nil
}

func (n *ERC721) TransferFrom(opts *bind.TransactOpts, from, to common.Address, tokenID *big.Int) (*types.Transaction, error) {
	return n.contract.Transact(opts, "transferFrom", from, to, tokenID)
}
