// Package contracts holds typed bindings for the ledger, token and NFT
// contracts the apps read from and write to.
package contracts

import (
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

const MarketplaceABI = `[
 {"type":"function","name":"productCount","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint256"}]},
 {"type":"function","name":"orderCount","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint256"}]},
 {"type":"function","name":"store","stateMutability":"view","inputs":[{"name":"","type":"uint256"}],"outputs":[
  {"name":"id","type":"uint256"},
  {"name":"name","type":"bytes32"},
  {"name":"price","type":"uint256"},
  {"name":"stock","type":"uint256"},
  {"name":"description","type":"bytes"},
  {"name":"image","type":"bytes"},
  {"name":"productType","type":"bytes32"},
  {"name":"condition","type":"bytes32"},
  {"name":"seller","type":"address"}]},
 {"type":"function","name":"orders","stateMutability":"view","inputs":[{"name":"","type":"uint256"}],"outputs":[
  {"name":"productId","type":"uint256"},
  {"name":"buyer","type":"address"},
  {"name":"seller","type":"address"},
  {"name":"amountPaid","type":"uint256"},
  {"name":"isPaid","type":"bool"},
  {"name":"isDelivered","type":"bool"}]},
 {"type":"function","name":"addProduct","stateMutability":"nonpayable","inputs":[
  {"name":"name","type":"bytes32"},
  {"name":"price","type":"uint256"},
  {"name":"stock","type":"uint256"},
  {"name":"description","type":"bytes"},
  {"name":"image","type":"bytes"},
  {"name":"productType","type":"bytes32"},
  {"name":"condition","type":"bytes32"}],"outputs":[]},
 {"type":"function","name":"buyProduct","stateMutability":"payable","inputs":[{"name":"productId","type":"uint256"},{"name":"isPrepaid","type":"bool"}],"outputs":[]},
 {"type":"function","name":"confirmDelivery","stateMutability":"nonpayable","inputs":[{"name":"orderId","type":"uint256"}],"outputs":[]},
 {"type":"function","name":"cancelOrder","stateMutability":"nonpayable","inputs":[{"name":"orderId","type":"uint256"}],"outputs":[]},
 {"type":"event","name":"OrderPlaced","anonymous":false,"inputs":[
  {"name":"orderId","type":"uint256","indexed":true},
  {"name":"productId","type":"uint256","indexed":true},
  {"name":"buyer","type":"address","indexed":true},
  {"name":"seller","type":"address","indexed":false},
  {"name":"isPaid","type":"bool","indexed":false}]},
 {"type":"event","name":"OrderPaid","anonymous":false,"inputs":[
  {"name":"orderId","type":"uint256","indexed":true},
  {"name":"amountPaid","type":"uint256","indexed":false}]},
 {"type":"event","name":"OrderDelivered","anonymous":false,"inputs":[
  {"name":"orderId","type":"uint256","indexed":true}]}
]`

const ERC20ABI = `[
 {"type":"function","name":"balanceOf","stateMutability":"view","inputs":[{"name":"account","type":"address"}],"outputs":[{"name":"","type":"uint256"}]},
 {"type":"function","name":"allowance","stateMutability":"view","inputs":[{"name":"owner","type":"address"},{"name":"spender","type":"address"}],"outputs":[{"name":"","type":"uint256"}]},
 {"type":"function","name":"decimals","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint8"}]},
 {"type":"function","name":"approve","stateMutability":"nonpayable","inputs":[{"name":"spender","type":"address"},{"name":"amount","type":"uint256"}],"outputs":[{"name":"","type":"bool"}]}
]`

const ERC721ABI = `[
 {"type":"function","name":"ownerOf","stateMutability":"view","inputs":[{"name":"tokenId","type":"uint256"}],"outputs":[{"name":"","type":"address"}]},
 {"type":"function","name":"transferFrom","stateMutability":"nonpayable","inputs":[{"name":"from","type":"address"},{"name":"to","type":"address"},{"name":"tokenId","type":"uint256"}],"outputs":[]}
]`

var (
	marketplaceABI = mustParse(MarketplaceABI)
	erc20ABI       = mustParse(ERC20ABI)
	erc721ABI      = mustParse(ERC721ABI)
)

func mustParse(raw string) abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(raw))
	if err != nil {
		panic(err)
	}
	return parsed
}

// ParsedMarketplaceABI returns the parsed ledger ABI.
func ParsedMarketplaceABI() abi.ABI { return marketplaceABI }

// ParsedERC20ABI returns the parsed token ABI.
func ParsedERC20ABI() abi.ABI { return erc20ABI }

// ParsedERC721ABI returns the parsed NFT ABI.
func ParsedERC721ABI() abi.ABI { return erc721ABI }
