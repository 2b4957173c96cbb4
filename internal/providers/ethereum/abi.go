package ethereum

import (
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

const erc721ABIJSON = `[
	{"constant":true,"inputs":[{"name":"tokenId","type":"uint256"}],"name":"ownerOf","outputs":[{"name":"","type":"address"}],"stateMutability":"view","type":"function"},
	{"constant":true,"inputs":[],"name":"name","outputs":[{"name":"","type":"string"}],"stateMutability":"view","type":"function"},
	{"constant":true,"inputs":[],"name":"totalSupply","outputs":[{"name":"","type":"uint256"}],"stateMutability":"view","type":"function"},
	{"constant":true,"inputs":[{"name":"index","type":"uint256"}],"name":"tokenByIndex","outputs":[{"name":"","type":"uint256"}],"stateMutability":"view","type":"function"},
	{"constant":true,"inputs":[{"name":"interfaceId","type":"bytes4"}],"name":"supportsInterface","outputs":[{"name":"","type":"bool"}],"stateMutability":"view","type":"function"}
]`

const punksABIJSON = `[
	{"constant":true,"inputs":[{"name":"","type":"uint256"}],"name":"punkIndexToAddress","outputs":[{"name":"","type":"address"}],"stateMutability":"view","type":"function"}
]`

const multicall3ABIJSON = `[
	{"inputs":[{"name":"requireSuccess","type":"bool"},{"components":[{"name":"target","type":"address"},{"name":"callData","type":"bytes"}],"name":"calls","type":"tuple[]"}],
	 "name":"tryAggregate","outputs":[{"components":[{"name":"success","type":"bool"},{"name":"returnData","type":"bytes"}],"name":"returnData","type":"tuple[]"}],
	 "stateMutability":"payable","type":"function"}
]`

var (
	erc721ABI     = mustParseABI(erc721ABIJSON)
	punksABI      = mustParseABI(punksABIJSON)
	multicall3ABI = mustParseABI(multicall3ABIJSON)
)

var (
	// Transfer(address indexed from, address indexed to, uint256 indexed tokenId); ERC-20 shares the signature
	TransferEventSignature = crypto.Keccak256Hash([]byte("Transfer(address,address,uint256)"))

	// CryptoPunks PunkTransfer(address indexed from, address indexed to, uint256 punkIndex)
	PunkTransferEventSignature = crypto.Keccak256Hash([]byte("PunkTransfer(address,address,uint256)"))

	// CryptoPunks Assign(address indexed to, uint256 punkIndex)
	PunkAssignEventSignature = crypto.Keccak256Hash([]byte("Assign(address,uint256)"))

	// CryptoPunks PunkBought(uint256 indexed punkIndex, uint256 value, address indexed fromAddress, address indexed toAddress)
	PunkBoughtEventSignature = crypto.Keccak256Hash([]byte("PunkBought(uint256,uint256,address,address)"))
)

func mustParseABI(raw string) abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(raw))
	if err != nil {
		panic(err)
	}
	return parsed
}

// interfaceID converts a "0x"-prefixed 4-byte hex selector into a bytes4 value
func interfaceID(hex string) [4]byte {
	var id [4]byte
	copy(id[:], common.FromHex(hex))
	return id
}
