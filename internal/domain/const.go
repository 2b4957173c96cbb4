package domain

const (
	// Blockchain constants
	ETHEREUM_ZERO_ADDRESS     = "0x0000000000000000000000000000000000000000"
	DEFAULT_MULTICALL_ADDRESS = "0xcA11bde05977b3631167028862bE2a173976CA11"
	CRYPTOPUNKS_ADDRESS       = "0xb47e3cd837ddf8e4c57f05d70ab865de6e193bbb"

	// ERC-165 interface ids
	INTERFACE_ID_ERC721            = "0x80ac58cd"
	INTERFACE_ID_ERC721_ENUMERABLE = "0x780e9d63"
	INTERFACE_ID_ERC1155           = "0xd9b67a26"

	// MAX_VALID_TO stands in for an open-ended grant validity
	MAX_VALID_TO int64 = 99_999_999_999_999

	// MAX_COLLECTION_NAME_LENGTH is the column width of collection_name
	MAX_COLLECTION_NAME_LENGTH = 255
)

// MarketplaceAddresses are contracts whose involvement in a transaction marks it as a sale
var MarketplaceAddresses = map[string]string{
	"0x00000000006c3852cbef3e08e8df289169ede581": "seaport-1.1",
	"0x00000000000000adc04c56bf30ac9d3c0aaf14dc": "seaport-1.5",
	"0x000000000000ad05ccc4f10045630fb830b95127": "blur",
	"0x0000000000a39bb272e79075ade125fd351887ac": "blur-blend",
}

// IsMarketplace reports whether the lowercase address is a known marketplace
func IsMarketplace(address string) bool {
	_, ok := MarketplaceAddresses[NormalizeAddress(address)]
	return ok
}
