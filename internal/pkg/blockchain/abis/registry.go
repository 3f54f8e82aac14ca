package abis

import "github.com/ethereum/go-ethereum/accounts/abi"

const spaceRegistryABI = `[
	{
		"inputs": [{"internalType": "string", "name": "name", "type": "string"}],
		"name": "spaceExist",
		"outputs": [{"internalType": "bool", "name": "", "type": "bool"}],
		"stateMutability": "view",
		"type": "function"
	},
	{
		"inputs": [{"internalType": "string", "name": "name", "type": "string"}],
		"name": "getSpace",
		"outputs": [{"internalType": "address", "name": "", "type": "address"}],
		"stateMutability": "view",
		"type": "function"
	}
]`

var getSpaceRegistryABI = cached(spaceRegistryABI)

// GetSpaceRegistryABI returns the space registry ABI (spaceExist, getSpace).
func GetSpaceRegistryABI() (*abi.ABI, error) {
	return getSpaceRegistryABI()
}
