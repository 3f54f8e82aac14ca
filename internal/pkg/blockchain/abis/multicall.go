package abis

import "github.com/ethereum/go-ethereum/accounts/abi"

// aggregate and getEthBalance match the original Multicall deployment.
// tryAggregate is only present on Multicall2-compatible deployments.
const multicallABI = `[
	{
		"inputs": [
			{
				"components": [
					{"internalType": "address", "name": "target", "type": "address"},
					{"internalType": "bytes", "name": "callData", "type": "bytes"}
				],
				"internalType": "struct Multicall.Call[]",
				"name": "calls",
				"type": "tuple[]"
			}
		],
		"name": "aggregate",
		"outputs": [
			{"internalType": "uint256", "name": "blockNumber", "type": "uint256"},
			{"internalType": "bytes[]", "name": "returnData", "type": "bytes[]"}
		],
		"stateMutability": "nonpayable",
		"type": "function"
	},
	{
		"inputs": [
			{"internalType": "bool", "name": "requireSuccess", "type": "bool"},
			{
				"components": [
					{"internalType": "address", "name": "target", "type": "address"},
					{"internalType": "bytes", "name": "callData", "type": "bytes"}
				],
				"internalType": "struct Multicall2.Call[]",
				"name": "calls",
				"type": "tuple[]"
			}
		],
		"name": "tryAggregate",
		"outputs": [
			{
				"components": [
					{"internalType": "bool", "name": "success", "type": "bool"},
					{"internalType": "bytes", "name": "returnData", "type": "bytes"}
				],
				"internalType": "struct Multicall2.Result[]",
				"name": "returnData",
				"type": "tuple[]"
			}
		],
		"stateMutability": "nonpayable",
		"type": "function"
	},
	{
		"inputs": [{"internalType": "address", "name": "addr", "type": "address"}],
		"name": "getEthBalance",
		"outputs": [{"internalType": "uint256", "name": "balance", "type": "uint256"}],
		"stateMutability": "view",
		"type": "function"
	},
	{
		"inputs": [],
		"name": "getBlockNumber",
		"outputs": [{"internalType": "uint256", "name": "blockNumber", "type": "uint256"}],
		"stateMutability": "view",
		"type": "function"
	}
]`

var getMulticallABI = cached(multicallABI)

// GetMulticallABI returns the aggregator contract ABI.
func GetMulticallABI() (*abi.ABI, error) {
	return getMulticallABI()
}
