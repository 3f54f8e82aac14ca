package testutil

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// JSONRPCRequest represents a JSON-RPC request.
type JSONRPCRequest struct {
	JSONRPC string          `json:"jsonrpc"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params"`
	ID      json.RawMessage `json:"id"`
}

// EthCallHandler answers one eth_call. A non-nil error becomes a JSON-RPC error.
type EthCallHandler func(to common.Address, data []byte, block string) ([]byte, error)

// StartMockEthRPC starts a JSON-RPC node that serves eth_call through handler
// and eth_chainId as chainID.
func StartMockEthRPC(t *testing.T, chainID uint64, handler EthCallHandler) *httptest.Server {
	t.Helper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		w.Header().Set("Content-Type", "application/json")

		var req JSONRPCRequest
		if err := json.Unmarshal(body, &req); err != nil {
			WriteRPCError(w, json.RawMessage(`1`), -32700, "parse error")
			return
		}

		switch req.Method {
		case "eth_call":
			to, data, block, ok := parseEthCall(req.Params)
			if !ok {
				WriteRPCError(w, req.ID, -32602, "invalid params")
				return
			}
			ret, err := handler(to, data, block)
			if err != nil {
				WriteRPCError(w, req.ID, 3, err.Error())
				return
			}
			resultJSON, _ := json.Marshal(hexutil.Bytes(ret))
			WriteRPCResult(w, req.ID, resultJSON)

		case "eth_chainId":
			resultJSON, _ := json.Marshal(hexutil.Uint64(chainID))
			WriteRPCResult(w, req.ID, resultJSON)

		default:
			WriteRPCError(w, req.ID, -32601, "method not found: "+req.Method)
		}
	}))
	t.Cleanup(server.Close)
	return server
}

// WriteRPCResult writes a JSON-RPC success response.
func WriteRPCResult(w http.ResponseWriter, id, result json.RawMessage) {
	_ = json.NewEncoder(w).Encode(map[string]json.RawMessage{
		"jsonrpc": json.RawMessage(`"2.0"`),
		"id":      id,
		"result":  result,
	})
}

// WriteRPCError writes a JSON-RPC error response.
func WriteRPCError(w http.ResponseWriter, id json.RawMessage, code int, message string) {
	errJSON, _ := json.Marshal(map[string]interface{}{"code": code, "message": message})
	_ = json.NewEncoder(w).Encode(map[string]json.RawMessage{
		"jsonrpc": json.RawMessage(`"2.0"`),
		"id":      id,
		"error":   json.RawMessage(errJSON),
	})
}

func parseEthCall(params json.RawMessage) (common.Address, []byte, string, bool) {
	var p []json.RawMessage
	if err := json.Unmarshal(params, &p); err != nil || len(p) < 1 {
		return common.Address{}, nil, "", false
	}

	// go-ethereum may use "data" or "input" for the calldata field
	var callObj struct {
		To    common.Address `json:"to"`
		Data  hexutil.Bytes  `json:"data"`
		Input hexutil.Bytes  `json:"input"`
	}
	if err := json.Unmarshal(p[0], &callObj); err != nil {
		return common.Address{}, nil, "", false
	}
	data := callObj.Input
	if len(data) == 0 {
		data = callObj.Data
	}

	block := "latest"
	if len(p) > 1 {
		_ = json.Unmarshal(p[1], &block)
	}
	return callObj.To, data, block, true
}
