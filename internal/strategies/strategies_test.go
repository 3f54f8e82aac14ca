package strategies

import (
	"context"
	"errors"
	"math/big"
	"reflect"
	"testing"

	"github.com/ethereum/go-ethereum/common"

	"github.com/archon-research/snapshot-scores/internal/domain/entity"
	"github.com/archon-research/snapshot-scores/internal/pkg/blockchain/abis"
	"github.com/archon-research/snapshot-scores/internal/pkg/blockchain/multicall"
	"github.com/archon-research/snapshot-scores/internal/pkg/networks"
	"github.com/archon-research/snapshot-scores/internal/testutil"
)

const (
	token   = "0x6b175474e89094c44da98b954eedeac495271d0f"
	holderA = "0x1111111111111111111111111111111111111111"
	holderB = "0x2222222222222222222222222222222222222222"
)

var oneToken = new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil)

func tokens(n int64) *big.Int {
	return new(big.Int).Mul(big.NewInt(n), oneToken)
}

// newTestRegistry wires the default registry to an aggregator mock that answers
// balanceOf and getEthBalance from the given balances.
func newTestRegistry(t *testing.T, balances map[common.Address]*big.Int) (*Registry, *testutil.MockContractCaller) {
	t.Helper()
	erc20ABI, _ := abis.GetERC20ABI()
	multicallABI, _ := abis.GetMulticallABI()
	nets, err := networks.New(networks.DefaultTables())
	if err != nil {
		t.Fatal(err)
	}

	conn := testutil.NewAggregatorMock(100, func(_ common.Address, calldata []byte) ([]byte, bool) {
		var contractABI = erc20ABI
		method := "balanceOf"
		if testutil.HasSelector(multicallABI, "getEthBalance", calldata) {
			contractABI, method = multicallABI, "getEthBalance"
		}
		args, err := testutil.UnpackInputs(contractABI, method, calldata)
		if err != nil {
			return nil, false
		}
		balance, ok := balances[args[0].(common.Address)]
		if !ok {
			balance = big.NewInt(0)
		}
		ret, err := contractABI.Methods[method].Outputs.Pack(balance)
		return ret, err == nil
	})

	batcher, err := multicall.NewBatcher(multicall.BatcherConfig{Networks: nets})
	if err != nil {
		t.Fatal(err)
	}
	registry, err := Default(batcher, nets)
	if err != nil {
		t.Fatalf("Default() error = %v", err)
	}
	return registry, conn
}

func TestRegistry_Register(t *testing.T) {
	r := NewRegistry()
	if err := r.Register("ticket", ticket); err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if err := r.Register("ticket", ticket); err == nil {
		t.Error("expected error for duplicate name")
	}
	if err := r.Register("", ticket); err == nil {
		t.Error("expected error for empty name")
	}
	if err := r.Register("nil", nil); err == nil {
		t.Error("expected error for nil implementation")
	}
	if _, ok := r.Lookup("ticket"); !ok {
		t.Error("Lookup(ticket) not found")
	}
	if _, ok := r.Lookup("missing"); ok {
		t.Error("Lookup(missing) found")
	}
}

func TestDefault_Names(t *testing.T) {
	registry, _ := newTestRegistry(t, nil)
	want := []string{"erc20-balance-of", "erc20-with-balance", "eth-balance", "ticket", "whitelist"}
	if got := registry.Names(); !reflect.DeepEqual(got, want) {
		t.Errorf("Names() = %v, want %v", got, want)
	}
}

func TestDefault_Validation(t *testing.T) {
	nets, _ := networks.New(networks.DefaultTables())
	if _, err := Default(nil, nets); err == nil {
		t.Error("expected error for nil multicaller")
	}
	batcher, _ := multicall.NewBatcher(multicall.BatcherConfig{Networks: nets})
	if _, err := Default(batcher, nil); err == nil {
		t.Error("expected error for nil networks")
	}
}

func TestERC20BalanceOf(t *testing.T) {
	registry, conn := newTestRegistry(t, map[common.Address]*big.Int{
		common.HexToAddress(holderA): tokens(5),
		common.HexToAddress(holderB): big.NewInt(0),
	})
	fn, _ := registry.Lookup("erc20-balance-of")

	got, err := fn(context.Background(), "space", entity.NetworkHecoTestnet, conn,
		[]string{holderA, holderB}, map[string]any{"address": token, "decimals": float64(18)}, entity.AtBlock(42))
	if err != nil {
		t.Fatalf("erc20-balance-of error = %v", err)
	}

	want := entity.ScoreSet{holderA: 5, holderB: 0}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("scores = %v, want %v", got, want)
	}
	if conn.Count() != 1 {
		t.Errorf("aggregator called %d times, want 1", conn.Count())
	}
	if conn.Blocks[0] == nil || conn.Blocks[0].Int64() != 42 {
		t.Errorf("call pinned to block %v, want 42", conn.Blocks[0])
	}

	_, calls := testutil.UnpackAggregateCalls(t, conn.Calls[0].Data)
	for i, c := range calls {
		if c.Target != common.HexToAddress(token) {
			t.Errorf("call %d target = %s, want token", i, c.Target.Hex())
		}
	}
}

func TestERC20BalanceOf_Decimals(t *testing.T) {
	registry, conn := newTestRegistry(t, map[common.Address]*big.Int{
		common.HexToAddress(holderA): big.NewInt(2_500_000),
	})
	fn, _ := registry.Lookup("erc20-balance-of")

	got, err := fn(context.Background(), "space", entity.NetworkHecoTestnet, conn,
		[]string{holderA}, map[string]any{"address": token, "decimals": "6"}, entity.Latest())
	if err != nil {
		t.Fatalf("erc20-balance-of error = %v", err)
	}
	if got[holderA] != 2.5 {
		t.Errorf("score = %v, want 2.5", got[holderA])
	}
	if conn.Blocks[0] != nil {
		t.Errorf("latest snapshot pinned to block %v", conn.Blocks[0])
	}
}

func TestERC20WithBalance(t *testing.T) {
	registry, conn := newTestRegistry(t, map[common.Address]*big.Int{
		common.HexToAddress(holderA): tokens(10),
		common.HexToAddress(holderB): tokens(1),
	})
	fn, _ := registry.Lookup("erc20-with-balance")

	got, err := fn(context.Background(), "space", entity.NetworkHecoTestnet, conn,
		[]string{holderA, holderB}, map[string]any{"address": token, "minBalance": float64(10)}, entity.Latest())
	if err != nil {
		t.Fatalf("erc20-with-balance error = %v", err)
	}
	want := entity.ScoreSet{holderA: 1, holderB: 0}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("scores = %v, want %v", got, want)
	}
}

func TestETHBalance(t *testing.T) {
	registry, conn := newTestRegistry(t, map[common.Address]*big.Int{
		common.HexToAddress(holderA): tokens(3),
	})
	fn, _ := registry.Lookup("eth-balance")

	got, err := fn(context.Background(), "space", entity.NetworkHecoMainnet, conn,
		[]string{holderA, holderB}, nil, entity.Latest())
	if err != nil {
		t.Fatalf("eth-balance error = %v", err)
	}
	want := entity.ScoreSet{holderA: 3, holderB: 0}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("scores = %v, want %v", got, want)
	}

	aggregator := common.HexToAddress("0x37ab26db3df780e7026f3e767f65efb739f48d8e")
	if *conn.Calls[0].To != aggregator {
		t.Errorf("aggregate sent to %s, want %s", conn.Calls[0].To.Hex(), aggregator.Hex())
	}
	_, calls := testutil.UnpackAggregateCalls(t, conn.Calls[0].Data)
	for i, c := range calls {
		if c.Target != aggregator {
			t.Errorf("sub-call %d target = %s, want aggregator", i, c.Target.Hex())
		}
	}
}

func TestETHBalance_UnsupportedNetwork(t *testing.T) {
	registry, conn := newTestRegistry(t, nil)
	fn, _ := registry.Lookup("eth-balance")

	_, err := fn(context.Background(), "space", "999", conn, []string{holderA}, nil, entity.Latest())
	if !errors.Is(err, entity.ErrUnsupportedNetwork) {
		t.Errorf("expected ErrUnsupportedNetwork, got %v", err)
	}
	if conn.Count() != 0 {
		t.Errorf("aggregator called %d times, want 0", conn.Count())
	}
}

func TestBalanceStrategies_InvalidInput(t *testing.T) {
	registry, conn := newTestRegistry(t, nil)
	fn, _ := registry.Lookup("erc20-balance-of")

	tests := []struct {
		name      string
		addresses []string
		params    map[string]any
		wantErr   error
	}{
		{"missing token", []string{holderA}, map[string]any{}, entity.ErrInvalidParams},
		{"bad decimals", []string{holderA}, map[string]any{"address": token, "decimals": "x"}, entity.ErrInvalidParams},
		{"fractional decimals", []string{holderA}, map[string]any{"address": token, "decimals": 1.5}, entity.ErrInvalidParams},
		{"bad holder", []string{"nope"}, map[string]any{"address": token}, entity.ErrInvalidAddress},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := fn(context.Background(), "space", entity.NetworkHecoTestnet, conn, tt.addresses, tt.params, entity.Latest())
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("error = %v, want %v", err, tt.wantErr)
			}
		})
	}
	if conn.Count() != 0 {
		t.Errorf("aggregator called %d times on invalid input", conn.Count())
	}
}

func TestERC20BalanceOf_RevertFailsStrategy(t *testing.T) {
	nets, _ := networks.New(networks.DefaultTables())
	conn := testutil.NewAggregatorMock(1, func(common.Address, []byte) ([]byte, bool) {
		return nil, false
	})
	batcher, _ := multicall.NewBatcher(multicall.BatcherConfig{Networks: nets})
	registry, _ := Default(batcher, nets)
	fn, _ := registry.Lookup("erc20-balance-of")

	if _, err := fn(context.Background(), "space", entity.NetworkHecoTestnet, conn,
		[]string{holderA}, map[string]any{"address": token}, entity.Latest()); err == nil {
		t.Fatal("expected error when a sub-call reverts")
	}
}

func TestWhitelist(t *testing.T) {
	got, err := whitelist(context.Background(), "space", entity.NetworkHecoTestnet, nil,
		[]string{holderA, holderB},
		map[string]any{"addresses": []any{"0x1111111111111111111111111111111111111111"}},
		entity.Latest())
	if err != nil {
		t.Fatalf("whitelist error = %v", err)
	}
	want := entity.ScoreSet{holderA: 1, holderB: 0}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("scores = %v, want %v", got, want)
	}

	mixed := "0xAbCdEf0000000000000000000000000000000001"
	got, err = whitelist(context.Background(), "space", "", nil, []string{mixed},
		map[string]any{"addresses": []string{"0xabcdef0000000000000000000000000000000001"}}, entity.Latest())
	if err != nil {
		t.Fatal(err)
	}
	if got[mixed] != 1 {
		t.Errorf("case-insensitive match failed: %v", got)
	}

	if _, err := whitelist(context.Background(), "space", "", nil, []string{holderA},
		map[string]any{"addresses": []any{1}}, entity.Latest()); !errors.Is(err, entity.ErrInvalidParams) {
		t.Errorf("expected ErrInvalidParams for non-string entry, got %v", err)
	}
}

func TestTicket(t *testing.T) {
	tests := []struct {
		name   string
		params map[string]any
		want   float64
	}{
		{"default value", nil, 1},
		{"explicit value", map[string]any{"value": float64(3)}, 3},
		{"string value", map[string]any{"value": "0.5"}, 0.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ticket(context.Background(), "space", "", nil, []string{holderA, holderB}, tt.params, entity.Latest())
			if err != nil {
				t.Fatalf("ticket error = %v", err)
			}
			want := entity.ScoreSet{holderA: tt.want, holderB: tt.want}
			if !reflect.DeepEqual(got, want) {
				t.Errorf("scores = %v, want %v", got, want)
			}
		})
	}
}
