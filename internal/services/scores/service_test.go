package scores

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/archon-research/snapshot-scores/internal/domain/entity"
	"github.com/archon-research/snapshot-scores/internal/ports/outbound"
	"github.com/archon-research/snapshot-scores/internal/testutil"
)

type mapRegistry map[string]outbound.StrategyFunc

func (m mapRegistry) Lookup(name string) (outbound.StrategyFunc, bool) {
	fn, ok := m[name]
	return fn, ok
}

// countingStrategy returns fixed scores after delay and counts invocations.
func countingStrategy(calls *atomic.Int32, delay time.Duration, scores entity.ScoreSet) outbound.StrategyFunc {
	return func(ctx context.Context, _ string, _ entity.Network, _ outbound.ContractCaller, _ []string, _ map[string]any, _ entity.Snapshot) (entity.ScoreSet, error) {
		calls.Add(1)
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
		return scores, nil
	}
}

type recordingMetrics struct {
	mu       sync.Mutex
	statuses map[string]string
	skipped  []string
}

func (r *recordingMetrics) RecordStrategy(_ context.Context, name string, _ time.Duration, status string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.statuses == nil {
		r.statuses = make(map[string]string)
	}
	r.statuses[name] = status
}

func (r *recordingMetrics) RecordStrategySkipped(_ context.Context, name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.skipped = append(r.skipped, name)
}

func (r *recordingMetrics) RecordBatch(context.Context, string, int) {}

func newService(t *testing.T, registry outbound.StrategyRegistry, metrics outbound.MetricsRecorder) *Service {
	t.Helper()
	svc, err := NewService(Config{Metrics: metrics}, registry)
	if err != nil {
		t.Fatalf("NewService() error = %v", err)
	}
	return svc
}

func TestNewService_NilRegistry(t *testing.T) {
	if _, err := NewService(Config{}, nil); err == nil {
		t.Fatal("expected error for nil registry")
	}
}

func TestGetScores_PreservesOrder(t *testing.T) {
	var slow, fast atomic.Int32
	registry := mapRegistry{
		"slow": countingStrategy(&slow, 50*time.Millisecond, entity.ScoreSet{"0xa": 1}),
		"fast": countingStrategy(&fast, 0, entity.ScoreSet{"0xa": 2}),
	}
	svc := newService(t, registry, nil)

	got, err := svc.GetScores(context.Background(), "space", []entity.StrategyDescriptor{
		{Name: "slow"},
		{Name: "fast"},
		{Name: "slow"},
	}, entity.NetworkHecoTestnet, &testutil.MockContractCaller{}, []string{"0xa"}, entity.Latest())
	if err != nil {
		t.Fatalf("GetScores() error = %v", err)
	}

	want := []entity.ScoreSet{{"0xa": 1}, {"0xa": 2}, {"0xa": 1}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("GetScores() = %v, want %v", got, want)
	}
	if slow.Load() != 2 || fast.Load() != 1 {
		t.Errorf("invocations slow=%d fast=%d, want 2/1", slow.Load(), fast.Load())
	}
}

func TestGetScores_RunsConcurrently(t *testing.T) {
	var calls atomic.Int32
	registry := mapRegistry{"wait": countingStrategy(&calls, 100*time.Millisecond, entity.ScoreSet{})}
	svc := newService(t, registry, nil)

	descriptors := make([]entity.StrategyDescriptor, 5)
	for i := range descriptors {
		descriptors[i] = entity.StrategyDescriptor{Name: "wait"}
	}

	start := time.Now()
	if _, err := svc.GetScores(context.Background(), "space", descriptors, entity.NetworkHecoTestnet, nil, nil, entity.Latest()); err != nil {
		t.Fatalf("GetScores() error = %v", err)
	}
	if elapsed := time.Since(start); elapsed > 400*time.Millisecond {
		t.Errorf("GetScores() took %v, strategies did not overlap", elapsed)
	}
}

func TestGetScores_InactiveStrategySkipped(t *testing.T) {
	var calls atomic.Int32
	registry := mapRegistry{"later": countingStrategy(&calls, 0, entity.ScoreSet{"0xa": 5})}
	metrics := &recordingMetrics{}
	svc := newService(t, registry, metrics)

	got, err := svc.GetScores(context.Background(), "space", []entity.StrategyDescriptor{
		{Name: "later", Params: map[string]any{"start": float64(100)}},
	}, entity.NetworkHecoTestnet, nil, []string{"0xa"}, entity.AtBlock(50))
	if err != nil {
		t.Fatalf("GetScores() error = %v", err)
	}

	want := []entity.ScoreSet{{}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("GetScores() = %v, want %v", got, want)
	}
	if calls.Load() != 0 {
		t.Errorf("inactive strategy invoked %d times", calls.Load())
	}
	if !reflect.DeepEqual(metrics.skipped, []string{"later"}) {
		t.Errorf("skipped = %v, want [later]", metrics.skipped)
	}
}

func TestGetScores_StartBoundaries(t *testing.T) {
	tests := []struct {
		name     string
		start    any
		snapshot entity.Snapshot
		invoked  bool
	}{
		{"latest ignores start", float64(1_000_000), entity.Latest(), true},
		{"start equals snapshot", float64(50), entity.AtBlock(50), true},
		{"start before snapshot", float64(10), entity.AtBlock(50), true},
		{"start after snapshot", float64(51), entity.AtBlock(50), false},
		{"numeric string start", "51", entity.AtBlock(50), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls atomic.Int32
			svc := newService(t, mapRegistry{"s": countingStrategy(&calls, 0, entity.ScoreSet{"0xa": 1})}, nil)

			got, err := svc.GetScores(context.Background(), "space", []entity.StrategyDescriptor{
				{Name: "s", Params: map[string]any{"start": tt.start}},
			}, entity.NetworkHecoTestnet, nil, []string{"0xa"}, tt.snapshot)
			if err != nil {
				t.Fatalf("GetScores() error = %v", err)
			}
			if (calls.Load() == 1) != tt.invoked {
				t.Errorf("invoked = %v, want %v", calls.Load() == 1, tt.invoked)
			}
			if !tt.invoked && len(got[0]) != 0 {
				t.Errorf("inactive result = %v, want empty", got[0])
			}
		})
	}
}

func TestGetScores_FailureFailsWholeCall(t *testing.T) {
	boom := errors.New("boom")
	var okCalls atomic.Int32
	registry := mapRegistry{
		"a": countingStrategy(&okCalls, 0, entity.ScoreSet{"0xa": 1}),
		"b": func(context.Context, string, entity.Network, outbound.ContractCaller, []string, map[string]any, entity.Snapshot) (entity.ScoreSet, error) {
			return nil, boom
		},
	}
	metrics := &recordingMetrics{}
	svc := newService(t, registry, metrics)

	got, err := svc.GetScores(context.Background(), "space", []entity.StrategyDescriptor{
		{Name: "a"}, {Name: "b"},
	}, entity.NetworkHecoTestnet, nil, []string{"0xa"}, entity.Latest())
	if err == nil {
		t.Fatal("expected error")
	}
	if got != nil {
		t.Errorf("GetScores() returned partial result %v", got)
	}
	if !errors.Is(err, boom) {
		t.Errorf("error %v does not wrap strategy error", err)
	}
	var strategyErr *entity.StrategyError
	if !errors.As(err, &strategyErr) {
		t.Fatalf("expected *entity.StrategyError, got %T", err)
	}
	if strategyErr.Index != 1 || strategyErr.Name != "b" {
		t.Errorf("StrategyError = {%d %q}, want {1 \"b\"}", strategyErr.Index, strategyErr.Name)
	}
	if metrics.statuses["b"] != "error" {
		t.Errorf("status for b = %q, want error", metrics.statuses["b"])
	}
}

func TestGetScores_UnknownStrategy(t *testing.T) {
	var calls atomic.Int32
	svc := newService(t, mapRegistry{"a": countingStrategy(&calls, 0, entity.ScoreSet{})}, nil)

	_, err := svc.GetScores(context.Background(), "space", []entity.StrategyDescriptor{
		{Name: "a"}, {Name: "missing"},
	}, entity.NetworkHecoTestnet, nil, nil, entity.Latest())
	if !errors.Is(err, entity.ErrUnknownStrategy) {
		t.Fatalf("expected ErrUnknownStrategy, got %v", err)
	}
	if calls.Load() != 0 {
		t.Errorf("strategies started before name resolution failed: %d", calls.Load())
	}
}

func TestGetScores_UnknownInactiveStrategyIgnored(t *testing.T) {
	svc := newService(t, mapRegistry{}, nil)

	got, err := svc.GetScores(context.Background(), "space", []entity.StrategyDescriptor{
		{Name: "missing", Params: map[string]any{"start": float64(10)}},
	}, entity.NetworkHecoTestnet, nil, nil, entity.AtBlock(5))
	if err != nil {
		t.Fatalf("GetScores() error = %v", err)
	}
	if len(got) != 1 || len(got[0]) != 0 {
		t.Errorf("GetScores() = %v, want [{}]", got)
	}
}

func TestGetScores_PassesArguments(t *testing.T) {
	conn := &testutil.MockContractCaller{}
	params := map[string]any{"address": "0xtoken", "decimals": float64(18)}
	addresses := []string{"0xa", "0xb"}
	snapshot := entity.AtBlock(123)

	var gotSpace string
	var gotNetwork entity.Network
	var gotConn outbound.ContractCaller
	var gotAddresses []string
	var gotParams map[string]any
	var gotSnapshot entity.Snapshot
	registry := mapRegistry{
		"capture": func(_ context.Context, space string, network entity.Network, c outbound.ContractCaller, addrs []string, p map[string]any, snap entity.Snapshot) (entity.ScoreSet, error) {
			gotSpace, gotNetwork, gotConn, gotAddresses, gotParams, gotSnapshot = space, network, c, addrs, p, snap
			return nil, nil
		},
	}
	svc := newService(t, registry, nil)

	got, err := svc.GetScores(context.Background(), "my.space", []entity.StrategyDescriptor{
		{Name: "capture", Params: params},
	}, entity.NetworkHecoMainnet, conn, addresses, snapshot)
	if err != nil {
		t.Fatalf("GetScores() error = %v", err)
	}

	if gotSpace != "my.space" || gotNetwork != entity.NetworkHecoMainnet || gotConn != conn {
		t.Errorf("strategy got space=%q network=%q conn=%v", gotSpace, gotNetwork, gotConn)
	}
	if !reflect.DeepEqual(gotAddresses, addresses) || !reflect.DeepEqual(gotParams, params) {
		t.Errorf("strategy got addresses=%v params=%v", gotAddresses, gotParams)
	}
	if gotSnapshot != snapshot {
		t.Errorf("strategy got snapshot %v, want %v", gotSnapshot, snapshot)
	}
	if got[0] == nil {
		t.Error("nil score set not replaced with empty set")
	}
}

func TestGetScores_RecoversPanic(t *testing.T) {
	registry := mapRegistry{
		"panics": func(context.Context, string, entity.Network, outbound.ContractCaller, []string, map[string]any, entity.Snapshot) (entity.ScoreSet, error) {
			panic("bad strategy")
		},
	}
	svc := newService(t, registry, nil)

	_, err := svc.GetScores(context.Background(), "space", []entity.StrategyDescriptor{{Name: "panics"}},
		entity.NetworkHecoTestnet, nil, nil, entity.Latest())
	var strategyErr *entity.StrategyError
	if !errors.As(err, &strategyErr) {
		t.Fatalf("expected *entity.StrategyError, got %v", err)
	}
}

func TestGetScores_EmptyStrategies(t *testing.T) {
	svc := newService(t, mapRegistry{}, nil)

	got, err := svc.GetScores(context.Background(), "space", nil, entity.NetworkHecoTestnet, nil, nil, entity.Latest())
	if err != nil {
		t.Fatalf("GetScores() error = %v", err)
	}
	if len(got) != 0 {
		t.Errorf("GetScores() = %v, want empty", got)
	}
}
