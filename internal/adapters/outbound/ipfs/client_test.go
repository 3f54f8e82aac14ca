package ipfs

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"golang.org/x/time/rate"

	"github.com/archon-research/snapshot-scores/internal/pkg/httpclient"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	httpClient := httpclient.NewClient(httpclient.Config{
		Timeout:        time.Second,
		InitialBackoff: time.Millisecond,
		MaxBackoff:     time.Millisecond,
		RateLimit:      rate.Inf,
	}, server.Client(), nil)

	return NewClient(ClientConfig{
		FleekBaseURL: server.URL + "/",
		Scheme:       "http",
	}, httpClient)
}

func TestClient_Get(t *testing.T) {
	var gotPath atomic.Value
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath.Store(r.URL.Path)
		_, _ = w.Write([]byte(`{"name":"yam"}`))
	})
	gateway := strings.TrimPrefix(client.fleekBase, "http://")

	tests := []struct {
		protocol string
		wantPath string
	}{
		{"", "/ipfs/QmHash"},
		{"ipns", "/ipns/QmHash"},
	}
	for _, tt := range tests {
		t.Run(tt.wantPath, func(t *testing.T) {
			doc, err := client.Get(context.Background(), gateway, "QmHash", tt.protocol)
			if err != nil {
				t.Fatalf("Get() error = %v", err)
			}
			if got := gotPath.Load(); got != tt.wantPath {
				t.Errorf("path = %v, want %q", got, tt.wantPath)
			}
			var out map[string]string
			if err := json.Unmarshal(doc, &out); err != nil || out["name"] != "yam" {
				t.Errorf("doc = %s", doc)
			}
		})
	}
}

func TestClient_FleekGet(t *testing.T) {
	var gotPath atomic.Value
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath.Store(r.URL.Path)
		_, _ = w.Write([]byte(`[1,2]`))
	})

	doc, err := client.FleekGet(context.Background(), "0xabc", "yam.heco")
	if err != nil {
		t.Fatalf("FleekGet() error = %v", err)
	}
	if got := gotPath.Load(); got != "/registry/0xabc/yam.heco" {
		t.Errorf("path = %v", got)
	}
	if string(doc) != "[1,2]" {
		t.Errorf("doc = %s", doc)
	}
}

func TestClient_Errors(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	if _, err := client.Get(context.Background(), "", "QmHash", ""); err == nil {
		t.Error("expected error for missing gateway")
	}
	if _, err := client.FleekGet(context.Background(), "0xabc", ""); err == nil {
		t.Error("expected error for missing id")
	}
	if _, err := client.FleekGet(context.Background(), "0xabc", "missing"); err == nil {
		t.Error("expected error for 404")
	}
}
