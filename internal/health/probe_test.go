package health

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"inventoryapi/internal/inventory/inventorytest"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func registry(status int, delay time.Duration) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(delay):
		case <-r.Context().Done():
			return
		}
		w.WriteHeader(status)
	}))
}

func TestProbe_Check(t *testing.T) {
	up := registry(http.StatusOK, 0)
	defer up.Close()
	erroring := registry(http.StatusInternalServerError, 0)
	defer erroring.Close()

	tests := []struct {
		name     string
		storeErr error
		url      string
		want     Report
	}{
		{"all reachable", nil, up.URL, Report{Store: true, Broker: true}},
		{"any registry answer counts", nil, erroring.URL, Report{Store: true, Broker: true}},
		{"store down", errors.New("connection refused"), up.URL, Report{Store: false, Broker: true}},
		{"registry down", nil, "http://127.0.0.1:1", Report{Store: true, Broker: false}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := inventorytest.NewMemStore()
			store.Err = tt.storeErr

			got := NewProbe(store, tt.url, http.DefaultClient, time.Second, zap.NewNop()).Check(context.Background())

			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.want.Store && tt.want.Broker, got.Ready())
		})
	}
}

func TestProbe_RegistryTimeout(t *testing.T) {
	slow := registry(http.StatusOK, 2*time.Second)
	defer slow.Close()

	start := time.Now()
	got := NewProbe(inventorytest.NewMemStore(), slow.URL, http.DefaultClient, 50*time.Millisecond, zap.NewNop()).
		Check(context.Background())

	assert.False(t, got.Broker)
	assert.False(t, got.Ready())
	assert.Less(t, time.Since(start), time.Second)
}

func TestReport_String(t *testing.T) {
	assert.Equal(t, `{"store":true,"broker":false}`, Report{Store: true}.String())
}
