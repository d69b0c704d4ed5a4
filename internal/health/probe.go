package health

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"inventoryapi/internal/platform/observability"

	"go.uber.org/zap"
)

// Pinger is satisfied by every inventory.Store.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Report is the readiness of each dependency.
type Report struct {
	Store  bool `json:"store"`
	Broker bool `json:"broker"`
}

// Ready reports whether every dependency answered.
func (r Report) Ready() bool {
	return r.Store && r.Broker
}

// String is the JSON rendering used as the readiness message.
func (r Report) String() string {
	b, _ := json.Marshal(r)
	return string(b)
}

// Probe checks the store and the schema registry in parallel.
type Probe struct {
	store       Pinger
	registryURL string
	client      *http.Client
	timeout     time.Duration
	logger      observability.Logger
}

func NewProbe(store Pinger, registryURL string, client *http.Client, timeout time.Duration, logger observability.Logger) *Probe {
	return &Probe{
		store:       store,
		registryURL: registryURL,
		client:      client,
		timeout:     timeout,
		logger:      logger,
	}
}

// Check runs both checks and waits for them. The registry check is bounded by
// the probe timeout; any HTTP answer counts as reachable.
func (p *Probe) Check(ctx context.Context) Report {
	var (
		report Report
		wg     sync.WaitGroup
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		if err := p.store.Ping(ctx); err != nil {
			p.logger.Warn("Store is not reachable", zap.Error(err))
			return
		}
		report.Store = true
	}()
	go func() {
		defer wg.Done()
		if err := p.pingRegistry(ctx); err != nil {
			p.logger.Warn("Schema registry is not reachable", zap.String("url", p.registryURL), zap.Error(err))
			return
		}
		report.Broker = true
	}()
	wg.Wait()

	return report
}

func (p *Probe) pingRegistry(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.registryURL, nil)
	if err != nil {
		return fmt.Errorf("building registry request: %w", err)
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return err
	}
	return resp.Body.Close()
}
