package embedder

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"sync"
	"time"
)

// httpProvider talks to a local embedding inference server over HTTP,
// grounded on the teacher's internal/embed/local.go request/response
// shapes. Unlike the teacher it never spawns or owns the server
// process: spec §9 excludes model distribution, so the server is
// assumed already running at endpoint.
type httpProvider struct {
	endpoint   string
	dimensions int
	client     *http.Client

	mu    sync.RWMutex
	ready bool
}

// NewHTTPProvider creates a provider bound to an inference server
// endpoint. The server is probed lazily on first Embed call.
func NewHTTPProvider(endpoint string, dimensions int) Provider {
	return &httpProvider{
		endpoint:   endpoint,
		dimensions: dimensions,
		client:     &http.Client{Timeout: 30 * time.Second},
	}
}

type embedRequest struct {
	Texts []string `json:"texts"`
	Mode  string   `json:"mode"`
}

type embedResponse struct {
	Embeddings [][]float32 `json:"embeddings"`
}

func (p *httpProvider) Embed(ctx context.Context, texts []string, mode Mode) ([][]float32, error) {
	reqBody := embedRequest{Texts: texts, Mode: string(mode)}
	payload, err := json.Marshal(reqBody)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint+"/embed", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, errModelNotReady(err.Error())
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusServiceUnavailable {
		return nil, errModelNotReady(fmt.Sprintf("server returned %d", resp.StatusCode))
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("embedding server returned status %d", resp.StatusCode)
	}

	var decoded embedResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("failed to decode embedding response: %w", err)
	}

	for _, vec := range decoded.Embeddings {
		if len(vec) < p.dimensions {
			return nil, errDimensionMismatch(len(vec), p.dimensions)
		}
	}

	p.mu.Lock()
	p.ready = true
	p.mu.Unlock()

	return truncateAll(decoded.Embeddings, p.dimensions), nil
}

// truncateAll implements the Matryoshka-style truncation of spec
// §4.3: keep the configured dimension's leading components, then
// renormalize to unit length.
func truncateAll(vecs [][]float32, dim int) [][]float32 {
	out := make([][]float32, len(vecs))
	for i, v := range vecs {
		out[i] = normalize(v[:dim])
	}
	return out
}

func normalize(v []float32) []float32 {
	var sumSq float64
	for _, x := range v {
		sumSq += float64(x) * float64(x)
	}
	if sumSq == 0 {
		return v
	}
	norm := float32(1.0 / math.Sqrt(sumSq))
	out := make([]float32, len(v))
	for i, x := range v {
		out[i] = x * norm
	}
	return out
}

func (p *httpProvider) Dimensions() int { return p.dimensions }

func (p *httpProvider) Close() error { return nil }

// IsReady reports whether Embed has ever completed successfully.
func (p *httpProvider) IsReady() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.ready
}
