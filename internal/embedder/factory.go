package embedder

import "fmt"

// Config selects and configures a Provider, grounded on the teacher's
// internal/embed/factory.go Config/NewProvider shape.
type Config struct {
	Provider   string
	Endpoint   string
	Dimensions int
}

// NewProvider builds a Provider for the configured backend.
func NewProvider(cfg Config) (Provider, error) {
	switch cfg.Provider {
	case "local", "":
		return NewHTTPProvider(cfg.Endpoint, cfg.Dimensions), nil
	case "mock":
		return NewMockProvider(cfg.Dimensions), nil
	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s (supported: local, mock)", cfg.Provider)
	}
}
