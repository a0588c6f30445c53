package provider

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/shenprabu/FileReadAI/internal/common"
)

// Registry holds the fixed set of extraction backends in priority order
// and tracks which one is active.
type Registry struct {
	backends []Backend

	mu     sync.Mutex
	active string

	logger *slog.Logger
}

func NewRegistry(logger *slog.Logger, backends ...Backend) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{backends: backends, logger: logger}
}

// List reports every known backend with its configured state. The state
// is probed per call since credentials may appear at runtime.
func (r *Registry) List() []Info {
	out := make([]Info, 0, len(r.backends))
	for _, b := range r.backends {
		out = append(out, Info{Key: b.Key(), Name: b.Name(), Configured: b.IsConfigured()})
	}
	return out
}

// ActiveKey returns the current provider key. Default selection is the
// first configured backend in priority order; if none are configured the
// first backend is returned so downstream calls fail with an explicit
// not-configured error instead of silently doing nothing.
func (r *Registry) ActiveKey() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.active != "" {
		return r.active
	}
	for _, b := range r.backends {
		if b.IsConfigured() {
			return b.Key()
		}
	}
	if len(r.backends) > 0 {
		return r.backends[0].Key()
	}
	return ""
}

// SetActive switches the active backend immediately. Configuration is
// checked lazily at use time, not here.
func (r *Registry) SetActive(key string) error {
	for _, b := range r.backends {
		if b.Key() == key {
			r.mu.Lock()
			r.active = key
			r.mu.Unlock()
			r.logger.Info("provider.registry.active", "key", key)
			return nil
		}
	}
	return fmt.Errorf("%w: %q", common.ErrUnknownProvider, key)
}

// ActiveName returns the human-readable name of the active backend.
func (r *Registry) ActiveName() string {
	if b := r.lookup(r.ActiveKey()); b != nil {
		return b.Name()
	}
	return ""
}

// Extract delegates one page image to the active backend.
func (r *Registry) Extract(ctx context.Context, img PageImage) (RawExtraction, error) {
	b := r.lookup(r.ActiveKey())
	if b == nil {
		return RawExtraction{}, common.NewAppError("NO_PROVIDERS", "no backends registered", common.ErrUnknownProvider)
	}
	if !b.IsConfigured() {
		return RawExtraction{}, common.NewAppError("PROVIDER_NOT_CONFIGURED",
			fmt.Sprintf("%s has no API key; set its environment variable or switch providers", b.Name()),
			common.ErrProviderNotConfigured)
	}
	return b.Extract(ctx, img)
}

func (r *Registry) lookup(key string) Backend {
	for _, b := range r.backends {
		if b.Key() == key {
			return b
		}
	}
	return nil
}
