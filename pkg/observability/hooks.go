// Package observability provides hooks for metrics, tracing, and logging.
//
// The engine, the page stores and the HTTP server emit events through the
// hook interfaces below. Nothing is recorded unless a consumer registers an
// implementation at startup, so library code never depends on a particular
// metrics backend.
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    observability.SetEngineHooks(&myEngineHooks{})
//	    observability.SetStoreHooks(&myStoreHooks{})
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Engine().OnBatchStart(ctx, key, len(ops))
//	// ... apply operations ...
//	observability.Engine().OnBatchComplete(ctx, key, len(ops), duration, err)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Engine Hooks
// =============================================================================

// EngineHooks receives events from the batch executor.
type EngineHooks interface {
	// OnBatchStart fires after the page lock is taken.
	OnBatchStart(ctx context.Context, page string, ops int)

	// OnBatchComplete fires once per batch. err is nil only when the page
	// was persisted.
	OnBatchComplete(ctx context.Context, page string, ops int, duration time.Duration, err error)

	// OnPageCreated fires when a missing or unreadable page is replaced by
	// an empty one.
	OnPageCreated(ctx context.Context, page string)
}

// =============================================================================
// Store Hooks
// =============================================================================

// StoreHooks receives events from page storage backends.
type StoreHooks interface {
	// OnLoad records a page read. found is false for a missing page.
	OnLoad(ctx context.Context, backend, key string, found bool, duration time.Duration, err error)

	// OnSave records a page write of size bytes.
	OnSave(ctx context.Context, backend, key string, size int, duration time.Duration, err error)
}

// =============================================================================
// HTTP Hooks
// =============================================================================

// HTTPHooks receives events from the HTTP API server.
type HTTPHooks interface {
	// OnRequest records an incoming request.
	OnRequest(ctx context.Context, method, path string)

	// OnResponse records the response to a request.
	OnResponse(ctx context.Context, method, path string, statusCode int, duration time.Duration)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopEngineHooks is a no-op implementation of EngineHooks.
type NoopEngineHooks struct{}

func (NoopEngineHooks) OnBatchStart(context.Context, string, int) {}
func (NoopEngineHooks) OnBatchComplete(context.Context, string, int, time.Duration, error) {
}
func (NoopEngineHooks) OnPageCreated(context.Context, string) {}

// NoopStoreHooks is a no-op implementation of StoreHooks.
type NoopStoreHooks struct{}

func (NoopStoreHooks) OnLoad(context.Context, string, string, bool, time.Duration, error) {}
func (NoopStoreHooks) OnSave(context.Context, string, string, int, time.Duration, error)  {}

// NoopHTTPHooks is a no-op implementation of HTTPHooks.
type NoopHTTPHooks struct{}

func (NoopHTTPHooks) OnRequest(context.Context, string, string)                   {}
func (NoopHTTPHooks) OnResponse(context.Context, string, string, int, time.Duration) {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	engineHooks EngineHooks = NoopEngineHooks{}
	storeHooks  StoreHooks  = NoopStoreHooks{}
	httpHooks   HTTPHooks   = NoopHTTPHooks{}
	hooksMu     sync.RWMutex
)

// SetEngineHooks registers custom engine hooks.
// This should be called once at application startup before any batch runs.
func SetEngineHooks(h EngineHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		engineHooks = h
	}
}

// SetStoreHooks registers custom store hooks.
// This should be called once at application startup before any page is loaded.
func SetStoreHooks(h StoreHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		storeHooks = h
	}
}

// SetHTTPHooks registers custom HTTP hooks.
// This should be called once at application startup before the server starts.
func SetHTTPHooks(h HTTPHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		httpHooks = h
	}
}

// Engine returns the registered engine hooks.
func Engine() EngineHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return engineHooks
}

// Store returns the registered store hooks.
func Store() StoreHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return storeHooks
}

// HTTP returns the registered HTTP hooks.
func HTTP() HTTPHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return httpHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	engineHooks = NoopEngineHooks{}
	storeHooks = NoopStoreHooks{}
	httpHooks = NoopHTTPHooks{}
}
