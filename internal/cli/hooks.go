package cli

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/kottinov/website-builder/pkg/observability"
)

// traceHooks logs engine and store events at debug level.
type traceHooks struct {
	logger *log.Logger
}

func (h traceHooks) OnBatchStart(_ context.Context, page string, ops int) {
	h.logger.Debug("batch start", "page", page, "ops", ops)
}

func (h traceHooks) OnBatchComplete(_ context.Context, page string, ops int, d time.Duration, err error) {
	if err != nil {
		h.logger.Debug("batch rolled back", "page", page, "ops", ops, "duration", d.Round(time.Microsecond), "err", err)
		return
	}
	h.logger.Debug("batch saved", "page", page, "ops", ops, "duration", d.Round(time.Microsecond))
}

func (h traceHooks) OnPageCreated(_ context.Context, page string) {
	h.logger.Debug("page created", "page", page)
}

func (h traceHooks) OnLoad(_ context.Context, backend, key string, found bool, d time.Duration, err error) {
	h.logger.Debug("store load", "backend", backend, "key", key, "found", found, "duration", d.Round(time.Microsecond), "err", err)
}

func (h traceHooks) OnSave(_ context.Context, backend, key string, size int, d time.Duration, err error) {
	h.logger.Debug("store save", "backend", backend, "key", key, "bytes", size, "duration", d.Round(time.Microsecond), "err", err)
}

// TraceHooks routes engine and store events to the CLI logger. main
// installs them for --verbose.
func (c *CLI) TraceHooks() {
	h := traceHooks{logger: c.Logger}
	observability.SetEngineHooks(h)
	observability.SetStoreHooks(h)
}
