package app

import (
	"context"
	"log/slog"
	"os"

	"github.com/nimbus-hr/nimbus-hr/internal/shared"
)

// NewLogger returns a configured slog.Logger based on configuration. Every
// record is enriched with the ids stored in the request scope.
func NewLogger(cfg *Config) *slog.Logger {
	opts := &slog.HandlerOptions{AddSource: true}
	var handler slog.Handler
	if cfg != nil && cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	return slog.New(scopeHandler{Handler: handler})
}

// scopeHandler copies correlation, request, tenant and user ids from the
// request scope into every log record emitted with a request context.
type scopeHandler struct {
	slog.Handler
}

func (h scopeHandler) Handle(ctx context.Context, record slog.Record) error {
	rc := shared.RequestContextFrom(ctx)
	if id := rc.CorrelationID(); id != "" {
		record.AddAttrs(slog.String("correlation_id", id))
	}
	if id := rc.RequestID(); id != "" {
		record.AddAttrs(slog.String("request_id", id))
	}
	if id := rc.TenantID(); id != "" {
		record.AddAttrs(slog.String("tenant_id", id))
	}
	if identity := rc.Identity(); identity != nil {
		record.AddAttrs(slog.String("user_id", identity.ID))
	}
	return h.Handler.Handle(ctx, record)
}

func (h scopeHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return scopeHandler{Handler: h.Handler.WithAttrs(attrs)}
}

func (h scopeHandler) WithGroup(name string) slog.Handler {
	return scopeHandler{Handler: h.Handler.WithGroup(name)}
}
