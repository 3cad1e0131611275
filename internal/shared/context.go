package shared

import (
	"context"
	"sync"
	"time"
)

// Well-known RequestContext keys.
const (
	KeyCorrelationID = "correlationId"
	KeyRequestID     = "requestId"
	KeyTenantID      = "tenantId"
	KeyIdentity      = "identity"
	KeyStartTime     = "startTime"
)

// RequestContext is the per-request key-value store carrying correlation id,
// request id, tenant id and the resolved identity. One store exists per
// inbound request; it is never shared across requests.
type RequestContext struct {
	mu     sync.RWMutex
	values map[string]any
}

// NewRequestContext returns an empty store.
func NewRequestContext() *RequestContext {
	return &RequestContext{values: make(map[string]any)}
}

// Get returns the value for key, or nil when absent. Safe on a nil receiver.
func (c *RequestContext) Get(key string) any {
	if c == nil {
		return nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.values[key]
}

// Set stores value under key. A no-op on a nil receiver so logging paths
// stay unconditionally safe.
func (c *RequestContext) Set(key string, value any) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.values[key] = value
}

// CorrelationID returns the correlation id, or "" when unset.
func (c *RequestContext) CorrelationID() string {
	s, _ := c.Get(KeyCorrelationID).(string)
	return s
}

// RequestID returns the request id, or "" when unset.
func (c *RequestContext) RequestID() string {
	s, _ := c.Get(KeyRequestID).(string)
	return s
}

// TenantID returns the tenant id, or "" when unset.
func (c *RequestContext) TenantID() string {
	s, _ := c.Get(KeyTenantID).(string)
	return s
}

// SetTenantID records the resolved tenant id.
func (c *RequestContext) SetTenantID(tenantID string) {
	c.Set(KeyTenantID, tenantID)
}

// Identity returns the resolved identity, or nil before the guard ran.
func (c *RequestContext) Identity() *Identity {
	id, _ := c.Get(KeyIdentity).(*Identity)
	return id
}

// SetIdentity records the resolved identity.
func (c *RequestContext) SetIdentity(identity *Identity) {
	c.Set(KeyIdentity, identity)
}

// StartTime returns when request handling began, or the zero time.
func (c *RequestContext) StartTime() time.Time {
	t, _ := c.Get(KeyStartTime).(time.Time)
	return t
}

type requestContextKey struct{}

// ContextWithRequestContext binds the store to ctx for the request lifetime.
func ContextWithRequestContext(ctx context.Context, rc *RequestContext) context.Context {
	return context.WithValue(ctx, requestContextKey{}, rc)
}

// EnsureRequestContext returns the store bound to ctx, binding a fresh one
// when no scope is active yet. The returned context carries the store.
func EnsureRequestContext(ctx context.Context) (context.Context, *RequestContext) {
	if rc, ok := ctx.Value(requestContextKey{}).(*RequestContext); ok && rc != nil {
		return ctx, rc
	}
	rc := NewRequestContext()
	return ContextWithRequestContext(ctx, rc), rc
}

// RequestContextFrom extracts the store from ctx. When no scope is active it
// returns a fresh empty store so accessors never fail outside request
// handling; writes to that store are discarded with the store itself.
func RequestContextFrom(ctx context.Context) *RequestContext {
	if rc, ok := ctx.Value(requestContextKey{}).(*RequestContext); ok && rc != nil {
		return rc
	}
	return NewRequestContext()
}
