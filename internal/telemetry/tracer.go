package telemetry

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Common attribute keys for store operations. Keys follow OpenTelemetry
// semantic conventions where applicable; store-specific keys use the
// "store." prefix.
const (
	// ========================================================================
	// Client attributes
	// ========================================================================
	AttrClientIP   = "client.ip"
	AttrClientAddr = "client.address"

	// ========================================================================
	// Store operation attributes
	// ========================================================================
	AttrStoreName = "store.name"
	AttrOperation = "store.operation" // create, exists, get, put, delete, remove
	AttrKeyHash   = "store.key_hash"  // FNV hash of the key bytes
	AttrKeyLen    = "store.key_len"
	AttrProps     = "store.props"    // number of properties touched
	AttrLockID    = "store.lock_id"  // granted or presented lock id
	AttrLockMode  = "store.mode"     // requested lock mode
	AttrStatus    = "store.status"   // result code
	AttrForce     = "store.force"    // forced through contention
	AttrMaxWait   = "store.max_wait" // wait budget, seconds

	// ========================================================================
	// Sweeper attributes
	// ========================================================================
	AttrEvicted  = "sweep.evicted"
	AttrReplayed = "sweep.replayed"
)

// Span names. Format: <component>.<operation>.
const (
	SpanStoreCreate = "store.create"
	SpanStoreExists = "store.exists"
	SpanStoreGet    = "store.get"
	SpanStorePut    = "store.put"
	SpanStoreDelete = "store.delete"
	SpanStoreRemove = "store.remove"
	SpanSweepTick   = "sweep.tick"
)

// ClientIP returns an attribute for client IP address
func ClientIP(ip string) attribute.KeyValue {
	return attribute.String(AttrClientIP, ip)
}

// StoreName returns an attribute for store name
func StoreName(name string) attribute.KeyValue {
	return attribute.String(AttrStoreName, name)
}

// Operation returns an attribute for store operation name
func Operation(op string) attribute.KeyValue {
	return attribute.String(AttrOperation, op)
}

// KeyHash returns an attribute for the key's FNV hash
func KeyHash(hash uint32) attribute.KeyValue {
	return attribute.Int64(AttrKeyHash, int64(hash))
}

// KeyLen returns an attribute for the key length
func KeyLen(n int) attribute.KeyValue {
	return attribute.Int(AttrKeyLen, n)
}

// Props returns an attribute for the number of properties touched
func Props(n int) attribute.KeyValue {
	return attribute.Int(AttrProps, n)
}

// LockID returns an attribute for a lock id
func LockID(id int32) attribute.KeyValue {
	return attribute.Int64(AttrLockID, int64(id))
}

// LockMode returns an attribute for a requested lock mode
func LockMode(mode string) attribute.KeyValue {
	return attribute.String(AttrLockMode, mode)
}

// Status returns an attribute for the operation result code
func Status(status string) attribute.KeyValue {
	return attribute.String(AttrStatus, status)
}

// Force returns an attribute for the force flag
func Force(force bool) attribute.KeyValue {
	return attribute.Bool(AttrForce, force)
}

// MaxWait returns an attribute for the wait budget in seconds
func MaxWait(seconds int64) attribute.KeyValue {
	return attribute.Int64(AttrMaxWait, seconds)
}

// StartStoreSpan starts a span for a store operation. This is a convenience
// function that sets the common attributes.
func StartStoreSpan(ctx context.Context, store, operation string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	allAttrs := []attribute.KeyValue{
		StoreName(store),
		Operation(operation),
	}
	allAttrs = append(allAttrs, attrs...)

	return StartSpan(ctx, "store."+operation, trace.WithAttributes(allAttrs...))
}
