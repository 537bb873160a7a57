package logger

// Standard field keys for structured logging. Use these keys consistently
// across all log statements for log aggregation and querying.
const (
	// ========================================================================
	// Distributed Tracing
	// ========================================================================
	KeyTraceID = "trace_id" // OpenTelemetry trace ID for request correlation
	KeySpanID  = "span_id"  // OpenTelemetry span ID for operation tracking

	// ========================================================================
	// Store Operations
	// ========================================================================
	KeyStore   = "store"    // Store name
	KeyOp      = "op"       // Operation name: create, exists, get, put, delete, remove
	KeyKeyHash = "key_hash" // FNV hash of the key bytes (keys may be binary)
	KeyKeyLen  = "key_len"  // Key length in bytes
	KeyProps   = "props"    // Property indices touched by the operation
	KeyLockID  = "lock_id"  // Granted or presented lock id
	KeyMode    = "mode"     // Requested lock mode
	KeyStatus  = "status"   // Operation result code
	KeyForce   = "force"    // Whether the request forced through contention
	KeyMaxWait = "max_wait" // Wait budget of the request

	// ========================================================================
	// Sweeper & Queues
	// ========================================================================
	KeyEntries   = "entries"    // Entry count affected or live
	KeyEvicted   = "evicted"    // Entries evicted in a sweep
	KeyParked    = "parked"     // Lock-wait retries parked
	KeyReplayed  = "replayed"   // Lock-wait retries replayed
	KeyQueueLen  = "queue_len"  // Queue depth
	KeyTickSkips = "tick_skips" // Driver ticks skipped due to overlap

	// ========================================================================
	// Client Identification
	// ========================================================================
	KeyClientIP  = "client_ip"  // Client IP address
	KeyRequestID = "request_id" // HTTP request id

	// ========================================================================
	// Operation Metadata
	// ========================================================================
	KeyDurationMs = "duration_ms" // Operation duration in milliseconds
	KeyError      = "error"       // Error message
	KeyMemory     = "memory"      // Heap in use, bytes
	KeyThreshold  = "threshold"   // Memory threshold, bytes
)
