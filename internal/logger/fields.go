package logger

// Fields is an alias for map[string]interface{} for convenience.
type Fields map[string]interface{}

// ============================================
// Standard Tracing Fields (Context level)
// These fields are propagated through the call chain
// ============================================

const (
	// FieldRequestID is the HTTP request ID (UUID)
	FieldRequestID = "request_id"

	// FieldJobID is the batch worker job ID
	FieldJobID = "job_id"

	// FieldComponent is the component/module name
	FieldComponent = "component"

	// FieldFilename is the Commons filename being imported
	FieldFilename = "filename"

	// FieldImageID is the asset row ID
	FieldImageID = "image_id"

	// FieldStage is the import pipeline stage
	FieldStage = "stage"
)

// ============================================
// Standard Metric Fields (Entry level)
// These fields are used for aggregation and alerting
// ============================================

const (
	// FieldDurationMs is the execution duration in milliseconds
	FieldDurationMs = "duration_ms"

	// FieldCount is a generic count field
	FieldCount = "count"

	// FieldStatus is the operation status
	FieldStatus = "status"

	// FieldAttempt is the retry attempt number
	FieldAttempt = "attempt"
)
