package logger

// Fields is an alias for map[string]interface{} for convenience.
type Fields map[string]interface{}

// Tracing fields, propagated through the call chain via context.

const (
	// FieldRequestID is the HTTP request ID (UUID)
	FieldRequestID = "request_id"

	// FieldComponent is the component/module name
	FieldComponent = "component"

	// FieldAddress is the physical address being researched
	FieldAddress = "address"

	// FieldPlatform is the target social platform for a caption
	FieldPlatform = "platform"

	// FieldMediaType is the uploaded media kind (image or video)
	FieldMediaType = "media_type"

	// FieldModel is the AI model identifier used for a request
	FieldModel = "model"
)

// Metric fields, attached per line through the Entry API.

const (
	// FieldDurationMs is the execution duration in milliseconds
	FieldDurationMs = "duration_ms"

	// FieldCount is a generic count field
	FieldCount = "count"

	// FieldSize is the data size in bytes
	FieldSize = "size"

	// FieldStatus is the operation status
	FieldStatus = "status"
)
