package log

// Field names shared by the structured log calls across packages.
const (
	FieldComponent  = "component"
	FieldRequestID  = "request_id"
	FieldClientIP   = "client_ip"
	FieldMethod     = "method"
	FieldPath       = "path"
	FieldStatusCode = "status_code"
	FieldDuration   = "duration_ms"
	FieldError      = "error"
)

// Component names the binaries log under.
const (
	ComponentApp    = "app"
	ComponentWorker = "worker"
)
