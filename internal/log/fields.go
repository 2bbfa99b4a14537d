package log

import "net/http"

// Attribute keys shared with callers outside this package.
const (
	FieldComponent = "component"
	FieldRequestID = "request_id"
	FieldClientIP  = "client_ip"
	FieldMethod    = "method"
	FieldPath      = "path"
)

// Components defines standard component names
const (
	ComponentApp       = "app"
	ComponentHTTP      = "http"
	ComponentRecurring = "recurring"
	ComponentNotify    = "notify"
	ComponentRateLimit = "rate_limit"
)

// ErrorTypes defines standard error type categories
const (
	ErrorTypeValidation = "validation_error"
	ErrorTypePermission = "permission_error"
	ErrorTypeAuth       = "auth_error"
	ErrorTypeNotFound   = "not_found_error"
	ErrorTypeInternal   = "internal_error"
)

// LogFields collects attributes for a single log line.
type LogFields map[string]any

func NewFields() LogFields {
	return make(LogFields)
}

func (f LogFields) WithClientIP(ip string) LogFields {
	f[FieldClientIP] = ip
	return f
}

// WithError adds the error message and its category
func (f LogFields) WithError(err error, errorType string) LogFields {
	if err != nil {
		f["error"] = err.Error()
		f["error_type"] = errorType
	}
	return f
}

func (f LogFields) WithOperation(op string) LogFields {
	f["operation"] = op
	return f
}

// WithExchange records the request line and its outcome.
func (f LogFields) WithExchange(r *http.Request, status int, durationMs int64) LogFields {
	f[FieldMethod] = r.Method
	f[FieldPath] = r.URL.Path
	if r.URL.RawQuery != "" {
		f["query"] = r.URL.RawQuery
	}
	f["status"] = status
	f["duration_ms"] = durationMs
	return f
}

// ToSlice converts LogFields to a slice for slog
func (f LogFields) ToSlice() []any {
	slice := make([]any, 0, len(f)*2)
	for k, v := range f {
		slice = append(slice, k, v)
	}
	return slice
}
