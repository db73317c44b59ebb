package log

// Field names shared by every component.
const (
	FieldComponent  = "component"
	FieldRequestID  = "request_id"
	FieldClientIP   = "client_ip"
	FieldMethod     = "method"
	FieldPath       = "path"
	FieldStatusCode = "status_code"
	FieldDuration   = "duration_ms"
	FieldError      = "error"
	FieldOperation  = "operation"

	FieldRegion    = "region"
	FieldIndicator = "indicator"
	FieldPeriod    = "period"
	FieldFailure   = "failure_kind"
	FieldPairs     = "pairs"
	FieldFailures  = "failures"
	FieldBackend   = "backend"
)

// Component names.
const (
	ComponentApp       = "app"
	ComponentHTTP      = "http"
	ComponentSummary   = "summary"
	ComponentReport    = "report"
	ComponentDocstore  = "docstore"
	ComponentStorage   = "storage"
	ComponentAMQP      = "amqp"
	ComponentWorker    = "worker"
	ComponentNews      = "news"
	ComponentRateLimit = "rate_limit"
	ComponentTemplate  = "template"
)

// Operation names.
const (
	OpFetch    = "fetch"
	OpBuild    = "build"
	OpRender   = "render"
	OpRefresh  = "refresh"
	OpValidate = "validate"
	OpStartup  = "startup"
	OpShutdown = "shutdown"
)

// Fields is an ordered list of slog key/value pairs.
type Fields []any

// NewFields starts an empty field list.
func NewFields() Fields { return nil }

func (f Fields) With(key string, value any) Fields {
	return append(f, key, value)
}

func (f Fields) WithComponent(component string) Fields {
	return f.With(FieldComponent, component)
}

func (f Fields) WithOperation(op string) Fields {
	return f.With(FieldOperation, op)
}

// WithError adds the error message; nil errors are skipped.
func (f Fields) WithError(err error) Fields {
	if err == nil {
		return f
	}
	return f.With(FieldError, err.Error())
}

// WithPair adds the region and indicator of a series.
func (f Fields) WithPair(region, indicator string) Fields {
	return f.With(FieldRegion, region).With(FieldIndicator, indicator)
}

func (f Fields) WithHTTP(method, path string, status int, durationMs int64) Fields {
	return f.With(FieldMethod, method).
		With(FieldPath, path).
		With(FieldStatusCode, status).
		With(FieldDuration, durationMs)
}
