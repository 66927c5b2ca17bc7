package logger

// Common field names for structured logging
const (
	FieldComponent     = "component"
	FieldCommand       = "command"
	FieldRecordID      = "record_id"
	FieldTransactionID = "transaction_id"
	FieldLoanID        = "loan_id"
	FieldMemberID      = "member_id"
	FieldAmount        = "amount"
	FieldStatus        = "status"
	FieldSequence      = "sequence"
	FieldMethod        = "method"
	FieldPath          = "path"
	FieldStatusCode    = "status_code"
	FieldDuration      = "duration_ms"
	FieldError         = "error"
	FieldAddr          = "addr"
)

// Component names
const (
	ComponentApp     = "app"
	ComponentHTTP    = "http"
	ComponentStore   = "store"
	ComponentExport  = "export"
	ComponentEvents  = "events"
	ComponentAdvisor = "advisor"
)

// Fields is a small builder for structured log attributes.
type Fields map[string]any

func NewFields() Fields {
	return make(Fields)
}

func (f Fields) With(key string, value any) Fields {
	f[key] = value
	return f
}

// WithError adds the error message, if any.
func (f Fields) WithError(err error) Fields {
	if err != nil {
		f[FieldError] = err.Error()
	}
	return f
}

// ToSlice converts Fields to key/value pairs for slog
func (f Fields) ToSlice() []any {
	slice := make([]any, 0, len(f)*2)
	for k, v := range f {
		slice = append(slice, k, v)
	}
	return slice
}
