package domain

// Status is one row of the dynamic status registry. IDs are assigned by the
// database and must always be resolved through a code lookup, never assumed.
type Status struct {
	ID          int64
	Name        string
	Code        string
	Description string
}

// Stable short codes the system depends on. The registry can carry more rows
// than these, but these must exist for any status-dependent operation to run.
const (
	StatusCodeSubmitted   = "S"
	StatusCodeUnderReview = "UR"
	StatusCodeApproved    = "AP"
	StatusCodeRejected    = "R"
	StatusCodeCompleted   = "C"
	StatusCodeActive      = "AC"
	StatusCodeExpired     = "E"
	StatusCodeProcessing  = "P"
)

// DefaultStatuses is the canonical seed set used when the registry is empty.
func DefaultStatuses() []Status {
	return []Status{
		{Name: "Submitted", Code: StatusCodeSubmitted, Description: "Request received"},
		{Name: "Under Review", Code: StatusCodeUnderReview, Description: "Awaiting admin decision"},
		{Name: "Approved", Code: StatusCodeApproved, Description: "Approved by admin"},
		{Name: "Rejected", Code: StatusCodeRejected, Description: "Rejected by admin"},
		{Name: "Completed", Code: StatusCodeCompleted, Description: "Fulfilled and closed"},
		{Name: "Active", Code: StatusCodeActive, Description: "Open for retail submissions"},
		{Name: "Expired", Code: StatusCodeExpired, Description: "Flight departed, no longer open"},
		{Name: "Processing", Code: StatusCodeProcessing, Description: "Payment recorded, not settled"},
	}
}

// RequiredStatusCodes lists every code the services resolve at runtime.
func RequiredStatusCodes() []string {
	return []string{
		StatusCodeSubmitted,
		StatusCodeUnderReview,
		StatusCodeApproved,
		StatusCodeRejected,
		StatusCodeCompleted,
		StatusCodeActive,
		StatusCodeExpired,
		StatusCodeProcessing,
	}
}
