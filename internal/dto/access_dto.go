package dto

// AccessDecision is the outcome of the access validator. Temporary marks
// infrastructure trouble: the caller should offer a retry instead of showing
// a hard denial.
type AccessDecision struct {
	CanAccess  bool   `json:"canAccess"`
	Reason     string `json:"reason,omitempty"`
	Temporary  bool   `json:"temporary,omitempty"`
	RetryAfter int    `json:"retryAfter,omitempty"`
}
