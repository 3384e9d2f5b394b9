package types

import "fmt"

// MCPError is the failure shape every tool returns. Clients branch on Code;
// Message is for humans and Details carries whatever context the failing
// operation had (ids, queries, denied scopes).
type MCPError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

func (e *MCPError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewMCPError builds an MCPError. Details may be nil.
func NewMCPError(code string, message string, details map[string]interface{}) *MCPError {
	return &MCPError{
		Code:    code,
		Message: message,
		Details: details,
	}
}
