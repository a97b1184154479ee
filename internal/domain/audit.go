package domain

import (
	"fmt"
	"time"
)

// QueryType categorizes an audited query
type QueryType string

const (
	QueryTypeSearch QueryType = "search"
	QueryTypeChat   QueryType = "chat"
	QueryTypeAgent  QueryType = "agent"
)

// AuditLog records a query and which provider served it. Credentials are
// never stored, only the provider and model names.
type AuditLog struct {
	ID               string
	QueryText        string
	QueryType        QueryType
	ProviderName     string
	ProviderModel    string
	ReportID         string
	ChunksUsed       int
	ResponseLength   int
	ProcessingTimeMS float64
	Success          bool
	ErrorMessage     string
	SessionID        string
	CreatedAt        time.Time
}

// ConversationEntry is one turn of the orchestrator's in-memory
// conversation log.
type ConversationEntry struct {
	Query     string    `json:"query"`
	Answer    string    `json:"answer"`
	Agent     string    `json:"agent"`
	Timestamp time.Time `json:"timestamp"`
}

// ValidateAuditLog validates an AuditLog instance
func ValidateAuditLog(a *AuditLog) error {
	if a == nil {
		return fmt.Errorf("audit log cannot be nil")
	}

	if a.QueryText == "" {
		return fmt.Errorf("audit log QueryText is required")
	}

	switch a.QueryType {
	case QueryTypeSearch, QueryTypeChat, QueryTypeAgent:
	default:
		return fmt.Errorf("audit log QueryType is invalid: %s", a.QueryType)
	}

	return nil
}
