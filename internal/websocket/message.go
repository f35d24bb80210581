package websocket

import (
	"encoding/json"
	"errors"
	"time"

	"salespulse/internal/filter"
)

// Message types
const (
	TypeConnection = "connection"
	TypeHeartbeat  = "heartbeat"
	TypeQuery      = "query"
	TypeKPIs       = "kpis"
	TypeOptions    = "options"
	TypeDashboard  = "dashboard"
	TypeError      = "error"
)

// Error codes sent to clients
const (
	CodeBadMessage    = "BAD_MESSAGE"
	CodeUnknownType   = "UNKNOWN_TYPE"
	CodeInvalidFilter = "INVALID_FILTER"
	CodeTimeout       = "TIMEOUT"
	CodeInternal      = "INTERNAL_ERROR"
)

// Request is a message sent by a client. ID is echoed in the reply so
// clients can match responses to requests.
type Request struct {
	Type   string         `json:"type"`
	ID     string         `json:"id,omitempty"`
	Filter filter.Request `json:"filter"`
	State  string         `json:"state,omitempty"`
}

// Response is a message sent to a client
type Response struct {
	Type      string      `json:"type"`
	ID        string      `json:"id,omitempty"`
	Data      interface{} `json:"data,omitempty"`
	Error     *ErrorBody  `json:"error,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
	TraceID   string      `json:"trace_id,omitempty"`
}

// ErrorBody describes a failed request
type ErrorBody struct {
	Code    string              `json:"code"`
	Message string              `json:"message"`
	Fields  []filter.FieldError `json:"fields,omitempty"`
}

func encode(resp Response) ([]byte, error) {
	if resp.Timestamp.IsZero() {
		resp.Timestamp = time.Now().UTC()
	}
	return json.Marshal(resp)
}

var errMissingType = errors.New("missing message type")

func decodeRequest(data []byte, req *Request) error {
	if err := json.Unmarshal(data, req); err != nil {
		return err
	}
	if req.Type == "" {
		return errMissingType
	}
	return nil
}
