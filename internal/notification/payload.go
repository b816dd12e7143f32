package notification

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/goccy/go-json"
)

// Payload is the structured data attached to an admin notification. A nil
// Payload encodes as JSON null.
type Payload map[string]interface{}

var errPayloadNotObject = errors.New("payload is not a JSON object")

// ParsePayload decodes a stored payload. Empty input and JSON null decode to a
// nil Payload without error.
func ParsePayload(raw string) (Payload, error) {
	if raw == "" {
		return nil, nil
	}

	var v interface{}
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return nil, fmt.Errorf("decode payload: %w", err)
	}

	switch obj := v.(type) {
	case nil:
		return nil, nil
	case map[string]interface{}:
		return Payload(obj), nil
	default:
		return nil, errPayloadNotObject
	}
}

func decodePayload(notificationID int64, raw sql.NullString) Payload {
	if !raw.Valid {
		return nil
	}
	p, err := ParsePayload(raw.String)
	if err != nil {
		slog.Warn("failed to parse notification data, returning null",
			"notification_id", notificationID,
			"error", err)
		return nil
	}
	return p
}

func encodePayload(p Payload) (sql.NullString, error) {
	if p == nil {
		return sql.NullString{}, nil
	}
	b, err := json.Marshal(p)
	if err != nil {
		return sql.NullString{}, fmt.Errorf("encode payload: %w", err)
	}
	return sql.NullString{String: string(b), Valid: true}, nil
}

// DocumentRequestData is the payload carried by document_request notifications.
type DocumentRequestData struct {
	RequestID    int64  `json:"request_id"`
	DocumentType string `json:"document_type"`
	UserID       int64  `json:"user_id"`
	UserName     string `json:"user_name"`
}

func (d DocumentRequestData) Payload() Payload {
	return Payload{
		"request_id":    d.RequestID,
		"document_type": d.DocumentType,
		"user_id":       d.UserID,
		"user_name":     d.UserName,
	}
}

// DocumentRequest reads the payload as DocumentRequestData.
func (p Payload) DocumentRequest() (DocumentRequestData, error) {
	var d DocumentRequestData
	if p == nil {
		return d, errors.New("payload is null")
	}
	b, err := json.Marshal(p)
	if err != nil {
		return d, fmt.Errorf("encode payload: %w", err)
	}
	if err := json.Unmarshal(b, &d); err != nil {
		return d, fmt.Errorf("decode document request payload: %w", err)
	}
	if d.DocumentType == "" {
		return d, errors.New("document request payload has no document_type")
	}
	return d, nil
}
