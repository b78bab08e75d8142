package session

import (
	"encoding/json"
	"fmt"
)

// Record is the serialized session state kept under session:{phantom_token}.
// It holds the live identity-provider token pair and nothing else; the
// phantom token itself is only ever the lookup key.
type Record struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

func (r Record) Marshal() ([]byte, error) {
	data, err := json.Marshal(r)
	if err != nil {
		return nil, fmt.Errorf("session: failed to marshal record: %w", err)
	}
	return data, nil
}

func UnmarshalRecord(data []byte) (*Record, error) {
	var r Record
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("session: failed to unmarshal record: %w", err)
	}
	return &r, nil
}
