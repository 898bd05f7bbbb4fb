package config

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ServiceAccount is the subset of a Google service-account key file the
// application inspects. The raw bytes are kept for building token sources.
type ServiceAccount struct {
	Type        string `json:"type"`
	ProjectID   string `json:"project_id"`
	ClientEmail string `json:"client_email"`
	ClientID    string `json:"client_id"`

	raw []byte
}

// JSON returns the credential bundle as it was supplied.
func (s *ServiceAccount) JSON() []byte {
	return s.raw
}

// ParseServiceAccount decodes a service-account key. project_id and
// client_email are required.
func ParseServiceAccount(data []byte) (*ServiceAccount, error) {
	if len(data) == 0 {
		return nil, errors.New("service account credential is empty")
	}

	var sa ServiceAccount
	if err := json.Unmarshal(data, &sa); err != nil {
		return nil, fmt.Errorf("failed to decode service account credential: %w", err)
	}
	if sa.ProjectID == "" {
		return nil, errors.New("service account credential has no project_id")
	}
	if sa.ClientEmail == "" {
		return nil, errors.New("service account credential has no client_email")
	}

	sa.raw = append([]byte(nil), data...)
	return &sa, nil
}
