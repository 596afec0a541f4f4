package user

import (
	"encoding/json"
	"strings"
	"time"
)

// WaitlistEntry is an import record held back until its activation date.
type WaitlistEntry struct {
	ID        string
	Record    ImportRecord
	CreatedAt time.Time
}

// EncodeRoles serializes roles as an ordered JSON array.
func EncodeRoles(roles []string) (string, error) {
	if roles == nil {
		roles = []string{}
	}
	data, err := json.Marshal(roles)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// DecodeRoles is the inverse of EncodeRoles. Comma-joined values written by
// older importers are still accepted.
func DecodeRoles(raw string) ([]string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return []string{}, nil
	}
	if strings.HasPrefix(raw, "[") {
		var roles []string
		if err := json.Unmarshal([]byte(raw), &roles); err != nil {
			return nil, err
		}
		return roles, nil
	}
	parts := strings.Split(raw, ",")
	roles := make([]string, 0, len(parts))
	for _, part := range parts {
		if part = strings.TrimSpace(part); part != "" {
			roles = append(roles, part)
		}
	}
	return roles, nil
}
