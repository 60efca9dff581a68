package models

import (
	"encoding/json"
	"fmt"
)

// UnmarshalJSON accepts notifications_enabled as a JSON boolean or as the
// stored 0/1 integer.
func (s *Settings) UnmarshalJSON(data []byte) error {
	type plain Settings
	aux := struct {
		*plain
		NotificationsEnabled json.RawMessage `json:"notifications_enabled"`
	}{plain: (*plain)(s)}

	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	switch string(aux.NotificationsEnabled) {
	case "", "null":
	case "true", "1":
		s.NotificationsEnabled = true
	case "false", "0":
		s.NotificationsEnabled = false
	default:
		return fmt.Errorf("notifications_enabled must be a boolean or 0/1, got %s", aux.NotificationsEnabled)
	}
	return nil
}
