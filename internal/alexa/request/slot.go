// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package request

import "encoding/json"

// Entity resolution status codes reported per authority.
const (
	ResolutionMatch   = "ER_SUCCESS_MATCH"
	ResolutionNoMatch = "ER_SUCCESS_NO_MATCH"
)

// Slot is a single user-supplied value captured for an intent.
type Slot struct {
	Name               string       `json:"name"`
	Value              string       `json:"value,omitempty"`
	ConfirmationStatus string       `json:"confirmationStatus,omitempty"`
	Resolutions        *Resolutions `json:"resolutions,omitempty"`
}

// Resolutions carries entity resolution candidates for a slot value.
type Resolutions struct {
	PerAuthority []Authority `json:"resolutionsPerAuthority"`
}

// Authority is one resolution source and the values it matched.
type Authority struct {
	Authority string           `json:"authority"`
	Status    ResolutionStatus `json:"status"`
	Values    []ResolvedValue  `json:"values"`
}

// ResolutionStatus reports whether an authority matched.
type ResolutionStatus struct {
	Code string `json:"code"`
}

// ResolvedValue wraps a canonical slot value.
type ResolvedValue struct {
	Value struct {
		Name string `json:"name"`
		ID   string `json:"id"`
	} `json:"value"`
}

// Resolved returns the canonical name and id of the first matching
// resolution, if any authority reported a match.
func (s Slot) Resolved() (name, id string, ok bool) {
	if s.Resolutions == nil {
		return "", "", false
	}
	for _, auth := range s.Resolutions.PerAuthority {
		if auth.Status.Code != ResolutionMatch || len(auth.Values) == 0 {
			continue
		}
		v := auth.Values[0].Value
		return v.Name, v.ID, true
	}
	return "", "", false
}

// Confirmed reports whether the user confirmed the slot value.
func (s Slot) Confirmed() bool {
	return s.ConfirmationStatus == "CONFIRMED"
}

// SlotMap maps slot names, case preserved, to slots.
type SlotMap map[string]Slot

// Value returns the raw spoken value of the named slot, or "".
func (m SlotMap) Value(name string) string {
	return m[name].Value
}

// Has reports whether the named slot is present and carries a value.
func (m SlotMap) Has(name string) bool {
	s, ok := m[name]
	return ok && s.Value != ""
}

// newSlotMap decodes each slot on its own. A slot with the wrong shape is
// dropped; malformed resolutions only clear that slot's resolutions.
func newSlotMap(raw map[string]json.RawMessage) SlotMap {
	slots := make(SlotMap, len(raw))
	for key, msg := range raw {
		var s slotJSON
		if err := json.Unmarshal(msg, &s); err != nil {
			continue
		}
		name := s.Name
		if name == "" {
			name = key
		}
		slots[key] = Slot{
			Name:               name,
			Value:              s.Value,
			ConfirmationStatus: s.ConfirmationStatus,
			Resolutions:        decodeResolutions(s.Resolutions),
		}
	}
	return slots
}

func decodeResolutions(raw json.RawMessage) *Resolutions {
	if len(raw) == 0 {
		return nil
	}
	var res *Resolutions
	if err := json.Unmarshal(raw, &res); err != nil {
		return nil
	}
	return res
}
