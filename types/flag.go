package types

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Flag is a boolean read from the inventory API. The API is not consistent
// about how it sends booleans: some fields come as JSON true/false, others as
// the Python strings "True"/"False" or the labels "Si"/"No".
type Flag bool

func (f Flag) Bool() bool { return bool(f) }

func (f Flag) MarshalJSON() ([]byte, error) {
	return json.Marshal(bool(f))
}

func (f *Flag) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*f = false
		return nil
	}

	var b bool
	if err := json.Unmarshal(data, &b); err == nil {
		*f = Flag(b)
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("invalid flag value %s", string(data))
	}
	v, ok := ParseFlag(s)
	if !ok {
		return fmt.Errorf("invalid flag value %q", s)
	}
	*f = v
	return nil
}

// ParseFlag accepts the spellings the API and its forms use.
func ParseFlag(s string) (Flag, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "si", "sí", "1", "on", "yes":
		return true, true
	case "false", "no", "0", "off", "":
		return false, true
	}
	return false, false
}

// Label renders the flag the way list grids show it.
func (f Flag) Label() string {
	if f {
		return "Si"
	}
	return "No"
}
