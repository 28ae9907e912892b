package codec

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mesh-intelligence/canvass/pkg/types"
)

// customFieldsVersion is the envelope version written by EncodeCustomFields.
const customFieldsVersion = 1

type fieldsEnvelope struct {
	V      int               `json:"v"`
	Fields map[string]string `json:"fields"`
}

// EncodeCustomFields serializes f as {"v":1,"fields":{...}} with sorted keys.
// An empty bag encodes to the empty string.
func EncodeCustomFields(f types.CustomFields) (string, error) {
	if len(f) == 0 {
		return "", nil
	}
	data, err := json.Marshal(fieldsEnvelope{V: customFieldsVersion, Fields: f})
	if err != nil {
		return "", fmt.Errorf("encoding custom fields: %w", err)
	}
	return string(data), nil
}

// DecodeCustomFields reads the versioned envelope, a bare legacy JSON object,
// or the empty string. Non-string legacy values are rendered as text. An
// empty result is nil.
func DecodeCustomFields(s string) (types.CustomFields, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal([]byte(s), &raw); err != nil {
		return nil, fmt.Errorf("%w: custom fields: %v", types.ErrInvalidData, err)
	}
	if _, ok := raw["v"]; ok {
		if _, ok := raw["fields"]; ok {
			return decodeEnvelope(s)
		}
	}
	return decodeLegacy(raw)
}

func decodeEnvelope(s string) (types.CustomFields, error) {
	var env fieldsEnvelope
	if err := json.Unmarshal([]byte(s), &env); err != nil {
		return nil, fmt.Errorf("%w: custom fields envelope: %v", types.ErrInvalidData, err)
	}
	if env.V != customFieldsVersion {
		return nil, fmt.Errorf("%w: custom fields version %d", types.ErrInvalidData, env.V)
	}
	if len(env.Fields) == 0 {
		return nil, nil
	}
	return types.CustomFields(env.Fields), nil
}

func decodeLegacy(raw map[string]json.RawMessage) (types.CustomFields, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	out := make(types.CustomFields, len(raw))
	for k, v := range raw {
		var s string
		if err := json.Unmarshal(v, &s); err == nil {
			out[k] = s
			continue
		}
		var val any
		if err := json.Unmarshal(v, &val); err != nil {
			return nil, fmt.Errorf("%w: custom field %q: %v", types.ErrInvalidData, k, err)
		}
		if val == nil {
			out[k] = ""
			continue
		}
		out[k] = fmt.Sprint(val)
	}
	return out, nil
}

// ParseNoteFields extracts "#key: value" lines from free-text notes. Older
// databases kept custom attributes this way before the custom_fields column
// existed. Later lines win on duplicate keys.
func ParseNoteFields(notes string) types.CustomFields {
	var out types.CustomFields
	for _, line := range strings.Split(notes, "\n") {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, "#") {
			continue
		}
		key, value, ok := strings.Cut(line[1:], ":")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		if key == "" {
			continue
		}
		if out == nil {
			out = types.CustomFields{}
		}
		out[key] = strings.TrimSpace(value)
	}
	return out
}
