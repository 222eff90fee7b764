package debank

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/url"
	"sort"
	"strconv"
)

// Payload is a normalized JSON response body.
type Payload json.RawMessage

// NormalizeEnvelope parses body and unwraps a {"data": X} envelope to X.
// Any other JSON value is returned unchanged.
func NormalizeEnvelope(body []byte) (Payload, error) {
	trimmed := bytes.TrimSpace(body)
	if !json.Valid(trimmed) {
		return nil, ErrMalformedBody
	}

	if len(trimmed) > 0 && trimmed[0] == '{' {
		var envelope map[string]json.RawMessage

		err := json.Unmarshal(trimmed, &envelope)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrMalformedBody, err)
		}

		if data, ok := envelope["data"]; ok {
			return Payload(data), nil
		}
	}

	return Payload(trimmed), nil
}

// Decode unmarshals the payload into v.
func (p Payload) Decode(v interface{}) error {
	if len(p) == 0 {
		return fmt.Errorf("decoding payload: %w", ErrMalformedBody)
	}

	err := json.Unmarshal(p, v)
	if err != nil {
		return fmt.Errorf("decoding payload: %w", err)
	}

	return nil
}

// Object decodes the payload as a JSON object.
func (p Payload) Object() (map[string]interface{}, error) {
	var obj map[string]interface{}

	err := p.Decode(&obj)
	if err != nil {
		return nil, err
	}

	return obj, nil
}

// Array decodes the payload as a JSON array.
func (p Payload) Array() ([]interface{}, error) {
	var arr []interface{}

	err := p.Decode(&arr)
	if err != nil {
		return nil, err
	}

	return arr, nil
}

// MarshalJSON returns the raw payload.
func (p Payload) MarshalJSON() ([]byte, error) {
	if len(p) == 0 {
		return []byte("null"), nil
	}

	return p, nil
}

// UnmarshalJSON stores a copy of data.
func (p *Payload) UnmarshalJSON(data []byte) error {
	*p = append((*p)[0:0], data...)

	return nil
}

// MarshalYAML renders the decoded payload.
func (p Payload) MarshalYAML() (interface{}, error) {
	if len(p) == 0 {
		return nil, nil
	}

	var decoded interface{}

	err := json.Unmarshal(p, &decoded)
	if err != nil {
		return nil, fmt.Errorf("decoding payload for YAML: %w", err)
	}

	return decoded, nil
}

// String returns the raw JSON text.
func (p Payload) String() string {
	return string(p)
}

// Params are query parameters for a GET request.
type Params map[string]interface{}

// Values serializes params. Booleans become "true"/"false", numbers use
// their shortest decimal form.
func (p Params) Values() url.Values {
	values := url.Values{}

	keys := make([]string, 0, len(p))
	for key := range p {
		keys = append(keys, key)
	}

	sort.Strings(keys)

	for _, key := range keys {
		values.Set(key, formatParam(p[key]))
	}

	return values
}

func formatParam(value interface{}) string {
	switch typed := value.(type) {
	case string:
		return typed
	case bool:
		return strconv.FormatBool(typed)
	case int:
		return strconv.Itoa(typed)
	case int32:
		return strconv.FormatInt(int64(typed), 10)
	case int64:
		return strconv.FormatInt(typed, 10)
	case uint:
		return strconv.FormatUint(uint64(typed), 10)
	case uint64:
		return strconv.FormatUint(typed, 10)
	case float32:
		return strconv.FormatFloat(float64(typed), 'f', -1, 32)
	case float64:
		return strconv.FormatFloat(typed, 'f', -1, 64)
	case fmt.Stringer:
		return typed.String()
	default:
		return fmt.Sprint(typed)
	}
}
