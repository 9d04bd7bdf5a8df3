package types

import (
	"encoding/json"
	"fmt"
)

// ------------------------------
// Remote Document Mapping
// ------------------------------

// ToObject converts an entity into the field map stored remotely. The id
// field is removed when present: document ids live outside the payload and
// are assigned by the store on creation.
func ToObject(v any) (map[string]any, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode entity: %w", err)
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("decode entity fields: %w", err)
	}
	delete(m, "id")
	return m, nil
}

// FromObject hydrates dst (a pointer to an entity struct) from a remote
// field map, injecting the document id so callers always see a complete
// entity.
func FromObject(id string, fields map[string]any, dst any) error {
	m := make(map[string]any, len(fields)+1)
	for k, v := range fields {
		m[k] = v
	}
	if id != "" {
		m["id"] = id
	}
	raw, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("encode document fields: %w", err)
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("decode document into entity: %w", err)
	}
	return nil
}
