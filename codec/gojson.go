package codec

import gojson "github.com/goccy/go-json"

// GoJSON encodes docstore records with github.com/goccy/go-json.
//
// Records are written without HTML escaping, so keys and string fields such
// as "<b>" are stored as typed. The output is plain JSON and decodes with the
// JSON codec, which lets a store switch between the two without a rewrite.
type GoJSON struct{}

// Marshal encodes v without escaping <, > and &.
func (GoJSON) Marshal(v any) ([]byte, error) { return gojson.MarshalNoEscape(v) }

// Unmarshal decodes a record payload into v.
func (GoJSON) Unmarshal(data []byte, v any) error { return gojson.Unmarshal(data, v) }

// Name returns "go-json".
func (GoJSON) Name() string { return "go-json" }
