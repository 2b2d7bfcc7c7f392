// Package blocks parses, merges and resolves block definition tables.
//
// A block definition table maps a block key (for example "minecraft:stone")
// to a definition describing which texture each face uses. Resource packs may
// ship their own table as blocks.json; a reference table can fill the gaps.
//
// # Resolution
//
// Resolving a block happens in three steps:
//
//  1. [Excluded] rejects keys or types naming non-cube geometry (stairs,
//     slabs, plants, ...) using a fixed substring list.
//  2. [Resolve] walks an ordered list of candidate keys for each face and
//     picks the first non-empty texture name.
//  3. The caller maps the six names onto files.
//
// # Merging
//
// Two tables are merged with an explicit [MergeMode]; see [Merge].
package blocks

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/matzehuels/cubeskin/pkg/errors"
)

// FaceMap maps face keys ("top", "side", "*", ...) to texture names.
type FaceMap map[string]string

// Definition describes one block.
type Definition struct {
	Key      string  // block key, e.g. "minecraft:stone"
	Type     string  // optional declared type
	Textures FaceMap // face key -> texture name; empty when the entry has no usable textures
}

// Table is an ordered block definition table. Iteration order is the order
// in which keys were first added.
type Table struct {
	keys []string
	defs map[string]Definition
}

// NewTable creates an empty table.
func NewTable() *Table {
	return &Table{defs: make(map[string]Definition)}
}

// Add inserts or replaces def. Replacing keeps the original position.
func (t *Table) Add(def Definition) {
	if _, ok := t.defs[def.Key]; !ok {
		t.keys = append(t.keys, def.Key)
	}
	t.defs[def.Key] = def
}

// Get returns the definition for key.
func (t *Table) Get(key string) (Definition, bool) {
	if t == nil {
		return Definition{}, false
	}
	def, ok := t.defs[key]
	return def, ok
}

// Has reports whether key is present.
func (t *Table) Has(key string) bool {
	_, ok := t.Get(key)
	return ok
}

// Keys returns the block keys in table order.
func (t *Table) Keys() []string {
	if t == nil {
		return nil
	}
	out := make([]string, len(t.keys))
	copy(out, t.keys)
	return out
}

// Len returns the number of entries. A nil table has length zero.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.keys)
}

// Definitions returns all definitions in table order.
func (t *Table) Definitions() []Definition {
	if t == nil {
		return nil
	}
	out := make([]Definition, 0, len(t.keys))
	for _, k := range t.keys {
		out = append(out, t.defs[k])
	}
	return out
}

// Parse decodes a blocks.json document. A document with a top-level "blocks"
// object uses that object as the table; otherwise the document itself is the
// table. Failures carry ErrCodeMalformedInput.
func Parse(data []byte) (*Table, error) {
	if !json.Valid(data) {
		return nil, errors.New(errors.ErrCodeMalformedInput, "blocks table is not valid JSON")
	}
	if err := validateSchema(data); err != nil {
		return nil, errors.Wrap(errors.ErrCodeMalformedInput, err, "blocks table")
	}

	keys, entries, err := decodeObject(data)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeMalformedInput, err, "blocks table")
	}
	if raw, ok := entries["blocks"]; ok && isObject(raw) {
		keys, entries, err = decodeObject(raw)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeMalformedInput, err, "blocks table")
		}
	}

	t := NewTable()
	for _, k := range keys {
		t.Add(parseDefinition(k, entries[k]))
	}
	return t, nil
}

// parseDefinition interprets one table entry. Strings are shorthand for
// "every face uses this texture". Objects use their "textures" field, or the
// object itself when that field is absent. Anything else has no textures.
func parseDefinition(key string, raw json.RawMessage) Definition {
	def := Definition{Key: key, Textures: FaceMap{}}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if s != "" {
			def.Textures["*"] = s
		}
		return def
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil || obj == nil {
		return def
	}

	if t, ok := obj["type"]; ok {
		_ = json.Unmarshal(t, &def.Type)
	}

	textures, ok := obj["textures"]
	if !ok {
		def.Textures = stringFields(obj)
		return def
	}
	if err := json.Unmarshal(textures, &s); err == nil {
		if s != "" {
			def.Textures["*"] = s
		}
		return def
	}
	var faces map[string]json.RawMessage
	if err := json.Unmarshal(textures, &faces); err == nil && faces != nil {
		def.Textures = stringFields(faces)
	}
	return def
}

// stringFields keeps the string-valued fields of obj.
func stringFields(obj map[string]json.RawMessage) FaceMap {
	out := make(FaceMap, len(obj))
	for k, v := range obj {
		var s string
		if err := json.Unmarshal(v, &s); err == nil {
			out[k] = s
		}
	}
	return out
}

// decodeObject decodes a JSON object keeping its key order.
func decodeObject(data []byte) ([]string, map[string]json.RawMessage, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return nil, nil, err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, nil, fmt.Errorf("expected object, got %v", tok)
	}

	var keys []string
	entries := make(map[string]json.RawMessage)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, nil, fmt.Errorf("expected object key, got %v", tok)
		}
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil, nil, fmt.Errorf("decode %q: %w", key, err)
		}
		if _, dup := entries[key]; !dup {
			keys = append(keys, key)
		}
		entries[key] = raw
	}
	return keys, entries, nil
}

func isObject(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) > 0 && raw[0] == '{'
}
