// Package bagio persists an eav.Bag to and from the on-disk wire format
// described in spec §6.2: a JSON array of [[Entity, Attribute], Value]
// entries. The core engine never touches a file itself — it only ever
// receives an already-built *eav.Bag — so this package is purely an
// external collaborator, the same role driver/rows.go's encoding/json
// marshaling plays for the teacher's row values. No schema-evolution or
// streaming concerns exist for this flat, fixed shape, so no third-party
// codec is wired in here.
package bagio

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/impql/impql/eav"
)

// Save writes every triple in bag as a JSON array of [[Entity, Attribute],
// Value] entries.
func Save(w io.Writer, bag *eav.Bag) error {
	triples := bag.Triples()
	out := make([]interface{}, len(triples))
	for i, t := range triples {
		entityWire, err := toWire(t[0])
		if err != nil {
			return err
		}
		valueWire, err := toWire(t[2])
		if err != nil {
			return err
		}
		out[i] = []interface{}{
			[]interface{}{entityWire, t[1].AsString()},
			valueWire,
		}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

// Load reads a bag from its JSON wire form. Entries sharing the same
// entity snapshot are coalesced onto one internal ref so that later
// assertions against the resulting Bag land on the same entity.
func Load(r io.Reader) (*eav.Bag, error) {
	var raw []json.RawMessage
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("bagio: decoding top-level array: %w", err)
	}

	bag := eav.NewBag()
	refByEntity := make(map[string]eav.Ref)
	nextRef := 0

	for _, entryRaw := range raw {
		var entry []json.RawMessage
		if err := json.Unmarshal(entryRaw, &entry); err != nil || len(entry) != 2 {
			return nil, fmt.Errorf("bagio: malformed entry, want [[Entity, Attribute], Value]")
		}
		var eaPair []json.RawMessage
		if err := json.Unmarshal(entry[0], &eaPair); err != nil || len(eaPair) != 2 {
			return nil, fmt.Errorf("bagio: malformed [Entity, Attribute] pair")
		}

		entityVal, err := fromWire(eaPair[0])
		if err != nil {
			return nil, err
		}
		var attr string
		if err := json.Unmarshal(eaPair[1], &attr); err != nil {
			return nil, fmt.Errorf("bagio: attribute is not a string: %w", err)
		}
		value, err := fromWire(entry[1])
		if err != nil {
			return nil, err
		}

		key := entityVal.String()
		ref, ok := refByEntity[key]
		if !ok {
			ref = eav.Ref(fmt.Sprintf("ref#%d", nextRef))
			nextRef++
			refByEntity[key] = ref
		}
		bag.Assert(ref, attr, value)
	}
	return bag, nil
}

// toWire renders v as a [tag, payload] JSON pair.
func toWire(v eav.Value) (interface{}, error) {
	switch v.Tag() {
	case eav.TagBoolean:
		return []interface{}{"boolean", v.AsBool()}, nil
	case eav.TagInteger:
		return []interface{}{"integer", v.AsInt()}, nil
	case eav.TagString:
		return []interface{}{"string", v.AsString()}, nil
	case eav.TagEntity:
		attrs := v.AsEntity().Attrs
		pairs := make([]interface{}, len(attrs))
		for i, av := range attrs {
			wire, err := toWire(av.Value)
			if err != nil {
				return nil, err
			}
			pairs[i] = []interface{}{av.Attribute, wire}
		}
		return []interface{}{"entity", pairs}, nil
	default:
		return nil, fmt.Errorf("bagio: value has unknown tag")
	}
}

// fromWire parses a [tag, payload] JSON pair back into a Value.
func fromWire(raw json.RawMessage) (eav.Value, error) {
	var pair []json.RawMessage
	if err := json.Unmarshal(raw, &pair); err != nil || len(pair) != 2 {
		return eav.Value{}, fmt.Errorf("bagio: malformed value, want [tag, payload]")
	}
	var tag string
	if err := json.Unmarshal(pair[0], &tag); err != nil {
		return eav.Value{}, fmt.Errorf("bagio: value tag is not a string: %w", err)
	}
	switch tag {
	case "boolean":
		var b bool
		if err := json.Unmarshal(pair[1], &b); err != nil {
			return eav.Value{}, err
		}
		return eav.Bool(b), nil
	case "integer":
		var n int64
		if err := json.Unmarshal(pair[1], &n); err != nil {
			return eav.Value{}, err
		}
		return eav.Int(n), nil
	case "string":
		var s string
		if err := json.Unmarshal(pair[1], &s); err != nil {
			return eav.Value{}, err
		}
		return eav.Str(s), nil
	case "entity":
		var pairs []json.RawMessage
		if err := json.Unmarshal(pair[1], &pairs); err != nil {
			return eav.Value{}, err
		}
		attrs := make([]eav.AttrValue, len(pairs))
		for i, p := range pairs {
			var av []json.RawMessage
			if err := json.Unmarshal(p, &av); err != nil || len(av) != 2 {
				return eav.Value{}, fmt.Errorf("bagio: malformed entity attribute entry")
			}
			var name string
			if err := json.Unmarshal(av[0], &name); err != nil {
				return eav.Value{}, err
			}
			val, err := fromWire(av[1])
			if err != nil {
				return eav.Value{}, err
			}
			attrs[i] = eav.AttrValue{Attribute: name, Value: val}
		}
		return eav.Ent(eav.NewEntity(attrs)), nil
	default:
		return eav.Value{}, fmt.Errorf("bagio: unknown value tag %q", tag)
	}
}
