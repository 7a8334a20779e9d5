package eav

import "sort"

// Ref is an opaque internal handle for an asserted entity. It never leaks
// into a Value: a Bag always materializes entities as Value (TagEntity)
// built from the ref's current attribute bundle (see entityValue), because
// spec §3 defines entity identity structurally, not by handle.
type Ref string

// Triple is one (Entity, Attribute, Value) row of a Bag, in column order
// E, A, V.
type Triple [3]Value

// Bag is the in-memory EAV triple store. Facts are asserted per-ref with
// Assert; the store tracks, for each ref, every attribute it has been
// given a value for, and reconstructs that ref's Entity value on demand by
// sorting its attributes ascending — so the Entity value for a ref is
// always the same regardless of assertion order.
type Bag struct {
	order []Ref
	seen  map[Ref]bool
	attrs map[Ref]map[string]Value
}

// NewBag returns an empty Bag.
func NewBag() *Bag {
	return &Bag{
		seen:  make(map[Ref]bool),
		attrs: make(map[Ref]map[string]Value),
	}
}

// Assert records attribute=value for ref, overwriting any prior value for
// that (ref, attribute) pair. Asserting a fact for a ref seen for the
// first time registers it in insertion order.
func (bag *Bag) Assert(ref Ref, attribute string, value Value) {
	if !bag.seen[ref] {
		bag.seen[ref] = true
		bag.order = append(bag.order, ref)
		bag.attrs[ref] = make(map[string]Value)
	}
	bag.attrs[ref][attribute] = value
}

// entityValue builds the canonical Entity Value for ref: its attributes
// sorted ascending by name. Two refs with the same attribute bundle always
// produce Equal Entity values.
func (bag *Bag) entityValue(ref Ref) Value {
	m := bag.attrs[ref]
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	attrsList := make([]AttrValue, len(names))
	for i, name := range names {
		attrsList[i] = AttrValue{Attribute: name, Value: m[name]}
	}
	return Ent(NewEntity(attrsList))
}

// RefForEntityValue returns the ref whose canonical Entity value equals
// ev, if any. Used by callers (the driver package) that need to apply an
// executor-produced Assert triple — whose E column is an Entity Value, not
// a Ref — back onto the Bag that produced it.
func (bag *Bag) RefForEntityValue(ev Value) (Ref, bool) {
	for _, ref := range bag.order {
		if bag.entityValue(ref).Equal(ev) {
			return ref, true
		}
	}
	return "", false
}

// Triples returns every (Entity, Attribute, Value) triple currently in the
// bag, in ref-insertion order and then attribute-name order within a ref.
func (bag *Bag) Triples() []Triple {
	var out []Triple
	for _, ref := range bag.order {
		ev := bag.entityValue(ref)
		m := bag.attrs[ref]
		names := make([]string, 0, len(m))
		for name := range m {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			out = append(out, Triple{ev, Str(name), m[name]})
		}
	}
	return out
}
