package grug

import (
	"encoding/json"

	"github.com/left-curve/grug-go/errors"
)

// variant is one arm of a tagged union. Tagged unions are encoded as a
// single key object {"<tag>": <value>}.
type variant struct {
	tag   string
	set   bool
	value interface{}
}

// activeVariant returns the only set variant of a union, or an error of
// the given kind if none or more than one is set.
func activeVariant(kind *errors.Error, union string, vs []variant) (variant, error) {
	var (
		active variant
		count  int
	)
	for _, v := range vs {
		if v.set {
			active = v
			count++
		}
	}
	switch count {
	case 1:
		return active, nil
	case 0:
		return variant{}, errors.Wrapf(kind, "%s: no variant set", union)
	default:
		return variant{}, errors.Wrapf(kind, "%s: %d variants set, want exactly one", union, count)
	}
}

func marshalUnion(kind *errors.Error, union string, vs []variant) ([]byte, error) {
	v, err := activeVariant(kind, union, vs)
	if err != nil {
		return nil, err
	}
	return json.Marshal(map[string]interface{}{v.tag: v.value})
}

// unmarshalUnion decodes a single key object. The tag must be one of the
// known tags, decode is called with it and the raw value.
func unmarshalUnion(kind *errors.Error, union string, raw []byte, known []string, decode func(tag string, value json.RawMessage) error) error {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil {
		return errors.Wrapf(kind, "%s: %s", union, err)
	}
	if len(obj) != 1 {
		return errors.Wrapf(kind, "%s: %d variants set, want exactly one", union, len(obj))
	}
	for tag, value := range obj {
		for _, k := range known {
			if k == tag {
				return decode(tag, value)
			}
		}
		return errors.Wrapf(kind, "%s: unknown variant %q", union, tag)
	}
	return nil
}
