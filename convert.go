package edslib

import (
	"fmt"
	"reflect"
	"strconv"

	"github.com/goccy/go-json"
	"github.com/pkg/errors"

	"github.com/nasa/EdsLib-sub002/pkg/packed"
	"github.com/nasa/EdsLib-sub002/pkg/schemadb"
)

// Decode translates a bound instance into a generic dynamic value:
// scalars become Go scalars (enum labels when they round-trip), arrays
// become []any in element order, containers become map[string]any. The
// first error in the recursion aborts the whole subtree.
func Decode(i *Instance) (any, error) {
	if i == nil {
		return nil, nil
	}
	switch {
	case i.isArray():
		out := make([]any, i.Len())
		for k := range out {
			child, err := i.Index(k)
			if err != nil {
				return nil, err
			}
			v, err := Decode(child)
			if err != nil {
				return nil, err
			}
			out[k] = v
		}
		return out, nil
	case i.isContainer():
		out := make(map[string]any, i.Len())
		err := i.Each(func(name string, child *Instance) error {
			v, err := Decode(child)
			if err != nil {
				return err
			}
			out[name] = v
			return nil
		})
		if err != nil {
			return nil, err
		}
		return out, nil
	case i.isScalar():
		return decodeScalar(i)
	default:
		return nil, errors.Wrapf(ErrRuntime, "cannot map type %q (%s)", i.typ.name, i.typ.kind)
	}
}

func decodeScalar(i *Instance) (any, error) {
	switch i.typ.hint {
	case schemadb.HintEnum:
		v, err := i.Int()
		if err != nil {
			return nil, err
		}
		if label, ok := i.typ.db.svc.EnumLabel(i.typ.id, v); ok {
			// only emit the label when it converts back to the same value
			if back, ok := i.typ.db.svc.EnumValue(i.typ.id, label); ok && back == v {
				return label, nil
			}
		}
		return v, nil
	case schemadb.HintString:
		return i.StringValue()
	case schemadb.HintBoolean:
		return i.Bool()
	}
	switch i.typ.skind {
	case schemadb.KindBinary:
		return i.Bytes()
	case schemadb.KindSignedInt:
		return i.Int()
	case schemadb.KindUnsignedInt:
		return i.Uint()
	case schemadb.KindFloat:
		return i.Float()
	default:
		return nil, errors.Wrapf(ErrRuntime, "cannot map type %q (%s)", i.typ.name, i.typ.skind)
	}
}

// Encode assigns src into the instance's storage. Strategy, in order:
// nil is a no-op; a packed record takes the unpack fast path; a
// structurally compatible Instance takes the direct byte copy; compound
// destinations match members by name then position, skipping absent
// ones; scalars run the coercion chain.
func Encode(i *Instance, src any) error {
	if i == nil {
		return errors.Wrap(ErrType, "encode into unbound instance")
	}
	if src == nil {
		return nil
	}

	if p, ok := src.(Packed); ok {
		return Unpack(i, p)
	}
	if s, ok := src.(*Instance); ok {
		ok, err := Compatible(i, s)
		if err != nil {
			return err
		}
		if ok {
			return directCopy(i, s)
		}
		// incompatible instance: fall back to its generic value form
		v, err := Decode(s)
		if err != nil {
			return err
		}
		src = v
	}

	switch {
	case i.isContainer():
		return encodeContainer(i, src)
	case i.isArray():
		return encodeArray(i, src)
	default:
		return coerceScalar(i, src)
	}
}

// Compatible reports whether two instances share enough structural
// lineage for a direct byte copy.
func Compatible(dst, src *Instance) (bool, error) {
	dl, err := dst.typ.db.Lineage(dst.typ.id)
	if err != nil {
		return false, err
	}
	sl, err := src.typ.db.Lineage(src.typ.id)
	if err != nil {
		return false, err
	}
	return packed.Compatible(dl, sl), nil
}

// directCopy is the fast path: a byte copy bounded by the smaller native
// size, zero-filling any remaining destination tail.
func directCopy(dst, src *Instance) error {
	b, err := src.Bytes()
	if err != nil {
		return err
	}
	if n := src.typ.size; n > 0 && n < len(b) {
		b = b[:n]
	}
	return dst.storeBytes(b)
}

func encodeContainer(i *Instance, src any) error {
	rv := reflect.ValueOf(src)
	byName := rv.Kind() == reflect.Map && rv.Type().Key().Kind() == reflect.String
	byPos := rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array
	if !byName && !byPos {
		return errors.Wrapf(ErrType, "cannot encode %T into container %q", src, i.typ.name)
	}
	for pos, name := range i.typ.names {
		var fv reflect.Value
		if byName {
			fv = rv.MapIndex(reflect.ValueOf(name))
		} else if pos < rv.Len() {
			fv = rv.Index(pos)
		}
		if !fv.IsValid() {
			// absent member: intentionally left unmodified
			continue
		}
		if err := i.typ.attrs[name].Assign(i, fv.Interface()); err != nil {
			return errors.Wrapf(err, "member %q", name)
		}
	}
	return nil
}

func encodeArray(i *Instance, src any) error {
	rv := reflect.ValueOf(src)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return errors.Wrapf(ErrType, "cannot encode %T into array %q", src, i.typ.name)
	}
	n := i.Len()
	if rv.Len() < n {
		n = rv.Len()
	}
	for k := 0; k < n; k++ {
		if err := i.SetIndex(k, rv.Index(k).Interface()); err != nil {
			return errors.Wrapf(err, "element %d", k)
		}
	}
	return nil
}

// coerceScalar tries candidate coercions in sequence; recoverable
// mismatches never abort the attempt, only exhausting every candidate
// surfaces an error naming both sides.
func coerceScalar(i *Instance, src any) error {
	binary := i.typ.skind == schemadb.KindBinary

	switch v := src.(type) {
	case []byte:
		if binary {
			return i.storeBytes(v)
		}
		if err := storeText(i, string(v)); err == nil {
			return nil
		}
	case string:
		if err := storeText(i, v); err == nil {
			return nil
		}
	case bool:
		if binary {
			break
		}
		var n int64
		if v {
			n = 1
		}
		return i.storeInt(n)
	case int:
		return storeOrPad(i, binary, int64(v))
	case int8:
		return storeOrPad(i, binary, int64(v))
	case int16:
		return storeOrPad(i, binary, int64(v))
	case int32:
		return storeOrPad(i, binary, int64(v))
	case int64:
		return storeOrPad(i, binary, v)
	case uint:
		return storeOrPadU(i, binary, uint64(v))
	case uint8:
		return storeOrPadU(i, binary, uint64(v))
	case uint16:
		return storeOrPadU(i, binary, uint64(v))
	case uint32:
		return storeOrPadU(i, binary, uint64(v))
	case uint64:
		return storeOrPadU(i, binary, v)
	case float32:
		if !binary {
			return i.storeFloat(float64(v))
		}
	case float64:
		if !binary {
			return i.storeFloat(v)
		}
	}

	// generic numeric protocol for named types
	if !binary {
		rv := reflect.ValueOf(src)
		switch {
		case rv.CanInt():
			return i.storeInt(rv.Int())
		case rv.CanUint():
			return i.storeUint(rv.Uint())
		case rv.CanFloat():
			return i.storeFloat(rv.Float())
		}
	}

	// last resort: textual representation
	if err := storeText(i, fmt.Sprint(src)); err == nil {
		return nil
	}
	return errors.Wrapf(ErrType, "cannot convert %T into %q (%s)", src, i.typ.name, i.typ.skind)
}

func storeOrPad(i *Instance, binary bool, v int64) error {
	if binary {
		return i.storeBytes([]byte(strconv.FormatInt(v, 10)))
	}
	return i.storeInt(v)
}

func storeOrPadU(i *Instance, binary bool, v uint64) error {
	if binary {
		return i.storeBytes([]byte(strconv.FormatUint(v, 10)))
	}
	return i.storeUint(v)
}

// storeText parses text into the scalar: raw copy for string-hinted and
// binary types, enum label lookup, then numeric or boolean parses.
func storeText(i *Instance, s string) error {
	if i.typ.skind == schemadb.KindBinary || i.typ.hint == schemadb.HintString {
		return i.storeBytes([]byte(s))
	}
	if i.typ.hint == schemadb.HintEnum {
		if v, ok := i.typ.db.svc.EnumValue(i.typ.id, s); ok {
			return i.storeInt(v)
		}
	}
	switch i.typ.skind {
	case schemadb.KindSignedInt:
		if v, err := strconv.ParseInt(s, 0, 64); err == nil {
			return i.storeInt(v)
		}
	case schemadb.KindUnsignedInt:
		if v, err := strconv.ParseUint(s, 0, 64); err == nil {
			return i.storeUint(v)
		}
	case schemadb.KindFloat:
		if v, err := strconv.ParseFloat(s, 64); err == nil {
			return i.storeFloat(v)
		}
	}
	if v, err := strconv.ParseBool(s); err == nil {
		var n int64
		if v {
			n = 1
		}
		return i.storeInt(n)
	}
	return errors.Wrapf(ErrType, "cannot parse %q into %q", s, i.typ.name)
}

// MarshalJSON renders the instance's generic value form as JSON.
func MarshalJSON(i *Instance) ([]byte, error) {
	v, err := Decode(i)
	if err != nil {
		return nil, err
	}
	out, err := json.Marshal(v)
	if err != nil {
		return nil, errors.Wrap(ErrRuntime, err.Error())
	}
	return out, nil
}

// EncodeJSON assigns a JSON document through the generic value form.
func EncodeJSON(i *Instance, data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return errors.Wrap(ErrValue, err.Error())
	}
	return Encode(i, v)
}
