package schemadb

import (
	"io"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"
)

// TOML schema files declare types in dependency order: scalars and enums
// first, then arrays and containers referring to earlier names.
//
//	[[scalar]]
//	name = "uint8"
//	kind = "uint"      # int | uint | float | binary
//	size = 1
//	hint = "none"      # none | string | boolean
//
//	[[enum]]
//	name = "Mode"
//	size = 1
//	[enum.labels]
//	OFF = 0
//	ON  = 1
//
//	[[array]]
//	name = "Vec3"
//	element = "float64"
//	count = 3
//
//	[[container]]
//	name = "Sample"
//	base = ""          # optional container name
//	  [[container.field]]
//	  name = "mode"
//	  type = "Mode"
//	  offset = -1      # -1 packs after the previous field
type tomlSchema struct {
	Scalar    []tomlScalar    `toml:"scalar"`
	Enum      []tomlEnum      `toml:"enum"`
	Array     []tomlArray     `toml:"array"`
	Container []tomlContainer `toml:"container"`
}

type tomlScalar struct {
	Name string `toml:"name"`
	Kind string `toml:"kind"`
	Size int    `toml:"size"`
	Hint string `toml:"hint"`
}

type tomlEnum struct {
	Name   string           `toml:"name"`
	Size   int              `toml:"size"`
	Labels map[string]int64 `toml:"labels"`
}

type tomlArray struct {
	Name    string `toml:"name"`
	Element string `toml:"element"`
	Count   int    `toml:"count"`
}

type tomlField struct {
	Name   string `toml:"name"`
	Type   string `toml:"type"`
	Offset *int   `toml:"offset"`
}

type tomlContainer struct {
	Name  string      `toml:"name"`
	Base  string      `toml:"base"`
	Field []tomlField `toml:"field"`
}

// LoadTOML builds a DB from a schema file.
func LoadTOML(path string) (*DB, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "schemadb: open schema")
	}
	defer f.Close()
	return ReadTOML(f)
}

// ReadTOML builds a DB from TOML schema text.
func ReadTOML(r io.Reader) (*DB, error) {
	var s tomlSchema
	if _, err := toml.NewDecoder(r).Decode(&s); err != nil {
		return nil, errors.Wrap(err, "schemadb: parse schema")
	}
	d := New()
	for _, sc := range s.Scalar {
		kind, err := parseKind(sc.Kind)
		if err != nil {
			return nil, errors.Wrapf(err, "scalar %q", sc.Name)
		}
		hint, err := parseHint(sc.Hint)
		if err != nil {
			return nil, errors.Wrapf(err, "scalar %q", sc.Name)
		}
		if _, err := d.AddScalar(sc.Name, kind, sc.Size, hint); err != nil {
			return nil, err
		}
	}
	for _, en := range s.Enum {
		if _, err := d.AddEnum(en.Name, en.Size, en.Labels); err != nil {
			return nil, err
		}
	}
	for _, ar := range s.Array {
		elem, err := d.LookupName(ar.Element)
		if err != nil {
			return nil, errors.Wrapf(err, "array %q", ar.Name)
		}
		if _, err := d.AddArray(ar.Name, elem, ar.Count); err != nil {
			return nil, err
		}
	}
	for _, co := range s.Container {
		var base TypeID
		if co.Base != "" {
			var err error
			base, err = d.LookupName(co.Base)
			if err != nil {
				return nil, errors.Wrapf(err, "container %q", co.Name)
			}
		}
		fields := make([]Field, 0, len(co.Field))
		for _, f := range co.Field {
			ft, err := d.LookupName(f.Type)
			if err != nil {
				return nil, errors.Wrapf(err, "container %q field %q", co.Name, f.Name)
			}
			off := -1
			if f.Offset != nil {
				off = *f.Offset
			}
			fields = append(fields, Field{Name: f.Name, Type: ft, Offset: off})
		}
		if _, err := d.AddContainer(co.Name, base, fields); err != nil {
			return nil, err
		}
	}
	return d, nil
}

func parseKind(s string) (ElemKind, error) {
	switch s {
	case "int":
		return KindSignedInt, nil
	case "uint":
		return KindUnsignedInt, nil
	case "float":
		return KindFloat, nil
	case "binary":
		return KindBinary, nil
	default:
		return KindNone, errors.Wrapf(ErrBadType, "kind %q", s)
	}
}

func parseHint(s string) (DisplayHint, error) {
	switch s {
	case "", "none":
		return HintNone, nil
	case "string":
		return HintString, nil
	case "boolean":
		return HintBoolean, nil
	default:
		return HintNone, errors.Wrapf(ErrBadType, "hint %q", s)
	}
}
