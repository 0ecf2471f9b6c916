package edslib

import (
	"github.com/pkg/errors"

	"github.com/nasa/EdsLib-sub002/pkg/schemadb"
)

// BaseKind is the runtime classification of a DynamicType.
type BaseKind uint8

const (
	BaseScalar BaseKind = iota
	BaseNumber
	BaseContainer
	BaseArray
)

func (k BaseKind) String() string {
	switch k {
	case BaseScalar:
		return "scalar"
	case BaseNumber:
		return "number"
	case BaseContainer:
		return "container"
	case BaseArray:
		return "array"
	default:
		return "invalid"
	}
}

// DynamicType is the runtime description of one schema type: its base
// kind, ordered attribute table and sizing. Types are built lazily by
// Database.Type and are identity-stable while strongly held.
type DynamicType struct {
	db   *Database
	id   TypeID
	name string
	kind BaseKind

	skind schemadb.ElemKind
	hint  schemadb.DisplayHint

	size    int
	maxSize int

	// containers: attribute table in declaration order, base members
	// first. Unnamed entities participate in layout but are not listed.
	names []string
	attrs map[string]Accessor

	// arrays
	elemType  TypeID
	elemSize  int
	elemCount int
}

func (db *Database) buildType(id TypeID) (*DynamicType, error) {
	info, err := db.svc.TypeInfo(id)
	if err != nil {
		return nil, errors.Wrapf(ErrRuntime, "type info for id %d: %v", id, err)
	}
	maxSize, err := db.svc.MaxSize(id)
	if err != nil {
		return nil, errors.Wrapf(ErrRuntime, "max size for id %d: %v", id, err)
	}
	t := &DynamicType{
		db:      db,
		id:      id,
		name:    info.Name,
		skind:   info.Kind,
		hint:    info.Hint,
		size:    info.Size,
		maxSize: maxSize,
	}
	switch info.Kind {
	case schemadb.KindBinary:
		t.kind = BaseScalar
	case schemadb.KindSignedInt, schemadb.KindUnsignedInt, schemadb.KindFloat:
		t.kind = BaseNumber
	case schemadb.KindArray:
		t.kind = BaseArray
		einfo, err := db.svc.TypeInfo(info.ElemType)
		if err != nil {
			return nil, errors.Wrapf(ErrRuntime, "element type of %q: %v", info.Name, err)
		}
		t.elemType = info.ElemType
		t.elemSize = einfo.Size
		t.elemCount = info.NumSub
	case schemadb.KindContainer:
		t.kind = BaseContainer
		members, err := db.svc.Members(id)
		if err != nil {
			return nil, errors.Wrapf(ErrRuntime, "members of %q: %v", info.Name, err)
		}
		t.attrs = make(map[string]Accessor, len(members))
		for _, m := range members {
			if m.Name == "" {
				continue
			}
			t.names = append(t.names, m.Name)
			t.attrs[m.Name] = NewAccessor(m.Type, m.Offset, m.Size)
		}
	default:
		return nil, errors.Wrapf(ErrValue, "type %q: unrecognized kind %d", info.Name, info.Kind)
	}
	return t, nil
}

func (t *DynamicType) Database() *Database { return t.db }
func (t *DynamicType) ID() TypeID          { return t.id }
func (t *DynamicType) Name() string        { return t.name }
func (t *DynamicType) Kind() BaseKind      { return t.kind }

// Size is the native layout size; MaxSize is the derived maximum used to
// size fresh allocations.
func (t *DynamicType) Size() int    { return t.size }
func (t *DynamicType) MaxSize() int { return t.maxSize }

// Keys lists the named members in declaration order, inherited first.
func (t *DynamicType) Keys() []string {
	out := make([]string, len(t.names))
	copy(out, t.names)
	return out
}

// NumMembers counts the externally visible named members.
func (t *DynamicType) NumMembers() int { return len(t.names) }

// Attribute looks up the accessor for a named member.
func (t *DynamicType) Attribute(name string) (Accessor, bool) {
	a, ok := t.attrs[name]
	return a, ok
}

func (t *DynamicType) ElemCount() int { return t.elemCount }
func (t *DynamicType) ElemSize() int  { return t.elemSize }

// FormatCode is the struct-style element format tag used by strided
// views: b/B h/H i/I q/Q for integers by width, f/d for floats, s for
// binary, ' ' for compounds.
func (t *DynamicType) FormatCode() byte {
	switch t.skind {
	case schemadb.KindSignedInt:
		switch t.size {
		case 1:
			return 'b'
		case 2:
			return 'h'
		case 4:
			return 'i'
		default:
			return 'q'
		}
	case schemadb.KindUnsignedInt:
		switch t.size {
		case 1:
			return 'B'
		case 2:
			return 'H'
		case 4:
			return 'I'
		default:
			return 'Q'
		}
	case schemadb.KindFloat:
		if t.size == 4 {
			return 'f'
		}
		return 'd'
	case schemadb.KindBinary:
		return 's'
	default:
		return ' '
	}
}

// New allocates a zeroed window of the derived maximum size and binds a
// fresh Instance to it. Default initialization runs exactly once here.
func (t *DynamicType) New() (*Instance, error) {
	w, err := NewAllocated(t.maxSize)
	if err != nil {
		return nil, err
	}
	inst, err := newInstance(t, w, 0, t.maxSize)
	if err != nil {
		return nil, err
	}
	w.markInitialized()
	return inst, nil
}

// Wrap binds an Instance over caller memory without copying. The buffer
// is taken as already initialized; default initialization never re-runs.
func (t *DynamicType) Wrap(b []byte, readonly bool) (*Instance, error) {
	return newInstance(t, WrapBytes(b, readonly), 0, len(b))
}

// Copy binds an Instance over a private copy of b.
func (t *DynamicType) Copy(b []byte) (*Instance, error) {
	return newInstance(t, CopyFrom(b), 0, len(b))
}

// Bind places an Instance at an offset inside an existing window. A zero
// length means the type's native size.
func (t *DynamicType) Bind(w *BufferWindow, off, length int) (*Instance, error) {
	if w == nil {
		return nil, errors.Wrap(ErrBuffer, "bind to nil window")
	}
	if length == 0 {
		length = t.size
	}
	return newInstance(t, w, off, length)
}
