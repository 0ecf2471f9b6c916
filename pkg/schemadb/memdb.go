package schemadb

import (
	"github.com/pkg/errors"
)

var (
	ErrUnknownType = errors.New("schemadb: unknown type")
	ErrUnknownName = errors.New("schemadb: unknown name")
	ErrBadType     = errors.New("schemadb: invalid type definition")
)

type entry struct {
	info       TypeInfo
	members    []Member
	enumByVal  map[int64]string
	enumByName map[string]int64
	maxSize    int
}

// DB is the in-memory reference implementation of Service, populated
// through the builder methods or LoadTOML.
type DB struct {
	types  map[TypeID]*entry
	names  map[string]TypeID
	nextID TypeID
}

func New() *DB {
	return &DB{
		types:  make(map[TypeID]*entry),
		names:  make(map[string]TypeID),
		nextID: 1,
	}
}

func (d *DB) add(info TypeInfo, members []Member) (TypeID, error) {
	if info.Name == "" {
		return 0, errors.Wrap(ErrBadType, "empty type name")
	}
	if _, dup := d.names[info.Name]; dup {
		return 0, errors.Wrapf(ErrBadType, "duplicate type name %q", info.Name)
	}
	id := d.nextID
	d.nextID++
	info.ID = id
	d.types[id] = &entry{info: info, members: members, maxSize: info.Size}
	d.names[info.Name] = id
	return id, nil
}

// AddScalar registers a leaf type. kind must be a scalar kind and size a
// positive byte count.
func (d *DB) AddScalar(name string, kind ElemKind, size int, hint DisplayHint) (TypeID, error) {
	switch kind {
	case KindBinary, KindSignedInt, KindUnsignedInt, KindFloat:
	default:
		return 0, errors.Wrapf(ErrBadType, "%q: kind %s is not scalar", name, kind)
	}
	if size <= 0 {
		return 0, errors.Wrapf(ErrBadType, "%q: size %d", name, size)
	}
	return d.add(TypeInfo{Name: name, Kind: kind, Size: size, Hint: hint}, nil)
}

// AddEnum registers a signed integer scalar with a label table.
func (d *DB) AddEnum(name string, size int, labels map[string]int64) (TypeID, error) {
	id, err := d.AddScalar(name, KindSignedInt, size, HintEnum)
	if err != nil {
		return 0, err
	}
	e := d.types[id]
	e.enumByName = make(map[string]int64, len(labels))
	e.enumByVal = make(map[int64]string, len(labels))
	for label, v := range labels {
		e.enumByName[label] = v
		// first label wins for duplicate values
		if _, taken := e.enumByVal[v]; !taken {
			e.enumByVal[v] = label
		}
	}
	return id, nil
}

// AddArray registers a fixed-count array of elem.
func (d *DB) AddArray(name string, elem TypeID, count int) (TypeID, error) {
	ee, ok := d.types[elem]
	if !ok {
		return 0, errors.Wrapf(ErrUnknownType, "%q: element id %d", name, elem)
	}
	if count <= 0 {
		return 0, errors.Wrapf(ErrBadType, "%q: element count %d", name, count)
	}
	return d.add(TypeInfo{
		Name:     name,
		Kind:     KindArray,
		Size:     ee.info.Size * count,
		NumSub:   count,
		ElemType: elem,
	}, nil)
}

// Field declares one container member. Offset < 0 requests sequential
// packing after the previous member (no alignment; layout policy is the
// schema author's concern, not the engine's).
type Field struct {
	Name   string
	Type   TypeID
	Offset int
}

// AddContainer registers a compound type. base may be zero; when set, the
// base's members are inherited ahead of the declared fields and the new
// type extends the base's derived maximum size.
func (d *DB) AddContainer(name string, base TypeID, fields []Field) (TypeID, error) {
	var members []Member
	end := 0
	seq := 0
	if base != 0 {
		be, ok := d.types[base]
		if !ok {
			return 0, errors.Wrapf(ErrUnknownType, "%q: base id %d", name, base)
		}
		if be.info.Kind != KindContainer {
			return 0, errors.Wrapf(ErrBadType, "%q: base %q is not a container", name, be.info.Name)
		}
		for _, m := range be.members {
			m.Seq = seq
			seq++
			members = append(members, m)
		}
		end = be.info.Size
	}
	for _, f := range fields {
		fe, ok := d.types[f.Type]
		if !ok {
			return 0, errors.Wrapf(ErrUnknownType, "%q.%s: type id %d", name, f.Name, f.Type)
		}
		off := f.Offset
		if off < 0 {
			off = end
		}
		members = append(members, Member{
			Name:   f.Name,
			Type:   f.Type,
			Offset: off,
			Size:   fe.info.Size,
			Seq:    seq,
		})
		seq++
		if off+fe.info.Size > end {
			end = off + fe.info.Size
		}
	}
	id, err := d.add(TypeInfo{
		Name:   name,
		Kind:   KindContainer,
		Size:   end,
		NumSub: len(members),
		Base:   base,
	}, members)
	if err != nil {
		return 0, err
	}
	// propagate derived size up the base chain
	for b := base; b != 0; b = d.types[b].info.Base {
		be := d.types[b]
		if end > be.maxSize {
			be.maxSize = end
		}
	}
	return id, nil
}

func (d *DB) entry(id TypeID) (*entry, error) {
	e, ok := d.types[id]
	if !ok {
		return nil, errors.Wrapf(ErrUnknownType, "id %d", id)
	}
	return e, nil
}

func (d *DB) TypeInfo(id TypeID) (TypeInfo, error) {
	e, err := d.entry(id)
	if err != nil {
		return TypeInfo{}, err
	}
	return e.info, nil
}

func (d *DB) Members(id TypeID) ([]Member, error) {
	e, err := d.entry(id)
	if err != nil {
		return nil, err
	}
	return e.members, nil
}

func (d *DB) MaxSize(id TypeID) (int, error) {
	e, err := d.entry(id)
	if err != nil {
		return 0, err
	}
	return e.maxSize, nil
}

func (d *DB) EnumLabel(id TypeID, value int64) (string, bool) {
	e, ok := d.types[id]
	if !ok || e.enumByVal == nil {
		return "", false
	}
	label, ok := e.enumByVal[value]
	return label, ok
}

func (d *DB) EnumValue(id TypeID, label string) (int64, bool) {
	e, ok := d.types[id]
	if !ok || e.enumByName == nil {
		return 0, false
	}
	v, ok := e.enumByName[label]
	return v, ok
}

func (d *DB) LookupName(name string) (TypeID, error) {
	id, ok := d.names[name]
	if !ok {
		return 0, errors.Wrapf(ErrUnknownName, "%q", name)
	}
	return id, nil
}
