package edslib

import "github.com/pkg/errors"

// Accessor is an immutable (type id, offset, length) triple describing
// how to find a typed value inside a buffer. One Accessor exists per
// (parent type, member) pair, built once into the parent's attribute
// table and never mutated.
type Accessor struct {
	typ    TypeID
	offset int
	length int
}

func NewAccessor(id TypeID, offset, length int) Accessor {
	return Accessor{typ: id, offset: offset, length: length}
}

func (a Accessor) TypeID() TypeID { return a.typ }
func (a Accessor) Offset() int    { return a.offset }
func (a Accessor) Length() int    { return a.length }

// Resolve binds the accessor against a live parent, producing a child
// Instance that shares the parent's window at parent.offset + a.offset.
// A nil parent is static introspection on the type object itself: that
// is a legitimate, error-free operation and yields no value.
func (a Accessor) Resolve(parent *Instance) (*Instance, error) {
	if parent == nil {
		return nil, nil
	}
	ct, err := parent.typ.db.Type(a.typ)
	if err != nil {
		return nil, err
	}
	return newSubObject(parent, ct, a.offset, a.length)
}

// Assign resolves then encodes value into the member's storage.
func (a Accessor) Assign(parent *Instance, value any) error {
	child, err := a.Resolve(parent)
	if err != nil {
		return err
	}
	if child == nil {
		return errors.Wrap(ErrType, "assign through unbound type")
	}
	return Encode(child, value)
}
