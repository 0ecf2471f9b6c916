package edslib

import (
	"weak"

	"github.com/cespare/xxhash/v2"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/nasa/EdsLib-sub002/pkg/schemadb"
)

// TypeID selects one schema-defined type within a Database.
type TypeID = schemadb.TypeID

// Database binds one schema database to a runtime type cache. There is at
// most one live Database per schema name process-wide; reopening a name
// returns the existing instance while anything still holds it.
type Database struct {
	name string
	svc  schemadb.Service
	log  *zap.Logger

	// types caches runtime types weakly so unused ones can be collected
	// and rebuilt on demand; pin keeps the hot ones strongly referenced.
	types map[TypeID]weak.Pointer[DynamicType]
	pin   *lru.Cache[TypeID, *DynamicType]
}

var openDatabases = map[string]weak.Pointer[Database]{}

// Open returns the Database bound to name, creating it if no live one
// exists. svc is only consulted for a fresh open.
func Open(name string, svc schemadb.Service, opts ...Option) (*Database, error) {
	if wp, ok := openDatabases[name]; ok {
		if db := wp.Value(); db != nil {
			return db, nil
		}
	}
	if svc == nil {
		return nil, errors.Wrapf(ErrValue, "open %q: nil schema service", name)
	}
	cfg := defaultConfig()
	for _, o := range opts {
		o(&cfg)
	}
	pin, err := lru.New[TypeID, *DynamicType](cfg.typePin)
	if err != nil {
		return nil, errors.Wrap(ErrValue, err.Error())
	}
	db := &Database{
		name:  name,
		svc:   svc,
		log:   cfg.log.Named("edslib").With(zap.String("db", name)),
		types: make(map[TypeID]weak.Pointer[DynamicType]),
		pin:   pin,
	}
	openDatabases[name] = weak.Make(db)
	db.log.Debug("database opened")
	return db, nil
}

func (db *Database) Name() string { return db.name }

// Service exposes the underlying schema lookup surface.
func (db *Database) Service() schemadb.Service { return db.svc }

// Type returns the runtime type for id, building it on first use.
// Repeated lookups return the identical object while any strong holder
// exists; an expired cache slot is rebuilt transparently.
func (db *Database) Type(id TypeID) (*DynamicType, error) {
	if wp, ok := db.types[id]; ok {
		if t := wp.Value(); t != nil {
			db.pin.Add(id, t)
			return t, nil
		}
	}
	t, err := db.buildType(id)
	if err != nil {
		return nil, err
	}
	db.types[id] = weak.Make(t)
	db.pin.Add(id, t)
	db.log.Debug("type built",
		zap.Uint32("id", uint32(id)),
		zap.String("name", t.name),
		zap.Stringer("kind", t.kind))
	return t, nil
}

// TypeByName resolves a type through the schema's name table.
func (db *Database) TypeByName(name string) (*DynamicType, error) {
	id, err := db.svc.LookupName(name)
	if err != nil {
		return nil, errors.Wrapf(ErrRuntime, "lookup %q: %v", name, err)
	}
	return db.Type(id)
}

// SchemaID derives the stable wire identifier of a named type; packed
// records carry it so receivers can check lineage before a direct copy.
func (db *Database) SchemaID(typeName string) uint64 {
	return xxhash.Sum64String(db.name + "/" + typeName)
}

// Lineage lists schema ids from the root base container down to id.
// Scalars and arrays have a single-element lineage.
func (db *Database) Lineage(id TypeID) ([]uint64, error) {
	var names []string
	for cur := id; cur != 0; {
		info, err := db.svc.TypeInfo(cur)
		if err != nil {
			return nil, errors.Wrapf(ErrRuntime, "lineage of id %d: %v", id, err)
		}
		names = append(names, info.Name)
		cur = info.Base
	}
	// root first
	ids := make([]uint64, len(names))
	for i := range names {
		ids[i] = db.SchemaID(names[len(names)-1-i])
	}
	return ids, nil
}
