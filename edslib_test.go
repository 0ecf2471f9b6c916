package edslib

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nasa/EdsLib-sub002/pkg/schemadb"
)

var testDBSeq int

// buildTestSchema assembles the catalogue used across the package tests
// and benchmarks; definition failures are programming errors here.
func buildTestSchema() *schemadb.DB {
	d := schemadb.New()
	mustAdd := func(id schemadb.TypeID, err error) schemadb.TypeID {
		if err != nil {
			panic(err)
		}
		return id
	}
	u8 := mustAdd(d.AddScalar("uint8", schemadb.KindUnsignedInt, 1, schemadb.HintNone))
	u16 := mustAdd(d.AddScalar("uint16", schemadb.KindUnsignedInt, 2, schemadb.HintNone))
	i32 := mustAdd(d.AddScalar("int32", schemadb.KindSignedInt, 4, schemadb.HintNone))
	f64 := mustAdd(d.AddScalar("float64", schemadb.KindFloat, 8, schemadb.HintNone))
	char8 := mustAdd(d.AddScalar("char8", schemadb.KindBinary, 8, schemadb.HintString))
	mustAdd(d.AddScalar("bin8", schemadb.KindBinary, 8, schemadb.HintNone))
	flag := mustAdd(d.AddScalar("flag", schemadb.KindUnsignedInt, 1, schemadb.HintBoolean))
	mode := mustAdd(d.AddEnum("Mode", 1, map[string]int64{"SAFE": 0, "NOMINAL": 1, "SCIENCE": 2}))

	// odd and out-of-range widths
	mustAdd(d.AddScalar("uint24", schemadb.KindUnsignedInt, 3, schemadb.HintNone))
	mustAdd(d.AddScalar("int24", schemadb.KindSignedInt, 3, schemadb.HintNone))
	mustAdd(d.AddScalar("float16", schemadb.KindFloat, 2, schemadb.HintNone))
	mustAdd(d.AddScalar("uint128", schemadb.KindUnsignedInt, 16, schemadb.HintNone))

	mustAdd(d.AddArray("U16x3", u16, 3))
	vec3 := mustAdd(d.AddArray("Vec3", f64, 3))

	// the two-field layout from the conversion scenarios
	mustAdd(d.AddContainer("PairAB", 0, []schemadb.Field{
		{Name: "a", Type: u8, Offset: 0},
		{Name: "b", Type: i32, Offset: 1},
	}))

	hdr := mustAdd(d.AddContainer("Header", 0, []schemadb.Field{
		{Name: "apid", Type: u16, Offset: -1},
		{Name: "seq", Type: u16, Offset: -1},
	}))
	mustAdd(d.AddContainer("Telemetry", hdr, []schemadb.Field{
		{Name: "mode", Type: mode, Offset: -1},
		{Name: "armed", Type: flag, Offset: -1},
		{Name: "temperature", Type: i32, Offset: -1},
		{Name: "position", Type: vec3, Offset: -1},
		{Name: "label", Type: char8, Offset: -1},
	}))
	return d
}

// openTestDB opens a fresh Database per call; names are unique so the
// process-wide registry never aliases two tests.
func openTestDB(t *testing.T) *Database {
	t.Helper()
	testDBSeq++
	db, err := Open(fmt.Sprintf("test-%d", testDBSeq), buildTestSchema())
	require.NoError(t, err)
	return db
}

func mustType(t *testing.T, db *Database, name string) *DynamicType {
	t.Helper()
	dt, err := db.TypeByName(name)
	require.NoError(t, err)
	return dt
}
