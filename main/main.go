// Demo: load a TOML schema, bind a telemetry instance, mutate it through
// the dynamic surface and round-trip it through the packed form.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/davecgh/go-spew/spew"
	"go.uber.org/zap"

	edslib "github.com/nasa/EdsLib-sub002"
	"github.com/nasa/EdsLib-sub002/pkg/packed"
	"github.com/nasa/EdsLib-sub002/pkg/schemadb"
)

func main() {
	schema := flag.String("schema", "examples/telemetry.toml", "schema file")
	flag.Parse()

	log, err := zap.NewDevelopment()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer log.Sync()

	if err := run(*schema, log); err != nil {
		log.Fatal("demo failed", zap.Error(err))
	}
}

func run(schema string, log *zap.Logger) error {
	svc, err := schemadb.LoadTOML(schema)
	if err != nil {
		return err
	}
	db, err := edslib.Open("demo", svc, edslib.WithLogger(log))
	if err != nil {
		return err
	}

	tm, err := db.TypeByName("Telemetry")
	if err != nil {
		return err
	}
	inst, err := tm.New()
	if err != nil {
		return err
	}

	err = edslib.Encode(inst, map[string]any{
		"apid":        0x7FF,
		"seq":         1,
		"mode":        "SCIENCE",
		"armed":       true,
		"temperature": -40,
		"position":    []any{1.5, -2.25, 100.0},
		"label":       "pathfinder",
	})
	if err != nil {
		return err
	}

	value, err := edslib.Decode(inst)
	if err != nil {
		return err
	}
	spew.Dump(value)

	rec, err := edslib.Pack(inst, packed.CodecZstd)
	if err != nil {
		return err
	}
	log.Info("packed", zap.Int("record_bytes", len(rec)))

	clone, err := tm.New()
	if err != nil {
		return err
	}
	if err := edslib.Encode(clone, rec); err != nil {
		return err
	}
	out, err := edslib.MarshalJSON(clone)
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}
