package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/mitterdoo/brdb"
)

const schemaHelp = `brdb schema [-flags] <archive.brz> <schema-path> <document-path> [root-struct]

Decode document-path against the struct definitions in schema-path, both
inside the given BRZ archive, and print the result as JSON. If
root-struct is omitted, the most recently registered "*SoA" struct is
used.

Example:
  % brdb schema save.brz /schema/world.schema /world.mps
`

func cmdschema(args []string) error {
	fset := flag.NewFlagSet("schema", flag.ExitOnError)
	fset.Usage = subcommandUsage(fset, schemaHelp)
	fset.Parse(args)

	rest := fset.Args()
	if len(rest) < 3 {
		fset.Usage()
		return fmt.Errorf("expected at least 3 arguments")
	}
	rootStruct := ""
	if len(rest) >= 4 {
		rootStruct = rest[3]
	}

	db, err := brdb.Open(rest[0])
	if err != nil {
		return err
	}
	if err := db.LoadSchema(rest[1]); err != nil {
		return err
	}
	doc, err := db.Decode(rest[2], rootStruct)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(doc.Root.Plain())
}
