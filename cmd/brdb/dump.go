package main

import (
	"flag"
	"fmt"

	"github.com/mitterdoo/brdb"
)

const dumpHelp = `brdb dump [-flags] <archive.brz> <destination>

Extract an entire BRZ archive to a new directory on the host file system.
destination must not already exist.

Example:
  % brdb dump game.brz ./extracted
`

func cmddump(args []string) error {
	fset := flag.NewFlagSet("dump", flag.ExitOnError)
	fset.Usage = subcommandUsage(fset, dumpHelp)
	fset.Parse(args)

	rest := fset.Args()
	if len(rest) != 2 {
		fset.Usage()
		return fmt.Errorf("expected exactly 2 arguments")
	}

	db, err := brdb.Open(rest[0])
	if err != nil {
		return err
	}
	return db.Archive.Tree.Dump(rest[1])
}
