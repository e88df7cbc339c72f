package main

import (
	"flag"
	"fmt"

	"github.com/mitterdoo/brdb"
)

const lsHelp = `brdb ls [-flags] <archive.brz> [path]

List the immediate children of path (default: the root folder) inside a
BRZ archive.

Example:
  % brdb ls game.brz /assets
`

func cmdls(args []string) error {
	fset := flag.NewFlagSet("ls", flag.ExitOnError)
	fset.Usage = subcommandUsage(fset, lsHelp)
	fset.Parse(args)

	rest := fset.Args()
	if len(rest) < 1 {
		fset.Usage()
		return fmt.Errorf("missing archive path")
	}
	path := "/"
	if len(rest) >= 2 {
		path = rest[1]
	}

	db, err := brdb.Open(rest[0])
	if err != nil {
		return err
	}
	names, err := db.Archive.Tree.Ls(path)
	if err != nil {
		return err
	}
	for _, name := range names {
		fmt.Println(name)
	}
	return nil
}
