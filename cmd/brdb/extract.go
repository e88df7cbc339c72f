package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/mitterdoo/brdb"
)

const extractHelp = `brdb extract [-flags] <archive.brz> <path>

Extract a single file from a BRZ archive, writing its content to stdout.

Example:
  % brdb extract game.brz /assets/readme.txt > readme.txt
`

func cmdextract(args []string) error {
	fset := flag.NewFlagSet("extract", flag.ExitOnError)
	fset.Usage = subcommandUsage(fset, extractHelp)
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
	content, err := db.Archive.Tree.Open(rest[1])
	if err != nil {
		return err
	}
	_, err = os.Stdout.Write(content)
	return err
}
