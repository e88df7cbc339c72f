package main

import (
	"flag"
	"fmt"
	"os"
)

// subcommandUsage builds the Usage func for one subcommand's FlagSet: it
// prints the subcommand's help blurb, then the FlagSet's own flag list.
func subcommandUsage(fs *flag.FlagSet, help string) func() {
	return func() {
		fmt.Fprintln(os.Stderr, help)
		fmt.Fprintf(os.Stderr, "Flags for %s:\n", fs.Name())
		fs.PrintDefaults()
	}
}
