package main

import (
	"flag"
	"fmt"
	"os"
)

var debug = flag.Bool("debug", false, "enable debug mode: format error messages with additional detail")

func funcmain() error {
	flag.Parse()

	type cmd struct {
		fn func(args []string) error
	}
	verbs := map[string]cmd{
		"ls":      {cmdls},
		"extract": {cmdextract},
		"dump":    {cmddump},
		"schema":  {cmdschema},
	}

	args := flag.Args()
	if len(args) == 0 {
		fmt.Fprintf(os.Stderr, "brdb [-flags] <command> [-flags] <args>\n")
		fmt.Fprintln(os.Stderr)
		fmt.Fprintf(os.Stderr, "Commands:\n")
		fmt.Fprintf(os.Stderr, "\tls       - list the contents of a folder inside a BRZ archive\n")
		fmt.Fprintf(os.Stderr, "\textract  - extract a single file from a BRZ archive to stdout\n")
		fmt.Fprintf(os.Stderr, "\tdump     - extract an entire BRZ archive to a host directory\n")
		fmt.Fprintf(os.Stderr, "\tschema   - decode a .mps document against a .schema and print it as JSON\n")
		os.Exit(2)
	}
	verb, args := args[0], args[1:]

	v, ok := verbs[verb]
	if !ok {
		return fmt.Errorf("unknown command %q", verb)
	}
	if err := v.fn(args); err != nil {
		if *debug {
			return fmt.Errorf("%s: %+v", verb, err)
		}
		return fmt.Errorf("%s: %v", verb, err)
	}
	return nil
}

func main() {
	if err := funcmain(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
