// Package brdb ties together the archive, schema, and decode packages: it
// opens a BRZ container, parses a .schema document from within it, and
// drives the schema-directed decoder over a sibling .mps document.
package brdb

import (
	"bytes"
	"os"

	"golang.org/x/xerrors"

	"github.com/mitterdoo/brdb/archive"
	"github.com/mitterdoo/brdb/decode"
	"github.com/mitterdoo/brdb/internal/bytestream"
	"github.com/mitterdoo/brdb/schema"
)

// Database wraps an opened BRZ archive and the schema registry built from
// whichever .schema file it contains, if any has been loaded via
// LoadSchema.
type Database struct {
	Archive *archive.Archive
	Schema  *schema.Registry
}

// Open reads the BRZ container at path in full.
func Open(path string) (*Database, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, xerrors.Errorf("brdb: open %q: %w", path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, xerrors.Errorf("brdb: stat %q: %w", path, err)
	}

	src := bytestream.NewSource(f, info.Size())
	a, err := archive.Read(src)
	if err != nil {
		return nil, xerrors.Errorf("brdb: %q: %w", path, err)
	}
	return &Database{Archive: a}, nil
}

// LoadSchema parses the .schema document at path inside the archive and
// installs it as db.Schema.
func (db *Database) LoadSchema(path string) error {
	raw, err := db.Archive.Tree.Open(path)
	if err != nil {
		return xerrors.Errorf("brdb: load schema %q: %w", path, err)
	}
	reg := schema.NewRegistry()
	if err := reg.Import(raw); err != nil {
		return xerrors.Errorf("brdb: load schema %q: %w", path, err)
	}
	db.Schema = reg
	return nil
}

// Decode reads the .mps document at path inside the archive and decodes it
// against rootStruct (or db.Schema's default *SoA root, if rootStruct is
// empty). LoadSchema must have been called first.
func (db *Database) Decode(path, rootStruct string) (*decode.Document, error) {
	if db.Schema == nil {
		return nil, xerrors.Errorf("brdb: decode %q: no schema loaded", path)
	}
	raw, err := db.Archive.Tree.Open(path)
	if err != nil {
		return nil, xerrors.Errorf("brdb: decode %q: %w", path, err)
	}
	doc, err := decode.Unpack(bytes.NewReader(raw), db.Schema, rootStruct)
	if err != nil {
		return nil, xerrors.Errorf("brdb: decode %q: %w", path, err)
	}
	return doc, nil
}
