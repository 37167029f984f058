// Package progcache persists a compiled reprog.Program to disk, keyed by a
// hash of the rule file content it was compiled from, so cmd/lexrun can
// skip reparsing and retranslating an unchanged rule set on every run. It
// uses the same REZI binary codec reprog.Program.Encode/DecodeProgram use
// for the program itself, the way tunaq's own save-file format (the
// original grounding source for REZI in this tree) bundles a version/header
// check with the encoded payload.
package progcache

import (
	"crypto/sha256"
	"fmt"
	"os"

	"github.com/dekarrin/rezi"

	"github.com/dekarrin/rexlex/internal/reprog"
)

// entry is the on-disk shape: the source hash the program was compiled
// from, plus the rule action names in rule-id order (the Program itself
// has no notion of names; cmd/lexrun needs them to rebuild its print
// actions after a cache hit).
type entry struct {
	SourceHash []byte
	Names      []string
	Program    *reprog.Program
}

// Load reads path and returns the cached program and its rule names if
// present and its recorded hash matches a hash of source. A missing file,
// unreadable/corrupt cache, or hash mismatch is reported as ok == false,
// never as an error: a cache miss just means cmd/lexrun recompiles.
func Load(path string, source []byte) (prog *reprog.Program, names []string, ok bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, false
	}

	var e entry
	n, err := rezi.DecBinary(data, &e)
	if err != nil || n != len(data) {
		return nil, nil, false
	}

	want := hashOf(source)
	if len(e.SourceHash) != len(want) {
		return nil, nil, false
	}
	for i := range want {
		if e.SourceHash[i] != want[i] {
			return nil, nil, false
		}
	}

	return e.Program, e.Names, true
}

// Save writes prog and names to path, keyed by a hash of source.
func Save(path string, source []byte, prog *reprog.Program, names []string) error {
	e := entry{SourceHash: hashOf(source), Names: names, Program: prog}
	data := rezi.EncBinary(&e)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write program cache: %w", err)
	}
	return nil
}

func hashOf(source []byte) []byte {
	sum := sha256.Sum256(source)
	return sum[:]
}
