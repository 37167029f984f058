package reprog

import (
	"fmt"

	"github.com/dekarrin/rezi"
)

// Encode binary-encodes the program with REZI, the same binary codec tunaq
// uses for its save-file format (server/dao/sqlite). cmd/lexrun uses this to
// cache a compiled Program on disk so an unchanged rule set need not be
// reparsed and retranslated on every run.
func (p *Program) Encode() []byte {
	return rezi.EncBinary(p)
}

// DecodeProgram reverses Encode. It returns an error if the bytes are not a
// complete REZI encoding of a Program.
func DecodeProgram(data []byte) (*Program, error) {
	p := &Program{}
	n, err := rezi.DecBinary(data, p)
	if err != nil {
		return nil, fmt.Errorf("decode program: %w", err)
	}
	if n != len(data) {
		return nil, fmt.Errorf("decode program: consumed %d/%d bytes", n, len(data))
	}
	return p, nil
}
