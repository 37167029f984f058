package main

import (
	"fmt"

	"github.com/dekarrin/rosed"

	"github.com/dekarrin/rexlex/internal/reprog"
)

// formatProgram renders prog as a table, one row per instruction, the way
// the parse tables under internal/ictiobus/parse print themselves: build a
// [][]string of headers plus rows, then hand it to rosed's table inserter.
func formatProgram(prog *reprog.Program) string {
	data := [][]string{
		{"pc", "op", "args"},
	}

	for pc := 0; pc < prog.Len(); pc++ {
		instr := prog.At(reprog.Label(pc))
		data = append(data, []string{fmt.Sprintf("%d", pc), instr.Op.String(), argsOf(instr)})
	}

	starts := make([]string, len(prog.Starts))
	for i, l := range prog.Starts {
		starts[i] = fmt.Sprintf("rule %d -> pc %d", i, l)
	}

	table := rosed.
		Edit("").
		InsertTableOpts(0, data, 10, rosed.Options{
			TableHeaders:             true,
			NoTrailingLineSeparators: true,
		}).
		String()

	out := table + "\n\nentry points:\n"
	for _, s := range starts {
		out += "  " + s + "\n"
	}
	return out
}

func argsOf(instr reprog.Instruction) string {
	switch instr.Op {
	case reprog.OpChar:
		return fmt.Sprintf("char=%q noCase=%v -> %d", instr.Char, instr.NoCase, instr.Goto)
	case reprog.OpAnyChar:
		return fmt.Sprintf("-> %d", instr.Goto)
	case reprog.OpCharClass:
		return fmt.Sprintf("class noCase=%v -> %d", instr.NoCase, instr.Goto)
	case reprog.OpMatch:
		return fmt.Sprintf("rule=%d", instr.Rule)
	case reprog.OpSplit:
		return fmt.Sprintf("%d, %d", instr.A, instr.B)
	case reprog.OpJump:
		return fmt.Sprintf("-> %d", instr.Target)
	default:
		return ""
	}
}
