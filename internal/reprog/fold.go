package reprog

import "golang.org/x/text/cases"

// foldCaser is reprog's own copy of the single-rune case fold used by
// internal/retree; kept here too so the program model has no dependency on
// the term-tree package (see ClassSpec).
var foldCaser = cases.Fold()

func foldRune(r rune) rune {
	folded := []rune(foldCaser.String(string(r)))
	if len(folded) != 1 {
		return r
	}
	return folded[0]
}
