package lang

import (
	"github.com/impql/impql/ast"
)

// Block is one parsed program block together with the character range
// ([Start, End), byte offsets into the original program text) it occupies.
// A Err of nil means the block parsed; a non-nil Err means this block's
// Stmts is empty and Err describes why, per spec §6.3 ("blocks that fail
// to parse yield a parse error for that block only").
type Block struct {
	Start, End int
	Stmts      ast.Block
	Err        error
}

// ParseProgram splits program text into blocks separated by a blank line
// and parses each block independently, so one block's syntax error never
// prevents the others from running.
func ParseProgram(src string) []Block {
	var blocks []Block
	blockStart := 0
	lineStart := 0

	flush := func(end int) {
		if end <= blockStart {
			blockStart = end
			return
		}
		text := src[blockStart:end]
		if stripBlank(text) {
			blockStart = end
			return
		}
		stmts, err := parseBlock(text)
		blocks = append(blocks, Block{Start: blockStart, End: end, Stmts: stmts, Err: err})
		blockStart = end
	}

	for i := 0; i <= len(src); i++ {
		if i == len(src) || src[i] == '\n' {
			line := src[lineStart:i]
			if stripBlank(line) {
				flush(lineStart)
				blockStart = i + 1
			}
			lineStart = i + 1
		}
	}
	flush(len(src))
	return blocks
}

// BlockAt returns the block whose [Start, End) range contains cursor, if
// any — the "runner ... runs the block whose character range contains
// cursor" rule from spec §6.3.
func BlockAt(blocks []Block, cursor int) (Block, bool) {
	for _, b := range blocks {
		if cursor >= b.Start && cursor < b.End {
			return b, true
		}
	}
	// A cursor sitting exactly at the last block's End falls in that block.
	if len(blocks) > 0 && cursor == blocks[len(blocks)-1].End {
		return blocks[len(blocks)-1], true
	}
	return Block{}, false
}
