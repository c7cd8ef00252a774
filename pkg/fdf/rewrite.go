package fdf

import (
	"fmt"

	"github.com/aretw0/fieldsweep/pkg/domain"
)

// Rewrite substitutes every given block in a single pass over lines.
//
// Each block start marker is replaced by the new block and the input is
// skipped up to and including its end marker. Lines outside blocks are kept
// verbatim. The returned map records which block names were found; absent
// blocks are not added. A start marker without an end marker yields
// ErrMalformedBlock.
func Rewrite(lines []string, blocks ...Block) ([]string, map[string]bool, error) {
	found := make(map[string]bool, len(blocks))
	out := make([]string, 0, len(lines))

	for i := 0; i < len(lines); i++ {
		b, ok := matchStart(lines[i], blocks)
		if !ok {
			out = append(out, lines[i])
			continue
		}
		start := i
		for i < len(lines) && !isBlockEnd(lines[i], b.Name) {
			i++
		}
		if i == len(lines) {
			return nil, found, fmt.Errorf("%s at line %d: %w", b.Name, start+1, domain.ErrMalformedBlock)
		}
		out = append(out, b.Lines()...)
		found[b.Name] = true
	}
	return out, found, nil
}

func matchStart(line string, blocks []Block) (Block, bool) {
	for _, b := range blocks {
		if IsBlockStart(line, b.Name) {
			return b, true
		}
	}
	return Block{}, false
}

// AppendBlock appends b after a blank separator line.
func AppendBlock(lines []string, b Block) []string {
	return append(append(lines, ""), b.Lines()...)
}
