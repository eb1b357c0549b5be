package guidance

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode/utf8"
)

const (
	nodeColWidth = 5
	goColWidth   = 14
)

// RenderTable writes the route as a two column table. The header is centred
// in both columns; instructions are written as is, without padding:
//
//	Node |      Go
//	====================
//	  0  |Straight
//	  1  |Left by 90.00
//
// nodes and turns must have the same length.
func RenderTable(w io.Writer, nodes []uint32, turns []Turn) error {
	if len(nodes) != len(turns) {
		return fmt.Errorf("render table: %d nodes but %d turns", len(nodes), len(turns))
	}

	var b strings.Builder
	b.WriteString(center("Node", nodeColWidth))
	b.WriteByte('|')
	b.WriteString(center("Go", goColWidth))
	b.WriteByte('\n')
	b.WriteString(strings.Repeat("=", nodeColWidth+1+goColWidth))
	b.WriteByte('\n')

	for i, n := range nodes {
		b.WriteString(center(strconv.FormatUint(uint64(n), 10), nodeColWidth))
		b.WriteByte('|')
		b.WriteString(turns[i].String())
		b.WriteByte('\n')
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// center pads s to width, putting the odd space on the right.
func center(s string, width int) string {
	pad := width - utf8.RuneCountInString(s)
	if pad <= 0 {
		return s
	}
	left := pad / 2
	return strings.Repeat(" ", left) + s + strings.Repeat(" ", pad-left)
}
