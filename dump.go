package ropes

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"golang.org/x/term"
)

// Dump writes an indented outline of the structure of r to w, one node per
// line (for debugging purposes). If w is a terminal, node kinds are colored.
// Dump does not trigger classification; metadata not yet derived shows as
// "?".
func Dump(w io.Writer, r *Rope) error {
	palette := makeDumpPalette(isTerminal(w))
	var sb strings.Builder
	dump(&sb, r, 0, "", palette)
	_, err := io.WriteString(w, sb.String())
	return err
}

func dump(sb *strings.Builder, r *Rope, depth int, role string, palette map[Kind]*color.Color) {
	sb.WriteString(indent(depth))
	sb.WriteString(role)
	sb.WriteString(palette[r.Kind()].Sprint(r.Kind()))
	fmt.Fprintf(sb, " %s len=%d depth=%d %s", r.enc, r.byteLen, r.depth, metaString(r))
	switch n := r.node.(type) {
	case leafNode:
		fmt.Fprintf(sb, " “%s”\n", strstart(n.bytes))
	case concatNode:
		if !n.balanced {
			sb.WriteString(" unbalanced")
		}
		sb.WriteByte('\n')
		dump(sb, n.left, depth+1, "L ", palette)
		dump(sb, n.right, depth+1, "R ", palette)
	case substringNode:
		fmt.Fprintf(sb, " offset=%d\n", n.offset)
		dump(sb, n.base, depth+1, "", palette)
	case repeatNode:
		fmt.Fprintf(sb, " count=%d\n", n.count)
		dump(sb, n.base, depth+1, "", palette)
	}
}

func metaString(r *Rope) string {
	st, ok := r.stats.peek()
	if !ok {
		return "cr=? chars=?"
	}
	return fmt.Sprintf("cr=%s chars=%d", st.codeRange, st.chars)
}

func makeDumpPalette(colored bool) map[Kind]*color.Color {
	palette := map[Kind]*color.Color{
		LeafKind:      color.New(color.FgGreen),
		ConcatKind:    color.New(color.FgBlue, color.Bold),
		SubstringKind: color.New(color.FgYellow),
		RepeatKind:    color.New(color.FgMagenta),
	}
	for _, c := range palette {
		if colored {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return palette
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func indent(d int) string {
	return strings.Repeat("  ", d)
}
