package ropes

import (
	"fmt"
	"io"
	"strconv"
	"strings"
)

type nodeids struct {
	idTable map[*Rope]int
	max     int
}

func newtable() nodeids {
	return nodeids{
		idTable: make(map[*Rope]int),
		max:     1,
	}
}

// alloc returns the ID of r and whether r has been seen before.
func (ids *nodeids) alloc(r *Rope) (int, bool) {
	if id, ok := ids.idTable[r]; ok {
		return id, true
	}
	ids.idTable[r] = ids.max
	ids.max++
	return ids.max - 1, false
}

// Rope2Dot outputs the internal structure of a rope in Graphviz DOT format
// (for debugging purposes). Shared subtrees are drawn once.
func Rope2Dot(r *Rope, w io.Writer) error {
	ids := newtable()
	var nodelist, edgelist strings.Builder
	var walk func(*Rope) int
	walk = func(r *Rope) int {
		id, seen := ids.alloc(r)
		if seen {
			return id
		}
		label := fmt.Sprintf("%s %d", r.Kind(), r.byteLen)
		switch n := r.node.(type) {
		case leafNode:
			label = fmt.Sprintf("%d\\n%s", r.byteLen, strstart(n.bytes))
		case concatNode:
			fmt.Fprintf(&edgelist, "\"%d\" -> \"%d\" [label=L];\n", id, walk(n.left))
			fmt.Fprintf(&edgelist, "\"%d\" -> \"%d\" [label=R];\n", id, walk(n.right))
			if !n.balanced {
				label += " !"
			}
		case substringNode:
			label = fmt.Sprintf("[%d:+%d]", n.offset, r.byteLen)
			fmt.Fprintf(&edgelist, "\"%d\" -> \"%d\";\n", id, walk(n.base))
		case repeatNode:
			label = fmt.Sprintf("×%d", n.count)
			fmt.Fprintf(&edgelist, "\"%d\" -> \"%d\";\n", id, walk(n.base))
		}
		fmt.Fprintf(&nodelist, "\"%d\" [label=\"%s\" %s];\n", id, label, nodeDotStyles(r))
		return id
	}
	walk(r)
	var out strings.Builder
	out.WriteString("strict digraph {\n")
	out.WriteString("\tnode [fontname=Arial,fontsize=12];\n")
	out.WriteString(nodelist.String())
	out.WriteString(edgelist.String())
	out.WriteString("}\n")
	_, err := io.WriteString(w, out.String())
	return err
}

func nodeDotStyles(r *Rope) string {
	s := ",style=filled"
	switch r.Kind() {
	case LeafKind:
		s += ",shape=box"
	case ConcatKind:
		s += ",color=black,fillcolor=\"#a3d7e4\",shape=circle"
	default:
		s += ",fillcolor=\"#FFDDCC\",shape=ellipse"
	}
	return s
}

// strstart returns a printable prefix of b, with quotes and non-ASCII bytes
// escaped.
func strstart(b []byte) string {
	suffix := ""
	if len(b) > 8 {
		b, suffix = b[:7], "…"
	}
	q := strconv.QuoteToASCII(string(b))
	return q[1:len(q)-1] + suffix
}
