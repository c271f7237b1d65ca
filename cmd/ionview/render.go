package main

import (
	"fmt"
	"strings"

	"github.com/wippyai/ion-engine/expand"
	"github.com/wippyai/ion-engine/ion"
)

// renderNode is an eagerly resolved view of one expanded value. The
// reader's arena is reset between top-level values, so the viewer copies
// everything it wants to show while the handles are still valid.
type renderNode struct {
	label    string
	children []*renderNode
}

func renderValue(v *expand.Value) (*renderNode, error) {
	return renderNamed("", v)
}

func renderNamed(name string, v *expand.Value) (*renderNode, error) {
	prefix := ""
	if name != "" {
		prefix = name + ": "
	}
	anns, err := v.Annotations()
	if err != nil {
		return nil, err
	}
	for _, a := range anns {
		prefix += a.String() + "::"
	}
	ref, err := v.Read()
	if err != nil {
		return nil, err
	}
	switch ref.Kind {
	case ion.List, ion.SExp:
		opener, closer := "[", "]"
		if ref.Kind == ion.SExp {
			opener, closer = "(", ")"
		}
		it, err := ref.ExpectSequence()
		if err != nil {
			return nil, err
		}
		n := &renderNode{}
		for {
			el, ok, err := it.Next()
			if err != nil {
				return nil, err
			}
			if !ok {
				break
			}
			child, err := renderNamed("", el)
			if err != nil {
				return nil, err
			}
			n.children = append(n.children, child)
		}
		n.label = fmt.Sprintf("%s%s %d elements %s", prefix, opener, len(n.children), closer)
		return n, nil
	case ion.Struct:
		st, err := ref.ExpectStruct()
		if err != nil {
			return nil, err
		}
		it, err := st.Iterator()
		if err != nil {
			return nil, err
		}
		n := &renderNode{}
		for {
			f, ok, err := it.Next()
			if err != nil {
				return nil, err
			}
			if !ok {
				break
			}
			tok, err := f.Name.Read()
			if err != nil {
				return nil, err
			}
			child, err := renderNamed(tok.String(), f.Value)
			if err != nil {
				return nil, err
			}
			n.children = append(n.children, child)
		}
		n.label = fmt.Sprintf("%s{ %d fields }", prefix, len(n.children))
		return n, nil
	}
	return &renderNode{label: prefix + ref.String()}, nil
}

// writeTree prints a node and its children with two-space indentation.
func writeTree(b *strings.Builder, n *renderNode, depth int) {
	b.WriteString(strings.Repeat("  ", depth))
	b.WriteString(n.label)
	b.WriteByte('\n')
	for _, c := range n.children {
		writeTree(b, c, depth+1)
	}
}
