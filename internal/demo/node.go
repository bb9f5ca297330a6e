package demo

import (
	"sort"
	"strings"
	"sync"
)

// Node is a minimal visual tree element.
type Node struct {
	Tag string

	mu       sync.RWMutex
	style    map[string]string
	children []*Node
}

// CreateElement returns an empty element with the given tag.
func CreateElement(tag string) *Node {
	return &Node{Tag: tag, style: make(map[string]string)}
}

// SetStyle sets a style property. An empty value removes it.
func (n *Node) SetStyle(prop, value string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if value == "" {
		delete(n.style, prop)
		return
	}
	n.style[prop] = value
}

// Style returns a style property, or "" if unset.
func (n *Node) Style(prop string) string {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.style[prop]
}

// AppendChild adds child as the last child of n.
func (n *Node) AppendChild(child *Node) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.children = append(n.children, child)
}

// Children returns a copy of the child list.
func (n *Node) Children() []*Node {
	n.mu.RLock()
	defer n.mu.RUnlock()
	out := make([]*Node, len(n.children))
	copy(out, n.children)
	return out
}

// String renders the node as an HTML-like tag with its style attribute.
// Properties are sorted so the output is stable.
func (n *Node) String() string {
	n.mu.RLock()
	defer n.mu.RUnlock()

	var sb strings.Builder
	sb.WriteString("<")
	sb.WriteString(n.Tag)

	if len(n.style) > 0 {
		props := make([]string, 0, len(n.style))
		for prop := range n.style {
			props = append(props, prop)
		}
		sort.Strings(props)

		sb.WriteString(` style="`)
		for i, prop := range props {
			if i > 0 {
				sb.WriteString("; ")
			}
			sb.WriteString(prop)
			sb.WriteString(": ")
			sb.WriteString(n.style[prop])
		}
		sb.WriteString(`"`)
	}

	if len(n.children) == 0 {
		sb.WriteString("/>")
		return sb.String()
	}

	sb.WriteString(">")
	for _, child := range n.children {
		sb.WriteString(child.String())
	}
	sb.WriteString("</")
	sb.WriteString(n.Tag)
	sb.WriteString(">")
	return sb.String()
}
