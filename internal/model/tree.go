package model

import "iter"

// Node is an insertion-ordered tree keyed by strings at every level.
//
// Children are iterated in the order they were first created, which keeps
// output generated from the tree deterministic. The zero value is an empty
// root.
type Node[V any] struct {
	// Value is the payload stored at this node.
	Value V

	keys     []string
	children map[string]*Node[V]
}

// Child returns the direct child stored under key.
func (n *Node[V]) Child(key string) (*Node[V], bool) {
	c, ok := n.children[key]
	return c, ok
}

// Path walks keys from n, creating missing nodes along the way, and returns
// the node at the end of the path. Path with no keys returns n.
func (n *Node[V]) Path(keys ...string) *Node[V] {
	cur := n
	for _, key := range keys {
		next, ok := cur.children[key]
		if !ok {
			if cur.children == nil {
				cur.children = make(map[string]*Node[V])
			}
			next = &Node[V]{}
			cur.children[key] = next
			cur.keys = append(cur.keys, key)
		}
		cur = next
	}
	return cur
}

// Lookup walks keys from n without creating anything.
func (n *Node[V]) Lookup(keys ...string) (*Node[V], bool) {
	cur := n
	for _, key := range keys {
		next, ok := cur.children[key]
		if !ok {
			return nil, false
		}
		cur = next
	}
	return cur, true
}

// Len returns the number of direct children.
func (n *Node[V]) Len() int {
	return len(n.keys)
}

// Children iterates over direct children in creation order.
func (n *Node[V]) Children() iter.Seq2[string, *Node[V]] {
	return func(yield func(string, *Node[V]) bool) {
		for _, key := range n.keys {
			if !yield(key, n.children[key]) {
				return
			}
		}
	}
}

// Tree is the unified description of all faces of a run, nested as
// subset → family → style → weight.
type Tree struct {
	root  Node[*Face]
	count int
}

// NewTree returns an empty tree.
func NewTree() *Tree {
	return &Tree{}
}

// Ensure returns the face for key, creating the path and an empty face when
// absent. created reports whether the face is new.
func (t *Tree) Ensure(key FaceKey) (face *Face, created bool) {
	leaf := t.root.Path(key.Subset, key.Family, key.Style, key.Weight)
	if leaf.Value == nil {
		leaf.Value = &Face{}
		t.count++
		created = true
	}
	return leaf.Value, created
}

// Lookup returns the face for key if present.
func (t *Tree) Lookup(key FaceKey) (*Face, bool) {
	leaf, ok := t.root.Lookup(key.Subset, key.Family, key.Style, key.Weight)
	if !ok || leaf.Value == nil {
		return nil, false
	}
	return leaf.Value, true
}

// Len returns the number of faces in the tree.
func (t *Tree) Len() int {
	return t.count
}

// Subsets returns subset names in discovery order.
func (t *Tree) Subsets() []string {
	return append([]string(nil), t.root.keys...)
}

// Faces iterates subset → family → style → weight in discovery order.
func (t *Tree) Faces() iter.Seq2[FaceKey, *Face] {
	return func(yield func(FaceKey, *Face) bool) {
		for subset, families := range t.root.Children() {
			for family, styles := range families.Children() {
				for style, weights := range styles.Children() {
					for weight, leaf := range weights.Children() {
						if leaf.Value == nil {
							continue
						}
						key := FaceKey{Subset: subset, Family: family, Style: style, Weight: weight}
						if !yield(key, leaf.Value) {
							return
						}
					}
				}
			}
		}
	}
}
