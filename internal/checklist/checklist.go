// Package checklist models a card's nested checklist as an owned tree.
package checklist

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// DefaultMaxDepth bounds how deep items may nest. Top-level items are at
// depth 1.
const DefaultMaxDepth = 5

var (
	// ErrNotFound is returned when an item id does not exist in the tree.
	ErrNotFound = errors.New("checklist item not found")
	// ErrTooDeep is returned when an insert would exceed the depth bound.
	ErrTooDeep = errors.New("checklist item exceeds maximum depth")
	// ErrDuplicateID is returned by Load when two items share an id.
	ErrDuplicateID = errors.New("duplicate checklist item id")
)

// Item is one checklist entry. Children are owned by their parent.
type Item struct {
	ID        string  `json:"id"`
	Title     string  `json:"title"`
	Completed bool    `json:"completed"`
	Children  []*Item `json:"children,omitempty"`

	parent *Item
	depth  int
}

// Depth returns the item's nesting level, 1 for top-level items.
func (it *Item) Depth() int {
	return it.depth
}

// Tree holds the checklist items of one card.
type Tree struct {
	root     Item
	index    map[string]*Item
	maxDepth int
	newID    func() string
}

// New returns an empty tree. newID generates item ids and defaults to
// random UUIDs; maxDepth <= 0 uses DefaultMaxDepth.
func New(newID func() string, maxDepth int) *Tree {
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}
	if newID == nil {
		newID = uuid.NewString
	}
	return &Tree{
		index:    map[string]*Item{},
		maxDepth: maxDepth,
		newID:    newID,
	}
}

// Load builds a tree from decoded items, keeping their ids. Items without
// an id get a generated one.
func Load(items []*Item, newID func() string, maxDepth int) (*Tree, error) {
	t := New(newID, maxDepth)
	if err := t.adopt(&t.root, items); err != nil {
		return nil, err
	}
	return t, nil
}

func (t *Tree) adopt(parent *Item, items []*Item) error {
	for _, it := range items {
		if it == nil {
			continue
		}
		depth := parent.depth + 1
		if depth > t.maxDepth {
			return fmt.Errorf("%w: depth %d > %d", ErrTooDeep, depth, t.maxDepth)
		}
		if it.ID == "" {
			it.ID = t.newID()
		}
		if _, dup := t.index[it.ID]; dup {
			return fmt.Errorf("%w: %s", ErrDuplicateID, it.ID)
		}
		children := it.Children
		it.Children = nil
		it.parent = parent
		it.depth = depth
		parent.Children = append(parent.Children, it)
		t.index[it.ID] = it
		if err := t.adopt(it, children); err != nil {
			return err
		}
	}
	return nil
}

// Items returns the top-level items.
func (t *Tree) Items() []*Item {
	return t.root.Children
}

// Find looks an item up by id.
func (t *Tree) Find(id string) (*Item, error) {
	it, ok := t.index[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return it, nil
}

// Add appends a new item under parentID, or at the top level when parentID
// is empty.
func (t *Tree) Add(parentID, title string) (*Item, error) {
	parent := &t.root
	if parentID != "" {
		p, err := t.Find(parentID)
		if err != nil {
			return nil, err
		}
		parent = p
	}
	if parent.depth+1 > t.maxDepth {
		return nil, fmt.Errorf("%w: depth %d > %d", ErrTooDeep, parent.depth+1, t.maxDepth)
	}
	it := &Item{
		ID:     t.newID(),
		Title:  title,
		parent: parent,
		depth:  parent.depth + 1,
	}
	parent.Children = append(parent.Children, it)
	t.index[it.ID] = it
	return it, nil
}

// Remove deletes an item together with its subtree.
func (t *Tree) Remove(id string) error {
	it, err := t.Find(id)
	if err != nil {
		return err
	}
	siblings := it.parent.Children
	for i, c := range siblings {
		if c == it {
			it.parent.Children = append(siblings[:i:i], siblings[i+1:]...)
			break
		}
	}
	t.Walk(it, func(n *Item) {
		delete(t.index, n.ID)
	})
	return nil
}

// Toggle flips an item's completion state and returns the new state.
func (t *Tree) Toggle(id string) (bool, error) {
	it, err := t.Find(id)
	if err != nil {
		return false, err
	}
	it.Completed = !it.Completed
	return it.Completed, nil
}

// Walk visits from and its descendants depth-first, parents before
// children. A nil from walks the whole tree.
func (t *Tree) Walk(from *Item, fn func(*Item)) {
	if from == nil {
		for _, c := range t.root.Children {
			t.Walk(c, fn)
		}
		return
	}
	fn(from)
	for _, c := range from.Children {
		t.Walk(c, fn)
	}
}

// Counts returns how many items are completed and how many exist in total.
// completed never exceeds total.
func (t *Tree) Counts() (completed, total int) {
	t.Walk(nil, func(it *Item) {
		total++
		if it.Completed {
			completed++
		}
	})
	return completed, total
}
