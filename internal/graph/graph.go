// Package graph defines the symbolic facts produced by ingestion and the
// contract of the sink that turns them into stored nodes and edges.
//
// Facts reference their endpoints by key rather than by pointer, so a
// relationship may name a symbol that no file has defined yet. Resolving
// those references is the sink's job.
package graph

import (
	"context"
	"sort"
	"strings"
)

// Label is the kind of a graph entity.
type Label string

const (
	Module    Label = "Module"
	Function  Label = "Function"
	Method    Label = "Method"
	Class     Label = "Class"
	Interface Label = "Interface"
	Enum      Label = "Enum"
	Type      Label = "Type"
	Union     Label = "Union"
	External  Label = "External"
)

// IsClassLike reports whether l names a type-level definition.
func (l Label) IsClassLike() bool {
	switch l {
	case Class, Interface, Enum, Type, Union:
		return true
	}
	return false
}

// IsCallable reports whether l names a function-level definition.
func (l Label) IsCallable() bool {
	return l == Function || l == Method
}

// RelType is the kind of a relationship.
type RelType string

const (
	Defines       RelType = "DEFINES"
	DefinesMethod RelType = "DEFINES_METHOD"
	Inherits      RelType = "INHERITS"
	Implements    RelType = "IMPLEMENTS"
	Overrides     RelType = "OVERRIDES"
	Exports       RelType = "EXPORTS"
	Imports       RelType = "IMPORTS"
	Calls         RelType = "CALLS"
)

// KeyQualifiedName is the key every selector in this package uses.
const KeyQualifiedName = "qualified_name"

// Selector identifies one endpoint of a relationship by key.
type Selector struct {
	Label Label
	Key   string
	Value string
}

// QN builds a selector keyed by qualified name.
func QN(label Label, qualifiedName string) Selector {
	return Selector{Label: label, Key: KeyQualifiedName, Value: qualifiedName}
}

// Node is an entity to ensure in the graph. Props always carry
// "qualified_name" and "name".
type Node struct {
	Label Label
	Props map[string]any
}

// QualifiedName returns the node's key.
func (n Node) QualifiedName() string {
	s, _ := n.Props[KeyQualifiedName].(string)
	return s
}

// StringProp returns a string property or "".
func (n Node) StringProp(key string) string {
	s, _ := n.Props[key].(string)
	return s
}

// Relationship is a symbolic (subject, kind, object) triple.
type Relationship struct {
	From  Selector
	Type  RelType
	To    Selector
	Props map[string]any
}

func (r Relationship) key() string {
	return r.From.Value + "\x00" + string(r.Type) + "\x00" + r.To.Value
}

// Batch collects the facts owned by one file. EnsureNode and
// EnsureRelationship are idempotent: repeating a call with the same key
// keeps a single fact (the latest properties win for nodes).
type Batch struct {
	Path     string
	Language string
	Nodes    []Node
	Rels     []Relationship

	nodeIdx map[string]int
	relIdx  map[string]bool
}

// NewBatch creates an empty batch for the file at path (relative to the repo root).
func NewBatch(path, language string) *Batch {
	return &Batch{
		Path:     path,
		Language: language,
		nodeIdx:  make(map[string]int),
		relIdx:   make(map[string]bool),
	}
}

// EnsureNode adds or replaces a node keyed by its qualified name.
func (b *Batch) EnsureNode(label Label, props map[string]any) {
	n := Node{Label: label, Props: props}
	qn := n.QualifiedName()
	if i, ok := b.nodeIdx[qn]; ok {
		b.Nodes[i] = n
		return
	}
	b.nodeIdx[qn] = len(b.Nodes)
	b.Nodes = append(b.Nodes, n)
}

// EnsureRelationship adds a relationship unless an identical triple exists.
func (b *Batch) EnsureRelationship(from Selector, rel RelType, to Selector, props map[string]any) {
	r := Relationship{From: from, Type: rel, To: to, Props: props}
	k := r.key()
	if b.relIdx[k] {
		return
	}
	b.relIdx[k] = true
	b.Rels = append(b.Rels, r)
}

// HasNode reports whether a node with the given qualified name was ensured.
func (b *Batch) HasNode(qn string) bool {
	_, ok := b.nodeIdx[qn]
	return ok
}

// Changes is everything one run hands to the sink.
type Changes struct {
	Project  string
	RootPath string
	// Removed lists files whose facts must be dropped without replacement.
	Removed []string
	// Batches replace all facts previously owned by their files.
	Batches []*Batch
	// Derived relationships are recomputed over the whole project each run.
	// For each type present, the sink replaces every derived edge of that type.
	Derived map[RelType][]Relationship
}

// Empty reports whether the changes carry nothing to write.
func (c *Changes) Empty() bool {
	return len(c.Removed) == 0 && len(c.Batches) == 0 && len(c.Derived) == 0
}

// Counts returns the total number of nodes and relationships in c.
func (c *Changes) Counts() (nodes, rels int) {
	for _, b := range c.Batches {
		nodes += len(b.Nodes)
		rels += len(b.Rels)
	}
	for _, d := range c.Derived {
		rels += len(d)
	}
	return nodes, rels
}

// Sink accepts committed changes. Implementations must apply a Changes
// value atomically and tolerate forward references.
type Sink interface {
	Commit(ctx context.Context, changes *Changes) error
}

// SortRelationships orders relationships by (from, type, to) for stable output.
func SortRelationships(rels []Relationship) {
	sort.Slice(rels, func(i, j int) bool {
		return rels[i].key() < rels[j].key()
	})
}

// BuiltinQN returns the sentinel target for a call that could not be
// resolved to any known symbol.
func BuiltinQN(language, callee string) string {
	return "builtin." + language + "." + strings.TrimSpace(callee)
}

// SimpleName returns the last dot-separated segment of a qualified name.
func SimpleName(qn string) string {
	if i := strings.LastIndex(qn, "."); i >= 0 {
		return qn[i+1:]
	}
	return qn
}

// Parent returns the qualified name without its last segment.
func Parent(qn string) string {
	if i := strings.LastIndex(qn, "."); i >= 0 {
		return qn[:i]
	}
	return ""
}
