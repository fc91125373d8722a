package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBatchEnsureNodeIsIdempotent(t *testing.T) {
	b := NewBatch("pkg/a.py", "python")
	b.EnsureNode(Function, map[string]any{KeyQualifiedName: "p.pkg.a.f", "name": "f", "start_line": 1})
	b.EnsureNode(Function, map[string]any{KeyQualifiedName: "p.pkg.a.f", "name": "f", "start_line": 2})

	require.Len(t, b.Nodes, 1)
	assert.Equal(t, 2, b.Nodes[0].Props["start_line"])
	assert.True(t, b.HasNode("p.pkg.a.f"))
	assert.False(t, b.HasNode("p.pkg.a.g"))
}

func TestBatchEnsureRelationshipDeduplicates(t *testing.T) {
	b := NewBatch("a.py", "python")
	from := QN(Module, "p.a")
	to := QN(Function, "p.a.f")
	b.EnsureRelationship(from, Defines, to, nil)
	b.EnsureRelationship(from, Defines, to, nil)
	b.EnsureRelationship(from, Exports, to, nil)

	assert.Len(t, b.Rels, 2)
}

func TestChangesCounts(t *testing.T) {
	b := NewBatch("a.py", "python")
	b.EnsureNode(Module, map[string]any{KeyQualifiedName: "p.a", "name": "a"})
	b.EnsureRelationship(QN(Module, "p.a"), Calls, QN(External, BuiltinQN("python", "print")), nil)

	c := &Changes{
		Batches: []*Batch{b},
		Derived: map[RelType][]Relationship{
			Overrides: {{From: QN(Method, "x"), Type: Overrides, To: QN(Method, "y")}},
		},
	}
	nodes, rels := c.Counts()
	assert.Equal(t, 1, nodes)
	assert.Equal(t, 2, rels)
	assert.False(t, c.Empty())
	assert.True(t, (&Changes{}).Empty())
}

func TestNameHelpers(t *testing.T) {
	assert.Equal(t, "builtin.python.len", BuiltinQN("python", " len "))
	assert.Equal(t, "f", SimpleName("p.mod.Cls.f"))
	assert.Equal(t, "f", SimpleName("f"))
	assert.Equal(t, "p.mod.Cls", Parent("p.mod.Cls.f"))
	assert.Equal(t, "", Parent("f"))
	assert.True(t, Interface.IsClassLike())
	assert.False(t, Method.IsClassLike())
	assert.True(t, Method.IsCallable())
}

func TestSortRelationships(t *testing.T) {
	rels := []Relationship{
		{From: QN(Function, "b"), Type: Calls, To: QN(Function, "c")},
		{From: QN(Function, "a"), Type: Calls, To: QN(Function, "c")},
	}
	SortRelationships(rels)
	assert.Equal(t, "a", rels[0].From.Value)
}
