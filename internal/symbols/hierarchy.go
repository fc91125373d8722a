package symbols

type parentEdge struct {
	parent string
	file   string
}

// Hierarchy records each class's direct parents in declaration order.
// Extends and implements clauses share one table: both make the parent's
// members visible for override resolution.
type Hierarchy struct {
	parents map[string][]parentEdge
}

// NewHierarchy creates an empty table.
func NewHierarchy() *Hierarchy {
	return &Hierarchy{parents: make(map[string][]parentEdge)}
}

// Add appends parent to child's base list. Duplicates are ignored so the
// first declaration keeps its position.
func (h *Hierarchy) Add(child, parent, file string) {
	for _, e := range h.parents[child] {
		if e.parent == parent {
			return
		}
	}
	h.parents[child] = append(h.parents[child], parentEdge{parent: parent, file: file})
}

// Parents returns child's direct parents in declaration order.
func (h *Hierarchy) Parents(child string) []string {
	edges := h.parents[child]
	out := make([]string, len(edges))
	for i, e := range edges {
		out[i] = e.parent
	}
	return out
}

// RemoveFile drops every edge declared in path.
func (h *Hierarchy) RemoveFile(path string) {
	for child, edges := range h.parents {
		kept := edges[:0]
		for _, e := range edges {
			if e.file != path {
				kept = append(kept, e)
			}
		}
		if len(kept) == 0 {
			delete(h.parents, child)
		} else {
			h.parents[child] = kept
		}
	}
}

// Ancestors walks the parents of class breadth-first and calls visit for
// each ancestor with its distance. Returning false from visit stops the
// walk. Each class is visited at most once, so cyclic declarations end.
func (h *Hierarchy) Ancestors(class string, visit func(ancestor string, depth int) bool) {
	type item struct {
		qn    string
		depth int
	}
	seen := map[string]bool{class: true}
	queue := []item{{class, 0}}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, p := range h.parents[cur.qn] {
			if seen[p.parent] {
				continue
			}
			seen[p.parent] = true
			if !visit(p.parent, cur.depth+1) {
				return
			}
			queue = append(queue, item{p.parent, cur.depth + 1})
		}
	}
}
