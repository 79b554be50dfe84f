package gen

import (
	"fmt"
	"slices"

	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/encoding/dot"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"

	"github.com/jvdsande/harmony/schema/property"
)

// References is the directed graph of model references. An edge goes from
// the declaring model to the referenced one, for forward and reversed
// references alike.
type References struct {
	g     *simple.DirectedGraph
	nodes []modelNode
	ids   map[string]int64
	self  []string
}

type modelNode struct {
	id   int64
	name string
}

func (n modelNode) ID() int64      { return n.id }
func (n modelNode) DOTID() string  { return n.name }
func (n modelNode) String() string { return n.name }

// References returns the reference graph of g.
func (g *Graph) References() *References {
	r := &References{g: simple.NewDirectedGraph(), ids: make(map[string]int64, len(g.Models))}
	for i, m := range g.Models {
		n := modelNode{id: int64(i), name: m.Name}
		r.nodes = append(r.nodes, n)
		r.ids[m.Name] = n.id
		r.g.AddNode(n)
	}
	for _, m := range g.Models {
		from := r.ids[m.Name]
		for _, root := range []*property.Property{m.Schemas.Main, m.Schemas.Computed} {
			root.Walk(func(p *property.Property) bool {
				if !p.Type().IsReference() {
					return true
				}
				target := g.Model(p.Target())
				if target == nil {
					return true
				}
				to := r.ids[target.Name]
				if to == from {
					if !slices.Contains(r.self, m.Name) {
						r.self = append(r.self, m.Name)
					}
					return true
				}
				r.g.SetEdge(r.g.NewEdge(r.nodes[from], r.nodes[to]))
				return true
			})
		}
	}
	return r
}

// Targets returns the models referenced by model, sorted.
func (r *References) Targets(model string) []string {
	id, ok := r.ids[model]
	if !ok {
		return nil
	}
	var out []string
	it := r.g.From(id)
	for it.Next() {
		out = append(out, it.Node().(modelNode).name)
	}
	if slices.Contains(r.self, model) {
		out = append(out, model)
	}
	slices.Sort(out)
	return out
}

// Cycles returns the groups of models referencing each other, each sorted,
// self references included.
func (r *References) Cycles() [][]string {
	var out [][]string
	for _, scc := range topo.TarjanSCC(r.g) {
		if len(scc) < 2 {
			continue
		}
		group := names(scc)
		slices.Sort(group)
		out = append(out, group)
	}
	for _, name := range r.self {
		out = append(out, []string{name})
	}
	slices.SortFunc(out, func(a, b []string) int {
		return slices.Compare(a, b)
	})
	return out
}

// Sort returns the models ordered so that referenced models come first.
// It fails when references form a cycle; self references are ignored.
func (r *References) Sort() ([]string, error) {
	sorted, err := topo.SortStabilized(reversed{r.g}, nil)
	if err != nil {
		if unorderable, ok := err.(topo.Unorderable); ok {
			var sets [][]string
			for _, set := range unorderable {
				sets = append(sets, names(set))
			}
			return nil, fmt.Errorf("harmony: reference cycle: %v", sets)
		}
		return nil, err
	}
	return names(sorted), nil
}

// DOT renders the graph in the Graphviz language.
func (r *References) DOT() (string, error) {
	b, err := dot.Marshal(r.g, "models", "", "\t")
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func names(nodes []graph.Node) []string {
	out := make([]string, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, n.(modelNode).name)
	}
	return out
}

// reversed flips the edges of a directed graph.
type reversed struct{ *simple.DirectedGraph }

func (r reversed) From(id int64) graph.Nodes { return r.DirectedGraph.To(id) }
func (r reversed) To(id int64) graph.Nodes   { return r.DirectedGraph.From(id) }

func (r reversed) HasEdgeFromTo(uid, vid int64) bool {
	return r.DirectedGraph.HasEdgeFromTo(vid, uid)
}

func (r reversed) Edge(uid, vid int64) graph.Edge {
	return r.DirectedGraph.Edge(vid, uid)
}

func (g *Graph) logCycles() {
	for _, cycle := range g.References().Cycles() {
		g.logger().Debug("reference cycle", "models", cycle)
	}
}
