package ffgraph

import (
	"fmt"
	"strings"
)

// Stream identifies a labeled stream inside a filter graph, without brackets.
type Stream string

// InputVideo returns the video stream selector for the nth input file.
func InputVideo(n int) Stream { return Stream(fmt.Sprintf("%d:v", n)) }

// InputAudio returns the audio stream selector for the nth input file.
func InputAudio(n int) Stream { return Stream(fmt.Sprintf("%d:a", n)) }

// Param is one filter option. A Param with an empty Key serializes as a
// positional value.
type Param struct {
	Key   string
	Value string
}

// P builds a keyed parameter.
func P(key, value string) Param { return Param{Key: key, Value: value} }

// PV builds a positional parameter.
func PV(value string) Param { return Param{Value: value} }

type node struct {
	filter  string
	params  []Param
	inputs  []Stream
	outputs []Stream
}

// Graph accumulates filter nodes and serializes them last, so stream labels
// are generated in one place and can never collide.
type Graph struct {
	nodes []node
	next  int
}

// NewGraph returns an empty filter graph.
func NewGraph() *Graph {
	return &Graph{}
}

// Filter appends a single-output filter node fed by the given inputs and
// returns its output stream. A node with no inputs acts as a source filter.
func (g *Graph) Filter(filter string, params []Param, inputs ...Stream) Stream {
	return g.FilterN(filter, params, 1, inputs...)[0]
}

// FilterN appends a filter node with outputCount output streams.
func (g *Graph) FilterN(filter string, params []Param, outputCount int, inputs ...Stream) []Stream {
	outputs := make([]Stream, outputCount)
	for i := range outputs {
		outputs[i] = Stream(fmt.Sprintf("f%d", g.next))
		g.next++
	}
	g.nodes = append(g.nodes, node{
		filter:  filter,
		params:  append([]Param(nil), params...),
		inputs:  append([]Stream(nil), inputs...),
		outputs: outputs,
	})
	return outputs
}

// Empty reports whether the graph holds no nodes.
func (g *Graph) Empty() bool {
	return len(g.nodes) == 0
}

// Topology returns the ordered filter names, which fully describe the graph
// shape independent of numeric parameters.
func (g *Graph) Topology() []string {
	names := make([]string, 0, len(g.nodes))
	for _, n := range g.nodes {
		names = append(names, n.filter)
	}
	return names
}

// String serializes the graph into ffmpeg -filter_complex syntax.
func (g *Graph) String() string {
	chains := make([]string, 0, len(g.nodes))
	for _, n := range g.nodes {
		var b strings.Builder
		for _, in := range n.inputs {
			b.WriteByte('[')
			b.WriteString(string(in))
			b.WriteByte(']')
		}
		b.WriteString(n.filter)
		if len(n.params) > 0 {
			b.WriteByte('=')
			for i, p := range n.params {
				if i > 0 {
					b.WriteByte(':')
				}
				if p.Key != "" {
					b.WriteString(p.Key)
					b.WriteByte('=')
				}
				b.WriteString(quoteValue(p.Value))
			}
		}
		for _, out := range n.outputs {
			b.WriteByte('[')
			b.WriteString(string(out))
			b.WriteByte(']')
		}
		chains = append(chains, b.String())
	}
	return strings.Join(chains, ";")
}

// quoteValue wraps values containing filter-option separators in single
// quotes so commas inside expressions survive parsing.
func quoteValue(value string) string {
	if strings.ContainsAny(value, ",:") {
		return "'" + value + "'"
	}
	return value
}
