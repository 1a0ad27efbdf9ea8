package ffgraph

import (
	"strings"
	"testing"
)

func TestGraphSerializesChains(t *testing.T) {
	g := NewGraph()
	scaled := g.Filter("scale", []Param{P("w", "640"), P("h", "360")}, InputVideo(0))
	g.Filter("setsar", []Param{PV("1")}, scaled)

	got := g.String()
	want := "[0:v]scale=w=640:h=360[f0];[f0]setsar=1[f1]"
	if got != want {
		t.Fatalf("graph = %q, want %q", got, want)
	}
}

func TestGraphLabelsNeverCollide(t *testing.T) {
	g := NewGraph()
	seen := map[Stream]bool{}
	for i := 0; i < 20; i++ {
		out := g.Filter("null", nil, InputVideo(i))
		if seen[out] {
			t.Fatalf("duplicate label %q", out)
		}
		seen[out] = true
	}
}

func TestGraphMultipleOutputs(t *testing.T) {
	g := NewGraph()
	outs := g.FilterN("split", nil, 2, InputVideo(0))
	if len(outs) != 2 || outs[0] == outs[1] {
		t.Fatalf("split outputs = %v", outs)
	}
	if !strings.Contains(g.String(), "[0:v]split["+string(outs[0])+"]["+string(outs[1])+"]") {
		t.Fatalf("serialized = %q", g.String())
	}
}

func TestGraphQuotesExpressionValues(t *testing.T) {
	g := NewGraph()
	g.Filter("overlay", []Param{P("enable", "between(t,0,5.000)")}, InputVideo(0), InputVideo(1))

	got := g.String()
	if !strings.Contains(got, "enable='between(t,0,5.000)'") {
		t.Fatalf("expression not quoted: %q", got)
	}
}

func TestGraphSourceFilterHasNoInputs(t *testing.T) {
	g := NewGraph()
	g.Filter("color", []Param{P("c", "black"), P("s", "1920x1080")})

	got := g.String()
	if !strings.HasPrefix(got, "color=") {
		t.Fatalf("source filter should have no input labels: %q", got)
	}
}

func TestTopology(t *testing.T) {
	g := NewGraph()
	s := g.Filter("scale", nil, InputVideo(0))
	g.Filter("pad", nil, s)

	got := g.Topology()
	if len(got) != 2 || got[0] != "scale" || got[1] != "pad" {
		t.Fatalf("topology = %v", got)
	}
}
