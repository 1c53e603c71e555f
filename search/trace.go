package search

import (
	"fmt"
	"strconv"

	"github.com/awalterschulze/gographviz"
	"github.com/pkg/errors"

	"github.com/alphabeth/game"
)

// TraceNode is one explored position. Node 0 is the root.
type TraceNode struct {
	ID       int
	Parent   int
	Move     game.Move
	Score    int
	Scored   bool
	Cut      int  // children skipped by a cutoff
	Finished bool // false when the budget ran out inside this subtree
}

// Trace records the tree explored by the last search, up to MaxNodes nodes
// (unlimited when zero). A nil *Trace records nothing.
type Trace struct {
	MaxNodes int

	root  game.Position
	nodes []TraceNode
}

func (t *Trace) Root() game.Position { return t.root }

// Nodes returns the recorded nodes in visiting order.
func (t *Trace) Nodes() []TraceNode {
	return append([]TraceNode(nil), t.nodes...)
}

func (t *Trace) reset(p game.Position) {
	if t == nil {
		return
	}
	t.root = p
	t.nodes = append(t.nodes[:0], TraceNode{ID: 0, Parent: -1, Finished: true})
}

func (t *Trace) push(parent int, m game.Move) int {
	if t == nil || parent < 0 || (t.MaxNodes > 0 && len(t.nodes) >= t.MaxNodes) {
		return -1
	}
	id := len(t.nodes)
	t.nodes = append(t.nodes, TraceNode{ID: id, Parent: parent, Move: m, Finished: true})
	return id
}

func (t *Trace) score(id, v int) {
	if t == nil || id < 0 || id >= len(t.nodes) {
		return
	}
	t.nodes[id].Score = v
	t.nodes[id].Scored = true
}

func (t *Trace) pruned(id, skipped int) {
	if t == nil || id < 0 || id >= len(t.nodes) {
		return
	}
	t.nodes[id].Cut += skipped
}

func (t *Trace) unfinished(id int) {
	if t == nil || id < 0 || id >= len(t.nodes) {
		return
	}
	t.nodes[id].Finished = false
}

const traceGraph = "search"

// DOT renders the trace in Graphviz format. Nodes where a cutoff happened
// are drawn red, nodes the budget interrupted are dashed.
func (t *Trace) DOT() (string, error) {
	g := gographviz.NewGraph()
	if err := g.SetName(traceGraph); err != nil {
		return "", errors.WithStack(err)
	}
	if err := g.SetDir(true); err != nil {
		return "", errors.WithStack(err)
	}
	for _, n := range t.nodes {
		label := fmt.Sprintf("root %s", t.root.Turn)
		if n.Parent >= 0 {
			label = n.Move.String()
		}
		if n.Scored {
			label += fmt.Sprintf("\n%d", n.Score)
		}
		attrs := map[string]string{"label": strconv.Quote(label)}
		if n.Cut > 0 {
			attrs["color"] = "red"
			attrs["xlabel"] = strconv.Quote(fmt.Sprintf("cut %d", n.Cut))
		}
		if !n.Finished {
			attrs["style"] = "dashed"
		}
		if err := g.AddNode(traceGraph, nodeName(n.ID), attrs); err != nil {
			return "", errors.WithStack(err)
		}
		if n.Parent < 0 {
			continue
		}
		if err := g.AddEdge(nodeName(n.Parent), nodeName(n.ID), true, nil); err != nil {
			return "", errors.WithStack(err)
		}
	}
	return g.String(), nil
}

func nodeName(id int) string { return "n" + strconv.Itoa(id) }
