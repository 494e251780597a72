// Package workflow implements a small directed state machine: named nodes
// mutate a shared conversation state, plain edges chain them, and a
// conditional edge picks the successor at runtime. Graphs are built once,
// validated by Compile, and then run any number of times.
package workflow

import (
	"context"
	"fmt"

	"github.com/rizalarfiyan/tanya/pkg/conversation"
	"github.com/rizalarfiyan/tanya/pkg/errorsx"
)

type NodeName string

// End is the terminal pseudo-node. It is always a valid edge target and never
// a valid node name.
const End NodeName = "__end__"

// NodeFunc mutates the state in place. Returning an error aborts the run.
type NodeFunc func(ctx context.Context, st *conversation.State) error

// Predicate picks the successor of a conditional edge from the current state.
type Predicate func(st *conversation.State) NodeName

type conditional struct {
	pick    Predicate
	targets []NodeName
}

type Graph struct {
	nodes        map[NodeName]NodeFunc
	edges        map[NodeName]NodeName
	conditionals map[NodeName]conditional
	entry        NodeName
}

func NewGraph() *Graph {
	return &Graph{
		nodes:        make(map[NodeName]NodeFunc),
		edges:        make(map[NodeName]NodeName),
		conditionals: make(map[NodeName]conditional),
	}
}

func (g *Graph) AddNode(name NodeName, fn NodeFunc) *Graph {
	g.nodes[name] = fn
	return g
}

func (g *Graph) AddEdge(from, to NodeName) *Graph {
	g.edges[from] = to
	return g
}

// AddConditionalEdge routes from to one of targets, chosen by pick at
// runtime. The declared targets are what Compile validates; pick returning an
// undeclared node is a run-time error.
func (g *Graph) AddConditionalEdge(from NodeName, pick Predicate, targets ...NodeName) *Graph {
	g.conditionals[from] = conditional{pick: pick, targets: targets}
	return g
}

func (g *Graph) SetEntryPoint(name NodeName) *Graph {
	g.entry = name
	return g
}

// Compile validates the graph and freezes it into a runnable Engine.
func (g *Graph) Compile() (*Engine, error) {
	if g.entry == "" {
		return nil, errorsx.New(errorsx.ReasonWorkflowGraph, "entry point not set")
	}
	if _, ok := g.nodes[g.entry]; !ok {
		return nil, graphErr("entry point %q is not a registered node", g.entry)
	}
	for name, fn := range g.nodes {
		if name == End {
			return nil, graphErr("%q is reserved", End)
		}
		if fn == nil {
			return nil, graphErr("node %q has no function", name)
		}
	}
	for from, to := range g.edges {
		if _, ok := g.nodes[from]; !ok {
			return nil, graphErr("edge from unregistered node %q", from)
		}
		if err := g.checkTarget(from, to); err != nil {
			return nil, err
		}
		if _, dup := g.conditionals[from]; dup {
			return nil, graphErr("node %q has both an edge and a conditional edge", from)
		}
	}
	for from, cond := range g.conditionals {
		if _, ok := g.nodes[from]; !ok {
			return nil, graphErr("conditional edge from unregistered node %q", from)
		}
		if cond.pick == nil {
			return nil, graphErr("conditional edge from %q has no predicate", from)
		}
		if len(cond.targets) == 0 {
			return nil, graphErr("conditional edge from %q has no targets", from)
		}
		for _, to := range cond.targets {
			if err := g.checkTarget(from, to); err != nil {
				return nil, err
			}
		}
	}
	return newEngine(g), nil
}

func (g *Graph) checkTarget(from, to NodeName) error {
	if to == End {
		return nil
	}
	if _, ok := g.nodes[to]; !ok {
		return graphErr("edge %q -> %q targets an unregistered node", from, to)
	}
	return nil
}

func graphErr(format string, args ...any) error {
	return errorsx.New(errorsx.ReasonWorkflowGraph, fmt.Sprintf(format, args...))
}
