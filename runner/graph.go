package runner

import (
	"errors"
	"fmt"

	"github.com/dominikbraun/graph"
)

func stageHash(s Stage) string { return s.Name }

// buildGraph links every stage to its upstream. Cycles are rejected on insert.
func buildGraph(stages []Stage) (graph.Graph[string, Stage], error) {
	g := graph.New(stageHash, graph.Directed(), graph.PreventCycles())

	for _, stage := range stages {
		if err := g.AddVertex(stage); err != nil {
			if errors.Is(err, graph.ErrVertexAlreadyExists) {
				return nil, fmt.Errorf("duplicate stage name '%s'", stage.Name)
			}
			return nil, fmt.Errorf("failed to add stage '%s': %w", stage.Name, err)
		}
	}

	for _, stage := range stages {
		if stage.Upstream == "" {
			continue
		}
		err := g.AddEdge(stage.Upstream, stage.Name)
		switch {
		case err == nil:
		case errors.Is(err, graph.ErrVertexNotFound):
			return nil, fmt.Errorf("stage '%s' depends on unknown stage '%s'", stage.Name, stage.Upstream)
		case errors.Is(err, graph.ErrEdgeCreatesCycle):
			return nil, fmt.Errorf("stage '%s' creates a dependency cycle through '%s'", stage.Name, stage.Upstream)
		default:
			return nil, fmt.Errorf("failed to link stage '%s': %w", stage.Name, err)
		}
	}

	return g, nil
}

// orderStages returns the stages along the single dependency path, root first
func orderStages(stages []Stage) ([]Stage, error) {
	if len(stages) == 0 {
		return nil, errors.New("pipeline has no stages")
	}

	g, err := buildGraph(stages)
	if err != nil {
		return nil, err
	}

	successors, err := g.AdjacencyMap()
	if err != nil {
		return nil, fmt.Errorf("failed to read stage graph: %w", err)
	}
	predecessors, err := g.PredecessorMap()
	if err != nil {
		return nil, fmt.Errorf("failed to read stage graph: %w", err)
	}

	roots := 0
	for name := range successors {
		if len(successors[name]) > 1 {
			return nil, fmt.Errorf("stage '%s' feeds %d stages, only a single path is supported", name, len(successors[name]))
		}
		if len(predecessors[name]) == 0 {
			roots++
		}
	}
	if roots != 1 {
		return nil, fmt.Errorf("pipeline must have exactly one first stage, found %d", roots)
	}

	names, err := graph.TopologicalSort(g)
	if err != nil {
		return nil, fmt.Errorf("failed to order stages: %w", err)
	}

	ordered := make([]Stage, 0, len(names))
	for _, name := range names {
		stage, err := g.Vertex(name)
		if err != nil {
			return nil, fmt.Errorf("failed to read stage '%s': %w", name, err)
		}
		ordered = append(ordered, stage)
	}
	return ordered, nil
}
