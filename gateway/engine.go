package gateway

import (
	"fmt"
	"net/http"

	"github.com/n9te9/federation-gateway/federation/executor"
	"github.com/n9te9/federation-gateway/federation/graph"
	"github.com/n9te9/federation-gateway/federation/planner"
)

// executionEngine bundles all read-only components required to serve GraphQL requests.
type executionEngine struct {
	planner      *planner.Planner
	orchestrator *executor.Orchestrator
	superGraph   *graph.SuperGraphV2
}

// schemaStore groups a set of raw SDLs, host URLs, and the engine built from them.
// Nothing in this package constructs or stores a schemaStore.
type schemaStore struct {
	sdls   map[string]string // subgraph name → SDL string
	hosts  map[string]string // subgraph name → base URL
	engine *executionEngine
}

// buildEngine composes a new SuperGraph from the given SDLs and host map, then wraps it
// in an executionEngine together with a Planner and an Orchestrator.
// The order that subgraphs are processed follows the iteration order of sdls, which is
// non-deterministic in Go maps; SuperGraphV2 is expected to be order-independent.
func buildEngine(sdls, hosts map[string]string, httpClient *http.Client) (*executionEngine, error) {
	subGraphs := make([]*graph.SubGraphV2, 0, len(sdls))
	for name, sdl := range sdls {
		sg, err := graph.NewSubGraphV2(name, []byte(sdl), hosts[name])
		if err != nil {
			return nil, fmt.Errorf("failed to build subgraph %q: %w", name, err)
		}
		subGraphs = append(subGraphs, sg)
	}

	superGraph, err := graph.NewSuperGraphV2(subGraphs)
	if err != nil {
		return nil, fmt.Errorf("composition failed: %w", err)
	}

	dataSources := make(map[string]executor.DataSource, len(subGraphs))
	for _, sg := range subGraphs {
		dataSources[sg.Name] = executor.NewHTTPDataSource(sg.Host, httpClient)
	}

	return &executionEngine{
		planner: planner.NewPlanner(superGraph),
		orchestrator: &executor.Orchestrator{
			Interpreter: &executor.Interpreter{
				Fetch: &executor.FetchExecutor{DataSources: dataSources, SuperGraph: superGraph},
			},
			PostProcessor: &executor.PostProcessor{SuperGraph: superGraph},
			SuperGraph:    superGraph,
		},
		superGraph: superGraph,
	}, nil
}

// copyMap returns a shallow copy of a string map.
func copyMap(m map[string]string) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
