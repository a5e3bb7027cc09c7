package graphs

import (
	"encoding/json"
	"io"

	"github.com/psidex/kgviz/internal/lib"
)

// AdjacencyBackend renders a Scene as a JSON map from each node ID to the sorted IDs
// it points at. Undirected edges appear under both endpoints.
type AdjacencyBackend struct{}

var _ Backend = AdjacencyBackend{}

func (AdjacencyBackend) Name() string      { return "json" }
func (AdjacencyBackend) Extension() string { return ".json" }

func adjacencyMap(s *Scene) map[string][]string {
	sets := make(map[string]lib.Set, len(s.Nodes))
	for _, n := range s.Nodes {
		sets[n.ID] = lib.NewSet()
	}
	for _, e := range s.Edges {
		sets[e.Source].Add(e.Target)
		if !e.Directed {
			sets[e.Target].Add(e.Source)
		}
	}

	slicedSets := make(map[string][]string, len(sets))
	for key, value := range sets {
		slicedSets[key] = value.AsSlice()
	}
	return slicedSets
}

func (AdjacencyBackend) Render(w io.Writer, s *Scene) error {
	jsonData, err := json.MarshalIndent(adjacencyMap(s), "", "  ")
	if err != nil {
		return err
	}
	_, err = w.Write(jsonData)
	return err
}
