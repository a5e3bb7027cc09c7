package graphs

import (
	"errors"
	"io"
	"sort"
	"sync"

	"github.com/go-echarts/go-echarts/v2/components"
)

var (
	// ErrDestroyed is returned by View methods called after Destroy.
	ErrDestroyed = errors.New("view destroyed")
	// ErrUnknownKind is returned when constructing a View of an unsupported kind.
	ErrUnknownKind = errors.New("unknown visualization kind")
	// ErrNotChart is returned by View.Chart when the backend does not draw with
	// go-echarts.
	ErrNotChart = errors.New("backend cannot be placed on a chart page")
)

// Backend turns a Scene into an output format.
type Backend interface {
	// Name is the identifier used in Options.Backend.
	Name() string
	// Render is not assumed to be thread-safe.
	Render(w io.Writer, s *Scene) error
}

// ChartBackend is implemented by backends that can contribute a chart to a shared
// go-echarts page.
type ChartBackend interface {
	Backend
	Charter(s *Scene) components.Charter
}

// Extension is implemented by backends whose output is not HTML.
type Extension interface {
	Extension() string
}

var (
	_ ChartBackend = EChartsBackend{}
	_ ChartBackend = EChartsTreeBackend{}
)

var (
	backendsMu = &sync.RWMutex{}
	backends   = map[string]Backend{}
)

// RegisterBackend makes a backend selectable by name. Registering a name twice
// replaces the earlier backend.
func RegisterBackend(b Backend) {
	backendsMu.Lock()
	defer backendsMu.Unlock()
	backends[b.Name()] = b
}

func lookupBackend(name string) (Backend, bool) {
	backendsMu.RLock()
	defer backendsMu.RUnlock()
	b, ok := backends[name]
	return b, ok
}

// Backends lists the registered backend names.
func Backends() []string {
	backendsMu.RLock()
	defer backendsMu.RUnlock()
	names := make([]string, 0, len(backends))
	for name := range backends {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// FileExtension returns the extension, with the dot, for the backend's output.
func FileExtension(backend string) string {
	if b, ok := lookupBackend(backend); ok {
		if e, ok := b.(Extension); ok {
			return e.Extension()
		}
	}
	return ".html"
}

func init() {
	RegisterBackend(EChartsBackend{})
	RegisterBackend(EChartsTreeBackend{})
	RegisterBackend(AdjacencyBackend{})
}
