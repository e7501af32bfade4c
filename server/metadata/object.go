package metadata

import (
	"strings"

	"github.com/keystrand/usermeta/server/status"
)

// Merge returns a new object containing every top-level key of existing,
// overwritten by any key present in incoming. The merge is shallow: when a
// key holds a nested object on both sides, incoming's version replaces the
// existing one outright. Callers that need to change a single nested field
// without replacing its siblings use SetPath instead.
func Merge(existing, incoming map[string]any) map[string]any {
	merged := make(map[string]any, len(existing)+len(incoming))
	for k, v := range existing {
		merged[k] = v
	}
	for k, v := range incoming {
		merged[k] = v
	}
	return merged
}

// SetPath assigns value at the dot-separated path inside root and returns the
// mutated root. Intermediate segments that are missing, or that hold a
// non-object value, are replaced with fresh empty objects before descending.
// A nil root behaves as an empty object. An empty path is rejected with an
// InvalidArgument error.
func SetPath(root map[string]any, path string, value any) (map[string]any, error) {
	if path == "" {
		return nil, status.NewEmptyPathError()
	}

	if root == nil {
		root = make(map[string]any)
	}

	segments := strings.Split(path, ".")
	current := root
	for _, segment := range segments[:len(segments)-1] {
		next, ok := current[segment].(map[string]any)
		if !ok {
			next = make(map[string]any)
			current[segment] = next
		}
		current = next
	}
	current[segments[len(segments)-1]] = value

	return root, nil
}
