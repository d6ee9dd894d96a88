package page

import (
	"sync"

	"github.com/goliatone/go-composer/pkg/tree"
)

// HoverTracker resolves which wrapper shows the hover indicator. Pointer
// enter events on nested wrappers arrive outermost first, so the most
// recently entered wrapper still under the pointer wins and its ancestors
// stay quiet until it is left.
type HoverTracker struct {
	mu      sync.Mutex
	entered []tree.Path
}

// Enter records that the pointer entered the wrapper at path.
func (h *HoverTracker) Enter(path tree.Path) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.entered = removePath(h.entered, path)
	h.entered = append(h.entered, path)
}

// Leave records that the pointer left the wrapper at path.
func (h *HoverTracker) Leave(path tree.Path) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.entered = removePath(h.entered, path)
}

// Active returns the wrapper that should show the indicator.
func (h *HoverTracker) Active() (tree.Path, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.entered) == 0 {
		return "", false
	}
	return h.entered[len(h.entered)-1], true
}

// Reset forgets every entered wrapper. Call it after a structural edit since
// the recorded paths belong to the previous pass.
func (h *HoverTracker) Reset() {
	h.mu.Lock()
	h.entered = nil
	h.mu.Unlock()
}

func removePath(paths []tree.Path, target tree.Path) []tree.Path {
	out := paths[:0]
	for _, p := range paths {
		if p != target {
			out = append(out, p)
		}
	}
	return out
}
