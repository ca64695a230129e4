package parallax

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
)

// globalDebug enables the tree checks in AddChild. It is set by
// Page.SetDebugMode.
var globalDebug bool

// NewLogger creates a slog.Logger writing to w. level is one of debug, info,
// warn or error (default info); format "json" selects the JSON handler,
// anything else the text handler.
func NewLogger(w io.Writer, level, format string) *slog.Logger {
	var lv slog.Level
	switch level {
	case "debug":
		lv = slog.LevelDebug
	case "warn":
		lv = slog.LevelWarn
	case "error":
		lv = slog.LevelError
	default:
		lv = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: lv}
	var h slog.Handler
	if format == "json" {
		h = slog.NewJSONHandler(w, opts)
	} else {
		h = slog.NewTextHandler(w, opts)
	}
	return slog.New(h)
}

// SetDebugMode turns on tree checks and debug-level logging to stderr.
// Turning it off keeps the current logger.
func (p *Page) SetDebugMode(enabled bool) {
	p.debug = enabled
	globalDebug = enabled
	if enabled {
		p.SetLogger(NewLogger(os.Stderr, "debug", "text"))
	}
}

// debugCheckDisposed panics with a descriptive message when a disposed node is
// used in a tree operation. Only called in debug mode.
func debugCheckDisposed(n *Node, op string) {
	if n.disposed {
		panic(fmt.Sprintf("parallax debug: %s on disposed node %q (ID was %d)", op, n.Name, n.ID))
	}
}

// debugCheckTreeDepth warns on stderr if tree depth exceeds the threshold.
const debugMaxTreeDepth = 32

func debugCheckTreeDepth(n *Node) {
	depth := 0
	for p := n; p != nil; p = p.Parent {
		depth++
	}
	if depth > debugMaxTreeDepth {
		_, _ = fmt.Fprintf(os.Stderr, "[parallax] warning: tree depth %d exceeds %d (node %q)\n",
			depth, debugMaxTreeDepth, n.Name)
	}
}

// debugCheckChildCount warns on stderr if a node has more than 1000 children.
const debugMaxChildCount = 1000

func debugCheckChildCount(n *Node) {
	if len(n.children) > debugMaxChildCount {
		_, _ = fmt.Fprintf(os.Stderr, "[parallax] warning: node %q has %d children (threshold %d)\n",
			n.Name, len(n.children), debugMaxChildCount)
	}
}

// Stats is a snapshot of the page's runtime counters.
type Stats struct {
	Frame    uint64
	ScrollY  float64
	Triggers int
	Effects  int
	Inside   int // triggers whose membership is Inside
}

// Stats returns the current counters.
func (p *Page) Stats() Stats {
	st := Stats{
		Frame:    p.frame,
		ScrollY:  p.viewport.ScrollY,
		Triggers: p.registry.Len(),
		Effects:  p.ticker.Len(),
	}
	for _, t := range p.registry.triggers {
		if t.membership == Inside {
			st.Inside++
		}
	}
	return st
}

func (st Stats) String() string {
	return fmt.Sprintf("scroll %.0f | triggers %d (%d inside) | effects %d | frame %d",
		st.ScrollY, st.Triggers, st.Inside, st.Effects, st.Frame)
}

// drawStats prints the stats overlay and the current frame rate.
func (p *Page) drawStats(screen *ebiten.Image) {
	msg := fmt.Sprintf("FPS: %.1f  TPS: %.1f\n%s", ebiten.ActualFPS(), ebiten.ActualTPS(), p.Stats())
	ebitenutil.DebugPrint(screen, msg)
}
