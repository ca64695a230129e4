package parallax

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"
	"testing"
)

// ---- Debug mode tests ------------------------------------------------------

func TestDebugMode_DisposedNodePanics(t *testing.T) {
	p := NewPage(800, 600)
	p.SetDebugMode(true)
	defer p.SetDebugMode(false)

	parent := NewContainer("parent")
	p.Root().AddChild(parent)
	child := NewBox("child", 10, 10, ColorWhite)
	child.Dispose()

	defer func() {
		r := recover()
		if r == nil {
			t.Fatal("expected panic on AddChild with disposed node, got none")
		}
		if msg := fmt.Sprint(r); !strings.Contains(msg, "disposed") {
			t.Errorf("panic message should mention 'disposed', got: %s", msg)
		}
	}()
	parent.AddChild(child)
}

func TestReleaseMode_DisposedNodeNoPanic(t *testing.T) {
	p := NewPage(800, 600)
	p.SetDebugMode(false)

	child := NewBox("child", 10, 10, ColorWhite)
	child.Dispose()
	p.Root().AddChild(child)
	if child.Parent != p.Root() {
		t.Error("release mode adds without checks")
	}
}

func TestDebugModeEnablesDebugLogging(t *testing.T) {
	p := NewPage(800, 600)
	p.SetDebugMode(true)
	defer p.SetDebugMode(false)
	if !globalDebug || !p.Logger().Enabled(context.Background(), slog.LevelDebug) {
		t.Error("debug mode should enable debug-level logging")
	}
	if p.Registry().Logger() != p.Logger() {
		t.Error("registry should share the page logger")
	}
}

// ---- Logger ----------------------------------------------------------------

func TestNewLoggerLevels(t *testing.T) {
	tests := []struct {
		level     string
		debugSeen bool
		warnSeen  bool
	}{
		{"debug", true, true},
		{"info", false, true},
		{"", false, true},
		{"warn", false, true},
		{"error", false, false},
	}
	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			var buf bytes.Buffer
			l := NewLogger(&buf, tt.level, "text")
			l.Debug("dbg-line")
			l.Warn("warn-line")
			if got := strings.Contains(buf.String(), "dbg-line"); got != tt.debugSeen {
				t.Errorf("debug written = %v, want %v", got, tt.debugSeen)
			}
			if got := strings.Contains(buf.String(), "warn-line"); got != tt.warnSeen {
				t.Errorf("warn written = %v, want %v", got, tt.warnSeen)
			}
		})
	}
}

func TestNewLoggerJSON(t *testing.T) {
	var buf bytes.Buffer
	NewLogger(&buf, "info", "json").Info("hello", "trigger", "hero")
	out := buf.String()
	if !strings.HasPrefix(out, "{") || !strings.Contains(out, `"trigger":"hero"`) {
		t.Errorf("json output = %q", out)
	}
}

func TestTriggerToggleLogged(t *testing.T) {
	p, section := stackedPage()
	var buf bytes.Buffer
	p.SetLogger(NewLogger(&buf, "debug", "text"))
	if _, err := p.Registry().Register(TriggerSpec{Ref: section, Name: "feature-in"}); err != nil {
		t.Fatal(err)
	}
	p.InjectScrollTo(800)
	p.Step(frameDT)

	out := buf.String()
	for _, want := range []string{"trigger registered", "trigger toggled", "trigger=feature-in", "kind=enter"} {
		if !strings.Contains(out, want) {
			t.Errorf("log missing %q:\n%s", want, out)
		}
	}
}
