package scene

import (
	"slices"
	"strings"
	"sync"
)

// PanelKind names the control panel a presence change belongs to.
type PanelKind string

const (
	PanelArea      PanelKind = "area"
	PanelCrossline PanelKind = "crossline"
)

// Panel is the control state derived from an editor after a commit: whether
// it holds a shape, and for crosslines how many lanes it spans.
type Panel struct {
	Kind    PanelKind `json:"kind"`
	Name    string    `json:"name"`
	Present bool      `json:"present"`
	Lanes   int       `json:"lanes,omitempty"`
}

// Panels tracks editor presence and forwards every change to subscribers.
// It satisfies polygon.Notifier and crossline.Notifier.
type Panels struct {
	mu          sync.RWMutex
	state       map[string]Panel
	subscribers []func(Panel)
}

// NewPanels creates an empty Panels.
func NewPanels() *Panels {
	return &Panels{state: make(map[string]Panel)}
}

// Subscribe registers fn for every later presence change.
func (p *Panels) Subscribe(fn func(Panel)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.subscribers = append(p.subscribers, fn)
}

// AreaPresence records whether the named region holds a shape.
func (p *Panels) AreaPresence(name string, present bool) {
	p.publish(Panel{Kind: PanelArea, Name: name, Present: present})
}

// CrosslinePresence records whether the named line holds a shape.
func (p *Panels) CrosslinePresence(name string, present bool, lanes int) {
	p.publish(Panel{Kind: PanelCrossline, Name: name, Present: present, Lanes: lanes})
}

// All returns the latest state of every panel, areas first.
func (p *Panels) All() []Panel {
	p.mu.RLock()
	out := make([]Panel, 0, len(p.state))
	for _, panel := range p.state {
		out = append(out, panel)
	}
	p.mu.RUnlock()

	slices.SortFunc(out, func(a, b Panel) int {
		if c := strings.Compare(string(a.Kind), string(b.Kind)); c != 0 {
			return c
		}
		return strings.Compare(a.Name, b.Name)
	})
	return out
}

func (p *Panels) publish(panel Panel) {
	p.mu.Lock()
	p.state[string(panel.Kind)+"/"+panel.Name] = panel
	subs := slices.Clone(p.subscribers)
	p.mu.Unlock()

	for _, fn := range subs {
		fn(panel)
	}
}
