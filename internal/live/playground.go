package live

import (
	"slices"
	"strings"

	"github.com/vango-dev/anchor/internal/config"
	"github.com/vango-dev/anchor/internal/errors"
	"github.com/vango-dev/anchor/pkg/anchor"
)

// Container names served by the playground.
const (
	NameColor      = "color"
	NameBackground = "background"
	NameLabel      = "label"
)

// ContainerState is one container in a snapshot.
type ContainerState struct {
	Name          string `json:"name"`
	Value         string `json:"value"`
	Writable      bool   `json:"writable"`
	Subscriptions int    `json:"subscriptions"`
}

// Snapshot is the JSON body of GET /state.
type Snapshot struct {
	Containers    []ContainerState `json:"containers"`
	Palette       []string         `json:"palette"`
	Clients       int              `json:"clients"`
	Subscriptions uint64           `json:"subscriptions"`
}

// Playground holds the served containers. Its methods must run on the loop.
type Playground struct {
	engine  *anchor.Engine
	palette []string

	names      []string
	containers map[string]*anchor.Container[string]
	writable   map[string]bool
}

// NewPlayground creates the color and background containers and a label
// derived from the color.
func NewPlayground(e *anchor.Engine, cfg config.LiveConfig) *Playground {
	color := anchor.NewContainer(e, cfg.InitialColor)
	background := anchor.NewContainer(e, cfg.InitialBackground)
	label := anchor.Map(color, strings.ToUpper, nil)

	return &Playground{
		engine:  e,
		palette: slices.Clone(cfg.Palette),
		names:   []string{NameColor, NameBackground, NameLabel},
		containers: map[string]*anchor.Container[string]{
			NameColor:      color,
			NameBackground: background,
			NameLabel:      label,
		},
		writable: map[string]bool{
			NameColor:      true,
			NameBackground: true,
		},
	}
}

// Engine returns the engine the containers belong to.
func (p *Playground) Engine() *anchor.Engine {
	return p.engine
}

// Get returns the value of the named container.
func (p *Playground) Get(name string) (string, bool) {
	c, ok := p.containers[name]
	if !ok {
		return "", false
	}
	return c.Get(), true
}

// Set writes value into the named container.
func (p *Playground) Set(name, value string) error {
	c, ok := p.containers[name]
	if !ok {
		return errors.New("A201").WithSubject("container %q", name)
	}
	if !p.writable[name] {
		return errors.New("A204").
			WithSubject("container %q", name).
			WithSuggestion("Write to " + NameColor + " instead; " + name + " follows it")
	}
	if !slices.Contains(p.palette, value) {
		return errors.New("A204").
			WithSubject("value %q", value).
			WithSuggestion("Use one of: " + strings.Join(p.palette, ", "))
	}
	c.Set(value)
	return nil
}

// Watch subscribes fn to every container under ctx, anchored by capture.
// fn runs once per container right away with the current value.
func (p *Playground) Watch(capture anchor.Capture, ctx *anchor.Context, fn func(captured any, m Message)) {
	for _, name := range p.names {
		p.containers[name].OnChange(func(captures []any, _ *anchor.Context, next, current string) {
			fn(captures[0], Message{Name: name, Next: next, Current: current})
		}, []anchor.Capture{capture}, ctx, anchor.FireImmediately())
	}
}

// Snapshot returns the state of every container.
func (p *Playground) Snapshot() Snapshot {
	snap := Snapshot{
		Containers:    make([]ContainerState, 0, len(p.names)),
		Palette:       slices.Clone(p.palette),
		Subscriptions: p.engine.Stats().Live(),
	}
	for _, name := range p.names {
		c := p.containers[name]
		snap.Containers = append(snap.Containers, ContainerState{
			Name:          name,
			Value:         c.Get(),
			Writable:      p.writable[name],
			Subscriptions: c.Len(),
		})
	}
	return snap
}
