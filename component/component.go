// Package component implements the component lifecycle state machine and
// the Composite/Aggregate containment extensions of spec §4.5 (C7).
package component

import (
	"sync"

	"github.com/sarchlab/xsmpcore/publication"
	"github.com/sarchlab/xsmpcore/request"
	"github.com/sarchlab/xsmpcore/smperrors"
	"github.com/sarchlab/xsmpcore/types"
)

// State is a component's position in the Created->Publishing->Configured->
// Connected->Disconnected lifecycle.
type State uint8

const (
	StateCreated State = iota
	StatePublishing
	StateConfigured
	StateConnected
	StateDisconnected
)

func (s State) String() string {
	switch s {
	case StateCreated:
		return "Created"
	case StatePublishing:
		return "Publishing"
	case StateConfigured:
		return "Configured"
	case StateConnected:
		return "Connected"
	case StateDisconnected:
		return "Disconnected"
	default:
		return "Unknown"
	}
}

// Logger is the narrow view of the logging service a component's
// DoConfigure hook needs, kept local so component never imports the
// logging package (same decoupling pattern as field.Owner).
type Logger interface {
	Log(level, message string)
}

// LinkRegistry is the narrow view of the link registry a component's
// DoConfigure hook needs. linkregistry.Named is structurally identical to
// Named (both are just Name() string), but *linkregistry.Registry's own
// AddLink is declared against its own Named type, and a concrete type's
// method must match an interface's parameter types exactly to satisfy it
// — so callers wire a small adapter (see simulator.linkRegistryAdapter)
// rather than passing *linkregistry.Registry here directly.
type LinkRegistry interface {
	AddLink(source, target Named)
}

// Simulator is the narrow view of the owning simulator a component's
// DoConnect hook needs.
type Simulator interface {
	Name() string
}

// Publisher, Configurer, Connecter and Disconnecter are the optional
// lifecycle hooks a concrete component implements (spec §4.5's "generated
// hook" model). Component checks for these via type assertion against the
// self value passed to NewComponent, since Go has no virtual dispatch.
type Publisher interface {
	DoPublish(pub *publication.Publication)
}

type Configurer interface {
	DoConfigure(logger Logger, links LinkRegistry) error
}

type Connecter interface {
	DoConnect(sim Simulator) error
}

type Disconnecter interface {
	DoDisconnect()
}

// Component is the common base embedded by every concrete model/service
// (spec §3's Component entity). self is the outer concrete value, used to
// look up optional lifecycle hooks.
type Component struct {
	mu sync.Mutex

	self        any
	name        string
	description string
	parent      *Composite
	state       State

	pub       *publication.Publication
	simulator Simulator
	table     request.HandlerTable
}

// NewComponent constructs a Component in state Created. self is the
// concrete outer value (the type embedding this Component), used to
// dispatch optional DoPublish/DoConfigure/DoConnect/DoDisconnect hooks.
func NewComponent(name, description string, self any) *Component {
	return &Component{name: name, description: description, self: self, state: StateCreated}
}

func (c *Component) String() string { return c.name }

// Name returns the component's identifier within its parent.
func (c *Component) Name() string { return c.name }

// Description returns the component's free-text description.
func (c *Component) Description() string { return c.description }

// State reports the current lifecycle state.
func (c *Component) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.state
}

// Parent returns the owning Composite, or nil at the root.
func (c *Component) Parent() *Composite {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.parent
}

func (c *Component) setParent(p *Composite) {
	c.mu.Lock()
	c.parent = p
	c.mu.Unlock()
}

// Publication returns the catalog built by Publish, or nil before it runs.
func (c *Component) Publication() *publication.Publication {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.pub
}

// HandlerTable satisfies publication.Invokable, giving PublishProperty
// somewhere to wire auto-generated get_/set_ handlers.
func (c *Component) HandlerTable() *request.HandlerTable { return &c.table }

// Invoke dispatches req through this component's handler table (the
// "request-on-request-handler" model of spec §4.5); unregistered names
// raise InvalidOperationName via request.Invoke itself.
func (c *Component) Invoke(req *request.Request) error {
	return request.Invoke(c, &c.table, req.ParameterCount(), req)
}

func (c *Component) transition(from, to State) error {
	c.mu.Lock()

	if c.state != from {
		cur := c.state
		c.mu.Unlock()

		return smperrors.InvalidComponentState(c, cur.String(), from.String())
	}

	c.state = to
	c.mu.Unlock()

	return nil
}

// Publish binds a Publication to reg, transitions Created->Publishing, and
// invokes DoPublish if self implements Publisher (spec §4.5).
func (c *Component) Publish(reg *types.Registry) (*publication.Publication, error) {
	c.mu.Lock()

	if c.state != StateCreated {
		cur := c.state
		c.mu.Unlock()

		return nil, smperrors.InvalidComponentState(c, cur.String(), StateCreated.String())
	}

	c.pub = publication.New(reg, c)
	c.state = StatePublishing
	pub := c.pub
	c.mu.Unlock()

	if p, ok := c.self.(Publisher); ok {
		p.DoPublish(pub)
	}

	return pub, nil
}

// Configure transitions Publishing->Configured and invokes DoConfigure if
// self implements Configurer (spec §4.5).
func (c *Component) Configure(logger Logger, links LinkRegistry) error {
	if err := c.transition(StatePublishing, StateConfigured); err != nil {
		return err
	}

	if cf, ok := c.self.(Configurer); ok {
		return cf.DoConfigure(logger, links)
	}

	return nil
}

// Connect stores sim, transitions Configured->Connected, and invokes
// DoConnect if self implements Connecter (spec §4.5).
func (c *Component) Connect(sim Simulator) error {
	if err := c.transition(StateConfigured, StateConnected); err != nil {
		return err
	}

	c.mu.Lock()
	c.simulator = sim
	c.mu.Unlock()

	if cn, ok := c.self.(Connecter); ok {
		return cn.DoConnect(sim)
	}

	return nil
}

// Disconnect invokes DoDisconnect if self implements Disconnecter, then
// clears publication/simulator and transitions Connected->Disconnected
// (spec §4.5).
func (c *Component) Disconnect() error {
	c.mu.Lock()

	if c.state != StateConnected {
		cur := c.state
		c.mu.Unlock()

		return smperrors.InvalidComponentState(c, cur.String(), StateConnected.String())
	}

	c.mu.Unlock()

	if d, ok := c.self.(Disconnecter); ok {
		d.DoDisconnect()
	}

	c.mu.Lock()
	c.pub = nil
	c.simulator = nil
	c.state = StateDisconnected
	c.mu.Unlock()

	return nil
}
