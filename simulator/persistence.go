package simulator

import (
	"io"

	"github.com/sarchlab/xsmpcore/component"
	"github.com/sarchlab/xsmpcore/linkregistry"
	"github.com/sarchlab/xsmpcore/persist"
)

// componentLike is satisfied by any Model that exposes its embedded
// *component.Component, the shape every concrete Model built in the
// teacher's idiom provides (spec §3's "component" field).
type componentLike interface {
	ComponentBase() *component.Component
}

// storeComponent writes every state-bearing field published by c, in
// publication order (spec §3's "declaration order").
func storeComponent(w *persist.Writer, c *component.Component) {
	pub := c.Publication()
	if pub == nil {
		return
	}

	for _, f := range pub.Fields() {
		persist.StoreField(w, f)
	}
}

// restoreComponent mirrors storeComponent.
func restoreComponent(r *persist.Reader, c *component.Component) error {
	pub := c.Publication()
	if pub == nil {
		return nil
	}

	for _, f := range pub.Fields() {
		if err := persist.RestoreField(r, f); err != nil {
			return err
		}
	}

	return nil
}

// Store serializes the simulator's entire state-bearing surface to w, in
// declaration order (spec §3's Persistence stream): the standard
// services' own state, then every registered Model's published fields,
// walking Models in the order they were added to the "Models" container.
// Each top-level item is framed by persist's envelope so Restore can
// detect a structurally incompatible stream early.
func (s *Simulator) Store(w io.Writer) error {
	pw := persist.NewWriter(w)

	persist.WriteEnvelope(pw, persist.TypeID("xsmpcore.timekeeper"), func(pw *persist.Writer) {
		s.timeKeeper.Store(pw)
	})

	persist.WriteEnvelope(pw, persist.TypeID("xsmpcore.eventmanager"), func(pw *persist.Writer) {
		s.eventManager.Store(pw)
	})

	persist.WriteEnvelope(pw, persist.TypeID("xsmpcore.linkregistry"), func(pw *persist.Writer) {
		s.linkRegistry.Store(pw)
	})

	var children []component.Named
	if models, ok := s.Container("Models"); ok {
		children = models.Children()
	}

	pw.WriteUint32(uint32(len(children)))

	for _, child := range children {
		pw.WriteString(child.Name())

		if c, ok := child.(componentLike); ok {
			storeComponent(pw, c.ComponentBase())
		}
	}

	return pw.Err()
}

// Restore reads back a stream written by Store, matching each top-level
// item's envelope hash and replaying it into the simulator's current
// service/Model tree, which must already have the same topology (spec §3:
// "restorable against a compatible component tree"). Restored link
// records are returned rather than applied directly: re-establishing a
// link needs live Named endpoints, which the caller resolves from its own
// Model tree (spec keeps Store/Restore to the Standby state, ahead of any
// Reconnect).
func (s *Simulator) Restore(r io.Reader) ([]linkregistry.LinkRecord, error) {
	pr := persist.NewReader(r)

	if err := persist.ReadEnvelope(pr, s, persist.TypeID("xsmpcore.timekeeper"), func(pr *persist.Reader) {
		s.timeKeeper.Restore(pr)
	}); err != nil {
		return nil, err
	}

	if err := persist.ReadEnvelope(pr, s, persist.TypeID("xsmpcore.eventmanager"), func(pr *persist.Reader) {
		s.eventManager.Restore(pr)
	}); err != nil {
		return nil, err
	}

	var links []linkregistry.LinkRecord

	if err := persist.ReadEnvelope(pr, s, persist.TypeID("xsmpcore.linkregistry"), func(pr *persist.Reader) {
		links = linkregistry.RestoreRecords(pr)
	}); err != nil {
		return nil, err
	}

	models, _ := s.Container("Models")

	n := pr.ReadUint32()
	if pr.Err() != nil {
		return nil, pr.Err()
	}

	for i := uint32(0); i < n; i++ {
		name := pr.ReadString()
		if pr.Err() != nil {
			return nil, pr.Err()
		}

		if models == nil {
			continue
		}

		child, ok := models.Child(name)
		if !ok {
			continue
		}

		if c, ok := child.(componentLike); ok {
			if err := restoreComponent(pr, c.ComponentBase()); err != nil {
				return nil, err
			}
		}
	}

	return links, pr.Err()
}
