package publication

import (
	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/sarchlab/xsmpcore/field"
)

func kindName(k field.Kind) string {
	switch k {
	case field.KindSimple:
		return "Simple"
	case field.KindSimpleArray:
		return "SimpleArray"
	case field.KindArray:
		return "Array"
	case field.KindStructure:
		return "Structure"
	default:
		return "Unknown"
	}
}

// Dump renders p's published field/operation/property catalog as a
// table (SPEC_FULL.md B), the same go-pretty style the teacher's
// core.PrintState debug dump uses. It's a read-only diagnostic, used by
// the introspect HTTP surface, never by core logic.
func (p *Publication) Dump() string {
	fields := p.Fields()
	ops := p.Operations()

	p.mu.Lock()
	props := make([]*Property, 0, len(p.propOrder))
	for _, name := range p.propOrder {
		props = append(props, p.properties[name])
	}
	p.mu.Unlock()

	out := ""

	if len(fields) > 0 {
		ft := table.NewWriter()
		ft.SetTitle(p.owner.Name() + " — Fields")
		ft.AppendHeader(table.Row{"Name", "Kind", "State", "Input", "Output", "Value"})

		for _, f := range fields {
			value := ""
			if f.Kind() == field.KindSimple {
				if v, err := f.GetValue(); err == nil {
					value = v.Kind.String()
				}
			}

			ft.AppendRow(table.Row{
				f.Name(), kindName(f.Kind()), f.IsState(), f.IsInput(), f.IsOutput(), value,
			})
		}

		out += ft.Render() + "\n"
	}

	if len(ops) > 0 {
		ot := table.NewWriter()
		ot.SetTitle(p.owner.Name() + " — Operations")
		ot.AppendHeader(table.Row{"Name", "Parameters"})

		for _, op := range ops {
			ot.AppendRow(table.Row{op.Name(), len(op.Parameters())})
		}

		out += ot.Render() + "\n"
	}

	if len(props) > 0 {
		pt := table.NewWriter()
		pt.SetTitle(p.owner.Name() + " — Properties")
		pt.AppendHeader(table.Row{"Name", "Access"})

		for _, prop := range props {
			pt.AppendRow(table.Row{prop.Name, prop.Access})
		}

		out += pt.Render() + "\n"
	}

	return out
}
