package persist

import "github.com/sarchlab/xsmpcore/field"

// StoreField walks f in declaration order, writing only state-bearing
// leaves (spec §3's persisted-state contract: "Simple"/"SimpleArray"
// leaves not marked IsState are skipped on both store and restore, so
// the two walks stay aligned without needing placeholder bytes).
// Aggregate Array/Structure fields carry no payload of their own; their
// children are written in order.
func StoreField(w *Writer, f *field.Field) {
	switch f.Kind() {
	case field.KindSimple:
		if !f.IsState() {
			return
		}

		v, _ := f.GetValue()
		w.WriteAny(v)

	case field.KindSimpleArray:
		if !f.IsState() {
			return
		}

		items, _ := f.Items()
		w.WriteUint32(uint32(len(items)))

		for _, it := range items {
			w.WriteAny(it)
		}

	case field.KindArray, field.KindStructure:
		for _, c := range f.Children() {
			StoreField(w, c)
		}
	}
}

// RestoreField mirrors StoreField, reading the same declaration-order
// walk back into f's existing tree.
func RestoreField(r *Reader, f *field.Field) error {
	switch f.Kind() {
	case field.KindSimple:
		if !f.IsState() {
			return nil
		}

		v := r.ReadAny()
		if r.Err() != nil {
			return r.Err()
		}

		return f.SetValue(v)

	case field.KindSimpleArray:
		if !f.IsState() {
			return nil
		}

		n := r.ReadUint32()
		if r.Err() != nil {
			return r.Err()
		}

		for i := uint32(0); i < n; i++ {
			v := r.ReadAny()
			if r.Err() != nil {
				return r.Err()
			}

			if err := f.SetItem(int(i), v); err != nil {
				return err
			}
		}

		return nil

	case field.KindArray, field.KindStructure:
		for _, c := range f.Children() {
			if err := RestoreField(r, c); err != nil {
				return err
			}
		}

		return nil
	}

	return nil
}
