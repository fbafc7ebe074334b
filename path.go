package loupe

import "strconv"

// FocusPath navigates a lens along dotted path segments, for callers that
// work with dynamic paths (CLI, scenario runners) rather than the static
// typed surface. Struct and map lenses focus by name; node lists resolve
// a numeric segment as an index and anything else as a node identity.
// Focusing into a plain list, a text position or a primitive is a misuse
// error.
//
// Like Focus itself, navigation through struct and map lenses may create
// missing child containers.
func FocusPath(l Lens, segs ...string) (Lens, error) {
	cur := l
	for _, seg := range segs {
		var (
			next Lens
			err  error
		)
		switch t := cur.(type) {
		case StructLens:
			next, err = t.Focus(seg)
		case MapLens:
			next, err = t.Focus(seg)
		case NodeListLens:
			if i, convErr := strconv.Atoi(seg); convErr == nil {
				next, err = liftStruct(t.At(i))
			} else {
				next, err = liftStruct(t.Find(NodeID(seg)))
			}
		default:
			return nil, misuseError(cur.Path(), "cannot focus %q: %T supports no focus operation", seg, cur)
		}
		if err != nil {
			return nil, err
		}
		cur = next
	}
	return cur, nil
}

func liftStruct(l StructLens, err error) (Lens, error) {
	if err != nil {
		return nil, err
	}
	return l, nil
}
