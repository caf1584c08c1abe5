package annotation

import "shape-annotator/pkg/geometry"

// Resolve returns the id of the topmost annotation containing p. Later
// entries are drawn on top, so the list is searched from the end.
func Resolve(p geometry.Point2D, list []Annotation) (id string, ok bool) {
	for i := len(list) - 1; i >= 0; i-- {
		if list[i].Contains(p) {
			return list[i].ID, true
		}
	}
	return "", false
}
