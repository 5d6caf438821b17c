package logreg

import "gocer/domain/sample"

// Labeler derives ground-truth labels from a group's class partition
type Labeler struct{}

// NewLabeler creates a labeler
func NewLabeler() *Labeler {
	return &Labeler{}
}

// MakeLabels returns entry index i repeated once per row of entry i, aligned with
// Group.Stack.
func (l *Labeler) MakeLabels(g *sample.Group) []int {
	labels := make([]int, 0, g.Rows())
	for i, e := range g.Entries {
		for r := 0; r < e.Rows(); r++ {
			labels = append(labels, i)
		}
	}
	return labels
}
