// Package labels maps classifier output indices to human-readable Polish
// Sign Language sign labels.
package labels

import "fmt"

// Label is one of the 27 fixed sign identifiers.
type Label string

// table lists the 27 class labels in model output order. The order is part
// of the trained model's contract: index i of the classifier's probability
// vector corresponds to table[i].
//
// "0" and "o" are visually identical signs but remain distinct classes;
// the aliasing happens in Display, never in the class set.
var table = [27]Label{
	"0", "1", "2", "3", "4", "5", "6", "7", "8", "9",
	"a", "b", "c", "e", "i", "l", "o", "r", "u", "w", "y",
	"ja", "ty", "on", "to jest", "dobrze", "źle",
}

// aliases documents the many-to-one presentation mapping for signs that
// are indistinguishable to a viewer. Consumers that want the canonical
// rendering apply Display; the underlying class indices stay distinct so
// the decision boundary and the vocabulary remain independently testable.
var aliases = map[Label]Label{
	"0":       "o",
	"to jest": "ty",
}

// Count is the number of sign classes.
const Count = len(table)

// OutOfRangeError reports a class index outside [0, Count).
type OutOfRangeError struct {
	Index int
}

func (e *OutOfRangeError) Error() string {
	return fmt.Sprintf("labels: class index %d out of range [0,%d)", e.Index, Count)
}

// Map returns the label for a class index.
func Map(index int) (Label, error) {
	if index < 0 || index >= Count {
		return "", &OutOfRangeError{Index: index}
	}
	return table[index], nil
}

// Display returns the presentation form of a label, folding visually
// identical signs onto one rendering.
func Display(l Label) Label {
	if d, ok := aliases[l]; ok {
		return d
	}
	return l
}

// Index returns the class index of a label, or -1 if unknown. Useful when
// turning labeled datasets into one-hot targets.
func Index(l Label) int {
	for i, v := range table {
		if v == l {
			return i
		}
	}
	return -1
}

// All returns the labels in class-index order.
func All() []Label {
	out := make([]Label, Count)
	copy(out, table[:])
	return out
}

// OneHot returns the one-hot target row for a class index.
func OneHot(index int) ([]float64, error) {
	if index < 0 || index >= Count {
		return nil, &OutOfRangeError{Index: index}
	}
	row := make([]float64, Count)
	row[index] = 1
	return row, nil
}
