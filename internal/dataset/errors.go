package dataset

import "fmt"

// FormatError reports a malformed input row: wrong column count or a
// cell that is not an integer. Malformed files are fatal; nothing is
// retried.
type FormatError struct {
	Row    int    // 1-based data row number (header excluded)
	Reason string // what was wrong with the row
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("dataset: row %d: %s", e.Row, e.Reason)
}

// RangeError reports a value outside its expected domain: a label not
// in [0, 9] or a pixel intensity not in [0, 255].
type RangeError struct {
	Row      int    // 1-based data row number, 0 when not row-bound
	Field    string // "label" or "pixel"
	Value    int
	Min, Max int
}

func (e *RangeError) Error() string {
	if e.Row > 0 {
		return fmt.Sprintf("dataset: row %d: %s %d outside [%d, %d]", e.Row, e.Field, e.Value, e.Min, e.Max)
	}
	return fmt.Sprintf("dataset: %s %d outside [%d, %d]", e.Field, e.Value, e.Min, e.Max)
}
