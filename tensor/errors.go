// Copyright 2025 Scriven ML. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package tensor

import "fmt"

// ShapeError reports an attempt to view a tensor's elements under an
// incompatible shape, e.g. reshaping N×785 pixel data to [N, 1, 28, 28].
type ShapeError struct {
	Op   string // operation that failed ("reshape", "from slice")
	Have Shape  // shape (or element count) the data actually has
	Want Shape  // shape that was requested
}

func (e *ShapeError) Error() string {
	return fmt.Sprintf("tensor: %s: cannot view %d elements %v as %v (%d elements)",
		e.Op, e.Have.NumElements(), e.Have, e.Want, e.Want.NumElements())
}
