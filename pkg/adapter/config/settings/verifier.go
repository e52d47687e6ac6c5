// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package settings

import (
	"cmp"
	"fmt"
)

// RangeError reports a setting which was moved into its [Min, Max]
// range, or a range whose Min is greater than its Max. A nil Min or
// Max bound is not enforced.
type RangeError[T cmp.Ordered] struct {
	Value        T    // the configured value, before clamping
	Min, Max     *T   // the bounds which were enforced
	InvalidRange bool // Min is greater than Max, Value is not checked
}

// Error implements the error interface.
func (e *RangeError[T]) Error() string {
	switch {
	case e.InvalidRange:
		return "minimum is greater than maximum"
	case e.Min != nil && e.Value < *e.Min:
		return fmt.Sprintf("%v is less than the minimum %v", e.Value, *e.Min)
	case e.Max != nil && e.Value > *e.Max:
		return fmt.Sprintf("%v is greater than the maximum %v", e.Value, *e.Max)
	default:
		return "minimum is greater than maximum"
	}
}

// Clamp moves the *v setting into the [minb, maxb] range and returns
// a RangeError if it was out of that range. A nil *v is left nil and
// a nil bound is ignored. If minb is greater than maxb, *v is left
// unchanged and a RangeError is returned too.
func Clamp[T cmp.Ordered](v *T, minb, maxb *T) *RangeError[T] {
	if minb != nil && maxb != nil && *minb > *maxb {
		e := &RangeError[T]{Min: minb, Max: maxb, InvalidRange: true}
		if v != nil {
			e.Value = *v
		}
		return e
	}
	if v == nil {
		return nil
	}
	orig := *v
	switch {
	case minb != nil && orig < *minb:
		*v = *minb
	case maxb != nil && orig > *maxb:
		*v = *maxb
	default:
		return nil
	}
	return &RangeError[T]{Value: orig, Min: minb, Max: maxb}
}
