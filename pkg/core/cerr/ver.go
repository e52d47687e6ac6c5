// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package cerr

import (
	"fmt"

	"github.com/momeni/fleetsync/pkg/core/model"
)

// MismatchingSemVerError indicates that a version was expected to be
// compatible with another one, but it was not. The first element is
// the supported version and the second element is the actual version
// (e.g., as found in a config file or in the database).
type MismatchingSemVerError [2]model.SemVer

// Error returns a string representation of `msve` error instance.
func (msve *MismatchingSemVerError) Error() string {
	return fmt.Sprintf(
		"v%s is not compatible with the supported v%s",
		(*msve)[1].String(), (*msve)[0].String(),
	)
}
