// Copyright (c) 2024-2026 The Neutron developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package banmgr

import "fmt"

// errUnknownVersion returns the error used when the on-disk ban list carries
// an unsupported serialization version.
func errUnknownVersion(version int) error {
	return fmt.Errorf("unknown version %v in serialized ban list", version)
}
