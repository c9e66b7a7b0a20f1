// Copyright (c) 2024-2026 The Neutron developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

/*
Package banmgr implements a concurrency safe ban list for misbehaving peers.

The ban list maps subnets to the absolute time their ban expires.  Lookups
follow most-specific-match semantics, so a host entry always decides over a
covering network entry.  The list is persisted to disk on an interval
whenever it has unwritten changes and expired entries are evicted by a
periodic sweep rather than during lookups.
*/
package banmgr
