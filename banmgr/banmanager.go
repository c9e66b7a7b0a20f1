// Copyright (c) 2024-2026 The Neutron developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package banmgr

import (
	"encoding/json"
	"net"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"
)

const (
	// banlistFilename is the default filename to store the serialized ban
	// list.
	banlistFilename = "banlist.json"

	// dumpBanlistInterval is the interval used to flush the ban list to
	// disk when it has unwritten changes.  Writes are debounced on this
	// interval so that a burst of bans does not produce a write storm.
	dumpBanlistInterval = time.Minute * 5

	// sweepInterval is the interval used to remove entries whose ban time
	// has expired.  Expired entries are only evicted at sweep time, never
	// during lookups.
	sweepInterval = time.Minute * 10

	// DefaultBanDuration is how long a misbehaving peer's subnet stays
	// banned when no explicit duration is provided.
	DefaultBanDuration = time.Hour * 24

	// serialisationVersion is the current version of the on-disk format.
	serialisationVersion = 1
)

// BanManager provides a concurrency safe ban list that maps subnets to the
// absolute time their ban expires.  The list is persisted to disk on an
// interval whenever it has been modified and restored on startup.
type BanManager struct {
	// mtx is used to ensure safe concurrent access to fields on an
	// instance of the ban manager.
	mtx sync.Mutex

	// banFile is the path of the file that the ban manager's serialized
	// state is saved to and loaded from.
	banFile string

	// banned maps the canonical string representation of a subnet to its
	// entry.  The canonical representation is the masked network in CIDR
	// notation, so equal subnets always share a key.
	banned map[string]*banEntry

	// dirty signals whether the ban manager needs to have its state
	// serialized and saved to the file system.
	dirty bool

	// started and shutdown track the lifecycle state.  Their values are 1
	// or more once the respective transition has happened.
	started  int32
	shutdown int32

	wg   sync.WaitGroup
	quit chan struct{}
}

// banEntry houses a banned subnet along with the time the ban expires.
type banEntry struct {
	subnet *net.IPNet
	expiry time.Time
}

// serializedBanEntry is used to represent the serializable state of a ban
// entry.
type serializedBanEntry struct {
	Subnet string
	Expiry int64
}

// serializedBanList is used to represent the serializable state of a ban
// manager instance.
type serializedBanList struct {
	Version int
	Entries []*serializedBanEntry
}

// canonicalSubnet masks the subnet IP and returns the subnet along with its
// canonical string key.
func canonicalSubnet(subnet *net.IPNet) (*net.IPNet, string) {
	masked := &net.IPNet{IP: subnet.IP.Mask(subnet.Mask), Mask: subnet.Mask}
	return masked, masked.String()
}

// hostSubnet returns the single-host subnet for the provided IP (a /32 for
// IPv4 and a /128 for IPv6).
func hostSubnet(ip net.IP) *net.IPNet {
	if ip4 := ip.To4(); ip4 != nil {
		return &net.IPNet{IP: ip4, Mask: net.CIDRMask(32, 32)}
	}
	return &net.IPNet{IP: ip, Mask: net.CIDRMask(128, 128)}
}

// Ban adds the provided subnet to the ban list with an expiry of now plus the
// provided duration.  A non-positive duration applies DefaultBanDuration.
// Banning a subnet that is already banned replaces its expiry.
//
// This function is safe for concurrent access.
func (b *BanManager) Ban(subnet *net.IPNet, duration time.Duration) {
	if duration <= 0 {
		duration = DefaultBanDuration
	}
	expiry := time.Now().Add(duration)

	masked, key := canonicalSubnet(subnet)
	b.mtx.Lock()
	b.banned[key] = &banEntry{subnet: masked, expiry: expiry}
	b.dirty = true
	b.mtx.Unlock()

	log.Infof("Banned %s until %v", key, expiry)
}

// BanAddr bans the single-host subnet of the provided IP.  See Ban.
//
// This function is safe for concurrent access.
func (b *BanManager) BanAddr(ip net.IP, duration time.Duration) {
	b.Ban(hostSubnet(ip), duration)
}

// IsBanned returns whether the provided IP is currently banned.  When
// multiple entries cover the IP, the most specific match (the longest
// prefix) decides, so an expired host ban overrides a still-active covering
// network ban.  Expired entries are not evicted here; that happens at sweep
// time.
//
// This function is safe for concurrent access.
func (b *BanManager) IsBanned(ip net.IP) bool {
	b.mtx.Lock()
	defer b.mtx.Unlock()

	var best *banEntry
	bestOnes := -1
	for _, entry := range b.banned {
		if !entry.subnet.Contains(ip) {
			continue
		}
		ones, _ := entry.subnet.Mask.Size()
		if ones > bestOnes {
			best = entry
			bestOnes = ones
		}
	}
	if best == nil {
		return false
	}
	return best.expiry.After(time.Now())
}

// Unban removes the provided subnet from the ban list.  It returns whether
// the subnet was present.
//
// This function is safe for concurrent access.
func (b *BanManager) Unban(subnet *net.IPNet) bool {
	_, key := canonicalSubnet(subnet)

	b.mtx.Lock()
	defer b.mtx.Unlock()

	if _, ok := b.banned[key]; !ok {
		return false
	}
	delete(b.banned, key)
	b.dirty = true
	log.Infof("Unbanned %s", key)
	return true
}

// UnbanAddr removes the single-host subnet of the provided IP from the ban
// list.  See Unban.
//
// This function is safe for concurrent access.
func (b *BanManager) UnbanAddr(ip net.IP) bool {
	return b.Unban(hostSubnet(ip))
}

// Clear removes all entries from the ban list.
//
// This function is safe for concurrent access.
func (b *BanManager) Clear() {
	b.mtx.Lock()
	b.banned = make(map[string]*banEntry)
	b.dirty = true
	b.mtx.Unlock()
}

// Sweep removes all entries whose ban has expired and marks the ban list
// dirty when anything was removed.
//
// This function is safe for concurrent access.
func (b *BanManager) Sweep() {
	now := time.Now()

	b.mtx.Lock()
	defer b.mtx.Unlock()

	for key, entry := range b.banned {
		if !entry.expiry.After(now) {
			delete(b.banned, key)
			b.dirty = true
			log.Debugf("Swept expired ban %s", key)
		}
	}
}

// GetBanned returns a snapshot of the ban list keyed by the canonical subnet
// representation.
//
// This function is safe for concurrent access.
func (b *BanManager) GetBanned() map[string]time.Time {
	b.mtx.Lock()
	defer b.mtx.Unlock()

	snapshot := make(map[string]time.Time, len(b.banned))
	for key, entry := range b.banned {
		snapshot[key] = entry.expiry
	}
	return snapshot
}

// SetBanned replaces the ban list with the provided snapshot.  Entries whose
// subnet fails to parse are skipped.
//
// This function is safe for concurrent access.
func (b *BanManager) SetBanned(banmap map[string]time.Time) {
	b.mtx.Lock()
	defer b.mtx.Unlock()

	b.banned = make(map[string]*banEntry, len(banmap))
	for key, expiry := range banmap {
		_, subnet, err := net.ParseCIDR(key)
		if err != nil {
			log.Warnf("Skipping invalid banned subnet %q: %v", key, err)
			continue
		}
		masked, canonKey := canonicalSubnet(subnet)
		b.banned[canonKey] = &banEntry{subnet: masked, expiry: expiry}
	}
	b.dirty = true
}

// banHandler is the main handler for the ban manager.  It must be run as a
// goroutine.
func (b *BanManager) banHandler() {
	dumpTicker := time.NewTicker(dumpBanlistInterval)
	defer dumpTicker.Stop()
	sweepTicker := time.NewTicker(sweepInterval)
	defer sweepTicker.Stop()

out:
	for {
		select {
		case <-dumpTicker.C:
			b.saveBanlist()

		case <-sweepTicker.C:
			b.Sweep()

		case <-b.quit:
			break out
		}
	}
	b.Sweep()
	b.saveBanlist()
	b.wg.Done()
	log.Trace("Ban handler done")
}

// saveBanlist saves the ban list to a file so it can be read back in at next
// run.  Nothing is written when there are no unwritten changes.
func (b *BanManager) saveBanlist() {
	b.mtx.Lock()
	defer b.mtx.Unlock()

	if !b.dirty {
		return
	}

	sbl := new(serializedBanList)
	sbl.Version = serialisationVersion
	sbl.Entries = make([]*serializedBanEntry, 0, len(b.banned))
	for key, entry := range b.banned {
		sbl.Entries = append(sbl.Entries, &serializedBanEntry{
			Subnet: key,
			Expiry: entry.expiry.Unix(),
		})
	}

	// Write temporary file and then move it into place.
	tmpfile := b.banFile + ".new"
	w, err := os.Create(tmpfile)
	if err != nil {
		log.Errorf("Error opening file %s: %v", tmpfile, err)
		return
	}
	enc := json.NewEncoder(w)
	if err := enc.Encode(&sbl); err != nil {
		log.Errorf("Failed to encode file %s: %v", tmpfile, err)
		w.Close()
		return
	}
	if err := w.Close(); err != nil {
		log.Errorf("Error closing file %s: %v", tmpfile, err)
		return
	}
	if err := os.Rename(tmpfile, b.banFile); err != nil {
		log.Errorf("Error writing file %s: %v", b.banFile, err)
		return
	}
	b.dirty = false
}

// loadBanlist loads the banned subnets from a saved file.  If the file is
// empty, missing, or malformed then the ban manager starts empty.
func (b *BanManager) loadBanlist() {
	b.mtx.Lock()
	defer b.mtx.Unlock()

	err := b.deserializeBanlist()
	if err != nil {
		log.Errorf("Failed to parse file %s: %v", b.banFile, err)
		// if it is invalid we nuke the old one unconditionally.
		err = os.Remove(b.banFile)
		if err != nil && !os.IsNotExist(err) {
			log.Warnf("Failed to remove corrupt ban file %s: %v",
				b.banFile, err)
		}
		b.banned = make(map[string]*banEntry)
		b.dirty = true
		return
	}
	log.Infof("Loaded %d banned subnets from file '%s'", len(b.banned),
		b.banFile)
}

func (b *BanManager) deserializeBanlist() error {
	_, err := os.Stat(b.banFile)
	if os.IsNotExist(err) {
		return nil
	}
	r, err := os.Open(b.banFile)
	if err != nil {
		return err
	}
	defer r.Close()

	var sbl serializedBanList
	dec := json.NewDecoder(r)
	if err := dec.Decode(&sbl); err != nil {
		return err
	}

	if sbl.Version != serialisationVersion {
		return errUnknownVersion(sbl.Version)
	}

	for _, entry := range sbl.Entries {
		_, subnet, err := net.ParseCIDR(entry.Subnet)
		if err != nil {
			return err
		}
		masked, key := canonicalSubnet(subnet)
		b.banned[key] = &banEntry{
			subnet: masked,
			expiry: time.Unix(entry.Expiry, 0),
		}
	}
	return nil
}

// Start begins the ban handler which sweeps expired entries and performs
// interval based writes.  If the ban manager is starting or has already been
// started, invoking this method has no effect.
//
// This function is safe for concurrent access.
func (b *BanManager) Start() {
	if atomic.AddInt32(&b.started, 1) != 1 {
		return
	}

	log.Trace("Starting ban manager")
	b.loadBanlist()

	b.wg.Add(1)
	go b.banHandler()
}

// Stop gracefully shuts down the ban manager by stopping the main handler
// after a final sweep and flush.
//
// This function is safe for concurrent access.
func (b *BanManager) Stop() error {
	if atomic.AddInt32(&b.shutdown, 1) != 1 {
		log.Warnf("Ban manager is already in the process of shutting down")
		return nil
	}

	log.Infof("Ban manager shutting down")
	close(b.quit)
	b.wg.Wait()
	return nil
}

// New returns a new neutron ban manager.
// Use Start to begin processing asynchronous sweeps and flushes.
func New(dataDir string) *BanManager {
	return &BanManager{
		banFile: filepath.Join(dataDir, banlistFilename),
		banned:  make(map[string]*banEntry),
		quit:    make(chan struct{}),
	}
}
