// Copyright (c) 2024-2026 The Neutron developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package banmgr

import (
	"net"
	"os"
	"testing"
	"time"
)

func mustCIDR(t *testing.T, s string) *net.IPNet {
	t.Helper()
	_, subnet, err := net.ParseCIDR(s)
	if err != nil {
		t.Fatalf("failed to parse %q: %v", s, err)
	}
	return subnet
}

func TestBanUnban(t *testing.T) {
	b := New(t.TempDir())

	ip := net.ParseIP("10.1.2.3")
	if b.IsBanned(ip) {
		t.Fatal("fresh manager should not have bans")
	}

	b.BanAddr(ip, time.Hour)
	if !b.IsBanned(ip) {
		t.Fatal("banned address should report banned")
	}
	if b.IsBanned(net.ParseIP("10.1.2.4")) {
		t.Fatal("host ban must not cover neighboring addresses")
	}

	if !b.UnbanAddr(ip) {
		t.Fatal("unban of present entry should report true")
	}
	if b.IsBanned(ip) {
		t.Fatal("unbanned address should not report banned")
	}
	if b.UnbanAddr(ip) {
		t.Fatal("unban of absent entry should report false")
	}
}

func TestBanSubnetMostSpecific(t *testing.T) {
	b := New(t.TempDir())

	// Ban an entire /16 and check coverage.
	b.Ban(mustCIDR(t, "172.16.0.0/16"), time.Hour)
	if !b.IsBanned(net.ParseIP("172.16.200.1")) {
		t.Fatal("address within banned subnet should report banned")
	}
	if b.IsBanned(net.ParseIP("172.17.0.1")) {
		t.Fatal("address outside banned subnet should not report banned")
	}

	// An expired host entry must decide over the still-active /16.
	b.Ban(mustCIDR(t, "172.16.200.1/32"), time.Nanosecond)
	time.Sleep(time.Millisecond)
	if b.IsBanned(net.ParseIP("172.16.200.1")) {
		t.Fatal("expired host entry should override covering subnet ban")
	}
	if !b.IsBanned(net.ParseIP("172.16.200.2")) {
		t.Fatal("other addresses in subnet should remain banned")
	}
}

func TestBanExpiry(t *testing.T) {
	b := New(t.TempDir())

	ip := net.ParseIP("203.0.113.5")
	b.BanAddr(ip, time.Millisecond)
	time.Sleep(5 * time.Millisecond)
	if b.IsBanned(ip) {
		t.Fatal("expired ban should not report banned")
	}

	// Expired entries are only evicted at sweep time.
	if len(b.GetBanned()) != 1 {
		t.Fatal("expired entry should remain until swept")
	}
	b.Sweep()
	if len(b.GetBanned()) != 0 {
		t.Fatal("sweep should remove expired entries")
	}
}

func TestBanSnapshotRestore(t *testing.T) {
	b := New(t.TempDir())
	b.Ban(mustCIDR(t, "192.0.2.0/24"), time.Hour)
	b.BanAddr(net.ParseIP("198.51.100.7"), time.Hour)

	snapshot := b.GetBanned()
	if len(snapshot) != 2 {
		t.Fatalf("snapshot has %d entries, want 2", len(snapshot))
	}

	b2 := New(t.TempDir())
	b2.SetBanned(snapshot)
	if !b2.IsBanned(net.ParseIP("192.0.2.42")) {
		t.Fatal("restored subnet ban missing")
	}
	if !b2.IsBanned(net.ParseIP("198.51.100.7")) {
		t.Fatal("restored host ban missing")
	}
}

func TestBanPersistence(t *testing.T) {
	dir := t.TempDir()
	b := New(dir)
	b.Ban(mustCIDR(t, "192.0.2.0/24"), time.Hour)
	b.saveBanlist()

	// A second save with no changes must not rewrite the file.
	fi, err := os.Stat(b.banFile)
	if err != nil {
		t.Fatalf("ban file missing after save: %v", err)
	}
	b.saveBanlist()
	fi2, err := os.Stat(b.banFile)
	if err != nil {
		t.Fatalf("ban file missing after second save: %v", err)
	}
	if !fi.ModTime().Equal(fi2.ModTime()) {
		t.Fatal("clean ban list should not be rewritten")
	}

	// Reload and verify the ban survived.
	b2 := New(dir)
	b2.loadBanlist()
	if !b2.IsBanned(net.ParseIP("192.0.2.9")) {
		t.Fatal("ban did not survive a save/load cycle")
	}
}

func TestCorruptBanFile(t *testing.T) {
	dir := t.TempDir()
	b := New(dir)
	if err := os.WriteFile(b.banFile, []byte("{broken"), 0644); err != nil {
		t.Fatalf("failed to write corrupt ban file: %v", err)
	}
	b.loadBanlist()
	if len(b.GetBanned()) != 0 {
		t.Fatal("corrupt ban file should result in empty ban list")
	}
}
