// Copyright (c) 2014-2016 The btcsuite developers
// Copyright (c) 2024-2026 The Neutron developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package chaincfg

import (
	"github.com/marerovalentin/neutron/wire"
)

// DNSSeed identifies a DNS seed.
type DNSSeed struct {
	// Host defines the hostname of the seed.
	Host string

	// HasFiltering defines whether the seed supports filtering
	// by service flags (wire.ServiceFlag).
	HasFiltering bool
}

// String returns the hostname of the DNS seed in human-readable form.
func (d DNSSeed) String() string {
	return d.Host
}

// Params defines a neutron network by its parameters.  These parameters may be
// used by neutron applications to differentiate networks as well as addresses
// and keys for one network from those intended for use on another network.
type Params struct {
	// Name defines a human-readable identifier for the network.
	Name string

	// Net defines the magic bytes used to identify the network.
	Net wire.CurrencyNet

	// DefaultPort defines the default peer-to-peer port for the network.
	DefaultPort string

	// DNSSeeds defines a list of DNS seeds for the network that are used
	// as one method to discover peers.
	DNSSeeds []DNSSeed

	// AcceptNonStdTxs is a mempool param to either accept and relay non
	// standard txs to the network or reject them.  The interpretation is
	// owned by external subsystems; the networking core only carries it.
	AcceptNonStdTxs bool
}

// MainNetParams defines the network parameters for the main neutron network.
var MainNetParams = Params{
	Name:        "mainnet",
	Net:         wire.MainNet,
	DefaultPort: "32001",
	DNSSeeds: []DNSSeed{
		{"seed.neutroncoin.com", true},
		{"seed2.neutroncoin.com", true},
		{"dnsseed.ntrnnodes.net", false},
		{"seed.ntrn.galaxycluster.org", false},
	},
}

// TestNet3Params defines the network parameters for the test neutron network
// (version 3).  Not to be confused with the simulation test network, this
// network is sometimes simply called "testnet".
var TestNet3Params = Params{
	Name:        "testnet3",
	Net:         wire.TestNet3,
	DefaultPort: "32011",
	DNSSeeds: []DNSSeed{
		{"testnet-seed.neutroncoin.com", true},
	},
}

// SimNetParams defines the network parameters for the simulation test neutron
// network.  This network is similar to the normal test network except it is
// intended for private use within a group of individuals doing simulation
// testing.  The functionality is intended to differ in that the only nodes
// which are specifically specified are used to create the network rather than
// following normal discovery rules.  This is important as otherwise it would
// just turn into another public testnet.
var SimNetParams = Params{
	Name:        "simnet",
	Net:         wire.SimNet,
	DefaultPort: "32021",
	DNSSeeds:    []DNSSeed{}, // NOTE: There must NOT be any seeds.
}
