// Copyright (c) 2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package spendpruner

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/marerovalentin/neutron/database"
	_ "github.com/marerovalentin/neutron/database/ffldb"
	"github.com/marerovalentin/neutron/wire"
)

// TestSerializeConsumerDependencies ensures consumer dependencies serialize as
// intended.
func TestSerializeConsumerDependencies(t *testing.T) {
	tests := []struct {
		name     string
		deps     []string
		expected []byte
	}{{
		name:     "no dependencies",
		deps:     []string{},
		expected: []byte{},
	}, {
		name:     "one dependency",
		deps:     []string{"alpha"},
		expected: []byte("alpha"),
	}, {
		name:     "odd number of dependencies",
		deps:     []string{"alpha", "bravo", "charlie"},
		expected: []byte("alpha,bravo,charlie"),
	}, {
		name:     "even number of dependencies",
		deps:     []string{"alpha", "bravo", "charlie", "echo"},
		expected: []byte("alpha,bravo,charlie,echo"),
	}}

	for _, test := range tests {
		serialized := serializeSpendConsumerDependencies(test.deps)
		if !bytes.Equal(serialized, test.expected) {
			t.Errorf("%q: unexpected serialized mismatch, "+
				"expected %q, got %q", test.name, test.expected, serialized)
			continue
		}
	}
}

// TestDeserializeConsumerDependencies ensures consumer dependencies
// deserialize as intended.
func TestDeserializeConsumerDependencies(t *testing.T) {
	tests := []struct {
		name       string
		serialized []byte
		expected   []string
	}{{
		name:       "no dependencies",
		serialized: []byte{},
		expected:   []string{},
	}, {
		name:       "one dependency",
		serialized: []byte("alpha"),
		expected:   []string{"alpha"},
	}, {
		name:       "odd number of dependencies",
		serialized: []byte("alpha,bravo,charlie"),
		expected:   []string{"alpha", "bravo", "charlie"},
	}, {
		name:       "even number of dependencies",
		serialized: []byte("alpha,bravo,charlie,echo"),
		expected:   []string{"alpha", "bravo", "charlie", "echo"},
	}}

	for _, test := range tests {
		deserialized := deserializeSpendConsumerDependencies(test.serialized)
		for idx := range test.expected {
			if deserialized[idx] != test.expected[idx] {
				t.Errorf("%q: unexpected dependency mismatch at index %d, "+
					"expected %q, got %q", test.name, idx,
					test.expected[idx], deserialized[idx])
				continue
			}
		}
	}
}

// createdDB creates the test database. This is intended to be used for testing
// purposes only.
func createDB() (database.DB, func(), error) {
	dbPath := filepath.Join(os.TempDir(), "spdb")

	err := os.MkdirAll(dbPath, 0700)
	if err != nil {
		return nil, nil, err
	}

	db, err := database.Create("ffldb", dbPath, wire.SimNet)
	if err != nil {
		os.RemoveAll(dbPath)
		return nil, nil, err
	}

	err = initConsumerDependenciesBucket(db)
	if err != nil {
		os.RemoveAll(dbPath)
		return nil, nil, err
	}

	err = initSpendJournalHeightsBucket(db)
	if err != nil {
		os.RemoveAll(dbPath)
		return nil, nil, err
	}

	teardown := func() {
		db.Close()
		os.RemoveAll(dbPath)
	}

	return db, teardown, nil
}
