// Copyright (c) 2019 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

/*
Package rpcserver includes all RPC server interfaces and types, and will house
the RPC server in the future.

Overview

This package currently contains 3 interfaces used to allow the various systems
the RPC server interacts with to be loosely coupled.  In the future it will
contain all of the pieces of code pertaining implementing the RPC server.
*/
package rpcserver
