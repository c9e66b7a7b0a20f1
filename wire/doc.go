// Copyright (c) 2013-2015 The btcsuite developers
// Copyright (c) 2024-2026 The Neutron developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

/*
Package wire implements the neutron wire protocol.

For the complete details of the bitcoin-derived protocol this package speaks,
see the protocol documentation of the original project.  The following only
serves as a quick overview to provide information on how to use the package.

At a high level, this package provides support for marshalling and
unmarshalling supported neutron messages to and from the wire.  This package
does not deal with the specifics of message handling such as what to do when
a message is received.  This provides the caller with a high level of
flexibility.

# Neutron Message Overview

The neutron protocol consists of exchanging messages between peers.  Each
message is preceded by a header which identifies information about it such as
which neutron network it is a part of, its type, how big it is, and a checksum
to verify validity.  All encoding and decoding of message headers is handled
by this package.

To accomplish this, there is a generic interface for neutron messages named
Message which allows messages of any type to be read, written, or passed
around through channels, functions, etc.  In addition, concrete
implementations of most of the currently supported neutron messages are
provided.  For these supported messages, all of the details of marshalling
and unmarshalling to and from the wire using neutron encoding are handled so
the caller doesn't have to concern themselves with the specifics.

# Message Interaction

The following provides a quick summary of how the messages are intended to
interact with one another.  As stated above, these interactions are not
directly handled by this package.

The initial handshake consists of two peers sending each other a version
message (MsgVersion) followed by responding with a verack message
(MsgVerAck).  Both peers use the information in the version message
(MsgVersion) to negotiate things such as protocol version and supported
services with each other.  Once the initial handshake is complete, the
following chart indicates message interactions in no particular order.

	Peer A Sends                          Peer B Responds
	-----------------------------------------------------------------------
	getaddr message (MsgGetAddr)          addr message (MsgAddr)
	inv message (MsgInv)                  getdata message (MsgGetData)
	getdata message (MsgGetData)          the requested data or
	                                      notfound message (MsgNotFound)
	ping message (MsgPing)                pong message (MsgPong)

# Errors

Errors returned by this package are either the raw errors provided by
underlying calls to read/write from streams such as io.EOF,
io.ErrUnexpectedEOF, and io.ErrShortWrite, or of type wire.MessageError.
This allows the caller to differentiate between general IO errors and
malformed messages through type assertions.  In addition, callers can
programmatically determine the specific reason an error occurred by checking
against the ErrorKind constants with errors.Is.
*/
package wire
