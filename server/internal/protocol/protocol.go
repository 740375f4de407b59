// Package protocol implements the fixed, length-prefixed binary wire
// format exchanged between clients and the lobby game loop: a 4-byte
// header followed by a type-specific, packed little-endian payload.
package protocol

import (
	"encoding/binary"
	"errors"
)

// MsgType names a packet's payload layout.
type MsgType uint16

const (
	MsgRequestRoomList MsgType = iota + 1
	MsgRoomList
	MsgCreateRoom
	MsgRoomCreated
	MsgJoinRoom
	MsgRoomJoined
	MsgLeaveRoom
	MsgRoomLeft
	MsgError
)

const (
	// HeaderSize is the fixed size, in bytes, of every packet's header.
	HeaderSize = 4
	// MinPacketSize is the smallest a complete packet can be: a header
	// with no payload.
	MinPacketSize = HeaderSize
	// MaxPacketSize bounds how large a single packet, header included,
	// is allowed to be. A peer declaring a larger size is disconnected.
	MaxPacketSize = 65536

	titleFieldSize   = 64
	messageFieldSize = 256
)

var (
	ErrPacketTooLarge  = errors.New("protocol: packet exceeds MaxPacketSize")
	ErrPacketTooSmall  = errors.New("protocol: packet is smaller than MinPacketSize")
	ErrTruncated       = errors.New("protocol: buffer shorter than declared field")
	ErrFieldTooLong    = errors.New("protocol: string exceeds fixed field width")
	ErrUnknownMsgType  = errors.New("protocol: unrecognized message type")
)

// Header is the 4-byte envelope in front of every packet: the total
// packet size (header included) and the message type, both little-endian
// uint16s.
type Header struct {
	Size uint16
	Type MsgType
}

// PutHeader writes h into the first HeaderSize bytes of buf.
func PutHeader(buf []byte, h Header) {
	binary.LittleEndian.PutUint16(buf[0:2], h.Size)
	binary.LittleEndian.PutUint16(buf[2:4], uint16(h.Type))
}

// ParseHeader reads a Header out of the first HeaderSize bytes of buf.
// buf must be at least HeaderSize long.
func ParseHeader(buf []byte) (Header, error) {
	if len(buf) < HeaderSize {
		return Header{}, ErrTruncated
	}
	h := Header{
		Size: binary.LittleEndian.Uint16(buf[0:2]),
		Type: MsgType(binary.LittleEndian.Uint16(buf[2:4])),
	}
	if int(h.Size) < MinPacketSize {
		return Header{}, ErrPacketTooSmall
	}
	if int(h.Size) > MaxPacketSize {
		return Header{}, ErrPacketTooLarge
	}
	return h, nil
}

// putFixedString writes s, NUL-padded, into a fixed-width field. A string
// that does not fit together with its NUL terminator is not truncated:
// nothing is written and ErrFieldTooLong is returned.
func putFixedString(buf []byte, s string) error {
	if len(s) > len(buf)-1 {
		return ErrFieldTooLong
	}
	clear(buf)
	copy(buf, s)
	return nil
}

func getFixedString(buf []byte) string {
	n := 0
	for n < len(buf) && buf[n] != 0 {
		n++
	}
	return string(buf[:n])
}
