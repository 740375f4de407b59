package protocol

import "encoding/binary"

// RoomInfo is the wire representation of one room entry inside a
// MsgRoomList payload.
type RoomInfo struct {
	RoomID         int32
	Title          string
	CurrentPlayers int32
	MaxPlayers     int32
	Status         uint8
}

const roomInfoWireSize = 4 + titleFieldSize + 4 + 4 + 1

func putRoomInfo(buf []byte, r RoomInfo) error {
	binary.LittleEndian.PutUint32(buf[0:4], uint32(r.RoomID))
	if err := putFixedString(buf[4:4+titleFieldSize], r.Title); err != nil {
		return err
	}
	off := 4 + titleFieldSize
	binary.LittleEndian.PutUint32(buf[off:off+4], uint32(r.CurrentPlayers))
	binary.LittleEndian.PutUint32(buf[off+4:off+8], uint32(r.MaxPlayers))
	buf[off+8] = r.Status
	return nil
}

func getRoomInfo(buf []byte) RoomInfo {
	off := 4 + titleFieldSize
	return RoomInfo{
		RoomID:         int32(binary.LittleEndian.Uint32(buf[0:4])),
		Title:          getFixedString(buf[4 : 4+titleFieldSize]),
		CurrentPlayers: int32(binary.LittleEndian.Uint32(buf[off : off+4])),
		MaxPlayers:     int32(binary.LittleEndian.Uint32(buf[off+4 : off+8])),
		Status:         buf[off+8],
	}
}

// EncodeRequestRoomList encodes a bare MsgRequestRoomList packet.
func EncodeRequestRoomList() []byte {
	buf := make([]byte, HeaderSize)
	PutHeader(buf, Header{Size: HeaderSize, Type: MsgRequestRoomList})
	return buf
}

// EncodeRoomList encodes the current room directory.
func EncodeRoomList(rooms []RoomInfo) []byte {
	size := HeaderSize + 4 + len(rooms)*roomInfoWireSize
	buf := make([]byte, size)
	PutHeader(buf, Header{Size: uint16(size), Type: MsgRoomList})
	binary.LittleEndian.PutUint32(buf[HeaderSize:HeaderSize+4], uint32(len(rooms)))
	off := HeaderSize + 4
	for _, r := range rooms {
		// Encoding errors here would mean a room title already failed
		// validation earlier in the pipeline; this path assumes
		// domain-side invariants already hold.
		_ = putRoomInfo(buf[off:off+roomInfoWireSize], r)
		off += roomInfoWireSize
	}
	return buf
}

// DecodeRoomList parses a MsgRoomList payload (body only, header
// stripped).
func DecodeRoomList(body []byte) ([]RoomInfo, error) {
	if len(body) < 4 {
		return nil, ErrTruncated
	}
	count := int(binary.LittleEndian.Uint32(body[0:4]))
	need := 4 + count*roomInfoWireSize
	if len(body) < need {
		return nil, ErrTruncated
	}
	rooms := make([]RoomInfo, count)
	off := 4
	for i := 0; i < count; i++ {
		rooms[i] = getRoomInfo(body[off : off+roomInfoWireSize])
		off += roomInfoWireSize
	}
	return rooms, nil
}

// EncodeCreateRoom encodes a MsgCreateRoom request.
func EncodeCreateRoom(title string, maxPlayers int32) ([]byte, error) {
	size := HeaderSize + titleFieldSize + 4
	buf := make([]byte, size)
	PutHeader(buf, Header{Size: uint16(size), Type: MsgCreateRoom})
	if err := putFixedString(buf[HeaderSize:HeaderSize+titleFieldSize], title); err != nil {
		return nil, err
	}
	binary.LittleEndian.PutUint32(buf[HeaderSize+titleFieldSize:], uint32(maxPlayers))
	return buf, nil
}

// CreateRoomPayload is the decoded body of a MsgCreateRoom request.
type CreateRoomPayload struct {
	Title      string
	MaxPlayers int32
}

// DecodeCreateRoom parses a MsgCreateRoom payload (body only).
func DecodeCreateRoom(body []byte) (CreateRoomPayload, error) {
	if len(body) < titleFieldSize+4 {
		return CreateRoomPayload{}, ErrTruncated
	}
	return CreateRoomPayload{
		Title:      getFixedString(body[:titleFieldSize]),
		MaxPlayers: int32(binary.LittleEndian.Uint32(body[titleFieldSize : titleFieldSize+4])),
	}, nil
}

// EncodeRoomCreated encodes a MsgRoomCreated response.
func EncodeRoomCreated(roomID int32, success bool) []byte {
	size := HeaderSize + 4 + 1
	buf := make([]byte, size)
	PutHeader(buf, Header{Size: uint16(size), Type: MsgRoomCreated})
	binary.LittleEndian.PutUint32(buf[HeaderSize:HeaderSize+4], uint32(roomID))
	buf[HeaderSize+4] = boolByte(success)
	return buf
}

// RoomCreatedPayload is the decoded body of a MsgRoomCreated response.
type RoomCreatedPayload struct {
	RoomID  int32
	Success bool
}

// DecodeRoomCreated parses a MsgRoomCreated payload (body only).
func DecodeRoomCreated(body []byte) (RoomCreatedPayload, error) {
	if len(body) < 5 {
		return RoomCreatedPayload{}, ErrTruncated
	}
	return RoomCreatedPayload{
		RoomID:  int32(binary.LittleEndian.Uint32(body[0:4])),
		Success: body[4] != 0,
	}, nil
}

// EncodeJoinRoom encodes a MsgJoinRoom request.
func EncodeJoinRoom(roomID int32) []byte {
	size := HeaderSize + 4
	buf := make([]byte, size)
	PutHeader(buf, Header{Size: uint16(size), Type: MsgJoinRoom})
	binary.LittleEndian.PutUint32(buf[HeaderSize:], uint32(roomID))
	return buf
}

// DecodeJoinRoom parses a MsgJoinRoom payload (body only).
func DecodeJoinRoom(body []byte) (int32, error) {
	if len(body) < 4 {
		return 0, ErrTruncated
	}
	return int32(binary.LittleEndian.Uint32(body[0:4])), nil
}

// EncodeRoomJoined encodes a MsgRoomJoined response.
func EncodeRoomJoined(roomID int32, success bool) []byte {
	size := HeaderSize + 4 + 1
	buf := make([]byte, size)
	PutHeader(buf, Header{Size: uint16(size), Type: MsgRoomJoined})
	binary.LittleEndian.PutUint32(buf[HeaderSize:HeaderSize+4], uint32(roomID))
	buf[HeaderSize+4] = boolByte(success)
	return buf
}

// RoomJoinedPayload is the decoded body of a MsgRoomJoined response.
type RoomJoinedPayload struct {
	RoomID  int32
	Success bool
}

// DecodeRoomJoined parses a MsgRoomJoined payload (body only).
func DecodeRoomJoined(body []byte) (RoomJoinedPayload, error) {
	if len(body) < 5 {
		return RoomJoinedPayload{}, ErrTruncated
	}
	return RoomJoinedPayload{
		RoomID:  int32(binary.LittleEndian.Uint32(body[0:4])),
		Success: body[4] != 0,
	}, nil
}

// EncodeLeaveRoom encodes a bare MsgLeaveRoom request.
func EncodeLeaveRoom() []byte {
	buf := make([]byte, HeaderSize)
	PutHeader(buf, Header{Size: HeaderSize, Type: MsgLeaveRoom})
	return buf
}

// EncodeRoomLeft encodes a MsgRoomLeft response.
func EncodeRoomLeft(success bool) []byte {
	size := HeaderSize + 1
	buf := make([]byte, size)
	PutHeader(buf, Header{Size: uint16(size), Type: MsgRoomLeft})
	buf[HeaderSize] = boolByte(success)
	return buf
}

// DecodeRoomLeft parses a MsgRoomLeft payload (body only).
func DecodeRoomLeft(body []byte) (bool, error) {
	if len(body) < 1 {
		return false, ErrTruncated
	}
	return body[0] != 0, nil
}

// EncodeError encodes a MsgError response carrying a human-readable
// message, truncated to fit the fixed field if necessary.
func EncodeError(message string) []byte {
	size := HeaderSize + messageFieldSize
	buf := make([]byte, size)
	PutHeader(buf, Header{Size: uint16(size), Type: MsgError})
	if len(message) > messageFieldSize-1 {
		message = message[:messageFieldSize-1]
	}
	_ = putFixedString(buf[HeaderSize:], message)
	return buf
}

// DecodeError parses a MsgError payload (body only).
func DecodeError(body []byte) (string, error) {
	if len(body) < messageFieldSize {
		return "", ErrTruncated
	}
	return getFixedString(body[:messageFieldSize]), nil
}

func boolByte(b bool) byte {
	if b {
		return 1
	}
	return 0
}
