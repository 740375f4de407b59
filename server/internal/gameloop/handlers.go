package gameloop

import (
	"errors"

	"github.com/go-playground/validator/v10"

	"github.com/phuhao00/minigames-server/server/internal/model"
	"github.com/phuhao00/minigames-server/server/internal/protocol"
	"github.com/phuhao00/minigames-server/server/internal/roommanager"
	"github.com/phuhao00/minigames-server/server/internal/session"
)

var validate = validator.New()

type createRoomInput struct {
	Title      string `validate:"required,max=63"`
	MaxPlayers int32  `validate:"gte=2,lte=10"`
}

func (g *GameLoop) onReceived(id session.ID, packet []byte) {
	player, ok := g.players[id]
	if !ok {
		return // event from a session torn down before its own Connected was processed
	}
	h, err := protocol.ParseHeader(packet)
	if err != nil {
		g.reply(id, protocol.EncodeError("malformed packet"))
		return
	}
	body := packet[protocol.HeaderSize:]

	switch h.Type {
	case protocol.MsgRequestRoomList:
		g.handleRequestRoomList(id)
	case protocol.MsgCreateRoom:
		g.handleCreateRoom(id, player, body)
	case protocol.MsgJoinRoom:
		g.handleJoinRoom(id, player, body)
	case protocol.MsgLeaveRoom:
		g.handleLeaveRoom(id, player)
	default:
		g.reply(id, protocol.EncodeError("unrecognized message type"))
	}
}

func (g *GameLoop) handleRequestRoomList(id session.ID) {
	rooms := g.rooms.RoomList()
	infos := make([]protocol.RoomInfo, 0, len(rooms))
	for _, r := range rooms {
		infos = append(infos, toRoomInfo(r))
	}
	g.reply(id, protocol.EncodeRoomList(infos))
}

func (g *GameLoop) handleCreateRoom(id session.ID, player *model.Player, body []byte) {
	payload, err := protocol.DecodeCreateRoom(body)
	if err != nil {
		g.reply(id, protocol.EncodeError("malformed create_room payload"))
		return
	}
	input := createRoomInput{Title: payload.Title, MaxPlayers: payload.MaxPlayers}
	if err := validate.Struct(input); err != nil {
		g.reply(id, protocol.EncodeRoomCreated(-1, false))
		g.reply(id, protocol.EncodeError("Invalid room parameters"))
		return
	}

	room, err := g.rooms.CreateRoom(input.Title, input.MaxPlayers, player)
	if err != nil {
		g.reply(id, protocol.EncodeRoomCreated(-1, false))
		if errors.Is(err, roommanager.ErrTitleTaken) {
			g.reply(id, protocol.EncodeError("Room title already exists"))
		} else {
			g.reply(id, protocol.EncodeError("Invalid room parameters"))
		}
		return
	}
	g.reply(id, protocol.EncodeRoomCreated(room.ID, true))
}

func (g *GameLoop) handleJoinRoom(id session.ID, player *model.Player, body []byte) {
	roomID, err := protocol.DecodeJoinRoom(body)
	if err != nil {
		g.reply(id, protocol.EncodeError("malformed join_room payload"))
		return
	}
	_, ok := g.rooms.JoinRoom(roomID, player)
	g.reply(id, protocol.EncodeRoomJoined(roomID, ok))
	if !ok {
		g.reply(id, protocol.EncodeError("Failed to join room"))
	}
}

func (g *GameLoop) handleLeaveRoom(id session.ID, player *model.Player) {
	ok := g.rooms.LeaveRoom(player)
	g.reply(id, protocol.EncodeRoomLeft(ok))
}

func (g *GameLoop) reply(id session.ID, packet []byte) {
	sess, ok := g.sender.Session(id)
	if !ok {
		return
	}
	g.sender.RequestSend(sess, packet)
}

func toRoomInfo(r *model.Room) protocol.RoomInfo {
	return protocol.RoomInfo{
		RoomID:         r.ID,
		Title:          r.Title,
		CurrentPlayers: r.CurrentPlayers(),
		MaxPlayers:     r.MaxPlayers,
		Status:         uint8(r.Status()),
	}
}
