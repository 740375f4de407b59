// Command miniclient is an interactive smoke-test client for miniserver:
// it speaks the binary room protocol directly so a developer can poke at
// a running server from a terminal without a full game client.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"

	"github.com/phuhao00/minigames-server/server/internal/protocol"
)

func main() {
	host := flag.String("host", "localhost", "server host")
	port := flag.Int("port", 6000, "server port")
	flag.Parse()

	conn, err := net.Dial("tcp", fmt.Sprintf("%s:%d", *host, *port))
	if err != nil {
		fmt.Printf("failed to connect: %v\n", err)
		os.Exit(1)
	}
	defer conn.Close()

	fmt.Printf("connected to %s:%d\n", *host, *port)
	fmt.Println("commands: /list, /create <title> <max>, /join <room_id>, /leave, /quit")

	go readLoop(conn)

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		if !handleCommand(conn, strings.TrimSpace(scanner.Text())) {
			break
		}
	}
}

func handleCommand(conn net.Conn, line string) bool {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return true
	}

	var pkt []byte
	var err error
	switch fields[0] {
	case "/list":
		pkt = protocol.EncodeRequestRoomList()
	case "/create":
		if len(fields) < 3 {
			fmt.Println("usage: /create <title> <max_players>")
			return true
		}
		max, convErr := strconv.Atoi(fields[len(fields)-1])
		if convErr != nil {
			fmt.Println("max_players must be a number")
			return true
		}
		title := strings.Join(fields[1:len(fields)-1], " ")
		pkt, err = protocol.EncodeCreateRoom(title, int32(max))
	case "/join":
		if len(fields) < 2 {
			fmt.Println("usage: /join <room_id>")
			return true
		}
		id, convErr := strconv.Atoi(fields[1])
		if convErr != nil {
			fmt.Println("room_id must be a number")
			return true
		}
		pkt = protocol.EncodeJoinRoom(int32(id))
	case "/leave":
		pkt = protocol.EncodeLeaveRoom()
	case "/quit":
		return false
	default:
		fmt.Printf("unknown command: %s\n", fields[0])
		return true
	}

	if err != nil {
		fmt.Printf("failed to encode request: %v\n", err)
		return true
	}
	if _, err := conn.Write(pkt); err != nil {
		fmt.Printf("failed to send: %v\n", err)
		return false
	}
	return true
}

func readLoop(conn net.Conn) {
	header := make([]byte, protocol.HeaderSize)
	for {
		if _, err := readFull(conn, header); err != nil {
			fmt.Printf("\nconnection closed: %v\n", err)
			os.Exit(0)
		}
		h, err := protocol.ParseHeader(header)
		if err != nil {
			fmt.Printf("\nmalformed header from server: %v\n", err)
			os.Exit(1)
		}
		body := make([]byte, int(h.Size)-protocol.HeaderSize)
		if _, err := readFull(conn, body); err != nil {
			fmt.Printf("\nconnection closed mid-message: %v\n", err)
			os.Exit(0)
		}
		printMessage(h.Type, body)
		fmt.Print("> ")
	}
}

func printMessage(t protocol.MsgType, body []byte) {
	switch t {
	case protocol.MsgRoomList:
		rooms, err := protocol.DecodeRoomList(body)
		if err != nil {
			fmt.Printf("\n[room_list] malformed: %v\n", err)
			return
		}
		fmt.Printf("\n[room_list] %d room(s):\n", len(rooms))
		for _, r := range rooms {
			fmt.Printf("  #%d %-20s %d/%d\n", r.RoomID, r.Title, r.CurrentPlayers, r.MaxPlayers)
		}
	case protocol.MsgRoomCreated:
		r, err := protocol.DecodeRoomCreated(body)
		if err == nil {
			fmt.Printf("\n[room_created] id=%d success=%v\n", r.RoomID, r.Success)
		}
	case protocol.MsgRoomJoined:
		r, err := protocol.DecodeRoomJoined(body)
		if err == nil {
			fmt.Printf("\n[room_joined] id=%d success=%v\n", r.RoomID, r.Success)
		}
	case protocol.MsgRoomLeft:
		ok, err := protocol.DecodeRoomLeft(body)
		if err == nil {
			fmt.Printf("\n[room_left] success=%v\n", ok)
		}
	case protocol.MsgError:
		msg, err := protocol.DecodeError(body)
		if err == nil {
			fmt.Printf("\n[error] %s\n", msg)
		}
	default:
		fmt.Printf("\n[unknown message type %d]\n", t)
	}
}

func readFull(conn net.Conn, buf []byte) (int, error) {
	total := 0
	for total < len(buf) {
		n, err := conn.Read(buf[total:])
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}
