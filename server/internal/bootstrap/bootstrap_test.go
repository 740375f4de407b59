package bootstrap

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phuhao00/minigames-server/server/internal/config"
	"github.com/phuhao00/minigames-server/server/internal/protocol"
)

func TestServerEndToEndCreateRoom(t *testing.T) {
	cfg := config.Config{}
	cfg.Network.MaxSessions = 8
	cfg.Network.RecvRingBytes = 4096
	cfg.Network.SendRingBytes = 4096
	cfg.Game.TickIntervalMs = 5
	cfg.Observability.MetricsAddr = "127.0.0.1:0"

	srv, err := Build(cfg, nil)
	require.NoError(t, err)
	require.NoError(t, srv.Start("127.0.0.1:0"))
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Stop(ctx)
	}()

	addr := srv.engine.Addr().String()
	conn, err := net.Dial("tcp", addr)
	require.NoError(t, err)
	defer conn.Close()

	createPkt, err := protocol.EncodeCreateRoom("e2e-room", 4)
	require.NoError(t, err)
	_, err = conn.Write(createPkt)
	require.NoError(t, err)

	header := make([]byte, protocol.HeaderSize)
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, err = readFull(conn, header)
	require.NoError(t, err)
	h, err := protocol.ParseHeader(header)
	require.NoError(t, err)
	require.Equal(t, protocol.MsgRoomCreated, h.Type)

	body := make([]byte, int(h.Size)-protocol.HeaderSize)
	_, err = readFull(conn, body)
	require.NoError(t, err)
	created, err := protocol.DecodeRoomCreated(body)
	require.NoError(t, err)
	assert.True(t, created.Success)
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
