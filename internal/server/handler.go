package server

import (
	"log/slog"
	"net/http"

	"github.com/lxzan/gws"

	"github.com/soar/padtable/internal/hub"
)

const clientKey = "client"

// wsHandler ties gws connection callbacks to hub clients.
type wsHandler struct {
	gws.BuiltinEventHandler
	hub         *hub.Hub
	broadcaster *hub.Broadcaster
	logger      *slog.Logger
}

func newUpgrader(h *hub.Hub, b *hub.Broadcaster, logger *slog.Logger) *gws.Upgrader {
	return gws.NewUpgrader(&wsHandler{hub: h, broadcaster: b, logger: logger}, &gws.ServerOption{
		Recovery:          gws.Recovery,
		PermessageDeflate: gws.PermessageDeflate{Enabled: true},
	})
}

func clientOf(socket *gws.Conn) (*hub.Client, bool) {
	v, ok := socket.Session().Load(clientKey)
	if !ok {
		return nil, false
	}
	c, ok := v.(*hub.Client)
	return c, ok
}

func (h *wsHandler) OnOpen(socket *gws.Conn) {
	client := hub.NewClient(h.hub, socket)
	if !h.hub.Register(client) {
		socket.WriteClose(1001, []byte("shutting down"))
		return
	}
	socket.Session().Store(clientKey, client)

	// Send current state to the new client
	h.broadcaster.SendInitialState(client)
	go client.WritePump()
}

func (h *wsHandler) OnClose(socket *gws.Conn, err error) {
	if c, ok := clientOf(socket); ok {
		h.hub.Unregister(c)
	}
	h.logger.Debug("websocket closed", "remote", socket.RemoteAddr(), "err", err)
}

func (h *wsHandler) OnMessage(socket *gws.Conn, message *gws.Message) {
	defer message.Close()
	c, ok := clientOf(socket)
	if !ok {
		return
	}
	if err := c.HandleMessage(message.Bytes(), h.broadcaster); err != nil {
		h.logger.Debug("client message rejected", "remote", socket.RemoteAddr(), "err", err)
		return
	}
	h.logger.Debug("client selected player", "remote", socket.RemoteAddr(), "player", c.Player())
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	socket, err := s.upgrader.Upgrade(w, r)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", "err", err)
		return
	}
	go socket.ReadLoop()
}
