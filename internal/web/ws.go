package web

import (
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"
)

const (
	wsPushInterval = 250 * time.Millisecond
	wsWriteTimeout = 5 * time.Second
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		u, err := url.Parse(origin)
		if err != nil {
			return false
		}
		host := strings.ToLower(strings.TrimSpace(r.Host))
		originHost := strings.ToLower(strings.TrimSpace(u.Host))
		return host == originHost
	},
}

// handleWS pushes a snapshot on connect and after every change, at most
// once per wsPushInterval.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	changes, unsubscribe := s.runner.Subscribe()
	defer unsubscribe()

	if err := s.writeSnapshot(conn); err != nil {
		return
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	throttle := time.NewTimer(0)
	defer throttle.Stop()

	for {
		select {
		case <-done:
			return
		case <-changes:
		}

		select {
		case <-done:
			return
		case <-throttle.C:
		}

		if err := s.writeSnapshot(conn); err != nil {
			log.Debugf("Websocket push failed: %v", err)
			return
		}
		throttle.Reset(wsPushInterval)
	}
}

func (s *Server) writeSnapshot(conn *websocket.Conn) error {
	_ = conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
	return conn.WriteJSON(s.buildSnapshot())
}
