// Copyright (c) 2026 The Lodestake developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package subscriptions

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/pborman/uuid"

	"github.com/lodestake/lode/api/restutil"
	"github.com/lodestake/lode/log"
	"github.com/lodestake/lode/metrics"
	"github.com/lodestake/lode/stake"
)

const (
	txQueueSize  = 128
	pongWait     = 60 * time.Second
	pingPeriod   = (pongWait * 7) / 10
	writeTimeout = 10 * time.Second
)

var (
	logger = log.WithContext("pkg", "api/subscriptions")

	metricActiveWebsocketCount = metrics.Gauge("api_active_websocket_count")
)

// Subscriptions streams committed vault events over websocket connections.
type Subscriptions struct {
	staker     *stake.Staker
	cache      *messageCache
	done       chan struct{}
	wsUpgrader websocket.Upgrader
}

func New(staker *stake.Staker, allowedOrigins []string, cacheSize uint32) *Subscriptions {
	return &Subscriptions{
		staker: staker,
		cache:  newMessageCache(cacheSize),
		done:   make(chan struct{}),
		wsUpgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				if origin == "" {
					return true
				}
				for _, allowed := range allowedOrigins {
					if allowed == "*" || allowed == origin {
						return true
					}
				}
				return false
			},
		},
	}
}

// Close stops every open subscription.
func (s *Subscriptions) Close() {
	close(s.done)
}

func (s *Subscriptions) handleSubscribeEvents(w http.ResponseWriter, req *http.Request) error {
	conn, err := s.wsUpgrader.Upgrade(w, req, nil)
	if err != nil {
		return restutil.HTTPError(err, http.StatusUpgradeRequired)
	}
	defer conn.Close()

	connID := uuid.NewRandom().String()
	metricActiveWebsocketCount.Add(1)
	defer metricActiveWebsocketCount.Add(-1)
	logger.Debug("subscriber connected", "conn", connID, "remote", req.RemoteAddr)

	events, unsubscribe := s.staker.SubscribeEvents(txQueueSize)
	defer unsubscribe()

	closed := make(chan struct{})
	go func() {
		defer close(closed)
		conn.SetReadLimit(512)
		conn.SetReadDeadline(time.Now().Add(pongWait))
		conn.SetPongHandler(func(string) error {
			conn.SetReadDeadline(time.Now().Add(pongWait))
			return nil
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			return nil
		case <-closed:
			logger.Debug("subscriber disconnected", "conn", connID)
			return nil
		case <-req.Context().Done():
			return nil
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			msg, _, err := s.cache.GetOrAdd(ev.Seq, func() ([]byte, error) {
				return marshalEvent(ev)
			})
			if err != nil {
				return err
			}
			conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				logger.Debug("subscriber write failed", "conn", connID, "err", err)
				return nil
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return nil
			}
		}
	}
}

func (s *Subscriptions) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("/events").Methods(http.MethodGet).HandlerFunc(restutil.WrapHandlerFunc(s.handleSubscribeEvents))
}
