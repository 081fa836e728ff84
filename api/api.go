// Copyright (c) 2026 The Lodestake developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package api

import (
	"net/http"
	"net/http/pprof"
	"strings"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"github.com/lodestake/lode/api/events"
	"github.com/lodestake/lode/api/staking"
	"github.com/lodestake/lode/api/subscriptions"
	"github.com/lodestake/lode/eventdb"
	"github.com/lodestake/lode/log"
	"github.com/lodestake/lode/stake"
)

var logger = log.WithContext("pkg", "api")

type Options struct {
	AllowedOrigins string
	LogsLimit      uint64
	CacheSize      uint32
	PprofOn        bool
	EnableMetrics  bool
}

// New returns the public api handler and a close func releasing the open
// subscriptions.
func New(
	staker *stake.Staker,
	eventDB *eventdb.EventDB,
	opts Options,
) (http.HandlerFunc, func()) {
	origins := strings.Split(strings.TrimSpace(opts.AllowedOrigins), ",")
	for i, o := range origins {
		origins[i] = strings.ToLower(strings.TrimSpace(o))
	}

	router := mux.NewRouter()

	staking.New(staker).
		Mount(router, "/staking")
	if eventDB != nil {
		events.New(eventDB, opts.LogsLimit).
			Mount(router, "/events")
	}
	subs := subscriptions.New(staker, origins, opts.CacheSize)
	subs.Mount(router, "/subscriptions")

	if opts.PprofOn {
		router.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
		router.HandleFunc("/debug/pprof/profile", pprof.Profile)
		router.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
		router.HandleFunc("/debug/pprof/trace", pprof.Trace)
		router.PathPrefix("/debug/pprof/").HandlerFunc(pprof.Index)
	}

	if opts.EnableMetrics {
		router.Use(metricsMiddleware)
	}

	handler := handlers.CompressHandler(router)
	handler = handlers.CORS(
		handlers.AllowedOrigins(origins),
		handlers.AllowedHeaders([]string{"content-type"}),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost}),
	)(handler)

	return handler.ServeHTTP, subs.Close
}
