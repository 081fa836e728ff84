// Copyright (c) 2026 The Lodestake developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package api

import (
	"log/slog"
	"math/big"
	"net"
	"net/http"
	"time"

	"github.com/ethereum/go-ethereum/common/math"
	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/lodestake/lode/api/restutil"
	"github.com/lodestake/lode/co"
	"github.com/lodestake/lode/log"
	"github.com/lodestake/lode/stake"
)

// Admin exposes the owner capability over a local-only http listener. Every
// ledger call it makes runs as the configured owner.
type Admin struct {
	address  string
	staker   *stake.Staker
	logLevel *slog.LevelVar
}

func NewAdmin(addr string, staker *stake.Staker, logLevel *slog.LevelVar) *Admin {
	return &Admin{
		address:  addr,
		staker:   staker,
		logLevel: logLevel,
	}
}

// Start the admin server.
func (a *Admin) Start() (string, func(), error) {
	listener, err := net.Listen("tcp", a.address)
	if err != nil {
		return "", nil, errors.Wrapf(err, "listen admin API addr [%v]", a.address)
	}

	router := mux.NewRouter()
	handler := handlers.CompressHandler(router)
	sub := router.PathPrefix("/admin").Subrouter()

	sub.Path("/loglevel").
		Methods(http.MethodGet).
		Name("get-log-level").
		HandlerFunc(restutil.WrapHandlerFunc(a.getLogLevelHandler))
	sub.Path("/loglevel").
		Methods(http.MethodPost).
		Name("post-log-level").
		HandlerFunc(restutil.WrapHandlerFunc(a.postLogLevelHandler))

	sub.Path("/pause").
		Methods(http.MethodPost).
		Name("post-pause").
		HandlerFunc(restutil.WrapHandlerFunc(a.postPauseHandler))
	sub.Path("/unpause").
		Methods(http.MethodPost).
		Name("post-unpause").
		HandlerFunc(restutil.WrapHandlerFunc(a.postUnpauseHandler))
	sub.Path("/pool/withdraw").
		Methods(http.MethodPost).
		Name("post-pool-withdraw").
		HandlerFunc(restutil.WrapHandlerFunc(a.postPoolWithdrawHandler))
	sub.Path("/rate").
		Methods(http.MethodPost).
		Name("post-rate").
		HandlerFunc(restutil.WrapHandlerFunc(a.postRateHandler))
	sub.Path("/penalty").
		Methods(http.MethodPost).
		Name("post-penalty").
		HandlerFunc(restutil.WrapHandlerFunc(a.postPenaltyHandler))

	server := &http.Server{Handler: handler, ReadHeaderTimeout: time.Second, ReadTimeout: 5 * time.Second}
	var goes co.Goes
	goes.Go(func() {
		server.Serve(listener)
	})

	cancel := func() {
		server.Close()
		goes.Wait()
	}

	return "http://" + listener.Addr().String() + "/admin", cancel, nil
}

type logLevelRequest struct {
	Level string `json:"level"`
}

type logLevelResponse struct {
	CurrentLevel string `json:"currentLevel"`
}

func (a *Admin) getLogLevelHandler(w http.ResponseWriter, _ *http.Request) error {
	return restutil.WriteJSON(w, logLevelResponse{
		CurrentLevel: log.LevelString(a.logLevel.Level()),
	})
}

func (a *Admin) postLogLevelHandler(w http.ResponseWriter, r *http.Request) error {
	var req logLevelRequest
	if err := restutil.ParseJSON(r.Body, &req); err != nil {
		return restutil.BadRequest(errors.WithMessage(err, "invalid request body"))
	}

	switch req.Level {
	case "trace":
		a.logLevel.Set(log.LevelTrace)
	case "debug":
		a.logLevel.Set(log.LevelDebug)
	case "info":
		a.logLevel.Set(log.LevelInfo)
	case "warn":
		a.logLevel.Set(log.LevelWarn)
	case "error":
		a.logLevel.Set(log.LevelError)
	case "crit":
		a.logLevel.Set(log.LevelCrit)
	default:
		return restutil.BadRequest(errors.Errorf("invalid verbosity level: %s", req.Level))
	}
	logger.Info("log level changed", "level", req.Level)
	return a.getLogLevelHandler(w, r)
}

type vaultStateResponse struct {
	Paused         bool   `json:"paused"`
	AnnualRate     uint64 `json:"annualRate"`
	PenaltyEnabled bool   `json:"penaltyEnabled"`
}

func (a *Admin) writeVaultState(w http.ResponseWriter) error {
	return restutil.WriteJSON(w, vaultStateResponse{
		Paused:         a.staker.Paused(),
		AnnualRate:     a.staker.AnnualRate(),
		PenaltyEnabled: a.staker.PenaltyEnabled(),
	})
}

func (a *Admin) postPauseHandler(w http.ResponseWriter, _ *http.Request) error {
	if err := a.staker.Pause(a.staker.Owner()); err != nil {
		return convertAdminErr(err)
	}
	return a.writeVaultState(w)
}

func (a *Admin) postUnpauseHandler(w http.ResponseWriter, _ *http.Request) error {
	if err := a.staker.Unpause(a.staker.Owner()); err != nil {
		return convertAdminErr(err)
	}
	return a.writeVaultState(w)
}

type poolWithdrawRequest struct {
	Amount *math.HexOrDecimal256 `json:"amount"`
}

func (a *Admin) postPoolWithdrawHandler(w http.ResponseWriter, r *http.Request) error {
	var req poolWithdrawRequest
	if err := restutil.ParseJSON(r.Body, &req); err != nil {
		return restutil.BadRequest(errors.WithMessage(err, "invalid request body"))
	}
	if req.Amount == nil {
		return restutil.BadRequest(errors.New("amount: missing"))
	}
	if err := a.staker.WithdrawPool(a.staker.Owner(), (*big.Int)(req.Amount)); err != nil {
		return convertAdminErr(err)
	}
	return a.writeVaultState(w)
}

type rateRequest struct {
	AnnualRate uint64 `json:"annualRate"`
}

func (a *Admin) postRateHandler(w http.ResponseWriter, r *http.Request) error {
	var req rateRequest
	if err := restutil.ParseJSON(r.Body, &req); err != nil {
		return restutil.BadRequest(errors.WithMessage(err, "invalid request body"))
	}
	if err := a.staker.SetAnnualRate(a.staker.Owner(), req.AnnualRate); err != nil {
		return convertAdminErr(err)
	}
	return a.writeVaultState(w)
}

type penaltyRequest struct {
	Enabled bool `json:"enabled"`
}

func (a *Admin) postPenaltyHandler(w http.ResponseWriter, r *http.Request) error {
	var req penaltyRequest
	if err := restutil.ParseJSON(r.Body, &req); err != nil {
		return restutil.BadRequest(errors.WithMessage(err, "invalid request body"))
	}
	if err := a.staker.SetPenaltyEnabled(a.staker.Owner(), req.Enabled); err != nil {
		return convertAdminErr(err)
	}
	return a.writeVaultState(w)
}

func convertAdminErr(err error) error {
	switch {
	case errors.Is(err, stake.ErrInvalidAmount):
		return restutil.BadRequest(err)
	case errors.Is(err, stake.ErrUnauthorized), errors.Is(err, stake.ErrInsufficientBalance):
		return restutil.Forbidden(err)
	case errors.Is(err, stake.ErrPaused), errors.Is(err, stake.ErrNotPaused):
		return restutil.Conflict(err)
	default:
		return err
	}
}
