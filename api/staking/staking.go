// Copyright (c) 2026 The Lodestake developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staking

import (
	"math/big"
	"net/http"
	"strconv"
	"time"

	"github.com/ethereum/go-ethereum/common/math"
	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/lodestake/lode/api/restutil"
	"github.com/lodestake/lode/lode"
	"github.com/lodestake/lode/stake"
)

// Staking exposes the vault ledger over REST. Mutations act on behalf of
// the addressed account; the token gateway enforces its own allowance
// rules underneath.
type Staking struct {
	staker *stake.Staker
	now    func() uint64
}

func New(staker *stake.Staker) *Staking {
	return &Staking{
		staker: staker,
		now:    func() uint64 { return uint64(time.Now().Unix()) },
	}
}

func (s *Staking) handleGetVault(w http.ResponseWriter, _ *http.Request) error {
	return restutil.WriteJSON(w, &VaultStatus{
		TotalStaked:    (*math.HexOrDecimal256)(s.staker.TotalStaked()),
		TotalClaimed:   (*math.HexOrDecimal256)(s.staker.TotalClaimed()),
		HolderCount:    uint64(s.staker.HolderCount()),
		AnnualRate:     s.staker.AnnualRate(),
		PenaltyEnabled: s.staker.PenaltyEnabled(),
		Paused:         s.staker.Paused(),
	})
}

func (s *Staking) handleGetHolders(w http.ResponseWriter, req *http.Request) error {
	start, end := uint64(0), uint64(s.staker.HolderCount())
	var err error
	if v := req.URL.Query().Get("start"); v != "" {
		if start, err = strconv.ParseUint(v, 10, 64); err != nil {
			return restutil.BadRequest(errors.WithMessage(err, "start"))
		}
	}
	if v := req.URL.Query().Get("end"); v != "" {
		if end, err = strconv.ParseUint(v, 10, 64); err != nil {
			return restutil.BadRequest(errors.WithMessage(err, "end"))
		}
	} else if start >= end {
		// plain listing of an empty registry (or a start past it)
		return restutil.WriteJSON(w, []*Holder{})
	}

	infos, err := s.staker.ListStakers(start, end)
	if err != nil {
		return convertErr(err)
	}
	holders := make([]*Holder, 0, len(infos))
	for _, info := range infos {
		holders = append(holders, &Holder{
			Address:     info.Address,
			Staked:      (*math.HexOrDecimal256)(info.Staked),
			StakeStart:  info.StakeStart,
			LastSettled: info.LastSettled,
		})
	}
	return restutil.WriteJSON(w, holders)
}

func (s *Staking) handleGetAccount(w http.ResponseWriter, req *http.Request) error {
	addr, err := s.parseAddress(req)
	if err != nil {
		return err
	}

	acct, ok := s.staker.GetAccount(addr)
	if !ok {
		acct = &stake.Account{Staked: new(big.Int), TotalEarned: new(big.Int)}
	}

	now := s.now()
	var penaltyRate uint64
	if s.staker.IsHolder(addr) && s.staker.PenaltyEnabled() {
		var elapsed uint64
		if now > acct.StakeStart {
			elapsed = now - acct.StakeStart
		}
		penaltyRate = stake.PenaltyRate(elapsed)
	}

	return restutil.WriteJSON(w, &AccountDetail{
		Address:       addr,
		Staked:        (*math.HexOrDecimal256)(acct.Staked),
		StakeStart:    acct.StakeStart,
		LastSettled:   acct.LastSettled,
		TotalEarned:   (*math.HexOrDecimal256)(acct.TotalEarned),
		PendingReward: (*math.HexOrDecimal256)(s.staker.PendingReward(addr, now)),
		PenaltyRate:   penaltyRate,
	})
}

func (s *Staking) handleGetReward(w http.ResponseWriter, req *http.Request) error {
	addr, err := s.parseAddress(req)
	if err != nil {
		return err
	}
	at := s.now()
	if v := req.URL.Query().Get("at"); v != "" {
		if at, err = strconv.ParseUint(v, 10, 64); err != nil {
			return restutil.BadRequest(errors.WithMessage(err, "at"))
		}
	}
	return restutil.WriteJSON(w, &PendingReward{
		Amount: (*math.HexOrDecimal256)(s.staker.PendingReward(addr, at)),
		At:     at,
	})
}

func (s *Staking) handleDeposit(w http.ResponseWriter, req *http.Request) error {
	addr, amount, err := s.parseAddressAndAmount(req)
	if err != nil {
		return err
	}
	if err := s.staker.Deposit(addr, amount, s.now()); err != nil {
		return convertErr(err)
	}
	return s.writeAccount(w, addr)
}

func (s *Staking) handleWithdraw(w http.ResponseWriter, req *http.Request) error {
	addr, amount, err := s.parseAddressAndAmount(req)
	if err != nil {
		return err
	}
	if err := s.staker.Withdraw(addr, amount, s.now()); err != nil {
		return convertErr(err)
	}
	return s.writeAccount(w, addr)
}

func (s *Staking) handleClaim(w http.ResponseWriter, req *http.Request) error {
	addr, err := s.parseAddress(req)
	if err != nil {
		return err
	}
	if err := s.staker.Claim(addr, s.now()); err != nil {
		return convertErr(err)
	}
	return s.writeAccount(w, addr)
}

func (s *Staking) handleExit(w http.ResponseWriter, req *http.Request) error {
	addr, err := s.parseAddress(req)
	if err != nil {
		return err
	}
	if err := s.staker.EmergencyWithdraw(addr); err != nil {
		return convertErr(err)
	}
	return s.writeAccount(w, addr)
}

func (s *Staking) writeAccount(w http.ResponseWriter, addr lode.Address) error {
	acct, _ := s.staker.GetAccount(addr)
	if acct == nil {
		acct = &stake.Account{Staked: new(big.Int), TotalEarned: new(big.Int)}
	}
	return restutil.WriteJSON(w, &AccountDetail{
		Address:     addr,
		Staked:      (*math.HexOrDecimal256)(acct.Staked),
		StakeStart:  acct.StakeStart,
		LastSettled: acct.LastSettled,
		TotalEarned: (*math.HexOrDecimal256)(acct.TotalEarned),
	})
}

func (s *Staking) parseAddress(req *http.Request) (lode.Address, error) {
	addr, err := lode.ParseAddress(mux.Vars(req)["address"])
	if err != nil {
		return lode.Address{}, restutil.BadRequest(errors.WithMessage(err, "address"))
	}
	return *addr, nil
}

func (s *Staking) parseAddressAndAmount(req *http.Request) (lode.Address, *big.Int, error) {
	addr, err := s.parseAddress(req)
	if err != nil {
		return lode.Address{}, nil, err
	}
	var body AmountRequest
	if err := restutil.ParseJSON(req.Body, &body); err != nil {
		return lode.Address{}, nil, restutil.BadRequest(errors.WithMessage(err, "body"))
	}
	if body.Amount == nil {
		return lode.Address{}, nil, restutil.BadRequest(errors.New("amount: missing"))
	}
	return addr, (*big.Int)(body.Amount), nil
}

// convertErr maps ledger errors onto http statuses.
func convertErr(err error) error {
	switch {
	case errors.Is(err, stake.ErrInvalidAmount), errors.Is(err, stake.ErrInvalidRange):
		return restutil.BadRequest(err)
	case errors.Is(err, stake.ErrUnauthorized),
		errors.Is(err, stake.ErrInsufficientBalance),
		errors.Is(err, stake.ErrInsufficientAllowance):
		return restutil.Forbidden(err)
	case errors.Is(err, stake.ErrPaused), errors.Is(err, stake.ErrNotPaused):
		return restutil.Conflict(err)
	case errors.Is(err, stake.ErrTransferFailure):
		return restutil.HTTPError(err, http.StatusBadGateway)
	default:
		return err
	}
}

func (s *Staking) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("").Methods(http.MethodGet).HandlerFunc(restutil.WrapHandlerFunc(s.handleGetVault))
	sub.Path("/holders").Methods(http.MethodGet).HandlerFunc(restutil.WrapHandlerFunc(s.handleGetHolders))
	sub.Path("/accounts/{address}").Methods(http.MethodGet).HandlerFunc(restutil.WrapHandlerFunc(s.handleGetAccount))
	sub.Path("/accounts/{address}/reward").Methods(http.MethodGet).HandlerFunc(restutil.WrapHandlerFunc(s.handleGetReward))
	sub.Path("/accounts/{address}/deposit").Methods(http.MethodPost).HandlerFunc(restutil.WrapHandlerFunc(s.handleDeposit))
	sub.Path("/accounts/{address}/withdraw").Methods(http.MethodPost).HandlerFunc(restutil.WrapHandlerFunc(s.handleWithdraw))
	sub.Path("/accounts/{address}/claim").Methods(http.MethodPost).HandlerFunc(restutil.WrapHandlerFunc(s.handleClaim))
	sub.Path("/accounts/{address}/exit").Methods(http.MethodPost).HandlerFunc(restutil.WrapHandlerFunc(s.handleExit))
}
