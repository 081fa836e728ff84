// Copyright (c) 2026 The Lodestake developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package events

import (
	"net/http"
	"strconv"

	"github.com/ethereum/go-ethereum/common/math"
	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/lodestake/lode/api/restutil"
	"github.com/lodestake/lode/eventdb"
	"github.com/lodestake/lode/lode"
	"github.com/lodestake/lode/stake"
)

// Events serves the committed event history.
type Events struct {
	db    *eventdb.EventDB
	limit uint64
}

func New(db *eventdb.EventDB, limit uint64) *Events {
	return &Events{db, limit}
}

// FilteredEvent is the wire form of a stored event.
type FilteredEvent struct {
	Seq     uint64                `json:"seq"`
	Ts      uint64                `json:"ts"`
	Kind    stake.EventKind       `json:"kind"`
	Account *lode.Address         `json:"account,omitempty"`
	Amount  *math.HexOrDecimal256 `json:"amount,omitempty"`
}

func (e *Events) handleFilter(w http.ResponseWriter, req *http.Request) error {
	filter, err := e.parseFilter(req)
	if err != nil {
		return err
	}

	records, err := e.db.Filter(req.Context(), filter)
	if err != nil {
		return err
	}

	out := make([]*FilteredEvent, 0, len(records))
	for _, r := range records {
		fe := &FilteredEvent{
			Seq:  r.Seq,
			Ts:   r.Ts,
			Kind: r.Kind,
		}
		if !r.Account.IsZero() {
			account := r.Account
			fe.Account = &account
		}
		if r.Amount != nil {
			fe.Amount = (*math.HexOrDecimal256)(r.Amount)
		}
		out = append(out, fe)
	}
	return restutil.WriteJSON(w, out)
}

func (e *Events) parseFilter(req *http.Request) (*eventdb.Filter, error) {
	query := req.URL.Query()
	filter := &eventdb.Filter{
		Options: &eventdb.Options{Limit: e.limit},
	}

	for _, kind := range query["kind"] {
		filter.Kinds = append(filter.Kinds, stake.EventKind(kind))
	}
	if v := query.Get("account"); v != "" {
		addr, err := lode.ParseAddress(v)
		if err != nil {
			return nil, restutil.BadRequest(errors.WithMessage(err, "account"))
		}
		filter.Account = addr
	}
	if v := query.Get("from"); v != "" {
		from, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return nil, restutil.BadRequest(errors.WithMessage(err, "from"))
		}
		filter.Range = &eventdb.Range{From: from}
	}
	if v := query.Get("to"); v != "" {
		to, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return nil, restutil.BadRequest(errors.WithMessage(err, "to"))
		}
		if filter.Range == nil {
			filter.Range = &eventdb.Range{}
		}
		filter.Range.To = to
	}
	if v := query.Get("offset"); v != "" {
		offset, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return nil, restutil.BadRequest(errors.WithMessage(err, "offset"))
		}
		filter.Options.Offset = offset
	}
	if v := query.Get("limit"); v != "" {
		limit, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return nil, restutil.BadRequest(errors.WithMessage(err, "limit"))
		}
		if limit > e.limit {
			return nil, restutil.Forbidden(errors.Errorf("limit exceeds the maximum allowed value of %d", e.limit))
		}
		filter.Options.Limit = limit
	}
	switch query.Get("order") {
	case "", "asc":
	case "desc":
		filter.Order = eventdb.DESC
	default:
		return nil, restutil.BadRequest(errors.New("order: expected 'asc' or 'desc'"))
	}
	return filter, nil
}

func (e *Events) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("").Methods(http.MethodGet).HandlerFunc(restutil.WrapHandlerFunc(e.handleFilter))
}
