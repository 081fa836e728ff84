// Copyright (c) 2026 The Lodestake developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package subscriptions

import (
	"encoding/json"

	"github.com/ethereum/go-ethereum/common/math"

	"github.com/lodestake/lode/lode"
	"github.com/lodestake/lode/stake"
)

// EventMessage is the wire form of a streamed vault event.
type EventMessage struct {
	Seq     uint64                `json:"seq"`
	Kind    stake.EventKind       `json:"kind"`
	Account *lode.Address         `json:"account,omitempty"`
	Amount  *math.HexOrDecimal256 `json:"amount,omitempty"`
}

func marshalEvent(ev *stake.Event) ([]byte, error) {
	msg := &EventMessage{
		Seq:  ev.Seq,
		Kind: ev.Kind,
	}
	if !ev.Account.IsZero() {
		account := ev.Account
		msg.Account = &account
	}
	if ev.Amount != nil {
		msg.Amount = (*math.HexOrDecimal256)(ev.Amount)
	}
	return json.Marshal(msg)
}
