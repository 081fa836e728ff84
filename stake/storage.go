// Copyright (c) 2026 The Lodestake developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package stake

import (
	"math/big"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/pkg/errors"

	"github.com/lodestake/lode/kv"
	"github.com/lodestake/lode/lode"
)

const accountPrefix = 'a'

var (
	keyGlobals = []byte("g")
	keyHolders = []byte("h")
)

func accountKey(addr lode.Address) []byte {
	return append([]byte{accountPrefix}, addr.Bytes()...)
}

// globals is the process-wide ledger state persisted alongside accounts.
type globals struct {
	TotalClaimed   *big.Int
	AnnualRate     uint64
	PenaltyEnabled bool
	Paused         bool
}

// ledgerStore persists the account ledger, holder list and globals into a
// key-value store, rlp-encoded. Every committed operation writes through in
// a single batch.
type ledgerStore struct {
	db kv.GetPutter
}

func newLedgerStore(db kv.GetPutter) *ledgerStore {
	return &ledgerStore{db}
}

func (s *ledgerStore) loadGlobals() (*globals, error) {
	data, err := s.db.Get(keyGlobals)
	if err != nil {
		if s.db.IsNotFound(err) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "load globals")
	}
	var g globals
	if err := rlp.DecodeBytes(data, &g); err != nil {
		return nil, errors.Wrap(err, "decode globals")
	}
	return &g, nil
}

func (s *ledgerStore) loadHolders() ([]lode.Address, error) {
	data, err := s.db.Get(keyHolders)
	if err != nil {
		if s.db.IsNotFound(err) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "load holders")
	}
	var holders []lode.Address
	if err := rlp.DecodeBytes(data, &holders); err != nil {
		return nil, errors.Wrap(err, "decode holders")
	}
	return holders, nil
}

func (s *ledgerStore) loadAccounts() (map[lode.Address]*Account, error) {
	accounts := make(map[lode.Address]*Account)

	it := s.db.NewIterator(kv.Range{
		From: []byte{accountPrefix},
		To:   []byte{accountPrefix + 1},
	})
	defer it.Release()

	for it.Next() {
		key := it.Key()
		if len(key) != 1+lode.AddressLength {
			return nil, errors.New("malformed account key")
		}
		var acct Account
		if err := rlp.DecodeBytes(it.Value(), &acct); err != nil {
			return nil, errors.Wrap(err, "decode account")
		}
		accounts[lode.BytesToAddress(key[1:])] = &acct
	}
	if err := it.Error(); err != nil {
		return nil, errors.Wrap(err, "iterate accounts")
	}
	return accounts, nil
}

// save writes one mutated account together with the holder list and globals.
func (s *ledgerStore) save(addr lode.Address, acct *Account, holders []lode.Address, g *globals) error {
	batch := s.db.NewBatch()

	acctData, err := rlp.EncodeToBytes(acct)
	if err != nil {
		return errors.Wrap(err, "encode account")
	}
	if err := batch.Put(accountKey(addr), acctData); err != nil {
		return err
	}

	holdersData, err := rlp.EncodeToBytes(holders)
	if err != nil {
		return errors.Wrap(err, "encode holders")
	}
	if err := batch.Put(keyHolders, holdersData); err != nil {
		return err
	}

	if err := putGlobals(batch, g); err != nil {
		return err
	}
	return batch.Write()
}

func (s *ledgerStore) saveGlobals(g *globals) error {
	batch := s.db.NewBatch()
	if err := putGlobals(batch, g); err != nil {
		return err
	}
	return batch.Write()
}

func putGlobals(batch kv.Batch, g *globals) error {
	data, err := rlp.EncodeToBytes(g)
	if err != nil {
		return errors.Wrap(err, "encode globals")
	}
	return batch.Put(keyGlobals, data)
}
