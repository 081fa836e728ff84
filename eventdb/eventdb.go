// Copyright (c) 2026 The Lodestake developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package eventdb

import (
	"context"
	"database/sql"
	"math/big"

	sqlite3 "github.com/mattn/go-sqlite3"

	"github.com/lodestake/lode/lode"
	"github.com/lodestake/lode/stake"
)

const tableSchema = `CREATE TABLE IF NOT EXISTS event (
	seq INTEGER PRIMARY KEY,
	ts INTEGER NOT NULL,
	kind TEXT NOT NULL,
	account BLOB(20),
	amount BLOB
);
CREATE INDEX IF NOT EXISTS event_kind ON event(kind);
CREATE INDEX IF NOT EXISTS event_account ON event(account);`

// EventDB is the queryable history of committed vault events, kept in
// sqlite alongside the ledger store.
type EventDB struct {
	path          string
	db            *sql.DB
	driverVersion string
}

// New creates or opens the event db at the given path.
func New(path string) (eventDB *EventDB, err error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	defer func() {
		if eventDB == nil {
			db.Close()
		}
	}()
	if _, err := db.Exec(tableSchema); err != nil {
		return nil, err
	}

	driverVer, _, _ := sqlite3.Version()
	return &EventDB{
		path,
		db,
		driverVer,
	}, nil
}

// NewMem creates an event db in ram.
func NewMem() (*EventDB, error) {
	return New(":memory:")
}

// Close closes the event db.
func (db *EventDB) Close() {
	db.db.Close()
}

func (db *EventDB) Path() string {
	return db.path
}

// Insert appends committed events stamped with the given wall time. All
// events go in within one transaction.
func (db *EventDB) Insert(ts uint64, events ...*stake.Event) (err error) {
	if len(events) == 0 {
		return nil
	}
	tx, err := db.db.Begin()
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	stmt, err := tx.Prepare("INSERT OR IGNORE INTO event(seq, ts, kind, account, amount) VALUES(?,?,?,?,?)")
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, ev := range events {
		var amount []byte
		if ev.Amount != nil {
			amount = ev.Amount.Bytes()
		}
		if _, err = stmt.Exec(ev.Seq, ts, string(ev.Kind), ev.Account.Bytes(), amount); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// NewestSeq returns the highest stored sequence number, zero when empty.
func (db *EventDB) NewestSeq() (uint64, error) {
	row := db.db.QueryRow("SELECT IFNULL(MAX(seq), 0) FROM event")
	var seq uint64
	if err := row.Scan(&seq); err != nil {
		return 0, err
	}
	return seq, nil
}

// Filter queries stored events. A nil filter returns everything in
// ascending sequence order.
func (db *EventDB) Filter(ctx context.Context, filter *Filter) ([]*Record, error) {
	if filter == nil {
		return db.query(ctx, "SELECT seq, ts, kind, account, amount FROM event ORDER BY seq ASC")
	}
	var args []interface{}
	stmt := "SELECT seq, ts, kind, account, amount FROM event WHERE 1"
	if filter.Range != nil {
		args = append(args, filter.Range.From)
		stmt += " AND ts >= ? "
		if filter.Range.To > 0 {
			args = append(args, filter.Range.To)
			stmt += " AND ts <= ? "
		}
	}
	if len(filter.Kinds) > 0 {
		stmt += " AND kind IN ("
		for i, kind := range filter.Kinds {
			if i > 0 {
				stmt += ","
			}
			stmt += "?"
			args = append(args, string(kind))
		}
		stmt += ") "
	}
	if filter.Account != nil {
		args = append(args, filter.Account.Bytes())
		stmt += " AND account = ? "
	}

	if filter.Order == DESC {
		stmt += " ORDER BY seq DESC "
	} else {
		stmt += " ORDER BY seq ASC "
	}

	if filter.Options != nil {
		stmt += " limit ?, ? "
		args = append(args, filter.Options.Offset, filter.Options.Limit)
	}
	return db.query(ctx, stmt, args...)
}

func (db *EventDB) query(ctx context.Context, stmt string, args ...interface{}) ([]*Record, error) {
	rows, err := db.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []*Record
	for rows.Next() {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
		var (
			seq     uint64
			ts      uint64
			kind    string
			account []byte
			amount  []byte
		)
		if err := rows.Scan(
			&seq,
			&ts,
			&kind,
			&account,
			&amount,
		); err != nil {
			return nil, err
		}
		record := &Record{
			Seq:     seq,
			Ts:      ts,
			Kind:    stake.EventKind(kind),
			Account: lode.BytesToAddress(account),
		}
		if len(amount) > 0 {
			record.Amount = new(big.Int).SetBytes(amount)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return records, nil
}
