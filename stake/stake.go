// Copyright (c) 2026 The Lodestake developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package stake

import (
	"math/big"
	"sync"

	"github.com/pkg/errors"

	"github.com/lodestake/lode/kv"
	"github.com/lodestake/lode/lode"
	"github.com/lodestake/lode/log"
	"github.com/lodestake/lode/metrics"
	"github.com/lodestake/lode/token"
)

var (
	logger = log.WithContext("pkg", "stake")

	metricOpCount     = metrics.LazyLoadCounterVec("stake_op_count", []string{"op", "status"})
	metricHolderCount = metrics.LazyLoadGauge("stake_holder_count")
	metricSettled     = metrics.LazyLoadHistogram("stake_settled_amount", metrics.Bucket1B)
)

// Staker owns the account ledger and the holder registry. It is the only
// mutator: every operation settles pending rewards before principal moves,
// runs under an exclusive lock, and commits all-or-nothing. Read views hold
// a shared lock and observe committed state only.
type Staker struct {
	mu      sync.RWMutex
	gateway token.Gateway
	store   *ledgerStore
	feed    *Feed

	owner    lode.Address
	treasury lode.Address
	vault    lode.Address

	accounts map[lode.Address]*Account
	holders  *registry

	annualRate     uint64
	penaltyEnabled bool
	paused         bool
	totalClaimed   *big.Int
}

// New creates a Staker over the given gateway and ledger store, restoring
// any previously persisted state. Persisted globals win over cfg.
func New(gateway token.Gateway, db kv.GetPutter, cfg Config) (*Staker, error) {
	if cfg.AnnualRate == 0 {
		cfg.AnnualRate = DefaultAnnualRate
	}

	s := &Staker{
		gateway:        gateway,
		store:          newLedgerStore(db),
		feed:           NewFeed(),
		owner:          cfg.Owner,
		treasury:       cfg.Treasury,
		vault:          cfg.Vault,
		holders:        newRegistry(),
		annualRate:     cfg.AnnualRate,
		penaltyEnabled: cfg.PenaltyEnabled,
		totalClaimed:   new(big.Int),
	}

	g, err := s.store.loadGlobals()
	if err != nil {
		return nil, err
	}
	if g != nil {
		s.annualRate = g.AnnualRate
		s.penaltyEnabled = g.PenaltyEnabled
		s.paused = g.Paused
		s.totalClaimed = g.TotalClaimed
	}

	if s.accounts, err = s.store.loadAccounts(); err != nil {
		return nil, err
	}
	holders, err := s.store.loadHolders()
	if err != nil {
		return nil, err
	}
	for _, addr := range holders {
		acct, ok := s.accounts[addr]
		if !ok || acct.Staked.Sign() <= 0 {
			return nil, errors.Errorf("ledger store corrupt: holder %v has no stake", addr)
		}
		s.holders.add(addr)
	}
	metricHolderCount().Set(int64(s.holders.count()))

	logger.Info("ledger loaded",
		"holders", s.holders.count(),
		"accounts", len(s.accounts),
		"rate", s.annualRate,
		"paused", s.paused,
	)
	return s, nil
}

//
// Mutating operations
//

// Deposit pulls amount from the account into custody and adds it to the
// account's stake. The first deposit starts the penalty clock; top-ups never
// reset it.
func (s *Staker) Deposit(addr lode.Address, amount *big.Int, now uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if amount == nil || amount.Sign() <= 0 {
		return s.failed("deposit", ErrInvalidAmount)
	}
	if s.paused {
		return s.failed("deposit", ErrPaused)
	}

	snap := s.gateway.Snapshot()
	j := s.newJournal(addr)

	err := func() error {
		if err := s.gateway.Pull(addr, s.vault, amount); err != nil {
			return asTransferErr(err)
		}
		if err := s.settle(j, now); err != nil {
			return err
		}
		j.acct.Staked.Add(j.acct.Staked, amount)
		if !s.holders.contains(addr) {
			j.add = true
			j.acct.StakeStart = now
		}
		j.emit(KindDeposit, addr, amount)
		return nil
	}()
	return s.finish("deposit", j, snap, err)
}

// Withdraw settles pending rewards, deducts the penalty owed for the elapsed
// stake duration, pushes the penalty to the treasury and the remainder to
// the account, and removes the account from the registry when the stake
// reaches zero. The emitted event carries the gross requested amount.
func (s *Staker) Withdraw(addr lode.Address, amount *big.Int, now uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if amount == nil || amount.Sign() <= 0 {
		return s.failed("withdraw", ErrInvalidAmount)
	}
	if s.paused {
		return s.failed("withdraw", ErrPaused)
	}
	acct, ok := s.accounts[addr]
	if !ok || acct.Staked.Cmp(amount) < 0 {
		return s.failed("withdraw", ErrInsufficientBalance)
	}

	snap := s.gateway.Snapshot()
	j := s.newJournal(addr)

	err := func() error {
		// the penalty clock runs from the first deposit, captured before
		// settlement touches the entry
		var elapsed uint64
		if now > j.acct.StakeStart {
			elapsed = now - j.acct.StakeStart
		}
		if err := s.settle(j, now); err != nil {
			return err
		}

		var rate uint64
		if s.penaltyEnabled {
			rate = PenaltyRate(elapsed)
		}
		penalty := new(big.Int).Mul(amount, new(big.Int).SetUint64(rate))
		penalty.Quo(penalty, big.NewInt(RateDenominator))
		net := new(big.Int).Sub(amount, penalty)

		if penalty.Sign() > 0 {
			if err := s.gateway.Push(s.treasury, penalty); err != nil {
				return asTransferErr(err)
			}
		}
		if err := s.gateway.Push(addr, net); err != nil {
			return asTransferErr(err)
		}

		j.acct.Staked.Sub(j.acct.Staked, amount)
		if j.acct.Staked.Sign() == 0 {
			j.remove = true
		}
		j.emit(KindWithdraw, addr, amount)
		return nil
	}()
	return s.finish("withdraw", j, snap, err)
}

// Claim settles pending rewards without moving principal. Zero pending is a
// silent no-op that still stamps the settlement time.
func (s *Staker) Claim(addr lode.Address, now uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.paused {
		return s.failed("claim", ErrPaused)
	}
	if _, ok := s.accounts[addr]; !ok {
		// never staked, nothing to settle
		return nil
	}

	snap := s.gateway.Snapshot()
	j := s.newJournal(addr)
	err := s.settle(j, now)
	return s.finish("claim", j, snap, err)
}

// EmergencyWithdraw returns the full stake without settling rewards,
// forfeiting whatever is pending. It stays available while paused.
func (s *Staker) EmergencyWithdraw(addr lode.Address) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	acct, ok := s.accounts[addr]
	if !ok || acct.Staked.Sign() == 0 {
		return s.failed("emergency_withdraw", ErrInsufficientBalance)
	}

	snap := s.gateway.Snapshot()
	j := s.newJournal(addr)

	err := func() error {
		amount := new(big.Int).Set(j.acct.Staked)
		if err := s.gateway.Push(addr, amount); err != nil {
			return asTransferErr(err)
		}
		j.acct.Staked = new(big.Int)
		j.remove = true
		// the event reports the transferred amount, not the zeroed balance
		j.emit(KindEmergencyWithdraw, addr, amount)
		return nil
	}()
	return s.finish("emergency_withdraw", j, snap, err)
}

// settle pays out the pending reward at the working copy's current stake and
// stamps the settlement time. Every mutator calls it before principal moves;
// the stamp never goes backwards.
func (s *Staker) settle(j *journal, now uint64) error {
	if now > j.acct.LastSettled {
		pending := CalcReward(j.acct.Staked, s.annualRate, now-j.acct.LastSettled)
		if pending.Sign() > 0 {
			if err := s.gateway.Push(j.addr, pending); err != nil {
				return asTransferErr(err)
			}
			j.acct.TotalEarned.Add(j.acct.TotalEarned, pending)
			j.claimed.Add(j.claimed, pending)
			j.emit(KindRewardsTransferred, j.addr, pending)
		}
		j.acct.LastSettled = now
	}
	return nil
}

//
// Administrative operations (owner capability)
//

// Pause gates deposit, withdraw and claim. Emergency exit stays available.
func (s *Staker) Pause(caller lode.Address) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if caller != s.owner {
		return ErrUnauthorized
	}
	if s.paused {
		return ErrPaused
	}

	g := s.globals()
	g.Paused = true
	if err := s.store.saveGlobals(g); err != nil {
		return errors.Wrap(err, "persist globals")
	}
	s.paused = true
	s.feed.Publish(&Event{Kind: KindPaused})
	logger.Info("vault paused", "by", caller)
	return nil
}

// Unpause lifts the pause gate.
func (s *Staker) Unpause(caller lode.Address) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if caller != s.owner {
		return ErrUnauthorized
	}
	if !s.paused {
		return ErrNotPaused
	}

	g := s.globals()
	g.Paused = false
	if err := s.store.saveGlobals(g); err != nil {
		return errors.Wrap(err, "persist globals")
	}
	s.paused = false
	s.feed.Publish(&Event{Kind: KindUnpaused})
	logger.Info("vault unpaused", "by", caller)
	return nil
}

// WithdrawPool moves non-staker float out of the reward pool, bounded by
// the custody balance minus the total staked principal. Requires the paused
// state.
func (s *Staker) WithdrawPool(caller lode.Address, amount *big.Int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if caller != s.owner {
		return s.failed("withdraw_pool", ErrUnauthorized)
	}
	if !s.paused {
		return s.failed("withdraw_pool", ErrNotPaused)
	}
	if amount == nil || amount.Sign() <= 0 {
		return s.failed("withdraw_pool", ErrInvalidAmount)
	}

	balance, err := s.gateway.BalanceOf(s.vault)
	if err != nil {
		return s.failed("withdraw_pool", asTransferErr(err))
	}
	float := new(big.Int).Sub(balance, s.totalStakedLocked())
	if amount.Cmp(float) > 0 {
		return s.failed("withdraw_pool", ErrInsufficientBalance)
	}

	snap := s.gateway.Snapshot()
	if err := s.gateway.Push(caller, amount); err != nil {
		s.gateway.RevertTo(snap)
		return s.failed("withdraw_pool", asTransferErr(err))
	}
	s.feed.Publish(&Event{Kind: KindRewardsPoolTransferred, Account: caller, Amount: amount})
	metricOpCount().AddWithLabel(1, map[string]string{"op": "withdraw_pool", "status": "ok"})
	logger.Info("reward pool withdrawn", "by", caller, "amount", amount)
	return nil
}

// RescueToken pushes a foreign token out of vault custody. The staking token
// itself is not rescuable.
func (s *Staker) RescueToken(caller lode.Address, foreign token.Gateway, to lode.Address, amount *big.Int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if caller != s.owner {
		return ErrUnauthorized
	}
	if foreign == s.gateway {
		return ErrInvalidToken
	}
	if amount == nil || amount.Sign() <= 0 {
		return ErrInvalidAmount
	}
	if err := foreign.Push(to, amount); err != nil {
		return asTransferErr(err)
	}
	logger.Info("foreign token rescued", "by", caller, "to", to, "amount", amount)
	return nil
}

// SetAnnualRate updates the reward rate (RateDenominator fixed units).
// Accounts keep accruing at the new rate from their last settlement.
func (s *Staker) SetAnnualRate(caller lode.Address, rate uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if caller != s.owner {
		return ErrUnauthorized
	}

	g := s.globals()
	g.AnnualRate = rate
	if err := s.store.saveGlobals(g); err != nil {
		return errors.Wrap(err, "persist globals")
	}
	s.annualRate = rate
	logger.Info("annual rate updated", "rate", rate)
	return nil
}

// SetPenaltyEnabled toggles the early-withdrawal penalty schedule.
func (s *Staker) SetPenaltyEnabled(caller lode.Address, enabled bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if caller != s.owner {
		return ErrUnauthorized
	}

	g := s.globals()
	g.PenaltyEnabled = enabled
	if err := s.store.saveGlobals(g); err != nil {
		return errors.Wrap(err, "persist globals")
	}
	s.penaltyEnabled = enabled
	logger.Info("penalty schedule toggled", "enabled", enabled)
	return nil
}

//
// Views
//

// PendingReward returns the reward the account would receive if settled now.
func (s *Staker) PendingReward(addr lode.Address, now uint64) *big.Int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	acct, ok := s.accounts[addr]
	if !ok || !s.holders.contains(addr) || now <= acct.LastSettled {
		return new(big.Int)
	}
	return CalcReward(acct.Staked, s.annualRate, now-acct.LastSettled)
}

// TotalStaked sums the staked amount over all registry members.
func (s *Staker) TotalStaked() *big.Int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.totalStakedLocked()
}

func (s *Staker) totalStakedLocked() *big.Int {
	total := new(big.Int)
	for i := 0; i < s.holders.count(); i++ {
		total.Add(total, s.accounts[s.holders.at(i)].Staked)
	}
	return total
}

// HolderCount returns the number of accounts with non-zero stake.
func (s *Staker) HolderCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.holders.count()
}

// HolderAt returns the registry member at the given position.
func (s *Staker) HolderAt(index uint64) (lode.Address, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if index >= uint64(s.holders.count()) {
		return lode.Address{}, ErrInvalidRange
	}
	return s.holders.at(int(index)), nil
}

// IsHolder reports registry membership.
func (s *Staker) IsHolder(addr lode.Address) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.holders.contains(addr)
}

// ListStakers returns ledger rows for registry members in [start, end).
func (s *Staker) ListStakers(start, end uint64) ([]*StakerInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	addrs, err := s.holders.enumerate(start, end)
	if err != nil {
		return nil, err
	}
	out := make([]*StakerInfo, 0, len(addrs))
	for _, addr := range addrs {
		acct := s.accounts[addr]
		out = append(out, &StakerInfo{
			Address:     addr,
			Staked:      new(big.Int).Set(acct.Staked),
			StakeStart:  acct.StakeStart,
			LastSettled: acct.LastSettled,
		})
	}
	return out, nil
}

// GetAccount returns a copy of the ledger entry, or false if the address
// never staked.
func (s *Staker) GetAccount(addr lode.Address) (*Account, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	acct, ok := s.accounts[addr]
	if !ok {
		return nil, false
	}
	return acct.clone(), true
}

// TotalClaimed returns the cumulative rewards ever paid, any account.
func (s *Staker) TotalClaimed() *big.Int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return new(big.Int).Set(s.totalClaimed)
}

// Paused reports the pause gate.
func (s *Staker) Paused() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.paused
}

// AnnualRate returns the reward rate in RateDenominator fixed units.
func (s *Staker) AnnualRate() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.annualRate
}

// PenaltyEnabled reports whether the penalty schedule applies.
func (s *Staker) PenaltyEnabled() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.penaltyEnabled
}

// Owner returns the administrative capability holder.
func (s *Staker) Owner() lode.Address { return s.owner }

// Treasury returns the penalty recipient.
func (s *Staker) Treasury() lode.Address { return s.treasury }

// Vault returns the custody account at the token gateway.
func (s *Staker) Vault() lode.Address { return s.vault }

// SubscribeEvents registers an event subscriber on the feed.
func (s *Staker) SubscribeEvents(buffer int) (<-chan *Event, func()) {
	return s.feed.Subscribe(buffer)
}

// SeedEventSeq continues event numbering from the given sequence. Callers
// persisting the feed must seed it at startup with the highest stored
// sequence, or new events collide with the stored history.
func (s *Staker) SeedEventSeq(seq uint64) {
	s.feed.SeedSeq(seq)
}

//
// Journal
//

// journal stages the mutation of a single operation. Nothing it holds is
// observable until commit.
type journal struct {
	addr    lode.Address
	acct    *Account
	add     bool
	remove  bool
	claimed *big.Int
	events  []*Event
}

func (s *Staker) newJournal(addr lode.Address) *journal {
	j := &journal{addr: addr, claimed: new(big.Int)}
	if acct, ok := s.accounts[addr]; ok {
		j.acct = acct.clone()
	} else {
		j.acct = newAccount()
	}
	return j
}

func (j *journal) emit(kind EventKind, addr lode.Address, amount *big.Int) {
	j.events = append(j.events, &Event{Kind: kind, Account: addr, Amount: amount})
}

func (s *Staker) globals() *globals {
	return &globals{
		TotalClaimed:   new(big.Int).Set(s.totalClaimed),
		AnnualRate:     s.annualRate,
		PenaltyEnabled: s.penaltyEnabled,
		Paused:         s.paused,
	}
}

// finish converts the journal into committed state, or unwinds the gateway
// scope when anything failed.
func (s *Staker) finish(op string, j *journal, snap int, err error) error {
	if err == nil {
		err = s.commit(j)
	}
	if err != nil {
		s.gateway.RevertTo(snap)
		metricOpCount().AddWithLabel(1, map[string]string{"op": op, "status": "failed"})
		return err
	}
	metricOpCount().AddWithLabel(1, map[string]string{"op": op, "status": "ok"})
	return nil
}

// commit persists the staged mutation, applies it to the in-memory ledger
// and publishes the queued events. The in-memory ledger is untouched when
// the store write fails.
func (s *Staker) commit(j *journal) error {
	next := s.holders
	if j.add || j.remove {
		next = s.holders.clone()
		if j.add {
			next.add(j.addr)
		}
		if j.remove {
			next.remove(j.addr)
		}
	}

	g := s.globals()
	g.TotalClaimed.Add(g.TotalClaimed, j.claimed)

	if err := s.store.save(j.addr, j.acct, next.snapshot(), g); err != nil {
		return errors.Wrap(err, "persist ledger")
	}

	s.accounts[j.addr] = j.acct
	s.holders = next
	s.totalClaimed = g.TotalClaimed
	metricHolderCount().Set(int64(s.holders.count()))

	for _, ev := range j.events {
		if ev.Kind == KindRewardsTransferred && ev.Amount.IsInt64() {
			metricSettled().Observe(ev.Amount.Int64())
		}
	}
	s.feed.Publish(j.events...)
	return nil
}

func (s *Staker) failed(op string, err error) error {
	metricOpCount().AddWithLabel(1, map[string]string{"op": op, "status": "failed"})
	return err
}
