package memory

import (
	"context"
	"sync"
	"time"

	"github.com/storymint/storymint-server/pkg/storymint/ledger"
)

type txContextKey struct{}

type store struct {
	mu       sync.Mutex
	accounts map[string]*ledger.Account
	last     uint64
}

func New() ledger.Store {
	return &store{
		accounts: make(map[string]*ledger.Account),
	}
}

func (s *store) reset() {
	s.mu.Lock()
	s.accounts = make(map[string]*ledger.Account)
	s.last = 0
	s.mu.Unlock()
}

// lock acquires the store mutex unless the context is already executing
// within a transaction owned by this store, which holds the lock for its
// entire scope.
func (s *store) lock(ctx context.Context) func() {
	if ctx.Value(txContextKey{}) == s {
		return func() {}
	}

	s.mu.Lock()
	return s.mu.Unlock
}

func (s *store) snapshot() map[string]*ledger.Account {
	snapshot := make(map[string]*ledger.Account, len(s.accounts))
	for address, item := range s.accounts {
		cloned := item.Clone()
		snapshot[address] = &cloned
	}
	return snapshot
}

func (s *store) ExecuteTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if ctx.Value(txContextKey{}) != nil {
		return ledger.ErrAlreadyInTx
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.snapshot()
	last := s.last

	if err := fn(context.WithValue(ctx, txContextKey{}, s)); err != nil {
		s.accounts = snapshot
		s.last = last
		return err
	}

	return nil
}

func (s *store) Count(ctx context.Context) (uint64, error) {
	unlock := s.lock(ctx)
	defer unlock()

	return uint64(len(s.accounts)), nil
}

func (s *store) Get(ctx context.Context, address string) (*ledger.Account, error) {
	unlock := s.lock(ctx)
	defer unlock()

	if item, ok := s.accounts[address]; ok {
		cloned := item.Clone()
		return &cloned, nil
	}

	return nil, ledger.ErrAccountNotFound
}

func (s *store) Create(ctx context.Context, record *ledger.Account, funder string) error {
	if err := record.Validate(); err != nil {
		return err
	}

	unlock := s.lock(ctx)
	defer unlock()

	if _, ok := s.accounts[record.Address]; ok {
		return ledger.ErrAccountExists
	}

	source, ok := s.accounts[funder]
	if !ok {
		return ledger.ErrAccountNotFound
	}
	if source.Lamports < record.Lamports {
		return ledger.ErrInsufficientLamports
	}
	source.Lamports -= record.Lamports

	s.last++
	if record.Id == 0 {
		record.Id = s.last
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now().UTC()
	}

	cloned := record.Clone()
	s.accounts[record.Address] = &cloned

	return nil
}

func (s *store) Airdrop(ctx context.Context, address string, lamports uint64) error {
	unlock := s.lock(ctx)
	defer unlock()

	s.credit(address, lamports)

	return nil
}

func (s *store) Transfer(ctx context.Context, source, destination string, lamports uint64) error {
	unlock := s.lock(ctx)
	defer unlock()

	from, ok := s.accounts[source]
	if !ok {
		return ledger.ErrAccountNotFound
	}
	if _, ok := s.accounts[destination]; !ok {
		return ledger.ErrAccountNotFound
	}

	if from.Lamports < lamports {
		return ledger.ErrInsufficientLamports
	}

	from.Lamports -= lamports
	s.accounts[destination].Lamports += lamports

	return nil
}

func (s *store) SetData(ctx context.Context, address string, data []byte) error {
	unlock := s.lock(ctx)
	defer unlock()

	item, ok := s.accounts[address]
	if !ok {
		return ledger.ErrAccountNotFound
	}

	cloned := make([]byte, len(data))
	copy(cloned, data)
	item.Data = cloned

	return nil
}

func (s *store) Close(ctx context.Context, address, recipient string) error {
	unlock := s.lock(ctx)
	defer unlock()

	item, ok := s.accounts[address]
	if !ok {
		return ledger.ErrAccountNotFound
	}

	balance := item.Lamports
	delete(s.accounts, address)
	s.credit(recipient, balance)

	return nil
}

// credit assumes the store lock is held.
func (s *store) credit(address string, lamports uint64) {
	if item, ok := s.accounts[address]; ok {
		item.Lamports += lamports
		return
	}

	s.last++
	s.accounts[address] = &ledger.Account{
		Id:        s.last,
		Address:   address,
		Owner:     ledger.SystemOwner,
		Lamports:  lamports,
		CreatedAt: time.Now().UTC(),
	}
}
