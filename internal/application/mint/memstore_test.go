package mint

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"mint-server/internal/domain/gems"
	"mint-server/internal/domain/ledger"
	"mint-server/internal/domain/mint"
	"mint-server/internal/domain/period"
	"mint-server/internal/domain/user"
)

// accountRow 台帳アカウントの保存値
type accountRow struct {
	kind    ledger.AccountKind
	initial decimal.Decimal
	balance decimal.Decimal
	version int
}

// memState メモリ上のデータベース状態
type memState struct {
	accounts     map[string]accountRow
	transfers    []*ledger.TokenTransfer
	gemRecords   []*gems.GemRecord
	mintPeriods  map[string]*mint.MintPeriod
	attributions map[string]*mint.MintAttribution
}

func (s memState) clone() memState {
	c := memState{
		accounts:     make(map[string]accountRow, len(s.accounts)),
		transfers:    append([]*ledger.TokenTransfer(nil), s.transfers...),
		gemRecords:   append([]*gems.GemRecord(nil), s.gemRecords...),
		mintPeriods:  make(map[string]*mint.MintPeriod, len(s.mintPeriods)),
		attributions: make(map[string]*mint.MintAttribution, len(s.attributions)),
	}
	for k, v := range s.accounts {
		c.accounts[k] = v
	}
	for k, v := range s.mintPeriods {
		c.mintPeriods[k] = v
	}
	for k, v := range s.attributions {
		c.attributions[k] = v
	}
	return c
}

// memStore トランザクションのロールバックを再現するインメモリストア
//
// WithTransaction 中に fn がエラーを返すと開始前の状態に戻す。
type memStore struct {
	mu    sync.Mutex
	state memState
	users map[string]*user.User

	mintAccountID string
	// failSaveFor このアカウントIDの残高保存を失敗させる
	failSaveFor string
	// failInsertPeriod ミント記録の登録を失敗させる
	failInsertPeriod error
}

func newMemStore(mintBalance decimal.Decimal) *memStore {
	return &memStore{
		state: memState{
			accounts: map[string]accountRow{
				"mint": {kind: ledger.AccountKindMint, initial: mintBalance, balance: mintBalance},
			},
			mintPeriods:  map[string]*mint.MintPeriod{},
			attributions: map[string]*mint.MintAttribution{},
		},
		users: map[string]*user.User{
			"admin": user.MustNewUser("admin", user.RoleAdmin, user.StatusActive),
		},
		mintAccountID: "mint",
	}
}

func (m *memStore) addUser(id string, status user.Status) {
	m.users[id] = user.MustNewUser(id, user.RoleUser, status)
}

func (m *memStore) addGem(id, userID string, amount string, whereby gems.Whereby, createdAt time.Time) {
	m.state.gemRecords = append(m.state.gemRecords,
		gems.MustNewGemRecord(id, userID, "post-"+userID, "fan", decimal.RequireFromString(amount), whereby, createdAt))
}

func (m *memStore) balance(accountID string) decimal.Decimal {
	return m.state.accounts[accountID].balance
}

// WithTransaction transaction.TransactionManager
func (m *memStore) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	snapshot := m.state.clone()
	if err := fn(ctx); err != nil {
		m.state = snapshot
		return err
	}
	return nil
}

// memGems gems.GemsRepository
type memGems struct{ *memStore }

func (r memGems) FetchUncollectedForPeriod(_ context.Context, window period.Window) ([]*gems.GemRecord, error) {
	var out []*gems.GemRecord
	for _, g := range r.state.gemRecords {
		if _, paid := r.state.attributions[g.GemID()]; paid {
			continue
		}
		if window.Contains(g.CreatedAt()) {
			out = append(out, g)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].UserID() != out[j].UserID() {
			return out[i].UserID() < out[j].UserID()
		}
		return out[i].GemID() < out[j].GemID()
	})
	return out, nil
}

func (r memGems) CountUncollected(ctx context.Context, window period.Window) (*gems.WindowStat, error) {
	records, _ := r.FetchUncollectedForPeriod(ctx, window)
	stat := &gems.WindowStat{Code: window.Code, Key: window.Key(), TotalGems: decimal.Zero}
	for _, g := range records {
		stat.Count++
		stat.TotalGems = stat.TotalGems.Add(g.Amount())
	}
	return stat, nil
}

func (r memGems) FindUncollectedInteractions(context.Context, gems.Category) ([]*gems.Interaction, error) {
	return nil, nil
}

func (r memGems) InsertGems(context.Context, []*gems.GemRecord) (int64, error) {
	return 0, nil
}

func (r memGems) MarkCollected(context.Context, gems.Category, []string) error {
	return nil
}

// memMints mint.MintPeriodRepository
type memMints struct{ *memStore }

func (r memMints) FindByPeriodKey(_ context.Context, periodKey string) (*mint.MintPeriod, error) {
	if p, ok := r.state.mintPeriods[periodKey]; ok {
		return p, nil
	}
	return nil, mint.ErrMintNotFound
}

func (r memMints) Insert(_ context.Context, p *mint.MintPeriod) error {
	if r.failInsertPeriod != nil {
		return r.failInsertPeriod
	}
	if _, ok := r.state.mintPeriods[p.PeriodKey()]; ok {
		return mint.ErrAlreadyMinted
	}
	r.state.mintPeriods[p.PeriodKey()] = p
	return nil
}

func (r memMints) InsertAttributions(_ context.Context, attributions []*mint.MintAttribution) error {
	for _, a := range attributions {
		if _, ok := r.state.attributions[a.GemID]; ok {
			return mint.ErrAlreadyMinted
		}
		r.state.attributions[a.GemID] = a
	}
	return nil
}

func (r memMints) List(_ context.Context, limit, offset int) ([]*mint.MintPeriod, error) {
	var out []*mint.MintPeriod
	for _, p := range r.state.mintPeriods {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PeriodKey() > out[j].PeriodKey() })
	if offset >= len(out) {
		return nil, nil
	}
	out = out[offset:]
	if limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

// memMintAccount mint.MintAccountRepository
type memMintAccount struct{ *memStore }

func (r memMintAccount) Find(context.Context) (*mint.MintAccount, error) {
	row, ok := r.state.accounts[r.mintAccountID]
	if !ok || row.kind != ledger.AccountKindMint {
		return nil, mint.ErrConfigurationMissing
	}
	return mint.NewMintAccount(r.mintAccountID, row.initial, row.balance, time.Time{}, time.Time{})
}

func (r memMintAccount) FindForUpdate(ctx context.Context) (*mint.MintAccount, error) {
	return r.Find(ctx)
}

// memAccounts ledger.AccountRepository
type memAccounts struct{ *memStore }

func (r memAccounts) FindByIDForUpdate(_ context.Context, accountID string) (*ledger.Account, error) {
	row, ok := r.state.accounts[accountID]
	if !ok {
		return nil, ledger.ErrAccountNotFound
	}
	return ledger.NewAccount(accountID, row.kind, row.balance, row.version)
}

func (r memAccounts) Create(_ context.Context, a *ledger.Account) error {
	if _, ok := r.state.accounts[a.AccountID()]; ok {
		return errors.New("duplicate account")
	}
	r.state.accounts[a.AccountID()] = accountRow{kind: a.Kind(), initial: a.Balance(), balance: a.Balance(), version: a.Version()}
	return nil
}

func (r memAccounts) Save(_ context.Context, a *ledger.Account) error {
	if a.AccountID() == r.failSaveFor {
		return errors.New("disk full")
	}
	row, ok := r.state.accounts[a.AccountID()]
	if !ok {
		return ledger.ErrAccountNotFound
	}
	if row.version != a.Version()-1 {
		return ledger.ErrVersionConflict
	}
	row.balance = a.Balance()
	row.version = a.Version()
	r.state.accounts[a.AccountID()] = row
	return nil
}

// memTransfers ledger.TransferRepository
type memTransfers struct{ *memStore }

func (r memTransfers) Create(_ context.Context, t *ledger.TokenTransfer) error {
	r.state.transfers = append(r.state.transfers, t)
	return nil
}

// memUsers user.UserRepository
type memUsers struct{ *memStore }

func (r memUsers) FindByID(_ context.Context, userID string) (*user.User, error) {
	if u, ok := r.users[userID]; ok {
		return u, nil
	}
	return nil, user.ErrUserNotFound
}
