package service

import (
	"context"
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"mint-server/internal/domain/ledger"

	"github.com/shopspring/decimal"
)

// TokenLedger アカウント間のトークン送金を行うドメインサービス
//
// トランザクションの開始・確定は行わない。呼び出し元の ctx が保持するトランザクションに参加する。
type TokenLedger struct {
	accountRepo  ledger.AccountRepository
	transferRepo ledger.TransferRepository
	now          func() time.Time
}

// NewTokenLedger 新しいTokenLedgerを作成
func NewTokenLedger(accountRepo ledger.AccountRepository, transferRepo ledger.TransferRepository, now func() time.Time) *TokenLedger {
	if now == nil {
		now = time.Now
	}
	return &TokenLedger{
		accountRepo:  accountRepo,
		transferRepo: transferRepo,
		now:          now,
	}
}

// Transfer sender から recipient へ amount を送金し、送金記録を返す
func (l *TokenLedger) Transfer(
	ctx context.Context,
	senderID string,
	recipientID string,
	amount decimal.Decimal,
	strategy ledger.Strategy,
	message string,
) (*ledger.TokenTransfer, error) {
	if !amount.IsPositive() {
		return nil, ledger.ErrInvalidAmount
	}
	if senderID == recipientID {
		return nil, ledger.ErrSameAccount
	}
	if utf8.RuneCountInString(message) > ledger.MaxMessageLength {
		return nil, ledger.ErrMessageTooLong
	}

	sender, recipient, err := l.lockPair(ctx, senderID, recipientID)
	if err != nil {
		return nil, err
	}

	senderChange := ledger.BalanceChange{Before: sender.Balance()}
	recipientChange := ledger.BalanceChange{Before: recipient.Balance()}

	if err := sender.Debit(amount); err != nil {
		return nil, err
	}
	if err := recipient.Credit(amount); err != nil {
		return nil, err
	}
	senderChange.After = sender.Balance()
	recipientChange.After = recipient.Balance()

	if err := l.accountRepo.Save(ctx, sender); err != nil {
		return nil, fmt.Errorf("failed to save sender account: %w", err)
	}
	if err := l.accountRepo.Save(ctx, recipient); err != nil {
		return nil, fmt.Errorf("failed to save recipient account: %w", err)
	}

	category := ledger.CategoryTransfer
	if sender.Kind() == ledger.AccountKindMint {
		category = ledger.CategoryMint
	}

	transfer, err := ledger.NewTokenTransfer(
		strategy(),
		sender.AccountID(),
		recipient.AccountID(),
		amount,
		category,
		message,
		senderChange,
		recipientChange,
		l.now(),
	)
	if err != nil {
		return nil, err
	}
	if err := l.transferRepo.Create(ctx, transfer); err != nil {
		return nil, fmt.Errorf("failed to record transfer: %w", err)
	}

	return transfer, nil
}

// lockPair 2つのアカウントをID昇順でロックする
func (l *TokenLedger) lockPair(ctx context.Context, senderID, recipientID string) (*ledger.Account, *ledger.Account, error) {
	order := []string{senderID, recipientID}
	if recipientID < senderID {
		order = []string{recipientID, senderID}
	}

	locked := make(map[string]*ledger.Account, 2)
	for _, id := range order {
		account, err := l.accountRepo.FindByIDForUpdate(ctx, id)
		switch {
		case err == nil:
		case errors.Is(err, ledger.ErrAccountNotFound) && id == recipientID:
			// 受け取り側のウォレットがなければ残高0で作成
			account, err = ledger.NewAccount(recipientID, ledger.AccountKindUser, decimal.Zero, 0)
			if err != nil {
				return nil, nil, err
			}
			if err := l.accountRepo.Create(ctx, account); err != nil {
				return nil, nil, fmt.Errorf("failed to create recipient wallet: %w", err)
			}
		default:
			return nil, nil, err
		}
		locked[id] = account
	}

	return locked[senderID], locked[recipientID], nil
}
