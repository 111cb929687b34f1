package mint

import (
	"fmt"

	"mint-server/internal/domain/tokenmath"

	"github.com/shopspring/decimal"
)

// GemsInToken ジェムからトークンへの換算結果
type GemsInToken struct {
	TotalGems      decimal.Decimal
	GemsInToken    decimal.Decimal // 1ジェムあたりのトークン量
	ConfirmedTotal decimal.Decimal // TotalGems × GemsInToken（予算以下）
}

// ComputeGemsInToken 予算を合計ジェムで割って換算レートを求める
func ComputeGemsInToken(arith *tokenmath.Arithmetic, budget, totalGems decimal.Decimal) (*GemsInToken, error) {
	if !totalGems.IsPositive() {
		return nil, fmt.Errorf("%w: total gems must be positive", ErrArithmetic)
	}
	rate, err := arith.Divide(budget, totalGems)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrArithmetic, err)
	}
	if !rate.IsPositive() {
		// 予算に対してジェムが多すぎ、丸めでレートが0になった
		return nil, fmt.Errorf("%w: conversion rate rounds to zero", ErrInvalidAmount)
	}
	confirmed := arith.Multiply(totalGems, rate)
	if confirmed.GreaterThan(budget) {
		return nil, fmt.Errorf("%w: confirmed total %s exceeds budget %s", ErrArithmetic, confirmed, budget)
	}
	return &GemsInToken{
		TotalGems:      totalGems,
		GemsInToken:    rate,
		ConfirmedTotal: confirmed,
	}, nil
}

// TokensFor ジェム量に対するトークン量を返す
func (g *GemsInToken) TokensFor(arith *tokenmath.Arithmetic, gems decimal.Decimal) decimal.Decimal {
	return arith.Multiply(gems, g.GemsInToken)
}
