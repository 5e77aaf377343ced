package controller

import (
	"context"
	"fmt"

	e "github.com/OBuskas/ananaPayroll/internal/payroll/errors"
	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"
)

// TokenService exposes the token ledger to wallets: approvals, transfers,
// balances and the faucet.
type TokenService struct {
	x *executor
	// minter may mint; the zero address disables minting.
	minter common.Address
	logger *zap.Logger
}

func (s *TokenService) Decimals() uint8 {
	return s.x.decimals
}

func (s *TokenService) Approve(ctx context.Context, caller, spender common.Address, amount uint64) error {
	return s.x.run(ctx, func(c *call) error {
		return c.token.Approve(ctx, caller, spender, amount)
	})
}

func (s *TokenService) Transfer(ctx context.Context, caller, to common.Address, amount uint64) error {
	return s.x.run(ctx, func(c *call) error {
		return c.token.Transfer(ctx, caller, to, amount)
	})
}

func (s *TokenService) Mint(ctx context.Context, caller, to common.Address, amount uint64) error {
	if s.minter == (common.Address{}) || caller != s.minter {
		return fmt.Errorf("%w: not token minter", e.ErrUnauthorized)
	}
	err := s.x.run(ctx, func(c *call) error {
		return c.token.Mint(ctx, to, amount)
	})
	if err != nil {
		return err
	}
	s.logger.Info("Tokens minted",
		zap.String("to", to.Hex()),
		zap.Uint64("amount", amount),
	)
	return nil
}

func (s *TokenService) BalanceOf(ctx context.Context, owner common.Address) (uint64, error) {
	var balance uint64
	err := s.x.view(ctx, func(c *call) error {
		var err error
		balance, err = c.token.BalanceOf(ctx, owner)
		return err
	})
	return balance, err
}

func (s *TokenService) Allowance(ctx context.Context, owner, spender common.Address) (uint64, error) {
	var allowance uint64
	err := s.x.view(ctx, func(c *call) error {
		var err error
		allowance, err = c.token.Allowance(ctx, owner, spender)
		return err
	})
	return allowance, err
}
