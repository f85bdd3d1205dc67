package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"math/big"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Kerhoff/prodbot/internal/models"
	"github.com/Kerhoff/prodbot/internal/repository"
)

const (
	productCodeMin = 1000
	productCodeMax = 9999
	inviteCodeMin  = 100000
	inviteCodeMax  = 999999

	inviteTTL      = time.Hour
	retentionGrace = 7 * 24 * time.Hour

	// listLimit caps the /list and /listexpired output.
	listLimit = 20
)

// Reply is what an event handler should send back to the user. Text is
// Telegram Markdown; an empty Text means no reply at all. WithdrawCode,
// when non-zero, asks for an inline "withdraw" button for that product.
type Reply struct {
	Text         string
	WithdrawCode int
}

// Service implements the conversation state machine and the family
// ledger on top of a transactional store. Every public method runs as
// one atomic unit of work per inbound event.
type Service struct {
	store       repository.Store
	logger      *logrus.Logger
	maintSecret string

	// Replaceable in tests.
	now     func() time.Time
	randInt func(min, max int) (int, error)
}

// New creates a new Service with all required dependencies.
func New(store repository.Store, logger *logrus.Logger) *Service {
	return &Service{
		store:       store,
		logger:      logger,
		maintSecret: newMaintenanceSecret(),
		now:         time.Now,
		randInt:     cryptoRandInt,
	}
}

// MaintenanceSecret returns the per-process secret required by the
// privileged /sweep and /purge commands.
func (s *Service) MaintenanceSecret() string {
	return s.maintSecret
}

// ensureUser resolves a sender identity to its user row, provisioning a
// fresh self-owned family on first contact. The returned row is locked
// for the remainder of the unit of work, so concurrent events for the
// same user serialize here.
func (s *Service) ensureUser(ctx context.Context, r repository.Repos, id int64) (*models.User, error) {
	user, err := r.Users.GetForUpdate(ctx, id)
	if err != nil {
		return nil, err
	}
	if user != nil {
		return user, nil
	}

	// First contact. The insert is at-most-once; the locked re-read
	// returns the authoritative row whichever event created it.
	if _, err := r.Users.Create(ctx, &models.User{ID: id, Family: id}); err != nil {
		return nil, err
	}
	user, err = r.Users.GetForUpdate(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, fmt.Errorf("user %d missing after insert", id)
	}

	s.logger.WithFields(logrus.Fields{"user_id": id}).Info("Registered new user")
	return user, nil
}

// allocateProductCode draws product codes at random until one is free
// within the family. The caller must hold the family lock so that two
// concurrent allocations cannot pick the same code.
func (s *Service) allocateProductCode(ctx context.Context, r repository.Repos, family int64) (int, error) {
	for {
		code, err := s.randInt(productCodeMin, productCodeMax)
		if err != nil {
			return 0, err
		}
		exists, err := r.Products.CodeExists(ctx, family, code)
		if err != nil {
			return 0, err
		}
		if !exists {
			return code, nil
		}
	}
}

// allocateInviteCode draws invite codes at random until one is globally
// free. The caller must hold the invite allocation lock.
func (s *Service) allocateInviteCode(ctx context.Context, r repository.Repos) (int, error) {
	for {
		code, err := s.randInt(inviteCodeMin, inviteCodeMax)
		if err != nil {
			return 0, err
		}
		exists, err := r.Invites.CodeExists(ctx, code)
		if err != nil {
			return 0, err
		}
		if !exists {
			return code, nil
		}
	}
}

// cryptoRandInt returns a uniformly random integer in [min, max].
func cryptoRandInt(min, max int) (int, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(int64(max-min+1)))
	if err != nil {
		return 0, fmt.Errorf("failed to draw random code: %w", err)
	}
	return min + int(n.Int64()), nil
}

func newMaintenanceSecret() string {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand never fails on supported platforms.
		panic(fmt.Sprintf("failed to generate maintenance secret: %v", err))
	}
	return hex.EncodeToString(buf)
}
