package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Kerhoff/prodbot/internal/metrics"
	"github.com/Kerhoff/prodbot/internal/models"
	"github.com/Kerhoff/prodbot/internal/repository"
)

// StartNewProduct handles /new: blocked while the family still has
// expired active products, otherwise the user is asked for the name.
func (s *Service) StartNewProduct(ctx context.Context, userID int64) (Reply, error) {
	var reply Reply
	err := s.store.RunTx(ctx, func(r repository.Repos) error {
		user, err := s.ensureUser(ctx, r, userID)
		if err != nil {
			return err
		}

		expired, err := r.Products.CountActive(ctx, user.Family, s.now())
		if err != nil {
			return err
		}
		if expired > 0 {
			reply = Reply{Text: "У вас есть просроченные продукты. Сначала разберитесь с ними: /listexpired"}
			return nil
		}

		user.CurrentAction = models.CurrentAction{Kind: models.ActionRequestName}
		if _, err := r.Users.Update(ctx, user); err != nil {
			return err
		}
		reply = Reply{Text: "Введите наименование продукта (например, _молоко_)"}
		return nil
	})
	return reply, err
}

// ListProducts handles /list and /listexpired. Read-only: the pending
// action is left untouched.
func (s *Service) ListProducts(ctx context.Context, userID int64, expiredOnly bool) (Reply, error) {
	var reply Reply
	err := s.store.RunTx(ctx, func(r repository.Repos) error {
		user, err := s.ensureUser(ctx, r, userID)
		if err != nil {
			return err
		}

		now := s.now()
		expiredBefore := time.Time{}
		if expiredOnly {
			expiredBefore = now
		}
		products, err := r.Products.ListActive(ctx, user.Family, expiredBefore, listLimit)
		if err != nil {
			return err
		}

		if len(products) == 0 {
			if expiredOnly {
				reply = Reply{Text: "Просроченных продуктов нет"}
			} else {
				reply = Reply{Text: "Нет активных продуктов"}
			}
			return nil
		}

		lines := make([]string, 0, len(products))
		for _, p := range products {
			line := fmt.Sprintf("*№%d* %s (до %s)", p.Code, p.Name, p.Expires.Format("02.01.06"))
			if !expiredOnly && p.IsExpired(now) {
				line += " ⚠️"
			}
			lines = append(lines, line)
		}
		reply = Reply{Text: strings.Join(lines, "\n")}
		return nil
	})
	return reply, err
}

// ActiveProducts returns a family's active products ordered by expiry,
// outside any conversational flow. Used by the operational HTTP API.
func (s *Service) ActiveProducts(ctx context.Context, family int64, expiredOnly bool) ([]*models.Product, error) {
	var products []*models.Product
	err := s.store.RunTx(ctx, func(r repository.Repos) error {
		expiredBefore := time.Time{}
		if expiredOnly {
			expiredBefore = s.now()
		}
		var err error
		products, err = r.Products.ListActive(ctx, family, expiredBefore, 0)
		return err
	})
	return products, err
}

// CreateInvite handles /invite: allocates a fresh globally unique
// 6-digit code valid for one hour.
func (s *Service) CreateInvite(ctx context.Context, userID int64) (Reply, error) {
	var reply Reply
	err := s.store.RunTx(ctx, func(r repository.Repos) error {
		user, err := s.ensureUser(ctx, r, userID)
		if err != nil {
			return err
		}

		if err := r.Invites.LockAll(ctx); err != nil {
			return err
		}
		code, err := s.allocateInviteCode(ctx, r)
		if err != nil {
			return err
		}

		invite := &models.Invite{
			Code:    code,
			Family:  user.Family,
			Expires: s.now().Add(inviteTTL),
		}
		if _, err := r.Invites.Create(ctx, invite); err != nil {
			return err
		}

		metrics.InvitesIssued.Inc()
		s.logger.WithFields(logrus.Fields{
			"user_id": userID,
			"family":  user.Family,
		}).Info("Invite issued")

		reply = Reply{Text: fmt.Sprintf("Новый код приглашения: *%d*\nКод действует 1 час", code)}
		return nil
	})
	return reply, err
}

// StartAcceptInvite handles /acceptinvite.
func (s *Service) StartAcceptInvite(ctx context.Context, userID int64) (Reply, error) {
	var reply Reply
	err := s.store.RunTx(ctx, func(r repository.Repos) error {
		user, err := s.ensureUser(ctx, r, userID)
		if err != nil {
			return err
		}

		user.CurrentAction = models.CurrentAction{Kind: models.ActionAcceptInvite}
		if _, err := r.Users.Update(ctx, user); err != nil {
			return err
		}
		reply = Reply{Text: "Введите код приглашения. Для отмены используйте /cancel"}
		return nil
	})
	return reply, err
}

// StartInventory handles /inventory: the next message is expected to
// list every product code physically found.
func (s *Service) StartInventory(ctx context.Context, userID int64) (Reply, error) {
	var reply Reply
	err := s.store.RunTx(ctx, func(r repository.Repos) error {
		user, err := s.ensureUser(ctx, r, userID)
		if err != nil {
			return err
		}

		user.CurrentAction = models.CurrentAction{Kind: models.ActionInventory}
		if _, err := r.Users.Update(ctx, user); err != nil {
			return err
		}
		reply = Reply{Text: "Отправьте одним сообщением коды всех найденных продуктов, каждый код с новой строки. Для отмены используйте /cancel"}
		return nil
	})
	return reply, err
}

// Cancel handles /cancel: unconditionally clears the pending action.
func (s *Service) Cancel(ctx context.Context, userID int64) (Reply, error) {
	var reply Reply
	err := s.store.RunTx(ctx, func(r repository.Repos) error {
		user, err := s.ensureUser(ctx, r, userID)
		if err != nil {
			return err
		}

		user.ClearAction()
		if _, err := r.Users.Update(ctx, user); err != nil {
			return err
		}
		reply = Reply{Text: "Текущее действие отменено"}
		return nil
	})
	return reply, err
}

// WithdrawProduct marks a product consumed/discarded. Triggered by the
// inline withdraw button, not by free text.
func (s *Service) WithdrawProduct(ctx context.Context, userID int64, code int) (Reply, error) {
	var reply Reply
	err := s.store.RunTx(ctx, func(r repository.Repos) error {
		user, err := s.ensureUser(ctx, r, userID)
		if err != nil {
			return err
		}

		product, err := r.Products.GetForUpdate(ctx, user.Family, code)
		if err != nil {
			return err
		}
		if product == nil {
			reply = Reply{Text: "Продукт с указанным кодом не найден"}
			return nil
		}
		if product.IsWithdrawn() {
			reply = Reply{Text: "Продукт с указанным кодом уже удален"}
			return nil
		}

		if err := r.Products.Withdraw(ctx, user.Family, code, s.now()); err != nil {
			return err
		}

		metrics.ProductsWithdrawn.Inc()
		s.logger.WithFields(logrus.Fields{
			"user_id": userID,
			"family":  user.Family,
			"code":    code,
		}).Info("Product withdrawn")

		reply = Reply{Text: "Продукт удален, спасибо :)"}
		return nil
	})
	return reply, err
}
