package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Kerhoff/prodbot/internal/metrics"
	"github.com/Kerhoff/prodbot/internal/models"
	"github.com/Kerhoff/prodbot/internal/repository"
)

// HandleText interprets one free-text message against the sender's
// pending action. Commands never reach this path; the router dispatches
// them first.
func (s *Service) HandleText(ctx context.Context, userID int64, text string) (Reply, error) {
	var reply Reply
	err := s.store.RunTx(ctx, func(r repository.Repos) error {
		user, err := s.ensureUser(ctx, r, userID)
		if err != nil {
			return err
		}

		switch user.CurrentAction.Kind {
		case models.ActionRequestName:
			reply, err = s.handleProductName(ctx, r, user, text)
		case models.ActionRequestDate:
			reply, err = s.handleProductDate(ctx, r, user, text)
		case models.ActionAcceptInvite:
			reply, err = s.handleInviteCode(ctx, r, user, text)
		case models.ActionInventory:
			reply, err = s.handleInventoryCodes(ctx, r, user, text)
		default:
			reply, err = s.handleCodeLookup(ctx, r, user, text)
		}
		return err
	})
	return reply, err
}

func (s *Service) handleProductName(ctx context.Context, r repository.Repos, user *models.User, text string) (Reply, error) {
	name := strings.TrimSpace(text)
	if name == "" {
		return Reply{Text: "Введите наименование продукта (например, _молоко_)"}, nil
	}

	user.CurrentAction = models.CurrentAction{Kind: models.ActionRequestDate, Name: name}
	if _, err := r.Users.Update(ctx, user); err != nil {
		return Reply{}, err
	}
	return Reply{Text: "Укажите срок годности (например, 12, 12.06, 12.06.2024, 12.06.24). К сроку можно добавить количество дней (12.06 + 10 сут/мес/лет)"}, nil
}

func (s *Service) handleProductDate(ctx context.Context, r repository.Repos, user *models.User, text string) (Reply, error) {
	now := s.now()

	// Validation failures leave the pending action untouched so the
	// user can simply resend a corrected date.
	expires, err := ParseExpiry(text, now)
	switch {
	case errors.Is(err, ErrBadModifier):
		return Reply{Text: "Указан неверный модификатор даты"}, nil
	case err != nil:
		return Reply{Text: "Указана некорректная дата"}, nil
	}
	if expires.Before(now) {
		return Reply{Text: "Указана дата меньше текущей. Продукт не просрочен?"}, nil
	}

	if err := r.Products.LockFamily(ctx, user.Family); err != nil {
		return Reply{}, err
	}
	code, err := s.allocateProductCode(ctx, r, user.Family)
	if err != nil {
		return Reply{}, err
	}

	product := &models.Product{
		Code:    code,
		Family:  user.Family,
		Name:    user.CurrentAction.Name,
		Expires: expires,
	}
	if _, err := r.Products.Create(ctx, product); err != nil {
		return Reply{}, err
	}

	user.ClearAction()
	if _, err := r.Users.Update(ctx, user); err != nil {
		return Reply{}, err
	}

	metrics.ProductsCreated.Inc()
	s.logger.WithFields(logrus.Fields{
		"user_id": user.ID,
		"family":  user.Family,
		"code":    code,
	}).Info("Product registered")

	return Reply{Text: fmt.Sprintf("Код нового продукта: *%d*\nСрок годности: %s", code, expires.Format("02.01.2006"))}, nil
}

func (s *Service) handleInviteCode(ctx context.Context, r repository.Repos, user *models.User, text string) (Reply, error) {
	code, err := strconv.Atoi(strings.TrimSpace(text))
	if err != nil {
		// Not a number at all: let the user retry without restarting
		// the flow.
		return Reply{Text: "Код приглашения указан неверно"}, nil
	}

	// Ledger rejections are final for this attempt: the pending action
	// is cleared either way, no retry loop.
	clearAction := func() error {
		user.ClearAction()
		_, err := r.Users.Update(ctx, user)
		return err
	}

	invite, err := r.Invites.GetForUpdate(ctx, code)
	if err != nil {
		return Reply{}, err
	}
	if invite == nil || invite.IsExpired(s.now()) {
		if err := clearAction(); err != nil {
			return Reply{}, err
		}
		return Reply{Text: "Код приглашения отсутствует или срок его действия истек"}, nil
	}

	if invite.Family == user.Family {
		if err := clearAction(); err != nil {
			return Reply{}, err
		}
		return Reply{Text: "Код приглашения относится к текущей \"семье\""}, nil
	}

	active, err := r.Products.CountActive(ctx, user.Family, time.Time{})
	if err != nil {
		return Reply{}, err
	}
	if active > 0 {
		// Switching away would leave the family's products behind
		// unseen; the caller must withdraw them first.
		if err := clearAction(); err != nil {
			return Reply{}, err
		}
		return Reply{Text: "У вас сейчас есть активные продукты. Переключение на другую \"семью\" невозможно"}, nil
	}

	user.Family = invite.Family
	user.ClearAction()
	if _, err := r.Users.Update(ctx, user); err != nil {
		return Reply{}, err
	}
	if err := r.Invites.Delete(ctx, invite.Code); err != nil {
		return Reply{}, err
	}

	metrics.InvitesRedeemed.Inc()
	s.logger.WithFields(logrus.Fields{
		"user_id": user.ID,
		"family":  user.Family,
	}).Info("Invite redeemed")

	return Reply{Text: "Вы успешно переключились на другую \"семью\""}, nil
}

func (s *Service) handleInventoryCodes(ctx context.Context, r repository.Repos, user *models.User, text string) (Reply, error) {
	found := make(map[int]bool)
	for _, line := range strings.Split(text, "\n") {
		code, err := strconv.Atoi(strings.TrimSpace(line))
		if err != nil {
			continue
		}
		found[code] = true
	}

	products, err := r.Products.ListActive(ctx, user.Family, time.Time{}, 0)
	if err != nil {
		return Reply{}, err
	}

	user.ClearAction()
	if _, err := r.Users.Update(ctx, user); err != nil {
		return Reply{}, err
	}

	var missing []string
	for _, p := range products {
		if !found[p.Code] {
			missing = append(missing, fmt.Sprintf("*№%d* %s (до %s)", p.Code, p.Name, p.Expires.Format("02.01.06")))
		}
	}
	if len(missing) == 0 {
		return Reply{Text: "Все продукты на месте 👍"}, nil
	}
	return Reply{Text: "Не найдены следующие продукты:\n" + strings.Join(missing, "\n")}, nil
}

// handleCodeLookup is the fallback for free text with nothing pending:
// a bare product code replies with the product details and a withdraw
// button; anything else is silently ignored.
func (s *Service) handleCodeLookup(ctx context.Context, r repository.Repos, user *models.User, text string) (Reply, error) {
	code, err := strconv.Atoi(strings.TrimSpace(text))
	if err != nil || code < productCodeMin || code > productCodeMax {
		return Reply{}, nil
	}

	product, err := r.Products.GetForUpdate(ctx, user.Family, code)
	if err != nil {
		return Reply{}, err
	}
	if product == nil {
		return Reply{Text: "Продукт с указанным кодом не найден"}, nil
	}
	if product.IsWithdrawn() {
		return Reply{Text: "Продукт с указанным кодом уже удален"}, nil
	}

	return Reply{
		Text:         fmt.Sprintf("Продукт: *%d*\n%s\nСрок годности: %s", product.Code, product.Name, product.Expires.Format("02.01.2006")),
		WithdrawCode: product.Code,
	}, nil
}
