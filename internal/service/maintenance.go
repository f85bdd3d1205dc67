package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/Kerhoff/prodbot/internal/metrics"
	"github.com/Kerhoff/prodbot/internal/models"
	"github.com/Kerhoff/prodbot/internal/repository"
)

// Notifier delivers a plain text message to a user.
type Notifier func(userID int64, text string) error

const expiryReminderText = "⚠️ В вашей \"семье\" есть просроченные продукты: /listexpired"

// Telegram allows roughly 30 messages per second bot-wide.
var sweepSendInterval = 50 * time.Millisecond

// ExpirySweep finds every family with expired active products and sends
// each member a one-line reminder. Idempotent and safe to re-run; a
// delivery failure for one user never aborts delivery to the rest.
func (s *Service) ExpirySweep(ctx context.Context, notify Notifier) error {
	now := s.now()

	var users []*models.User
	err := s.store.RunTx(ctx, func(r repository.Repos) error {
		families, err := r.Products.ExpiredFamilies(ctx, now)
		if err != nil {
			return err
		}
		for _, family := range families {
			members, err := r.Users.GetByFamily(ctx, family)
			if err != nil {
				return err
			}
			users = append(users, members...)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("expiry sweep: %w", err)
	}

	// Sends happen outside the unit of work, paced to stay under the
	// Telegram API limit.
	limiter := rate.NewLimiter(rate.Every(sweepSendInterval), 1)
	var errs *multierror.Error
	sent := 0
	for _, u := range users {
		if err := limiter.Wait(ctx); err != nil {
			return fmt.Errorf("expiry sweep: %w", err)
		}
		if err := notify(u.ID, expiryReminderText); err != nil {
			errs = multierror.Append(errs, fmt.Errorf("user %d: %w", u.ID, err))
			continue
		}
		sent++
		metrics.SweepNotifications.Inc()
	}

	if err := errs.ErrorOrNil(); err != nil {
		s.logger.WithError(err).Warn("Some expiry reminders were not delivered")
	}
	s.logger.WithFields(logrus.Fields{
		"recipients": len(users),
		"sent":       sent,
	}).Info("Expiry sweep finished")
	return nil
}

// RetentionPurge permanently deletes products that are withdrawn and
// whose expiry date lies more than the grace period in the past, and
// drops expired invites along the way. Idempotent.
func (s *Service) RetentionPurge(ctx context.Context) error {
	now := s.now()
	return s.store.RunTx(ctx, func(r repository.Repos) error {
		purged, err := r.Products.DeleteWithdrawnExpiredBefore(ctx, now.Add(-retentionGrace))
		if err != nil {
			return fmt.Errorf("retention purge: %w", err)
		}
		dropped, err := r.Invites.DeleteExpired(ctx, now)
		if err != nil {
			return fmt.Errorf("retention purge: %w", err)
		}

		metrics.ProductsPurged.Add(float64(purged))
		s.logger.WithFields(logrus.Fields{
			"products": purged,
			"invites":  dropped,
		}).Info("Retention purge finished")
		return nil
	})
}

// StartMaintenanceScheduler runs the expiry sweep and the retention
// purge once a day at their configured HH:MM clock times. It blocks
// until the context is cancelled, so it should be launched in a
// separate goroutine.
func (s *Service) StartMaintenanceScheduler(ctx context.Context, sweepAt, purgeAt string, notify Notifier) {
	go s.runDaily(ctx, "expiry sweep", sweepAt, func(ctx context.Context) error {
		return s.ExpirySweep(ctx, notify)
	})
	s.runDaily(ctx, "retention purge", purgeAt, s.RetentionPurge)
}

func (s *Service) runDaily(ctx context.Context, name, at string, job func(context.Context) error) {
	hour, minute, err := parseClock(at)
	if err != nil {
		s.logger.Errorf("Invalid schedule for %s: %v", name, err)
		return
	}

	s.logger.Infof("Scheduled %s daily at %02d:%02d", name, hour, minute)

	for {
		now := s.now()
		timer := time.NewTimer(nextRun(now, hour, minute).Sub(now))
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
			if err := job(ctx); err != nil {
				s.logger.Errorf("Scheduled %s failed: %v", name, err)
			}
		}
	}
}

// nextRun returns the next occurrence of the given clock time strictly
// after now.
func nextRun(now time.Time, hour, minute int) time.Time {
	next := time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, now.Location())
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}

func parseClock(s string) (hour, minute int, err error) {
	parts := strings.Split(s, ":")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("expected HH:MM, got %q", s)
	}
	hour, err = strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, 0, fmt.Errorf("invalid hour in %q", s)
	}
	minute, err = strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("invalid minute in %q", s)
	}
	return hour, minute, nil
}
