package service

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Kerhoff/prodbot/internal/models"
)

func TestExpirySweepNotifiesExpiredFamiliesOnly(t *testing.T) {
	store := newFakeStore()
	store.addUser(1, 1, models.CurrentAction{})
	store.addUser(2, 1, models.CurrentAction{})
	store.addUser(3, 3, models.CurrentAction{})
	store.addProduct(1, 1111, "Молоко", testNow.Add(-24*time.Hour), nil)
	store.addProduct(3, 2222, "Яйца", testNow.Add(24*time.Hour), nil)
	// Withdrawn products never trigger reminders even when long expired.
	withdrawn := testNow.Add(-time.Hour)
	store.addProduct(3, 3333, "Сыр", testNow.Add(-48*time.Hour), &withdrawn)
	s := newTestService(store)

	old := sweepSendInterval
	sweepSendInterval = time.Millisecond
	defer func() { sweepSendInterval = old }()

	var notified []int64
	err := s.ExpirySweep(context.Background(), func(userID int64, text string) error {
		require.Contains(t, text, "/listexpired")
		notified = append(notified, userID)
		return nil
	})
	require.NoError(t, err)

	sort.Slice(notified, func(i, j int) bool { return notified[i] < notified[j] })
	require.Equal(t, []int64{1, 2}, notified)
}

func TestExpirySweepSurvivesDeliveryFailures(t *testing.T) {
	store := newFakeStore()
	store.addUser(1, 1, models.CurrentAction{})
	store.addUser(2, 1, models.CurrentAction{})
	store.addProduct(1, 1111, "Молоко", testNow.Add(-24*time.Hour), nil)
	s := newTestService(store)

	old := sweepSendInterval
	sweepSendInterval = time.Millisecond
	defer func() { sweepSendInterval = old }()

	var notified []int64
	err := s.ExpirySweep(context.Background(), func(userID int64, _ string) error {
		if userID == 1 {
			return errors.New("blocked by user")
		}
		notified = append(notified, userID)
		return nil
	})
	require.NoError(t, err)
	require.Equal(t, []int64{2}, notified)
}

func TestRetentionPurge(t *testing.T) {
	store := newFakeStore()
	store.addUser(1, 1, models.CurrentAction{})
	withdrawn := testNow.Add(-10 * 24 * time.Hour)
	// Withdrawn and expired well past the grace period: purged.
	store.addProduct(1, 1111, "Молоко", testNow.Add(-10*24*time.Hour), &withdrawn)
	// Withdrawn but expired only yesterday: kept.
	store.addProduct(1, 2222, "Яйца", testNow.Add(-24*time.Hour), &withdrawn)
	// Long expired but never withdrawn: kept, it still shows in /listexpired.
	store.addProduct(1, 3333, "Сыр", testNow.Add(-30*24*time.Hour), nil)

	store.invites[111111] = &models.Invite{Code: 111111, Family: 1, Expires: testNow.Add(-time.Minute)}
	store.invites[222222] = &models.Invite{Code: 222222, Family: 1, Expires: testNow.Add(time.Hour)}

	s := newTestService(store)
	require.NoError(t, s.RetentionPurge(context.Background()))

	require.Nil(t, store.products[1][1111])
	require.NotNil(t, store.products[1][2222])
	require.NotNil(t, store.products[1][3333])
	require.Nil(t, store.invites[111111])
	require.NotNil(t, store.invites[222222])
}

func TestParseClock(t *testing.T) {
	hour, minute, err := parseClock("04:05")
	require.NoError(t, err)
	require.Equal(t, 4, hour)
	require.Equal(t, 5, minute)

	for _, bad := range []string{"", "10", "10:70", "24:00", "x:00", "10:00:00"} {
		_, _, err := parseClock(bad)
		require.Error(t, err, "parseClock(%q)", bad)
	}
}

func TestNextRun(t *testing.T) {
	now := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

	t.Run("later today", func(t *testing.T) {
		require.Equal(t, time.Date(2024, 6, 15, 18, 30, 0, 0, time.UTC), nextRun(now, 18, 30))
	})

	t.Run("already passed rolls to tomorrow", func(t *testing.T) {
		require.Equal(t, time.Date(2024, 6, 16, 10, 0, 0, 0, time.UTC), nextRun(now, 10, 0))
	})

	t.Run("exactly now rolls to tomorrow", func(t *testing.T) {
		require.Equal(t, time.Date(2024, 6, 16, 12, 0, 0, 0, time.UTC), nextRun(now, 12, 0))
	})
}
