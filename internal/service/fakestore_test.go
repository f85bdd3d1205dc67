package service

import (
	"context"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Kerhoff/prodbot/internal/models"
	"github.com/Kerhoff/prodbot/internal/repository"
)

// fakeStore is an in-memory stand-in for the Postgres store. Units of
// work apply directly; the flow tests only exercise committed paths, so
// rollback fidelity is not needed here.
type fakeStore struct {
	users    map[int64]*models.User
	products map[int64]map[int]*models.Product
	invites  map[int]*models.Invite
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		users:    make(map[int64]*models.User),
		products: make(map[int64]map[int]*models.Product),
		invites:  make(map[int]*models.Invite),
	}
}

func (f *fakeStore) RunTx(ctx context.Context, fn func(r repository.Repos) error) error {
	return fn(repository.Repos{
		Users:    &fakeUsers{s: f},
		Products: &fakeProducts{s: f},
		Invites:  &fakeInvites{s: f},
	})
}

func (f *fakeStore) addProduct(family int64, code int, name string, expires time.Time, withdrawn *time.Time) {
	if f.products[family] == nil {
		f.products[family] = make(map[int]*models.Product)
	}
	f.products[family][code] = &models.Product{
		Code: code, Family: family, Name: name, Expires: expires, Withdrawn: withdrawn,
	}
}

func (f *fakeStore) addUser(id, family int64, action models.CurrentAction) {
	f.users[id] = &models.User{ID: id, Family: family, CurrentAction: action}
}

// ---------------------------------------------------------------------------
// Users
// ---------------------------------------------------------------------------

type fakeUsers struct {
	s *fakeStore
}

func (f *fakeUsers) GetForUpdate(_ context.Context, id int64) (*models.User, error) {
	u, ok := f.s.users[id]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUsers) Create(_ context.Context, user *models.User) (*models.User, error) {
	if _, ok := f.s.users[user.ID]; !ok {
		cp := *user
		f.s.users[user.ID] = &cp
	}
	return user, nil
}

func (f *fakeUsers) Update(_ context.Context, user *models.User) (*models.User, error) {
	if _, ok := f.s.users[user.ID]; !ok {
		return nil, fmt.Errorf("user %d not found", user.ID)
	}
	cp := *user
	f.s.users[user.ID] = &cp
	return user, nil
}

func (f *fakeUsers) GetByFamily(_ context.Context, family int64) ([]*models.User, error) {
	var users []*models.User
	for _, u := range f.s.users {
		if u.Family == family {
			cp := *u
			users = append(users, &cp)
		}
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return users, nil
}

// ---------------------------------------------------------------------------
// Products
// ---------------------------------------------------------------------------

type fakeProducts struct {
	s *fakeStore
}

func (f *fakeProducts) Create(_ context.Context, product *models.Product) (*models.Product, error) {
	if f.s.products[product.Family] == nil {
		f.s.products[product.Family] = make(map[int]*models.Product)
	}
	if _, ok := f.s.products[product.Family][product.Code]; ok {
		return nil, fmt.Errorf("duplicate product code %d", product.Code)
	}
	cp := *product
	f.s.products[product.Family][product.Code] = &cp
	return product, nil
}

func (f *fakeProducts) GetForUpdate(_ context.Context, family int64, code int) (*models.Product, error) {
	p, ok := f.s.products[family][code]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (f *fakeProducts) ListActive(_ context.Context, family int64, expiredBefore time.Time, limit int) ([]*models.Product, error) {
	var products []*models.Product
	for _, p := range f.s.products[family] {
		if p.IsWithdrawn() {
			continue
		}
		if !expiredBefore.IsZero() && !p.Expires.Before(expiredBefore) {
			continue
		}
		cp := *p
		products = append(products, &cp)
	}
	sort.Slice(products, func(i, j int) bool { return products[i].Expires.Before(products[j].Expires) })
	if limit > 0 && len(products) > limit {
		products = products[:limit]
	}
	return products, nil
}

func (f *fakeProducts) CountActive(ctx context.Context, family int64, expiredBefore time.Time) (int, error) {
	products, err := f.ListActive(ctx, family, expiredBefore, 0)
	if err != nil {
		return 0, err
	}
	return len(products), nil
}

func (f *fakeProducts) CodeExists(_ context.Context, family int64, code int) (bool, error) {
	_, ok := f.s.products[family][code]
	return ok, nil
}

func (f *fakeProducts) Withdraw(_ context.Context, family int64, code int, at time.Time) error {
	p, ok := f.s.products[family][code]
	if !ok || p.IsWithdrawn() {
		return fmt.Errorf("active product %d not found in family %d", code, family)
	}
	p.Withdrawn = &at
	return nil
}

func (f *fakeProducts) LockFamily(_ context.Context, _ int64) error {
	return nil
}

func (f *fakeProducts) ExpiredFamilies(_ context.Context, now time.Time) ([]int64, error) {
	var families []int64
	for family, byCode := range f.s.products {
		for _, p := range byCode {
			if !p.IsWithdrawn() && p.IsExpired(now) {
				families = append(families, family)
				break
			}
		}
	}
	sort.Slice(families, func(i, j int) bool { return families[i] < families[j] })
	return families, nil
}

func (f *fakeProducts) DeleteWithdrawnExpiredBefore(_ context.Context, cutoff time.Time) (int64, error) {
	var deleted int64
	for _, byCode := range f.s.products {
		for code, p := range byCode {
			if p.IsWithdrawn() && p.Expires.Before(cutoff) {
				delete(byCode, code)
				deleted++
			}
		}
	}
	return deleted, nil
}

// ---------------------------------------------------------------------------
// Invites
// ---------------------------------------------------------------------------

type fakeInvites struct {
	s *fakeStore
}

func (f *fakeInvites) Create(_ context.Context, invite *models.Invite) (*models.Invite, error) {
	if _, ok := f.s.invites[invite.Code]; ok {
		return nil, fmt.Errorf("duplicate invite code %d", invite.Code)
	}
	cp := *invite
	f.s.invites[invite.Code] = &cp
	return invite, nil
}

func (f *fakeInvites) GetForUpdate(_ context.Context, code int) (*models.Invite, error) {
	inv, ok := f.s.invites[code]
	if !ok {
		return nil, nil
	}
	cp := *inv
	return &cp, nil
}

func (f *fakeInvites) CodeExists(_ context.Context, code int) (bool, error) {
	_, ok := f.s.invites[code]
	return ok, nil
}

func (f *fakeInvites) Delete(_ context.Context, code int) error {
	if _, ok := f.s.invites[code]; !ok {
		return fmt.Errorf("invite %d not found", code)
	}
	delete(f.s.invites, code)
	return nil
}

func (f *fakeInvites) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	var deleted int64
	for code, inv := range f.s.invites {
		if inv.IsExpired(now) {
			delete(f.s.invites, code)
			deleted++
		}
	}
	return deleted, nil
}

func (f *fakeInvites) LockAll(_ context.Context) error {
	return nil
}

// ---------------------------------------------------------------------------
// Test helpers
// ---------------------------------------------------------------------------

// testNow is the reference instant used throughout the flow tests.
var testNow = time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

func newTestService(store *fakeStore) *Service {
	l := logrus.New()
	l.SetOutput(io.Discard)

	s := New(store, l)
	s.now = func() time.Time { return testNow }
	return s
}

// stubRand returns a randInt replacement yielding the given values in
// order, wrapping around at the end.
func stubRand(values ...int) func(min, max int) (int, error) {
	i := 0
	return func(min, max int) (int, error) {
		v := values[i%len(values)]
		i++
		return v, nil
	}
}
