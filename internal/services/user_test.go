package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/petfolio/petfolio-backend/internal/apierr"
	"github.com/petfolio/petfolio-backend/internal/types"
)

// newServicesTestDB opens an in-memory database so service transactions run
// for real while the repos underneath are faked.
func newServicesTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	return db
}

type fakeUserRepo struct {
	user     *types.User
	lockErrs []error

	byName       []*types.User
	byGenderCity []*types.User
	lastGender   types.Gender
	lastCity     string

	lockCalls int
	saveCalls int
	saved     *types.User
}

func (f *fakeUserRepo) Create(ctx context.Context, tx *gorm.DB, user *types.User) (*types.User, error) {
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	f.user = user
	return user, nil
}

func (f *fakeUserRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.User, error) {
	if f.user == nil || f.user.ID != id {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *f.user
	return &copied, nil
}

func (f *fakeUserRepo) LockForUpdate(ctx context.Context, tx *gorm.DB, id uuid.UUID, timeout time.Duration) (*types.User, error) {
	f.lockCalls++
	if len(f.lockErrs) > 0 {
		err := f.lockErrs[0]
		f.lockErrs = f.lockErrs[1:]
		if err != nil {
			return nil, err
		}
	}
	if f.user == nil || f.user.ID != id {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *f.user
	return &copied, nil
}

func (f *fakeUserRepo) Save(ctx context.Context, tx *gorm.DB, user *types.User) (*types.User, error) {
	f.saveCalls++
	f.saved = user
	f.user = user
	return user, nil
}

func (f *fakeUserRepo) FindByNameAndFirstName(ctx context.Context, tx *gorm.DB, name, firstName string) ([]*types.User, error) {
	return f.byName, nil
}

func (f *fakeUserRepo) FindByGenderAndCity(ctx context.Context, tx *gorm.DB, gender types.Gender, city string) ([]*types.User, error) {
	f.lastGender = gender
	f.lastCity = city
	return f.byGenderCity, nil
}

type fakeAddressService struct {
	addr *types.Address
	err  error
}

func (f *fakeAddressService) FindOrCreate(ctx context.Context, tx *gorm.DB, in AddressInput) (*types.Address, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.addr, nil
}

func newTestUserService(t *testing.T, repo *fakeUserRepo, addresses AddressService) UserService {
	t.Helper()
	if addresses == nil {
		addresses = &fakeAddressService{addr: &types.Address{ID: uuid.New(), City: "berlin"}}
	}
	return NewUserService(newServicesTestDB(t), testLogger(), fastRetryPolicy(), repo, addresses)
}

func TestUserUpdateWithLock_RetriesTransientContention(t *testing.T) {
	busy := errors.New("database is locked")
	repo := &fakeUserRepo{
		user:     &types.User{ID: uuid.New(), Name: "Doe", FirstName: "Jane", Age: 30, Gender: types.GenderFemale},
		lockErrs: []error{busy, busy},
	}
	svc := newTestUserService(t, repo, nil)

	updated, err := svc.UpdateWithLock(context.Background(), repo.user.ID, func(ctx context.Context, tx *gorm.DB, user *types.User) error {
		user.Age = 42
		return nil
	})
	if err != nil {
		t.Fatalf("expected success after contention, got %v", err)
	}
	if repo.lockCalls != 3 {
		t.Fatalf("expected 3 lock attempts, got %d", repo.lockCalls)
	}
	if repo.saveCalls != 1 || updated.Age != 42 {
		t.Fatalf("expected one save with age 42, got saves=%d age=%d", repo.saveCalls, updated.Age)
	}
}

func TestUserUpdateWithLock_MissingUserFailsFastWithoutRetry(t *testing.T) {
	repo := &fakeUserRepo{}
	svc := newTestUserService(t, repo, nil)

	_, err := svc.UpdateWithLock(context.Background(), uuid.New(), func(ctx context.Context, tx *gorm.DB, user *types.User) error {
		return nil
	})
	if !apierr.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
	if repo.lockCalls != 1 {
		t.Fatalf("expected a single lock attempt, got %d", repo.lockCalls)
	}
	if repo.saveCalls != 0 {
		t.Fatalf("expected no save, got %d", repo.saveCalls)
	}
}

func TestUserUpdateWithLock_ExhaustedContentionIsConflict(t *testing.T) {
	busy := errors.New("lock timeout")
	repo := &fakeUserRepo{
		user:     &types.User{ID: uuid.New(), Name: "Doe", FirstName: "Jane", Gender: types.GenderFemale},
		lockErrs: []error{busy, busy, busy},
	}
	svc := newTestUserService(t, repo, nil)

	_, err := svc.UpdateWithLock(context.Background(), repo.user.ID, func(ctx context.Context, tx *gorm.DB, user *types.User) error {
		return nil
	})
	if !apierr.IsConflict(err) {
		t.Fatalf("expected conflict after exhaustion, got %v", err)
	}
	if repo.lockCalls != 3 || repo.saveCalls != 0 {
		t.Fatalf("expected 3 attempts and no save, got locks=%d saves=%d", repo.lockCalls, repo.saveCalls)
	}
}

func TestUserUpdateWithLock_MutatorFailureAbortsWithoutSave(t *testing.T) {
	repo := &fakeUserRepo{
		user: &types.User{ID: uuid.New(), Name: "Doe", FirstName: "Jane", Gender: types.GenderFemale},
	}
	svc := newTestUserService(t, repo, nil)

	boom := apierr.Validation("bad input")
	_, err := svc.UpdateWithLock(context.Background(), repo.user.ID, func(ctx context.Context, tx *gorm.DB, user *types.User) error {
		return boom
	})
	if !apierr.IsValidation(err) {
		t.Fatalf("expected the mutator error, got %v", err)
	}
	if repo.saveCalls != 0 {
		t.Fatalf("expected no save after mutator failure, got %d", repo.saveCalls)
	}
}

func TestUserMarkDeceased_SetsFlagThroughLockedUpdate(t *testing.T) {
	repo := &fakeUserRepo{
		user: &types.User{ID: uuid.New(), Name: "Doe", FirstName: "Jane", Gender: types.GenderFemale},
	}
	svc := newTestUserService(t, repo, nil)

	updated, err := svc.MarkDeceased(context.Background(), repo.user.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !updated.IsDeceased {
		t.Fatal("expected the deceased flag set")
	}
	if repo.saveCalls != 1 {
		t.Fatalf("expected the flag persisted, got %d saves", repo.saveCalls)
	}
}

func TestUserCreate_ResolvesAddressAndPersists(t *testing.T) {
	addr := &types.Address{ID: uuid.New(), City: "berlin"}
	repo := &fakeUserRepo{}
	svc := newTestUserService(t, repo, &fakeAddressService{addr: addr})

	created, err := svc.Create(context.Background(), UserInput{
		Name:      "Doe",
		FirstName: "Jane",
		Age:       30,
		Gender:    types.GenderFemale,
		Address:   AddressInput{City: "Berlin", Type: "STREET", AddressName: "Unter den Linden", Number: "77"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if created.AddressID != addr.ID {
		t.Fatalf("expected resolved address id %v, got %v", addr.ID, created.AddressID)
	}
	if created.Address == nil || created.Address.ID != addr.ID {
		t.Fatalf("expected resolved address attached, got %+v", created.Address)
	}
}

func TestUserCreate_RejectsInvalidGender(t *testing.T) {
	repo := &fakeUserRepo{}
	svc := newTestUserService(t, repo, nil)

	_, err := svc.Create(context.Background(), UserInput{
		Name:      "Doe",
		FirstName: "Jane",
		Gender:    types.Gender("UNKNOWN"),
		Address:   AddressInput{City: "Berlin", Type: "STREET", AddressName: "Unter den Linden", Number: "77"},
	})
	if !apierr.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if repo.user != nil {
		t.Fatal("expected nothing persisted")
	}
}

func TestUserWomenInCity_QueriesFemaleWithNormalizedCity(t *testing.T) {
	repo := &fakeUserRepo{byGenderCity: []*types.User{{ID: uuid.New(), Name: "Doe"}}}
	svc := newTestUserService(t, repo, nil)

	results, err := svc.WomenInCity(context.Background(), "  New   York ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected 1 user, got %d", len(results))
	}
	if repo.lastGender != types.GenderFemale {
		t.Fatalf("expected FEMALE filter, got %q", repo.lastGender)
	}
	if repo.lastCity != "new york" {
		t.Fatalf("expected normalized city, got %q", repo.lastCity)
	}
}
