package repos

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/petfolio/petfolio-backend/internal/types"
)

type queryFixture struct {
	db            *gorm.DB
	userRepo      UserRepo
	petRepo       PetRepo
	ownershipRepo OwnershipRepo

	berlin *types.Address
	paris  *types.Address
}

func newQueryFixture(t *testing.T) *queryFixture {
	t.Helper()
	db := newTestDB(t)
	lg := testLogger()
	addressRepo := NewAddressRepo(db, lg)
	fx := &queryFixture{
		db:            db,
		userRepo:      NewUserRepo(db, lg),
		petRepo:       NewPetRepo(db, lg),
		ownershipRepo: NewOwnershipRepo(db, lg),
	}
	fx.berlin = mustCreateAddress(t, addressRepo, "berlin", "street", "unter den linden", "77")
	fx.paris = mustCreateAddress(t, addressRepo, "paris", "street", "rue de rivoli", "12")
	return fx
}

func (fx *queryFixture) mustCreateUser(t *testing.T, name, firstName string, gender types.Gender, addr *types.Address, deceased bool) *types.User {
	t.Helper()
	user, err := fx.userRepo.Create(context.Background(), nil, &types.User{
		Name:       name,
		FirstName:  firstName,
		Age:        30,
		Gender:     gender,
		AddressID:  addr.ID,
		IsDeceased: deceased,
	})
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	return user
}

func (fx *queryFixture) mustCreatePet(t *testing.T, name string, petType types.PetType, addr *types.Address, deceased bool) *types.Pet {
	t.Helper()
	pet, err := fx.petRepo.Create(context.Background(), nil, &types.Pet{
		Name:       name,
		Age:        3,
		Type:       petType,
		AddressID:  addr.ID,
		IsDeceased: deceased,
	})
	if err != nil {
		t.Fatalf("create pet: %v", err)
	}
	return pet
}

func (fx *queryFixture) mustLink(t *testing.T, user *types.User, pet *types.Pet) {
	t.Helper()
	if _, err := fx.ownershipRepo.Create(context.Background(), nil, &types.UserPetOwnership{
		UserID: user.ID,
		PetID:  pet.ID,
	}); err != nil {
		t.Fatalf("create ownership: %v", err)
	}
}

func TestUserRepo_FindByGenderAndCityIsCaseInsensitive(t *testing.T) {
	fx := newQueryFixture(t)
	anna := fx.mustCreateUser(t, "Schmidt", "Anna", types.GenderFemale, fx.berlin, false)
	fx.mustCreateUser(t, "Dupont", "Claire", types.GenderFemale, fx.paris, false)
	fx.mustCreateUser(t, "Schmidt", "Max", types.GenderMale, fx.berlin, false)

	results, err := fx.userRepo.FindByGenderAndCity(context.Background(), nil, types.GenderFemale, "BERLIN")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 1 || results[0].ID != anna.ID {
		t.Fatalf("expected [Anna], got %d rows", len(results))
	}
	if results[0].Address == nil || results[0].Address.City != "berlin" {
		t.Fatalf("expected the address preloaded, got %+v", results[0].Address)
	}
}

func TestUserRepo_LockForUpdateMissingRowIsNotFound(t *testing.T) {
	fx := newQueryFixture(t)

	err := fx.db.Transaction(func(tx *gorm.DB) error {
		_, lockErr := fx.userRepo.LockForUpdate(context.Background(), tx, uuid.New(), time.Second)
		if !IsNotFound(lockErr) {
			t.Fatalf("expected not found, got %v", lockErr)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("transaction failed: %v", err)
	}
}

func TestUserRepo_LockForUpdateReturnsTheRow(t *testing.T) {
	fx := newQueryFixture(t)
	anna := fx.mustCreateUser(t, "Schmidt", "Anna", types.GenderFemale, fx.berlin, false)

	err := fx.db.Transaction(func(tx *gorm.DB) error {
		locked, lockErr := fx.userRepo.LockForUpdate(context.Background(), tx, anna.ID, time.Second)
		if lockErr != nil {
			t.Fatalf("lock failed: %v", lockErr)
		}
		locked.Age = 31
		if _, saveErr := fx.userRepo.Save(context.Background(), tx, locked); saveErr != nil {
			t.Fatalf("save failed: %v", saveErr)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("transaction failed: %v", err)
	}

	reloaded, err := fx.userRepo.GetByID(context.Background(), nil, anna.ID)
	if err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if reloaded.Age != 31 {
		t.Fatalf("expected the locked update persisted, got age %d", reloaded.Age)
	}
}

func TestPetRepo_FindAliveByCityFiltersDeceasedAndCity(t *testing.T) {
	fx := newQueryFixture(t)
	rex := fx.mustCreatePet(t, "Rex", types.PetTypeDog, fx.berlin, false)
	fx.mustCreatePet(t, "Tom", types.PetTypeCat, fx.berlin, true)
	fx.mustCreatePet(t, "Birdy", types.PetTypeBird, fx.paris, false)

	results, err := fx.petRepo.FindAliveByCity(context.Background(), nil, "Berlin")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 1 || results[0].ID != rex.ID {
		t.Fatalf("expected [Rex], got %d rows", len(results))
	}
}

func TestOwnershipRepo_DuplicatePairIsDuplicateKey(t *testing.T) {
	fx := newQueryFixture(t)
	anna := fx.mustCreateUser(t, "Schmidt", "Anna", types.GenderFemale, fx.berlin, false)
	rex := fx.mustCreatePet(t, "Rex", types.PetTypeDog, fx.berlin, false)
	fx.mustLink(t, anna, rex)

	_, err := fx.ownershipRepo.Create(context.Background(), nil, &types.UserPetOwnership{
		UserID: anna.ID,
		PetID:  rex.ID,
	})
	if !IsDuplicateKey(err) {
		t.Fatalf("expected duplicate-key for the repeated pair, got %v", err)
	}
}

func TestOwnershipRepo_GetByUserIDPreloadsPets(t *testing.T) {
	fx := newQueryFixture(t)
	anna := fx.mustCreateUser(t, "Schmidt", "Anna", types.GenderFemale, fx.berlin, false)
	rex := fx.mustCreatePet(t, "Rex", types.PetTypeDog, fx.berlin, false)
	tom := fx.mustCreatePet(t, "Tom", types.PetTypeCat, fx.berlin, false)
	fx.mustLink(t, anna, rex)
	fx.mustLink(t, anna, tom)

	links, err := fx.ownershipRepo.GetByUserID(context.Background(), nil, anna.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(links) != 2 {
		t.Fatalf("expected 2 links, got %d", len(links))
	}
	for _, link := range links {
		if link.Pet == nil {
			t.Fatalf("expected the pet preloaded on link %v", link.ID)
		}
	}
}

func TestOwnershipRepo_FindDistinctUsersByPetTypeAndCity(t *testing.T) {
	fx := newQueryFixture(t)
	anna := fx.mustCreateUser(t, "Schmidt", "Anna", types.GenderFemale, fx.berlin, false)
	ghost := fx.mustCreateUser(t, "Schmidt", "Emil", types.GenderMale, fx.berlin, true)
	claire := fx.mustCreateUser(t, "Dupont", "Claire", types.GenderFemale, fx.paris, false)

	rex := fx.mustCreatePet(t, "Rex", types.PetTypeDog, fx.berlin, false)
	buddy := fx.mustCreatePet(t, "Buddy", types.PetTypeDog, fx.berlin, false)
	dead := fx.mustCreatePet(t, "Dead", types.PetTypeDog, fx.berlin, true)
	parisDog := fx.mustCreatePet(t, "Fifi", types.PetTypeDog, fx.paris, false)

	// Anna owns two living dogs in berlin; she must still appear once.
	fx.mustLink(t, anna, rex)
	fx.mustLink(t, anna, buddy)
	fx.mustLink(t, anna, dead)
	fx.mustLink(t, ghost, rex)
	fx.mustLink(t, claire, parisDog)

	results, err := fx.ownershipRepo.FindDistinctUsersByPetTypeAndCity(context.Background(), nil, types.PetTypeDog, "berlin")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 1 || results[0].ID != anna.ID {
		t.Fatalf("expected exactly [Anna], got %d rows", len(results))
	}
}
