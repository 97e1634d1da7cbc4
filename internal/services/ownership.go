package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/petfolio/petfolio-backend/internal/apierr"
	"github.com/petfolio/petfolio-backend/internal/logger"
	"github.com/petfolio/petfolio-backend/internal/normalization"
	"github.com/petfolio/petfolio-backend/internal/repos"
	"github.com/petfolio/petfolio-backend/internal/types"
)

type OwnershipService interface {
	// Link records that the user owns the pet. Both must live at the same
	// address; otherwise the call fails InvalidRelation and writes nothing.
	// A duplicate (user, pet) pair surfaces as Conflict.
	Link(ctx context.Context, userID, petID uuid.UUID) (*types.UserPetOwnership, error)
	// PetsByUser gathers the living pets owned by any user matching the
	// name pair, deduplicated by pet id in first-seen order.
	PetsByUser(ctx context.Context, name, firstName string) ([]*types.Pet, error)
	PetsByCity(ctx context.Context, city string) ([]*types.Pet, error)
	PetsByWomenInCity(ctx context.Context, city string) ([]*types.Pet, error)
	UsersByPetTypeAndCity(ctx context.Context, petType types.PetType, city string) ([]*types.User, error)
}

type ownershipService struct {
	log           *logger.Logger
	userRepo      repos.UserRepo
	ownershipRepo repos.OwnershipRepo
	userService   UserService
	petService    PetService
}

func NewOwnershipService(log *logger.Logger, userRepo repos.UserRepo, ownershipRepo repos.OwnershipRepo, userService UserService, petService PetService) OwnershipService {
	serviceLog := log.With("service", "OwnershipService")
	return &ownershipService{
		log:           serviceLog,
		userRepo:      userRepo,
		ownershipRepo: ownershipRepo,
		userService:   userService,
		petService:    petService,
	}
}

func (ows *ownershipService) Link(ctx context.Context, userID, petID uuid.UUID) (*types.UserPetOwnership, error) {
	user, err := ows.userService.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	pet, err := ows.petService.GetByID(ctx, petID)
	if err != nil {
		return nil, err
	}

	if user.AddressID != pet.AddressID {
		return nil, apierr.InvalidRelation("co-ownership allowed only for users at the pet's address")
	}

	created, err := ows.ownershipRepo.Create(ctx, nil, &types.UserPetOwnership{
		UserID: user.ID,
		PetID:  pet.ID,
	})
	if err != nil {
		if repos.IsDuplicateKey(err) {
			return nil, apierr.Conflict("user %s already owns pet %s", userID, petID)
		}
		return nil, apierr.Storage(err)
	}
	return created, nil
}

func (ows *ownershipService) PetsByUser(ctx context.Context, name, firstName string) ([]*types.Pet, error) {
	users, err := ows.userRepo.FindByNameAndFirstName(ctx, nil, name, firstName)
	if err != nil {
		return nil, apierr.Storage(err)
	}
	return ows.collectLivingPets(ctx, users)
}

func (ows *ownershipService) PetsByCity(ctx context.Context, city string) ([]*types.Pet, error) {
	return ows.petService.AliveByCity(ctx, city)
}

func (ows *ownershipService) PetsByWomenInCity(ctx context.Context, city string) ([]*types.Pet, error) {
	users, err := ows.userService.WomenInCity(ctx, city)
	if err != nil {
		return nil, err
	}
	return ows.collectLivingPets(ctx, users)
}

func (ows *ownershipService) UsersByPetTypeAndCity(ctx context.Context, petType types.PetType, city string) ([]*types.User, error) {
	if !petType.Valid() {
		return nil, apierr.Validation("invalid pet type: %q", petType)
	}
	results, err := ows.ownershipRepo.FindDistinctUsersByPetTypeAndCity(ctx, nil, petType, normalization.NormalizeField(city))
	if err != nil {
		return nil, apierr.Storage(err)
	}
	return results, nil
}

// collectLivingPets flattens each user's ownership links into the linked
// pets, dropping deceased pets and deduplicating by pet id. A pet reachable
// through several users (co-owners) appears once, at its first-seen
// position.
func (ows *ownershipService) collectLivingPets(ctx context.Context, users []*types.User) ([]*types.Pet, error) {
	seen := make(map[uuid.UUID]struct{})
	pets := []*types.Pet{}
	for _, user := range users {
		links, err := ows.ownershipRepo.GetByUserID(ctx, nil, user.ID)
		if err != nil {
			return nil, apierr.Storage(err)
		}
		for _, link := range links {
			if link.Pet == nil || link.Pet.IsDeceased {
				continue
			}
			if _, ok := seen[link.Pet.ID]; ok {
				continue
			}
			seen[link.Pet.ID] = struct{}{}
			pets = append(pets, link.Pet)
		}
	}
	return pets, nil
}
