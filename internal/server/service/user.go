package service

import (
	"github.com/mdouchement/clipvault/internal/database"
	"github.com/mdouchement/clipvault/internal/model"
	"github.com/pkg/errors"
)

type (
	// A UserService maps external identities to internal users.
	UserService interface {
		// Upsert returns the user for the given external identity,
		// creating it on first sight.
		Upsert(externalID, email string) (*model.User, error)
	}

	userService struct {
		db database.Client
	}
)

// NewUser returns a new UserService.
func NewUser(db database.Client) UserService {
	return &userService{db: db}
}

func (s *userService) Upsert(externalID, email string) (*model.User, error) {
	user, err := s.db.FindUserByExternalID(externalID)
	if err != nil {
		if !s.db.IsNotFound(err) {
			return nil, errors.Wrap(err, "could not resolve identity")
		}

		user = &model.User{
			ExternalID: externalID,
			Email:      email,
		}
		if err := s.db.Save(user); err != nil {
			return nil, errors.Wrap(err, "could not persist user")
		}
		return user, nil
	}

	if email != "" && user.Email != email {
		user.Email = email
		if err := s.db.Save(user); err != nil {
			return nil, errors.Wrap(err, "could not refresh user email")
		}
	}
	return user, nil
}
