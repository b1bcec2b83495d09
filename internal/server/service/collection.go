package service

import (
	"strings"

	"github.com/mdouchement/clipvault/internal/cverror"
	"github.com/mdouchement/clipvault/internal/database"
	"github.com/mdouchement/clipvault/internal/model"
	"github.com/pkg/errors"
)

type (
	// A CollectionService handles shared collections, their members and items.
	CollectionService interface {
		Create(owner *model.User, name string) (*model.Collection, error)
		ListForUser(user *model.User) ([]*CollectionWithRole, error)
		Invite(owner *model.User, collectionID, email, permission string) (*model.Membership, error)
		RemoveMember(owner *model.User, collectionID, userID string) error
		AddItem(caller *model.User, collectionID, itemID string) error
		ListItems(caller *model.User, collectionID string) ([]*model.Item, error)
	}

	// A CollectionWithRole annotates a collection with the caller's effective role.
	CollectionWithRole struct {
		*model.Collection
		Role string `json:"role"`
	}

	collectionService struct {
		db database.Client
	}
)

// NewCollection returns a new CollectionService.
func NewCollection(db database.Client) CollectionService {
	return &collectionService{db: db}
}

func (s *collectionService) Create(owner *model.User, name string) (*model.Collection, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, cverror.NewValidation("Collection name is required.")
	}

	collection := &model.Collection{
		Name:    name,
		OwnerID: owner.ID,
	}
	if err := s.db.Save(collection); err != nil {
		return nil, errors.Wrap(err, "could not persist collection")
	}
	return collection, nil
}

// ListForUser returns owned collections unioned with collections the user is
// a member of, each annotated with the caller's effective role.
func (s *collectionService) ListForUser(user *model.User) ([]*CollectionWithRole, error) {
	owned, err := s.db.FindCollectionsByOwner(user.ID)
	if err != nil {
		return nil, errors.Wrap(err, "could not list owned collections")
	}

	collections := make([]*CollectionWithRole, 0, len(owned))
	seen := make(map[string]bool, len(owned))
	for _, collection := range owned {
		collections = append(collections, &CollectionWithRole{Collection: collection, Role: model.RoleOwner})
		seen[collection.ID] = true
	}

	memberships, err := s.db.FindMembershipsByUser(user.ID)
	if err != nil {
		return nil, errors.Wrap(err, "could not list memberships")
	}
	for _, membership := range memberships {
		if seen[membership.CollectionID] {
			continue
		}

		collection, err := s.db.FindCollection(membership.CollectionID)
		if err != nil {
			if s.db.IsNotFound(err) {
				continue // dangling membership
			}
			return nil, errors.Wrap(err, "could not get member collection")
		}
		collections = append(collections, &CollectionWithRole{Collection: collection, Role: membership.Permission})
		seen[collection.ID] = true
	}

	return collections, nil
}

func (s *collectionService) Invite(owner *model.User, collectionID, email, permission string) (*model.Membership, error) {
	if permission == "" {
		permission = model.PermissionView
	}
	if !model.ValidPermission(permission) {
		return nil, cverror.NewValidation("permission must be view or upload.")
	}
	if email == "" {
		return nil, cverror.NewValidation("Email is required.")
	}

	if err := s.ownerOnly(owner, collectionID, "Only the collection owner can invite members."); err != nil {
		return nil, err
	}

	member, err := s.db.FindUserByEmail(email)
	if err != nil {
		if s.db.IsNotFound(err) {
			return nil, cverror.NewNotFound("No user found with that email.")
		}
		return nil, errors.Wrap(err, "could not resolve invitee")
	}
	if member.ID == owner.ID {
		return nil, cverror.NewValidation("Cannot invite yourself.")
	}

	// Upsert: re-inviting changes the permission level.
	membership, err := s.db.FindMembership(collectionID, member.ID)
	if err != nil {
		if !s.db.IsNotFound(err) {
			return nil, errors.Wrap(err, "could not check membership")
		}
		membership = &model.Membership{
			CollectionID: collectionID,
			UserID:       member.ID,
		}
	}
	membership.Permission = permission

	if err := s.db.Save(membership); err != nil {
		return nil, errors.Wrap(err, "could not persist membership")
	}
	return membership, nil
}

func (s *collectionService) RemoveMember(owner *model.User, collectionID, userID string) error {
	if err := s.ownerOnly(owner, collectionID, "Only the collection owner can remove members."); err != nil {
		return err
	}

	if _, err := s.db.FindMembership(collectionID, userID); err != nil {
		if s.db.IsNotFound(err) {
			return cverror.NewNotFound("Member not found.")
		}
		return errors.Wrap(err, "could not check membership")
	}
	return errors.Wrap(s.db.DeleteMembership(collectionID, userID), "could not remove member")
}

// AddItem associates one of the caller's own items with a collection.
// Members cannot add other people's items, whatever their access level.
func (s *collectionService) AddItem(caller *model.User, collectionID, itemID string) error {
	role, err := s.role(collectionID, caller.ID)
	if err != nil {
		return err
	}
	if role != model.RoleOwner && role != model.PermissionUpload {
		return cverror.NewForbidden("View-only members cannot add items.")
	}

	item, err := s.db.FindItemByUserID(itemID, caller.ID)
	if err != nil {
		if s.db.IsNotFound(err) {
			return cverror.NewNotFound("Item not found.")
		}
		return errors.Wrap(err, "could not check item ownership")
	}

	return errors.Wrap(s.db.AttachItem(collectionID, item.ID), "could not add item to collection")
}

func (s *collectionService) ListItems(caller *model.User, collectionID string) ([]*model.Item, error) {
	if _, err := s.role(collectionID, caller.ID); err != nil {
		return nil, err
	}

	items, err := s.db.FindItemsByCollection(collectionID)
	return items, errors.Wrap(err, "could not list collection items")
}

// role resolves the caller's effective access level, Forbidden when none.
func (s *collectionService) role(collectionID, userID string) (string, error) {
	collection, err := s.db.FindCollection(collectionID)
	if err != nil {
		if s.db.IsNotFound(err) {
			return "", cverror.NewForbidden("No access to this collection.")
		}
		return "", errors.Wrap(err, "could not get collection")
	}
	if collection.OwnerID == userID {
		return model.RoleOwner, nil
	}

	membership, err := s.db.FindMembership(collectionID, userID)
	if err != nil {
		if s.db.IsNotFound(err) {
			return "", cverror.NewForbidden("No access to this collection.")
		}
		return "", errors.Wrap(err, "could not check membership")
	}
	return membership.Permission, nil
}

func (s *collectionService) ownerOnly(owner *model.User, collectionID, message string) error {
	collection, err := s.db.FindCollection(collectionID)
	if err != nil {
		if s.db.IsNotFound(err) {
			return cverror.NewForbidden(message)
		}
		return errors.Wrap(err, "could not get collection")
	}
	if collection.OwnerID != owner.ID {
		return cverror.NewForbidden(message)
	}
	return nil
}
