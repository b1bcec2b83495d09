package main

import (
	"fmt"
	"log"

	"github.com/asdine/storm/v3"
	"github.com/asdine/storm/v3/q"
	"github.com/mdouchement/clipvault/internal/database"
	"github.com/mdouchement/clipvault/internal/model"
	"github.com/muesli/coral"
	"github.com/pkg/errors"
)

func main() {
	c := &coral.Command{
		Use:   "rmuser DATABASE EMAIL",
		Short: "Remove a user and everything they own from the database",
		Args:  coral.ExactArgs(2),
		RunE: func(_ *coral.Command, args []string) error {
			//
			//
			fmt.Println("Opening", args[0])
			db, err := storm.Open(args[0], database.StormCodec)
			if err != nil {
				return errors.Wrap(err, "could not open database")
			}
			defer db.Close()

			// Fetch user
			var user model.User
			err = db.One("Email", args[1], &user)
			if err != nil {
				if err == storm.ErrNotFound {
					fmt.Println("No account for this email")
					return nil
				}
				return errors.Wrap(err, "find user by email")
			}

			fmt.Println("User found:", user.ID)

			// Detach user's items from any collection, then delete the items.
			var items []*model.Item
			err = db.Select(q.Eq("UserID", user.ID)).Find(&items)
			if err != nil && err != storm.ErrNotFound {
				return errors.Wrap(err, "find items")
			}
			for _, item := range items {
				err = db.Select(q.Eq("ItemID", item.ID)).Delete(&model.CollectionItem{})
				if err != nil && err != storm.ErrNotFound {
					return errors.Wrap(err, "detach item")
				}
			}
			err = db.Select(q.Eq("UserID", user.ID)).Delete(&model.Item{})
			if err != nil && err != storm.ErrNotFound {
				return errors.Wrap(err, "delete items")
			}
			fmt.Println("Items removed")

			// Delete owned collections with their memberships and item links.
			var collections []*model.Collection
			err = db.Select(q.Eq("OwnerID", user.ID)).Find(&collections)
			if err != nil && err != storm.ErrNotFound {
				return errors.Wrap(err, "find collections")
			}
			for _, collection := range collections {
				err = db.Select(q.Eq("CollectionID", collection.ID)).Delete(&model.Membership{})
				if err != nil && err != storm.ErrNotFound {
					return errors.Wrap(err, "delete memberships")
				}
				err = db.Select(q.Eq("CollectionID", collection.ID)).Delete(&model.CollectionItem{})
				if err != nil && err != storm.ErrNotFound {
					return errors.Wrap(err, "delete collection items")
				}
				err = db.DeleteStruct(collection)
				if err != nil && err != storm.ErrNotFound {
					return errors.Wrap(err, "delete collection")
				}
			}
			fmt.Println("Collections removed")

			// Drop memberships the user holds in other people's collections.
			err = db.Select(q.Eq("UserID", user.ID)).Delete(&model.Membership{})
			if err != nil && err != storm.ErrNotFound {
				return errors.Wrap(err, "delete user memberships")
			}

			// Delete user
			err = db.DeleteStruct(&user)
			if err != nil && err != storm.ErrNotFound {
				return errors.Wrap(err, "delete user")
			}
			fmt.Println("User removed")

			return nil
		},
	}

	if err := c.Execute(); err != nil {
		log.Fatalf("%+v", err)
	}
}
