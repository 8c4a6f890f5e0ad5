package main

import (
	"context"
	"errors"

	"github.com/himanshub16/vibezone/models"
)

var (
	// ErrNotFound is returned by repositories when no row matches.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned when an insert breaks a uniqueness rule.
	ErrDuplicate = errors.New("record already exists")
)

type UserRepository interface {
	// UpsertUser inserts the user or refreshes the profile fields of the
	// user with the same spotify id, and returns its id.
	UpsertUser(ctx context.Context, user models.User) (int64, error)
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
	// DeleteUser removes the user with every favorite and collection.
	DeleteUser(ctx context.Context, id int64) error
	close()
}

type FavoriteRepository interface {
	InsertFavorite(ctx context.Context, fav models.Favorite) (int64, error)
	GetFavoriteByID(ctx context.Context, id int64) (*models.Favorite, error)
	FindFavorite(ctx context.Context, userID int64, title, artist string) (*models.Favorite, error)
	// GetFavoritesByUser lists favorites newest first.
	GetFavoritesByUser(ctx context.Context, userID int64) ([]models.Favorite, error)
	// DeleteFavorite removes the favorite and its collection memberships.
	DeleteFavorite(ctx context.Context, id int64) error
	close()
}

type CollectionRepository interface {
	InsertCollection(ctx context.Context, c models.Collection) (int64, error)
	GetCollectionByID(ctx context.Context, id int64) (*models.Collection, error)
	// GetCollectionsByUser lists collections with their items filled in.
	GetCollectionsByUser(ctx context.Context, userID int64) ([]models.Collection, error)
	DeleteCollection(ctx context.Context, id int64) error
	FindCollectionItem(ctx context.Context, collectionID, favoriteID int64) (*models.CollectionItem, error)
	InsertCollectionItem(ctx context.Context, collectionID, favoriteID int64) (int64, error)
	DeleteCollectionItem(ctx context.Context, id int64) error
	close()
}
