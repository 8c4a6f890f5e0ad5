package main

import (
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/mattn/go-sqlite3"
)

type SQLiteRepository struct {
	sqlRepository
}

// NewSQLiteRepository opens the database file at path, ":memory:" included,
// and makes sure the tables exist.
func NewSQLiteRepository(path string) (*SQLiteRepository, error) {
	db, err := sqlx.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	// sqlite allows one writer; an in-memory database lives in a single
	// connection.
	db.SetMaxOpenConns(1)

	usersTable := `
	  create table if not exists users (
		id integer primary key autoincrement,
		spotify_id text not null unique,
		display_name text not null,
		email text not null default '',
		profile_image_url text not null default ''
	  );`
	favoritesTable := `
	  create table if not exists favorites (
		id integer primary key autoincrement,
		user_id integer not null references users(id),
		song_title text not null,
		artist_name text not null,
		cover_url text not null,
		mood text not null,
		unique (user_id, song_title, artist_name)
	  );`
	collectionsTable := `
	  create table if not exists collections (
		id integer primary key autoincrement,
		user_id integer not null references users(id),
		name text not null
	  );`
	collectionItemsTable := `
	  create table if not exists collection_items (
		id integer primary key autoincrement,
		collection_id integer not null references collections(id),
		favorite_id integer not null references favorites(id),
		unique (collection_id, favorite_id)
	  );`

	r := &SQLiteRepository{sqlRepository{db: db, duplicate: sqliteDuplicate}}
	if err := r.createTables([]string{usersTable, favoritesTable, collectionsTable, collectionItemsTable}); err != nil {
		db.Close()
		return nil, err
	}
	return r, nil
}

func sqliteDuplicate(err error) bool {
	var sqliteErr sqlite3.Error
	return errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique
}
