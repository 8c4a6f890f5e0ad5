package main

import (
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

type PostgresRepository struct {
	sqlRepository
}

func NewPostgresRepository(dbURL string) (*PostgresRepository, error) {
	db, err := sqlx.Open("postgres", dbURL)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err = db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	usersTable := `
	  create table if not exists users (
		id serial primary key,
		spotify_id text not null unique,
		display_name text not null,
		email text not null default '',
		profile_image_url text not null default ''
	  );`
	favoritesTable := `
	  create table if not exists favorites (
		id serial primary key,
		user_id integer not null references users(id),
		song_title text not null,
		artist_name text not null,
		cover_url text not null,
		mood text not null,
		unique (user_id, song_title, artist_name)
	  );`
	collectionsTable := `
	  create table if not exists collections (
		id serial primary key,
		user_id integer not null references users(id),
		name text not null
	  );`
	collectionItemsTable := `
	  create table if not exists collection_items (
		id serial primary key,
		collection_id integer not null references collections(id),
		favorite_id integer not null references favorites(id),
		unique (collection_id, favorite_id)
	  );`

	r := &PostgresRepository{sqlRepository{db: db, duplicate: postgresDuplicate}}
	if err := r.createTables([]string{usersTable, favoritesTable, collectionsTable, collectionItemsTable}); err != nil {
		db.Close()
		return nil, err
	}
	return r, nil
}

func postgresDuplicate(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation"
}
