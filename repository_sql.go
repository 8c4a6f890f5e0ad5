package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/himanshub16/vibezone/models"
)

// sqlRepository holds the queries shared by the sqlite and postgres
// backends. Queries use ? placeholders and are rebound per driver.
type sqlRepository struct {
	db *sqlx.DB
	// duplicate reports whether err is the driver's unique violation.
	duplicate func(err error) bool
}

func (r *sqlRepository) createTables(tables []string) error {
	for _, t := range tables {
		if _, err := r.db.Exec(t); err != nil {
			return fmt.Errorf("create table: %w", err)
		}
	}
	return nil
}

func (r *sqlRepository) get(ctx context.Context, dest interface{}, query string, args ...interface{}) error {
	err := r.db.GetContext(ctx, dest, r.db.Rebind(query), args...)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

func (r *sqlRepository) insert(ctx context.Context, query string, args ...interface{}) (int64, error) {
	var id int64
	err := r.db.QueryRowxContext(ctx, r.db.Rebind(query+" returning id"), args...).Scan(&id)
	if err != nil && r.duplicate != nil && r.duplicate(err) {
		return 0, ErrDuplicate
	}
	return id, err
}

// inTx runs the statements in one transaction. The last statement must
// touch at least one row, otherwise ErrNotFound is returned.
func (r *sqlRepository) inTx(ctx context.Context, id int64, stmts ...string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var res sql.Result
	for _, s := range stmts {
		if res, err = tx.ExecContext(ctx, tx.Rebind(s), id); err != nil {
			return err
		}
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return tx.Commit()
}

func (r *sqlRepository) UpsertUser(ctx context.Context, user models.User) (int64, error) {
	query := `
	  insert into users (spotify_id, display_name, email, profile_image_url)
	  values (?, ?, ?, ?)
	  on conflict(spotify_id) do update
	     set display_name = excluded.display_name,
	         email = excluded.email,
	         profile_image_url = excluded.profile_image_url`

	return r.insert(ctx, query, user.SpotifyID, user.DisplayName, user.Email, user.ProfileImageURL)
}

func (r *sqlRepository) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	user := &models.User{}
	err := r.get(ctx, user, `
	  select id, spotify_id, display_name, email, profile_image_url
	  from users where id=?`, id)
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (r *sqlRepository) DeleteUser(ctx context.Context, id int64) error {
	return r.inTx(ctx, id,
		`delete from collection_items
		 where collection_id in (select id from collections where user_id=?)`,
		`delete from collections where user_id=?`,
		`delete from favorites where user_id=?`,
		`delete from users where id=?`,
	)
}

func (r *sqlRepository) InsertFavorite(ctx context.Context, fav models.Favorite) (int64, error) {
	query := `
	  insert into favorites (user_id, song_title, artist_name, cover_url, mood)
	  values (?, ?, ?, ?, ?)`

	return r.insert(ctx, query, fav.UserID, fav.Title, fav.Artist, fav.CoverURL, fav.Mood)
}

const favoriteColumns = `id, user_id, song_title, artist_name, cover_url, mood`

func (r *sqlRepository) GetFavoriteByID(ctx context.Context, id int64) (*models.Favorite, error) {
	fav := &models.Favorite{}
	if err := r.get(ctx, fav, `select `+favoriteColumns+` from favorites where id=?`, id); err != nil {
		return nil, err
	}
	return fav, nil
}

func (r *sqlRepository) FindFavorite(ctx context.Context, userID int64, title, artist string) (*models.Favorite, error) {
	fav := &models.Favorite{}
	err := r.get(ctx, fav, `
	  select `+favoriteColumns+` from favorites
	  where user_id=? and song_title=? and artist_name=?`, userID, title, artist)
	if err != nil {
		return nil, err
	}
	return fav, nil
}

func (r *sqlRepository) GetFavoritesByUser(ctx context.Context, userID int64) ([]models.Favorite, error) {
	favs := make([]models.Favorite, 0)
	err := r.db.SelectContext(ctx, &favs, r.db.Rebind(`
	  select `+favoriteColumns+` from favorites
	  where user_id=? order by id desc`), userID)
	return favs, err
}

func (r *sqlRepository) DeleteFavorite(ctx context.Context, id int64) error {
	return r.inTx(ctx, id,
		`delete from collection_items where favorite_id=?`,
		`delete from favorites where id=?`,
	)
}

func (r *sqlRepository) InsertCollection(ctx context.Context, c models.Collection) (int64, error) {
	return r.insert(ctx, `insert into collections (user_id, name) values (?, ?)`, c.UserID, c.Name)
}

func (r *sqlRepository) GetCollectionByID(ctx context.Context, id int64) (*models.Collection, error) {
	c := &models.Collection{}
	if err := r.get(ctx, c, `select id, user_id, name from collections where id=?`, id); err != nil {
		return nil, err
	}
	return c, nil
}

func (r *sqlRepository) GetCollectionsByUser(ctx context.Context, userID int64) ([]models.Collection, error) {
	collections := make([]models.Collection, 0)
	err := r.db.SelectContext(ctx, &collections, r.db.Rebind(`
	  select id, user_id, name from collections
	  where user_id=? order by id`), userID)
	if err != nil || len(collections) == 0 {
		return collections, err
	}

	ids := make([]int64, len(collections))
	for i, c := range collections {
		ids[i] = c.ID
	}
	query, args, err := sqlx.In(`
	  select ci.collection_id, f.id, f.user_id, f.song_title, f.artist_name, f.cover_url, f.mood
	  from collection_items as ci
	  join favorites as f on f.id = ci.favorite_id
	  where ci.collection_id in (?)
	  order by ci.id`, ids)
	if err != nil {
		return nil, err
	}

	rows := []struct {
		CollectionID int64 `db:"collection_id"`
		models.Favorite
	}{}
	if err = r.db.SelectContext(ctx, &rows, r.db.Rebind(query), args...); err != nil {
		return nil, err
	}

	byID := make(map[int64]*models.Collection, len(collections))
	for i := range collections {
		collections[i].Items = make([]models.Favorite, 0)
		byID[collections[i].ID] = &collections[i]
	}
	for _, row := range rows {
		if c, ok := byID[row.CollectionID]; ok {
			c.Items = append(c.Items, row.Favorite)
		}
	}
	return collections, nil
}

func (r *sqlRepository) DeleteCollection(ctx context.Context, id int64) error {
	return r.inTx(ctx, id,
		`delete from collection_items where collection_id=?`,
		`delete from collections where id=?`,
	)
}

func (r *sqlRepository) FindCollectionItem(ctx context.Context, collectionID, favoriteID int64) (*models.CollectionItem, error) {
	item := &models.CollectionItem{}
	err := r.get(ctx, item, `
	  select id, collection_id, favorite_id from collection_items
	  where collection_id=? and favorite_id=?`, collectionID, favoriteID)
	if err != nil {
		return nil, err
	}
	return item, nil
}

func (r *sqlRepository) InsertCollectionItem(ctx context.Context, collectionID, favoriteID int64) (int64, error) {
	return r.insert(ctx, `
	  insert into collection_items (collection_id, favorite_id)
	  values (?, ?)`, collectionID, favoriteID)
}

func (r *sqlRepository) DeleteCollectionItem(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, r.db.Rebind(`delete from collection_items where id=?`), id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *sqlRepository) close() {
	r.db.Close()
}
