package store

import (
	"database/sql"
	"errors"
	"time"
)

// ErrNotFound is returned when a requested resource does not exist.
var ErrNotFound = errors.New("not found")

// CardKind says what a memory card carries besides its title.
type CardKind string

const (
	// CardKindText is a plain written memory.
	CardKindText CardKind = "text"
	// CardKindPhoto is a memory with an attached photo.
	CardKindPhoto CardKind = "photo"
	// CardKindAudio is a memory with an attached audio clip.
	CardKindAudio CardKind = "audio"
)

// Card is one memory hung on the tree.
type Card struct {
	ID        string
	Kind      CardKind
	Title     string
	Message   string
	Author    string
	MediaPath string // relative path under the media dir, empty for text cards
	CreatedAt time.Time
}

// CardRepository provides CRUD operations for memory cards.
type CardRepository struct {
	db *sql.DB
}

// Cards returns the card repository for this store.
func (s *Store) Cards() *CardRepository {
	return &CardRepository{db: s.db}
}

// Create inserts a new card into the database.
func (r *CardRepository) Create(c *Card) error {
	c.CreatedAt = time.Now()

	_, err := r.db.Exec(
		`INSERT INTO cards (id, kind, title, message, author, media_path, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		c.ID, string(c.Kind), c.Title, c.Message, c.Author, c.MediaPath, c.CreatedAt,
	)
	return err
}

// GetByID retrieves a card by its ID.
func (r *CardRepository) GetByID(id string) (*Card, error) {
	c := &Card{}
	var kind string

	err := r.db.QueryRow(
		`SELECT id, kind, title, message, author, media_path, created_at
		 FROM cards WHERE id = ?`,
		id,
	).Scan(&c.ID, &kind, &c.Title, &c.Message, &c.Author, &c.MediaPath, &c.CreatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	c.Kind = CardKind(kind)
	return c, nil
}

// List returns all cards ordered oldest first, which is also their hanging
// order on the tree.
func (r *CardRepository) List() ([]*Card, error) {
	rows, err := r.db.Query(
		`SELECT id, kind, title, message, author, media_path, created_at
		 FROM cards ORDER BY created_at ASC, id ASC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cards []*Card
	for rows.Next() {
		c := &Card{}
		var kind string
		if err := rows.Scan(&c.ID, &kind, &c.Title, &c.Message, &c.Author, &c.MediaPath, &c.CreatedAt); err != nil {
			return nil, err
		}
		c.Kind = CardKind(kind)
		cards = append(cards, c)
	}

	return cards, rows.Err()
}

// Update rewrites a card's editable fields.
func (r *CardRepository) Update(c *Card) error {
	result, err := r.db.Exec(
		`UPDATE cards SET title = ?, message = ?, author = ? WHERE id = ?`,
		c.Title, c.Message, c.Author, c.ID,
	)
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}

	return nil
}

// SetMedia records the stored media file for a card.
func (r *CardRepository) SetMedia(id, mediaPath string) error {
	result, err := r.db.Exec(`UPDATE cards SET media_path = ? WHERE id = ?`, mediaPath, id)
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}

	return nil
}

// Delete removes a card by its ID.
func (r *CardRepository) Delete(id string) error {
	result, err := r.db.Exec(`DELETE FROM cards WHERE id = ?`, id)
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}

	return nil
}

// Count returns the number of cards on the tree.
func (r *CardRepository) Count() (int, error) {
	var n int
	err := r.db.QueryRow(`SELECT COUNT(*) FROM cards`).Scan(&n)
	return n, err
}
