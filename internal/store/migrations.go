package store

// runMigrations executes all database migrations.
func (s *Store) runMigrations() error {
	migrations := []string{
		// Memory cards hung on the tree: a short message, optionally a
		// photo or an audio clip stored on disk.
		`CREATE TABLE IF NOT EXISTS cards (
			id TEXT PRIMARY KEY,
			kind TEXT NOT NULL CHECK(kind IN ('text', 'photo', 'audio')),
			title TEXT NOT NULL,
			message TEXT NOT NULL DEFAULT '',
			author TEXT NOT NULL DEFAULT '',
			media_path TEXT NOT NULL DEFAULT '',
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,

		// Settings table - stores application settings as key-value pairs
		`CREATE TABLE IF NOT EXISTS settings (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)`,

		`CREATE INDEX IF NOT EXISTS idx_cards_created_at ON cards(created_at)`,
	}

	for _, migration := range migrations {
		if _, err := s.db.Exec(migration); err != nil {
			return err
		}
	}

	return nil
}
