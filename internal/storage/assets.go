package storage

import (
	"database/sql"
	"time"
)

// AssetRecord is a catalog entry as stored in the database.
type AssetRecord struct {
	AssetID   string    `json:"asset_id"`
	ChainID   string    `json:"chain_id"`
	Symbol    string    `json:"symbol"`
	Name      string    `json:"name"`
	Precision int       `json:"precision"`
	Source    string    `json:"source"`
	UpdatedAt time.Time `json:"updated_at"`
}

// SaveAsset inserts or updates an asset record.
func (s *Storage) SaveAsset(rec *AssetRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	updatedAt := rec.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = time.Now()
	}

	query := `
		INSERT INTO assets (asset_id, chain_id, symbol, name, precision, source, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(asset_id) DO UPDATE SET
			chain_id = excluded.chain_id,
			symbol = excluded.symbol,
			name = excluded.name,
			precision = excluded.precision,
			source = excluded.source,
			updated_at = excluded.updated_at
	`

	_, err := s.db.Exec(query,
		rec.AssetID,
		rec.ChainID,
		rec.Symbol,
		rec.Name,
		rec.Precision,
		rec.Source,
		updatedAt.Unix(),
	)
	return err
}

// SaveAssets stores many records in one transaction.
func (s *Storage) SaveAssets(recs []*AssetRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO assets (asset_id, chain_id, symbol, name, precision, source, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(asset_id) DO UPDATE SET
			chain_id = excluded.chain_id,
			symbol = excluded.symbol,
			name = excluded.name,
			precision = excluded.precision,
			source = excluded.source,
			updated_at = excluded.updated_at
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	now := time.Now()
	for _, rec := range recs {
		updatedAt := rec.UpdatedAt
		if updatedAt.IsZero() {
			updatedAt = now
		}
		if _, err := stmt.Exec(rec.AssetID, rec.ChainID, rec.Symbol, rec.Name, rec.Precision, rec.Source, updatedAt.Unix()); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// GetAsset retrieves an asset record by canonical AssetID string.
// Returns nil, nil if not found.
func (s *Storage) GetAsset(assetID string) (*AssetRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRow(`
		SELECT asset_id, chain_id, symbol, name, precision, source, updated_at
		FROM assets WHERE asset_id = ?
	`, assetID)

	rec, err := scanAssetRecord(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return rec, err
}

// ListAssets returns asset records ordered by AssetID. An empty chainID
// lists every chain.
func (s *Storage) ListAssets(chainID string) ([]*AssetRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `
		SELECT asset_id, chain_id, symbol, name, precision, source, updated_at
		FROM assets
	`
	var args []interface{}
	if chainID != "" {
		query += " WHERE chain_id = ?"
		args = append(args, chainID)
	}
	query += " ORDER BY asset_id"

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var recs []*AssetRecord
	for rows.Next() {
		rec, err := scanAssetRecord(rows)
		if err != nil {
			return nil, err
		}
		recs = append(recs, rec)
	}
	return recs, rows.Err()
}

// DeleteAsset removes an asset record.
func (s *Storage) DeleteAsset(assetID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec("DELETE FROM assets WHERE asset_id = ?", assetID)
	return err
}

// AssetCount returns the number of stored assets.
func (s *Storage) AssetCount() (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var count int
	err := s.db.QueryRow("SELECT COUNT(*) FROM assets").Scan(&count)
	return count, err
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanAssetRecord(row rowScanner) (*AssetRecord, error) {
	var rec AssetRecord
	var updatedAt int64

	err := row.Scan(
		&rec.AssetID,
		&rec.ChainID,
		&rec.Symbol,
		&rec.Name,
		&rec.Precision,
		&rec.Source,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	rec.UpdatedAt = time.Unix(updatedAt, 0)
	return &rec, nil
}
