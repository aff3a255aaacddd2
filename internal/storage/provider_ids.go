package storage

import (
	"context"
	"time"
)

// ProviderIDRecord maps a provider's own asset id to an AssetID string.
type ProviderIDRecord struct {
	Provider   string    `json:"provider"`
	ProviderID string    `json:"provider_id"`
	AssetID    string    `json:"asset_id"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// SaveProviderID inserts or updates a provider id mapping.
func (s *Storage) SaveProviderID(rec *ProviderIDRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	updatedAt := rec.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = time.Now()
	}

	_, err := s.db.Exec(`
		INSERT INTO provider_ids (provider, provider_id, asset_id, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(provider, provider_id) DO UPDATE SET
			asset_id = excluded.asset_id,
			updated_at = excluded.updated_at
	`, rec.Provider, rec.ProviderID, rec.AssetID, updatedAt.Unix())
	return err
}

// ListProviderIDs returns all mappings for a provider ordered by provider id.
func (s *Storage) ListProviderIDs(provider string) ([]*ProviderIDRecord, error) {
	return s.listProviderIDs(context.Background(), provider)
}

// DeleteProviderIDs removes every mapping for a provider.
func (s *Storage) DeleteProviderIDs(provider string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec("DELETE FROM provider_ids WHERE provider = ?", provider)
	return err
}

// ProviderFetchFunc returns a function that loads a provider's table as
// provider id -> AssetID string. It fits the provider cache's fetch hook.
func (s *Storage) ProviderFetchFunc(provider string) func(ctx context.Context) (map[string]string, error) {
	return func(ctx context.Context) (map[string]string, error) {
		recs, err := s.listProviderIDs(ctx, provider)
		if err != nil {
			return nil, err
		}
		out := make(map[string]string, len(recs))
		for _, rec := range recs {
			out[rec.ProviderID] = rec.AssetID
		}
		return out, nil
	}
}

func (s *Storage) listProviderIDs(ctx context.Context, provider string) ([]*ProviderIDRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT provider, provider_id, asset_id, updated_at
		FROM provider_ids WHERE provider = ?
		ORDER BY provider_id
	`, provider)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var recs []*ProviderIDRecord
	for rows.Next() {
		var rec ProviderIDRecord
		var updatedAt int64
		if err := rows.Scan(&rec.Provider, &rec.ProviderID, &rec.AssetID, &updatedAt); err != nil {
			return nil, err
		}
		rec.UpdatedAt = time.Unix(updatedAt, 0)
		recs = append(recs, &rec)
	}
	return recs, rows.Err()
}
