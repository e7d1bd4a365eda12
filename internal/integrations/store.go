package integrations

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"
)

// Store reads integration records from Postgres. The credential store is
// owned by the OAuth connect flow; all queries here are read-only.
type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// GetActive returns the user's active integrations whose provider is in
// the given set. Providers without an active row are simply absent from
// the result, not errors.
func (s *Store) GetActive(ctx context.Context, userID string, providers []string) ([]Integration, error) {
	if len(providers) == 0 {
		return nil, nil
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, provider, access_token, account_id, account_data, is_active
		FROM integrations
		WHERE user_id = $1 AND is_active = TRUE AND provider = ANY($2)`,
		userID, pq.Array(providers))
	if err != nil {
		return nil, fmt.Errorf("query integrations: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var result []Integration
	for rows.Next() {
		var integ Integration
		var accountID sql.NullString
		var accountData []byte
		if err := rows.Scan(&integ.ID, &integ.UserID, &integ.Provider, &integ.AccessToken, &accountID, &accountData, &integ.IsActive); err != nil {
			return nil, fmt.Errorf("scan integration: %w", err)
		}
		integ.AccountID = accountID.String
		integ.AccountData = decodeAccountData(accountData)
		result = append(result, integ)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate integrations: %w", err)
	}

	return result, nil
}
