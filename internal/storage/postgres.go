package storage

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"courtscraper/internal/domain"
)

// PostgresStore handles interactions with the PostgreSQL database.
type PostgresStore struct {
	db *pgxpool.Pool
}

func NewPostgresStore(connStr string) (*PostgresStore, error) {
	db, err := pgxpool.New(context.Background(), connStr)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to database: %w", err)
	}
	return &PostgresStore{db: db}, nil
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

// AddressExists reports whether a court with this address was already
// persisted, by this run or a previous one.
func (s *PostgresStore) AddressExists(ctx context.Context, address string) (bool, error) {
	var exists bool
	err := s.db.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM courts WHERE address = $1)`,
		address,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("address existence check: %w", err)
	}
	return exists, nil
}

// Insert persists one court record and returns its id.
func (s *PostgresStore) Insert(ctx context.Context, record *domain.CourtRecord) (int64, error) {
	var imageURL, imageType, imagePath string
	if record.Image != nil {
		imageURL = record.Image.SourceURL
		imageType = record.Image.ContentType
		imagePath = record.Image.LocalPath
	}

	var id int64
	err := s.db.QueryRow(ctx,
		`INSERT INTO courts (name, address, address_link, telephone, website_text, website_link, image_url, image_type, image_path, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		 RETURNING id`,
		record.Name, record.Address, record.AddressLink, record.Telephone,
		record.WebsiteText, record.WebsiteLink, imageURL, imageType, imagePath,
		record.CreatedAt,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("court insert: %w", err)
	}
	return id, nil
}

// ListAll reads every persisted court back, for export.
func (s *PostgresStore) ListAll(ctx context.Context) ([]domain.StoredCourt, error) {
	rows, err := s.db.Query(ctx,
		`SELECT id, name, address, address_link, telephone, website_text, website_link, image_url, image_type, image_path, created_at
		 FROM courts ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("court listing: %w", err)
	}
	defer rows.Close()

	var courts []domain.StoredCourt
	for rows.Next() {
		var c domain.StoredCourt
		if err := rows.Scan(&c.ID, &c.Name, &c.Address, &c.AddressLink, &c.Telephone,
			&c.WebsiteText, &c.WebsiteLink, &c.ImageURL, &c.ImageType, &c.ImagePath,
			&c.CreatedAt); err != nil {
			return nil, fmt.Errorf("court row scan: %w", err)
		}
		courts = append(courts, c)
	}
	return courts, rows.Err()
}

func (s *PostgresStore) Close() {
	s.db.Close()
}
