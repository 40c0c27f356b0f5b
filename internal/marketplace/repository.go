package marketplace

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"hatake-api/internal/db"

	"github.com/pkg/errors"
)

const StatusActive = "active"

var ErrNotFound = errors.New("listing not found")

// Listing is an active marketplace offer joined with its seller.
type Listing struct {
	ListingID     string          `json:"listing_id"`
	UserID        string          `json:"user_id"`
	CardID        string          `json:"card_id"`
	Game          string          `json:"game"`
	CardData      json.RawMessage `json:"card_data"`
	Price         float64         `json:"price"`
	Currency      string          `json:"currency"`
	Condition     string          `json:"condition"`
	Foil          bool            `json:"foil"`
	Quantity      int             `json:"quantity"`
	Description   string          `json:"description"`
	Status        string          `json:"status"`
	CreatedAt     time.Time       `json:"created_at"`
	SellerName    string          `json:"name"`
	SellerPicture string          `json:"picture"`
}

type ListParams struct {
	Game   string // empty means every game
	Limit  int
	Offset int
}

type NewListing struct {
	ListingID   string
	UserID      string
	CardID      string
	Game        string
	CardData    json.RawMessage
	Price       float64
	Currency    string
	Condition   string
	Foil        bool
	Quantity    int
	Description string
}

type Repository interface {
	List(ctx context.Context, p ListParams) ([]Listing, error)
	Create(ctx context.Context, l NewListing) error
	// Owner returns the user id of the listing's seller.
	Owner(ctx context.Context, listingID string) (string, error)
	Delete(ctx context.Context, listingID string) error
}

type PostgresRepository struct {
	db *db.DB
}

func NewPostgresRepository(db *db.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) List(ctx context.Context, p ListParams) ([]Listing, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT l.listing_id, l.user_id, l.card_id, l.game, l.card_data, l.price,
		       l.currency, l.condition, l.foil, l.quantity, l.description, l.status,
		       l.created_at, u.name, COALESCE(u.picture, '')
		FROM marketplace_listings l
		JOIN users u ON l.user_id = u.user_id
		WHERE l.status = $1
		  AND ($2 = '' OR l.game = $2)
		ORDER BY l.created_at DESC
		LIMIT $3 OFFSET $4
	`, StatusActive, p.Game, p.Limit, p.Offset)
	if err != nil {
		return nil, errors.Wrap(err, "marketplace: query listings")
	}
	defer rows.Close()

	listings := make([]Listing, 0)
	for rows.Next() {
		var (
			l        Listing
			cardData []byte
		)
		if err := rows.Scan(
			&l.ListingID,
			&l.UserID,
			&l.CardID,
			&l.Game,
			&cardData,
			&l.Price,
			&l.Currency,
			&l.Condition,
			&l.Foil,
			&l.Quantity,
			&l.Description,
			&l.Status,
			&l.CreatedAt,
			&l.SellerName,
			&l.SellerPicture,
		); err != nil {
			return nil, errors.Wrap(err, "marketplace: scan listing")
		}
		l.CardData = json.RawMessage(cardData)
		listings = append(listings, l)
	}

	return listings, errors.Wrap(rows.Err(), "marketplace: iterate listings")
}

func (r *PostgresRepository) Create(ctx context.Context, l NewListing) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO marketplace_listings (
			listing_id, user_id, card_id, game, card_data, price, currency,
			condition, foil, quantity, description, status
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`,
		l.ListingID,
		l.UserID,
		l.CardID,
		l.Game,
		[]byte(l.CardData),
		l.Price,
		l.Currency,
		l.Condition,
		l.Foil,
		l.Quantity,
		l.Description,
		StatusActive,
	)
	return errors.Wrap(err, "marketplace: insert listing")
}

func (r *PostgresRepository) Owner(ctx context.Context, listingID string) (string, error) {
	var owner string
	err := r.db.QueryRowContext(ctx, `
		SELECT user_id
		FROM marketplace_listings
		WHERE listing_id = $1
	`, listingID).Scan(&owner)

	if err == sql.ErrNoRows {
		return "", ErrNotFound
	}
	if err != nil {
		return "", errors.Wrap(err, "marketplace: find owner")
	}
	return owner, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, listingID string) error {
	_, err := r.db.ExecContext(ctx, `
		DELETE FROM marketplace_listings
		WHERE listing_id = $1
	`, listingID)
	return errors.Wrap(err, "marketplace: delete listing")
}
