// Package query provides the filtered lookups and the application
// time accessors the web boundary depends on.
package query

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/auctionbase/auctionbase/pkg/db"
)

// ResultLimit caps every search result set.
const ResultLimit = 10

// TimeLayout is the canonical timestamp form stored in the database.
const TimeLayout = "2006-01-02 15:04:05"

// Item status values as exposed by the search filter and the item page.
const (
	StatusOpen       = "open"
	StatusClosed     = "close"
	StatusNotStarted = "notStarted"
)

// GetTime returns the application's current time. Every read of "now"
// goes through this accessor so simulated-time tests stay reproducible.
func GetTime(ctx context.Context, q sqlx.QueryerContext) (string, error) {
	var now string
	if err := sqlx.GetContext(ctx, q, &now, "SELECT time FROM currenttime"); err != nil {
		return "", fmt.Errorf("error reading current time: %w", err)
	}
	return now, nil
}

// SetTime moves the application's current time. The value must be in
// the canonical "YYYY-MM-DD HH:MM:SS" form.
func SetTime(ctx context.Context, e sqlx.ExecerContext, now string) error {
	if _, err := time.Parse(TimeLayout, now); err != nil {
		return fmt.Errorf("invalid time %q: %w", now, err)
	}
	if _, err := e.ExecContext(ctx, "UPDATE currenttime SET time = $1", now); err != nil {
		return fmt.Errorf("error setting current time: %w", err)
	}
	return nil
}

// Filter is the search filter tuple. Empty fields are not applied.
type Filter struct {
	ItemID      string
	Category    string
	Description string
	SellerID    string
	MinPrice    string
	MaxPrice    string
	Status      string
}

// SearchItems returns at most ResultLimit items matching every set
// filter field. Status filters are evaluated against the application's
// current time.
func SearchItems(ctx context.Context, q sqlx.QueryerContext, filter Filter) ([]db.Item, error) {
	now, err := GetTime(ctx, q)
	if err != nil {
		return nil, err
	}

	conds := []string{"1 = 1"}
	args := []interface{}{}
	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.ItemID != "" {
		conds = append(conds, "items.id = "+arg(filter.ItemID))
	}
	if filter.Category != "" {
		conds = append(conds, `EXISTS (SELECT 1 FROM item_categories ic
			INNER JOIN categories c ON (c.id = ic.category_id)
			WHERE ic.item_id = items.id AND c.name = `+arg(filter.Category)+")")
	}
	if filter.Description != "" {
		conds = append(conds, "items.description LIKE "+arg("%"+filter.Description+"%"))
	}
	if filter.SellerID != "" {
		conds = append(conds, `EXISTS (SELECT 1 FROM item_sellers s
			WHERE s.item_id = items.id AND s.seller_user_id = `+arg(filter.SellerID)+")")
	}
	if filter.MinPrice != "" {
		conds = append(conds, "CAST(items.currently AS numeric) >= CAST("+arg(filter.MinPrice)+" AS numeric)")
	}
	if filter.MaxPrice != "" {
		conds = append(conds, "CAST(items.currently AS numeric) <= CAST("+arg(filter.MaxPrice)+" AS numeric)")
	}

	switch filter.Status {
	case StatusOpen:
		t := arg(now)
		conds = append(conds, "items.started <= "+t, "items.ends >= "+t,
			"(items.buy_price IS NULL OR CAST(items.currently AS numeric) < CAST(items.buy_price AS numeric))")
	case StatusClosed:
		conds = append(conds, "(items.ends <= "+arg(now)+
			" OR (items.buy_price IS NOT NULL AND CAST(items.currently AS numeric) >= CAST(items.buy_price AS numeric)))")
	case StatusNotStarted:
		conds = append(conds, "items.started >= "+arg(now))
	case "":
	default:
		return nil, fmt.Errorf("unknown status filter %q", filter.Status)
	}

	query := fmt.Sprintf("SELECT items.* FROM items WHERE %s ORDER BY items.id LIMIT %d",
		strings.Join(conds, " AND "), ResultLimit)

	items := make([]db.Item, 0)
	if err := sqlx.SelectContext(ctx, q, &items, query, args...); err != nil {
		return nil, fmt.Errorf("error searching items: %w", err)
	}
	return items, nil
}

// BidsForItem returns the bids placed on an item ordered by time.
func BidsForItem(ctx context.Context, q sqlx.QueryerContext, itemId string) ([]db.Bid, error) {
	bids := make([]db.Bid, 0)
	err := sqlx.SelectContext(ctx, q, &bids, `SELECT b.* FROM bids b
		INNER JOIN item_bids ib ON (ib.bid_id = b.id)
		WHERE ib.item_id = $1
		ORDER BY b.time, b.id`, itemId)
	if err != nil {
		return nil, fmt.Errorf("error loading bids for item %q: %w", itemId, err)
	}
	return bids, nil
}

// CategoriesForItem returns the names of the categories an item was
// listed under, one per declared category. A category declared twice
// in the listing shows up twice.
func CategoriesForItem(ctx context.Context, q sqlx.QueryerContext, itemId string) ([]string, error) {
	names := make([]string, 0)
	err := sqlx.SelectContext(ctx, q, &names, `SELECT c.name FROM categories c
		INNER JOIN item_categories ic ON (ic.category_id = c.id)
		WHERE ic.item_id = $1
		ORDER BY c.name`, itemId)
	if err != nil {
		return nil, fmt.Errorf("error loading categories for item %q: %w", itemId, err)
	}
	return names, nil
}

// ErrItemNotFound is returned by ItemDetail for an unknown item id.
var ErrItemNotFound = errors.New("item not found")

// ItemDetail is everything the item page shows.
type ItemDetail struct {
	db.Item
	SellerUserId string
	Categories   []string
	Bids         []db.Bid
	Status       string
	// Winner is the highest bid, set only once the auction is closed.
	Winner *db.Bid
}

// GetItemDetail loads one item with its bids, categories and derived
// status. The winner is recomputed from the actual bid rows rather
// than the cached current price.
func GetItemDetail(ctx context.Context, q sqlx.QueryerContext, itemId string) (*ItemDetail, error) {
	detail := ItemDetail{}
	err := sqlx.GetContext(ctx, q, &detail.Item, "SELECT * FROM items WHERE id = $1", itemId)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrItemNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("error loading item %q: %w", itemId, err)
	}

	if err := sqlx.GetContext(ctx, q, &detail.SellerUserId,
		"SELECT seller_user_id FROM item_sellers WHERE item_id = $1", itemId); err != nil {
		return nil, fmt.Errorf("error loading seller for item %q: %w", itemId, err)
	}
	if detail.Categories, err = CategoriesForItem(ctx, q, itemId); err != nil {
		return nil, err
	}
	if detail.Bids, err = BidsForItem(ctx, q, itemId); err != nil {
		return nil, err
	}

	now, err := GetTime(ctx, q)
	if err != nil {
		return nil, err
	}
	detail.Status = itemStatus(detail.Item, now)

	if detail.Status == StatusClosed && len(detail.Bids) > 0 {
		detail.Winner = highestBid(detail.Bids)
	}
	return &detail, nil
}

func itemStatus(item db.Item, now string) string {
	switch {
	case now < item.Started:
		return StatusNotStarted
	case now > item.Ends:
		return StatusClosed
	case item.BuyPrice.Valid && toNumber(item.Currently) >= toNumber(item.BuyPrice.String):
		return StatusClosed
	default:
		return StatusOpen
	}
}

func highestBid(bids []db.Bid) *db.Bid {
	winner := &bids[0]
	for i := range bids {
		if toNumber(bids[i].Amount) > toNumber(winner.Amount) {
			winner = &bids[i]
		}
	}
	return winner
}

func toNumber(s string) float64 {
	f, _ := strconv.ParseFloat(s, 64)
	return f
}
