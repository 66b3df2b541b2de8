package bid

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/auctionbase/auctionbase/pkg/db"
	"github.com/auctionbase/auctionbase/pkg/normalize"
)

// Request is a candidate bid. Price may still carry currency
// formatting; it is normalized before evaluation.
type Request struct {
	ItemID   string
	BidderID string
	Price    string
}

// Place runs the full read-checks-insert sequence inside one
// transaction, with the item row locked, so two concurrent bids
// cannot both pass the strictly-greater check against a stale price.
// On success the bid is committed and the item's cached current price
// and bid count are updated in the same transaction. A persistence
// failure rolls back everything and is returned as an error, message
// intact.
func Place(ctx context.Context, database *sqlx.DB, req Request) (Outcome, error) {
	outcome := Unknown
	err := db.RunInTransaction(ctx, database, func(tx *sqlx.Tx) error {
		var err error
		outcome, err = place(ctx, tx, req)
		return err
	})
	return outcome, err
}

func place(ctx context.Context, tx *sqlx.Tx, req Request) (Outcome, error) {
	var bidderExists bool
	err := tx.GetContext(ctx, &bidderExists, "SELECT EXISTS(SELECT 1 FROM users WHERE id = $1)", req.BidderID)
	if err != nil {
		return Unknown, fmt.Errorf("error checking bidder: %w", err)
	}

	item, err := loadItemSnapshot(ctx, tx, req.ItemID)
	if err != nil {
		return Unknown, err
	}

	var now string
	if err := tx.GetContext(ctx, &now, "SELECT time FROM currenttime"); err != nil {
		return Unknown, fmt.Errorf("error reading current time: %w", err)
	}

	price := normalize.Money(req.Price)
	outcome := evaluate(bidderExists, item, req.BidderID, price, now)
	if outcome != Accepted {
		return outcome, nil
	}

	if err := insertBid(ctx, tx, req.ItemID, req.BidderID, price, now); err != nil {
		return Unknown, err
	}
	return Accepted, nil
}

func loadItemSnapshot(ctx context.Context, tx *sqlx.Tx, itemId string) (itemSnapshot, error) {
	var row struct {
		SellerUserId string         `db:"seller_user_id"`
		Started      string         `db:"started"`
		Ends         string         `db:"ends"`
		Currently    string         `db:"currently"`
		BuyPrice     sql.NullString `db:"buy_price"`
	}
	// FOR UPDATE serializes concurrent bids on the same item: a
	// second transaction blocks here until the first commits, then
	// evaluates against the committed price and bid ids.
	err := db.GetNamedContext(ctx, tx, &row, `SELECT s.seller_user_id, i.started, i.ends, i.currently, i.buy_price
		FROM items i
		INNER JOIN item_sellers s ON (s.item_id = i.id)
		WHERE i.id = :item_id
		FOR UPDATE OF i`,
		map[string]interface{}{"item_id": itemId})
	if errors.Is(err, sql.ErrNoRows) {
		return itemSnapshot{}, nil
	}
	if err != nil {
		return itemSnapshot{}, fmt.Errorf("error loading item %q: %w", itemId, err)
	}
	return itemSnapshot{
		Found:        true,
		SellerUserId: row.SellerUserId,
		Started:      row.Started,
		Ends:         row.Ends,
		Currently:    row.Currently,
		BuyPrice:     row.BuyPrice.String,
		HasBuyPrice:  row.BuyPrice.Valid,
	}, nil
}

func insertBid(ctx context.Context, tx *sqlx.Tx, itemId, bidderId, price, now string) error {
	var bidId int
	if err := tx.GetContext(ctx, &bidId, "SELECT COALESCE(MAX(id), 0) + 1 FROM bids"); err != nil {
		return fmt.Errorf("error assigning bid id: %w", err)
	}

	_, err := tx.NamedExecContext(ctx,
		"INSERT INTO bids (id,bidder_user_id,time,amount) VALUES (:id,:bidder_user_id,:time,:amount)",
		db.Bid{Id: bidId, BidderUserId: bidderId, Time: now, Amount: price})
	if err != nil {
		return fmt.Errorf("error inserting bid: %w", err)
	}

	_, err = tx.NamedExecContext(ctx,
		"INSERT INTO item_bids (item_id,bid_id) VALUES (:item_id,:bid_id)",
		db.ItemBid{ItemId: itemId, BidId: bidId})
	if err != nil {
		return fmt.Errorf("error inserting item bid: %w", err)
	}

	// Keep the cached columns in sync with the committed bid. The
	// original data set left them stale after the initial load; the
	// search filters read currently, so staleness would show there.
	_, err = tx.ExecContext(ctx,
		"UPDATE items SET currently = $1, number_of_bids = number_of_bids + 1 WHERE id = $2",
		price, itemId)
	if err != nil {
		return fmt.Errorf("error updating item price: %w", err)
	}
	return nil
}
