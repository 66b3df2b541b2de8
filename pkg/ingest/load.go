package ingest

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/auctionbase/auctionbase/pkg/db"
)

// Load bulk-inserts a finalized ingestion context into the database in
// one transaction.
func (c *Context) Load(ctx context.Context, database *sqlx.DB) error {
	return db.RunInTransaction(ctx, database, func(tx *sqlx.Tx) error {
		return c.InsertAll(ctx, tx)
	})
}

// InsertAll writes every buffered row in dependency order, so each
// foreign key already exists when the row referencing it is inserted.
// Named exec with a slice argument expands into a multi-row insert.
func (c *Context) InsertAll(ctx context.Context, tx *sqlx.Tx) error {
	inserts := []struct {
		name  string
		query string
		rows  interface{}
		empty bool
	}{
		{"countries", "INSERT INTO countries (id,name) VALUES (:id,:name)",
			c.CountryRows(), c.Countries.Len() == 0},
		{"locations", "INSERT INTO locations (id,name,country_id) VALUES (:id,:name,:country_id)",
			c.Locations.Rows(), c.Locations.Len() == 0},
		{"categories", "INSERT INTO categories (id,name) VALUES (:id,:name)",
			c.CategoryRows(), c.Categories.Len() == 0},
		{"users", "INSERT INTO users (id,rating,location_id) VALUES (:id,:rating,:location_id)",
			c.Users.Rows(), c.Users.Len() == 0},
		{"items", `INSERT INTO items (id,name,currently,buy_price,first_bid,number_of_bids,location_id,started,ends,description)
			VALUES (:id,:name,:currently,:buy_price,:first_bid,:number_of_bids,:location_id,:started,:ends,:description)`,
			c.Items, len(c.Items) == 0},
		{"item_categories", "INSERT INTO item_categories (item_id,category_id) VALUES (:item_id,:category_id)",
			c.ItemCategories, len(c.ItemCategories) == 0},
		{"item_sellers", "INSERT INTO item_sellers (item_id,seller_user_id) VALUES (:item_id,:seller_user_id)",
			c.ItemSellers, len(c.ItemSellers) == 0},
		{"bids", "INSERT INTO bids (id,bidder_user_id,time,amount) VALUES (:id,:bidder_user_id,:time,:amount)",
			c.Bids, len(c.Bids) == 0},
		{"item_bids", "INSERT INTO item_bids (item_id,bid_id) VALUES (:item_id,:bid_id)",
			c.ItemBids, len(c.ItemBids) == 0},
	}

	for _, ins := range inserts {
		if ins.empty {
			continue
		}
		if _, err := tx.NamedExecContext(ctx, ins.query, ins.rows); err != nil {
			return fmt.Errorf("error inserting into %s: %w", ins.name, err)
		}
	}
	return nil
}
