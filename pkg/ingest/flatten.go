package ingest

import (
	"database/sql"
	"fmt"
	"strconv"

	"github.com/auctionbase/auctionbase/pkg/db"
	"github.com/auctionbase/auctionbase/pkg/normalize"
)

// Flatten processes one nested listing in a single pass: it registers
// every category, location, country and user the listing mentions and
// appends the flattened Item, ItemCategory, ItemSeller, Bid and
// ItemBid rows. Registries are populated before any row referencing
// them is emitted.
func (c *Context) Flatten(l Listing) error {
	if err := l.validate(); err != nil {
		return err
	}

	for _, cat := range l.Category {
		c.Categories.GetOrCreate(cat)
	}

	itemLocationId := c.registerLocation(*l.Location, l.Country)
	for _, entry := range l.Bids {
		bidder := entry.Bid.Bidder
		if bidder.Location != nil {
			c.registerLocation(*bidder.Location, bidder.Country)
		}
	}

	// Sellers carry no location field of their own; the listing's
	// location is attached to the seller, matching the source format.
	c.Users.GetOrCreate(db.User{
		Id:         *l.Seller.UserID,
		Rating:     *l.Seller.Rating,
		LocationId: sql.NullInt64{Int64: int64(itemLocationId), Valid: true},
	})
	for _, entry := range l.Bids {
		bidder := entry.Bid.Bidder
		locationId := sql.NullInt64{}
		if bidder.Location != nil {
			locationId = sql.NullInt64{Int64: int64(c.Locations.GetOrCreate(*bidder.Location, sql.NullInt64{})), Valid: true}
		}
		c.Users.GetOrCreate(db.User{
			Id:         *bidder.UserID,
			Rating:     *bidder.Rating,
			LocationId: locationId,
		})
	}

	numberOfBids, err := strconv.Atoi(*l.NumberOfBids)
	if err != nil {
		return fmt.Errorf("listing %q: cannot parse Number_of_Bids: %w", *l.ItemID, err)
	}

	buyPrice := sql.NullString{}
	if l.BuyPrice != nil {
		buyPrice = sql.NullString{String: normalize.Money(*l.BuyPrice), Valid: true}
	}
	description := ""
	if l.Description != nil {
		description = *l.Description
	}

	c.Items = append(c.Items, db.Item{
		Id:           *l.ItemID,
		Name:         *l.Name,
		Currently:    normalize.Money(*l.Currently),
		BuyPrice:     buyPrice,
		FirstBid:     normalize.Money(*l.FirstBid),
		NumberOfBids: numberOfBids,
		LocationId:   itemLocationId,
		Started:      normalize.Timestamp(*l.Started),
		Ends:         normalize.Timestamp(*l.Ends),
		Description:  description,
	})

	// One join row per declared category; a category declared twice
	// yields two rows on purpose.
	for _, cat := range l.Category {
		c.ItemCategories = append(c.ItemCategories, db.ItemCategory{
			ItemId:     *l.ItemID,
			CategoryId: c.Categories.GetOrCreate(cat),
		})
	}
	c.ItemSellers = append(c.ItemSellers, db.ItemSeller{
		ItemId:       *l.ItemID,
		SellerUserId: *l.Seller.UserID,
	})

	for _, entry := range l.Bids {
		b := entry.Bid
		bidId := len(c.Bids) + 1
		c.Bids = append(c.Bids, db.Bid{
			Id:           bidId,
			BidderUserId: *b.Bidder.UserID,
			Time:         normalize.Timestamp(*b.Time),
			Amount:       normalize.Money(*b.Amount),
		})
		c.ItemBids = append(c.ItemBids, db.ItemBid{
			ItemId: *l.ItemID,
			BidId:  bidId,
		})
	}

	return nil
}

// registerLocation registers the country, if declared, before the
// location referencing it.
func (c *Context) registerLocation(location string, country *string) int {
	countryId := sql.NullInt64{}
	if country != nil {
		countryId = sql.NullInt64{Int64: int64(c.Countries.GetOrCreate(*country)), Valid: true}
	}
	return c.Locations.GetOrCreate(location, countryId)
}
