package db

import (
	"database/sql"
)

// Category is a distinct auction category. Ids are dense, 1-based and
// assigned in first-seen order during an ingestion run.
type Category struct {
	Id   int
	Name string
}

// Country is a distinct country name referenced by locations.
type Country struct {
	Id   int
	Name string
}

// Location is a distinct location string. The country association is
// captured once, when the location is first seen, and never merged or
// upgraded afterwards.
type Location struct {
	Id        int
	Name      string
	CountryId sql.NullInt64 `db:"country_id"`
}

// User is a seller or bidder. The id is the natural UserID from the
// source data. Rating and location are frozen at first sight; later
// appearances of the same UserID never update them.
type User struct {
	Id         string
	Rating     string
	LocationId sql.NullInt64 `db:"location_id"`
}

// Item is one auction listing. Money columns hold canonical decimal
// strings, timestamp columns hold the fixed-width sortable form. A
// NULL BuyPrice means the listing has no buy-now price, which is
// distinct from a zero price.
type Item struct {
	Id           string
	Name         string
	Currently    string
	BuyPrice     sql.NullString `db:"buy_price"`
	FirstBid     string         `db:"first_bid"`
	NumberOfBids int            `db:"number_of_bids"`
	LocationId   int            `db:"location_id"`
	Started      string
	Ends         string
	Description  string
}

// ItemCategory links an item to one of its declared categories.
type ItemCategory struct {
	ItemId     string `db:"item_id"`
	CategoryId int    `db:"category_id"`
}

// ItemSeller links an item to the user selling it.
type ItemSeller struct {
	ItemId       string `db:"item_id"`
	SellerUserId string `db:"seller_user_id"`
}

// Bid is one bid event. Insertion order defines the id.
type Bid struct {
	Id           int
	BidderUserId string `db:"bidder_user_id"`
	Time         string
	Amount       string
}

// ItemBid links a bid to the item it was placed on.
type ItemBid struct {
	ItemId string `db:"item_id"`
	BidId  int    `db:"bid_id"`
}
