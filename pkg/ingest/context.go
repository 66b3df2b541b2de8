package ingest

import (
	"github.com/auctionbase/auctionbase/pkg/db"
)

// Context holds the shared identity registries and output row buffers
// of one ingestion run. It is created at the start of a run, mutated
// only by Flatten, and read-only once the rows are exported or loaded.
type Context struct {
	Categories *Registry
	Countries  *Registry
	Locations  *LocationRegistry
	Users      *UserRegistry

	Items          []db.Item
	ItemCategories []db.ItemCategory
	ItemSellers    []db.ItemSeller
	Bids           []db.Bid
	ItemBids       []db.ItemBid
}

func NewContext() *Context {
	return &Context{
		Categories: NewRegistry(),
		Countries:  NewRegistry(),
		Locations:  NewLocationRegistry(),
		Users:      NewUserRegistry(),
	}
}

// CategoryRows returns the category table rows in id order.
func (c *Context) CategoryRows() []db.Category {
	keys := c.Categories.Keys()
	rows := make([]db.Category, 0, len(keys))
	for i, name := range keys {
		rows = append(rows, db.Category{Id: i + 1, Name: name})
	}
	return rows
}

// CountryRows returns the country table rows in id order.
func (c *Context) CountryRows() []db.Country {
	keys := c.Countries.Keys()
	rows := make([]db.Country, 0, len(keys))
	for i, name := range keys {
		rows = append(rows, db.Country{Id: i + 1, Name: name})
	}
	return rows
}
