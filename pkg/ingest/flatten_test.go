package ingest_test

import (
	"database/sql"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/auctionbase/auctionbase/pkg/db"
	"github.com/auctionbase/auctionbase/pkg/ingest"
)

const listingFixture = `{"Items": [
  {
    "ItemID": "1043374545",
    "Name": "Vintage Teddy Bear",
    "Category": ["Collectibles", "Toys & Bean Bag", "Collectibles"],
    "Currently": "$10.00",
    "Buy_Price": "$42.00",
    "First_Bid": "$1.00",
    "Number_of_Bids": "2",
    "Location": "Sunnyvale, CA",
    "Country": "USA",
    "Started": "Dec-08-01 16:03:25",
    "Ends": "Dec-18-01 16:03:25",
    "Seller": {"UserID": "sunnyseller", "Rating": "405"},
    "Description": "A well loved bear | slightly \"distressed\"",
    "Bids": [
      {"Bid": {
        "Bidder": {"UserID": "bearfan", "Rating": "12", "Location": "Berlin", "Country": "Germany"},
        "Time": "Dec-10-01 09:00:00",
        "Amount": "$5.00"
      }},
      {"Bid": {
        "Bidder": {"UserID": "sunnyseller2", "Rating": "3"},
        "Time": "Dec-11-01 10:30:00",
        "Amount": "$10.00"
      }}
    ]
  },
  {
    "ItemID": "1043374546",
    "Name": "Spoon",
    "Category": ["Collectibles"],
    "Currently": "$2.00",
    "First_Bid": "$2.00",
    "Number_of_Bids": "0",
    "Location": "Sunnyvale, CA",
    "Started": "Dec-09-01 12:00:00",
    "Ends": "Dec-19-01 12:00:00",
    "Seller": {"UserID": "bearfan", "Rating": "700"},
    "Description": null,
    "Bids": null
  }
]}`

func flattenFixture(t *testing.T) *ingest.Context {
	t.Helper()
	listings, err := ingest.ParseListings([]byte(listingFixture))
	require.NoError(t, err)

	c := ingest.NewContext()
	for _, l := range listings {
		require.NoError(t, c.Flatten(l))
	}
	return c
}

func TestFlattenRegistersEntities(t *testing.T) {
	c := flattenFixture(t)

	require.Equal(t, []string{"Collectibles", "Toys & Bean Bag"}, c.Categories.Keys())
	require.Equal(t, []string{"USA", "Germany"}, c.Countries.Keys())
	require.Equal(t, []db.Location{
		{Id: 1, Name: "Sunnyvale, CA", CountryId: sql.NullInt64{Int64: 1, Valid: true}},
		{Id: 2, Name: "Berlin", CountryId: sql.NullInt64{Int64: 2, Valid: true}},
	}, c.Locations.Rows())
}

func TestFlattenAttachesListingLocationToSeller(t *testing.T) {
	c := flattenFixture(t)

	users := c.Users.Rows()
	require.Equal(t, db.User{
		Id:         "sunnyseller",
		Rating:     "405",
		LocationId: sql.NullInt64{Int64: 1, Valid: true},
	}, users[0])
}

func TestFlattenFreezesUserOnFirstSight(t *testing.T) {
	c := flattenFixture(t)

	// "bearfan" first appears as a bidder with rating 12; the later
	// appearance as a seller with rating 700 must not change it.
	var bearfan db.User
	for _, u := range c.Users.Rows() {
		if u.Id == "bearfan" {
			bearfan = u
		}
	}
	require.Equal(t, "12", bearfan.Rating)
	require.Equal(t, sql.NullInt64{Int64: 2, Valid: true}, bearfan.LocationId)
}

func TestFlattenEmitsItemRow(t *testing.T) {
	c := flattenFixture(t)

	require.Len(t, c.Items, 2)
	require.Equal(t, db.Item{
		Id:           "1043374545",
		Name:         "Vintage Teddy Bear",
		Currently:    "10.00",
		BuyPrice:     sql.NullString{String: "42.00", Valid: true},
		FirstBid:     "1.00",
		NumberOfBids: 2,
		LocationId:   1,
		Started:      "2001-12-08 16:03:25",
		Ends:         "2001-12-18 16:03:25",
		Description:  `A well loved bear | slightly "distressed"`,
	}, c.Items[0])

	// Absent Buy_Price and null Description on the second listing.
	require.False(t, c.Items[1].BuyPrice.Valid)
	require.Equal(t, "", c.Items[1].Description)
}

func TestFlattenEmitsJoinRows(t *testing.T) {
	c := flattenFixture(t)

	// Duplicate declared category yields a duplicate join row.
	require.Equal(t, []db.ItemCategory{
		{ItemId: "1043374545", CategoryId: 1},
		{ItemId: "1043374545", CategoryId: 2},
		{ItemId: "1043374545", CategoryId: 1},
		{ItemId: "1043374546", CategoryId: 1},
	}, c.ItemCategories)

	require.Equal(t, []db.ItemSeller{
		{ItemId: "1043374545", SellerUserId: "sunnyseller"},
		{ItemId: "1043374546", SellerUserId: "bearfan"},
	}, c.ItemSellers)
}

func TestFlattenEmitsBidsInListingOrder(t *testing.T) {
	c := flattenFixture(t)

	require.Equal(t, []db.Bid{
		{Id: 1, BidderUserId: "bearfan", Time: "2001-12-10 09:00:00", Amount: "5.00"},
		{Id: 2, BidderUserId: "sunnyseller2", Time: "2001-12-11 10:30:00", Amount: "10.00"},
	}, c.Bids)
	require.Equal(t, []db.ItemBid{
		{ItemId: "1043374545", BidId: 1},
		{ItemId: "1043374545", BidId: 2},
	}, c.ItemBids)
}

func TestFlattenNullBidListEmitsNoRows(t *testing.T) {
	c := flattenFixture(t)

	// The second listing has "Bids": null; only the first listing's
	// two bids exist and ingestion did not fail.
	require.Len(t, c.Bids, 2)
	require.Len(t, c.ItemBids, 2)
}

func TestParseListingsMissingRequiredFieldFails(t *testing.T) {
	_, err := ingest.ParseListings([]byte(`{"Items": [{"ItemID": "1", "Name": "x"}]}`))
	require.Error(t, err)

	var malformed *ingest.MalformedInputError
	require.ErrorAs(t, err, &malformed)
	require.Equal(t, "Category", malformed.Field)
	require.Equal(t, "1", malformed.ItemID)
}

func TestParseListingsMissingLocationFails(t *testing.T) {
	_, err := ingest.ParseListings([]byte(`{"Items": [{
		"ItemID": "2", "Name": "x", "Category": [], "Currently": "$1.00",
		"First_Bid": "$1.00", "Number_of_Bids": "0",
		"Started": "Dec-08-01 16:03:25", "Ends": "Dec-18-01 16:03:25",
		"Seller": {"UserID": "s", "Rating": "1"}
	}]}`))

	var malformed *ingest.MalformedInputError
	require.ErrorAs(t, err, &malformed)
	require.Equal(t, "Location", malformed.Field)
}
