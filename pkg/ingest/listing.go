// Package ingest flattens nested auction listings into the normalized
// relational tables of the auction schema. A single Context owns the
// identity registries and row buffers of one ingestion run.
package ingest

import (
	"encoding/json"
	"fmt"
	"os"
)

// MalformedInputError reports a required field missing from a listing.
// It aborts the whole ingestion run.
type MalformedInputError struct {
	ItemID string
	Field  string
}

func (e *MalformedInputError) Error() string {
	if e.ItemID == "" {
		return fmt.Sprintf("malformed listing: required field %q is missing", e.Field)
	}
	return fmt.Sprintf("malformed listing %q: required field %q is missing", e.ItemID, e.Field)
}

// Listing is one nested auction record as found in the source files.
// Optional fields are pointers so that an absent key stays
// distinguishable from an empty value.
type Listing struct {
	ItemID       *string    `json:"ItemID"`
	Name         *string    `json:"Name"`
	Category     []string   `json:"Category"`
	Currently    *string    `json:"Currently"`
	BuyPrice     *string    `json:"Buy_Price"`
	FirstBid     *string    `json:"First_Bid"`
	NumberOfBids *string    `json:"Number_of_Bids"`
	Location     *string    `json:"Location"`
	Country      *string    `json:"Country"`
	Started      *string    `json:"Started"`
	Ends         *string    `json:"Ends"`
	Seller       *Seller    `json:"Seller"`
	Description  *string    `json:"Description"`
	Bids         []BidEntry `json:"Bids"`
}

// Seller carries no location of its own; the source format attaches
// the listing's location to the seller during flattening.
type Seller struct {
	UserID *string `json:"UserID"`
	Rating *string `json:"Rating"`
}

type BidEntry struct {
	Bid *BidDetail `json:"Bid"`
}

type BidDetail struct {
	Bidder *Bidder `json:"Bidder"`
	Time   *string `json:"Time"`
	Amount *string `json:"Amount"`
}

type Bidder struct {
	UserID   *string `json:"UserID"`
	Rating   *string `json:"Rating"`
	Location *string `json:"Location"`
	Country  *string `json:"Country"`
}

type listingFile struct {
	Items []Listing `json:"Items"`
}

// ParseFile reads one source file of the form {"Items": [...]} and
// validates every listing. The first missing required field fails the
// whole file.
func ParseFile(path string) ([]Listing, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading listing file: %w", err)
	}
	return ParseListings(raw)
}

// ParseListings parses and validates raw {"Items": [...]} JSON.
func ParseListings(raw []byte) ([]Listing, error) {
	var file listingFile
	if err := json.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("error parsing listing file: %w", err)
	}
	for i := range file.Items {
		if err := file.Items[i].validate(); err != nil {
			return nil, err
		}
	}
	return file.Items, nil
}

// validate fails fast on any field the source format guarantees.
// Buy_Price, Country and Description stay optional; a null Bids array
// marks a listing without bids and is valid.
func (l *Listing) validate() error {
	id := ""
	if l.ItemID != nil {
		id = *l.ItemID
	}
	missing := func(field string) error {
		return &MalformedInputError{ItemID: id, Field: field}
	}

	switch {
	case l.ItemID == nil:
		return missing("ItemID")
	case l.Name == nil:
		return missing("Name")
	case l.Category == nil:
		return missing("Category")
	case l.Currently == nil:
		return missing("Currently")
	case l.FirstBid == nil:
		return missing("First_Bid")
	case l.NumberOfBids == nil:
		return missing("Number_of_Bids")
	case l.Location == nil:
		return missing("Location")
	case l.Started == nil:
		return missing("Started")
	case l.Ends == nil:
		return missing("Ends")
	case l.Seller == nil:
		return missing("Seller")
	}
	if l.Seller.UserID == nil {
		return missing("Seller.UserID")
	}
	if l.Seller.Rating == nil {
		return missing("Seller.Rating")
	}

	for _, entry := range l.Bids {
		if entry.Bid == nil {
			return missing("Bids.Bid")
		}
		b := entry.Bid
		switch {
		case b.Bidder == nil:
			return missing("Bids.Bid.Bidder")
		case b.Time == nil:
			return missing("Bids.Bid.Time")
		case b.Amount == nil:
			return missing("Bids.Bid.Amount")
		case b.Bidder.UserID == nil:
			return missing("Bids.Bid.Bidder.UserID")
		case b.Bidder.Rating == nil:
			return missing("Bids.Bid.Bidder.Rating")
		}
	}
	return nil
}
