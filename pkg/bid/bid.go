// Package bid validates and commits bids against the auction tables
// under the application's travelling current time.
package bid

import (
	"strconv"
)

// Outcome is the closed result taxonomy of placing a bid. Rejections
// are data, not errors; only persistence failures surface as errors.
type Outcome int

const (
	// Unknown is the zero value and never a valid result; error paths
	// return it so a mishandled error cannot read as success.
	Unknown Outcome = iota
	// Accepted means the bid was committed.
	Accepted
	// InvalidUser rejects a bidder id not present in the users table.
	InvalidUser
	// NotBiddable rejects an unknown item or a seller bidding on
	// their own item; the two collapse into one category on purpose.
	NotBiddable
	// ClosedTime rejects a bid outside the started/ends window.
	ClosedTime
	// PriceReached rejects a bid on an item whose buy-now price has
	// been reached.
	PriceReached
	// NotHigherBid rejects a price not strictly greater than the
	// item's current price.
	NotHigherBid
)

// Message returns the user-facing text for the outcome.
func (o Outcome) Message() string {
	switch o {
	case Accepted:
		return "Success"
	case InvalidUser:
		return "Invalid user id"
	case NotBiddable:
		return "No biddable item"
	case ClosedTime:
		return "Bid closed due to time"
	case PriceReached:
		return "Bid closed since price reached"
	case NotHigherBid:
		return "Not higher bid"
	}
	return "Unknown outcome"
}

func (o Outcome) String() string {
	return o.Message()
}

// itemSnapshot is the item state the rule chain evaluates against,
// read inside the same transaction that commits the bid.
type itemSnapshot struct {
	Found        bool
	SellerUserId string
	Started      string
	Ends         string
	Currently    string
	BuyPrice     string
	HasBuyPrice  bool
}

// evaluate runs the ordered rule chain. The first failing check
// determines the rejection; the order is part of the contract since
// the messages are user-facing.
func evaluate(bidderExists bool, item itemSnapshot, bidderId, price, now string) Outcome {
	if !bidderExists {
		return InvalidUser
	}
	if !item.Found || item.SellerUserId == bidderId {
		return NotBiddable
	}
	// Canonical timestamps compare chronologically as strings.
	if now < item.Started || now > item.Ends {
		return ClosedTime
	}
	if item.HasBuyPrice && toNumber(item.Currently) >= toNumber(item.BuyPrice) {
		return PriceReached
	}
	if toNumber(price) <= toNumber(item.Currently) {
		return NotHigherBid
	}
	return Accepted
}

// toNumber parses a canonical money string. Malformed input compares
// as zero, mirroring the permissive posture of the normalizer.
func toNumber(s string) float64 {
	f, _ := strconv.ParseFloat(s, 64)
	return f
}
