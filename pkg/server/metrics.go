package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/auctionbase/auctionbase/pkg/bid"
)

var bidsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "auctionbase_bids_total",
	Help: "Processed bid requests by outcome.",
}, []string{"outcome"})

var searchesTotal = promauto.NewCounter(prometheus.CounterOpts{
	Name: "auctionbase_item_searches_total",
	Help: "Item search requests served.",
})

func outcomeLabel(o bid.Outcome) string {
	switch o {
	case bid.Accepted:
		return "accepted"
	case bid.InvalidUser:
		return "invalid_user"
	case bid.NotBiddable:
		return "not_biddable"
	case bid.ClosedTime:
		return "closed_time"
	case bid.PriceReached:
		return "price_reached"
	case bid.NotHigherBid:
		return "not_higher_bid"
	}
	return "unknown"
}
