package server_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"testing"

	"github.com/go-logr/logr"
	"github.com/stretchr/testify/suite"

	"github.com/auctionbase/auctionbase/pkg/db/dbtest"
	"github.com/auctionbase/auctionbase/pkg/ingest"
	"github.com/auctionbase/auctionbase/pkg/query"
	"github.com/auctionbase/auctionbase/pkg/server"
)

const webFixture = `{"Items": [
  {
    "ItemID": "700",
    "Name": "Brass Compass",
    "Category": ["Antiques"],
    "Currently": "$10.00",
    "First_Bid": "$1.00",
    "Number_of_Bids": "0",
    "Location": "Lisbon",
    "Country": "Portugal",
    "Started": "Dec-01-01 00:00:00",
    "Ends": "Dec-24-01 00:00:00",
    "Seller": {"UserID": "navigator", "Rating": "88"},
    "Description": "Points north",
    "Bids": null
  }
]}`

type ServerSuite struct {
	dbtest.Suite

	srv *server.Server
}

func (s *ServerSuite) SetupSuite() {
	s.Suite.SetupSuite()

	listings, err := ingest.ParseListings([]byte(webFixture))
	s.Require().NoError(err)

	c := ingest.NewContext()
	for _, l := range listings {
		s.Require().NoError(c.Flatten(l))
	}
	s.Require().NoError(c.Load(context.Background(), s.DB()))
	s.Require().NoError(query.SetTime(context.Background(), s.DB(), "2001-12-20 00:00:01"))

	s.srv = server.New(s.DB(), logr.Discard())
}

func (s *ServerSuite) request(method, target string, form url.Values) (int, map[string]json.RawMessage) {
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}
	req, err := http.NewRequest(method, target, body)
	s.Require().NoError(err)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	resp, err := s.srv.App().Test(req)
	s.Require().NoError(err)
	defer resp.Body.Close()

	payload := map[string]json.RawMessage{}
	s.Require().NoError(json.NewDecoder(resp.Body).Decode(&payload))
	return resp.StatusCode, payload
}

func (s *ServerSuite) stringField(payload map[string]json.RawMessage, key string) string {
	var v string
	s.Require().NoError(json.Unmarshal(payload[key], &v))
	return v
}

func (s *ServerSuite) TestCurrentTimeRoundTrip() {
	status, payload := s.request(http.MethodGet, "/currtime", nil)
	s.Equal(http.StatusOK, status)
	s.Equal("2001-12-20 00:00:01", s.stringField(payload, "time"))

	status, _ = s.request(http.MethodPost, "/selecttime", url.Values{"time": {"2001-12-21 10:00:00"}})
	s.Equal(http.StatusOK, status)

	status, payload = s.request(http.MethodGet, "/currtime", nil)
	s.Equal(http.StatusOK, status)
	s.Equal("2001-12-21 10:00:00", s.stringField(payload, "time"))

	status, payload = s.request(http.MethodPost, "/selecttime", url.Values{"time": {"tomorrow"}})
	s.Equal(http.StatusBadRequest, status)
	s.Equal("Invalid input", s.stringField(payload, "message"))

	_, _ = s.request(http.MethodPost, "/selecttime", url.Values{"time": {"2001-12-20 00:00:01"}})
}

func (s *ServerSuite) TestAddBid() {
	status, payload := s.request(http.MethodPost, "/addbid", url.Values{
		"itemID": {"700"}, "userID": {"navigator"}, "price": {"12.00"},
	})
	s.Equal(http.StatusOK, status)
	s.Equal("No biddable item", s.stringField(payload, "message"))

	status, payload = s.request(http.MethodPost, "/addbid", url.Values{
		"itemID": {"700"}, "userID": {"nobody"}, "price": {"12.00"},
	})
	s.Equal(http.StatusOK, status)
	s.Equal("Invalid user id", s.stringField(payload, "message"))
}

func (s *ServerSuite) TestSearch() {
	status, payload := s.request(http.MethodGet, "/search?itemDescription=north", nil)
	s.Equal(http.StatusOK, status)
	s.NotContains(payload, "message")

	status, payload = s.request(http.MethodGet, "/search?itemDescription=south", nil)
	s.Equal(http.StatusOK, status)
	s.Equal("No result is found!", s.stringField(payload, "message"))

	status, payload = s.request(http.MethodGet, "/search?minPrice=10&maxPrice=5", nil)
	s.Equal(http.StatusOK, status)
	s.Equal("Max price can not be smaller than min price!", s.stringField(payload, "message"))
}

func (s *ServerSuite) TestItemPage() {
	status, payload := s.request(http.MethodGet, "/item/700", nil)
	s.Equal(http.StatusOK, status)
	s.Equal("Brass Compass", s.stringField(payload, "Name"))

	status, _ = s.request(http.MethodGet, "/item/404", nil)
	s.Equal(http.StatusNotFound, status)
}

func TestServer(t *testing.T) {
	suite.Run(t, new(ServerSuite))
}
