// Package server is the web boundary of the auction application. It
// never bypasses the bid rule chain; every write goes through pkg/bid.
package server

import (
	"errors"
	"strconv"

	"github.com/go-logr/logr"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/auctionbase/auctionbase/pkg/bid"
	"github.com/auctionbase/auctionbase/pkg/query"
)

type Server struct {
	db  *sqlx.DB
	log logr.Logger
	app *fiber.App
}

func New(db *sqlx.DB, log logr.Logger) *Server {
	s := &Server{db: db, log: log}

	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	app.Use(recover.New())
	app.Use(s.logRequest)

	app.Get("/currtime", s.currentTime)
	app.Post("/selecttime", s.selectTime)
	app.Post("/addbid", s.addBid)
	app.Get("/search", s.search)
	app.Post("/search", s.search)
	app.Get("/item/:id", s.item)
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	s.app = app
	return s
}

// App exposes the fiber app, mainly for tests.
func (s *Server) App() *fiber.App {
	return s.app
}

func (s *Server) Listen(addr string) error {
	return s.app.Listen(addr)
}

func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

func (s *Server) logRequest(c *fiber.Ctx) error {
	err := c.Next()
	s.log.V(1).Info("Request", "method", c.Method(), "path", c.Path(), "status", c.Response().StatusCode())
	return err
}

func (s *Server) currentTime(c *fiber.Ctx) error {
	now, err := query.GetTime(c.Context(), s.db)
	if err != nil {
		return s.internalError(c, err)
	}
	return c.JSON(fiber.Map{"time": now})
}

type selectTimeRequest struct {
	Time string `json:"time" form:"time"`
}

func (s *Server) selectTime(c *fiber.Ctx) error {
	req := selectTimeRequest{}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid input"})
	}
	if err := query.SetTime(c.Context(), s.db, req.Time); err != nil {
		s.log.V(1).Info("Rejected time selection", "time", req.Time, "reason", err.Error())
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid input"})
	}
	return c.JSON(fiber.Map{"message": "Time selected", "time": req.Time})
}

type addBidRequest struct {
	ItemID string `json:"itemID" form:"itemID"`
	UserID string `json:"userID" form:"userID"`
	Price  string `json:"price" form:"price"`
}

func (s *Server) addBid(c *fiber.Ctx) error {
	req := addBidRequest{}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid input"})
	}

	outcome, err := bid.Place(c.Context(), s.db, bid.Request{
		ItemID:   req.ItemID,
		BidderID: req.UserID,
		Price:    req.Price,
	})
	if err != nil {
		// Persistence failure: surface the message verbatim, no retry.
		s.log.Error(err, "Bid commit failed", "item", req.ItemID, "user", req.UserID)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
	}

	bidsTotal.WithLabelValues(outcomeLabel(outcome)).Inc()
	s.log.V(1).Info("Processed bid", "item", req.ItemID, "user", req.UserID, "outcome", outcome.Message())
	return c.JSON(fiber.Map{
		"message":  outcome.Message(),
		"accepted": outcome == bid.Accepted,
	})
}

func (s *Server) search(c *fiber.Ctx) error {
	param := func(name string) string {
		if c.Method() == fiber.MethodPost {
			return c.FormValue(name)
		}
		return c.Query(name)
	}

	filter := query.Filter{
		ItemID:      param("itemID"),
		Category:    param("itemCategory"),
		Description: param("itemDescription"),
		SellerID:    param("userID"),
		MinPrice:    param("minPrice"),
		MaxPrice:    param("maxPrice"),
		Status:      param("status"),
	}

	if filter.MinPrice != "" && filter.MaxPrice != "" {
		min, errMin := strconv.ParseFloat(filter.MinPrice, 64)
		max, errMax := strconv.ParseFloat(filter.MaxPrice, 64)
		if errMin == nil && errMax == nil && min > max {
			return c.JSON(fiber.Map{"message": "Max price can not be smaller than min price!"})
		}
	}

	items, err := query.SearchItems(c.Context(), s.db, filter)
	if err != nil {
		return s.internalError(c, err)
	}
	searchesTotal.Inc()

	if len(items) == 0 {
		return c.JSON(fiber.Map{"message": "No result is found!", "items": items})
	}
	return c.JSON(fiber.Map{"items": items})
}

func (s *Server) item(c *fiber.Ctx) error {
	detail, err := query.GetItemDetail(c.Context(), s.db, c.Params("id"))
	if errors.Is(err, query.ErrItemNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "No result is found!"})
	}
	if err != nil {
		return s.internalError(c, err)
	}
	return c.JSON(detail)
}

func (s *Server) internalError(c *fiber.Ctx, err error) error {
	s.log.Error(err, "Request failed", "path", c.Path())
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
}
