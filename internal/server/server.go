// Package server exposes the catalog, forecasts and alerts over HTTP.
package server

import (
	"context"
	"errors"
	"log"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"StockSentinel/internal/model"
	"StockSentinel/internal/service"
	"StockSentinel/internal/store"
)

// Server is the HTTP API.
type Server struct {
	app      *fiber.App
	svc      *service.Service
	products store.ProductStore
	sales    store.SalesStore
	forecast store.ForecastStore
	alerts   store.AlertStore
}

// New builds the app and registers every route.
func New(svc *service.Service, products store.ProductStore, sales store.SalesStore, forecasts store.ForecastStore, alerts store.AlertStore) *Server {
	s := &Server{
		app:      fiber.New(fiber.Config{AppName: "StockSentinel", DisableStartupMessage: true}),
		svc:      svc,
		products: products,
		sales:    sales,
		forecast: forecasts,
		alerts:   alerts,
	}
	s.app.Use(recover.New())
	s.app.Use(cors.New())
	s.routes()
	return s
}

func (s *Server) routes() {
	api := s.app.Group("/api")
	api.Get("/health", s.handleHealth)

	api.Get("/products", s.handleListProducts)
	api.Get("/products/:id", s.handleGetProduct)
	api.Post("/products/:id/sale", s.handleRecordSale)
	api.Post("/products/:id/purchase", s.handleRecordPurchase)

	api.Get("/forecast/:id/saved", s.handleSavedForecast)
	api.Get("/forecast/:id", s.handleForecast)
	api.Post("/forecast/:id", s.handleForecast)

	api.Get("/alerts", s.handleListAlerts)
	api.Post("/alerts/analyze", s.handleAnalyze)
	api.Post("/alerts/:id/resolve", s.handleResolveAlert)
}

// App exposes the fiber app, mainly for tests.
func (s *Server) App() *fiber.App { return s.app }

// Listen serves until the context is cancelled.
func (s *Server) Listen(ctx context.Context, addr string) error {
	errCh := make(chan error, 1)
	go func() { errCh <- s.app.Listen(addr) }()
	log.Printf("[INFO] http server listening on %s", addr)

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		log.Println("[INFO] http server shutting down")
		return s.app.ShutdownWithTimeout(10 * time.Second)
	}
}

func errorJSON(c *fiber.Ctx, status int, msg string) error {
	return c.Status(status).JSON(fiber.Map{"status": "error", "message": msg})
}

// storeError maps store sentinels to HTTP statuses.
func storeError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return errorJSON(c, fiber.StatusNotFound, err.Error())
	case errors.Is(err, store.ErrInsufficientStock), errors.Is(err, store.ErrInvalidQuantity):
		return errorJSON(c, fiber.StatusUnprocessableEntity, err.Error())
	default:
		log.Printf("[ERROR] %s %s: %v", c.Method(), c.Path(), err)
		return errorJSON(c, fiber.StatusInternalServerError, "internal error")
	}
}

// errBadID marks an invalid :id parameter.
var errBadID = errors.New("invalid product id")

func productID(c *fiber.Ctx) (int64, error) {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, errBadID
	}
	return id, nil
}

func (s *Server) handleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok", "time": time.Now().UTC().Format(time.RFC3339)})
}

func (s *Server) handleListProducts(c *fiber.Ctx) error {
	products, err := s.products.ListProducts(c.UserContext())
	if err != nil {
		return storeError(c, err)
	}
	if products == nil {
		products = []model.Product{}
	}
	return c.JSON(fiber.Map{"status": "success", "products": products})
}

func (s *Server) handleGetProduct(c *fiber.Ctx) error {
	id, err := productID(c)
	if err != nil {
		return errorJSON(c, fiber.StatusBadRequest, err.Error())
	}
	p, err := s.products.GetProduct(c.UserContext(), id)
	if err != nil {
		return storeError(c, err)
	}
	return c.JSON(fiber.Map{"status": "success", "product": p})
}

func (s *Server) handleRecordSale(c *fiber.Ctx) error {
	id, err := productID(c)
	if err != nil {
		return errorJSON(c, fiber.StatusBadRequest, err.Error())
	}
	var req struct {
		Quantity int    `json:"quantity"`
		Date     string `json:"date"`
	}
	if err := c.BodyParser(&req); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "invalid request body")
	}
	var date time.Time
	if req.Date != "" {
		if date, err = time.Parse(model.DateLayout, req.Date); err != nil {
			return errorJSON(c, fiber.StatusBadRequest, "date must be YYYY-MM-DD")
		}
	}
	sale, err := s.sales.RecordSale(c.UserContext(), id, req.Quantity, date)
	if err != nil {
		return storeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"status":        "success",
		"product_id":    sale.ProductID,
		"date":          sale.Date.Format(model.DateLayout),
		"quantity_sold": sale.QuantitySold,
		"unit_price":    sale.UnitPrice,
		"total_revenue": float64(sale.QuantitySold) * sale.UnitPrice,
	})
}

func (s *Server) handleRecordPurchase(c *fiber.Ctx) error {
	id, err := productID(c)
	if err != nil {
		return errorJSON(c, fiber.StatusBadRequest, err.Error())
	}
	var req struct {
		Quantity int `json:"quantity"`
	}
	if err := c.BodyParser(&req); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "invalid request body")
	}
	p, err := s.products.RecordPurchase(c.UserContext(), id, req.Quantity)
	if err != nil {
		return storeError(c, err)
	}
	return c.JSON(fiber.Map{"status": "success", "product": p})
}

func (s *Server) handleForecast(c *fiber.Ctx) error {
	id, err := productID(c)
	if err != nil {
		return errorJSON(c, fiber.StatusBadRequest, err.Error())
	}
	days := c.QueryInt("days", 0)
	if c.Method() == fiber.MethodPost && len(c.Body()) > 0 {
		var req struct {
			Days int `json:"days"`
		}
		if err := c.BodyParser(&req); err != nil {
			return errorJSON(c, fiber.StatusBadRequest, "invalid request body")
		}
		if req.Days != 0 {
			days = req.Days
		}
	}
	if days < 0 || days > 365 {
		return errorJSON(c, fiber.StatusBadRequest, "days must be between 1 and 365")
	}

	res, err := s.svc.ForecastProduct(c.UserContext(), id, days)
	if err != nil {
		return c.Status(forecastStatus(res.ErrorKind)).JSON(res)
	}
	return c.JSON(res)
}

func forecastStatus(kind service.ErrorKind) int {
	switch {
	case kind == service.KindNotFound:
		return fiber.StatusNotFound
	case kind.IsDataShortfall():
		return fiber.StatusUnprocessableEntity
	default:
		return fiber.StatusInternalServerError
	}
}

func (s *Server) handleSavedForecast(c *fiber.Ctx) error {
	id, err := productID(c)
	if err != nil {
		return errorJSON(c, fiber.StatusBadRequest, err.Error())
	}
	if _, err := s.products.GetProduct(c.UserContext(), id); err != nil {
		return storeError(c, err)
	}
	points, err := s.forecast.GetForecast(c.UserContext(), id)
	if err != nil {
		return storeError(c, err)
	}
	if points == nil {
		points = []model.ForecastPoint{}
	}
	resp := fiber.Map{
		"status":       "success",
		"product_id":   id,
		"forecast":     points,
		"total_demand": model.TotalDemand(points),
	}
	acc, ok, err := s.forecast.ForecastAccuracy(c.UserContext(), id)
	if err != nil {
		return storeError(c, err)
	}
	if ok {
		resp["accuracy"] = acc
	}
	return c.JSON(resp)
}

// alertView adds the recommendation's kind and text to an alert.
type alertView struct {
	model.Alert
	RecommendationKind model.RecommendationKind `json:"recommendation_kind,omitempty"`
	RecommendationText string                   `json:"recommendation,omitempty"`
	RecommendationData model.Recommendation     `json:"recommendation_data,omitempty"`
}

func viewAlerts(alerts []model.Alert) []alertView {
	out := make([]alertView, 0, len(alerts))
	for _, a := range alerts {
		v := alertView{Alert: a}
		if a.Recommendation != nil {
			v.RecommendationKind = a.Recommendation.Kind()
			v.RecommendationText = a.Recommendation.Text()
			v.RecommendationData = a.Recommendation
		}
		out = append(out, v)
	}
	return out
}

func (s *Server) handleListAlerts(c *fiber.Ctx) error {
	alerts, err := s.alerts.ListUnresolvedAlerts(c.UserContext())
	if err != nil {
		return storeError(c, err)
	}
	return c.JSON(fiber.Map{"status": "success", "alerts": viewAlerts(alerts)})
}

func (s *Server) handleAnalyze(c *fiber.Ctx) error {
	alerts, err := s.svc.AnalyzeInventory(c.UserContext())
	if err != nil {
		return storeError(c, err)
	}
	return c.JSON(fiber.Map{"status": "success", "count": len(alerts), "alerts": viewAlerts(alerts)})
}

func (s *Server) handleResolveAlert(c *fiber.Ctx) error {
	if err := s.alerts.ResolveAlert(c.UserContext(), c.Params("id")); err != nil {
		return storeError(c, err)
	}
	return c.JSON(fiber.Map{"status": "success"})
}
