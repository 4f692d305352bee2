package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"StockSentinel/internal/model"
)

// SQLiteStore persists everything to a single SQLite database.
type SQLiteStore struct {
	db   *sql.DB
	mu   sync.Mutex // serializes writes
	opts options
}

// NewSQLiteStore opens (or creates) the SQLite database and runs migrations.
func NewSQLiteStore(dbPath string, opts ...Option) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath+"?_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL lets the API read while the scheduler writes.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	s := &SQLiteStore{db: db, opts: buildOptions(opts)}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Printf("[INFO] sqlite store opened: %s", dbPath)
	return s, nil
}

func (s *SQLiteStore) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS products (
			product_id       INTEGER PRIMARY KEY AUTOINCREMENT,
			product_name     TEXT NOT NULL,
			brand            TEXT NOT NULL DEFAULT '',
			category         TEXT NOT NULL DEFAULT '',
			current_quantity INTEGER NOT NULL DEFAULT 0,
			reorder_level    INTEGER NOT NULL,
			max_stock_level  INTEGER NOT NULL,
			purchase_price   REAL NOT NULL DEFAULT 0,
			selling_price    REAL NOT NULL DEFAULT 0,
			created_at       INTEGER NOT NULL,
			UNIQUE (product_name, brand)
		)`,

		`CREATE TABLE IF NOT EXISTS sales (
			sale_id       INTEGER PRIMARY KEY AUTOINCREMENT,
			product_id    INTEGER NOT NULL REFERENCES products(product_id),
			sale_date     TEXT NOT NULL,
			quantity_sold INTEGER NOT NULL,
			unit_price    REAL NOT NULL,
			total_revenue REAL NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_sales_product_date ON sales(product_id, sale_date)`,

		`CREATE TABLE IF NOT EXISTS purchases (
			purchase_id   INTEGER PRIMARY KEY AUTOINCREMENT,
			product_id    INTEGER NOT NULL REFERENCES products(product_id),
			quantity      INTEGER NOT NULL,
			purchased_at  INTEGER NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS forecasts (
			forecast_id      INTEGER PRIMARY KEY AUTOINCREMENT,
			product_id       INTEGER NOT NULL REFERENCES products(product_id),
			forecast_date    TEXT NOT NULL,
			predicted_demand REAL NOT NULL,
			lower_bound      REAL NOT NULL,
			upper_bound      REAL NOT NULL,
			accuracy         REAL NOT NULL,
			created_at       INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_forecasts_product ON forecasts(product_id, forecast_date)`,

		`CREATE TABLE IF NOT EXISTS alerts (
			alert_id        TEXT PRIMARY KEY,
			product_id      INTEGER NOT NULL,
			product_name    TEXT NOT NULL,
			alert_type      TEXT NOT NULL,
			severity        TEXT NOT NULL,
			message         TEXT NOT NULL,
			recommendation  TEXT,
			action_required INTEGER NOT NULL,
			current_stock   INTEGER NOT NULL,
			reorder_level   INTEGER NOT NULL,
			max_stock_level INTEGER NOT NULL,
			forecast_demand REAL,
			resolved        INTEGER NOT NULL DEFAULT 0,
			created_at      INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_alerts_resolved ON alerts(resolved, created_at)`,
	}

	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("exec %q: %w", stmt[:40], err)
		}
	}
	return nil
}

const productColumns = `product_id, product_name, brand, category, current_quantity,
	reorder_level, max_stock_level, purchase_price, selling_price`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(r rowScanner) (model.Product, error) {
	var p model.Product
	err := r.Scan(&p.ID, &p.Name, &p.Brand, &p.Category, &p.CurrentQuantity,
		&p.ReorderLevel, &p.MaxStockLevel, &p.PurchasePrice, &p.SellingPrice)
	return p, err
}

func (s *SQLiteStore) ListProducts(ctx context.Context) ([]model.Product, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+productColumns+` FROM products ORDER BY category, product_name`)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	var out []model.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) GetProduct(ctx context.Context, id int64) (model.Product, error) {
	return s.getProduct(ctx, s.db, id)
}

type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *SQLiteStore) getProduct(ctx context.Context, q querier, id int64) (model.Product, error) {
	p, err := scanProduct(q.QueryRowContext(ctx, `SELECT `+productColumns+` FROM products WHERE product_id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return model.Product{}, fmt.Errorf("product %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return model.Product{}, fmt.Errorf("get product %d: %w", id, err)
	}
	return p, nil
}

func (s *SQLiteStore) AddProduct(ctx context.Context, p model.Product) (model.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return model.Product{}, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	var id int64
	err = tx.QueryRowContext(ctx, `SELECT product_id FROM products WHERE product_name = ? AND brand = ?`, p.Name, p.Brand).Scan(&id)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		p = withDefaults(p)
		res, err := tx.ExecContext(ctx, `INSERT INTO products
			(product_name, brand, category, current_quantity, reorder_level, max_stock_level,
			 purchase_price, selling_price, created_at)
			VALUES (?,?,?,?,?,?,?,?,?)`,
			p.Name, p.Brand, p.Category, p.CurrentQuantity, p.ReorderLevel, p.MaxStockLevel,
			p.PurchasePrice, p.SellingPrice, s.opts.now().Unix(),
		)
		if err != nil {
			return model.Product{}, fmt.Errorf("insert product: %w", err)
		}
		if id, err = res.LastInsertId(); err != nil {
			return model.Product{}, fmt.Errorf("insert product id: %w", err)
		}
	case err != nil:
		return model.Product{}, fmt.Errorf("lookup product: %w", err)
	default:
		if _, err := tx.ExecContext(ctx, `UPDATE products
			SET current_quantity = current_quantity + ?, purchase_price = ?, selling_price = ?
			WHERE product_id = ?`,
			p.CurrentQuantity, p.PurchasePrice, p.SellingPrice, id,
		); err != nil {
			return model.Product{}, fmt.Errorf("update product %d: %w", id, err)
		}
	}

	out, err := s.getProduct(ctx, tx, id)
	if err != nil {
		return model.Product{}, err
	}
	return out, tx.Commit()
}

func (s *SQLiteStore) RecordPurchase(ctx context.Context, id int64, quantity int) (model.Product, error) {
	if quantity <= 0 {
		return model.Product{}, ErrInvalidQuantity
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return model.Product{}, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `UPDATE products SET current_quantity = current_quantity + ? WHERE product_id = ?`, quantity, id)
	if err != nil {
		return model.Product{}, fmt.Errorf("update stock: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return model.Product{}, fmt.Errorf("product %d: %w", id, ErrNotFound)
	}
	if _, err := tx.ExecContext(ctx, `INSERT INTO purchases (product_id, quantity, purchased_at) VALUES (?,?,?)`,
		id, quantity, s.opts.now().Unix()); err != nil {
		return model.Product{}, fmt.Errorf("insert purchase: %w", err)
	}

	p, err := s.getProduct(ctx, tx, id)
	if err != nil {
		return model.Product{}, err
	}
	return p, tx.Commit()
}

func (s *SQLiteStore) GetSales(ctx context.Context, productID int64, windowDays int) ([]model.SaleEvent, error) {
	cutoff := windowStart(s.opts.now(), windowDays).Format(model.DateLayout)
	rows, err := s.db.QueryContext(ctx, `SELECT sale_date, quantity_sold, unit_price FROM sales
		WHERE product_id = ? AND sale_date >= ?
		ORDER BY sale_date, sale_id`, productID, cutoff)
	if err != nil {
		return nil, fmt.Errorf("get sales: %w", err)
	}
	defer rows.Close()

	var out []model.SaleEvent
	for rows.Next() {
		var date string
		e := model.SaleEvent{ProductID: productID}
		if err := rows.Scan(&date, &e.QuantitySold, &e.UnitPrice); err != nil {
			return nil, fmt.Errorf("scan sale: %w", err)
		}
		if e.Date, err = time.Parse(model.DateLayout, date); err != nil {
			return nil, fmt.Errorf("parse sale date %q: %w", date, err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) RecordSale(ctx context.Context, productID int64, quantity int, date time.Time) (model.SaleEvent, error) {
	if quantity <= 0 {
		return model.SaleEvent{}, ErrInvalidQuantity
	}
	if date.IsZero() {
		date = s.opts.now()
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return model.SaleEvent{}, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	p, err := s.getProduct(ctx, tx, productID)
	if err != nil {
		return model.SaleEvent{}, err
	}
	if p.CurrentQuantity < quantity {
		return model.SaleEvent{}, fmt.Errorf("product %d has %d, sale of %d: %w", productID, p.CurrentQuantity, quantity, ErrInsufficientStock)
	}

	e := model.SaleEvent{ProductID: productID, Date: model.Day(date), QuantitySold: quantity, UnitPrice: p.SellingPrice}
	if _, err := tx.ExecContext(ctx, `INSERT INTO sales (product_id, sale_date, quantity_sold, unit_price, total_revenue)
		VALUES (?,?,?,?,?)`,
		productID, e.Date.Format(model.DateLayout), quantity, p.SellingPrice, float64(quantity)*p.SellingPrice,
	); err != nil {
		return model.SaleEvent{}, fmt.Errorf("insert sale: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `UPDATE products SET current_quantity = current_quantity - ? WHERE product_id = ?`,
		quantity, productID); err != nil {
		return model.SaleEvent{}, fmt.Errorf("update stock: %w", err)
	}
	return e, tx.Commit()
}

func (s *SQLiteStore) SaveForecast(ctx context.Context, productID int64, points []model.ForecastPoint, accuracy float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM forecasts WHERE product_id = ?`, productID); err != nil {
		return fmt.Errorf("delete forecasts: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO forecasts
		(product_id, forecast_date, predicted_demand, lower_bound, upper_bound, accuracy, created_at)
		VALUES (?,?,?,?,?,?,?)`)
	if err != nil {
		return fmt.Errorf("prepare forecast insert: %w", err)
	}
	defer stmt.Close()

	now := s.opts.now().Unix()
	for _, p := range points {
		if _, err := stmt.ExecContext(ctx, productID, p.Date.Format(model.DateLayout),
			p.PredictedDemand, p.LowerBound, p.UpperBound, accuracy, now); err != nil {
			return fmt.Errorf("insert forecast: %w", err)
		}
	}
	return tx.Commit()
}

func (s *SQLiteStore) GetForecast(ctx context.Context, productID int64) ([]model.ForecastPoint, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT forecast_date, predicted_demand, lower_bound, upper_bound
		FROM forecasts WHERE product_id = ? ORDER BY forecast_date`, productID)
	if err != nil {
		return nil, fmt.Errorf("get forecast: %w", err)
	}
	defer rows.Close()

	var out []model.ForecastPoint
	for rows.Next() {
		var date string
		var p model.ForecastPoint
		if err := rows.Scan(&date, &p.PredictedDemand, &p.LowerBound, &p.UpperBound); err != nil {
			return nil, fmt.Errorf("scan forecast: %w", err)
		}
		if p.Date, err = time.Parse(model.DateLayout, date); err != nil {
			return nil, fmt.Errorf("parse forecast date %q: %w", date, err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// ForecastAccuracy reads the accuracy stored on the product's forecast rows.
func (s *SQLiteStore) ForecastAccuracy(ctx context.Context, productID int64) (float64, bool, error) {
	var acc float64
	err := s.db.QueryRowContext(ctx, `SELECT accuracy FROM forecasts WHERE product_id = ? LIMIT 1`, productID).Scan(&acc)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return 0, false, nil
	case err != nil:
		return 0, false, fmt.Errorf("get forecast accuracy: %w", err)
	}
	return acc, true, nil
}

func (s *SQLiteStore) CreateAlert(ctx context.Context, a *model.Alert) error {
	rec, err := model.EncodeRecommendation(a.Recommendation)
	if err != nil {
		return err
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = s.opts.now().UTC()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err = s.db.ExecContext(ctx, `INSERT INTO alerts
		(alert_id, product_id, product_name, alert_type, severity, message, recommendation,
		 action_required, current_stock, reorder_level, max_stock_level, forecast_demand,
		 resolved, created_at)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		a.ID, a.ProductID, a.ProductName, string(a.Type), string(a.Severity), a.Message, string(rec),
		a.ActionRequired, a.CurrentStock, a.ReorderLevel, a.MaxStockLevel, a.ForecastDemand,
		a.Resolved, a.CreatedAt.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("insert alert: %w", err)
	}
	return nil
}

func (s *SQLiteStore) ListUnresolvedAlerts(ctx context.Context) ([]model.Alert, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT alert_id, product_id, product_name, alert_type, severity,
		message, recommendation, action_required, current_stock, reorder_level, max_stock_level,
		forecast_demand, resolved, created_at
		FROM alerts WHERE resolved = 0
		ORDER BY CASE severity WHEN 'critical' THEN 1 WHEN 'warning' THEN 2 ELSE 3 END, created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list alerts: %w", err)
	}
	defer rows.Close()

	var out []model.Alert
	for rows.Next() {
		var (
			a        model.Alert
			typ, sev string
			rec      sql.NullString
			forecast sql.NullFloat64
			created  int64
		)
		if err := rows.Scan(&a.ID, &a.ProductID, &a.ProductName, &typ, &sev, &a.Message, &rec,
			&a.ActionRequired, &a.CurrentStock, &a.ReorderLevel, &a.MaxStockLevel,
			&forecast, &a.Resolved, &created); err != nil {
			return nil, fmt.Errorf("scan alert: %w", err)
		}
		a.Type, a.Severity = model.AlertType(typ), model.Severity(sev)
		a.CreatedAt = time.Unix(0, created).UTC()
		if forecast.Valid {
			v := forecast.Float64
			a.ForecastDemand = &v
		}
		if rec.Valid {
			if a.Recommendation, err = model.DecodeRecommendation([]byte(rec.String)); err != nil {
				log.Printf("[WARN] alert %s: %v", a.ID, err)
			}
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) ResolveAlert(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `UPDATE alerts SET resolved = 1 WHERE alert_id = ?`, id)
	if err != nil {
		return fmt.Errorf("resolve alert: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("alert %s: %w", id, ErrNotFound)
	}
	return nil
}

func (s *SQLiteStore) ClearUnresolvedAlerts(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `DELETE FROM alerts WHERE resolved = 0`)
	if err != nil {
		return 0, fmt.Errorf("clear alerts: %w", err)
	}
	n, _ := res.RowsAffected()
	return int(n), nil
}

func (s *SQLiteStore) Close() error {
	log.Println("[INFO] closing sqlite store")
	return s.db.Close()
}
