package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"officehub/internal/domain"
)

// PostgresStockRepo 库存 Repository 实现
type PostgresStockRepo struct {
	db *sql.DB
}

func NewPostgresStockRepo(db *sql.DB) *PostgresStockRepo {
	return &PostgresStockRepo{db: db}
}

var _ StockRepository = (*PostgresStockRepo)(nil)

const stockItemColumns = `
	id, name, sku, description, unit, quantity, min_quantity, reorder_point,
	location, category, supplier, unit_cost, last_restock, created_at, updated_at`

func scanStockItem(row interface{ Scan(...any) error }) (*domain.StockItem, error) {
	var item domain.StockItem
	err := row.Scan(
		&item.ID, &item.Name, &item.SKU, &item.Description, &item.Unit,
		&item.Quantity, &item.MinQuantity, &item.ReorderPoint,
		&item.Location, &item.Category, &item.Supplier, &item.UnitCost,
		&item.LastRestock, &item.CreatedAt, &item.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *PostgresStockRepo) GetItem(ctx context.Context, id int64) (*domain.StockItem, error) {
	query := `SELECT` + stockItemColumns + ` FROM stock_items WHERE id = $1`
	item, err := scanStockItem(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("%w: stock item %d", domain.ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to get stock item: %w", err)
	}
	return item, nil
}

func (r *PostgresStockRepo) ListItems(ctx context.Context, filter StockFilter) ([]*domain.StockItem, error) {
	where := []string{"1=1"}
	args := []any{}
	argIdx := 1

	if filter.Location != "" {
		where = append(where, fmt.Sprintf("location = $%d", argIdx))
		args = append(args, filter.Location)
		argIdx++
	}
	if filter.Category != "" {
		where = append(where, fmt.Sprintf("category = $%d", argIdx))
		args = append(args, filter.Category)
		argIdx++
	}
	if filter.Search != "" {
		where = append(where, fmt.Sprintf("name ILIKE $%d", argIdx))
		args = append(args, "%"+filter.Search+"%")
		argIdx++
	}

	query := `SELECT` + stockItemColumns + ` FROM stock_items WHERE ` +
		strings.Join(where, " AND ") + ` ORDER BY name`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list stock items: %w", err)
	}
	defer rows.Close()

	var items []*domain.StockItem
	for rows.Next() {
		item, err := scanStockItem(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan stock item: %w", err)
		}
		// Status 是派生属性，在应用层过滤
		if filter.Status != "" && item.Status() != filter.Status {
			continue
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (r *PostgresStockRepo) CreateItem(ctx context.Context, item *domain.StockItem) (*domain.StockItem, error) {
	query := `
		INSERT INTO stock_items
			(name, sku, description, unit, quantity, min_quantity, reorder_point,
			 location, category, supplier, unit_cost)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id, created_at, updated_at
	`
	err := r.db.QueryRowContext(ctx, query,
		item.Name, item.SKU, item.Description, item.Unit, item.Quantity,
		item.MinQuantity, item.ReorderPoint, item.Location, item.Category,
		item.Supplier, item.UnitCost,
	).Scan(&item.ID, &item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create stock item: %w", err)
	}
	return item, nil
}

func (r *PostgresStockRepo) UpdateItem(ctx context.Context, item *domain.StockItem) error {
	query := `
		UPDATE stock_items SET
			name = $1, sku = $2, description = $3, unit = $4, quantity = $5,
			min_quantity = $6, reorder_point = $7, location = $8, category = $9,
			supplier = $10, unit_cost = $11, updated_at = NOW()
		WHERE id = $12
	`
	res, err := r.db.ExecContext(ctx, query,
		item.Name, item.SKU, item.Description, item.Unit, item.Quantity,
		item.MinQuantity, item.ReorderPoint, item.Location, item.Category,
		item.Supplier, item.UnitCost, item.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update stock item: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: stock item %d", domain.ErrNotFound, item.ID)
	}
	return nil
}

func (r *PostgresStockRepo) DeleteItem(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM stock_items WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete stock item: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: stock item %d", domain.ErrNotFound, id)
	}
	return nil
}

// AddStock 数量变更 + 审计流水在同一个事务里提交。
func (r *PostgresStockRepo) AddStock(ctx context.Context, itemID int64, delta float64, reference, notes string) (*domain.StockItem, error) {
	if delta <= 0 {
		return nil, fmt.Errorf("%w: quantity must be positive", domain.ErrValidation)
	}
	return r.adjustStock(ctx, itemID, delta, domain.TransactionIn, reference, notes)
}

// ConsumeStock 同上；库存不足时整个事务回滚，不留部分变更。
func (r *PostgresStockRepo) ConsumeStock(ctx context.Context, itemID int64, delta float64, reference, notes string) (*domain.StockItem, error) {
	if delta <= 0 {
		return nil, fmt.Errorf("%w: quantity must be positive", domain.ErrValidation)
	}
	return r.adjustStock(ctx, itemID, -delta, domain.TransactionOut, reference, notes)
}

func (r *PostgresStockRepo) adjustStock(ctx context.Context, itemID int64, delta float64, txType domain.TransactionType, reference, notes string) (*domain.StockItem, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	// FOR UPDATE 锁行：并发出库不会把数量扣成负数
	query := `SELECT` + stockItemColumns + ` FROM stock_items WHERE id = $1 FOR UPDATE`
	item, err := scanStockItem(tx.QueryRowContext(ctx, query, itemID))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("%w: stock item %d", domain.ErrNotFound, itemID)
		}
		return nil, fmt.Errorf("failed to lock stock item: %w", err)
	}

	if txType == domain.TransactionOut && item.Quantity+delta < 0 {
		return nil, fmt.Errorf("%w: insufficient stock (have %.2f, need %.2f)",
			domain.ErrConflict, item.Quantity, -delta)
	}

	item.Quantity += delta
	if txType == domain.TransactionIn {
		_, err = tx.ExecContext(ctx,
			`UPDATE stock_items SET quantity = $1, last_restock = NOW(), updated_at = NOW() WHERE id = $2`,
			item.Quantity, itemID)
	} else {
		_, err = tx.ExecContext(ctx,
			`UPDATE stock_items SET quantity = $1, updated_at = NOW() WHERE id = $2`,
			item.Quantity, itemID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update stock quantity: %w", err)
	}

	auditQty := delta
	if auditQty < 0 {
		auditQty = -auditQty
	}
	_, err = tx.ExecContext(ctx,
		`INSERT INTO stock_transactions (item_id, type, quantity, reference, notes)
		 VALUES ($1, $2, $3, $4, $5)`,
		itemID, string(txType), auditQty, reference, notes)
	if err != nil {
		return nil, fmt.Errorf("failed to insert stock transaction: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit stock adjustment: %w", err)
	}
	return item, nil
}

func (r *PostgresStockRepo) SumConsumedSince(ctx context.Context, itemID int64, since time.Time) (float64, error) {
	var total float64
	err := r.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(quantity), 0) FROM stock_transactions
		 WHERE item_id = $1 AND type = 'out' AND created_at >= $2`,
		itemID, since,
	).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("failed to sum consumption: %w", err)
	}
	return total, nil
}

func (r *PostgresStockRepo) CountTransactionsSince(ctx context.Context, itemID int64, since time.Time) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM stock_transactions WHERE item_id = $1 AND created_at >= $2`,
		itemID, since,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count transactions: %w", err)
	}
	return count, nil
}

func (r *PostgresStockRepo) ListTransactions(ctx context.Context, filter TransactionFilter) ([]*domain.StockTransaction, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}

	where := []string{"1=1"}
	args := []any{}
	argIdx := 1
	if filter.ItemID > 0 {
		where = append(where, fmt.Sprintf("item_id = $%d", argIdx))
		args = append(args, filter.ItemID)
		argIdx++
	}
	args = append(args, limit)

	query := fmt.Sprintf(`
		SELECT id, item_id, user_id, type, quantity, reference, notes, created_at
		FROM stock_transactions
		WHERE %s
		ORDER BY created_at DESC, id DESC
		LIMIT $%d
	`, strings.Join(where, " AND "), argIdx)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list stock transactions: %w", err)
	}
	defer rows.Close()

	var txs []*domain.StockTransaction
	for rows.Next() {
		var t domain.StockTransaction
		var txType string
		if err := rows.Scan(&t.ID, &t.ItemID, &t.UserID, &txType, &t.Quantity,
			&t.Reference, &t.Notes, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan stock transaction: %w", err)
		}
		t.Type = domain.TransactionType(txType)
		txs = append(txs, &t)
	}
	return txs, rows.Err()
}
