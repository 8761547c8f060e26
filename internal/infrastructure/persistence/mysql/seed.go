package mysql

import (
	"context"
	"fmt"

	"points-server/internal/infrastructure/seed"
)

// ApplySeed 初期データを投入する（既存の行は上書きしない）
func ApplySeed(ctx context.Context, db *DB, s *seed.Seed) error {
	tm := NewTransactionManager(db)
	return tm.WithTransaction(ctx, func(ctx context.Context) error {
		conn := db.conn(ctx)
		for _, id := range s.Shops {
			if _, err := conn.ExecContext(ctx, `INSERT IGNORE INTO shops (shop_id) VALUES (?)`, id); err != nil {
				return fmt.Errorf("failed to seed shop %s: %w", id, err)
			}
		}
		for _, id := range s.Clients {
			if _, err := conn.ExecContext(ctx, `INSERT IGNORE INTO clients (client_id) VALUES (?)`, id); err != nil {
				return fmt.Errorf("failed to seed client %s: %w", id, err)
			}
		}
		for _, p := range s.Products {
			if _, err := conn.ExecContext(ctx,
				`INSERT IGNORE INTO products (product_id, shop_id, points) VALUES (?, ?, ?)`,
				p.ID, p.ShopID, p.Points,
			); err != nil {
				return fmt.Errorf("failed to seed product %s: %w", p.ID, err)
			}
		}
		for _, p := range s.Prizes {
			if _, err := conn.ExecContext(ctx,
				`INSERT IGNORE INTO prizes (prize_id, shop_id, points) VALUES (?, ?, ?)`,
				p.ID, p.ShopID, p.Points,
			); err != nil {
				return fmt.Errorf("failed to seed prize %s: %w", p.ID, err)
			}
		}
		return nil
	})
}
