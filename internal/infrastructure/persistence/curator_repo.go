package persistence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"fx_desk/internal/domain"
	"fx_desk/internal/domain/entity"
	"fx_desk/pkg/errcodes"
)

const curatorColumns = `
	id, name, telegram_username, phone, notes,
	eur_balance, avg_eur_cost, total_eur_purchased, total_usdt_spent, profit_usdt,
	active, created_at, updated_at`

type CuratorRepository struct {
	db *sqlx.DB
}

// NewCuratorRepository создаёт новый экземпляр репозитория.
func NewCuratorRepository(db *sqlx.DB) *CuratorRepository {
	return &CuratorRepository{db: db}
}

// withTx выполняет функцию в транзакции.
func (r *CuratorRepository) withTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return domain.WrapError(err, errcodes.InternalServerError, "failed to begin transaction")
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return domain.WrapError(
				fmt.Errorf("%w; rollback: %v", err, rbErr),
				errcodes.InternalServerError,
				"transaction failed",
			)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return domain.WrapError(err, errcodes.InternalServerError, "failed to commit")
	}

	return nil
}

// Create сохраняет нового куратора и заполняет ID и таймстемпы.
func (r *CuratorRepository) Create(ctx context.Context, curator *entity.Curator) error {
	query := `
		INSERT INTO curators (name, telegram_username, phone, notes, active)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at`

	err := r.db.QueryRowxContext(ctx, query,
		curator.Name, curator.TelegramUsername, curator.Phone, curator.Notes, curator.Active,
	).Scan(&curator.ID, &curator.CreatedAt, &curator.UpdatedAt)
	if err != nil {
		return domain.WrapError(err, errcodes.InternalServerError, "failed to insert curator")
	}

	return nil
}

// GetByID возвращает куратора по идентификатору.
func (r *CuratorRepository) GetByID(ctx context.Context, id int64) (*entity.Curator, error) {
	query := `SELECT ` + curatorColumns + ` FROM curators WHERE id = $1`

	var schema curatorSchema
	if err := r.db.GetContext(ctx, &schema, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NewError(errcodes.CuratorNotFound, "curator not found")
		}
		return nil, domain.WrapError(err, errcodes.InternalServerError, "failed to get curator")
	}

	return schema.toDomain(), nil
}

// List возвращает кураторов, отсортированных по имени.
func (r *CuratorRepository) List(ctx context.Context, onlyActive bool) ([]entity.Curator, error) {
	query := `SELECT ` + curatorColumns + ` FROM curators`
	if onlyActive {
		query += ` WHERE active`
	}
	query += ` ORDER BY name`

	var schemas []curatorSchema
	if err := r.db.SelectContext(ctx, &schemas, query); err != nil {
		return nil, domain.WrapError(err, errcodes.InternalServerError, "failed to list curators")
	}

	curators := make([]entity.Curator, 0, len(schemas))
	for i := range schemas {
		curators = append(curators, *schemas[i].toDomain())
	}

	return curators, nil
}

// Update сохраняет карточку куратора. Балансы и накопительные итоги здесь
// не трогаются: их меняют только RecordPurchase и закрытие сделок.
func (r *CuratorRepository) Update(ctx context.Context, curator *entity.Curator) error {
	query := `
		UPDATE curators
		SET name = $1, telegram_username = $2, phone = $3, notes = $4, active = $5, updated_at = $6
		WHERE id = $7`

	res, err := r.db.ExecContext(ctx, query,
		curator.Name, curator.TelegramUsername, curator.Phone, curator.Notes, curator.Active,
		time.Now(), curator.ID,
	)
	if err != nil {
		return domain.WrapError(err, errcodes.InternalServerError, "failed to update curator")
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return domain.WrapError(err, errcodes.InternalServerError, "failed to check affected rows")
	}

	if rows == 0 {
		return domain.NewError(errcodes.CuratorNotFound, "curator not found")
	}

	return nil
}

// RecordPurchase атомарно фиксирует откуп: блокирует строку куратора,
// вставляет запись откупа и пересчитывает накопительные итоги. Возвращает
// куратора после мутации.
func (r *CuratorRepository) RecordPurchase(ctx context.Context, purchase *entity.Purchase) (*entity.Curator, error) {
	var updated *entity.Curator

	err := r.withTx(ctx, func(tx *sqlx.Tx) error {
		curator, err := lockCurator(ctx, tx, purchase.CuratorID)
		if err != nil {
			return err
		}

		if !curator.Active {
			return domain.NewError(errcodes.CuratorInactive, "curator is inactive")
		}

		insertQuery := `
			INSERT INTO eur_purchases (curator_id, eur_amount, usdt_spent, rate, note, created_at)
			VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING id`

		err = tx.QueryRowxContext(ctx, insertQuery,
			purchase.CuratorID, purchase.EURAmount, purchase.USDTSpent,
			purchase.Rate, purchase.Note, purchase.CreatedAt,
		).Scan(&purchase.ID)
		if err != nil {
			return domain.WrapError(err, errcodes.InternalServerError, "failed to insert purchase")
		}

		curator.ApplyPurchase(purchase.EURAmount, purchase.USDTSpent)

		if err := updateCuratorTotalsTx(ctx, tx, curator); err != nil {
			return err
		}

		updated = curator

		return nil
	})
	if err != nil {
		return nil, err
	}

	return updated, nil
}

// ListPurchases возвращает откупы куратора, новые первыми.
func (r *CuratorRepository) ListPurchases(ctx context.Context, curatorID int64, limit, offset int) ([]entity.Purchase, error) {
	query := `
		SELECT id, curator_id, eur_amount, usdt_spent, rate, note, created_at
		FROM eur_purchases
		WHERE curator_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3`

	var schemas []purchaseSchema
	if err := r.db.SelectContext(ctx, &schemas, query, curatorID, limit, offset); err != nil {
		return nil, domain.WrapError(err, errcodes.InternalServerError, "failed to list purchases")
	}

	purchases := make([]entity.Purchase, 0, len(schemas))
	for i := range schemas {
		purchases = append(purchases, *schemas[i].toDomain())
	}

	return purchases, nil
}

// lockCurator читает строку куратора под FOR UPDATE в рамках транзакции.
func lockCurator(ctx context.Context, tx *sqlx.Tx, id int64) (*entity.Curator, error) {
	query := `SELECT ` + curatorColumns + ` FROM curators WHERE id = $1 FOR UPDATE`

	var schema curatorSchema
	if err := tx.GetContext(ctx, &schema, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NewError(errcodes.CuratorNotFound, "curator not found")
		}
		return nil, domain.WrapError(err, errcodes.InternalServerError, "failed to lock curator")
	}

	return schema.toDomain(), nil
}

// updateCuratorTotalsTx пишет мутированные итоги куратора в рамках
// транзакции, держащей блокировку строки.
func updateCuratorTotalsTx(ctx context.Context, tx *sqlx.Tx, curator *entity.Curator) error {
	query := `
		UPDATE curators
		SET eur_balance = $1, avg_eur_cost = $2, total_eur_purchased = $3,
		    total_usdt_spent = $4, profit_usdt = $5, updated_at = $6
		WHERE id = $7`

	now := time.Now()

	if _, err := tx.ExecContext(ctx, query,
		curator.EURBalance, curator.AvgEURCost, curator.TotalEURPurchased,
		curator.TotalUSDTSpent, curator.ProfitUSDT, now, curator.ID,
	); err != nil {
		return domain.WrapError(err, errcodes.InternalServerError, "failed to update curator totals")
	}

	curator.UpdatedAt = now

	return nil
}
