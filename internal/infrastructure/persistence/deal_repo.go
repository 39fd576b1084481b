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

const dealColumns = `
	id, direction, client_contact,
	requested_give_amount, requested_give_currency,
	requested_receive_amount, requested_receive_currency, requested_rate,
	curator_id, eur_given, usdt_received, actual_rate,
	eur_cost_at_deal, profit_total, profit_curator, profit_agency,
	status, note, created_at, completed_at`

type DealRepository struct {
	db *sqlx.DB
}

// NewDealRepository создаёт новый экземпляр репозитория.
func NewDealRepository(db *sqlx.DB) *DealRepository {
	return &DealRepository{db: db}
}

func (r *DealRepository) withTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
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

// Create сохраняет новую заявку.
func (r *DealRepository) Create(ctx context.Context, deal *entity.Deal) error {
	query := `
		INSERT INTO deals (
			direction, client_contact,
			requested_give_amount, requested_give_currency,
			requested_receive_amount, requested_receive_currency, requested_rate,
			status, note, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id`

	err := r.db.QueryRowxContext(ctx, query,
		deal.Direction, deal.ClientContact,
		deal.RequestedGiveAmount, deal.RequestedGiveCurrency.String(),
		deal.RequestedGetAmount, deal.RequestedGetCurrency.String(), deal.RequestedRate,
		deal.Status, deal.Note, deal.CreatedAt,
	).Scan(&deal.ID)
	if err != nil {
		return domain.WrapError(err, errcodes.InternalServerError, "failed to insert deal")
	}

	return nil
}

// GetByID возвращает сделку по идентификатору.
func (r *DealRepository) GetByID(ctx context.Context, id int64) (*entity.Deal, error) {
	query := `SELECT ` + dealColumns + ` FROM deals WHERE id = $1`

	var schema dealSchema
	if err := r.db.GetContext(ctx, &schema, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NewError(errcodes.DealNotFound, "deal not found")
		}
		return nil, domain.WrapError(err, errcodes.InternalServerError, "failed to get deal")
	}

	return schema.toDomain(), nil
}

// List возвращает сделки по фильтру, новые первыми.
func (r *DealRepository) List(ctx context.Context, filter entity.DealFilter) ([]entity.Deal, error) {
	query := `SELECT ` + dealColumns + ` FROM deals WHERE 1=1`

	var args []any

	if filter.Status != "" {
		args = append(args, filter.Status)
		query += fmt.Sprintf(" AND status = $%d", len(args))
	}

	if filter.CuratorID != nil {
		args = append(args, *filter.CuratorID)
		query += fmt.Sprintf(" AND curator_id = $%d", len(args))
	}

	query += " ORDER BY created_at DESC, id DESC"

	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}

	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	var schemas []dealSchema
	if err := r.db.SelectContext(ctx, &schemas, query, args...); err != nil {
		return nil, domain.WrapError(err, errcodes.InternalServerError, "failed to list deals")
	}

	deals := make([]entity.Deal, 0, len(schemas))
	for i := range schemas {
		deals = append(deals, *schemas[i].toDomain())
	}

	return deals, nil
}

// Settle атомарно закрывает сделку против инвентаря куратора: блокирует
// сначала строку сделки, затем строку куратора (порядок фиксированный,
// чтобы исключить взаимоблокировку с параллельными закрытиями), проверяет
// статус, активность и достаточность баланса, фиксирует себестоимость на
// момент закрытия и делит прибыль.
func (r *DealRepository) Settle(ctx context.Context, dealID int64, input entity.SettlementInput) (*entity.Deal, *entity.Curator, error) {
	var (
		settledDeal    *entity.Deal
		settledCurator *entity.Curator
	)

	err := r.withTx(ctx, func(tx *sqlx.Tx) error {
		deal, err := lockDeal(ctx, tx, dealID)
		if err != nil {
			return err
		}

		if deal.Status.IsTerminal() {
			return domain.NewError(errcodes.InvalidDealState,
				fmt.Sprintf("deal is already %s", deal.Status))
		}

		curator, err := lockCurator(ctx, tx, input.CuratorID)
		if err != nil {
			return err
		}

		if !curator.Active {
			return domain.NewError(errcodes.CuratorInactive, "curator is inactive")
		}

		if curator.EURBalance.LessThan(input.EURGiven) {
			return domain.NewError(errcodes.InsufficientBalance,
				fmt.Sprintf("curator has %s EUR, deal needs %s", curator.EURBalance, input.EURGiven))
		}

		settlement := entity.ComputeSettlement(
			curator.AvgEURCost, input.EURGiven, input.USDTReceived, input.CuratorShare)

		curator.ApplySettlement(input.EURGiven, settlement.ProfitCurator)

		if err := updateCuratorTotalsTx(ctx, tx, curator); err != nil {
			return err
		}

		now := time.Now()

		updateQuery := `
			UPDATE deals
			SET status = $1, curator_id = $2, eur_given = $3, usdt_received = $4,
			    actual_rate = $5, eur_cost_at_deal = $6,
			    profit_total = $7, profit_curator = $8, profit_agency = $9,
			    completed_at = $10
			WHERE id = $11`

		if _, err := tx.ExecContext(ctx, updateQuery,
			entity.DealCompleted, curator.ID, input.EURGiven, input.USDTReceived,
			input.ActualRate, settlement.EURCostAtDeal,
			settlement.ProfitTotal, settlement.ProfitCurator, settlement.ProfitAgency,
			now, deal.ID,
		); err != nil {
			return domain.WrapError(err, errcodes.InternalServerError, "failed to settle deal")
		}

		deal.Status = entity.DealCompleted
		deal.CuratorID = &curator.ID
		deal.EURGiven = decimalToNull(input.EURGiven)
		deal.USDTReceived = decimalToNull(input.USDTReceived)
		deal.ActualRate = input.ActualRate
		deal.EURCostAtDeal = decimalToNull(settlement.EURCostAtDeal)
		deal.ProfitTotal = decimalToNull(settlement.ProfitTotal)
		deal.ProfitCurator = decimalToNull(settlement.ProfitCurator)
		deal.ProfitAgency = decimalToNull(settlement.ProfitAgency)
		deal.CompletedAt = &now

		settledDeal = deal
		settledCurator = curator

		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	return settledDeal, settledCurator, nil
}

// Cancel переводит ожидающую сделку в cancelled. Инвентарь не трогается.
func (r *DealRepository) Cancel(ctx context.Context, dealID int64) (*entity.Deal, error) {
	var cancelled *entity.Deal

	err := r.withTx(ctx, func(tx *sqlx.Tx) error {
		deal, err := lockDeal(ctx, tx, dealID)
		if err != nil {
			return err
		}

		if deal.Status.IsTerminal() {
			return domain.NewError(errcodes.InvalidDealState,
				fmt.Sprintf("deal is already %s", deal.Status))
		}

		now := time.Now()

		query := `UPDATE deals SET status = $1, completed_at = $2 WHERE id = $3`
		if _, err := tx.ExecContext(ctx, query, entity.DealCancelled, now, deal.ID); err != nil {
			return domain.WrapError(err, errcodes.InternalServerError, "failed to cancel deal")
		}

		deal.Status = entity.DealCancelled
		deal.CompletedAt = &now
		cancelled = deal

		return nil
	})
	if err != nil {
		return nil, err
	}

	return cancelled, nil
}

func lockDeal(ctx context.Context, tx *sqlx.Tx, id int64) (*entity.Deal, error) {
	query := `SELECT ` + dealColumns + ` FROM deals WHERE id = $1 FOR UPDATE`

	var schema dealSchema
	if err := tx.GetContext(ctx, &schema, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NewError(errcodes.DealNotFound, "deal not found")
		}
		return nil, domain.WrapError(err, errcodes.InternalServerError, "failed to lock deal")
	}

	return schema.toDomain(), nil
}
