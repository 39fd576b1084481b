package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"fx_desk/internal/domain"
	"fx_desk/internal/domain/entity"
	"fx_desk/internal/domain/value"
	"fx_desk/pkg/contextx"
	"fx_desk/pkg/errcodes"
)

var logger = contextx.LoggerFromContextOrDefault //nolint:gochecknoglobals

const eventBufferSize = 64

// CuratorRepository — хранилище кураторов и их откупов. Мутации итогов
// куратора атомарны: репозиторий сам берёт блокировку строки.
type CuratorRepository interface {
	Create(ctx context.Context, curator *entity.Curator) error
	GetByID(ctx context.Context, id int64) (*entity.Curator, error)
	List(ctx context.Context, onlyActive bool) ([]entity.Curator, error)
	Update(ctx context.Context, curator *entity.Curator) error
	RecordPurchase(ctx context.Context, purchase *entity.Purchase) (*entity.Curator, error)
	ListPurchases(ctx context.Context, curatorID int64, limit, offset int) ([]entity.Purchase, error)
}

// DealRepository — хранилище сделок. Settle и Cancel проверяют статус
// сделки под блокировкой, повторное закрытие невозможно.
type DealRepository interface {
	Create(ctx context.Context, deal *entity.Deal) error
	GetByID(ctx context.Context, id int64) (*entity.Deal, error)
	List(ctx context.Context, filter entity.DealFilter) ([]entity.Deal, error)
	Settle(ctx context.Context, dealID int64, input entity.SettlementInput) (*entity.Deal, *entity.Curator, error)
	Cancel(ctx context.Context, dealID int64) (*entity.Deal, error)
}

type EventKind string

const (
	EventDealCreated      EventKind = "deal_created"
	EventDealSettled      EventKind = "deal_settled"
	EventDealCancelled    EventKind = "deal_cancelled"
	EventPurchaseRecorded EventKind = "purchase_recorded"
)

// Event — уведомление о движении в учёте; уходит в телеграм-нотификатор.
type Event struct {
	Kind     EventKind
	Deal     *entity.Deal
	Curator  *entity.Curator
	Purchase *entity.Purchase
}

// Service — учёт кураторов и жизненный цикл сделок: средневзвешенная
// себестоимость EUR, закрытие сделок против инвентаря и делёж прибыли.
type Service struct {
	curators CuratorRepository
	deals    DealRepository

	// curatorShare — доля куратора в прибыли закрытой сделки.
	curatorShare decimal.Decimal

	events chan Event
}

func NewService(curators CuratorRepository, deals DealRepository, curatorShare decimal.Decimal) *Service {
	return &Service{
		curators:     curators,
		deals:        deals,
		curatorShare: curatorShare,
		events:       make(chan Event, eventBufferSize),
	}
}

// Events — поток уведомлений для нотификатора. Канал не закрывается.
func (s *Service) Events() <-chan Event {
	return s.events
}

// publish не блокирует учёт: если потребитель отстал, событие теряется.
func (s *Service) publish(ctx context.Context, event Event) {
	select {
	case s.events <- event:
	default:
		logger(ctx).Warn("event buffer full, dropping notification", "kind", event.Kind)
	}
}

type CreateCuratorInput struct {
	Name             string
	TelegramUsername string
	Phone            string
	Notes            string
}

func (s *Service) CreateCurator(ctx context.Context, input CreateCuratorInput) (*entity.Curator, error) {
	curator := &entity.Curator{
		Name:             input.Name,
		TelegramUsername: input.TelegramUsername,
		Phone:            input.Phone,
		Notes:            input.Notes,
		Active:           true,
	}

	if err := s.curators.Create(ctx, curator); err != nil {
		return nil, fmt.Errorf("create curator: %w", err)
	}

	logger(ctx).Info("curator created", "id", curator.ID, "name", curator.Name)

	return curator, nil
}

func (s *Service) GetCurator(ctx context.Context, id int64) (*entity.Curator, error) {
	return s.curators.GetByID(ctx, id)
}

func (s *Service) ListCurators(ctx context.Context, onlyActive bool) ([]entity.Curator, error) {
	return s.curators.List(ctx, onlyActive)
}

type UpdateCuratorInput struct {
	Name             string
	TelegramUsername string
	Phone            string
	Notes            string
	Active           bool
}

// UpdateCurator меняет карточку куратора. Балансы и итоги снаружи не
// редактируются: только откупы и закрытия сделок двигают их.
func (s *Service) UpdateCurator(ctx context.Context, id int64, input UpdateCuratorInput) (*entity.Curator, error) {
	curator, err := s.curators.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	curator.Name = input.Name
	curator.TelegramUsername = input.TelegramUsername
	curator.Phone = input.Phone
	curator.Notes = input.Notes
	curator.Active = input.Active

	if err := s.curators.Update(ctx, curator); err != nil {
		return nil, fmt.Errorf("update curator: %w", err)
	}

	return curator, nil
}

// DeactivateCurator мягко выводит куратора из оборота: история откупов и
// сделок остаётся, новые покупки и закрытия по нему блокируются.
func (s *Service) DeactivateCurator(ctx context.Context, id int64) (*entity.Curator, error) {
	curator, err := s.curators.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	curator.Active = false

	if err := s.curators.Update(ctx, curator); err != nil {
		return nil, fmt.Errorf("update curator: %w", err)
	}

	logger(ctx).Info("curator deactivated", "id", curator.ID)

	return curator, nil
}

type PurchaseInput struct {
	CuratorID int64
	EURAmount decimal.Decimal
	USDTSpent decimal.Decimal
	Note      string
}

// RecordPurchase фиксирует откуп: куратор купил EUR за USDT. Итоги и
// средневзвешенная себестоимость пересчитываются атомарно в репозитории.
func (s *Service) RecordPurchase(ctx context.Context, input PurchaseInput) (*entity.Purchase, *entity.Curator, error) {
	if !input.EURAmount.IsPositive() || !input.USDTSpent.IsPositive() {
		return nil, nil, domain.NewError(errcodes.InvalidAmount, "purchase amounts must be positive")
	}

	purchase := entity.NewPurchase(input.CuratorID, input.EURAmount, input.USDTSpent, input.Note)

	curator, err := s.curators.RecordPurchase(ctx, purchase)
	if err != nil {
		return nil, nil, fmt.Errorf("record purchase: %w", err)
	}

	logger(ctx).Info("purchase recorded",
		"curator_id", curator.ID,
		"eur", purchase.EURAmount,
		"usdt", purchase.USDTSpent,
		"rate", purchase.Rate,
		"avg_cost", curator.AvgEURCost,
	)

	s.publish(ctx, Event{Kind: EventPurchaseRecorded, Curator: curator, Purchase: purchase})

	return purchase, curator, nil
}

func (s *Service) ListPurchases(ctx context.Context, curatorID int64, limit, offset int) ([]entity.Purchase, error) {
	return s.curators.ListPurchases(ctx, curatorID, limit, offset)
}

type CreateDealInput struct {
	Pair          value.Pair
	GiveAmount    decimal.Decimal
	ReceiveAmount decimal.Decimal
	Rate          decimal.Decimal
	ClientContact string
	Note          string
}

// CreateDeal регистрирует клиентскую заявку. Суммы и курс приходят из
// калькулятора на момент заявки и замораживаются как котировка клиенту.
func (s *Service) CreateDeal(ctx context.Context, input CreateDealInput) (*entity.Deal, error) {
	if !input.GiveAmount.IsPositive() || !input.ReceiveAmount.IsPositive() {
		return nil, domain.NewError(errcodes.InvalidAmount, "deal amounts must be positive")
	}

	deal := &entity.Deal{
		Direction:             input.Pair.String(),
		ClientContact:         input.ClientContact,
		RequestedGiveAmount:   input.GiveAmount,
		RequestedGiveCurrency: input.Pair.From,
		RequestedGetAmount:    input.ReceiveAmount,
		RequestedGetCurrency:  input.Pair.To,
		RequestedRate:         input.Rate,
		Status:                entity.DealPending,
		Note:                  input.Note,
		CreatedAt:             time.Now(),
	}

	if err := s.deals.Create(ctx, deal); err != nil {
		return nil, fmt.Errorf("create deal: %w", err)
	}

	logger(ctx).Info("deal created",
		"id", deal.ID,
		"direction", deal.Direction,
		"give", deal.RequestedGiveAmount,
		"get", deal.RequestedGetAmount,
	)

	s.publish(ctx, Event{Kind: EventDealCreated, Deal: deal})

	return deal, nil
}

func (s *Service) GetDeal(ctx context.Context, id int64) (*entity.Deal, error) {
	return s.deals.GetByID(ctx, id)
}

func (s *Service) ListDeals(ctx context.Context, filter entity.DealFilter) ([]entity.Deal, error) {
	return s.deals.List(ctx, filter)
}

type SettleDealInput struct {
	CuratorID    int64
	EURGiven     decimal.Decimal
	USDTReceived decimal.Decimal
	ActualRate   decimal.NullDecimal
}

// SettleDeal закрывает сделку против инвентаря куратора: списывает EUR,
// фиксирует себестоимость на момент закрытия и делит прибыль. Вся мутация
// атомарна; повторное закрытие и уход баланса в минус исключаются
// блокировками в репозитории.
func (s *Service) SettleDeal(ctx context.Context, dealID int64, input SettleDealInput) (*entity.Deal, error) {
	if !input.EURGiven.IsPositive() || !input.USDTReceived.IsPositive() {
		return nil, domain.NewError(errcodes.InvalidAmount, "settlement amounts must be positive")
	}

	deal, curator, err := s.deals.Settle(ctx, dealID, entity.SettlementInput{
		CuratorID:    input.CuratorID,
		EURGiven:     input.EURGiven,
		USDTReceived: input.USDTReceived,
		ActualRate:   input.ActualRate,
		CuratorShare: s.curatorShare,
	})
	if err != nil {
		return nil, err
	}

	logger(ctx).Info("deal settled",
		"id", deal.ID,
		"curator_id", curator.ID,
		"eur_given", input.EURGiven,
		"profit_total", deal.ProfitTotal.Decimal,
		"profit_curator", deal.ProfitCurator.Decimal,
	)

	s.publish(ctx, Event{Kind: EventDealSettled, Deal: deal, Curator: curator})

	return deal, nil
}

// CancelDeal отменяет ожидающую сделку. Инвентарь не трогается: деньги
// двигаются только при закрытии.
func (s *Service) CancelDeal(ctx context.Context, dealID int64) (*entity.Deal, error) {
	deal, err := s.deals.Cancel(ctx, dealID)
	if err != nil {
		return nil, err
	}

	logger(ctx).Info("deal cancelled", "id", deal.ID)

	s.publish(ctx, Event{Kind: EventDealCancelled, Deal: deal})

	return deal, nil
}
