package server

import (
	"context"
	"fmt"
	"net/http"

	"git.appkode.ru/pub/go/failure"
	"github.com/shopspring/decimal"

	"fx_desk/internal/domain/entity"
	"fx_desk/internal/domain/service/ledger"
	"fx_desk/internal/domain/value"
	"fx_desk/pkg/errcodes"
	"fx_desk/pkg/httpx/reply"
	"fx_desk/pkg/httpx/req"
	"fx_desk/pkg/rest"
)

type dealService interface {
	CreateDeal(ctx context.Context, input ledger.CreateDealInput) (*entity.Deal, error)
	GetDeal(ctx context.Context, id int64) (*entity.Deal, error)
	ListDeals(ctx context.Context, filter entity.DealFilter) ([]entity.Deal, error)
	SettleDeal(ctx context.Context, dealID int64, input ledger.SettleDealInput) (*entity.Deal, error)
	CancelDeal(ctx context.Context, dealID int64) (*entity.Deal, error)
}

type DealServer struct {
	dealService dealService
}

func NewDealServer(dealService dealService) DealServer {
	return DealServer{
		dealService: dealService,
	}
}

func (s DealServer) postV1Deal(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()

	var request rest.CreateDealRequest

	if err := req.Read(r, &request); err != nil {
		return fmt.Errorf("req.Read: %w", err)
	}

	pair, err := value.NewPair(request.FromCurrency, request.ToCurrency)
	if err != nil {
		return failure.NewInvalidArgumentErrorFromError(
			fmt.Errorf("value.NewPair: %w", err),
			failure.WithCode(errcodes.UnsupportedPair),
		)
	}

	giveAmount, err := parseAmount(request.GiveAmount)
	if err != nil {
		return err
	}

	receiveAmount, err := parseAmount(request.ReceiveAmount)
	if err != nil {
		return err
	}

	rate, err := parseAmount(request.Rate)
	if err != nil {
		return err
	}

	deal, err := s.dealService.CreateDeal(ctx, ledger.CreateDealInput{
		Pair:          pair,
		GiveAmount:    giveAmount,
		ReceiveAmount: receiveAmount,
		Rate:          rate,
		ClientContact: request.ClientContact,
		Note:          request.Note,
	})
	if err != nil {
		return fmt.Errorf("dealService.CreateDeal: %w", err)
	}

	reply.JSON(ctx, w, http.StatusCreated, newRESTDeal(*deal))

	return nil
}

func (s DealServer) getV1Deals(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()

	filter := entity.DealFilter{}
	filter.Limit, filter.Offset = parsePagination(r)

	if status := r.URL.Query().Get("status"); status != "" {
		filter.Status = entity.DealStatus(status)
	}

	if curatorID := r.URL.Query().Get("curatorId"); curatorID != "" {
		id, err := parseID(curatorID)
		if err != nil {
			return err
		}

		filter.CuratorID = &id
	}

	deals, err := s.dealService.ListDeals(ctx, filter)
	if err != nil {
		return fmt.Errorf("dealService.ListDeals: %w", err)
	}

	reply.JSON(ctx, w, http.StatusOK, newRESTDeals(deals))

	return nil
}

func (s DealServer) getV1Deal(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()

	id, err := parseID(r.PathValue("id"))
	if err != nil {
		return err
	}

	deal, err := s.dealService.GetDeal(ctx, id)
	if err != nil {
		return fmt.Errorf("dealService.GetDeal: %w", err)
	}

	reply.JSON(ctx, w, http.StatusOK, newRESTDeal(*deal))

	return nil
}

func (s DealServer) postV1DealSettle(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()

	id, err := parseID(r.PathValue("id"))
	if err != nil {
		return err
	}

	var request rest.SettlementRequest

	if err := req.Read(r, &request); err != nil {
		return fmt.Errorf("req.Read: %w", err)
	}

	eurGiven, err := parseAmount(request.EURGiven)
	if err != nil {
		return err
	}

	usdtReceived, err := parseAmount(request.USDTReceived)
	if err != nil {
		return err
	}

	var actualRate decimal.NullDecimal
	if request.ActualRate != "" {
		rate, err := parseAmount(request.ActualRate)
		if err != nil {
			return err
		}

		actualRate = decimal.NewNullDecimal(rate)
	}

	deal, err := s.dealService.SettleDeal(ctx, id, ledger.SettleDealInput{
		CuratorID:    request.CuratorID,
		EURGiven:     eurGiven,
		USDTReceived: usdtReceived,
		ActualRate:   actualRate,
	})
	if err != nil {
		return fmt.Errorf("dealService.SettleDeal: %w", err)
	}

	reply.JSON(ctx, w, http.StatusOK, newRESTDeal(*deal))

	return nil
}

func (s DealServer) postV1DealCancel(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()

	id, err := parseID(r.PathValue("id"))
	if err != nil {
		return err
	}

	deal, err := s.dealService.CancelDeal(ctx, id)
	if err != nil {
		return fmt.Errorf("dealService.CancelDeal: %w", err)
	}

	reply.JSON(ctx, w, http.StatusOK, newRESTDeal(*deal))

	return nil
}
