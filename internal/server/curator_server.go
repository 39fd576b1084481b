package server

import (
	"context"
	"fmt"
	"net/http"

	"fx_desk/internal/domain/entity"
	"fx_desk/internal/domain/service/ledger"
	"fx_desk/pkg/httpx/reply"
	"fx_desk/pkg/httpx/req"
	"fx_desk/pkg/rest"
)

type curatorService interface {
	CreateCurator(ctx context.Context, input ledger.CreateCuratorInput) (*entity.Curator, error)
	GetCurator(ctx context.Context, id int64) (*entity.Curator, error)
	ListCurators(ctx context.Context, onlyActive bool) ([]entity.Curator, error)
	UpdateCurator(ctx context.Context, id int64, input ledger.UpdateCuratorInput) (*entity.Curator, error)
	DeactivateCurator(ctx context.Context, id int64) (*entity.Curator, error)
	RecordPurchase(ctx context.Context, input ledger.PurchaseInput) (*entity.Purchase, *entity.Curator, error)
	ListPurchases(ctx context.Context, curatorID int64, limit, offset int) ([]entity.Purchase, error)
}

type CuratorServer struct {
	curatorService curatorService
}

func NewCuratorServer(curatorService curatorService) CuratorServer {
	return CuratorServer{
		curatorService: curatorService,
	}
}

func (s CuratorServer) postV1Curator(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()

	var request rest.CreateCuratorRequest

	if err := req.Read(r, &request); err != nil {
		return fmt.Errorf("req.Read: %w", err)
	}

	curator, err := s.curatorService.CreateCurator(ctx, ledger.CreateCuratorInput{
		Name:             request.Name,
		TelegramUsername: request.TelegramUsername,
		Phone:            request.Phone,
		Notes:            request.Notes,
	})
	if err != nil {
		return fmt.Errorf("curatorService.CreateCurator: %w", err)
	}

	reply.JSON(ctx, w, http.StatusCreated, newRESTCurator(*curator))

	return nil
}

func (s CuratorServer) getV1Curators(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()

	onlyActive := r.URL.Query().Get("active") == "true"

	curators, err := s.curatorService.ListCurators(ctx, onlyActive)
	if err != nil {
		return fmt.Errorf("curatorService.ListCurators: %w", err)
	}

	reply.JSON(ctx, w, http.StatusOK, newRESTCurators(curators))

	return nil
}

func (s CuratorServer) getV1Curator(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()

	id, err := parseID(r.PathValue("id"))
	if err != nil {
		return err
	}

	curator, err := s.curatorService.GetCurator(ctx, id)
	if err != nil {
		return fmt.Errorf("curatorService.GetCurator: %w", err)
	}

	reply.JSON(ctx, w, http.StatusOK, newRESTCurator(*curator))

	return nil
}

func (s CuratorServer) putV1Curator(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()

	id, err := parseID(r.PathValue("id"))
	if err != nil {
		return err
	}

	var request rest.UpdateCuratorRequest

	if err := req.Read(r, &request); err != nil {
		return fmt.Errorf("req.Read: %w", err)
	}

	curator, err := s.curatorService.UpdateCurator(ctx, id, ledger.UpdateCuratorInput{
		Name:             request.Name,
		TelegramUsername: request.TelegramUsername,
		Phone:            request.Phone,
		Notes:            request.Notes,
		Active:           request.Active,
	})
	if err != nil {
		return fmt.Errorf("curatorService.UpdateCurator: %w", err)
	}

	reply.JSON(ctx, w, http.StatusOK, newRESTCurator(*curator))

	return nil
}

func (s CuratorServer) deleteV1Curator(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()

	id, err := parseID(r.PathValue("id"))
	if err != nil {
		return err
	}

	curator, err := s.curatorService.DeactivateCurator(ctx, id)
	if err != nil {
		return fmt.Errorf("curatorService.DeactivateCurator: %w", err)
	}

	reply.JSON(ctx, w, http.StatusOK, newRESTCurator(*curator))

	return nil
}

func (s CuratorServer) postV1CuratorPurchase(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()

	id, err := parseID(r.PathValue("id"))
	if err != nil {
		return err
	}

	var request rest.PurchaseRequest

	if err := req.Read(r, &request); err != nil {
		return fmt.Errorf("req.Read: %w", err)
	}

	eurAmount, err := parseAmount(request.EURAmount)
	if err != nil {
		return err
	}

	usdtSpent, err := parseAmount(request.USDTSpent)
	if err != nil {
		return err
	}

	purchase, _, err := s.curatorService.RecordPurchase(ctx, ledger.PurchaseInput{
		CuratorID: id,
		EURAmount: eurAmount,
		USDTSpent: usdtSpent,
		Note:      request.Note,
	})
	if err != nil {
		return fmt.Errorf("curatorService.RecordPurchase: %w", err)
	}

	reply.JSON(ctx, w, http.StatusCreated, newRESTPurchase(*purchase))

	return nil
}

func (s CuratorServer) getV1CuratorPurchases(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()

	id, err := parseID(r.PathValue("id"))
	if err != nil {
		return err
	}

	limit, offset := parsePagination(r)

	purchases, err := s.curatorService.ListPurchases(ctx, id, limit, offset)
	if err != nil {
		return fmt.Errorf("curatorService.ListPurchases: %w", err)
	}

	reply.JSON(ctx, w, http.StatusOK, newRESTPurchases(purchases))

	return nil
}
