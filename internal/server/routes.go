package server

import (
	"errors"
	"net/http"

	"git.appkode.ru/pub/go/failure"
	"github.com/go-chi/chi/v5"

	"fx_desk/internal/domain"
	"fx_desk/pkg/errcodes"
	"fx_desk/pkg/httpx/reply"
)

func (s Server) RegisterRoutes(r chi.Router) {
	r.Route("/", func(r chi.Router) {
		r.Route("/v1", func(r chi.Router) {
			r.Post("/rate", handler(s.postV1Rate))
			r.Route("/rates", func(r chi.Router) {
				r.Get("/", handler(s.getV1Rates))
				r.Post("/refresh", handler(s.postV1RatesRefresh))
			})

			r.Route("/curators", func(r chi.Router) {
				r.Post("/", handler(s.postV1Curator))
				r.Get("/", handler(s.getV1Curators))
				r.Get("/{id}", handler(s.getV1Curator))
				r.Put("/{id}", handler(s.putV1Curator))
				r.Delete("/{id}", handler(s.deleteV1Curator))
				r.Post("/{id}/purchases", handler(s.postV1CuratorPurchase))
				r.Get("/{id}/purchases", handler(s.getV1CuratorPurchases))
			})

			r.Route("/deals", func(r chi.Router) {
				r.Post("/", handler(s.postV1Deal))
				r.Get("/", handler(s.getV1Deals))
				r.Get("/{id}", handler(s.getV1Deal))
				r.Post("/{id}/settle", handler(s.postV1DealSettle))
				r.Post("/{id}/cancel", handler(s.postV1DealCancel))
			})
		})
	})
}

func handler(f func(http.ResponseWriter, *http.Request) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := f(w, r); err != nil {
			reply.Error(r.Context(), w, asFailure(err))
		}
	}
}

// asFailure переводит доменные ошибки в типизированные failure-ошибки,
// по которым reply.Error выбирает HTTP-статус. Всё неопознанное уезжает
// как есть и отвечает 500.
func asFailure(err error) error {
	var appErr *domain.AppError
	if !errors.As(err, &appErr) {
		return err
	}

	switch appErr.Code {
	case errcodes.CuratorNotFound, errcodes.DealNotFound, errcodes.NotFound:
		return failure.NewNotFoundError(appErr.Error(),
			failure.WithCode(appErr.Code), failure.WithDescription(appErr.Message))
	case errcodes.InvalidAmount, errcodes.UnsupportedPair, errcodes.ValidationError:
		return failure.NewInvalidArgumentError(appErr.Error(),
			failure.WithCode(appErr.Code), failure.WithDescription(appErr.Message))
	case errcodes.InvalidDealState, errcodes.CuratorInactive:
		return failure.NewConflictError(appErr.Error(),
			failure.WithCode(appErr.Code), failure.WithDescription(appErr.Message))
	case errcodes.InsufficientBalance:
		return failure.NewUnprocessableEntityError(appErr.Error(),
			failure.WithCode(appErr.Code), failure.WithDescription(appErr.Message))
	default:
		return err
	}
}
