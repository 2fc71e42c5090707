package response

import (
	"errors"
	"net/http"

	domainErrors "github.com/vitrine/checkout-service/internal/domain/errors"
)

type ErrorMapping struct {
	HTTPStatus int
	Status     Status
	Message    string
}

var errorMappings = map[error]ErrorMapping{
	domainErrors.ErrStoreNotFound: {
		HTTPStatus: http.StatusNotFound,
		Status:     StatusNotFound,
		Message:    "Store not found",
	},
	domainErrors.ErrProductNotFound: {
		HTTPStatus: http.StatusNotFound,
		Status:     StatusNotFound,
		Message:    "Product not found",
	},
	domainErrors.ErrCartNotFound: {
		HTTPStatus: http.StatusNotFound,
		Status:     StatusNotFound,
		Message:    "Cart not found",
	},
	domainErrors.ErrCartItemNotFound: {
		HTTPStatus: http.StatusNotFound,
		Status:     StatusNotFound,
		Message:    "Cart item not found",
	},
	domainErrors.ErrCouponNotFound: {
		HTTPStatus: http.StatusBadRequest,
		Status:     StatusError,
		Message:    "Cupom inválido",
	},
	domainErrors.ErrCouponBelowMinimum: {
		HTTPStatus: http.StatusBadRequest,
		Status:     StatusError,
		Message:    "Valor mínimo do cupom não atingido",
	},
	domainErrors.ErrGeocodeFailed: {
		HTTPStatus: http.StatusUnprocessableEntity,
		Status:     StatusError,
		Message:    "Endereço não localizado",
	},
	domainErrors.ErrOutsideDeliveryArea: {
		HTTPStatus: http.StatusUnprocessableEntity,
		Status:     StatusError,
		Message:    "Endereço fora da área de entrega",
	},
	domainErrors.ErrCheckoutBlocked: {
		HTTPStatus: http.StatusConflict,
		Status:     StatusConflict,
		Message:    "Checkout bloqueado por erro de frete",
	},
	domainErrors.ErrCartSyncFailed: {
		HTTPStatus: http.StatusInternalServerError,
		Status:     StatusInternalError,
		Message:    "Cart sync failed",
	},
}

func MapDomainError(err error) (int, *ErrorResponse) {
	for domainErr, mapping := range errorMappings {
		if errors.Is(err, domainErr) {
			return mapping.HTTPStatus, Error(mapping.Status, mapping.Message, err.Error())
		}
	}

	return http.StatusInternalServerError, Error(StatusInternalError, "Internal server error", err.Error())
}

func WriteDomainError(w http.ResponseWriter, err error) {
	statusCode, errorResponse := MapDomainError(err)
	WriteJSON(w, statusCode, errorResponse)
}
