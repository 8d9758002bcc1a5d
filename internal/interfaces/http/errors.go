package httpinterface

import (
	"errors"
	"net/http"

	"github.com/hydra-arena/hydra-control-plane/internal/core/application"
	"github.com/hydra-arena/hydra-control-plane/internal/core/domain"
	"github.com/hydra-arena/hydra-control-plane/pkg/hydra"
	"github.com/hydra-arena/hydra-control-plane/pkg/txbuilder"
)

var errorStatuses = []struct {
	err    error
	status int
}{
	{domain.ErrNodeNotFound, http.StatusNotFound},
	{domain.ErrSessionNotFound, http.StatusNotFound},
	{application.ErrNoAvailableNodes, http.StatusServiceUnavailable},
	{application.ErrNodeNotReachable, http.StatusServiceUnavailable},
	{application.ErrInvalidPlayerAddress, http.StatusBadRequest},
	{application.ErrGameNotTerminal, http.StatusConflict},
	{application.ErrHeadNotInitializing, http.StatusConflict},
	{txbuilder.ErrInvalidGameState, http.StatusConflict},
	{txbuilder.ErrNoCommitInputs, http.StatusBadRequest},
	{txbuilder.ErrNoAdminUTxO, http.StatusBadRequest},
	{txbuilder.ErrNoCollateral, http.StatusBadRequest},
	{txbuilder.ErrNoGameUTxO, http.StatusBadRequest},
	{txbuilder.ErrInvalidDatum, http.StatusBadRequest},
	{txbuilder.ErrInsufficientFunds, http.StatusBadRequest},
	{txbuilder.ErrInvalidPlayer, http.StatusBadRequest},
	{hydra.ErrTxRejected, http.StatusUnprocessableEntity},
	{hydra.ErrTxTimeout, http.StatusGatewayTimeout},
}

func statusFromError(err error) int {
	for _, e := range errorStatuses {
		if errors.Is(err, e.err) {
			return e.status
		}
	}
	if hydra.IsUnavailable(err) {
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}
