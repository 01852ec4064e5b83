package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/samandr77/microservices/claims/internal/entity"
)

type ErrorResponse struct {
	Message     string `json:"message"`
	Description string `json:"description,omitempty"`
}

func SendJSONErr(ctx context.Context, w http.ResponseWriter, code int, originErr error, msgToSend string) {
	resp := ErrorResponse{Message: msgToSend}

	if originErr != nil {
		resp.Description = originErr.Error()
	}

	switch {
	case code >= http.StatusInternalServerError:
		slog.ErrorContext(ctx, "api error", "code", code, "error", resp.Description)
	default:
		slog.InfoContext(ctx, "request rejected", "code", code, "error", resp.Description)
	}

	SendJSON(ctx, w, code, resp)
}

func SendJSON(ctx context.Context, w http.ResponseWriter, code int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)

	err := json.NewEncoder(w).Encode(data)
	if err != nil {
		code = http.StatusInternalServerError
		http.Error(w, http.StatusText(code), code)

		slog.ErrorContext(ctx, "encode response", "error", err)
	}
}

// SendServiceErr answers with the status and operator message matching err.
func SendServiceErr(ctx context.Context, w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, entity.ErrActiveClaimExists):
		SendJSONErr(ctx, w, http.StatusConflict, err, "El cliente ya tiene un reclamo pendiente o en curso")
	case errors.Is(err, entity.ErrInvalidTransition):
		SendJSONErr(ctx, w, http.StatusConflict, err, "Cambio de estado no permitido")
	case errors.Is(err, entity.ErrAlreadyExists):
		SendJSONErr(ctx, w, http.StatusConflict, err, "El cliente ya existe")
	case errors.Is(err, entity.ErrClientRequiredFieldsMissing):
		SendJSONErr(ctx, w, http.StatusBadRequest, err, "Faltan datos obligatorios")
	case errors.Is(err, entity.ErrInvalidTechnicianRoster):
		SendJSONErr(ctx, w, http.StatusBadRequest, err, "Técnico fuera del plantel")
	case errors.Is(err, entity.ErrInvalidArgument):
		SendJSONErr(ctx, w, http.StatusBadRequest, err, "Datos inválidos")
	case errors.Is(err, entity.ErrNotFound):
		SendJSONErr(ctx, w, http.StatusNotFound, err, "No encontrado")
	case errors.Is(err, entity.ErrSealNotPropagated):
		SendJSONErr(ctx, w, http.StatusServiceUnavailable, err,
			"Reclamo resuelto, pero no se pudo actualizar el precinto del cliente")
	case errors.Is(err, entity.ErrInvalidCellUpdate):
		SendJSONErr(ctx, w, http.StatusConflict, err,
			"La planilla cambió mientras se editaba el registro, recargue los datos e intente nuevamente")
	case errors.Is(err, entity.ErrStoreUnavailable):
		SendJSONErr(ctx, w, http.StatusServiceUnavailable, err, "La planilla no responde, intente nuevamente en unos segundos")
	default:
		SendJSONErr(ctx, w, http.StatusInternalServerError, err, fallback)
	}
}
