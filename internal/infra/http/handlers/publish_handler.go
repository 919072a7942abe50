package handlers

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/xavierca1/nexus-concierge/internal/infra/http/middleware"
	"github.com/xavierca1/nexus-concierge/internal/infra/integration/publisher"
	"github.com/xavierca1/nexus-concierge/internal/usecase"
)

type PostPublishUseCase interface {
	Execute(ctx context.Context, input usecase.PublishPostInput) (*usecase.PublishPostOutput, error)
}

type PublishHandler struct {
	UseCase    PostPublishUseCase
	ServiceKey string
	Logger     *zap.Logger
}

func NewPublishHandler(uc PostPublishUseCase, serviceKey string, logger *zap.Logger) *PublishHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PublishHandler{UseCase: uc, ServiceKey: serviceKey, Logger: logger}
}

func (h *PublishHandler) Handle(w http.ResponseWriter, r *http.Request) {
	if !h.authorized(r) {
		writeError(w, http.StatusUnauthorized, "Chave de serviço inválida")
		return
	}

	var body struct {
		UserID string `json:"user_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "JSON inválido")
		return
	}

	out, err := h.UseCase.Execute(r.Context(), usecase.PublishPostInput{
		UserID: body.UserID,
		PostID: chi.URLParam(r, "postId"),
	})
	if err != nil {
		status := publishErrorStatus(err)
		if status >= http.StatusInternalServerError {
			middleware.RecordPublish("failed")
			middleware.RecordIntegrationError("ayrshare")
		}
		h.Logger.Warn("publicação recusada", zap.Int("status", status), zap.Error(err))
		writeError(w, status, err.Error())
		return
	}

	middleware.RecordPublish(out.Status)
	writeJSON(w, http.StatusOK, out)
}

func (h *PublishHandler) authorized(r *http.Request) bool {
	if h.ServiceKey == "" {
		return false
	}
	got := r.Header.Get(publisher.ServiceKeyHeader)
	return subtle.ConstantTimeCompare([]byte(got), []byte(h.ServiceKey)) == 1
}

func publishErrorStatus(err error) int {
	var de *usecase.DomainError
	if errors.As(err, &de) {
		switch de.Code {
		case "POST_NOT_FOUND":
			return http.StatusNotFound
		case "INVALID_STATUS":
			return http.StatusConflict
		default:
			return http.StatusBadRequest
		}
	}
	return http.StatusBadGateway
}
