package alert

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"incident-service/helper"
)

type Handler struct {
	alertService Service
}

func NewHandler(alertService Service) *Handler {
	return &Handler{alertService: alertService}
}

func (h *Handler) Send(c *gin.Context) {
	var req SendAlertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helper.SendError(c, http.StatusBadRequest, err, helper.ErrInvalidRequest)
		return
	}

	delivered, err := h.alertService.SendToTeams(c, &req)
	if err != nil {
		if errors.Is(err, helper.ErrValidationFailed) {
			helper.SendError(c, http.StatusBadRequest, err, helper.ErrInvalidRequest)
			return
		}
		helper.SendError(c, http.StatusInternalServerError, err, helper.ErrInvalidOperation)
		return
	}

	helper.SendSuccess(c, http.StatusOK, "success", gin.H{"delivered": delivered})
}
