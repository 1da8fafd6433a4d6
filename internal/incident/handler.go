package incident

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"incident-service/helper"
	"incident-service/pkg/constants"
)

type Handler struct {
	incidentService Service
}

func NewHandler(incidentService Service) *Handler {
	return &Handler{incidentService: incidentService}
}

func (h *Handler) Create(c *gin.Context) {
	var req CreateIncidentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helper.SendError(c, http.StatusBadRequest, err, helper.ErrInvalidRequest)
		return
	}

	userID := c.GetString(constants.UserID)
	if userID == "" {
		helper.SendError(c, http.StatusUnauthorized, errors.New("missing user identity"), helper.ErrUnauthorized)
		return
	}

	resp, err := h.incidentService.Create(c, &req, userID)
	if err != nil {
		h.sendServiceError(c, err)
		return
	}

	helper.SendSuccess(c, http.StatusCreated, "success", resp)
}

func (h *Handler) Get(c *gin.Context) {
	resp, err := h.incidentService.GetByID(c, c.Param("id"))
	if err != nil {
		h.sendServiceError(c, err)
		return
	}

	helper.SendSuccess(c, http.StatusOK, "success", resp)
}

func (h *Handler) List(c *gin.Context) {
	filter, err := parseListFilter(c)
	if err != nil {
		helper.SendError(c, http.StatusBadRequest, err, helper.ErrInvalidRequest)
		return
	}

	responses, err := h.incidentService.List(c, filter)
	if err != nil {
		h.sendServiceError(c, err)
		return
	}

	helper.SendSuccess(c, http.StatusOK, "success", responses)
}

func (h *Handler) Update(c *gin.Context) {
	var req UpdateIncidentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helper.SendError(c, http.StatusBadRequest, err, helper.ErrInvalidRequest)
		return
	}

	resp, err := h.incidentService.Update(c, c.Param("id"), &req)
	if err != nil {
		h.sendServiceError(c, err)
		return
	}

	helper.SendSuccess(c, http.StatusOK, "success", resp)
}

func (h *Handler) Close(c *gin.Context) {
	userID := c.GetString(constants.UserID)
	if userID == "" {
		helper.SendError(c, http.StatusUnauthorized, errors.New("missing user identity"), helper.ErrUnauthorized)
		return
	}

	resp, err := h.incidentService.Close(c, c.Param("id"), userID)
	if err != nil {
		h.sendServiceError(c, err)
		return
	}

	helper.SendSuccess(c, http.StatusOK, "success", resp)
}

func (h *Handler) Acknowledge(c *gin.Context) {
	var req AcknowledgeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helper.SendError(c, http.StatusBadRequest, err, helper.ErrInvalidRequest)
		return
	}

	userID := c.GetString(constants.UserID)
	if userID == "" {
		helper.SendError(c, http.StatusUnauthorized, errors.New("missing user identity"), helper.ErrUnauthorized)
		return
	}

	resp, err := h.incidentService.Acknowledge(c, c.Param("id"), userID, &req)
	if err != nil {
		h.sendServiceError(c, err)
		return
	}

	helper.SendSuccess(c, http.StatusOK, "success", resp)
}

func (h *Handler) ListAcknowledgements(c *gin.Context) {
	responses, err := h.incidentService.ListAcknowledgements(c, c.Param("id"))
	if err != nil {
		h.sendServiceError(c, err)
		return
	}

	helper.SendSuccess(c, http.StatusOK, "success", responses)
}

func (h *Handler) sendServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, helper.ErrRecordNotFound):
		helper.SendError(c, http.StatusNotFound, err, helper.ErrNotFound)
	case errors.Is(err, helper.ErrValidationFailed):
		helper.SendError(c, http.StatusBadRequest, err, helper.ErrInvalidRequest)
	default:
		helper.SendError(c, http.StatusInternalServerError, err, helper.ErrInvalidOperation)
	}
}

func parseListFilter(c *gin.Context) (ListFilter, error) {
	var filter ListFilter

	if raw := c.Query("status"); raw != "" {
		status := Status(raw)
		if !status.Valid() {
			return filter, errors.New("unknown status filter")
		}
		filter.Status = &status
	}
	if raw := c.Query("from"); raw != "" {
		from, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return filter, errors.New("from must be RFC3339")
		}
		filter.From = &from
	}
	if raw := c.Query("to"); raw != "" {
		to, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return filter, errors.New("to must be RFC3339")
		}
		filter.To = &to
	}
	return filter, nil
}
