package devicetoken

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"incident-service/helper"
	"incident-service/pkg/constants"
)

type Handler struct {
	tokenService Service
}

func NewHandler(tokenService Service) *Handler {
	return &Handler{tokenService: tokenService}
}

func (h *Handler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helper.SendError(c, http.StatusBadRequest, err, helper.ErrInvalidRequest)
		return
	}

	userID := c.GetString(constants.UserID)
	if userID == "" {
		helper.SendError(c, http.StatusUnauthorized, errors.New("missing user identity"), helper.ErrUnauthorized)
		return
	}

	record, err := h.tokenService.Register(c, userID, &req)
	if err != nil {
		h.sendServiceError(c, err)
		return
	}

	helper.SendSuccess(c, http.StatusCreated, "success", record)
}

func (h *Handler) List(c *gin.Context) {
	userID := c.GetString(constants.UserID)
	if userID == "" {
		helper.SendError(c, http.StatusUnauthorized, errors.New("missing user identity"), helper.ErrUnauthorized)
		return
	}

	tokens, err := h.tokenService.ListForUser(c, userID)
	if err != nil {
		h.sendServiceError(c, err)
		return
	}

	helper.SendSuccess(c, http.StatusOK, "success", tokens)
}

func (h *Handler) Deactivate(c *gin.Context) {
	var req DeactivateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helper.SendError(c, http.StatusBadRequest, err, helper.ErrInvalidRequest)
		return
	}

	userID := c.GetString(constants.UserID)
	if userID == "" {
		helper.SendError(c, http.StatusUnauthorized, errors.New("missing user identity"), helper.ErrUnauthorized)
		return
	}

	ok, err := h.tokenService.Deactivate(c, userID, req.DeviceToken)
	if err != nil {
		h.sendServiceError(c, err)
		return
	}
	if !ok {
		helper.SendError(c, http.StatusNotFound, fmt.Errorf("device token not found"), helper.ErrNotFound)
		return
	}

	helper.SendSuccess(c, http.StatusOK, "success", nil)
}

func (h *Handler) Delete(c *gin.Context) {
	tokenID := c.Param("id")

	ok, err := h.tokenService.Delete(c, tokenID)
	if err != nil {
		h.sendServiceError(c, err)
		return
	}
	if !ok {
		helper.SendError(c, http.StatusNotFound, fmt.Errorf("device token not found"), helper.ErrNotFound)
		return
	}

	helper.SendSuccess(c, http.StatusOK, "success", nil)
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
