package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/threedv/saiban/internal/modules/serializer"
	"github.com/threedv/saiban/internal/modules/service"
)

// EmployeeHandler serves the admin-only directory endpoints. The admin gate
// itself is a route middleware, not something these methods re-check.
type EmployeeHandler struct {
	svc service.EmployeeService
}

func NewEmployeeHandler(s service.EmployeeService) *EmployeeHandler {
	return &EmployeeHandler{svc: s}
}

type RegisterEmployeeReq struct {
	EmployeeID string `json:"employee_id" binding:"required"`
	Name       string `json:"name" binding:"required"`
	Email      string `json:"email" binding:"omitempty,email"`
}

// RegisterEmployee creates a directory entry. The initial password is the
// employee id; the account owner is expected to change it.
func (h *EmployeeHandler) RegisterEmployee(c *gin.Context) {
	req := RegisterEmployeeReq{}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("必須項目を入力してください", err))
		return
	}

	e, err := h.svc.Register(c.Request.Context(), service.RegisterEmployeeInput{
		EmployeeID: req.EmployeeID,
		Name:       req.Name,
		Email:      req.Email,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, serializer.Response{
		Data: e,
		Msg:  fmt.Sprintf("アカウントを作成しました。社員番号: %s、初期パスワード: %s", e.EmployeeID, e.EmployeeID),
	})
}

func (h *EmployeeHandler) ListEmployees(c *gin.Context) {
	items, err := h.svc.List(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, serializer.Response{Data: items})
}

type UpdateEmployeeReq struct {
	Name     *string `json:"name"`
	Email    *string `json:"email"`
	IsActive *bool   `json:"is_active"`
	Role     *string `json:"role"`
}

func (h *EmployeeHandler) UpdateEmployee(c *gin.Context) {
	req := UpdateEmployeeReq{}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("", err))
		return
	}

	e, err := h.svc.Update(c.Request.Context(), c.Param("employeeID"), service.UpdateEmployeeInput{
		Name:     req.Name,
		Email:    req.Email,
		IsActive: req.IsActive,
		Role:     req.Role,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, serializer.Response{Data: e, Msg: "社員情報を更新しました"})
}
