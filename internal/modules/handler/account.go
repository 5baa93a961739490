package handler

import (
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/threedv/saiban/internal/middleware"
	"github.com/threedv/saiban/internal/modules/serializer"
	"github.com/threedv/saiban/internal/modules/service"
)

type AccountHandler struct {
	svc service.EmployeeService
}

func NewAccountHandler(s service.EmployeeService) *AccountHandler {
	return &AccountHandler{svc: s}
}

type LoginReq struct {
	EmployeeID string `json:"employee_id" binding:"required"`
	Password   string `json:"password" binding:"required"`
}

func (h *AccountHandler) Login(c *gin.Context) {
	req := LoginReq{}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("", err))
		return
	}

	e, err := h.svc.Authenticate(c.Request.Context(), req.EmployeeID, req.Password)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	sess := sessions.Default(c)
	sess.Set(middleware.SessionKeyEmployeeID, e.EmployeeID)
	sess.Set(middleware.SessionKeyEmployeeName, e.Name)
	sess.Set(middleware.SessionKeyRole, e.Role)
	if err := sess.Save(); err != nil {
		c.JSON(http.StatusInternalServerError, serializer.Err(http.StatusInternalServerError, "session error", err))
		return
	}

	c.JSON(http.StatusOK, serializer.Response{Data: e, Msg: "ログインしました"})
}

func (h *AccountHandler) Logout(c *gin.Context) {
	sess := sessions.Default(c)
	sess.Clear()
	if err := sess.Save(); err != nil {
		c.JSON(http.StatusInternalServerError, serializer.Err(http.StatusInternalServerError, "session error", err))
		return
	}
	c.JSON(http.StatusOK, serializer.Response{Msg: "ログアウトしました"})
}

type ChangePasswordReq struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required,min=8"`
}

// ChangePassword changes the logged-in employee's own password.
func (h *AccountHandler) ChangePassword(c *gin.Context) {
	req := ChangePasswordReq{}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("", err))
		return
	}

	editor := middleware.CurrentEditor(c)
	if err := h.svc.ChangePassword(c.Request.Context(), editor.ID, req.CurrentPassword, req.NewPassword); err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, serializer.Response{Msg: "パスワードを変更しました"})
}
