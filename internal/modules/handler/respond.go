package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/threedv/saiban/internal/modules/serializer"
	"github.com/threedv/saiban/internal/modules/service"
)

// respondServiceError maps service sentinels onto HTTP statuses and the
// user-facing Japanese messages the old UI showed.
func respondServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrProjectNotFound):
		c.JSON(http.StatusNotFound, serializer.NotFoundErr("案件が見つかりません", err))
	case errors.Is(err, service.ErrEmployeeNotFound):
		c.JSON(http.StatusNotFound, serializer.NotFoundErr("担当者が見つかりません", err))
	case errors.Is(err, service.ErrEmployeeExists):
		c.JSON(http.StatusConflict, serializer.ConflictErr("この社員番号は既に登録されています", err))
	case errors.Is(err, service.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, serializer.AuthErr("パスワードが正しくありません"))
	case errors.Is(err, service.ErrValidation):
		c.JSON(http.StatusBadRequest, serializer.ParamErr("入力内容に誤りがあります", err))
	case errors.Is(err, service.ErrNumberConflict):
		c.JSON(http.StatusConflict, serializer.ConflictErr("採番が競合しました。もう一度お試しください", err))
	case errors.Is(err, service.ErrSequenceExhausted):
		c.JSON(http.StatusConflict, serializer.ConflictErr("この年・カテゴリの連番が上限に達しました", err))
	default:
		c.JSON(http.StatusInternalServerError, serializer.DBErr("", err))
	}
}
