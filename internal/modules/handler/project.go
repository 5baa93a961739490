package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/threedv/saiban/internal/middleware"
	"github.com/threedv/saiban/internal/modules/serializer"
	"github.com/threedv/saiban/internal/modules/service"
)

type ProjectHandler struct {
	svc service.ProjectService
}

func NewProjectHandler(s service.ProjectService) *ProjectHandler {
	return &ProjectHandler{svc: s}
}

type CreateProjectReq struct {
	Category    string    `json:"category" binding:"required,len=2"`
	StaffID     string    `json:"staff_id" binding:"required"`
	CaseNumber  string    `json:"case_number"`
	ProjectName string    `json:"project_name" binding:"required"`
	ClientName  string    `json:"client_name" binding:"required"`
	Budget      int64     `json:"budget" binding:"min=0"`
	Deadline    time.Time `json:"deadline" binding:"required"`
	Remarks     string    `json:"remarks"`
}

// CreateProject assigns the next order number and stores the case.
func (h *ProjectHandler) CreateProject(c *gin.Context) {
	req := CreateProjectReq{}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("", err))
		return
	}

	p, err := h.svc.Create(c.Request.Context(), service.CreateProjectInput{
		Category:    req.Category,
		StaffID:     req.StaffID,
		CaseNumber:  req.CaseNumber,
		ProjectName: req.ProjectName,
		ClientName:  req.ClientName,
		Budget:      req.Budget,
		Deadline:    req.Deadline,
		Remarks:     req.Remarks,
	}, middleware.CurrentEditor(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, serializer.Response{
		Data: p,
		Msg:  fmt.Sprintf("受注番号 %s を採番しました", p.ProjectNumber),
	})
}

type ListProjectsReq struct {
	Category string `form:"category"`
	Keyword  string `form:"keyword"`
}

// ListProjects searches cases by exact category and/or keyword substring.
func (h *ProjectHandler) ListProjects(c *gin.Context) {
	req := ListProjectsReq{}
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("", err))
		return
	}

	items, err := h.svc.List(c.Request.Context(), service.ListProjectsInput{
		Category: req.Category,
		Keyword:  req.Keyword,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, serializer.Response{Data: items})
}

// GetProject returns one case with its full edit history.
func (h *ProjectHandler) GetProject(c *gin.Context) {
	p, err := h.svc.Get(c.Request.Context(), c.Param("number"))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, serializer.Response{Data: p})
}

type UpdateProjectReq struct {
	Category    string    `json:"category" binding:"required,len=2"`
	StaffID     string    `json:"staff_id" binding:"required"`
	CaseNumber  string    `json:"case_number"`
	ProjectName string    `json:"project_name" binding:"required"`
	ClientName  string    `json:"client_name" binding:"required"`
	Budget      int64     `json:"budget" binding:"min=0"`
	Deadline    time.Time `json:"deadline" binding:"required"`
	Remarks     string    `json:"remarks"`
}

// UpdateProject applies the proposed field set. A proposal identical to the
// stored record reports 変更はありませんでした and writes nothing.
func (h *ProjectHandler) UpdateProject(c *gin.Context) {
	req := UpdateProjectReq{}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("", err))
		return
	}

	out, err := h.svc.Update(c.Request.Context(), c.Param("number"), service.UpdateProjectInput{
		Category:    req.Category,
		StaffID:     req.StaffID,
		CaseNumber:  req.CaseNumber,
		ProjectName: req.ProjectName,
		ClientName:  req.ClientName,
		Budget:      req.Budget,
		Deadline:    req.Deadline,
		Remarks:     req.Remarks,
	}, middleware.CurrentEditor(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	msg := "変更はありませんでした"
	if out.Changed {
		msg = "案件情報を更新しました"
	}
	c.JSON(http.StatusOK, serializer.Response{Data: out.Project, Msg: msg})
}

// DeleteProject removes a case and its history. Deleting an unknown number
// succeeds; the end state is the same.
func (h *ProjectHandler) DeleteProject(c *gin.Context) {
	number := c.Param("number")
	if err := h.svc.Delete(c.Request.Context(), number); err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, serializer.Response{
		Msg: fmt.Sprintf("案件（受注番号: %s）を削除しました", number),
	})
}
