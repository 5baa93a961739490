package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/threedv/saiban/internal/config"
	"github.com/threedv/saiban/internal/infra/board"
)

type MockBoardClient struct {
	mock.Mock
}

func (m *MockBoardClient) Configured() bool {
	return m.Called().Bool(0)
}

func (m *MockBoardClient) FindByCaseNumber(ctx context.Context, caseNumber string) (*board.Project, error) {
	args := m.Called(ctx, caseNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*board.Project), args.Error(1)
}

func (m *MockBoardClient) ListRecent(ctx context.Context, perPage int, onlyUnnumbered bool) ([]board.Project, error) {
	args := m.Called(ctx, perPage, onlyUnnumbered)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]board.Project), args.Error(1)
}

func (m *MockBoardClient) SetManagementNumber(ctx context.Context, projectID, number string) error {
	args := m.Called(ctx, projectID, number)
	return args.Error(0)
}

func newBoardHandler(client board.Client) (*BoardHandler, *gin.Engine) {
	gin.SetMode(gin.TestMode)
	cfg := &config.Config{}
	cfg.Board.ListPerPage = 100
	return NewBoardHandler(client, cfg), gin.New()
}

func TestBoardHandler_ListRecentProjects(t *testing.T) {
	t.Run("defaults to the configured page size", func(t *testing.T) {
		mockClient := &MockBoardClient{}
		mockClient.On("ListRecent", mock.Anything, 100, false).Return([]board.Project{{ID: "1"}}, nil)

		h, r := newBoardHandler(mockClient)
		r.GET("/board/projects", h.ListRecentProjects)

		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/board/projects", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		mockClient.AssertExpectations(t)
	})

	t.Run("unnumbered filter and explicit page size", func(t *testing.T) {
		mockClient := &MockBoardClient{}
		mockClient.On("ListRecent", mock.Anything, 25, true).Return([]board.Project{}, nil)

		h, r := newBoardHandler(mockClient)
		r.GET("/board/projects", h.ListRecentProjects)

		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/board/projects?per_page=25&unnumbered=true", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		mockClient.AssertExpectations(t)
	})

	t.Run("page size out of range", func(t *testing.T) {
		h, r := newBoardHandler(&MockBoardClient{})
		r.GET("/board/projects", h.ListRecentProjects)

		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/board/projects?per_page=500", nil))

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("unconfigured credentials give 503", func(t *testing.T) {
		mockClient := &MockBoardClient{}
		mockClient.On("ListRecent", mock.Anything, 100, false).Return(nil, board.ErrNotConfigured)

		h, r := newBoardHandler(mockClient)
		r.GET("/board/projects", h.ListRecentProjects)

		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/board/projects", nil))

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	})
}

func TestBoardHandler_GetProjectByCaseNumber(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		mockClient := &MockBoardClient{}
		mockClient.On("FindByCaseNumber", mock.Anything, "B-1234").
			Return(&board.Project{ID: "90532", ProjectNo: "B-1234"}, nil)

		h, r := newBoardHandler(mockClient)
		r.GET("/board/projects/:caseNumber", h.GetProjectByCaseNumber)

		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/board/projects/B-1234", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "90532")
	})

	t.Run("absent case number", func(t *testing.T) {
		mockClient := &MockBoardClient{}
		mockClient.On("FindByCaseNumber", mock.Anything, "B-0000").Return(nil, nil)

		h, r := newBoardHandler(mockClient)
		r.GET("/board/projects/:caseNumber", h.GetProjectByCaseNumber)

		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/board/projects/B-0000", nil))

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("upstream failure gives 502", func(t *testing.T) {
		mockClient := &MockBoardClient{}
		mockClient.On("FindByCaseNumber", mock.Anything, "B-1234").Return(nil, assert.AnError)

		h, r := newBoardHandler(mockClient)
		r.GET("/board/projects/:caseNumber", h.GetProjectByCaseNumber)

		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/board/projects/B-1234", nil))

		assert.Equal(t, http.StatusBadGateway, w.Code)
	})
}
