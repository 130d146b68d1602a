package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"pickup-ledger/server/internal/history"
	"pickup-ledger/server/internal/ledger"
	"pickup-ledger/server/internal/logging"
	"pickup-ledger/server/internal/metrics"
	"pickup-ledger/server/internal/model"
	"pickup-ledger/server/internal/pickup"
)

// StudentLister 提供名册查询，roster.Roster 满足该接口。
type StudentLister interface {
	Students() []model.StudentName
}

type Server struct {
	ledger         *ledger.Ledger
	students       StudentLister
	metrics        *metrics.Metrics
	logger         *zap.Logger
	allowedOrigins map[string]struct{}

	upgrader websocket.Upgrader
}

// Options 是 Server 的可选依赖。
type Options struct {
	Metrics        *metrics.Metrics
	Logger         *zap.Logger
	AllowedOrigins []string
}

func NewServer(l *ledger.Ledger, students StudentLister, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	origins := make(map[string]struct{}, len(opts.AllowedOrigins))
	for _, o := range opts.AllowedOrigins {
		origins[o] = struct{}{}
	}

	s := &Server{
		ledger:         l,
		students:       students,
		metrics:        opts.Metrics,
		logger:         logger,
		allowedOrigins: origins,
	}
	s.upgrader = websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			// 非浏览器客户端不带 Origin。
			return origin == "" || s.originAllowed(origin)
		},
	}
	return s
}

func (s *Server) Routes() http.Handler {
	engine := gin.New()
	engine.Use(logging.GinMiddleware(s.logger), gin.Recovery(), s.corsMiddleware())
	engine.GET("/healthz", s.handleHealthz)
	if s.metrics != nil {
		engine.GET("/metrics", gin.WrapH(s.metrics.Handler()))
	}

	apiGroup := engine.Group("/api")
	apiGroup.GET("/students", s.handleStudents)
	apiGroup.POST("/pickups/preview", s.handlePreview)
	apiGroup.GET("/pickups/preview/stream", s.handlePreviewStream)

	users := apiGroup.Group("/users/:user_id/pickups")
	users.GET("", s.handleListHistories)
	users.GET("/:event_id", s.handleGetHistory)
	users.PUT("/:event_id", s.handlePutHistory)
	users.DELETE("/:event_id", s.handleDeleteHistory)
	users.GET("/:event_id/revisions", s.handleRevisions)
	return engine
}

// handleHealthz 返回服务健康状态。
func (s *Server) handleHealthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// handleStudents 返回当前名册。
func (s *Server) handleStudents(c *gin.Context) {
	c.JSON(http.StatusOK, s.students.Students())
}

type previewRequest struct {
	Raw string `json:"raw"`
}

type previewResponse struct {
	Sessions     []model.PullSession     `json:"sessions"`
	Summary      model.Summary           `json:"summary"`
	Rules        []pickup.Rule           `json:"rules"`
	SkippedLines []int                   `json:"skipped_lines"`
	Unresolved   []pickup.UnresolvedName `json:"unresolved"`
}

func newPreviewResponse(r pickup.Report) previewResponse {
	return previewResponse{
		Sessions:     r.Sessions,
		Summary:      pickup.Summarize(r.Sessions),
		Rules:        r.Rules,
		SkippedLines: r.SkippedLines,
		Unresolved:   r.Unresolved,
	}
}

// handlePreview 解析但不保存，用于编辑器里的即时预览。
func (s *Server) handlePreview(c *gin.Context) {
	var req previewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	c.JSON(http.StatusOK, newPreviewResponse(s.ledger.Preview(req.Raw)))
}

type historyResponse struct {
	*model.PickupHistory
	Summary model.Summary `json:"summary"`
}

func newHistoryResponse(h *model.PickupHistory) historyResponse {
	return historyResponse{PickupHistory: h, Summary: pickup.Summarize(h.Result)}
}

// handleListHistories 返回某个用户的全部抽卡记录。
func (s *Server) handleListHistories(c *gin.Context) {
	list, err := s.ledger.List(c.Request.Context(), c.Param("user_id"))
	if err != nil {
		s.writeError(c, err, "list pickup histories failed")
		return
	}
	out := make([]historyResponse, len(list))
	for i := range list {
		out[i] = newHistoryResponse(&list[i])
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) handleGetHistory(c *gin.Context) {
	h, err := s.ledger.Get(c.Request.Context(), c.Param("user_id"), c.Param("event_id"))
	if err != nil {
		s.writeError(c, err, "load pickup history failed")
		return
	}
	c.JSON(http.StatusOK, newHistoryResponse(h))
}

type putHistoryRequest struct {
	Raw          string `json:"raw"`
	SubmissionID string `json:"submission_id"`
}

type putHistoryResponse struct {
	historyResponse
	SkippedLines []int                   `json:"skipped_lines"`
	Unresolved   []pickup.UnresolvedName `json:"unresolved"`
	Applied      bool                    `json:"applied"`
}

// handlePutHistory 解析原始文本并整体替换该活动下的记录。
func (s *Server) handlePutHistory(c *gin.Context) {
	var req putHistoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if req.SubmissionID == "" {
		req.SubmissionID = uuid.NewString()
	}

	res, err := s.ledger.Submit(c.Request.Context(), ledger.SubmitRequest{
		UserID:       c.Param("user_id"),
		EventID:      c.Param("event_id"),
		Raw:          req.Raw,
		SubmissionID: req.SubmissionID,
	})
	if err != nil {
		s.writeError(c, err, "save pickup history failed")
		return
	}

	c.JSON(http.StatusOK, putHistoryResponse{
		historyResponse: newHistoryResponse(res.History),
		SkippedLines:    res.Report.SkippedLines,
		Unresolved:      res.Report.Unresolved,
		Applied:         res.Applied,
	})
}

func (s *Server) handleDeleteHistory(c *gin.Context) {
	if err := s.ledger.Delete(c.Request.Context(), c.Param("user_id"), c.Param("event_id")); err != nil {
		s.writeError(c, err, "delete pickup history failed")
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) handleRevisions(c *gin.Context) {
	revs, err := s.ledger.Revisions(c.Request.Context(), c.Param("user_id"), c.Param("event_id"))
	if err != nil {
		s.writeError(c, err, "list revisions failed")
		return
	}
	c.JSON(http.StatusOK, revs)
}

// writeError 把领域错误映射为 HTTP 状态码。
// 存储类错误只记录到服务端日志，返回给前端的信息保持简洁。
func (s *Server) writeError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, ledger.ErrInvalidKey):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, history.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "pickup history not found"})
	default:
		s.logger.Error(fallback,
			zap.String("user_id", c.Param("user_id")),
			zap.String("event_id", c.Param("event_id")),
			zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": fallback})
	}
}

func (s *Server) originAllowed(origin string) bool {
	_, ok := s.allowedOrigins[strings.TrimSuffix(origin, "/")]
	return ok
}

func (s *Server) corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if origin != "" && s.originAllowed(origin) {
			c.Header("Access-Control-Allow-Origin", origin)
			c.Header("Vary", "Origin")
			c.Header("Access-Control-Allow-Credentials", "true")
			c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")
			c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		}
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
