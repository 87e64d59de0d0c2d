package handler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"crmbridge/crm/config"
	"crmbridge/crm/pkg/crm"
	"crmbridge/crm/pkg/lookup"
	"crmbridge/tools/ioc"
	"crmbridge/tools/logger"
	"crmbridge/tools/middleware"
)

// JournalAppName Journal 在 ioc.ConController 中的名称
const JournalAppName = "journal"

type ApiHandler struct {
	handler *Handler
}

func init() {
	ioc.Api.RegisterContainer("CRMHandler", &ApiHandler{})
}

// Init 从 ioc.ConController 取出 CRM 客户端、查询服务和 Journal
func (h *ApiHandler) Init() error {
	c, err := config.LoadConfig()
	if err != nil {
		return err
	}

	client, ok := ioc.ConController.GetMapContainer(crm.AppName).(CRM)
	if !ok {
		return fmt.Errorf("%s is not registered", crm.AppName)
	}
	finder, ok := ioc.ConController.GetMapContainer(lookup.AppName).(ClientFinder)
	if !ok {
		return fmt.Errorf("%s is not registered", lookup.AppName)
	}
	journal, ok := ioc.ConController.GetMapContainer(JournalAppName).(crm.Journal)
	if !ok {
		return fmt.Errorf("%s is not registered", JournalAppName)
	}

	h.handler = NewHandler(client, finder, journal, logger.NewLogger(c.LogLevel))
	h.handler.Register(c.Application.GinRootRouter().Group("crm"))
	return nil
}

// Handler HTTP处理器
type Handler struct {
	crm     CRM
	finder  ClientFinder
	journal crm.Journal
	logger  *logger.Logger
}

// NewHandler 创建新的HTTP处理器
func NewHandler(client CRM, finder ClientFinder, journal crm.Journal, log *logger.Logger) *Handler {
	if log == nil {
		log = logger.NewLogger("info")
	}
	return &Handler{
		crm:     client,
		finder:  finder,
		journal: journal,
		logger:  log.With("handler"),
	}
}

// Register 注册 /crm 下的路由
func (h *Handler) Register(r gin.IRouter) {
	r.Use(h.logRequest)

	r.POST("/client/lookup", h.FindClients)
	r.POST("/document", h.CreateDocument)

	for _, e := range h.entities() {
		e.register(r)
	}
}

// logRequest 每个请求写一条 request 日志
func (h *Handler) logRequest(c *gin.Context) {
	h.journal.Logf(logger.CategoryRequest, "%s %s from %s", c.Request.Method, c.Request.URL.RequestURI(), c.ClientIP())
	c.Next()
}

// FindClients POST /client/lookup
func (h *Handler) FindClients(c *gin.Context) {
	var req LookupRequest
	if !h.bind(c, &req) {
		return
	}

	clients, err := h.finder.FindClients(c.Request.Context(), req.Phone, req.IIN)
	if err != nil {
		h.fail(c, err)
		return
	}
	middleware.Success(clients, c)
}

// CreateDocument POST /document，生成文档后打开公开链接
func (h *Handler) CreateDocument(c *gin.Context) {
	var req DocumentRequest
	if !h.bind(c, &req) {
		return
	}
	if req.TemplateID <= 0 || req.EntityTypeID <= 0 || req.EntityID <= 0 {
		h.fail(c, middleware.ErrValidateFailed("template_id, entity_type_id and entity_id are required"))
		return
	}

	ctx := c.Request.Context()
	docID, err := h.crm.CreateDocument(ctx, req.TemplateID, req.EntityTypeID, req.EntityID, req.Values)
	if err != nil {
		h.fail(c, err)
		return
	}

	publicURL, err := h.crm.EnablePublicURL(ctx, docID)
	if err != nil {
		h.fail(c, err)
		return
	}

	middleware.Success(DocumentResponse{DocumentID: docID, PublicURL: publicURL}, c)
}

// bind 解析 JSON body，空 body 视为空对象
func (h *Handler) bind(c *gin.Context, obj any) bool {
	if err := c.ShouldBindJSON(obj); err != nil && !errors.Is(err, io.EOF) {
		h.journal.Logf(logger.CategoryError, "invalid request body for %s: %v", c.FullPath(), err)
		middleware.Failed(middleware.ErrValidateFailed("invalid request body: %v", err), c)
		return false
	}
	return true
}

// fail 业务错误到 HTTP 状态码的映射：
// 校验失败、查无结果 400；CRM 调用失败 502；其余 500
func (h *Handler) fail(c *gin.Context, err error) {
	var (
		validationErr *lookup.ValidationError
		callErr       *crm.CallError
		apiErr        *middleware.ApiException
	)

	switch {
	case errors.As(err, &apiErr):
	case errors.As(err, &validationErr):
		apiErr = middleware.ErrValidateFailed("%s", validationErr.Error())
	case errors.Is(err, lookup.ErrNotFound), errors.Is(err, crm.ErrNoResult):
		apiErr = middleware.ErrNotFound("%s", err.Error())
	case errors.As(err, &callErr):
		apiErr = middleware.ErrBadGateway("CRM request %s failed", callErr.Method)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		apiErr = middleware.ErrServerInternal("request aborted: %v", err)
	default:
		apiErr = middleware.ErrServerInternal("%s", err.Error())
	}

	if apiErr.HttpCode >= http.StatusInternalServerError {
		h.logger.Error("%s %s: %v", c.Request.Method, c.FullPath(), err)
	} else {
		h.logger.Warn("%s %s: %v", c.Request.Method, c.FullPath(), err)
	}
	middleware.Failed(apiErr, c)
}

func pathID(c *gin.Context, name string) (int64, error) {
	raw := c.Param(name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, middleware.ErrValidateFailed("%s must be a positive integer, got %q", name, raw)
	}
	return id, nil
}
