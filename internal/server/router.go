package server

import (
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/devnnex/vision-academy/internal/catalog"
	"github.com/devnnex/vision-academy/internal/session"
	"github.com/devnnex/vision-academy/internal/syncer"
)

const userContextKey = "vision_session_user"

var (
	errMissingSessions       = errors.New("session service dependency required")
	errMissingTokenManager   = errors.New("token manager dependency required")
	errMissingCatalogService = errors.New("catalog service dependency required")
	errMissingStore          = errors.New("catalog store dependency required")
)

// TokenManager issues and validates session tokens.
type TokenManager interface {
	IssueSessionToken(user session.User) (string, int64, error)
	ValidateToken(token string) (session.User, error)
}

// Renderer re-runs the render fan-out, e.g. after login changes the
// permitted view.
type Renderer interface {
	RenderAll()
}

// Dependencies wires the HTTP surface. Sessions, tokens, the catalog
// service and the store are required.
type Dependencies struct {
	Sessions *session.Service
	Tokens   TokenManager
	Catalog  *catalog.Service
	Store    *catalog.Store
	Syncer   *syncer.Coordinator
	Events   *EventDispatcher
	Renderer Renderer
	Logger   *zap.Logger
}

// NewHTTPHandler builds the gin handler serving the render-layer inputs
// and the CRUD command endpoints.
func NewHTTPHandler(deps Dependencies) (http.Handler, error) {
	if deps.Sessions == nil {
		return nil, errMissingSessions
	}
	if deps.Tokens == nil {
		return nil, errMissingTokenManager
	}
	if deps.Catalog == nil {
		return nil, errMissingCatalogService
	}
	if deps.Store == nil {
		return nil, errMissingStore
	}

	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders: []string{"Authorization", "Content-Type"},
		MaxAge:       12 * time.Hour,
	}))

	handler := &httpHandler{
		sessions: deps.Sessions,
		tokens:   deps.Tokens,
		catalog:  deps.Catalog,
		store:    deps.Store,
		syncer:   deps.Syncer,
		events:   deps.Events,
		renderer: deps.Renderer,
		logger:   logger,
	}

	router.POST("/auth/login", handler.handleLogin)

	authorized := router.Group("/api")
	authorized.Use(handler.authorizeRequest)
	authorized.POST("/logout", handler.handleLogout)
	authorized.GET("/session", handler.handleSession)
	authorized.GET("/videos", handler.handleListVideos)
	authorized.GET("/videos/export", handler.handleExportVideos)
	authorized.GET("/categories", handler.handleListCategories)
	authorized.GET("/faqs", handler.handleListFAQs)
	authorized.GET("/images", handler.handleListImages)
	authorized.GET("/onboarding", handler.handleOnboarding)
	authorized.POST("/onboarding/complete", handler.handleCompleteOnboarding)
	authorized.GET("/sync", handler.handleSyncState)
	if deps.Events != nil {
		authorized.GET("/events", handler.handleEvents)
	}

	admin := authorized.Group("/")
	admin.Use(handler.requireAdmin)
	admin.POST("/videos", handler.handleSaveVideo)
	admin.DELETE("/videos/:id", handler.handleDeleteVideo)
	admin.POST("/videos/import", handler.handleImportVideos)
	admin.POST("/categories", handler.handleAddCategory)
	admin.POST("/faqs", handler.handleAddFAQ)
	admin.PUT("/faqs/:id", handler.handleUpdateFAQ)
	admin.DELETE("/faqs/:id", handler.handleRemoveFAQ)
	admin.POST("/images", handler.handleUploadImages)
	admin.POST("/sync/refresh", handler.handleRefresh)

	return router, nil
}

type httpHandler struct {
	sessions *session.Service
	tokens   TokenManager
	catalog  *catalog.Service
	store    *catalog.Store
	syncer   *syncer.Coordinator
	events   *EventDispatcher
	renderer Renderer
	logger   *zap.Logger
}

type loginRequestPayload struct {
	Role     string `json:"role"`
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponsePayload struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int64  `json:"expires_in"`
	TokenType   string `json:"token_type"`
	Role        string `json:"role"`
	Name        string `json:"name"`
}

func (h *httpHandler) handleLogin(c *gin.Context) {
	var request loginRequestPayload
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}
	role, err := session.ParseRole(request.Role)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_role"})
		return
	}
	user, err := h.sessions.Login(role, request.Username, request.Password)
	if err != nil {
		h.logger.Warn("login rejected", zap.String("role", request.Role), zap.Error(err))
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	token, expiresIn, err := h.tokens.IssueSessionToken(user)
	if err != nil {
		h.logger.Error("failed to issue session token", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "token_issue_failed"})
		return
	}
	h.render()
	c.JSON(http.StatusOK, loginResponsePayload{
		AccessToken: token,
		ExpiresIn:   expiresIn,
		TokenType:   "Bearer",
		Role:        string(user.Role),
		Name:        user.Name,
	})
}

func (h *httpHandler) handleLogout(c *gin.Context) {
	h.sessions.Logout()
	h.render()
	c.Status(http.StatusNoContent)
}

func (h *httpHandler) handleSession(c *gin.Context) {
	user, _ := currentUser(c)
	c.JSON(http.StatusOK, gin.H{"user": user})
}

func (h *httpHandler) authorizeRequest(c *gin.Context) {
	header := c.GetHeader("Authorization")
	token, found := strings.CutPrefix(header, "Bearer ")
	if !found || strings.TrimSpace(token) == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	user, err := h.tokens.ValidateToken(strings.TrimSpace(token))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	c.Set(userContextKey, user)
	c.Next()
}

func (h *httpHandler) requireAdmin(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok || user.Role != session.RoleAdmin {
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "admin_only"})
		return
	}
	c.Next()
}

func currentUser(c *gin.Context) (session.User, bool) {
	value, exists := c.Get(userContextKey)
	if !exists {
		return session.User{}, false
	}
	user, ok := value.(session.User)
	return user, ok
}

func (h *httpHandler) handleListVideos(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"videos": h.store.Videos()})
}

func (h *httpHandler) handleListCategories(c *gin.Context) {
	audience := catalog.AudienceStudent
	if user, ok := currentUser(c); ok && user.Role == session.RoleAdmin {
		audience = catalog.AudienceAdmin
	}
	c.JSON(http.StatusOK, gin.H{"categories": h.store.Categories(audience)})
}

func (h *httpHandler) handleListFAQs(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"faqs": h.store.FAQs()})
}

func (h *httpHandler) handleListImages(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"images": h.store.Images()})
}

// handleOnboarding reports the onboarding video (the first entry in the
// sentinel category) and whether onboarding has already been completed.
func (h *httpHandler) handleOnboarding(c *gin.Context) {
	var onboarding *catalog.Video
	for _, video := range h.store.Videos() {
		if video.Category == catalog.SentinelCategory {
			found := video
			onboarding = &found
			break
		}
	}
	c.JSON(http.StatusOK, gin.H{
		"video": onboarding,
		"done":  h.sessions.OnboardingDone(),
	})
}

func (h *httpHandler) handleCompleteOnboarding(c *gin.Context) {
	h.sessions.CompleteOnboarding()
	c.Status(http.StatusNoContent)
}

type saveVideoPayload struct {
	Title     string `json:"title"`
	Link      string `json:"link"`
	Category  string `json:"category"`
	EditingID string `json:"editing_id"`
}

func (h *httpHandler) handleSaveVideo(c *gin.Context) {
	var request saveVideoPayload
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}
	input := catalog.VideoInput{
		Title:    strings.TrimSpace(request.Title),
		Link:     strings.TrimSpace(request.Link),
		Category: strings.TrimSpace(request.Category),
	}
	video, err := h.catalog.SaveVideo(c.Request.Context(), input, strings.TrimSpace(request.EditingID))
	switch {
	case errors.Is(err, catalog.ErrMissingTitle),
		errors.Is(err, catalog.ErrMissingLink),
		errors.Is(err, catalog.ErrMissingCategory):
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing_required_field"})
		return
	case errors.Is(err, catalog.ErrVideoNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "video_not_found"})
		return
	case err != nil:
		h.logger.Error("video save failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "save_failed"})
		return
	}
	status := http.StatusCreated
	if request.EditingID != "" {
		status = http.StatusOK
	}
	c.JSON(status, gin.H{"video": video})
}

// handleDeleteVideo removes a video. The UI confirms interactively before
// issuing the request, so reaching this handler is the confirmation. An
// unknown id is still a success: the entry is gone either way.
func (h *httpHandler) handleDeleteVideo(c *gin.Context) {
	if err := h.catalog.DeleteVideo(c.Request.Context(), c.Param("id")); err != nil {
		h.logger.Error("video delete failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "delete_failed"})
		return
	}
	c.Status(http.StatusNoContent)
}

type addCategoryPayload struct {
	Name string `json:"name"`
}

func (h *httpHandler) handleAddCategory(c *gin.Context) {
	var request addCategoryPayload
	if err := c.ShouldBindJSON(&request); err != nil || strings.TrimSpace(request.Name) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "category_name_required"})
		return
	}
	if err := h.catalog.AddCategory(c.Request.Context(), strings.TrimSpace(request.Name)); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "category_name_required"})
		return
	}
	c.Status(http.StatusNoContent)
}

type faqPayload struct {
	Q string `json:"q"`
	A string `json:"a"`
}

func (h *httpHandler) handleAddFAQ(c *gin.Context) {
	var request faqPayload
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}
	faq, err := h.catalog.AddFAQ(c.Request.Context(), strings.TrimSpace(request.Q), strings.TrimSpace(request.A))
	if errors.Is(err, catalog.ErrMissingQuestion) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "question_required"})
		return
	}
	if err != nil {
		h.logger.Error("faq create failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "faq_create_failed"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"faq": faq})
}

func (h *httpHandler) handleUpdateFAQ(c *gin.Context) {
	var request faqPayload
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}
	err := h.catalog.UpdateFAQ(c.Param("id"), strings.TrimSpace(request.Q), strings.TrimSpace(request.A))
	if errors.Is(err, catalog.ErrMissingQuestion) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "question_required"})
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *httpHandler) handleRemoveFAQ(c *gin.Context) {
	if err := h.catalog.RemoveFAQ(c.Param("id")); err != nil {
		h.logger.Error("faq remove failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "faq_remove_failed"})
		return
	}
	c.Status(http.StatusNoContent)
}

// handleUploadImages accepts a multipart batch under the "images" field.
// The batch is atomic: one unreadable file rejects the whole upload.
func (h *httpHandler) handleUploadImages(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}
	files := form.File["images"]
	uploads := make([]catalog.ImageUpload, 0, len(files))
	opened := make([]io.Closer, 0, len(files))
	defer func() {
		for _, file := range opened {
			_ = file.Close()
		}
	}()
	for _, header := range files {
		file, err := header.Open()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "image_batch_failed"})
			return
		}
		opened = append(opened, file)
		uploads = append(uploads, catalog.ImageUpload{Name: header.Filename, Reader: file})
	}

	images, err := h.catalog.UploadImages(uploads)
	if errors.Is(err, catalog.ErrEmptyImageBatch) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "empty_batch"})
		return
	}
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "image_batch_failed"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"images": images})
}

func (h *httpHandler) handleExportVideos(c *gin.Context) {
	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", `attachment; filename="videos.csv"`)
	if err := h.catalog.ExportCSV(c.Writer); err != nil {
		if errors.Is(err, catalog.ErrNoVideosToExport) {
			c.JSON(http.StatusNotFound, gin.H{"error": "no_videos"})
			return
		}
		h.logger.Error("csv export failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "export_failed"})
	}
}

// handleImportVideos reads CSV either from a multipart "file" field or
// from the raw request body.
func (h *httpHandler) handleImportVideos(c *gin.Context) {
	var reader io.Reader = c.Request.Body
	if strings.HasPrefix(c.ContentType(), "multipart/") {
		fileHeader, err := c.FormFile("file")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
			return
		}
		file, err := fileHeader.Open()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
			return
		}
		defer func() { _ = file.Close() }()
		reader = file
	}

	imported, err := h.catalog.ImportCSV(reader)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_csv"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"imported": imported})
}

func (h *httpHandler) handleSyncState(c *gin.Context) {
	if h.syncer == nil {
		c.JSON(http.StatusOK, gin.H{"state": "unavailable"})
		return
	}
	payload := gin.H{"state": string(h.syncer.State())}
	if err := h.syncer.LastError(); err != nil {
		payload["last_error"] = err.Error()
	}
	c.JSON(http.StatusOK, payload)
}

func (h *httpHandler) handleRefresh(c *gin.Context) {
	if h.syncer == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "sync_unavailable"})
		return
	}
	// Failure releases the loading guard and permits a later retry; the
	// caller only learns the resulting state.
	_ = h.syncer.Refresh(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"state": string(h.syncer.State())})
}

func (h *httpHandler) handleEvents(c *gin.Context) {
	stream, cleanup := h.events.Subscribe(c.Request.Context())
	defer cleanup()

	heartbeat := time.NewTicker(25 * time.Second)
	defer heartbeat.Stop()

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Stream(func(w io.Writer) bool {
		select {
		case event, open := <-stream:
			if !open {
				return false
			}
			c.SSEvent(event.Type, event)
			return true
		case <-heartbeat.C:
			c.SSEvent("heartbeat", time.Now().UTC())
			return true
		case <-c.Request.Context().Done():
			return false
		}
	})
}

func (h *httpHandler) render() {
	if h.renderer != nil {
		h.renderer.RenderAll()
	}
}
