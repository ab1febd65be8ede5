package story

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	apperrors "github.com/lullaby-ai/server/internal/shared/errors"
	"github.com/lullaby-ai/server/internal/shared/middleware"
	"github.com/lullaby-ai/server/internal/shared/task"
)

// Handler handles HTTP requests for stories and generation jobs.
type Handler struct {
	service *Service
}

// NewHandler creates a new story handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the story routes. All routes require auth.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	stories := r.Group("/stories")
	{
		stories.POST("/generations", h.Generate)
		stories.GET("/generations/:request_id", h.GenerationStatus)
		stories.GET("", h.List)
		stories.GET("/:id", h.Get)
		stories.GET("/:id/images", h.Images)
	}
}

// Generate handles story generation.
//
//	@Summary		Generate a story
//	@Description	Start a story generation from uploaded photos. Returns a request ID to poll unless sync=true.
//	@Tags			Story
//	@Accept			json
//	@Produce		json
//	@Param			sync	query		bool				false	"Run the generation inline"
//	@Param			request	body		GenerationRequest	true	"Generation request"
//	@Success		202		{object}	GenerationAccepted
//	@Success		201		{object}	StoryResponse
//	@Failure		400		{object}	map[string]string
//	@Router			/stories/generations [post]
func (h *Handler) Generate(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req GenerationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if c.Query("sync") == "true" {
		persisted, err := h.service.GenerateSync(c.Request.Context(), userID, &req)
		if err != nil {
			handleError(c, err)
			return
		}
		c.JSON(http.StatusCreated, persisted.ToResponse())
		return
	}

	job, err := h.service.Generate(c.Request.Context(), userID, &req)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusAccepted, GenerationAccepted{
		RequestID: job.RequestID,
		Status:    string(job.Status),
	})
}

// GenerationStatus handles generation job status polling.
//
//	@Summary		Get generation status
//	@Tags			Story
//	@Produce		json
//	@Param			request_id	path		string	true	"Request ID"
//	@Success		200			{object}	JobStatusResponse
//	@Failure		404			{object}	map[string]string
//	@Router			/stories/generations/{request_id} [get]
func (h *Handler) GenerationStatus(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	requestID, err := uuid.Parse(c.Param("request_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request ID"})
		return
	}

	job, err := h.service.Status(c.Request.Context(), userID, requestID)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, JobStatusResponse{
		RequestID: job.RequestID,
		Status:    string(job.Status),
		Progress:  job.Progress,
		Result:    job.Result,
		Error:     job.Error,
	})
}

// List handles listing the user's stories.
//
//	@Summary		List stories
//	@Tags			Story
//	@Produce		json
//	@Param			limit	query		int	false	"Page size"
//	@Param			offset	query		int	false	"Page offset"
//	@Success		200		{object}	map[string]interface{}
//	@Router			/stories [get]
func (h *Handler) List(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	stories, err := h.service.List(c.Request.Context(), userID, limit, offset)
	if err != nil {
		handleError(c, err)
		return
	}

	responses := make([]*StoryResponse, 0, len(stories))
	for _, s := range stories {
		responses = append(responses, s.ToResponse())
	}
	c.JSON(http.StatusOK, gin.H{"stories": responses})
}

// Get handles fetching one story.
//
//	@Summary		Get a story
//	@Tags			Story
//	@Produce		json
//	@Param			id	path		string	true	"Story ID"
//	@Success		200	{object}	StoryResponse
//	@Failure		404	{object}	map[string]string
//	@Router			/stories/{id} [get]
func (h *Handler) Get(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	storyID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid story ID"})
		return
	}

	persisted, err := h.service.Get(c.Request.Context(), userID, storyID)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, persisted.ToResponse())
}

// Images handles fetching a story's image rows.
//
//	@Summary		Get story images
//	@Tags			Story
//	@Produce		json
//	@Param			id	path		string	true	"Story ID"
//	@Success		200	{object}	map[string]interface{}
//	@Failure		404	{object}	map[string]string
//	@Router			/stories/{id}/images [get]
func (h *Handler) Images(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	storyID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid story ID"})
		return
	}

	images, err := h.service.Images(c.Request.Context(), userID, storyID)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"images": images})
}

// handleError maps service errors to HTTP responses.
func handleError(c *gin.Context, err error) {
	var appErr *apperrors.AppError
	switch {
	case errors.As(err, &appErr):
		c.JSON(appErr.StatusCode, appErr.ToResponse())
	case errors.Is(err, ErrStoryNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "story_not_found", "message": "Story not found"})
	case errors.Is(err, task.ErrJobNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "job_not_found", "message": "Generation job not found"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_error", "message": "Internal server error"})
	}
}
