// internal/api/care_handler.go
package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"selfcc/care-app/internal/domain"
	"selfcc/care-app/internal/repository"
	"selfcc/care-app/internal/service"
	"selfcc/care-app/internal/session"
	"selfcc/care-app/internal/shell"
)

// CareHandler serves the screens and the exercise session.
type CareHandler struct {
	careService service.CareService
}

func NewCareHandler(careService service.CareService) *CareHandler {
	return &CareHandler{careService: careService}
}

// --- DTOs ---

type NavigateRequest struct {
	View shell.ViewKind `json:"view" binding:"required"`
}

type StartSessionRequest struct {
	Mode string `json:"mode"`
}

// FeedbackRequest carries only the fields the patient changed.
type FeedbackRequest struct {
	Color      *string `json:"color"`
	PainLevel  *int    `json:"painLevel"`
	EaseRating *int    `json:"easeRating"`
	Comments   *string `json:"comments"`
}

type BreaksRequest struct {
	Delta int `json:"delta" binding:"required"`
}

// --- Helpers ---

// userID pulls the caller from the context, aborting when it is missing.
func userID(c *gin.Context) (primitive.ObjectID, bool) {
	id, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify user from token.")
		return primitive.NilObjectID, false
	}
	return id, true
}

// abortWithCareError maps service and state machine errors to HTTP statuses.
func abortWithCareError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrGenerating),
		errors.Is(err, session.ErrNotPlaying),
		errors.Is(err, session.ErrNotCollecting),
		errors.Is(err, session.ErrAlreadySubmitted),
		errors.Is(err, session.ErrNoExercises):
		abortWithError(c, http.StatusConflict, err.Error())
	case errors.Is(err, service.ErrNoActiveSession),
		errors.Is(err, repository.ErrNotFound):
		abortWithError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, session.ErrColorRequired),
		errors.Is(err, session.ErrRatingOutOfBounds),
		errors.Is(err, service.ErrInvalidDelta),
		errors.Is(err, shell.ErrNotNavigable):
		abortWithError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrServiceClosed):
		abortWithError(c, http.StatusServiceUnavailable, err.Error())
	default:
		_ = c.Error(err)
		abortWithError(c, http.StatusInternalServerError, "An unexpected error occurred")
	}
}

// --- Shell ---

// GetApp godoc
// @Summary Current frame: selected view, overlay, notice and navigation
// @Tags App
// @Produce json
// @Security BearerAuth
// @Success 200 {object} service.AppSnapshot
// @Router /app [get]
func (h *CareHandler) GetApp(c *gin.Context) {
	id, ok := userID(c)
	if !ok {
		return
	}
	snap, err := h.careService.Snapshot(c.Request.Context(), id)
	if err != nil {
		abortWithCareError(c, err)
		return
	}
	c.JSON(http.StatusOK, snap)
}

// Navigate godoc
// @Summary Select a navigation screen
// @Tags App
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param view body NavigateRequest true "Target screen"
// @Success 200 {object} service.AppSnapshot
// @Failure 400 {object} gin.H "Unknown or non-navigable screen"
// @Failure 409 {object} gin.H "A new plan is being generated"
// @Router /app/view [put]
func (h *CareHandler) Navigate(c *gin.Context) {
	id, ok := userID(c)
	if !ok {
		return
	}
	var req NavigateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	snap, err := h.careService.Navigate(c.Request.Context(), id, req.View)
	if err != nil {
		abortWithCareError(c, err)
		return
	}
	c.JSON(http.StatusOK, snap)
}

// --- Screens ---

// GetDashboard godoc
// @Summary Home screen: week, completion, rationale and a buddy's encouragement
// @Tags Screens
// @Produce json
// @Security BearerAuth
// @Success 200 {object} service.Dashboard
// @Router /dashboard [get]
func (h *CareHandler) GetDashboard(c *gin.Context) {
	id, ok := userID(c)
	if !ok {
		return
	}
	dash, err := h.careService.Dashboard(c.Request.Context(), id)
	if err != nil {
		abortWithCareError(c, err)
		return
	}
	c.JSON(http.StatusOK, dash)
}

// GetPlan godoc
// @Summary Current care plan
// @Tags Screens
// @Produce json
// @Security BearerAuth
// @Success 200 {object} domain.CarePlan
// @Router /plan [get]
func (h *CareHandler) GetPlan(c *gin.Context) {
	id, ok := userID(c)
	if !ok {
		return
	}
	plan, err := h.careService.Plan(c.Request.Context(), id)
	if err != nil {
		abortWithCareError(c, err)
		return
	}
	c.JSON(http.StatusOK, plan)
}

// GetPlanHistory godoc
// @Summary Every plan given to the user, newest first
// @Tags Screens
// @Produce json
// @Security BearerAuth
// @Success 200 {array} domain.CarePlan
// @Router /plans [get]
func (h *CareHandler) GetPlanHistory(c *gin.Context) {
	id, ok := userID(c)
	if !ok {
		return
	}
	plans, err := h.careService.PlanHistory(c.Request.Context(), id)
	if err != nil {
		abortWithCareError(c, err)
		return
	}
	if plans == nil {
		plans = []domain.CarePlan{}
	}
	c.JSON(http.StatusOK, plans)
}

// GetBuddies godoc
// @Summary Buddy list
// @Tags Screens
// @Produce json
// @Security BearerAuth
// @Success 200 {array} domain.Buddy
// @Router /buddies [get]
func (h *CareHandler) GetBuddies(c *gin.Context) {
	c.JSON(http.StatusOK, h.careService.Buddies(c.Request.Context()))
}

// GetProgress godoc
// @Summary One entry per rated session, newest first
// @Tags Screens
// @Produce json
// @Security BearerAuth
// @Success 200 {array} domain.ProgressEntry
// @Router /progress [get]
func (h *CareHandler) GetProgress(c *gin.Context) {
	id, ok := userID(c)
	if !ok {
		return
	}
	entries, err := h.careService.Progress(c.Request.Context(), id)
	if err != nil {
		abortWithCareError(c, err)
		return
	}
	c.JSON(http.StatusOK, entries)
}

// --- Session ---

// StartSession godoc
// @Summary Start an exercise session over the current plan
// @Tags Session
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param mode body StartSessionRequest false "diagram or video (default)"
// @Success 201 {object} service.SessionSnapshot
// @Failure 409 {object} gin.H "A new plan is being generated"
// @Router /session [post]
func (h *CareHandler) StartSession(c *gin.Context) {
	id, ok := userID(c)
	if !ok {
		return
	}
	var req StartSessionRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
			return
		}
	}
	mode, err := session.ParseMode(req.Mode)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, err.Error())
		return
	}
	snap, err := h.careService.StartSession(c.Request.Context(), id, mode)
	if err != nil {
		abortWithCareError(c, err)
		return
	}
	c.JSON(http.StatusCreated, snap)
}

// GetSession godoc
// @Summary Active exercise session
// @Tags Session
// @Produce json
// @Security BearerAuth
// @Success 200 {object} service.SessionSnapshot
// @Failure 404 {object} gin.H "No active session"
// @Router /session [get]
func (h *CareHandler) GetSession(c *gin.Context) {
	id, ok := userID(c)
	if !ok {
		return
	}
	snap, err := h.careService.Session(c.Request.Context(), id)
	if err != nil {
		abortWithCareError(c, err)
		return
	}
	c.JSON(http.StatusOK, snap)
}

// NextExercise godoc
// @Summary Advance to the next exercise, or to feedback after the last one
// @Tags Session
// @Produce json
// @Security BearerAuth
// @Success 200 {object} service.SessionSnapshot
// @Failure 404 {object} gin.H "No active session"
// @Failure 409 {object} gin.H "Session is not playing"
// @Router /session/next [post]
func (h *CareHandler) NextExercise(c *gin.Context) {
	id, ok := userID(c)
	if !ok {
		return
	}
	snap, err := h.careService.NextExercise(c.Request.Context(), id)
	if err != nil {
		abortWithCareError(c, err)
		return
	}
	c.JSON(http.StatusOK, snap)
}

// CancelSession godoc
// @Summary Abandon the session and return to the plan
// @Tags Session
// @Produce json
// @Security BearerAuth
// @Success 200 {object} service.AppSnapshot
// @Failure 404 {object} gin.H "No active session"
// @Failure 409 {object} gin.H "Session is not playing"
// @Router /session/cancel [post]
func (h *CareHandler) CancelSession(c *gin.Context) {
	id, ok := userID(c)
	if !ok {
		return
	}
	snap, err := h.careService.CancelSession(c.Request.Context(), id)
	if err != nil {
		abortWithCareError(c, err)
		return
	}
	c.JSON(http.StatusOK, snap)
}

// UpdateFeedback godoc
// @Summary Change fields of the feedback form
// @Tags Session
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param feedback body FeedbackRequest true "Changed fields"
// @Success 200 {object} service.SessionSnapshot
// @Failure 400 {object} gin.H "Unknown color or rating out of bounds"
// @Failure 409 {object} gin.H "Session is not collecting feedback"
// @Router /session/feedback [patch]
func (h *CareHandler) UpdateFeedback(c *gin.Context) {
	id, ok := userID(c)
	if !ok {
		return
	}
	var req FeedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	patch := service.FeedbackPatch{
		PainLevel:  req.PainLevel,
		EaseRating: req.EaseRating,
		Comments:   req.Comments,
	}
	if req.Color != nil {
		color, err := domain.ParseFeedbackColor(*req.Color)
		if err != nil {
			abortWithError(c, http.StatusBadRequest, err.Error())
			return
		}
		patch.Color = &color
	}

	snap, err := h.careService.UpdateFeedback(c.Request.Context(), id, patch)
	if err != nil {
		abortWithCareError(c, err)
		return
	}
	c.JSON(http.StatusOK, snap)
}

// AdjustBreaks godoc
// @Summary Count a break up or down
// @Tags Session
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param delta body BreaksRequest true "1 or -1"
// @Success 200 {object} service.SessionSnapshot
// @Failure 400 {object} gin.H "Delta other than 1 or -1"
// @Failure 409 {object} gin.H "Session is not collecting feedback"
// @Router /session/breaks [post]
func (h *CareHandler) AdjustBreaks(c *gin.Context) {
	id, ok := userID(c)
	if !ok {
		return
	}
	var req BreaksRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	snap, err := h.careService.AdjustBreaks(c.Request.Context(), id, req.Delta)
	if err != nil {
		abortWithCareError(c, err)
		return
	}
	c.JSON(http.StatusOK, snap)
}

// SubmitFeedback godoc
// @Summary Submit the session's feedback and start adapting the plan
// @Description Returns at once with the overlay raised. Poll GET /app until it clears.
// @Tags Session
// @Produce json
// @Security BearerAuth
// @Success 202 {object} service.AppSnapshot
// @Failure 400 {object} gin.H "No feedback color chosen"
// @Failure 404 {object} gin.H "No active session"
// @Failure 409 {object} gin.H "A new plan is being generated"
// @Router /session/submit [post]
func (h *CareHandler) SubmitFeedback(c *gin.Context) {
	id, ok := userID(c)
	if !ok {
		return
	}
	snap, err := h.careService.SubmitFeedback(c.Request.Context(), id)
	if err != nil {
		abortWithCareError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, snap)
}
