package checks

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"ats-backend/internal/ingest"
	"ats-backend/internal/shared/server/middleware"
	"ats-backend/internal/shared/server/respond"
)

// Handler wires the resume check HTTP surface to the service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches resume routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/resume/check", h.check)
	rg.GET("/resume/history", h.history)
	rg.GET("/resume/score", h.score)
}

func (h *Handler) check(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	maxBytes := h.Svc.maxUploadBytes()
	// One extra KiB so the multipart framing itself does not trip the limit;
	// the ingestor enforces the exact file ceiling.
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes+1024)

	fileHeader, err := c.FormFile("resume")
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			respond.JSON(c, http.StatusBadRequest, gin.H{"message": "Resume file is too large."})
			return
		}
		respond.JSON(c, http.StatusBadRequest, gin.H{"message": "A resume file is required."})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		respond.JSON(c, http.StatusBadRequest, gin.H{"message": "Unable to read the uploaded file."})
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		respond.JSON(c, http.StatusBadRequest, gin.H{"message": "Unable to read the uploaded file."})
		return
	}

	in := CheckInput{
		FileName:         fileHeader.Filename,
		DeclaredMimeType: fileHeader.Header.Get("Content-Type"),
		Data:             data,
	}

	var phases []string
	onPhase := func(p Phase) {
		phases = append(phases, string(p))
		c.Set("statusTransition", strings.Join(phases, "->"))
	}

	check, err := h.Svc.Run(c.Request.Context(), userID, in, onPhase)
	if err != nil {
		h.respondCheckError(c, err)
		return
	}
	c.Set("checkId", check.ID)

	respond.JSON(c, http.StatusOK, gin.H{
		"score":           check.Score,
		"strongKeywords":  check.StrongKeywords,
		"missingKeywords": check.MissingKeywords,
		"suggestions":     check.Suggestions,
		"checkedAt":       check.CheckedAt.Format(time.RFC3339),
	})
}

func (h *Handler) respondCheckError(c *gin.Context, err error) {
	var quotaErr *QuotaError
	switch {
	case errors.As(err, &quotaErr):
		respond.JSON(c, http.StatusTooManyRequests, gin.H{
			"message":       "Daily limit reached. Try again tomorrow.",
			"nextCheckTime": quotaErr.NextEligibleAt.Format(time.RFC3339),
		})
	case errors.Is(err, ingest.ErrUnsupportedFormat):
		respond.JSON(c, http.StatusBadRequest, gin.H{"message": "Only PDF and plain text resumes are supported."})
	case errors.Is(err, ingest.ErrTooLarge):
		respond.JSON(c, http.StatusBadRequest, gin.H{"message": "Resume file is too large."})
	case errors.Is(err, ingest.ErrUndecodable):
		respond.JSON(c, http.StatusBadRequest, gin.H{"message": "The resume file could not be read. Upload a valid PDF or text file."})
	case errors.Is(err, ErrTimeout), errors.Is(err, ErrStorageUnavailable):
		// Safe to retry: the quota slot is only consumed on a successful
		// persist.
		respond.Error(c, http.StatusServiceUnavailable, "storage_unavailable", "Unable to complete the check right now. Please retry.", nil)
	default:
		respond.Error(c, http.StatusInternalServerError, "internal_error", "Failed to check resume", nil)
	}
}

func (h *Handler) history(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	limit := 20
	offset := 0
	if v := c.Query("limit"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			limit = parsed
		}
	}
	if limit < 0 {
		limit = 0
	}
	if limit > 50 {
		limit = 50
	}
	if v := c.Query("offset"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			offset = parsed
		}
	}
	if offset < 0 {
		offset = 0
	}

	page, err := h.Svc.History(c.Request.Context(), userID, limit, offset)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to fetch history", nil)
		return
	}

	history := make([]gin.H, 0, len(page.Checks))
	for _, check := range page.Checks {
		history = append(history, gin.H{
			"id":              check.ID,
			"atsScore":        check.Score,
			"strongKeywords":  check.StrongKeywords,
			"missingKeywords": check.MissingKeywords,
			"suggestions":     check.Suggestions,
			"checkedAt":       check.CheckedAt.Format(time.RFC3339),
		})
	}

	var nextCheckTime any
	if page.NextCheckTime != nil {
		nextCheckTime = page.NextCheckTime.Format(time.RFC3339)
	}
	respond.JSON(c, http.StatusOK, gin.H{
		"history":       history,
		"canCheckToday": page.CanCheckToday,
		"nextCheckTime": nextCheckTime,
	})
}

func (h *Handler) score(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	check, err := h.Svc.Latest(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			respond.JSON(c, http.StatusOK, gin.H{"score": nil})
			return
		}
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to fetch score", nil)
		return
	}

	respond.JSON(c, http.StatusOK, gin.H{
		"score": check.Score,
		"suggestions": gin.H{
			"strong":  check.StrongKeywords,
			"missing": check.MissingKeywords,
		},
	})
}
