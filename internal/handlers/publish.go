package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"socialcast/internal/idempotency"
	"socialcast/internal/publish"
	"socialcast/pkg/auth"
	"socialcast/pkg/logging"
	"socialcast/pkg/middleware"
)

const (
	// IdempotencyKeyHeader lets callers opt in to deduplication of
	// retried publish requests.
	IdempotencyKeyHeader = "Idempotency-Key"

	defaultPublishTimeout = 60 * time.Second
)

// PublishHandler exposes the publish orchestration over HTTP.
type PublishHandler struct {
	publisher Publisher
	scheduler Scheduler
	idem      IdempotencyStore
	location  *time.Location
	timeout   time.Duration
	now       func() time.Time
	logger    logging.Logger
	metrics   *PublishMetrics
}

func NewPublishHandler(publisher Publisher, scheduler Scheduler, idem IdempotencyStore, location *time.Location, logger logging.Logger, metrics *PublishMetrics) *PublishHandler {
	if location == nil {
		location = time.Local
	}
	return &PublishHandler{
		publisher: publisher,
		scheduler: scheduler,
		idem:      idem,
		location:  location,
		timeout:   defaultPublishTimeout,
		now:       time.Now,
		logger:    logger,
		metrics:   metrics,
	}
}

// RegisterRoutes mounts the publish endpoint on the given group. The
// group is expected to carry the JWT auth middleware.
func (h *PublishHandler) RegisterRoutes(group *gin.RouterGroup) {
	group.POST("/posts/publish", h.Publish)
}

// Publish handles POST /api/posts/publish.
//
// Status mapping: 401 missing identity, 400 malformed request or no
// active integration, 200 with success:false when every attempt failed,
// 500 only for unexpected internal errors.
func (h *PublishHandler) Publish(c *gin.Context) {
	start := h.now()
	log := middleware.GetContextLogger(c, h.logger)

	userID := c.GetString(auth.KeyUserID)
	if userID == "" {
		h.metrics.RecordRequest(OutcomeCallerError, h.now().Sub(start))
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	var req publish.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		h.metrics.RecordRequest(OutcomeCallerError, h.now().Sub(start))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if msg, ok := validate(req); !ok {
		h.metrics.RecordRequest(OutcomeCallerError, h.now().Sub(start))
		c.JSON(http.StatusBadRequest, gin.H{"error": msg})
		return
	}

	if req.ScheduledDate != "" {
		scheduledAt, err := publish.ParseSchedule(req.ScheduledDate, req.ScheduledTime, h.location)
		if err != nil {
			h.metrics.RecordRequest(OutcomeCallerError, h.now().Sub(start))
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid schedule date or time"})
			return
		}
		if decision := publish.Decide(scheduledAt, h.now()); decision.Deferred {
			h.deferPublish(c, req, decision, start)
			return
		}
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	run := func(ctx context.Context) (publish.Report, error) {
		return h.publisher.Publish(ctx, userID, req)
	}

	var (
		report   publish.Report
		replayed bool
		err      error
	)
	if key := c.GetHeader(IdempotencyKeyHeader); key != "" && h.idem != nil {
		report, replayed, err = h.idem.Execute(ctx, idempotency.Key(userID, key), run)
	} else {
		report, err = run(ctx)
	}

	elapsed := h.now().Sub(start)
	switch {
	case errors.Is(err, publish.ErrNoActiveIntegration):
		h.metrics.RecordRequest(OutcomeCallerError, elapsed)
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "no active integration for requested platforms",
			"results": []publish.AttemptResult{},
		})
		return
	case err != nil:
		log.WithError(err).Error("Publish failed unexpectedly")
		h.metrics.RecordRequest(OutcomeError, elapsed)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	h.metrics.RecordRequest(reportOutcome(report, replayed), elapsed)
	for _, r := range report.Results {
		h.metrics.RecordAttempt(r.Platform, r.Success)
	}
	if replayed {
		c.Header("Idempotency-Replay", "true")
	}
	c.JSON(http.StatusOK, report)
}

func (h *PublishHandler) deferPublish(c *gin.Context, req publish.Request, decision publish.Decision, start time.Time) {
	post := publish.NewScheduledPost(req, decision.ScheduledAt)
	if err := h.scheduler.Enqueue(c.Request.Context(), post); err != nil {
		middleware.GetContextLogger(c, h.logger).WithError(err).Error("Failed to enqueue scheduled post")
		h.metrics.RecordRequest(OutcomeError, h.now().Sub(start))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to schedule post"})
		return
	}
	h.metrics.RecordRequest(OutcomeDeferred, h.now().Sub(start))
	c.JSON(http.StatusOK, gin.H{
		"success":      true,
		"message":      "Post agendado para publicação",
		"scheduled_at": decision.ScheduledAt,
	})
}

func validate(req publish.Request) (string, bool) {
	if len(req.Platforms) == 0 {
		return "platforms required", false
	}
	if req.Message() == "" && !req.HasAttachment() {
		return "post content required", false
	}
	switch req.Format {
	case "", publish.FormatPost, publish.FormatStory, publish.FormatReel, publish.FormatCarousel:
	default:
		return "invalid format", false
	}
	return "", true
}

func reportOutcome(report publish.Report, replayed bool) string {
	if replayed {
		return OutcomeReplayed
	}
	if !report.Success {
		return OutcomeFailed
	}
	for _, r := range report.Results {
		if !r.Success {
			return OutcomePartial
		}
	}
	return OutcomePublished
}
