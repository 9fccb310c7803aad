package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/synthage/internal/entities"
)

type AuditController struct {
	auditService AuditReader
}

func NewAuditController(auditService AuditReader) *AuditController {
	return &AuditController{
		auditService: auditService,
	}
}

// EventTypeOption is one selectable event type filter.
type EventTypeOption struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// GetAuditEvents returns the caller's paginated audit events as JSON
// GET /api/audit?page=1&limit=25&type=preset
func (ac *AuditController) GetAuditEvents(c *gin.Context) {
	userID := GetUserID(c)
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "25"))

	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 25
	}

	eventType := c.Query("type")
	if eventType != "" && !isKnownEventType(eventType) {
		respondBadRequest(c, "unknown event type: "+eventType)
		return
	}
	offset := (page - 1) * limit

	var events []entities.AuditEvent
	var total int64
	var err error

	ctx := c.Request.Context()
	if eventType != "" {
		events, total, err = ac.auditService.GetEventsByType(ctx, entities.AuditEventType(eventType), userID, limit, offset)
	} else {
		events, total, err = ac.auditService.GetEvents(ctx, userID, limit, offset)
	}

	if err != nil {
		respondInternalError(c, err, "load audit events")
		return
	}

	totalPages := (int(total) + limit - 1) / limit
	if totalPages < 1 {
		totalPages = 1
	}

	c.JSON(http.StatusOK, PaginatedResponse{
		Data:       events,
		Total:      total,
		Limit:      limit,
		Offset:     offset,
		HasMore:    int64(offset+len(events)) < total,
		TotalPages: totalPages,
	})
}

// GetEventTypes lists the filters accepted by GetAuditEvents.
// GET /api/audit/types
func (ac *AuditController) GetEventTypes(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"event_types": eventTypes()})
}

func eventTypes() []EventTypeOption {
	return []EventTypeOption{
		{Value: "", Label: "All Events"},
		{Value: string(entities.AuditEventPreset), Label: "Presets"},
		{Value: string(entities.AuditEventFirmware), Label: "Firmware"},
		{Value: string(entities.AuditEventAuth), Label: "Authentication"},
		{Value: string(entities.AuditEventCleanup), Label: "Cleanup"},
	}
}

func isKnownEventType(t string) bool {
	for _, opt := range eventTypes() {
		if opt.Value != "" && opt.Value == t {
			return true
		}
	}
	return false
}
