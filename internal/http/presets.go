package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mrlokans/synthage/internal/auth"
	"github.com/mrlokans/synthage/internal/entities"
	"github.com/mrlokans/synthage/internal/presets"
	"github.com/mrlokans/synthage/internal/validation"
)

// DashboardPath lists the caller's presets and is the fallback for
// unknown presets.
const DashboardPath = "/dashboard/"

// MsgDeleteForbidden is the plain-text refusal for deleting someone else's preset.
const MsgDeleteForbidden = "You do not have permission to delete this preset."

// PresetsController serves the home, dashboard and preset edit endpoints.
type PresetsController struct {
	workflow  PresetWorkflow
	artifacts ArtifactStore
}

// NewPresetsController creates a new PresetsController. artifacts may be nil.
func NewPresetsController(workflow PresetWorkflow, artifacts ArtifactStore) *PresetsController {
	return &PresetsController{workflow: workflow, artifacts: artifacts}
}

// EditPayload is the JSON body of POST /preset/.
type EditPayload struct {
	KeysChannel *int                 `json:"keys_channel"`
	Name        *string              `json:"name"`
	Knobs       []validation.KnobRow `json:"knobs"`
}

// PresetView is the JSON rendering of the edit view.
type PresetView struct {
	Preset      *entities.Preset  `json:"preset"`
	Knobs       []entities.Knob   `json:"knobs"`
	Presets     []entities.Preset `json:"presets"`
	KeysChannel int               `json:"keys_channel"`
	DownloadURL string            `json:"download_url,omitempty"`
	CSRFToken   string            `json:"csrf_token,omitempty"`
}

// Home handles GET /. Authenticated users get their default preset
// provisioned on first visit.
func (pc *PresetsController) Home(c *gin.Context) {
	userID := GetUserID(c)
	if userID == 0 {
		c.JSON(http.StatusOK, gin.H{
			"authenticated": false,
			"login_url":     auth.LoginPath,
			"sign_up_url":   "/sign-up/",
		})
		return
	}

	_, created, err := pc.workflow.EnsureDefaultPreset(c.Request.Context(), userID)
	if err != nil {
		respondInternalError(c, err, "provision default preset")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"authenticated":          true,
		"username":               auth.GetUsername(c),
		"default_preset_created": created,
		"dashboard_url":          DashboardPath,
		"edit_url":               "/preset/",
	})
}

// Dashboard handles GET /dashboard/.
func (pc *PresetsController) Dashboard(c *gin.Context) {
	list, err := pc.workflow.ListPresets(c.Request.Context(), GetUserID(c))
	if err != nil {
		respondInternalError(c, err, "list presets")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"presets": list,
		"count":   len(list),
	})
}

// EditPage handles GET /preset/?preset=<id>.
func (pc *PresetsController) EditPage(c *gin.Context) {
	presetID, ok := parseOptionalQueryID(c, "preset")
	if !ok {
		return
	}

	view, err := pc.workflow.LoadForEdit(c.Request.Context(), GetUserID(c), presetID)
	if err != nil {
		pc.handlePresetError(c, err, http.StatusFound, "load preset")
		return
	}

	resp := PresetView{
		Preset:      view.Preset,
		Knobs:       view.Knobs,
		Presets:     view.Presets,
		KeysChannel: entities.MinChannel,
		CSRFToken:   auth.GetCSRFToken(c),
	}
	if resp.Knobs == nil {
		resp.Knobs = []entities.Knob{}
	}
	if view.Preset != nil {
		resp.KeysChannel = view.Preset.KeysChannel
		if pc.artifacts != nil && pc.artifacts.Exists(view.Preset.ID) {
			resp.DownloadURL = downloadURL(view.Preset.ID)
		}
	}

	c.JSON(http.StatusOK, resp)
}

// SaveEdit handles POST /preset/?preset=<id>.
func (pc *PresetsController) SaveEdit(c *gin.Context) {
	presetID, ok := parseOptionalQueryID(c, "preset")
	if !ok {
		return
	}

	var payload EditPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBadRequest(c, "invalid request body: "+err.Error())
		return
	}

	result, err := pc.workflow.SaveEdit(c.Request.Context(), presets.EditRequest{
		OwnerID:     GetUserID(c),
		PresetID:    presetID,
		Knobs:       payload.Knobs,
		KeysChannel: payload.KeysChannel,
		Name:        payload.Name,
	})
	if err != nil {
		var editErr *validation.EditError
		if errors.As(err, &editErr) {
			respondValidationError(c, editErr, payload)
			return
		}
		pc.handlePresetError(c, err, http.StatusSeeOther, "save preset")
		return
	}

	if result.ExportErr != nil {
		requestLogger(c).Warn("preset saved without firmware",
			zap.Uint("preset_id", result.Preset.ID),
			zap.Error(result.ExportErr))
	}

	c.Redirect(http.StatusSeeOther, editURL(result.Preset.ID))
}

// CreatePreset handles POST /create_preset/ with form or JSON fields.
func (pc *PresetsController) CreatePreset(c *gin.Context) {
	var in validation.PresetFields
	if err := c.ShouldBind(&in); err != nil {
		respondBadRequest(c, "invalid request body: "+err.Error())
		return
	}

	preset, err := pc.workflow.CreatePreset(c.Request.Context(), GetUserID(c), in)
	if err != nil {
		var fields validation.FieldErrors
		if errors.As(err, &fields) {
			respondValidationError(c, fields, in)
			return
		}
		respondInternalError(c, err, "create preset")
		return
	}

	c.Redirect(http.StatusSeeOther, editURL(preset.ID))
}

// DeletePreset handles POST /delete_preset/:id/.
func (pc *PresetsController) DeletePreset(c *gin.Context) {
	presetID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	err := pc.workflow.DeletePreset(c.Request.Context(), GetUserID(c), presetID)
	switch {
	case err == nil, errors.Is(err, presets.ErrPresetNotFound):
		c.Redirect(http.StatusSeeOther, DashboardPath)
	case errors.Is(err, presets.ErrForbidden):
		c.String(http.StatusForbidden, MsgDeleteForbidden)
	default:
		respondInternalError(c, err, "delete preset")
	}
}

// handlePresetError maps workflow errors: missing presets redirect to the
// dashboard, foreign presets are refused and the rest are internal errors.
func (pc *PresetsController) handlePresetError(c *gin.Context, err error, redirectStatus int, context string) {
	switch {
	case errors.Is(err, presets.ErrPresetNotFound):
		c.Redirect(redirectStatus, DashboardPath)
	case errors.Is(err, presets.ErrForbidden):
		c.JSON(http.StatusForbidden, ErrorResponse{Error: err.Error(), Code: "forbidden"})
	default:
		respondInternalError(c, err, context)
	}
}
