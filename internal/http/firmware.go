package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/synthage/internal/firmware"
	"github.com/mrlokans/synthage/internal/presets"
)

// FirmwareController serves generated firmware artifacts.
type FirmwareController struct {
	workflow  PresetWorkflow
	artifacts ArtifactStore
}

// NewFirmwareController creates a new FirmwareController.
func NewFirmwareController(workflow PresetWorkflow, artifacts ArtifactStore) *FirmwareController {
	return &FirmwareController{workflow: workflow, artifacts: artifacts}
}

// Download handles GET /download_firmware/:preset_id/.
// A missing artifact sends the caller back to the edit view.
func (fc *FirmwareController) Download(c *gin.Context) {
	presetID, ok := parseIDParam(c, "preset_id")
	if !ok {
		return
	}

	_, err := fc.workflow.PresetForOwner(c.Request.Context(), GetUserID(c), presetID)
	switch {
	case errors.Is(err, presets.ErrForbidden):
		c.JSON(http.StatusForbidden, ErrorResponse{Error: err.Error(), Code: "forbidden"})
		return
	case errors.Is(err, presets.ErrPresetNotFound):
		c.Redirect(http.StatusFound, editURL(presetID))
		return
	case err != nil:
		respondInternalError(c, err, "load preset")
		return
	}

	f, info, err := fc.artifacts.Open(presetID)
	if err != nil {
		if errors.Is(err, firmware.ErrArtifactNotFound) {
			c.Redirect(http.StatusFound, editURL(presetID))
			return
		}
		respondInternalError(c, err, "open firmware artifact")
		return
	}
	defer f.Close()

	c.DataFromReader(http.StatusOK, info.Size(), "text/plain; charset=utf-8", f, map[string]string{
		"Content-Disposition": `attachment; filename="` + firmware.FileName(presetID) + `"`,
	})
}

func downloadURL(presetID uint) string {
	return "/download_firmware/" + uintToString(presetID) + "/"
}
