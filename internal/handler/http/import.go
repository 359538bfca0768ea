package http

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/timesheet-backend-go/internal/domain/importer"
	"github.com/cmlabs-hris/timesheet-backend-go/internal/handler/http/response"
)

type ImportHandler interface {
	Upload(w http.ResponseWriter, r *http.Request)
}

type importHandlerImpl struct {
	importService importer.ImportService
}

func NewImportHandler(importService importer.ImportService) ImportHandler {
	return &importHandlerImpl{
		importService: importService,
	}
}

// Upload implements ImportHandler.
func (h *importHandlerImpl) Upload(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}

	if err := r.ParseMultipartForm(10 << 20); err != nil {
		slog.Error("Failed to parse multipart form", "error", err)
		response.BadRequest(w, "Failed to parse form data", nil)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			response.ValidationError(w, map[string]string{"file": "file is required"})
			return
		}
		slog.Error("Failed to read uploaded file", "error", err)
		response.BadRequest(w, "Failed to read uploaded file", nil)
		return
	}
	defer file.Close()

	req := importer.ImportRequest{
		File:     file,
		Filename: header.Filename,
		Format:   importer.Format(r.FormValue("format")),
	}

	report, err := h.importService.RunImport(r.Context(), actor, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Import completed", importer.NewReportResponse(report))
}
