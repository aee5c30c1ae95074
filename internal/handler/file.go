package handler

import (
	"encoding/base64"
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/pr-poehali-dev/moonly-messenger-2/internal/pkg/httputils"
	"github.com/pr-poehali-dev/moonly-messenger-2/internal/service"
)

type FileHandler struct {
	fileService service.FileService
}

func NewFileHandler(fileService service.FileService) *FileHandler {
	return &FileHandler{fileService: fileService}
}

func (h *FileHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/files", h.uploadFile).Methods("POST", "OPTIONS")
}

type UploadFileRequest struct {
	FileData string `json:"file_data"` // base64
	FileName string `json:"file_name"`
	FileType string `json:"file_type"`
}

// @Summary Upload file
// @Description Store an attachment and return its public URL
// @ID upload-file
// @Accept json
// @Produce json
// @Param Authorization header string true "Bearer token"
// @Param fileData body UploadFileRequest true "Base64-encoded file"
// @Success 200
// @Failure 400 {object} httputils.ErrorResponse
// @Router /files [post]
func (h *FileHandler) uploadFile(w http.ResponseWriter, r *http.Request) {
	var request UploadFileRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		httputils.ResponseError(w, http.StatusBadRequest, "invalid request format")
		return
	}
	r.Body.Close()

	if request.FileData == "" {
		httputils.ResponseError(w, http.StatusBadRequest, "file_data required")
		return
	}

	data, err := base64.StdEncoding.DecodeString(request.FileData)
	if err != nil {
		httputils.ResponseError(w, http.StatusBadRequest, "file_data must be base64")
		return
	}

	url, err := h.fileService.Upload(r.Context(), UserID(r), request.FileName, request.FileType, data)
	if err != nil {
		httputils.ResponseAppError(w, err)
		return
	}
	httputils.ResponseJSON(w, http.StatusOK, map[string]any{"success": true, "url": url})
}
