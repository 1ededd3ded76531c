// Upload HTTP handlers.
//
//   - POST /queues/{id}/images        (multipart: folder + file)
//   - POST /queues/{id}/images/batch  (multipart: one part per file, form field = folder)
//
// The batch body is streamed part by part so files keep their arrival order.
package handlers

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-pickset-backend/internal/domain"
	"github.com/tbourn/go-pickset-backend/internal/services"
)

// UploadImageResponse is returned by the single-file upload.
type UploadImageResponse struct {
	Image *domain.Image `json:"image"`
	// IsDuplicate is true when the slot or the content already existed and
	// the stored image is returned instead.
	IsDuplicate bool `json:"is_duplicate"`
}

// UploadImage godoc
// @ID          uploadImage
// @Summary     Upload one image into a queue
// @Description Stores the file under (folder, file name) and joins it to the group named after the file.
// @Description Re-uploading an existing slot or identical content returns the stored image with is_duplicate=true.
// @Tags        Images
// @Accept      multipart/form-data
// @Produce     json
// @Param       id      path      string  true  "Queue ID"
// @Param       folder  formData  string  true  "Source folder name"
// @Param       file    formData  file    true  "Image file"
// @Success     201     {object}  handlers.UploadImageResponse  "Stored"
// @Success     200     {object}  handlers.UploadImageResponse  "Already present"
// @Failure     400     {object}  handlers.ErrorResponse  "Bad request"
// @Failure     404     {object}  handlers.ErrorResponse  "Queue not found"
// @Failure     413     {object}  handlers.ErrorResponse  "Payload too large"
// @Failure     502     {object}  handlers.ErrorResponse  "Blob store failure"
// @Router      /queues/{id}/images [post]
func (h *Handlers) UploadImage(c *gin.Context) {
	fh, err := c.FormFile("file")
	if err != nil {
		failBody(c, err, "multipart field 'file' is required")
		return
	}
	folder := strings.TrimSpace(c.PostForm("folder"))
	if folder == "" {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "multipart field 'folder' is required")
		return
	}
	data, err := readFileHeader(fh)
	if err != nil {
		failBody(c, err, "unreadable file part")
		return
	}

	img, dup, err := h.ingest.UploadOne(c.Request.Context(), c.Param("id"), folder, fh.Filename, data)
	if err != nil {
		failErr(c, err)
		return
	}
	status := http.StatusCreated
	if dup {
		status = http.StatusOK
	}
	ok(c, status, UploadImageResponse{Image: img, IsDuplicate: dup})
}

// UploadBatch godoc
// @ID          uploadBatch
// @Summary     Upload many images into a queue in one transaction
// @Description Each multipart file part is one image; its form field name is the source folder.
// @Description Per-file failures do not abort the batch: the response is 207 when some files failed.
// @Tags        Images
// @Accept      multipart/form-data
// @Produce     json
// @Param       id   path      string  true  "Queue ID"
// @Success     200  {object}  services.BatchResult  "All files stored or skipped"
// @Success     207  {object}  services.BatchResult  "Some files failed"
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     404  {object}  handlers.ErrorResponse  "Queue not found"
// @Failure     413  {object}  handlers.ErrorResponse  "Payload too large"
// @Router      /queues/{id}/images/batch [post]
func (h *Handlers) UploadBatch(c *gin.Context) {
	folders, err := readBatch(c.Request)
	if err != nil {
		failBody(c, err, "invalid multipart body")
		return
	}

	res, err := h.ingest.UploadBatch(c.Request.Context(), c.Param("id"), folders)
	if err != nil {
		failErr(c, err)
		return
	}
	status := http.StatusOK
	if res.Partial() {
		status = http.StatusMultiStatus
	}
	ok(c, status, res)
}

// readBatch streams the multipart body into per-folder file lists. Folders
// keep the order of their first part; non-file fields are ignored.
func readBatch(r *http.Request) ([]services.FolderFiles, error) {
	mr, err := r.MultipartReader()
	if err != nil {
		return nil, err
	}
	var out []services.FolderFiles
	index := make(map[string]int)
	for {
		part, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		name := part.FileName()
		if name == "" {
			_ = part.Close()
			continue
		}
		folder := strings.TrimSpace(part.FormName())
		data, err := io.ReadAll(part)
		_ = part.Close()
		if err != nil {
			return nil, err
		}
		i, seen := index[folder]
		if !seen {
			i = len(out)
			index[folder] = i
			out = append(out, services.FolderFiles{Folder: folder})
		}
		out[i].Files = append(out[i].Files, services.File{Name: name, Data: data})
	}
	return out, nil
}

func readFileHeader(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}

// failBody answers 413 when the body cap was hit and 400 otherwise.
func failBody(c *gin.Context, err error, msg string) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		fail(c, http.StatusRequestEntityTooLarge, ErrCodeTooLarge, "request body too large")
		return
	}
	fail(c, http.StatusBadRequest, ErrCodeBadRequest, msg)
}
