package controllers

import (
	"mime/multipart"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/cafemenu/cafemenu-backend/api/responses"
	uploadsvc "github.com/cafemenu/cafemenu-backend/internal/uploads"
	"github.com/cafemenu/cafemenu-backend/pkg/config"
	pkgerrors "github.com/cafemenu/cafemenu-backend/pkg/errors"
	"github.com/cafemenu/cafemenu-backend/pkg/logger"
)

// UploadImage stores one multipart image from the "file" field and returns
// the public URL it is served under.
func UploadImage(svc uploadsvc.Service, cfg config.UploadsConfig, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "upload service unavailable"))
			return
		}

		if err := r.ParseMultipartForm(cfg.MaxUploadBytes()); err != nil {
			responses.WriteError(r.Context(), logg, w,
				pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid multipart body"))
			return
		}

		file, header, err := r.FormFile("file")
		if err != nil {
			responses.WriteError(r.Context(), logg, w,
				pkgerrors.New(pkgerrors.CodeValidation, "no file uploaded"))
			return
		}
		defer file.Close()

		url, err := svc.SaveImage(r.Context(), toFileUpload(file, header))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, url)
	}
}

// UploadImages stores a batch of multipart images from the "files" field.
func UploadImages(svc uploadsvc.Service, cfg config.UploadsConfig, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "upload service unavailable"))
			return
		}

		// The batch cap is validated downstream; the parse limit covers the
		// whole form.
		parseLimit := cfg.MaxUploadBytes() * int64(cfg.MaxBatchFiles+1)
		if err := r.ParseMultipartForm(parseLimit); err != nil {
			responses.WriteError(r.Context(), logg, w,
				pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid multipart body"))
			return
		}

		var headers []*multipart.FileHeader
		if r.MultipartForm != nil {
			headers = r.MultipartForm.File["files"]
		}

		uploads := make([]uploadsvc.FileUpload, 0, len(headers))
		opened := make([]multipart.File, 0, len(headers))
		defer func() {
			for _, f := range opened {
				f.Close()
			}
		}()

		for _, header := range headers {
			file, err := header.Open()
			if err != nil {
				responses.WriteError(r.Context(), logg, w,
					pkgerrors.Wrap(pkgerrors.CodeValidation, err, "reading multipart file"))
				return
			}
			opened = append(opened, file)
			uploads = append(uploads, toFileUpload(file, header))
		}

		urls, err := svc.SaveImages(r.Context(), uploads)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, urls)
	}
}

// DeleteImage removes a previously uploaded file by its stored name.
func DeleteImage(svc uploadsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "upload service unavailable"))
			return
		}

		fileName := chi.URLParam(r, "fileName")
		if err := svc.Delete(r.Context(), fileName); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]bool{"deleted": true})
	}
}

func toFileUpload(file multipart.File, header *multipart.FileHeader) uploadsvc.FileUpload {
	return uploadsvc.FileUpload{
		Name:        header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Content:     file,
	}
}
