package controllers

import (
	"net/http"

	"github.com/covercellhq/covercell-backend/api/responses"
	"github.com/covercellhq/covercell-backend/internal/detection"
	"github.com/covercellhq/covercell-backend/internal/media"
	pkgerrors "github.com/covercellhq/covercell-backend/pkg/errors"
	"github.com/covercellhq/covercell-backend/pkg/logger"
)

const detectImageField = "image"

// Detect runs the device recognizer against an uploaded photo. The image is
// inspected in memory and never persisted.
func Detect(detector detection.Detector, maxBytes int64, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(maxBytes); err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid multipart body"))
			return
		}

		file, header, err := r.FormFile(detectImageField)
		if err != nil {
			responses.WriteError(r.Context(), logg, w,
				pkgerrors.New(pkgerrors.CodeValidation, "image file is required").
					WithDetails(map[string]string{detectImageField: "is required"}))
			return
		}
		defer file.Close()

		result, err := detector.Detect(r.Context(), media.Upload{
			Filename:    header.Filename,
			ContentType: header.Header.Get("Content-Type"),
			Size:        header.Size,
			Content:     file,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "device detection"))
			return
		}

		responses.WriteSuccess(w, result)
	}
}
