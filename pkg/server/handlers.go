package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/cubeskin/pkg/archive"
	"github.com/matzehuels/cubeskin/pkg/atlas"
	"github.com/matzehuels/cubeskin/pkg/blocks"
	"github.com/matzehuels/cubeskin/pkg/buildinfo"
	cserrors "github.com/matzehuels/cubeskin/pkg/errors"
	"github.com/matzehuels/cubeskin/pkg/pipeline"
	"github.com/matzehuels/cubeskin/pkg/skinpack"
)

// multipartMemory is how much of a multipart body is held in memory before
// spilling to temporary files.
const multipartMemory = 32 << 20

// =============================================================================
// Health
// =============================================================================

type healthResponse struct {
	Status string `json:"status"`
	buildinfo.Info
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok", Info: buildinfo.Get()})
}

// =============================================================================
// Composite
// =============================================================================

func (s *Server) handleComposite(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		s.fail(w, r, formError(err))
		return
	}

	var out *image.NRGBA
	data, ok, err := formFile(r, "texture")
	switch {
	case err != nil:
	case ok:
		out, err = compositeUniform(data)
	default:
		out, err = compositeFaces(r)
	}
	if err != nil {
		s.fail(w, r, err)
		return
	}

	png, err := atlas.PNG(out)
	if err != nil {
		s.fail(w, r, cserrors.Wrap(cserrors.ErrCodeInternal, err, "encode atlas"))
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	w.Write(png)
}

func compositeUniform(data []byte) (*image.NRGBA, error) {
	src, err := atlas.Decode(data)
	if err != nil {
		return nil, err
	}
	return atlas.CompositeUniform(src)
}

// compositeFaces reads one upload per face, named after the face.
func compositeFaces(r *http.Request) (*image.NRGBA, error) {
	var set atlas.FaceSet
	for _, f := range atlas.Faces {
		data, ok, err := formFile(r, f.String())
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, cserrors.New(cserrors.ErrCodeIncompleteFaceSet,
				"missing %s face: send either a texture field or all six face fields", f)
		}
		img, err := atlas.Decode(data)
		if err != nil {
			return nil, cserrors.Wrap(cserrors.ErrCodeDecodeFailure, err, "decode %s face", f)
		}
		set.Set(f, img)
	}
	return atlas.Composite(set)
}

// =============================================================================
// Classify
// =============================================================================

type classifyResponse struct {
	PartialAlpha bool   `json:"partial_alpha"`
	Width        int    `json:"width"`
	Height       int    `json:"height"`
	Swatch       string `json:"swatch,omitempty"`
}

func (s *Server) handleClassify(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		s.fail(w, r, formError(err))
		return
	}
	data, ok, err := formFile(r, "texture")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if !ok {
		s.fail(w, r, cserrors.New(cserrors.ErrCodeInvalidInput, "missing texture field"))
		return
	}
	img, err := atlas.Decode(data)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	b := img.Bounds()
	resp := classifyResponse{
		PartialAlpha: atlas.HasPartialAlpha(img),
		Width:        b.Dx(),
		Height:       b.Dy(),
	}
	if out, err := atlas.CompositeUniform(img); err == nil {
		resp.Swatch = atlas.Swatch(out)
	}
	writeJSON(w, http.StatusOK, resp)
}

// =============================================================================
// Packs
// =============================================================================

func (s *Server) handlePacks(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	mode, err := parseMergeQuery(q.Get("merge"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	format, err := skinpack.ParseFormat(q.Get("format"))
	if err != nil {
		s.fail(w, r, err)
		return
	}

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		s.fail(w, r, formError(err))
		return
	}
	data, ok, err := formFile(r, "pack")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if !ok {
		s.fail(w, r, cserrors.New(cserrors.ErrCodeInvalidInput, "missing pack field"))
		return
	}
	arc, err := archive.ZipBytes(data)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	logger := s.logger.With("request_id", middleware.GetReqID(r.Context()))
	res, err := s.runner.Generate(r.Context(), arc, pipeline.Options{
		MergeMode: mode,
		Reference: s.reference,
		Logger:    logger,
		Progress: pipeline.ProgressFunc(func(p float64, label string) {
			logger.Debug("progress", "percent", p, "label", label)
		}),
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}

	pack, err := skinpack.FromSkins(q.Get("name"), q.Get("description"), res.Skins)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if err := addExtras(pack, r); err != nil {
		s.fail(w, r, err)
		return
	}
	if pack.Len() == 0 {
		s.fail(w, r, cserrors.New(cserrors.ErrCodeMissingAsset, "no full blocks found to process"))
		return
	}

	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", pack.FileName(format)))
	w.Header().Set("X-Cubeskin-Mode", res.Mode)
	w.Header().Set("X-Cubeskin-Skins", fmt.Sprint(len(res.Skins)))
	w.Header().Set("X-Cubeskin-Skipped", fmt.Sprint(len(res.Skipped)))
	w.WriteHeader(http.StatusOK)
	if err := pack.Write(w); err != nil {
		logger.Error("write pack", "error", err)
	}
}

// addExtras adds every "extra" upload to pack as an additional skin.
func addExtras(pack *skinpack.Pack, r *http.Request) error {
	if r.MultipartForm == nil {
		return nil
	}
	for _, fh := range r.MultipartForm.File["extra"] {
		f, err := fh.Open()
		if err != nil {
			return formError(err)
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			return formError(err)
		}
		img, err := atlas.Decode(data)
		if err != nil {
			return cserrors.Wrap(cserrors.ErrCodeDecodeFailure, err, "decode extra %s", fh.Filename)
		}
		png, err := atlas.PNG(img)
		if err != nil {
			return cserrors.Wrap(cserrors.ErrCodeInternal, err, "encode extra %s", fh.Filename)
		}
		pack.AddExtra(fh.Filename, png)
	}
	return nil
}

// parseMergeQuery accepts an empty merge mode; the pipeline reports it only
// when both tables turn out to be present.
func parseMergeQuery(s string) (blocks.MergeMode, error) {
	if s == "" {
		return "", nil
	}
	return blocks.ParseMergeMode(s)
}

// =============================================================================
// Helpers
// =============================================================================

// formFile reads the uploaded file in field. It reports false when the field
// is absent.
func formFile(r *http.Request, field string) ([]byte, bool, error) {
	f, _, err := r.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, formError(err)
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return nil, false, formError(err)
	}
	return data, true, nil
}

// errTooLarge marks request bodies over the upload limit.
var errTooLarge = errors.New("request body too large")

func formError(err error) error {
	var mbe *http.MaxBytesError
	if errors.As(err, &mbe) {
		return fmt.Errorf("%w: limit is %d bytes", errTooLarge, mbe.Limit)
	}
	return cserrors.Wrap(cserrors.ErrCodeInvalidInput, err, "read multipart form")
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// fail writes err as a JSON error response.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, errTooLarge) {
		writeError(w, http.StatusRequestEntityTooLarge, "REQUEST_TOO_LARGE", err.Error())
		return
	}
	code := cserrors.GetCode(err)
	if code == "" {
		code = cserrors.ErrCodeInternal
	}
	status := statusFor(code)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "path", r.URL.Path, "error", err)
	}
	writeError(w, status, string(code), cserrors.UserMessage(err))
}

// statusFor maps error codes onto HTTP statuses.
func statusFor(code cserrors.Code) int {
	switch code {
	case cserrors.ErrCodeInvalidInput,
		cserrors.ErrCodeInvalidArchive,
		cserrors.ErrCodeInvalidMergeMode,
		cserrors.ErrCodeInvalidIdentifier,
		cserrors.ErrCodeInvalidPath,
		cserrors.ErrCodeMalformedInput,
		cserrors.ErrCodeDecodeFailure,
		cserrors.ErrCodeIncompleteFaceSet:
		return http.StatusBadRequest
	case cserrors.ErrCodeNotFound, cserrors.ErrCodeFileNotFound:
		return http.StatusNotFound
	case cserrors.ErrCodeMissingAsset, cserrors.ErrCodeClassificationReject:
		return http.StatusUnprocessableEntity
	case cserrors.ErrCodeNetwork:
		return http.StatusBadGateway
	case cserrors.ErrCodeTimeout:
		return http.StatusGatewayTimeout
	case cserrors.ErrCodeUnsupported:
		return http.StatusNotImplemented
	}
	return http.StatusInternalServerError
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{Code: code, Message: message})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
