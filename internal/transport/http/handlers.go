package http

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"tabcli/internal/config"
	"tabcli/internal/dataset"
	apperrors "tabcli/internal/errors"
	"tabcli/internal/stats"
	"tabcli/internal/transform"
)

type contextKey string

const datasetKey contextKey = "dataset"

// Handler serves the dataset API.
type Handler struct {
	store    *Store
	logger   *slog.Logger
	validate *validator.Validate
	limits   config.LimitsConfig
}

// NewHandler creates a handler backed by the given store.
func NewHandler(store *Store, logger *slog.Logger, limits config.LimitsConfig) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		store:    store,
		logger:   logger,
		validate: validator.New(),
		limits:   limits,
	}
}

// Routes returns the API router.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Post("/datasets", h.createDataset)
	r.Route("/datasets/{datasetID}", func(r chi.Router) {
		r.Use(h.datasetCtx)
		r.Get("/", h.getDataset)
		r.Get("/classification", h.getClassification)
		r.Get("/stats", h.getStats)
		r.Get("/correlation", h.getCorrelation)
		r.Get("/missing", h.getMissingProfile)
		r.Get("/duplicates", h.getDuplicates)
		r.Post("/transforms", h.applyTransform)
		r.Post("/undo", h.undo)
	})
	return r
}

// datasetCtx resolves {datasetID} and loads the dataset into the request
// context. Malformed IDs are 400, unknown ones 404.
func (h *Handler) datasetCtx(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := chi.URLParam(r, "datasetID")
		id, err := uuid.Parse(raw)
		if err != nil {
			h.writeError(w, r, apperrors.NewInvalidRequest("resolve dataset", "dataset ID must be a UUID"))
			return
		}
		ds, ok := h.store.Get(id)
		if !ok {
			h.writeError(w, r, apperrors.NewNotFound("resolve dataset", "dataset "+raw+" does not exist"))
			return
		}
		ctx := context.WithValue(r.Context(), datasetKey, ds)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func datasetFrom(ctx context.Context) *dataset.Dataset {
	return ctx.Value(datasetKey).(*dataset.Dataset)
}

type createDatasetRequest struct {
	Header            []string   `json:"header" validate:"required,min=1"`
	Rows              [][]string `json:"rows"`
	MissingIndicators []string   `json:"missing_indicators,omitempty"`
}

type datasetResponse struct {
	ID      uuid.UUID `json:"id"`
	Rows    int       `json:"rows"`
	Columns []string  `json:"columns"`
}

func (h *Handler) createDataset(w http.ResponseWriter, r *http.Request) {
	var req createDatasetRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		h.writeError(w, r, apperrors.Wrap(apperrors.CodeInvalidRequest, "create dataset", "malformed request body", err))
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		h.writeError(w, r, apperrors.Wrap(apperrors.CodeInvalidRequest, "create dataset", "invalid request", err))
		return
	}
	if len(req.Rows) > h.limits.MaxRows {
		h.writeError(w, r, apperrors.NewInvalidRequest("create dataset",
			"dataset exceeds the row limit of "+strconv.Itoa(h.limits.MaxRows)))
		return
	}
	if len(req.Header) > h.limits.MaxColumns {
		h.writeError(w, r, apperrors.NewInvalidRequest("create dataset",
			"dataset exceeds the column limit of "+strconv.Itoa(h.limits.MaxColumns)))
		return
	}

	var opts *dataset.LoadOptions
	if len(req.MissingIndicators) > 0 {
		opts = &dataset.LoadOptions{MissingIndicators: req.MissingIndicators}
	}
	ds, err := dataset.FromRecords(req.Header, req.Rows, opts)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.store.Add(ds)
	datasetsLoaded.Inc()

	h.logger.InfoContext(r.Context(), "dataset created",
		slog.String("dataset_id", ds.ID().String()),
		slog.Int("rows", ds.Rows()),
		slog.Int("columns", ds.Cols()))

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, datasetResponse{ID: ds.ID(), Rows: ds.Rows(), Columns: ds.ColumnNames()})
}

type pageResponse struct {
	ID      uuid.UUID  `json:"id"`
	Rows    int        `json:"rows"`
	Columns []string   `json:"columns"`
	Offset  int        `json:"offset"`
	Data    [][]string `json:"data"`
}

func (h *Handler) getDataset(w http.ResponseWriter, r *http.Request) {
	ds := datasetFrom(r.Context())

	offset := queryInt(r, "offset", 0)
	limit := queryInt(r, "limit", 100)
	if offset < 0 || limit < 0 {
		h.writeError(w, r, apperrors.NewInvalidRequest("get dataset", "offset and limit must be non-negative"))
		return
	}
	if offset > ds.Rows() {
		offset = ds.Rows()
	}
	end := offset + limit
	if end > ds.Rows() {
		end = ds.Rows()
	}

	data := make([][]string, 0, end-offset)
	for i := offset; i < end; i++ {
		row := make([]string, ds.Cols())
		for j := 0; j < ds.Cols(); j++ {
			row[j] = ds.Cell(i, j).String()
		}
		data = append(data, row)
	}

	render.JSON(w, r, pageResponse{
		ID:      ds.ID(),
		Rows:    ds.Rows(),
		Columns: ds.ColumnNames(),
		Offset:  offset,
		Data:    data,
	})
}

func (h *Handler) getClassification(w http.ResponseWriter, r *http.Request) {
	ds := datasetFrom(r.Context())
	classes := dataset.ClassifyAll(ds)
	resp := make(map[string]string, len(classes))
	for name, c := range classes {
		resp[name] = c.String()
	}
	render.JSON(w, r, resp)
}

type transformResponse struct {
	ID      uuid.UUID         `json:"id"`
	Parent  uuid.UUID         `json:"parent"`
	Rows    int               `json:"rows"`
	Columns []string          `json:"columns"`
	Outcome transform.Outcome `json:"outcome"`
}

func (h *Handler) applyTransform(w http.ResponseWriter, r *http.Request) {
	ds := datasetFrom(r.Context())

	var req transform.Request
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		h.writeError(w, r, apperrors.Wrap(apperrors.CodeInvalidRequest, "apply transform", "malformed request body", err))
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		h.writeError(w, r, apperrors.Wrap(apperrors.CodeInvalidRequest, "apply transform", "invalid request", err))
		return
	}

	ctx := r.Context()
	if h.limits.OperationTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.limits.OperationTimeout)
		defer cancel()
	}

	start := time.Now()
	result, outcome, err := transform.Apply(ctx, ds, req)
	transformDuration.WithLabelValues(string(req.Kind)).Observe(time.Since(start).Seconds())
	if err != nil {
		transformsTotal.WithLabelValues(string(req.Kind), "error").Inc()
		h.writeError(w, r, err)
		return
	}
	transformsTotal.WithLabelValues(string(req.Kind), "ok").Inc()

	h.store.AddDerived(ds.ID(), result)
	h.logger.InfoContext(r.Context(), "transform applied",
		slog.String("kind", string(req.Kind)),
		slog.String("dataset_id", ds.ID().String()),
		slog.String("result_id", result.ID().String()),
		slog.Int("rows", result.Rows()),
		slog.Duration("duration", time.Since(start)))

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, transformResponse{
		ID:      result.ID(),
		Parent:  ds.ID(),
		Rows:    result.Rows(),
		Columns: result.ColumnNames(),
		Outcome: outcome,
	})
}

// undo returns the dataset this one was derived from. Loaded roots have
// nothing to undo to.
func (h *Handler) undo(w http.ResponseWriter, r *http.Request) {
	ds := datasetFrom(r.Context())
	parentID, ok := h.store.Parent(ds.ID())
	if !ok {
		h.writeError(w, r, apperrors.NewInvalidRequest("undo", "dataset has no prior version"))
		return
	}
	parent, ok := h.store.Get(parentID)
	if !ok {
		h.writeError(w, r, apperrors.NewNotFound("undo", "prior version is no longer stored"))
		return
	}
	render.JSON(w, r, datasetResponse{ID: parent.ID(), Rows: parent.Rows(), Columns: parent.ColumnNames()})
}

func (h *Handler) getStats(w http.ResponseWriter, r *http.Request) {
	ds := datasetFrom(r.Context())
	statsRequests.WithLabelValues("stats").Inc()

	report, err := stats.Describe(r.Context(), ds)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	render.JSON(w, r, report)
}

type correlationResponse struct {
	Method  stats.Method `json:"method"`
	Columns []string     `json:"columns"`
	Values  [][]*float64 `json:"values"`
	Pairs   []stats.Pair `json:"strongest_pairs,omitempty"`
}

func (h *Handler) getCorrelation(w http.ResponseWriter, r *http.Request) {
	ds := datasetFrom(r.Context())
	statsRequests.WithLabelValues("correlation").Inc()

	methodParam := r.URL.Query().Get("method")
	if methodParam == "" {
		methodParam = string(stats.Pearson)
	}
	method, err := stats.ParseMethod(methodParam)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	matrix, err := stats.Correlate(r.Context(), ds, method)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	// Undefined coefficients serialize as null.
	values := make([][]*float64, len(matrix.Columns))
	for i := range matrix.Columns {
		values[i] = make([]*float64, len(matrix.Columns))
		for j := range matrix.Columns {
			if v, ok := matrix.At(i, j); ok {
				v := v
				values[i][j] = &v
			}
		}
	}

	resp := correlationResponse{Method: matrix.Method, Columns: matrix.Columns, Values: values}
	if limit := queryInt(r, "top", 0); limit > 0 {
		resp.Pairs = matrix.StrongestPairs(limit)
	}
	render.JSON(w, r, resp)
}

func (h *Handler) getMissingProfile(w http.ResponseWriter, r *http.Request) {
	ds := datasetFrom(r.Context())
	treatEmpty := r.URL.Query().Get("treat_empty") == "true"
	render.JSON(w, r, transform.Profile(ds, treatEmpty))
}

type duplicatesResponse struct {
	Duplicates int      `json:"duplicates"`
	Columns    []string `json:"columns,omitempty"`
}

func (h *Handler) getDuplicates(w http.ResponseWriter, r *http.Request) {
	ds := datasetFrom(r.Context())

	var columns []string
	if raw := r.URL.Query()["column"]; len(raw) > 0 {
		columns = raw
	}
	count, err := transform.CountDuplicates(ds, columns)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	render.JSON(w, r, duplicatesResponse{Duplicates: count, Columns: columns})
}

type errorResponse struct {
	Code    apperrors.Code `json:"code"`
	Message string         `json:"message"`
	Column  string         `json:"column,omitempty"`
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := apperrors.HTTPStatus(err)
	resp := errorResponse{Code: apperrors.CodeOf(err), Message: err.Error()}
	if resp.Code == "" {
		resp.Code = "INTERNAL"
	}
	if status >= http.StatusInternalServerError {
		h.logger.ErrorContext(r.Context(), "request failed",
			slog.String("path", r.URL.Path),
			slog.String("error", err.Error()))
	}
	render.Status(r, status)
	render.JSON(w, r, resp)
}

func queryInt(r *http.Request, key string, fallback int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}
