package handlers

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/SeqPrep/internal/application/encoding"
	"github.com/turtacn/SeqPrep/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/SeqPrep/internal/interfaces/http/middleware"
	"github.com/turtacn/SeqPrep/internal/preprocessing"
	"github.com/turtacn/SeqPrep/pkg/errors"
	"github.com/turtacn/SeqPrep/pkg/types/common"
	"github.com/turtacn/SeqPrep/pkg/types/sequence"
)

// EncodingService is the part of encoding.Service the HTTP API uses.
type EncodingService interface {
	Encode(ctx context.Context, raw string) (sequence.IDSequence, error)
	EncodeBatch(ctx context.Context, records []encoding.Record) ([]encoding.Result, error)
	Preprocessor() *preprocessing.Preprocessor
	CacheEnabled() bool
}

// EncodeRequest is the body of POST /api/v1/encode.  Exactly one of
// Sequence and Records is expected; Records takes precedence.
type EncodeRequest struct {
	ID            string            `json:"id"`
	Sequence      string            `json:"sequence"`
	Records       []encoding.Record `json:"records"`
	IncludeTokens bool              `json:"include_tokens"`
}

// EncodeResponse is returned for a single sequence.  ID echoes the request
// id, or is generated when the request carries none.
type EncodeResponse struct {
	ID     string                 `json:"id"`
	IDs    sequence.IDSequence    `json:"ids"`
	Tokens sequence.TokenSequence `json:"tokens,omitempty"`
	Length int                    `json:"length"`
}

// BatchEncodeResponse is returned for a batch of records.
type BatchEncodeResponse struct {
	Results []encoding.Result     `json:"results"`
	Summary encoding.BatchSummary `json:"summary"`
}

// EncodeHandler serves the encoding endpoint.
type EncodeHandler struct {
	svc          EncodingService
	maxBatchSize int
	logger       logging.Logger
}

// NewEncodeHandler creates an EncodeHandler.  maxBatchSize <= 0 disables the
// batch size limit.
func NewEncodeHandler(svc EncodingService, maxBatchSize int, logger logging.Logger) *EncodeHandler {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &EncodeHandler{svc: svc, maxBatchSize: maxBatchSize, logger: logger}
}

// RegisterRoutes registers the encoding routes on r.
func (h *EncodeHandler) RegisterRoutes(r gin.IRoutes) {
	r.POST("/encode", h.Encode)
}

// Encode handles POST /encode.
func (h *EncodeHandler) Encode(c *gin.Context) {
	var req EncodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeAppError(c, errors.Wrap(err, errors.CodeInvalidParam, "invalid request body"))
		return
	}

	if len(req.Records) > 0 {
		h.encodeBatch(c, req.Records)
		return
	}
	if req.Sequence == "" {
		writeAppError(c, errors.New(errors.CodeEmptySequence, "sequence or records is required"))
		return
	}

	ids, err := h.svc.Encode(c.Request.Context(), req.Sequence)
	if err != nil {
		writeAppError(c, err)
		return
	}
	resp := EncodeResponse{
		ID:     req.ID,
		IDs:    ids,
		Length: len(ids),
	}
	if resp.ID == "" {
		resp.ID = string(common.NewID())
	}
	if req.IncludeTokens {
		resp.Tokens = h.svc.Preprocessor().Vocabulary().Decode(ids)
	}
	writeSuccess(c, http.StatusOK, resp)
}

func (h *EncodeHandler) encodeBatch(c *gin.Context, records []encoding.Record) {
	if h.maxBatchSize > 0 && len(records) > h.maxBatchSize {
		writeAppError(c, errors.InvalidParam("batch too large").
			WithDetail(fmt.Sprintf("records=%d max=%d", len(records), h.maxBatchSize)))
		return
	}

	start := time.Now()
	results, err := h.svc.EncodeBatch(c.Request.Context(), records)
	if err != nil {
		writeAppError(c, err)
		return
	}
	summary := encoding.Summarize(results, time.Since(start))
	h.logger.Debug("batch encoded",
		logging.Int("total", summary.Total),
		logging.Int("failed", summary.Failed),
		logging.String("request_id", middleware.GetRequestID(c)))
	writeSuccess(c, http.StatusOK, BatchEncodeResponse{Results: results, Summary: summary})
}
