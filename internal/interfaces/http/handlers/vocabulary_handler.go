package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/SeqPrep/internal/preprocessing/vocab"
	"github.com/turtacn/SeqPrep/pkg/errors"
)

// TokenEntry is one vocabulary row.
type TokenEntry struct {
	Token string `json:"token"`
	ID    int    `json:"id"`
}

// VocabularyResponse is one page of the vocabulary.
type VocabularyResponse struct {
	Size   int          `json:"size"`
	Tokens []TokenEntry `json:"tokens"`
}

// PipelineResponse describes the configured pipeline.
type PipelineResponse struct {
	Stages        map[string]string `json:"stages"`
	Deterministic bool              `json:"deterministic"`
	CacheEnabled  bool              `json:"cache_enabled"`
	Vocabulary    int               `json:"vocabulary_size"`
}

// VocabularyHandler serves read-only views of the loaded vocabulary and
// pipeline.
type VocabularyHandler struct {
	svc EncodingService
}

func NewVocabularyHandler(svc EncodingService) *VocabularyHandler {
	return &VocabularyHandler{svc: svc}
}

// RegisterRoutes registers the vocabulary routes on r.
func (h *VocabularyHandler) RegisterRoutes(r gin.IRoutes) {
	r.GET("/vocabulary", h.List)
	r.GET("/vocabulary/tokens/:token", h.Lookup)
	r.GET("/pipeline", h.Pipeline)
}

func (h *VocabularyHandler) vocabulary() (*vocab.Vocabulary, error) {
	if h.svc == nil || h.svc.Preprocessor() == nil || h.svc.Preprocessor().Vocabulary() == nil {
		return nil, errors.New(errors.CodeVocabularyMissing, "vocabulary not loaded")
	}
	return h.svc.Preprocessor().Vocabulary(), nil
}

// List handles GET /vocabulary?page=&page_size=.  Tokens are ordered by id.
func (h *VocabularyHandler) List(c *gin.Context) {
	v, err := h.vocabulary()
	if err != nil {
		writeAppError(c, err)
		return
	}
	p := parsePagination(c)
	tokens := v.Tokens()
	p.Total = int64(len(tokens))

	start, end := p.Window(len(tokens))
	page := make([]TokenEntry, 0, end-start)
	for _, tok := range tokens[start:end] {
		page = append(page, TokenEntry{Token: tok, ID: v.ID(tok)})
	}
	writePaginated(c, VocabularyResponse{Size: v.Size(), Tokens: page}, p)
}

// Lookup handles GET /vocabulary/tokens/:token.
func (h *VocabularyHandler) Lookup(c *gin.Context) {
	v, err := h.vocabulary()
	if err != nil {
		writeAppError(c, err)
		return
	}
	token := c.Param("token")
	if !v.Contains(token) {
		writeAppError(c, errors.New(errors.CodeTokenNotFound, "token not found").WithDetail("token="+token))
		return
	}
	writeSuccess(c, http.StatusOK, TokenEntry{Token: token, ID: v.ID(token)})
}

// Pipeline handles GET /pipeline.
func (h *VocabularyHandler) Pipeline(c *gin.Context) {
	v, err := h.vocabulary()
	if err != nil {
		writeAppError(c, err)
		return
	}
	pre := h.svc.Preprocessor()
	writeSuccess(c, http.StatusOK, PipelineResponse{
		Stages:        pre.Describe(),
		Deterministic: pre.Deterministic(),
		CacheEnabled:  h.svc.CacheEnabled(),
		Vocabulary:    v.Size(),
	})
}
