package client

import (
	"context"
	"net/url"
	"strconv"
	"time"

	"github.com/turtacn/SeqPrep/pkg/errors"
	"github.com/turtacn/SeqPrep/pkg/types/common"
	"github.com/turtacn/SeqPrep/pkg/types/sequence"
)

const apiPrefix = "/api/v1"

// Record is one input sequence of a batch.
type Record struct {
	ID       string            `json:"id"`
	Sequence string            `json:"sequence"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// Result is the outcome for one record.  Error is set when the record
// failed; IDs are then empty.
type Result struct {
	ID       string              `json:"id"`
	SourceID string              `json:"source_id,omitempty"`
	IDs      sequence.IDSequence `json:"ids,omitempty"`
	Error    *common.ErrorDetail `json:"error,omitempty"`
	Metadata map[string]string   `json:"metadata,omitempty"`
}

// OK reports whether the record was encoded.
func (r Result) OK() bool { return r.Error == nil }

// BatchSummary counts the outcomes of a batch.
type BatchSummary struct {
	Total     int           `json:"total"`
	Succeeded int           `json:"succeeded"`
	Failed    int           `json:"failed"`
	Duration  time.Duration `json:"duration"`
}

// Encoded is the encoding of a single sequence.  ID is the id passed to
// Encode, or a server-generated one when that was empty.
type Encoded struct {
	ID     string                 `json:"id"`
	IDs    sequence.IDSequence    `json:"ids"`
	Tokens sequence.TokenSequence `json:"tokens,omitempty"`
	Length int                    `json:"length"`
}

// BatchEncoded is the encoding of a batch.
type BatchEncoded struct {
	Results []Result     `json:"results"`
	Summary BatchSummary `json:"summary"`
}

// TokenEntry is one vocabulary row.
type TokenEntry struct {
	Token string `json:"token"`
	ID    int    `json:"id"`
}

// VocabularyPage is one page of the server vocabulary.
type VocabularyPage struct {
	Size       int          `json:"size"`
	Tokens     []TokenEntry `json:"tokens"`
	Pagination common.Pagination `json:"-"`
}

// PipelineInfo describes the server pipeline.
type PipelineInfo struct {
	Stages        map[string]string `json:"stages"`
	Deterministic bool              `json:"deterministic"`
	CacheEnabled  bool              `json:"cache_enabled"`
	Vocabulary    int               `json:"vocabulary_size"`
}

// Liveness is the body of /healthz.
type Liveness struct {
	Status  common.HealthStatus `json:"status"`
	Version string              `json:"version"`
	Uptime  string              `json:"uptime"`
}

type encodeRequest struct {
	ID            string   `json:"id,omitempty"`
	Sequence      string   `json:"sequence,omitempty"`
	Records       []Record `json:"records,omitempty"`
	IncludeTokens bool     `json:"include_tokens,omitempty"`
}

// Encode encodes one raw sequence.  With includeTokens the decoded tokens
// are returned as well.
func (c *Client) Encode(ctx context.Context, id, raw string, includeTokens bool) (*Encoded, error) {
	if raw == "" {
		return nil, errors.New(errors.CodeEmptySequence, "sequence is empty")
	}
	var resp common.APIResponse[Encoded]
	if err := c.post(ctx, apiPrefix+"/encode", encodeRequest{ID: id, Sequence: raw, IncludeTokens: includeTokens}, &resp); err != nil {
		return nil, err
	}
	return &resp.Data, nil
}

// EncodeBatch encodes records.  Per-record failures are reported in the
// results, not as an error.
func (c *Client) EncodeBatch(ctx context.Context, records []Record) (*BatchEncoded, error) {
	if len(records) == 0 {
		return nil, errors.InvalidParam("records are required")
	}
	var resp common.APIResponse[BatchEncoded]
	if err := c.post(ctx, apiPrefix+"/encode", encodeRequest{Records: records}, &resp); err != nil {
		return nil, err
	}
	return &resp.Data, nil
}

// Vocabulary returns one page of the vocabulary ordered by id.  Zero values
// select the server defaults.
func (c *Client) Vocabulary(ctx context.Context, page, pageSize int) (*VocabularyPage, error) {
	q := url.Values{}
	if page > 0 {
		q.Set("page", strconv.Itoa(page))
	}
	if pageSize > 0 {
		q.Set("page_size", strconv.Itoa(pageSize))
	}
	path := apiPrefix + "/vocabulary"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}
	var resp common.APIResponse[VocabularyPage]
	if err := c.get(ctx, path, &resp); err != nil {
		return nil, err
	}
	out := resp.Data
	if resp.Pagination != nil {
		out.Pagination = *resp.Pagination
	}
	return &out, nil
}

// Token looks up the id of token.  An unknown token is an *APIError with
// IsNotFound true.
func (c *Client) Token(ctx context.Context, token string) (*TokenEntry, error) {
	if token == "" {
		return nil, errors.InvalidParam("token is required")
	}
	var resp common.APIResponse[TokenEntry]
	if err := c.get(ctx, apiPrefix+"/vocabulary/tokens/"+url.PathEscape(token), &resp); err != nil {
		return nil, err
	}
	return &resp.Data, nil
}

// Pipeline describes the server pipeline.
func (c *Client) Pipeline(ctx context.Context) (*PipelineInfo, error) {
	var resp common.APIResponse[PipelineInfo]
	if err := c.get(ctx, apiPrefix+"/pipeline", &resp); err != nil {
		return nil, err
	}
	return &resp.Data, nil
}

// Health calls the liveness probe.
func (c *Client) Health(ctx context.Context) (*Liveness, error) {
	var out Liveness
	if err := c.get(ctx, "/healthz", &out); err != nil {
		return nil, err
	}
	return &out, nil
}
