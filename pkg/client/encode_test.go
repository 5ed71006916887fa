package client

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/SeqPrep/internal/application/encoding"
	httpapi "github.com/turtacn/SeqPrep/internal/interfaces/http"
	"github.com/turtacn/SeqPrep/internal/interfaces/http/handlers"
	"github.com/turtacn/SeqPrep/internal/preprocessing/vocab"
	"github.com/turtacn/SeqPrep/internal/testutil"
	"github.com/turtacn/SeqPrep/pkg/errors"
	"github.com/turtacn/SeqPrep/pkg/types/common"
	"github.com/turtacn/SeqPrep/pkg/types/sequence"
)

// newServerClient serves a deterministic k=3 pipeline padded and truncated
// to 8 positions.
func newServerClient(t *testing.T) *Client {
	t.Helper()
	cfg := testutil.IdentityPipeline(8)
	pre := testutil.NewPreprocessor(t, cfg)
	svc := encoding.NewService(pre, cfg)

	router := httpapi.NewRouter(httpapi.RouterConfig{
		Mode:              "test",
		HealthHandler:     handlers.NewHealthHandler("test"),
		EncodeHandler:     handlers.NewEncodeHandler(svc, 4, nil),
		VocabularyHandler: handlers.NewVocabularyHandler(svc),
	})
	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	c, err := New(server.URL, WithRetryMax(0))
	require.NoError(t, err)
	return c
}

func TestEncode(t *testing.T) {
	c := newServerClient(t)
	out, err := c.Encode(context.Background(), "r1", "ACGTAC", true)
	require.NoError(t, err)
	assert.Equal(t, "r1", out.ID)
	assert.Equal(t, 8, out.Length)
	assert.Len(t, out.IDs, 8)
	require.Len(t, out.Tokens, 8)
	assert.Equal(t, sequence.Position{"ACG"}, out.Tokens[0])
}

func TestEncode_GeneratesIDWhenMissing(t *testing.T) {
	c := newServerClient(t)
	out, err := c.Encode(context.Background(), "", "ACGTAC", false)
	require.NoError(t, err)
	assert.NoError(t, common.ID(out.ID).Validate())
	assert.Empty(t, out.Tokens)
}

func TestEncode_EmptySequence(t *testing.T) {
	c := newServerClient(t)
	_, err := c.Encode(context.Background(), "r1", "", false)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.CodeEmptySequence))
}

func TestEncodeBatch(t *testing.T) {
	c := newServerClient(t)
	out, err := c.EncodeBatch(context.Background(), []Record{
		{ID: "a", Sequence: "ACGTACGT"},
		{ID: "b", Sequence: ""},
	})
	require.NoError(t, err)
	require.Len(t, out.Results, 2)
	assert.True(t, out.Results[0].OK())
	assert.Len(t, out.Results[0].IDs, 8)
	assert.False(t, out.Results[1].OK())
	assert.Equal(t, errors.CodeEmptySequence.String(), out.Results[1].Error.Code)
	assert.Equal(t, 2, out.Summary.Total)
	assert.Equal(t, 1, out.Summary.Failed)
}

func TestEncodeBatch_TooLarge(t *testing.T) {
	c := newServerClient(t)
	records := make([]Record, 5)
	for i := range records {
		records[i] = Record{ID: string(rune('a' + i)), Sequence: "ACGT"}
	}
	_, err := c.EncodeBatch(context.Background(), records)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 400, apiErr.StatusCode)
	assert.Equal(t, errors.CodeInvalidParam.String(), apiErr.Code)
	assert.Equal(t, "records=5 max=4", apiErr.Detail)
}

func TestEncodeBatch_Empty(t *testing.T) {
	c := newServerClient(t)
	_, err := c.EncodeBatch(context.Background(), nil)
	assert.True(t, errors.IsCode(err, errors.CodeInvalidParam))
}

func TestVocabulary(t *testing.T) {
	c := newServerClient(t)
	page, err := c.Vocabulary(context.Background(), 2, 10)
	require.NoError(t, err)
	assert.Equal(t, 66, page.Size)
	assert.Len(t, page.Tokens, 10)
	assert.Equal(t, 10, page.Tokens[0].ID)
	assert.Equal(t, int64(66), page.Pagination.Total)
	assert.Equal(t, 2, page.Pagination.Page)
}

func TestToken(t *testing.T) {
	c := newServerClient(t)
	entry, err := c.Token(context.Background(), sequence.UnkToken)
	require.NoError(t, err)
	assert.Equal(t, TokenEntry{Token: sequence.UnkToken, ID: vocab.UnkID}, *entry)

	_, err = c.Token(context.Background(), "ZZZ")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.True(t, apiErr.IsNotFound())
	assert.Equal(t, "token=ZZZ", apiErr.Detail)
}

func TestPipelineAndHealth(t *testing.T) {
	c := newServerClient(t)
	info, err := c.Pipeline(context.Background())
	require.NoError(t, err)
	assert.True(t, info.Deterministic)
	assert.False(t, info.CacheEnabled)
	assert.Equal(t, 66, info.Vocabulary)
	assert.Equal(t, "identity", info.Stages["augmentation"])

	live, err := c.Health(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "test", live.Version)
}
