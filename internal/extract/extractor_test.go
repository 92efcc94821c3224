package extract

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tatarana/ocr-engine/constants"
	"github.com/tatarana/ocr-engine/internal/common"
	"github.com/tatarana/ocr-engine/internal/entity"
	"github.com/tatarana/ocr-engine/internal/llm"
	"github.com/tatarana/ocr-engine/internal/registry"
)

// scriptedGenerator returns its responses in order; an entry with err set
// fails that call.
type scriptedGenerator struct {
	script []scriptStep
	calls  int
	seen   []llm.GenerateRequest
}

type scriptStep struct {
	resp string
	err  error
}

func (g *scriptedGenerator) Generate(_ context.Context, req llm.GenerateRequest) (string, error) {
	g.seen = append(g.seen, req)
	if g.calls >= len(g.script) {
		return "", context.DeadlineExceeded
	}
	step := g.script[g.calls]
	g.calls++
	if step.err != nil {
		return "", step.err
	}
	return step.resp, nil
}

func testJob(t *testing.T) registry.ExtractionJob {
	t.Helper()
	reg := registry.New()
	cls := entity.Classification{
		Bank:         constants.BankPicpay,
		DocumentType: constants.BankStatement,
		Confidence:   0.95,
	}
	doc := entity.Document{Name: "extrato.pdf", MIMEType: constants.MediaTypePDF, Data: []byte("%PDF-1.4")}
	job, err := reg.Resolve(cls, doc)
	require.NoError(t, err)
	return job
}

func fastPolicy() RetryPolicy {
	return RetryPolicy{MaxAttempts: 3, InitialBackoff: time.Millisecond}
}

const goodResponse = `{"transactions": [
	{"date": "05/03/2024", "description": "Pix recebido", "amount": "150,00", "direction": "credit"},
	{"date": "06/03/2024", "description": "Pagamento de boleto", "amount": "89,90", "direction": "debit"}
]}`

func TestExtractOK(t *testing.T) {
	gen := &scriptedGenerator{script: []scriptStep{{resp: goodResponse}}}
	e := New(gen, fastPolicy(), nil)

	cands, err := e.Extract(context.Background(), testJob(t))
	require.NoError(t, err)
	require.Len(t, cands, 2)
	assert.Equal(t, "Pix recebido", cands[0].Description)
	assert.Equal(t, "150,00", cands[0].Amount)
	assert.Equal(t, 1, gen.calls)
}

func TestExtractEmptyIsNotAnError(t *testing.T) {
	gen := &scriptedGenerator{script: []scriptStep{{resp: `{"transactions": []}`}}}
	e := New(gen, fastPolicy(), nil)

	cands, err := e.Extract(context.Background(), testJob(t))
	require.NoError(t, err)
	assert.Empty(t, cands)
}

func TestExtractRetriesTransientErrors(t *testing.T) {
	gen := &scriptedGenerator{script: []scriptStep{
		{err: common.ErrRateLimited},
		{resp: goodResponse},
	}}
	e := New(gen, fastPolicy(), nil)

	cands, err := e.Extract(context.Background(), testJob(t))
	require.NoError(t, err)
	assert.Len(t, cands, 2)
	assert.Equal(t, 2, gen.calls)
}

func TestExtractDoesNotRetryAuthErrors(t *testing.T) {
	gen := &scriptedGenerator{script: []scriptStep{
		{err: common.ErrExtractionAuth},
		{resp: goodResponse},
	}}
	e := New(gen, fastPolicy(), nil)

	_, err := e.Extract(context.Background(), testJob(t))
	assert.ErrorIs(t, err, common.ErrExtractionAuth)
	assert.Equal(t, 1, gen.calls)
}

func TestExtractRewordsOnceOnMalformedResponse(t *testing.T) {
	gen := &scriptedGenerator{script: []scriptStep{
		{resp: "here are your transactions: a lot of them"},
		{resp: goodResponse},
	}}
	e := New(gen, fastPolicy(), nil)

	cands, err := e.Extract(context.Background(), testJob(t))
	require.NoError(t, err)
	assert.Len(t, cands, 2)
	require.Equal(t, 2, gen.calls)
	// the second request must carry the corrective reword
	assert.NotEqual(t, gen.seen[0].Prompt, gen.seen[1].Prompt)
	assert.True(t, strings.HasPrefix(gen.seen[1].Prompt, gen.seen[0].Prompt))
}

func TestExtractSurfacesParseErrorAfterReword(t *testing.T) {
	gen := &scriptedGenerator{script: []scriptStep{
		{resp: "nope"},
		{resp: "still nope"},
	}}
	e := New(gen, fastPolicy(), nil)

	_, err := e.Extract(context.Background(), testJob(t))
	assert.ErrorIs(t, err, common.ErrExtractionParse)
	assert.Equal(t, 2, gen.calls)
}

func TestExtractRejectsShapeMismatches(t *testing.T) {
	tests := []struct {
		name string
		resp string
	}{
		{"missing transactions key", `{"rows": []}`},
		{"transactions not array", `{"transactions": {"date": "x"}}`},
		{"row missing date", `{"transactions": [{"description": "x", "amount": "1,00"}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen := &scriptedGenerator{script: []scriptStep{{resp: tt.resp}, {resp: tt.resp}}}
			e := New(gen, fastPolicy(), nil)
			_, err := e.Extract(context.Background(), testJob(t))
			assert.ErrorIs(t, err, common.ErrExtractionParse)
		})
	}
}

func TestExtractToleratesNumericAmounts(t *testing.T) {
	// models sometimes emit numbers despite being asked for strings
	gen := &scriptedGenerator{script: []scriptStep{
		{resp: `{"transactions": [{"date": "05/03/2024", "description": "Compra", "amount": -42.5}]}`},
	}}
	e := New(gen, fastPolicy(), nil)

	cands, err := e.Extract(context.Background(), testJob(t))
	require.NoError(t, err)
	require.Len(t, cands, 1)
	assert.Equal(t, "-42.5", cands[0].Amount)
}
