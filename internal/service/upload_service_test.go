package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"finbook/internal/models"
	"finbook/internal/statement"
	"finbook/pkg/config"
)

type fakeResult struct {
	txs []statement.ParsedTransaction
	err error
}

// fakeParser replays queued results; the last result repeats once the
// queue is drained. With block set, Parse waits for release or context
// cancellation like a hanging network call.
type fakeParser struct {
	mu      sync.Mutex
	calls   []ParseOptions
	results []fakeResult
	block   chan struct{}
}

func (f *fakeParser) Parse(ctx context.Context, file UploadFile, opts ParseOptions) ([]statement.ParsedTransaction, error) {
	f.mu.Lock()
	f.calls = append(f.calls, opts)
	var res fakeResult
	if len(f.results) > 0 {
		res = f.results[0]
		if len(f.results) > 1 {
			f.results = f.results[1:]
		}
	}
	f.mu.Unlock()

	if f.block != nil {
		select {
		case <-ctx.Done():
			return nil, statement.WrapParseError(statement.KindNetwork, "parse request failed", ctx.Err())
		case <-f.block:
		}
	}
	return res.txs, res.err
}

func (f *fakeParser) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func (f *fakeParser) optsAt(i int) ParseOptions {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[i]
}

func testUploadConfig() *config.UploadConfig {
	return &config.UploadConfig{
		MaxFileSizeBytes: 10 << 20,
		MaxAttempts:      3,
		BackoffBase:      time.Millisecond,
		BackoffCap:       2 * time.Millisecond,
		PDFRetryDelay:    time.Millisecond,
	}
}

func newTestUploadService(parser StatementParser) *UploadService {
	return NewUploadService(parser, testUploadConfig(), nil, zap.NewNop())
}

func sampleTransactions() []statement.ParsedTransaction {
	return []statement.ParsedTransaction{{
		ID:          uuid.NewString(),
		Date:        time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC),
		Description: "UBER TRIP LAGOS",
		Amount:      decimal.RequireFromString("4.50"),
		Type:        models.TransactionDebit,
		Selected:    true,
	}}
}

func csvFile(name, content string) UploadFile {
	return UploadFile{Name: name, Size: int64(len(content)), LastModified: 1700000000, Content: []byte(content)}
}

func TestUploadValidation(t *testing.T) {
	parser := &fakeParser{}
	svc := newTestUploadService(parser)
	userID := uuid.New()

	t.Run("unsupported extension", func(t *testing.T) {
		_, _, err := svc.Upload(context.Background(), userID, "", csvFile("notes.txt", "hello"), nil)
		require.Error(t, err)
		assert.Equal(t, statement.KindValidation, statement.KindOf(err))
	})

	t.Run("oversize file", func(t *testing.T) {
		file := csvFile("big.csv", "x")
		file.Size = testUploadConfig().MaxFileSizeBytes + 1
		_, _, err := svc.Upload(context.Background(), userID, "", file, nil)
		require.Error(t, err)
		assert.Equal(t, statement.KindValidation, statement.KindOf(err))
	})

	assert.Zero(t, parser.callCount(), "validation failures must not reach the network")
}

func TestUploadSuccessAnnotatesSuggestions(t *testing.T) {
	parser := &fakeParser{results: []fakeResult{{txs: sampleTransactions()}}}
	svc := newTestUploadService(parser)

	uploadID, txs, err := svc.Upload(context.Background(), uuid.New(), "", csvFile("statement.csv", "ignored"), nil)
	require.NoError(t, err)
	require.Len(t, txs, 1)
	require.NotNil(t, txs[0].Suggestion)
	assert.Equal(t, models.CategoryTransport, txs[0].Suggestion.Category)
	assert.Empty(t, txs[0].Category, "suggestions stay advisory")

	phase, percent, err := svc.Status(uploadID)
	require.NoError(t, err)
	assert.Equal(t, PhaseDone, phase)
	assert.Equal(t, 100, percent)
}

func TestUploadRetriesTransientErrors(t *testing.T) {
	netErr := statement.NewParseError(statement.KindNetwork, "server error, try again later")
	parser := &fakeParser{results: []fakeResult{
		{err: netErr},
		{err: netErr},
		{txs: sampleTransactions()},
	}}
	svc := newTestUploadService(parser)

	_, txs, err := svc.Upload(context.Background(), uuid.New(), "", csvFile("statement.xlsx", "ignored"), nil)
	require.NoError(t, err)
	assert.Len(t, txs, 1)
	assert.Equal(t, 3, parser.callCount())
}

func TestUploadExhaustsRetriesOnServerErrors(t *testing.T) {
	parser := &fakeParser{results: []fakeResult{
		{err: statement.NewParseError(statement.KindNetwork, "server error, try again later")},
	}}
	svc := newTestUploadService(parser)

	uploadID, _, err := svc.Upload(context.Background(), uuid.New(), "", csvFile("statement.xlsx", "ignored"), nil)
	require.Error(t, err)
	assert.Equal(t, statement.KindNetwork, statement.KindOf(err))
	assert.Equal(t, 3, parser.callCount(), "bounded attempts, then fatal")

	phase, percent, err := svc.Status(uploadID)
	require.NoError(t, err)
	assert.Equal(t, PhaseFailed, phase)
	assert.Zero(t, percent, "progress resets on failure")
}

func TestUploadAuthErrorIsFatal(t *testing.T) {
	parser := &fakeParser{results: []fakeResult{
		{err: statement.NewParseError(statement.KindAuth, "session expired, please sign in again")},
	}}
	svc := newTestUploadService(parser)

	_, _, err := svc.Upload(context.Background(), uuid.New(), "", csvFile("statement.xlsx", "ignored"), nil)
	require.Error(t, err)
	assert.Equal(t, statement.KindAuth, statement.KindOf(err))
	assert.Equal(t, 1, parser.callCount(), "auth failures never retry")
}

func TestPDFStrategyChainFallsThrough(t *testing.T) {
	providerErr := statement.NewParseError(statement.KindProvider, "model could not extract tables")
	parser := &fakeParser{results: []fakeResult{
		{err: providerErr},
		{err: providerErr},
		{txs: sampleTransactions()},
	}}
	svc := newTestUploadService(parser)

	_, txs, err := svc.Upload(context.Background(), uuid.New(), "", csvFile("statement.pdf", "%PDF"), nil)
	require.NoError(t, err)
	assert.Len(t, txs, 1)
	require.Equal(t, 3, parser.callCount())

	assert.False(t, parser.optsAt(0).UseVision)
	assert.True(t, parser.optsAt(1).UseVision)
	assert.False(t, parser.optsAt(1).ReparseText)
	assert.True(t, parser.optsAt(2).UseVision)
	assert.True(t, parser.optsAt(2).ReparseText)
}

func TestPDFKnownFailureRetriesChainOnce(t *testing.T) {
	parser := &fakeParser{results: []fakeResult{
		{err: statement.NewParseError(statement.KindProvider, "OCR worker crashed in sandbox")},
	}}
	svc := newTestUploadService(parser)

	_, _, err := svc.Upload(context.Background(), uuid.New(), "", csvFile("statement.pdf", "%PDF"), nil)
	require.Error(t, err)
	assert.Equal(t, statement.KindPDFTechnical, statement.KindOf(err))
	// 3 strategies per chain, chain run twice
	assert.Equal(t, 6, parser.callCount())
}

func TestCSVLocalFallbackAfterNetworkExhaustion(t *testing.T) {
	parser := &fakeParser{results: []fakeResult{
		{err: statement.NewParseError(statement.KindNetwork, "parse request failed")},
	}}
	svc := newTestUploadService(parser)

	content := "Date,Description,Amount\n2024-01-05,\"Coffee, Ltd\",-4.50\n"
	_, txs, err := svc.Upload(context.Background(), uuid.New(), "", csvFile("statement.csv", content), nil)
	require.NoError(t, err)
	assert.Equal(t, 3, parser.callCount(), "network exhaustion precedes the fallback")
	require.Len(t, txs, 1)
	assert.Equal(t, "Coffee, Ltd", txs[0].Description)
	assert.Equal(t, models.TransactionDebit, txs[0].Type)
}

func TestDuplicateSubmissionGuard(t *testing.T) {
	parser := &fakeParser{
		results: []fakeResult{{txs: sampleTransactions()}},
		block:   make(chan struct{}),
	}
	svc := newTestUploadService(parser)
	userID := uuid.New()
	file := csvFile("statement.csv", "ignored")

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _, _ = svc.Upload(context.Background(), userID, "", file, nil)
	}()

	require.Eventually(t, func() bool { return parser.callCount() == 1 }, time.Second, 5*time.Millisecond)

	_, _, err := svc.Upload(context.Background(), userID, "", file, nil)
	require.Error(t, err)
	assert.Equal(t, statement.KindValidation, statement.KindOf(err))

	close(parser.block)
	<-done

	// the guard clears once the first upload finishes
	parser.block = nil
	_, _, err = svc.Upload(context.Background(), userID, "", file, nil)
	assert.NoError(t, err)
}

func TestCancelInFlightUpload(t *testing.T) {
	parser := &fakeParser{block: make(chan struct{})}
	svc := newTestUploadService(parser)

	type result struct {
		err error
	}
	results := make(chan result, 1)
	go func() {
		_, _, err := svc.Upload(context.Background(), uuid.New(), "job-1", csvFile("statement.csv", "ignored"), nil)
		results <- result{err: err}
	}()

	require.Eventually(t, func() bool { return parser.callCount() == 1 }, time.Second, 5*time.Millisecond)
	require.NoError(t, svc.Cancel("job-1"))

	select {
	case res := <-results:
		assert.ErrorIs(t, res.err, ErrUploadCancelled)
	case <-time.After(time.Second):
		t.Fatal("upload did not unblock after cancel")
	}

	phase, _, err := svc.Status("job-1")
	require.NoError(t, err)
	assert.Equal(t, PhaseCancelled, phase)
}
