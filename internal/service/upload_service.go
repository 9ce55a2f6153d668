package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"finbook/internal/statement"
	"finbook/internal/suggest"
	"finbook/pkg/config"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrUploadNotFound  = errors.New("upload not found")
	ErrUploadCancelled = errors.New("upload cancelled")
)

const (
	PhaseUploading = "uploading"
	PhaseWaiting   = "waiting_for_server"
	PhaseDone      = "done"
	PhaseFailed    = "failed"
	PhaseCancelled = "cancelled"
)

var allowedExtensions = map[string]bool{
	".csv":  true,
	".xlsx": true,
	".xls":  true,
	".pdf":  true,
}

// pdfRetrySubstrings are provider failure fragments that historically
// clear up on a second pass, so they earn one silent chain re-run before
// the user is told to switch formats.
var pdfRetrySubstrings = []string{"ocr", "sandbox", "rasteriz"}

// parseStrategy is one way of asking the remote service to read a file.
// Strategies share a uniform attempt contract and are tried in order until
// one succeeds.
type parseStrategy struct {
	name string
	opts ParseOptions
}

func strategiesFor(ext string) []parseStrategy {
	direct := parseStrategy{name: "direct", opts: ParseOptions{Context: "bank statement"}}
	if ext != ".pdf" {
		return []parseStrategy{direct}
	}
	return []parseStrategy{
		direct,
		{name: "vision-ocr", opts: ParseOptions{UseVision: true, Context: "bank statement"}},
		{name: "ocr-text-reparse", opts: ParseOptions{UseVision: true, ReparseText: true, Context: "bank statement"}},
	}
}

type uploadState struct {
	phase   string
	percent int
	cancel  context.CancelFunc
}

// UploadService orchestrates one statement upload: validation, the remote
// parse with retry and fallback, progress reporting and cooperative
// cancellation. All upload state is owned by the service instance, so
// concurrent uploads never share counters.
type UploadService struct {
	parser StatementParser
	cfg    *config.UploadConfig
	assist *suggest.LLMAssist
	logger *zap.Logger

	mu       sync.Mutex
	uploads  map[string]*uploadState
	inflight map[string]struct{}
}

// NewUploadService wires the orchestrator. assist may be nil, in which
// case low-confidence suggestions are left to the keyword engine.
func NewUploadService(parser StatementParser, cfg *config.UploadConfig, assist *suggest.LLMAssist, logger *zap.Logger) *UploadService {
	return &UploadService{
		parser:   parser,
		cfg:      cfg,
		assist:   assist,
		logger:   logger,
		uploads:  make(map[string]*uploadState),
		inflight: make(map[string]struct{}),
	}
}

// Upload runs the full parse pipeline for one file and returns the upload
// id together with the annotated transactions. The caller may pass its own
// uploadID so it can poll or cancel from a second request while this one is
// still running; an empty id gets one assigned. mapping is an optional
// explicit column mapping used by the local CSV fallback.
func (s *UploadService) Upload(ctx context.Context, userID uuid.UUID, uploadID string, file UploadFile, mapping *statement.ColumnMapping) (string, []statement.ParsedTransaction, error) {
	if err := s.validate(file); err != nil {
		return "", nil, err
	}
	if uploadID == "" {
		uploadID = uuid.NewString()
	}

	key := identityKey(userID, file)
	s.mu.Lock()
	if _, busy := s.inflight[key]; busy {
		s.mu.Unlock()
		return "", nil, statement.NewParseError(statement.KindValidation, "this file is already being processed")
	}
	if _, exists := s.uploads[uploadID]; exists {
		s.mu.Unlock()
		return "", nil, statement.NewParseError(statement.KindValidation, "upload id is already in use")
	}
	s.inflight[key] = struct{}{}

	runCtx, cancel := context.WithCancel(ctx)
	state := &uploadState{phase: PhaseUploading, cancel: cancel}
	s.uploads[uploadID] = state
	s.mu.Unlock()

	defer func() {
		cancel()
		s.mu.Lock()
		delete(s.inflight, key)
		s.mu.Unlock()
		// keep the terminal state around for status polling, then drop it
		time.AfterFunc(10*time.Minute, func() {
			s.mu.Lock()
			delete(s.uploads, uploadID)
			s.mu.Unlock()
		})
	}()

	go s.animateProgress(runCtx, state)

	transactions, err := s.parse(runCtx, file, mapping)
	if err != nil {
		if runCtx.Err() != nil {
			s.setState(state, PhaseCancelled, 0)
			return uploadID, nil, ErrUploadCancelled
		}
		s.setState(state, PhaseFailed, 0)
		return uploadID, nil, err
	}

	suggest.Annotate(transactions)
	if s.assist != nil {
		s.assist.Refine(runCtx, transactions)
	}

	s.setState(state, PhaseDone, 100)
	return uploadID, transactions, nil
}

// Status reports the phase and simulated progress of an upload.
func (s *UploadService) Status(uploadID string) (string, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	state, ok := s.uploads[uploadID]
	if !ok {
		return "", 0, ErrUploadNotFound
	}
	return state.phase, state.percent, nil
}

// Cancel requests cooperative cancellation of an in-flight upload. The
// transport request may still resolve, but its result is discarded.
func (s *UploadService) Cancel(uploadID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	state, ok := s.uploads[uploadID]
	if !ok {
		return ErrUploadNotFound
	}
	state.cancel()
	return nil
}

func (s *UploadService) validate(file UploadFile) error {
	ext := strings.ToLower(filepath.Ext(file.Name))
	if !allowedExtensions[ext] {
		return statement.NewParseError(statement.KindValidation,
			fmt.Sprintf("unsupported file type %q, use CSV, Excel or PDF", ext))
	}
	if file.Size > s.cfg.MaxFileSizeBytes {
		return statement.NewParseError(statement.KindValidation,
			fmt.Sprintf("file exceeds the %d MB limit", s.cfg.MaxFileSizeBytes/(1024*1024)))
	}
	return nil
}

func (s *UploadService) parse(ctx context.Context, file UploadFile, mapping *statement.ColumnMapping) ([]statement.ParsedTransaction, error) {
	ext := strings.ToLower(filepath.Ext(file.Name))

	transactions, err := s.runChain(ctx, file, ext)

	if err != nil && ext == ".pdf" && isKnownPDFFailure(err) {
		// one silent re-run of the whole chain before giving up
		s.logger.Info("Known PDF failure, retrying strategy chain once",
			zap.String("file", file.Name), zap.Error(err))
		if werr := sleepCtx(ctx, s.cfg.PDFRetryDelay); werr == nil {
			transactions, err = s.runChain(ctx, file, ext)
			if err != nil && isKnownPDFFailure(err) {
				err = statement.NewParseError(statement.KindPDFTechnical,
					"could not read this PDF, please upload a CSV export instead")
			}
		}
	}

	if err != nil && ctx.Err() == nil && ext == ".csv" && statement.KindOf(err) == statement.KindNetwork {
		s.logger.Info("Remote parsing unavailable, falling back to local CSV parser",
			zap.String("file", file.Name))
		if local, csvErr := statement.ParseCSV(bytes.NewReader(file.Content), mapping); csvErr == nil {
			return local, nil
		}
	}

	return transactions, err
}

// runChain tries each strategy in order. Auth and validation failures
// abort immediately since no other strategy can recover them; everything
// else falls through to the next strategy.
func (s *UploadService) runChain(ctx context.Context, file UploadFile, ext string) ([]statement.ParsedTransaction, error) {
	var lastErr error
	for _, strat := range strategiesFor(ext) {
		transactions, err := s.attemptWithRetry(ctx, file, strat.opts)
		if err == nil {
			return transactions, nil
		}
		lastErr = err

		kind := statement.KindOf(err)
		if kind == statement.KindAuth || kind == statement.KindValidation {
			return nil, err
		}
		if ctx.Err() != nil {
			return nil, err
		}
		s.logger.Warn("Parse strategy failed",
			zap.String("strategy", strat.name),
			zap.String("file", file.Name),
			zap.Error(err),
		)
	}
	return nil, lastErr
}

// attemptWithRetry retries a single strategy on transient failures only,
// with capped linear backoff between attempts.
func (s *UploadService) attemptWithRetry(ctx context.Context, file UploadFile, opts ParseOptions) ([]statement.ParsedTransaction, error) {
	for attempt := 1; ; attempt++ {
		transactions, err := s.parser.Parse(ctx, file, opts)
		if err == nil {
			return transactions, nil
		}
		if !statement.Retryable(err) || attempt >= s.cfg.MaxAttempts {
			return nil, err
		}

		delay := s.cfg.BackoffBase * time.Duration(attempt)
		if delay > s.cfg.BackoffCap {
			delay = s.cfg.BackoffCap
		}
		s.logger.Debug("Retrying parse attempt",
			zap.Int("attempt", attempt),
			zap.Duration("backoff", delay),
		)
		if err := sleepCtx(ctx, delay); err != nil {
			return nil, err
		}
	}
}

// animateProgress drives the simulated progress counter toward 90%, then
// holds in the waiting phase until the request resolves.
func (s *UploadService) animateProgress(ctx context.Context, state *uploadState) {
	ticker := time.NewTicker(150 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.mu.Lock()
			switch {
			case state.phase != PhaseUploading && state.phase != PhaseWaiting:
				s.mu.Unlock()
				return
			case state.percent < 90:
				state.percent += 5
			default:
				state.phase = PhaseWaiting
			}
			s.mu.Unlock()
		}
	}
}

func (s *UploadService) setState(state *uploadState, phase string, percent int) {
	s.mu.Lock()
	state.phase = phase
	state.percent = percent
	s.mu.Unlock()
}

func identityKey(userID uuid.UUID, file UploadFile) string {
	return fmt.Sprintf("%s|%s|%d|%d", userID, file.Name, file.Size, file.LastModified)
}

func isKnownPDFFailure(err error) bool {
	msg := strings.ToLower(err.Error())
	for _, substr := range pdfRetrySubstrings {
		if strings.Contains(msg, substr) {
			return true
		}
	}
	return false
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
