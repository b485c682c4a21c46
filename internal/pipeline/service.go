package pipeline

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/amoslue/what-the-food/internal/imagegen"
	logx "github.com/amoslue/what-the-food/internal/logger"
	"github.com/amoslue/what-the-food/internal/nlu"
	"github.com/amoslue/what-the-food/internal/ocr"
)

// OCRStage extracts raw menu text from an image.
type OCRStage interface {
	ExtractMenu(ctx context.Context, image io.Reader, filename string) (string, error)
}

// NLUStage turns raw menu text into structured dishes and prompts.
type NLUStage interface {
	ProcessMenuText(ctx context.Context, rawText string) (*nlu.Result, error)
}

// ErrNothingSelected is returned by Retry when no image was ever
// submitted.
var ErrNothingSelected = errors.New("no menu image has been selected yet")

// Service owns the two-stage OCR -> NLU workflow and the shared view
// state it feeds. Stages run strictly in sequence; stage 2 never
// starts before stage 1 resolves.
//
// Every run carries the sequence number that was current when it was
// issued. A completing stage writes to shared state only while its
// sequence is still the latest one, so when a new image is selected
// mid-flight the older run's results are discarded instead of racing
// the newer run for the state.
type Service struct {
	ocr        OCRStage
	nlu        NLUStage
	gen        imagegen.Generator
	genWorkers int

	mu    sync.Mutex
	seq   uint64
	state State

	// last selection, kept for retry
	lastImage    []byte
	lastFilename string

	subs    map[int]chan State
	nextSub int
}

func NewService(ocrStage OCRStage, nluStage NLUStage, gen imagegen.Generator, genWorkers int) *Service {
	if gen == nil {
		gen = imagegen.Stub{}
	}
	if genWorkers < 1 {
		genWorkers = 1
	}
	return &Service{
		ocr:        ocrStage,
		nlu:        nluStage,
		gen:        gen,
		genWorkers: genWorkers,
		state:      State{Phase: PhaseIdle},
		subs:       make(map[int]chan State),
	}
}

// --------------------------------------------------
// Public API
// --------------------------------------------------

// Process starts one asynchronous run for the selected image and
// returns its public run id. Any in-flight run is superseded: its
// later writes will be discarded.
func (s *Service) Process(image []byte, filename string) string {
	s.mu.Lock()

	s.seq++
	seq := s.seq
	runID := uuid.New().String()

	s.lastImage = image
	s.lastFilename = filename

	// New selection invalidates every downstream field before the
	// first request goes out.
	s.state = State{
		RunID:        runID,
		SelectedFile: filename,
		Phase:        PhaseAwaitingOCR,
		IsLoading:    true,
	}
	s.publishLocked()
	s.mu.Unlock()

	go s.run(seq, image, filename)

	return runID
}

// Retry re-runs the pipeline on the last selected image.
func (s *Service) Retry() (string, error) {
	s.mu.Lock()
	image := s.lastImage
	filename := s.lastFilename
	s.mu.Unlock()

	if image == nil {
		return "", ErrNothingSelected
	}
	return s.Process(image, filename), nil
}

// Clear resets every field to its empty default without touching the
// network. An in-flight run is superseded here too, so its results
// can never resurrect the cleared state.
func (s *Service) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.seq++
	s.lastImage = nil
	s.lastFilename = ""
	s.state = State{Phase: PhaseIdle}
	s.publishLocked()
}

// Snapshot returns a deep copy of the current state.
func (s *Service) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.clone()
}

// Subscribe registers an observer that receives a state snapshot on
// every transition, starting with the current one. The returned
// function cancels the subscription.
func (s *Service) Subscribe() (<-chan State, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextSub
	s.nextSub++

	ch := make(chan State, 16)
	s.subs[id] = ch
	ch <- s.state.clone()

	cancel := func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if sub, ok := s.subs[id]; ok {
			delete(s.subs, id)
			close(sub)
		}
	}
	return ch, cancel
}

// --------------------------------------------------
// Run lifecycle
// --------------------------------------------------

func (s *Service) run(seq uint64, image []byte, filename string) {
	ctx := context.Background()

	// Loading must clear on every exit path, including panics in a
	// stage client.
	defer s.finish(seq)

	rawText, err := s.ocr.ExtractMenu(ctx, bytes.NewReader(image), filename)
	if err != nil {
		logx.Warn().Uint64("seq", seq).Err(err).Msg("ocr stage failed")
		s.fail(seq, StageOCR, err)
		return
	}

	if !s.advanceToNLU(seq, rawText) {
		logx.Debug().Uint64("seq", seq).Msg("run superseded after ocr stage")
		return
	}

	result, err := s.nlu.ProcessMenuText(ctx, rawText)
	if err != nil {
		logx.Warn().Uint64("seq", seq).Err(err).Msg("nlu stage failed")
		s.fail(seq, StageNLU, err)
		return
	}

	if !s.succeed(seq, result) {
		logx.Debug().Uint64("seq", seq).Msg("run superseded after nlu stage")
		return
	}

	s.fillImages(ctx, seq, result.Prompts)
}

// advanceToNLU stores the verbatim raw text and moves to stage 2.
// Returns false when the run has been superseded.
func (s *Service) advanceToNLU(seq uint64, rawText string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if seq != s.seq {
		return false
	}
	s.state.RawOCRText = rawText
	s.state.Phase = PhaseAwaitingNLU
	s.publishLocked()
	return true
}

func (s *Service) succeed(seq uint64, result *nlu.Result) bool {
	images := make([]GeneratedImage, len(result.Prompts))
	for i, p := range result.Prompts {
		images[i] = GeneratedImage{
			DishName:       p.DishName,
			PlaceholderURL: imagegen.PlaceholderURL(p.DishName),
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if seq != s.seq {
		return false
	}
	s.state.StructuredDishes = result.StructuredDishes
	s.state.Prompts = result.Prompts
	s.state.GeneratedImages = images
	s.state.Phase = PhaseSucceeded
	s.state.Error = nil
	s.state.IsLoading = false
	s.publishLocked()
	return true
}

func (s *Service) fail(seq uint64, stage string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if seq != s.seq {
		return
	}
	// Raw text already in state stays visible on an NLU failure.
	s.state.Phase = PhaseFailed
	s.state.Error = &RunError{
		Stage:   stage,
		Message: displayMessage(err),
	}
	s.state.IsLoading = false
	s.publishLocked()
}

func (s *Service) finish(seq uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if seq != s.seq {
		return
	}
	if s.state.IsLoading {
		s.state.IsLoading = false
		s.publishLocked()
	}
}

// --------------------------------------------------
// Best-effort image generation
// --------------------------------------------------

// fillImages upgrades placeholders with generated payloads after a
// successful run. Failures leave the dish on its placeholder; the run
// already succeeded and stays succeeded.
func (s *Service) fillImages(ctx context.Context, seq uint64, prompts []nlu.DishPrompt) {
	if len(prompts) == 0 {
		return
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.genWorkers)

	for i, p := range prompts {
		i, p := i, p
		g.Go(func() error {
			payload, err := s.gen.Generate(ctx, p.ImagePrompt)
			if err != nil {
				logx.Warn().Str("dish", p.DishName).Err(err).Msg("image generation failed")
				return nil
			}
			if payload == "" {
				return nil
			}
			s.setGeneratedImage(seq, i, payload)
			return nil
		})
	}
	_ = g.Wait()
}

func (s *Service) setGeneratedImage(seq uint64, idx int, payload string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if seq != s.seq || idx >= len(s.state.GeneratedImages) {
		return
	}
	s.state.GeneratedImages[idx].ImageBase64 = payload
	s.publishLocked()
}

// --------------------------------------------------
// Observers
// --------------------------------------------------

// publishLocked fans the current state out to subscribers. Slow
// subscribers drop transitions rather than block the pipeline.
func (s *Service) publishLocked() {
	for _, ch := range s.subs {
		select {
		case ch <- s.state.clone():
		default:
		}
	}
}

// displayMessage unwraps a stage error into its user-visible text:
// the upstream detail verbatim when present, else the generic status
// line the client built.
func displayMessage(err error) string {
	var ocrErr *ocr.StageError
	if errors.As(err, &ocrErr) {
		return ocrErr.Message
	}
	var nluErr *nlu.StageError
	if errors.As(err, &nluErr) {
		return nluErr.Message
	}
	return err.Error()
}
