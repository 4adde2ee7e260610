package pipeline

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"yt-seo-studio/types"

	"go.uber.org/zap"
)

// ErrSuperseded is returned by Generate when a newer generation started
// before this one finished. Its result was not applied.
var ErrSuperseded = errors.New("superseded by a newer generation")

// Event types published to subscribers
const (
	EventStatus   = "status"
	EventResearch = "research"
)

// Event is one status or research notification
type Event struct {
	Type       string       `json:"type"`
	Generation uint64       `json:"generation"`
	Status     types.Status `json:"status"`
	Text       string       `json:"text,omitempty"`
}

// Snapshot is a copy of the session slots for display
type Snapshot struct {
	Generation  uint64               `json:"generation"`
	Status      types.Status         `json:"status"`
	StatusText  string               `json:"statusText"`
	Result      *types.ContentResult `json:"result"`
	Research    string               `json:"research"`
	Researching bool                 `json:"researching"`
	Error       string               `json:"error,omitempty"`
}

// Session holds the latest result for one caller. Each Generate call gets a
// new generation number; results from older generations are discarded.
type Session struct {
	orch *Orchestrator
	log  *zap.SugaredLogger

	gen atomic.Uint64
	wg  sync.WaitGroup

	mu           sync.Mutex
	status       types.Status
	mode         types.Mode
	result       *types.ContentResult
	research     string
	researching  bool
	errText      string
	researchDone chan struct{}
	doneClosed   bool
	subs         map[chan Event]struct{}
}

func NewSession(orch *Orchestrator, logger *zap.SugaredLogger) *Session {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	done := make(chan struct{})
	close(done)
	return &Session{
		orch:         orch,
		log:          logger.Named("session"),
		status:       types.StatusIdle,
		researchDone: done,
		doneClosed:   true,
		subs:         make(map[chan Event]struct{}),
	}
}

// Generation returns the current generation number
func (s *Session) Generation() uint64 { return s.gen.Load() }

// Generate runs the pipeline as a new generation, replacing whatever the
// session showed before. On success research is started in the background.
func (s *Session) Generate(ctx context.Context, req types.PipelineRequest) (types.ContentResult, error) {
	return s.run(ctx, s.begin(req.Mode), req)
}

// Start begins a new generation and runs it in the background.
// The returned generation number identifies it in snapshots and events.
func (s *Session) Start(ctx context.Context, req types.PipelineRequest) uint64 {
	gen := s.begin(req.Mode)
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if _, err := s.run(ctx, gen, req); err != nil && !errors.Is(err, ErrSuperseded) {
			s.log.Warnf("Generation %d failed: %v", gen, err)
		}
	}()
	return gen
}

// Wait blocks until background runs and research started by the session finish
func (s *Session) Wait() { s.wg.Wait() }

func (s *Session) begin(mode types.Mode) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	gen := s.gen.Add(1)
	s.finishResearchLocked()
	s.result = nil
	s.research = ""
	s.researching = false
	s.errText = ""
	s.status = types.StatusIdle
	s.mode = mode
	s.researchDone = make(chan struct{})
	s.doneClosed = false
	return gen
}

func (s *Session) run(ctx context.Context, gen uint64, req types.PipelineRequest) (types.ContentResult, error) {
	// Terminal statuses are published below, once the slots hold the outcome.
	result, err := s.orch.Run(ctx, req, func(st types.Status) {
		if !st.Terminal() {
			s.setStatus(gen, st)
		}
	})

	s.mu.Lock()
	if gen != s.gen.Load() {
		s.mu.Unlock()
		s.log.Debugf("Discarding stale result of generation %d", gen)
		return types.ContentResult{}, ErrSuperseded
	}

	if err != nil {
		s.result = nil
		s.errText = types.UserMessage(err)
		s.status = types.StatusFailed
		s.finishResearchLocked()
		s.mu.Unlock()
		s.publish(Event{Type: EventStatus, Generation: gen, Status: types.StatusFailed})
		return types.ContentResult{}, err
	}

	stored := result
	s.result = &stored
	s.status = types.StatusSucceeded
	s.researching = true
	s.wg.Add(1)
	s.mu.Unlock()
	s.publish(Event{Type: EventStatus, Generation: gen, Status: types.StatusSucceeded})

	keyword := ""
	if result.Strategy != nil {
		keyword = result.Strategy.PrimaryKeyword
	}
	go func() {
		defer s.wg.Done()
		s.applyResearch(s.orch.StartResearch(keyword, gen))
	}()

	return result, nil
}

func (s *Session) applyResearch(ch <-chan ResearchResult) {
	r, ok := <-ch
	if !ok {
		return
	}

	s.mu.Lock()
	if r.Generation != s.gen.Load() {
		s.mu.Unlock()
		s.log.Debugf("Discarding stale research of generation %d", r.Generation)
		return
	}
	s.research = r.Text
	s.researching = false
	s.finishResearchLocked()
	status := s.status
	s.mu.Unlock()

	s.publish(Event{Type: EventResearch, Generation: r.Generation, Status: status, Text: r.Text})
}

func (s *Session) setStatus(gen uint64, st types.Status) {
	s.mu.Lock()
	if gen != s.gen.Load() {
		s.mu.Unlock()
		return
	}
	s.status = st
	text := st.TextFor(s.mode)
	s.mu.Unlock()

	s.publish(Event{Type: EventStatus, Generation: gen, Status: st, Text: text})
}

func (s *Session) finishResearchLocked() {
	if !s.doneClosed {
		close(s.researchDone)
		s.doneClosed = true
	}
}

// Snapshot copies the current slots
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{
		Generation:  s.gen.Load(),
		Status:      s.status,
		StatusText:  s.status.TextFor(s.mode),
		Research:    s.research,
		Researching: s.researching,
		Error:       s.errText,
	}
	if s.result != nil {
		r := *s.result
		snap.Result = &r
	}
	return snap
}

// WaitResearch blocks until research for the current generation is applied,
// the generation ends without research, or ctx is done.
func (s *Session) WaitResearch(ctx context.Context) (string, bool) {
	s.mu.Lock()
	done := s.researchDone
	s.mu.Unlock()

	select {
	case <-done:
	case <-ctx.Done():
		return "", false
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.research, s.research != ""
}

// Subscribe returns a buffered event channel and its cancel func.
// Slow subscribers miss events rather than block the pipeline.
func (s *Session) Subscribe() (<-chan Event, func()) {
	ch := make(chan Event, 16)
	s.mu.Lock()
	s.subs[ch] = struct{}{}
	s.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subs, ch)
			s.mu.Unlock()
			close(ch)
		})
	}
}

func (s *Session) publish(ev Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for ch := range s.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}
