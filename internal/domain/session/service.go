package session

import (
	"context"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/yanqian/sunday/pkg/errors"
	"github.com/yanqian/sunday/pkg/util"
)

// Service runs live tracking sessions and reports daily totals.
type Service interface {
	Start(ctx context.Context, profileID string, req StartRequest) (Status, error)
	Stop(ctx context.Context, profileID string) (Record, error)
	Status(ctx context.Context, profileID string) (Status, error)
	UpdateConditions(ctx context.Context, profileID string, update ConditionsUpdate) (Status, error)
	DailyTotal(ctx context.Context, profileID, date string) (DailyTotal, error)
	Shutdown(ctx context.Context) error
}

type tickerFactory func(d time.Duration) (<-chan time.Time, func())

func realTicker(d time.Duration) (<-chan time.Time, func()) {
	t := time.NewTicker(d)
	return t.C, t.Stop
}

const evaluateTimeout = 10 * time.Second

type service struct {
	cfg       Config
	rates     RateEvaluator
	profiles  ProfileReader
	repo      Repository
	archive   Archive
	logger    *slog.Logger
	now       func() time.Time
	newTicker tickerFactory

	baseCtx context.Context
	cancel  context.CancelFunc

	mu      sync.Mutex
	live    map[string]*liveSession
	pending map[string][]Record
	wg      sync.WaitGroup
}

// NewService wires up the session domain.
func NewService(cfg Config, rates RateEvaluator, profiles ProfileReader, repo Repository, archive Archive, logger *slog.Logger) Service {
	return newService(cfg, rates, profiles, repo, archive, logger)
}

func newService(cfg Config, rates RateEvaluator, profiles ProfileReader, repo Repository, archive Archive, logger *slog.Logger) *service {
	if cfg.TickInterval <= 0 {
		cfg.TickInterval = time.Second
	}
	if cfg.RateRefresh <= 0 {
		cfg.RateRefresh = time.Minute
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &service{
		cfg:       cfg,
		rates:     rates,
		profiles:  profiles,
		repo:      repo,
		archive:   archive,
		logger:    logger.With("component", "session.service"),
		now:       util.NowUTC,
		newTicker: realTicker,
		baseCtx:   ctx,
		cancel:    cancel,
		live:      make(map[string]*liveSession),
		pending:   make(map[string][]Record),
	}
}

func (s *service) Start(ctx context.Context, profileID string, req StartRequest) (Status, error) {
	if err := req.Location.Validate(); err != nil {
		return Status{}, apperrors.Wrap(apperrors.CodeInvalidInput, err.Error(), nil)
	}
	if _, ok := s.lookup(profileID); ok {
		return Status{}, apperrors.Wrap(apperrors.CodeSessionActive, "a session is already running", nil)
	}

	sample, err := s.rates.EvaluateRate(ctx, profileID, req.Location, nil)
	if err != nil {
		if !apperrors.IsCode(err, apperrors.CodeUVDataError) {
			return Status{}, err
		}
		// No conditions means no sun: the session still runs at rate 0 until
		// the next refresh succeeds.
		s.logger.Warn("session starting without conditions", "profile_id", profileID, "error", err)
		sample = RateSample{}
	}

	ls := newLiveSession(uuid.NewString(), profileID, req.Location, s.now())

	s.mu.Lock()
	if _, exists := s.live[profileID]; exists {
		s.mu.Unlock()
		return Status{}, apperrors.Wrap(apperrors.CodeSessionActive, "a session is already running", nil)
	}
	s.live[profileID] = ls
	s.wg.Add(1)
	s.mu.Unlock()

	st := &loopState{}
	st.apply(sample)
	st.acc.Start()
	status := ls.snapshot(st, ls.startedAt)
	go s.run(ls, st)

	s.logger.Info("session started", "profile_id", profileID, "session_id", ls.id, "uv", sample.UVIndex, "rate", sample.RateIUPerMinute)
	return status, nil
}

// Stop halts the running session and saves it. Records whose save failed
// earlier are retried first; a Stop with no running session but unsaved
// records only retries them.
func (s *service) Stop(ctx context.Context, profileID string) (Record, error) {
	s.mu.Lock()
	ls, ok := s.live[profileID]
	if ok {
		delete(s.live, profileID)
	}
	s.mu.Unlock()
	if ok {
		s.queue(recordFrom(ls.halt(), s.now()))
	}

	recs := s.takePending(profileID)
	if len(recs) == 0 {
		return Record{}, apperrors.Wrap(apperrors.CodeSessionNotFound, "no session is running", nil)
	}
	return recs[len(recs)-1], s.flush(ctx, recs)
}

func (s *service) Status(ctx context.Context, profileID string) (Status, error) {
	ls, ok := s.lookup(profileID)
	if !ok {
		return Status{}, apperrors.Wrap(apperrors.CodeSessionNotFound, "no session is running", nil)
	}
	return ls.query(), nil
}

func (s *service) UpdateConditions(ctx context.Context, profileID string, update ConditionsUpdate) (Status, error) {
	if !update.Clear && (math.IsNaN(update.UVIndex) || update.UVIndex < 0 || update.UVIndex > 30) {
		return Status{}, apperrors.Wrap(apperrors.CodeInvalidInput, "uvIndex must be within [0,30]", nil)
	}
	ls, ok := s.lookup(profileID)
	if !ok {
		return Status{}, apperrors.Wrap(apperrors.CodeSessionNotFound, "no session is running", nil)
	}
	if update.Clear {
		return ls.push(nil), nil
	}
	uv := update.UVIndex
	return ls.push(&uv), nil
}

func (s *service) DailyTotal(ctx context.Context, profileID, date string) (DailyTotal, error) {
	if date == "" {
		date = util.DateKey(s.now(), s.cfg.Location)
	}
	from, to, err := util.DayBounds(date, s.cfg.Location)
	if err != nil {
		return DailyTotal{}, apperrors.Wrap(apperrors.CodeInvalidInput, "date must be formatted as YYYY-MM-DD", err)
	}
	p, err := s.profiles.Get(ctx, profileID)
	if err != nil {
		return DailyTotal{}, err
	}
	records, err := s.repo.ListBetween(ctx, profileID, from, to)
	if err != nil {
		return DailyTotal{}, apperrors.Wrap(apperrors.CodeStorageError, "failed to load sessions", err)
	}

	total := DailyTotal{ProfileID: profileID, Date: date, GoalIU: p.DailyGoalIU}
	for _, rec := range append(records, s.pendingBetween(profileID, from, to)...) {
		total.TotalIU += rec.TotalIU
		total.Sessions++
	}
	if ls, ok := s.lookup(profileID); ok && !ls.startedAt.Before(from) && ls.startedAt.Before(to) {
		total.LiveIU = ls.query().TotalIU
		total.TotalIU += total.LiveIU
	}
	total.GoalMet = total.GoalIU > 0 && total.TotalIU >= float64(total.GoalIU)
	total.RemainingIU = math.Max(0, float64(total.GoalIU)-total.TotalIU)
	return total, nil
}

// Shutdown stops every live session and saves it along with any records
// still waiting for a successful save.
func (s *service) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	sessions := make([]*liveSession, 0, len(s.live))
	for id, ls := range s.live {
		sessions = append(sessions, ls)
		delete(s.live, id)
	}
	s.mu.Unlock()

	for _, ls := range sessions {
		s.queue(recordFrom(ls.halt(), s.now()))
	}
	s.mu.Lock()
	var recs []Record
	for id, list := range s.pending {
		recs = append(recs, list...)
		delete(s.pending, id)
	}
	s.mu.Unlock()
	firstErr := s.flush(ctx, recs)

	s.cancel()
	s.wg.Wait()
	s.logger.Info("session service stopped", "persisted", len(sessions))
	return firstErr
}

func (s *service) lookup(profileID string) (*liveSession, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ls, ok := s.live[profileID]
	return ls, ok
}

// run owns the session state. Rate evaluations run in their own goroutines;
// the loop never blocks on an upstream call.
func (s *service) run(ls *liveSession, st *loopState) {
	defer s.wg.Done()
	ctx, cancel := context.WithCancel(s.baseCtx)
	defer cancel()
	defer close(ls.done)

	results := make(chan evalResult)

	ticks, stopTicks := s.newTicker(s.cfg.TickInterval)
	defer stopTicks()
	refresh, stopRefresh := s.newTicker(s.cfg.RateRefresh)
	defer stopRefresh()

	for {
		select {
		case <-ticks:
			st.acc.Tick()
		case <-refresh:
			if !st.refreshing {
				st.refreshing = true
				s.evaluate(ctx, ls, results, st.gen, st.override, nil)
			}
		case upd := <-ls.updates:
			st.gen++
			st.override = upd.override
			s.evaluate(ctx, ls, results, st.gen, st.override, upd.reply)
		case res := <-results:
			if res.reply == nil {
				st.refreshing = false
			}
			s.applyResult(ls, st, res)
			if res.reply != nil {
				res.reply <- ls.snapshot(st, s.now())
			}
		case reply := <-ls.snapshots:
			reply <- ls.snapshot(st, s.now())
		case reply := <-ls.stop:
			st.acc.Stop()
			ls.final = ls.snapshot(st, s.now())
			reply <- ls.final
			return
		case <-s.baseCtx.Done():
			st.acc.Stop()
			ls.final = ls.snapshot(st, s.now())
			return
		}
	}
}

func (s *service) evaluate(ctx context.Context, ls *liveSession, results chan<- evalResult, gen uint64, override *float64, reply chan Status) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		callCtx, cancel := context.WithTimeout(ctx, evaluateTimeout)
		defer cancel()
		sample, err := s.rates.EvaluateRate(callCtx, ls.profileID, ls.loc, override)
		select {
		case results <- evalResult{gen: gen, sample: sample, err: err, reply: reply}:
		case <-ls.done:
		}
	}()
}

func (s *service) applyResult(ls *liveSession, st *loopState, res evalResult) {
	switch {
	case res.err != nil:
		s.logger.Warn("session rate refresh failed, keeping previous rate", "session_id", ls.id, "error", res.err)
	case res.gen != st.gen:
		s.logger.Debug("stale session rate dropped", "session_id", ls.id, "uv", res.sample.UVIndex)
	default:
		if res.sample.RateIUPerMinute != st.acc.Rate() {
			s.logger.Debug("session rate changed", "session_id", ls.id, "uv", res.sample.UVIndex, "rate", res.sample.RateIUPerMinute)
		}
		st.apply(res.sample)
	}
}

func (s *service) queue(rec Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending[rec.ProfileID] = append(s.pending[rec.ProfileID], rec)
}

func (s *service) takePending(profileID string) []Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	recs := s.pending[profileID]
	delete(s.pending, profileID)
	return recs
}

func (s *service) pendingBetween(profileID string, from, to time.Time) []Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Record
	for _, rec := range s.pending[profileID] {
		if !rec.StartedAt.Before(from) && rec.StartedAt.Before(to) {
			out = append(out, rec)
		}
	}
	return out
}

// flush saves recs in order. Records that fail stay queued for the next attempt.
func (s *service) flush(ctx context.Context, recs []Record) error {
	var firstErr error
	for _, rec := range recs {
		if err := s.persist(ctx, rec); err != nil {
			s.queue(rec)
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

func (s *service) persist(ctx context.Context, rec Record) error {
	if err := s.repo.Save(ctx, rec); err != nil {
		s.logger.Error("session save failed", "session_id", rec.ID, "error", err)
		return apperrors.Wrap(apperrors.CodeStorageError, "failed to save session", err)
	}
	if s.archive != nil {
		if err := s.archive.Put(ctx, rec); err != nil {
			s.logger.Warn("session archive failed", "session_id", rec.ID, "error", err)
		}
	}
	s.logger.Info("session stopped", "profile_id", rec.ProfileID, "session_id", rec.ID, "total_iu", rec.TotalIU, "ticks", rec.Ticks)
	return nil
}
