package session

import (
	"time"

	"github.com/yanqian/sunday/internal/domain/conditions"
)

// rateUpdate carries a pinned UV index; a nil override unpins it.
type rateUpdate struct {
	override *float64
	reply    chan Status
}

type evalResult struct {
	gen    uint64
	sample RateSample
	err    error
	reply  chan Status
}

// liveSession is the handle to a running session goroutine. All mutable
// state lives in the goroutine; callers talk to it through channels.
type liveSession struct {
	id        string
	profileID string
	loc       conditions.Location
	startedAt time.Time

	updates   chan rateUpdate
	snapshots chan chan Status
	stop      chan chan Status
	done      chan struct{}
	final     Status
}

func newLiveSession(id, profileID string, loc conditions.Location, startedAt time.Time) *liveSession {
	return &liveSession{
		id:        id,
		profileID: profileID,
		loc:       loc,
		startedAt: startedAt,
		updates:   make(chan rateUpdate),
		snapshots: make(chan chan Status),
		stop:      make(chan chan Status),
		done:      make(chan struct{}),
	}
}

func (ls *liveSession) query() Status {
	reply := make(chan Status, 1)
	select {
	case ls.snapshots <- reply:
		return <-reply
	case <-ls.done:
		return ls.final
	}
}

func (ls *liveSession) push(override *float64) Status {
	reply := make(chan Status, 1)
	select {
	case ls.updates <- rateUpdate{override: override, reply: reply}:
	case <-ls.done:
		return ls.final
	}
	select {
	case st := <-reply:
		return st
	case <-ls.done:
		return ls.final
	}
}

func (ls *liveSession) halt() Status {
	reply := make(chan Status, 1)
	select {
	case ls.stop <- reply:
		return <-reply
	case <-ls.done:
		return ls.final
	}
}

type loopState struct {
	acc  Accumulator
	uv   float64
	peak float64

	// override is the pinned UV index, gen counts override changes so that
	// evaluations started under an older override are dropped.
	override   *float64
	gen        uint64
	refreshing bool
}

func (st *loopState) apply(sample RateSample) {
	st.uv = sample.UVIndex
	if sample.UVIndex > st.peak {
		st.peak = sample.UVIndex
	}
	st.acc.SetRate(sample.RateIUPerMinute)
}

func (ls *liveSession) snapshot(st *loopState, now time.Time) Status {
	elapsed := now.Sub(ls.startedAt)
	if elapsed < 0 {
		elapsed = 0
	}
	return Status{
		ID:              ls.id,
		ProfileID:       ls.profileID,
		Latitude:        ls.loc.Latitude,
		Longitude:       ls.loc.Longitude,
		StartedAt:       ls.startedAt,
		ElapsedSeconds:  int64(elapsed / time.Second),
		Tracking:        st.acc.Tracking(),
		TotalIU:         st.acc.Total(),
		RateIUPerMinute: st.acc.Rate(),
		UVIndex:         st.uv,
		PeakUV:          st.peak,
		Ticks:           st.acc.Ticks(),
	}
}

func recordFrom(st Status, endedAt time.Time) Record {
	return Record{
		ID:                  st.ID,
		ProfileID:           st.ProfileID,
		Latitude:            st.Latitude,
		Longitude:           st.Longitude,
		StartedAt:           st.StartedAt,
		EndedAt:             endedAt,
		TotalIU:             st.TotalIU,
		PeakUV:              st.PeakUV,
		LastUVIndex:         st.UVIndex,
		LastRateIUPerMinute: st.RateIUPerMinute,
		Ticks:               st.Ticks,
	}
}
