// Package inference runs the single oracle owner: one Server batches
// requests from many actor-held Connections into one forward pass,
// standing in for a separate inference process talking to actors over
// pipes.
package inference

import (
	"errors"
	"time"

	"github.com/portstow/az/env"
	"github.com/portstow/az/mcts"
)

// ErrClosed is returned to any in-flight or future request once the
// server has been shut down.
var ErrClosed = errors.New("inference: server closed")

type request struct {
	obs   env.Observation
	reply chan response
}

type response struct {
	policy []float32
	value  float32
	err    error
}

// Server owns an mcts.Oracle and batches concurrent requests against it
// up to MaxBatch entries or MaxWait latency, whichever comes first. Swap
// calls replace the oracle in place (copy-on-replace); a batch already
// being scored finishes against the oracle it started with.
//
// A Server's lifecycle is governed only by Close, deliberately kept
// independent of any actor-cancelling context: actors must be allowed to
// finish their in-flight Predict calls during shutdown, so the caller is
// expected to stop every actor pool first (actor.Pool.Close) and only
// then call Server.Close. Tying the server's shutdown to the same
// context actors watch would race the two: the server could stop
// servicing requests while an actor is still mid-Predict, deadlocking
// its send on requests.
type Server struct {
	oracle   mcts.Oracle
	MaxBatch int
	MaxWait  time.Duration

	requests chan request
	swap     chan mcts.Oracle
	done     chan struct{}
}

// NewServer starts a Server's batching loop in a background goroutine.
// Callers must call Close to stop it.
func NewServer(oracle mcts.Oracle, maxBatch int, maxWait time.Duration) *Server {
	s := &Server{
		oracle:   oracle,
		MaxBatch: maxBatch,
		MaxWait:  maxWait,
		requests: make(chan request),
		swap:     make(chan mcts.Oracle),
		done:     make(chan struct{}),
	}
	go s.loop()
	return s
}

// Swap replaces the oracle a Server consults, without interrupting
// requests already queued for the current batch; actors observe the
// change transparently on their next request.
func (s *Server) Swap(oracle mcts.Oracle) {
	select {
	case s.swap <- oracle:
	case <-s.done:
	}
}

// Close stops the batching loop. Any request still waiting for a
// response, or arriving afterward, receives ErrClosed.
func (s *Server) Close() {
	close(s.done)
}

func (s *Server) loop() {
	var pending []request
	timer := time.NewTimer(s.MaxWait)
	defer timer.Stop()
	stopTimer := func() {
		if !timer.Stop() {
			select {
			case <-timer.C:
			default:
			}
		}
	}

	for {
		select {
		case <-s.done:
			s.drain(pending, ErrClosed)
			return
		case oracle := <-s.swap:
			s.oracle = oracle
		case req := <-s.requests:
			pending = append(pending, req)
			if len(pending) == 1 {
				stopTimer()
				timer.Reset(s.MaxWait)
			}
			if len(pending) >= s.MaxBatch {
				s.flush(pending)
				pending = nil
				stopTimer()
				timer.Reset(s.MaxWait)
			}
		case <-timer.C:
			if len(pending) > 0 {
				s.flush(pending)
				pending = nil
			}
			timer.Reset(s.MaxWait)
		}
	}
}

func (s *Server) flush(batch []request) {
	obs := make([]env.Observation, len(batch))
	for i, r := range batch {
		obs[i] = r.obs
	}
	policies, values, err := s.oracle.Predict(obs)
	for i, r := range batch {
		if err != nil {
			r.reply <- response{err: err}
			continue
		}
		r.reply <- response{policy: policies[i], value: values[i]}
	}
}

func (s *Server) drain(batch []request, err error) {
	for _, r := range batch {
		r.reply <- response{err: err}
	}
}
