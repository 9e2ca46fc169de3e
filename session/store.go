// Package session keeps one calculator per client session and serializes
// key delivery to them.
package session

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/dhamidi/keycalc/calc"
	"github.com/dhamidi/keycalc/keypad"
	"github.com/tliron/commonlog"
)

var (
	ErrNotFound = errors.New("session not found")
	ErrRejected = errors.New("key rejected")
	ErrClosed   = errors.New("session store closed")
)

var log = commonlog.GetLogger("keycalc.session")

// Info describes a session without exposing its calculator.
type Info struct {
	ID        string
	Frame     calc.Frame
	Keys      int
	CreatedAt time.Time
	UpdatedAt time.Time
}

type entry struct {
	info Info
	calc *calc.Calculator
}

type request struct {
	id    string
	token calc.Token
	reply chan reply
}

type reply struct {
	frame calc.Frame
	err   error
}

// Store owns the calculators. A single worker goroutine applies every key,
// so each key is processed to completion before the next one starts.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*entry
	nextID   int

	requests  chan request
	done      chan struct{}
	closeOnce sync.Once
}

func New() *Store {
	s := &Store{
		sessions: make(map[string]*entry),
		requests: make(chan request, 100),
		done:     make(chan struct{}),
	}
	go s.run()
	return s
}

func (s *Store) run() {
	for {
		select {
		case <-s.done:
			return
		case req := <-s.requests:
			req.reply <- s.apply(req)
		}
	}
}

func (s *Store) apply(req request) reply {
	s.mu.RLock()
	e, ok := s.sessions[req.id]
	s.mu.RUnlock()
	if !ok {
		return reply{err: fmt.Errorf("%w: %s", ErrNotFound, req.id)}
	}

	frame := e.calc.Process(req.token)

	s.mu.Lock()
	e.info.Frame = frame
	e.info.Keys++
	e.info.UpdatedAt = time.Now()
	s.mu.Unlock()

	log.Debugf("session %s: %s -> %s", req.id, req.token, frame.Result())
	return reply{frame: frame}
}

// Create starts a new session and returns its ID.
func (s *Store) Create() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	id := strconv.Itoa(s.nextID)
	c := calc.New()
	now := time.Now()
	s.sessions[id] = &entry{
		calc: c,
		info: Info{
			ID:        id,
			Frame:     c.Frame(),
			CreatedAt: now,
			UpdatedAt: now,
		},
	}
	log.Infof("session %s created", id)
	return id
}

// Press validates key and applies it to the session's calculator.
func (s *Store) Press(ctx context.Context, id, key string) (calc.Frame, error) {
	tok, ok := keypad.Lookup(key)
	if !ok {
		return calc.Frame{}, fmt.Errorf("%w: %q", ErrRejected, key)
	}

	select {
	case <-s.done:
		return calc.Frame{}, ErrClosed
	default:
	}

	req := request{id: id, token: tok, reply: make(chan reply, 1)}
	select {
	case s.requests <- req:
	case <-s.done:
		return calc.Frame{}, ErrClosed
	case <-ctx.Done():
		return calc.Frame{}, ctx.Err()
	}

	select {
	case r := <-req.reply:
		return r.frame, r.err
	case <-s.done:
		return calc.Frame{}, ErrClosed
	case <-ctx.Done():
		return calc.Frame{}, ctx.Err()
	}
}

// Frame returns the last frame produced by the session.
func (s *Store) Frame(id string) (calc.Frame, error) {
	info, ok := s.Get(id)
	if !ok {
		return calc.Frame{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return info.Frame, nil
}

func (s *Store) Get(id string) (Info, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.sessions[id]
	if !ok {
		return Info{}, false
	}
	return e.info, true
}

// List returns all sessions ordered by creation.
func (s *Store) List() []Info {
	s.mu.RLock()
	defer s.mu.RUnlock()
	infos := make([]Info, 0, len(s.sessions))
	for _, e := range s.sessions {
		infos = append(infos, e.info)
	}
	sort.Slice(infos, func(i, j int) bool {
		a, _ := strconv.Atoi(infos[i].ID)
		b, _ := strconv.Atoi(infos[j].ID)
		return a < b
	})
	return infos
}

func (s *Store) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[id]; ok {
		delete(s.sessions, id)
		log.Infof("session %s deleted", id)
	}
}

// Close stops the worker. Pending and later calls to Press fail with
// ErrClosed.
func (s *Store) Close() {
	s.closeOnce.Do(func() {
		close(s.done)
	})
}
