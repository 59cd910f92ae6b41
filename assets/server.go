package assets

import (
	"context"
	"errors"
	"fmt"
	"log"
	"path/filepath"
	"sync"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/milk9111/spherefall/levels"
)

var (
	ErrClosed     = errors.New("assets: server closed")
	ErrNoWatchDir = errors.New("assets: no level directory to watch")
)

const eventBuffer = 64

// Debug enables verbose load logging.
var Debug bool

type entry struct {
	handle  Handle
	desc    *levels.Descriptor
	version uint64
	err     error

	// reads numbers each file read as it starts; committed is the number of
	// the newest read whose outcome has been published.
	reads     uint64
	committed uint64
}

// loadResult is what one flight produces. seq identifies the read so that
// outcomes finishing out of order can be discarded.
type loadResult struct {
	seq  uint64
	desc *levels.Descriptor
}

// Server owns the parsed levels. Loads run on background goroutines; their
// results reach the game loop only through Drain.
type Server struct {
	source Source

	mu      sync.Mutex
	handles map[string]Handle
	entries map[uint64]*entry
	nextID  uint64
	closed  bool

	flight  singleflight.Group
	group   *errgroup.Group
	loading sync.WaitGroup
	ctx     context.Context
	cancel  context.CancelFunc
	events  chan Event
}

func NewServer(source Source) *Server {
	ctx, cancel := context.WithCancel(context.Background())
	group, ctx := errgroup.WithContext(ctx)
	return &Server{
		source:  source,
		handles: make(map[string]Handle),
		entries: make(map[uint64]*entry),
		group:   group,
		ctx:     ctx,
		cancel:  cancel,
		events:  make(chan Event, eventBuffer),
	}
}

// Load returns the handle for path, starting a background load the first
// time the path is requested. Later calls return the same handle without
// loading again; use Reload for that.
func (s *Server) Load(path string) Handle {
	clean := CleanPath(path)
	s.mu.Lock()
	if h, ok := s.handles[clean]; ok {
		s.mu.Unlock()
		return h
	}
	s.nextID++
	h := Handle{ID: s.nextID, Path: clean}
	s.handles[clean] = h
	s.entries[h.ID] = &entry{handle: h}
	s.mu.Unlock()

	s.spawn(h)
	return h
}

// Reload parses the file behind h again. A successful reload produces an
// EventModified with a higher version.
func (s *Server) Reload(h Handle) error {
	s.mu.Lock()
	_, ok := s.entries[h.ID]
	s.mu.Unlock()
	if !ok {
		return fmt.Errorf("assets: reload %s: unknown handle", h)
	}
	// a load already in flight may have read the old bytes; start a fresh
	// read, and commit drops the older one if it finishes last
	s.flight.Forget(h.Path)
	return s.spawn(h)
}

// Level returns the latest successfully parsed content of h.
func (s *Server) Level(h Handle) (*levels.Descriptor, uint64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[h.ID]
	if !ok || e.desc == nil {
		return nil, 0, false
	}
	return e.desc, e.version, true
}

// Err returns the error of the most recent load of h, if it failed.
func (s *Server) Err(h Handle) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.entries[h.ID]; ok {
		return e.err
	}
	return nil
}

// Handles lists every handle requested so far.
func (s *Server) Handles() []Handle {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Handle, 0, len(s.entries))
	for id := uint64(1); id <= s.nextID; id++ {
		if e, ok := s.entries[id]; ok {
			out = append(out, e.handle)
		}
	}
	return out
}

// Drain returns the events completed since the last call. It never blocks.
func (s *Server) Drain() []Event {
	var out []Event
	for {
		select {
		case ev := <-s.events:
			out = append(out, ev)
		default:
			return out
		}
	}
}

// WaitIdle blocks until every load started so far has finished.
func (s *Server) WaitIdle() {
	s.loading.Wait()
}

// Watch reloads requested levels when their files change under the source
// directory, until ctx or the server is done.
func (s *Server) Watch(ctx context.Context) error {
	if s.source.Dir == "" {
		return ErrNoWatchDir
	}
	w, err := NewWatcher(s.source.Dir)
	if err != nil {
		return fmt.Errorf("assets: watch %s: %w", s.source.Dir, err)
	}
	s.group.Go(func() error {
		defer w.Close()
		for {
			select {
			case <-ctx.Done():
				return nil
			case <-s.ctx.Done():
				return nil
			case name, ok := <-w.Events:
				if !ok {
					return nil
				}
				s.fileChanged(name)
			case err, ok := <-w.Errors:
				if !ok {
					return nil
				}
				log.Printf("Assets: watcher error: %v", err)
			}
		}
	})
	return nil
}

func (s *Server) fileChanged(name string) {
	rel, err := filepath.Rel(s.source.Dir, name)
	if err != nil {
		return
	}
	s.mu.Lock()
	h, ok := s.handles[CleanPath(rel)]
	s.mu.Unlock()
	if !ok {
		return
	}
	log.Printf("Assets: %s changed on disk, reloading", h.Path)
	if err := s.Reload(h); err != nil {
		log.Printf("Assets: %v", err)
	}
}

// Close stops the watcher and waits for in-flight loads.
func (s *Server) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()

	s.cancel()
	return s.group.Wait()
}

func (s *Server) spawn(h Handle) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	s.loading.Add(1)
	s.group.Go(func() error {
		defer s.loading.Done()
		s.load(h)
		return nil
	})
	return nil
}

func (s *Server) load(h Handle) {
	v, err, _ := s.flight.Do(h.Path, func() (any, error) {
		res := &loadResult{seq: s.nextRead(h)}
		data, err := s.source.Read(h.Path)
		if err != nil {
			return res, fmt.Errorf("assets: read %s: %w", h.Path, err)
		}
		res.desc, err = levels.Parse(h.Path, string(data))
		return res, err
	})
	s.commit(h, v.(*loadResult), err)
}

func (s *Server) nextRead(h Handle) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	e := s.entries[h.ID]
	e.reads++
	return e.reads
}

// commit publishes the outcome of read res.seq. Outcomes of reads older than
// the last published one are dropped, as are repeats of it from callers that
// shared the same flight.
func (s *Server) commit(h Handle, res *loadResult, err error) {
	s.mu.Lock()
	e := s.entries[h.ID]
	if res.seq <= e.committed {
		s.mu.Unlock()
		if Debug {
			log.Printf("Assets: dropping read %d of %s, read %d already published", res.seq, h.Path, e.committed)
		}
		return
	}
	e.committed = res.seq
	ev := Event{Handle: h}
	if err != nil {
		e.err = err
		ev.Kind = EventFailed
		ev.Version = e.version
		ev.Err = err
		s.mu.Unlock()
		logLoadError(h, err)
		s.emit(ev)
		return
	}
	e.err = nil
	e.desc = res.desc
	e.version++
	ev.Version = e.version
	ev.Kind = EventModified
	if e.version == 1 {
		ev.Kind = EventCreated
	}
	s.mu.Unlock()

	if Debug {
		log.Printf("Assets: loaded %s version %d (%d objects)", h.Path, ev.Version, res.desc.ObjectCount())
	}
	s.emit(ev)
}

func (s *Server) emit(ev Event) {
	select {
	case s.events <- ev:
	case <-s.ctx.Done():
	}
}

func logLoadError(h Handle, err error) {
	var perr *levels.ParseError
	if errors.As(err, &perr) {
		log.Printf("Assets: failed to load %s:\n%s", h.Path, perr.Render())
		return
	}
	log.Printf("Assets: failed to load %s: %v", h.Path, err)
}
