// Package convlog provides per-session structured logging for the
// conversion front end.
//
// Each interactive session gets one JSONL file in a configurable
// directory. Events capture the session lifecycle, every conversion
// (reading, chosen surfaces, candidate counts, timing), and every
// learn. The log is what makes ranking regressions diagnosable after
// the fact.
//
// Design constraints:
//   - All SessionLog methods are nil-safe (no-op on nil receiver) so
//     the REPL needs no nil checks around logging.
//   - Registry is the sole owner of file lifecycle; callers never
//     open files.
package convlog

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
)

// EventKind labels a single structured event in the session log.
type EventKind string

const (
	KindSessionBegin EventKind = "session_begin"
	KindConvert      EventKind = "convert"
	KindLearn        EventKind = "learn"
	KindSessionEnd   EventKind = "session_end"
)

// Event is one JSONL line in the session log. Fields are omitempty so
// each event only serialises relevant data.
type Event struct {
	Kind      EventKind `json:"kind"`
	Timestamp string    `json:"ts"`

	// session_begin / session_end
	SessionID string `json:"session_id,omitempty"`

	// convert
	Reading        string   `json:"reading,omitempty"`
	Surfaces       []string `json:"surfaces,omitempty"`
	K              int      `json:"k,omitempty"`
	PathCount      int      `json:"path_count,omitempty"`
	CandidateCount int      `json:"candidate_count,omitempty"`
	ElapsedMicros  int64    `json:"elapsed_us,omitempty"`
	Err            string   `json:"err,omitempty"`

	// learn
	Keys []string `json:"keys,omitempty"`
}

// SessionLog appends events for one session. Nil-safe.
type SessionLog struct {
	id string

	mu   sync.Mutex
	file *os.File
	enc  *json.Encoder
}

// ID returns the session id.
func (s *SessionLog) ID() string {
	if s == nil {
		return ""
	}
	return s.id
}

func (s *SessionLog) append(e Event) {
	if s == nil {
		return
	}
	e.Timestamp = time.Now().UTC().Format(time.RFC3339Nano)
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.file == nil {
		return
	}
	_ = s.enc.Encode(e)
}

// Convert records one conversion.
func (s *SessionLog) Convert(reading string, surfaces []string, k, pathCount, candidateCount int, elapsed time.Duration, err error) {
	e := Event{
		Kind:           KindConvert,
		Reading:        reading,
		Surfaces:       surfaces,
		K:              k,
		PathCount:      pathCount,
		CandidateCount: candidateCount,
		ElapsedMicros:  elapsed.Microseconds(),
	}
	if err != nil {
		e.Err = err.Error()
	}
	s.append(e)
}

// Learn records the keys fed back into the user store.
func (s *SessionLog) Learn(keys []string) {
	s.append(Event{Kind: KindLearn, Keys: keys})
}

// Registry owns the session log files under one directory.
type Registry struct {
	dir string

	mu   sync.Mutex
	open map[string]*SessionLog
}

// NewRegistry builds a Registry rooted at dir.
func NewRegistry(dir string) *Registry {
	return &Registry{dir: dir, open: make(map[string]*SessionLog)}
}

// Open starts a session log. An empty id mints a fresh UUID. Opening
// an already-open session returns the existing log. A registry that
// cannot create its file returns a nil log, which every method
// accepts.
func (r *Registry) Open(id string) *SessionLog {
	if r == nil {
		return nil
	}
	if id == "" {
		id = uuid.New().String()
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if sl, ok := r.open[id]; ok {
		return sl
	}
	if err := os.MkdirAll(r.dir, 0755); err != nil {
		return nil
	}
	f, err := os.OpenFile(filepath.Join(r.dir, id+".jsonl"),
		os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil
	}
	sl := &SessionLog{id: id, file: f, enc: json.NewEncoder(f)}
	r.open[id] = sl
	sl.append(Event{Kind: KindSessionBegin, SessionID: id})
	return sl
}

// Close ends a session log and releases its file.
func (r *Registry) Close(id string) error {
	if r == nil {
		return nil
	}
	r.mu.Lock()
	sl, ok := r.open[id]
	delete(r.open, id)
	r.mu.Unlock()
	if !ok {
		return fmt.Errorf("convlog: session %s not open", id)
	}
	sl.append(Event{Kind: KindSessionEnd, SessionID: id})
	sl.mu.Lock()
	defer sl.mu.Unlock()
	err := sl.file.Close()
	sl.file = nil
	return err
}
