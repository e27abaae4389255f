package chunk

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	drerrors "github.com/av1an/av1an/internal/errors"
	"github.com/av1an/av1an/internal/util"
)

// ResumeRecord is one chunk's entry in the Resume Store (§3, §4.9).
type ResumeRecord struct {
	Done        bool `json:"done"`
	SegmentPath string `json:"segment_path"`
	Quantizer   *int `json:"quantizer,omitempty"`
}

// resumeDocument is the on-disk shape of done.json. TotalFrames and
// AudioDone are supplemented job-level fields carried over from the
// original DoneJson envelope (context.rs). They are written and reloaded,
// but the pipeline does not consult them: a resumed run still probes the
// source and muxes the audio stream again at concat time.
type resumeDocument struct {
	TotalFrames int                  `json:"total_frames"`
	AudioDone   bool                 `json:"audio_done"`
	Chunks      map[int]ResumeRecord `json:"chunks"`
}

// ResumeStore is the mutex-guarded on-disk record of completed chunks
// living at "<scratch>/done.json" (§4.9). Writes are serialized and
// flushed via write-temp-then-rename so a crash never leaves a torn file.
type ResumeStore struct {
	mu   sync.Mutex
	path string
	doc  resumeDocument
}

// NewResumeStore creates an empty store bound to path, not yet persisted.
func NewResumeStore(path string, totalFrames int) *ResumeStore {
	return &ResumeStore{
		path: path,
		doc:  resumeDocument{TotalFrames: totalFrames, Chunks: make(map[int]ResumeRecord)},
	}
}

// LoadResumeStore reads an existing done.json, or returns a fresh empty
// store if path does not exist.
func LoadResumeStore(path string, totalFrames int) (*ResumeStore, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return NewResumeStore(path, totalFrames), nil
	}
	if err != nil {
		return nil, drerrors.NewIOError("read resume store", err)
	}

	var doc resumeDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, drerrors.NewIOError("parse resume store", err)
	}
	if doc.Chunks == nil {
		doc.Chunks = make(map[int]ResumeRecord)
	}
	return &ResumeStore{path: path, doc: doc}, nil
}

// MarkDone records chunk index as done with the given segment path and
// quantizer, then flushes the store to disk atomically.
func (s *ResumeStore) MarkDone(index int, segmentPath string, quantizer *int) error {
	s.mu.Lock()
	s.doc.Chunks[index] = ResumeRecord{Done: true, SegmentPath: segmentPath, Quantizer: quantizer}
	doc := s.doc
	s.mu.Unlock()
	return writeResumeDocument(s.path, doc)
}

// MarkAudioDone records that the source's audio stream has already been
// copied into the scratch area, then flushes the store.
func (s *ResumeStore) MarkAudioDone() error {
	s.mu.Lock()
	s.doc.AudioDone = true
	doc := s.doc
	s.mu.Unlock()
	return writeResumeDocument(s.path, doc)
}

// AudioDone reports whether the audio stream was already copied.
func (s *ResumeStore) AudioDone() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc.AudioDone
}

// Get returns the record for a chunk index, if present.
func (s *ResumeStore) Get(index int) (ResumeRecord, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.doc.Chunks[index]
	return rec, ok
}

// VerifyAndFilter checks every recorded done chunk against the filesystem:
// the segment file must exist and, via countFrames, report exactly the
// chunk's frame count. Chunks that fail verification are dropped from the
// store (and will be re-queued by the caller); chunks that pass are
// returned as the set of indices safe to skip.
func (s *ResumeStore) VerifyAndFilter(chunks []Chunk, countFrames func(path string) (int, error)) (map[int]bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	skip := make(map[int]bool)
	byIndex := make(map[int]Chunk, len(chunks))
	for _, c := range chunks {
		byIndex[c.Index] = c
	}

	for idx, rec := range s.doc.Chunks {
		if !rec.Done {
			continue
		}
		c, known := byIndex[idx]
		if !known {
			delete(s.doc.Chunks, idx)
			continue
		}
		if !util.FileExists(rec.SegmentPath) {
			delete(s.doc.Chunks, idx)
			continue
		}
		n, err := countFrames(rec.SegmentPath)
		if err != nil || n != c.Frames() {
			delete(s.doc.Chunks, idx)
			continue
		}
		skip[idx] = true
	}
	return skip, writeResumeDocument(s.path, s.doc)
}

func writeResumeDocument(path string, doc resumeDocument) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return drerrors.NewIOError("marshal resume store", err)
	}

	dir := filepath.Dir(path)
	tmpPath, err := util.CreateTempFilePath(dir, ".done", "json.tmp")
	if err != nil {
		return drerrors.NewIOError("create resume store temp path", err)
	}
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return drerrors.NewIOError("write resume store temp file", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return drerrors.NewIOError("rename resume store into place", err)
	}
	return nil
}
