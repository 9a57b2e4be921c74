package validate

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"time"

	"github.com/eykd/rorv/internal/domain"
)

type writtenReport struct {
	filename string
	fields   []string
	findings []domain.Finding
}

type fakeWriter struct {
	mu      sync.Mutex
	reports []writtenReport
	err     error
}

func (w *fakeWriter) Write(_ context.Context, filename string, fields []string, findings []domain.Finding) (string, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.err != nil {
		return "", w.err
	}
	w.reports = append(w.reports, writtenReport{filename: filename, fields: fields, findings: findings})
	return "out/" + filename, nil
}

func (w *fakeWriter) report(filename string) (writtenReport, bool) {
	for _, r := range w.reports {
		if r.filename == filename {
			return r, true
		}
	}
	return writtenReport{}, false
}

type fakeLocker struct {
	locked   bool
	unlocked bool
	err      error
}

func (l *fakeLocker) TryLock(context.Context) error {
	if l.err != nil {
		return l.err
	}
	l.locked = true
	return nil
}

func (l *fakeLocker) Unlock() error {
	l.unlocked = true
	return nil
}

type fakeRecorder struct {
	ran     map[string]int
	skipped map[string]string
}

func newFakeRecorder() *fakeRecorder {
	return &fakeRecorder{ran: map[string]int{}, skipped: map[string]string{}}
}

func (r *fakeRecorder) ValidatorRan(name string, findings int, _ time.Duration) {
	r.ran[name] = findings
}

func (r *fakeRecorder) ValidatorSkipped(name, reason string) {
	r.skipped[name] = reason
}

type recordingLogger struct {
	mu    sync.Mutex
	warns []string
	infos []string
}

func (l *recordingLogger) Debug(string, ...any) {}

func (l *recordingLogger) Info(msg string, _ ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.infos = append(l.infos, msg)
}

func (l *recordingLogger) Warn(msg string, _ ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.warns = append(l.warns, msg)
}

type fakeGeocoder struct {
	places map[string]domain.Place
}

func (g *fakeGeocoder) Lookup(_ context.Context, id string) (domain.Place, error) {
	if p, ok := g.places[id]; ok {
		return p, nil
	}
	return domain.Place{}, errors.New("geonames: no such id " + id)
}

// spyValidator records whether Run was called.
type spyValidator struct {
	desc     Descriptor
	called   bool
	findings []domain.Finding
	err      error
}

func (s *spyValidator) Descriptor() Descriptor { return s.desc }

func (s *spyValidator) Run(context.Context, *Context) ([]domain.Finding, error) {
	s.called = true
	return s.findings, s.err
}

// csvRow builds a tabular record the way the CSV reader does: raw cells
// kept, multi-values split for new rows, asserted values for update rows.
func csvRow(line int, cells map[string]string) domain.Record {
	rec := domain.Record{
		Line:   line,
		Format: domain.FormatTabular,
		Raw:    cells,
		Fields: map[string][]string{},
		ID:     cells[domain.FieldID],
		Source: cells[domain.FieldIssueURL],
	}
	for k, v := range cells {
		if vals := domain.SplitValues(v); len(vals) > 0 {
			rec.Fields[k] = vals
		}
	}
	return rec
}

func issue(n int) string {
	return "https://github.com/ror-community/ror-updates/issues/" + strconv.Itoa(n)
}

type stubCorpus struct {
	records []domain.Record
}

func (s stubCorpus) Candidates(context.Context, string, string) ([]domain.Record, error) {
	return s.records, nil
}
