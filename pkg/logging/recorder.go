package logging

import "sync"

// Record is one entry captured by a Recorder.
type Record struct {
	Level   Level
	Message string
	Fields  map[string]any
}

// Recorder is a Logger that keeps entries in memory. Hosts use it to show
// recent diagnostics; tests use it to assert on warnings.
type Recorder struct {
	mu      *sync.Mutex
	records *[]Record
	fields  []Field
	level   Level
}

// NewRecorder creates a Recorder capturing every level.
func NewRecorder() *Recorder {
	return &Recorder{
		mu:      &sync.Mutex{},
		records: &[]Record{},
		level:   DebugLevel,
	}
}

func (r *Recorder) log(level Level, msg string, fields ...Field) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if level < r.level {
		return
	}
	m := make(map[string]any, len(r.fields)+len(fields))
	for _, f := range r.fields {
		m[f.Key] = f.Value
	}
	for _, f := range fields {
		m[f.Key] = f.Value
	}
	*r.records = append(*r.records, Record{Level: level, Message: msg, Fields: m})
}

func (r *Recorder) Debug(msg string, fields ...Field) { r.log(DebugLevel, msg, fields...) }
func (r *Recorder) Info(msg string, fields ...Field)  { r.log(InfoLevel, msg, fields...) }
func (r *Recorder) Warn(msg string, fields ...Field)  { r.log(WarnLevel, msg, fields...) }
func (r *Recorder) Error(msg string, fields ...Field) { r.log(ErrorLevel, msg, fields...) }

// With returns a child sharing the same record buffer.
func (r *Recorder) With(fields ...Field) Logger {
	r.mu.Lock()
	defer r.mu.Unlock()
	nf := make([]Field, 0, len(r.fields)+len(fields))
	nf = append(nf, r.fields...)
	nf = append(nf, fields...)
	return &Recorder{mu: r.mu, records: r.records, fields: nf, level: r.level}
}

func (r *Recorder) SetLevel(level Level) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.level = level
}

func (r *Recorder) GetLevel() Level {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.level
}

// Records returns a copy of everything captured so far.
func (r *Recorder) Records() []Record {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Record, len(*r.records))
	copy(out, *r.records)
	return out
}

// AtLevel returns the captured entries with exactly the given level.
func (r *Recorder) AtLevel(level Level) []Record {
	var out []Record
	for _, rec := range r.Records() {
		if rec.Level == level {
			out = append(out, rec)
		}
	}
	return out
}

// Reset drops all captured entries.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	*r.records = (*r.records)[:0]
}
