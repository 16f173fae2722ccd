package sampler

import (
	"encoding/json"
	"os"
	"time"

	"github.com/pterm/pterm"
)

// Status is a point-in-time snapshot of a running chain.
type Status struct {
	Iteration  int     `json:"iteration"`
	Total      int     `json:"total"`
	Acceptance float64 `json:"acceptance"`
	LnPost     float64 `json:"lnpost"`
}

// Summary describes a finished (or interrupted) run.
type Summary struct {
	Dir        string        `json:"dir"`
	Iterations int           `json:"iterations"`
	Samples    int           `json:"samples"`
	Acceptance float64       `json:"acceptance"`
	MaxLnPost  float64       `json:"max_lnpost"`
	Duration   time.Duration `json:"duration"`
	Resumed    bool          `json:"resumed"`
}

// Progress receives sampling milestones.
//
// Implementations:
//   - CLIEmitter: pterm progress bar for terminal runs
//   - JSONEmitter: one JSON event per line for machine consumers
//   - NopEmitter: silence, used in tests and library embedding
type Progress interface {
	Start(total, from int)
	Update(s Status)
	Finish(s Summary)
}

// NopEmitter discards all progress.
type NopEmitter struct{}

func (NopEmitter) Start(total, from int) {}
func (NopEmitter) Update(s Status)       {}
func (NopEmitter) Finish(s Summary)      {}

// CLIEmitter renders a progress bar with live acceptance and posterior
// readouts.
type CLIEmitter struct {
	bar  *pterm.ProgressbarPrinter
	last int
}

// NewCLIEmitter creates a terminal progress emitter.
func NewCLIEmitter() *CLIEmitter { return &CLIEmitter{} }

func (e *CLIEmitter) Start(total, from int) {
	bar, err := pterm.DefaultProgressbar.
		WithTotal(total).
		WithCurrent(from).
		WithTitle("sampling").
		WithShowElapsedTime(true).
		Start()
	if err != nil {
		return
	}
	e.bar = bar
	e.last = from
}

func (e *CLIEmitter) Update(s Status) {
	if e.bar == nil {
		return
	}
	e.bar.UpdateTitle(pterm.Sprintf("sampling  acc %.2f  lnpost %.1f", s.Acceptance, s.LnPost))
	if s.Iteration > e.last {
		e.bar.Add(s.Iteration - e.last)
		e.last = s.Iteration
	}
}

func (e *CLIEmitter) Finish(s Summary) {
	if e.bar != nil {
		if rem := e.bar.Total - e.last; rem > 0 {
			e.bar.Add(rem)
		}
		e.bar.Stop()
		e.bar = nil
	}
	pterm.Success.Printfln("%d samples in %s  acceptance %.2f  max lnpost %.2f",
		s.Samples, s.Duration.Round(time.Second), s.Acceptance, s.MaxLnPost)
}

// JSONEmitter writes structured progress events to stdout, one JSON
// object per line.
type JSONEmitter struct {
	enc *json.Encoder
}

// NewJSONEmitter creates a machine-readable progress emitter.
func NewJSONEmitter() *JSONEmitter {
	return &JSONEmitter{enc: json.NewEncoder(os.Stdout)}
}

type progressEvent struct {
	Type      string      `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	Data      interface{} `json:"data"`
}

func (e *JSONEmitter) emit(typ string, data interface{}) {
	_ = e.enc.Encode(progressEvent{Type: typ, Timestamp: time.Now().UTC(), Data: data})
}

func (e *JSONEmitter) Start(total, from int) {
	e.emit("start", map[string]int{"total": total, "from": from})
}

func (e *JSONEmitter) Update(s Status) { e.emit("status", s) }

func (e *JSONEmitter) Finish(s Summary) { e.emit("complete", s) }
