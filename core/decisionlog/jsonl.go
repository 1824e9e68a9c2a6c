package decisionlog

import (
	"bufio"
	"context"
	"encoding/json"
	"os"
	"sync"
	"time"

	"github.com/Jainil7227/AlphaNeuron/core/model"
)

// line is one JSONL entry: either a full decision or an amendment to a
// previously appended one. Amendments keep the file append-only.
type line struct {
	Decision *model.AgentDecision `json:"decision,omitempty"`

	AmendID  string              `json:"amend_id,omitempty"`
	Outcome  *model.CycleOutcome `json:"outcome,omitempty"`
	Override *model.Override     `json:"override,omitempty"`
	At       time.Time           `json:"at,omitempty"`
}

// JSONLStore stores decisions in a JSONL file, one line per record or
// amendment. Query replays amendments onto their decisions.
type JSONLStore struct {
	path string
	mu   sync.Mutex
}

func NewJSONLStore(path string) (*JSONLStore, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0644)
	if err != nil {
		return nil, err
	}
	if cerr := f.Close(); cerr != nil {
		return nil, cerr
	}
	return &JSONLStore{path: path}, nil
}

func (s *JSONLStore) Append(_ context.Context, dec model.AgentDecision) error {
	return s.write(line{Decision: &dec})
}

func (s *JSONLStore) RecordOutcome(_ context.Context, decisionID string, outcome model.CycleOutcome) error {
	return s.write(line{AmendID: decisionID, Outcome: &outcome, At: time.Now()})
}

func (s *JSONLStore) RecordOverride(_ context.Context, decisionID string, ov model.Override) error {
	outcome := model.OutcomeOverridden
	return s.write(line{AmendID: decisionID, Outcome: &outcome, Override: &ov, At: time.Now()})
}

func (s *JSONLStore) write(l line) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, err := os.OpenFile(s.path, os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()
	return json.NewEncoder(f).Encode(l)
}

func (s *JSONLStore) Query(_ context.Context, q Query) ([]model.AgentDecision, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, err := os.Open(s.path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	byID := make(map[string]*model.AgentDecision)
	var order []string
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		var l line
		if err := json.Unmarshal(scanner.Bytes(), &l); err != nil {
			continue
		}
		switch {
		case l.Decision != nil:
			d := *l.Decision
			byID[d.ID] = &d
			order = append(order, d.ID)
		case l.AmendID != "":
			d, ok := byID[l.AmendID]
			if !ok {
				continue
			}
			if l.Outcome != nil {
				d.Outcome = *l.Outcome
			}
			if l.Override != nil {
				d.Override = l.Override
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	var res []model.AgentDecision
	for _, id := range order {
		if d := byID[id]; q.matches(*d) {
			res = append(res, *d)
		}
	}
	return res, nil
}

func (s *JSONLStore) Close() error { return nil }
