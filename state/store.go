// Package state is the State Store (spec §4.3): a single CouchDB collection,
// "params", holding the pipeline's step marker and per-resource fill
// progress markers. It is the one piece of state every engine in the
// pipeline reads and writes, so its contracts are kept deliberately small
// and CouchDB-document shaped rather than SQL-row shaped.
package state

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/vlaanderen-mow/amsync/common"
	"github.com/vlaanderen-mow/amsync/db"
)

const collection = "params"

const stepKey = "db_step"

// Step is the pipeline's top-level progress marker (spec §4.9).
type Step string

const (
	StepCreateDB        Step = "0_create_db"
	StepInitialFill     Step = "1_initial_fill"
	StepExtraDataFill   Step = "2_extra_data_fill"
	StepCreateIndexes   Step = "3_create_indexes"
	StepApplyConstraints Step = "4_apply_constraints"
	StepFinalSync       Step = "5_final_sync"
)

// Progress is one resource's fill-progress document, keyed "fill_<resource>".
type Progress struct {
	Fill bool        `json:"fill"`
	From interface{} `json:"from"`
}

type stepDoc struct {
	ID    string `json:"_id"`
	Rev   string `json:"_rev,omitempty"`
	Value string `json:"value"`
}

type progressDoc struct {
	ID   string      `json:"_id"`
	Rev  string      `json:"_rev,omitempty"`
	Fill bool        `json:"fill"`
	From interface{} `json:"from"`
}

// Store is the State Store implementation, backed by the Storage Adapter.
type Store struct {
	adapter *db.Adapter
}

// New returns a Store backed by adapter. The "params" collection is assumed
// to already exist; the Schema Provisioner is responsible for creating it.
func New(adapter *db.Adapter) *Store {
	return &Store{adapter: adapter}
}

// SetStep upserts the step marker.
func (s *Store) SetStep(ctx context.Context, step Step) error {
	doc := stepDoc{ID: stepKey, Value: string(step)}
	if existing, err := s.getStepDoc(ctx); err == nil {
		doc.Rev = existing.Rev
	}
	_, err := s.adapter.Put(ctx, collection, stepKey, doc)
	if err != nil {
		return common.Wrap(common.ClassStorage, "set step", err)
	}
	return nil
}

// GetStep returns the current step, or ("", false) if no marker exists yet
// (an unprovisioned database).
func (s *Store) GetStep(ctx context.Context) (Step, bool, error) {
	doc, err := s.getStepDoc(ctx)
	if err != nil {
		if isNotFound(err) {
			return "", false, nil
		}
		return "", false, err
	}
	return Step(doc.Value), true, nil
}

func (s *Store) getStepDoc(ctx context.Context) (stepDoc, error) {
	var doc stepDoc
	if err := s.adapter.Get(ctx, collection, stepKey, &doc); err != nil {
		return stepDoc{}, err
	}
	return doc, nil
}

// GetProgress returns resource's fill-progress marker, creating it with
// {fill:true, from:null} on first read (spec §4.3).
func (s *Store) GetProgress(ctx context.Context, resource string) (Progress, error) {
	key := progressKey(resource)
	var doc progressDoc
	err := s.adapter.Get(ctx, collection, key, &doc)
	if err == nil {
		return Progress{Fill: doc.Fill, From: doc.From}, nil
	}
	if !isNotFound(err) {
		return Progress{}, common.Wrap(common.ClassStorage, "get progress for "+resource, err)
	}

	fresh := progressDoc{ID: key, Fill: true, From: nil}
	if _, err := s.adapter.Put(ctx, collection, key, fresh); err != nil {
		return Progress{}, common.Wrap(common.ClassStorage, "seed progress for "+resource, err)
	}
	return Progress{Fill: true, From: nil}, nil
}

// AdvanceProgress updates only the `from` cursor/offset field, leaving Fill
// untouched.
func (s *Store) AdvanceProgress(ctx context.Context, resource string, cursor interface{}) error {
	key := progressKey(resource)
	var doc progressDoc
	if err := s.adapter.Get(ctx, collection, key, &doc); err != nil {
		return common.Wrap(common.ClassStorage, "advance progress for "+resource, err)
	}
	doc.From = cursor
	if _, err := s.adapter.Put(ctx, collection, key, doc); err != nil {
		return common.Wrap(common.ClassStorage, "advance progress for "+resource, err)
	}
	return nil
}

// MarkFilled sets {fill:false, from:null} once a resource's fill has
// completed.
func (s *Store) MarkFilled(ctx context.Context, resource string) error {
	key := progressKey(resource)
	var doc progressDoc
	if err := s.adapter.Get(ctx, collection, key, &doc); err != nil {
		return common.Wrap(common.ClassStorage, "mark filled for "+resource, err)
	}
	doc.Fill = false
	doc.From = nil
	if _, err := s.adapter.Put(ctx, collection, key, doc); err != nil {
		return common.Wrap(common.ClassStorage, "mark filled for "+resource, err)
	}
	return nil
}

// SweepFillMarkers deletes every fill_* progress document once the
// pipeline's initial and extra fills have both completed.
func (s *Store) SweepFillMarkers(ctx context.Context) error {
	docs, err := s.adapter.Find(ctx, collection, db.MangoQuery{
		Selector: map[string]interface{}{
			"_id": map[string]interface{}{"$regex": "^fill_"},
		},
	})
	if err != nil {
		return common.Wrap(common.ClassStorage, "sweep fill markers", err)
	}
	for _, raw := range docs {
		var doc progressDoc
		if err := json.Unmarshal(raw, &doc); err != nil {
			continue
		}
		if err := s.adapter.DropDoc(ctx, collection, doc.ID, doc.Rev); err != nil {
			return common.Wrap(common.ClassStorage, "delete fill marker "+doc.ID, err)
		}
	}
	return nil
}

func progressKey(resource string) string {
	return "fill_" + resource
}

func isNotFound(err error) bool {
	var cdbErr *db.CouchDBError
	return errors.As(err, &cdbErr) && cdbErr.StatusCode == 404
}
