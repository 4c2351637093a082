package repository

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/mmeshcher/luxedropship/internal/model"
	"github.com/mmeshcher/luxedropship/internal/recordstore"
)

// TimestampLayout: формат отметок времени истории импорта (ISO 8601 с миллисекундами).
const TimestampLayout = "2006-01-02T15:04:05.000Z07:00"

// Imports хранит историю импорта товаров и черновики импорта в двух
// отдельных коллекциях. Записи идентифицируются отметкой времени.
type Imports struct {
	store *recordstore.Store
	now   func() time.Time
}

// NewImports создаёт репозиторий истории импорта.
func NewImports(store *recordstore.Store, now func() time.Time) *Imports {
	if now == nil {
		now = time.Now
	}
	return &Imports{store: store, now: now}
}

// RecordImport добавляет запись об импортированном товаре.
func (i *Imports) RecordImport(ctx context.Context, rec model.ImportRecord) (model.ImportRecord, error) {
	rec.Status = model.ImportStatusImported
	return i.append(ctx, recordstore.CollectionImportHistory, rec)
}

// SaveDraft сохраняет черновик импорта.
func (i *Imports) SaveDraft(ctx context.Context, rec model.ImportRecord) (model.ImportRecord, error) {
	rec.Status = model.ImportStatusDraft
	return i.append(ctx, recordstore.CollectionDrafts, rec)
}

func (i *Imports) append(ctx context.Context, collection string, rec model.ImportRecord) (model.ImportRecord, error) {
	rec.Timestamp = i.now().UTC().Format(TimestampLayout)

	encoded, err := recordstore.Encode(rec)
	if err != nil {
		return model.ImportRecord{}, err
	}

	err = i.store.Modify(ctx, collection, func(records []recordstore.Record) ([]recordstore.Record, error) {
		return append(records, encoded), nil
	})
	if err != nil {
		return model.ImportRecord{}, fmt.Errorf("append to %s: %w", collection, err)
	}
	return rec, nil
}

// Draft возвращает черновик по отметке времени или recordstore.ErrNotFound.
func (i *Imports) Draft(ctx context.Context, timestamp string) (model.ImportRecord, error) {
	drafts, err := i.list(ctx, recordstore.CollectionDrafts)
	if err != nil {
		return model.ImportRecord{}, err
	}
	for _, d := range drafts {
		if d.Timestamp == timestamp {
			return d, nil
		}
	}
	return model.ImportRecord{}, recordstore.ErrNotFound
}

// History возвращает импортированные товары и черновики, отсортированные
// по убыванию отметки времени.
func (i *Imports) History(ctx context.Context) ([]model.ImportRecord, error) {
	imported, err := i.list(ctx, recordstore.CollectionImportHistory)
	if err != nil {
		return nil, err
	}
	drafts, err := i.list(ctx, recordstore.CollectionDrafts)
	if err != nil {
		return nil, err
	}

	all := append(imported, drafts...)
	sort.SliceStable(all, func(a, b int) bool {
		return parseImportTime(all[a].Timestamp).After(parseImportTime(all[b].Timestamp))
	})
	return all, nil
}

// Delete удаляет записи с указанной отметкой времени из обеих коллекций
// и сообщает, было ли что-то удалено.
func (i *Imports) Delete(ctx context.Context, timestamp string) (bool, error) {
	removed := false
	for _, collection := range []string{recordstore.CollectionDrafts, recordstore.CollectionImportHistory} {
		err := i.store.Modify(ctx, collection, func(records []recordstore.Record) ([]recordstore.Record, error) {
			kept := make([]recordstore.Record, 0, len(records))
			for _, rec := range records {
				if rec.String("timestamp") == timestamp {
					removed = true
					continue
				}
				kept = append(kept, rec)
			}
			return kept, nil
		})
		if err != nil {
			return false, fmt.Errorf("delete from %s: %w", collection, err)
		}
	}
	return removed, nil
}

func (i *Imports) list(ctx context.Context, collection string) ([]model.ImportRecord, error) {
	records, err := i.store.Read(ctx, collection)
	if err != nil {
		return nil, err
	}

	out := make([]model.ImportRecord, 0, len(records))
	for _, rec := range records {
		v, err := recordstore.Decode[model.ImportRecord](rec)
		if err != nil {
			continue
		}
		if v.Status == "" && collection == recordstore.CollectionDrafts {
			v.Status = model.ImportStatusDraft
		}
		out = append(out, v)
	}
	return out, nil
}

func parseImportTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
