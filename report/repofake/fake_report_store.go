package fakereportstore

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	apperrors "github.com/jrsteele09/pr-admin-client/internal/errors"
	"github.com/jrsteele09/pr-admin-client/report"
)

var _ report.Store = (*FakeReportStore)(nil)

type FakeReportStore struct {
	reports map[string]*report.Report
	lock    sync.RWMutex
}

func NewFakeReportStore() *FakeReportStore {
	return &FakeReportStore{
		reports: make(map[string]*report.Report),
	}
}

func (rs *FakeReportStore) Save(r *report.Report) error {
	rs.lock.Lock()
	defer rs.lock.Unlock()

	if r.ID == "" {
		r.ID = uuid.New().String()
	}
	if r.UploadedAt.IsZero() {
		r.UploadedAt = time.Now()
	}
	stored := *r
	stored.Rows = append([]report.Row(nil), r.Rows...)
	rs.reports[r.ID] = &stored
	return nil
}

func (rs *FakeReportStore) Get(id string) (*report.Report, error) {
	rs.lock.RLock()
	defer rs.lock.RUnlock()

	r, ok := rs.reports[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	out := *r
	out.Rows = append([]report.Row(nil), r.Rows...)
	return &out, nil
}

// List returns the newest reports first
func (rs *FakeReportStore) List() ([]report.Meta, error) {
	rs.lock.RLock()
	defer rs.lock.RUnlock()

	metas := make([]report.Meta, 0, len(rs.reports))
	for _, r := range rs.reports {
		metas = append(metas, r.Meta)
	}
	sort.Slice(metas, func(i, j int) bool {
		return metas[i].UploadedAt.After(metas[j].UploadedAt)
	})
	return metas, nil
}

func (rs *FakeReportStore) Delete(id string) error {
	rs.lock.Lock()
	defer rs.lock.Unlock()

	if _, ok := rs.reports[id]; !ok {
		return apperrors.ErrNotFound
	}
	delete(rs.reports, id)
	return nil
}
