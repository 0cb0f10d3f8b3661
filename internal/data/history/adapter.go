package history

import (
	"time"
)

// Adapter bridges Store to the core RunHistory port under a fixed project key.
type Adapter struct {
	store      *Store
	projectKey string
}

func NewAdapter(store *Store, projectKey string) *Adapter {
	return &Adapter{store: store, projectKey: projectKey}
}

func (a *Adapter) SaveRun(rec RunRecord) (RunRecord, error) {
	if rec.ProjectKey == "" {
		rec.ProjectKey = a.projectKey
	}
	return a.store.SaveRun(rec)
}

func (a *Adapter) LoadRuns(since time.Time) ([]RunRecord, error) {
	return a.store.LoadRuns(a.projectKey, since)
}

func (a *Adapter) Close() error {
	return a.store.Close()
}
