package fakesitesrepo

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	apperrors "github.com/jrsteele09/pr-admin-client/internal/errors"
	"github.com/jrsteele09/pr-admin-client/sites"
)

var (
	_ sites.WebsiteRepo    = (*FakeWebsiteRepo)(nil)
	_ sites.BlockedURLRepo = (*FakeBlockedURLRepo)(nil)
)

type FakeWebsiteRepo struct {
	websites map[string]*sites.Website
	lock     sync.RWMutex
}

func NewFakeWebsiteRepo() *FakeWebsiteRepo {
	return &FakeWebsiteRepo{
		websites: make(map[string]*sites.Website),
	}
}

func (wr *FakeWebsiteRepo) Upsert(website *sites.Website) error {
	wr.lock.Lock()
	defer wr.lock.Unlock()

	if website.ID == "" {
		website.ID = uuid.New().String()
	}
	if website.CreatedAt.IsZero() {
		website.CreatedAt = time.Now()
	}
	stored := *website
	wr.websites[website.ID] = &stored
	return nil
}

func (wr *FakeWebsiteRepo) Delete(id string) error {
	wr.lock.Lock()
	defer wr.lock.Unlock()

	if _, ok := wr.websites[id]; !ok {
		return apperrors.ErrNotFound
	}
	delete(wr.websites, id)
	return nil
}

func (wr *FakeWebsiteRepo) Get(id string) (*sites.Website, error) {
	wr.lock.RLock()
	defer wr.lock.RUnlock()

	w, ok := wr.websites[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	out := *w
	return &out, nil
}

func (wr *FakeWebsiteRepo) List() ([]*sites.Website, error) {
	wr.lock.RLock()
	defer wr.lock.RUnlock()

	list := make([]*sites.Website, 0, len(wr.websites))
	for _, w := range wr.websites {
		out := *w
		list = append(list, &out)
	}
	sort.Slice(list, func(i, j int) bool {
		return list[i].Name < list[j].Name
	})
	return list, nil
}

type FakeBlockedURLRepo struct {
	blocked    map[string]*sites.BlockedURL
	normalized map[string]string // normalized url to id
	lock       sync.RWMutex
}

func NewFakeBlockedURLRepo() *FakeBlockedURLRepo {
	return &FakeBlockedURLRepo{
		blocked:    make(map[string]*sites.BlockedURL),
		normalized: make(map[string]string),
	}
}

func (br *FakeBlockedURLRepo) Add(blocked *sites.BlockedURL) error {
	key, err := sites.NormalizeURL(blocked.URL)
	if err != nil {
		return apperrors.Wrapf(apperrors.ErrInvalidInput, "%s", err)
	}

	br.lock.Lock()
	defer br.lock.Unlock()

	if _, ok := br.normalized[key]; ok {
		return apperrors.ErrAlreadyExists
	}
	if blocked.ID == "" {
		blocked.ID = uuid.New().String()
	}
	if blocked.CreatedAt.IsZero() {
		blocked.CreatedAt = time.Now()
	}
	stored := *blocked
	br.blocked[blocked.ID] = &stored
	br.normalized[key] = blocked.ID
	return nil
}

func (br *FakeBlockedURLRepo) Delete(id string) error {
	br.lock.Lock()
	defer br.lock.Unlock()

	b, ok := br.blocked[id]
	if !ok {
		return apperrors.ErrNotFound
	}
	if key, err := sites.NormalizeURL(b.URL); err == nil {
		delete(br.normalized, key)
	}
	delete(br.blocked, id)
	return nil
}

func (br *FakeBlockedURLRepo) List() ([]*sites.BlockedURL, error) {
	br.lock.RLock()
	defer br.lock.RUnlock()

	list := make([]*sites.BlockedURL, 0, len(br.blocked))
	for _, b := range br.blocked {
		out := *b
		list = append(list, &out)
	}
	sort.Slice(list, func(i, j int) bool {
		return list[i].CreatedAt.Before(list[j].CreatedAt)
	})
	return list, nil
}

func (br *FakeBlockedURLRepo) IsBlocked(rawURL string) (bool, error) {
	key, err := sites.NormalizeURL(rawURL)
	if err != nil {
		return false, err
	}

	br.lock.RLock()
	defer br.lock.RUnlock()
	_, ok := br.normalized[key]
	return ok, nil
}
