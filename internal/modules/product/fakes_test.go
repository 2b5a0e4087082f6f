package product

import (
	"context"
	"errors"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

type fakeStore struct {
	mu      sync.Mutex
	objects map[string][]byte
	deleted []string
	putErr  error
	delErr  error
}

func newFakeStore() *fakeStore {
	return &fakeStore{objects: map[string][]byte{}}
}

func (s *fakeStore) Put(_ context.Context, path string, r io.Reader) error {
	if s.putErr != nil {
		return s.putErr
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[path] = data
	return nil
}

func (s *fakeStore) URL(path string) string {
	return "/storage/" + path
}

func (s *fakeStore) Delete(_ context.Context, path string) error {
	if s.delErr != nil {
		return s.delErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, path)
	s.deleted = append(s.deleted, path)
	return nil
}

func (s *fakeStore) has(path string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.objects[path]
	return ok
}

func upload(name, content string) *Upload {
	return &Upload{
		Filename: name,
		Open: func() (io.ReadCloser, error) {
			return io.NopCloser(strings.NewReader(content)), nil
		},
	}
}

func badUpload(name string) *Upload {
	return &Upload{
		Filename: name,
		Open: func() (io.ReadCloser, error) {
			return nil, errors.New("truncated upload")
		},
	}
}

// fakeRepo keeps products in memory with copy-on-write transactions so
// rollback behavior can be asserted without a database.
type fakeRepo struct {
	mu              sync.Mutex
	byID            map[uuid.UUID]*Product
	insertErr       error
	updateErr       error
	updateImagesErr error
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{byID: map[uuid.UUID]*Product{}}
}

func cloneDoc(d Document) Document {
	if d == nil {
		return nil
	}
	out := make(Document, len(d))
	for k, v := range d {
		out[k] = v
	}
	return out
}

func cloneProduct(p *Product) *Product {
	cp := *p
	cp.Header = cloneDoc(p.Header)
	cp.Details = cloneDoc(p.Details)
	cp.Footer = cloneDoc(p.Footer)
	cp.Images.Details = append([]string{}, p.Images.Details...)
	return &cp
}

func (r *fakeRepo) seed(p *Product) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[p.ID] = cloneProduct(p)
}

func (r *fakeRepo) List(_ context.Context, slugFilter string) ([]*Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []*Product{}
	for _, p := range r.byID {
		if slugFilter == "" || strings.Contains(p.Slug, slugFilter) {
			out = append(out, cloneProduct(p))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Slug < out[j].Slug })
	return out, nil
}

func (r *fakeRepo) GetBySlug(_ context.Context, slug string) (*Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.byID {
		if p.Slug == slug {
			return cloneProduct(p), nil
		}
	}
	return nil, ErrNotFound
}

func (r *fakeRepo) InTx(_ context.Context, fn func(tx Tx) error) error {
	r.mu.Lock()
	staging := make(map[uuid.UUID]*Product, len(r.byID))
	for id, p := range r.byID {
		staging[id] = cloneProduct(p)
	}
	r.mu.Unlock()

	tx := &fakeTx{repo: r, data: staging}
	if err := fn(tx); err != nil {
		return err
	}

	r.mu.Lock()
	r.byID = staging
	r.mu.Unlock()
	return nil
}

type fakeTx struct {
	repo *fakeRepo
	data map[uuid.UUID]*Product
}

func (t *fakeTx) Insert(_ context.Context, p *Product) error {
	if t.repo.insertErr != nil {
		return t.repo.insertErr
	}
	for _, existing := range t.data {
		if existing.Slug == p.Slug {
			return ErrSlugTaken
		}
	}
	now := time.Now()
	cp := cloneProduct(p)
	cp.CreatedAt = now
	cp.UpdatedAt = now
	t.data[p.ID] = cp
	return nil
}

func (t *fakeTx) GetBySlugForUpdate(_ context.Context, slug string) (*Product, error) {
	for _, p := range t.data {
		if p.Slug == slug {
			return cloneProduct(p), nil
		}
	}
	return nil, ErrNotFound
}

func (t *fakeTx) GetByIDForUpdate(_ context.Context, id uuid.UUID) (*Product, error) {
	p, ok := t.data[id]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneProduct(p), nil
}

func (t *fakeTx) Update(_ context.Context, p *Product) error {
	if t.repo.updateErr != nil {
		return t.repo.updateErr
	}
	cur, ok := t.data[p.ID]
	if !ok {
		return ErrNotFound
	}
	for id, existing := range t.data {
		if id != p.ID && existing.Slug == p.Slug {
			return ErrSlugTaken
		}
	}
	cp := cloneProduct(p)
	cp.CreatedAt = cur.CreatedAt
	cp.Images = cur.Images
	cp.Images.Details = append([]string{}, cur.Images.Details...)
	cp.UpdatedAt = time.Now()
	t.data[p.ID] = cp
	return nil
}

func (t *fakeTx) UpdateImages(_ context.Context, id uuid.UUID, images ImageSet) error {
	if t.repo.updateImagesErr != nil {
		return t.repo.updateImagesErr
	}
	p, ok := t.data[id]
	if !ok {
		return ErrNotFound
	}
	p.Images = images
	p.Images.Details = append([]string{}, images.Details...)
	return nil
}

func (t *fakeTx) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := t.data[id]; !ok {
		return ErrNotFound
	}
	delete(t.data, id)
	return nil
}
