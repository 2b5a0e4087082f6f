package product

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/storefrontlabs/catalog-backend/internal/modules/auth"
	"github.com/storefrontlabs/catalog-backend/internal/storage"
	"github.com/storefrontlabs/catalog-backend/internal/validate"
)

// WriteRequest is the shaped payload of a create or update: the three
// section documents plus whatever image slots the request touches.
type WriteRequest struct {
	Header  Document
	Details Document
	Footer  Document
	Images  UploadSet
}

// Service defines product business logic. Writes require the caller's
// resolved Principal.
type Service interface {
	List(ctx context.Context, slugFilter string) ([]*Resource, error)
	Show(ctx context.Context, slug string) (*Resource, error)
	Create(ctx context.Context, principal *auth.Principal, req WriteRequest) error
	Update(ctx context.Context, principal *auth.Principal, slug string, req WriteRequest) error
	Delete(ctx context.Context, principal *auth.Principal, id uuid.UUID) error
}

type service struct {
	repo  Repository
	recon *Reconciler
	store storage.Store
	log   *logrus.Logger
}

func NewService(repo Repository, recon *Reconciler, store storage.Store, log *logrus.Logger) Service {
	return &service{repo: repo, recon: recon, store: store, log: log}
}

func (s *service) List(ctx context.Context, slugFilter string) ([]*Resource, error) {
	products, err := s.repo.List(ctx, slugFilter)
	if err != nil {
		return nil, err
	}
	resources := make([]*Resource, 0, len(products))
	for _, p := range products {
		resources = append(resources, NewResource(p, s.store))
	}
	return resources, nil
}

func (s *service) Show(ctx context.Context, slug string) (*Resource, error) {
	p, err := s.repo.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	return NewResource(p, s.store), nil
}

func (s *service) Create(ctx context.Context, principal *auth.Principal, req WriteRequest) error {
	name, slug, err := shapeDetails(req.Details)
	if err != nil {
		return err
	}

	p := &Product{
		ID:        uuid.New(),
		Slug:      slug,
		Name:      name,
		Header:    req.Header,
		Details:   req.Details,
		Footer:    req.Footer,
		Images:    NewImageSet(),
		CreatedBy: principal.UserID,
		UpdatedBy: principal.UserID,
	}

	err = s.repo.InTx(ctx, func(tx Tx) error {
		// Insert first with the placeholder map, reconcile, then write the
		// real map in place: paths reach the row only after their uploads
		// succeeded, all inside one transaction.
		if err := tx.Insert(ctx, p); err != nil {
			return err
		}
		images, _, err := s.recon.Reconcile(ctx, NewImageSet(), req.Images)
		if err != nil {
			return err
		}
		p.Images = images
		return tx.UpdateImages(ctx, p.ID, images)
	})
	if err != nil {
		return mapSlugError(err)
	}

	s.log.WithFields(logrus.Fields{"slug": slug, "user_id": principal.UserID}).Info("product created")
	return nil
}

func (s *service) Update(ctx context.Context, principal *auth.Principal, slug string, req WriteRequest) error {
	name, newSlug, err := shapeDetails(req.Details)
	if err != nil {
		return err
	}

	var stale []string
	err = s.repo.InTx(ctx, func(tx Tx) error {
		cur, err := tx.GetBySlugForUpdate(ctx, slug)
		if err != nil {
			return err
		}
		cur.Name = name
		cur.Slug = newSlug
		cur.Header = req.Header
		cur.Details = req.Details
		cur.Footer = req.Footer
		cur.UpdatedBy = principal.UserID
		if err := tx.Update(ctx, cur); err != nil {
			return err
		}

		images, replaced, err := s.recon.Reconcile(ctx, cur.Images, req.Images)
		if err != nil {
			return err
		}
		stale = replaced
		return tx.UpdateImages(ctx, cur.ID, images)
	})
	if err != nil {
		return mapSlugError(err)
	}

	s.cleanup(ctx, stale)
	return nil
}

func (s *service) Delete(ctx context.Context, principal *auth.Principal, id uuid.UUID) error {
	var paths []string
	err := s.repo.InTx(ctx, func(tx Tx) error {
		cur, err := tx.GetByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		paths = cur.Images.Paths()
		return tx.Delete(ctx, cur.ID)
	})
	if err != nil {
		return err
	}

	s.log.WithFields(logrus.Fields{"id": id, "user_id": principal.UserID}).Info("product deleted")
	s.cleanup(ctx, paths)
	return nil
}

// cleanup removes superseded blobs after the owning transaction committed.
// A failure leaves an unreferenced blob behind, which is acceptable; the
// committed row never references a deleted path.
func (s *service) cleanup(ctx context.Context, paths []string) {
	for _, path := range paths {
		if err := s.store.Delete(ctx, path); err != nil {
			s.log.WithError(err).WithField("path", path).Warn("failed to delete stored image")
		}
	}
}

// shapeDetails pulls the display name out of the details document and
// derives the normalized slug, writing it back into the document the same
// way the stored JSON carries it.
func shapeDetails(details Document) (name, slug string, err error) {
	raw, ok := details["name"].(string)
	if !ok || raw == "" {
		return "", "", validate.NewError("details.name", "The details.name field is required.")
	}
	name = raw

	source := name
	if s, ok := details["slug"].(string); ok && s != "" {
		source = s
	}
	slug = Slugify(source)
	if slug == "" {
		return "", "", validate.NewError("details.slug", "The details.slug field could not be normalized.")
	}
	details["slug"] = slug
	return name, slug, nil
}

func mapSlugError(err error) error {
	if errors.Is(err, ErrSlugTaken) {
		return validate.NewError("details.slug", "The slug has already been taken.")
	}
	return err
}
