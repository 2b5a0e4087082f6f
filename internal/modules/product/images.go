package product

import (
	"context"
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/storefrontlabs/catalog-backend/internal/storage"
)

// Upload is one submitted image file. Clear marks a slot the client
// explicitly emptied; a nil *Upload means the slot was not submitted at
// all and keeps its prior image.
type Upload struct {
	Filename string
	Open     func() (io.ReadCloser, error)
	Clear    bool
}

// UploadSet is the full set of image slots a write request may touch.
type UploadSet struct {
	HeaderLogo *Upload
	Details    []*Upload
	FooterLogo *Upload
}

// Reconciler decides, slot by slot, which stored images survive a write,
// which submitted uploads replace them, and which stored paths become
// garbage once the surrounding transaction commits.
type Reconciler struct {
	store storage.Store
	log   *logrus.Logger
}

func NewReconciler(store storage.Store, log *logrus.Logger) *Reconciler {
	return &Reconciler{store: store, log: log}
}

// Reconcile uploads every new image and returns the image map to persist
// together with the prior paths this write supersedes. It never deletes
// anything itself: the caller issues the deletions only after its
// transaction has committed, so a rollback can never orphan the row.
func (r *Reconciler) Reconcile(ctx context.Context, prior ImageSet, in UploadSet) (ImageSet, []string, error) {
	next := NewImageSet()
	var stale []string

	logo, old, err := r.slot(ctx, prior.Header.Logo, in.HeaderLogo)
	if err != nil {
		return ImageSet{}, nil, err
	}
	next.Header.Logo = logo
	stale = append(stale, old...)

	logo, old, err = r.slot(ctx, prior.Footer.Logo, in.FooterLogo)
	if err != nil {
		return ImageSet{}, nil, err
	}
	next.Footer.Logo = logo
	stale = append(stale, old...)

	for i, up := range in.Details {
		var priorAt string
		if i < len(prior.Details) {
			priorAt = prior.Details[i]
		}
		path, old, err := r.slot(ctx, priorAt, up)
		if err != nil {
			return ImageSet{}, nil, err
		}
		if path != "" {
			next.Details = append(next.Details, path)
		}
		stale = append(stale, old...)
	}

	// Observed contract: an empty details result restores the prior list
	// instead of clearing it.
	if len(next.Details) == 0 && len(prior.Details) > 0 {
		next.Details = append(next.Details, prior.Details...)
	}

	return next, stale, nil
}

// slot resolves a single image position. A new readable upload is stored
// under a fresh path and supersedes the prior one; an unreadable upload
// falls back to the prior state rather than failing the request; a store
// write failure is fatal and aborts the whole write.
func (r *Reconciler) slot(ctx context.Context, prior string, up *Upload) (string, []string, error) {
	switch {
	case up == nil:
		return prior, nil, nil
	case up.Clear:
		if prior != "" {
			return "", []string{prior}, nil
		}
		return "", nil, nil
	default:
		rc, err := up.Open()
		if err != nil {
			r.log.WithError(err).WithField("filename", up.Filename).
				Warn("unreadable upload, keeping previous image")
			return prior, nil, nil
		}
		defer rc.Close()

		path := "products/" + uuid.New().String() + ".webp"
		if err := r.store.Put(ctx, path, rc); err != nil {
			return "", nil, fmt.Errorf("store image %s: %w", path, err)
		}
		if prior != "" {
			return path, []string{prior}, nil
		}
		return path, nil, nil
	}
}
