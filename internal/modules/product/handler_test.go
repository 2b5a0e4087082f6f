package product

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storefrontlabs/catalog-backend/internal/modules/auth"
)

const testToken = "test-bearer-token"

// fakeAuth accepts exactly one bearer token and resolves it to a fixed
// principal.
type fakeAuth struct {
	principal *auth.Principal
}

func (a *fakeAuth) Login(context.Context, string, string) (*auth.Credentials, error) {
	return nil, auth.ErrInvalidCredentials
}

func (a *fakeAuth) Authenticate(_ context.Context, bearer string) (*auth.Principal, error) {
	if bearer != testToken {
		return nil, auth.ErrTokenInvalid
	}
	return a.principal, nil
}

func (a *fakeAuth) Logout(context.Context, uuid.UUID) error { return nil }

func setupHandler(t *testing.T) (*chi.Mux, *fakeRepo, *fakeStore) {
	t.Helper()
	repo := newFakeRepo()
	store := newFakeStore()
	svc := newTestService(repo, store)
	router := chi.NewRouter()
	NewHandler(svc, testLogger()).RegisterRoutes(router, &fakeAuth{
		principal: &auth.Principal{UserID: uuid.New(), TokenID: uuid.New()},
	})
	return router, repo, store
}

func multipartBody(t *testing.T, fields map[string]string, files map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for name, value := range fields {
		require.NoError(t, mw.WriteField(name, value))
	}
	for name, content := range files {
		fw, err := mw.CreateFormFile(name, "image.webp")
		require.NoError(t, err)
		_, err = fw.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func TestListIsPublicAndKeepsSlashesUnescaped(t *testing.T) {
	router, repo, _ := setupHandler(t)
	repo.seed(&Product{
		ID:   uuid.New(),
		Slug: "blue-shoes",
		Name: "Blue Shoes",
		Images: ImageSet{
			Header:  SectionImages{Logo: "products/header.webp"},
			Details: []string{},
		},
	})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/products", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "/storage/products/header.webp")
	assert.NotContains(t, body, `\/`)
}

func TestShowUnknownSlugIsNotFound(t *testing.T) {
	router, _, _ := setupHandler(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/products/missing", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCreateRequiresAuth(t *testing.T) {
	router, _, _ := setupHandler(t)
	body, contentType := multipartBody(t, map[string]string{"details": `{"name":"Blue Shoes"}`}, nil)

	req := httptest.NewRequest(http.MethodPost, "/products", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCreateStoresProductAndImages(t *testing.T) {
	router, repo, store := setupHandler(t)
	body, contentType := multipartBody(t,
		map[string]string{
			"header":  `{"title":"welcome"}`,
			"details": `{"name":"Blue Shoes!!"}`,
			"footer":  `{"contact":"x"}`,
		},
		map[string]string{"header.logo": "logo-bytes"},
	)

	req := httptest.NewRequest(http.MethodPost, "/products", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", "Bearer "+testToken)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Empty(t, rec.Body.String())

	p, err := repo.GetBySlug(context.Background(), "blue-shoes")
	require.NoError(t, err)
	require.NotEmpty(t, p.Images.Header.Logo)
	assert.True(t, store.has(p.Images.Header.Logo))
}

func TestCreateMissingNameIs422(t *testing.T) {
	router, _, _ := setupHandler(t)
	body, contentType := multipartBody(t, map[string]string{"details": `{}`}, nil)

	req := httptest.NewRequest(http.MethodPost, "/products", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", "Bearer "+testToken)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "details.name")
}

func TestUpdateReturnsNoContent(t *testing.T) {
	router, repo, _ := setupHandler(t)
	repo.seed(&Product{
		ID:      uuid.New(),
		Slug:    "blue-shoes",
		Name:    "Blue Shoes",
		Details: Document{"name": "Blue Shoes"},
		Images:  NewImageSet(),
	})
	body, contentType := multipartBody(t, map[string]string{"details": `{"name":"Blue Shoes"}`}, nil)

	req := httptest.NewRequest(http.MethodPut, "/products/blue-shoes", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", "Bearer "+testToken)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestDeleteReturnsNoContent(t *testing.T) {
	router, repo, _ := setupHandler(t)
	id := uuid.New()
	repo.seed(&Product{ID: id, Slug: "blue-shoes", Images: NewImageSet()})

	req := httptest.NewRequest(http.MethodDelete, "/products/"+id.String(), nil)
	req.Header.Set("Authorization", "Bearer "+testToken)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/products/blue-shoes", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListSlugFilterQueryParam(t *testing.T) {
	router, repo, _ := setupHandler(t)
	repo.seed(&Product{ID: uuid.New(), Slug: "blue-shoes", Images: NewImageSet()})
	repo.seed(&Product{ID: uuid.New(), Slug: "red-hat", Images: NewImageSet()})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/products?slug=shoe", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.True(t, strings.Contains(body, "blue-shoes"))
	assert.False(t, strings.Contains(body, "red-hat"))
}
