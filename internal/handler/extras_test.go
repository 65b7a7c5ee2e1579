package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/fritkot/api/internal/database"
)

type mockExtraStore struct {
	listExtrasFn     func(ctx context.Context) ([]database.Extra, error)
	getExtraFn       func(ctx context.Context, id uuid.UUID) (database.Extra, error)
	createExtraFn    func(ctx context.Context, arg database.CreateExtraParams) (database.Extra, error)
	updateExtraFn    func(ctx context.Context, arg database.UpdateExtraParams) (database.Extra, error)
	deleteExtraFn    func(ctx context.Context, id uuid.UUID) (uuid.UUID, error)
	listTagsFn       func(ctx context.Context, extraID uuid.UUID) ([]database.Tag, error)
	linkExtraTagFn   func(ctx context.Context, arg database.LinkExtraTagParams) error
	unlinkExtraTagFn func(ctx context.Context, arg database.UnlinkExtraTagParams) error
}

func (m *mockExtraStore) ListExtras(ctx context.Context) ([]database.Extra, error) {
	return m.listExtrasFn(ctx)
}

func (m *mockExtraStore) GetExtra(ctx context.Context, id uuid.UUID) (database.Extra, error) {
	return m.getExtraFn(ctx, id)
}

func (m *mockExtraStore) CreateExtra(ctx context.Context, arg database.CreateExtraParams) (database.Extra, error) {
	return m.createExtraFn(ctx, arg)
}

func (m *mockExtraStore) UpdateExtra(ctx context.Context, arg database.UpdateExtraParams) (database.Extra, error) {
	return m.updateExtraFn(ctx, arg)
}

func (m *mockExtraStore) DeleteExtra(ctx context.Context, id uuid.UUID) (uuid.UUID, error) {
	return m.deleteExtraFn(ctx, id)
}

func (m *mockExtraStore) ListTagsByExtra(ctx context.Context, extraID uuid.UUID) ([]database.Tag, error) {
	return m.listTagsFn(ctx, extraID)
}

func (m *mockExtraStore) LinkExtraTag(ctx context.Context, arg database.LinkExtraTagParams) error {
	return m.linkExtraTagFn(ctx, arg)
}

func (m *mockExtraStore) UnlinkExtraTag(ctx context.Context, arg database.UnlinkExtraTagParams) error {
	return m.unlinkExtraTagFn(ctx, arg)
}

func TestListExtras_IncludesTags(t *testing.T) {
	extraID := uuid.New()
	tagID := uuid.New()
	store := &mockExtraStore{
		listExtrasFn: func(ctx context.Context) ([]database.Extra, error) {
			return []database.Extra{{
				ID:                   extraID,
				Name:                 "Fromage",
				Price:                makeTestNumeric("1.00"),
				Available:            true,
				AvailableForDelivery: true,
			}}, nil
		},
		listTagsFn: func(ctx context.Context, id uuid.UUID) ([]database.Tag, error) {
			if id != extraID {
				t.Fatalf("tags looked up for wrong extra: %s", id)
			}
			return []database.Tag{{ID: tagID, Name: "Fromages"}}, nil
		},
	}

	r := chi.NewRouter()
	NewExtraHandler(store).RegisterPublicRoutes(r)

	req := httptest.NewRequest(http.MethodGet, "/api/extras", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d", rec.Code)
	}

	var resp []struct {
		ID   string `json:"id"`
		Tags []struct {
			ID   string `json:"id"`
			Name string `json:"name"`
		} `json:"tags"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp) != 1 || len(resp[0].Tags) != 1 {
		t.Fatalf("response shape: %s", rec.Body.String())
	}
	if resp[0].Tags[0].ID != tagID.String() || resp[0].Tags[0].Name != "Fromages" {
		t.Fatalf("tag: %+v", resp[0].Tags[0])
	}
}

func TestLinkExtraTag(t *testing.T) {
	extraID := uuid.New()
	tagID := uuid.New()

	var linked database.LinkExtraTagParams
	store := &mockExtraStore{
		linkExtraTagFn: func(ctx context.Context, arg database.LinkExtraTagParams) error {
			linked = arg
			return nil
		},
	}

	r := chi.NewRouter()
	NewExtraHandler(store).RegisterAdminRoutes(r)

	req := httptest.NewRequest(http.MethodPut, "/extras/"+extraID.String()+"/tags/"+tagID.String(), nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("status: got %d", rec.Code)
	}
	if linked.ExtraID != extraID || linked.TagID != tagID {
		t.Fatalf("linked params: %+v", linked)
	}
}

func TestLinkExtraTag_UnknownReference(t *testing.T) {
	store := &mockExtraStore{
		linkExtraTagFn: func(ctx context.Context, arg database.LinkExtraTagParams) error {
			return &pgconn.PgError{Code: "23503"}
		},
	}

	r := chi.NewRouter()
	NewExtraHandler(store).RegisterAdminRoutes(r)

	req := httptest.NewRequest(http.MethodPut, "/extras/"+uuid.NewString()+"/tags/"+uuid.NewString(), nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status: got %d", rec.Code)
	}
}
