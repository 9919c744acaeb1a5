package services

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/campus-hq/venue-portal/modules/approval/domain/letter"
	"github.com/campus-hq/venue-portal/modules/approval/domain/plan"
	"github.com/campus-hq/venue-portal/modules/approval/domain/release"
	"github.com/campus-hq/venue-portal/modules/approval/infrastructure/persistence"
	"github.com/campus-hq/venue-portal/pkg/composables"
)

// stubTx satisfies repo.Tx so the transaction wrapper reuses it instead of
// reaching for a pool. The mocks below never touch it.
type stubTx struct{}

func (stubTx) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, nil
}

func (stubTx) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return nil
}

func (stubTx) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, nil
}

var (
	testTenantID = uuid.MustParse("11111111-1111-1111-1111-111111111111")
	testUserID   = uuid.MustParse("22222222-2222-2222-2222-222222222222")
)

func testContext() context.Context {
	ctx := composables.WithTx(context.Background(), stubTx{})
	ctx = composables.WithTenantID(ctx, testTenantID)
	return composables.WithUserID(ctx, testUserID)
}

type recordingPublisher struct {
	events []interface{}
}

func (p *recordingPublisher) Publish(args ...interface{}) {
	p.events = append(p.events, args...)
}
func (p *recordingPublisher) Subscribe(handler interface{})   {}
func (p *recordingPublisher) Unsubscribe(handler interface{}) {}
func (p *recordingPublisher) Clear()                          { p.events = nil }
func (p *recordingPublisher) SubscribersCount() int           { return 0 }

type mockPlanRepo struct {
	plans map[uuid.UUID]*plan.Plan
	// letters, when set, backs ListPendingForRole the same way the SQL
	// anti-join does.
	letters *mockLetterRepo
}

func newMockPlanRepo() *mockPlanRepo {
	return &mockPlanRepo{plans: make(map[uuid.UUID]*plan.Plan)}
}

func (m *mockPlanRepo) put(p *plan.Plan) {
	cp := *p
	m.plans[cp.ID] = &cp
}

func (m *mockPlanRepo) Create(ctx context.Context, p *plan.Plan) (*plan.Plan, error) {
	cp := *p
	cp.ID = uuid.New()
	cp.TenantID = testTenantID
	cp.Version = 1
	m.plans[cp.ID] = &cp
	out := cp
	return &out, nil
}

func (m *mockPlanRepo) GetByID(ctx context.Context, id uuid.UUID) (*plan.Plan, error) {
	p, ok := m.plans[id]
	if !ok {
		return nil, persistence.ErrPlanNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *mockPlanRepo) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*plan.Plan, error) {
	return m.GetByID(ctx, id)
}

func (m *mockPlanRepo) List(ctx context.Context, params *plan.FindParams) ([]*plan.Plan, error) {
	out := make([]*plan.Plan, 0, len(m.plans))
	for _, p := range m.plans {
		cp := *p
		out = append(out, &cp)
	}
	return out, nil
}

func (m *mockPlanRepo) Count(ctx context.Context, params *plan.FindParams) (int64, error) {
	return int64(len(m.plans)), nil
}

func (m *mockPlanRepo) Update(ctx context.Context, p *plan.Plan) (*plan.Plan, error) {
	stored, ok := m.plans[p.ID]
	if !ok {
		return nil, persistence.ErrPlanNotFound
	}
	if stored.Version != p.Version {
		return nil, persistence.ErrPlanVersionStale
	}
	cp := *p
	cp.Version++
	m.plans[cp.ID] = &cp
	out := cp
	return &out, nil
}

func (m *mockPlanRepo) ListPendingForRole(ctx context.Context, role string) ([]*plan.Plan, error) {
	var out []*plan.Plan
	for _, p := range m.plans {
		if p.Status != plan.StatusSubmitted && p.Status != plan.StatusForwarded {
			continue
		}
		decided := false
		if m.letters != nil {
			for _, l := range m.letters.letters {
				if l.PlanID == p.ID && string(l.Role) == role && !l.Superseded {
					decided = true
					break
				}
			}
		}
		if decided {
			continue
		}
		cp := *p
		out = append(out, &cp)
	}
	return out, nil
}

type mockLetterRepo struct {
	letters []*letter.Letter
}

func (m *mockLetterRepo) Upsert(ctx context.Context, l *letter.Letter) (*letter.Letter, error) {
	for _, existing := range m.letters {
		if existing.PlanID == l.PlanID && existing.Role == l.Role && !existing.Superseded {
			existing.Superseded = true
		}
	}
	cp := *l
	cp.ID = uuid.New()
	cp.TenantID = testTenantID
	cp.DeliveryStatus = letter.DeliveryDrafted
	m.letters = append(m.letters, &cp)
	out := cp
	return &out, nil
}

func (m *mockLetterRepo) GetByID(ctx context.Context, id uuid.UUID) (*letter.Letter, error) {
	for _, l := range m.letters {
		if l.ID == id {
			cp := *l
			return &cp, nil
		}
	}
	return nil, persistence.ErrLetterNotFound
}

func (m *mockLetterRepo) ListActiveByPlan(ctx context.Context, planID uuid.UUID) ([]*letter.Letter, error) {
	var out []*letter.Letter
	for _, l := range m.letters {
		if l.PlanID == planID && !l.Superseded {
			cp := *l
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *mockLetterRepo) MarkSent(ctx context.Context, id uuid.UUID) (*letter.Letter, error) {
	for _, l := range m.letters {
		if l.ID == id {
			if l.DeliveryStatus != letter.DeliveryDrafted {
				return nil, persistence.ErrLetterDeliveryConflict
			}
			l.DeliveryStatus = letter.DeliverySent
			cp := *l
			return &cp, nil
		}
	}
	return nil, persistence.ErrLetterNotFound
}

func (m *mockLetterRepo) MarkReceived(ctx context.Context, id uuid.UUID) (*letter.Letter, error) {
	for _, l := range m.letters {
		if l.ID == id {
			if l.DeliveryStatus != letter.DeliverySent {
				return nil, persistence.ErrLetterDeliveryConflict
			}
			l.DeliveryStatus = letter.DeliveryReceived
			cp := *l
			return &cp, nil
		}
	}
	return nil, persistence.ErrLetterNotFound
}

type mockReleaseRepo struct {
	bundles map[uuid.UUID]*release.Bundle
}

func newMockReleaseRepo() *mockReleaseRepo {
	return &mockReleaseRepo{bundles: make(map[uuid.UUID]*release.Bundle)}
}

func (m *mockReleaseRepo) Create(ctx context.Context, b *release.Bundle) (*release.Bundle, error) {
	if _, exists := m.bundles[b.PlanID]; exists {
		return nil, persistence.ErrBundleExists
	}
	cp := *b
	cp.ID = uuid.New()
	cp.TenantID = testTenantID
	m.bundles[cp.PlanID] = &cp
	out := cp
	return &out, nil
}

func (m *mockReleaseRepo) GetByPlan(ctx context.Context, planID uuid.UUID) (*release.Bundle, error) {
	b, ok := m.bundles[planID]
	if !ok {
		return nil, persistence.ErrBundleNotFound
	}
	cp := *b
	return &cp, nil
}

func (m *mockReleaseRepo) ExistsForPlan(ctx context.Context, planID uuid.UUID) (bool, error) {
	_, ok := m.bundles[planID]
	return ok, nil
}

func seedPlan(repo *mockPlanRepo, status plan.Status) *plan.Plan {
	p := &plan.Plan{
		ID:          uuid.New(),
		TenantID:    testTenantID,
		RequesterID: testUserID,
		Title:       "Tech Symposium",
		Organizer:   "CS Society",
		Status:      status,
		Version:     1,
	}
	repo.put(p)
	return p
}
