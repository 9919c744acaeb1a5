package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/campus-hq/venue-portal/modules/approval/domain/letter"
	"github.com/campus-hq/venue-portal/modules/approval/domain/plan"
	"github.com/campus-hq/venue-portal/modules/approval/domain/release"
	"github.com/campus-hq/venue-portal/modules/approval/infrastructure/persistence"
	"github.com/campus-hq/venue-portal/pkg/composables"
	"github.com/campus-hq/venue-portal/pkg/eventbus"
)

// stagedBundle holds documents uploaded one at a time before release. Staged
// state is transient per registry session and expires; the released bundle is
// the only durable record.
type stagedBundle struct {
	documents map[letter.Role][]byte
	expiresAt time.Time
}

type stagingStore struct {
	mu      sync.Mutex
	ttl     time.Duration
	bundles map[uuid.UUID]*stagedBundle
}

func newStagingStore(ttl time.Duration) *stagingStore {
	return &stagingStore{
		ttl:     ttl,
		bundles: make(map[uuid.UUID]*stagedBundle),
	}
}

func (s *stagingStore) put(planID uuid.UUID, role letter.Role, document []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.bundles[planID]
	if !ok || time.Now().After(b.expiresAt) {
		b = &stagedBundle{documents: make(map[letter.Role][]byte)}
		s.bundles[planID] = b
	}
	b.documents[role] = document
	b.expiresAt = time.Now().Add(s.ttl)
}

func (s *stagingStore) get(planID uuid.UUID) map[letter.Role][]byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.bundles[planID]
	if !ok || time.Now().After(b.expiresAt) {
		delete(s.bundles, planID)
		return nil
	}
	out := make(map[letter.Role][]byte, len(b.documents))
	for role, doc := range b.documents {
		out[role] = doc
	}
	return out
}

func (s *stagingStore) discard(planID uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.bundles, planID)
}

type ReleaseService struct {
	repo      release.Repository
	plans     plan.Repository
	publisher eventbus.EventBus
	staging   *stagingStore
}

func NewReleaseService(repo release.Repository, plans plan.Repository, publisher eventbus.EventBus, stagingTTL time.Duration) *ReleaseService {
	return &ReleaseService{
		repo:      repo,
		plans:     plans,
		publisher: publisher,
		staging:   newStagingStore(stagingTTL),
	}
}

// StageDocument parks one signed letter for a plan ahead of release. Staging
// never touches the database.
func (s *ReleaseService) StageDocument(planID uuid.UUID, role letter.Role, document []byte) error {
	if !role.Valid() {
		return ErrInvalidRole
	}
	if len(document) == 0 {
		return ErrEmptyDocument
	}
	s.staging.put(planID, role, document)
	return nil
}

// StagedRoles reports which roles already have a staged document.
func (s *ReleaseService) StagedRoles(planID uuid.UUID) []letter.Role {
	staged := s.staging.get(planID)
	roles := make([]letter.Role, 0, len(staged))
	for _, role := range letter.RequiredRoles() {
		if _, ok := staged[role]; ok {
			roles = append(roles, role)
		}
	}
	return roles
}

func (s *ReleaseService) DiscardStaged(planID uuid.UUID) {
	s.staging.discard(planID)
}

// ReleaseStaged releases the documents staged for the plan.
func (s *ReleaseService) ReleaseStaged(ctx context.Context, planID uuid.UUID) (*release.Bundle, error) {
	bundle, err := s.Release(ctx, planID, s.staging.get(planID))
	if err != nil {
		return nil, err
	}
	s.staging.discard(planID)
	return bundle, nil
}

// Release hands the full set of signed letters back to the requester. The
// plan must carry a final approval and every one of the four authority
// letters must be present; anything less releases nothing at all.
func (s *ReleaseService) Release(ctx context.Context, planID uuid.UUID, documents map[letter.Role][]byte) (*release.Bundle, error) {
	missing := make([]letter.Role, 0)
	for _, role := range letter.RequiredRoles() {
		if len(documents[role]) == 0 {
			missing = append(missing, role)
		}
	}
	if len(missing) > 0 {
		return nil, releaseIncompleteError(missing)
	}

	return composables.InTxResult(ctx, func(txCtx context.Context) (*release.Bundle, error) {
		entity, err := s.plans.GetByIDForUpdate(txCtx, planID)
		if err != nil {
			return nil, err
		}
		if entity.Status != plan.StatusApproved {
			return nil, ErrPlanNotApproved
		}
		releasedBy, err := composables.UseUserID(txCtx)
		if err != nil {
			return nil, err
		}

		docs := make(map[letter.Role][]byte, len(letter.RequiredRoles()))
		for _, role := range letter.RequiredRoles() {
			docs[role] = documents[role]
		}
		created, err := s.repo.Create(txCtx, &release.Bundle{
			PlanID:     planID,
			Documents:  docs,
			ReleasedBy: releasedBy,
		})
		if err != nil {
			if errors.Is(err, persistence.ErrBundleExists) {
				return nil, ErrAlreadyReleased
			}
			return nil, err
		}
		ev, err := release.NewReleasedEvent(txCtx, entity.RequesterID, created)
		if err != nil {
			return nil, err
		}
		s.publisher.Publish(ev)
		return created, nil
	})
}

// GetByPlan fetches the released bundle for a plan.
func (s *ReleaseService) GetByPlan(ctx context.Context, planID uuid.UUID) (*release.Bundle, error) {
	return composables.InTxResult(ctx, func(txCtx context.Context) (*release.Bundle, error) {
		return s.repo.GetByPlan(txCtx, planID)
	})
}

// Released reports whether a bundle has already gone out for the plan.
func (s *ReleaseService) Released(ctx context.Context, planID uuid.UUID) (bool, error) {
	return composables.InTxResult(ctx, func(txCtx context.Context) (bool, error) {
		return s.repo.ExistsForPlan(txCtx, planID)
	})
}
