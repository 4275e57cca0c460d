package service

import (
	"context"
	"errors"
	"strings"

	"github.com/pdch/pdch-server/internal/domain"
	"github.com/pdch/pdch-server/internal/repository"
	apperrors "github.com/pdch/pdch-server/pkg/util"
)

// ErrNotFound is returned by Get when no document has the given id.
var ErrNotFound = errors.New("document not found")

// CollectionSpec describes one resource collection.
type CollectionSpec struct {
	Name string
	// UniqueEmail limits the collection to one document per email.
	UniqueEmail bool
	// DuplicateMessage is returned to callers when UniqueEmail rejects a create.
	DuplicateMessage string
}

// Options converts the spec to repository options.
func (s CollectionSpec) Options() repository.CollectionOptions {
	return repository.CollectionOptions{Name: s.Name, UniqueEmail: s.UniqueEmail}
}

var (
	SuppliesCollection = CollectionSpec{
		Name: domain.CollectionSupplies,
	}
	CommunityGratitudeCollection = CollectionSpec{
		Name:             domain.CollectionCommunityGratitude,
		UniqueEmail:      true,
		DuplicateMessage: "User already posted to the Community Gratitude Wall",
	}
	TestimonialCollection = CollectionSpec{
		Name:             domain.CollectionTestimonial,
		UniqueEmail:      true,
		DuplicateMessage: "User already posted testimonial",
	}
	VolunteerCollection = CollectionSpec{
		Name:             domain.CollectionVolunteer,
		UniqueEmail:      true,
		DuplicateMessage: "User already applied for Volunteer",
	}
)

// Collections lists every resource collection served by the API.
func Collections() []CollectionSpec {
	return []CollectionSpec{
		SuppliesCollection,
		CommunityGratitudeCollection,
		TestimonialCollection,
		VolunteerCollection,
	}
}

// UniqueEmailCollections returns the names of collections keyed by email.
func UniqueEmailCollections() []string {
	var names []string
	for _, spec := range Collections() {
		if spec.UniqueEmail {
			names = append(names, spec.Name)
		}
	}
	return names
}

// CollectionService implements the CRUD operations for one collection.
type CollectionService struct {
	spec CollectionSpec
	repo repository.DocumentRepository
}

// NewCollectionService builds the service.
func NewCollectionService(spec CollectionSpec, repo repository.DocumentRepository) *CollectionService {
	return &CollectionService{spec: spec, repo: repo}
}

// List returns every document, or the first limit when limit is positive.
func (s *CollectionService) List(ctx context.Context, limit int64) ([]domain.Document, error) {
	return s.repo.List(ctx, limit)
}

// Get returns the document with the given id or ErrNotFound.
func (s *CollectionService) Get(ctx context.Context, id string) (domain.Document, error) {
	doc, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return doc, nil
}

// Create stores the payload verbatim, enforcing the per-email rule when the
// collection has one.
func (s *CollectionService) Create(ctx context.Context, payload domain.Document) (*domain.InsertResult, error) {
	if s.spec.UniqueEmail {
		email, ok := payload.Email()
		if !ok || strings.TrimSpace(email) == "" {
			return nil, apperrors.NewValidationError("email required", nil)
		}
		if _, err := s.repo.FindByEmail(ctx, email); err == nil {
			return nil, apperrors.NewDuplicateSubmission(s.spec.DuplicateMessage)
		} else if !errors.Is(err, repository.ErrNotFound) {
			return nil, err
		}
	}

	id, err := s.repo.Insert(ctx, payload)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperrors.NewDuplicateSubmission(s.spec.DuplicateMessage)
		}
		return nil, err
	}
	return &domain.InsertResult{Acknowledged: true, InsertedID: id}, nil
}

// Update merges the payload's fields into the document. An unknown id is not
// an error; the counts report zero.
func (s *CollectionService) Update(ctx context.Context, id string, payload domain.Document) (*domain.UpdateResult, error) {
	matched, modified, err := s.repo.Merge(ctx, id, payload)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperrors.NewDuplicateSubmission(s.spec.DuplicateMessage)
		}
		return nil, err
	}
	return &domain.UpdateResult{
		Acknowledged:  true,
		MatchedCount:  matched,
		ModifiedCount: modified,
	}, nil
}

// Delete removes the document with the given id; absent ids delete nothing.
func (s *CollectionService) Delete(ctx context.Context, id string) (*domain.DeleteResult, error) {
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return nil, err
	}
	return &domain.DeleteResult{Acknowledged: true, DeletedCount: deleted}, nil
}
