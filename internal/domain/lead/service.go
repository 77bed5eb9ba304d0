package lead

import (
	"context"
	"errors"

	"leadcrm/internal/domain"
	"leadcrm/internal/pkg/dberr"
	"leadcrm/internal/pkg/validator"

	"github.com/sirupsen/logrus"
)

// UserLookup resolves agent and author references.
type UserLookup interface {
	GetByID(ctx context.Context, id int64) (*domain.User, error)
}

// Service handles lead business logic
type Service struct {
	repo  *Repository
	users UserLookup
}

// NewService creates lead service
func NewService(repo *Repository, users UserLookup) *Service {
	return &Service{repo: repo, users: users}
}

func (s *Service) List(ctx context.Context) ([]Lead, error) {
	return s.repo.List(ctx)
}

func (s *Service) GetByID(ctx context.Context, id int64) (*Lead, error) {
	return s.repo.GetByID(ctx, id)
}

// Create validates and persists a lead on behalf of callerID.
func (s *Service) Create(ctx context.Context, callerID int64, req *LeadRequest) (*Lead, error) {
	l := &Lead{}
	req.apply(l)

	if err := s.check(ctx, l); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, l, req.threadComments(callerID)); err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{"lead_id": l.ID, "user_id": callerID}).Info("lead created")
	return s.repo.GetByID(ctx, l.ID)
}

// Update replaces the editable fields of lead id.
func (s *Service) Update(ctx context.Context, callerID, id int64, req *LeadRequest) (*Lead, error) {
	l, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	req.apply(l)
	l.Agent = nil
	l.Comments = nil

	if err := s.check(ctx, l); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, l, req.threadComments(callerID)); err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{"lead_id": l.ID, "user_id": callerID}).Info("lead updated")
	return s.repo.GetByID(ctx, l.ID)
}

func (s *Service) Delete(ctx context.Context, callerID, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	logrus.WithFields(logrus.Fields{"lead_id": id, "user_id": callerID}).Info("lead deleted")
	return nil
}

// AddComment appends a comment authored by callerID.
func (s *Service) AddComment(ctx context.Context, callerID, leadID int64, req *CommentRequest) (*Comment, error) {
	if fields := validator.Validate(req); fields != nil {
		return nil, &ValidationError{Fields: fields}
	}
	c := &Comment{
		LeadID:   leadID,
		AuthorID: &callerID,
		Role:     req.Role,
		Content:  req.Content,
	}
	if err := s.repo.AddComment(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *Service) ListComments(ctx context.Context, leadID int64) ([]Comment, error) {
	if _, err := s.repo.GetByID(ctx, leadID); err != nil {
		return nil, err
	}
	return s.repo.ListComments(ctx, leadID)
}

// check runs field validation, the agent reference check and the email uniqueness check.
func (s *Service) check(ctx context.Context, l *Lead) error {
	fields := l.Validate()

	if l.AgentID != nil {
		_, err := s.users.GetByID(ctx, *l.AgentID)
		switch {
		case dberr.IsNotFound(err):
			if fields == nil {
				fields = map[string]string{}
			}
			fields["agent_id"] = "Select a valid choice. That choice is not one of the available choices."
		case err != nil:
			return err
		}
	}
	if fields != nil {
		return &ValidationError{Fields: fields}
	}

	exists, err := s.repo.EmailExists(ctx, l.Email, l.ID)
	if err != nil {
		return err
	}
	if exists {
		return ErrEmailExists
	}
	return nil
}

// IsValidation unwraps a ValidationError.
func IsValidation(err error) (*ValidationError, bool) {
	var verr *ValidationError
	ok := errors.As(err, &verr)
	return verr, ok
}
