package prospects

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/crypto/bcrypt"

	"github.com/eventide-agency/eventide/internal/shared"
)

// Service implements the prospect funnel and conversion flow.
type Service struct {
	repo   Repository
	logger *slog.Logger
}

// NewService constructs a Service.
func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

func (s *Service) Get(ctx context.Context, id int64) (*Prospect, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) List(ctx context.Context, req ListProspectsRequest) ([]Prospect, int, error) {
	if req.Status != nil && !req.Status.Valid() {
		return nil, 0, fmt.Errorf("%w: unknown status %q", shared.ErrValidation, *req.Status)
	}
	return s.repo.List(ctx, req)
}

func (s *Service) Create(ctx context.Context, req CreateProspectRequest) (*Prospect, error) {
	id, err := s.repo.Create(ctx, Prospect{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Company:   req.Company,
		Email:     req.Email,
		Phone:     req.Phone,
		Source:    req.Source,
		Status:    StatusNew,
	})
	if err != nil {
		return nil, fmt.Errorf("create prospect: %w", err)
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) Update(ctx context.Context, id int64, req UpdateProspectRequest) (*Prospect, error) {
	if req.Status != nil {
		if !req.Status.Valid() {
			return nil, fmt.Errorf("%w: unknown status %q", shared.ErrValidation, *req.Status)
		}
		// Conversion carries side effects; it only happens through Convert.
		if *req.Status == StatusConverted {
			return nil, fmt.Errorf("%w: use the convert endpoint", shared.ErrValidation)
		}
	}
	if err := s.repo.Update(ctx, id, req); err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}

func (s *Service) AddNote(ctx context.Context, prospectID, authorID int64, req AddNoteRequest) (*Note, error) {
	if _, err := s.repo.Get(ctx, prospectID); err != nil {
		return nil, err
	}
	id, err := s.repo.AddNote(ctx, Note{ProspectID: prospectID, AuthorID: authorID, Body: req.Body})
	if err != nil {
		return nil, fmt.Errorf("add prospect note: %w", err)
	}
	notes, err := s.repo.ListNotes(ctx, prospectID)
	if err != nil {
		return nil, err
	}
	for i := range notes {
		if notes[i].ID == id {
			return &notes[i], nil
		}
	}
	return nil, shared.ErrNotFound
}

func (s *Service) ListNotes(ctx context.Context, prospectID int64) ([]Note, error) {
	if _, err := s.repo.Get(ctx, prospectID); err != nil {
		return nil, err
	}
	return s.repo.ListNotes(ctx, prospectID)
}

// Convert turns a prospect into a client with a login account. The user,
// the client record, and the funnel update commit together or not at all.
func (s *Service) Convert(ctx context.Context, id int64, req ConvertRequest) (*ConvertResult, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	var result ConvertResult
	err = s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		p, err := tx.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if p.Status == StatusConverted {
			return fmt.Errorf("%w: prospect already converted", shared.ErrConflict)
		}

		userID, err := tx.InsertUser(ctx, p.Email, string(hash), p.FirstName+" "+p.LastName)
		if err != nil {
			return fmt.Errorf("create user account: %w", err)
		}
		clientID, err := tx.InsertClient(ctx, userID, *p, req.Address)
		if err != nil {
			return fmt.Errorf("create client record: %w", err)
		}
		if err := tx.MarkConverted(ctx, id, clientID); err != nil {
			return err
		}
		result = ConvertResult{ClientID: clientID, UserID: userID}
		return nil
	})
	if err != nil {
		return nil, err
	}

	result.Prospect, err = s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	s.logger.Info("prospect converted", "prospect_id", id, "client_id", result.ClientID)
	return &result, nil
}
