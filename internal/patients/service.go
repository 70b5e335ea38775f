package patients

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) CreatePatient(ctx context.Context, patient *Patient) error {
	if strings.TrimSpace(patient.FirstName) == "" || strings.TrimSpace(patient.LastName) == "" {
		return fmt.Errorf("patient name is required")
	}
	return s.repo.Create(ctx, patient)
}

func (s *Service) GetPatient(ctx context.Context, id uuid.UUID) (*Patient, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) UpdatePatient(ctx context.Context, patient *Patient) error {
	if _, err := s.repo.GetByID(ctx, patient.ID); err != nil {
		return err
	}
	return s.repo.Update(ctx, patient)
}

func (s *Service) ListPatients(ctx context.Context, filter ListFilter) ([]Patient, int64, error) {
	return s.repo.List(ctx, filter)
}

// EmailFor implements notifications.PatientDirectory.
func (s *Service) EmailFor(ctx context.Context, patientID uuid.UUID) (string, error) {
	patient, err := s.repo.GetByID(ctx, patientID)
	if err != nil {
		return "", err
	}
	if patient.Email == "" {
		return "", fmt.Errorf("patient %s has no email on record", patientID)
	}
	return patient.Email, nil
}
