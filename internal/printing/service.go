package printing

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"oncocare/case-portal/case-portal-backend/internal/documents"
	"oncocare/case-portal/case-portal-backend/internal/patients"
	"oncocare/case-portal/case-portal-backend/internal/requests"
	"oncocare/case-portal/case-portal-backend/pkg/pdf"
)

// PatientLookup resolves the patient record a document is printed for.
type PatientLookup interface {
	GetPatient(ctx context.Context, id uuid.UUID) (*patients.Patient, error)
}

// Service renders print documents for transition side effects and files them
// with the request's other artifacts. It implements requests.DocumentGenerator.
type Service struct {
	generator *pdf.Generator
	patients  PatientLookup
	store     *documents.Service
	issuer    string
}

func NewService(generator *pdf.Generator, patientLookup PatientLookup, store *documents.Service, issuer string) *Service {
	return &Service{
		generator: generator,
		patients:  patientLookup,
		store:     store,
		issuer:    issuer,
	}
}

// Generate renders the named template for the request and stores the result,
// returning the stored object key.
func (s *Service) Generate(ctx context.Context, template string, req *requests.ServiceRequest) (string, error) {
	patient, err := s.patients.GetPatient(ctx, req.PatientID)
	if err != nil {
		return "", fmt.Errorf("failed to load patient for %s: %w", template, err)
	}

	var rendered []byte
	switch template {
	case pdf.TemplateLetterOfAuthorization:
		rendered, err = s.generator.LetterOfAuthorization(pdf.LetterData{
			PatientName:   patient.FullName(),
			RequestRef:    requestRef(req),
			TreatmentDate: req.TreatmentDate,
			IssuedBy:      s.issuer,
			IssuedAt:      time.Now(),
		})
	case pdf.TemplateCaseSummary:
		rendered, err = s.generator.CaseSummary(pdf.CaseSummaryData{
			PatientName: patient.FullName(),
			RequestRef:  requestRef(req),
			RequestKind: req.Kind,
			Status:      req.Status,
			Remarks:     collectRemarks(req),
			PreparedBy:  s.issuer,
			PreparedAt:  time.Now(),
		})
	default:
		return "", fmt.Errorf("unknown print template %q", template)
	}
	if err != nil {
		return "", err
	}

	name := fmt.Sprintf("%s-%s.pdf", template, time.Now().Format("20060102"))
	return s.store.StoreGenerated(ctx, req.ID, name, bytes.NewReader(rendered))
}

func requestRef(req *requests.ServiceRequest) string {
	return req.ID.String()[:8]
}

func collectRemarks(req *requests.ServiceRequest) []string {
	var remarks []string
	if req.ReturnRemarks != "" {
		remarks = append(remarks, req.ReturnRemarks)
	}
	if req.RejectRemarks != "" {
		remarks = append(remarks, req.RejectRemarks)
	}
	return remarks
}
