package reports

import (
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"

	"oncocare/case-portal/case-portal-backend/internal/lifecycle"
	"oncocare/case-portal/case-portal-backend/internal/patients"
	"oncocare/case-portal/case-portal-backend/internal/requests"
)

// Service assembles the admin print/export reports from request and patient
// data.
type Service struct {
	requests requests.Repository
	patients patients.Repository
}

func NewService(requestRepo requests.Repository, patientRepo patients.Repository) *Service {
	return &Service{
		requests: requestRepo,
		patients: patientRepo,
	}
}

// exportPageSize is the repository page size used when draining a full
// result set for export.
const exportPageSize = 100

// ScreeningMasterlist exports every mass-screening application matching the
// status filter (empty = all) as a workbook. The repository pages its lists,
// so the export drains page by page until the reported total is collected.
func (s *Service) ScreeningMasterlist(ctx context.Context, status string) (*excelize.File, error) {
	filter := requests.ListFilter{
		Kind:     string(lifecycle.KindMassScreening),
		Status:   status,
		Page:     1,
		PageSize: exportPageSize,
	}
	var list []requests.ServiceRequest
	for {
		page, total, err := s.requests.List(ctx, filter)
		if err != nil {
			return nil, fmt.Errorf("failed to load screening applications: %w", err)
		}
		list = append(list, page...)
		if len(page) == 0 || int64(len(list)) >= total {
			break
		}
		filter.Page++
	}

	rows := make([]MasterlistRow, 0, len(list))
	for i := range list {
		row := MasterlistRow{
			Status:        list[i].Status,
			ScreeningDate: list[i].ScreeningDate,
			SubmittedAt:   list[i].CreatedAt,
		}
		patient, err := s.patients.GetByID(ctx, list[i].PatientID)
		if err == nil {
			row.PatientName = patient.FullName()
			row.Barangay = patient.Barangay
			row.RHUName = patient.RHUName
		}
		rows = append(rows, row)
	}
	return BuildScreeningMasterlist(rows)
}
