package usecase

import (
	"context"

	"github.com/AzielCF/az-remind/domains/appointment"
	"github.com/AzielCF/az-remind/validations"
)

// AppointmentService is the CRUD-lite layer the control surface writes
// through. The scheduler itself never goes through here; it reads
// snapshots straight from the repository.
type AppointmentService struct {
	repo appointment.IRepository
}

func NewAppointmentService(repo appointment.IRepository) *AppointmentService {
	return &AppointmentService{repo: repo}
}

func (s *AppointmentService) Save(ctx context.Context, apt appointment.Appointment) (appointment.Appointment, error) {
	if err := validations.ValidateAppointment(ctx, apt); err != nil {
		return appointment.Appointment{}, err
	}
	return s.repo.Save(ctx, apt)
}

func (s *AppointmentService) Get(ctx context.Context, id int64) (appointment.Appointment, error) {
	return s.repo.Get(ctx, id)
}

func (s *AppointmentService) List(ctx context.Context) ([]appointment.Appointment, error) {
	return s.repo.List(ctx)
}

func (s *AppointmentService) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}
