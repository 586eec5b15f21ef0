package notification

import (
	"context"
	"errors"
	"fmt"

	"fieldjobs/internal/domain"
)

// Job lifecycle messages. Installer links open the job page, admin links
// open the review queue.

func installerJobURL(j *domain.Job) string { return "/installer/jobs/" + j.ID }

const adminApprovalsURL = "/admin/approvals"

func jobMetadata(j *domain.Job) map[string]any {
	return map[string]any{"jobId": j.ID}
}

func (s *Service) toAssignee(ctx context.Context, j *domain.Job, title, body string, t domain.NotificationType) error {
	if j.AssignedTo == nil {
		return nil
	}
	_, err := s.Notify(ctx, Message{
		UserID:   *j.AssignedTo,
		Title:    title,
		Body:     body,
		Type:     t,
		Metadata: jobMetadata(j),
		URL:      installerJobURL(j),
	})
	return err
}

func (s *Service) JobAssigned(ctx context.Context, j *domain.Job) error {
	return s.toAssignee(ctx, j, "Nuevo trabajo asignado",
		fmt.Sprintf("Se te ha asignado \"%s\" para %s en %s.", j.Title, j.ClientName, j.Address),
		domain.NotificationInfo)
}

func (s *Service) JobSubmitted(ctx context.Context, adminIDs []string, j *domain.Job) error {
	var errs []error
	for _, id := range adminIDs {
		_, err := s.Notify(ctx, Message{
			UserID:   id,
			Title:    "Trabajo pendiente de revisión",
			Body:     fmt.Sprintf("\"%s\" (%s) está listo para revisar.", j.Title, j.ClientName),
			Type:     domain.NotificationInfo,
			Metadata: jobMetadata(j),
			URL:      adminApprovalsURL,
		})
		if err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (s *Service) JobApproved(ctx context.Context, j *domain.Job) error {
	return s.toAssignee(ctx, j, "Trabajo aprobado",
		fmt.Sprintf("\"%s\" ha sido aprobado.", j.Title),
		domain.NotificationSuccess)
}

func (s *Service) JobRejected(ctx context.Context, j *domain.Job, reason string) error {
	return s.toAssignee(ctx, j, "Trabajo rechazado",
		fmt.Sprintf("\"%s\" necesita correcciones. Motivo: %s", j.Title, reason),
		domain.NotificationWarning)
}

func (s *Service) JobReverted(ctx context.Context, j *domain.Job, reason string) error {
	return s.toAssignee(ctx, j, "Aprobación revertida",
		fmt.Sprintf("\"%s\" vuelve a estar pendiente. Motivo: %s", j.Title, reason),
		domain.NotificationWarning)
}

func (s *Service) JobReminder(ctx context.Context, j *domain.Job) error {
	return s.toAssignee(ctx, j, "Recordatorio de trabajo pendiente",
		fmt.Sprintf("Tienes pendiente \"%s\" en %s.", j.Title, j.Address),
		domain.NotificationWarning)
}
