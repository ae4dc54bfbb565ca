package services

import (
	"context"
	"fmt"
	"time"

	"pmes/models"
	repository "pmes/repositories"

	"github.com/sirupsen/logrus"
)

// Notifier writes fire-and-forget notifications. Every method returns
// immediately; the write runs on its own goroutine with its own timeout,
// and failures are logged, never surfaced to the caller.
type Notifier interface {
	MeasureAssigned(assignment *models.MeasureAssignment, assigner *models.User)
}

type notifier struct {
	notifications repository.NotificationRepository
	users         repository.UserRepository
	log           *logrus.Logger
}

func NewNotifier(notifications repository.NotificationRepository, users repository.UserRepository, log *logrus.Logger) Notifier {
	return &notifier{
		notifications: notifications,
		users:         users,
		log:           log,
	}
}

func (n *notifier) MeasureAssigned(assignment *models.MeasureAssignment, assigner *models.User) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		worker, err := n.users.FindByID(ctx, assignment.WorkerID)
		if err != nil {
			n.log.WithError(err).Warn("measure assignment notification: worker lookup failed")
			return
		}
		if worker == nil {
			return
		}

		notification := &models.Notification{
			RecipientID: worker.ID,
			SenderID:    assigner.ID,
			SenderName:  assigner.FullName,
			Title:       "New KPI Measure Assigned",
			Module:      "KPI Measure Management",
			Message: fmt.Sprintf("%q assigned you a KPI measure for %d %s.",
				assigner.FullName, assignment.Year, assignment.Quarter),
			ReferenceType: models.ReferenceMeasure,
			ReferenceID:   assignment.ID,
			CreatedAt:     time.Now(),
		}

		if err := n.notifications.Insert(ctx, notification); err != nil {
			n.log.WithError(err).Warn("measure assignment notification failed")
		}
	}()
}
