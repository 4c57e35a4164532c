package application

import (
	"time"

	pkgApp "github.com/mateusmacedo/go-users/pkg/application"
	pkgDomain "github.com/mateusmacedo/go-users/pkg/domain"
)

const (
	UserRegisteredEvent = "UserRegistered"
	UserUpdatedEvent    = "UserUpdated"
	UserDeletedEvent    = "UserDeleted"
)

// EventNames lista os eventos de integração publicados pelos handlers de usuário.
var EventNames = []string{UserRegisteredEvent, UserUpdatedEvent, UserDeletedEvent}

// UserEvent é o payload dos eventos de integração de usuário.
type UserEvent struct {
	UserID     string    `json:"userId"`
	Email      string    `json:"email"`
	OccurredAt time.Time `json:"occurredAt"`
}

type UserEventBus = pkgApp.EventBus[pkgDomain.Event[UserEvent], UserEvent]

func NewUserEvent(name, userID, email string, occurredAt time.Time) pkgDomain.Event[UserEvent] {
	return pkgDomain.NewEvent(name, UserEvent{
		UserID:     userID,
		Email:      email,
		OccurredAt: occurredAt,
	})
}
