package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/campusbuzz/event-registration/internal/middleware"
	"github.com/campusbuzz/event-registration/internal/model"
	"github.com/campusbuzz/event-registration/internal/queue"
	"github.com/campusbuzz/event-registration/internal/repository"
	"github.com/campusbuzz/event-registration/internal/service"
)

// EventCatalog is what the event endpoints need from the event
// repository beyond the registration state machine.
// *repository.EventRepo satisfies it.
type EventCatalog interface {
	Create(ctx context.Context, ev model.Event) (model.Event, error)
	GetByID(ctx context.Context, id uint64) (model.Event, error)
	GetWithRegistrants(ctx context.Context, id uint64) (model.Event, error)
	List(ctx context.Context) ([]model.Event, error)
	ListWithRegistrants(ctx context.Context) ([]model.Event, error)
	Update(ctx context.Context, ev model.Event) (model.Event, error)
	Delete(ctx context.Context, id uint64) error
}

// EventHandler bundles dependencies for event CRUD and the
// register/cancel lifecycle.
type EventHandler struct {
	Events       EventCatalog
	Registration *service.RegistrationService
	// Publish sends registration activity to the broker; best-effort,
	// failures never affect the response. Swappable in tests.
	Publish func(ctx context.Context, queueName string, act queue.RegistrationActivity) error
}

func NewEventHandler(events EventCatalog, reg *service.RegistrationService) *EventHandler {
	return &EventHandler{Events: events, Registration: reg, Publish: queue.Publish}
}

type eventReq struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Date        time.Time `json:"date"`
	Location    string    `json:"location"`
	Organizer   string    `json:"organizer"`
}

func (r eventReq) validate() string {
	switch {
	case r.Title == "":
		return "title required"
	case r.Description == "":
		return "description required"
	case r.Date.IsZero():
		return "date required"
	case r.Location == "":
		return "location required"
	case r.Organizer == "":
		return "organizer required"
	}
	return ""
}

func eventID(c echo.Context) (uint64, error) {
	return strconv.ParseUint(c.Param("id"), 10, 64)
}

// List returns all events ordered by date, without registrant details.
func (h *EventHandler) List(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	events, err := h.Events.List(ctx)
	if err != nil {
		c.Logger().Errorf("list events: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list events failed"})
	}
	if events == nil {
		events = []model.Event{}
	}
	return c.JSON(http.StatusOK, echo.Map{"data": events})
}

// Get returns a single event with its registered users.
func (h *EventHandler) Get(c echo.Context) error {
	id, err := eventID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid event id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	ev, err := h.Events.GetWithRegistrants(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrEventNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "event not found"})
		}
		c.Logger().Errorf("load event: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load event failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"data": ev})
}

// AdminList returns all events with their registrants for the admin
// dashboard.
func (h *EventHandler) AdminList(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	events, err := h.Events.ListWithRegistrants(ctx)
	if err != nil {
		c.Logger().Errorf("list events: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list events failed"})
	}
	if events == nil {
		events = []model.Event{}
	}
	return c.JSON(http.StatusOK, echo.Map{"data": events})
}

// Create stores a new event.
func (h *EventHandler) Create(c echo.Context) error {
	var req eventReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if msg := req.validate(); msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	ev, err := h.Events.Create(ctx, model.Event{
		Title:       req.Title,
		Description: req.Description,
		Date:        req.Date,
		Location:    req.Location,
		Organizer:   req.Organizer,
	})
	if err != nil {
		c.Logger().Errorf("create event: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create event failed"})
	}
	return c.JSON(http.StatusCreated, echo.Map{"data": ev})
}

// Update rewrites an event's fields.
func (h *EventHandler) Update(c echo.Context) error {
	id, err := eventID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid event id"})
	}
	var req eventReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if msg := req.validate(); msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	ev, err := h.Events.Update(ctx, model.Event{
		ID:          id,
		Title:       req.Title,
		Description: req.Description,
		Date:        req.Date,
		Location:    req.Location,
		Organizer:   req.Organizer,
	})
	if err != nil {
		if errors.Is(err, repository.ErrEventNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "event not found"})
		}
		c.Logger().Errorf("update event: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update event failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"data": ev})
}

// Delete removes an event and its registrations.
func (h *EventHandler) Delete(c echo.Context) error {
	id, err := eventID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid event id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Events.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrEventNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "event not found"})
		}
		c.Logger().Errorf("delete event: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete event failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "event deleted successfully"})
}

// Register adds the authenticated user to the event.
func (h *EventHandler) Register(c echo.Context) error {
	id, err := eventID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid event id"})
	}
	p, ok := middleware.GetPrincipal(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Registration.Register(ctx, id, p.UserID); err != nil {
		switch {
		case errors.Is(err, repository.ErrEventNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "event not found"})
		case errors.Is(err, repository.ErrAlreadyRegistered):
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "already registered"})
		}
		c.Logger().Errorf("register: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "register failed"})
	}

	h.publishActivity(ctx, queue.ConfirmedQueue, id, p.UserID)
	return c.JSON(http.StatusOK, echo.Map{"message": "registered successfully"})
}

// Cancel removes the authenticated user from the event, subject to the
// 15-day window.
func (h *EventHandler) Cancel(c echo.Context) error {
	id, err := eventID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid event id"})
	}
	p, ok := middleware.GetPrincipal(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Registration.Cancel(ctx, id, p.UserID); err != nil {
		switch {
		case errors.Is(err, repository.ErrEventNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "event not found"})
		case errors.Is(err, repository.ErrNotRegistered):
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "not registered"})
		case errors.Is(err, service.ErrWindowClosed):
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "registration can only be cancelled 15 days before event"})
		}
		c.Logger().Errorf("cancel: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "cancel failed"})
	}

	h.publishActivity(ctx, queue.CancelledQueue, id, p.UserID)
	return c.JSON(http.StatusOK, echo.Map{"message": "registration cancelled successfully"})
}

func (h *EventHandler) publishActivity(ctx context.Context, queueName string, eventID, userID uint64) {
	if h.Publish == nil {
		return
	}
	ev, err := h.Events.GetByID(ctx, eventID)
	if err != nil {
		return
	}
	_ = h.Publish(ctx, queueName, queue.RegistrationActivity{
		EventID:    ev.ID,
		EventTitle: ev.Title,
		EventDate:  ev.Date.UTC().Format(time.RFC3339),
		Location:   ev.Location,
		UserID:     userID,
		OccurredAt: time.Now().UTC().Format(time.RFC3339),
	})
}
