package consultation

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/prescripto/prescripto/internal/platform/auth"
	"github.com/prescripto/prescripto/internal/platform/respond"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	g := api.Group("/consultations")

	// Mutations are doctor-only; admin is deliberately not admitted.
	doctorGroup := g.Group("", auth.RequireRole(auth.RoleDoctor))
	doctorGroup.POST("/ensure", h.EnsureScheduled)
	doctorGroup.POST("/start", h.Start)
	doctorGroup.POST("/complete", h.Complete)

	readGroup := g.Group("", auth.RequireRole(auth.RoleDoctor, auth.RolePatient))
	readGroup.GET("/:appointmentID", h.Read)
}

type appointmentRequest struct {
	AppointmentID string `json:"appointment_id"`
}

func bindAppointmentID(c echo.Context) (uuid.UUID, auth.Actor, error) {
	actor, ok := auth.ActorFromContext(c.Request().Context())
	if !ok {
		return uuid.Nil, auth.Actor{}, echo.NewHTTPError(http.StatusUnauthorized, "not authenticated")
	}
	var req appointmentRequest
	if err := c.Bind(&req); err != nil {
		return uuid.Nil, actor, echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	id, err := uuid.Parse(req.AppointmentID)
	if err != nil {
		return uuid.Nil, actor, echo.NewHTTPError(http.StatusBadRequest, "invalid appointment_id")
	}
	return id, actor, nil
}

func (h *Handler) EnsureScheduled(c echo.Context) error {
	id, actor, err := bindAppointmentID(c)
	if err != nil {
		return err
	}
	view, err := h.svc.EnsureScheduled(c.Request().Context(), actor, id)
	if err != nil {
		return respond.Fail(c, err)
	}
	return respond.OK(c, "consultation scheduled", map[string]interface{}{"consultation": view})
}

func (h *Handler) Start(c echo.Context) error {
	id, actor, err := bindAppointmentID(c)
	if err != nil {
		return err
	}
	view, err := h.svc.Start(c.Request().Context(), actor, id)
	if err != nil {
		return respond.Fail(c, err)
	}
	return respond.OK(c, "consultation started", map[string]interface{}{"consultation": view})
}

type completeRequest struct {
	AppointmentID string `json:"appointment_id"`
	CompleteInput
}

func (h *Handler) Complete(c echo.Context) error {
	actor, ok := auth.ActorFromContext(c.Request().Context())
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "not authenticated")
	}
	var req completeRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	id, err := uuid.Parse(req.AppointmentID)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid appointment_id")
	}
	view, err := h.svc.Complete(c.Request().Context(), actor, id, req.CompleteInput)
	if err != nil {
		return respond.Fail(c, err)
	}
	return respond.OK(c, "consultation completed", map[string]interface{}{"consultation": view})
}

func (h *Handler) Read(c echo.Context) error {
	actor, ok := auth.ActorFromContext(c.Request().Context())
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "not authenticated")
	}
	id, err := uuid.Parse(c.Param("appointmentID"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid appointment id")
	}
	view, err := h.svc.Read(c.Request().Context(), actor, id)
	if err != nil {
		return respond.Fail(c, err)
	}
	return respond.OK(c, "", map[string]interface{}{"consultation": view})
}
