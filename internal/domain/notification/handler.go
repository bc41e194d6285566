package notification

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/prescripto/prescripto/internal/platform/auth"
	"github.com/prescripto/prescripto/internal/platform/respond"
	"github.com/prescripto/prescripto/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	g := api.Group("/notifications", auth.RequireRole(
		auth.RolePatient, auth.RoleDoctor, auth.RolePharmacist, auth.RoleAdmin))
	g.GET("", h.List)
	g.POST("/:id/read", h.MarkRead)
}

func (h *Handler) List(c echo.Context) error {
	actor, ok := auth.ActorFromContext(c.Request().Context())
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "not authenticated")
	}

	pg := pagination.FromContext(c)
	unreadOnly := c.QueryParam("unread") == "true"

	items, total, err := h.svc.List(c.Request().Context(), actor, unreadOnly, pg.Limit, pg.Offset)
	if err != nil {
		return respond.Fail(c, err)
	}
	return respond.OK(c, "", map[string]interface{}{
		"notifications": pagination.NewResponse(items, total, pg.Limit, pg.Offset),
	})
}

func (h *Handler) MarkRead(c echo.Context) error {
	actor, ok := auth.ActorFromContext(c.Request().Context())
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "not authenticated")
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid notification id")
	}

	n, err := h.svc.MarkRead(c.Request().Context(), actor, id)
	if err != nil {
		return respond.Fail(c, err)
	}
	return respond.OK(c, "notification marked as read", map[string]interface{}{
		"notification": n,
	})
}
