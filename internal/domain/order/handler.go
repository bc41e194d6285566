package order

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
	g := api.Group("/orders")

	pharmacistGroup := g.Group("", auth.RequireRole(auth.RolePharmacist))
	pharmacistGroup.POST("/:id/status", h.Transition)
	pharmacistGroup.GET("", h.List)

	readGroup := g.Group("", auth.RequireRole(auth.RolePharmacist, auth.RoleAdmin))
	readGroup.GET("/:id", h.Get)
	readGroup.GET("/:id/timeline", h.Timeline)

	// Admin override path: ownership is bypassed, the transition table is not.
	adminGroup := api.Group("/admin/orders", auth.RequireRole(auth.RoleAdmin))
	adminGroup.POST("/:id/status", h.Transition)
}

func actorAndID(c echo.Context) (auth.Actor, uuid.UUID, error) {
	actor, ok := auth.ActorFromContext(c.Request().Context())
	if !ok {
		return auth.Actor{}, uuid.Nil, echo.NewHTTPError(http.StatusUnauthorized, "not authenticated")
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return actor, uuid.Nil, echo.NewHTTPError(http.StatusBadRequest, "invalid order id")
	}
	return actor, id, nil
}

func (h *Handler) Transition(c echo.Context) error {
	actor, id, err := actorAndID(c)
	if err != nil {
		return err
	}
	var in TransitionInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	o, err := h.svc.Transition(c.Request().Context(), actor, id, in)
	if err != nil {
		return respond.Fail(c, err)
	}
	return respond.OK(c, "order updated", map[string]interface{}{"order": o})
}

func (h *Handler) Get(c echo.Context) error {
	actor, id, err := actorAndID(c)
	if err != nil {
		return err
	}
	o, err := h.svc.Get(c.Request().Context(), actor, id)
	if err != nil {
		return respond.Fail(c, err)
	}
	return respond.OK(c, "", map[string]interface{}{"order": o})
}

func (h *Handler) Timeline(c echo.Context) error {
	actor, id, err := actorAndID(c)
	if err != nil {
		return err
	}
	timeline, err := h.svc.Timeline(c.Request().Context(), actor, id)
	if err != nil {
		return respond.Fail(c, err)
	}
	return respond.OK(c, "", map[string]interface{}{"timeline": timeline})
}

func (h *Handler) List(c echo.Context) error {
	actor, ok := auth.ActorFromContext(c.Request().Context())
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "not authenticated")
	}
	pg := pagination.FromContext(c)

	items, total, err := h.svc.ListForPharmacist(c.Request().Context(), actor, c.QueryParam("status"), pg.Limit, pg.Offset)
	if err != nil {
		return respond.Fail(c, err)
	}
	return respond.OK(c, "", map[string]interface{}{
		"orders": pagination.NewResponse(items, total, pg.Limit, pg.Offset),
	})
}
