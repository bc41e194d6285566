package pharmacy

import (
	"net/http"
	"strconv"

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
	g := api.Group("/admin/pharmacies", auth.RequireRole(auth.RoleAdmin))
	g.POST("/:id/review", h.Review)
	g.POST("/:id/active", h.SetActive)
	g.GET("", h.List)
}

func actorAndID(c echo.Context) (auth.Actor, uuid.UUID, error) {
	actor, ok := auth.ActorFromContext(c.Request().Context())
	if !ok {
		return auth.Actor{}, uuid.Nil, echo.NewHTTPError(http.StatusUnauthorized, "not authenticated")
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return actor, uuid.Nil, echo.NewHTTPError(http.StatusBadRequest, "invalid pharmacy id")
	}
	return actor, id, nil
}

func (h *Handler) Review(c echo.Context) error {
	actor, id, err := actorAndID(c)
	if err != nil {
		return err
	}
	var in ReviewInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	p, err := h.svc.Review(c.Request().Context(), actor, id, in)
	if err != nil {
		return respond.Fail(c, err)
	}
	return respond.OK(c, "pharmacy reviewed", map[string]interface{}{"pharmacy": p})
}

func (h *Handler) SetActive(c echo.Context) error {
	actor, id, err := actorAndID(c)
	if err != nil {
		return err
	}
	var in struct {
		Active bool `json:"active"`
	}
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	p, err := h.svc.SetActive(c.Request().Context(), actor, id, in.Active)
	if err != nil {
		return respond.Fail(c, err)
	}
	return respond.OK(c, "pharmacy updated", map[string]interface{}{"pharmacy": p})
}

func (h *Handler) List(c echo.Context) error {
	actor, ok := auth.ActorFromContext(c.Request().Context())
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "not authenticated")
	}
	pg := pagination.FromContext(c)

	var approved *bool
	if raw := c.QueryParam("approved"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid approved filter")
		}
		approved = &v
	}

	items, total, err := h.svc.List(c.Request().Context(), actor, approved, pg.Limit, pg.Offset)
	if err != nil {
		return respond.Fail(c, err)
	}
	return respond.OK(c, "", map[string]interface{}{
		"pharmacies": pagination.NewResponse(items, total, pg.Limit, pg.Offset),
	})
}
