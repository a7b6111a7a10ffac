package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/shule/core/school"
)

type schoolApi struct {
	svc *school.Service
}

// registerSchoolAPI exposes the school registry; admins only. The item
// routes live on the tenant group: a middleware group claims its prefix
// with catch-all routes, so a second group on /schools/:schoolID would
// shadow them.
func registerSchoolAPI(v1, tenant *echo.Group, jwt echo.MiddlewareFunc, opts *Options) {
	api := schoolApi{svc: opts.SchoolSvc}
	admin := adminMiddleware()

	sg := v1.Group("/schools", jwt, admin)
	sg.GET("", api.list)
	sg.POST("", api.create)

	tenant.GET("", api.retrieve, admin)
	tenant.PUT("", api.update, admin)
	tenant.DELETE("", api.destroy, admin)
}

func (api *schoolApi) list(ctx echo.Context) error {
	schools, err := api.svc.List()
	if err != nil {
		return errors.Wrap(err, "listing schools")
	}
	if schools == nil {
		schools = []school.School{}
	}
	return ctx.JSON(http.StatusOK, schools)
}

func (api *schoolApi) create(ctx echo.Context) error {
	var data school.NewSchool
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewSchool")
	}
	sch, err := api.svc.Create(data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, sch)
}

func (api *schoolApi) retrieve(ctx echo.Context) error {
	sch, err := api.svc.Get(ctx.Param("schoolID"))
	if err != nil {
		if errors.Cause(err) == school.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "finding school by ID")
	}
	return ctx.JSON(http.StatusOK, sch)
}

func (api *schoolApi) update(ctx echo.Context) error {
	var data school.UpdateSchool
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateSchool")
	}
	sch, err := api.svc.Update(ctx.Param("schoolID"), data)
	if err != nil {
		if errors.Cause(err) == school.ErrNotFound {
			return errHttpNotFound
		}
		return err
	}
	return ctx.JSON(http.StatusOK, sch)
}

func (api *schoolApi) destroy(ctx echo.Context) error {
	if err := api.svc.Remove(ctx.Param("schoolID")); err != nil {
		if errors.Cause(err) == school.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "removing school")
	}
	return ctx.NoContent(http.StatusNoContent)
}
