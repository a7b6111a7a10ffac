package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/shule/core/school"
)

type settingsApi struct {
	svc *school.Service
}

func registerSettingsAPI(g *echo.Group, opts *Options) {
	api := settingsApi{svc: opts.SchoolSvc}

	g.GET("/settings", api.retrieve)
	g.PUT("/settings", api.update)
}

func (api *settingsApi) retrieve(ctx echo.Context) error {
	settings, err := api.svc.Settings(schoolID(ctx))
	if err != nil {
		return errors.Wrap(err, "getting settings")
	}
	return ctx.JSON(http.StatusOK, settings)
}

func (api *settingsApi) update(ctx echo.Context) error {
	var data school.Settings
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to Settings")
	}
	if err := api.svc.SaveSettings(schoolID(ctx), data); err != nil {
		return errors.Wrap(err, "saving settings")
	}
	return ctx.JSON(http.StatusOK, data)
}
