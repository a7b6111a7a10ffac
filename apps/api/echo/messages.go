package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/shule/core/message"
)

type messageApi struct {
	svc *message.Service
}

func registerMessageAPI(g *echo.Group, opts *Options) {
	api := messageApi{svc: opts.MessageSvc}

	mg := g.Group("/messages")
	mg.GET("", api.outbox)
	mg.POST("", api.send)
	mg.GET("/:id", api.retrieve)
	mg.DELETE("/:id", api.destroy)
}

func (api *messageApi) outbox(ctx echo.Context) error {
	msgs, err := api.svc.Outbox(schoolID(ctx))
	if err != nil {
		return errors.Wrap(err, "listing outbox")
	}
	if msgs == nil {
		msgs = []message.Message{}
	}
	return ctx.JSON(http.StatusOK, msgs)
}

func (api *messageApi) send(ctx echo.Context) error {
	var data message.NewMessage
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewMessage")
	}
	msg, err := api.svc.Send(schoolID(ctx), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, msg)
}

func (api *messageApi) retrieve(ctx echo.Context) error {
	msg, err := api.svc.Get(schoolID(ctx), ctx.Param("id"))
	if err != nil {
		if errors.Cause(err) == message.ErrMessageNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "finding message by ID")
	}
	return ctx.JSON(http.StatusOK, msg)
}

func (api *messageApi) destroy(ctx echo.Context) error {
	if err := api.svc.Delete(schoolID(ctx), ctx.Param("id")); err != nil {
		if errors.Cause(err) == message.ErrMessageNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "deleting message")
	}
	return ctx.NoContent(http.StatusNoContent)
}
