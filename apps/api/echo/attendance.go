package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/shule/core/attendance"
)

type attendanceApi struct {
	svc *attendance.Service
}

func registerAttendanceAPI(g *echo.Group, opts *Options) {
	api := attendanceApi{svc: opts.AttendanceSvc}

	ag := g.Group("/attendance")
	ag.GET("", api.sheet)
	ag.PUT("", api.mark)
	ag.DELETE("", api.unmark)
	ag.GET("/summary/:studentID", api.summary)
}

// sheet returns one class's marks for one day (?class=&date=).
func (api *attendanceApi) sheet(ctx echo.Context) error {
	classID, date := ctx.QueryParam("class"), ctx.QueryParam("date")
	if classID == "" || date == "" {
		return errHttpNotFound
	}
	records, err := api.svc.Sheet(schoolID(ctx), classID, date)
	if err != nil {
		return errors.Wrap(err, "listing attendance sheet")
	}
	if records == nil {
		records = []attendance.Record{}
	}
	return ctx.JSON(http.StatusOK, records)
}

func (api *attendanceApi) mark(ctx echo.Context) error {
	var data attendance.Record
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to Record")
	}
	rec, err := api.svc.Mark(schoolID(ctx), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, rec)
}

func (api *attendanceApi) unmark(ctx echo.Context) error {
	var data struct {
		StudentID string `json:"student_id"`
		Date      string `json:"date"`
	}
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding attendance key")
	}
	if err := api.svc.Unmark(schoolID(ctx), data.StudentID, data.Date); err != nil {
		if errors.Cause(err) == attendance.ErrRecordNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "unmarking attendance")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *attendanceApi) summary(ctx echo.Context) error {
	sum, err := api.svc.StudentSummary(schoolID(ctx), ctx.Param("studentID"))
	if err != nil {
		return errors.Wrap(err, "summarizing attendance")
	}
	return ctx.JSON(http.StatusOK, sum)
}
