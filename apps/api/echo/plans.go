package echoapi

import (
	"bytes"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/shule/core/plan"
	"github.com/trezcool/shule/core/roster"
	"github.com/trezcool/shule/core/school"
	"github.com/trezcool/shule/core/user"
)

type planApi struct {
	svc       *plan.Service
	schoolSvc *school.Service
	rosterSvc *roster.Service
}

func registerPlanAPI(g *echo.Group, opts *Options) {
	api := planApi{
		svc:       opts.PlanSvc,
		schoolSvc: opts.SchoolSvc,
		rosterSvc: opts.RosterSvc,
	}

	sg := g.Group("/subjects")
	sg.GET("", api.listSubjects)
	sg.POST("", api.createSubject)
	sg.DELETE("/:id", api.destroySubject)

	tg := g.Group("/teachers")
	tg.GET("", api.listTeachers)
	tg.POST("", api.createTeacher)
	tg.DELETE("/:id", api.destroyTeacher)

	g.GET("/week", api.retrieveWeek)
	g.PUT("/week", api.updateWeek)

	scg := g.Group("/schedule")
	scg.GET("", api.listSchedule)
	scg.PUT("", api.upsertScheduleSlot)
	scg.DELETE("", api.removeScheduleSlot)

	pg := g.Group("/plans")
	pg.GET("", api.listEntries)
	pg.PUT("", api.upsertEntry)
	pg.POST("/archive", api.archive)
	pg.GET("/print", api.print)

	ag := g.Group("/archives")
	ag.GET("", api.listArchives)
	ag.GET("/:id", api.retrieveArchive)
}

// Subjects

func (api *planApi) listSubjects(ctx echo.Context) error {
	subjects, err := api.svc.Subjects(schoolID(ctx))
	if err != nil {
		return errors.Wrap(err, "listing subjects")
	}
	if subjects == nil {
		subjects = []plan.Subject{}
	}
	return ctx.JSON(http.StatusOK, subjects)
}

func (api *planApi) createSubject(ctx echo.Context) error {
	var data struct {
		Name string `json:"name"`
	}
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding subject")
	}
	sub, err := api.svc.CreateSubject(schoolID(ctx), data.Name)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, sub)
}

func (api *planApi) destroySubject(ctx echo.Context) error {
	if err := api.svc.DeleteSubject(schoolID(ctx), ctx.Param("id")); err != nil {
		if errors.Cause(err) == plan.ErrSubjectNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "deleting subject")
	}
	return ctx.NoContent(http.StatusNoContent)
}

// Teachers

func (api *planApi) listTeachers(ctx echo.Context) error {
	teachers, err := api.svc.Teachers(schoolID(ctx))
	if err != nil {
		return errors.Wrap(err, "listing teachers")
	}
	if teachers == nil {
		teachers = []plan.Teacher{}
	}
	return ctx.JSON(http.StatusOK, teachers)
}

func (api *planApi) createTeacher(ctx echo.Context) error {
	var data plan.NewTeacher
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewTeacher")
	}
	if data.Password != "" {
		if err := user.ValidatePassword(data.Password, data.Name, data.Username); err != nil {
			return err
		}
	}
	tch, err := api.svc.CreateTeacher(schoolID(ctx), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, tch)
}

func (api *planApi) destroyTeacher(ctx echo.Context) error {
	if err := api.svc.DeleteTeacher(schoolID(ctx), ctx.Param("id")); err != nil {
		if errors.Cause(err) == plan.ErrTeacherNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "deleting teacher")
	}
	return ctx.NoContent(http.StatusNoContent)
}

// Week

func (api *planApi) retrieveWeek(ctx echo.Context) error {
	week, err := api.svc.Week(schoolID(ctx))
	if err != nil {
		return errors.Wrap(err, "getting week")
	}
	return ctx.JSON(http.StatusOK, week)
}

func (api *planApi) updateWeek(ctx echo.Context) error {
	var data plan.WeekInfo
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to WeekInfo")
	}
	if err := api.svc.SaveWeek(schoolID(ctx), data); err != nil {
		return errors.Wrap(err, "saving week")
	}
	return ctx.JSON(http.StatusOK, data)
}

// Schedule

func (api *planApi) listSchedule(ctx echo.Context) error {
	slots, err := api.svc.Schedule(schoolID(ctx))
	if err != nil {
		return errors.Wrap(err, "listing schedule")
	}
	if slots == nil {
		slots = []plan.ScheduleSlot{}
	}
	return ctx.JSON(http.StatusOK, slots)
}

func (api *planApi) upsertScheduleSlot(ctx echo.Context) error {
	var data plan.ScheduleSlot
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ScheduleSlot")
	}
	ss, err := api.svc.UpsertScheduleSlot(schoolID(ctx), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, ss)
}

func (api *planApi) removeScheduleSlot(ctx echo.Context) error {
	var data struct {
		ClassID  string `json:"class_id"`
		DayIndex int    `json:"day_index"`
		Period   int    `json:"period"`
	}
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding schedule key")
	}
	if err := api.svc.RemoveScheduleSlot(schoolID(ctx), data.ClassID, data.DayIndex, data.Period); err != nil {
		return errors.Wrap(err, "removing schedule slot")
	}
	return ctx.NoContent(http.StatusNoContent)
}

// Plan entries

func (api *planApi) listEntries(ctx echo.Context) error {
	entries, err := api.svc.Entries(schoolID(ctx))
	if err != nil {
		return errors.Wrap(err, "listing plan entries")
	}
	if entries == nil {
		entries = []plan.PlanEntry{}
	}
	return ctx.JSON(http.StatusOK, entries)
}

func (api *planApi) upsertEntry(ctx echo.Context) error {
	var data plan.PlanEntry
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to PlanEntry")
	}
	pe, err := api.svc.UpsertEntry(schoolID(ctx), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, pe)
}

func (api *planApi) archive(ctx echo.Context) error {
	ap, err := api.svc.ArchiveWeek(schoolID(ctx))
	if err != nil {
		return errors.Wrap(err, "archiving week")
	}
	return ctx.JSON(http.StatusCreated, ap)
}

// print renders the current week's plan of one class as a printable HTML
// page.
func (api *planApi) print(ctx echo.Context) error {
	sid := schoolID(ctx)
	classID := ctx.QueryParam("class")
	if classID == "" {
		return errHttpNotFound
	}
	cg, err := api.rosterSvc.GetClass(sid, classID)
	if err != nil {
		if errors.Cause(err) == roster.ErrClassNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "finding class by ID")
	}

	settings, err := api.schoolSvc.Settings(sid)
	if err != nil {
		return errors.Wrap(err, "getting settings")
	}
	week, err := api.svc.Week(sid)
	if err != nil {
		return errors.Wrap(err, "getting week")
	}
	entries, err := api.svc.Entries(sid)
	if err != nil {
		return errors.Wrap(err, "listing plan entries")
	}

	doc := plan.BuildPrintDoc(settings.SchoolName, cg.Name, week, entries, classID)
	var buf bytes.Buffer
	if err := plan.RenderPrintDoc(&buf, doc); err != nil {
		return err
	}
	return ctx.HTMLBlob(http.StatusOK, buf.Bytes())
}

// Archives

func (api *planApi) listArchives(ctx echo.Context) error {
	archives, err := api.svc.Archives(schoolID(ctx))
	if err != nil {
		return errors.Wrap(err, "listing archives")
	}
	if archives == nil {
		archives = []plan.ArchivedPlan{}
	}
	return ctx.JSON(http.StatusOK, archives)
}

func (api *planApi) retrieveArchive(ctx echo.Context) error {
	ap, err := api.svc.GetArchive(schoolID(ctx), ctx.Param("id"))
	if err != nil {
		if errors.Cause(err) == plan.ErrArchiveNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "finding archive by ID")
	}
	return ctx.JSON(http.StatusOK, ap)
}
