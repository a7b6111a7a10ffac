package echoapi

import (
	"net/http"
	"path/filepath"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/roster"
)

type rosterApi struct {
	svc *roster.Service
}

func registerRosterAPI(g *echo.Group, opts *Options) {
	api := rosterApi{svc: opts.RosterSvc}

	cg := g.Group("/classes")
	cg.GET("", api.listClasses)
	cg.POST("", api.createClass)
	cg.GET("/:id", api.retrieveClass)
	cg.PUT("/:id", api.updateClass)
	cg.DELETE("/:id", api.destroyClass)

	sg := g.Group("/students")
	sg.GET("", api.listStudents)
	sg.POST("", api.createStudent)
	sg.GET("/import-template", api.importTemplate)
	sg.POST("/import", api.importRoster)
	sg.GET("/:id", api.retrieveStudent)
	sg.PUT("/:id", api.updateStudent)
	sg.DELETE("/:id", api.destroyStudent)
}

// Classes

func (api *rosterApi) listClasses(ctx echo.Context) error {
	classes, err := api.svc.Classes(schoolID(ctx))
	if err != nil {
		return errors.Wrap(err, "listing classes")
	}
	if classes == nil {
		classes = []roster.ClassGroup{}
	}
	return ctx.JSON(http.StatusOK, classes)
}

func (api *rosterApi) createClass(ctx echo.Context) error {
	var data roster.NewClass
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewClass")
	}
	cg, err := api.svc.CreateClass(schoolID(ctx), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, cg)
}

func (api *rosterApi) retrieveClass(ctx echo.Context) error {
	cg, err := api.svc.GetClass(schoolID(ctx), ctx.Param("id"))
	if err != nil {
		if errors.Cause(err) == roster.ErrClassNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "finding class by ID")
	}
	return ctx.JSON(http.StatusOK, cg)
}

func (api *rosterApi) updateClass(ctx echo.Context) error {
	var data roster.ClassGroup
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ClassGroup")
	}
	data.ID = ctx.Param("id")
	cg, err := api.svc.UpdateClass(schoolID(ctx), data)
	if err != nil {
		if errors.Cause(err) == roster.ErrClassNotFound {
			return errHttpNotFound
		}
		return err
	}
	return ctx.JSON(http.StatusOK, cg)
}

func (api *rosterApi) destroyClass(ctx echo.Context) error {
	if err := api.svc.DeleteClass(schoolID(ctx), ctx.Param("id")); err != nil {
		if errors.Cause(err) == roster.ErrClassNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "deleting class")
	}
	return ctx.NoContent(http.StatusNoContent)
}

// Students

func (api *rosterApi) listStudents(ctx echo.Context) error {
	students, err := api.svc.Students(schoolID(ctx))
	if err != nil {
		return errors.Wrap(err, "listing students")
	}
	// optional class filter
	if classID := ctx.QueryParam("class"); classID != "" {
		filtered := make([]roster.Student, 0, len(students))
		for _, st := range students {
			if st.ClassID == classID {
				filtered = append(filtered, st)
			}
		}
		students = filtered
	}
	if students == nil {
		students = []roster.Student{}
	}
	return ctx.JSON(http.StatusOK, students)
}

func (api *rosterApi) createStudent(ctx echo.Context) error {
	var data roster.NewStudent
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewStudent")
	}
	st, err := api.svc.CreateStudent(schoolID(ctx), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, st)
}

func (api *rosterApi) retrieveStudent(ctx echo.Context) error {
	st, err := api.svc.GetStudent(schoolID(ctx), ctx.Param("id"))
	if err != nil {
		if errors.Cause(err) == roster.ErrStudentNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "finding student by ID")
	}
	return ctx.JSON(http.StatusOK, st)
}

func (api *rosterApi) updateStudent(ctx echo.Context) error {
	var data roster.Student
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to Student")
	}
	data.ID = ctx.Param("id")
	st, err := api.svc.UpdateStudent(schoolID(ctx), data)
	if err != nil {
		if errors.Cause(err) == roster.ErrStudentNotFound {
			return errHttpNotFound
		}
		return err
	}
	return ctx.JSON(http.StatusOK, st)
}

func (api *rosterApi) destroyStudent(ctx echo.Context) error {
	if err := api.svc.DeleteStudent(schoolID(ctx), ctx.Param("id")); err != nil {
		if errors.Cause(err) == roster.ErrStudentNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "deleting student")
	}
	return ctx.NoContent(http.StatusNoContent)
}

// importRoster accepts a multipart "file" field holding a CSV or XLSX roster
// and commits anything new; a skipped row never aborts the import.
func (api *rosterApi) importRoster(ctx echo.Context) error {
	fileHdr, err := ctx.FormFile("file")
	if err != nil {
		return core.NewValidationError(errors.New("missing roster file"),
			core.FieldError{Field: "file", Error: "a roster file is required"})
	}
	file, err := fileHdr.Open()
	if err != nil {
		return errors.Wrap(err, "opening roster upload")
	}
	defer file.Close()

	format := roster.FormatCSV
	if strings.EqualFold(filepath.Ext(fileHdr.Filename), ".xlsx") {
		format = roster.FormatXLSX
	}

	report, err := api.svc.Import(schoolID(ctx), file, format)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, report)
}

func (api *rosterApi) importTemplate(ctx echo.Context) error {
	ctx.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="students-template.csv"`)
	return ctx.Blob(http.StatusOK, "text/csv; charset=utf-8", []byte(roster.CSVTemplate))
}
