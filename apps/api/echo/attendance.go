package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/mahudhurio/core/attendance"
)

type attendanceApi struct {
	svc *attendance.Service
}

func registerAttendanceAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *attendance.Service) {
	api := attendanceApi{svc: svc}

	cg := g.Group("/courses", jwt)
	cg.GET("", api.queryCourses, staffMiddleware())
	cg.GET("/:id", api.retrieveCourse, staffMiddleware())
	cg.POST("", api.createCourse, adminMiddleware())
	cg.DELETE("/:id", api.destroyCourse, adminMiddleware())

	ag := g.Group("/attendance", jwt, staffMiddleware())
	ag.GET("/:date", api.retrieveDailyRecord)
	ag.PUT("/:date/courses/:id", api.setCourseAttendance)
}

func (api *attendanceApi) createCourse(ctx echo.Context) error {
	var data attendance.NewCourse
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewCourse")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	crs, err := api.svc.CreateCourse(data)
	if err != nil {
		return errors.Wrap(err, "creating course")
	}
	return ctx.JSON(http.StatusCreated, crs)
}

func (api *attendanceApi) queryCourses(ctx echo.Context) error {
	courses, err := api.svc.QueryCourses()
	if err != nil {
		return errors.Wrap(err, "querying courses")
	}
	if courses == nil {
		courses = []attendance.Course{}
	}
	return ctx.JSON(http.StatusOK, courses)
}

func (api *attendanceApi) retrieveCourse(ctx echo.Context) error {
	crs, err := api.svc.GetCourseByID(ctx.Param("id"))
	if err != nil {
		if errors.Cause(err) == attendance.ErrCourseNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "finding course by ID")
	}
	return ctx.JSON(http.StatusOK, crs)
}

func (api *attendanceApi) destroyCourse(ctx echo.Context) error {
	if _, err := api.svc.GetCourseByID(ctx.Param("id")); err != nil {
		if errors.Cause(err) == attendance.ErrCourseNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "finding course by ID")
	}
	if err := api.svc.DeleteCourses(ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting course")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *attendanceApi) retrieveDailyRecord(ctx echo.Context) error {
	rec, err := api.svc.GetDailyRecord(ctx.Param("date"))
	if err != nil {
		if errors.Cause(err) == attendance.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "getting daily record")
	}
	return ctx.JSON(http.StatusOK, rec)
}

func (api *attendanceApi) setCourseAttendance(ctx echo.Context) error {
	var data attendance.SetCourseAttendance
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to SetCourseAttendance")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	err := api.svc.SetCourseAttendance(ctx.Param("date"), ctx.Param("id"), data)
	if err != nil {
		if errors.Cause(err) == attendance.ErrCourseNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "setting course attendance")
	}
	return ctx.NoContent(http.StatusNoContent)
}
