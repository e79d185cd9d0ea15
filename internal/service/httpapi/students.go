package httpapi

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/vladislavdragonenkov/roombooking/internal/domain"
)

func (h *Handler) registerStudent(c echo.Context) error {
	var body studentDTO
	if err := c.Bind(&body); err != nil {
		return badRequest(c, "invalid request body")
	}

	student := domain.Student{ID: body.ID, FirstName: body.FirstName, LastName: body.LastName}
	saved, err := h.students.RegisterStudent(c.Request().Context(), &student)
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(http.StatusCreated, toStudentDTO(saved))
}

func (h *Handler) listStudents(c echo.Context) error {
	students, err := h.students.GetAllStudents(c.Request().Context())
	if err != nil {
		return h.respondError(c, err)
	}
	out := make([]studentDTO, 0, len(students))
	for _, student := range students {
		out = append(out, toStudentDTO(student))
	}
	return c.JSON(http.StatusOK, out)
}

func (h *Handler) getStudent(c echo.Context) error {
	student, ok, err := h.students.GetStudentByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		return h.respondError(c, err)
	}
	if !ok {
		return notFound(c, "student not found")
	}
	return c.JSON(http.StatusOK, toStudentDTO(student))
}

func (h *Handler) deleteStudent(c echo.Context) error {
	if err := h.students.DeleteStudent(c.Request().Context(), c.Param("id")); err != nil {
		return h.respondError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) listStudentReservations(c echo.Context) error {
	reservations, err := h.reservations.GetReservationsByStudent(c.Request().Context(), c.Param("id"))
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(http.StatusOK, toReservationDTOs(reservations))
}

func (h *Handler) listStudentBookings(c echo.Context) error {
	reservations, err := h.students.GetStudentBookings(c.Request().Context(), c.Param("id"))
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(http.StatusOK, toReservationDTOs(reservations))
}
