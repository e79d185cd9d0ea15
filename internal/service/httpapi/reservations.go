package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/vladislavdragonenkov/roombooking/internal/domain"
	"github.com/vladislavdragonenkov/roombooking/internal/report"
)

// reservationRequest ссылается на комнату и студентов по идентификаторам.
type reservationRequest struct {
	ID         string   `json:"id"`
	StudentIDs []string `json:"student_ids"`
	RoomID     string   `json:"room_id"`
	StartTime  string   `json:"start_time"`
	EndTime    string   `json:"end_time"`
}

func (h *Handler) createReservation(c echo.Context) error {
	var body reservationRequest
	if err := c.Bind(&body); err != nil {
		return badRequest(c, "invalid request body")
	}

	ctx := c.Request().Context()
	reservation, err := h.resolveReservation(ctx, body)
	if err != nil {
		return h.respondError(c, err)
	}

	saved, err := h.reservations.CreateReservation(ctx, &reservation)
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(http.StatusCreated, toReservationDTO(saved))
}

func (h *Handler) updateReservation(c echo.Context) error {
	var body reservationRequest
	if err := c.Bind(&body); err != nil {
		return badRequest(c, "invalid request body")
	}
	body.ID = c.Param("id")

	ctx := c.Request().Context()
	reservation, err := h.resolveReservation(ctx, body)
	if err != nil {
		return h.respondError(c, err)
	}

	saved, err := h.reservations.UpdateReservation(ctx, &reservation)
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(http.StatusOK, toReservationDTO(saved))
}

func (h *Handler) listReservations(c echo.Context) error {
	ctx := c.Request().Context()

	var (
		reservations []domain.Reservation
		err          error
	)
	switch when := strings.ToLower(c.QueryParam("when")); when {
	case "":
		reservations, err = h.reservations.GetAllReservations(ctx)
	case "upcoming":
		reservations, err = h.reservations.GetUpcomingReservations(ctx)
	case "past":
		reservations, err = h.reservations.GetPastReservations(ctx)
	default:
		return badRequest(c, fmt.Sprintf("unsupported filter when=%s", when))
	}
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(http.StatusOK, toReservationDTOs(reservations))
}

func (h *Handler) deleteReservation(c echo.Context) error {
	if err := h.reservations.DeleteReservation(c.Request().Context(), c.Param("id")); err != nil {
		return h.respondError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) reservationHistory(c echo.Context) error {
	entries, err := h.reservations.GetReservationHistory(c.Request().Context(), c.Param("id"))
	if err != nil {
		return h.respondError(c, err)
	}
	out := make([]historyDTO, 0, len(entries))
	for _, entry := range entries {
		out = append(out, historyDTO{
			ReservationID: entry.ReservationID,
			Type:          entry.Type,
			Reason:        entry.Reason,
			Occurred:      entry.Occurred.UTC(),
		})
	}
	return c.JSON(http.StatusOK, out)
}

func (h *Handler) exportReservations(c echo.Context) error {
	format, err := report.ParseFormat(c.QueryParam("format"))
	if err != nil {
		return h.respondError(c, err)
	}

	reservations, err := h.reservations.GetAllReservations(c.Request().Context())
	if err != nil {
		return h.respondError(c, err)
	}

	data, err := report.Build(format, reservations, h.clock.Now())
	if err != nil {
		return h.respondError(c, err)
	}

	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="reservations.%s"`, format))
	return c.Blob(http.StatusOK, format.ContentType(), data)
}

// resolveReservation подставляет комнату и студентов по идентификаторам из запроса.
// Пустой room_id оставляет комнату незаданной: это отклонит валидация сервиса.
func (h *Handler) resolveReservation(ctx context.Context, body reservationRequest) (domain.Reservation, error) {
	reservation := domain.Reservation{ID: body.ID}

	var err error
	if reservation.StartTime, err = parseTime("start_time", body.StartTime); err != nil {
		return domain.Reservation{}, err
	}
	if reservation.EndTime, err = parseTime("end_time", body.EndTime); err != nil {
		return domain.Reservation{}, err
	}

	if strings.TrimSpace(body.RoomID) != "" {
		room, ok, err := h.rooms.GetRoomByID(ctx, body.RoomID)
		if err != nil {
			return domain.Reservation{}, err
		}
		if !ok {
			return domain.Reservation{}, domain.InvalidArgument("room does not exist with id: %s", body.RoomID)
		}
		reservation.Room = room
	}

	for _, studentID := range body.StudentIDs {
		student, ok, err := h.students.GetStudentByID(ctx, studentID)
		if err != nil {
			return domain.Reservation{}, err
		}
		if !ok {
			return domain.Reservation{}, domain.InvalidArgument("student does not exist with id %s", studentID)
		}
		reservation.Students = append(reservation.Students, student)
	}
	return reservation, nil
}

func parseTime(field, raw string) (time.Time, error) {
	if strings.TrimSpace(raw) == "" {
		return time.Time{}, nil
	}
	parsed, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, domain.InvalidArgument("%s must be RFC 3339 timestamp", field)
	}
	return parsed.UTC(), nil
}
