package httpapi

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/vladislavdragonenkov/roombooking/internal/domain"
)

func (h *Handler) addRoom(c echo.Context) error {
	var body roomDTO
	if err := c.Bind(&body); err != nil {
		return badRequest(c, "invalid request body")
	}

	room := domain.Room{ID: body.ID, Name: body.Name, Capacity: body.Capacity}
	saved, err := h.rooms.AddRoom(c.Request().Context(), &room)
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(http.StatusCreated, toRoomDTO(saved))
}

func (h *Handler) listRooms(c echo.Context) error {
	rooms, err := h.rooms.GetAllRooms(c.Request().Context())
	if err != nil {
		return h.respondError(c, err)
	}
	out := make([]roomDTO, 0, len(rooms))
	for _, room := range rooms {
		out = append(out, toRoomDTO(room))
	}
	return c.JSON(http.StatusOK, out)
}

func (h *Handler) getRoom(c echo.Context) error {
	room, ok, err := h.rooms.GetRoomByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		return h.respondError(c, err)
	}
	if !ok {
		return notFound(c, "room not found")
	}
	return c.JSON(http.StatusOK, toRoomDTO(room))
}

func (h *Handler) deleteRoom(c echo.Context) error {
	if err := h.rooms.DeleteRoom(c.Request().Context(), c.Param("id")); err != nil {
		return h.respondError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) listRoomReservations(c echo.Context) error {
	reservations, err := h.reservations.GetReservationsByRoom(c.Request().Context(), c.Param("id"))
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(http.StatusOK, toReservationDTOs(reservations))
}
