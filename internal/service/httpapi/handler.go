// Package httpapi публикует сервисы бронирования как JSON REST API поверх Echo.
package httpapi

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/roombooking/internal/domain"
	"github.com/vladislavdragonenkov/roombooking/internal/service/booking"
)

// Handler связывает HTTP-маршруты с сервисами бронирования.
type Handler struct {
	rooms        *booking.RoomService
	students     *booking.StudentService
	reservations *booking.ReservationService
	clock        domain.Clock
	logger       *log.Entry
}

// Option настраивает Handler.
type Option func(*Handler)

// WithLogger задаёт логгер обработчиков.
func WithLogger(logger *log.Entry) Option {
	return func(h *Handler) {
		if logger != nil {
			h.logger = logger
		}
	}
}

// WithClock задаёт часы для отметки времени в выгрузках.
func WithClock(clock domain.Clock) Option {
	return func(h *Handler) {
		if clock != nil {
			h.clock = clock
		}
	}
}

// NewHandler конструирует обработчики поверх трёх сервисов.
func NewHandler(
	rooms *booking.RoomService,
	students *booking.StudentService,
	reservations *booking.ReservationService,
	opts ...Option,
) *Handler {
	h := &Handler{
		rooms:        rooms,
		students:     students,
		reservations: reservations,
		clock:        domain.SystemClock{},
		logger:       log.WithField("component", "http-api"),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// NewServer создаёт Echo с middleware восстановления и журналом запросов.
func NewServer(h *Handler) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = h.handleEchoError

	e.Use(middleware.Recover())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:  true,
		LogURI:     true,
		LogStatus:  true,
		LogLatency: true,
		LogValuesFunc: func(_ echo.Context, v middleware.RequestLoggerValues) error {
			h.logger.WithFields(log.Fields{
				"method":  v.Method,
				"uri":     v.URI,
				"status":  v.Status,
				"latency": v.Latency.String(),
			}).Debug("http request")
			return nil
		},
	}))

	h.Register(e)
	return e
}

// Register регистрирует маршруты /v1.
func (h *Handler) Register(e *echo.Echo) {
	v1 := e.Group("/v1")

	v1.POST("/rooms", h.addRoom)
	v1.GET("/rooms", h.listRooms)
	v1.GET("/rooms/:id", h.getRoom)
	v1.DELETE("/rooms/:id", h.deleteRoom)
	v1.GET("/rooms/:id/reservations", h.listRoomReservations)

	v1.POST("/students", h.registerStudent)
	v1.GET("/students", h.listStudents)
	v1.GET("/students/:id", h.getStudent)
	v1.DELETE("/students/:id", h.deleteStudent)
	v1.GET("/students/:id/reservations", h.listStudentReservations)
	v1.GET("/students/:id/bookings", h.listStudentBookings)

	v1.POST("/reservations", h.createReservation)
	v1.GET("/reservations", h.listReservations)
	v1.GET("/reservations/export", h.exportReservations)
	v1.PUT("/reservations/:id", h.updateReservation)
	v1.DELETE("/reservations/:id", h.deleteReservation)
	v1.GET("/reservations/:id/history", h.reservationHistory)
}

type errorResponse struct {
	Error string `json:"error"`
}

// respondError переводит ошибку сервиса в HTTP-ответ: нарушение бизнес-правила даёт 400,
// всё остальное 500 без подробностей.
func (h *Handler) respondError(c echo.Context, err error) error {
	if domain.IsInvalidArgument(err) {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
	}

	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		return c.JSON(httpErr.Code, errorResponse{Error: http.StatusText(httpErr.Code)})
	}

	h.logger.WithError(err).WithField("path", c.Path()).Error("request failed")
	return c.JSON(http.StatusInternalServerError, errorResponse{Error: "internal error"})
}

func (h *Handler) handleEchoError(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	if respErr := h.respondError(c, err); respErr != nil {
		h.logger.WithError(respErr).Warn("failed to write error response")
	}
}

func badRequest(c echo.Context, message string) error {
	return c.JSON(http.StatusBadRequest, errorResponse{Error: message})
}

func notFound(c echo.Context, message string) error {
	return c.JSON(http.StatusNotFound, errorResponse{Error: message})
}

type roomDTO struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Capacity int    `json:"capacity"`
}

type studentDTO struct {
	ID        string `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

type reservationDTO struct {
	ID        string       `json:"id"`
	Room      roomDTO      `json:"room"`
	Students  []studentDTO `json:"students"`
	StartTime time.Time    `json:"start_time"`
	EndTime   time.Time    `json:"end_time"`
}

type historyDTO struct {
	ReservationID string    `json:"reservation_id"`
	Type          string    `json:"type"`
	Reason        string    `json:"reason,omitempty"`
	Occurred      time.Time `json:"occurred"`
}

func toRoomDTO(room domain.Room) roomDTO {
	return roomDTO{ID: room.ID, Name: room.Name, Capacity: room.Capacity}
}

func toStudentDTO(student domain.Student) studentDTO {
	return studentDTO{ID: student.ID, FirstName: student.FirstName, LastName: student.LastName}
}

func toReservationDTO(res domain.Reservation) reservationDTO {
	students := make([]studentDTO, 0, len(res.Students))
	for _, student := range res.Students {
		students = append(students, toStudentDTO(student))
	}
	return reservationDTO{
		ID:        res.ID,
		Room:      toRoomDTO(res.Room),
		Students:  students,
		StartTime: res.StartTime.UTC(),
		EndTime:   res.EndTime.UTC(),
	}
}

func toReservationDTOs(reservations []domain.Reservation) []reservationDTO {
	out := make([]reservationDTO, 0, len(reservations))
	for _, res := range reservations {
		out = append(out, toReservationDTO(res))
	}
	return out
}
