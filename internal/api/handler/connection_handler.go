package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/crewlink/crewlink-api/internal/api/metrics"
	"github.com/crewlink/crewlink-api/internal/core/domain"
	"github.com/crewlink/crewlink-api/internal/core/ports"
)

// ConnectionHandler handles HTTP requests for the connection graph.
type ConnectionHandler struct {
	service ports.ConnectionService
}

func NewConnectionHandler(service ports.ConnectionService) *ConnectionHandler {
	return &ConnectionHandler{service: service}
}

type requestConnectionRequest struct {
	// To is either a user ID or a raw email address.
	To         string `json:"to" validate:"required"`
	Type       string `json:"connection_type" validate:"omitempty,oneof=f2f b2f f2b"`
	IsCoworker bool   `json:"is_coworker"`
}

type disconnectRequest struct {
	UserID string `json:"user_id" validate:"required"`
}

// Request handles POST /v1/connections.
//
// @Summary      Request a connection
// @Tags         connections
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      requestConnectionRequest  true  "Connection request"
// @Success      201   {object}  domain.Connection
// @Failure      409   {object}  errorResponse
// @Router       /v1/connections [post]
func (h *ConnectionHandler) Request(c echo.Context) error {
	var req requestConnectionRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	userID, err := ctxUserID(c)
	if err != nil {
		return err
	}

	conn, err := h.service.Request(c.Request().Context(), ports.ConnectionRequestInput{
		From:       domain.UserRef(userID),
		To:         domain.ParseIdentifier(req.To),
		Type:       req.Type,
		IsCoworker: req.IsCoworker,
	})
	if err != nil {
		return err
	}

	metrics.ConnectionsTotal.WithLabelValues(string(conn.Status)).Inc()
	return c.JSON(http.StatusCreated, conn)
}

// Accept handles POST /v1/connections/:id/accept.
//
// @Summary      Accept a pending connection
// @Tags         connections
// @Produce      json
// @Security     BearerAuth
// @Param        id  path      string  true  "Connection ID"
// @Success      200  {object}  domain.Connection
// @Failure      404  {object}  errorResponse
// @Failure      422  {object}  errorResponse
// @Router       /v1/connections/{id}/accept [post]
func (h *ConnectionHandler) Accept(c echo.Context) error {
	userID, err := ctxUserID(c)
	if err != nil {
		return err
	}

	conn, err := h.service.Accept(c.Request().Context(), c.Param("id"), userID)
	if err != nil {
		return err
	}

	metrics.ConnectionsTotal.WithLabelValues(string(conn.Status)).Inc()
	return c.JSON(http.StatusOK, conn)
}

// Disconnect handles POST /v1/connections/disconnect.
//
// @Summary      Disconnect from another user
// @Tags         connections
// @Accept       json
// @Security     BearerAuth
// @Param        body  body  disconnectRequest  true  "User to disconnect from"
// @Success      204
// @Router       /v1/connections/disconnect [post]
func (h *ConnectionHandler) Disconnect(c echo.Context) error {
	var req disconnectRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	userID, err := ctxUserID(c)
	if err != nil {
		return err
	}

	if err := h.service.Disconnect(c.Request().Context(), userID, req.UserID); err != nil {
		return err
	}

	metrics.ConnectionsTotal.WithLabelValues(string(domain.ConnectionDisconnected)).Inc()
	return c.NoContent(http.StatusNoContent)
}
