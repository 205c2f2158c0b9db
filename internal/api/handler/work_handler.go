package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/crewlink/crewlink-api/internal/api/metrics"
	"github.com/crewlink/crewlink-api/internal/core/domain"
	"github.com/crewlink/crewlink-api/internal/core/ports"
)

// WorkHandler handles HTTP requests for work records, coworker invites, and
// event membership.
type WorkHandler struct {
	works      ports.WorkService
	membership ports.MembershipService
}

func NewWorkHandler(works ports.WorkService, membership ports.MembershipService) *WorkHandler {
	return &WorkHandler{works: works, membership: membership}
}

// --- Request / Response types ---

type createWorkRequest struct {
	Title        string    `json:"title" validate:"required,max=200"`
	Role         string    `json:"role" validate:"required,max=100"`
	Caption      string    `json:"caption" validate:"max=2000"`
	From         time.Time `json:"from" validate:"required"`
	To           time.Time `json:"to" validate:"required"`
	Photos       []string  `json:"photos" validate:"max=20"`
	PinToProfile bool      `json:"pin_to_profile"`
	Coworkers    []string  `json:"coworkers" validate:"max=50,dive,required"`
}

type createWorkResponse struct {
	Work        *domain.WorkRecord `json:"work"`
	InvitesSent int                `json:"invites_sent"`
}

type acceptInviteRequest struct {
	Token string `json:"token" validate:"required"`
}

type verifyCoworkerRequest struct {
	CoworkerID string `json:"coworker_id" validate:"required"`
	Slug       string `json:"slug" validate:"required"`
}

type membershipResponse struct {
	Members []memberView `json:"members"`
}

type memberView struct {
	ID             string `json:"id"`
	Role           string `json:"role,omitempty"`
	Classification string `json:"classification"`
}

// Create handles POST /v1/works.
//
// @Summary      Log a work record and tag coworkers
// @Tags         works
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createWorkRequest  true  "Work record details"
// @Success      201   {object}  createWorkResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /v1/works [post]
func (h *WorkHandler) Create(c echo.Context) error {
	var req createWorkRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	ownerID, err := ctxUserID(c)
	if err != nil {
		return err
	}

	result, err := h.works.CreateWork(c.Request().Context(), ports.CreateWorkInput{
		OwnerID:      ownerID,
		Title:        req.Title,
		Role:         req.Role,
		Caption:      req.Caption,
		From:         req.From,
		To:           req.To,
		Photos:       req.Photos,
		PinToProfile: req.PinToProfile,
		Coworkers:    req.Coworkers,
	})
	if err != nil {
		return err
	}

	metrics.InvitesIssuedTotal.Add(float64(result.InvitesSent))

	return c.JSON(http.StatusCreated, createWorkResponse{
		Work:        result.Work,
		InvitesSent: result.InvitesSent,
	})
}

// AcceptInvite handles POST /v1/works/invites/accept.
//
// @Summary      Redeem a coworker invite token
// @Tags         works
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      acceptInviteRequest  true  "Invite token"
// @Success      201   {object}  domain.WorkRecord
// @Failure      400   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Router       /v1/works/invites/accept [post]
func (h *WorkHandler) AcceptInvite(c echo.Context) error {
	var req acceptInviteRequest
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

	work, err := h.works.AcceptInvite(c.Request().Context(), req.Token, userID)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidToken):
			metrics.InvitesRedeemedTotal.WithLabelValues("invalid").Inc()
		case errors.Is(err, domain.ErrTokenConsumed):
			metrics.InvitesRedeemedTotal.WithLabelValues("consumed").Inc()
		}
		return err
	}

	metrics.InvitesRedeemedTotal.WithLabelValues("accepted").Inc()
	return c.JSON(http.StatusCreated, work)
}

// Membership handles GET /v1/works/:id/membership.
//
// @Summary      Reconcile event membership for a work record
// @Tags         works
// @Produce      json
// @Security     BearerAuth
// @Param        id  path      string  true  "Work record ID"
// @Success      200  {object}  membershipResponse
// @Failure      404  {object}  errorResponse
// @Router       /v1/works/{id}/membership [get]
func (h *WorkHandler) Membership(c echo.Context) error {
	if _, err := ctxUserID(c); err != nil {
		return err
	}

	members, err := h.membership.ReconcileEventMembership(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}

	views := make([]memberView, 0, len(members))
	for _, m := range members {
		metrics.MembershipClassifiedTotal.WithLabelValues(string(m.Class)).Inc()
		views = append(views, memberView{
			ID:             m.ID.String(),
			Role:           m.Role,
			Classification: string(m.Class),
		})
	}

	return c.JSON(http.StatusOK, membershipResponse{Members: views})
}

// Verify handles POST /v1/works/:id/verify.
//
// @Summary      Verify a coworker on a work record
// @Tags         works
// @Accept       json
// @Security     BearerAuth
// @Param        id    path  string                 true  "Work record ID"
// @Param        body  body  verifyCoworkerRequest  true  "Coworker to verify"
// @Success      204
// @Failure      404  {object}  errorResponse
// @Router       /v1/works/{id}/verify [post]
func (h *WorkHandler) Verify(c echo.Context) error {
	var req verifyCoworkerRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	verifierID, err := ctxUserID(c)
	if err != nil {
		return err
	}

	err = h.membership.VerifyCoworker(c.Request().Context(), c.Param("id"), req.CoworkerID, verifierID, req.Slug)
	if err != nil {
		return err
	}

	metrics.VerificationsTotal.Inc()
	return c.NoContent(http.StatusNoContent)
}
