package handler

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/baf/identity-service/internal/core/ports"
)

// MemberHandler manages the members of the session's tenant.
type MemberHandler struct {
	memberService ports.MemberService
	authService   ports.AuthService
	secureCookie  bool
}

func NewMemberHandler(memberService ports.MemberService, authService ports.AuthService, secureCookie bool) *MemberHandler {
	return &MemberHandler{memberService: memberService, authService: authService, secureCookie: secureCookie}
}

// List returns the tenant's members.
//
// @Summary      List members
// @Tags         members
// @Produce      json
// @Security     SessionToken
// @Success      200  {array}   domain.Member
// @Failure      401  {object}  map[string]string
// @Router       /v1/members [get]
func (h *MemberHandler) List(c echo.Context) error {
	members, err := h.memberService.List(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, members)
}

// AllowedRoles lists the roles the caller may assign to a member.
//
// @Summary      Roles assignable to a member
// @Tags         members
// @Produce      json
// @Security     SessionToken
// @Param        user_id  path      string  true  "Member user id"
// @Success      200      {object}  allowedRolesResponse
// @Failure      403      {object}  map[string]string
// @Failure      404      {object}  map[string]string
// @Router       /v1/members/{user_id}/roles [get]
func (h *MemberHandler) AllowedRoles(c echo.Context) error {
	userID, err := pathUserID(c)
	if err != nil {
		return err
	}
	roles, err := h.memberService.AllowedRoles(c.Request().Context(), userID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, allowedRolesResponse{UserID: userID, Roles: roles})
}

// ChangeRole replaces a member's role.
//
// @Summary      Change a member's role
// @Tags         members
// @Accept       json
// @Security     SessionToken
// @Param        user_id  path  string             true  "Member user id"
// @Param        body     body  changeRoleRequest  true  "New role"
// @Success      204
// @Failure      400      {object}  map[string]string
// @Failure      403      {object}  map[string]string
// @Failure      404      {object}  map[string]string
// @Router       /v1/members/{user_id}/role [put]
func (h *MemberHandler) ChangeRole(c echo.Context) error {
	userID, err := pathUserID(c)
	if err != nil {
		return err
	}
	var req changeRoleRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	if err := h.memberService.ChangeRole(c.Request().Context(), userID, req.Role); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// Remove takes a member out of the tenant.
//
// @Summary      Remove a member
// @Tags         members
// @Security     SessionToken
// @Param        user_id  path  string  true  "Member user id"
// @Success      204
// @Failure      403      {object}  map[string]string
// @Failure      404      {object}  map[string]string
// @Router       /v1/members/{user_id} [delete]
func (h *MemberHandler) Remove(c echo.Context) error {
	userID, err := pathUserID(c)
	if err != nil {
		return err
	}
	if err := h.memberService.Remove(c.Request().Context(), userID); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// Leave takes the caller out of the tenant and ends the session, which is
// bound to that tenant.
//
// @Summary      Leave the current tenant
// @Tags         members
// @Security     SessionToken
// @Success      204
// @Failure      403  {object}  map[string]string
// @Router       /v1/tenant/leave [post]
func (h *MemberHandler) Leave(c echo.Context) error {
	sessionID, err := ctxSessionID(c)
	if err != nil {
		return err
	}
	if err := h.memberService.Leave(c.Request().Context()); err != nil {
		return err
	}
	if err := h.authService.Logout(c.Request().Context(), sessionID); err != nil {
		return err
	}

	c.SetCookie(sessionCookie("", time.Unix(0, 0), h.secureCookie))
	return c.NoContent(http.StatusNoContent)
}

func pathUserID(c echo.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("user_id"))
	if err != nil {
		return uuid.Nil, echo.NewHTTPError(http.StatusBadRequest, "user_id must be a uuid")
	}
	return id, nil
}
