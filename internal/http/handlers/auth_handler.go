package handlers

import (
	"voltcart/internal/apperr"
	"voltcart/internal/http/api"
	"voltcart/internal/log"
	"voltcart/internal/services"
	"voltcart/internal/validate"

	"github.com/gofiber/fiber/v2"
)

type AuthHandler struct {
	Auth *services.AuthService
	Log  *log.Logger
}

// POST /api/auth/login
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	in, err := api.ParseBody(c, validate.ValidateAdminLogin)
	if err != nil {
		return err
	}
	sess, err := h.Auth.SignIn(c.UserContext(), in.Email, in.Password)
	if err != nil {
		if apperr.IsKind(err, apperr.KindAuthentication) {
			h.Log.AuthAttempt(c, in.Email, false, "invalid_credentials")
		}
		return err
	}
	c.Locals(log.UserIDLocal, sess.User.ID)
	h.Log.AuthAttempt(c, in.Email, true, "")
	return api.Success(c, fiber.StatusOK, fiber.Map{
		"session": sess,
		"isAdmin": h.Auth.IsAdmin(sess.User),
	}, "Signed in successfully")
}

// POST /api/auth/logout
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	token, _ := api.BearerToken(c)
	if err := h.Auth.SignOut(c.UserContext(), token); err != nil {
		return err
	}
	h.Log.Audit(c, "auth.logout", nil)
	return api.Success(c, fiber.StatusOK, nil, "Signed out successfully")
}

// GET /api/auth/session
func (h *AuthHandler) Session(c *fiber.Ctx) error {
	token, _ := api.BearerToken(c)
	sess, err := h.Auth.GetSession(c.UserContext(), token)
	if err != nil {
		return err
	}
	if sess == nil {
		return api.Success(c, fiber.StatusOK, fiber.Map{"session": nil, "isAdmin": false}, "No active session")
	}
	return api.Success(c, fiber.StatusOK, fiber.Map{
		"session": sess,
		"isAdmin": h.Auth.IsAdmin(sess.User),
	}, "Session retrieved successfully")
}
