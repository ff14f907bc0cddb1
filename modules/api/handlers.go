package api

import (
	"errors"
	"log"

	"github.com/example/farm-market/modules/market"
	"github.com/example/farm-market/modules/navigation"
	"github.com/example/farm-market/modules/notification"
	"github.com/example/farm-market/modules/storage"
	"github.com/gofiber/fiber/v2"
)

// Handlers contains HTTP handlers for the API.
type Handlers struct {
	market        market.MarketPort
	notifications notification.NotificationPort
	schema        storage.SchemaPort
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(marketPort market.MarketPort, notifications notification.NotificationPort, schema storage.SchemaPort) *Handlers {
	return &Handlers{
		market:        marketPort,
		notifications: notifications,
		schema:        schema,
	}
}

// rejectionStatus maps rejection codes to HTTP statuses.
var rejectionStatus = map[string]int{
	market.CodeValidationFailed:  fiber.StatusUnprocessableEntity,
	market.CodeInvalidNumber:     fiber.StatusUnprocessableEntity,
	market.CodeInvalidTransition: fiber.StatusConflict,
	market.CodeNotFound:          fiber.StatusNotFound,
	market.CodeSessionNotFound:   fiber.StatusNotFound,
	market.CodeInvalidToken:      fiber.StatusUnauthorized,
	market.CodeBadRequest:        fiber.StatusBadRequest,
}

func (h *Handlers) handleError(c *fiber.Ctx, err error) error {
	var rejection *market.RejectionError
	if errors.As(err, &rejection) {
		status, ok := rejectionStatus[rejection.Code]
		if !ok {
			status = fiber.StatusBadRequest
		}
		return c.Status(status).JSON(ErrorResponse{
			Error:   rejection.Code,
			Message: rejection.Message,
		})
	}

	log.Printf("[api] Internal error: %v", err)
	return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
		Error:   "internal_error",
		Message: "An internal error occurred",
	})
}

func badRequest(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
		Error:   "bad_request",
		Message: "Invalid request body",
	})
}

func sessionID(c *fiber.Ctx) string {
	id, _ := c.Locals(SessionContextKey).(string)
	return id
}

// CreateSession starts an anonymous session on the login choice screen.
func (h *Handlers) CreateSession(c *fiber.Ctx) error {
	resp, err := h.market.CreateSession(c.UserContext())
	if err != nil {
		return h.handleError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(SessionTokenResponse{
		Token:     resp.Token,
		TokenType: "Bearer",
		ExpiresIn: resp.ExpiresIn,
		Session:   resp.Session,
	})
}

// GetSession returns the current view of the caller's session.
func (h *Handlers) GetSession(c *fiber.Ctx) error {
	snap, err := h.market.GetSession(c.UserContext(), sessionID(c))
	if err != nil {
		return h.handleError(c, err)
	}
	return c.JSON(snap)
}

// ApplyIntent applies any intent to the caller's session.
func (h *Handlers) ApplyIntent(c *fiber.Ctx) error {
	var intent navigation.Intent
	if err := c.BodyParser(&intent); err != nil {
		return badRequest(c)
	}
	if intent.Type == "" {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Error:   "bad_request",
			Message: "Intent type is required",
		})
	}

	snap, err := h.market.ApplyIntent(c.UserContext(), sessionID(c), intent)
	if err != nil {
		return h.handleError(c, err)
	}
	return c.JSON(snap)
}

// Login submits the login form, choosing the role first when the session is
// still on the login choice screen.
func (h *Handlers) Login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c)
	}

	ctx := c.UserContext()
	id := sessionID(c)

	snap, err := h.market.GetSession(ctx, id)
	if err != nil {
		return h.handleError(c, err)
	}
	chose := false
	if snap.View == navigation.ViewLoginChoice {
		if _, err := h.market.ApplyIntent(ctx, id, navigation.ChooseRole(req.Role)); err != nil {
			return h.handleError(c, err)
		}
		chose = true
	}

	snap, err = h.market.ApplyIntent(ctx, id, navigation.SubmitLogin(req.LoginForm))
	if err != nil {
		if chose {
			// Leave the session where the request found it.
			if _, backErr := h.market.ApplyIntent(ctx, id, navigation.Back()); backErr != nil {
				log.Printf("[api] Warning: failed to return session %s to login choice: %v", id, backErr)
			}
		}
		return h.handleError(c, err)
	}
	return c.JSON(snap)
}

// Signup submits the sign-up form, opening it first when the session is on
// the login choice screen.
func (h *Handlers) Signup(c *fiber.Ctx) error {
	var req SignupRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c)
	}

	ctx := c.UserContext()
	id := sessionID(c)

	snap, err := h.market.GetSession(ctx, id)
	if err != nil {
		return h.handleError(c, err)
	}
	if snap.View == navigation.ViewLoginChoice {
		if _, err := h.market.ApplyIntent(ctx, id, navigation.OpenSignup()); err != nil {
			return h.handleError(c, err)
		}
	}

	snap, err = h.market.ApplyIntent(ctx, id, navigation.SubmitSignup(req.SignupForm, req.Role))
	if err != nil {
		return h.handleError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(snap)
}

// ListProducts lists the catalog, or one farmer's products with ?farmer_id=.
func (h *Handlers) ListProducts(c *fiber.Ctx) error {
	resp, err := h.market.ListProducts(c.UserContext(), c.Query("farmer_id"))
	if err != nil {
		return h.handleError(c, err)
	}
	return c.JSON(resp)
}

// ListNotifications returns recorded event notices, newest last.
func (h *Handlers) ListNotifications(c *fiber.Ctx) error {
	resp, err := h.notifications.List(c.UserContext(), c.QueryInt("limit", 0))
	if err != nil {
		return h.handleError(c, err)
	}
	return c.JSON(resp)
}

// SchemaInfo reports the tables created at startup.
func (h *Handlers) SchemaInfo(c *fiber.Ctx) error {
	resp, err := h.schema.SchemaInfo(c.UserContext())
	if err != nil {
		return h.handleError(c, err)
	}
	return c.JSON(resp)
}
