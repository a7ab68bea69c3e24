package verificationHandler

import (
	verificationService "ProjectKYC/internal/api/verification/service"
	"ProjectKYC/internal/middleware"
	"ProjectKYC/pkg/utils"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/sirupsen/logrus"
)

type VerificationHandler struct {
	log                 *logrus.Logger
	validator           *validator.Validate
	middleware          middleware.Middleware
	verificationService verificationService.IVerificationService
	utils               utils.IUtils
}

func New(
	log *logrus.Logger,
	validator *validator.Validate,
	middleware middleware.Middleware,
	vs verificationService.IVerificationService,
	utils utils.IUtils,
) *VerificationHandler {
	return &VerificationHandler{
		verificationService: vs,
		log:                 log,
		validator:           validator,
		middleware:          middleware,
		utils:               utils,
	}
}

func (h *VerificationHandler) Start(srv fiber.Router) {
	wsMiddleware := func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	}

	validate := srv.Group("/validate")
	validate.Post("/kenyan-id", h.middleware.NewRateLimiter, h.ValidateKenyanID)
	validate.Post("/extract-text", h.middleware.NewRateLimiter, h.ExtractText)
	validate.Post("/face", h.middleware.NewRateLimiter, h.ValidateFace)
	validate.Post("/phone", h.middleware.NewRateLimiter, h.ValidatePhone)

	face := validate.Group("/face")
	face.Use("/ws", wsMiddleware)
	face.Get("/ws", websocket.New(h.handleFaceWebSocket))
}
