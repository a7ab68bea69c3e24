package config

import (
	"fmt"
	"os"

	verificationHandler "ProjectKYC/internal/api/verification/handler"
	verificationService "ProjectKYC/internal/api/verification/service"
	"ProjectKYC/internal/middleware"
	"ProjectKYC/pkg/face"
	"ProjectKYC/pkg/ocr"
	"ProjectKYC/pkg/phone"
	"ProjectKYC/pkg/s3"
	"ProjectKYC/pkg/utils"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type ServerOption func(*Server) error

type Server struct {
	engine         *fiber.App
	log            *logrus.Logger
	middleware     middleware.Middleware
	validator      *validator.Validate
	utils          utils.IUtils
	handlers       []handler
	ocrEngine      ocr.IOCREngine
	faceEngine     face.IFaceEngine
	phoneValidator phone.IPhone
	s3Client       s3.ItfS3
}

type handler interface {
	Start(srv fiber.Router)
}

func NewServer(options ...ServerOption) (*Server, error) {
	server := &Server{}

	for _, option := range options {
		if err := option(server); err != nil {
			return nil, fmt.Errorf("failed to apply option: %w", err)
		}
	}

	if server.engine == nil {
		return nil, fmt.Errorf("fiber app is required")
	}
	if server.log == nil {
		return nil, fmt.Errorf("logger is required")
	}

	return server, nil
}

func WithFiber(fiberApp *fiber.App) ServerOption {
	return func(s *Server) error {
		s.engine = fiberApp
		return nil
	}
}

func WithLogger(logger *logrus.Logger) ServerOption {
	return func(s *Server) error {
		s.log = logger
		return nil
	}
}

func WithValidator(validator *validator.Validate) ServerOption {
	return func(s *Server) error {
		s.validator = validator
		return nil
	}
}

func WithMiddleware() ServerOption {
	return func(s *Server) error {
		if s.log == nil {
			return fmt.Errorf("logger must be initialized before middleware")
		}
		s.middleware = middleware.New(s.log)
		return nil
	}
}

func WithOCREngine(engine ocr.IOCREngine) ServerOption {
	return func(s *Server) error {
		s.ocrEngine = engine
		return nil
	}
}

func WithFaceEngine(engine face.IFaceEngine) ServerOption {
	return func(s *Server) error {
		s.faceEngine = engine
		return nil
	}
}

func WithPhoneValidator(phoneValidator phone.IPhone) ServerOption {
	return func(s *Server) error {
		s.phoneValidator = phoneValidator
		return nil
	}
}

func WithS3Client() ServerOption {
	return func(s *Server) error {
		client, err := s3.New()
		if err != nil {
			if s.log != nil {
				s.log.Errorf("Failed to initialize S3 client: %v", err)
			}
			return fmt.Errorf("failed to create S3 client: %w", err)
		}
		s.s3Client = client
		return nil
	}
}

func WithUtils() ServerOption {
	return func(s *Server) error {
		s.utils = utils.New()
		return nil
	}
}

func (s *Server) RegisterHandler() {
	// Verification Domain
	verificationServices := verificationService.NewVerificationService(s.log, s.ocrEngine, s.faceEngine, s.phoneValidator, s.s3Client, s.utils)
	verificationHandlers := verificationHandler.New(s.log, s.validator, s.middleware, verificationServices, s.utils)

	s.setupHealthCheck()
	s.handlers = append(s.handlers, verificationHandlers)
}

func (s *Server) Run() error {
	router := s.engine.Group("/api/v1")
	s.engine.Use(s.middleware.NewRequestIDMiddleware())
	s.engine.Use(middleware.LoggerConfig())

	for _, h := range s.handlers {
		h.Start(router)
	}

	port := os.Getenv("APP_PORT")
	if port == "" {
		port = "3000"
	}

	return s.engine.Listen(fmt.Sprintf(":%s", port))
}

func (s *Server) setupHealthCheck() {
	healthy := func(ctx *fiber.Ctx) error {
		return ctx.JSON(fiber.Map{
			"message": "Server is Healthy!",
		})
	}
	s.engine.Get("/", healthy)
	s.engine.Get("/health", healthy)
}
