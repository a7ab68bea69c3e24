package main

import (
	"os"
	"os/signal"
	"syscall"

	"ProjectKYC/internal/config"
	"ProjectKYC/pkg/face"
	"ProjectKYC/pkg/log"
	"ProjectKYC/pkg/ocr"
	"ProjectKYC/pkg/phone"
	"github.com/joho/godotenv"
)

func main() {
	logger := log.NewLogger()
	if err := godotenv.Load(); err != nil {
		logger.Warnf("No .env file loaded: %v", err)
	}

	fiberApp := config.NewFiber(logger)
	validator := config.NewValidator()
	ocrEngine := ocr.NewClient()
	faceEngine := face.NewClient()
	phoneValidator := phone.New()

	server, err := config.NewServer(
		config.WithFiber(fiberApp),
		config.WithLogger(logger),
		config.WithValidator(validator),
		config.WithOCREngine(ocrEngine),
		config.WithFaceEngine(faceEngine),
		config.WithPhoneValidator(phoneValidator),
		config.WithMiddleware(),
		config.WithS3Client(),
		config.WithUtils(),
	)
	if err != nil {
		logger.Fatal(err)
	}

	server.RegisterHandler()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := server.Run(); err != nil {
			logger.Fatalf("Error starting server: %v", err)
		}
	}()

	logger.Info("Server started successfully")

	<-sigChan
	logger.Info("Shutting down server...")

	ocrEngine.Close()
	faceEngine.Close()
}
