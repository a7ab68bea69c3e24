package verificationHandler

import (
	"encoding/base64"
	"time"

	"ProjectKYC/internal/api/verification"
	contextPkg "ProjectKYC/pkg/context"
	"ProjectKYC/pkg/handlerUtil"
	"ProjectKYC/pkg/log"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"golang.org/x/net/context"
)

// ExtractText runs OCR extraction alone. It accepts either a multipart
// upload ("image", optionally "image_back") or a JSON body carrying a
// base64 image.
func (h *VerificationHandler) ExtractText(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), 20*time.Second)
	defer cancel()

	errHandler := handlerUtil.New(h.log)

	h.log.WithFields(log.Fields{
		"request_id": requestID,
		"path":       ctx.Path(),
	}).Debug("Processing text extraction request")

	var front, back []byte

	if _, err := ctx.FormFile("image"); err == nil {
		front, err = h.readImageFile(ctx, "image")
		if err != nil {
			return errHandler.Handle(ctx, requestID, err, ctx.Path(), "read_image")
		}

		if _, err := ctx.FormFile("image_back"); err == nil {
			back, err = h.readImageFile(ctx, "image_back")
			if err != nil {
				return errHandler.Handle(ctx, requestID, err, ctx.Path(), "read_image_back")
			}
		}
	} else {
		var req verification.ExtractTextRequest
		if err := ctx.BodyParser(&req); err != nil {
			return errHandler.Handle(ctx, requestID, err, ctx.Path(), "parse_request_body")
		}

		if err := h.validator.Struct(req); err != nil {
			return errHandler.HandleValidationError(ctx, requestID, err, ctx.Path())
		}

		front, err = base64.StdEncoding.DecodeString(req.ImageBase64)
		if err != nil {
			return errHandler.Handle(ctx, requestID, verification.ErrUnreadableImage, ctx.Path(), "decode_base64")
		}
	}

	extracted := h.verificationService.ExtractIdentity(c, front, back)

	select {
	case <-c.Done():
		return errHandler.HandleRequestTimeout(ctx)
	default:
		h.log.WithFields(log.Fields{
			"request_id": requestID,
			"path":       ctx.Path(),
			"doc_type":   extracted.DocumentType,
		}).Info("Text extraction completed")
		return errHandler.HandleSuccess(ctx, fiber.StatusOK, verification.ExtractTextResponse{
			Data: *extracted,
		})
	}
}

// ValidateFace compares the faces in two uploaded images.
func (h *VerificationHandler) ValidateFace(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), 20*time.Second)
	defer cancel()

	errHandler := handlerUtil.New(h.log)

	h.log.WithFields(log.Fields{
		"request_id": requestID,
		"path":       ctx.Path(),
	}).Debug("Processing face validation request")

	image1, err := h.readImageFile(ctx, "image1")
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "read_image1")
	}
	image2, err := h.readImageFile(ctx, "image2")
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "read_image2")
	}

	result := h.verificationService.CompareFaces(c, image1, image2)

	select {
	case <-c.Done():
		return errHandler.HandleRequestTimeout(ctx)
	default:
		h.log.WithFields(log.Fields{
			"request_id": requestID,
			"path":       ctx.Path(),
			"is_match":   result.IsMatch,
		}).Info("Face validation completed")
		return errHandler.HandleSuccess(ctx, fiber.StatusOK, verification.FaceValidationResponse{
			Data: *result,
		})
	}
}

// ValidatePhone normalizes and validates a phone number on its own.
func (h *VerificationHandler) ValidatePhone(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)

	errHandler := handlerUtil.New(h.log)

	var req verification.ValidatePhoneRequest
	if err := ctx.BodyParser(&req); err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "parse_request_body")
	}

	if err := h.validator.Struct(req); err != nil {
		return errHandler.HandleValidationError(ctx, requestID, err, ctx.Path())
	}

	result, err := h.verificationService.ValidatePhone(req.PhoneNumber, req.Region)
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "validate_phone")
	}

	h.log.WithFields(log.Fields{
		"request_id": requestID,
		"path":       ctx.Path(),
		"is_valid":   result.IsValid,
	}).Info("Phone validation completed")
	return errHandler.HandleSuccess(ctx, fiber.StatusOK, verification.ValidatePhoneResponse{
		Data: *result,
	})
}

func (h *VerificationHandler) handleFaceWebSocket(c *websocket.Conn) {
	h.log.Info("Face detection WebSocket client connected")
	defer h.log.Info("Face detection WebSocket client disconnected")

	c.SetPingHandler(func(data string) error {
		h.log.Debug("Received ping, sending pong")
		if err := c.WriteControl(websocket.PongMessage, []byte(data), time.Now().Add(5*time.Second)); err != nil {
			h.log.Errorf("Error sending pong: %v", err)
		}
		return nil
	})

	maxReadTimeout := 60 * time.Second

	for {
		if err := c.SetReadDeadline(time.Now().Add(maxReadTimeout)); err != nil {
			h.log.Errorf("Error setting read deadline: %v", err)
			break
		}

		messageType, message, err := c.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				h.log.Errorf("Face WebSocket error: %v", err)
			} else {
				h.log.Info("Face WebSocket connection closed")
			}
			break
		}

		if messageType == websocket.BinaryMessage {
			result := h.verificationService.DetectFaces(message)

			if err := c.SetWriteDeadline(time.Now().Add(10 * time.Second)); err != nil {
				h.log.Errorf("Error setting write deadline: %v", err)
				break
			}

			if err := c.WriteJSON(result); err != nil {
				h.log.Errorf("Error writing JSON response: %v", err)
				break
			}

			if err := c.SetWriteDeadline(time.Time{}); err != nil {
				h.log.Errorf("Error resetting write deadline: %v", err)
				break
			}
		} else {
			h.log.Warnf("Received unexpected message type: %d", messageType)
		}
	}
}
