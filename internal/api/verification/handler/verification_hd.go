package verificationHandler

import (
	"mime/multipart"
	"time"

	"ProjectKYC/internal/api/verification"
	contextPkg "ProjectKYC/pkg/context"
	"ProjectKYC/pkg/handlerUtil"
	"ProjectKYC/pkg/log"
	"github.com/gofiber/fiber/v2"
	"golang.org/x/net/context"
)

// ValidateKenyanID is the composite verification endpoint: multipart form
// with the claimed identity and three images, one verdict out. A failed
// verification is still a 200 with is_verified=false.
func (h *VerificationHandler) ValidateKenyanID(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), 30*time.Second)
	defer cancel()

	errHandler := handlerUtil.New(h.log)

	h.log.WithFields(log.Fields{
		"request_id": requestID,
		"path":       ctx.Path(),
	}).Debug("Processing Kenyan ID verification request")

	req := verification.ValidateKenyanIDRequest{
		Name:        ctx.FormValue("name"),
		IDNumber:    ctx.FormValue("id_number"),
		PhoneNumber: ctx.FormValue("phone_number"),
	}
	if err := h.validator.Struct(req); err != nil {
		return errHandler.HandleValidationError(ctx, requestID, err, ctx.Path())
	}

	selfie, err := h.readImageFile(ctx, "selfie")
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "read_selfie")
	}
	idFront, err := h.readImageFile(ctx, "id_front")
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "read_id_front")
	}
	idBack, err := h.readImageFile(ctx, "id_back")
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "read_id_back")
	}

	verdict, err := h.verificationService.VerifyKenyanID(c, verification.Submission{
		Name:        req.Name,
		IDNumber:    req.IDNumber,
		PhoneNumber: req.PhoneNumber,
		Selfie:      selfie,
		IDFront:     idFront,
		IDBack:      idBack,
	})
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "verify_kenyan_id")
	}

	select {
	case <-c.Done():
		return errHandler.HandleRequestTimeout(ctx)
	default:
		h.log.WithFields(log.Fields{
			"request_id":  requestID,
			"path":        ctx.Path(),
			"is_verified": verdict.IsVerified,
		}).Info("Kenyan ID verification completed")
		return errHandler.HandleSuccess(ctx, fiber.StatusOK, verdict)
	}
}

// readImageFile fetches one uploaded image from the multipart form and
// returns its raw bytes. Missing or non-image uploads are input errors.
func (h *VerificationHandler) readImageFile(ctx *fiber.Ctx, field string) ([]byte, error) {
	file, err := ctx.FormFile(field)
	if err != nil {
		return nil, verification.ErrMissingRequiredField
	}

	if err := h.utils.ValidateImageFile(file); err != nil {
		h.log.WithFields(log.Fields{
			"path":      ctx.Path(),
			"field":     field,
			"file_name": file.Filename,
			"file_size": file.Size,
			"error":     err.Error(),
		}).Warn("Rejected uploaded file")
		return nil, verification.ErrInvalidImageFile
	}

	fileContent, err := file.Open()
	if err != nil {
		return nil, err
	}
	defer func(src multipart.File) {
		if err := src.Close(); err != nil {
			h.log.Warnf("Failed to close uploaded file: %v", err)
		}
	}(fileContent)

	return h.utils.ReadFileBytes(fileContent)
}
