package service

import (
	"pulse-companion-be/internal/pkg/serverutils"

	"github.com/gofiber/fiber/v2"
)

// Domain errors carry their HTTP status; compare with errors.Is.
var (
	ErrPatientNotFound     = serverutils.NewHTTPError(fiber.StatusNotFound, "Patient not found")
	ErrPatientExists       = serverutils.NewHTTPError(fiber.StatusConflict, "Patient ID already exists")
	ErrNoVitals            = serverutils.NewHTTPError(fiber.StatusNotFound, "No vitals found")
	ErrNoLiveVitals        = serverutils.NewHTTPError(fiber.StatusNotFound, "No live vitals for patient")
	ErrDetectorUnavailable = serverutils.NewHTTPError(fiber.StatusServiceUnavailable, "Face detection is not available")
)
