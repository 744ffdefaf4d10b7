package resilience

import (
	"fmt"
	"strings"
)

type RiskLevel string

const (
	RiskLow     RiskLevel = "LOW"
	RiskMedium  RiskLevel = "MEDIUM"
	RiskHigh    RiskLevel = "HIGH"
	RiskUnknown RiskLevel = "UNKNOWN"
)

// CannedMessage is a fixed reply used when no model can answer.
type CannedMessage struct {
	Type                 string `json:"type"`
	Message              string `json:"message"`
	Action               string `json:"action,omitempty"`
	UICard               string `json:"ui_card,omitempty"`
	ShouldAlertClinician bool   `json:"should_alert_clinician"`
}

var (
	EmergencyContact = CannedMessage{
		Type:                 "emergency_fallback",
		Message:              "I'm having trouble processing right now, but I hear that you may be in distress. Please contact a human caregiver or call emergency services if you need immediate help.",
		Action:               "show_emergency_contacts",
		UICard:               "emergency_contact",
		ShouldAlertClinician: true,
	}

	NeutralFallback = CannedMessage{
		Type:    "neutral_fallback",
		Message: "I'm here with you. Tell me more about how you're feeling today.",
	}
)

// VitalFallback is the heart-rate band reply used when the cascade bottoms out.
type VitalFallback struct {
	RiskLevel            RiskLevel `json:"risk_level"`
	Message              string    `json:"message"`
	Action               string    `json:"action,omitempty"`
	ShouldFollowUp       bool      `json:"should_follow_up"`
	ShouldAlertClinician bool      `json:"should_alert_clinician"`
}

func firstName(name string) string {
	fields := strings.Fields(name)
	if len(fields) == 0 || name == "there" {
		return "there"
	}
	return fields[0]
}

// GreetingFallback is the greeting used when the model cannot produce one.
func GreetingFallback(patientName string, calibrating bool) string {
	name := firstName(patientName)
	if calibrating {
		return fmt.Sprintf("Hi %s! I'm checking your vitals now. While I calibrate, how have you been feeling since this morning?", name)
	}
	return fmt.Sprintf("Hello %s! It's good to see you. How are you feeling today?", name)
}

// VitalResponseFallback classifies heart rate into <60, 60-100, 100-120 and >120 bpm bands.
func VitalResponseFallback(heartRate float64, patientName string) VitalFallback {
	name := firstName(patientName)
	bpm := int(heartRate)

	switch {
	case heartRate >= 60 && heartRate <= 100:
		return VitalFallback{
			RiskLevel: RiskLow,
			Message:   fmt.Sprintf("Good news, %s! Your heart rate is %d bpm, which looks healthy. Keep taking care of yourself!", name, bpm),
		}
	case heartRate < 60:
		return VitalFallback{
			RiskLevel:      RiskMedium,
			Message:        fmt.Sprintf("I'm seeing your heart rate at %d bpm, which is a bit low. Are you feeling lightheaded or dizzy at all?", bpm),
			Action:         "ask_followup",
			ShouldFollowUp: true,
		}
	case heartRate <= 120:
		return VitalFallback{
			RiskLevel:      RiskMedium,
			Message:        fmt.Sprintf("I'm seeing your heart rate at %d bpm. Have you been active recently, or had any caffeine? Let's take a moment to relax together.", bpm),
			Action:         "breathing_exercise",
			ShouldFollowUp: true,
		}
	default:
		return VitalFallback{
			RiskLevel:            RiskHigh,
			Message:              fmt.Sprintf("Your heart rate is reading at %d bpm, which is elevated. Are you experiencing any chest pain or shortness of breath?", bpm),
			Action:               "clinical_alert",
			ShouldFollowUp:       true,
			ShouldAlertClinician: true,
		}
	}
}

var icebreakerQuestions = []string{
	"How did you sleep last night?",
	"Have you been drinking enough water today?",
	"How's your energy level feeling right now?",
	"Have you had any discomfort or pain today?",
	"What's been on your mind lately?",
	"Did you eat breakfast this morning?",
	"How would you rate your stress level today, from 1 to 10?",
	"Have you been able to get any movement or exercise in?",
}

// IcebreakerQuestion rotates through calibration small talk.
func IcebreakerQuestion(index int) string {
	n := len(icebreakerQuestions)
	return icebreakerQuestions[((index%n)+n)%n]
}

const (
	SensorROIFailed         = "roi_failed"
	SensorFaceNotDetected   = "face_not_detected"
	SensorCalibrationFailed = "calibration_failed"
	SensorVoiceOnly         = "voice_only_mode"
	SensorCameraUnavailable = "camera_unavailable"
)

var sensorMessages = map[string]string{
	SensorROIFailed:         "I'm having trouble seeing you clearly. Could you please move to an area with better lighting?",
	SensorFaceNotDetected:   "I can't quite see your face. Could you adjust your camera so I can see you better?",
	SensorCalibrationFailed: "The calibration didn't complete successfully. Let's try again - please stay still for a moment.",
	SensorVoiceOnly:         "I'm switching to voice-only mode. I can still chat with you, but won't be able to measure your vitals right now.",
	SensorCameraUnavailable: "I can't access your camera right now. Would you like to continue with just a voice check-in?",
}

func SensorMessage(kind string) (string, bool) {
	msg, ok := sensorMessages[kind]
	return msg, ok
}

var patientExplanations = map[RiskLevel]string{
	RiskLow:     "Great news! Your vitals look healthy today. Keep up whatever you're doing - it's working!",
	RiskMedium:  "Your readings are a little different than usual. This isn't necessarily a concern, but let's keep an eye on things. How have you been feeling?",
	RiskHigh:    "I noticed some changes in your readings that I'd like to flag for your care team. Don't worry - this is just to make sure you get the attention you need. How are you feeling right now?",
	RiskUnknown: "We couldn't complete the full analysis right now. Please try again, or contact your care team if you have any concerns.",
}

// PatientExplanation is the plain-language summary for a risk level.
func PatientExplanation(level RiskLevel) string {
	if msg, ok := patientExplanations[level]; ok {
		return msg
	}
	return patientExplanations[RiskUnknown]
}
