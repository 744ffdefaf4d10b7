package gatekeeper

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

type Intent string

const (
	IntentHealthCheck Intent = "health_check"
	IntentCasualChat  Intent = "casual_chat"
	IntentEmergency   Intent = "emergency"
	IntentOutOfScope  Intent = "out_of_scope"
	IntentUnknown     Intent = "unknown"
)

const (
	MaxInputLength = 1000

	OutOfScopeMessage = "I'm your health companion, so I'm best at helping with health-related questions. Is there anything about how you're feeling that I can help with?"
	InjectionMessage  = "I'm here to help with your health check-in. How are you feeling today?"

	ActionLogSecurityEvent = "log_security_event"

	FlagSanitized         = "was_sanitized"
	FlagTruncated         = "was_truncated"
	FlagInjectionDetected = "injection_detected"
	FlagEmergency         = "emergency_flagged"
)

var injectionPatterns = []string{
	`ignore (?:all )?(?:previous |prior )?instructions?`,
	`disregard (?:all )?(?:previous |prior )?(?:instructions?|prompts?)`,
	`forget (?:everything|all|your) (?:instructions?|training|rules)`,
	`you are now`,
	`act as (?:a |an )?(?:different|new)`,
	`pretend (?:to be|you are)`,
	`your new (?:role|instructions?|purpose)`,
	`system prompt`,
	`reveal your (?:instructions?|prompt|system)`,
	`what (?:are|were) your (?:instructions?|rules)`,

	"```.*(?:python|javascript|bash|sql|exec|eval)",
	`<script`,
	`import\s+os`,
	`subprocess\.`,
	`__.*__`,

	`;\s*(?:drop|delete|truncate|update|insert)`,
	`'\s*(?:or|and)\s*'?\d*'?\s*=`,
}

var injectionRegex = regexp.MustCompile(`(?is)` + strings.Join(injectionPatterns, "|"))

var emergencyKeywords = []string{
	"chest pain", "can't breathe", "cannot breathe", "heart attack",
	"stroke", "unconscious", "passing out", "fainted", "fainting",
	"severe pain", "bleeding heavily", "can't move", "paralyzed",
	"suicide", "kill myself", "want to die", "end my life",
	"overdose", "took too many", "poisoned", "allergic reaction",
	"choking", "can't swallow", "throat closing",
}

var healthKeywords = []string{
	// symptoms
	"feel", "feeling", "felt", "pain", "ache", "hurt", "sore",
	"tired", "fatigue", "exhausted", "weak", "dizzy", "nauseous",
	"headache", "migraine", "fever", "chills", "cough", "cold",
	"anxious", "stressed", "depressed", "worried", "scared",
	"sleep", "insomnia", "nightmare", "restless",

	// body
	"head", "chest", "stomach", "back", "neck", "arm", "leg",
	"heart", "breathing", "throat", "eye", "ear",

	// care
	"medicine", "medication", "pill", "doctor", "appointment",
	"exercise", "workout", "walk", "diet", "eating", "drinking",
	"blood pressure", "heart rate", "vitals", "temperature",

	// wellness
	"better", "worse", "same", "improving", "okay", "not okay",
	"good", "bad", "terrible", "great", "fine",
}

var casualKeywords = []string{
	"hello", "hi", "hey", "good morning", "good afternoon", "good evening",
	"how are you", "what's up", "thanks", "thank you", "bye", "goodbye",
	"yes", "no", "maybe", "sure", "okay", "ok", "alright",
}

var outOfScopeKeywords = []string{
	"write me a", "compose", "poem", "story", "essay", "song",
	"code", "programming", "javascript", "python", "algorithm",
	"website", "app", "software",
	"capital of", "who invented", "what year", "history of",
	"recipe for", "how to cook", "weather",
	"movie", "game", "sports score", "celebrity", "gossip",
	"joke", "riddle", "trivia",
}

type Result struct {
	IsSafe        bool            `json:"is_safe"`
	Sanitized     string          `json:"sanitized_text"`
	Intent        Intent          `json:"intent"`
	BypassLLM     bool            `json:"should_bypass_llm"`
	BypassMessage string          `json:"bypass_message,omitempty"`
	BypassAction  string          `json:"bypass_action,omitempty"`
	Flags         map[string]bool `json:"flags"`
}

// Process is the single entry point for user text before it reaches a model.
func Process(text string) Result {
	sanitized, modified := Sanitize(text)
	flags := map[string]bool{
		FlagSanitized: modified,
		FlagTruncated: utf8.RuneCountInString(text) > MaxInputLength,
	}

	if DetectInjection(sanitized) {
		flags[FlagInjectionDetected] = true
		return Result{
			Sanitized:     sanitized,
			Intent:        IntentUnknown,
			BypassLLM:     true,
			BypassMessage: InjectionMessage,
			BypassAction:  ActionLogSecurityEvent,
			Flags:         flags,
		}
	}

	res := Result{IsSafe: true, Sanitized: sanitized, Flags: flags}
	res.Intent = ClassifyIntent(sanitized)
	switch res.Intent {
	case IntentEmergency:
		// the model still answers, the caller alerts a clinician
		flags[FlagEmergency] = true
	case IntentOutOfScope:
		res.BypassLLM = true
		res.BypassMessage = OutOfScopeMessage
	}
	return res
}

// Sanitize drops control characters other than tab, newline and carriage
// return, collapses whitespace and truncates to MaxInputLength runes.
func Sanitize(text string) (string, bool) {
	if text == "" {
		return "", false
	}

	cleaned := strings.Map(func(r rune) rune {
		if (r < 0x20 && r != '\t' && r != '\n' && r != '\r') || r == 0x7f {
			return -1
		}
		return r
	}, text)
	cleaned = strings.Join(strings.Fields(cleaned), " ")

	if utf8.RuneCountInString(cleaned) > MaxInputLength {
		cleaned = string([]rune(cleaned)[:MaxInputLength]) + "..."
	}
	return cleaned, cleaned != text
}

func DetectInjection(text string) bool {
	if text == "" {
		return false
	}
	return injectionRegex.MatchString(text)
}

// ClassifyIntent is keyword based. Emergencies win outright, short messages lean
// casual, and out-of-scope needs two hits before it beats the health default.
func ClassifyIntent(text string) Intent {
	if text == "" {
		return IntentUnknown
	}

	lower := strings.ToLower(text)
	if countMatches(lower, emergencyKeywords) > 0 {
		return IntentEmergency
	}

	health := countMatches(lower, healthKeywords)
	casual := countMatches(lower, casualKeywords)
	outOfScope := countMatches(lower, outOfScopeKeywords)

	if len(strings.Fields(text)) <= 3 {
		if casual == 0 && health > 0 {
			return IntentHealthCheck
		}
		return IntentCasualChat
	}

	best, bestScore := IntentHealthCheck, health
	if casual > bestScore {
		best, bestScore = IntentCasualChat, casual
	}
	if outOfScope > bestScore {
		best, bestScore = IntentOutOfScope, outOfScope
	}

	if bestScore == 0 {
		return IntentHealthCheck
	}
	if best == IntentOutOfScope && outOfScope < 2 {
		return IntentHealthCheck
	}
	return best
}

func countMatches(lower string, keywords []string) int {
	n := 0
	for _, kw := range keywords {
		if strings.Contains(lower, kw) {
			n++
		}
	}
	return n
}
