package models

import (
	"crypto/rand"
	"fmt"
	"regexp"
	"time"
)

const idAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

var (
	sessionIDPattern = regexp.MustCompile(`^session_\d+_[0-9a-z]{9}$`)
	jobIDPattern     = regexp.MustCompile(`^job_\d+_[0-9a-z]{9}$`)
)

// NewSessionID returns session_<unix-ms>_<9 lowercase alphanumerics>.
func NewSessionID() string {
	return newID("session", time.Now())
}

// NewJobID returns job_<unix-ms>_<9 lowercase alphanumerics>.
func NewJobID() string {
	return newID("job", time.Now())
}

// CallIDFor derives the call id the relay reports when the agent platform
// does not supply one.
func CallIDFor(sessionID string) string {
	return "call_" + sessionID
}

// IsSessionID reports whether id has the session id shape.
func IsSessionID(id string) bool {
	return sessionIDPattern.MatchString(id)
}

// IsJobID reports whether id has the job id shape.
func IsJobID(id string) bool {
	return jobIDPattern.MatchString(id)
}

func newID(prefix string, now time.Time) string {
	return fmt.Sprintf("%s_%d_%s", prefix, now.UnixMilli(), randomSuffix(9))
}

func randomSuffix(n int) string {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand does not fail on supported platforms
		panic(fmt.Sprintf("read random bytes: %v", err))
	}
	for i, b := range buf {
		buf[i] = idAlphabet[int(b)%len(idAlphabet)]
	}
	return string(buf)
}
