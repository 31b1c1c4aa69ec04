package booking

import (
	"errors"
	"os"
	"time"

	"github.com/golang-jwt/jwt"

	"doctordash/models"
)

// HoldToken is the decoded content of an opaque hold token. The workflow is
// stateless between requests: everything needed to finalize or release a
// hold travels inside the signed token, so it survives process restarts.
type HoldToken struct {
	HolderID string
	DocID    string
	SlotDate models.DateKey
	SlotTime models.TimeSlot
}

var holdSecret = []byte(holdTokenSecret())

func holdTokenSecret() string {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		secret = "doctordash-dev"
	}
	return secret
}

// IssueHoldToken signs a time-bounded token for a freshly registered hold.
// The token expiry mirrors the hold TTL.
func IssueHoldToken(tok HoldToken, ttl time.Duration, now time.Time) (string, error) {
	claims := jwt.MapClaims{
		"sub":      tok.HolderID,
		"docId":    tok.DocID,
		"slotDate": tok.SlotDate.String(),
		"slotTime": tok.SlotTime.String(),
		"iat":      now.Unix(),
		"exp":      now.Add(ttl).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(holdSecret)
}

// ParseHoldToken validates the signature and expiry of a hold token and
// returns its contents. Expiry is checked against the caller-supplied now,
// the same time source the ledger runs on, never the process wall clock.
// Any validation failure maps to ErrHoldExpired: from the client's
// perspective the hold is simply no longer usable.
func ParseHoldToken(tokenString string, now time.Time) (HoldToken, error) {
	parser := jwt.Parser{SkipClaimsValidation: true}
	token, err := parser.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return holdSecret, nil
	})
	if err != nil || !token.Valid {
		return HoldToken{}, ErrHoldExpired
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return HoldToken{}, ErrHoldExpired
	}

	exp, ok := claims["exp"].(float64)
	if !ok || !now.Before(time.Unix(int64(exp), 0)) {
		return HoldToken{}, ErrHoldExpired
	}

	holderID, _ := claims["sub"].(string)
	docID, _ := claims["docId"].(string)
	rawDate, _ := claims["slotDate"].(string)
	rawTime, _ := claims["slotTime"].(string)
	if holderID == "" || docID == "" || rawDate == "" || rawTime == "" {
		return HoldToken{}, ErrHoldExpired
	}

	date, err := models.ParseDateKey(rawDate)
	if err != nil {
		return HoldToken{}, ErrHoldExpired
	}
	slot, err := models.ParseTimeSlot(rawTime)
	if err != nil {
		return HoldToken{}, ErrHoldExpired
	}

	return HoldToken{
		HolderID: holderID,
		DocID:    docID,
		SlotDate: date,
		SlotTime: slot,
	}, nil
}
