// Package telegram verifies the signed init data a Telegram mini-app client
// attaches to backend requests. Verification is pure computation: no I/O, no
// logging of payload content.
package telegram

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"
)

// initDataNamespace is the fixed HMAC namespace Telegram derives the
// verification key from.
const initDataNamespace = "WebAppData"

var (
	ErrMissingHash  = errors.New("init data has no hash field")
	ErrBadSignature = errors.New("init data signature mismatch")
)

// Identity is the authenticated user embedded in init data.
type Identity struct {
	ID           int64  `json:"id"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	Username     string `json:"username"`
	LanguageCode string `json:"language_code"`
	IsPremium    bool   `json:"is_premium"`
}

// InitData is a verified payload. AuthDate is parsed but no freshness window
// is enforced here; callers wanting a TTL layer their own policy on top.
type InitData struct {
	User       Identity
	AuthDate   time.Time
	QueryID    string
	StartParam string
}

// Validate parses and verifies raw init data against botToken. It fails
// closed: a missing hash, malformed payload or signature mismatch all
// reject the request.
func Validate(raw, botToken string) (*InitData, error) {
	values, err := url.ParseQuery(raw)
	if err != nil {
		return nil, fmt.Errorf("malformed init data: %w", err)
	}

	hash := values.Get("hash")
	if hash == "" {
		return nil, ErrMissingHash
	}
	values.Del("hash")

	sig, err := hex.DecodeString(hash)
	if err != nil {
		return nil, ErrBadSignature
	}

	secret := hmacSHA256([]byte(initDataNamespace), []byte(botToken))
	candidate := hmacSHA256(secret, []byte(checkString(values)))
	if !hmac.Equal(candidate, sig) {
		return nil, ErrBadSignature
	}

	data := &InitData{
		QueryID:    values.Get("query_id"),
		StartParam: values.Get("start_param"),
	}
	if ts, err := strconv.ParseInt(values.Get("auth_date"), 10, 64); err == nil {
		data.AuthDate = time.Unix(ts, 0)
	}
	if userJSON := values.Get("user"); userJSON != "" {
		if err := json.Unmarshal([]byte(userJSON), &data.User); err != nil {
			return nil, fmt.Errorf("malformed user field: %w", err)
		}
	}
	if data.User.ID == 0 {
		return nil, errors.New("init data has no user identity")
	}
	return data, nil
}

// checkString canonicalizes the already-decoded parameter map: keys sorted by
// byte value, key=value lines joined with \n. Values are taken verbatim, so
// embedded '=' or newlines (the nested user JSON in particular) pass through
// untouched.
func checkString(values url.Values) string {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	lines := make([]string, 0, len(keys))
	for _, k := range keys {
		lines = append(lines, k+"="+values.Get(k))
	}
	return strings.Join(lines, "\n")
}

func hmacSHA256(key, message []byte) []byte {
	mac := hmac.New(sha256.New, key)
	mac.Write(message)
	return mac.Sum(nil)
}

// Sign computes the hash field for an already-encoded parameter set. It is
// the inverse of Validate's check and exists so tests and local tooling can
// mint valid payloads.
func Sign(values url.Values, botToken string) string {
	values.Del("hash")
	secret := hmacSHA256([]byte(initDataNamespace), []byte(botToken))
	return hex.EncodeToString(hmacSHA256(secret, []byte(checkString(values))))
}
