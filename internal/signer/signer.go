// Package signer implements the TC3-HMAC-SHA256 request signature used by
// Tencent Cloud APIs.
//
// Every function here is pure: the same inputs always produce the same
// output, and nothing is cached between calls.
package signer

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"time"
)

const (
	Algorithm     = "TC3-HMAC-SHA256"
	ScopeToken    = "tc3_request"
	SignedHeaders = "content-type;host"
	keyPrefix     = "TC3"
	dateLayout    = "2006-01-02"
)

// DeriveSigningKey runs the HMAC chain date -> service -> scope token, each
// step keyed with the previous digest.
func DeriveSigningKey(secretKey, date, service string) []byte {
	kDate := hmacSHA256([]byte(keyPrefix+secretKey), []byte(date))
	kService := hmacSHA256(kDate, []byte(service))
	return hmacSHA256(kService, []byte(ScopeToken))
}

// Sign returns the lowercase hex signature of stringToSign.
func Sign(secretKey, date, service, stringToSign string) string {
	key := DeriveSigningKey(secretKey, date, service)
	return hex.EncodeToString(hmacSHA256(key, []byte(stringToSign)))
}

// CanonicalRequest builds the canonical form of a POST to "/" with an empty
// query string. payload must be the exact bytes that go on the wire.
func CanonicalRequest(host, contentType string, payload []byte) string {
	canonicalHeaders := fmt.Sprintf("content-type:%s\nhost:%s\n", contentType, host)
	return fmt.Sprintf("POST\n/\n\n%s\n%s\n%s", canonicalHeaders, SignedHeaders, sha256Hex(payload))
}

// CredentialScope is "<date>/<service>/tc3_request".
func CredentialScope(date, service string) string {
	return date + "/" + service + "/" + ScopeToken
}

func StringToSign(timestamp int64, date, service, canonicalRequest string) string {
	return fmt.Sprintf("%s\n%d\n%s\n%s",
		Algorithm, timestamp, CredentialScope(date, service), sha256Hex([]byte(canonicalRequest)))
}

// Authorization formats the value of the Authorization header.
func Authorization(secretID, date, service, signature string) string {
	return fmt.Sprintf("%s Credential=%s/%s, SignedHeaders=%s, Signature=%s",
		Algorithm, secretID, CredentialScope(date, service), SignedHeaders, signature)
}

// Params describes one outgoing request.
type Params struct {
	SecretID    string
	SecretKey   string
	Host        string
	Service     string
	Action      string
	Version     string
	Region      string
	ContentType string
	Timestamp   time.Time
	Payload     []byte
}

// Headers returns the full header set for p, including the signature over
// p.Payload. The signing date is the UTC calendar date of p.Timestamp.
func Headers(p Params) map[string]string {
	ts := p.Timestamp.Unix()
	date := p.Timestamp.UTC().Format(dateLayout)

	canonical := CanonicalRequest(p.Host, p.ContentType, p.Payload)
	signature := Sign(p.SecretKey, date, p.Service, StringToSign(ts, date, p.Service, canonical))

	headers := map[string]string{
		"Authorization":  Authorization(p.SecretID, date, p.Service, signature),
		"Content-Type":   p.ContentType,
		"Host":           p.Host,
		"X-TC-Action":    p.Action,
		"X-TC-Version":   p.Version,
		"X-TC-Timestamp": strconv.FormatInt(ts, 10),
	}
	if p.Region != "" {
		headers["X-TC-Region"] = p.Region
	}
	return headers
}

func hmacSHA256(key, data []byte) []byte {
	mac := hmac.New(sha256.New, key)
	mac.Write(data)
	return mac.Sum(nil)
}

func sha256Hex(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}
