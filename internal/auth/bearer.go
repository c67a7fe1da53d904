/*
Copyright 2024 The Queued Authors

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package auth

import (
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// BearerVerifier implements the additive "bearer" authentication backend:
// a static-secret HS256 JWT in an "Authorization: Bearer <token>" header.
// Expiry ("exp") is enforced by the library's parser; any other validation
// failure (bad signature, wrong algorithm) is also rejected.
type BearerVerifier struct {
	secret []byte
}

// NewBearerVerifier constructs a verifier that checks tokens signed with
// secret.
func NewBearerVerifier(secret string) *BearerVerifier {
	return &BearerVerifier{secret: []byte(secret)}
}

// Verify checks an "Authorization: Bearer <token>" header.
func (v *BearerVerifier) Verify(header string) bool {
	const prefix = "Bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return false
	}
	raw := strings.TrimSpace(header[len(prefix):])

	token, err := jwt.Parse(raw, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return v.secret, nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil {
		return false
	}
	return token.Valid
}
