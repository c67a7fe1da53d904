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

// Package auth implements the password verifier collaborator contract:
// verify(auth_header) -> bool, reload_if_stale(). Two backends are
// provided: "plaintext" (a password file, per spec) and "bearer" (a
// static-secret HMAC JWT, an additive backend exercising the teacher's
// golang-jwt dependency).
package auth

// Verifier is the collaborator contract HTTP/WebSocket auth wrappers
// depend on. Header is the full Authorization header value, e.g.
// "Basic dXNlcjpwYXNz" or "Bearer eyJ...". Verify reports whether the
// credentials are accepted.
type Verifier interface {
	Verify(header string) bool
}
