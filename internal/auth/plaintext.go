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
	"bufio"
	"encoding/base64"
	"crypto/subtle"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"
)

// PlaintextVerifier implements the "plaintext" authentication backend: one
// line per principal, "username:$<codec>$<material>". The only codec
// defined is "plain", where material is the literal password. The file is
// re-read whenever its modification time advances past the last read.
type PlaintextVerifier struct {
	path string

	mu       sync.Mutex
	modTime  time.Time
	creds    map[string]string
}

// NewPlaintextVerifier constructs a verifier backed by the password file
// at path. The file is read lazily on first use.
func NewPlaintextVerifier(path string) *PlaintextVerifier {
	return &PlaintextVerifier{path: path}
}

func (v *PlaintextVerifier) reloadIfStale() error {
	info, err := os.Stat(v.path)
	if err != nil {
		return fmt.Errorf("stat password file: %w", err)
	}
	if !info.ModTime().After(v.modTime) && v.creds != nil {
		return nil
	}

	f, err := os.Open(v.path)
	if err != nil {
		return fmt.Errorf("open password file: %w", err)
	}
	defer f.Close()

	creds := make(map[string]string)
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		user, material, ok := parsePasswordLine(line)
		if !ok {
			continue
		}
		creds[user] = material
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read password file: %w", err)
	}

	v.creds = creds
	v.modTime = info.ModTime()
	return nil
}

// parsePasswordLine splits "username:$plain$password" into username and
// the plaintext password. Only the "plain" codec is defined.
func parsePasswordLine(line string) (user, password string, ok bool) {
	idx := strings.IndexByte(line, ':')
	if idx < 0 {
		return "", "", false
	}
	user = line[:idx]
	rest := line[idx+1:]
	if !strings.HasPrefix(rest, "$plain$") {
		return "", "", false
	}
	return user, strings.TrimPrefix(rest, "$plain$"), true
}

// Verify checks an "Authorization: Basic <base64>" header against the
// password file, using a constant-time comparison for the password.
func (v *PlaintextVerifier) Verify(header string) bool {
	const prefix = "Basic "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return false
	}

	decoded, err := base64.StdEncoding.DecodeString(strings.TrimSpace(header[len(prefix):]))
	if err != nil {
		return false
	}

	parts := strings.SplitN(string(decoded), ":", 2)
	if len(parts) != 2 {
		return false
	}
	user, pass := parts[0], parts[1]

	v.mu.Lock()
	defer v.mu.Unlock()
	if err := v.reloadIfStale(); err != nil {
		return false
	}

	want, ok := v.creds[user]
	if !ok {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(pass), []byte(want)) == 1
}
