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

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o600))
	return path
}

func TestLoadValidConfig(t *testing.T) {
	path := writeConfig(t, `{
		"authentication": {
			"default": {"type": "plaintext", "file": "/etc/queued/passwd"}
		},
		"servers": [
			{"hostname": "0.0.0.0", "port": 8080, "authentication": "default"}
		]
	}`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Len(t, cfg.Servers, 1)
	assert.Equal(t, 8080, cfg.Servers[0].Port)
}

func TestLoadRejectsMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestLoadRejectsMalformedJSON(t *testing.T) {
	path := writeConfig(t, `{not json`)
	_, err := Load(path)
	assert.Error(t, err)
}

func TestValidateRejectsUnknownAuthenticationType(t *testing.T) {
	cfg := &Config{
		Authentication: map[string]Authentication{"bad": {Type: "magic"}},
	}
	assert.Error(t, cfg.Validate())
}

func TestValidateRejectsPlaintextWithoutFile(t *testing.T) {
	cfg := &Config{
		Authentication: map[string]Authentication{"bad": {Type: "plaintext"}},
	}
	assert.Error(t, cfg.Validate())
}

func TestValidateRejectsBearerWithoutSecret(t *testing.T) {
	cfg := &Config{
		Authentication: map[string]Authentication{"bad": {Type: "bearer"}},
	}
	assert.Error(t, cfg.Validate())
}

func TestValidateRejectsPortOutOfRange(t *testing.T) {
	cfg := &Config{Servers: []Server{{Hostname: "localhost", Port: 99999}}}
	assert.Error(t, cfg.Validate())
}

func TestValidateRejectsIncompleteSecurity(t *testing.T) {
	cfg := &Config{Servers: []Server{{
		Hostname: "localhost", Port: 8080,
		Security: &Security{Certificate: "cert.pem"},
	}}}
	assert.Error(t, cfg.Validate())
}

func TestValidateRejectsUnknownAuthenticationReference(t *testing.T) {
	cfg := &Config{Servers: []Server{{
		Hostname: "localhost", Port: 8080, Authentication: "missing",
	}}}
	assert.Error(t, cfg.Validate())
}

func TestValidateAcceptsMinimalServer(t *testing.T) {
	cfg := &Config{Servers: []Server{{Hostname: "localhost", Port: 8080}}}
	assert.NoError(t, cfg.Validate())
}
