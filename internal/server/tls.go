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

package server

import (
	ctls "crypto/tls"
	"fmt"
	"os"
)

const minTLSVersionEnv = "QUEUED_MIN_TLS_VERSION"

var tlsVersions = map[string]uint16{
	"TLS10": ctls.VersionTLS10,
	"TLS11": ctls.VersionTLS11,
	"TLS12": ctls.VersionTLS12,
	"TLS13": ctls.VersionTLS13,
}

// minTLSVersion resolves the floor TLS version from QUEUED_MIN_TLS_VERSION,
// defaulting to TLS12 when unset or unrecognized.
func minTLSVersion() uint16 {
	const fallback = "TLS12"
	version := fallback
	if val, ok := os.LookupEnv(minTLSVersionEnv); ok {
		version = val
	}
	if v, ok := tlsVersions[version]; ok {
		return v
	}
	return tlsVersions[fallback]
}

// loadTLSConfig builds a server-side tls.Config from a certificate/key pair
// on disk.
func loadTLSConfig(certFile, keyFile string) (*ctls.Config, error) {
	cert, err := ctls.LoadX509KeyPair(certFile, keyFile)
	if err != nil {
		return nil, fmt.Errorf("load certificate pair: %w", err)
	}
	return &ctls.Config{
		Certificates: []ctls.Certificate{cert},
		MinVersion:   minTLSVersion(),
	}, nil
}
