package release

import (
	"github.com/oshokin/electron-release/internal/config"
	"github.com/oshokin/electron-release/internal/platform"
)

// Environment variables read by electron-builder.
const (
	EnvGitHubToken      = "GH_TOKEN"
	EnvCertificateLink  = "CSC_LINK"
	EnvCertificatePass  = "CSC_KEY_PASSWORD"
	EnvDisableAdContent = "ADBLOCK"
)

// CredentialEnv returns the environment overlay handed to child processes.
// Signing credentials are taken only for the target platform; empty values are left out.
func CredentialEnv(in *config.Inputs, target platform.Platform) map[string]string {
	env := make(map[string]string, 4)

	set := func(key, value string) {
		if value != "" {
			env[key] = value
		}
	}

	set(EnvGitHubToken, in.GitHubToken)

	switch target {
	case platform.Mac:
		set(EnvCertificateLink, in.MacCerts)
		set(EnvCertificatePass, in.MacCertsPassword)
	case platform.Windows:
		set(EnvCertificateLink, in.WindowsCerts)
		set(EnvCertificatePass, in.WindowsCertsPassword)
	case platform.Linux:
	}

	set(EnvDisableAdContent, "true")

	return env
}
