// Package auth stores and looks up provider API keys.
package auth

import (
	"fmt"
	"io"
	"os"
	"slices"
	"strings"
	"syscall"

	"github.com/zalando/go-keyring"
	"golang.org/x/term"
)

const serviceName = "codelex"

// Key owners.
const (
	ServiceGemini    = "gemini"
	ServiceOpenAI    = "openai"
	ServiceTranslate = "translate"
)

type entry struct {
	account string
	envVar  string
	label   string
}

var services = map[string]entry{
	ServiceGemini:    {account: "gemini-api-key", envVar: "GEMINI_API_KEY", label: "Gemini"},
	ServiceOpenAI:    {account: "openai-api-key", envVar: "OPENAI_API_KEY", label: "OpenAI"},
	ServiceTranslate: {account: "google-translate-api-key", envVar: "GOOGLE_TRANSLATE_API_KEY", label: "Google Translate"},
}

// Services lists the known services in display order.
func Services() []string {
	return []string{ServiceGemini, ServiceOpenAI, ServiceTranslate}
}

// IsService reports whether name is a known service.
func IsService(name string) bool {
	return slices.Contains(Services(), name)
}

// Label returns the display name of service.
func Label(service string) string {
	if e, ok := services[service]; ok {
		return e.label
	}
	return service
}

// EnvVar returns the environment variable consulted for service.
func EnvVar(service string) string {
	return services[service].envVar
}

func lookup(service string) (entry, error) {
	e, ok := services[service]
	if !ok {
		return entry{}, fmt.Errorf("unknown service %q (want one of %v)", service, Services())
	}
	return e, nil
}

// GetKey retrieves the API key for service. If allowEnv is false,
// environment variables are ignored. The second value names the source.
func GetKey(service string, allowEnv bool) (string, string) {
	e, err := lookup(service)
	if err != nil {
		return "", ""
	}

	// 1. Try Keychain
	key, err := keyring.Get(serviceName, e.account)
	if err == nil && strings.TrimSpace(key) != "" {
		return strings.TrimSpace(key), "Keychain"
	}

	if allowEnv {
		// 2. Try Env Var (optional)
		if key, ok := GetEnvKey(service); ok {
			return key, "Environment Variable"
		}
	}

	return "", ""
}

// SaveKey saves the key for service to the OS Keychain.
func SaveKey(service, key string) error {
	e, err := lookup(service)
	if err != nil {
		return err
	}
	return keyring.Set(serviceName, e.account, strings.TrimSpace(key))
}

// DeleteKey removes the key for service from the OS Keychain.
func DeleteKey(service string) error {
	e, err := lookup(service)
	if err != nil {
		return err
	}
	return keyring.Delete(serviceName, e.account)
}

// GetStatus returns whether a key exists for service in the keychain.
func GetStatus(service string) bool {
	e, err := lookup(service)
	if err != nil {
		return false
	}
	key, err := keyring.Get(serviceName, e.account)
	return err == nil && key != ""
}

// PromptForAPIKey securely prompts the user for their API key on out.
func PromptForAPIKey(out io.Writer, prompt string) (string, error) {
	fmt.Fprint(out, prompt)
	bytePassword, err := term.ReadPassword(int(syscall.Stdin))
	if err != nil {
		return "", err
	}
	fmt.Fprintln(out) // Add newline after password input
	return strings.TrimSpace(string(bytePassword)), nil
}

// GetEnvKey retrieves the key from environment variables only.
func GetEnvKey(service string) (string, bool) {
	e, err := lookup(service)
	if err != nil {
		return "", false
	}
	key := strings.TrimSpace(os.Getenv(e.envVar))
	if key == "" {
		return "", false
	}
	return key, true
}
