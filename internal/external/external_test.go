package external

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRegistryDispatchesValidatorsByPredicate(t *testing.T) {
	reg := NewRegistry()
	reg.RegisterValidator(Validator{
		ID:                  "gofmt",
		SupportedExtensions: []string{".go"},
		CanValidate:         func(relPath string) bool { return strings.HasSuffix(relPath, ".go") },
		Validate: func(ctx context.Context, relPath string, source []byte) error {
			return nil
		},
		IsAvailable: func() bool { return true },
	})
	reg.RegisterValidator(Validator{
		ID:          "eslint",
		CanValidate: func(relPath string) bool { return strings.HasSuffix(relPath, ".ts") },
		IsAvailable: func() bool { return false },
	})

	matches := reg.ValidatorsFor("main.go")
	assert.Len(t, matches, 1)
	assert.Equal(t, "gofmt", matches[0].ID)

	assert.Empty(t, reg.ValidatorsFor("app.ts"))
}

func TestRegistryByIDHonorsAvailability(t *testing.T) {
	reg := NewRegistry()
	reg.RegisterSandbox(Sandbox{ID: "docker", IsAvailable: func() bool { return false }})
	reg.RegisterSandbox(Sandbox{ID: "local", IsAvailable: func() bool { return true }})

	_, ok := reg.SandboxByID("docker")
	assert.False(t, ok)

	s, ok := reg.SandboxByID("local")
	assert.True(t, ok)
	assert.Equal(t, "local", s.ID)

	_, ok = reg.SandboxByID("missing")
	assert.False(t, ok)
}

func TestErrCapabilityUnavailableMessage(t *testing.T) {
	err := &ErrCapabilityUnavailable{ID: "docker"}
	assert.Contains(t, err.Error(), "docker")
}
