package storage

import (
	"context"
	"fmt"
	"path"
	"strings"
	"time"
)

// ArtifactKind is the type of build output produced for a package
type ArtifactKind string

const (
	ArtifactAPK ArtifactKind = "apk"
	ArtifactAAB ArtifactKind = "aab"
)

// BuildArtifactGenerator produces the build output for a package and returns
// its storage path. A real build pipeline can replace StubGenerator.
type BuildArtifactGenerator interface {
	Generate(ctx context.Context, packageName string, kind ArtifactKind) (string, error)
}

// ArtifactPath is where the artifact of kind for packageName lives
func ArtifactPath(packageName string, kind ArtifactKind) string {
	return path.Join("builds", packageName+"."+string(kind))
}

// StubGenerator writes a marker text file in place of a real build
type StubGenerator struct {
	store *LocalStore
	now   func() time.Time
}

// NewStubGenerator creates a stub generator writing into store
func NewStubGenerator(store *LocalStore) *StubGenerator {
	return &StubGenerator{store: store, now: time.Now}
}

// Generate overwrites any earlier artifact of the same kind for packageName
func (g *StubGenerator) Generate(ctx context.Context, packageName string, kind ArtifactKind) (string, error) {
	rel := ArtifactPath(packageName, kind)
	content := fmt.Sprintf("FAKE %s BUILD for %s\nGenerated at %s\n",
		strings.ToUpper(string(kind)), packageName, g.now().UTC().Format(time.RFC3339))

	if err := g.store.WriteFile(ctx, rel, []byte(content)); err != nil {
		return "", err
	}
	return rel, nil
}
