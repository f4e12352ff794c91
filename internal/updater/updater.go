// Package updater wraps go-selfupdate for in-place binary upgrades from
// GitHub releases.
package updater

import (
	"context"
	"fmt"
	"time"

	"github.com/creativeprojects/go-selfupdate"

	"github.com/smazurov/procex/internal/logging"
	"github.com/smazurov/procex/internal/version"
)

// Release describes the latest published release relative to the
// running binary.
type Release struct {
	CurrentVersion string
	LatestVersion  string
	ReleaseNotes   string
	URL            string
	PublishedAt    time.Time
	Available      bool
}

// Updater checks GitHub releases and replaces the running executable.
type Updater struct {
	repository selfupdate.Repository
	updater    *selfupdate.Updater
	logger     logging.Logger
}

// New creates an updater for the given "owner/repo" slug.
func New(repository string, prerelease bool) (*Updater, error) {
	source, err := selfupdate.NewGitHubSource(selfupdate.GitHubConfig{})
	if err != nil {
		return nil, fmt.Errorf("failed to create GitHub source: %w", err)
	}

	u, err := selfupdate.NewUpdater(selfupdate.Config{
		Source:     source,
		Prerelease: prerelease,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create updater: %w", err)
	}

	return &Updater{
		repository: selfupdate.ParseSlug(repository),
		updater:    u,
		logger:     logging.GetLogger("updater"),
	}, nil
}

// Check queries the repository for the latest release and compares it
// against the current version without downloading anything.
func (u *Updater) Check(ctx context.Context) (*Release, error) {
	current := version.Version

	release, found, err := u.updater.DetectLatest(ctx, u.repository)
	if err != nil {
		return nil, fmt.Errorf("failed to check for updates: %w", err)
	}
	if !found {
		return nil, fmt.Errorf("repository not found or has no releases")
	}

	// Dev builds are always considered outdated.
	available := current == "dev" || release.GreaterThan(current)

	return &Release{
		CurrentVersion: current,
		LatestVersion:  release.Version(),
		ReleaseNotes:   release.ReleaseNotes,
		URL:            release.URL,
		PublishedAt:    release.PublishedAt,
		Available:      available,
	}, nil
}

// Apply downloads the latest release and replaces the running
// executable. The caller is responsible for restarting.
func (u *Updater) Apply(ctx context.Context) (*Release, error) {
	info, err := u.Check(ctx)
	if err != nil {
		return nil, err
	}
	if !info.Available {
		return info, nil
	}

	exe, err := selfupdate.ExecutablePath()
	if err != nil {
		return nil, fmt.Errorf("failed to get executable path: %w", err)
	}

	release, _, err := u.updater.DetectLatest(ctx, u.repository)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve release: %w", err)
	}

	u.logger.Info("Applying update", "from", info.CurrentVersion, "to", info.LatestVersion)
	if err := u.updater.UpdateTo(ctx, release, exe); err != nil {
		return nil, fmt.Errorf("failed to apply update: %w", err)
	}

	return info, nil
}
