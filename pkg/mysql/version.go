package mysql

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// VersionInfo represents parsed MySQL server version information
type VersionInfo struct {
	Major int    // Major version number (e.g., 8)
	Minor int    // Minor version number (e.g., 0)
	Patch int    // Patch version number (e.g., 36)
	Raw   string // Raw version string from the server
}

// String returns the version as a string in format "major.minor.patch"
func (v VersionInfo) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}

// IsAtLeast checks if this version is at least the specified version
func (v VersionInfo) IsAtLeast(major, minor int) bool {
	if v.Major > major {
		return true
	}
	if v.Major == major && v.Minor >= minor {
		return true
	}
	return false
}

// IsMariaDB returns true if the server identified itself as MariaDB
func (v VersionInfo) IsMariaDB() bool {
	return strings.Contains(strings.ToLower(v.Raw), "mariadb")
}

// NativePasswordDisabled returns true for server versions that ship with the
// mysql_native_password authentication plugin disabled (MySQL 8.4 and later).
// Provisioning against such servers requires the plugin to be re-enabled.
func (v VersionInfo) NativePasswordDisabled() bool {
	return !v.IsMariaDB() && v.IsAtLeast(8, 4)
}

// GetVersion retrieves and parses the MySQL version from the server
func (c *Client) GetVersion(ctx context.Context) (*VersionInfo, error) {
	row := c.QueryRow(ctx, "SELECT VERSION()")

	var versionStr string
	if err := row.Scan(&versionStr); err != nil {
		return nil, errors.Wrap(err, "failed to query MySQL version")
	}

	version, err := parseVersion(versionStr)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to parse MySQL version: %s", versionStr)
	}

	return version, nil
}

// parseVersion parses a MySQL version string into structured information.
// MySQL version strings come in a few shapes:
// - "8.0.36" (standard)
// - "5.7.42-log" (with build suffix)
// - "10.11.6-MariaDB-1:10.11.6+maria~deb12" (MariaDB)
func parseVersion(versionStr string) (*VersionInfo, error) {
	cleaned := strings.TrimSpace(versionStr)

	// Remove everything after the first space
	if spaceIdx := strings.Index(cleaned, " "); spaceIdx != -1 {
		cleaned = cleaned[:spaceIdx]
	}

	// Remove suffixes like "-log", "-debug", "-MariaDB-..."
	if dashIdx := strings.Index(cleaned, "-"); dashIdx != -1 {
		cleaned = cleaned[:dashIdx]
	}

	// Matches patterns like: 8.0.36, 5.7, 10.11.6
	versionRegex := regexp.MustCompile(`^(\d+)\.(\d+)(?:\.(\d+))?`)
	matches := versionRegex.FindStringSubmatch(cleaned)

	if len(matches) < 3 {
		return nil, fmt.Errorf("invalid version format: %s", versionStr)
	}

	major, err := strconv.Atoi(matches[1])
	if err != nil {
		return nil, fmt.Errorf("invalid major version: %s", matches[1])
	}

	minor, err := strconv.Atoi(matches[2])
	if err != nil {
		return nil, fmt.Errorf("invalid minor version: %s", matches[2])
	}

	patch := 0
	if len(matches) > 3 && matches[3] != "" {
		patch, err = strconv.Atoi(matches[3])
		if err != nil {
			return nil, fmt.Errorf("invalid patch version: %s", matches[3])
		}
	}

	return &VersionInfo{
		Major: major,
		Minor: minor,
		Patch: patch,
		Raw:   versionStr,
	}, nil
}
